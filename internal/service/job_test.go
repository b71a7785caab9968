package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hirewire/hirewire-api/config"
	"github.com/hirewire/hirewire-api/internal/core"
	"github.com/hirewire/hirewire-api/internal/data"
	"github.com/hirewire/hirewire-api/internal/domain/model"
	apperrors "github.com/hirewire/hirewire-api/internal/errors"
	"github.com/hirewire/hirewire-api/internal/testutil"
)

var (
	_ core.JobRepository      = (*mockJobRepo)(nil)
	_ core.CategoryRepository = (*mockCategoryRepo)(nil)
	_ core.Recommender        = (*stubRecommender)(nil)
)

// mockJobRepo is a hand mock of core.JobRepository backed by a map.
type mockJobRepo struct {
	jobs map[string]*model.Job

	updateStatusCalls []core.UpdateJobStatusParams
	updateStatusErr   error

	searchResults []*model.JobSummary
	searchOpts    *model.JobSearchOptions

	viewsRecorded []string
}

func newMockJobRepo(jobs ...*model.Job) *mockJobRepo {
	m := &mockJobRepo{jobs: map[string]*model.Job{}}
	for _, j := range jobs {
		m.jobs[j.ID] = j
	}
	return m
}

func (m *mockJobRepo) Create(ctx context.Context, req *model.CreateJobRequest) (*model.Job, error) {
	job := &model.Job{
		ID:          "job-created",
		PosterID:    req.PosterID,
		Title:       req.Title,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		Status:      model.JobStatusDraft,
	}
	m.jobs[job.ID] = job
	return job, nil
}

func (m *mockJobRepo) GetByID(ctx context.Context, id string) (*model.Job, error) {
	job, ok := m.jobs[id]
	if !ok {
		return nil, apperrors.NotFoundf("job %s not found", id)
	}
	cp := *job
	return &cp, nil
}

func (m *mockJobRepo) Update(
	ctx context.Context,
	id string,
	req *model.UpdateJobRequest,
) (*model.Job, error) {
	return m.GetByID(ctx, id)
}

func (m *mockJobRepo) UpdateStatus(ctx context.Context, params core.UpdateJobStatusParams) (*model.Job, error) {
	m.updateStatusCalls = append(m.updateStatusCalls, params)
	if m.updateStatusErr != nil {
		return nil, m.updateStatusErr
	}
	current, ok := m.jobs[params.Job.ID]
	if !ok {
		return nil, apperrors.NotFoundf("job %s not found", params.Job.ID)
	}
	if current.Status != params.From {
		return nil, apperrors.InvalidStatus("update", params.Job.ID, string(current.Status), string(params.From))
	}
	cp := *params.Job
	m.jobs[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (m *mockJobRepo) Search(
	ctx context.Context,
	opts *model.JobSearchOptions,
) ([]*model.JobSummary, error) {
	m.searchOpts = opts
	return m.searchResults, nil
}

func (m *mockJobRepo) CountSearch(ctx context.Context, opts *model.JobSearchOptions) (int, error) {
	return len(m.searchResults), nil
}

func (m *mockJobRepo) ListByPoster(
	ctx context.Context,
	posterID string,
	page core.PageOptions,
) ([]*model.Job, error) {
	var out []*model.Job
	for _, j := range m.jobs {
		if j.PosterID == posterID {
			out = append(out, j)
		}
	}
	return out, nil
}

func (m *mockJobRepo) Stats(ctx context.Context, posterID *string) (*model.JobStats, error) {
	return &model.JobStats{}, nil
}

func (m *mockJobRepo) RecordView(ctx context.Context, id string) error {
	m.viewsRecorded = append(m.viewsRecorded, id)
	return nil
}

// mockCategoryRepo reports a fixed set of category IDs as existing.
type mockCategoryRepo struct {
	existing map[string]bool
}

func (m *mockCategoryRepo) Create(
	ctx context.Context,
	req *model.CreateCategoryRequest,
) (*model.Category, error) {
	return &model.Category{ID: "cat-created", Slug: req.Slug, Name: req.Name}, nil
}

func (m *mockCategoryRepo) GetByID(ctx context.Context, id string) (*model.Category, error) {
	if !m.existing[id] {
		return nil, apperrors.NotFoundf("category %s not found", id)
	}
	return &model.Category{ID: id}, nil
}

func (m *mockCategoryRepo) GetBySlug(ctx context.Context, slug string) (*model.Category, error) {
	return nil, apperrors.NotFound("category not found")
}

func (m *mockCategoryRepo) List(ctx context.Context) ([]*model.Category, error) {
	return nil, nil
}

func (m *mockCategoryRepo) Exists(ctx context.Context, id string) (bool, error) {
	return m.existing[id], nil
}

// stubRecommender returns canned values and records calls.
type stubRecommender struct {
	mu          sync.Mutex
	score       float64
	recs        []model.Recommendation
	notifyCalls []string
	viewCalls   []string
}

func (s *stubRecommender) MatchScore(ctx context.Context, applicantID, jobID string) (float64, error) {
	return s.score, nil
}

func (s *stubRecommender) RecommendJobs(
	ctx context.Context,
	applicantID string,
	limit int,
) ([]model.Recommendation, error) {
	return s.recs, nil
}

func (s *stubRecommender) NotifyApplication(ctx context.Context, applicantID, jobID, applicationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifyCalls = append(s.notifyCalls, applicantID+":"+applicationID)
	return nil
}

func (s *stubRecommender) NotifyView(ctx context.Context, applicantID, jobID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.viewCalls = append(s.viewCalls, applicantID+":"+jobID)
	return nil
}

func (s *stubRecommender) applications() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.notifyCalls...)
}

func (s *stubRecommender) views() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.viewCalls...)
}

func marketplaceConfig() config.MarketplaceConfig {
	cfg := config.MarketplaceConfig{}
	cfg.Sanitize()
	return cfg
}

func newJobService(t *testing.T, repo *mockJobRepo, cats *mockCategoryRepo, tp data.TimeProvider) *JobService {
	t.Helper()
	if cats == nil {
		cats = &mockCategoryRepo{existing: map[string]bool{}}
	}
	svc, err := NewJobService(JobServiceOptions{
		Jobs:         repo,
		Categories:   cats,
		Config:       marketplaceConfig(),
		TimeProvider: tp,
	})
	require.NoError(t, err)
	return svc
}

func TestJobService_Create(t *testing.T) {
	t.Run("rejects unknown category", func(t *testing.T) {
		svc := newJobService(t, newMockJobRepo(), &mockCategoryRepo{existing: map[string]bool{}}, nil)

		_, err := svc.Create(context.Background(), testutil.NewJobRequest().Build())
		require.Error(t, err)
		assert.True(t, apperrors.IsValidation(err))
		assert.Equal(t, "category_id", apperrors.GetField(err))
	})

	t.Run("creates draft job for known category", func(t *testing.T) {
		req := testutil.NewJobRequest().WithCategory("cat-1").Build()
		svc := newJobService(t, newMockJobRepo(), &mockCategoryRepo{existing: map[string]bool{"cat-1": true}}, nil)

		job, err := svc.Create(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, model.JobStatusDraft, job.Status)
	})
}

func TestJobService_Publish(t *testing.T) {
	t.Run("stamps published_at and derives expiry from default ttl", func(t *testing.T) {
		tp := testutil.NewTestTimeProvider(testutil.TestTime())
		draft := testutil.NewJob().Build()
		repo := newMockJobRepo(draft)
		svc := newJobService(t, repo, nil, tp)

		job, err := svc.Publish(context.Background(), draft.ID)
		require.NoError(t, err)

		assert.Equal(t, model.JobStatusPublished, job.Status)
		require.NotNil(t, job.PublishedAt)
		assert.Equal(t, tp.Now(), *job.PublishedAt)
		require.NotNil(t, job.ExpiresAt)
		assert.Equal(t, tp.Now().Add(720*time.Hour), *job.ExpiresAt)

		require.Len(t, repo.updateStatusCalls, 1)
		assert.Equal(t, model.JobStatusDraft, repo.updateStatusCalls[0].From)
	})

	t.Run("keeps an explicit future expiry", func(t *testing.T) {
		tp := testutil.NewTestTimeProvider(testutil.TestTime())
		expires := tp.Now().Add(48 * time.Hour)
		draft := testutil.NewJob().Build()
		draft.ExpiresAt = &expires
		repo := newMockJobRepo(draft)
		svc := newJobService(t, repo, nil, tp)

		job, err := svc.Publish(context.Background(), draft.ID)
		require.NoError(t, err)
		assert.Equal(t, expires, *job.ExpiresAt)
	})

	t.Run("rejects publishing a closed job", func(t *testing.T) {
		closed := testutil.NewJob().WithStatus(model.JobStatusClosed).Build()
		repo := newMockJobRepo(closed)
		svc := newJobService(t, repo, nil, testutil.NewTestTimeProvider(testutil.TestTime()))

		_, err := svc.Publish(context.Background(), closed.ID)
		require.Error(t, err)
		assert.True(t, apperrors.IsInvalidStatus(err))
		assert.Empty(t, repo.updateStatusCalls, "no write for a rejected transition")
	})

	t.Run("returns not found for unknown job", func(t *testing.T) {
		svc := newJobService(t, newMockJobRepo(), nil, nil)

		_, err := svc.Publish(context.Background(), "missing")
		assert.True(t, apperrors.IsNotFound(err))
	})
}

func TestJobService_Close(t *testing.T) {
	t.Run("closes a published job", func(t *testing.T) {
		tp := testutil.NewTestTimeProvider(testutil.TestTime())
		published := testutil.NewJob().Published(tp.Now().Add(24 * time.Hour)).Build()
		repo := newMockJobRepo(published)
		svc := newJobService(t, repo, nil, tp)

		job, err := svc.Close(context.Background(), published.ID)
		require.NoError(t, err)
		assert.Equal(t, model.JobStatusClosed, job.Status)
		require.NotNil(t, job.ClosedAt)
	})

	t.Run("rejects closing a draft", func(t *testing.T) {
		draft := testutil.NewJob().Build()
		svc := newJobService(t, newMockJobRepo(draft), nil, testutil.NewTestTimeProvider(testutil.TestTime()))

		_, err := svc.Close(context.Background(), draft.ID)
		assert.True(t, apperrors.IsInvalidStatus(err))
	})
}

func TestJobService_Get(t *testing.T) {
	t.Run("records a view", func(t *testing.T) {
		draft := testutil.NewJob().Build()
		repo := newMockJobRepo(draft)
		svc := newJobService(t, repo, nil, testutil.NewTestTimeProvider(testutil.TestTime()))

		_, err := svc.Get(context.Background(), draft.ID, "")
		require.NoError(t, err)
		assert.Equal(t, []string{draft.ID}, repo.viewsRecorded)
	})

	t.Run("reports a known viewer to the recommendation gateway", func(t *testing.T) {
		draft := testutil.NewJob().Build()
		repo := newMockJobRepo(draft)
		reco := &stubRecommender{}
		svc, err := NewJobService(JobServiceOptions{
			Jobs:        repo,
			Categories:  &mockCategoryRepo{existing: map[string]bool{}},
			Recommender: reco,
			Config:      marketplaceConfig(),
		})
		require.NoError(t, err)

		_, err = svc.Get(context.Background(), draft.ID, "applicant-1")
		require.NoError(t, err)
		assert.Eventually(t, func() bool {
			views := reco.views()
			return len(views) == 1 && views[0] == "applicant-1:"+draft.ID
		}, time.Second, 10*time.Millisecond)
	})

	t.Run("lazily expires an overdue published job", func(t *testing.T) {
		tp := testutil.NewTestTimeProvider(testutil.TestTime())
		job := testutil.NewJob().Published(tp.Now().Add(time.Hour)).Build()
		repo := newMockJobRepo(job)
		svc := newJobService(t, repo, nil, tp)

		tp.AddTime(2 * time.Hour)

		got, err := svc.Get(context.Background(), job.ID, "")
		require.NoError(t, err)
		assert.Equal(t, model.JobStatusExpired, got.Status)
		require.NotNil(t, got.ClosedAt)
		assert.Equal(t, tp.Now(), *got.ClosedAt)
		require.Len(t, repo.updateStatusCalls, 1)
		assert.Equal(t, model.JobStatusPublished, repo.updateStatusCalls[0].From)
	})

	t.Run("does not expire before the deadline", func(t *testing.T) {
		tp := testutil.NewTestTimeProvider(testutil.TestTime())
		job := testutil.NewJob().Published(tp.Now().Add(time.Hour)).Build()
		repo := newMockJobRepo(job)
		svc := newJobService(t, repo, nil, tp)

		got, err := svc.Get(context.Background(), job.ID, "")
		require.NoError(t, err)
		assert.Equal(t, model.JobStatusPublished, got.Status)
		assert.Empty(t, repo.updateStatusCalls)
	})
}

func TestJobService_Search(t *testing.T) {
	t.Run("normalizes paging before querying", func(t *testing.T) {
		repo := newMockJobRepo()
		svc := newJobService(t, repo, nil, nil)

		_, err := svc.Search(context.Background(), &model.JobSearchOptions{Limit: 100000})
		require.NoError(t, err)
		require.NotNil(t, repo.searchOpts)
		assert.Equal(t, marketplaceConfig().MaxSearchLimit, repo.searchOpts.Limit)
	})

	t.Run("enriches summaries with match scores for an applicant", func(t *testing.T) {
		repo := newMockJobRepo()
		repo.searchResults = []*model.JobSummary{{ID: "job-1"}, {ID: "job-2"}}
		reco := &stubRecommender{score: 77.5}
		svc, err := NewJobService(JobServiceOptions{
			Jobs:        repo,
			Categories:  &mockCategoryRepo{existing: map[string]bool{}},
			Recommender: reco,
			Config:      marketplaceConfig(),
		})
		require.NoError(t, err)

		result, err := svc.SearchForApplicant(context.Background(), "applicant-1", nil)
		require.NoError(t, err)
		require.Len(t, result.Jobs, 2)
		for _, summary := range result.Jobs {
			require.NotNil(t, summary.MatchScore)
			assert.Equal(t, 77.5, *summary.MatchScore)
		}
	})
}
