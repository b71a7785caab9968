package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hirewire/hirewire-api/internal/core"
	"github.com/hirewire/hirewire-api/internal/domain/model"
	apperrors "github.com/hirewire/hirewire-api/internal/errors"
	"github.com/hirewire/hirewire-api/internal/testutil"
)

var (
	_ core.ApplicationRepository = (*mockApplicationRepo)(nil)
	_ core.Recommender           = (*failingRecommender)(nil)
)

// mockApplicationRepo is a hand mock of core.ApplicationRepository backed by a map.
type mockApplicationRepo struct {
	mu   sync.Mutex
	apps map[string]*model.Application

	createErr   error
	updateCalls []core.UpdateApplicationParams
}

func newMockApplicationRepo(apps ...*model.Application) *mockApplicationRepo {
	m := &mockApplicationRepo{apps: map[string]*model.Application{}}
	for _, a := range apps {
		m.apps[a.ID] = a
	}
	return m
}

func (m *mockApplicationRepo) Create(
	ctx context.Context,
	app *model.Application,
) (*model.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return nil, m.createErr
	}
	created := *app
	created.ID = "app-created"
	created.Status = model.ApplicationStatusSubmitted
	created.Lifecycle = model.LifecycleActive
	m.apps[created.ID] = &created
	return &created, nil
}

func (m *mockApplicationRepo) GetByID(ctx context.Context, id string) (*model.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	app, ok := m.apps[id]
	if !ok {
		return nil, apperrors.NotFoundf("application %s not found", id)
	}
	cp := *app
	return &cp, nil
}

func (m *mockApplicationRepo) Update(ctx context.Context, params core.UpdateApplicationParams) (*model.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updateCalls = append(m.updateCalls, params)
	current, ok := m.apps[params.App.ID]
	if !ok {
		return nil, apperrors.NotFoundf("application %s not found", params.App.ID)
	}
	if current.Status != params.From {
		return nil, apperrors.InvalidStatus(
			"update", params.App.ID, string(current.Status), string(params.From))
	}
	cp := *params.App
	m.apps[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (m *mockApplicationRepo) ListByJob(
	ctx context.Context,
	opts *model.ApplicationListOptions,
) ([]*model.Application, error) {
	return nil, nil
}

func (m *mockApplicationRepo) ListByApplicant(
	ctx context.Context,
	applicantID string,
	page core.PageOptions,
) ([]*model.Application, error) {
	return nil, nil
}

func (m *mockApplicationRepo) Stats(ctx context.Context, jobID string) (*model.ApplicationStats, error) {
	return &model.ApplicationStats{}, nil
}

// failingRecommender always errors, to prove gateway trouble never fails workflows.
type failingRecommender struct {
	mu     sync.Mutex
	called int
}

func (f *failingRecommender) MatchScore(ctx context.Context, applicantID, jobID string) (float64, error) {
	return 0, errors.New("engine down")
}

func (f *failingRecommender) RecommendJobs(
	ctx context.Context,
	applicantID string,
	limit int,
) ([]model.Recommendation, error) {
	return nil, errors.New("engine down")
}

func (f *failingRecommender) NotifyApplication(ctx context.Context, applicantID, jobID, applicationID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.called++
	return errors.New("engine down")
}

func (f *failingRecommender) NotifyView(ctx context.Context, applicantID, jobID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.called++
	return errors.New("engine down")
}

type appServiceDeps struct {
	apps *mockApplicationRepo
	jobs *mockJobRepo
	sink *captureSink
}

func newApplicationService(t *testing.T, deps appServiceDeps, opts ...func(*ApplicationServiceOptions)) *ApplicationService {
	t.Helper()
	if deps.apps == nil {
		deps.apps = newMockApplicationRepo()
	}
	if deps.jobs == nil {
		deps.jobs = newMockJobRepo()
	}
	serviceOpts := ApplicationServiceOptions{
		Applications: deps.apps,
		Jobs:         deps.jobs,
		Config:       marketplaceConfig(),
		TimeProvider: testutil.NewTestTimeProvider(testutil.TestTime()),
	}
	if deps.sink != nil {
		serviceOpts.Notifier = deps.sink
	}
	for _, opt := range opts {
		opt(&serviceOpts)
	}
	svc, err := NewApplicationService(serviceOpts)
	require.NoError(t, err)
	return svc
}

func openJob() *model.Job {
	return testutil.NewJob().Published(testutil.TestTime().Add(24 * time.Hour)).Build()
}

func applicationRequest(job *model.Job) *model.CreateApplicationRequest {
	return &model.CreateApplicationRequest{
		JobID:       job.ID,
		ApplicantID: "9f4ab8f3-6c5d-4f27-9f0a-2f4f7c3b1de0",
		CoverLetter: "I would be a great fit.",
		ResumeRef:   "resumes/applicant.pdf",
	}
}

func TestApplicationService_Create(t *testing.T) {
	t.Run("submits against an open job and notifies the poster", func(t *testing.T) {
		job := openJob()
		jobs := newMockJobRepo(job)
		apps := newMockApplicationRepo()
		sink := &captureSink{}
		svc := newApplicationService(t, appServiceDeps{apps: apps, jobs: jobs, sink: sink})

		app, err := svc.Create(context.Background(), applicationRequest(job))
		require.NoError(t, err)
		assert.Equal(t, model.ApplicationStatusSubmitted, app.Status)
		assert.Equal(t, model.LifecycleActive, app.Lifecycle)

		sent := sink.notifications()
		require.Len(t, sent, 1)
		assert.Equal(t, job.PosterID, sent[0].RecipientID)
	})

	t.Run("rejects a missing resume reference", func(t *testing.T) {
		job := openJob()
		svc := newApplicationService(t, appServiceDeps{jobs: newMockJobRepo(job)})

		req := applicationRequest(job)
		req.ResumeRef = ""
		_, err := svc.Create(context.Background(), req)
		require.Error(t, err)
		assert.True(t, apperrors.IsValidation(err))
	})

	t.Run("rejects an oversized cover letter", func(t *testing.T) {
		job := openJob()
		svc := newApplicationService(t, appServiceDeps{jobs: newMockJobRepo(job)})

		req := applicationRequest(job)
		req.CoverLetter = strings.Repeat("x", marketplaceConfig().MaxCoverLetterLen+1)
		_, err := svc.Create(context.Background(), req)
		require.Error(t, err)
		assert.True(t, apperrors.IsValidation(err))
	})

	t.Run("rejects applying to a draft job", func(t *testing.T) {
		draft := testutil.NewJob().Build()
		svc := newApplicationService(t, appServiceDeps{jobs: newMockJobRepo(draft)})

		_, err := svc.Create(context.Background(), applicationRequest(draft))
		require.Error(t, err)
		assert.True(t, apperrors.IsInvalidStatus(err))
	})

	t.Run("rejects applying to an expired job", func(t *testing.T) {
		expired := testutil.NewJob().Published(testutil.TestTime().Add(-time.Hour)).Build()
		svc := newApplicationService(t, appServiceDeps{jobs: newMockJobRepo(expired)})

		_, err := svc.Create(context.Background(), applicationRequest(expired))
		require.Error(t, err)
		assert.True(t, apperrors.IsJobExpired(err))
	})

	t.Run("rejects applying to a full job", func(t *testing.T) {
		full := testutil.NewJob().
			Published(testutil.TestTime().Add(24 * time.Hour)).
			WithApplications(3, 3).
			Build()
		svc := newApplicationService(t, appServiceDeps{jobs: newMockJobRepo(full)})

		_, err := svc.Create(context.Background(), applicationRequest(full))
		require.Error(t, err)
		assert.True(t, apperrors.IsMaxApplicationsReached(err))
	})

	t.Run("surfaces a duplicate active application", func(t *testing.T) {
		job := openJob()
		apps := newMockApplicationRepo()
		apps.createErr = apperrors.DuplicateApplication(job.ID, "applicant")
		svc := newApplicationService(t, appServiceDeps{apps: apps, jobs: newMockJobRepo(job)})

		_, err := svc.Create(context.Background(), applicationRequest(job))
		require.Error(t, err)
		assert.True(t, apperrors.IsDuplicateApplication(err))
	})

	t.Run("gateway failure never fails the workflow", func(t *testing.T) {
		job := openJob()
		reco := &failingRecommender{}
		svc := newApplicationService(t,
			appServiceDeps{jobs: newMockJobRepo(job)},
			func(o *ApplicationServiceOptions) { o.Recommender = reco },
		)

		_, err := svc.Create(context.Background(), applicationRequest(job))
		assert.NoError(t, err)
	})

	t.Run("reports the applicant to the gateway", func(t *testing.T) {
		job := openJob()
		reco := &stubRecommender{}
		svc := newApplicationService(t,
			appServiceDeps{jobs: newMockJobRepo(job)},
			func(o *ApplicationServiceOptions) { o.Recommender = reco },
		)

		req := applicationRequest(job)
		created, err := svc.Create(context.Background(), req)
		require.NoError(t, err)
		assert.Eventually(t, func() bool {
			calls := reco.applications()
			return len(calls) == 1 && calls[0] == req.ApplicantID+":"+created.ID
		}, time.Second, 10*time.Millisecond)
	})
}

func TestApplicationService_Review(t *testing.T) {
	reviewerID := "3f1c2a45-88aa-4d4e-9a35-17f2cb2f6f01"

	t.Run("approve stamps review fields and notifies the applicant", func(t *testing.T) {
		app := testutil.NewApplication().WithStatus(model.ApplicationStatusUnderReview).Build()
		apps := newMockApplicationRepo(app)
		sink := &captureSink{}
		svc := newApplicationService(t, appServiceDeps{apps: apps, sink: sink})

		reviewed, err := svc.Review(context.Background(), app.ID, reviewerID, model.DecisionApprove, "strong fit")
		require.NoError(t, err)
		assert.Equal(t, model.ApplicationStatusApproved, reviewed.Status)
		require.NotNil(t, reviewed.ReviewerID)
		assert.Equal(t, reviewerID, *reviewed.ReviewerID)
		require.NotNil(t, reviewed.ReviewedAt)

		require.Len(t, apps.updateCalls, 1)
		assert.Equal(t, model.ApplicationStatusUnderReview, apps.updateCalls[0].From)

		sent := sink.notifications()
		require.Len(t, sent, 1)
		assert.Equal(t, app.ApplicantID, sent[0].RecipientID)
	})

	t.Run("request review moves submitted to under review without notification", func(t *testing.T) {
		app := testutil.NewApplication().Build()
		apps := newMockApplicationRepo(app)
		sink := &captureSink{}
		svc := newApplicationService(t, appServiceDeps{apps: apps, sink: sink})

		reviewed, err := svc.Review(context.Background(), app.ID, reviewerID, model.DecisionRequestReview, "")
		require.NoError(t, err)
		assert.Equal(t, model.ApplicationStatusUnderReview, reviewed.Status)
		assert.Empty(t, sink.notifications())
	})

	t.Run("rejects decisions on a terminal application", func(t *testing.T) {
		app := testutil.NewApplication().WithStatus(model.ApplicationStatusRejected).Build()
		svc := newApplicationService(t, appServiceDeps{apps: newMockApplicationRepo(app)})

		_, err := svc.Review(context.Background(), app.ID, reviewerID, model.DecisionApprove, "")
		require.Error(t, err)
		assert.True(t, apperrors.IsInvalidStatus(err))
	})

	t.Run("rejects an unknown decision", func(t *testing.T) {
		app := testutil.NewApplication().Build()
		svc := newApplicationService(t, appServiceDeps{apps: newMockApplicationRepo(app)})

		_, err := svc.Review(context.Background(), app.ID, reviewerID, model.ReviewDecision("promote"), "")
		require.Error(t, err)
		assert.True(t, apperrors.IsValidation(err))
	})

	t.Run("rejects oversized review notes", func(t *testing.T) {
		app := testutil.NewApplication().Build()
		svc := newApplicationService(t, appServiceDeps{apps: newMockApplicationRepo(app)})

		notes := strings.Repeat("x", marketplaceConfig().MaxReviewNotesLen+1)
		_, err := svc.Review(context.Background(), app.ID, reviewerID, model.DecisionApprove, notes)
		require.Error(t, err)
		assert.True(t, apperrors.IsValidation(err))
		assert.Equal(t, "notes", apperrors.GetField(err))
	})
}

func TestApplicationService_Withdraw(t *testing.T) {
	t.Run("applicant withdraws an active application", func(t *testing.T) {
		app := testutil.NewApplication().Build()
		apps := newMockApplicationRepo(app)
		svc := newApplicationService(t, appServiceDeps{apps: apps})

		withdrawn, err := svc.Withdraw(context.Background(), app.ID, app.ApplicantID)
		require.NoError(t, err)
		assert.Equal(t, model.ApplicationStatusWithdrawn, withdrawn.Status)
		assert.Equal(t, model.LifecycleWithdrawn, withdrawn.Lifecycle)
	})

	t.Run("rejects withdrawal by another actor", func(t *testing.T) {
		app := testutil.NewApplication().Build()
		svc := newApplicationService(t, appServiceDeps{apps: newMockApplicationRepo(app)})

		_, err := svc.Withdraw(context.Background(), app.ID, "someone-else")
		require.Error(t, err)
		assert.True(t, apperrors.IsUnauthorized(err))
	})

	t.Run("rejects withdrawal of an approved application", func(t *testing.T) {
		app := testutil.NewApplication().WithStatus(model.ApplicationStatusApproved).Build()
		svc := newApplicationService(t, appServiceDeps{apps: newMockApplicationRepo(app)})

		_, err := svc.Withdraw(context.Background(), app.ID, app.ApplicantID)
		require.Error(t, err)
		assert.True(t, apperrors.IsInvalidStatus(err))
	})
}

func TestApplicationService_ScheduleInterview(t *testing.T) {
	t.Run("books a slot on an approved application", func(t *testing.T) {
		app := testutil.NewApplication().WithStatus(model.ApplicationStatusApproved).Build()
		apps := newMockApplicationRepo(app)
		sink := &captureSink{}
		svc := newApplicationService(t, appServiceDeps{apps: apps, sink: sink})

		at := testutil.TestTime().Add(48 * time.Hour)
		scheduled, err := svc.ScheduleInterview(context.Background(), app.ID, at, "HQ, room 4")
		require.NoError(t, err)
		require.NotNil(t, scheduled.InterviewAt)
		assert.Equal(t, at, *scheduled.InterviewAt)

		sent := sink.notifications()
		require.Len(t, sent, 1)
		assert.Equal(t, app.ApplicantID, sent[0].RecipientID)
	})

	t.Run("rejects scheduling on a submitted application", func(t *testing.T) {
		app := testutil.NewApplication().Build()
		svc := newApplicationService(t, appServiceDeps{apps: newMockApplicationRepo(app)})

		at := testutil.TestTime().Add(48 * time.Hour)
		_, err := svc.ScheduleInterview(context.Background(), app.ID, at, "HQ")
		require.Error(t, err)
		assert.True(t, apperrors.IsInvalidStatus(err))
	})

	t.Run("rejects a slot in the past", func(t *testing.T) {
		app := testutil.NewApplication().WithStatus(model.ApplicationStatusApproved).Build()
		svc := newApplicationService(t, appServiceDeps{apps: newMockApplicationRepo(app)})

		at := testutil.TestTime().Add(-time.Hour)
		_, err := svc.ScheduleInterview(context.Background(), app.ID, at, "HQ")
		require.Error(t, err)
		assert.True(t, apperrors.IsValidation(err))
	})
}
