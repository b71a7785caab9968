package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/hirewire/hirewire-api/internal/domain/model"
	apperrors "github.com/hirewire/hirewire-api/internal/errors"
	"github.com/hirewire/hirewire-api/internal/mocks"
)

func TestJobService_Recommendations_PassesThrough(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	rec := mocks.NewMockRecommender(ctrl)
	recs := []model.Recommendation{
		{JobID: "job-1", Score: 91.0},
		{JobID: "job-2", Score: 75.5},
	}
	rec.EXPECT().
		RecommendJobs(gomock.Any(), "applicant-1", 5).
		Return(recs, nil)

	svc, err := NewJobService(JobServiceOptions{
		Jobs:        mocks.NewMockJobRepository(ctrl),
		Categories:  mocks.NewMockCategoryRepository(ctrl),
		Recommender: rec,
		Config:      marketplaceConfig(),
	})
	require.NoError(t, err)

	got, err := svc.Recommendations(context.Background(), "applicant-1", 5)
	require.NoError(t, err)
	assert.Equal(t, recs, got)
}

func TestJobService_Recommendations_DefaultsLimit(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	cfg := marketplaceConfig()
	rec := mocks.NewMockRecommender(ctrl)
	rec.EXPECT().
		RecommendJobs(gomock.Any(), "applicant-1", cfg.DefaultSearchLimit).
		Return([]model.Recommendation{}, nil)

	svc, err := NewJobService(JobServiceOptions{
		Jobs:        mocks.NewMockJobRepository(ctrl),
		Categories:  mocks.NewMockCategoryRepository(ctrl),
		Recommender: rec,
		Config:      cfg,
	})
	require.NoError(t, err)

	_, err = svc.Recommendations(context.Background(), "applicant-1", 0)
	require.NoError(t, err)
}

func TestJobService_Recommendations_NoGateway(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, err := NewJobService(JobServiceOptions{
		Jobs:       mocks.NewMockJobRepository(ctrl),
		Categories: mocks.NewMockCategoryRepository(ctrl),
		Config:     marketplaceConfig(),
	})
	require.NoError(t, err)

	got, err := svc.Recommendations(context.Background(), "applicant-1", 5)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestApplicationService_MatchScore_QueriesGateway(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	apps := mocks.NewMockApplicationRepository(ctrl)
	apps.EXPECT().
		GetByID(gomock.Any(), "app-1").
		Return(&model.Application{
			ID:          "app-1",
			JobID:       "job-1",
			ApplicantID: "applicant-1",
			Status:      model.ApplicationStatusUnderReview,
		}, nil)

	rec := mocks.NewMockRecommender(ctrl)
	rec.EXPECT().
		MatchScore(gomock.Any(), "applicant-1", "job-1").
		Return(82.5, nil)

	svc, err := NewApplicationService(ApplicationServiceOptions{
		Applications: apps,
		Jobs:         mocks.NewMockJobRepository(ctrl),
		Recommender:  rec,
		Config:       marketplaceConfig(),
	})
	require.NoError(t, err)

	score, err := svc.MatchScore(context.Background(), "app-1")
	require.NoError(t, err)
	assert.InDelta(t, 82.5, score, 0.001)
}

func TestApplicationService_MatchScore_NoGateway(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	apps := mocks.NewMockApplicationRepository(ctrl)
	apps.EXPECT().
		GetByID(gomock.Any(), "app-1").
		Return(&model.Application{ID: "app-1"}, nil)

	svc, err := NewApplicationService(ApplicationServiceOptions{
		Applications: apps,
		Jobs:         mocks.NewMockJobRepository(ctrl),
		Config:       marketplaceConfig(),
	})
	require.NoError(t, err)

	_, err = svc.MatchScore(context.Background(), "app-1")
	require.Error(t, err)
	assert.True(t, apperrors.IsInternal(err))
}
