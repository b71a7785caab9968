// Package mocks provides mock implementations for testing the hirewire marketplace.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for our repository interfaces.
// The mocks are generated using go:generate directives and provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	mockRec := mocks.NewMockRecommender(ctrl)
//	mockRec.EXPECT().MatchScore(gomock.Any(), "applicant-1", "job-1").Return(82.5, nil)
package mocks

// Generate mock for JobRepository interface from internal/core package.
// This creates MockJobRepository with methods for all JobRepository interface methods:
// Create, GetByID, Update, UpdateStatus, Search, CountSearch, ListByPoster, Stats, RecordView
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=job_repository_mock.go github.com/hirewire/hirewire-api/internal/core JobRepository

// Generate mock for ApplicationRepository interface from internal/core package.
// This creates MockApplicationRepository with methods for all ApplicationRepository interface methods:
// Create, GetByID, Update, ListByJob, ListByApplicant, Stats
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=application_repository_mock.go github.com/hirewire/hirewire-api/internal/core ApplicationRepository

// Generate mock for CategoryRepository interface from internal/core package.
// This creates MockCategoryRepository with methods for all CategoryRepository interface methods:
// Create, GetByID, GetBySlug, List, Exists
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=category_repository_mock.go github.com/hirewire/hirewire-api/internal/core CategoryRepository

// Generate mock for SweeperRepository interface from internal/core package.
// This creates MockSweeperRepository with methods for all SweeperRepository interface methods:
// ExpireDueJobs, ListExpiringBetween
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=sweeper_repository_mock.go github.com/hirewire/hirewire-api/internal/core SweeperRepository

// Generate mock for Recommender interface from internal/core package.
// This creates MockRecommender with methods for all Recommender interface methods:
// MatchScore, RecommendJobs, NotifyApplication, NotifyView
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=recommender_mock.go github.com/hirewire/hirewire-api/internal/core Recommender
