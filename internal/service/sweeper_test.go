package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hirewire/hirewire-api/config"
	"github.com/hirewire/hirewire-api/internal/core"
	"github.com/hirewire/hirewire-api/internal/domain/model"
	"github.com/hirewire/hirewire-api/internal/observability/notify"
)

// mockSweeperRepo is a simple mock implementation for testing.
type mockSweeperRepo struct {
	expireCalled int
	expireCount  int64
	expireError  error

	listCalled    int
	expiringJobs  []*model.Job
	expiringError error
}

func (m *mockSweeperRepo) ExpireDueJobs(
	ctx context.Context,
	params core.ExpireDueJobsParams,
) (int64, error) {
	m.expireCalled++
	if m.expireError != nil {
		return 0, m.expireError
	}
	// Return count on first call, then 0 to simulate batch exhaustion
	if m.expireCalled == 1 {
		return m.expireCount, nil
	}
	return 0, nil
}

func (m *mockSweeperRepo) ListExpiringBetween(
	ctx context.Context,
	params core.ExpiringWindowParams,
) ([]*model.Job, error) {
	m.listCalled++
	if m.expiringError != nil {
		return nil, m.expiringError
	}
	return m.expiringJobs, nil
}

// captureSink records sent notifications for assertions.
type captureSink struct {
	mu   sync.Mutex
	sent []model.Notification
	err  error
}

func (c *captureSink) Send(ctx context.Context, n model.Notification) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.sent = append(c.sent, n)
	return nil
}

func (c *captureSink) notifications() []model.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.Notification, len(c.sent))
	copy(out, c.sent)
	return out
}

func sweeperConfig() config.SweeperConfig {
	cfg := config.SweeperConfig{
		Interval:            time.Minute,
		BatchSize:           100,
		ReminderWindowFrom:  72 * time.Hour,
		ReminderWindowTo:    96 * time.Hour,
		ReminderBatchLimit:  1000,
		DispatchConcurrency: 4,
		SweepTimeout:        time.Minute,
	}
	return cfg
}

func TestNewSweeperService(t *testing.T) {
	t.Run("creates service with valid options", func(t *testing.T) {
		svc, err := NewSweeperService(SweeperServiceOptions{
			Repo:          &mockSweeperRepo{},
			Config:        sweeperConfig(),
			Logger:        slog.Default(),
			ExpireEnabled: true,
		})
		require.NoError(t, err)
		assert.NotNil(t, svc)
	})

	t.Run("returns error when repo is nil", func(t *testing.T) {
		_, err := NewSweeperService(SweeperServiceOptions{Config: sweeperConfig()})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "SweeperRepository is required")
	})

	t.Run("returns error when reminders enabled without notifier", func(t *testing.T) {
		_, err := NewSweeperService(SweeperServiceOptions{
			Repo:          &mockSweeperRepo{},
			Config:        sweeperConfig(),
			RemindEnabled: true,
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "NotificationSink is required")
	})
}

func TestSweeperService_ExpireSweep(t *testing.T) {
	t.Run("expires due jobs in batches", func(t *testing.T) {
		repo := &mockSweeperRepo{expireCount: 42}
		svc, err := NewSweeperService(SweeperServiceOptions{
			Repo:          repo,
			Config:        sweeperConfig(),
			ExpireEnabled: true,
		})
		require.NoError(t, err)

		count, err := svc.expireDueJobs(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int64(42), count)
		// First batch returns rows, second returns 0 and stops the loop.
		assert.Equal(t, 2, repo.expireCalled)
	})

	t.Run("propagates repository errors", func(t *testing.T) {
		repo := &mockSweeperRepo{expireError: errors.New("database unavailable")}
		svc, err := NewSweeperService(SweeperServiceOptions{
			Repo:          repo,
			Config:        sweeperConfig(),
			ExpireEnabled: true,
		})
		require.NoError(t, err)

		sweepErr := svc.runSweep(context.Background())
		require.Error(t, sweepErr)
		assert.Contains(t, sweepErr.Error(), "expire due jobs")
	})

	t.Run("second sweep is a noop once backlog is drained", func(t *testing.T) {
		repo := &mockSweeperRepo{expireCount: 5}
		svc, err := NewSweeperService(SweeperServiceOptions{
			Repo:          repo,
			Config:        sweeperConfig(),
			ExpireEnabled: true,
		})
		require.NoError(t, err)

		count, err := svc.expireDueJobs(context.Background())
		require.NoError(t, err)
		require.Equal(t, int64(5), count)

		count, err = svc.expireDueJobs(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int64(0), count)
	})
}

func TestSweeperService_ReminderSweep(t *testing.T) {
	expires := time.Now().Add(80 * time.Hour)
	expiringJobs := []*model.Job{
		{ID: "job-1", PosterID: "poster-1", Title: "Backend Engineer", ExpiresAt: &expires},
		{ID: "job-2", PosterID: "poster-2", Title: "Data Engineer", ExpiresAt: &expires},
	}

	t.Run("sends one reminder per expiring job", func(t *testing.T) {
		repo := &mockSweeperRepo{expiringJobs: expiringJobs}
		sink := &captureSink{}
		svc, err := NewSweeperService(SweeperServiceOptions{
			Repo:          repo,
			Config:        sweeperConfig(),
			Notifier:      sink,
			RemindEnabled: true,
		})
		require.NoError(t, err)

		count, err := svc.sendExpiryReminders(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)

		sent := sink.notifications()
		require.Len(t, sent, 2)
		recipients := map[string]bool{}
		for _, n := range sent {
			assert.Equal(t, notify.TemplateJobExpiryReminder, n.TemplateKey)
			recipients[n.RecipientID] = true
		}
		assert.True(t, recipients["poster-1"])
		assert.True(t, recipients["poster-2"])
	})

	t.Run("delivery failures do not fail the sweep", func(t *testing.T) {
		repo := &mockSweeperRepo{expiringJobs: expiringJobs}
		sink := &captureSink{err: errors.New("webhook down")}
		svc, err := NewSweeperService(SweeperServiceOptions{
			Repo:          repo,
			Config:        sweeperConfig(),
			Notifier:      sink,
			RemindEnabled: true,
		})
		require.NoError(t, err)

		_, err = svc.sendExpiryReminders(context.Background())
		assert.NoError(t, err)
	})

	t.Run("empty window is a noop", func(t *testing.T) {
		repo := &mockSweeperRepo{}
		sink := &captureSink{}
		svc, err := NewSweeperService(SweeperServiceOptions{
			Repo:          repo,
			Config:        sweeperConfig(),
			Notifier:      sink,
			RemindEnabled: true,
		})
		require.NoError(t, err)

		count, err := svc.sendExpiryReminders(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int64(0), count)
		assert.Empty(t, sink.notifications())
	})
}

func TestSweeperService_Run(t *testing.T) {
	t.Run("stops cleanly on context cancellation", func(t *testing.T) {
		repo := &mockSweeperRepo{}
		cfg := sweeperConfig()
		cfg.Interval = 10 * time.Millisecond
		svc, err := NewSweeperService(SweeperServiceOptions{
			Repo:          repo,
			Config:        cfg,
			ExpireEnabled: true,
		})
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- svc.Run(ctx) }()

		time.Sleep(50 * time.Millisecond)
		cancel()

		select {
		case runErr := <-done:
			assert.NoError(t, runErr, "graceful shutdown must not report an error")
		case <-time.After(2 * time.Second):
			t.Fatal("sweeper did not stop after cancellation")
		}
		assert.GreaterOrEqual(t, repo.expireCalled, 1)
	})
}
