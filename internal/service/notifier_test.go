package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hirewire/hirewire-api/internal/domain/model"
	"github.com/hirewire/hirewire-api/internal/observability/notify"
)

func TestNotifier_FansOutToAllSinks(t *testing.T) {
	var mu sync.Mutex
	received := map[string]int{}
	sink := func(name string) notify.Sink {
		return notify.SinkFunc(func(ctx context.Context, n model.Notification) error {
			mu.Lock()
			defer mu.Unlock()
			received[name]++
			return nil
		})
	}

	n := NewNotifier(NotifierOptions{
		Sinks: []SinkRegistration{
			{Name: "webhook", Sink: sink("webhook")},
			{Name: "audit", Sink: sink("audit")},
		},
	})

	err := n.Send(context.Background(), model.Notification{
		RecipientID: "poster-1",
		TemplateKey: notify.TemplateJobExpiryReminder,
	})
	require.NoError(t, err)
	n.Close()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, received["webhook"])
	assert.Equal(t, 1, received["audit"])
}

func TestNotifier_SurvivesCallerCancellation(t *testing.T) {
	delivered := make(chan struct{})
	n := NewNotifier(NotifierOptions{
		Sinks: []SinkRegistration{{
			Name: "capture",
			Sink: notify.SinkFunc(func(ctx context.Context, _ model.Notification) error {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				close(delivered)
				return nil
			}),
		}},
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, n.Send(ctx, model.Notification{RecipientID: "r"}))
	n.Close()

	select {
	case <-delivered:
	default:
		t.Fatal("delivery should proceed despite the cancelled caller context")
	}
}

func TestNotifier_SinkErrorsAreSwallowed(t *testing.T) {
	n := NewNotifier(NotifierOptions{
		Sinks: []SinkRegistration{{
			Name: "fail",
			Sink: notify.SinkFunc(func(ctx context.Context, _ model.Notification) error {
				return errors.New("boom")
			}),
		}},
	})

	assert.NoError(t, n.Send(context.Background(), model.Notification{RecipientID: "r"}))
	n.Close()
}

func TestNotifier_Disabled(t *testing.T) {
	n := NewNotifier(NotifierOptions{})
	assert.False(t, n.Enabled())
	assert.NoError(t, n.Send(context.Background(), model.Notification{RecipientID: "r"}))
}

func TestNotifier_SkipsMissingRecipient(t *testing.T) {
	var called bool
	n := NewNotifier(NotifierOptions{
		Sinks: []SinkRegistration{{
			Name: "capture",
			Sink: notify.SinkFunc(func(ctx context.Context, _ model.Notification) error {
				called = true
				return nil
			}),
		}},
	})

	require.NoError(t, n.Send(context.Background(), model.Notification{}))
	n.Close()
	assert.False(t, called)
}
