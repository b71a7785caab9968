package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/hirewire/hirewire-api/internal/core"
	"github.com/hirewire/hirewire-api/internal/domain/model"
	"github.com/hirewire/hirewire-api/internal/observability/notify"
)

// SinkRegistration pairs a sink implementation with a human-readable name for logging.
type SinkRegistration struct {
	Name string
	Sink notify.Sink
}

// NotifierOptions configures the notifier service.
type NotifierOptions struct {
	Logger *slog.Logger
	Sinks  []SinkRegistration

	// Timeout bounds each delivery attempt. Defaults to 5s.
	Timeout time.Duration
}

// Notifier fans notifications out to all registered sinks without blocking
// the caller. Deliveries survive cancellation of the triggering request
// context; failures are logged, never returned.
type Notifier struct {
	logger  *slog.Logger
	sinks   []SinkRegistration
	timeout time.Duration
	wg      sync.WaitGroup
}

var _ core.NotificationSink = (*Notifier)(nil)

// NewNotifier constructs a notifier, skipping nil sinks.
func NewNotifier(opts NotifierOptions) *Notifier {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "notifier")

	var sinks []SinkRegistration
	for _, entry := range opts.Sinks {
		if entry.Sink == nil {
			continue
		}
		name := entry.Name
		if name == "" {
			name = "sink"
		}
		sinks = append(sinks, SinkRegistration{Name: name, Sink: entry.Sink})
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &Notifier{
		logger:  logger,
		sinks:   sinks,
		timeout: timeout,
	}
}

// Enabled reports whether the notifier has any active sinks.
func (n *Notifier) Enabled() bool {
	return len(n.sinks) > 0
}

// Send dispatches the notification to all sinks asynchronously and returns
// immediately. The delivery context is detached from the caller's so that
// request completion or rollback never cancels an in-flight notification.
func (n *Notifier) Send(ctx context.Context, notification model.Notification) error {
	if len(n.sinks) == 0 || notification.RecipientID == "" {
		return nil
	}

	detached := context.WithoutCancel(ctx)
	for _, entry := range n.sinks {
		entry := entry
		n.wg.Add(1)
		go func() {
			defer n.wg.Done()
			n.deliver(detached, entry, notification)
		}()
	}
	return nil
}

func (n *Notifier) deliver(ctx context.Context, entry SinkRegistration, notification model.Notification) {
	sendCtx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	if err := entry.Sink.Send(sendCtx, notification); err != nil {
		n.logger.Error("notification delivery error",
			"sink", entry.Name,
			"recipient_id", notification.RecipientID,
			"template_key", notification.TemplateKey,
			"error", err,
		)
	}
}

// Close waits for in-flight deliveries to finish. Call during shutdown after
// the services stop producing notifications.
func (n *Notifier) Close() {
	n.wg.Wait()
}
