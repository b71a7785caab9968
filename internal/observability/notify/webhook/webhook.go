// Package webhook delivers recipient notifications to a generic HTTP endpoint.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	jmespath "github.com/jmespath-community/go-jmespath"

	"github.com/hirewire/hirewire-api/config"
	"github.com/hirewire/hirewire-api/internal/domain/model"
	"github.com/hirewire/hirewire-api/internal/observability/notify"
)

// JMESPathEvaluator abstracts JMESPath operations for testability.
type JMESPathEvaluator interface {
	Validate(expr string) error
	Evaluate(expr string, data any) (any, error)
}

// jmespathLibEvaluator implements JMESPathEvaluator using go-jmespath.
type jmespathLibEvaluator struct{}

func (j jmespathLibEvaluator) Validate(expr string) error {
	if strings.TrimSpace(expr) == "" {
		return nil
	}
	_, err := jmespath.Compile(expr)
	return err
}

func (j jmespathLibEvaluator) Evaluate(expr string, data any) (any, error) {
	return jmespath.Search(expr, data)
}

// Options groups dependencies for NewSink.
type Options struct {
	Config     config.WebhookNotificationConfig
	Timeout    time.Duration
	RetryLimit int
	HTTPClient *http.Client
	Evaluator  JMESPathEvaluator
	Logger     *slog.Logger
}

// Sink posts notifications to a configured webhook URL as JSON.
// Extra body fields are derived from the notification payload via the
// configured JMESPath field expressions.
type Sink struct {
	cfg        config.WebhookNotificationConfig
	timeout    time.Duration
	retryLimit int
	client     *http.Client
	jems       JMESPathEvaluator
	logger     *slog.Logger
}

var _ notify.Sink = (*Sink)(nil)

// NewSink validates the webhook configuration and constructs the sink.
func NewSink(opts Options) (*Sink, error) {
	if err := validateURL(opts.Config.URL); err != nil {
		return nil, err
	}
	for field, expr := range opts.Config.FieldExprs {
		if strings.TrimSpace(field) == "" {
			return nil, errors.New("webhook field expression has empty field name")
		}
		evaluator := opts.Evaluator
		if evaluator == nil {
			evaluator = jmespathLibEvaluator{}
		}
		if err := evaluator.Validate(expr); err != nil {
			return nil, fmt.Errorf("invalid JMESPath for field %q: %w", field, err)
		}
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}

	evaluator := opts.Evaluator
	if evaluator == nil {
		evaluator = jmespathLibEvaluator{}
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Sink{
		cfg:        opts.Config,
		timeout:    timeout,
		retryLimit: max(opts.RetryLimit, 0),
		client:     client,
		jems:       evaluator,
		logger:     logger.With("component", "webhook_sink"),
	}, nil
}

func validateURL(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid webhook URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid webhook URL scheme: %s", u.Scheme)
	}
	if strings.TrimSpace(u.Host) == "" {
		return errors.New("invalid webhook URL: missing host")
	}
	return nil
}

// Send delivers a single notification, retrying transient failures up to the
// configured retry limit.
func (s *Sink) Send(ctx context.Context, n model.Notification) error {
	body, err := s.buildBody(n)
	if err != nil {
		return err
	}

	var lastErr error
	for attempt := 0; attempt <= s.retryLimit; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * 250 * time.Millisecond):
			}
		}

		lastErr = s.post(ctx, body)
		if lastErr == nil {
			return nil
		}
		s.logger.DebugContext(ctx, "webhook delivery attempt failed",
			"attempt", attempt+1, "template", n.TemplateKey, "error", lastErr)
	}
	return fmt.Errorf("webhook delivery failed after %d attempts: %w", s.retryLimit+1, lastErr)
}

func (s *Sink) buildBody(n model.Notification) ([]byte, error) {
	body := map[string]any{
		"source":       s.cfg.Source,
		"recipient_id": n.RecipientID,
		"template_key": n.TemplateKey,
		"payload":      n.Payload,
	}

	// Evaluate configured field expressions in a stable order so failures
	// are deterministic.
	fields := make([]string, 0, len(s.cfg.FieldExprs))
	for field := range s.cfg.FieldExprs {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	var data any = n.Payload
	for _, field := range fields {
		expr := s.cfg.FieldExprs[field]
		if strings.TrimSpace(expr) == "" {
			continue
		}
		val, err := s.jems.Evaluate(expr, data)
		if err != nil {
			return nil, fmt.Errorf("evaluate field %q: %w", field, err)
		}
		body[field] = val
	}

	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal webhook body: %w", err)
	}
	return b, nil
}

func (s *Sink) post(ctx context.Context, body []byte) error {
	reqCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, s.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
