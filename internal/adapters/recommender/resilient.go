package recommender

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/hirewire/hirewire-api/config"
	"github.com/hirewire/hirewire-api/internal/core"
	"github.com/hirewire/hirewire-api/internal/domain/model"
	"github.com/hirewire/hirewire-api/internal/observability/metrics"
	"github.com/hirewire/hirewire-api/internal/observability/statsd"
)

// NeutralScore is the deterministic fallback when no score is available.
const NeutralScore = 50.0

const scoreCacheKeyPrefix = "recommender:score:"

// engineAPI is the inner client surface the gateway decorates.
type engineAPI interface {
	MatchScore(ctx context.Context, applicantID, jobID string) (float64, error)
	RecommendJobs(ctx context.Context, applicantID string, limit int) ([]model.Recommendation, error)
	NotifyApplication(ctx context.Context, applicantID, jobID, applicationID string) error
	NotifyView(ctx context.Context, applicantID, jobID string) error
}

// GatewayOptions groups dependencies for NewGateway.
type GatewayOptions struct {
	// Client is the inner engine client. When nil it is built from Config;
	// with an empty base URL the gateway runs in permanent-fallback mode.
	Client engineAPI
	// Cache holds last-known-good match scores. Optional.
	Cache core.CacheRepository

	Config  config.GatewayConfig
	Logger  *slog.Logger
	Metrics statsd.Sink
}

// Gateway decorates the engine client with a timeout, a circuit breaker, and
// deterministic fallbacks. Engine outages degrade results but never fail the
// calling workflow, so every method returns a usable value with a nil error
// when the engine is unreachable.
type Gateway struct {
	client  engineAPI
	cache   core.CacheRepository
	breaker *Breaker

	timeout  time.Duration
	scoreTTL time.Duration
	logger   *slog.Logger
	metrics  statsd.Sink
}

var _ core.Recommender = (*Gateway)(nil)

// NewGateway constructs the resilient gateway.
func NewGateway(opts GatewayOptions) (*Gateway, error) {
	client := opts.Client
	if client == nil && opts.Config.BaseURL != "" {
		c, err := NewClient(ClientConfig{
			BaseURL: opts.Config.BaseURL,
			Timeout: opts.Config.Timeout,
		})
		if err != nil {
			return nil, err
		}
		client = c
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "recommender_gateway")
	} else {
		logger = slog.Default().With("component", "recommender_gateway")
	}

	if client == nil {
		logger.Warn("recommendation engine not configured, running in fallback mode")
	}

	timeout := opts.Config.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	scoreTTL := opts.Config.ScoreCacheTTL
	if scoreTTL <= 0 {
		scoreTTL = 10 * time.Minute
	}

	return &Gateway{
		client: client,
		cache:  opts.Cache,
		breaker: NewBreaker(BreakerConfig{
			FailureThreshold:     opts.Config.FailureThreshold,
			FailureRateThreshold: opts.Config.FailureRateThreshold,
			WindowSize:           opts.Config.WindowSize,
			Cooldown:             opts.Config.Cooldown,
		}),
		timeout:  timeout,
		scoreTTL: scoreTTL,
		logger:   logger,
		metrics:  opts.Metrics,
	}, nil
}

// BreakerState exposes the breaker state for health reporting.
func (g *Gateway) BreakerState() BreakerState {
	return g.breaker.State()
}

// MatchScore returns the engine's score for an applicant against a job. When
// the engine is unavailable it falls back to the last cached score for the
// pair, then to the neutral score.
func (g *Gateway) MatchScore(ctx context.Context, applicantID, jobID string) (float64, error) {
	if g.client == nil || !g.breaker.Allow() {
		g.emit("match_score", metrics.ResultNoop)
		return g.cachedScore(ctx, applicantID, jobID), nil
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	score, err := g.client.MatchScore(callCtx, applicantID, jobID)
	if err != nil {
		g.breaker.RecordFailure()
		g.emit("match_score", metrics.ResultError)
		g.logger.WarnContext(ctx, "match score call failed, using fallback",
			"applicant_id", applicantID, "job_id", jobID, "error", err)
		return g.cachedScore(ctx, applicantID, jobID), nil
	}

	g.breaker.RecordSuccess()
	g.emit("match_score", metrics.ResultSuccess)
	g.storeScore(ctx, applicantID, jobID, score)
	return score, nil
}

// RecommendJobs returns recommendations for an applicant, or an empty list
// when the engine is unavailable.
func (g *Gateway) RecommendJobs(
	ctx context.Context,
	applicantID string,
	limit int,
) ([]model.Recommendation, error) {
	if g.client == nil || !g.breaker.Allow() {
		g.emit("recommend_jobs", metrics.ResultNoop)
		return []model.Recommendation{}, nil
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	recs, err := g.client.RecommendJobs(callCtx, applicantID, limit)
	if err != nil {
		g.breaker.RecordFailure()
		g.emit("recommend_jobs", metrics.ResultError)
		g.logger.WarnContext(ctx, "recommendations call failed, returning empty list",
			"applicant_id", applicantID, "error", err)
		return []model.Recommendation{}, nil
	}

	g.breaker.RecordSuccess()
	g.emit("recommend_jobs", metrics.ResultSuccess)
	if recs == nil {
		recs = []model.Recommendation{}
	}
	return recs, nil
}

// NotifyApplication reports a new application to the engine. Failures are
// logged and dropped; the engine rebuilds its signals from later events.
func (g *Gateway) NotifyApplication(ctx context.Context, applicantID, jobID, applicationID string) error {
	if g.client == nil || !g.breaker.Allow() {
		g.emit("notify_application", metrics.ResultNoop)
		return nil
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	if err := g.client.NotifyApplication(callCtx, applicantID, jobID, applicationID); err != nil {
		g.breaker.RecordFailure()
		g.emit("notify_application", metrics.ResultError)
		g.logger.WarnContext(ctx, "application event dropped",
			"applicant_id", applicantID, "job_id", jobID, "application_id", applicationID, "error", err)
		return nil
	}

	g.breaker.RecordSuccess()
	g.emit("notify_application", metrics.ResultSuccess)
	return nil
}

// NotifyView reports a job view to the engine. Failures are logged and
// dropped like application events.
func (g *Gateway) NotifyView(ctx context.Context, applicantID, jobID string) error {
	if g.client == nil || !g.breaker.Allow() {
		g.emit("notify_view", metrics.ResultNoop)
		return nil
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	if err := g.client.NotifyView(callCtx, applicantID, jobID); err != nil {
		g.breaker.RecordFailure()
		g.emit("notify_view", metrics.ResultError)
		g.logger.WarnContext(ctx, "view event dropped",
			"applicant_id", applicantID, "job_id", jobID, "error", err)
		return nil
	}

	g.breaker.RecordSuccess()
	g.emit("notify_view", metrics.ResultSuccess)
	return nil
}

func (g *Gateway) cachedScore(ctx context.Context, applicantID, jobID string) float64 {
	if g.cache == nil {
		return NeutralScore
	}

	raw, err := g.cache.Get(ctx, scoreCacheKey(applicantID, jobID))
	if err != nil || len(raw) == 0 {
		return NeutralScore
	}
	score, err := strconv.ParseFloat(string(raw), 64)
	if err != nil {
		return NeutralScore
	}
	return score
}

func (g *Gateway) storeScore(ctx context.Context, applicantID, jobID string, score float64) {
	if g.cache == nil {
		return
	}

	value := strconv.FormatFloat(score, 'f', -1, 64)
	if err := g.cache.Set(ctx, scoreCacheKey(applicantID, jobID), []byte(value), g.scoreTTL); err != nil {
		g.logger.DebugContext(ctx, "score cache write failed", "error", err)
	}
}

func (g *Gateway) emit(op, result string) {
	if g.metrics == nil {
		return
	}
	g.metrics.Count("gateway.call", 1, map[string]string{
		"op":     op,
		"result": result,
		"state":  string(g.breaker.State()),
	})
}

func scoreCacheKey(applicantID, jobID string) string {
	return scoreCacheKeyPrefix + applicantID + ":" + jobID
}
