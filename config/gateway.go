package config

import (
	"strings"
	"time"
)

// GatewayConfig contains recommendation gateway configuration.
// The gateway is an enhancement, never a correctness requirement; these
// settings control how aggressively calls are bounded and short-circuited.
type GatewayConfig struct {
	// BaseURL is the base URL of the external recommendation service.
	// When empty the gateway runs in permanent-fallback mode.
	BaseURL string `env:"GATEWAY_BASE_URL"`

	// Timeout bounds every outbound call to the recommendation service.
	Timeout time.Duration `env:"GATEWAY_TIMEOUT" envDefault:"2s"`

	// FailureThreshold is the number of consecutive failures that opens the circuit.
	FailureThreshold int `env:"GATEWAY_FAILURE_THRESHOLD" envDefault:"5"`

	// FailureRateThreshold opens the circuit when the failure rate over the
	// rolling window meets or exceeds this fraction (0 disables rate tripping).
	FailureRateThreshold float64 `env:"GATEWAY_FAILURE_RATE_THRESHOLD" envDefault:"0.5"`

	// WindowSize is the rolling window size (call count) for rate tripping.
	WindowSize int `env:"GATEWAY_WINDOW_SIZE" envDefault:"10"`

	// Cooldown is how long the circuit stays open before permitting a trial call.
	Cooldown time.Duration `env:"GATEWAY_COOLDOWN" envDefault:"30s"`

	// ScoreCacheTTL is the TTL for cached match scores in Redis.
	ScoreCacheTTL time.Duration `env:"GATEWAY_SCORE_CACHE_TTL" envDefault:"10m"`
}

// Sanitize applies guardrails to gateway configuration values.
func (g *GatewayConfig) Sanitize() {
	g.BaseURL = strings.TrimSpace(g.BaseURL)
	if g.Timeout <= 0 {
		g.Timeout = 2 * time.Second
	}
	if g.FailureThreshold < 1 {
		g.FailureThreshold = 1
	}
	if g.FailureRateThreshold < 0 || g.FailureRateThreshold > 1 {
		g.FailureRateThreshold = 0.5
	}
	if g.WindowSize < 1 {
		g.WindowSize = 10
	}
	if g.Cooldown <= 0 {
		g.Cooldown = 30 * time.Second
	}
	if g.ScoreCacheTTL <= 0 {
		g.ScoreCacheTTL = 10 * time.Minute
	}
}
