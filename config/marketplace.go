package config

import "time"

// MarketplaceConfig contains domain guardrails for jobs and applications.
type MarketplaceConfig struct {
	// DefaultPostingTTL is applied on publish when a job has no explicit expiry.
	DefaultPostingTTL time.Duration `env:"MARKETPLACE_DEFAULT_POSTING_TTL" envDefault:"720h"`

	// MaxCoverLetterLen bounds cover letter length on application creation.
	MaxCoverLetterLen int `env:"MARKETPLACE_MAX_COVER_LETTER_LEN" envDefault:"4000"`

	// MaxReviewNotesLen bounds reviewer notes length on review transitions.
	MaxReviewNotesLen int `env:"MARKETPLACE_MAX_REVIEW_NOTES_LEN" envDefault:"2000"`

	// DefaultSearchLimit is applied when a search request omits a limit.
	DefaultSearchLimit int `env:"MARKETPLACE_DEFAULT_SEARCH_LIMIT" envDefault:"20"`

	// MaxSearchLimit caps the page size of job searches.
	MaxSearchLimit int `env:"MARKETPLACE_MAX_SEARCH_LIMIT" envDefault:"100"`
}

// Sanitize applies guardrails to marketplace configuration values.
func (m *MarketplaceConfig) Sanitize() {
	if m.DefaultPostingTTL <= 0 {
		m.DefaultPostingTTL = 720 * time.Hour
	}
	if m.MaxCoverLetterLen < 1 {
		m.MaxCoverLetterLen = 4000
	}
	if m.MaxReviewNotesLen < 1 {
		m.MaxReviewNotesLen = 2000
	}
	if m.DefaultSearchLimit < 1 {
		m.DefaultSearchLimit = 20
	}
	if m.MaxSearchLimit < m.DefaultSearchLimit {
		m.MaxSearchLimit = m.DefaultSearchLimit
	}
}
