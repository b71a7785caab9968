package model

import "strings"

// Sort keys accepted by job search. Anything else falls back to the default.
const (
	SortPublishedAt = "published_at"
	SortExpiresAt   = "expires_at"
	SortSalaryMax   = "salary_max"
	SortCreatedAt   = "created_at"

	SortAsc  = "asc"
	SortDesc = "desc"
)

var searchSortKeys = map[string]bool{
	SortPublishedAt: true,
	SortExpiresAt:   true,
	SortSalaryMax:   true,
	SortCreatedAt:   true,
}

// JobSearchOptions filters and pages the published-job search. Zero values
// mean "no filter". Only published jobs are ever returned by a search.
type JobSearchOptions struct {
	Keyword          string
	CategoryID       string
	Employment       *EmploymentType
	WorkMode         *WorkMode
	Location         string
	SalaryMin        *int
	SalaryMax        *int
	PostedWithinDays int
	FeaturedOnly     bool
	UrgentOnly       bool
	// RemoteOnly is shorthand for WorkMode=remote.
	RemoteOnly bool

	SortBy    string
	SortOrder string
	Limit     int
	Offset    int
}

// Normalize clamps paging to the marketplace bounds and resolves the sort key
// against the allowlist. Unknown sort keys fall back to published_at desc.
func (o *JobSearchOptions) Normalize(defaultLimit, maxLimit int) {
	if o.Limit <= 0 {
		o.Limit = defaultLimit
	}
	if o.Limit > maxLimit {
		o.Limit = maxLimit
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
	if o.PostedWithinDays < 0 {
		o.PostedWithinDays = 0
	}
	if o.RemoteOnly && o.WorkMode == nil {
		remote := WorkModeRemote
		o.WorkMode = &remote
	}

	o.SortBy = strings.ToLower(strings.TrimSpace(o.SortBy))
	if !searchSortKeys[o.SortBy] {
		o.SortBy = SortPublishedAt
	}
	o.SortOrder = strings.ToLower(strings.TrimSpace(o.SortOrder))
	if o.SortOrder != SortAsc && o.SortOrder != SortDesc {
		o.SortOrder = SortDesc
	}
}
