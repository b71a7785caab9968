package model

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Category is a curated taxonomy entry jobs are posted under.
type Category struct {
	ID        string    `json:"id"         db:"id"`
	Slug      string    `json:"slug"       db:"slug"`
	Name      string    `json:"name"       db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// CreateCategoryRequest represents a request to add a category.
type CreateCategoryRequest struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
}

var reCategorySlug = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

const maxCategoryNameLen = 100

// Validate validates the CreateCategoryRequest fields.
func (r *CreateCategoryRequest) Validate() error {
	if !reCategorySlug.MatchString(r.Slug) {
		return errors.New("slug must be lowercase letters, digits, and hyphens")
	}
	name := strings.TrimSpace(r.Name)
	if name == "" {
		return errors.New("name is required")
	}
	if len(name) > maxCategoryNameLen {
		return fmt.Errorf("name must be at most %d characters", maxCategoryNameLen)
	}
	return nil
}
