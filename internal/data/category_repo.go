package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/hirewire/hirewire-api/internal/core"
	"github.com/hirewire/hirewire-api/internal/domain/model"
	apperrors "github.com/hirewire/hirewire-api/internal/errors"
)

// CategoryRepo provides database operations for the category taxonomy.
type CategoryRepo struct {
	DB *sql.DB
}

var _ core.CategoryRepository = (*CategoryRepo)(nil)

// NewCategoryRepo creates a new CategoryRepo with the given database connection.
func NewCategoryRepo(db *sql.DB) *CategoryRepo {
	return &CategoryRepo{DB: db}
}

const categoryColumns = ` id, slug, name, created_at `

func scanCategory(row rowScanner) (*model.Category, error) {
	var c model.Category
	if err := row.Scan(&c.ID, &c.Slug, &c.Name, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a new category.
func (r *CategoryRepo) Create(
	ctx context.Context,
	req *model.CreateCategoryRequest,
) (*model.Category, error) {
	if req == nil {
		return nil, errors.New("create category request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid category")
	}

	row := r.DB.QueryRowContext(ctx, `
		INSERT INTO categories (slug, name)
		VALUES ($1, $2)
		RETURNING`+categoryColumns,
		req.Slug, strings.TrimSpace(req.Name))

	category, err := scanCategory(row)
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return category, nil
}

// GetByID retrieves a category by its ID.
func (r *CategoryRepo) GetByID(ctx context.Context, id string) (*model.Category, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT`+categoryColumns+`FROM categories WHERE id = $1`, id)
	category, err := scanCategory(row)
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return category, nil
}

// GetBySlug retrieves a category by its slug.
func (r *CategoryRepo) GetBySlug(ctx context.Context, slug string) (*model.Category, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT`+categoryColumns+`FROM categories WHERE slug = $1`, slug)
	category, err := scanCategory(row)
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return category, nil
}

// List returns all categories ordered by name.
func (r *CategoryRepo) List(ctx context.Context) ([]*model.Category, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT`+categoryColumns+`FROM categories ORDER BY name`)
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	defer rows.Close()

	var categories []*model.Category
	for rows.Next() {
		category, scanErr := scanCategory(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scan category: %w", scanErr)
		}
		categories = append(categories, category)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return categories, nil
}

// Exists reports whether a category with the given ID exists.
func (r *CategoryRepo) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM categories WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, apperrors.MapDBError(err)
	}
	return exists, nil
}
