package storage

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"newsdigest/internal/domain"
	"newsdigest/internal/ports"
)

const insertCategorySQL = `
INSERT INTO categories (mission_id, name, normalized_name)
VALUES ($1, $2, $3)
ON CONFLICT (mission_id, normalized_name) DO NOTHING
RETURNING id`

const selectCategorySQL = `SELECT id FROM categories WHERE mission_id = $1 AND normalized_name = $2`

// resolveAttempts bounds the insert-or-fetch loop. A second pass only happens
// when the conflicting row was rolled back between our insert and select.
const resolveAttempts = 2

// CategoryRepository resolves free-form labels to stable mission-scoped ids.
type CategoryRepository struct {
	db *DB
}

var _ ports.CategoryRepository = (*CategoryRepository)(nil)

// NewCategoryRepository wires a pgx implementation of the category store.
func NewCategoryRepository(db *DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// Resolve returns the id for name, creating the category on first sight.
// Names differing only in case or surrounding whitespace share one id.
func (r *CategoryRepository) Resolve(ctx context.Context, missionID, name string) (int64, error) {
	display := domain.CleanCategoryName(name)
	key := domain.NormalizeCategoryName(name)
	if key == "" {
		return 0, domain.NewValidationError("category", "required")
	}

	exec := r.db.executor(ctx)
	for attempt := 0; attempt < resolveAttempts; attempt++ {
		var id int64
		err := exec.QueryRow(ctx, insertCategorySQL, missionID, display, key).Scan(&id)
		if err == nil {
			return id, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) && !isUniqueViolation(err) {
			return 0, fmt.Errorf("insert category %q: %w", display, err)
		}

		err = exec.QueryRow(ctx, selectCategorySQL, missionID, key).Scan(&id)
		if err == nil {
			return id, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("select category %q: %w", display, err)
		}
	}
	return 0, fmt.Errorf("resolve category %q: conflicting row disappeared", display)
}

// List returns the mission's categories, or only those with archived
// articles inside rng when a bound is set.
func (r *CategoryRepository) List(ctx context.Context, missionID string, rng domain.DateRange) ([]domain.Category, error) {
	var q sq.SelectBuilder
	if rng.IsZero() {
		q = psql.Select("c.id", "c.name").
			From("categories c").
			Where(sq.Eq{"c.mission_id": missionID})
	} else {
		q = psql.Select("DISTINCT c.id", "c.name").
			From("categories c").
			Join("articles a ON a.category_id = c.id").
			Where(sq.Eq{"c.mission_id": missionID})
		q = whereArchivedWithin(q, rng)
	}
	q = q.OrderBy("c.name")

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build categories query: %w", err)
	}

	rows, err := r.db.executor(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	categories := make([]domain.Category, 0)
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return categories, nil
}

func whereArchivedWithin(q sq.SelectBuilder, rng domain.DateRange) sq.SelectBuilder {
	if rng.From != nil {
		q = q.Where(sq.GtOrEq{"a.archived_on": *rng.From})
	}
	if rng.To != nil {
		q = q.Where(sq.LtOrEq{"a.archived_on": *rng.To})
	}
	return q
}
