// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"pressroom/internal/models"
)

// CategoryStore manages categories in the database.
type CategoryStore struct {
	db *sql.DB
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

const categoryColumns = `id, name, slug, description, created_at, updated_at`

// scanCategory scans a row into a Category struct.
func scanCategory(row scanner) (*models.Category, error) {
	var c models.Category
	if err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns all categories ordered by name. An empty table yields an
// empty, non-nil slice.
func (s *CategoryStore) List(ctx context.Context) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY name ASC`)
	if err != nil {
		return nil, classify(fmt.Errorf("list categories: %w", err), "category", opWrite)
	}
	defer rows.Close()

	items := []models.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, classify(fmt.Errorf("scan category: %w", err), "category", opWrite)
		}
		items = append(items, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(fmt.Errorf("iterate categories: %w", err), "category", opWrite)
	}
	return items, nil
}

// FindByID retrieves a category by ID. Returns nil if not found.
func (s *CategoryStore) FindByID(ctx context.Context, id int64) (*models.Category, error) {
	return s.findOne(ctx, "id", id)
}

// FindBySlug retrieves a category by slug. Returns nil if not found.
func (s *CategoryStore) FindBySlug(ctx context.Context, slug string) (*models.Category, error) {
	return s.findOne(ctx, "slug", slug)
}

func (s *CategoryStore) findOne(ctx context.Context, column string, value any) (*models.Category, error) {
	query, args, err := psql.Select(categoryColumns).From("categories").Where(sq.Eq{column: value}).ToSql()
	if err != nil {
		return nil, newError(KindInternal, "could not build category query", err)
	}
	c, err := scanCategory(s.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, classify(fmt.Errorf("find category by %s: %w", column, err), "category", opWrite)
	}
	return c, nil
}

// Create inserts a new category and returns it. Duplicate names or slugs
// surface as KindConflict from the unique constraints.
func (s *CategoryStore) Create(ctx context.Context, in models.NewCategory) (*models.Category, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO categories (name, slug, description)
		VALUES ($1, $2, $3)
		RETURNING `+categoryColumns,
		in.Name, in.Slug, in.Description,
	)
	c, err := scanCategory(row)
	if err != nil {
		return nil, classify(fmt.Errorf("create category: %w", err), "category", opWrite)
	}
	return c, nil
}

// Update applies the fields present in patch and refreshes updated_at.
// Returns nil if the category does not exist.
func (s *CategoryStore) Update(ctx context.Context, id int64, patch models.CategoryPatch) (*models.Category, error) {
	if patch.Name.Set && !patch.Name.Valid {
		return nil, newError(KindValidation, "name cannot be null", nil)
	}
	if patch.Slug.Set && !patch.Slug.Valid {
		return nil, newError(KindValidation, "slug cannot be null", nil)
	}

	set := map[string]any{}
	setIfPresent(set, "name", patch.Name)
	setIfPresent(set, "slug", patch.Slug)
	setIfPresent(set, "description", patch.Description)
	set["updated_at"] = sq.Expr("NOW()")

	query, args, err := psql.Update("categories").
		SetMap(set).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + categoryColumns).
		ToSql()
	if err != nil {
		return nil, newError(KindInternal, "could not build category update", err)
	}

	c, err := scanCategory(s.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, classify(fmt.Errorf("update category: %w", err), "category", opWrite)
	}
	return c, nil
}

// Delete removes a category by ID and reports whether a row existed.
// Articles referencing it have category_id set to NULL by the schema; a
// blocking reference surfaces as KindConflict.
func (s *CategoryStore) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return false, classify(fmt.Errorf("delete category: %w", err), "category", opDelete)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, classify(fmt.Errorf("delete category rows affected: %w", err), "category", opDelete)
	}
	return n > 0, nil
}

// IDsBySlugs resolves category slugs to ids in a single query. Unknown
// slugs are skipped, so the result may be shorter than the input.
func (s *CategoryStore) IDsBySlugs(ctx context.Context, slugs []string) ([]int64, error) {
	return categoryIDsBySlugs(ctx, s.db, slugs)
}

func categoryIDsBySlugs(ctx context.Context, q querier, slugs []string) ([]int64, error) {
	if len(slugs) == 0 {
		return nil, nil
	}
	query, args, err := psql.Select("id").From("categories").Where(sq.Eq{"slug": slugs}).ToSql()
	if err != nil {
		return nil, newError(KindInternal, "could not build category lookup", err)
	}
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(fmt.Errorf("resolve category slugs: %w", err), "category", opWrite)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, classify(fmt.Errorf("scan category id: %w", err), "category", opWrite)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(fmt.Errorf("iterate category ids: %w", err), "category", opWrite)
	}
	return ids, nil
}

// setIfPresent copies a present Optional into a squirrel SetMap. An explicit
// null becomes SQL NULL; an absent field is left out of the SET clause.
func setIfPresent[T any](set map[string]any, column string, o models.Optional[T]) {
	if !o.Set {
		return
	}
	if !o.Valid {
		set[column] = nil
		return
	}
	set[column] = o.Value
}

// EnsureBySlug inserts in only when no category with its slug exists and
// returns whichever row is stored. An existing row is never modified.
func (s *CategoryStore) EnsureBySlug(ctx context.Context, in models.NewCategory) (*models.Category, bool, error) {
	existing, err := s.FindBySlug(ctx, in.Slug)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}
	created, err := s.Create(ctx, in)
	if IsKind(err, KindConflict) {
		// A concurrent start won the insert, or the name is taken.
		existing, err = s.FindBySlug(ctx, in.Slug)
		if err == nil && existing == nil {
			return nil, false, newError(KindConflict, "category name already used by another slug", nil)
		}
		return existing, false, err
	}
	if err != nil {
		return nil, false, err
	}
	return created, true, nil
}
