// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"pressroom/internal/models"
	"pressroom/internal/slug"
)

// ArticleStore handles article persistence. Attachments are written in the
// same transaction as their parent article.
type ArticleStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewArticleStore creates a new ArticleStore with the given database connection.
func NewArticleStore(db *sql.DB) *ArticleStore {
	return &ArticleStore{db: db, now: time.Now}
}

// articleColumns is the article row joined with its optional category.
const articleColumns = `a.id, a.title, a.slug, a.content_type, a.content,
	a.category_id, a.parent_id, a.display_date, a.created_at, a.updated_at,
	c.id, c.name, c.slug`

const articleFrom = `articles a LEFT JOIN categories c ON c.id = a.category_id`

// scanArticle scans an articleColumns row, embedding the category summary
// when the join matched.
func scanArticle(row scanner) (*models.Article, error) {
	var (
		a       models.Article
		ct      string
		catID   sql.NullInt64
		catName sql.NullString
		catSlug sql.NullString
	)
	err := row.Scan(
		&a.ID, &a.Title, &a.Slug, &ct, &a.Content,
		&a.CategoryID, &a.ParentID, &a.DisplayDate, &a.CreatedAt, &a.UpdatedAt,
		&catID, &catName, &catSlug,
	)
	if err != nil {
		return nil, err
	}
	a.ContentType = models.ContentType(ct)
	if catID.Valid {
		a.Category = &models.CategorySummary{ID: catID.Int64, Name: catName.String, Slug: catSlug.String}
	}
	return &a, nil
}

// FindBySlug retrieves an article with its category and full attachment set.
// Returns nil if not found.
func (s *ArticleStore) FindBySlug(ctx context.Context, slug string) (*models.Article, error) {
	return s.findOne(ctx, "a.slug", slug)
}

// FindByID retrieves an article with its category and full attachment set.
// Returns nil if not found.
func (s *ArticleStore) FindByID(ctx context.Context, id int64) (*models.Article, error) {
	return s.findOne(ctx, "a.id", id)
}

func (s *ArticleStore) findOne(ctx context.Context, column string, value any) (*models.Article, error) {
	query, args, err := psql.Select(articleColumns).From(articleFrom).Where(sq.Eq{column: value}).ToSql()
	if err != nil {
		return nil, newError(KindInternal, "could not build article query", err)
	}

	a, err := scanArticle(s.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, classify(fmt.Errorf("find article by %s: %w", column, err), "article", opWrite)
	}

	a.Attachments, err = listAttachments(ctx, s.db, a.ID)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Attachments returns every attachment of an article, oldest first.
func (s *ArticleStore) Attachments(ctx context.Context, articleID int64) ([]models.Attachment, error) {
	return listAttachments(ctx, s.db, articleID)
}

// Create inserts an article and its attachments atomically. A missing slug
// is derived from the title and a missing display date defaults to now, so
// every stored article has an effective display date.
func (s *ArticleStore) Create(ctx context.Context, in models.NewArticle) (*models.Article, error) {
	if in.Slug == "" {
		in.Slug = slug.Generate(in.Title)
	}
	if in.Slug == "" {
		return nil, newError(KindValidation, "slug cannot be derived from title", nil)
	}
	if in.DisplayDate == nil {
		now := s.now().UTC()
		in.DisplayDate = &now
	}

	var created *models.Article
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		var a models.Article
		var ct string
		err := tx.QueryRowContext(ctx, `
			INSERT INTO articles (title, slug, content_type, content, category_id, parent_id, display_date)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id, title, slug, content_type, content, category_id, parent_id,
			          display_date, created_at, updated_at
		`, in.Title, in.Slug, string(in.ContentType), in.Content, in.CategoryID, in.ParentID, in.DisplayDate,
		).Scan(
			&a.ID, &a.Title, &a.Slug, &ct, &a.Content, &a.CategoryID, &a.ParentID,
			&a.DisplayDate, &a.CreatedAt, &a.UpdatedAt,
		)
		if err != nil {
			return classify(fmt.Errorf("create article: %w", err), "article", opWrite)
		}
		a.ContentType = models.ContentType(ct)

		a.Attachments, err = insertAttachments(ctx, tx, a.ID, in.Attachments)
		if err != nil {
			return err
		}
		created = &a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Update applies the fields present in patch. Null clears content,
// category_id, parent_id and display_date; absent fields are untouched.
// When patch carries attachments the stored set is reconciled to match; a
// null attachment list is rejected. An empty patch is a plain read. Returns
// nil if the article does not exist.
func (s *ArticleStore) Update(ctx context.Context, id int64, patch models.ArticlePatch) (*models.Article, error) {
	if patch.Attachments.Set && !patch.Attachments.Valid {
		return nil, newError(KindValidation, "attachments cannot be null; send [] to remove all", nil)
	}
	if patch.Empty() {
		return s.FindByID(ctx, id)
	}

	set, err := articleSetMap(patch)
	if err != nil {
		return nil, err
	}

	query, args, err := psql.Update("articles").
		SetMap(set).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return nil, newError(KindInternal, "could not build article update", err)
	}

	found := true
	err = withTx(ctx, s.db, func(tx *sql.Tx) error {
		var got int64
		err := tx.QueryRowContext(ctx, query, args...).Scan(&got)
		if err == sql.ErrNoRows {
			found = false
			return nil
		}
		if err != nil {
			return classify(fmt.Errorf("update article: %w", err), "article", opWrite)
		}
		if patch.Attachments.Set {
			return reconcileAttachments(ctx, tx, id, patch.Attachments.Value)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return s.FindByID(ctx, id)
}

// articleSetMap turns a patch into the SET clause of an UPDATE. updated_at
// is always refreshed.
func articleSetMap(patch models.ArticlePatch) (map[string]any, error) {
	for _, req := range []struct {
		name string
		o    models.Optional[string]
	}{
		{"title", patch.Title},
		{"slug", patch.Slug},
	} {
		if req.o.Set && (!req.o.Valid || req.o.Value == "") {
			return nil, newError(KindValidation, req.name+" cannot be empty", nil)
		}
	}
	if patch.ContentType.Set && (!patch.ContentType.Valid || !patch.ContentType.Value.Valid()) {
		return nil, newError(KindValidation, "content_type must be markdown or html", nil)
	}

	set := map[string]any{}
	setIfPresent(set, "title", patch.Title)
	setIfPresent(set, "slug", patch.Slug)
	if patch.ContentType.Set {
		set["content_type"] = string(patch.ContentType.Value)
	}
	setIfPresent(set, "content", patch.Content)
	setIfPresent(set, "category_id", patch.CategoryID)
	setIfPresent(set, "parent_id", patch.ParentID)
	setIfPresent(set, "display_date", patch.DisplayDate)
	set["updated_at"] = sq.Expr("NOW()")
	return set, nil
}

// Delete removes an article by ID and reports whether a row was removed.
// Attachment rows go with it through ON DELETE CASCADE; stored objects are
// the caller's concern.
func (s *ArticleStore) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM articles WHERE id = $1`, id)
	if err != nil {
		return false, classify(fmt.Errorf("delete article: %w", err), "article", opDelete)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, classify(fmt.Errorf("delete article rows affected: %w", err), "article", opDelete)
	}
	return n > 0, nil
}

// EnsureBySlug inserts in only when no article with its slug exists and
// returns whichever row is stored. An existing row is never modified.
func (s *ArticleStore) EnsureBySlug(ctx context.Context, in models.NewArticle) (*models.Article, bool, error) {
	if in.Slug == "" {
		in.Slug = slug.Generate(in.Title)
	}
	existing, err := s.FindBySlug(ctx, in.Slug)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}
	created, err := s.Create(ctx, in)
	if IsKind(err, KindConflict) {
		// Lost a race with a concurrent insert; the row exists now.
		existing, err = s.FindBySlug(ctx, in.Slug)
		return existing, false, err
	}
	if err != nil {
		return nil, false, err
	}
	return created, true, nil
}
