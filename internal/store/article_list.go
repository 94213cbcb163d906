// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"fmt"
	"math"

	sq "github.com/Masterminds/squirrel"
	"golang.org/x/sync/errgroup"

	"pressroom/internal/models"
)

// sortExpressions maps each allowed sort field to its SQL expression.
// Articles without a display date sort by their creation time.
var sortExpressions = map[models.SortField]string{
	models.SortCreatedAt:   "a.created_at",
	models.SortUpdatedAt:   "a.updated_at",
	models.SortTitle:       "a.title",
	models.SortDisplayDate: "COALESCE(a.display_date, a.created_at)",
}

// listQuery is the shared predicate, ordering and window of one article
// listing. The count and page statements are both rendered from it.
type listQuery struct {
	categoryIDs []int64
	orderBy     []string
	limit       uint64
	offset      uint64
}

// newListQuery validates params and builds the listing. Page and limit must
// be positive and the resulting offset must fit in an int64.
func newListQuery(p models.ArticleListParams, categoryIDs []int64) (listQuery, error) {
	expr, ok := sortExpressions[p.SortBy]
	if !ok {
		return listQuery{}, newError(KindValidation, fmt.Sprintf("unsupported sort field %q", p.SortBy), nil)
	}
	dir := "DESC"
	switch p.Order {
	case models.SortAsc:
		dir = "ASC"
	case models.SortDesc:
	default:
		return listQuery{}, newError(KindValidation, fmt.Sprintf("unsupported order direction %q", p.Order), nil)
	}
	if p.Page < 1 || p.Limit < 1 {
		return listQuery{}, newError(KindValidation, "page and limit must be positive", nil)
	}
	if uint64(p.Page-1) > math.MaxInt64/uint64(p.Limit) {
		return listQuery{}, newError(KindValidation, fmt.Sprintf("page %d is out of range", p.Page), nil)
	}

	return listQuery{
		categoryIDs: categoryIDs,
		// created_at then id make equal primary keys page deterministically.
		orderBy: []string{expr + " " + dir, "a.created_at DESC", "a.id DESC"},
		limit:   uint64(p.Limit),
		offset:  uint64(p.Page-1) * uint64(p.Limit),
	}, nil
}

func (q listQuery) filter(b sq.SelectBuilder) sq.SelectBuilder {
	if len(q.categoryIDs) == 0 {
		return b
	}
	return b.Where(sq.Eq{"a.category_id": q.categoryIDs})
}

// countSQL renders the COUNT(*) statement over the listing predicate.
func (q listQuery) countSQL() (string, []any, error) {
	return q.filter(psql.Select("COUNT(*)").From("articles a")).ToSql()
}

// pageSQL renders the ordered, windowed row statement.
func (q listQuery) pageSQL() (string, []any, error) {
	return q.filter(psql.Select(articleColumns).From(articleFrom)).
		OrderBy(q.orderBy...).
		Limit(q.limit).
		Offset(q.offset).
		ToSql()
}

// List returns one page of articles, optionally restricted to categories by
// slug. When slugs are given but none resolve, the result is an empty page
// and the articles table is not queried. Attachments are not loaded.
//
// The count and the page are two independent reads issued concurrently
// with no shared snapshot. Under concurrent writes TotalPages and Items can
// disagree momentarily; callers accept that.
func (s *ArticleStore) List(ctx context.Context, p models.ArticleListParams) (*models.ArticlePage, error) {
	q, err := newListQuery(p, nil)
	if err != nil {
		return nil, err
	}
	if len(p.CategorySlugs) > 0 {
		ids, err := categoryIDsBySlugs(ctx, s.db, p.CategorySlugs)
		if err != nil {
			return nil, err
		}
		if len(ids) == 0 {
			return &models.ArticlePage{Items: []models.Article{}, TotalPages: 0, CurrentPage: p.Page}, nil
		}
		q.categoryIDs = ids
	}
	countQuery, countArgs, err := q.countSQL()
	if err != nil {
		return nil, newError(KindInternal, "could not build article count", err)
	}
	pageQuery, pageArgs, err := q.pageSQL()
	if err != nil {
		return nil, newError(KindInternal, "could not build article page", err)
	}

	var (
		total int
		items []models.Article
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := s.db.QueryRowContext(gctx, countQuery, countArgs...).Scan(&total); err != nil {
			return classify(fmt.Errorf("count articles: %w", err), "article", opWrite)
		}
		return nil
	})
	g.Go(func() error {
		rows, err := s.db.QueryContext(gctx, pageQuery, pageArgs...)
		if err != nil {
			return classify(fmt.Errorf("list articles: %w", err), "article", opWrite)
		}
		defer rows.Close()

		page := make([]models.Article, 0, p.Limit)
		for rows.Next() {
			a, err := scanArticle(rows)
			if err != nil {
				return classify(fmt.Errorf("scan article: %w", err), "article", opWrite)
			}
			page = append(page, *a)
		}
		if err := rows.Err(); err != nil {
			return classify(fmt.Errorf("iterate articles: %w", err), "article", opWrite)
		}
		items = page
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &models.ArticlePage{
		Items:       items,
		TotalPages:  (total + p.Limit - 1) / p.Limit,
		CurrentPage: p.Page,
	}, nil
}
