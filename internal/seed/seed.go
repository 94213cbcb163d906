// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package seed makes sure the fixed starter category and article exist.
// It is safe to run on every start: rows are looked up by slug and only
// inserted when missing, so manual edits are never overwritten.
package seed

import (
	"context"
	"fmt"
	"log/slog"

	"pressroom/internal/models"
)

// Natural keys of the bootstrap rows.
const (
	CategorySlug = "general"
	ArticleSlug  = "welcome"
)

// CategoryEnsurer inserts a category when its slug is not yet taken.
type CategoryEnsurer interface {
	EnsureBySlug(ctx context.Context, in models.NewCategory) (*models.Category, bool, error)
}

// ArticleEnsurer inserts an article when its slug is not yet taken.
type ArticleEnsurer interface {
	EnsureBySlug(ctx context.Context, in models.NewArticle) (*models.Article, bool, error)
}

const welcomeBody = `# Welcome

This article was created on first start. Edit or delete it from the API.
`

// Run ensures the bootstrap category exists, then the welcome article in it.
func Run(ctx context.Context, categories CategoryEnsurer, articles ArticleEnsurer) error {
	desc := "Articles that do not fit anywhere else."
	cat, catCreated, err := categories.EnsureBySlug(ctx, models.NewCategory{
		Name:        "General",
		Slug:        CategorySlug,
		Description: &desc,
	})
	if err != nil {
		return fmt.Errorf("seed category: %w", err)
	}
	if catCreated {
		slog.Info("seeded category", "slug", cat.Slug, "id", cat.ID)
	}

	body := welcomeBody
	art, artCreated, err := articles.EnsureBySlug(ctx, models.NewArticle{
		Title:       "Welcome",
		Slug:        ArticleSlug,
		ContentType: models.ContentTypeMarkdown,
		Content:     &body,
		CategoryID:  &cat.ID,
	})
	if err != nil {
		return fmt.Errorf("seed article: %w", err)
	}
	if artCreated {
		slog.Info("seeded article", "slug", art.Slug, "id", art.ID)
	}
	if !catCreated && !artCreated {
		slog.Info("database already seeded, skipping")
	}
	return nil
}
