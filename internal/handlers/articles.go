// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"pressroom/internal/markdown"
	"pressroom/internal/models"
	"pressroom/internal/render"
)

// articleResponse is a single article with its rendered body.
type articleResponse struct {
	*models.Article
	ContentHTML string `json:"content_html"`
}

// ListArticles handles GET /articles.
func (a *API) ListArticles(w http.ResponseWriter, r *http.Request) {
	params, msg := a.parseListParams(r.URL.Query())
	if msg != "" {
		validationError(w, msg)
		return
	}

	page, err := a.articles.List(r.Context(), params)
	if err != nil {
		storeError(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, page)
}

// GetArticle handles GET /articles/{slug}. Encoded responses are cached by
// slug until a write invalidates them.
func (a *API) GetArticle(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "ref")
	ctx := r.Context()

	if body, ok := a.cache.Get(ctx, slug); ok {
		render.Raw(w, http.StatusOK, body)
		return
	}

	article, err := a.articles.FindBySlug(ctx, slug)
	if err != nil {
		storeError(w, r, err)
		return
	}
	if article == nil {
		notFound(w, "Article")
		return
	}

	html, err := markdown.Render(article.ContentType, article.Content)
	if err != nil {
		storeError(w, r, err)
		return
	}
	body, err := json.Marshal(articleResponse{Article: article, ContentHTML: html})
	if err != nil {
		storeError(w, r, err)
		return
	}

	a.cache.Set(ctx, slug, body)
	render.Raw(w, http.StatusOK, body)
}

// CreateArticle handles POST /articles.
func (a *API) CreateArticle(w http.ResponseWriter, r *http.Request) {
	var in models.NewArticle
	if err := decodeJSON(w, r, &in); err != nil {
		validationError(w, err.Error())
		return
	}
	if msg := validateNewArticle(&in); msg != "" {
		validationError(w, msg)
		return
	}

	article, err := a.articles.Create(r.Context(), in)
	if err != nil {
		storeError(w, r, err)
		return
	}

	slog.Info("article created", "id", article.ID, "slug", article.Slug)
	render.JSON(w, http.StatusCreated, article)
}

// UpdateArticle handles PUT /articles/{id}. Only keys present in the body
// change; null clears nullable columns.
func (a *API) UpdateArticle(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		validationError(w, "Article id must be a positive integer.")
		return
	}

	var patch models.ArticlePatch
	if err := decodeJSON(w, r, &patch); err != nil {
		validationError(w, err.Error())
		return
	}
	if msg := validateArticlePatch(&patch); msg != "" {
		validationError(w, msg)
		return
	}
	ctx := r.Context()

	// Remember the current attachments so blobs dropped by reconciliation
	// can be removed afterwards.
	var before []models.Attachment
	if patch.Attachments.Set && a.objects != nil {
		current, err := a.articles.FindByID(ctx, id)
		if err != nil {
			storeError(w, r, err)
			return
		}
		if current == nil {
			notFound(w, "Article")
			return
		}
		before = current.Attachments
	}

	article, err := a.articles.Update(ctx, id, patch)
	if err != nil {
		storeError(w, r, err)
		return
	}
	if article == nil {
		notFound(w, "Article")
		return
	}

	if patch.Slug.Set {
		// The previous slug is unknown here; drop every cached article.
		a.cache.InvalidateAll(ctx)
	} else {
		a.cache.Invalidate(ctx, article.Slug)
	}
	a.removeBlobs(context.WithoutCancel(ctx), droppedAttachments(before, article.Attachments))

	slog.Info("article updated", "id", article.ID, "slug", article.Slug)
	render.JSON(w, http.StatusOK, article)
}

// DeleteArticle handles DELETE /articles/{id}. Attachment rows go with the
// article; their blobs are removed afterwards on a best-effort basis.
func (a *API) DeleteArticle(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		validationError(w, "Article id must be a positive integer.")
		return
	}
	ctx := r.Context()

	article, err := a.articles.FindByID(ctx, id)
	if err != nil {
		storeError(w, r, err)
		return
	}
	if article == nil {
		notFound(w, "Article")
		return
	}

	deleted, err := a.articles.Delete(ctx, id)
	if err != nil {
		storeError(w, r, err)
		return
	}
	if !deleted {
		notFound(w, "Article")
		return
	}

	a.cache.Invalidate(ctx, article.Slug)
	a.removeBlobs(context.WithoutCancel(ctx), article.Attachments)

	slog.Info("article deleted", "id", id, "slug", article.Slug)
	render.NoContent(w)
}

// droppedAttachments returns the attachments in before whose file is no
// longer referenced by any attachment in after.
func droppedAttachments(before, after []models.Attachment) []models.Attachment {
	if len(before) == 0 {
		return nil
	}
	kept := make(map[string]bool, len(after))
	for _, att := range after {
		kept[att.FileURL] = true
	}
	var dropped []models.Attachment
	for _, att := range before {
		if !kept[att.FileURL] {
			dropped = append(dropped, att)
		}
	}
	return dropped
}

// removeBlobs deletes the stored objects behind attachments once no other
// attachment points at them. Failures are logged and never returned.
func (a *API) removeBlobs(ctx context.Context, attachments []models.Attachment) {
	if a.objects == nil {
		return
	}
	for _, att := range attachments {
		key, ok := a.objects.KeyOf(att.FileURL)
		if !ok {
			slog.Debug("attachment not in bucket, skipping", "attachment_id", att.ID, "file_url", att.FileURL)
			continue
		}
		shared, err := a.articles.FileReferenced(ctx, att.FileURL)
		if err != nil {
			slog.Warn("attachment reference check failed, keeping blob", "attachment_id", att.ID, "key", key, "error", err)
			continue
		}
		if shared {
			slog.Debug("attachment blob still referenced, keeping", "attachment_id", att.ID, "key", key)
			continue
		}
		if err := a.objects.Delete(ctx, key); err != nil {
			slog.Warn("attachment blob cleanup failed", "attachment_id", att.ID, "key", key, "error", err)
		}
	}
}
