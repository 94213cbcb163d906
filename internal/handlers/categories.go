// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"

	"pressroom/internal/models"
	"pressroom/internal/render"
	"pressroom/internal/slug"
)

// ListCategories handles GET /categories.
func (a *API) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := a.categories.List(r.Context())
	if err != nil {
		storeError(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, categories)
}

// CreateCategory handles POST /categories. A missing slug is derived from
// the name.
func (a *API) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var in models.NewCategory
	if err := decodeJSON(w, r, &in); err != nil {
		validationError(w, err.Error())
		return
	}
	if in.Slug == "" {
		in.Slug = slug.Generate(in.Name)
	}
	if msg := validateNewCategory(&in); msg != "" {
		validationError(w, msg)
		return
	}

	category, err := a.categories.Create(r.Context(), in)
	if err != nil {
		storeError(w, r, err)
		return
	}

	slog.Info("category created", "id", category.ID, "slug", category.Slug)
	render.JSON(w, http.StatusCreated, category)
}

// UpdateCategory handles PUT /categories/{id}.
func (a *API) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		validationError(w, "Category id must be a positive integer.")
		return
	}

	var patch models.CategoryPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		validationError(w, err.Error())
		return
	}
	if msg := validateCategoryPatch(&patch); msg != "" {
		validationError(w, msg)
		return
	}

	category, err := a.categories.Update(r.Context(), id, patch)
	if err != nil {
		storeError(w, r, err)
		return
	}
	if category == nil {
		notFound(w, "Category")
		return
	}

	// Cached articles embed the category summary.
	a.cache.InvalidateAll(r.Context())

	slog.Info("category updated", "id", category.ID, "slug", category.Slug)
	render.JSON(w, http.StatusOK, category)
}

// DeleteCategory handles DELETE /categories/{id}. Articles in the category
// are kept and lose their category.
func (a *API) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		validationError(w, "Category id must be a positive integer.")
		return
	}

	deleted, err := a.categories.Delete(r.Context(), id)
	if err != nil {
		storeError(w, r, err)
		return
	}
	if !deleted {
		notFound(w, "Category")
		return
	}

	a.cache.InvalidateAll(r.Context())

	slog.Info("category deleted", "id", id)
	render.NoContent(w)
}
