// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the JSON HTTP handlers for the pressroom API.
// Handlers depend on small interfaces so they can be tested without a
// database, cache or object store.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"pressroom/internal/middleware"
	"pressroom/internal/models"
	"pressroom/internal/render"
	"pressroom/internal/storage"
	"pressroom/internal/store"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 2 << 20

// ArticleRepository is the article persistence used by the handlers.
type ArticleRepository interface {
	List(ctx context.Context, p models.ArticleListParams) (*models.ArticlePage, error)
	FindBySlug(ctx context.Context, slug string) (*models.Article, error)
	FindByID(ctx context.Context, id int64) (*models.Article, error)
	Create(ctx context.Context, in models.NewArticle) (*models.Article, error)
	Update(ctx context.Context, id int64, patch models.ArticlePatch) (*models.Article, error)
	Delete(ctx context.Context, id int64) (bool, error)
	FileReferenced(ctx context.Context, fileURL string) (bool, error)
}

// CategoryRepository is the category persistence used by the handlers.
type CategoryRepository interface {
	List(ctx context.Context) ([]models.Category, error)
	Create(ctx context.Context, in models.NewCategory) (*models.Category, error)
	Update(ctx context.Context, id int64, patch models.CategoryPatch) (*models.Category, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

// ObjectStore issues upload URLs and removes attachment blobs.
type ObjectStore interface {
	PresignUpload(ctx context.Context, fileName, contentType string, expires time.Duration) (*storage.Upload, error)
	KeyOf(fileURL string) (string, bool)
	Delete(ctx context.Context, key string) error
}

// ArticleCache caches encoded single-article responses by slug.
type ArticleCache interface {
	Get(ctx context.Context, slug string) ([]byte, bool)
	Set(ctx context.Context, slug string, body []byte)
	Invalidate(ctx context.Context, slug string)
	InvalidateAll(ctx context.Context)
}

// Pinger reports database reachability for the health check.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Options wires an API. Objects and Cache may be nil: uploads then answer
// 503 and reads go straight to the database.
type Options struct {
	Articles   ArticleRepository
	Categories CategoryRepository
	Objects    ObjectStore
	Cache      ArticleCache
	DB         Pinger

	UploadURLTTL     time.Duration
	DefaultPageLimit int
	MaxPageLimit     int
}

// API groups the JSON handlers and their dependencies.
type API struct {
	articles   ArticleRepository
	categories CategoryRepository
	objects    ObjectStore
	cache      ArticleCache
	db         Pinger

	uploadURLTTL     time.Duration
	defaultPageLimit int
	maxPageLimit     int
}

// New creates an API from opts, filling in defaults for unset limits.
func New(opts Options) *API {
	a := &API{
		articles:         opts.Articles,
		categories:       opts.Categories,
		objects:          opts.Objects,
		cache:            opts.Cache,
		db:               opts.DB,
		uploadURLTTL:     opts.UploadURLTTL,
		defaultPageLimit: opts.DefaultPageLimit,
		maxPageLimit:     opts.MaxPageLimit,
	}
	if a.cache == nil {
		a.cache = noCache{}
	}
	if a.uploadURLTTL <= 0 {
		a.uploadURLTTL = 15 * time.Minute
	}
	if a.defaultPageLimit <= 0 {
		a.defaultPageLimit = 10
	}
	if a.maxPageLimit < a.defaultPageLimit {
		a.maxPageLimit = a.defaultPageLimit
	}
	return a
}

type noCache struct{}

func (noCache) Get(context.Context, string) ([]byte, bool) { return nil, false }
func (noCache) Set(context.Context, string, []byte)        {}
func (noCache) Invalidate(context.Context, string)         {}
func (noCache) InvalidateAll(context.Context)              {}

// Health answers 200 when the database is reachable, 503 otherwise.
func (a *API) Health(w http.ResponseWriter, r *http.Request) {
	if a.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := a.db.PingContext(ctx); err != nil {
			slog.Error("health check failed", "error", err)
			render.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	render.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// storeError maps a store failure to a response. Classified errors carry a
// user-safe message; anything else is logged and answered as a bare 500.
func storeError(w http.ResponseWriter, r *http.Request, err error) {
	var se *store.Error
	if errors.As(err, &se) && se.Kind != store.KindInternal {
		render.Error(w, statusForKind(se.Kind), string(se.Kind), se.Message)
		return
	}
	slog.Error("request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"request_id", middleware.RequestIDFromCtx(r.Context()),
		"error", err,
	)
	render.Error(w, http.StatusInternalServerError, string(store.KindInternal), "Internal server error.")
}

func statusForKind(k store.Kind) int {
	switch k {
	case store.KindValidation, store.KindBadRequest:
		return http.StatusBadRequest
	case store.KindConflict:
		return http.StatusConflict
	case store.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func validationError(w http.ResponseWriter, msg string) {
	render.Error(w, http.StatusBadRequest, string(store.KindValidation), msg)
}

func notFound(w http.ResponseWriter, what string) {
	render.Error(w, http.StatusNotFound, string(store.KindNotFound), what+" not found.")
}

// decodeJSON reads exactly one JSON object into dst, rejecting unknown
// fields and oversized bodies.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return fmt.Errorf("request body exceeds %d bytes", tooLarge.Limit)
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	if dec.More() {
		return errors.New("request body must contain a single JSON object")
	}
	return nil
}

// idParam parses the {ref} URL segment as a positive row id.
func idParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "ref"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
