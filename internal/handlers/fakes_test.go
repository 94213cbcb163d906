package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"pressroom/internal/models"
	"pressroom/internal/render"
	"pressroom/internal/storage"
)

// fakeArticles is an in-memory ArticleRepository that records its inputs.
type fakeArticles struct {
	byID   map[int64]*models.Article
	nextID int64
	err    error
	refErr error

	listParams  *models.ArticleListParams
	listPage    *models.ArticlePage
	created     *models.NewArticle
	patch       *models.ArticlePatch
	slugLookups int
}

func newFakeArticles(articles ...*models.Article) *fakeArticles {
	f := &fakeArticles{byID: map[int64]*models.Article{}, nextID: 100}
	for _, a := range articles {
		f.byID[a.ID] = a
	}
	return f
}

func (f *fakeArticles) List(_ context.Context, p models.ArticleListParams) (*models.ArticlePage, error) {
	f.listParams = &p
	if f.err != nil {
		return nil, f.err
	}
	if f.listPage != nil {
		return f.listPage, nil
	}
	return &models.ArticlePage{Items: []models.Article{}, CurrentPage: p.Page}, nil
}

func (f *fakeArticles) FindBySlug(_ context.Context, slug string) (*models.Article, error) {
	f.slugLookups++
	if f.err != nil {
		return nil, f.err
	}
	for _, a := range f.byID {
		if a.Slug == slug {
			return a, nil
		}
	}
	return nil, nil
}

func (f *fakeArticles) FindByID(_ context.Context, id int64) (*models.Article, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byID[id], nil
}

func (f *fakeArticles) Create(_ context.Context, in models.NewArticle) (*models.Article, error) {
	f.created = &in
	if f.err != nil {
		return nil, f.err
	}
	f.nextID++
	a := &models.Article{ID: f.nextID, Title: in.Title, Slug: in.Slug, ContentType: in.ContentType, Content: in.Content}
	f.byID[a.ID] = a
	return a, nil
}

func (f *fakeArticles) Update(_ context.Context, id int64, patch models.ArticlePatch) (*models.Article, error) {
	f.patch = &patch
	if f.err != nil {
		return nil, f.err
	}
	a, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	if patch.Title.Set {
		a.Title = patch.Title.Value
	}
	if patch.Slug.Set {
		a.Slug = patch.Slug.Value
	}
	if patch.CategoryID.Set {
		a.CategoryID = patch.CategoryID.Ptr()
	}
	if patch.Attachments.Set {
		var next []models.Attachment
		for i, in := range patch.Attachments.Value {
			attID := int64(1000 + i)
			if in.ID != nil {
				attID = *in.ID
			}
			next = append(next, models.Attachment{ID: attID, ArticleID: id, FileType: in.FileType, FileURL: in.FileURL})
		}
		a.Attachments = next
	}
	return a, nil
}

func (f *fakeArticles) Delete(_ context.Context, id int64) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if _, ok := f.byID[id]; !ok {
		return false, nil
	}
	delete(f.byID, id)
	return true, nil
}

func (f *fakeArticles) FileReferenced(_ context.Context, fileURL string) (bool, error) {
	if f.refErr != nil {
		return false, f.refErr
	}
	for _, a := range f.byID {
		for _, att := range a.Attachments {
			if att.FileURL == fileURL {
				return true, nil
			}
		}
	}
	return false, nil
}

// fakeCategories is an in-memory CategoryRepository.
type fakeCategories struct {
	items   []models.Category
	err     error
	created *models.NewCategory
	patch   *models.CategoryPatch
}

func (f *fakeCategories) List(context.Context) ([]models.Category, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.items, nil
}

func (f *fakeCategories) Create(_ context.Context, in models.NewCategory) (*models.Category, error) {
	f.created = &in
	if f.err != nil {
		return nil, f.err
	}
	c := models.Category{ID: int64(len(f.items) + 1), Name: in.Name, Slug: in.Slug, Description: in.Description}
	f.items = append(f.items, c)
	return &c, nil
}

func (f *fakeCategories) Update(_ context.Context, id int64, patch models.CategoryPatch) (*models.Category, error) {
	f.patch = &patch
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.items {
		if f.items[i].ID == id {
			if patch.Name.Set {
				f.items[i].Name = patch.Name.Value
			}
			if patch.Description.Set {
				f.items[i].Description = patch.Description.Ptr()
			}
			c := f.items[i]
			return &c, nil
		}
	}
	return nil, nil
}

func (f *fakeCategories) Delete(_ context.Context, id int64) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	for i := range f.items {
		if f.items[i].ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// fakeObjects is an ObjectStore whose bucket lives under https://cdn.test/.
type fakeObjects struct {
	deleted    []string
	deleteErr  error
	presignErr error
	presigned  []string
	ttl        time.Duration
}

const fakeCDN = "https://cdn.test/"

func (f *fakeObjects) PresignUpload(_ context.Context, fileName, contentType string, expires time.Duration) (*storage.Upload, error) {
	if f.presignErr != nil {
		return nil, f.presignErr
	}
	f.presigned = append(f.presigned, fileName+"|"+contentType)
	f.ttl = expires
	key := "attachments/2026/01/abc-" + fileName
	return &storage.Upload{UploadURL: "https://s3.test/bucket/" + key + "?X-Amz-Signature=x", Key: key, FileURL: fakeCDN + key}, nil
}

func (f *fakeObjects) KeyOf(fileURL string) (string, bool) {
	if key, ok := strings.CutPrefix(fileURL, fakeCDN); ok {
		return key, true
	}
	return "", false
}

func (f *fakeObjects) Delete(_ context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return f.deleteErr
}

// fakeCache is a map-backed ArticleCache.
type fakeCache struct {
	entries     map[string][]byte
	invalidated []string
	clears      int
}

func newFakeCache() *fakeCache { return &fakeCache{entries: map[string][]byte{}} }

func (c *fakeCache) Get(_ context.Context, slug string) ([]byte, bool) {
	b, ok := c.entries[slug]
	return b, ok
}

func (c *fakeCache) Set(_ context.Context, slug string, body []byte) { c.entries[slug] = body }

func (c *fakeCache) Invalidate(_ context.Context, slug string) {
	c.invalidated = append(c.invalidated, slug)
	delete(c.entries, slug)
}

func (c *fakeCache) InvalidateAll(context.Context) {
	c.clears++
	c.entries = map[string][]byte{}
}

type fakePinger struct{ err error }

func (p fakePinger) PingContext(context.Context) error { return p.err }

var errBoom = errors.New("connection reset by peer")

// call runs handler with an optional JSON body and {ref} URL parameter.
func call(t *testing.T, handler http.HandlerFunc, method, target, ref, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	if ref != "" {
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("ref", ref)
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}
	rr := httptest.NewRecorder()
	handler(rr, req)
	return rr
}

// errorOf decodes the error envelope of a response.
func errorOf(t *testing.T, rr *httptest.ResponseRecorder) render.ErrorBody {
	t.Helper()
	var env struct {
		Error render.ErrorBody `json:"error"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode error envelope %q: %v", rr.Body.String(), err)
	}
	return env.Error
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
	return v
}

func strPtr(s string) *string { return &s }
func int64Ptr(n int64) *int64 { return &n }
