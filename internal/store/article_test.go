package store

import (
	"context"
	"testing"
	"time"

	"pressroom/internal/models"
)

// testCategory creates a throwaway category and registers its cleanup.
func testCategory(t *testing.T, cats *CategoryStore, name string) *models.Category {
	t.Helper()
	sfx := suffix()
	slug := name + "-" + sfx
	c, err := cats.Create(context.Background(), models.NewCategory{Name: name + " " + sfx, Slug: slug})
	if err != nil {
		t.Fatalf("create category %s: %v", name, err)
	}
	t.Cleanup(func() { cleanCategories(t, cats.db, slug) })
	return c
}

func TestArticleStoreCreateAndFindBySlug(t *testing.T) {
	db := testDB(t)
	s := NewArticleStore(db)
	cat := testCategory(t, NewCategoryStore(db), "roundtrip")
	ctx := context.Background()

	slug := "roundtrip-" + suffix()
	t.Cleanup(func() { cleanArticles(t, db, slug) })

	body := "# Hello"
	created, err := s.Create(ctx, models.NewArticle{
		Title:       "Round Trip",
		Slug:        slug,
		ContentType: models.ContentTypeMarkdown,
		Content:     &body,
		CategoryID:  &cat.ID,
		Attachments: []models.AttachmentInput{
			{FileType: "image/png", FileURL: "attachments/a.png", Filename: strPtr("a.png")},
			{FileType: "application/pdf", FileURL: "attachments/b.pdf", Description: strPtr("data sheet")},
		},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.DisplayDate == nil {
		t.Fatal("expected display_date to default when omitted")
	}
	if len(created.Attachments) != 2 {
		t.Fatalf("attachments on create: got %d, want 2", len(created.Attachments))
	}

	found, err := s.FindBySlug(ctx, slug)
	if err != nil {
		t.Fatalf("FindBySlug: %v", err)
	}
	if found == nil {
		t.Fatal("expected article, got nil")
	}
	if found.ID != created.ID || found.Title != "Round Trip" || found.ContentType != models.ContentTypeMarkdown {
		t.Errorf("fields did not round-trip: %+v", found)
	}
	if found.Content == nil || *found.Content != body {
		t.Errorf("content: got %v, want %q", found.Content, body)
	}
	if found.CategoryID == nil || *found.CategoryID != cat.ID {
		t.Errorf("category_id: got %v, want %d", found.CategoryID, cat.ID)
	}
	if found.Category == nil || found.Category.Slug != cat.Slug || found.Category.Name != cat.Name {
		t.Errorf("category summary: got %+v", found.Category)
	}
	if found.DisplayDate == nil || !found.DisplayDate.Equal(*created.DisplayDate) {
		t.Errorf("display_date: got %v, want %v", found.DisplayDate, created.DisplayDate)
	}
	if len(found.Attachments) != 2 || found.Attachments[0].FileURL != "attachments/a.png" {
		t.Errorf("attachments: got %+v", found.Attachments)
	}
	if found.Attachments[1].Description == nil || *found.Attachments[1].Description != "data sheet" {
		t.Errorf("attachment description: got %v", found.Attachments[1].Description)
	}
}

func TestArticleStoreCreateDerivesSlug(t *testing.T) {
	db := testDB(t)
	s := NewArticleStore(db)

	sfx := suffix()
	title := "Derived Slug " + sfx
	want := "derived-slug-" + sfx
	t.Cleanup(func() { cleanArticles(t, db, want) })

	created, err := s.Create(context.Background(), models.NewArticle{Title: title, ContentType: models.ContentTypeHTML})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Slug != want {
		t.Errorf("slug: got %q, want %q", created.Slug, want)
	}
}

func TestArticleStoreCreateErrors(t *testing.T) {
	db := testDB(t)
	s := NewArticleStore(db)
	ctx := context.Background()

	slug := "create-err-" + suffix()
	t.Cleanup(func() { cleanArticles(t, db, slug) })

	if _, err := s.Create(ctx, models.NewArticle{Title: "One", Slug: slug, ContentType: models.ContentTypeHTML}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err := s.Create(ctx, models.NewArticle{Title: "Two", Slug: slug, ContentType: models.ContentTypeHTML})
	if !IsKind(err, KindConflict) {
		t.Errorf("duplicate slug: got %v, want conflict", err)
	}

	missing := int64(-1)
	_, err = s.Create(ctx, models.NewArticle{Title: "Three", Slug: "fk-" + suffix(), ContentType: models.ContentTypeHTML, CategoryID: &missing})
	if !IsKind(err, KindBadRequest) {
		t.Errorf("bad category_id: got %v, want bad_request", err)
	}
	_, err = s.Create(ctx, models.NewArticle{Title: "Four", Slug: "fk-" + suffix(), ContentType: models.ContentTypeHTML, ParentID: &missing})
	if !IsKind(err, KindBadRequest) {
		t.Errorf("bad parent_id: got %v, want bad_request", err)
	}
}

func TestArticleStoreCreateRollsBackOnAttachmentFailure(t *testing.T) {
	db := testDB(t)
	s := NewArticleStore(db)
	ctx := context.Background()

	slug := "rollback-" + suffix()
	t.Cleanup(func() { cleanArticles(t, db, slug) })

	// PostgreSQL text cannot hold NUL bytes, so the attachment batch fails
	// after the article row was inserted.
	_, err := s.Create(ctx, models.NewArticle{
		Title: "Rollback", Slug: slug, ContentType: models.ContentTypeHTML,
		Attachments: []models.AttachmentInput{{FileType: "text/plain", FileURL: "bad\x00url"}},
	})
	if err == nil {
		t.Fatal("expected attachment insert to fail")
	}

	found, err := s.FindBySlug(ctx, slug)
	if err != nil {
		t.Fatalf("FindBySlug: %v", err)
	}
	if found != nil {
		t.Error("article was committed without its attachments")
	}
}

func TestArticleStoreUpdateByPresence(t *testing.T) {
	db := testDB(t)
	s := NewArticleStore(db)
	cat := testCategory(t, NewCategoryStore(db), "presence")
	ctx := context.Background()

	slug := "presence-" + suffix()
	t.Cleanup(func() { cleanArticles(t, db, slug) })

	body := "body"
	a, err := s.Create(ctx, models.NewArticle{
		Title: "Original", Slug: slug, ContentType: models.ContentTypeMarkdown, Content: &body, CategoryID: &cat.ID,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Omitting category_id leaves it unchanged.
	updated, err := s.Update(ctx, a.ID, models.ArticlePatch{Title: models.Some("x")})
	if err != nil {
		t.Fatalf("Update title: %v", err)
	}
	if updated.Title != "x" {
		t.Errorf("title: got %q, want x", updated.Title)
	}
	if updated.CategoryID == nil || *updated.CategoryID != cat.ID {
		t.Errorf("category_id changed by omission: got %v", updated.CategoryID)
	}
	if updated.Content == nil || *updated.Content != body {
		t.Errorf("content changed by omission: got %v", updated.Content)
	}
	if updated.UpdatedAt.Before(a.UpdatedAt) {
		t.Error("updated_at went backwards")
	}

	// Explicit null clears it.
	cleared, err := s.Update(ctx, a.ID, models.ArticlePatch{
		CategoryID:  models.Null[int64](),
		Content:     models.Null[string](),
		DisplayDate: models.Null[time.Time](),
	})
	if err != nil {
		t.Fatalf("Update null: %v", err)
	}
	if cleared.CategoryID != nil || cleared.Category != nil {
		t.Errorf("category not cleared: %v %+v", cleared.CategoryID, cleared.Category)
	}
	if cleared.Content != nil {
		t.Errorf("content not cleared: %q", *cleared.Content)
	}
	if cleared.DisplayDate != nil {
		t.Errorf("display_date not cleared: %v", cleared.DisplayDate)
	}
	if cleared.Title != "x" {
		t.Errorf("title changed by omission: got %q", cleared.Title)
	}

	// Required columns cannot be nulled.
	if _, err := s.Update(ctx, a.ID, models.ArticlePatch{Title: models.Null[string]()}); !IsKind(err, KindValidation) {
		t.Errorf("null title: got %v, want validation_failed", err)
	}

	// An empty patch is a read.
	same, err := s.Update(ctx, a.ID, models.ArticlePatch{})
	if err != nil {
		t.Fatalf("empty Update: %v", err)
	}
	if !same.UpdatedAt.Equal(cleared.UpdatedAt) {
		t.Errorf("empty patch touched updated_at: %v -> %v", cleared.UpdatedAt, same.UpdatedAt)
	}

	missing, err := s.Update(ctx, -1, models.ArticlePatch{Title: models.Some("nope")})
	if err != nil {
		t.Fatalf("Update missing: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for missing article")
	}
}

func TestArticleStoreUpdateReconcilesAttachments(t *testing.T) {
	db := testDB(t)
	s := NewArticleStore(db)
	ctx := context.Background()

	slug := "reconcile-" + suffix()
	t.Cleanup(func() { cleanArticles(t, db, slug) })

	a, err := s.Create(ctx, models.NewArticle{
		Title: "Reconcile", Slug: slug, ContentType: models.ContentTypeHTML,
		Attachments: []models.AttachmentInput{
			{FileType: "image/png", FileURL: "keep.png"},
			{FileType: "image/png", FileURL: "drop.png"},
		},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	keepID := a.Attachments[0].ID

	updated, err := s.Update(ctx, a.ID, models.ArticlePatch{
		Attachments: models.Some([]models.AttachmentInput{
			{ID: &keepID, FileType: "image/png", FileURL: "keep.png", Description: strPtr("kept")},
			{FileType: "text/plain", FileURL: "new.txt"},
		}),
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if len(updated.Attachments) != 2 {
		t.Fatalf("attachments: got %d, want 2", len(updated.Attachments))
	}
	if updated.Attachments[0].ID != keepID || updated.Attachments[0].Description == nil || *updated.Attachments[0].Description != "kept" {
		t.Errorf("kept attachment: got %+v", updated.Attachments[0])
	}
	if updated.Attachments[1].FileURL != "new.txt" {
		t.Errorf("added attachment: got %+v", updated.Attachments[1])
	}

	// Omitting attachments leaves them alone.
	same, err := s.Update(ctx, a.ID, models.ArticlePatch{Title: models.Some("Renamed")})
	if err != nil {
		t.Fatalf("Update title: %v", err)
	}
	if len(same.Attachments) != 2 {
		t.Errorf("attachments changed by omission: got %d", len(same.Attachments))
	}

	// A foreign attachment id is rejected and nothing changes.
	foreign := int64(-1)
	_, err = s.Update(ctx, a.ID, models.ArticlePatch{
		Title:       models.Some("Should not stick"),
		Attachments: models.Some([]models.AttachmentInput{{ID: &foreign, FileType: "x", FileURL: "x"}}),
	})
	if !IsKind(err, KindBadRequest) {
		t.Fatalf("foreign id: got %v, want bad_request", err)
	}
	after, _ := s.FindByID(ctx, a.ID)
	if after.Title != "Renamed" {
		t.Errorf("failed update leaked title change: %q", after.Title)
	}

	// An empty list removes everything.
	emptied, err := s.Update(ctx, a.ID, models.ArticlePatch{Attachments: models.Some([]models.AttachmentInput{})})
	if err != nil {
		t.Fatalf("Update empty list: %v", err)
	}
	if len(emptied.Attachments) != 0 {
		t.Errorf("attachments: got %d, want 0", len(emptied.Attachments))
	}
}

func TestArticleStoreUpdateRejectsNullAttachments(t *testing.T) {
	// Validation happens before any statement runs, so no database is needed.
	s := NewArticleStore(nil)
	_, err := s.Update(context.Background(), 1, models.ArticlePatch{
		Title:       models.Some("Renamed"),
		Attachments: models.Null[[]models.AttachmentInput](),
	})
	if !IsKind(err, KindValidation) {
		t.Errorf("got %v, want validation_failed", err)
	}
}

func TestArticleStoreDelete(t *testing.T) {
	db := testDB(t)
	s := NewArticleStore(db)
	ctx := context.Background()

	slug := "delete-" + suffix()
	t.Cleanup(func() { cleanArticles(t, db, slug) })

	a, err := s.Create(ctx, models.NewArticle{
		Title: "Delete", Slug: slug, ContentType: models.ContentTypeHTML,
		Attachments: []models.AttachmentInput{{FileType: "image/png", FileURL: "gone.png"}},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	deleted, err := s.Delete(ctx, a.ID)
	if err != nil || !deleted {
		t.Fatalf("Delete: deleted=%v err=%v", deleted, err)
	}
	again, err := s.Delete(ctx, a.ID)
	if err != nil {
		t.Fatalf("second Delete: %v", err)
	}
	if again {
		t.Error("second Delete should report false")
	}

	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM article_attachments WHERE article_id = $1", a.ID).Scan(&n); err != nil {
		t.Fatalf("count attachments: %v", err)
	}
	if n != 0 {
		t.Errorf("orphaned attachment rows: %d", n)
	}
	if used, err := s.FileReferenced(ctx, "gone.png"); err != nil || used {
		t.Errorf("FileReferenced after delete: used=%v err=%v", used, err)
	}
}

func TestArticleStoreFileReferenced(t *testing.T) {
	db := testDB(t)
	s := NewArticleStore(db)
	ctx := context.Background()

	slug := "shared-" + suffix()
	fileURL := "attachments/shared-" + suffix() + ".png"
	t.Cleanup(func() { cleanArticles(t, db, slug) })

	if _, err := s.Create(ctx, models.NewArticle{
		Title: "Shared", Slug: slug, ContentType: models.ContentTypeHTML,
		Attachments: []models.AttachmentInput{{FileType: "image/png", FileURL: fileURL}},
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if used, err := s.FileReferenced(ctx, fileURL); err != nil || !used {
		t.Errorf("FileReferenced(%q): used=%v err=%v, want true", fileURL, used, err)
	}
	if used, err := s.FileReferenced(ctx, fileURL+".missing"); err != nil || used {
		t.Errorf("FileReferenced(missing): used=%v err=%v, want false", used, err)
	}
}
