// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// ContentType is the markup format of an article body.
type ContentType string

const (
	ContentTypeMarkdown ContentType = "markdown"
	ContentTypeHTML     ContentType = "html"
)

// Valid reports whether t is a supported content type.
func (t ContentType) Valid() bool {
	return t == ContentTypeMarkdown || t == ContentTypeHTML
}

// Article is a single piece of content. DisplayDate drives public ordering
// and falls back to CreatedAt when absent.
type Article struct {
	ID          int64       `json:"id"`
	Title       string      `json:"title"`
	Slug        string      `json:"slug"`
	ContentType ContentType `json:"content_type"`
	Content     *string     `json:"content"`
	CategoryID  *int64      `json:"category_id"`
	ParentID    *int64      `json:"parent_id"`
	DisplayDate *time.Time  `json:"display_date"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`

	// Populated by joins; nil when the article has no category.
	Category *CategorySummary `json:"category,omitempty"`
	// Only loaded on single-article reads.
	Attachments []Attachment `json:"attachments,omitempty"`
}

// EffectiveDisplayDate returns DisplayDate, or CreatedAt when it is unset.
func (a *Article) EffectiveDisplayDate() time.Time {
	if a.DisplayDate != nil {
		return *a.DisplayDate
	}
	return a.CreatedAt
}

// NewArticle is the input for creating an article. An empty Slug is derived
// from Title and a nil DisplayDate defaults to the insert time.
type NewArticle struct {
	Title       string            `json:"title"`
	Slug        string            `json:"slug"`
	ContentType ContentType       `json:"content_type"`
	Content     *string           `json:"content"`
	CategoryID  *int64            `json:"category_id"`
	ParentID    *int64            `json:"parent_id"`
	DisplayDate *time.Time        `json:"display_date"`
	Attachments []AttachmentInput `json:"attachments"`
}

// ArticlePatch carries a partial article update. A field that is absent is
// left alone; a field that is present as null clears the column.
type ArticlePatch struct {
	Title       Optional[string]            `json:"title"`
	Slug        Optional[string]            `json:"slug"`
	ContentType Optional[ContentType]       `json:"content_type"`
	Content     Optional[string]            `json:"content"`
	CategoryID  Optional[int64]             `json:"category_id"`
	ParentID    Optional[int64]             `json:"parent_id"`
	DisplayDate Optional[time.Time]         `json:"display_date"`
	Attachments Optional[[]AttachmentInput] `json:"attachments"`
}

// Empty reports whether the patch changes nothing at all.
func (p *ArticlePatch) Empty() bool {
	return !p.Title.Set && !p.Slug.Set && !p.ContentType.Set && !p.Content.Set &&
		!p.CategoryID.Set && !p.ParentID.Set && !p.DisplayDate.Set && !p.Attachments.Set
}

// ArticlePage is one page of an article listing.
type ArticlePage struct {
	Items       []Article `json:"items"`
	TotalPages  int       `json:"totalPages"`
	CurrentPage int       `json:"currentPage"`
}
