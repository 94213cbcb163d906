// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"fmt"
	"mime"
	"strings"
	"unicode/utf8"

	"pressroom/internal/models"
	"pressroom/internal/slug"
)

// Validation limits for article, category and upload fields.
const (
	maxTitleLen        = 300
	maxSlugLen         = 300
	maxContentLen      = 500_000
	maxCategoryNameLen = 200
	maxDescriptionLen  = 2_000
	maxFileTypeLen     = 100
	maxFileURLLen      = 2_048
	maxFilenameLen     = 255
)

// validateTitle checks a required article title.
func validateTitle(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return "Title is required."
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return fmt.Sprintf("Title is too long (max %d characters).", maxTitleLen)
	}
	return ""
}

// validateSlug checks an explicitly supplied slug.
func validateSlug(s string) string {
	if len(s) > maxSlugLen {
		return fmt.Sprintf("Slug is too long (max %d characters).", maxSlugLen)
	}
	if !slug.Valid(s) {
		return "Slug may only contain lowercase letters, digits and single hyphens."
	}
	return ""
}

func validateContentType(ct models.ContentType) string {
	if !ct.Valid() {
		return `Content type must be "markdown" or "html".`
	}
	return ""
}

func validateContent(content *string) string {
	if content != nil && utf8.RuneCountInString(*content) > maxContentLen {
		return fmt.Sprintf("Content is too long (max %d characters).", maxContentLen)
	}
	return ""
}

func validatePositiveID(field string, id *int64) string {
	if id != nil && *id <= 0 {
		return field + " must be a positive id."
	}
	return ""
}

// validateAttachments checks every attachment and reports the first problem
// with its position.
func validateAttachments(items []models.AttachmentInput) string {
	for i, a := range items {
		switch {
		case a.ID != nil && *a.ID <= 0:
			return fmt.Sprintf("Attachment %d: id must be positive.", i+1)
		case strings.TrimSpace(a.FileType) == "":
			return fmt.Sprintf("Attachment %d: file_type is required.", i+1)
		case len(a.FileType) > maxFileTypeLen:
			return fmt.Sprintf("Attachment %d: file_type is too long.", i+1)
		case strings.TrimSpace(a.FileURL) == "":
			return fmt.Sprintf("Attachment %d: file_url is required.", i+1)
		case len(a.FileURL) > maxFileURLLen:
			return fmt.Sprintf("Attachment %d: file_url is too long.", i+1)
		case a.Filename != nil && utf8.RuneCountInString(*a.Filename) > maxFilenameLen:
			return fmt.Sprintf("Attachment %d: filename is too long.", i+1)
		case a.Description != nil && utf8.RuneCountInString(*a.Description) > maxDescriptionLen:
			return fmt.Sprintf("Attachment %d: description is too long.", i+1)
		}
	}
	return ""
}

// validateNewArticle checks a create request and returns the first error found.
func validateNewArticle(in *models.NewArticle) string {
	if msg := validateTitle(in.Title); msg != "" {
		return msg
	}
	if in.Slug != "" {
		if msg := validateSlug(in.Slug); msg != "" {
			return msg
		}
	}
	for _, msg := range []string{
		validateContentType(in.ContentType),
		validateContent(in.Content),
		validatePositiveID("category_id", in.CategoryID),
		validatePositiveID("parent_id", in.ParentID),
		validateAttachments(in.Attachments),
	} {
		if msg != "" {
			return msg
		}
	}
	return ""
}

// validateArticlePatch checks only the fields present in the patch. Fields
// the schema requires cannot be cleared with null.
func validateArticlePatch(p *models.ArticlePatch) string {
	if p.Title.Set {
		if !p.Title.Valid {
			return "Title cannot be null."
		}
		if msg := validateTitle(p.Title.Value); msg != "" {
			return msg
		}
	}
	if p.Slug.Set {
		if !p.Slug.Valid {
			return "Slug cannot be null."
		}
		if msg := validateSlug(p.Slug.Value); msg != "" {
			return msg
		}
	}
	if p.ContentType.Set {
		if !p.ContentType.Valid {
			return "Content type cannot be null."
		}
		if msg := validateContentType(p.ContentType.Value); msg != "" {
			return msg
		}
	}
	if p.Attachments.Set && !p.Attachments.Valid {
		return "Attachments must be an array; send [] to remove all."
	}
	for _, msg := range []string{
		validateContent(p.Content.Ptr()),
		validatePositiveID("category_id", p.CategoryID.Ptr()),
		validatePositiveID("parent_id", p.ParentID.Ptr()),
		validateAttachments(p.Attachments.Value),
	} {
		if msg != "" {
			return msg
		}
	}
	return ""
}

func validateCategoryName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Name is required."
	}
	if utf8.RuneCountInString(name) > maxCategoryNameLen {
		return fmt.Sprintf("Name is too long (max %d characters).", maxCategoryNameLen)
	}
	return ""
}

func validateDescription(d *string) string {
	if d != nil && utf8.RuneCountInString(*d) > maxDescriptionLen {
		return fmt.Sprintf("Description is too long (max %d characters).", maxDescriptionLen)
	}
	return ""
}

// validateNewCategory checks a create request. The slug has already been
// derived from the name when absent.
func validateNewCategory(in *models.NewCategory) string {
	if msg := validateCategoryName(in.Name); msg != "" {
		return msg
	}
	if in.Slug == "" {
		return "Slug cannot be derived from name; supply one."
	}
	if msg := validateSlug(in.Slug); msg != "" {
		return msg
	}
	return validateDescription(in.Description)
}

func validateCategoryPatch(p *models.CategoryPatch) string {
	if p.Name.Set {
		if !p.Name.Valid {
			return "Name cannot be null."
		}
		if msg := validateCategoryName(p.Name.Value); msg != "" {
			return msg
		}
	}
	if p.Slug.Set {
		if !p.Slug.Valid {
			return "Slug cannot be null."
		}
		if msg := validateSlug(p.Slug.Value); msg != "" {
			return msg
		}
	}
	return validateDescription(p.Description.Ptr())
}

// validateUpload checks a presign request.
func validateUpload(fileName, contentType string) string {
	if strings.TrimSpace(fileName) == "" {
		return "fileName is required."
	}
	if utf8.RuneCountInString(fileName) > maxFilenameLen {
		return fmt.Sprintf("fileName is too long (max %d characters).", maxFilenameLen)
	}
	if contentType == "" {
		return "contentType is required."
	}
	if _, _, err := mime.ParseMediaType(contentType); err != nil || !strings.Contains(contentType, "/") {
		return "contentType must be a valid media type."
	}
	return ""
}
