// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// Attachment is a file reference owned by exactly one article. FileURL holds
// the object-store key or a full URL; the bytes never pass through this
// service.
type Attachment struct {
	ID          int64     `json:"id"`
	ArticleID   int64     `json:"article_id"`
	FileType    string    `json:"file_type"`
	FileURL     string    `json:"file_url"`
	Filename    *string   `json:"filename"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// AttachmentInput describes an attachment on create or update. ID is only
// meaningful on update, where it selects an existing attachment to modify.
type AttachmentInput struct {
	ID          *int64  `json:"id,omitempty"`
	FileType    string  `json:"file_type"`
	FileURL     string  `json:"file_url"`
	Filename    *string `json:"filename"`
	Description *string `json:"description"`
}
