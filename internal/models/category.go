// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// Category groups articles. Name and slug are both unique.
type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CategorySummary is the denormalized category embedded in article rows.
type CategorySummary struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// NewCategory is the input for creating a category.
type NewCategory struct {
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Description *string `json:"description"`
}

// CategoryPatch carries a partial category update. Only fields present in
// the decoded JSON are written.
type CategoryPatch struct {
	Name        Optional[string] `json:"name"`
	Slug        Optional[string] `json:"slug"`
	Description Optional[string] `json:"description"`
}
