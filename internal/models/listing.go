// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"fmt"
	"strings"
)

// SortField is a column an article listing can be ordered by.
type SortField string

const (
	SortCreatedAt   SortField = "created_at"
	SortUpdatedAt   SortField = "updated_at"
	SortTitle       SortField = "title"
	SortDisplayDate SortField = "display_date"
)

// ParseSortField validates a sortBy query value. Empty means display_date.
func ParseSortField(s string) (SortField, error) {
	switch f := SortField(s); f {
	case "":
		return SortDisplayDate, nil
	case SortCreatedAt, SortUpdatedAt, SortTitle, SortDisplayDate:
		return f, nil
	}
	return "", fmt.Errorf("unsupported sort field %q", s)
}

// SortOrder is the direction of the primary sort key.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ParseSortOrder validates an orderDirection query value. Empty means desc.
func ParseSortOrder(s string) (SortOrder, error) {
	switch o := SortOrder(strings.ToLower(s)); o {
	case "":
		return SortDesc, nil
	case SortAsc, SortDesc:
		return o, nil
	}
	return "", fmt.Errorf("unsupported order direction %q", s)
}

// ArticleListParams selects one page of the article listing.
type ArticleListParams struct {
	Page          int
	Limit         int
	CategorySlugs []string
	SortBy        SortField
	Order         SortOrder
}
