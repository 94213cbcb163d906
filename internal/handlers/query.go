// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/url"
	"strconv"
	"strings"

	"pressroom/internal/models"
)

// parseListParams reads GET /articles query parameters. page defaults to 1,
// limit to the configured default and is clamped to [1, max]. category and
// categories are both accepted as comma lists and merged.
func (a *API) parseListParams(q url.Values) (models.ArticleListParams, string) {
	p := models.ArticleListParams{Page: 1, Limit: a.defaultPageLimit}

	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return p, "page must be a positive integer."
		}
		p.Page = n
	}

	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return p, "limit must be an integer."
		}
		p.Limit = min(max(n, 1), a.maxPageLimit)
	}

	p.CategorySlugs = splitList(q["category"], q["categories"])

	sortBy, err := models.ParseSortField(q.Get("sortBy"))
	if err != nil {
		return p, "sortBy must be one of created_at, updated_at, title, display_date."
	}
	p.SortBy = sortBy

	order, err := models.ParseSortOrder(q.Get("orderDirection"))
	if err != nil {
		return p, "orderDirection must be asc or desc."
	}
	p.Order = order

	return p, ""
}

// splitList flattens repeated, comma separated values, trimming blanks and
// dropping duplicates while keeping first-seen order.
func splitList(groups ...[]string) []string {
	var out []string
	seen := map[string]bool{}
	for _, values := range groups {
		for _, v := range values {
			for _, part := range strings.Split(v, ",") {
				part = strings.TrimSpace(part)
				if part == "" || seen[part] {
					continue
				}
				seen[part] = true
				out = append(out, part)
			}
		}
	}
	return out
}
