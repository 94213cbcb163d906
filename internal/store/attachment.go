// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"pressroom/internal/models"
)

// attachmentColumns lists the columns selected in attachment queries.
const attachmentColumns = `id, article_id, file_type, file_url, filename, description, created_at`

// scanAttachment scans an attachment row from the result set.
func scanAttachment(row scanner) (*models.Attachment, error) {
	var m models.Attachment
	err := row.Scan(&m.ID, &m.ArticleID, &m.FileType, &m.FileURL, &m.Filename, &m.Description, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// listAttachments returns the attachments of one article ordered by id.
func listAttachments(ctx context.Context, q querier, articleID int64) ([]models.Attachment, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT `+attachmentColumns+`
		FROM article_attachments
		WHERE article_id = $1
		ORDER BY id
	`, articleID)
	if err != nil {
		return nil, classify(fmt.Errorf("list attachments: %w", err), "attachment", opWrite)
	}
	defer rows.Close()

	items := []models.Attachment{}
	for rows.Next() {
		m, err := scanAttachment(rows)
		if err != nil {
			return nil, classify(fmt.Errorf("scan attachment: %w", err), "attachment", opWrite)
		}
		items = append(items, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(fmt.Errorf("iterate attachments: %w", err), "attachment", opWrite)
	}
	return items, nil
}

// FileReferenced reports whether any attachment still points at fileURL.
func (s *ArticleStore) FileReferenced(ctx context.Context, fileURL string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM article_attachments WHERE file_url = $1)", fileURL,
	).Scan(&exists)
	if err != nil {
		return false, classify(fmt.Errorf("check attachment file: %w", err), "attachment", opWrite)
	}
	return exists, nil
}

// insertAttachments writes all inputs for an article as one multi-row
// INSERT. Any failure fails the whole batch.
func insertAttachments(ctx context.Context, q querier, articleID int64, inputs []models.AttachmentInput) ([]models.Attachment, error) {
	if len(inputs) == 0 {
		return []models.Attachment{}, nil
	}

	b := psql.Insert("article_attachments").
		Columns("article_id", "file_type", "file_url", "filename", "description")
	for _, in := range inputs {
		b = b.Values(articleID, in.FileType, in.FileURL, in.Filename, in.Description)
	}
	query, args, err := b.Suffix("RETURNING " + attachmentColumns).ToSql()
	if err != nil {
		return nil, newError(KindInternal, "could not build attachment insert", err)
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(fmt.Errorf("insert attachments: %w", err), "attachment", opWrite)
	}
	defer rows.Close()

	items := make([]models.Attachment, 0, len(inputs))
	for rows.Next() {
		m, err := scanAttachment(rows)
		if err != nil {
			return nil, classify(fmt.Errorf("scan inserted attachment: %w", err), "attachment", opWrite)
		}
		items = append(items, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(fmt.Errorf("insert attachments: %w", err), "attachment", opWrite)
	}
	return items, nil
}

// reconcileAttachments makes the stored attachment set of an article equal
// to inputs: inputs with an ID update that attachment, inputs without one
// are inserted, and stored attachments not mentioned are deleted. An ID
// that belongs to another article is rejected.
func reconcileAttachments(ctx context.Context, q querier, articleID int64, inputs []models.AttachmentInput) error {
	existing, err := listAttachments(ctx, q, articleID)
	if err != nil {
		return err
	}
	owned := make(map[int64]bool, len(existing))
	for _, m := range existing {
		owned[m.ID] = true
	}

	keep := make(map[int64]bool, len(inputs))
	var added []models.AttachmentInput
	for _, in := range inputs {
		if in.ID == nil {
			added = append(added, in)
			continue
		}
		if !owned[*in.ID] {
			return newError(KindBadRequest, fmt.Sprintf("attachment %d does not belong to article %d", *in.ID, articleID), nil)
		}
		if keep[*in.ID] {
			return newError(KindValidation, fmt.Sprintf("attachment %d listed more than once", *in.ID), nil)
		}
		keep[*in.ID] = true

		_, err := q.ExecContext(ctx, `
			UPDATE article_attachments
			SET file_type = $1, file_url = $2, filename = $3, description = $4
			WHERE id = $5 AND article_id = $6
		`, in.FileType, in.FileURL, in.Filename, in.Description, *in.ID, articleID)
		if err != nil {
			return classify(fmt.Errorf("update attachment %d: %w", *in.ID, err), "attachment", opWrite)
		}
	}

	var removed []int64
	for _, m := range existing {
		if !keep[m.ID] {
			removed = append(removed, m.ID)
		}
	}
	if len(removed) > 0 {
		query, args, err := psql.Delete("article_attachments").
			Where(sq.Eq{"article_id": articleID, "id": removed}).
			ToSql()
		if err != nil {
			return newError(KindInternal, "could not build attachment delete", err)
		}
		if _, err := q.ExecContext(ctx, query, args...); err != nil {
			return classify(fmt.Errorf("delete attachments: %w", err), "attachment", opDelete)
		}
	}

	_, err = insertAttachments(ctx, q, articleID, added)
	return err
}
