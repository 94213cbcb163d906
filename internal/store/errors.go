// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// Kind classifies a store failure so callers can map it to a response
// without inspecting driver errors.
type Kind string

const (
	KindValidation Kind = "validation_failed"
	KindConflict   Kind = "conflict"
	KindBadRequest Kind = "bad_request"
	KindNotFound   Kind = "not_found"
	KindInternal   Kind = "internal"
)

// PostgreSQL SQLSTATE codes the store reacts to.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgNotNullViolation    = "23502"
	pgCheckViolation      = "23514"
	pgInvalidText         = "22P02"
)

// Error is a classified store failure. Message is safe to show to users;
// Err keeps the underlying cause for logs.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// newError builds a classified error.
func newError(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// KindOf returns the kind of err, or KindInternal when err is not a
// classified store error.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}

// IsKind reports whether err is a store error of the given kind.
func IsKind(err error, kind Kind) bool {
	var se *Error
	return errors.As(err, &se) && se.Kind == kind
}

// op says which statement produced a driver error. Foreign-key violations
// mean a dangling reference on writes but a blocked delete on deletes.
type op int

const (
	opWrite op = iota
	opDelete
)

// classify turns a driver error into a classified *Error. what names the
// entity for messages ("article", "category", "attachment").
func classify(err error, what string, o op) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return err
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return newError(KindInternal, what+" storage failure", err)
	}
	switch pgErr.Code {
	case pgUniqueViolation:
		return newError(KindConflict, uniqueMessage(what, pgErr.ConstraintName), err)
	case pgForeignKeyViolation:
		if o == opDelete {
			return newError(KindConflict, what+" is still referenced and cannot be deleted", err)
		}
		return newError(KindBadRequest, foreignKeyMessage(what, pgErr.ConstraintName), err)
	case pgNotNullViolation, pgCheckViolation, pgInvalidText:
		return newError(KindValidation, "invalid "+what+" data", err)
	}
	return newError(KindInternal, what+" storage failure", err)
}

func uniqueMessage(what, constraint string) string {
	switch constraint {
	case "categories_name_key":
		return "a category with this name already exists"
	case "categories_slug_key":
		return "a category with this slug already exists"
	case "articles_slug_key":
		return "an article with this slug already exists"
	}
	return what + " already exists"
}

func foreignKeyMessage(what, constraint string) string {
	switch constraint {
	case "articles_category_id_fkey":
		return "category_id does not reference an existing category"
	case "articles_parent_id_fkey":
		return "parent_id does not reference an existing article"
	case "article_attachments_article_id_fkey":
		return "attachment references a missing article"
	}
	return what + " references a missing row"
}
