// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
package dberr

import (
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/taibuivan/yamdb/internal/platform/apperr"
)

var (
	// ErrNotFound is a standard error returned when a queried row doesn't exist.
	ErrNotFound = apperr.NotFound("Resource")
)

// Wrap inspects a database error and wraps it into a meaningful [apperr.AppError].
// It hides internal database details from the client while classifying the error type.
//
// The resource name is used for NOT_FOUND messages ("Title not found").
func Wrap(err error, resource string) error {
	if err == nil {
		return nil
	}

	// 1. Not Found mapping
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound(resource)
	}

	// 2. Constraint violations are client errors
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return apperr.ValidationError(fmt.Sprintf("%s already exists", resource), apperr.FieldError{
				Field:   constraintField(pgErr.ConstraintName),
				Message: "Must be unique",
			})
		case pgerrcode.ForeignKeyViolation:
			return apperr.ValidationError(fmt.Sprintf("%s references a missing object", resource), apperr.FieldError{
				Field:   constraintField(pgErr.ConstraintName),
				Message: "Referenced object does not exist",
			})
		case pgerrcode.InvalidTextRepresentation:
			return apperr.NotFound(resource)
		}
	}

	// 3. Unknown query errors become Internal Server Errors
	return apperr.Internal(err)
}

// constraintField maps a named constraint to the JSON field it protects.
func constraintField(constraint string) string {
	if field, ok := constraintFields[constraint]; ok {
		return field
	}
	return "non_field_errors"
}

// constraintFields lists the constraints declared in the migrations.
var constraintFields = map[string]string{
	"account_username_key":      "username",
	"account_email_key":         "email",
	"category_slug_key":         "slug",
	"genre_slug_key":            "slug",
	"review_userid_titleid_key": "non_field_errors",
	"title_categoryid_fkey":     "category",
	"titlegenre_genreid_fkey":   "genre",
}
