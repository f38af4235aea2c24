package models

import (
	"github.com/cockroachdb/errors"
)

// Base errors, wrapped by the more specific ones below.
var (
	// BadParameterError marks a caller bug: the operation must not be retried.
	BadParameterError = errors.New("bad parameter")

	// NotFoundError marks a lookup miss against the live metadata.
	NotFoundError = errors.New("not found")

	// ForbiddenError marks an operation the caller's permissions do not cover.
	ForbiddenError = errors.New("forbidden")
)

// Configuration and integrity errors. They indicate a mismatch between the
// code and the metadata tables that cannot self-correct, so they are always
// fatal to the current operation.
var (
	ErrModelNotFound    = errors.Wrap(NotFoundError, "dynamic model not found")
	ErrFieldNotFound    = errors.Wrap(NotFoundError, "dynamic field not found")
	ErrRecordNotFound   = errors.Wrap(NotFoundError, "dynamic record not found")
	ErrSchemaIntegrity  = errors.New("dynamic schema integrity error")
	ErrUnknownFieldKind = errors.Wrap(BadParameterError, "unknown field kind")
)

// Query-spec errors: always a caller bug.
var (
	ErrEmptyQuerySpec  = errors.Wrap(BadParameterError, "empty query spec")
	ErrInvalidDataSlug = errors.Wrap(BadParameterError, "invalid data slug")
)
