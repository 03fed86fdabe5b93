package core

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound is matched with errors.Is for every missing-document outcome.
var ErrNotFound = errors.New("not found")

// NotFoundError names the resource and id that had no row.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

func notFound(resource string, id fmt.Stringer) error {
	return &NotFoundError{Resource: resource, ID: id.String()}
}

// ValidationError carries per-field violations found before any transaction opens.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError returns an empty error ready for Add.
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: map[string]string{}}
}

// Add records a violation. The first message for a field wins.
func (e *ValidationError) Add(field, message string) {
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = message
	}
}

func (e *ValidationError) Empty() bool { return len(e.Fields) == 0 }

// Err returns nil when no violation was recorded, so callers can `return v.Err()`.
func (e *ValidationError) Err() error {
	if e.Empty() {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// ConstraintKind classifies an integrity violation raised by the store.
type ConstraintKind string

const (
	ConstraintDuplicate  ConstraintKind = "duplicate"
	ConstraintForeignKey ConstraintKind = "foreign_key"
	ConstraintNotNull    ConstraintKind = "not_null"
	ConstraintCheck      ConstraintKind = "check"
)

// PostgreSQL SQLSTATE codes for integrity constraint violations.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgNotNullViolation    = "23502"
	pgCheckViolation      = "23514"
)

// ConstraintError is a store-level integrity violation. The enclosing transaction
// has already been rolled back when a caller sees it.
type ConstraintError struct {
	Kind       ConstraintKind
	Constraint string
	Column     string
	Detail     string
	Err        error
}

func (e *ConstraintError) Error() string {
	msg := e.Kind.Message()
	if e.Constraint != "" {
		msg += " (" + e.Constraint + ")"
	} else if e.Column != "" {
		msg += " (" + e.Column + ")"
	}
	return msg
}

func (e *ConstraintError) Unwrap() error { return e.Err }

// Message is the client-facing wording for the kind.
func (k ConstraintKind) Message() string {
	switch k {
	case ConstraintDuplicate:
		return "Duplicate entry"
	case ConstraintForeignKey:
		return "Referenced record not found"
	case ConstraintNotNull:
		return "Required field is missing"
	case ConstraintCheck:
		return "Invalid field value"
	default:
		return "Constraint violation"
	}
}

// ClassifyDBError turns a wrapped *pgconn.PgError integrity violation into a
// *ConstraintError. Any other error, including connection and timeout failures,
// is returned unchanged.
func ClassifyDBError(err error) error {
	if err == nil {
		return nil
	}
	var ce *ConstraintError
	if errors.As(err, &ce) {
		return err
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	var kind ConstraintKind
	switch pgErr.Code {
	case pgUniqueViolation:
		kind = ConstraintDuplicate
	case pgForeignKeyViolation:
		kind = ConstraintForeignKey
	case pgNotNullViolation:
		kind = ConstraintNotNull
	case pgCheckViolation:
		kind = ConstraintCheck
	default:
		return err
	}
	return &ConstraintError{
		Kind:       kind,
		Constraint: pgErr.ConstraintName,
		Column:     pgErr.ColumnName,
		Detail:     pgErr.Detail,
		Err:        err,
	}
}
