package repo

import (
	"errors"
	"fmt"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"planforge/internal/domain"
	"planforge/internal/metrics"
)

var ErrNotFound = errors.New("not found")

// NotFoundError reports a missing record. Ref is set when the record was
// named by another record's reference, e.g. "task.jobId".
type NotFoundError struct {
	Kind domain.Kind
	ID   string
	Ref  string
}

func (e *NotFoundError) Error() string {
	if e.Ref != "" {
		return fmt.Sprintf("%s %q not found (%s)", e.Kind, e.ID, e.Ref)
	}
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ConstraintError is a store-level rule the write would break: a restricted
// delete, a second child on a 1:1 link or a duplicate unique value.
type ConstraintError struct {
	Reason string
	Err    error
}

func (e *ConstraintError) Error() string { return e.Reason }

func (e *ConstraintError) Unwrap() error { return e.Err }

// PersistenceError wraps a store fault with the operation that hit it.
type PersistenceError struct {
	Kind domain.Kind
	Op   string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Kind, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// ErrorKind classifies gateway errors.
type ErrorKind string

const (
	ErrorNone        ErrorKind = ""
	ErrorValidation  ErrorKind = "validation"
	ErrorNotFound    ErrorKind = "not_found"
	ErrorPersistence ErrorKind = "persistence"
)

// Classify reports which of the three gateway error kinds err is. Errors of
// unknown shape count as persistence faults.
func Classify(err error) ErrorKind {
	switch {
	case err == nil:
		return ErrorNone
	case IsValidation(err):
		return ErrorValidation
	case IsNotFound(err):
		return ErrorNotFound
	default:
		return ErrorPersistence
	}
}

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

func IsValidation(err error) bool {
	_, ok := domain.AsValidation(err)
	return ok
}

func IsPersistence(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}

// IsConstraint reports whether err was caused by a ConstraintError.
func IsConstraint(err error) bool {
	var ce *ConstraintError
	return errors.As(err, &ce)
}

// wrapErr gives every error leaving a gateway one of the three kinds.
func wrapErr(kind domain.Kind, op string, err error) error {
	if err == nil || IsValidation(err) || IsNotFound(err) || IsPersistence(err) {
		return err
	}
	return &PersistenceError{Kind: kind, Op: op, Err: storeCause(err)}
}

// storeCause turns SQLite constraint violations into ConstraintErrors.
func storeCause(err error) error {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return err
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return &ConstraintError{Reason: "duplicate value: " + se.Error(), Err: err}
	case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
		return &ConstraintError{Reason: "dangling reference: " + se.Error(), Err: err}
	case sqlite3.SQLITE_CONSTRAINT_NOTNULL:
		return &ConstraintError{Reason: "missing value: " + se.Error(), Err: err}
	}
	if se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT {
		return &ConstraintError{Reason: se.Error(), Err: err}
	}
	return err
}

func outcome(err error) string {
	switch Classify(err) {
	case ErrorNone:
		return metrics.OutcomeOK
	case ErrorValidation:
		return metrics.OutcomeValidation
	case ErrorNotFound:
		return metrics.OutcomeNotFound
	default:
		return metrics.OutcomePersistence
	}
}
