package storage

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// ErrNotFound is returned when a lookup by hash, number or relation yields no
// row. It is a normal outcome, not a store failure.
var ErrNotFound = errors.New("not found")

// IntegrityError marks a fatal import-batch inconsistency, e.g. a transaction
// referencing a block number that is not part of the same batch. The
// enclosing database transaction is rolled back and the failing stage is
// reported.
type IntegrityError struct {
	Stage  string
	Reason string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("import integrity violation in stage %s: %s", e.Stage, e.Reason)
}

// StoreError wraps a driver failure outside the tolerated conflict cases:
// connection loss, timeouts, unexpected constraint violations.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store failure during %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation
}

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqForeignKeyViolation
}
