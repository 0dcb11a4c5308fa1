// Package db defines shared datastore error types.
package db

import (
	"errors"
	"fmt"

	"github.com/cidade-aberta/urbanq/internal/domain"
)

// Sentinel errors for database operations.
var (
	ErrKeyNotFound = errors.New("db: key not found")
)

// Op constants map to Redis command names for error context.
const (
	OpDel      = "DEL"
	OpExists   = "EXISTS"
	OpScan     = "SCAN"
	OpGet      = "GET"
	OpSet      = "SET"
	OpSAdd     = "SADD"
	OpSMembers = "SMEMBERS"
	OpIncrBy   = "INCRBY"
	OpExpire   = "EXPIRE"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

// WrapOp tags a SQL failure with its operation and the datastore
// sentinel so per-strategy recovery can match it.
func WrapOp(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, domain.ErrDatastore, err)
}
