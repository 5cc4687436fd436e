package db

import (
	"errors"

	"github.com/kailas-cloud/playmatch/internal/domain"
)

// Sentinel errors for database operations.
var (
	ErrKeyNotFound = errors.New("db: key not found")
	ErrKeyExists   = errors.New("db: key already exists")
)

// Op constants name the failed command for error context.
const (
	OpDel    = "DEL"
	OpScan   = "SCAN"
	OpGet    = "GET"
	OpMGet   = "MGET"
	OpSet    = "SET"
	OpSetNX  = "SET NX"
	OpMSetNX = "MSETNX"
	OpIncrBy = "INCRBY"
	OpExpire = "EXPIRE"
	OpQuery  = "QUERY"
	OpExec   = "EXEC"
)

// Error wraps an underlying error with the operation name for diagnostics.
// It matches domain.ErrStorage under errors.Is.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

// Is reports storage failures as domain.ErrStorage.
func (e *Error) Is(target error) bool { return target == domain.ErrStorage }
