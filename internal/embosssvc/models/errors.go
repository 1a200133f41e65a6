package models

import (
	"fmt"
	"strings"
)

// DecodeError means the uploaded bytes could not be read as the declared
// spreadsheet format. The batch is rejected, nothing is mutated.
type DecodeError struct {
	Format string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("cannot decode upload as %s: %v", e.Format, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// ValidationError means required columns were absent from the upload header.
// The whole batch is rejected, nothing is mutated.
type ValidationError struct {
	MissingColumns []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.MissingColumns, ", "))
}

// PersistenceError means writing the merged snapshot back failed. The
// previous snapshot is left intact and the batch can be resubmitted.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
