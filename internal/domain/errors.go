package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedRecord matches every *MalformedRecordError via errors.Is.
	ErrMalformedRecord = errors.New("malformed record")

	// ErrEmptyDataset is returned when there are no records to build from.
	ErrEmptyDataset = errors.New("empty dataset")
)

// MalformedRecordError describes why a raw record could not be normalized.
type MalformedRecordError struct {
	Index  int // position in the input; -1 when normalized on its own
	Field  string
	Value  string
	Reason string
	Err    error
}

func (e *MalformedRecordError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("malformed record %d: %s %q: %s", e.Index, e.Field, e.Value, e.Reason)
	}
	return fmt.Sprintf("malformed record: %s %q: %s", e.Field, e.Value, e.Reason)
}

func (e *MalformedRecordError) Is(target error) bool {
	return target == ErrMalformedRecord
}

func (e *MalformedRecordError) Unwrap() error {
	return e.Err
}

func malformed(field, value, reason string, err error) *MalformedRecordError {
	return &MalformedRecordError{Index: -1, Field: field, Value: value, Reason: reason, Err: err}
}
