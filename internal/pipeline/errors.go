package pipeline

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNoValidRows      = errors.New("no valid rows remaining after dropping rows with missing or unparseable Email/Date")
	ErrUnknownRecipient = errors.New("unknown recipient")
	ErrUnknownSchool    = errors.New("no approver mapped for school")
)

// SchemaError reports required columns missing from the input header.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return "missing required columns: " + strings.Join(e.Missing, ", ")
}

// ProcessingError wraps a failure recovered at the pipeline boundary.
type ProcessingError struct {
	Value any
	Stack []byte
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("unexpected processing error: %v", e.Value)
}

func (e *ProcessingError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
