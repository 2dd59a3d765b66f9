package dlv

import (
	"errors"
	"fmt"
)

// All pipeline errors are fatal to a run: the computation either produces
// one estimate or reports why it could not.
var (
	ErrMalformedRecord      = errors.New("malformed ride record")
	ErrEmptyPopulation      = errors.New("no drivers in input")
	ErrDegenerateRegression = errors.New("not enough usable survival points for regression")
)

// ParseError reports the 1-based input line that failed to load. It matches
// ErrMalformedRecord under errors.Is.
type ParseError struct {
	Line   int
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s: %s", e.Line, ErrMalformedRecord, e.Reason)
}

func (e *ParseError) Is(target error) bool {
	return target == ErrMalformedRecord
}
