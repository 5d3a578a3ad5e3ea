package userrequest

import (
	"errors"
	"fmt"
)

// Reasons a request is rejected. They are matched with errors.Is against an *AssertError.
var (
	ErrPrefixMismatch = errors.New("request path does not start with uri prefix")
	ErrMalformedPath  = errors.New("request path is not validly percent-encoded")
	ErrPathTraversal  = errors.New("a non-normalized url encountered")
	ErrMissingMode    = errors.New("mode token missing from encoded parameters")
	ErrInvalidMode    = errors.New("mode token is not an integer")
	ErrOddParams      = errors.New("odd number of encoded parameter tokens")
)

// AssertError is returned when a request violates the dispatch URI protocol. The
// request must be rejected; no partial UserRequest is ever returned with it.
type AssertError struct {
	Reason error
	Input  string
}

func (e *AssertError) Error() string {
	return fmt.Sprintf("%v. Was trying to parse '%s'", e.Reason, e.Input)
}

func (e *AssertError) Unwrap() error {
	return e.Reason
}

func assertErr(reason error, input string) *AssertError {
	return &AssertError{Reason: reason, Input: input}
}

// ReasonCode maps a parse error to a short label used in metrics and API responses.
func ReasonCode(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrPathTraversal):
		return "path_traversal"
	case errors.Is(err, ErrOddParams):
		return "odd_params"
	case errors.Is(err, ErrInvalidMode):
		return "invalid_mode"
	case errors.Is(err, ErrMissingMode):
		return "missing_mode"
	case errors.Is(err, ErrMalformedPath):
		return "malformed_path"
	case errors.Is(err, ErrPrefixMismatch):
		return "prefix_mismatch"
	default:
		return "internal"
	}
}
