package docerr

import (
	"errors"
	"fmt"
)

// Kind represents stable error codes for all failure modes
type Kind string

const (
	// EmptyInput indicates a required query, path, section or topic was blank
	EmptyInput Kind = "EMPTY_INPUT"
	// InvalidPath indicates a traversal or absolute-path attempt
	InvalidPath Kind = "INVALID_PATH"
	// NotFound indicates a missing file, section, category or lookup candidate
	NotFound Kind = "NOT_FOUND"
	// IsADirectory indicates a path resolved to a directory where a file was expected
	IsADirectory Kind = "IS_A_DIRECTORY"
	// InvalidPattern indicates the search engine rejected the query expression
	InvalidPattern Kind = "INVALID_PATTERN"
	// InfrastructureFailure indicates a search engine or filesystem failure
	InfrastructureFailure Kind = "INFRASTRUCTURE_FAILURE"
)

// Error is a classified failure with a short human-readable message
type Error struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	Path    string `json:"path,omitempty"`
	cause   error
}

// New creates an Error without an underlying cause
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates an Error with a formatted message
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error that keeps cause reachable through errors.Unwrap
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

// WithPath records the offending path
func (e *Error) WithPath(path string) *Error {
	e.Path = path
	return e
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.cause
}

// KindOf returns the Kind of the first *Error in err's chain, or "" if none
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// Is reports whether err carries the given kind
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
