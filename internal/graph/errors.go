package graph

import (
	"errors"
	"fmt"
)

// Sentinel errors, checked with errors.Is.
var (
	// ErrUnsupportedLanguage means no grammar is registered for the language
	// or file extension.
	ErrUnsupportedLanguage = errors.New("unsupported language")

	// ErrFileTooLarge means the source exceeds the configured size limit.
	ErrFileTooLarge = errors.New("file too large")

	// ErrInvalidContent means the source is not valid UTF-8.
	ErrInvalidContent = errors.New("invalid content")

	// ErrNilTree means the parser produced no tree at all.
	ErrNilTree = errors.New("parser returned no tree")

	// ErrNotFound is returned by store lookups that match nothing.
	ErrNotFound = errors.New("not found")
)

// ParseError ties a per-file failure to its path.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
