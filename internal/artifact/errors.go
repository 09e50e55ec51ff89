package artifact

import (
	"errors"
	"fmt"
)

var errNoRoot = errors.New("document has no root element")

// NotFoundError reports that an artifact expected on disk is absent.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("artifact not found: %s", e.Path)
}

// ParseError reports that a file exists but could not be parsed as XML.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed artifact %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// WriteError reports an I/O failure while persisting an artifact.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
