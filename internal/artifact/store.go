// Package artifact reads and writes the XML artifacts of a configuration
// repository: per-entity definition files and the repository-wide indexes.
//
// Documents are loaded into a mutable etree tree, edited in memory, and
// persisted atomically. The store never reformats content it did not touch.
package artifact

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/beevik/etree"

	"github.com/akoval/cfgclone/internal/atomicfile"
)

// xmlDeclaration is the canonical header every persisted artifact carries.
const xmlDeclaration = `<?xml version="1.0" encoding="UTF-8"?>`

// Store performs file-system access for configuration artifacts.
type Store struct{}

// NewStore returns a file-system backed store.
func NewStore() *Store {
	return &Store{}
}

// Load parses the file at path into a document.
//
// Returns *NotFoundError if the file does not exist and *ParseError if its
// content is not well-formed XML.
func (s *Store) Load(path string) (*etree.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &NotFoundError{Path: path}
		}
		return nil, &ParseError{Path: path, Err: err}
	}
	return s.Parse(data, path)
}

// Parse parses raw bytes into a document. path is used only for error
// reporting.
func (s *Store) Parse(data []byte, path string) (*etree.Document, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	if doc.Root() == nil {
		return nil, &ParseError{Path: path, Err: errNoRoot}
	}
	return doc, nil
}

// ReadText reads the file at path as raw text, without parsing.
//
// The clone engine rewrites donor content textually before parsing it, so
// the original byte layout must survive the read.
func (s *Store) ReadText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", &NotFoundError{Path: path}
		}
		return "", &ParseError{Path: path, Err: err}
	}
	return string(data), nil
}

// Save serializes doc to path atomically, creating parent directories as
// needed. The output always starts with the canonical XML declaration.
//
// Returns *WriteError on any I/O failure.
func (s *Store) Save(doc *etree.Document, path string) error {
	data, err := doc.WriteToBytes()
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}

	if !bytes.HasPrefix(bytes.TrimLeft(data, " \t\r\n"), []byte("<?xml")) {
		data = append([]byte(xmlDeclaration+"\n"), data...)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	if err := atomicfile.WriteFile(path, data); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	return nil
}

// DeleteIfExists removes the file at path. Absence is not an error.
func (s *Store) DeleteIfExists(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return &WriteError{Path: path, Err: err}
	}
	return nil
}
