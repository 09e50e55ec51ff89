// Package check handles repository-wide structural consistency checks.
//
// The checks cover only the invariants the cloning tool itself maintains:
// type-grouped record ordering inside each index, agreement between the two
// indexes, and presence of a definition file for every registered entity.
// Schema or semantic validation for the downstream loader is out of scope.
package check

import (
	"fmt"
	"os"
	"strings"

	"github.com/akoval/cfgclone/internal/artifact"
	"github.com/akoval/cfgclone/internal/index"
	"github.com/akoval/cfgclone/internal/repo"
)

// IssueLevel indicates the severity of an issue.
type IssueLevel int

const (
	LevelError IssueLevel = iota
	LevelWarning
)

func (l IssueLevel) String() string {
	switch l {
	case LevelError:
		return "ERROR"
	case LevelWarning:
		return "WARN"
	default:
		return "UNKNOWN"
	}
}

// Issue represents a single consistency finding.
type Issue struct {
	Level   IssueLevel `json:"level"`
	Path    string     `json:"path"`
	Message string     `json:"message"`
}

// Checker runs structural checks against a repository.
type Checker struct {
	store     *artifact.Store
	layout    repo.Layout
	container string
}

// NewChecker builds a checker for the given layout. container is the record
// container element name; empty means the default.
func NewChecker(store *artifact.Store, layout repo.Layout, container string) *Checker {
	if container == "" {
		container = index.DefaultContainer
	}
	return &Checker{store: store, layout: layout, container: container}
}

// Run executes all checks and returns the issues found, errors first.
func (c *Checker) Run() ([]Issue, error) {
	structural, err := c.loadRecords(c.layout.StructuralIndexPath())
	if err != nil {
		return nil, err
	}
	dump, err := c.loadRecords(c.layout.DumpIndexPath())
	if err != nil {
		return nil, err
	}

	var issues []Issue
	issues = append(issues, c.checkGrouping(c.layout.StructuralIndexPath(), structural)...)
	issues = append(issues, c.checkGrouping(c.layout.DumpIndexPath(), dump)...)
	issues = append(issues, c.checkMirroring(structural, dump)...)
	issues = append(issues, c.checkDefinitions(structural)...)

	sortIssues(issues)
	return issues, nil
}

// record is one registration entry as read from an index.
type record struct {
	qname string
	typ   string
}

// loadRecords reads all registration records from an index. A record's type
// is the qualified name's leading segment.
func (c *Checker) loadRecords(path string) ([]record, error) {
	doc, err := c.store.Load(path)
	if err != nil {
		return nil, err
	}
	container, err := index.RecordContainer(doc, c.container)
	if err != nil {
		return nil, &artifact.ParseError{Path: path, Err: err}
	}

	var records []record
	for _, ch := range container.ChildElements() {
		text := ch.Text()
		typ, _, ok := strings.Cut(text, ".")
		if !ok {
			continue
		}
		records = append(records, record{qname: text, typ: typ})
	}
	return records, nil
}

// checkGrouping flags same-type records that are not contiguous.
func (c *Checker) checkGrouping(path string, records []record) []Issue {
	var issues []Issue
	lastIndex := make(map[string]int)
	for i, r := range records {
		if prev, seen := lastIndex[r.typ]; seen && prev != i-1 {
			issues = append(issues, Issue{
				Level:   LevelError,
				Path:    path,
				Message: fmt.Sprintf("record %q breaks the %s group (previous %s record is %d entries earlier)", r.qname, r.typ, r.typ, i-prev),
			})
		}
		lastIndex[r.typ] = i
	}
	return issues
}

// checkMirroring flags entities registered in one index but not the other.
func (c *Checker) checkMirroring(structural, dump []record) []Issue {
	var issues []Issue

	inDump := make(map[string]bool, len(dump))
	for _, r := range dump {
		inDump[r.qname] = true
	}
	inStructural := make(map[string]bool, len(structural))
	for _, r := range structural {
		inStructural[r.qname] = true
	}

	for _, r := range structural {
		if !inDump[r.qname] {
			issues = append(issues, Issue{
				Level:   LevelError,
				Path:    c.layout.DumpIndexPath(),
				Message: fmt.Sprintf("%q is registered in the structural index but missing here", r.qname),
			})
		}
	}
	for _, r := range dump {
		if !inStructural[r.qname] {
			issues = append(issues, Issue{
				Level:   LevelError,
				Path:    c.layout.StructuralIndexPath(),
				Message: fmt.Sprintf("%q is registered in the dump index but missing here", r.qname),
			})
		}
	}
	return issues
}

// checkDefinitions flags registered entities whose definition file is absent.
func (c *Checker) checkDefinitions(records []record) []Issue {
	var issues []Issue
	for _, r := range records {
		typ, name, ok := strings.Cut(r.qname, ".")
		if !ok {
			continue
		}
		path := c.layout.DefinitionPath(repo.Entity{Type: typ, Name: name})
		if _, err := os.Stat(path); os.IsNotExist(err) {
			issues = append(issues, Issue{
				Level:   LevelWarning,
				Path:    path,
				Message: fmt.Sprintf("definition file for %q is missing", r.qname),
			})
		}
	}
	return issues
}

func sortIssues(issues []Issue) {
	// Errors before warnings, then stable by insertion order.
	var errs, warns []Issue
	for _, i := range issues {
		if i.Level == LevelError {
			errs = append(errs, i)
		} else {
			warns = append(warns, i)
		}
	}
	copy(issues, append(errs, warns...))
}

// Records lists all registration records in an index file, in order. Used by
// the list command.
func Records(store *artifact.Store, path, container string) ([]string, error) {
	if container == "" {
		container = index.DefaultContainer
	}
	doc, err := store.Load(path)
	if err != nil {
		return nil, err
	}
	el, err := index.RecordContainer(doc, container)
	if err != nil {
		return nil, &artifact.ParseError{Path: path, Err: err}
	}

	var out []string
	for _, ch := range el.ChildElements() {
		if text := strings.TrimSpace(ch.Text()); text != "" {
			out = append(out, text)
		}
	}
	return out, nil
}
