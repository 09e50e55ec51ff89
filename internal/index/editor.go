// Package index edits registration records inside a repository index
// document (Configuration.xml, ConfigDumpInfo.xml).
//
// A registration record is a leaf element whose text is a qualified entity
// name ("Type.Name"). Records live under a single container element and are
// grouped by type: records of the same type stay contiguous, and a new
// record goes immediately after the last existing record of its type. The
// downstream configuration loader depends on that ordering.
package index

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

// DefaultContainer is the conventional record container element name.
const DefaultContainer = "ChildObjects"

// Matcher reports whether a record element belongs to the type group being
// targeted. The two indexes group differently: the structural index by
// element tag, the dump index by qualified-name prefix.
type Matcher func(*etree.Element) bool

// ByTag matches records whose element tag equals typeName, regardless of
// namespace prefix (both <Catalog> and <cfg:Catalog> count).
func ByTag(typeName string) Matcher {
	return func(el *etree.Element) bool {
		return el.Tag == typeName
	}
}

// ByQualifiedPrefix matches records whose text starts with "typeName.".
func ByQualifiedPrefix(typeName string) Matcher {
	prefix := typeName + "."
	return func(el *etree.Element) bool {
		return strings.HasPrefix(el.Text(), prefix)
	}
}

// RecordContainer returns the first element in doc named containerTag (any
// namespace prefix), searching in document order.
func RecordContainer(doc *etree.Document, containerTag string) (*etree.Element, error) {
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("index document has no root element")
	}
	if el := findByTag(root, containerTag); el != nil {
		return el, nil
	}
	return nil, fmt.Errorf("index document has no <%s> element", containerTag)
}

func findByTag(el *etree.Element, tag string) *etree.Element {
	if el.Tag == tag {
		return el
	}
	for _, ch := range el.ChildElements() {
		if found := findByTag(ch, tag); found != nil {
			return found
		}
	}
	return nil
}

// FindRecord returns the record under container whose text equals
// qualifiedName, or nil if no such record exists.
func FindRecord(container *etree.Element, qualifiedName string) *etree.Element {
	for _, ch := range container.ChildElements() {
		if ch.Text() == qualifiedName {
			return ch
		}
		if found := FindRecord(ch, qualifiedName); found != nil {
			return found
		}
	}
	return nil
}

// RemoveRecord detaches rec from its parent, along with the whitespace run
// that preceded it so repeated remove/insert cycles do not accumulate blank
// lines. No-op if rec is already detached.
func RemoveRecord(rec *etree.Element) {
	parent := rec.Parent()
	if parent == nil {
		return
	}
	idx := rec.Index()
	if idx > 0 {
		if cd, ok := parent.Child[idx-1].(*etree.CharData); ok && strings.TrimSpace(cd.Data) == "" {
			parent.RemoveChildAt(idx - 1)
		}
	}
	parent.RemoveChild(rec)
}

// LastOfType returns the last direct child of container matched by match,
// or nil if the group is empty.
func LastOfType(container *etree.Element, match Matcher) *etree.Element {
	var last *etree.Element
	for _, ch := range container.ChildElements() {
		if match(ch) {
			last = ch
		}
	}
	return last
}

// NewRecord builds a registration record element. space is the namespace
// prefix ("" for none), tag the element name, text the qualified name.
func NewRecord(space, tag, text string) *etree.Element {
	el := etree.NewElement(tag)
	el.Space = space
	el.SetText(text)
	return el
}

// InsertAfterLastOfType inserts rec immediately after the last record in
// container matched by match. If no record matches, rec is appended as the
// container's final child; first-of-type records therefore land at the tail
// rather than at a type-appropriate position, a known limitation kept for
// parity with the repository format's existing tooling.
func InsertAfterLastOfType(container *etree.Element, match Matcher, rec *etree.Element) {
	anchor := LastOfType(container, match)
	if anchor == nil {
		container.AddChild(rec)
		return
	}
	insertAfter(container, anchor, rec)
}

// insertAfter places rec right after anchor, replicating the whitespace run
// that precedes anchor so the new record lands on its own line with matching
// indentation.
func insertAfter(parent, anchor, rec *etree.Element) {
	idx := anchor.Index()
	if idx > 0 {
		if cd, ok := parent.Child[idx-1].(*etree.CharData); ok && strings.TrimSpace(cd.Data) == "" {
			parent.InsertChildAt(idx+1, etree.NewText(cd.Data))
			parent.InsertChildAt(idx+2, rec)
			return
		}
	}
	parent.InsertChildAt(idx+1, rec)
}
