// Package engine implements the clone-and-integrate protocol: duplicating a
// configuration entity's definition artifact and registering the duplicate
// in the repository's index files.
//
// A run is four ordered phases, each persisting its own artifacts before the
// next begins:
//
//  1. cleanup — remove leftovers of a previous run for the same clone name,
//     so re-running converges instead of accumulating duplicates
//  2. duplicate — read the donor definition as raw text and rewrite
//     name-derived references to the clone's name
//  3. regenerate — parse the rewritten text and give the clone fresh
//     identifiers, then persist the clone's definition file
//  4. integrate — insert a registration record for the clone into each
//     index, preserving type-grouped ordering
//
// The first failing phase aborts the run. Phases already persisted stay on
// disk; recovery is re-running the whole protocol and letting cleanup
// converge the state.
package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/beevik/etree"

	"github.com/akoval/cfgclone/internal/artifact"
	"github.com/akoval/cfgclone/internal/ident"
	"github.com/akoval/cfgclone/internal/index"
	"github.com/akoval/cfgclone/internal/repo"
)

// DefaultIdentifierPrefix is the namespace prefix of the extension
// vocabulary carrying generated-type identifiers in definition artifacts.
// The prefix is a contract of the consuming system, so Options can override
// it.
const DefaultIdentifierPrefix = "xr"

// dumpRecordTag is the element name of dump-index registration records.
const dumpRecordTag = "Metadata"

// Options carry the repository layout and format conventions for a run.
type Options struct {
	Layout repo.Layout

	// IdentifierPrefix is the namespace prefix of TypeId/ValueId nodes.
	// Empty means DefaultIdentifierPrefix.
	IdentifierPrefix string

	// RecordContainer is the element holding registration records in both
	// indexes. Empty means index.DefaultContainer.
	RecordContainer string
}

func (o Options) identifierPrefix() string {
	if o.IdentifierPrefix != "" {
		return o.IdentifierPrefix
	}
	return DefaultIdentifierPrefix
}

func (o Options) recordContainer() string {
	if o.RecordContainer != "" {
		return o.RecordContainer
	}
	return index.DefaultContainer
}

// MissingIdentifierError reports that a definition artifact lacks one of the
// identifier roles the regeneration phase must rewrite, which means the
// donor does not match the expected schema shape.
type MissingIdentifierError struct {
	Role string
	Path string
}

func (e *MissingIdentifierError) Error() string {
	return fmt.Sprintf("no <%s> identifier nodes in %s", e.Role, e.Path)
}

// Pipeline holds the state of one clone-and-integrate run: the documents
// loaded per phase and the paths they came from. A Pipeline is single-use
// and not safe for concurrent runs against the same repository.
type Pipeline struct {
	store  *artifact.Store
	ids    ident.Generator
	opts   Options
	donor  repo.Entity
	clone  repo.Entity
	report Reporter

	// cloneText is the donor's content after the textual rewrite, produced
	// by the duplicate phase and consumed by regenerate.
	cloneText string
}

// New builds a pipeline cloning donor to a new entity named cloneName of the
// same type. reporter may be nil.
func New(store *artifact.Store, ids ident.Generator, opts Options, donor repo.Entity, cloneName string, reporter Reporter) (*Pipeline, error) {
	if err := donor.Validate(); err != nil {
		return nil, fmt.Errorf("donor: %w", err)
	}
	clone := repo.Entity{Type: donor.Type, Name: cloneName}
	if err := clone.Validate(); err != nil {
		return nil, fmt.Errorf("clone: %w", err)
	}
	if donor.Name == cloneName {
		return nil, fmt.Errorf("clone name %q equals donor name", cloneName)
	}
	if reporter == nil {
		reporter = NopReporter()
	}
	return &Pipeline{
		store:  store,
		ids:    ids,
		opts:   opts,
		donor:  donor,
		clone:  clone,
		report: reporter,
	}, nil
}

// Run executes the four phases in order, stopping at the first failure.
func (p *Pipeline) Run() error {
	if err := p.cleanup(); err != nil {
		return err
	}
	if err := p.duplicate(); err != nil {
		return err
	}
	if err := p.regenerate(); err != nil {
		return err
	}
	return p.integrate()
}

// cleanup removes every trace of a previous run for the clone name: the
// clone's definition file and its registration record in each index. Each
// touched index is persisted immediately.
func (p *Pipeline) cleanup() error {
	p.report.Step(fmt.Sprintf("Cleaning up traces of %q", p.clone.QualifiedName()))

	clonePath := p.opts.Layout.DefinitionPath(p.clone)
	if err := p.store.DeleteIfExists(clonePath); err != nil {
		return err
	}

	for _, path := range p.indexPaths() {
		doc, err := p.store.Load(path)
		if err != nil {
			// A missing index is not a leftover to clean; integration will
			// fail loudly if it is genuinely absent.
			var nf *artifact.NotFoundError
			if errors.As(err, &nf) {
				continue
			}
			return err
		}

		container, err := index.RecordContainer(doc, p.opts.recordContainer())
		if err != nil {
			return &artifact.ParseError{Path: path, Err: err}
		}

		rec := index.FindRecord(container, p.clone.QualifiedName())
		if rec == nil {
			continue
		}
		index.RemoveRecord(rec)
		if err := p.store.Save(doc, path); err != nil {
			return err
		}
		p.report.Success(fmt.Sprintf("Removed record for %q from %s", p.clone.QualifiedName(), path))
	}
	return nil
}

// duplicate reads the donor definition as raw text and rewrites its
// name-derived references. Working on raw text rather than a parsed tree
// keeps every byte the rewrite does not target untouched, including
// whitespace the serializer would otherwise drift.
func (p *Pipeline) duplicate() error {
	p.report.Step(fmt.Sprintf("Cloning %q to %q", p.donor.QualifiedName(), p.clone.QualifiedName()))

	donorPath := p.opts.Layout.DefinitionPath(p.donor)
	text, err := p.store.ReadText(donorPath)
	if err != nil {
		return err
	}

	p.cloneText = RewriteNames(text, p.donor.Name, p.clone.Name)
	p.report.Success("Rewrote name-derived references")
	return nil
}

// RewriteNames applies the two scope-limited substitution rules: the donor
// name as a qualified-name path suffix (".Name") and as a bare element text
// value (">Name<"). Both are case-sensitive; any other occurrence of the
// donor name stays byte-identical.
func RewriteNames(text, donorName, cloneName string) string {
	text = strings.ReplaceAll(text, "."+donorName, "."+cloneName)
	return strings.ReplaceAll(text, ">"+donorName+"<", ">"+cloneName+"<")
}

// regenerate parses the rewritten text, replaces the clone's identity
// attribute and every TypeId/ValueId node with fresh identifiers, and
// persists the clone's definition file.
func (p *Pipeline) regenerate() error {
	donorPath := p.opts.Layout.DefinitionPath(p.donor)
	clonePath := p.opts.Layout.DefinitionPath(p.clone)

	doc, err := p.store.Parse([]byte(p.cloneText), donorPath)
	if err != nil {
		return err
	}

	rootObject(doc).CreateAttr("uuid", p.ids.Next())

	prefix := p.opts.identifierPrefix()
	count := 1
	for _, role := range []string{"TypeId", "ValueId"} {
		nodes := collectRole(doc.Root(), prefix, role)
		if len(nodes) == 0 {
			return &MissingIdentifierError{Role: prefix + ":" + role, Path: donorPath}
		}
		for _, el := range nodes {
			el.SetText(p.ids.Next())
			count++
		}
	}
	p.report.Success(fmt.Sprintf("Regenerated %d identifiers", count))

	if err := p.store.Save(doc, clonePath); err != nil {
		return err
	}
	p.report.Success(fmt.Sprintf("Saved clone definition to %s", clonePath))
	return nil
}

// rootObject returns the element carrying the artifact's identity attribute:
// the root itself if it has one, else the first descendant that does, else
// the root (the attribute is then created on it).
func rootObject(doc *etree.Document) *etree.Element {
	root := doc.Root()
	if root.SelectAttr("uuid") != nil {
		return root
	}
	if el := firstWithUUID(root); el != nil {
		return el
	}
	return root
}

func firstWithUUID(el *etree.Element) *etree.Element {
	for _, ch := range el.ChildElements() {
		if ch.SelectAttr("uuid") != nil {
			return ch
		}
		if found := firstWithUUID(ch); found != nil {
			return found
		}
	}
	return nil
}

// collectRole gathers every element with the given namespace prefix and tag,
// in document order.
func collectRole(el *etree.Element, space, tag string) []*etree.Element {
	var out []*etree.Element
	if el.Space == space && el.Tag == tag {
		out = append(out, el)
	}
	for _, ch := range el.ChildElements() {
		out = append(out, collectRole(ch, space, tag)...)
	}
	return out
}

// integrate inserts the clone's registration record into each index,
// directly after the last existing record of the donor's type, and persists
// the index.
func (p *Pipeline) integrate() error {
	p.report.Step(fmt.Sprintf("Registering %q in repository indexes", p.clone.QualifiedName()))

	layout := p.opts.Layout
	qname := p.clone.QualifiedName()

	type target struct {
		path  string
		match index.Matcher
		tag   string
	}
	targets := []target{
		{layout.StructuralIndexPath(), index.ByTag(p.donor.Type), p.donor.Type},
		{layout.DumpIndexPath(), index.ByQualifiedPrefix(p.donor.Type), dumpRecordTag},
	}

	for _, tgt := range targets {
		doc, err := p.store.Load(tgt.path)
		if err != nil {
			return err
		}
		container, err := index.RecordContainer(doc, p.opts.recordContainer())
		if err != nil {
			return &artifact.ParseError{Path: tgt.path, Err: err}
		}

		// New records take the namespace prefix and (for the dump index)
		// tag of the records already present, so a prefixed index stays
		// uniformly prefixed.
		space := container.Space
		tag := tgt.tag
		if anchor := index.LastOfType(container, tgt.match); anchor != nil {
			space = anchor.Space
			tag = anchor.Tag
		}

		index.InsertAfterLastOfType(container, tgt.match, index.NewRecord(space, tag, qname))
		if err := p.store.Save(doc, tgt.path); err != nil {
			return err
		}
		p.report.Success(fmt.Sprintf("Registered %q in %s", qname, tgt.path))
	}
	return nil
}

func (p *Pipeline) indexPaths() []string {
	return []string{
		p.opts.Layout.StructuralIndexPath(),
		p.opts.Layout.DumpIndexPath(),
	}
}
