// Package repo models the on-disk layout of a configuration repository:
// per-entity definition files grouped by type under the repository root, plus
// the two repository-wide index files.
//
// It centralizes path derivation and qualified-name handling so the engine,
// CLI, and checks all agree on where an entity lives and what it is called.
package repo

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Default index file names at the repository root.
const (
	DefaultStructuralIndex = "Configuration.xml"
	DefaultDumpIndex       = "ConfigDumpInfo.xml"
)

// Entity references a configuration entity by type and name, e.g.
// (Catalog, Items).
type Entity struct {
	Type string
	Name string
}

// Validate reports whether the reference is usable. Both parts are required;
// everything downstream derives file names and qualified names from them.
func (e Entity) Validate() error {
	if strings.TrimSpace(e.Type) == "" {
		return fmt.Errorf("entity type is empty")
	}
	if strings.TrimSpace(e.Name) == "" {
		return fmt.Errorf("entity name is empty")
	}
	return nil
}

// QualifiedName returns the canonical "Type.Name" reference used inside
// artifacts and index records.
func (e Entity) QualifiedName() string {
	return e.Type + "." + e.Name
}

// Layout describes where a repository keeps its files.
type Layout struct {
	// Root is the repository root directory.
	Root string

	// StructuralIndex and DumpIndex are index file names relative to Root.
	// Empty values fall back to the defaults.
	StructuralIndex string
	DumpIndex       string

	// TypeGroups maps an entity type to its directory under Root
	// (e.g. "Catalog" -> "Catalogs"). Types not in the map use the
	// pluralized type name.
	TypeGroups map[string]string
}

// TypeGroup returns the directory name holding definition files for the
// given type.
func (l Layout) TypeGroup(typeName string) string {
	if g, ok := l.TypeGroups[typeName]; ok && g != "" {
		return g
	}
	return typeName + "s"
}

// DefinitionPath returns the absolute path of an entity's definition file.
func (l Layout) DefinitionPath(e Entity) string {
	return filepath.Join(l.Root, l.TypeGroup(e.Type), e.Name+".xml")
}

// StructuralIndexPath returns the absolute path of the structural index.
func (l Layout) StructuralIndexPath() string {
	name := l.StructuralIndex
	if name == "" {
		name = DefaultStructuralIndex
	}
	return filepath.Join(l.Root, name)
}

// DumpIndexPath returns the absolute path of the dump-metadata index.
func (l Layout) DumpIndexPath() string {
	name := l.DumpIndex
	if name == "" {
		name = DefaultDumpIndex
	}
	return filepath.Join(l.Root, name)
}
