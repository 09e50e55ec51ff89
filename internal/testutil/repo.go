// Package testutil provides reusable fixtures for tests that operate on a
// configuration repository on disk.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// DonorDefinition is a representative definition artifact for the entity
// Catalog.Items: a root object with an identity attribute, two generated
// types carrying xr:TypeId/xr:ValueId identifier nodes, name-derived
// references in both attribute and element-text positions, and a comment
// containing the donor name outside the rewrite anchors.
const DonorDefinition = `<?xml version="1.0" encoding="UTF-8"?>
<MetaDataObject xmlns:xr="http://v8.1c.ru/8.3/xcf/readable">
	<Catalog uuid="11111111-1111-1111-1111-111111111111">
		<InternalInfo>
			<xr:GeneratedType name="CatalogObject.Items" category="Object">
				<xr:TypeId>22222222-2222-2222-2222-222222222222</xr:TypeId>
				<xr:ValueId>33333333-3333-3333-3333-333333333333</xr:ValueId>
			</xr:GeneratedType>
			<xr:GeneratedType name="CatalogRef.Items" category="Ref">
				<xr:TypeId>44444444-4444-4444-4444-444444444444</xr:TypeId>
				<xr:ValueId>55555555-5555-5555-5555-555555555555</xr:ValueId>
			</xr:GeneratedType>
		</InternalInfo>
		<Properties>
			<Name>Items</Name>
			<Comment>Reconciled against LineItems nightly</Comment>
		</Properties>
		<ChildObjects>
			<Attribute>Catalog.Items.Attribute.Code</Attribute>
		</ChildObjects>
	</Catalog>
</MetaDataObject>
`

// StructuralIndex is a Configuration.xml fixture with two catalogs followed
// by a document.
const StructuralIndex = `<?xml version="1.0" encoding="UTF-8"?>
<Configuration>
	<ChildObjects>
		<Catalog>Catalog.Items</Catalog>
		<Catalog>Catalog.Units</Catalog>
		<Document>Document.Invoice</Document>
	</ChildObjects>
</Configuration>
`

// DumpIndex is a ConfigDumpInfo.xml fixture mirroring StructuralIndex.
const DumpIndex = `<?xml version="1.0" encoding="UTF-8"?>
<ConfigDumpInfo>
	<ChildObjects>
		<Metadata>Catalog.Items</Metadata>
		<Metadata>Catalog.Units</Metadata>
		<Metadata>Document.Invoice</Metadata>
	</ChildObjects>
</ConfigDumpInfo>
`

// TestRepo is a temporary configuration repository for tests.
type TestRepo struct {
	Path  string
	t     *testing.T
	files map[string]string
}

// NewTestRepo creates a repository builder. Call Build to materialize it.
func NewTestRepo(t *testing.T) *TestRepo {
	t.Helper()
	return &TestRepo{
		t:     t,
		files: make(map[string]string),
	}
}

// WithFile adds a file, path relative to the repository root.
func (r *TestRepo) WithFile(path, content string) *TestRepo {
	r.files[path] = content
	return r
}

// WithStandardFixtures seeds the Catalog.Items donor definition and both
// index files.
func (r *TestRepo) WithStandardFixtures() *TestRepo {
	r.files[filepath.Join("Catalogs", "Items.xml")] = DonorDefinition
	r.files["Configuration.xml"] = StructuralIndex
	r.files["ConfigDumpInfo.xml"] = DumpIndex
	return r
}

// Build creates the repository directory and all configured files.
func (r *TestRepo) Build() *TestRepo {
	r.t.Helper()
	r.Path = r.t.TempDir()
	for path, content := range r.files {
		r.writeFile(path, content)
	}
	return r
}

func (r *TestRepo) writeFile(relPath, content string) {
	r.t.Helper()
	fullPath := filepath.Join(r.Path, relPath)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		r.t.Fatalf("failed to create directory for %s: %v", relPath, err)
	}
	if err := os.WriteFile(fullPath, []byte(content), 0o644); err != nil {
		r.t.Fatalf("failed to write file %s: %v", relPath, err)
	}
}

// ReadFile reads a repository file as a string.
func (r *TestRepo) ReadFile(relPath string) string {
	r.t.Helper()
	content, err := os.ReadFile(filepath.Join(r.Path, relPath))
	if err != nil {
		r.t.Fatalf("failed to read file %s: %v", relPath, err)
	}
	return string(content)
}

// FileExists checks whether a repository file exists.
func (r *TestRepo) FileExists(relPath string) bool {
	r.t.Helper()
	_, err := os.Stat(filepath.Join(r.Path, relPath))
	return err == nil
}

// AssertFileExists fails the test if the file does not exist.
func (r *TestRepo) AssertFileExists(relPath string) {
	r.t.Helper()
	if !r.FileExists(relPath) {
		r.t.Errorf("expected file to exist: %s", relPath)
	}
}

// AssertFileNotExists fails the test if the file exists.
func (r *TestRepo) AssertFileNotExists(relPath string) {
	r.t.Helper()
	if r.FileExists(relPath) {
		r.t.Errorf("expected file to not exist: %s", relPath)
	}
}

// AssertFileContains fails the test if the file does not contain substr.
func (r *TestRepo) AssertFileContains(relPath, substr string) {
	r.t.Helper()
	content := r.ReadFile(relPath)
	if !strings.Contains(content, substr) {
		r.t.Errorf("expected file %s to contain %q, got:\n%s", relPath, substr, content)
	}
}

// AssertFileNotContains fails the test if the file contains substr.
func (r *TestRepo) AssertFileNotContains(relPath, substr string) {
	r.t.Helper()
	content := r.ReadFile(relPath)
	if strings.Contains(content, substr) {
		r.t.Errorf("expected file %s to not contain %q, got:\n%s", relPath, substr, content)
	}
}

// AssertCountInFile fails the test unless substr occurs exactly want times.
func (r *TestRepo) AssertCountInFile(relPath, substr string, want int) {
	r.t.Helper()
	content := r.ReadFile(relPath)
	if got := strings.Count(content, substr); got != want {
		r.t.Errorf("expected %d occurrences of %q in %s, got %d:\n%s", want, substr, relPath, got, content)
	}
}
