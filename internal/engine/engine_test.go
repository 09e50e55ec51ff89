package engine

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/beevik/etree"

	"github.com/akoval/cfgclone/internal/artifact"
	"github.com/akoval/cfgclone/internal/ident"
	"github.com/akoval/cfgclone/internal/repo"
	"github.com/akoval/cfgclone/internal/testutil"
)

func newPipeline(t *testing.T, root string) *Pipeline {
	t.Helper()
	p, err := New(
		artifact.NewStore(),
		ident.UUID{},
		Options{Layout: repo.Layout{Root: root}},
		repo.Entity{Type: "Catalog", Name: "Items"},
		"Widgets",
		nil,
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return p
}

func TestRewriteNames(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			"path suffix",
			`name="CatalogObject.Items"`,
			`name="CatalogObject.Widgets"`,
		},
		{
			"element text",
			`<Name>Items</Name>`,
			`<Name>Widgets</Name>`,
		},
		{
			"substring outside anchors untouched",
			`<Comment>LineItems and Itemsy things</Comment>`,
			`<Comment>LineItems and Itemsy things</Comment>`,
		},
		{
			"case sensitive",
			`<Name>items</Name> value.items`,
			`<Name>items</Name> value.items`,
		},
		{
			"qualified chain",
			`Catalog.Items.Attribute.Code`,
			`Catalog.Widgets.Attribute.Code`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RewriteNames(tt.in, "Items", "Widgets"); got != tt.want {
				t.Errorf("RewriteNames(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCloneCreatesDefinitionAndRegisters(t *testing.T) {
	r := testutil.NewTestRepo(t).WithStandardFixtures().Build()

	if err := newPipeline(t, r.Path).Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	clonePath := filepath.Join("Catalogs", "Widgets.xml")
	r.AssertFileExists(clonePath)
	r.AssertFileContains(clonePath, "<Name>Widgets</Name>")
	r.AssertFileContains(clonePath, `name="CatalogObject.Widgets"`)
	r.AssertFileNotContains(clonePath, "11111111-1111-1111-1111-111111111111")

	r.AssertFileContains("Configuration.xml", "<Catalog>Catalog.Widgets</Catalog>")
	r.AssertFileContains("ConfigDumpInfo.xml", "<Metadata>Catalog.Widgets</Metadata>")
}

func TestCloneRecordFollowsLastOfType(t *testing.T) {
	r := testutil.NewTestRepo(t).WithStandardFixtures().Build()

	if err := newPipeline(t, r.Path).Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	cfg := r.ReadFile("Configuration.xml")
	units := strings.Index(cfg, "Catalog.Units")
	widgets := strings.Index(cfg, "Catalog.Widgets")
	invoice := strings.Index(cfg, "Document.Invoice")
	if !(units < widgets && widgets < invoice) {
		t.Errorf("expected Units < Widgets < Invoice ordering, got:\n%s", cfg)
	}

	dump := r.ReadFile("ConfigDumpInfo.xml")
	units = strings.Index(dump, "Catalog.Units")
	widgets = strings.Index(dump, "Catalog.Widgets")
	invoice = strings.Index(dump, "Document.Invoice")
	if !(units < widgets && widgets < invoice) {
		t.Errorf("expected Units < Widgets < Invoice ordering, got:\n%s", dump)
	}
}

func TestCloneAppendsWhenTypeGroupEmpty(t *testing.T) {
	// Indexes with no Catalog records at all: the clone's record goes to
	// the tail of the record collection.
	r := testutil.NewTestRepo(t).
		WithFile(filepath.Join("Catalogs", "Items.xml"), testutil.DonorDefinition).
		WithFile("Configuration.xml", `<?xml version="1.0" encoding="UTF-8"?>
<Configuration>
	<ChildObjects>
		<Document>Document.Invoice</Document>
	</ChildObjects>
</Configuration>
`).
		WithFile("ConfigDumpInfo.xml", `<?xml version="1.0" encoding="UTF-8"?>
<ConfigDumpInfo>
	<ChildObjects>
		<Metadata>Document.Invoice</Metadata>
	</ChildObjects>
</ConfigDumpInfo>
`).
		Build()

	if err := newPipeline(t, r.Path).Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	cfg := r.ReadFile("Configuration.xml")
	if strings.Index(cfg, "Document.Invoice") > strings.Index(cfg, "Catalog.Widgets") {
		t.Errorf("expected first-of-type record at the tail, got:\n%s", cfg)
	}
}

func TestRewritePrecisionInCloneFile(t *testing.T) {
	r := testutil.NewTestRepo(t).WithStandardFixtures().Build()

	if err := newPipeline(t, r.Path).Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	clonePath := filepath.Join("Catalogs", "Widgets.xml")
	r.AssertFileContains(clonePath, "LineItems")
	r.AssertFileNotContains(clonePath, "LineWidgets")
}

func TestIdentifierFreshness(t *testing.T) {
	r := testutil.NewTestRepo(t).WithStandardFixtures().Build()

	if err := newPipeline(t, r.Path).Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromString(r.ReadFile(filepath.Join("Catalogs", "Widgets.xml"))); err != nil {
		t.Fatalf("parse clone: %v", err)
	}

	donorIDs := map[string]bool{
		"11111111-1111-1111-1111-111111111111": true,
		"22222222-2222-2222-2222-222222222222": true,
		"33333333-3333-3333-3333-333333333333": true,
		"44444444-4444-4444-4444-444444444444": true,
		"55555555-5555-5555-5555-555555555555": true,
	}

	var ids []string
	ids = append(ids, rootObject(doc).SelectAttr("uuid").Value)
	for _, role := range []string{"TypeId", "ValueId"} {
		for _, el := range collectRole(doc.Root(), "xr", role) {
			ids = append(ids, el.Text())
		}
	}
	if len(ids) != 5 {
		t.Fatalf("expected 5 regenerated identifiers, got %d", len(ids))
	}

	seen := make(map[string]bool)
	for _, id := range ids {
		if donorIDs[id] {
			t.Errorf("identifier %s survived from the donor", id)
		}
		if seen[id] {
			t.Errorf("identifier %s regenerated twice to the same value", id)
		}
		seen[id] = true
	}
}

func TestRerunConverges(t *testing.T) {
	r := testutil.NewTestRepo(t).WithStandardFixtures().Build()

	if err := newPipeline(t, r.Path).Run(); err != nil {
		t.Fatalf("first run: %v", err)
	}
	cfgOnce := r.ReadFile("Configuration.xml")
	dumpOnce := r.ReadFile("ConfigDumpInfo.xml")

	if err := newPipeline(t, r.Path).Run(); err != nil {
		t.Fatalf("second run: %v", err)
	}

	if got := r.ReadFile("Configuration.xml"); got != cfgOnce {
		t.Errorf("Configuration.xml drifted on re-run:\nfirst:\n%s\nsecond:\n%s", cfgOnce, got)
	}
	if got := r.ReadFile("ConfigDumpInfo.xml"); got != dumpOnce {
		t.Errorf("ConfigDumpInfo.xml drifted on re-run:\nfirst:\n%s\nsecond:\n%s", dumpOnce, got)
	}

	r.AssertCountInFile("Configuration.xml", "Catalog.Widgets", 1)
	r.AssertCountInFile("ConfigDumpInfo.xml", "Catalog.Widgets", 1)
	r.AssertFileExists(filepath.Join("Catalogs", "Widgets.xml"))
}

func TestMissingDonorFailsBeforeTouchingIndexes(t *testing.T) {
	r := testutil.NewTestRepo(t).
		WithFile("Configuration.xml", testutil.StructuralIndex).
		WithFile("ConfigDumpInfo.xml", testutil.DumpIndex).
		Build()

	err := newPipeline(t, r.Path).Run()

	var nf *artifact.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected *artifact.NotFoundError, got %v", err)
	}

	if got := r.ReadFile("Configuration.xml"); got != testutil.StructuralIndex {
		t.Errorf("Configuration.xml was modified despite missing donor:\n%s", got)
	}
	if got := r.ReadFile("ConfigDumpInfo.xml"); got != testutil.DumpIndex {
		t.Errorf("ConfigDumpInfo.xml was modified despite missing donor:\n%s", got)
	}
}

func TestMissingIdentifierNodes(t *testing.T) {
	donor := `<?xml version="1.0" encoding="UTF-8"?>
<MetaDataObject>
	<Catalog uuid="11111111-1111-1111-1111-111111111111">
		<Properties>
			<Name>Items</Name>
		</Properties>
	</Catalog>
</MetaDataObject>
`
	r := testutil.NewTestRepo(t).
		WithFile(filepath.Join("Catalogs", "Items.xml"), donor).
		WithFile("Configuration.xml", testutil.StructuralIndex).
		WithFile("ConfigDumpInfo.xml", testutil.DumpIndex).
		Build()

	err := newPipeline(t, r.Path).Run()

	var mi *MissingIdentifierError
	if !errors.As(err, &mi) {
		t.Fatalf("expected *MissingIdentifierError, got %v", err)
	}
	if mi.Role != "xr:TypeId" {
		t.Errorf("Role = %q, want xr:TypeId", mi.Role)
	}
	r.AssertFileNotExists(filepath.Join("Catalogs", "Widgets.xml"))
}

func TestCleanupRemovesStaleTraces(t *testing.T) {
	// Indexes and tree already carry a half-finished clone; a run against a
	// missing donor still scrubs it.
	staleCfg := strings.Replace(testutil.StructuralIndex,
		"<Catalog>Catalog.Units</Catalog>",
		"<Catalog>Catalog.Units</Catalog>\n\t\t<Catalog>Catalog.Widgets</Catalog>", 1)
	r := testutil.NewTestRepo(t).
		WithFile("Configuration.xml", staleCfg).
		WithFile("ConfigDumpInfo.xml", testutil.DumpIndex).
		WithFile(filepath.Join("Catalogs", "Widgets.xml"), "<stale/>").
		Build()

	err := newPipeline(t, r.Path).Run()
	var nf *artifact.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected donor-not-found, got %v", err)
	}

	r.AssertFileNotExists(filepath.Join("Catalogs", "Widgets.xml"))
	r.AssertFileNotContains("Configuration.xml", "Catalog.Widgets")
}

func TestCustomIdentifierPrefix(t *testing.T) {
	donor := strings.ReplaceAll(testutil.DonorDefinition, "xr:", "ext:")
	r := testutil.NewTestRepo(t).
		WithFile(filepath.Join("Catalogs", "Items.xml"), donor).
		WithFile("Configuration.xml", testutil.StructuralIndex).
		WithFile("ConfigDumpInfo.xml", testutil.DumpIndex).
		Build()

	p, err := New(
		artifact.NewStore(),
		ident.UUID{},
		Options{Layout: repo.Layout{Root: r.Path}, IdentifierPrefix: "ext"},
		repo.Entity{Type: "Catalog", Name: "Items"},
		"Widgets",
		nil,
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := p.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	r.AssertFileExists(filepath.Join("Catalogs", "Widgets.xml"))
}

func TestNewRejectsBadInput(t *testing.T) {
	store := artifact.NewStore()
	opts := Options{Layout: repo.Layout{Root: "/repo"}}

	if _, err := New(store, ident.UUID{}, opts, repo.Entity{Type: "", Name: "Items"}, "Widgets", nil); err == nil {
		t.Error("expected error for empty donor type")
	}
	if _, err := New(store, ident.UUID{}, opts, repo.Entity{Type: "Catalog", Name: "Items"}, "", nil); err == nil {
		t.Error("expected error for empty clone name")
	}
	if _, err := New(store, ident.UUID{}, opts, repo.Entity{Type: "Catalog", Name: "Items"}, "Items", nil); err == nil {
		t.Error("expected error for clone name equal to donor name")
	}
}
