package ident

import (
	"regexp"
	"testing"
)

var uuidShape = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

func TestUUIDNextShape(t *testing.T) {
	g := UUID{}
	got := g.Next()
	if !uuidShape.MatchString(got) {
		t.Errorf("expected canonical lowercase uuid, got %q", got)
	}
}

func TestUUIDNextIsFresh(t *testing.T) {
	g := UUID{}
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		id := g.Next()
		if _, ok := seen[id]; ok {
			t.Fatalf("duplicate identifier after %d calls: %s", i, id)
		}
		seen[id] = struct{}{}
	}
}
