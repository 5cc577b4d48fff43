package artifact

import (
	"context"
	"reflect"
	"testing"

	"github.com/localgraph/backend/pkg/apperr"
)

func TestResolveByTitle_TieBreakByDegreeThenID(t *testing.T) {
	entities := []Entity{
		{ID: "b", Title: "ACME", Degree: 3},
		{ID: "a", Title: "ACME", Degree: 3},
		{ID: "c", Title: "ACME", Degree: 5},
	}
	titleIndex := map[string][]int{"ACME": {0, 1, 2}}

	idx := resolveByTitle(entities, titleIndex, "ACME")
	if entities[idx].ID != "c" {
		t.Fatalf("expected highest-degree entity c, got %s", entities[idx].ID)
	}

	// Remove the clear degree winner; tie-break falls to smallest id.
	titleIndex["ACME"] = []int{0, 1}
	idx = resolveByTitle(entities, titleIndex, "ACME")
	if entities[idx].ID != "a" {
		t.Fatalf("expected lexicographically smallest id a, got %s", entities[idx].ID)
	}
}

func TestResolveByTitle_Unknown(t *testing.T) {
	if idx := resolveByTitle(nil, map[string][]int{}, "missing"); idx != -1 {
		t.Fatalf("expected -1 for unknown title, got %d", idx)
	}
}

func TestDecodeFindings_ObjectsAndStrings(t *testing.T) {
	objects := decodeFindings(`[{"summary":"s1","explanation":"e1"}]`)
	want := []Finding{{Summary: "s1", Explanation: "e1"}}
	if !reflect.DeepEqual(objects, want) {
		t.Fatalf("objects = %+v, want %+v", objects, want)
	}

	strs := decodeFindings(`["bare finding"]`)
	wantStrs := []Finding{{Summary: "bare finding"}}
	if !reflect.DeepEqual(strs, wantStrs) {
		t.Fatalf("strings = %+v, want %+v", strs, wantStrs)
	}

	if got := decodeFindings(""); got != nil {
		t.Fatalf("empty input should decode to nil, got %+v", got)
	}
}

func TestDecodeIDList(t *testing.T) {
	got := decodeIDList(`["e1","e2"]`)
	want := []string{"e1", "e2"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if decodeIDList("") != nil {
		t.Fatalf("empty input should decode to nil")
	}
	if decodeIDList("not json") != nil {
		t.Fatalf("malformed input should decode to nil, not error")
	}
}

func TestStore_EmptyDirIsAUsableZeroState(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)

	if gen := s.CurrentGeneration(); gen != NoGeneration {
		t.Fatalf("expected NoGeneration for empty dir, got %d", gen)
	}

	entities, err := s.LoadEntities(context.Background(), 0)
	if err != nil {
		t.Fatalf("expected no error for empty artifact dir, got %v", err)
	}
	if len(entities) != 0 {
		t.Fatalf("expected zero entities, got %d", len(entities))
	}

	if _, err := s.GetEntityByID(context.Background(), "missing"); apperr.KindOf(err) != apperr.NotFound {
		t.Fatalf("expected NotFound for a missing entity in an empty store, got %v", err)
	}
}
