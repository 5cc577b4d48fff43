package topology

import (
	"context"
	"testing"

	"github.com/localgraph/backend/pkg/artifact"
)

type fakeStore struct {
	entities      []artifact.Entity
	relationships []artifact.Relationship
}

func (f *fakeStore) LoadEntities(ctx context.Context, minDegree int) ([]artifact.Entity, error) {
	return f.entities, nil
}
func (f *fakeStore) LoadRelationships(ctx context.Context) ([]artifact.Relationship, error) {
	return f.relationships, nil
}

func TestProject_EmptyGenerationIsEmpty(t *testing.T) {
	p, err := Project(context.Background(), &fakeStore{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.Stats.IsEmpty {
		t.Fatalf("expected isEmpty for a generation with zero entities")
	}
	if len(p.Nodes) != 0 || len(p.Links) != 0 {
		t.Fatalf("expected no nodes or links, got %d nodes, %d links", len(p.Nodes), len(p.Links))
	}
}

func TestProject_BoundsToTopN(t *testing.T) {
	entities := make([]artifact.Entity, 45)
	for i := range entities {
		entities[i] = artifact.Entity{
			ID:     string(rune('a' + i)),
			Title:  string(rune('A' + i)),
			Type:   "PERSON",
			Degree: 45 - i,
		}
	}
	store := &fakeStore{entities: entities}

	p, err := Project(context.Background(), store)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.Nodes) != 30 {
		t.Fatalf("expected 30 nodes, got %d", len(p.Nodes))
	}
	if p.Stats.TotalEntities != 45 || p.Stats.DisplayedNodes != 30 {
		t.Fatalf("unexpected stats: %+v", p.Stats)
	}
}

func TestProject_PrunesEdgesOutsideSelection(t *testing.T) {
	entities := []artifact.Entity{
		{ID: "1", Title: "A", Type: "PERSON", Degree: 10},
		{ID: "2", Title: "B", Type: "PERSON", Degree: 9},
	}
	relationships := []artifact.Relationship{
		{Source: "A", Target: "B", Weight: 1},
		{Source: "A", Target: "Ghost", Weight: 1},
	}
	store := &fakeStore{entities: entities, relationships: relationships}

	p, err := Project(context.Background(), store)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.Links) != 1 {
		t.Fatalf("expected only the edge between selected nodes, got %d links", len(p.Links))
	}

	ids := map[string]bool{}
	for _, n := range p.Nodes {
		ids[n.ID] = true
	}
	for _, l := range p.Links {
		if !ids[l.Source] || !ids[l.Target] {
			t.Fatalf("link %+v references a node outside the selection", l)
		}
	}
}

func TestClampVal_FloorAndCap(t *testing.T) {
	if clampVal(0) != minVal {
		t.Fatalf("expected floor of %d, got %d", minVal, clampVal(0))
	}
	if clampVal(1000) != maxVal {
		t.Fatalf("expected cap of %d, got %d", maxVal, clampVal(1000))
	}
	if clampVal(20) != 20 {
		t.Fatalf("expected in-range value unchanged, got %d", clampVal(20))
	}
}
