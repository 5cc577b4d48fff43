// Package topology builds the reduced node/link view the UI renders as a
// force-directed graph: the top-N entities by degree, the edges between
// them, and a handful of per-node visual hints derived from structural
// facts.
package topology

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/localgraph/backend/pkg/artifact"
)

const (
	maxNodes = 30
	minVal   = 8
	maxVal   = 40
)

// Store is the subset of artifact.Store the projector reads from.
type Store interface {
	LoadEntities(ctx context.Context, minDegree int) ([]artifact.Entity, error)
	LoadRelationships(ctx context.Context) ([]artifact.Relationship, error)
}

// Node is one rendered vertex.
type Node struct {
	ID    string `json:"id"`
	Group int    `json:"group"`
	Val   int    `json:"val"`
}

// Link is one rendered edge; Source and Target are entity titles, matching
// Node.ID, so the front end can join them directly.
type Link struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Stats summarizes the projection for the UI's sidebar.
type Stats struct {
	TotalEntities  int  `json:"total_entities"`
	DisplayedNodes int  `json:"displayed_nodes"`
	IsEmpty        bool `json:"isEmpty"`
}

// Projection is the full output shape of GET /api/graph/topology.
type Projection struct {
	Nodes []Node `json:"nodes"`
	Links []Link `json:"links"`
	Stats Stats  `json:"stats"`
}

// Project builds a bounded node/link view of the current generation.
func Project(ctx context.Context, store Store) (Projection, error) {
	var entities []artifact.Entity
	var relationships []artifact.Relationship

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		entities, err = store.LoadEntities(gctx, 0)
		return err
	})
	g.Go(func() error {
		var err error
		relationships, err = store.LoadRelationships(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Projection{}, err
	}

	if len(entities) == 0 {
		return Projection{Nodes: []Node{}, Links: []Link{}, Stats: Stats{IsEmpty: true}}, nil
	}

	selected := selectTopEntities(entities, maxNodes)
	selectedTitles := make(map[string]bool, len(selected))
	groups := make(map[string]int)
	nextGroup := 0

	nodes := make([]Node, 0, len(selected))
	for _, e := range selected {
		selectedTitles[e.Title] = true
		if _, ok := groups[e.Type]; !ok {
			groups[e.Type] = nextGroup
			nextGroup++
		}
		nodes = append(nodes, Node{
			ID:    e.Title,
			Group: groups[e.Type],
			Val:   clampVal(e.Degree),
		})
	}

	links := make([]Link, 0)
	for _, r := range relationships {
		if selectedTitles[r.Source] && selectedTitles[r.Target] {
			links = append(links, Link{Source: r.Source, Target: r.Target})
		}
	}

	return Projection{
		Nodes: nodes,
		Links: links,
		Stats: Stats{
			TotalEntities:  len(entities),
			DisplayedNodes: len(nodes),
			IsEmpty:        false,
		},
	}, nil
}

// selectTopEntities returns up to n entities ordered by degree descending,
// tie-broken by id ascending.
func selectTopEntities(entities []artifact.Entity, n int) []artifact.Entity {
	sorted := make([]artifact.Entity, len(entities))
	copy(sorted, entities)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Degree != sorted[j].Degree {
			return sorted[i].Degree > sorted[j].Degree
		}
		return sorted[i].ID < sorted[j].ID
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

func clampVal(degree int) int {
	if degree < minVal {
		return minVal
	}
	if degree > maxVal {
		return maxVal
	}
	return degree
}
