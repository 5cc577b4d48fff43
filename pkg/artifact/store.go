package artifact

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/localgraph/backend/pkg/apperr"
	"github.com/localgraph/backend/pkg/logger"
)

// requiredFiles are the artifact files that must all be present for a
// generation to be considered available. Their names follow the indexer's
// own convention and are otherwise opaque to this package.
var requiredFiles = []string{
	"create_final_entities.parquet",
	"create_final_nodes.parquet",
	"create_final_relationships.parquet",
	"create_final_community_reports.parquet",
	"create_final_text_units.parquet",
}

// Store is the read-only accessor for one generation of graph artifacts.
// A single Store instance is shared by every request handler; Reload swaps
// its in-memory snapshot atomically so concurrent readers never observe a
// half-written generation.
type Store struct {
	dir string

	mu         sync.RWMutex
	generation Generation
	snapshot   *snapshot
}

type snapshot struct {
	entities      []Entity
	entitiesByID  map[string]int
	titleIndex    map[string][]int // title -> indices into entities, ordered by insertion
	relationships []Relationship
	communities   []Community
	textUnits     []TextUnit
}

// New returns a Store reading artifacts from dir. It performs an initial
// generation discovery; a store with no artifacts yet is a valid, usable
// zero state (CurrentGeneration returns NoGeneration).
func New(dir string) *Store {
	s := &Store{dir: dir}
	if err := s.Reload(context.Background()); err != nil {
		logger.Error("initial artifact load failed", "err", err)
	}
	return s
}

// CurrentGeneration returns the generation currently served by the store.
func (s *Store) CurrentGeneration() Generation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// Reload re-discovers the artifact files on disk and, if a complete set is
// present, replaces the in-memory snapshot and advances the generation
// counter. Partial presence is reported as "no artifacts available" rather
// than a partial generation — the existing snapshot (if any) is left intact
// so readers keep observing the last good generation.
func (s *Store) Reload(ctx context.Context) error {
	present := 0
	for _, f := range requiredFiles {
		if _, err := os.Stat(filepath.Join(s.dir, f)); err == nil {
			present++
		}
	}
	if present == 0 {
		s.mu.Lock()
		s.generation = NoGeneration
		s.snapshot = nil
		s.mu.Unlock()
		return nil
	}
	if present != len(requiredFiles) {
		logger.Warn("partial artifact set on disk, ignoring", "dir", s.dir, "present", present, "required", len(requiredFiles))
		return nil
	}

	snap, err := s.load()
	if err != nil {
		return apperr.Wrap(apperr.Internal, "failed to read graph artifacts", err)
	}

	s.mu.Lock()
	s.snapshot = snap
	s.generation++
	s.mu.Unlock()
	return nil
}

func (s *Store) load() (*snapshot, error) {
	nodeRows, err := readRows[nodeRow](filepath.Join(s.dir, "create_final_nodes.parquet"))
	if err != nil {
		return nil, err
	}
	degreeByID := make(map[string]int, len(nodeRows))
	for _, n := range nodeRows {
		degreeByID[n.ID] = int(n.Degree)
	}

	entityRows, err := readRows[entityRow](filepath.Join(s.dir, "create_final_entities.parquet"))
	if err != nil {
		return nil, err
	}
	entities := make([]Entity, 0, len(entityRows))
	entitiesByID := make(map[string]int, len(entityRows))
	titleIndex := make(map[string][]int, len(entityRows))
	for _, r := range entityRows {
		e := Entity{
			ID:              r.ID,
			HumanReadableID: r.HumanReadableID,
			Title:           r.Title,
			Type:            r.Type,
			Description:     r.Description,
			Degree:          degreeByID[r.ID],
		}
		idx := len(entities)
		entities = append(entities, e)
		entitiesByID[e.ID] = idx
		titleIndex[e.Title] = append(titleIndex[e.Title], idx)
	}

	relRows, err := readRows[relationshipRow](filepath.Join(s.dir, "create_final_relationships.parquet"))
	if err != nil {
		return nil, err
	}
	relationships := make([]Relationship, 0, len(relRows))
	for _, r := range relRows {
		srcIdx := resolveByTitle(entities, titleIndex, r.Source)
		dstIdx := resolveByTitle(entities, titleIndex, r.Target)
		relationships = append(relationships, Relationship{
			ID:              r.ID,
			HumanReadableID: r.HumanReadableID,
			Source:          r.Source,
			Target:          r.Target,
			Description:     r.Description,
			Weight:          r.Weight,
			SourceDegree:    degreeAt(entities, srcIdx),
			TargetDegree:    degreeAt(entities, dstIdx),
		})
	}

	reportRows, err := readRows[communityReportRow](filepath.Join(s.dir, "create_final_community_reports.parquet"))
	if err != nil {
		return nil, err
	}
	communities := make([]Community, 0, len(reportRows))
	for _, r := range reportRows {
		communities = append(communities, Community{
			ID:              r.Community,
			Title:           r.Title,
			Level:           int(r.Level),
			Rank:            r.Rank,
			Rating:          r.Rating,
			Summary:         r.Summary,
			FullContent:     r.FullContent,
			RankExplanation: r.RankExplanation,
			Findings:        decodeFindings(r.FindingsJSON),
		})
	}
	sort.SliceStable(communities, func(i, j int) bool {
		return communities[i].Rank > communities[j].Rank
	})

	tuRows, err := readRows[textUnitRow](filepath.Join(s.dir, "create_final_text_units.parquet"))
	if err != nil {
		return nil, err
	}
	textUnits := make([]TextUnit, 0, len(tuRows))
	for _, r := range tuRows {
		textUnits = append(textUnits, TextUnit{
			ID:        r.ID,
			Text:      r.Text,
			NTokens:   int(r.NTokens),
			EntityIDs: decodeIDList(r.EntityIDsJSON),
		})
	}

	return &snapshot{
		entities:      entities,
		entitiesByID:  entitiesByID,
		titleIndex:    titleIndex,
		relationships: relationships,
		communities:   communities,
		textUnits:     textUnits,
	}, nil
}

// resolveByTitle returns the index of the entity matching title, applying
// the deterministic tie-break (largest degree, then smallest id
// lexicographically) when multiple entities share a title. Returns -1 when
// no entity has that title.
func resolveByTitle(entities []Entity, titleIndex map[string][]int, title string) int {
	candidates := titleIndex[title]
	if len(candidates) == 0 {
		return -1
	}
	best := candidates[0]
	for _, idx := range candidates[1:] {
		c, b := entities[idx], entities[best]
		if c.Degree > b.Degree || (c.Degree == b.Degree && c.ID < b.ID) {
			best = idx
		}
	}
	return best
}

func degreeAt(entities []Entity, idx int) int {
	if idx < 0 {
		return 0
	}
	return entities[idx].Degree
}

// LoadEntities returns all entities, optionally filtered by degree >= minDegree.
func (s *Store) LoadEntities(ctx context.Context, minDegree int) ([]Entity, error) {
	snap := s.snap()
	out := make([]Entity, 0, len(snap.entities))
	for _, e := range snap.entities {
		if e.Degree >= minDegree {
			out = append(out, e)
		}
	}
	return out, nil
}

// LoadRelationships returns all relationships in the current generation.
func (s *Store) LoadRelationships(ctx context.Context) ([]Relationship, error) {
	snap := s.snap()
	out := make([]Relationship, len(snap.relationships))
	copy(out, snap.relationships)
	return out, nil
}

// LoadCommunities returns communities sorted by rank descending, optionally
// filtered to level <= maxLevel when maxLevel >= 0.
func (s *Store) LoadCommunities(ctx context.Context, maxLevel int) ([]Community, error) {
	snap := s.snap()
	if maxLevel < 0 {
		out := make([]Community, len(snap.communities))
		copy(out, snap.communities)
		return out, nil
	}
	out := make([]Community, 0, len(snap.communities))
	for _, c := range snap.communities {
		if c.Level <= maxLevel {
			out = append(out, c)
		}
	}
	return out, nil
}

// LoadTextUnits returns all text units in the current generation.
func (s *Store) LoadTextUnits(ctx context.Context) ([]TextUnit, error) {
	snap := s.snap()
	out := make([]TextUnit, len(snap.textUnits))
	copy(out, snap.textUnits)
	return out, nil
}

// GetEntityByID returns the entity with the given ID, or a NotFound error.
func (s *Store) GetEntityByID(ctx context.Context, id string) (Entity, error) {
	snap := s.snap()
	idx, ok := snap.entitiesByID[id]
	if !ok {
		return Entity{}, apperr.NotFoundf("entity %q not found", id)
	}
	return snap.entities[idx], nil
}

// GetRelatedEntities returns the 1-hop neighborhood of entityID: every other
// entity connected to it by a relationship, paired with that relationship.
func (s *Store) GetRelatedEntities(ctx context.Context, entityID string) ([]RelatedEntity, error) {
	snap := s.snap()
	idx, ok := snap.entitiesByID[entityID]
	if !ok {
		return nil, apperr.NotFoundf("entity %q not found", entityID)
	}
	title := snap.entities[idx].Title

	var out []RelatedEntity
	for _, rel := range snap.relationships {
		var neighborTitle string
		switch title {
		case rel.Source:
			neighborTitle = rel.Target
		case rel.Target:
			neighborTitle = rel.Source
		default:
			continue
		}
		nIdx := resolveByTitle(snap.entities, snap.titleIndex, neighborTitle)
		if nIdx < 0 {
			continue
		}
		out = append(out, RelatedEntity{Entity: snap.entities[nIdx], Relationship: rel})
	}
	return out, nil
}

// emptySnapshot is served by snap when no artifact generation has been
// loaded yet. A store with no artifacts is a valid, usable zero state: every
// Load* method returns empty results rather than an error, per spec's
// empty-startup behavior. Only the Search Gateway gates on NoGeneration,
// since it has no context to search over until a generation exists.
var emptySnapshot = &snapshot{}

func (s *Store) snap() *snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil {
		return emptySnapshot
	}
	return s.snapshot
}
