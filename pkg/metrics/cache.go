package metrics

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/localgraph/backend/pkg/artifact"

	"golang.org/x/sync/singleflight"
)

// Store is the subset of artifact.Store the cache reads from.
type Store interface {
	CurrentGeneration() artifact.Generation
	LoadEntities(ctx context.Context, minDegree int) ([]artifact.Entity, error)
	LoadRelationships(ctx context.Context) ([]artifact.Relationship, error)
	LoadCommunities(ctx context.Context, maxLevel int) ([]artifact.Community, error)
	LoadTextUnits(ctx context.Context) ([]artifact.TextUnit, error)
	GetEntityByID(ctx context.Context, id string) (artifact.Entity, error)
	GetRelatedEntities(ctx context.Context, entityID string) ([]artifact.RelatedEntity, error)
}

// Cache memoizes aggregations over the current artifact generation. Each
// entry is tagged with the generation it was computed against; a lookup
// whose tag doesn't match the store's current generation is treated as a
// miss. Concurrent misses for the same key collapse into one computation
// via singleflight, bounding the inflight-dedup window to one in-progress
// call per key.
type Cache struct {
	store Store
	sf    singleflight.Group

	mu      sync.Mutex
	entries map[string]entry
}

type entry struct {
	generation artifact.Generation
	value      any
}

// New returns a Cache reading from store.
func New(store Store) *Cache {
	return &Cache{store: store, entries: make(map[string]entry)}
}

// Invalidate drops all memoized entries. Called by the Index Job Supervisor
// after a successful reload.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
}

func (c *Cache) get(key string, generation artifact.Generation) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || e.generation != generation {
		return nil, false
	}
	return e.value, true
}

func (c *Cache) put(key string, generation artifact.Generation, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{generation: generation, value: value}
}

// compute returns the cached value for key if it is tagged with the current
// generation, otherwise recomputes via fn (deduped against concurrent
// callers using the same key) and caches the fresh result.
func compute[T any](c *Cache, key string, fn func() (T, error)) (T, error) {
	var zero T
	generation := c.store.CurrentGeneration()

	if v, ok := c.get(key, generation); ok {
		return v.(T), nil
	}

	v, err, _ := c.sf.Do(fmt.Sprintf("%s:%d", key, generation), func() (any, error) {
		result, err := fn()
		if err != nil {
			return nil, err
		}
		c.put(key, generation, result)
		return result, nil
	})
	if err != nil {
		return zero, err
	}
	return v.(T), nil
}

// Statistics returns the corpus-level summary, recomputing on a generation
// change.
func (c *Cache) Statistics(ctx context.Context) (Statistics, error) {
	return compute(c, "statistics", func() (Statistics, error) {
		entities, err := c.store.LoadEntities(ctx, 0)
		if err != nil {
			return Statistics{}, err
		}
		relationships, err := c.store.LoadRelationships(ctx)
		if err != nil {
			return Statistics{}, err
		}
		communities, err := c.store.LoadCommunities(ctx, -1)
		if err != nil {
			return Statistics{}, err
		}
		textUnits, err := c.store.LoadTextUnits(ctx)
		if err != nil {
			return Statistics{}, err
		}

		types := make(map[string]int)
		for _, e := range entities {
			types[e.Type]++
		}

		weights := make([]float64, len(relationships))
		for i, r := range relationships {
			weights[i] = r.Weight
		}

		stats := Statistics{
			GraphDensity: graphDensity(len(entities), len(relationships)),
		}
		stats.Entities.Total = len(entities)
		stats.Entities.Types = types
		stats.Relationships.Total = len(relationships)
		stats.Relationships.WeightStats = weightStats(weights)
		stats.Communities.Total = len(communities)
		stats.TextUnits.Total = len(textUnits)
		return stats, nil
	})
}

// EntityTypeHistogram returns entity counts by type, descending by count.
func (c *Cache) EntityTypeHistogram(ctx context.Context) ([]TypeHistogramEntry, error) {
	return compute(c, "entity_type_histogram", func() ([]TypeHistogramEntry, error) {
		entities, err := c.store.LoadEntities(ctx, 0)
		if err != nil {
			return nil, err
		}

		counts := make(map[string]int)
		var order []string
		for _, e := range entities {
			if _, seen := counts[e.Type]; !seen {
				order = append(order, e.Type)
			}
			counts[e.Type]++
		}

		total := len(entities)
		out := make([]TypeHistogramEntry, 0, len(order))
		for _, t := range order {
			pct := 0.0
			if total > 0 {
				pct = float64(counts[t]) * 100.0 / float64(total)
			}
			out = append(out, TypeHistogramEntry{Type: t, Count: counts[t], Percentage: pct})
		}
		sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
		return out, nil
	})
}

// TopRelationships returns the k highest-weight relationships, descending by
// weight then ascending by source title. k defaults to 10 when <= 0.
func (c *Cache) TopRelationships(ctx context.Context, k int) ([]artifact.RankedRelationship, error) {
	if k <= 0 {
		k = 10
	}
	key := fmt.Sprintf("top_relationships:%d", k)
	return compute(c, key, func() ([]artifact.RankedRelationship, error) {
		relationships, err := c.store.LoadRelationships(ctx)
		if err != nil {
			return nil, err
		}

		sorted := make([]artifact.Relationship, len(relationships))
		copy(sorted, relationships)
		sort.SliceStable(sorted, func(i, j int) bool {
			if sorted[i].Weight != sorted[j].Weight {
				return sorted[i].Weight > sorted[j].Weight
			}
			return sorted[i].Source < sorted[j].Source
		})

		if len(sorted) > k {
			sorted = sorted[:k]
		}

		out := make([]artifact.RankedRelationship, len(sorted))
		for i, r := range sorted {
			out[i] = artifact.RankedRelationship{Relationship: r, Rank: i + 1}
		}
		return out, nil
	})
}

// EntityAnalysis returns a structural profile for entityID, built entirely
// from graph facts (no language-model call).
func (c *Cache) EntityAnalysis(ctx context.Context, entityID string) (EntityAnalysis, error) {
	key := fmt.Sprintf("entity_analysis:%s", entityID)
	return compute(c, key, func() (EntityAnalysis, error) {
		entity, err := c.store.GetEntityByID(ctx, entityID)
		if err != nil {
			return EntityAnalysis{}, err
		}
		entities, err := c.store.LoadEntities(ctx, 0)
		if err != nil {
			return EntityAnalysis{}, err
		}
		related, err := c.store.GetRelatedEntities(ctx, entityID)
		if err != nil {
			return EntityAnalysis{}, err
		}

		maxDegree := 0
		for _, e := range entities {
			if e.Degree > maxDegree {
				maxDegree = e.Degree
			}
		}
		normalized := 0.0
		if maxDegree > 0 {
			normalized = float64(entity.Degree) / float64(maxDegree)
		}

		factors := make([]InfluenceFactor, 0, len(related))
		for _, r := range related {
			factors = append(factors, InfluenceFactor{
				RelatedEntity: r.Entity.Title,
				Description:   r.Relationship.Description,
			})
		}

		return EntityAnalysis{
			CentralityScore:      entity.Degree,
			NormalizedCentrality: normalized,
			EntityType:           entity.Type,
			SemanticDescription:  fmt.Sprintf("%s is a %s-type entity connected to %d other entities in the current graph.", entity.Title, entity.Type, entity.Degree),
			InfluenceFactors:     factors,
			Analysis:             fmt.Sprintf("Centrality rank: %.0f%% of the most-connected entity in this generation.", normalized*100),
		}, nil
	})
}

func graphDensity(entityCount, relationshipCount int) float64 {
	if entityCount < 2 {
		return 0
	}
	return 2 * float64(relationshipCount) / (float64(entityCount) * float64(entityCount-1))
}

func weightStats(weights []float64) WeightStats {
	if len(weights) == 0 {
		return WeightStats{}
	}
	sorted := make([]float64, len(weights))
	copy(sorted, weights)
	sort.Float64s(sorted)

	sum := 0.0
	for _, w := range sorted {
		sum += w
	}

	// Lower median: for an even-sized set, the smaller of the two middle values.
	mid := (len(sorted) - 1) / 2

	return WeightStats{
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		Mean:   sum / float64(len(sorted)),
		Median: sorted[mid],
	}
}
