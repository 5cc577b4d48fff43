// Package search implements the Search Gateway: a bounded, cancellable
// adapter that assembles textual context from the current artifact
// generation (community reports for global search, entity neighborhoods and
// source text for local search) and synthesizes a final answer with one
// chat-completion call. It stands in for the out-of-scope external
// graph-retrieval library's global_search/local_search functions — context
// assembly and ranking happen here; only token generation crosses the
// process boundary to the local inference server.
package search

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pkoukk/tiktoken-go"

	"github.com/localgraph/backend/pkg/ai"
	"github.com/localgraph/backend/pkg/apperr"
	"github.com/localgraph/backend/pkg/artifact"
)

const (
	defaultCommunityLevel = 2
	defaultResponseType   = "Multiple Paragraphs"
	defaultDeadline       = 300 * time.Second
	contextTokenBudget    = 6000
)

// Store is the subset of artifact.Store the gateway reads from.
type Store interface {
	CurrentGeneration() artifact.Generation
	LoadCommunities(ctx context.Context, maxLevel int) ([]artifact.Community, error)
	LoadEntities(ctx context.Context, minDegree int) ([]artifact.Entity, error)
	LoadRelationships(ctx context.Context) ([]artifact.Relationship, error)
	LoadTextUnits(ctx context.Context) ([]artifact.TextUnit, error)
	GetRelatedEntities(ctx context.Context, entityID string) ([]artifact.RelatedEntity, error)
}

// Result is the shape returned by both global and local search.
type Result struct {
	Response string `json:"response"`
	Context  string `json:"context,omitempty"`
}

// Gateway adapts Store-backed context assembly to an ai.SearchClient chat
// call, bounded by a per-call deadline.
type Gateway struct {
	store    Store
	client   ai.SearchClient
	model    string
	deadline time.Duration
}

// New returns a Gateway. deadline <= 0 defaults to 300s per spec.
func New(store Store, client ai.SearchClient, model string, deadline time.Duration) *Gateway {
	if deadline <= 0 {
		deadline = defaultDeadline
	}
	return &Gateway{store: store, client: client, model: model, deadline: deadline}
}

// GlobalSearch reasons over community-level summaries to answer a
// corpus-wide question.
func (g *Gateway) GlobalSearch(ctx context.Context, query string, communityLevel int, responseType string) (Result, error) {
	query, communityLevel, responseType, err := g.normalize(query, communityLevel, responseType)
	if err != nil {
		return Result{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, g.deadline)
	defer cancel()

	communities, err := g.store.LoadCommunities(ctx, communityLevel)
	if err != nil {
		return Result{}, err
	}

	budget := newTokenBudget()
	var sb strings.Builder
	for _, c := range communities {
		line := fmt.Sprintf("%s (community %s, rank %.1f): %s\n", c.Title, c.ID, c.Rank, c.Summary)
		if !budget.fits(sb.String() + line) {
			break
		}
		sb.WriteString(line)
	}

	return g.synthesize(ctx, query, responseType, sb.String())
}

// LocalSearch reasons over a specific entity neighborhood and its source
// text, resolved from entities whose title appears in the query.
func (g *Gateway) LocalSearch(ctx context.Context, query string, communityLevel int, responseType string) (Result, error) {
	query, _, responseType, err := g.normalize(query, communityLevel, responseType)
	if err != nil {
		return Result{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, g.deadline)
	defer cancel()

	entities, err := g.store.LoadEntities(ctx, 0)
	if err != nil {
		return Result{}, err
	}
	matched := matchEntities(entities, query)
	if len(matched) == 0 {
		matched = topByDegree(entities, 5)
	}

	textUnits, err := g.store.LoadTextUnits(ctx)
	if err != nil {
		return Result{}, err
	}
	matchedIDs := make(map[string]bool, len(matched))
	for _, e := range matched {
		matchedIDs[e.ID] = true
	}

	budget := newTokenBudget()
	var sb strings.Builder
	for _, e := range matched {
		line := fmt.Sprintf("%s (%s): %s\n", e.Title, e.Type, e.Description)
		if !budget.fits(sb.String() + line) {
			break
		}
		sb.WriteString(line)

		related, err := g.store.GetRelatedEntities(ctx, e.ID)
		if err != nil {
			continue
		}
		for _, r := range related {
			relLine := fmt.Sprintf("%s -> %s: %s\n", r.Relationship.Source, r.Relationship.Target, r.Relationship.Description)
			if !budget.fits(sb.String() + relLine) {
				break
			}
			sb.WriteString(relLine)
		}
	}

	for _, tu := range textUnits {
		if !referencesAny(tu.EntityIDs, matchedIDs) {
			continue
		}
		line := fmt.Sprintf("%s: %s\n", tu.ID, tu.Text)
		if !budget.fits(sb.String() + line) {
			break
		}
		sb.WriteString(line)
	}

	return g.synthesize(ctx, query, responseType, sb.String())
}

// Suggestions returns a small, static set of prompts the UI can offer the
// user; it requires no artifact access.
func (g *Gateway) Suggestions(ctx context.Context) []string {
	return []string{
		"What are the main themes across the indexed documents?",
		"Who are the most central entities in this knowledge graph?",
		"Summarize the key relationships between the top entities.",
		"What communities of related information exist in the corpus?",
	}
}

func (g *Gateway) normalize(query string, communityLevel int, responseType string) (string, int, string, error) {
	if g.store.CurrentGeneration() == artifact.NoGeneration {
		return "", 0, "", apperr.NotReadyf("no graph artifacts available yet")
	}
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return "", 0, "", apperr.Validationf("query must not be empty")
	}
	if communityLevel <= 0 {
		communityLevel = defaultCommunityLevel
	}
	if responseType == "" {
		responseType = defaultResponseType
	}
	return trimmed, communityLevel, responseType, nil
}

func (g *Gateway) synthesize(ctx context.Context, query, responseType, context string) (Result, error) {
	prompt := fmt.Sprintf(ai.SearchPrompt, context)
	if context == "" {
		prompt = fmt.Sprintf(ai.NoDataPrompt, query)
	}

	messages := []ai.ChatMessage{
		{Role: "user", Message: fmt.Sprintf("%s\n\nResponse format: %s\n\nQuestion: %s", prompt, responseType, query)},
	}

	response, err := g.client.GenerateChat(ctx, messages, ai.WithModel(g.model))
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, apperr.Timeoutf("search call exceeded its deadline")
		}
		return Result{}, apperr.Wrap(apperr.Upstream, "search synthesis failed", err)
	}

	return Result{Response: response, Context: context}, nil
}

func matchEntities(entities []artifact.Entity, query string) []artifact.Entity {
	lowerQuery := strings.ToLower(query)
	var out []artifact.Entity
	for _, e := range entities {
		if e.Title == "" {
			continue
		}
		if strings.Contains(lowerQuery, strings.ToLower(e.Title)) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Degree > out[j].Degree })
	return out
}

func topByDegree(entities []artifact.Entity, n int) []artifact.Entity {
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

func referencesAny(ids []string, set map[string]bool) bool {
	for _, id := range ids {
		if set[id] {
			return true
		}
	}
	return false
}

// tokenBudget measures assembled context against contextTokenBudget using
// the same encoding used for chat token-budgeting elsewhere in the AI layer.
type tokenBudget struct {
	enc *tiktoken.Tiktoken
}

func newTokenBudget() *tokenBudget {
	enc, _ := tiktoken.GetEncoding("o200k_base")
	return &tokenBudget{enc: enc}
}

// fits reports whether candidate text is still within the context token
// budget. If no encoder is available it falls back to a conservative
// character bound rather than refusing to build any context at all.
func (b *tokenBudget) fits(candidate string) bool {
	if b.enc == nil {
		return len(candidate) < contextTokenBudget*4
	}
	return len(b.enc.Encode(candidate, nil, nil)) <= contextTokenBudget
}
