package search

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/localgraph/backend/pkg/ai"
	"github.com/localgraph/backend/pkg/apperr"
	"github.com/localgraph/backend/pkg/artifact"
)

type fakeStore struct {
	generation    artifact.Generation
	communities   []artifact.Community
	entities      []artifact.Entity
	relationships []artifact.Relationship
	textUnits     []artifact.TextUnit
	related       map[string][]artifact.RelatedEntity
}

func (f *fakeStore) CurrentGeneration() artifact.Generation { return f.generation }
func (f *fakeStore) LoadCommunities(ctx context.Context, maxLevel int) ([]artifact.Community, error) {
	return f.communities, nil
}
func (f *fakeStore) LoadEntities(ctx context.Context, minDegree int) ([]artifact.Entity, error) {
	return f.entities, nil
}
func (f *fakeStore) LoadRelationships(ctx context.Context) ([]artifact.Relationship, error) {
	return f.relationships, nil
}
func (f *fakeStore) LoadTextUnits(ctx context.Context) ([]artifact.TextUnit, error) {
	return f.textUnits, nil
}
func (f *fakeStore) GetRelatedEntities(ctx context.Context, entityID string) ([]artifact.RelatedEntity, error) {
	return f.related[entityID], nil
}

type fakeAIClient struct {
	lastMessages []ai.ChatMessage
	response     string
	err          error
}

func (c *fakeAIClient) GenerateCompletion(ctx context.Context, prompt string, opts ...ai.GenerateOption) (string, error) {
	return c.response, c.err
}
func (c *fakeAIClient) GenerateCompletionWithFormat(ctx context.Context, name, description, prompt string, out any, opts ...ai.GenerateOption) error {
	return c.err
}
func (c *fakeAIClient) GenerateChat(ctx context.Context, messages []ai.ChatMessage, opts ...ai.GenerateOption) (string, error) {
	c.lastMessages = messages
	return c.response, c.err
}
func (c *fakeAIClient) LoadModel(ctx context.Context, opts ...ai.GenerateOption) error { return nil }
func (c *fakeAIClient) ResetMetrics()                                                 {}
func (c *fakeAIClient) GetMetrics() ai.ModelMetrics                                    { return ai.ModelMetrics{} }

func TestGlobalSearch_NotReadyWithoutGeneration(t *testing.T) {
	store := &fakeStore{generation: artifact.NoGeneration}
	g := New(store, &fakeAIClient{response: "ok"}, "test-model", 0)

	if _, err := g.GlobalSearch(context.Background(), "hello", 2, ""); apperr.KindOf(err) != apperr.NotReady {
		t.Fatalf("expected NotReady error, got %v", err)
	}
}

func TestGlobalSearch_RejectsBlankQuery(t *testing.T) {
	store := &fakeStore{generation: 1}
	g := New(store, &fakeAIClient{response: "ok"}, "test-model", 0)

	if _, err := g.GlobalSearch(context.Background(), "   ", 2, ""); err == nil {
		t.Fatalf("expected validation error for blank query")
	}
}

func TestGlobalSearch_HappyPath(t *testing.T) {
	store := &fakeStore{
		generation: 1,
		communities: []artifact.Community{
			{ID: "c1", Title: "Widgets", Level: 1, Rank: 5, Summary: "A cluster about widgets."},
		},
	}
	client := &fakeAIClient{response: "Widgets are discussed in the corpus."}
	g := New(store, client, "test-model", 0)

	res, err := g.GlobalSearch(context.Background(), "what are the main topics?", 2, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Response == "" {
		t.Fatalf("expected non-empty response")
	}
	if len(client.lastMessages) == 0 {
		t.Fatalf("expected a chat message to be sent")
	}
}

func TestLocalSearch_MatchesEntityByTitle(t *testing.T) {
	store := &fakeStore{
		generation: 1,
		entities: []artifact.Entity{
			{ID: "e1", Title: "Acme Corp", Type: "ORGANIZATION", Description: "A company.", Degree: 3},
			{ID: "e2", Title: "Jane Doe", Type: "PERSON", Description: "An employee.", Degree: 1},
		},
		textUnits: []artifact.TextUnit{
			{ID: "t1", Text: "Acme Corp was founded in 1990.", EntityIDs: []string{"e1"}},
		},
		related: map[string][]artifact.RelatedEntity{
			"e1": {{Entity: artifact.Entity{ID: "e2", Title: "Jane Doe"}, Relationship: artifact.Relationship{Source: "Acme Corp", Target: "Jane Doe", Description: "employs"}}},
		},
	}
	client := &fakeAIClient{response: "Acme Corp employs Jane Doe."}
	g := New(store, client, "test-model", 0)

	res, err := g.LocalSearch(context.Background(), "tell me about Acme Corp", 2, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Response == "" {
		t.Fatalf("expected non-empty response")
	}
	if !strings.Contains(res.Context, "Acme Corp (ORGANIZATION)") {
		t.Fatalf("expected the title-matched entity in the context, got %q", res.Context)
	}
	if strings.Contains(res.Context, "Jane Doe (PERSON)") {
		t.Fatalf("expected only the title-matched entity, got %q", res.Context)
	}
}

func TestSynthesize_WrapsUpstreamError(t *testing.T) {
	store := &fakeStore{generation: 1}
	client := &fakeAIClient{err: errors.New("model unavailable")}
	g := New(store, client, "test-model", 0)

	_, err := g.GlobalSearch(context.Background(), "hello", 2, "")
	if err == nil {
		t.Fatalf("expected error to propagate")
	}
	if apperr.KindOf(err) != apperr.Upstream {
		t.Fatalf("expected Upstream error, got %v", err)
	}
}

func TestSuggestions_ReturnsNonEmptyList(t *testing.T) {
	g := New(&fakeStore{generation: 1}, &fakeAIClient{}, "test-model", 0)
	if len(g.Suggestions(context.Background())) == 0 {
		t.Fatalf("expected at least one suggestion")
	}
}
