package openai

import (
	"math"
	"sync"

	"github.com/localgraph/backend/pkg/ai"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// Client is a chat-completion client for the search gateway backed by an
// OpenAI-compatible HTTP endpoint, including local inference servers that
// speak the OpenAI chat API.
//
// A Client should be created using New.
type Client struct {
	chatModel  string
	chatURL    string
	chatKey    string
	maxRetries int

	metricsLock sync.Mutex
	metrics     ai.ModelMetrics

	ChatClient *openai.Client
}

// NewParams defines the configuration parameters for creating a new Client.
type NewParams struct {
	ChatModel string
	ChatURL   string
	ChatKey   string

	// MaxRetries bounds how many times a chat-completion call is retried on
	// a transient upstream error. Defaults to 3 if unset.
	MaxRetries int
}

// New creates and returns a new Client configured with the provided
// parameters. ChatURL may be empty to use the default OpenAI endpoint.
func New(params NewParams) *Client {
	options := []option.RequestOption{}
	if params.ChatKey != "" {
		options = append(options, option.WithAPIKey(params.ChatKey))
	}
	if params.ChatURL != "" {
		options = append(options, option.WithBaseURL(params.ChatURL))
	}
	chatClient := openai.NewClient(options...)

	maxRetries := params.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}

	return &Client{
		chatModel:   params.ChatModel,
		chatURL:     params.ChatURL,
		chatKey:     params.ChatKey,
		maxRetries:  maxRetries,
		metricsLock: sync.Mutex{},
		ChatClient:  &chatClient,
	}
}

// ResetMetrics clears all accumulated token and timing metrics to zero.
func (c *Client) ResetMetrics() {
	c.metricsLock.Lock()
	c.metrics = ai.ModelMetrics{}
	c.metricsLock.Unlock()
}

// GetMetrics returns the accumulated token usage and timing metrics since the last reset.
func (c *Client) GetMetrics() ai.ModelMetrics {
	c.metricsLock.Lock()
	defer c.metricsLock.Unlock()
	return c.metrics
}

func (c *Client) modifyMetrics(m ai.ModelMetrics) {
	c.metricsLock.Lock()
	defer c.metricsLock.Unlock()

	c.metrics.InputTokens += m.InputTokens
	c.metrics.OutputTokens += m.OutputTokens
	c.metrics.TotalTokens += m.TotalTokens
	c.metrics.DurationMs += m.DurationMs

	if c.metrics.DurationMs > 0 {
		tokensPerSecond := (float64(c.metrics.TotalTokens) * 1000.0) / float64(c.metrics.DurationMs)
		c.metrics.TokenPerSecond = float32(math.Round(tokensPerSecond*100) / 100)
	}
}
