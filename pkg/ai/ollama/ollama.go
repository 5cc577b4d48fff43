package ollama

import (
	"net/http"
	"net/url"
	"sync"

	"github.com/localgraph/backend/pkg/ai"

	"github.com/ollama/ollama/api"
	"golang.org/x/sync/semaphore"
)

// Client implements ai.SearchClient using Ollama as the backend. It talks to
// a locally-hosted Ollama server and is selected in place of the OpenAI
// adapter via the AI_ADAPTER environment variable.
type Client struct {
	chatModel  string
	maxRetries int

	reqLock *semaphore.Weighted

	metricsLock sync.Mutex
	metrics     ai.ModelMetrics

	baseURL *url.URL

	Client *api.Client
}

// NewParams contains configuration options for creating a new Client.
type NewParams struct {
	ChatModel string
	BaseURL   string
	ApiKey    string

	// MaxConcurrentRequests bounds how many chat requests may be in flight
	// against the Ollama server at once. Defaults to 1 if unset.
	MaxConcurrentRequests int64

	// MaxRetries bounds how many times a chat call is retried on a
	// transient error from the Ollama server. Defaults to 3 if unset.
	MaxRetries int
}

type headerTransport struct {
	headers map[string]string
	rt      http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	for k, v := range t.headers {
		if r.Header.Get(k) == "" {
			r.Header.Set(k, v)
		}
	}
	return t.rt.RoundTrip(r)
}

// New creates a new Ollama-based search client connected to the server at
// BaseURL (or the Ollama default if empty).
func New(params NewParams) (*Client, error) {
	var (
		u   *url.URL
		err error
	)
	if params.BaseURL != "" {
		u, err = url.Parse(params.BaseURL)
		if err != nil {
			return nil, err
		}
	} else {
		u = &url.URL{Scheme: "http", Host: "127.0.0.1:11434"}
	}

	httpClient := &http.Client{
		Transport: &headerTransport{
			headers: map[string]string{"Authorization": "Bearer " + params.ApiKey},
			rt:      http.DefaultTransport,
		},
	}

	maxConcurrent := params.MaxConcurrentRequests
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}

	maxRetries := params.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}

	return &Client{
		chatModel:   params.ChatModel,
		maxRetries:  maxRetries,
		reqLock:     semaphore.NewWeighted(maxConcurrent),
		metricsLock: sync.Mutex{},
		baseURL:     u,
		Client:      api.NewClient(u, httpClient),
	}, nil
}
