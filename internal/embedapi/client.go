package embedapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/cognicore/wordprep/pkg/wordprep/internalerr"
)

// Client calls an OpenAI-compatible embeddings endpoint, such as OpenRouter.
type Client struct {
	BaseURL string
	APIKey  string
	Model   string

	HTTPClient *http.Client
	MaxRetries int

	api *openai.Client
}

// New validates the settings and builds the underlying API client.
func New(baseURL, apiKey, model string, opts ...func(*Client)) (*Client, error) {
	c := &Client{BaseURL: baseURL, APIKey: apiKey, Model: model, MaxRetries: 2}
	for _, o := range opts {
		o(c)
	}
	if c.BaseURL == "" || c.Model == "" {
		return nil, fmt.Errorf("%w: embedapi: base URL and model required", internalerr.ErrInvalidConfig)
	}
	if c.APIKey == "" {
		return nil, fmt.Errorf("%w: embedapi: API key required", internalerr.ErrInvalidConfig)
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(c.APIKey),
		option.WithBaseURL(c.BaseURL),
		option.WithHTTPClient(c.httpClient()),
		option.WithMaxRetries(c.MaxRetries),
	}
	api := openai.NewClient(reqOpts...)
	c.api = &api
	return c, nil
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) func(*Client) {
	return func(c *Client) { c.HTTPClient = hc }
}

// WithMaxRetries sets how often a failed request is retried.
func WithMaxRetries(n int) func(*Client) {
	return func(c *Client) { c.MaxRetries = n }
}

// Embed returns one vector per input word, in input order.
func (c *Client) Embed(ctx context.Context, words []string) ([][]float64, error) {
	if len(words) == 0 {
		return nil, nil
	}
	resp, err := c.api.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: words},
		Model: openai.EmbeddingModel(c.Model),
	})
	if err != nil {
		return nil, fmt.Errorf("embedapi: %w", err)
	}
	if len(resp.Data) != len(words) {
		return nil, fmt.Errorf("%w: embedapi: %d embeddings for %d words", internalerr.ErrMalformedInput, len(resp.Data), len(words))
	}

	out := make([][]float64, len(words))
	for i, d := range resp.Data {
		idx := int(d.Index)
		// Some compatible servers leave index at zero.
		if idx == 0 && i != 0 && out[0] != nil {
			idx = i
		}
		if idx < 0 || idx >= len(words) || out[idx] != nil {
			return nil, fmt.Errorf("%w: embedapi: bad embedding index %d", internalerr.ErrMalformedInput, d.Index)
		}
		out[idx] = d.Embedding
	}
	return out, nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: 60 * time.Second}
}
