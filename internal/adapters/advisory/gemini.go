// Package advisory implements the advisory-service client on top of the
// Gemini API. The client is optional: without an API key it reports
// unconfigured and the decision engine never calls it.
package advisory

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/genai"

	"github.com/tovu/retain/internal/domain/model"
	"github.com/tovu/retain/internal/domain/recommend"
)

// Generation parameters. Low temperature keeps the output close to the
// schema; token budget covers a handful of actions plus explanation.
const (
	defaultModel    = "gemini-1.5-flash"
	temperature     = 0.2
	topP            = 0.9
	maxOutputTokens = 800
)

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithModel overrides the model identifier.
func WithModel(m string) Option {
	return func(c *Client) {
		if m != "" {
			c.model = m
		}
	}
}

// Client calls the Gemini API under the JSON-only output contract.
// Configuration is immutable after construction.
type Client struct {
	api   *genai.Client
	model string
}

// New creates a client. An empty apiKey yields an unconfigured client
// and no error; callers are expected to check Configured.
func New(ctx context.Context, apiKey string, opts ...Option) (*Client, error) {
	c := &Client{model: defaultModel}
	for _, opt := range opts {
		opt(c)
	}
	if apiKey == "" {
		return c, nil
	}
	api, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCall, err)
	}
	c.api = api
	return c, nil
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	return c.model
}

// Configured reports whether the client holds a usable credential.
func (c *Client) Configured() bool {
	return c != nil && c.api != nil
}

// Generate sends the serialized context with the fixed system
// instructions and decodes the reply as a candidate recommendation.
// It never retries; any failure is returned for the engine to absorb.
func (c *Client) Generate(ctx context.Context, rc model.RecommendationContext) (recommend.Candidate, error) {
	if !c.Configured() {
		return recommend.Candidate{}, ErrNotConfigured
	}

	payload, err := json.Marshal(rc)
	if err != nil {
		return recommend.Candidate{}, fmt.Errorf("%w: %w", ErrCall, err)
	}

	prompt := fmt.Sprintf("INPUT_JSON:\n%s\n\n%s", payload, jsonOnlyReminder)
	resp, err := c.api.Models.GenerateContent(ctx, c.model, genai.Text(prompt), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		Temperature:       genai.Ptr[float32](temperature),
		TopP:              genai.Ptr[float32](topP),
		MaxOutputTokens:   maxOutputTokens,
		ResponseMIMEType:  "application/json",
	})
	if err != nil {
		return recommend.Candidate{}, fmt.Errorf("%w: %w", ErrCall, err)
	}

	return decodeCandidate(resp.Text())
}

// decodeCandidate parses the model output. The contract forbids markdown
// wrapping, so anything that is not a bare JSON object is an error
// rather than a repair target.
func decodeCandidate(text string) (recommend.Candidate, error) {
	if text == "" {
		return recommend.Candidate{}, fmt.Errorf("%w: empty response", ErrBadResponse)
	}
	var c recommend.Candidate
	if err := json.Unmarshal([]byte(text), &c); err != nil {
		return recommend.Candidate{}, fmt.Errorf("%w: %w", ErrBadResponse, err)
	}
	return c, nil
}
