// Package groq provides a Generator backed by the Groq inference API,
// which speaks the OpenAI Chat Completions protocol.
package groq

import (
	"context"
	"fmt"
	"time"

	"github.com/figaro-dev/figaro/pkg/provider"
	"github.com/figaro-dev/figaro/pkg/provider/openaicompat"
)

// DefaultBaseURL is the Groq OpenAI-compatible endpoint root.
const DefaultBaseURL = "https://api.groq.com/openai"

// DefaultModel is the model used when none is configured.
const DefaultModel = "llama-3.3-70b-versatile"

// Config holds Groq provider settings.
type Config struct {
	// APIKey is required.
	APIKey string

	// Model defaults to DefaultModel.
	Model string

	// BaseURL defaults to DefaultBaseURL; override for proxies.
	BaseURL string

	// Timeout for the whole HTTP exchange. Zero means 120s.
	Timeout time.Duration
}

// Provider is a Generator for the Groq API.
type Provider struct {
	client *openaicompat.Client
}

// Ensure Provider implements provider.Generator at compile time.
var _ provider.Generator = (*Provider)(nil)

// New creates a Groq provider. Temperature is fixed at 0: code generation
// wants deterministic output.
func New(cfg Config) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("groq: API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}

	client, err := openaicompat.NewClient(openaicompat.Config{
		BaseURL:     cfg.BaseURL,
		APIKey:      cfg.APIKey,
		Model:       cfg.Model,
		Temperature: 0,
		Timeout:     cfg.Timeout,
	})
	if err != nil {
		return nil, err
	}
	return &Provider{client: client}, nil
}

// Name returns the provider identifier.
func (p *Provider) Name() string { return "groq" }

// Generate delegates to the embedded Chat Completions client.
func (p *Provider) Generate(ctx context.Context, prompt string) (string, error) {
	return p.client.Generate(ctx, prompt)
}

// Close releases provider resources.
func (p *Provider) Close() error {
	return p.client.Close()
}
