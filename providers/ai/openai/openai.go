package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/leofalp/mirror/internal/utils"
	"github.com/leofalp/mirror/providers/ai"
	"github.com/leofalp/mirror/providers/observability"
)

const (
	defaultBaseURL          = "https://api.openai.com/v1"
	chatCompletionsEndpoint = "/chat/completions"
	providerName            = "openai"
)

// ErrMissingAPIKey is returned by SendMessage when no key is configured.
var ErrMissingAPIKey = errors.New("openai: API key is not set")

// Provider implements ai.Provider for OpenAI-compatible chat completions.
type Provider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

var _ ai.Provider = (*Provider)(nil)

// New returns a provider configured from OPENAI_API_KEY and
// OPENAI_API_BASE_URL.
func New() *Provider {
	baseURL := os.Getenv("OPENAI_API_BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Provider{
		apiKey:  os.Getenv("OPENAI_API_KEY"),
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{},
	}
}

// WithAPIKey sets the API key for the provider
func (p *Provider) WithAPIKey(apiKey string) *Provider {
	p.apiKey = apiKey
	return p
}

// WithBaseURL sets the base URL for the API
func (p *Provider) WithBaseURL(baseURL string) *Provider {
	if baseURL != "" {
		p.baseURL = strings.TrimRight(baseURL, "/")
	}
	return p
}

// WithHttpClient sets a custom HTTP client
func (p *Provider) WithHttpClient(httpClient *http.Client) *Provider {
	if httpClient != nil {
		p.client = httpClient
	}
	return p
}

func (p *Provider) Name() string { return providerName }

// SendMessage implements ai.Provider.
func (p *Provider) SendMessage(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
	if p.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	url := p.baseURL + chatCompletionsEndpoint
	if span := observability.SpanFromContext(ctx); span != nil {
		span.SetAttributes(observability.String(observability.AttrLLMEndpoint, url))
	}

	resp, err := utils.DoPostSync[chatCompletionResponse](ctx, p.client, url, utils.BearerAuth(p.apiKey), requestToChatCompletion(request))
	if err != nil {
		return nil, fmt.Errorf("openai: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai: no choices in response: %w", ai.ErrEmptyResponse)
	}

	out := chatCompletionToGeneric(*resp)
	if out.Content == "" && out.Refusal == "" {
		return out, fmt.Errorf("openai: finish reason %q: %w", out.FinishReason, ai.ErrEmptyResponse)
	}
	return out, nil
}
