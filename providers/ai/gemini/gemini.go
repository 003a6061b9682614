package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"google.golang.org/genai"

	"github.com/leofalp/mirror/internal/utils"
	"github.com/leofalp/mirror/providers/ai"
	"github.com/leofalp/mirror/providers/observability"
)

const (
	defaultModel = "gemini-2.5-flash"
	providerName = "gemini"
)

// ErrMissingAPIKey is returned by New when no key is configured.
var ErrMissingAPIKey = errors.New("gemini: API key is not set")

// Config holds the provider settings. Zero values fall back to the
// environment.
type Config struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

// Provider implements ai.Provider through a genai.Client.
type Provider struct {
	client *genai.Client
}

var _ ai.Provider = (*Provider)(nil)

// New builds a provider. It fails when no API key can be found.
func New(ctx context.Context, cfg Config) (*Provider, error) {
	apiKey := utils.FirstNonEmpty(cfg.APIKey, os.Getenv("GEMINI_API_KEY"), os.Getenv("GOOGLE_API_KEY"))
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	clientConfig := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	}
	if baseURL := utils.FirstNonEmpty(cfg.BaseURL, os.Getenv("GEMINI_API_BASE_URL")); baseURL != "" {
		clientConfig.HTTPOptions.BaseURL = baseURL
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return &Provider{client: client}, nil
}

func (p *Provider) Name() string { return providerName }

// SendMessage implements ai.Provider.
func (p *Provider) SendMessage(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
	model := request.Model
	if model == "" {
		model = defaultModel
	}

	contents, err := toContents(request.Messages)
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}

	if span := observability.SpanFromContext(ctx); span != nil {
		span.AddEvent(observability.EventLLMRequestStart,
			observability.String(observability.AttrLLMModel, model),
			observability.Int(observability.AttrRequestMessagesCount, len(contents)),
		)
	}

	resp, err := p.client.Models.GenerateContent(ctx, model, contents, toConfig(request))
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", wrapAPIError(err))
	}

	out := fromResponse(resp, model)
	if span := observability.SpanFromContext(ctx); span != nil {
		span.AddEvent(observability.EventLLMRequestEnd,
			observability.String(observability.AttrLLMFinishReason, out.FinishReason),
		)
	}
	if out.Content == "" && out.Refusal == "" {
		return out, fmt.Errorf("gemini: finish reason %q: %w", out.FinishReason, ai.ErrEmptyResponse)
	}
	return out, nil
}

// wrapAPIError turns genai API errors into *utils.HTTPError so the retry
// middleware can classify them by status code.
func wrapAPIError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return errors.Join(err, &utils.HTTPError{StatusCode: apiErr.Code, Body: apiErr.Message})
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return errors.Join(err, &utils.HTTPError{StatusCode: apiErrPtr.Code, Body: apiErrPtr.Message})
	}
	return err
}

// blockedReasons are finish reasons where the model withheld its answer.
var blockedReasons = map[genai.FinishReason]bool{
	genai.FinishReasonSafety:            true,
	genai.FinishReasonRecitation:        true,
	genai.FinishReasonBlocklist:         true,
	genai.FinishReasonProhibitedContent: true,
	genai.FinishReasonSPII:              true,
}

func fromResponse(resp *genai.GenerateContentResponse, model string) *ai.ChatResponse {
	out := &ai.ChatResponse{Id: resp.ResponseID, Model: model}
	if resp.ModelVersion != "" {
		out.Model = resp.ModelVersion
	}

	if len(resp.Candidates) > 0 {
		candidate := resp.Candidates[0]
		out.FinishReason = strings.ToLower(string(candidate.FinishReason))
		if candidate.Content != nil {
			var texts []string
			for _, part := range candidate.Content.Parts {
				if part != nil && part.Text != "" && !part.Thought {
					texts = append(texts, part.Text)
				}
			}
			out.Content = strings.Join(texts, "")
		}
		if out.Content == "" && blockedReasons[candidate.FinishReason] {
			out.Refusal = "blocked: " + out.FinishReason
		}
	} else if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		out.FinishReason = "blocked"
		out.Refusal = "prompt blocked: " + strings.ToLower(string(resp.PromptFeedback.BlockReason))
	}

	if usage := resp.UsageMetadata; usage != nil {
		out.Usage = &ai.Usage{
			PromptTokens:     int(usage.PromptTokenCount),
			CompletionTokens: int(usage.CandidatesTokenCount),
			TotalTokens:      int(usage.TotalTokenCount),
			CachedTokens:     int(usage.CachedContentTokenCount),
		}
	}
	return out
}
