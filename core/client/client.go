package client

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/leofalp/mirror/core/parse"
	"github.com/leofalp/mirror/providers/ai"
	"github.com/leofalp/mirror/providers/observability"
)

// Client sends chat requests through a provider and a middleware chain. It
// holds no conversation state; callers pass the full history on each call.
type Client struct {
	provider ai.Provider
	send     SendFunc
	options  ClientOptions
}

// ClientOptions holds the defaults applied to every request.
type ClientOptions struct {
	DefaultModel     string
	SystemPrompt     string
	GenerationConfig *ai.GenerationConfig
	Observer         observability.Provider
	Middlewares      []Middleware
}

func WithDefaultModel(model string) func(*ClientOptions) {
	return func(o *ClientOptions) {
		o.DefaultModel = model
	}
}

func WithSystemPrompt(prompt string) func(*ClientOptions) {
	return func(o *ClientOptions) {
		o.SystemPrompt = prompt
	}
}

// WithGenerationConfig sets the generation config used when a request has
// none of its own.
func WithGenerationConfig(config ai.GenerationConfig) func(*ClientOptions) {
	return func(o *ClientOptions) {
		o.GenerationConfig = &config
	}
}

// WithObserver enables spans, metrics and logs for every request. The
// observability middleware is placed outermost so it sees the final result
// after retries.
func WithObserver(observer observability.Provider) func(*ClientOptions) {
	return func(o *ClientOptions) {
		o.Observer = observer
	}
}

// WithMiddleware appends middlewares to the chain, outermost first.
func WithMiddleware(middlewares ...Middleware) func(*ClientOptions) {
	return func(o *ClientOptions) {
		o.Middlewares = append(o.Middlewares, middlewares...)
	}
}

// New returns a Client for provider.
func New(provider ai.Provider, opts ...func(*ClientOptions)) (*Client, error) {
	if provider == nil {
		return nil, errors.New("client: provider is nil")
	}

	options := ClientOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	for i, m := range options.Middlewares {
		if m == nil {
			return nil, fmt.Errorf("client: middleware %d is nil", i)
		}
	}

	chain := options.Middlewares
	if options.Observer != nil {
		chain = append([]Middleware{NewObservabilityMiddleware(options.Observer, provider.Name(), options.DefaultModel)}, chain...)
	}

	return &Client{
		provider: provider,
		send:     buildSendChain(provider, chain),
		options:  options,
	}, nil
}

// Provider returns the underlying provider.
func (c *Client) Provider() ai.Provider {
	return c.provider
}

// Observer returns the configured observer, or nil.
func (c *Client) Observer() observability.Provider {
	return c.options.Observer
}

// SendMessage fills request defaults and sends it through the chain.
func (c *Client) SendMessage(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
	if len(request.Messages) == 0 {
		return nil, errors.New("client: request has no messages")
	}
	if request.Model == "" {
		request.Model = c.options.DefaultModel
	}
	if request.SystemPrompt == "" {
		request.SystemPrompt = c.options.SystemPrompt
	}
	if request.GenerationConfig == nil {
		request.GenerationConfig = c.options.GenerationConfig
	}
	return c.send(ctx, request)
}

// Ask sends a single user prompt.
func (c *Client) Ask(ctx context.Context, prompt string) (*ai.ChatResponse, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, errors.New("client: prompt is empty")
	}
	return c.SendMessage(ctx, ai.ChatRequest{
		Messages: []ai.Message{ai.NewTextMessage(ai.RoleUser, prompt)},
	})
}

// Extract sends request and runs the reply through the extraction
// pipeline with schema. A transport error is returned as err; every
// content problem is reported through the Outcome instead. Refusals and
// empty replies still produce an Outcome so the raw text is kept.
func (c *Client) Extract(ctx context.Context, request ai.ChatRequest, schema parse.Schema) (parse.Outcome, *ai.ChatResponse, error) {
	if request.ResponseFormat == nil {
		request.ResponseFormat = &ai.ResponseFormat{Type: ai.ResponseJSON}
	}

	response, err := c.SendMessage(ctx, request)
	if err != nil {
		return nil, nil, err
	}

	text := response.Content
	if text == "" {
		text = response.Refusal
	}

	var opts []parse.Option
	if c.options.Observer != nil {
		opts = append(opts, parse.WithObserver(c.options.Observer))
	}
	return parse.ExtractContext(ctx, text, schema, opts...), response, nil
}
