package client

import (
	"context"

	"github.com/leofalp/mirror/internal/utils"
	"github.com/leofalp/mirror/providers/ai"
	"github.com/leofalp/mirror/providers/observability"
)

// NewObservabilityMiddleware wraps each provider call with a span, request
// and token metrics, and structured logs. Both the span and the observer
// are put into the context so providers can add events to the span.
//
// New prepends it automatically when WithObserver is given.
func NewObservabilityMiddleware(observer observability.Provider, providerName, defaultModel string) Middleware {
	return func(next SendFunc) SendFunc {
		return func(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
			model := effectiveModel(request.Model, defaultModel)

			ctx, span := observer.StartSpan(ctx, observability.SpanClientSendMessage,
				observability.String(observability.AttrLLMProvider, providerName),
				observability.String(observability.AttrLLMModel, model),
			)
			defer span.End()
			ctx = observability.ContextWithObserver(ctx, observer)

			if cfg := request.GenerationConfig; cfg != nil {
				if cfg.Temperature != nil {
					span.SetAttributes(observability.Float64(observability.AttrLLMTemperature, float64(*cfg.Temperature)))
				}
				if cfg.MaxOutputTokens > 0 {
					span.SetAttributes(observability.Int(observability.AttrLLMMaxTokens, cfg.MaxOutputTokens))
				}
			}

			observer.Debug(ctx, "llm send",
				observability.String(observability.AttrLLMModel, model),
				observability.Int(observability.AttrRequestMessagesCount, len(request.Messages)),
			)

			timer := utils.NewTimer()
			response, err := next(ctx, request)
			elapsed := timer.Stop()

			observer.Histogram(observability.MetricClientRequestDuration).Record(ctx, elapsed.Seconds(),
				observability.String(observability.AttrLLMModel, model),
			)

			if err != nil {
				observability.Fail(span, err, "llm send failed")

				observer.Error(ctx, "llm send failed",
					observability.Error(err),
					observability.Duration(observability.AttrDuration, elapsed),
					observability.String(observability.AttrLLMModel, model),
				)
				observer.Counter(observability.MetricClientRequestCount).Add(ctx, 1,
					observability.String(observability.AttrStatus, "error"),
					observability.String(observability.AttrLLMModel, model),
				)
				return nil, err
			}

			recordSuccess(ctx, span, observer, response, elapsed.Seconds(), model)
			return response, nil
		}
	}
}

func recordSuccess(ctx context.Context, span observability.Span, observer observability.Provider, response *ai.ChatResponse, seconds float64, model string) {
	observer.Counter(observability.MetricClientRequestCount).Add(ctx, 1,
		observability.String(observability.AttrStatus, "success"),
		observability.String(observability.AttrLLMModel, model),
	)

	span.SetAttributes(
		observability.String(observability.AttrLLMResponseID, response.Id),
		observability.String(observability.AttrLLMFinishReason, response.FinishReason),
	)

	logAttrs := []observability.Attribute{
		observability.String(observability.AttrLLMModel, model),
		observability.String(observability.AttrLLMFinishReason, response.FinishReason),
		observability.Float64(observability.AttrDuration, seconds),
	}

	if response.Usage != nil {
		observer.Counter(observability.MetricClientTokensTotal).Add(ctx, int64(response.Usage.TotalTokens),
			observability.String(observability.AttrLLMModel, model),
		)
		span.SetAttributes(
			observability.Int(observability.AttrLLMTokensTotal, response.Usage.TotalTokens),
			observability.Int(observability.AttrLLMTokensPrompt, response.Usage.PromptTokens),
			observability.Int(observability.AttrLLMTokensCompletion, response.Usage.CompletionTokens),
		)
		logAttrs = append(logAttrs,
			observability.Int(observability.AttrLLMTokensPrompt, response.Usage.PromptTokens),
			observability.Int(observability.AttrLLMTokensCompletion, response.Usage.CompletionTokens),
		)
	}

	if response.Truncated() {
		observer.Warn(ctx, "llm reply hit the token limit",
			observability.String(observability.AttrLLMModel, model),
			observability.Int(observability.AttrResponseBytes, len(response.Content)),
		)
	}

	if response.Content != "" {
		logAttrs = append(logAttrs,
			observability.String(observability.AttrResponseContent, utils.TruncateString(response.Content, 100)),
		)
	}

	observer.Info(ctx, "llm send completed", logAttrs...)
	span.SetStatus(observability.StatusOK, "success")
}

// effectiveModel returns the request-level model when set, falling back to
// the client default. Both being empty lets the provider choose.
func effectiveModel(requestModel, defaultModel string) string {
	if requestModel != "" {
		return requestModel
	}
	return defaultModel
}
