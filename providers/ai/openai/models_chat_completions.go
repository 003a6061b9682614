package openai

import (
	"strings"

	"github.com/leofalp/mirror/providers/ai"
)

/*
	CHAT COMPLETIONS API - INPUT
*/

type chatCompletionRequest struct {
	Model               string              `json:"model"`
	Messages            []chatMessage       `json:"messages"`
	Temperature         *float64            `json:"temperature,omitempty"`
	TopP                *float64            `json:"top_p,omitempty"`
	MaxCompletionTokens *int                `json:"max_completion_tokens,omitempty"`
	ResponseFormat      *chatResponseFormat `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`              // system, user, assistant
	Content any    `json:"content,omitempty"` // string or []contentPart for multimodal
}

type contentPart struct {
	Type     string            `json:"type"`
	Text     string            `json:"text,omitempty"`
	ImageURL *contentPartImage `json:"image_url,omitempty"`
}

type contentPartImage struct {
	URL string `json:"url"`
}

type chatResponseFormat struct {
	Type string `json:"type"` // "text", "json_object"
}

/*
	CHAT COMPLETIONS API - OUTPUT
*/

type chatCompletionResponse struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Created int64        `json:"created"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
	Usage   *chatUsage   `json:"usage,omitempty"`
}

type chatChoice struct {
	Index        int                 `json:"index"`
	Message      chatResponseMessage `json:"message"`
	FinishReason string              `json:"finish_reason"` // "stop", "length", "content_filter"
}

type chatResponseMessage struct {
	Role      string `json:"role"`
	Content   string `json:"content,omitempty"`
	Refusal   string `json:"refusal,omitempty"`
	Reasoning string `json:"reasoning,omitempty"` // OpenRouter reasoning models
}

type chatUsage struct {
	PromptTokens        int `json:"prompt_tokens"`
	CompletionTokens    int `json:"completion_tokens"`
	TotalTokens         int `json:"total_tokens"`
	PromptTokensDetails *struct {
		CachedTokens int `json:"cached_tokens,omitempty"`
	} `json:"prompt_tokens_details,omitempty"`
}

/*
	CONVERSION FUNCTIONS
*/

func requestToChatCompletion(request ai.ChatRequest) chatCompletionRequest {
	req := chatCompletionRequest{Model: request.Model}

	if request.SystemPrompt != "" {
		req.Messages = append(req.Messages, chatMessage{
			Role:    string(ai.RoleSystem),
			Content: request.SystemPrompt,
		})
	}

	for _, msg := range request.Messages {
		chatMsg := chatMessage{Role: string(msg.Role), Content: msg.Content}

		if len(msg.Parts) > 0 {
			parts := make([]contentPart, 0, len(msg.Parts))
			for _, part := range msg.Parts {
				switch part.Type {
				case ai.ContentTypeText:
					parts = append(parts, contentPart{Type: "text", Text: part.Text})
				case ai.ContentTypeImage:
					if part.ImageURL == "" {
						continue
					}
					parts = append(parts, contentPart{Type: "image_url", ImageURL: &contentPartImage{URL: part.ImageURL}})
				}
			}
			if len(parts) > 0 {
				chatMsg.Content = parts
			}
		}

		req.Messages = append(req.Messages, chatMsg)
	}

	if cfg := request.GenerationConfig; cfg != nil {
		if cfg.Temperature != nil {
			temp := float64(*cfg.Temperature)
			req.Temperature = &temp
		}
		if cfg.TopP > 0 {
			topP := float64(cfg.TopP)
			req.TopP = &topP
		}
		if cfg.MaxOutputTokens > 0 {
			maxTokens := cfg.MaxOutputTokens
			req.MaxCompletionTokens = &maxTokens
		}
	}

	if request.ResponseFormat != nil && request.ResponseFormat.Type != "" {
		req.ResponseFormat = &chatResponseFormat{Type: string(request.ResponseFormat.Type)}
	}

	return req
}

// chatCompletionToGeneric converts the first choice to an ai.ChatResponse.
// Reasoning wrapped in <think> tags is removed from the content.
func chatCompletionToGeneric(resp chatCompletionResponse) *ai.ChatResponse {
	out := &ai.ChatResponse{Id: resp.ID, Model: resp.Model}
	if len(resp.Choices) == 0 {
		out.FinishReason = "error"
		return out
	}

	choice := resp.Choices[0]
	content := choice.Message.Content
	if strings.TrimSpace(content) == "" && choice.Message.Reasoning != "" {
		content = choice.Message.Reasoning
	}

	out.Content = cleanThinkTags(content)
	out.Refusal = choice.Message.Refusal
	out.FinishReason = choice.FinishReason

	if resp.Usage != nil {
		out.Usage = &ai.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		}
		if resp.Usage.PromptTokensDetails != nil {
			out.Usage.CachedTokens = resp.Usage.PromptTokensDetails.CachedTokens
		}
	}
	return out
}

// cleanThinkTags removes a <think>...</think> block. A missing start tag
// means the reasoning began at the start of the text; a missing end tag
// leaves the text unchanged.
func cleanThinkTags(content string) string {
	const startTag, endTag = "<think>", "</think>"

	end := strings.Index(content, endTag)
	if end == -1 {
		return content
	}
	start := strings.Index(content, startTag)
	if start == -1 || start > end {
		start = 0
	}
	return strings.TrimSpace(content[:start] + content[end+len(endTag):])
}
