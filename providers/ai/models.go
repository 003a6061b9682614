package ai

import "strings"

/*
	##### PROVIDER INPUT #####
*/

// ChatRequest represents a request to send a chat message
type ChatRequest struct {
	Model            string            `json:"model,omitempty"`             // Model name or identifier
	SystemPrompt     string            `json:"system_prompt,omitempty"`     // Optional system prompt
	Messages         []Message         `json:"messages"`                    // Conversation, oldest first, without the system prompt
	ResponseFormat   *ResponseFormat   `json:"response_format,omitempty"`   // Optional response format
	GenerationConfig *GenerationConfig `json:"generation_config,omitempty"` // Optional generation configuration
}

// Message represents a single message in a conversation
type Message struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content,omitempty"`

	// Parts carries multimodal content. When set, providers send Parts
	// instead of Content.
	Parts []ContentPart `json:"parts,omitempty"`
}

// ContentPart is one piece of a multimodal message.
type ContentPart struct {
	Type     ContentType `json:"type"`
	Text     string      `json:"text,omitempty"`
	ImageURL string      `json:"image_url,omitempty"`
	MimeType string      `json:"mime_type,omitempty"` // Optional, inferred from the URL when empty
}

type ContentType string

const (
	ContentTypeText  ContentType = "text"
	ContentTypeImage ContentType = "image_url"
)

// NewTextMessage returns a plain text message.
func NewTextMessage(role MessageRole, content string) Message {
	return Message{Role: role, Content: content}
}

// NewImageMessage returns a user message made of an optional text part
// followed by an image part.
func NewImageMessage(text, imageURL string) Message {
	msg := Message{Role: RoleUser}
	if strings.TrimSpace(text) != "" {
		msg.Parts = append(msg.Parts, ContentPart{Type: ContentTypeText, Text: text})
	}
	msg.Parts = append(msg.Parts, ContentPart{Type: ContentTypeImage, ImageURL: imageURL})
	return msg
}

// Text returns the message text, joining text parts when the message is
// multimodal.
func (m Message) Text() string {
	if len(m.Parts) == 0 {
		return m.Content
	}
	var texts []string
	for _, p := range m.Parts {
		if p.Type == ContentTypeText && p.Text != "" {
			texts = append(texts, p.Text)
		}
	}
	return strings.Join(texts, "\n")
}

type GenerationConfig struct {
	Temperature     *float32 `json:"temperature,omitempty"`       // Sampling temperature [0..2]. nil means the provider default.
	TopP            float32  `json:"top_p,omitempty"`             // Nucleus sampling [0..1]
	MaxOutputTokens int      `json:"max_output_tokens,omitempty"` // Upper bound on generated tokens
}

// Temperature returns a pointer to t for GenerationConfig.Temperature.
func Temperature(t float32) *float32 {
	return &t
}

type ResponseFormat struct {
	Type ResponseType `json:"type,omitempty"`
}

type ResponseType string

const (
	ResponseText ResponseType = "text"
	ResponseJSON ResponseType = "json_object"
)

/*
	##### PROVIDER OUTPUT #####
*/

type Usage struct {
	PromptTokens     int `json:"prompt_tokens,omitempty"`
	CompletionTokens int `json:"completion_tokens,omitempty"`
	TotalTokens      int `json:"total_tokens,omitempty"`
	CachedTokens     int `json:"cached_tokens,omitempty"`
}

// ChatResponse represents the response from a chat completion
type ChatResponse struct {
	Id           string `json:"id"`
	Model        string `json:"model"`
	Content      string `json:"content"`
	FinishReason string `json:"finish_reason,omitempty"`
	Usage        *Usage `json:"usage,omitempty"`

	// Refusal is set when the model declined to answer for policy reasons.
	Refusal string `json:"refusal,omitempty"`
}

// Truncated reports whether generation stopped at the token limit, in
// which case Content is likely cut mid-record.
func (r *ChatResponse) Truncated() bool {
	if r == nil {
		return false
	}
	switch strings.ToLower(r.FinishReason) {
	case "length", "max_tokens":
		return true
	}
	return false
}

/*
	##### ENUMS #####
*/

// MessageRole represents the role of a message; compatible with string
type MessageRole string

const (
	RoleSystem    MessageRole = "system"    // System instructions/configuration
	RoleUser      MessageRole = "user"      // End-user message
	RoleAssistant MessageRole = "assistant" // Model response
)
