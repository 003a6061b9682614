package gemini

import (
	"errors"
	"mime"
	"net/url"
	"path"
	"strings"

	"google.golang.org/genai"

	"github.com/leofalp/mirror/providers/ai"
)

func toContents(messages []ai.Message) ([]*genai.Content, error) {
	contents := make([]*genai.Content, 0, len(messages))
	for _, msg := range messages {
		var role genai.Role = genai.RoleUser
		if msg.Role == ai.RoleAssistant {
			role = genai.RoleModel
		}

		var parts []*genai.Part
		if len(msg.Parts) == 0 {
			if msg.Content != "" {
				parts = append(parts, genai.NewPartFromText(msg.Content))
			}
		}
		for _, p := range msg.Parts {
			switch p.Type {
			case ai.ContentTypeText:
				if p.Text != "" {
					parts = append(parts, genai.NewPartFromText(p.Text))
				}
			case ai.ContentTypeImage:
				if p.ImageURL == "" {
					continue
				}
				mimeType := p.MimeType
				if mimeType == "" {
					mimeType = imageMimeType(p.ImageURL)
				}
				parts = append(parts, genai.NewPartFromURI(p.ImageURL, mimeType))
			}
		}
		if len(parts) == 0 {
			continue
		}
		contents = append(contents, genai.NewContentFromParts(parts, role))
	}
	if len(contents) == 0 {
		return nil, errors.New("request has no content")
	}
	return contents, nil
}

func toConfig(request ai.ChatRequest) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{}
	if request.SystemPrompt != "" {
		config.SystemInstruction = genai.NewContentFromText(request.SystemPrompt, genai.RoleUser)
	}
	if cfg := request.GenerationConfig; cfg != nil {
		config.Temperature = cfg.Temperature
		if cfg.TopP > 0 {
			topP := cfg.TopP
			config.TopP = &topP
		}
		if cfg.MaxOutputTokens > 0 {
			config.MaxOutputTokens = int32(cfg.MaxOutputTokens)
		}
	}
	if request.ResponseFormat != nil && request.ResponseFormat.Type == ai.ResponseJSON {
		config.ResponseMIMEType = "application/json"
	}
	return config
}

// imageMimeType guesses the type from the URL path extension, defaulting
// to JPEG.
func imageMimeType(raw string) string {
	p := raw
	if u, err := url.Parse(raw); err == nil {
		p = u.Path
	}
	if t := mime.TypeByExtension(strings.ToLower(path.Ext(p))); strings.HasPrefix(t, "image/") {
		return t
	}
	return "image/jpeg"
}
