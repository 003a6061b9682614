package camera

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/leofalp/mirror/providers/ai"
)

const (
	// Temperature keeps answers close to the most likely facts.
	Temperature float32 = 0.2
	// MaxOutputTokens fits a fully populated record.
	MaxOutputTokens = 8000
)

const systemPromptTemplate = `Return only the JSON object described below. Do not wrap it in a code block and do not add explanations, notes or markdown.

# Camera information extraction

## Role
You are a camera database specialist with deep knowledge of digital cameras: their specifications, market positioning and how photographers experience them. Describe the requested camera as one JSON record.

## Input
- Model name: %s
- Manufacturer: %s
- Alias: %s

## Record
Fill in the full record. Keep every key, use null for unknown scalars and [] for unknown lists.
For example {"model_name":"Canon EOS R6","manufacturer":"Canon","release_year":2020} is the beginning of a valid answer.

%s

## Unknown cameras
If the camera cannot be identified or too little is known about it, return only this object instead:
%s

## Rules
1. Output pure JSON only.
2. Prefer null over uncertain data.
3. Use the same format for values of the same kind.
4. Populate every field you can and mark estimates as such.
5. Reflect the most recent information you have.
6. Follow JSON syntax exactly: double-quoted keys, no comments, no trailing commas.
`

var skeleton = sync.OnceValue(func() string {
	data, err := Schema.Skeleton().MarshalJSON()
	if err != nil {
		panic(fmt.Sprintf("camera: encode skeleton: %v", err))
	}
	var out bytes.Buffer
	if err := json.Indent(&out, data, "", "  "); err != nil {
		panic(fmt.Sprintf("camera: indent skeleton: %v", err))
	}
	return out.String()
})

type declaredErrorShape struct {
	Error struct {
		Message           string              `json:"message"`
		InputModel        string              `json:"input_model"`
		InputManufacturer string              `json:"input_manufacturer"`
		Suggestions       []string            `json:"suggestions"`
		SimilarModels     []map[string]string `json:"similar_models"`
	} `json:"error"`
}

func errorExample(q Query) string {
	var shape declaredErrorShape
	shape.Error.Message = "Camera model not found or insufficient data available."
	shape.Error.InputModel = q.ModelName
	shape.Error.InputManufacturer = q.Manufacturer
	shape.Error.Suggestions = []string{
		"Check the spelling of the model name",
		"Use both the manufacturer and the official model name",
		"Make sure the model exists",
		"Search for similar camera models",
	}
	shape.Error.SimilarModels = []map[string]string{{"manufacturer": "", "model": "", "similarity": ""}}
	data, err := marshal(shape)
	if err != nil {
		return `{"error":{"message":"Camera model not found or insufficient data available."}}`
	}
	return string(data)
}

// SystemPrompt returns the instructions asking the model for the record
// of q, including the record skeleton and the declared-error shape.
func SystemPrompt(q Query) string {
	q = q.Normalize()
	alias := q.Alias
	if alias == "" {
		alias = "N/A"
	}
	return fmt.Sprintf(systemPromptTemplate,
		orUnknown(q.ModelName), orUnknown(q.Manufacturer), alias,
		skeleton(), errorExample(q))
}

// UserMessage is the single user turn of a lookup.
func UserMessage(q Query) string {
	return q.String()
}

// Request builds the chat request for a lookup of q.
func Request(q Query) ai.ChatRequest {
	return ai.ChatRequest{
		SystemPrompt: SystemPrompt(q),
		Messages:     []ai.Message{ai.NewTextMessage(ai.RoleUser, UserMessage(q))},
		GenerationConfig: &ai.GenerationConfig{
			Temperature:     ai.Temperature(Temperature),
			TopP:            1,
			MaxOutputTokens: MaxOutputTokens,
		},
	}
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "unknown"
	}
	return s
}
