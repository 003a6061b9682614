// Package ai defines the provider-agnostic chat types shared by the LLM
// backends (OpenAI-compatible and Gemini). Each provider maps [ChatRequest]
// to its own wire format and returns a [ChatResponse], so callers such as
// the camera lookup and the photography mentor never depend on a specific
// backend.
package ai
