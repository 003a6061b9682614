// Package openai implements [ai.Provider] against the OpenAI
// /chat/completions endpoint. Any OpenAI-compatible gateway (OpenRouter,
// Azure OpenAI, a local vLLM server) works by overriding the base URL.
//
// Configuration is read from OPENAI_API_KEY and OPENAI_API_BASE_URL and
// can be overridden with [Provider.WithAPIKey], [Provider.WithBaseURL] and
// [Provider.WithHttpClient].
package openai
