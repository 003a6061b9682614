// Package gemini implements [ai.Provider] for Google's Gemini API on top
// of the official google.golang.org/genai SDK.
//
// The key is read from GEMINI_API_KEY (or GOOGLE_API_KEY) and the base URL
// from GEMINI_API_BASE_URL when set.
package gemini
