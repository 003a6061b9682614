package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leofalp/mirror/internal/config"
	"github.com/leofalp/mirror/providers/ai/openai"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	if exit, ok := err.(*exitError); ok {
		return exit.code
	}
	return -1
}

func TestExtract_Stdin(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		status string
		code   int
	}{
		{
			name:   "fenced record",
			input:  "```json\n{\"model_name\": \"X100V\", \"manufacturer\": \"Fujifilm\",}\n```",
			status: "success",
			code:   0,
		},
		{
			name:   "truncated record",
			input:  `{"model_name": "X100V", "manufacturer": "Fujifilm", "notable_reviews": [{"url": "https:`,
			status: "partial_success",
			code:   exitPartial,
		},
		{
			name:   "prose",
			input:  "Sorry, I don't know that camera.",
			status: "failure",
			code:   exitFailure,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, tt.input, "extract", "-")
			assert.Equal(t, tt.code, exitCode(err))

			var decoded map[string]any
			require.NoError(t, json.Unmarshal([]byte(out), &decoded), out)
			assert.Equal(t, tt.status, decoded["status"])
		})
	}
}

func TestExtract_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "response.txt")
	require.NoError(t, os.WriteFile(path, []byte(`{"model_name": "Q3", "manufacturer": "Leica", "url": "https://leica-camera.com/q3?a=1&b=2"}`), 0o600))

	out, err := execute(t, "", "extract", path)
	require.NoError(t, err)
	assert.Contains(t, out, `"model_name": "Q3"`)

	_, err = execute(t, "", "extract", filepath.Join(t.TempDir(), "missing.txt"))
	assert.Equal(t, -1, exitCode(err))
}

func TestLookup_InvalidQuery(t *testing.T) {
	_, err := execute(t, "", "lookup", "--model", "X100V")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "manufacturer")
}

func TestNewProvider_OpenAI(t *testing.T) {
	cfg := &config.Config{Backend: config.BackendOpenAI, OpenAIAPIKey: "sk-test"}
	provider, err := newProvider(t.Context(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &openai.Provider{}, provider)
	assert.Equal(t, "openai", provider.Name())
}
