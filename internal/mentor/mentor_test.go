package mentor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leofalp/mirror/providers/ai"
)

type fakeSender struct {
	requests []ai.ChatRequest
	response *ai.ChatResponse
	err      error
}

func (f *fakeSender) SendMessage(_ context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
	f.requests = append(f.requests, request)
	if f.err != nil {
		return nil, f.err
	}
	return f.response, nil
}

func TestSplitImage(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantText  string
		wantImage string
	}{
		{"text only", "  How do I shoot stars? ", "How do I shoot stars?", ""},
		{"image after text", "What do you think?\n[Image URL]\nhttps://cdn.example.com/a.jpg", "What do you think?", "https://cdn.example.com/a.jpg"},
		{"image first", "[Image URL]\nhttps://cdn.example.com/a.jpg\nToo dark?", "Too dark?", "https://cdn.example.com/a.jpg"},
		{"image only", "[Image URL]\nhttps://cdn.example.com/a.jpg", "", "https://cdn.example.com/a.jpg"},
		{"marker without url", "[Image URL]\nnot a link", "[Image URL]\nnot a link", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, image := SplitImage(tt.query)
			assert.Equal(t, tt.wantText, text)
			assert.Equal(t, tt.wantImage, image)
		})
	}
}

func TestAdvise_TextQuery(t *testing.T) {
	sender := &fakeSender{response: &ai.ChatResponse{Content: "Use a tripod.\n\nStart at ISO 3200."}}
	m, err := New(sender, WithModel("gpt-4.1-mini"))
	require.NoError(t, err)

	reply, err := m.Advise(context.Background(), Request{
		Query: "How do I shoot the Milky Way?",
		User:  &UserInfo{Nickname: "jin", Genre: "landscape", Camera: "Nikon Z6"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Use a tripod.\n\nStart at ISO 3200.", reply)

	require.Len(t, sender.requests, 1)
	request := sender.requests[0]
	assert.Equal(t, "gpt-4.1-mini", request.Model)
	assert.Contains(t, request.SystemPrompt, "[User Info]\nNickname: jin\nFavorite genre: landscape\nCamera: Nikon Z6\n")
	assert.NotContains(t, request.SystemPrompt, "[Chat History]")
	require.Len(t, request.Messages, 1)
	assert.Equal(t, "How do I shoot the Milky Way?", request.Messages[0].Content)
	assert.Equal(t, float32(0.9), *request.GenerationConfig.Temperature)
	assert.Equal(t, 4096, request.GenerationConfig.MaxOutputTokens)
}

func TestAdvise_ImageOnlyUsesFallbackText(t *testing.T) {
	sender := &fakeSender{response: &ai.ChatResponse{Content: "Strong leading lines."}}
	m, err := New(sender)
	require.NoError(t, err)

	_, err = m.Advise(context.Background(), Request{Query: "[Image URL]\nhttps://cdn.example.com/p.jpg"})
	require.NoError(t, err)

	parts := sender.requests[0].Messages[0].Parts
	require.Len(t, parts, 2)
	assert.Equal(t, ai.ContentTypeText, parts[0].Type)
	assert.Equal(t, imageOnlyQuery, parts[0].Text)
	assert.Equal(t, ai.ContentTypeImage, parts[1].Type)
	assert.Equal(t, "https://cdn.example.com/p.jpg", parts[1].ImageURL)
}

func TestAdvise_KeepsLastTurns(t *testing.T) {
	sender := &fakeSender{response: &ai.ChatResponse{Content: "ok"}}
	m, err := New(sender)
	require.NoError(t, err)

	var history []Turn
	for i := 1; i <= 7; i++ {
		role := "user"
		if i%2 == 0 {
			role = "assistant"
		}
		history = append(history, Turn{Role: role, Content: fmt.Sprintf("turn %d", i)})
	}

	_, err = m.Advise(context.Background(), Request{Query: "and now?", History: history})
	require.NoError(t, err)

	prompt := sender.requests[0].SystemPrompt
	assert.NotContains(t, prompt, "turn 2\n")
	assert.Contains(t, prompt, "[Chat History]\n[User] turn 3\n[Mentor] turn 4\n")
	assert.Contains(t, prompt, "[User] turn 7\n")
}

func TestAdvise_EmptyQuery(t *testing.T) {
	m, err := New(&fakeSender{})
	require.NoError(t, err)

	_, err = m.Advise(context.Background(), Request{Query: "   "})
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestAdvise_SenderError(t *testing.T) {
	backendErr := errors.New("rate limited")
	m, err := New(&fakeSender{err: backendErr})
	require.NoError(t, err)

	_, err = m.Advise(context.Background(), Request{Query: "hi"})
	assert.ErrorIs(t, err, backendErr)
}

func TestAdvise_ConvertsHTMLReply(t *testing.T) {
	sender := &fakeSender{response: &ai.ChatResponse{Content: "Plain opening.\n\n<p>Stop down to <strong>f/8</strong>.</p>"}}
	m, err := New(sender)
	require.NoError(t, err)

	reply, err := m.Advise(context.Background(), Request{Query: "sharpness?"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(reply, "Plain opening.\n\n"))
	assert.Contains(t, reply, "**f/8**")
	assert.NotContains(t, reply, "<strong>")
}

func TestCritique(t *testing.T) {
	sender := &fakeSender{response: &ai.ChatResponse{Content: "```json\n" + `{
  "summary": "Quiet evening street scene",
  "strengths": ["soft light", "clean background"],
  "improvements": ["level the horizon"],
  "color_analysis": {"palette": ["teal", "amber"], "mood": "calm", "white_balance": "slightly warm"},
  "next_steps": ["shoot the same spot at blue hour"],
}` + "\n```"}}
	m, err := New(sender, WithModel("gpt-4.1-mini"), WithCritiqueModel("gpt-4.1"))
	require.NoError(t, err)

	critique, err := m.Critique(context.Background(), "https://cdn.example.com/street.jpg", "shot on a Ricoh GR")
	require.NoError(t, err)
	assert.Equal(t, "Quiet evening street scene", critique.Summary)
	assert.Equal(t, []string{"soft light", "clean background"}, critique.Strengths)
	assert.Equal(t, "slightly warm", critique.ColorAnalysis.WhiteBalance)

	request := sender.requests[0]
	assert.Equal(t, "gpt-4.1", request.Model)
	require.NotNil(t, request.ResponseFormat)
	assert.Equal(t, ai.ResponseJSON, request.ResponseFormat.Type)
	assert.Contains(t, request.Messages[0].Text(), "shot on a Ricoh GR")
}

func TestCritique_InvalidURL(t *testing.T) {
	sender := &fakeSender{}
	m, err := New(sender)
	require.NoError(t, err)

	for _, raw := range []string{"", "ftp://example.com/a.jpg", "/relative.jpg"} {
		_, err := m.Critique(context.Background(), raw, "")
		assert.ErrorIs(t, err, ErrInvalidImageURL, raw)
	}
	assert.Empty(t, sender.requests)
}

func TestTidy_PlainTextUnchanged(t *testing.T) {
	reply := "  Use a 35mm lens.\n\nIt suits street work.  "
	assert.Equal(t, "Use a 35mm lens.\n\nIt suits street work.", Tidy(reply))
}

func TestNew_NilSender(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
}
