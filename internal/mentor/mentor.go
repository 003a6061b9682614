package mentor

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/leofalp/mirror/core/parse"
	"github.com/leofalp/mirror/providers/ai"
)

const (
	// ImageMarker precedes an image URL on its own line in a query.
	ImageMarker = "[Image URL]"
	// HistoryTurns is how many past turns are replayed to the model.
	HistoryTurns = 5

	imageOnlyQuery = "Please analyze this image."
)

var (
	ErrEmptyQuery      = errors.New("mentor: query is empty")
	ErrInvalidImageURL = errors.New("mentor: image URL must be an absolute http(s) URL")
)

var imageMarkerPattern = regexp.MustCompile(`\[Image URL\][ \t]*\r?\n?[ \t]*(https?://\S+)[ \t]*\r?\n?`)

// Sender sends one chat request. *client.Client implements it.
type Sender interface {
	SendMessage(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error)
}

// UserInfo is the optional profile of the photographer asking.
type UserInfo struct {
	Nickname      string `json:"nickname,omitempty"`
	FavoriteGenre string `json:"favorite_genre,omitempty"`
	// Genre is accepted as an alternative spelling of FavoriteGenre.
	Genre  string `json:"genre,omitempty"`
	Camera string `json:"camera,omitempty"`
	About  string `json:"about,omitempty"`
}

// Turn is one past message of the conversation.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Request struct {
	Query   string    `json:"query"`
	User    *UserInfo `json:"user,omitempty"`
	History []Turn    `json:"history,omitempty"`
}

// Critique is the structured review of one photo.
type Critique struct {
	Summary       string        `json:"summary"`
	Strengths     []string      `json:"strengths"`
	Improvements  []string      `json:"improvements"`
	ColorAnalysis ColorAnalysis `json:"color_analysis"`
	NextSteps     []string      `json:"next_steps"`
}

type ColorAnalysis struct {
	Palette      []string `json:"palette"`
	Mood         string   `json:"mood"`
	WhiteBalance string   `json:"white_balance"`
}

type Mentor struct {
	sender        Sender
	model         string
	critiqueModel string
}

type Option func(*Mentor)

// WithModel sets the model used for advice and, unless overridden by
// WithCritiqueModel, for critiques.
func WithModel(model string) Option {
	return func(m *Mentor) {
		m.model = model
	}
}

func WithCritiqueModel(model string) Option {
	return func(m *Mentor) {
		m.critiqueModel = model
	}
}

func New(sender Sender, opts ...Option) (*Mentor, error) {
	if sender == nil {
		return nil, errors.New("mentor: sender cannot be nil")
	}
	m := &Mentor{sender: sender}
	for _, opt := range opts {
		opt(m)
	}
	if m.critiqueModel == "" {
		m.critiqueModel = m.model
	}
	return m, nil
}

// Advise answers a photography question. An image URL placed after
// ImageMarker in the query is sent as an image part.
func (m *Mentor) Advise(ctx context.Context, req Request) (string, error) {
	text, imageURL := SplitImage(req.Query)
	if text == "" && imageURL == "" {
		return "", ErrEmptyQuery
	}

	var message ai.Message
	if imageURL != "" {
		if text == "" {
			text = imageOnlyQuery
		}
		message = ai.NewImageMessage(text, imageURL)
	} else {
		message = ai.NewTextMessage(ai.RoleUser, text)
	}

	response, err := m.sender.SendMessage(ctx, ai.ChatRequest{
		Model:        m.model,
		SystemPrompt: persona + userBlock(req.User) + historyBlock(req.History),
		Messages:     []ai.Message{message},
		GenerationConfig: &ai.GenerationConfig{
			Temperature:     ai.Temperature(0.9),
			TopP:            0.95,
			MaxOutputTokens: 4096,
		},
	})
	if err != nil {
		return "", fmt.Errorf("mentor: advise: %w", err)
	}
	if response.Content == "" && response.Refusal != "" {
		return response.Refusal, nil
	}
	return Tidy(response.Content), nil
}

// Critique reviews the photo at imageURL. Notes from the photographer are
// passed along as context.
func (m *Mentor) Critique(ctx context.Context, imageURL, notes string) (*Critique, error) {
	if !validImageURL(imageURL) {
		return nil, ErrInvalidImageURL
	}
	text := "Review this photo."
	if notes = strings.TrimSpace(notes); notes != "" {
		text += "\nPhotographer's notes: " + notes
	}

	response, err := m.sender.SendMessage(ctx, ai.ChatRequest{
		Model:          m.critiqueModel,
		SystemPrompt:   critiquePrompt,
		Messages:       []ai.Message{ai.NewImageMessage(text, imageURL)},
		ResponseFormat: &ai.ResponseFormat{Type: ai.ResponseJSON},
		GenerationConfig: &ai.GenerationConfig{
			Temperature:     ai.Temperature(0.4),
			MaxOutputTokens: 2048,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("mentor: critique: %w", err)
	}

	critique, err := parse.ParseStringAs[Critique](response.Content)
	if err != nil {
		return nil, fmt.Errorf("mentor: decode critique: %w", err)
	}
	return &critique, nil
}

// SplitImage separates the image URL following ImageMarker from the rest
// of the query. Both results are trimmed.
func SplitImage(query string) (text, imageURL string) {
	match := imageMarkerPattern.FindStringSubmatchIndex(query)
	if match == nil {
		return strings.TrimSpace(query), ""
	}
	imageURL = query[match[2]:match[3]]
	text = query[:match[0]] + query[match[1]:]
	return strings.TrimSpace(text), imageURL
}

func userBlock(user *UserInfo) string {
	if user == nil {
		return ""
	}
	var b strings.Builder
	line := func(label, value string) {
		if value = strings.TrimSpace(value); value != "" {
			fmt.Fprintf(&b, "%s: %s\n", label, value)
		}
	}
	line("Nickname", user.Nickname)
	if user.FavoriteGenre != "" {
		line("Favorite genre", user.FavoriteGenre)
	} else {
		line("Favorite genre", user.Genre)
	}
	line("Camera", user.Camera)
	line("About", user.About)
	if b.Len() == 0 {
		return ""
	}
	return "\n\n[User Info]\n" + b.String()
}

func historyBlock(history []Turn) string {
	if len(history) > HistoryTurns {
		history = history[len(history)-HistoryTurns:]
	}
	var b strings.Builder
	for _, turn := range history {
		if turn.Role == "" || strings.TrimSpace(turn.Content) == "" {
			continue
		}
		speaker := "Mentor"
		if turn.Role == string(ai.RoleUser) {
			speaker = "User"
		}
		fmt.Fprintf(&b, "[%s] %s\n", speaker, strings.TrimSpace(turn.Content))
	}
	if b.Len() == 0 {
		return ""
	}
	return "\n\n[Chat History]\n" + b.String()
}

func validImageURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
