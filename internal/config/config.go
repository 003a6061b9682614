// Package config loads the application settings from a .env file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/leofalp/mirror/internal/utils"
)

const (
	BackendOpenAI = "openai"
	BackendGemini = "gemini"
)

const (
	defaultPort          = ":8080"
	defaultOpenAIModel   = "gpt-4.1-mini"
	defaultGeminiModel   = "gemini-2.5-flash"
	defaultCacheSize     = 256
	defaultCacheTTL      = 10 * time.Minute
	defaultLLMTimeout    = 90 * time.Second
	defaultArchiveRegion = "us-east-1"
	defaultArchiveBucket = "mirror-review"
)

type Config struct {
	// Port is the listen address, always starting with ":".
	Port    string
	Backend string

	OpenAIAPIKey  string
	OpenAIBaseURL string
	GeminiAPIKey  string

	CameraModel string
	MentorModel string

	// DatabaseURL is empty when no store is configured.
	DatabaseURL string
	Archive     ArchiveConfig

	CacheSize  int
	CacheTTL   time.Duration
	LLMTimeout time.Duration
}

type ArchiveConfig struct {
	// Enabled is true when an endpoint is configured.
	Enabled   bool
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Load reads the given .env files (".env" when none are given), then
// builds the configuration from the environment. Variables already set
// in the environment win over the files. Missing files are ignored.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: load %s: %w", file, err)
		}
	}
	return FromEnv()
}

// FromEnv builds the configuration from environment variables only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:          normalizePort(os.Getenv("PORT")),
		Backend:       strings.ToLower(utils.FirstNonEmpty(env("MIRROR_LLM_BACKEND"), BackendOpenAI)),
		OpenAIAPIKey:  env("OPENAI_API_KEY"),
		OpenAIBaseURL: env("OPENAI_API_BASE_URL"),
		GeminiAPIKey:  utils.FirstNonEmpty(env("GEMINI_API_KEY"), env("GOOGLE_API_KEY")),
		DatabaseURL:   env("DATABASE_URL"),
	}

	switch cfg.Backend {
	case BackendOpenAI, BackendGemini:
	default:
		return nil, fmt.Errorf("config: MIRROR_LLM_BACKEND must be %q or %q, got %q", BackendOpenAI, BackendGemini, cfg.Backend)
	}

	defaultModel := defaultOpenAIModel
	if cfg.Backend == BackendGemini {
		defaultModel = defaultGeminiModel
	}
	cfg.CameraModel = utils.FirstNonEmpty(env("MIRROR_CAMERA_MODEL"), defaultModel)
	cfg.MentorModel = utils.FirstNonEmpty(env("MIRROR_MENTOR_MODEL"), defaultModel)

	var err error
	if cfg.CacheSize, err = intEnv("MIRROR_CACHE_SIZE", defaultCacheSize); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = durationEnv("MIRROR_CACHE_TTL", defaultCacheTTL); err != nil {
		return nil, err
	}
	if cfg.LLMTimeout, err = durationEnv("MIRROR_LLM_TIMEOUT", defaultLLMTimeout); err != nil {
		return nil, err
	}
	if cfg.Archive, err = archiveFromEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// RequireLLM reports an error when the selected backend has no API key.
func (c *Config) RequireLLM() error {
	switch c.Backend {
	case BackendGemini:
		if c.GeminiAPIKey == "" {
			return errors.New("config: GEMINI_API_KEY is required for the gemini backend")
		}
	default:
		if c.OpenAIAPIKey == "" {
			return errors.New("config: OPENAI_API_KEY is required for the openai backend")
		}
	}
	return nil
}

func archiveFromEnv() (ArchiveConfig, error) {
	archive := ArchiveConfig{
		Endpoint:  env("MIRROR_ARCHIVE_ENDPOINT"),
		Region:    utils.FirstNonEmpty(env("MIRROR_ARCHIVE_REGION"), defaultArchiveRegion),
		AccessKey: utils.FirstNonEmpty(env("MIRROR_ARCHIVE_ACCESS_KEY"), env("MINIO_ROOT_USER")),
		SecretKey: utils.FirstNonEmpty(env("MIRROR_ARCHIVE_SECRET_KEY"), env("MINIO_ROOT_PASSWORD")),
		Bucket:    utils.FirstNonEmpty(env("MIRROR_ARCHIVE_BUCKET"), defaultArchiveBucket),
		UseSSL:    true,
	}
	archive.Enabled = archive.Endpoint != ""
	if raw := env("MIRROR_ARCHIVE_USE_SSL"); raw != "" {
		useSSL, err := strconv.ParseBool(raw)
		if err != nil {
			return ArchiveConfig{}, fmt.Errorf("config: MIRROR_ARCHIVE_USE_SSL: %w", err)
		}
		archive.UseSSL = useSSL
	}
	return archive, nil
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func normalizePort(port string) string {
	port = strings.TrimSpace(port)
	switch {
	case port == "":
		return defaultPort
	case strings.Contains(port, ":"):
		return port
	default:
		return ":" + port
	}
}

func intEnv(key string, fallback int) (int, error) {
	raw := env(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return v, nil
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := env(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("config: %s must not be negative", key)
	}
	return d, nil
}
