package main

import (
	"context"
	"fmt"
	"io"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/leofalp/mirror/core/client"
	"github.com/leofalp/mirror/core/client/middleware"
	"github.com/leofalp/mirror/internal/config"
	"github.com/leofalp/mirror/internal/httpapi"
	"github.com/leofalp/mirror/internal/lookup"
	"github.com/leofalp/mirror/internal/mentor"
	"github.com/leofalp/mirror/providers/ai"
	"github.com/leofalp/mirror/providers/ai/gemini"
	"github.com/leofalp/mirror/providers/ai/openai"
	"github.com/leofalp/mirror/providers/archive/s3archive"
	"github.com/leofalp/mirror/providers/observability"
	"github.com/leofalp/mirror/providers/observability/slogobs"
	"github.com/leofalp/mirror/providers/store/pgstore"
)

// app holds the services built from one Config. Fields are nil when the
// matching settings are missing.
type app struct {
	cfg      *config.Config
	observer *slogobs.Observer

	pool    *pgxpool.Pool
	store   *pgstore.Store
	archive *s3archive.Archive
	lookup  *lookup.Service
	mentor  *mentor.Mentor
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	files, err := cmd.Flags().GetStringSlice("env-file")
	if err != nil {
		return nil, err
	}
	return config.Load(files...)
}

// newObserver logs to w so command output on stdout stays parseable.
func newObserver(w io.Writer) *slogobs.Observer {
	return slogobs.New(slogobs.WithOutput(w))
}

func newApp(ctx context.Context, cfg *config.Config, observer *slogobs.Observer) (*app, error) {
	a := &app{cfg: cfg, observer: observer}

	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("ping database: %w", err)
		}
		a.pool = pool
		a.store = pgstore.New(pool)
		if err := a.store.EnsureSchema(ctx); err != nil {
			a.Close()
			return nil, err
		}
	}

	if cfg.Archive.Enabled {
		archive, err := s3archive.New(s3archive.Config{
			Endpoint:  cfg.Archive.Endpoint,
			Region:    cfg.Archive.Region,
			AccessKey: cfg.Archive.AccessKey,
			SecretKey: cfg.Archive.SecretKey,
			Bucket:    cfg.Archive.Bucket,
			UseSSL:    cfg.Archive.UseSSL,
		})
		if err != nil {
			a.Close()
			return nil, err
		}
		a.archive = archive
	}

	if err := cfg.RequireLLM(); err != nil {
		observer.Warn(ctx, "LLM routes disabled", observability.Error(err))
		return a, nil
	}

	provider, err := newProvider(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	llm, err := newClient(provider, cfg, observer)
	if err != nil {
		a.Close()
		return nil, err
	}

	opts := []lookup.Option{
		lookup.WithModel(cfg.CameraModel),
		lookup.WithCache(cfg.CacheSize, cfg.CacheTTL),
		lookup.WithObserver(observer),
	}
	if a.store != nil {
		opts = append(opts, lookup.WithStore(a.store))
	}
	if a.archive != nil {
		opts = append(opts, lookup.WithArchive(a.archive))
	}
	if a.lookup, err = lookup.New(llm, opts...); err != nil {
		a.Close()
		return nil, err
	}
	if a.mentor, err = mentor.New(llm, mentor.WithModel(cfg.MentorModel), mentor.WithCritiqueModel(cfg.MentorModel)); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func newProvider(ctx context.Context, cfg *config.Config) (ai.Provider, error) {
	switch cfg.Backend {
	case config.BackendGemini:
		return gemini.New(ctx, gemini.Config{APIKey: cfg.GeminiAPIKey})
	default:
		return openai.New().WithAPIKey(cfg.OpenAIAPIKey).WithBaseURL(cfg.OpenAIBaseURL), nil
	}
}

// newClient retries transient failures, with the timeout applied to each
// attempt.
func newClient(provider ai.Provider, cfg *config.Config, observer *slogobs.Observer) (*client.Client, error) {
	return client.New(provider,
		client.WithDefaultModel(cfg.CameraModel),
		client.WithObserver(observer),
		client.WithMiddleware(
			middleware.NewRetryMiddleware(middleware.RetryConfig{}),
			middleware.NewTimeoutMiddleware(cfg.LLMTimeout),
			middleware.NewLoggingMiddleware(observer.Logger(), middleware.LogLevelStandard),
		),
	)
}

func (a *app) handler() *httpapi.Server {
	opts := []httpapi.Option{httpapi.WithObserver(a.observer)}
	if a.lookup != nil {
		opts = append(opts, httpapi.WithLookup(a.lookup))
	}
	if a.store != nil {
		opts = append(opts, httpapi.WithStore(a.store))
	}
	if a.mentor != nil {
		opts = append(opts, httpapi.WithMentor(a.mentor))
	}
	return httpapi.New(opts...)
}

func (a *app) Close() {
	if a.pool != nil {
		a.pool.Close()
	}
}
