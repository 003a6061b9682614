package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/leofalp/mirror/providers/observability"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API on PORT (default 8080).

The camera store is enabled by DATABASE_URL and the review archive by
MIRROR_ARCHIVE_ENDPOINT. Without an API key for the selected backend the
LLM routes answer 503.`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}
	cmd.Flags().String("addr", "", "listen address, overrides PORT")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Port = addr
	}

	observer := newObserver(cmd.ErrOrStderr())
	a, err := newApp(ctx, cfg, observer)
	if err != nil {
		return err
	}
	defer a.Close()

	srv := &http.Server{
		Addr:              cfg.Port,
		Handler:           a.handler().Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		observer.Info(gctx, "Listening",
			observability.String("addr", cfg.Port),
			observability.String(observability.AttrLLMProvider, cfg.Backend),
			observability.Bool("store", a.store != nil),
			observability.Bool("archive", a.archive != nil),
		)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		observer.Info(shutdownCtx, "Shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
