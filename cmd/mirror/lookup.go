package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/leofalp/mirror/internal/camera"
)

func newLookupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lookup",
		Short: "Look up one camera through cache, store and model",
		Long: `Resolve a camera by model name and manufacturer, or by alias alone,
and print the record as JSON. A pipeline failure is printed instead of the
record.

Exits 0 on success, 2 when the record needs review and 1 on failure.`,
		Args: cobra.NoArgs,
		RunE: runLookup,
	}
	cmd.Flags().String("model", "", "camera model name")
	cmd.Flags().String("manufacturer", "", "camera manufacturer")
	cmd.Flags().String("alias", "", "alternative name or nickname")
	return cmd
}

func runLookup(cmd *cobra.Command, _ []string) error {
	q := camera.Query{}
	q.ModelName, _ = cmd.Flags().GetString("model")
	q.Manufacturer, _ = cmd.Flags().GetString("manufacturer")
	q.Alias, _ = cmd.Flags().GetString("alias")
	if err := q.Normalize().Validate(); err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.RequireLLM(); err != nil {
		return err
	}

	ctx := cmd.Context()
	a, err := newApp(ctx, cfg, newObserver(cmd.ErrOrStderr()))
	if err != nil {
		return err
	}
	defer a.Close()
	if a.lookup == nil {
		return errors.New("camera lookup is not configured")
	}

	result, err := a.lookup.Lookup(ctx, q)
	if err != nil {
		return err
	}
	if failure := result.Failure(); failure != nil {
		if err := printJSON(cmd.OutOrStdout(), failure); err != nil {
			return err
		}
		return &exitError{code: exitFailure}
	}

	if err := printJSON(cmd.OutOrStdout(), result.Record); err != nil {
		return err
	}
	if result.Record.NeedsReview {
		return &exitError{code: exitPartial}
	}
	return nil
}
