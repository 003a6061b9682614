package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/leofalp/mirror/core/parse"
	"github.com/leofalp/mirror/internal/camera"
)

// Exit codes shared by extract and lookup.
const (
	exitPartial = 2
	exitFailure = 1
)

func newExtractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract [file|-]",
		Short: "Run the extraction pipeline on a saved model response",
		Long: `Read a raw model response from a file, or stdin when the argument is
"-" or missing, and print the outcome as JSON.

Exits 0 on success, 2 on a partial success and 1 on failure.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runExtract,
	}
	cmd.Flags().BoolP("verbose", "v", false, "log pipeline spans to stderr")
	return cmd
}

func runExtract(cmd *cobra.Command, args []string) error {
	raw, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	var opts []parse.Option
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		opts = append(opts, parse.WithObserver(newObserver(cmd.ErrOrStderr())))
	}
	outcome := parse.ExtractContext(cmd.Context(), raw, camera.Schema, opts...)
	if err := printJSON(cmd.OutOrStdout(), outcome); err != nil {
		return err
	}
	return outcomeExit(outcome)
}

func readInput(cmd *cobra.Command, args []string) (string, error) {
	var r io.Reader = cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return "", err
		}
		defer f.Close()
		r = f
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return string(data), nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outcomeExit maps an outcome to the command exit status. The outcome has
// already been printed, so the error carries no message.
func outcomeExit(outcome parse.Outcome) error {
	switch outcome.Status() {
	case parse.StatusPartialSuccess:
		return &exitError{code: exitPartial}
	case parse.StatusFailure:
		return &exitError{code: exitFailure}
	}
	return nil
}
