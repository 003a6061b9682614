// Command mirror serves the camera lookup and photography mentor API and
// exposes the extraction pipeline on the command line.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// exitError carries a process exit code out of a command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "mirror",
		Short: "Camera spec lookups and photography advice backed by an LLM",
		Long: `mirror turns free-form LLM output into validated camera records.

Available subcommands:
  serve   - Run the HTTP API
  extract - Run the extraction pipeline on a saved model response
  lookup  - Look up one camera through cache, store and model`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringSlice("env-file", nil, "dotenv files to load (default .env)")

	root.AddCommand(newServeCmd(), newExtractCmd(), newLookupCmd())
	return root
}

func main() {
	err := newRootCmd().Execute()
	if err == nil {
		return
	}

	code := 1
	var exit *exitError
	if errors.As(err, &exit) {
		code = exit.code
	}
	if exit == nil || exit.err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	os.Exit(code)
}
