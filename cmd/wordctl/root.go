package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"word-orchestrator/internal/di"
	"word-orchestrator/internal/infra/config"
	"word-orchestrator/internal/infra/logger"
)

var (
	verbose bool

	// loadApp wires components from the environment. Tests replace it.
	loadApp = func(ctx context.Context, log *slog.Logger) (*di.ApplicationComponents, error) {
		return di.NewApplicationComponents(ctx, config.Load(), log)
	}
)

var rootCmd = &cobra.Command{
	Use:   "wordctl",
	Short: "Related-word discovery from the command line",
	Long: `wordctl runs the word discovery pipeline without the HTTP server.

Example usage:
  wordctl find 행복 --count 5        # Run the full pipeline
  wordctl similar 행복 --limit 10    # Nearest indexed words only
  wordctl index --file words.txt     # Embed and store a vocabulary`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. SIGINT cancels the running pipeline.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log pipeline progress to stderr")
}

// commandLogger logs to stderr when verbose, otherwise discards.
func commandLogger(cmd *cobra.Command) *slog.Logger {
	if !verbose {
		return slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return logger.New(logger.Options{Level: "debug", Output: cmd.ErrOrStderr()})
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
