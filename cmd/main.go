package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/takak2166/sciwheel-export/internal/config"
	"github.com/takak2166/sciwheel-export/internal/export"
	"github.com/takak2166/sciwheel-export/internal/logger"
	"github.com/takak2166/sciwheel-export/internal/sciwheel"
	"github.com/takak2166/sciwheel-export/internal/selector"
)

func newRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:           "sciwheel-export",
		Short:         "Export the references and notes of a Sciwheel project to JSON",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := run(cmd.Context(), in, out)
			return err
		},
	}
}

func run(ctx context.Context, in io.Reader, out io.Writer) (*export.Result, error) {
	// Load .env and SCIWHEEL_ settings
	cfg, err := config.Load()
	if err != nil {
		return &export.Result{State: export.NoToken}, err
	}

	if err := logger.Init(cfg.LogLevel); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	if cfg.Debug {
		logger.EnableDebug()
	}

	client := sciwheel.New(cfg.BaseURL, cfg.Token, sciwheel.WithDebug(cfg.Debug))
	exporter := export.New(client, selector.Console(in, out), cfg.OutputDir)

	return exporter.Run(ctx)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := newRootCmd(os.Stdin, os.Stdout).ExecuteContext(ctx)
	if err == nil {
		return
	}

	reportError(os.Stderr, err)
	stop()
	os.Exit(1)
}

const noSelectionMessage = "Exiting: No project, or no valid-project selected"

// reportError explains why the run stopped before the process exits
func reportError(w io.Writer, err error) {
	switch {
	case errors.Is(err, export.ErrNoSelection):
		fmt.Fprintln(w, noSelectionMessage)
	case errors.Is(err, config.ErrMissingToken):
		logger.Error("Missing configuration", err)
	default:
		logger.Error("Export failed", err)
	}
}
