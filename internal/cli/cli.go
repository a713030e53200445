// Package cli is the single top-level handler: it loads configuration,
// runs one inspection or the API server, and turns the outcome into
// output and an exit code.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"metastat/internal/config"
	"metastat/internal/inspect"
	"metastat/internal/logging"
	"metastat/internal/render"
	"metastat/internal/server"
)

// Exit codes
const (
	ExitOK      = 0
	ExitFailure = 1
)

// Run executes the command with args (excluding the program name)
func Run(name string, args []string, stdout, stderr io.Writer) int {
	fs := config.NewFlagSet(name)
	fs.SetOutput(io.Discard)

	cfg, err := config.LoadConfig(fs, args)
	switch {
	case errors.Is(err, pflag.ErrHelp):
		usage(stderr, name, fs)
		return ExitOK
	case errors.Is(err, config.ErrUsage):
		usage(stderr, name, fs)
		return ExitFailure
	case err != nil:
		fmt.Fprintf(stderr, "ERROR: %v\n", err)
		return ExitFailure
	}

	logger, err := logging.New(stderr, cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(stderr, "ERROR: %v\n", err)
		return ExitFailure
	}

	if cfg.Serving() {
		return serve(cfg, logger, stderr)
	}

	if err := inspectAndPrint(cfg, logger, stdout); err != nil {
		fmt.Fprintf(stderr, "ERROR: %v\n", err)
		return ExitFailure
	}
	return ExitOK
}

func usage(w io.Writer, name string, fs *pflag.FlagSet) {
	fmt.Fprintf(w, "Usage: %s [flags] <file_path>\n\nFlags:\n%s", name, fs.FlagUsages())
}

func inspectAndPrint(cfg *config.Config, logger zerolog.Logger, stdout io.Writer) error {
	logger.Debug().
		Str("path", cfg.Path).
		Bool("follow", cfg.Report.Follow).
		Str("units", cfg.Report.UnitStyle.String()).
		Msg("inspecting")

	rep, err := inspect.Inspect(cfg.Path, inspect.Options{
		Follow:   cfg.Report.Follow,
		Units:    cfg.Report.UnitStyle,
		Extended: cfg.Report.Extended,
	})
	if err != nil {
		logger.Debug().Err(err).Str("kind", inspect.KindOf(err).String()).Msg("inspection failed")
		return err
	}

	if cfg.Report.Output == config.OutputJSON {
		return render.JSON(stdout, render.NewDocument(rep))
	}
	return render.Text(stdout, rep, render.TextOptions{
		ShowName:    cfg.Report.ShowName,
		ShowSymlink: cfg.Report.ShowSymlink,
		Extended:    cfg.Report.Extended,
		Color:       cfg.Report.ColorMode,
	})
}

func serve(cfg *config.Config, logger zerolog.Logger, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	for i, dir := range cfg.Server.Directories {
		logger.Info().Int("index", i+1).Str("source", dir.Source).Str("virtual", dir.Virtual).Msg("directory mapping")
	}

	if err := server.New(cfg, logger).ListenAndServe(ctx); err != nil {
		fmt.Fprintf(stderr, "ERROR: %v\n", err)
		return ExitFailure
	}
	return ExitOK
}
