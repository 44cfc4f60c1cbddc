// Package main implements the main entry point for the ROM asset extractor
package main

import (
	"context"
	"errors"
	"os"

	"github.com/retroenv/retroextract/internal/app"
	"github.com/retroenv/retroextract/internal/cli"
	"github.com/retroenv/retroextract/internal/config"
	"github.com/retroenv/retroextract/internal/pipeline"
	retroapp "github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/log"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

func main() {
	ctx := retroapp.Context()

	opts, err := cli.ParseFlags()
	if err != nil {
		logger := config.CreateLogger(opts.Debug, opts.Quiet)
		var usageErr *cli.UsageError
		if errors.As(err, &usageErr) {
			app.PrintBanner(logger, opts, version, commit, date)
			usageErr.ShowUsage()
		} else {
			logger.Fatal(err.Error())
		}
		os.Exit(1)
	}

	logger := config.CreateLogger(opts.Debug, opts.Quiet)
	app.PrintBanner(logger, opts, version, commit, date)

	if _, err := pipeline.New(logger).Execute(ctx, opts); err != nil {
		// Handle context cancellation (Ctrl+C) gracefully
		if errors.Is(err, context.Canceled) {
			logger.Info("Operation cancelled")
			return
		}
		logger.Error("Extracting failed", log.Err(err))
		os.Exit(1)
	}
}
