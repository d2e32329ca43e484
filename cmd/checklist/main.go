package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark-chris/checklist/internal/config"
	"github.com/mark-chris/checklist/internal/i18n"
	"github.com/mark-chris/checklist/internal/telemetry"
)

var version = "0.1.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// a broken config is reported by the command that needs it
	lang := config.DefaultLanguage
	var tracing telemetry.Options
	if cfg, err := config.Load(); err == nil {
		lang = cfg.UI.Language
		tracing = telemetry.Options{
			Endpoint:       cfg.Telemetry.Endpoint,
			Disabled:       cfg.Telemetry.Disabled,
			ServiceVersion: version,
		}
	}

	shutdown, err := telemetry.Setup(ctx, tracing)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tracing disabled: %v\n", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	root := newRootCmd()
	root.SetOut(os.Stdout)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, describe(i18n.Printer(lang), err))
		stop()
		os.Exit(1)
	}
}
