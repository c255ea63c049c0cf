package main

import (
	"context"
	"os"

	"github.com/orgball2608/insta-feed-archiver/internal/app"
	"github.com/orgball2608/insta-feed-archiver/pkg/logger"
	"go.uber.org/fx"
)

func main() {
	log := logger.New(logger.Opts{})

	application := fx.New(
		fx.Logger(log),
		app.Module,
	)

	if err := application.Start(context.Background()); err != nil {
		log.Error("Failed to start application", "error", err)
		os.Exit(1)
	}

	// Blocks until an OS signal arrives or a one-shot run finishes.
	<-application.Done()

	if err := application.Stop(context.Background()); err != nil {
		log.Error("Failed to stop application", "error", err)
		os.Exit(1)
	}
}
