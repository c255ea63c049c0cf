package app

import (
	"context"
	"database/sql"

	_ "github.com/lib/pq"
	"github.com/orgball2608/insta-feed-archiver/internal/archiver"
	"github.com/orgball2608/insta-feed-archiver/internal/archiver/archiverimpl"
	"github.com/orgball2608/insta-feed-archiver/internal/instagram"
	"github.com/orgball2608/insta-feed-archiver/internal/instagram/instagramimpl"
	_ "github.com/orgball2608/insta-feed-archiver/internal/migrations"
	"github.com/orgball2608/insta-feed-archiver/internal/repositories/seenposts"
	"github.com/orgball2608/insta-feed-archiver/internal/telegram"
	"github.com/orgball2608/insta-feed-archiver/internal/telegram/telegramimpl"
	"github.com/orgball2608/insta-feed-archiver/pkg/config"
	"github.com/orgball2608/insta-feed-archiver/pkg/logger"
	"github.com/pressly/goose/v3"
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(
		config.New,
		logger.FxOption,
	),
	fx.Provide(
		fx.Annotate(
			instagramimpl.New,
			fx.As(new(instagram.Client)),
		),
		telegramimpl.New,
		fx.Annotate(
			archiverimpl.New,
			fx.As(new(archiver.Client)),
		),
	),
	seenposts.Module,
	fx.Invoke(migrate),
	fx.Invoke(run),
)

// migrate brings the optional seen-posts schema up to date. A run without
// Postgres skips it entirely.
func migrate(cfg *config.Config, log logger.Logger) error {
	if !cfg.SeenPostsEnabled() {
		return nil
	}

	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	db, err := sql.Open("postgres", cfg.PostgresDSN())
	if err != nil {
		return err
	}
	defer db.Close()

	// Migrations are registered Go functions; no directory to scan.
	if err := goose.Up(db, "."); err != nil {
		return err
	}

	log.Info("Database migrations applied")
	return nil
}

func run(lc fx.Lifecycle, shutdowner fx.Shutdowner, log logger.Logger, cfg *config.Config,
	client archiver.Client, tgClient telegram.Client) {

	runCtx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			if cfg.Archiver.Cron != "" {
				return client.Schedule(runCtx)
			}

			go func() {
				if _, err := client.Run(runCtx, archiverimpl.OptionsFromConfig(cfg)); err != nil {
					log.Error("Archive run failed", "error", err)
					if sendErr := tgClient.SendMessage("Archive run failed: " + err.Error()); sendErr != nil {
						log.Warn("Failed to notify about run failure", "error", sendErr)
					}
				}
				if err := shutdowner.Shutdown(); err != nil {
					log.Error("Failed to shut down application", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}
