package seenposts

import (
	"github.com/orgball2608/insta-feed-archiver/pkg/config"
	"github.com/orgball2608/insta-feed-archiver/pkg/logger"
	"github.com/orgball2608/insta-feed-archiver/pkg/pgx"
	"go.uber.org/fx"
)

// Module provides the Repository, or a nil Repository when no Postgres is
// configured. The archive is an optional duplicate source.
var Module = fx.Module("seenposts_repository",
	fx.Provide(
		func(lc fx.Lifecycle, cfg *config.Config, log logger.Logger) (Repository, error) {
			if !cfg.SeenPostsEnabled() {
				log.Info("Postgres not configured, seen-posts archive disabled")
				return nil, nil
			}
			pool, err := pgx.New(pgx.Opts{LC: lc, Logger: log, Config: cfg})
			if err != nil {
				return nil, err
			}
			return NewPgx(pool, log), nil
		},
	),
)
