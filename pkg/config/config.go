package config

import (
	"fmt"
	"log"
	"sync"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	App struct {
		Env       string `env:"APP_ENV" env-default:"development"`
		SentryUrl string `env:"SENTRY_URL"`
	}
	Instagram struct {
		Username      string `env:"INSTAGRAM_USER"`
		Password      string `env:"INSTAGRAM_PASS"`
		TwoFactorCode string `env:"INSTAGRAM_2FA_CODE"`
		SessionPath   string `env:"INSTAGRAM_SESSION_PATH" env-default:"./session.json"`
		IdentityPath  string `env:"INSTAGRAM_IDENTITY_PATH" env-default:"./.instagram_user"`
		// RequestTimeout is the per-request upper bound in seconds, configured
		// once at session start.
		RequestTimeout int `env:"INSTAGRAM_REQUEST_TIMEOUT" env-default:"30"`
	}
	Archiver struct {
		Amount            int    `env:"ARCHIVER_AMOUNT" env-default:"20"`
		SkipDuplicates    bool   `env:"ARCHIVER_SKIP_DUPLICATES" env-default:"true"`
		SkipSponsored     bool   `env:"ARCHIVER_SKIP_SPONSORED" env-default:"false"`
		SortChronological bool   `env:"ARCHIVER_SORT_CHRONO" env-default:"false"`
		FetchComments     bool   `env:"ARCHIVER_FETCH_COMMENTS" env-default:"false"`
		MaxComments       int    `env:"ARCHIVER_MAX_COMMENTS" env-default:"50"`
		DownloadMedia     bool   `env:"ARCHIVER_DOWNLOAD_MEDIA" env-default:"false"`
		OutputDir         string `env:"ARCHIVER_OUTPUT_DIR" env-default:"."`
		DownloadDir       string `env:"ARCHIVER_DOWNLOAD_DIR" env-default:"./downloads"`
		// Cron switches the archiver from a one-shot run to a scheduled one.
		Cron string `env:"ARCHIVER_CRON"`
		// RetentionDays bounds how long seen-post archive records are kept;
		// 0 keeps them forever.
		RetentionDays int `env:"ARCHIVER_RETENTION_DAYS" env-default:"0"`
	}
	Postgres struct {
		Port    int    `env:"POSTGRES_PORT" env-default:"5432"`
		Host    string `env:"POSTGRES_HOST"`
		User    string `env:"POSTGRES_USER"`
		Pass    string `env:"POSTGRES_PASS"`
		Name    string `env:"POSTGRES_NAME"`
		SslMode string `env:"POSTGRES_SSL_MODE" env-default:"disable"`
	}
	Telegram struct {
		Token string `env:"TELEGRAM_TOKEN"`
		Chat  int64  `env:"TELEGRAM_CHAT"`
	}
}

var (
	once sync.Once
	cfg  *Config
)

func New() (*Config, error) {
	once.Do(func() {
		cfg = &Config{}
		if err := cleanenv.ReadEnv(cfg); err != nil {
			help, _ := cleanenv.GetDescription(cfg, nil)
			log.Fatalf("Failed to read configuration: %v\n%v", err, help)
		}
	})
	return cfg, nil
}

// PostgresDSN builds the connection string for the optional seen-posts
// archive.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Postgres.User,
		c.Postgres.Pass,
		c.Postgres.Host,
		c.Postgres.Port,
		c.Postgres.Name,
		c.Postgres.SslMode,
	)
}

// SeenPostsEnabled reports whether the optional Postgres seen-post archive is
// configured for this run.
func (c *Config) SeenPostsEnabled() bool {
	return c.Postgres.Host != ""
}

// TelegramEnabled reports whether run summaries should be sent to Telegram.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.Token != "" && c.Telegram.Chat != 0
}
