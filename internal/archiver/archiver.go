package archiver

import (
	"context"

	"github.com/orgball2608/insta-feed-archiver/internal/domain"
)

// Options enumerate one run's behavior. They are collected once at the
// boundary and passed immutably through the pipeline.
type Options struct {
	Amount            int
	SkipDuplicates    bool
	SkipSponsored     bool
	SortChronological bool
	FetchComments     bool
	MaxComments       int
	DownloadMedia     bool
	OutputDir         string
	DownloadDir       string
	RetentionDays     int
}

type Client interface {
	// Run executes one archive pass: login, paginate, normalize, filter,
	// enrich, persist, summarize.
	Run(ctx context.Context, opts Options) (*domain.RunSummary, error)

	// Schedule repeats Run on the configured cron expression until the
	// context is cancelled.
	Schedule(ctx context.Context) error
}
