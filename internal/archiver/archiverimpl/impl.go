package archiverimpl

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/orgball2608/insta-feed-archiver/internal/archiver"
	"github.com/orgball2608/insta-feed-archiver/internal/comments"
	"github.com/orgball2608/insta-feed-archiver/internal/domain"
	"github.com/orgball2608/insta-feed-archiver/internal/downloader"
	"github.com/orgball2608/insta-feed-archiver/internal/instagram"
	"github.com/orgball2608/insta-feed-archiver/internal/normalizer"
	"github.com/orgball2608/insta-feed-archiver/internal/paginator"
	"github.com/orgball2608/insta-feed-archiver/internal/repositories/seenposts"
	"github.com/orgball2608/insta-feed-archiver/internal/snapshot"
	"github.com/orgball2608/insta-feed-archiver/internal/telegram"
	"github.com/orgball2608/insta-feed-archiver/pkg/config"
	"github.com/orgball2608/insta-feed-archiver/pkg/formatter"
	"github.com/orgball2608/insta-feed-archiver/pkg/logger"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In

	Instagram instagram.Client
	Telegram  telegram.Client
	SeenPosts seenposts.Repository `optional:"true"`
	Logger    logger.Logger
	Config    *config.Config
}

type ArchiverImpl struct {
	Instagram instagram.Client
	Telegram  telegram.Client
	SeenPosts seenposts.Repository
	Logger    logger.Logger
	Config    *config.Config

	now func() time.Time
}

func New(opts Opts) *ArchiverImpl {
	return &ArchiverImpl{
		Instagram: opts.Instagram,
		Telegram:  opts.Telegram,
		SeenPosts: opts.SeenPosts,
		Logger:    opts.Logger.WithComponent("Archiver"),
		Config:    opts.Config,
		now:       time.Now,
	}
}

var _ archiver.Client = (*ArchiverImpl)(nil)

// OptionsFromConfig collects the run options once at the boundary.
func OptionsFromConfig(cfg *config.Config) archiver.Options {
	return archiver.Options{
		Amount:            cfg.Archiver.Amount,
		SkipDuplicates:    cfg.Archiver.SkipDuplicates,
		SkipSponsored:     cfg.Archiver.SkipSponsored,
		SortChronological: cfg.Archiver.SortChronological,
		FetchComments:     cfg.Archiver.FetchComments,
		MaxComments:       cfg.Archiver.MaxComments,
		DownloadMedia:     cfg.Archiver.DownloadMedia,
		OutputDir:         cfg.Archiver.OutputDir,
		DownloadDir:       cfg.Archiver.DownloadDir,
		RetentionDays:     cfg.Archiver.RetentionDays,
	}
}

// Run executes one archive pass. Authentication failures surface to the
// caller; everything after a valid session degrades locally so an accepted
// post is never discarded by an enrichment failure.
func (a *ArchiverImpl) Run(ctx context.Context, opts archiver.Options) (*domain.RunSummary, error) {
	if err := a.Instagram.Login(ctx); err != nil {
		if errors.Is(err, instagram.ErrTwoFactorRequired) {
			return nil, fmt.Errorf("set INSTAGRAM_2FA_CODE and run again: %w", err)
		}
		return nil, fmt.Errorf("instagram login failed: %w", err)
	}

	a.cleanupSeenPosts(ctx, opts.RetentionDays)

	var index snapshot.Index
	if opts.SkipDuplicates {
		index = snapshot.BuildIndex(opts.OutputDir, a.Logger)
	}

	pager := paginator.New(a.Instagram, a.Logger, paginator.DefaultConfig())
	records := pager.Paginate(ctx, opts.Amount)
	if len(records) == 0 {
		a.Logger.Info("No posts found")
	}

	fetcher := comments.New(a.Instagram, a.Logger)
	dl := downloader.New(a.Instagram, a.Logger, downloader.DefaultConfig())

	summary := &domain.RunSummary{Processed: len(records)}
	posts := make([]domain.Post, 0, len(records))

	for i, record := range records {
		a.Logger.Info("Processing post", "n", i+1, "of", len(records))

		res := normalizer.Normalize(record)
		post := res.Post
		if res.Degraded() {
			a.Logger.Warn("Could not extract post data, keeping degraded record", "error", res.Err)
		}

		if opts.SkipDuplicates && !post.Degraded() && a.isDuplicate(ctx, index, &post) {
			summary.SkippedDuplicates++
			continue
		}

		if opts.SkipSponsored && post.IsSponsored {
			a.Logger.Info("Skipping sponsored post", "user", post.User, "post_id", post.ID)
			summary.SkippedSponsored++
			continue
		}

		a.logPost(&post)

		// Degraded placeholders carry no usable id or URLs; enrichment is
		// skipped for them but they still reach the snapshot.
		if !post.Degraded() {
			if opts.FetchComments && post.CommentsCount > 0 {
				post.Comments = fetcher.Fetch(ctx, post.ID, opts.MaxComments)
				a.Logger.Info("Fetched comments", "post_id", post.ID, "count", len(post.Comments))
			}

			if opts.DownloadMedia {
				files, err := dl.Download(ctx, &post, opts.DownloadDir)
				if err != nil {
					a.Logger.Error("Media download incomplete", "post_id", post.ID, "error", err)
				}
				post.DownloadedFiles = files
			}
		}

		posts = append(posts, post)
		summary.Count(&post)
	}

	if opts.SortChronological && len(posts) > 0 {
		a.Logger.Info("Sorting posts chronologically (newest first)")
		SortChronological(posts)
	}

	path, err := snapshot.Write(opts.OutputDir, posts, snapshot.Options{
		Chronological: opts.SortChronological,
		SkipSponsored: opts.SkipSponsored,
	}, a.now())
	if err != nil {
		return nil, fmt.Errorf("failed to persist snapshot: %w", err)
	}
	summary.SnapshotFile = path
	a.Logger.Info("Feed data saved", "file", path)

	a.recordSeen(ctx, posts, path)
	a.logSummary(summary)

	if err := a.Telegram.SendRunSummary(summary); err != nil {
		a.Logger.Warn("Failed to send run summary", "error", err)
	}

	return summary, nil
}

// isDuplicate consults the snapshot-file index first, then the optional
// seen-posts archive.
func (a *ArchiverImpl) isDuplicate(ctx context.Context, index snapshot.Index, post *domain.Post) bool {
	if prov, ok := index[post.ID]; ok {
		a.Logger.Info("Skipping duplicate",
			"post_id", post.ID,
			"file", prov.File,
			"user", prov.User,
			"timestamp", prov.Timestamp)
		return true
	}

	if a.SeenPosts == nil {
		return false
	}
	exists, err := a.SeenPosts.Exists(ctx, post.ID)
	if err != nil {
		a.Logger.Warn("Seen-posts lookup failed, treating as new", "post_id", post.ID, "error", err)
		return false
	}
	if exists {
		a.Logger.Info("Skipping duplicate (seen-posts archive)", "post_id", post.ID)
	}
	return exists
}

// cleanupSeenPosts prunes archive records older than the retention window so
// the seen-posts table does not grow without bound under scheduled runs.
// Failures are logged, never fatal.
func (a *ArchiverImpl) cleanupSeenPosts(ctx context.Context, retentionDays int) {
	if a.SeenPosts == nil || retentionDays <= 0 {
		return
	}

	deleted, err := a.SeenPosts.CleanupOldRecords(ctx, time.Duration(retentionDays)*24*time.Hour)
	if err != nil {
		a.Logger.Warn("Failed to clean up old seen-post records", "error", err)
		return
	}
	if deleted > 0 {
		a.Logger.Info("Cleaned up old seen-post records",
			"rows_deleted", deleted,
			"retention_days", retentionDays)
	}
}

// recordSeen archives the ids just saved. Failures are logged, never fatal:
// the snapshot-file index remains the authoritative duplicate source.
func (a *ArchiverImpl) recordSeen(ctx context.Context, posts []domain.Post, snapshotFile string) {
	if a.SeenPosts == nil {
		return
	}
	for i := range posts {
		if posts[i].Degraded() {
			continue
		}
		err := a.SeenPosts.Create(ctx, seenposts.SeenPost{
			PostID:       posts[i].ID,
			Username:     posts[i].User,
			SnapshotFile: snapshotFile,
		})
		if err != nil && !errors.Is(err, seenposts.ErrAlreadyExists) {
			a.Logger.Warn("Failed to archive seen post", "post_id", posts[i].ID, "error", err)
		}
	}
}

// SortChronological orders posts non-increasing by timestamp, treating a
// missing timestamp as 0 and preserving the relative order of equal ones.
func SortChronological(posts []domain.Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].TimestampOrZero() > posts[j].TimestampOrZero()
	})
}

func (a *ArchiverImpl) logPost(post *domain.Post) {
	args := []any{
		"user", post.User,
		"type", post.MediaTypeName,
		"likes", formatter.FormatNumber(post.Likes),
		"comments", formatter.FormatNumber(post.CommentsCount),
	}
	if post.URL != nil {
		args = append(args, "url", *post.URL)
	}
	if post.TimestampHuman != nil {
		args = append(args, "posted", *post.TimestampHuman)
	}
	if post.CarouselMediaCount > 0 {
		args = append(args, "album_items", post.CarouselMediaCount)
	}
	if post.Location != nil {
		args = append(args, "location", *post.Location)
	}
	if post.IsSponsored {
		args = append(args, "sponsored", true)
	}
	if post.Caption != nil {
		args = append(args, "caption", formatter.Truncate(*post.Caption, 150))
	}
	a.Logger.Info("Post", args...)
}

func (a *ArchiverImpl) logSummary(s *domain.RunSummary) {
	a.Logger.Info("Run summary",
		"processed", s.Processed,
		"saved", s.Saved,
		"skipped_duplicates", s.SkippedDuplicates,
		"skipped_sponsored", s.SkippedSponsored,
		"photos", s.Photos,
		"videos", s.Videos,
		"albums", s.Albums,
		"sponsored_included", s.SponsoredIncluded,
		"comments_fetched", s.CommentsFetched,
		"files_downloaded", s.FilesDownloaded,
		"snapshot", s.SnapshotFile,
	)
}
