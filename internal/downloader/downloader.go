// Package downloader resolves a post's asset URLs and writes media files with
// retry. The underlying writer appends the file extension itself, so the
// produced filename is recovered by globbing the target directory.
package downloader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/orgball2608/insta-feed-archiver/internal/domain"
	"github.com/orgball2608/insta-feed-archiver/internal/instagram"
	"github.com/orgball2608/insta-feed-archiver/pkg/logger"
	"github.com/orgball2608/insta-feed-archiver/pkg/retry"
)

// MediaClient is the slice of the feed client the downloader needs: the
// album secondary fetch and the asset writer.
type MediaClient interface {
	MediaInfo(ctx context.Context, pk int64) (*instagram.MediaItem, error)
	DownloadAsset(ctx context.Context, url, stem string) error
}

type Config struct {
	// MaxRetries is the number of attempts per asset, including the first.
	MaxRetries int
	// RetryInterval is the fixed wait between attempts.
	RetryInterval time.Duration
}

func DefaultConfig() Config {
	return Config{
		MaxRetries:    2,
		RetryInterval: 2 * time.Second,
	}
}

type Downloader struct {
	client MediaClient
	logger logger.Logger
	cfg    Config
}

func New(client MediaClient, log logger.Logger, cfg Config) *Downloader {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultConfig().MaxRetries
	}
	return &Downloader{
		client: client,
		logger: log.WithComponent("Downloader"),
		cfg:    cfg,
	}
}

// Download fetches every asset of a post into dir and returns the file paths
// actually produced. The error, when non-nil, is the cause of a partial
// result: a failed asset inside an album never prevents attempting the rest,
// and an asset-discovery failure is logged and skipped.
func (d *Downloader) Download(ctx context.Context, post *domain.Post, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create download directory: %w", err)
	}

	switch post.MediaTypeName {
	case domain.MediaNamePhoto:
		return d.downloadSingle(ctx, post, dir, post.ThumbnailURL)
	case domain.MediaNameVideo:
		return d.downloadSingle(ctx, post, dir, post.VideoURL)
	case domain.MediaNameAlbum:
		return d.downloadAlbum(ctx, post, dir)
	default:
		d.logger.Debug("No downloadable media for post", "post_id", post.ID, "type", post.MediaTypeName)
		return nil, nil
	}
}

func (d *Downloader) downloadSingle(ctx context.Context, post *domain.Post, dir string, url *string) ([]string, error) {
	if url == nil || *url == "" {
		d.logger.Warn("Post has no asset URL, skipping download", "post_id", post.ID, "type", post.MediaTypeName)
		return nil, nil
	}

	stem := fmt.Sprintf("%s_%s", post.User, post.ID)
	path, err := d.fetchAsset(ctx, *url, dir, stem)
	if err != nil {
		return nil, err
	}
	d.logger.Info("Downloaded media", "post_id", post.ID, "file", filepath.Base(path))
	return []string{path}, nil
}

// downloadAlbum performs the secondary full-detail fetch (the feed-level
// record carries no per-item asset URLs) and downloads each sub-item,
// indexed 1..N.
func (d *Downloader) downloadAlbum(ctx context.Context, post *domain.Post, dir string) ([]string, error) {
	pk, err := albumPk(post.ID)
	if err != nil {
		d.logger.Warn("Cannot derive media pk from post id", "post_id", post.ID, "error", err)
		return nil, nil
	}

	info, err := d.client.MediaInfo(ctx, pk)
	if err != nil {
		d.logger.Warn("Album detail fetch failed", "post_id", post.ID, "error", err)
		return nil, nil
	}

	total := len(info.Resources)
	d.logger.Info("Downloading album items", "post_id", post.ID, "items", total)

	var files []string
	var errs []error
	for i, resource := range info.Resources {
		idx := i + 1

		var url string
		switch resource.MediaType {
		case domain.MediaTypePhoto:
			url = resource.ThumbnailURL
		case domain.MediaTypeVideo:
			url = resource.VideoURL
		}
		if url == "" {
			d.logger.Warn("Album item has no asset URL, skipping", "post_id", post.ID, "item", idx)
			continue
		}

		stem := fmt.Sprintf("%s_%s_%d", post.User, post.ID, idx)
		path, err := d.fetchAsset(ctx, url, dir, stem)
		if err != nil {
			d.logger.Warn("Album item download failed", "post_id", post.ID, "item", idx, "error", err)
			errs = append(errs, fmt.Errorf("item %d: %w", idx, err))
			continue
		}
		files = append(files, path)
	}

	d.logger.Info("Downloaded album", "post_id", post.ID, "files", len(files), "items", total)
	return files, errors.Join(errs...)
}

// fetchAsset writes one asset with retry and recovers the filename the writer
// produced. The target stem carries no extension: the writer appends the
// correct one based on content type, which is not knowable in advance.
func (d *Downloader) fetchAsset(ctx context.Context, url, dir, stem string) (string, error) {
	target := filepath.Join(dir, stem)

	operation := func() error {
		return d.client.DownloadAsset(ctx, url, target)
	}
	cfg := retry.ConstantConfig(uint64(d.cfg.MaxRetries), d.cfg.RetryInterval)
	if err := retry.Do(ctx, d.logger, "DownloadAsset", operation, cfg); err != nil {
		return "", err
	}

	matches, err := filepath.Glob(target + ".*")
	if err != nil || len(matches) == 0 {
		return "", fmt.Errorf("no file produced for stem %s", stem)
	}
	sort.Strings(matches)
	return matches[0], nil
}

// albumPk extracts the numeric portion of a composite post id like
// "3141592653_123456".
func albumPk(id string) (int64, error) {
	numeric, _, _ := strings.Cut(id, "_")
	return strconv.ParseInt(numeric, 10, 64)
}
