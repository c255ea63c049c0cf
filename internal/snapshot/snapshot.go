// Package snapshot persists the output of one run as a timestamped JSON file
// and rebuilds the seen-post index from prior snapshot files.
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/orgball2608/insta-feed-archiver/internal/domain"
	"github.com/orgball2608/insta-feed-archiver/pkg/errors"
)

// FilePattern matches the snapshot naming convention in a directory glob.
const FilePattern = "feed_enhanced_*.json"

// Options mirror the run flags that end up encoded in the filename.
type Options struct {
	Chronological bool
	SkipSponsored bool
}

// Filename builds the snapshot name for a run finishing at now:
// feed_enhanced_{YYYYMMDD}_{HHMMSS}[_chrono][_no_ads].json
func Filename(now time.Time, opts Options) string {
	name := "feed_enhanced_" + now.Format("20060102_150405")
	if opts.Chronological {
		name += "_chrono"
	}
	if opts.SkipSponsored {
		name += "_no_ads"
	}
	return name + ".json"
}

// Write serializes posts as a JSON array with 2-space indentation, keeping
// non-ASCII characters unescaped, and returns the path written.
func Write(dir string, posts []domain.Post, opts Options, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.Wrap(err, "failed to create snapshot directory")
	}

	path := filepath.Join(dir, Filename(now, opts))
	f, err := os.Create(path)
	if err != nil {
		return "", errors.Wrap(err, "failed to create snapshot file")
	}
	defer f.Close()

	if posts == nil {
		posts = []domain.Post{}
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(posts); err != nil {
		return "", fmt.Errorf("failed to encode snapshot %s: %w", path, err)
	}
	return path, nil
}
