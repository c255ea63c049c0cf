package snapshot

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/orgball2608/insta-feed-archiver/pkg/logger"
)

// Provenance records where a previously-seen post id came from.
type Provenance struct {
	File      string
	User      string
	Timestamp string
}

// Index maps post ids seen in prior snapshots to their provenance. It is
// rebuilt fresh every run and read-only after construction.
type Index map[string]Provenance

// indexRecord is the subset of a snapshot post the index needs.
type indexRecord struct {
	ID             string  `json:"id"`
	User           string  `json:"user"`
	TimestampHuman *string `json:"timestamp_human"`
}

// BuildIndex scans dir non-recursively for snapshot files and collects every
// non-empty post id. Later-scanned files overwrite earlier entries for the
// same id. A file that fails to parse is skipped with a warning.
func BuildIndex(dir string, log logger.Logger) Index {
	index := make(Index)

	paths, err := filepath.Glob(filepath.Join(dir, FilePattern))
	if err != nil || len(paths) == 0 {
		return index
	}

	log.Info("Checking existing snapshot files for duplicates", "files", len(paths))

	for _, path := range paths {
		records, err := readSnapshot(path)
		if err != nil {
			log.Warn("Could not read snapshot file, skipping", "file", filepath.Base(path), "error", err)
			continue
		}
		for _, rec := range records {
			if rec.ID == "" {
				continue
			}
			prov := Provenance{File: filepath.Base(path), User: rec.User}
			if rec.TimestampHuman != nil {
				prov.Timestamp = *rec.TimestampHuman
			}
			index[rec.ID] = prov
		}
	}

	if len(index) > 0 {
		log.Info("Found existing posts across snapshot files", "posts", len(index))
	}
	return index
}

// readSnapshot accepts both the array form the writer produces and the
// {"posts": [...]} envelope.
func readSnapshot(path string) ([]indexRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var records []indexRecord
	if err := json.Unmarshal(data, &records); err == nil {
		return records, nil
	}

	var wrapped struct {
		Posts []indexRecord `json:"posts"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, err
	}
	return wrapped.Posts, nil
}
