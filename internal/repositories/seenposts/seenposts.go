// Package seenposts is the optional Postgres-backed archive of post ids this
// installation has already saved. It complements the snapshot-file index with
// a duplicate source that survives snapshot pruning.
package seenposts

import (
	"context"
	"errors"
	"time"
)

var (
	ErrAlreadyExists = errors.New("seen post already exists")
	ErrNotFound      = errors.New("seen post not found")
)

// SeenPost is one archived post id with minimal provenance.
type SeenPost struct {
	ID           int
	PostID       string
	Username     string
	SnapshotFile string
	CreatedAt    time.Time
}

type Repository interface {
	// Create records a post id as seen.
	Create(ctx context.Context, post SeenPost) error

	// Exists checks whether a post id has been archived before.
	Exists(ctx context.Context, postID string) (bool, error)

	// CleanupOldRecords deletes records older than the given duration and
	// returns how many went away.
	CleanupOldRecords(ctx context.Context, olderThan time.Duration) (int64, error)
}
