// Package comments fetches and normalizes post comments. Comments are
// best-effort enrichment: a fetch failure degrades to an empty result and is
// never fatal to the pipeline.
package comments

import (
	"context"
	"time"

	"github.com/orgball2608/insta-feed-archiver/internal/domain"
	"github.com/orgball2608/insta-feed-archiver/internal/instagram"
	"github.com/orgball2608/insta-feed-archiver/pkg/logger"
)

// Source is the comment-fetch capability of the feed client.
type Source interface {
	MediaComments(ctx context.Context, mediaID string, limit int) ([]instagram.CommentItem, error)
}

const DefaultMaxComments = 50

type Fetcher struct {
	source Source
	logger logger.Logger
}

func New(source Source, log logger.Logger) *Fetcher {
	return &Fetcher{
		source: source,
		logger: log.WithComponent("Comments"),
	}
}

// Fetch returns up to maxComments normalized comments for a post, or an empty
// sequence when the fetch fails.
func (f *Fetcher) Fetch(ctx context.Context, postID string, maxComments int) []domain.Comment {
	if maxComments <= 0 {
		maxComments = DefaultMaxComments
	}

	items, err := f.source.MediaComments(ctx, postID, maxComments)
	if err != nil {
		f.logger.Warn("Could not fetch comments", "post_id", postID, "error", err)
		return []domain.Comment{}
	}

	if len(items) > maxComments {
		items = items[:maxComments]
	}

	comments := make([]domain.Comment, 0, len(items))
	for _, item := range items {
		comments = append(comments, normalizeComment(item))
	}
	return comments
}

func normalizeComment(item instagram.CommentItem) domain.Comment {
	comment := domain.Comment{
		User:  item.Username,
		Text:  item.Text,
		Likes: item.LikeCount,
	}
	if !item.CreatedAtUTC.IsZero() {
		createdAt := item.CreatedAtUTC.UTC().Format(time.RFC3339)
		comment.CreatedAt = &createdAt
	}
	return comment
}
