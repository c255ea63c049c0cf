package instagramimpl

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Davincible/goinsta/v3"
	"github.com/orgball2608/insta-feed-archiver/internal/instagram"
)

// MediaComments fetches up to limit comments for a media id.
func (ig *IgImpl) MediaComments(ctx context.Context, mediaID string, limit int) ([]instagram.CommentItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	media, err := ig.Client.GetMedia(mediaID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch media %s: %w", mediaID, err)
	}
	if len(media.Items) == 0 {
		return nil, fmt.Errorf("media %s returned no items", mediaID)
	}

	item := media.Items[0]
	if item.Comments == nil {
		return []instagram.CommentItem{}, nil
	}

	item.Comments.Sync()

	var out []instagram.CommentItem
	for len(out) < limit && item.Comments.Next() {
		for _, cm := range item.Comments.Items {
			converted := instagram.CommentItem{
				Username:  cm.User.Username,
				Text:      cm.Text,
				LikeCount: cm.CommentLikeCount,
			}
			if cm.CreatedAtUtc > 0 {
				converted.CreatedAtUTC = time.Unix(cm.CreatedAtUtc, 0).UTC()
			}
			out = append(out, converted)
			if len(out) >= limit {
				break
			}
		}
	}

	if err := item.Comments.Error(); err != nil && !errors.Is(err, goinsta.ErrNoMore) {
		// Partial comment pages are still useful; the caller treats comments
		// as best-effort.
		ig.Logger.Warn("Comment pagination stopped early", "media_id", mediaID, "error", err)
	}

	return out, nil
}
