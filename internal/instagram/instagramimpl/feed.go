package instagramimpl

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Davincible/goinsta/v3"
	"github.com/orgball2608/insta-feed-archiver/internal/instagram"
)

// FetchFeedBatch requests the next timeline page and returns its records as a
// direct sequence of structured items.
func (ig *IgImpl) FetchFeedBatch(ctx context.Context) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tl := ig.Client.Timeline
	if !tl.Next() {
		if err := tl.Error(); err != nil && !errors.Is(err, goinsta.ErrNoMore) {
			return nil, fmt.Errorf("timeline fetch failed: %w", err)
		}
		return []any{}, nil
	}

	records := make([]any, 0, len(tl.Items))
	for _, item := range tl.Items {
		records = append(records, convertItem(item))
	}
	return records, nil
}

// MediaInfo fetches the full-detail record for a media pk. Needed for albums,
// whose feed-level records carry no per-item asset URLs.
func (ig *IgImpl) MediaInfo(ctx context.Context, pk int64) (*instagram.MediaItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	media, err := ig.Client.GetMedia(pk)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch media %d: %w", pk, err)
	}
	if len(media.Items) == 0 {
		return nil, fmt.Errorf("media %d returned no items", pk)
	}
	return convertItem(media.Items[0]), nil
}

// convertItem maps a goinsta item onto the structured record shape the
// pipeline consumes.
func convertItem(item *goinsta.Item) *instagram.MediaItem {
	rec := &instagram.MediaItem{
		ID:           fmt.Sprint(item.ID),
		Pk:           item.Pk,
		Code:         item.Code,
		CaptionText:  item.Caption.Text,
		LikeCount:    item.Likes,
		CommentCount: item.CommentCount,
		MediaType:    item.MediaType,
		LocationName: item.Location.Name,
		User: instagram.MediaUser{
			Pk:            item.User.ID,
			Username:      item.User.Username,
			FullName:      item.User.FullName,
			IsVerified:    item.User.IsVerified,
			ProfilePicURL: item.User.ProfilePicURL,
			Biography:     item.User.Biography,
		},
	}

	if item.TakenAt > 0 {
		rec.TakenAt = time.Unix(item.TakenAt, 0)
	}

	rec.ThumbnailURL = item.Images.GetBest()
	if len(item.Videos) > 0 {
		rec.VideoURL = item.Videos[0].URL
	}

	for _, sub := range item.CarouselMedia {
		resource := instagram.MediaResource{
			MediaType:    sub.MediaType,
			ThumbnailURL: sub.Images.GetBest(),
		}
		if len(sub.Videos) > 0 {
			resource.VideoURL = sub.Videos[0].URL
		}
		rec.Resources = append(rec.Resources, resource)
	}

	filterType := int64(item.FilterType)
	rec.FilterType = &filterType

	if item.MediaType == 2 {
		hasAudio := item.HasAudio
		rec.HasAudio = &hasAudio
	}

	return rec
}
