// Package normalizer converts heterogeneous feed records into canonical
// posts. A record arrives either as a structured *instagram.MediaItem or as a
// loosely-structured string-keyed mapping using provider field names; both
// shapes normalize to the same domain.Post.
package normalizer

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/orgball2608/insta-feed-archiver/internal/domain"
	"github.com/orgball2608/insta-feed-archiver/internal/instagram"
)

const humanTimeLayout = "2006-01-02 15:04:05"

// Result is the outcome of normalizing one record: either an Ok post or a
// degraded placeholder carrying the extraction error.
type Result struct {
	Post domain.Post
	Err  error
}

// Degraded reports whether the post is a placeholder rather than real data.
func (r Result) Degraded() bool {
	return r.Err != nil
}

// Normalize extracts a canonical Post from one raw feed record. It never
// panics or returns a bare error: on any irrecoverable shape mismatch it
// produces a degraded record so pipeline iteration keeps going.
func Normalize(raw any) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = degraded(raw, fmt.Errorf("panic during extraction: %v", r))
		}
	}()

	switch rec := raw.(type) {
	case *instagram.MediaItem:
		return Result{Post: fromItem(rec)}
	case instagram.MediaItem:
		return Result{Post: fromItem(&rec)}
	case map[string]any:
		return fromMapping(rec, raw)
	default:
		return degraded(raw, fmt.Errorf("unsupported record shape %T", raw))
	}
}

func degraded(raw any, err error) Result {
	return Result{
		Post: domain.Post{
			ID:          domain.DegradedID,
			Error:       err.Error(),
			RawType:     fmt.Sprintf("%T", raw),
			SponsorTags: []domain.SponsorTag{},
		},
		Err: err,
	}
}

// fromItem extracts from the structured shape (capability set A).
func fromItem(rec *instagram.MediaItem) domain.Post {
	id := rec.ID
	if id == "" && rec.Pk != 0 {
		id = strconv.FormatInt(rec.Pk, 10)
	}

	post := domain.Post{
		ID:                 id,
		Code:               optString(rec.Code),
		User:               rec.User.Username,
		IsVerified:         rec.User.IsVerified,
		UserFullName:       optString(rec.User.FullName),
		UserAvatarURL:      optString(rec.User.ProfilePicURL),
		UserBio:            optString(rec.User.Biography),
		Caption:            optString(rec.CaptionText),
		Likes:              rec.LikeCount,
		CommentsCount:      rec.CommentCount,
		MediaType:          rec.MediaType,
		MediaTypeName:      domain.MediaTypeName(rec.MediaType),
		ThumbnailURL:       optString(rec.ThumbnailURL),
		VideoURL:           optString(rec.VideoURL),
		CarouselMediaCount: len(rec.Resources),
		Location:           optString(rec.LocationName),
		FilterType:         rec.FilterType,
		HasAudio:           rec.HasAudio,
		IsPaidPartnership:  rec.IsPaidPartnership,
		SponsorTags:        []domain.SponsorTag{},
	}

	if rec.User.Pk != 0 {
		uid := strconv.FormatInt(rec.User.Pk, 10)
		post.UserID = &uid
	}

	post.URL = postURL(post.Code)
	post.Timestamp, post.TimestampHuman = normalizeTime(rec.TakenAt)

	for _, tag := range rec.SponsorTags {
		post.SponsorTags = append(post.SponsorTags, domain.SponsorTag{
			Username: tag.Username,
			UserID:   strconv.FormatInt(tag.Pk, 10),
		})
	}
	post.IsSponsored = post.IsPaidPartnership || len(post.SponsorTags) > 0

	return post
}

// fromMapping extracts from the generic mapping shape (capability set B),
// following provider field names: pk, caption.text, image_versions2, and so on.
func fromMapping(m map[string]any, raw any) Result {
	id := stringValue(m["id"])
	if id == "" {
		id = stringValue(m["pk"])
	}
	if id == "" {
		return degraded(raw, fmt.Errorf("record carries neither id nor pk"))
	}

	post := domain.Post{
		ID:                id,
		Code:              optString(getString(m, "code")),
		Likes:             getInt(m, "like_count"),
		CommentsCount:     getInt(m, "comment_count"),
		IsPaidPartnership: getBool(m, "is_paid_partnership"),
		SponsorTags:       []domain.SponsorTag{},
	}
	post.URL = postURL(post.Code)

	if user, ok := m["user"].(map[string]any); ok {
		post.User = getString(user, "username")
		post.IsVerified = getBool(user, "is_verified")
		post.UserFullName = optString(getString(user, "full_name"))
		post.UserAvatarURL = optString(getString(user, "profile_pic_url"))
		post.UserBio = optString(getString(user, "biography"))
		if uid := stringValue(user["pk"]); uid != "" {
			post.UserID = &uid
		}
	} else if m["user"] != nil {
		post.User = fmt.Sprint(m["user"])
	}

	post.Caption = extractCaption(m)

	if ts, ok := epochOrTime(m["taken_at"]); ok {
		post.Timestamp, post.TimestampHuman = normalizeTime(ts)
	}

	post.MediaType = getInt(m, "media_type")
	post.MediaTypeName = domain.MediaTypeName(post.MediaType)

	if versions, ok := m["image_versions2"].(map[string]any); ok {
		if candidates, ok := versions["candidates"].([]any); ok && len(candidates) > 0 {
			if first, ok := candidates[0].(map[string]any); ok {
				post.ThumbnailURL = optString(getString(first, "url"))
			}
		}
	}
	if videos, ok := m["video_versions"].([]any); ok && len(videos) > 0 {
		if first, ok := videos[0].(map[string]any); ok {
			post.VideoURL = optString(getString(first, "url"))
		}
	}

	if carousel, ok := m["carousel_media"].([]any); ok && len(carousel) > 0 {
		post.CarouselMediaCount = len(carousel)
	} else if resources, ok := m["resources"].([]any); ok {
		post.CarouselMediaCount = len(resources)
	}

	if location, ok := m["location"].(map[string]any); ok {
		post.Location = optString(getString(location, "name"))
	}

	if tags, ok := m["sponsor_tags"].([]any); ok {
		for _, t := range tags {
			tag, ok := t.(map[string]any)
			if !ok {
				continue
			}
			post.SponsorTags = append(post.SponsorTags, domain.SponsorTag{
				Username: getString(tag, "username"),
				UserID:   stringValue(tag["pk"]),
			})
		}
	}
	post.IsSponsored = post.IsPaidPartnership || len(post.SponsorTags) > 0

	if ft, ok := intValue(m["filter_type"]); ok {
		post.FilterType = &ft
	}
	if ha, ok := m["has_audio"].(bool); ok {
		post.HasAudio = &ha
	}

	return Result{Post: post}
}

// extractCaption handles caption.text, caption_text and a bare caption string.
func extractCaption(m map[string]any) *string {
	if caption, ok := m["caption"].(map[string]any); ok {
		return optString(getString(caption, "text"))
	}
	if text := getString(m, "caption_text"); text != "" {
		return optString(text)
	}
	if text, ok := m["caption"].(string); ok {
		return optString(text)
	}
	return nil
}

// normalizeTime produces both the epoch and the human form from one instant.
func normalizeTime(t time.Time) (*int64, *string) {
	if t.IsZero() {
		return nil, nil
	}
	epoch := t.Unix()
	human := t.Format(humanTimeLayout)
	return &epoch, &human
}

// epochOrTime accepts an epoch integer in any JSON numeric flavor, or an
// already-parsed time value.
func epochOrTime(v any) (time.Time, bool) {
	switch ts := v.(type) {
	case time.Time:
		if ts.IsZero() {
			return time.Time{}, false
		}
		return ts, true
	default:
		if sec, ok := intValue(v); ok && sec != 0 {
			return time.Unix(sec, 0), true
		}
	}
	return time.Time{}, false
}

func postURL(code *string) *string {
	if code == nil {
		return nil
	}
	url := fmt.Sprintf("https://www.instagram.com/p/%s/", *code)
	return &url
}

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func getString(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func getBool(m map[string]any, key string) bool {
	b, _ := m[key].(bool)
	return b
}

func getInt(m map[string]any, key string) int {
	v, ok := intValue(m[key])
	if !ok {
		return 0
	}
	return int(v)
}

// intValue normalizes the numeric types JSON decoding can produce.
func intValue(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}

// stringValue renders an identity value, which may arrive as a string or any
// numeric flavor, always as a string.
func stringValue(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case json.Number:
		return s.String()
	default:
		if n, ok := intValue(v); ok {
			return strconv.FormatInt(n, 10)
		}
		return fmt.Sprint(v)
	}
}
