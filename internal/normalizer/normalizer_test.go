package normalizer

import (
	"testing"
	"time"

	"github.com/orgball2608/insta-feed-archiver/internal/domain"
	"github.com/orgball2608/insta-feed-archiver/internal/instagram"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func structuredRecord() *instagram.MediaItem {
	return &instagram.MediaItem{
		ID:   "123_456",
		Pk:   123,
		Code: "Cxyz",
		User: instagram.MediaUser{
			Pk:            456,
			Username:      "alice",
			FullName:      "Alice Doe",
			IsVerified:    true,
			ProfilePicURL: "https://cdn.example.com/alice.jpg",
			Biography:     "hello there",
		},
		CaptionText:  "sunset über alles 🌇",
		LikeCount:    1234,
		CommentCount: 56,
		TakenAt:      time.Unix(1700000000, 0),
		MediaType:    domain.MediaTypePhoto,
		ThumbnailURL: "https://cdn.example.com/p.jpg",
		LocationName: "Lisbon",
		SponsorTags:  []instagram.SponsorUser{{Pk: 9, Username: "brand"}},
	}
}

// mappingRecord carries the same logical values as structuredRecord, using
// provider field names.
func mappingRecord() map[string]any {
	return map[string]any{
		"id":   "123_456",
		"code": "Cxyz",
		"user": map[string]any{
			"pk":              float64(456),
			"username":        "alice",
			"full_name":       "Alice Doe",
			"is_verified":     true,
			"profile_pic_url": "https://cdn.example.com/alice.jpg",
			"biography":       "hello there",
		},
		"caption":       map[string]any{"text": "sunset über alles 🌇"},
		"like_count":    float64(1234),
		"comment_count": float64(56),
		"taken_at":      float64(1700000000),
		"media_type":    float64(1),
		"image_versions2": map[string]any{
			"candidates": []any{
				map[string]any{"url": "https://cdn.example.com/p.jpg"},
			},
		},
		"location":     map[string]any{"name": "Lisbon"},
		"sponsor_tags": []any{map[string]any{"username": "brand", "pk": float64(9)}},
	}
}

func TestNormalizeShapeInvariance(t *testing.T) {
	fromStruct := Normalize(structuredRecord())
	fromMap := Normalize(mappingRecord())

	require.False(t, fromStruct.Degraded())
	require.False(t, fromMap.Degraded())
	assert.Equal(t, fromStruct.Post, fromMap.Post)
}

func TestNormalizeStructured(t *testing.T) {
	res := Normalize(structuredRecord())
	require.False(t, res.Degraded())
	post := res.Post

	assert.Equal(t, "123_456", post.ID)
	require.NotNil(t, post.URL)
	assert.Equal(t, "https://www.instagram.com/p/Cxyz/", *post.URL)
	assert.Equal(t, "alice", post.User)
	require.NotNil(t, post.UserID)
	assert.Equal(t, "456", *post.UserID)
	assert.True(t, post.IsVerified)
	assert.Equal(t, 1234, post.Likes)
	assert.Equal(t, 56, post.CommentsCount)
	require.NotNil(t, post.Timestamp)
	assert.Equal(t, int64(1700000000), *post.Timestamp)
	require.NotNil(t, post.TimestampHuman)
	assert.Equal(t, time.Unix(1700000000, 0).Format("2006-01-02 15:04:05"), *post.TimestampHuman)
	assert.Equal(t, "photo", post.MediaTypeName)
	require.NotNil(t, post.Location)
	assert.Equal(t, "Lisbon", *post.Location)
	require.Len(t, post.SponsorTags, 1)
	assert.Equal(t, domain.SponsorTag{Username: "brand", UserID: "9"}, post.SponsorTags[0])
	assert.True(t, post.IsSponsored, "sponsor tags alone make a post sponsored")
	assert.False(t, post.IsPaidPartnership)
}

func TestNormalizePaidPartnershipWithoutTags(t *testing.T) {
	rec := structuredRecord()
	rec.SponsorTags = nil
	rec.IsPaidPartnership = true

	res := Normalize(rec)
	require.False(t, res.Degraded())
	assert.True(t, res.Post.IsSponsored)
	assert.Empty(t, res.Post.SponsorTags)
	assert.NotNil(t, res.Post.SponsorTags, "sponsor_tags serializes as an empty array, not null")
}

func TestNormalizeMediaTypeNames(t *testing.T) {
	cases := map[int]string{
		1:  "photo",
		2:  "video",
		8:  "album",
		42: "42",
	}
	for code, want := range cases {
		res := Normalize(map[string]any{"id": "1", "media_type": float64(code)})
		require.False(t, res.Degraded())
		assert.Equal(t, want, res.Post.MediaTypeName)
	}
}

func TestNormalizeMappingVariants(t *testing.T) {
	t.Run("pk fallback for identity", func(t *testing.T) {
		res := Normalize(map[string]any{"pk": float64(987654321)})
		require.False(t, res.Degraded())
		assert.Equal(t, "987654321", res.Post.ID)
	})

	t.Run("caption_text field", func(t *testing.T) {
		res := Normalize(map[string]any{"id": "1", "caption_text": "plain"})
		require.NotNil(t, res.Post.Caption)
		assert.Equal(t, "plain", *res.Post.Caption)
	})

	t.Run("bare string caption", func(t *testing.T) {
		res := Normalize(map[string]any{"id": "1", "caption": "bare"})
		require.NotNil(t, res.Post.Caption)
		assert.Equal(t, "bare", *res.Post.Caption)
	})

	t.Run("non-mapping user stringified", func(t *testing.T) {
		res := Normalize(map[string]any{"id": "1", "user": "bob"})
		require.False(t, res.Degraded())
		assert.Equal(t, "bob", res.Post.User)
		assert.Nil(t, res.Post.UserID)
	})

	t.Run("already-parsed time value", func(t *testing.T) {
		taken := time.Unix(1650000000, 0)
		res := Normalize(map[string]any{"id": "1", "taken_at": taken})
		require.NotNil(t, res.Post.Timestamp)
		assert.Equal(t, int64(1650000000), *res.Post.Timestamp)
		require.NotNil(t, res.Post.TimestampHuman)
		assert.Equal(t, taken.Format("2006-01-02 15:04:05"), *res.Post.TimestampHuman)
	})

	t.Run("carousel via resources", func(t *testing.T) {
		res := Normalize(map[string]any{
			"id":         "1",
			"media_type": float64(8),
			"resources":  []any{map[string]any{}, map[string]any{}, map[string]any{}},
		})
		assert.Equal(t, 3, res.Post.CarouselMediaCount)
	})

	t.Run("video url", func(t *testing.T) {
		res := Normalize(map[string]any{
			"id":             "1",
			"media_type":     float64(2),
			"video_versions": []any{map[string]any{"url": "https://cdn.example.com/v.mp4"}},
		})
		require.NotNil(t, res.Post.VideoURL)
		assert.Equal(t, "https://cdn.example.com/v.mp4", *res.Post.VideoURL)
	})
}

func TestNormalizeNeverRaises(t *testing.T) {
	malformed := []any{
		nil,
		42,
		"just a string",
		[]any{"nested"},
		map[string]any{},                           // no identity at all
		map[string]any{"caption": []any{"wrong"}},  // wrong shapes everywhere
		map[string]any{"id": "1", "user": []any{}}, // half-broken but has id
	}

	for _, raw := range malformed {
		res := Normalize(raw)
		if res.Degraded() {
			assert.Equal(t, domain.DegradedID, res.Post.ID)
			assert.NotEmpty(t, res.Post.Error)
			assert.NotEmpty(t, res.Post.RawType)
		} else {
			assert.NotEmpty(t, res.Post.ID)
		}
	}
}

func TestNormalizeMissingOptionalsDefault(t *testing.T) {
	res := Normalize(map[string]any{"id": "77"})
	require.False(t, res.Degraded())
	post := res.Post

	assert.Nil(t, post.Code)
	assert.Nil(t, post.URL)
	assert.Nil(t, post.Caption)
	assert.Nil(t, post.Timestamp)
	assert.Nil(t, post.TimestampHuman)
	assert.Nil(t, post.ThumbnailURL)
	assert.Nil(t, post.VideoURL)
	assert.Nil(t, post.Location)
	assert.Nil(t, post.FilterType)
	assert.Nil(t, post.HasAudio)
	assert.Zero(t, post.Likes)
	assert.Zero(t, post.CommentsCount)
	assert.Zero(t, post.CarouselMediaCount)
	assert.False(t, post.IsVerified)
	assert.False(t, post.IsSponsored)
	assert.Empty(t, post.SponsorTags)
}
