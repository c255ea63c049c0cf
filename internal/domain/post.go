package domain

import "strconv"

// Media type codes as they appear in feed records.
const (
	MediaTypePhoto = 1
	MediaTypeVideo = 2
	MediaTypeAlbum = 8
)

const (
	MediaNamePhoto = "photo"
	MediaNameVideo = "video"
	MediaNameAlbum = "album"
)

// MediaTypeName maps a raw media type code to its name. Unknown codes come
// back as the stringified code so nothing is lost in the snapshot.
func MediaTypeName(code int) string {
	switch code {
	case MediaTypePhoto:
		return MediaNamePhoto
	case MediaTypeVideo:
		return MediaNameVideo
	case MediaTypeAlbum:
		return MediaNameAlbum
	default:
		return strconv.Itoa(code)
	}
}

// DegradedID marks a Post produced from a record the normalizer could not
// extract real data from.
const DegradedID = "unknown"

type SponsorTag struct {
	Username string `json:"username"`
	UserID   string `json:"user_id"`
}

type Comment struct {
	User      string  `json:"user"`
	Text      string  `json:"text"`
	CreatedAt *string `json:"created_at"`
	Likes     int     `json:"likes"`
}

// Post is the canonical, shape-independent record one feed entry normalizes
// into. Field names match the snapshot file format.
type Post struct {
	ID                 string       `json:"id"`
	Code               *string      `json:"code"`
	URL                *string      `json:"url"`
	User               string       `json:"user"`
	UserID             *string      `json:"user_id"`
	UserFullName       *string      `json:"user_full_name"`
	IsVerified         bool         `json:"is_verified"`
	UserAvatarURL      *string      `json:"user_avatar_url"`
	UserBio            *string      `json:"user_bio"`
	Caption            *string      `json:"caption"`
	Likes              int          `json:"likes"`
	CommentsCount      int          `json:"comments_count"`
	Timestamp          *int64       `json:"timestamp"`
	TimestampHuman     *string      `json:"timestamp_human"`
	MediaType          int          `json:"media_type"`
	MediaTypeName      string       `json:"media_type_name"`
	ThumbnailURL       *string      `json:"thumbnail_url"`
	VideoURL           *string      `json:"video_url"`
	CarouselMediaCount int          `json:"carousel_media_count"`
	Location           *string      `json:"location"`
	FilterType         *int64       `json:"filter_type"`
	IsPaidPartnership  bool         `json:"is_paid_partnership"`
	SponsorTags        []SponsorTag `json:"sponsor_tags"`
	IsSponsored        bool         `json:"is_sponsored"`
	HasAudio           *bool        `json:"has_audio"`

	// Error and RawType are set only on degraded records.
	Error   string `json:"error,omitempty"`
	RawType string `json:"raw_type,omitempty"`

	// Enrichment added after creation, before serialization.
	Comments        []Comment `json:"comments,omitempty"`
	DownloadedFiles []string  `json:"downloaded_files,omitempty"`
}

// Degraded reports whether this post is a placeholder emitted on an
// irrecoverable shape mismatch.
func (p *Post) Degraded() bool {
	return p.ID == DegradedID
}

// TimestampOrZero treats a missing timestamp as 0 for sorting.
func (p *Post) TimestampOrZero() int64 {
	if p.Timestamp == nil {
		return 0
	}
	return *p.Timestamp
}
