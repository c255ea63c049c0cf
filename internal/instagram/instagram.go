package instagram

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrTwoFactorRequired signals that login needs one additional
	// user-supplied verification code. It is recoverable, not a hard failure.
	ErrTwoFactorRequired = errors.New("two-factor verification code required")

	// ErrBadCredentials signals a login rejected outright.
	ErrBadCredentials = errors.New("invalid username or password")
)

// MediaUser is the author block carried by a feed record.
type MediaUser struct {
	Pk            int64
	Username      string
	FullName      string
	IsVerified    bool
	ProfilePicURL string
	Biography     string
}

// SponsorUser is one paid-partnership tag on a feed record.
type SponsorUser struct {
	Pk       int64
	Username string
}

// MediaResource is one item inside an album.
type MediaResource struct {
	MediaType    int
	ThumbnailURL string
	VideoURL     string
}

// MediaItem is the structured shape of one feed record, as produced by the
// client adapter. Loosely-structured records travel as map[string]any instead.
type MediaItem struct {
	ID                string
	Pk                int64
	Code              string
	User              MediaUser
	CaptionText       string
	LikeCount         int
	CommentCount      int
	TakenAt           time.Time // zero means unknown
	MediaType         int
	ThumbnailURL      string
	VideoURL          string
	Resources         []MediaResource
	LocationName      string
	IsPaidPartnership bool
	SponsorTags       []SponsorUser
	FilterType        *int64
	HasAudio          *bool
}

// CommentItem is one raw comment as returned by the comment capability.
type CommentItem struct {
	Username     string
	Text         string
	CreatedAtUTC time.Time // zero means unknown
	LikeCount    int
}

// Client is the external feed-source collaborator: authentication transport,
// request execution and rate limiting live behind it.
type Client interface {
	// Login authenticates, reusing a persisted session when possible and
	// surfacing ErrTwoFactorRequired when a challenge cannot be completed.
	Login(ctx context.Context) error

	// Username reports the identity the session belongs to.
	Username() string

	// FetchFeedBatch requests one timeline batch. The envelope may be a direct
	// sequence or one of several differently-keyed mappings; the paginator
	// flattens it.
	FetchFeedBatch(ctx context.Context) (any, error)

	// MediaInfo fetches the full-detail record for a media primary key,
	// including per-item asset URLs for albums.
	MediaInfo(ctx context.Context, pk int64) (*MediaItem, error)

	// MediaComments fetches up to limit comments for a media id.
	MediaComments(ctx context.Context, mediaID string, limit int) ([]CommentItem, error)

	// DownloadAsset writes exactly one file whose name starts with stem; the
	// extension is chosen by the writer based on the asset's content type.
	DownloadAsset(ctx context.Context, url, stem string) error
}
