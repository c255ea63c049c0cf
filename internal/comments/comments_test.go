package comments

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/orgball2608/insta-feed-archiver/internal/instagram"
	"github.com/orgball2608/insta-feed-archiver/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	items []instagram.CommentItem
	err   error

	gotMediaID string
	gotLimit   int
}

func (f *fakeSource) MediaComments(_ context.Context, mediaID string, limit int) ([]instagram.CommentItem, error) {
	f.gotMediaID = mediaID
	f.gotLimit = limit
	return f.items, f.err
}

func testLogger() logger.Logger {
	return logger.New(logger.Opts{})
}

func TestFetchNormalizes(t *testing.T) {
	created := time.Date(2026, 8, 20, 15, 30, 0, 0, time.FixedZone("CEST", 2*3600))
	source := &fakeSource{items: []instagram.CommentItem{
		{Username: "alice", Text: "nice shot", CreatedAtUTC: created, LikeCount: 3},
		{Username: "bob", Text: "🔥"},
	}}
	f := New(source, testLogger())

	got := f.Fetch(context.Background(), "123_456", 10)

	require.Len(t, got, 2)
	assert.Equal(t, "123_456", source.gotMediaID)
	assert.Equal(t, 10, source.gotLimit)

	assert.Equal(t, "alice", got[0].User)
	assert.Equal(t, "nice shot", got[0].Text)
	assert.Equal(t, 3, got[0].Likes)
	require.NotNil(t, got[0].CreatedAt)
	assert.Equal(t, created.UTC().Format(time.RFC3339), *got[0].CreatedAt)

	assert.Equal(t, "bob", got[1].User)
	assert.Nil(t, got[1].CreatedAt, "zero creation time stays null")
	assert.Zero(t, got[1].Likes)
}

func TestFetchEmptyOnError(t *testing.T) {
	source := &fakeSource{err: errors.New("comments unavailable")}
	f := New(source, testLogger())

	got := f.Fetch(context.Background(), "1", 10)

	assert.NotNil(t, got, "failures degrade to an empty sequence, never nil")
	assert.Empty(t, got)
}

func TestFetchTruncatesToLimit(t *testing.T) {
	source := &fakeSource{items: []instagram.CommentItem{
		{Username: "a"}, {Username: "b"}, {Username: "c"},
	}}
	f := New(source, testLogger())

	got := f.Fetch(context.Background(), "1", 2)

	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].User)
	assert.Equal(t, "b", got[1].User)
}

func TestFetchDefaultsLimit(t *testing.T) {
	source := &fakeSource{}
	f := New(source, testLogger())

	f.Fetch(context.Background(), "1", 0)

	assert.Equal(t, DefaultMaxComments, source.gotLimit)
}
