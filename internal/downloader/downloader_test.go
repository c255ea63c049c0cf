package downloader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/orgball2608/insta-feed-archiver/internal/domain"
	"github.com/orgball2608/insta-feed-archiver/internal/instagram"
	"github.com/orgball2608/insta-feed-archiver/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeMedia simulates the asset writer: it appends an extension the caller
// cannot know in advance, and can fail a URL a configured number of times.
type fakeMedia struct {
	ext      string
	failures map[string]int // url -> failing attempts before success
	attempts map[string]int

	info      *instagram.MediaItem
	infoErr   error
	infoCalls []int64
}

func (f *fakeMedia) MediaInfo(_ context.Context, pk int64) (*instagram.MediaItem, error) {
	f.infoCalls = append(f.infoCalls, pk)
	return f.info, f.infoErr
}

func (f *fakeMedia) DownloadAsset(_ context.Context, url, stem string) error {
	if f.attempts == nil {
		f.attempts = make(map[string]int)
	}
	f.attempts[url]++
	if f.attempts[url] <= f.failures[url] {
		return errors.New("transient failure")
	}
	ext := f.ext
	if ext == "" {
		ext = ".jpg"
	}
	return os.WriteFile(stem+ext, []byte("asset"), 0644)
}

func testLogger() logger.Logger {
	return logger.New(logger.Opts{})
}

func fastConfig() Config {
	return Config{MaxRetries: 2, RetryInterval: time.Millisecond}
}

func strPtr(s string) *string { return &s }

func TestDownloadPhoto(t *testing.T) {
	dir := t.TempDir()
	client := &fakeMedia{}
	d := New(client, testLogger(), fastConfig())

	post := &domain.Post{
		ID:            "11",
		User:          "alice",
		MediaTypeName: domain.MediaNamePhoto,
		ThumbnailURL:  strPtr("https://cdn.example.com/a.jpg"),
	}

	files, err := d.Download(context.Background(), post, dir)
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(dir, "alice_11.jpg")}, files)
	assert.FileExists(t, files[0])
}

func TestDownloadVideoExtensionRecoveredByGlob(t *testing.T) {
	dir := t.TempDir()
	client := &fakeMedia{ext: ".mp4"}
	d := New(client, testLogger(), fastConfig())

	post := &domain.Post{
		ID:            "12",
		User:          "alice",
		MediaTypeName: domain.MediaNameVideo,
		VideoURL:      strPtr("https://cdn.example.com/v"),
	}

	files, err := d.Download(context.Background(), post, dir)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, filepath.Join(dir, "alice_12.mp4"), files[0])
}

func TestDownloadMissingURLSkips(t *testing.T) {
	client := &fakeMedia{}
	d := New(client, testLogger(), fastConfig())

	post := &domain.Post{ID: "13", User: "alice", MediaTypeName: domain.MediaNamePhoto}

	files, err := d.Download(context.Background(), post, t.TempDir())
	require.NoError(t, err)
	assert.Nil(t, files)
	assert.Empty(t, client.attempts)
}

func TestDownloadRetriesThenSucceeds(t *testing.T) {
	dir := t.TempDir()
	url := "https://cdn.example.com/flaky.jpg"
	client := &fakeMedia{failures: map[string]int{url: 1}}
	d := New(client, testLogger(), fastConfig())

	post := &domain.Post{
		ID:            "14",
		User:          "alice",
		MediaTypeName: domain.MediaNamePhoto,
		ThumbnailURL:  &url,
	}

	files, err := d.Download(context.Background(), post, dir)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, 2, client.attempts[url])
}

func TestDownloadRetryExhausted(t *testing.T) {
	url := "https://cdn.example.com/dead.jpg"
	client := &fakeMedia{failures: map[string]int{url: 10}}
	d := New(client, testLogger(), fastConfig())

	post := &domain.Post{
		ID:            "15",
		User:          "alice",
		MediaTypeName: domain.MediaNamePhoto,
		ThumbnailURL:  &url,
	}

	files, err := d.Download(context.Background(), post, t.TempDir())
	require.Error(t, err)
	assert.Nil(t, files)
	assert.Equal(t, 2, client.attempts[url], "MaxRetries counts total attempts, first included")
}

func TestDownloadAlbumPartialFailure(t *testing.T) {
	dir := t.TempDir()
	failing := "https://cdn.example.com/item2.mp4"
	client := &fakeMedia{
		failures: map[string]int{failing: 10},
		info: &instagram.MediaItem{
			Resources: []instagram.MediaResource{
				{MediaType: domain.MediaTypePhoto, ThumbnailURL: "https://cdn.example.com/item1.jpg"},
				{MediaType: domain.MediaTypeVideo, VideoURL: failing},
				{MediaType: domain.MediaTypePhoto, ThumbnailURL: "https://cdn.example.com/item3.jpg"},
			},
		},
	}
	d := New(client, testLogger(), fastConfig())

	post := &domain.Post{
		ID:            "314159_42",
		User:          "alice",
		MediaTypeName: domain.MediaNameAlbum,
	}

	files, err := d.Download(context.Background(), post, dir)

	require.Error(t, err, "the failed item surfaces as the cause of the partial result")
	assert.Contains(t, err.Error(), "item 2")
	require.Equal(t, []string{
		filepath.Join(dir, "alice_314159_42_1.jpg"),
		filepath.Join(dir, "alice_314159_42_3.jpg"),
	}, files, "remaining album items still download")
	assert.Equal(t, []int64{314159}, client.infoCalls, "pk derived from the numeric prefix of the post id")
}

func TestDownloadAlbumSkipsItemsWithoutURL(t *testing.T) {
	dir := t.TempDir()
	client := &fakeMedia{
		info: &instagram.MediaItem{
			Resources: []instagram.MediaResource{
				{MediaType: domain.MediaTypePhoto},
				{MediaType: domain.MediaTypePhoto, ThumbnailURL: "https://cdn.example.com/ok.jpg"},
			},
		},
	}
	d := New(client, testLogger(), fastConfig())

	post := &domain.Post{ID: "271828_9", User: "bob", MediaTypeName: domain.MediaNameAlbum}

	files, err := d.Download(context.Background(), post, dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "bob_271828_9_2.jpg")}, files)
}

func TestDownloadAlbumDetailFetchFailure(t *testing.T) {
	client := &fakeMedia{infoErr: errors.New("gone")}
	d := New(client, testLogger(), fastConfig())

	post := &domain.Post{ID: "1_2", User: "alice", MediaTypeName: domain.MediaNameAlbum}

	files, err := d.Download(context.Background(), post, t.TempDir())
	require.NoError(t, err, "discovery failures are logged and skipped")
	assert.Nil(t, files)
}

func TestDownloadAlbumUnparsableID(t *testing.T) {
	client := &fakeMedia{}
	d := New(client, testLogger(), fastConfig())

	post := &domain.Post{ID: "not-numeric", User: "alice", MediaTypeName: domain.MediaNameAlbum}

	files, err := d.Download(context.Background(), post, t.TempDir())
	require.NoError(t, err)
	assert.Nil(t, files)
	assert.Empty(t, client.infoCalls)
}

func TestDownloadUnknownMediaType(t *testing.T) {
	client := &fakeMedia{}
	d := New(client, testLogger(), fastConfig())

	post := &domain.Post{ID: "16", User: "alice", MediaTypeName: "42"}

	files, err := d.Download(context.Background(), post, t.TempDir())
	require.NoError(t, err)
	assert.Nil(t, files)
	assert.Empty(t, client.attempts)
}
