package telegramimpl

import (
	"strings"
	"testing"

	"github.com/orgball2608/insta-feed-archiver/internal/domain"
	"github.com/orgball2608/insta-feed-archiver/pkg/config"
	"github.com/orgball2608/insta-feed-archiver/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatSummaryEscapesMarkdownV2(t *testing.T) {
	got := formatSummary(&domain.RunSummary{
		Processed:         1234,
		Saved:             3,
		SkippedDuplicates: 1,
		Photos:            2,
		Videos:            1,
		SnapshotFile:      "out/feed_enhanced_20260824_120000_no_ads.json",
	})

	assert.True(t, strings.HasPrefix(got, "📥 *Feed archive run finished*"))
	assert.Contains(t, got, "1,234")
	assert.Contains(t, got, `\|`)
	assert.Contains(t, got, `feed\_enhanced\_20260824\_120000\_no\_ads\.json`)
	// Every MarkdownV2-special character in the body must be escaped, or the
	// bot API rejects the message.
	assert.NotRegexp(t, `[^\\][_|.!]`, strings.TrimPrefix(got, "📥 *Feed archive run finished*"))
}

func TestFormatSummaryOmitsZeroSections(t *testing.T) {
	got := formatSummary(&domain.RunSummary{Processed: 1, Saved: 1, SnapshotFile: "x.json"})

	assert.NotContains(t, got, "Duplicates skipped")
	assert.NotContains(t, got, "Sponsored skipped")
	assert.NotContains(t, got, "Comments fetched")
	assert.NotContains(t, got, "Files downloaded")
}

func TestNewWithoutTokenReturnsNoop(t *testing.T) {
	client, err := New(Opts{
		Config: &config.Config{},
		Logger: logger.New(logger.Opts{}),
	})
	require.NoError(t, err)

	_, isNoop := client.(*Noop)
	assert.True(t, isNoop)
	assert.NoError(t, client.SendRunSummary(&domain.RunSummary{}))
	assert.NoError(t, client.SendMessage("anything"))
}
