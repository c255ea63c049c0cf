// Package paginator accumulates raw timeline records across feed batches,
// suppressing intra-run duplicates and stopping on a bounded set of
// termination conditions.
package paginator

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/orgball2608/insta-feed-archiver/internal/instagram"
	"github.com/orgball2608/insta-feed-archiver/internal/normalizer"
	"github.com/orgball2608/insta-feed-archiver/pkg/formatter"
	"github.com/orgball2608/insta-feed-archiver/pkg/logger"
)

// FeedSource is the single capability the paginator needs from the feed
// client.
type FeedSource interface {
	FetchFeedBatch(ctx context.Context) (any, error)
}

type Config struct {
	// MaxAttempts bounds how many batches are requested per run.
	MaxAttempts int
	// Pause is the mandatory delay between batch requests. Sustained high
	// request rates trigger the feed source's own protective throttling, so
	// this is behavior, not tuning.
	Pause time.Duration
	// Sleep is injectable for tests; nil means time.Sleep.
	Sleep func(time.Duration)
}

func DefaultConfig() Config {
	return Config{
		MaxAttempts: 5,
		Pause:       time.Second,
	}
}

type Paginator struct {
	source FeedSource
	logger logger.Logger
	cfg    Config
}

func New(source FeedSource, log logger.Logger, cfg Config) *Paginator {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultConfig().MaxAttempts
	}
	if cfg.Sleep == nil {
		cfg.Sleep = time.Sleep
	}
	return &Paginator{
		source: source,
		logger: log.WithComponent("Paginator"),
		cfg:    cfg,
	}
}

// Paginate returns at most amount raw records. Pagination is best-effort: on
// a mid-loop fetch error it returns whatever accumulated so far.
func (p *Paginator) Paginate(ctx context.Context, amount int) []any {
	if amount <= 0 {
		return nil
	}

	var accumulated []any
	seen := make(map[string]struct{})

	for attempt := 1; attempt <= p.cfg.MaxAttempts && len(accumulated) < amount; attempt++ {
		p.logger.Info("Fetching feed batch", "attempt", attempt, "have", len(accumulated))

		envelope, err := p.source.FetchFeedBatch(ctx)
		if err != nil {
			p.logger.Warn("Feed batch failed, returning what we have", "attempt", attempt, "error", err)
			break
		}

		batch := Flatten(envelope)
		if len(batch) == 0 {
			p.logger.Info("No more posts available")
			break
		}

		added := 0
		for _, record := range batch {
			key := IdentityKey(record)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			accumulated = append(accumulated, record)
			added++
			p.preview(record)
		}

		if added == 0 {
			p.logger.Info("Batch contributed no new posts, stopping")
			break
		}
		p.logger.Info("Got new posts", "count", added)

		if len(accumulated) >= amount {
			break
		}

		if attempt < p.cfg.MaxAttempts {
			p.cfg.Sleep(p.cfg.Pause)
		}
	}

	if len(accumulated) > amount {
		accumulated = accumulated[:amount]
	}
	p.logger.Info("Retrieved posts", "total", len(accumulated))
	return accumulated
}

// preview logs a short display of a freshly accepted record. Failures here
// never matter; degraded records just show as such.
func (p *Paginator) preview(record any) {
	res := normalizer.Normalize(record)
	if res.Degraded() {
		p.logger.Debug("Post fetched (details hidden)", "error", res.Err)
		return
	}
	caption := ""
	if res.Post.Caption != nil {
		caption = formatter.Truncate(*res.Post.Caption, 50)
	}
	p.logger.Debug("New post",
		"user", res.Post.User,
		"type", res.Post.MediaTypeName,
		"caption", caption,
	)
}

// Flatten normalizes a response envelope to a flat record sequence. Envelopes
// arrive as a direct sequence, a mapping keyed by feed_items (each wrapping
// its record under media_or_ad), a mapping keyed by items, or a mapping with
// arbitrary keys whose values are the records.
func Flatten(envelope any) []any {
	switch env := envelope.(type) {
	case nil:
		return nil
	case []any:
		return env
	case []*instagram.MediaItem:
		records := make([]any, 0, len(env))
		for _, item := range env {
			records = append(records, item)
		}
		return records
	case []map[string]any:
		records := make([]any, 0, len(env))
		for _, item := range env {
			records = append(records, item)
		}
		return records
	case map[string]any:
		if items, ok := env["feed_items"].([]any); ok {
			var records []any
			for _, wrapped := range items {
				if m, ok := wrapped.(map[string]any); ok {
					if media, ok := m["media_or_ad"]; ok {
						records = append(records, media)
					}
				}
			}
			return records
		}
		if items, ok := env["items"].([]any); ok {
			return items
		}
		// Arbitrary keys: take the values, in stable key order.
		keys := make([]string, 0, len(env))
		for k := range env {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		records := make([]any, 0, len(keys))
		for _, k := range keys {
			records = append(records, env[k])
		}
		return records
	default:
		return []any{envelope}
	}
}

// IdentityKey extracts the dedup key of a raw record: id when present,
// otherwise pk. Keyless records share the empty key and collapse together.
func IdentityKey(record any) string {
	switch rec := record.(type) {
	case *instagram.MediaItem:
		if rec.ID != "" {
			return rec.ID
		}
		if rec.Pk != 0 {
			return pkString(rec.Pk)
		}
		return ""
	case map[string]any:
		if id := recordString(rec["id"]); id != "" {
			return id
		}
		return recordString(rec["pk"])
	default:
		return ""
	}
}

func pkString(pk int64) string {
	return strconv.FormatInt(pk, 10)
}

// recordString renders an identity value that may be a string or a JSON
// numeric flavor.
func recordString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case json.Number:
		return s.String()
	case float64:
		return strconv.FormatInt(int64(s), 10)
	case int64:
		return strconv.FormatInt(s, 10)
	case int:
		return strconv.Itoa(s)
	default:
		return fmt.Sprint(v)
	}
}
