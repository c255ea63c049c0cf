package telegram

import "github.com/orgball2608/insta-feed-archiver/internal/domain"

// Client delivers run summaries out of band. A no-op implementation is used
// when no bot is configured.
type Client interface {
	SendRunSummary(summary *domain.RunSummary) error
	SendMessage(text string) error
}
