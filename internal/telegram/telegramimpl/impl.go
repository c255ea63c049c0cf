package telegramimpl

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/orgball2608/insta-feed-archiver/internal/domain"
	"github.com/orgball2608/insta-feed-archiver/internal/telegram"
	"github.com/orgball2608/insta-feed-archiver/pkg/config"
	"github.com/orgball2608/insta-feed-archiver/pkg/formatter"
	"github.com/orgball2608/insta-feed-archiver/pkg/logger"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In

	Config *config.Config
	Logger logger.Logger
}

type TelegramImpl struct {
	TgBot  *tgbotapi.BotAPI
	Logger logger.Logger
	Config *config.Config
}

var _ telegram.Client = (*TelegramImpl)(nil)

// New builds the notifier, or a no-op client when no bot token is configured.
func New(opts Opts) (telegram.Client, error) {
	if !opts.Config.TelegramEnabled() {
		opts.Logger.Info("Telegram not configured, run summaries stay local")
		return &Noop{}, nil
	}

	tgBot, err := tgbotapi.NewBotAPI(opts.Config.Telegram.Token)
	if err != nil {
		opts.Logger.Error("Error creating bot", "error", err)
		return nil, err
	}

	return &TelegramImpl{
		TgBot:  tgBot,
		Logger: opts.Logger.WithComponent("Telegram"),
		Config: opts.Config,
	}, nil
}

func (tg *TelegramImpl) SendMessage(text string) error {
	msg := tgbotapi.NewMessage(tg.Config.Telegram.Chat, text)
	sent, err := tg.TgBot.Send(msg)
	if err != nil {
		tg.Logger.Error("Error sending message",
			"chatID", tg.Config.Telegram.Chat,
			"error", err)
		return fmt.Errorf("failed to send message: %w", err)
	}

	tg.Logger.Info("Message sent",
		"chatID", tg.Config.Telegram.Chat,
		"messageID", sent.MessageID)
	return nil
}

// SendRunSummary posts the run summary as a MarkdownV2 message; dynamic
// values are escaped so filenames with underscores survive parsing.
func (tg *TelegramImpl) SendRunSummary(summary *domain.RunSummary) error {
	msg := tgbotapi.NewMessage(tg.Config.Telegram.Chat, formatSummary(summary))
	msg.ParseMode = tgbotapi.ModeMarkdownV2

	sent, err := tg.TgBot.Send(msg)
	if err != nil {
		tg.Logger.Error("Error sending run summary",
			"chatID", tg.Config.Telegram.Chat,
			"error", err)
		return fmt.Errorf("failed to send run summary: %w", err)
	}

	tg.Logger.Info("Run summary sent",
		"chatID", tg.Config.Telegram.Chat,
		"messageID", sent.MessageID)
	return nil
}

func formatSummary(s *domain.RunSummary) string {
	var b strings.Builder
	b.WriteString("📥 *Feed archive run finished*\n\n")
	fmt.Fprintf(&b, "Processed: %s\n", formatter.FormatNumber(s.Processed))
	fmt.Fprintf(&b, "Saved: %s\n", formatter.FormatNumber(s.Saved))
	if s.SkippedDuplicates > 0 {
		fmt.Fprintf(&b, "Duplicates skipped: %s\n", formatter.FormatNumber(s.SkippedDuplicates))
	}
	if s.SkippedSponsored > 0 {
		fmt.Fprintf(&b, "Sponsored skipped: %s\n", formatter.FormatNumber(s.SkippedSponsored))
	}
	fmt.Fprintf(&b, "Photos: %d \\| Videos: %d \\| Albums: %d\n", s.Photos, s.Videos, s.Albums)
	if s.CommentsFetched > 0 {
		fmt.Fprintf(&b, "Comments fetched: %s\n", formatter.FormatNumber(s.CommentsFetched))
	}
	if s.FilesDownloaded > 0 {
		fmt.Fprintf(&b, "Files downloaded: %s\n", formatter.FormatNumber(s.FilesDownloaded))
	}
	fmt.Fprintf(&b, "Snapshot: %s", formatter.EscapeMarkdownV2(s.SnapshotFile))
	return b.String()
}

// Noop drops every notification.
type Noop struct{}

var _ telegram.Client = (*Noop)(nil)

func (*Noop) SendRunSummary(*domain.RunSummary) error { return nil }
func (*Noop) SendMessage(string) error                { return nil }
