package shopping

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"mealcraft"
	"mealcraft/slack"
	"mealcraft/storage"
)

// WriterClipboard writes the text to an io.Writer, e.g. stdout.
type WriterClipboard struct {
	w io.Writer
}

func NewWriterClipboard(w io.Writer) *WriterClipboard {
	return &WriterClipboard{w: w}
}

func (c *WriterClipboard) Write(ctx context.Context, text string) error {
	if _, err := io.WriteString(c.w, text); err != nil {
		return fmt.Errorf("failed to write shopping list: %w", err)
	}
	return nil
}

// StorageClipboard saves the text as a blob (local file or S3 object).
type StorageClipboard struct {
	sink storage.Sink
}

func NewStorageClipboard(sink storage.Sink) *StorageClipboard {
	return &StorageClipboard{sink: sink}
}

func (c *StorageClipboard) Write(ctx context.Context, text string) error {
	if err := c.sink.Save(ctx, []byte(text)); err != nil {
		return fmt.Errorf("failed to save shopping list: %w", err)
	}
	return nil
}

// SlackClipboard posts the text to a Slack channel.
type SlackClipboard struct {
	client  mealcraft.SlackClient
	channel string
}

func NewSlackClipboard(client mealcraft.SlackClient, channel string) *SlackClipboard {
	return &SlackClipboard{client: client, channel: channel}
}

func (c *SlackClipboard) Write(ctx context.Context, text string) error {
	if err := c.client.PostSnippet(ctx, c.channel, Title, text); err != nil {
		return fmt.Errorf("failed to post shopping list to slack: %w", err)
	}
	return nil
}

type telegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramClipboard sends the text to a Telegram chat.
type TelegramClipboard struct {
	bot    telegramSender
	chatID int64
}

func NewTelegramClipboard(bot telegramSender, chatID int64) *TelegramClipboard {
	return &TelegramClipboard{bot: bot, chatID: chatID}
}

func (c *TelegramClipboard) Write(ctx context.Context, text string) error {
	if _, err := c.bot.Send(tgbotapi.NewMessage(c.chatID, text)); err != nil {
		return fmt.Errorf("failed to send shopping list to telegram: %w", err)
	}
	return nil
}

// NewClipboard builds the destination selected by cfg.Sink. s3Client is only
// needed for the s3 sink and may be nil otherwise.
func NewClipboard(cfg mealcraft.ExportConfig, s3Client storage.S3API) (mealcraft.Clipboard, error) {
	switch cfg.Sink {
	case "", "stdout":
		return NewWriterClipboard(os.Stdout), nil
	case "file":
		return NewStorageClipboard(storage.NewFileObject(cfg.FilePath)), nil
	case "s3":
		if cfg.S3Bucket == "" || s3Client == nil {
			return nil, fmt.Errorf("s3 sink requires SHOPPING_LIST_S3_BUCKET and an S3 client")
		}
		return NewStorageClipboard(storage.NewS3Object(s3Client, cfg.S3Bucket, cfg.S3Key)), nil
	case "slack":
		if cfg.SlackWebhookURL == "" {
			return nil, fmt.Errorf("slack sink requires SLACK_WEBHOOK_URL")
		}
		return NewSlackClipboard(slack.NewClient(cfg.SlackWebhookURL, http.DefaultClient), cfg.SlackChannel), nil
	case "telegram":
		if cfg.TelegramBotToken == "" || cfg.TelegramChatID == 0 {
			return nil, fmt.Errorf("telegram sink requires TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID")
		}
		bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
		if err != nil {
			return nil, fmt.Errorf("failed to create telegram bot: %w", err)
		}
		slog.Info("SHOPPING: Telegram sink ready", "bot", bot.Self.UserName, "chat_id", cfg.TelegramChatID)
		return NewTelegramClipboard(bot, cfg.TelegramChatID), nil
	default:
		return nil, fmt.Errorf("unknown shopping list sink %q", cfg.Sink)
	}
}
