package reminder

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// LogNotifier writes digests to a logger
type LogNotifier struct {
	logger *log.Logger
}

// NewLogNotifier logs digests to w
func NewLogNotifier(w io.Writer) *LogNotifier {
	return &LogNotifier{logger: log.NewWithOptions(w, log.Options{
		Prefix:          "reminder",
		ReportTimestamp: true,
	})}
}

// Notify implements Notifier
func (n *LogNotifier) Notify(_ context.Context, d Digest) error {
	n.logger.Print(Format(d))
	return nil
}

type telegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier sends digests to a Telegram chat
type TelegramNotifier struct {
	bot    telegramSender
	chatID int64
}

// NewTelegramNotifier connects to the Bot API with token
func NewTelegramNotifier(token string, chatID int64) (*TelegramNotifier, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram bot token is not set")
	}
	if chatID == 0 {
		return nil, fmt.Errorf("telegram chat id is not set")
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("connect telegram bot: %w", err)
	}
	return &TelegramNotifier{bot: bot, chatID: chatID}, nil
}

// Notify implements Notifier
func (n *TelegramNotifier) Notify(_ context.Context, d Digest) error {
	msg := tgbotapi.NewMessage(n.chatID, Format(d))
	msg.DisableWebPagePreview = true
	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("send telegram reminder: %w", err)
	}
	return nil
}
