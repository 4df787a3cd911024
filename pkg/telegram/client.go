package telegram

import (
	"errors"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Notifier defines the interface for a Telegram notifier.
type Notifier interface {
	SendMessage(text string) error
}

// client is an implementation of Notifier.
type client struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NewClient creates a new Telegram notifier client.
func NewClient(botToken string, chatID int64) (Notifier, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, err
	}
	return &client{
		bot:    bot,
		chatID: chatID,
	}, nil
}

// SendMessage sends a message to the configured Telegram chat.
func (c *client) SendMessage(text string) error {
	msg := tgbotapi.NewMessage(c.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	_, err := c.bot.Send(msg)
	return err
}

// ErrNotConfigured is returned by the disabled notifier on every send.
var ErrNotConfigured = errors.New("telegram notifier is not configured")

type disabledNotifier struct{}

// NewDisabledNotifier returns a Notifier that rejects every send. Used when
// TELEGRAM_TOKEN / TELEGRAM_CHAT_ID are unset so the rest of the service
// can run; delivery errors are logged per event and never abort a cycle.
func NewDisabledNotifier() Notifier {
	return disabledNotifier{}
}

func (disabledNotifier) SendMessage(string) error {
	return ErrNotConfigured
}
