package telegram

import (
	"fmt"

	"gopkg.in/telebot.v3"
)

// AdminNotifier implements alert.Notifier by messaging a single admin chat
// through a send-only Telegram bot.
type AdminNotifier struct {
	bot    *telebot.Bot
	chatID int64
}

func NewAdminNotifier(token string, chatID int64) (*AdminNotifier, error) {
	bot, err := telebot.NewBot(telebot.Settings{Token: token})
	if err != nil {
		return nil, fmt.Errorf("error creating Telegram bot: %w", err)
	}
	return &AdminNotifier{bot: bot, chatID: chatID}, nil
}

// Notify sends a text alert to the configured admin chat.
func (n *AdminNotifier) Notify(text string) error {
	_, err := n.bot.Send(&telebot.User{ID: n.chatID}, text)
	return err
}
