package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// sender is the part of the bot API the notifier uses
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier sends messages to a user's linked Telegram chat
type TelegramNotifier struct {
	bot    sender
	logger *zap.Logger
}

// NewTelegramNotifier connects to the bot API with token
func NewTelegramNotifier(token string, logger *zap.Logger) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Telegram: %w", err)
	}
	logger.Info("telegram notifier enabled", zap.String("bot", bot.Self.UserName))
	return &TelegramNotifier{bot: bot, logger: logger}, nil
}

// Name implements Notifier
func (n *TelegramNotifier) Name() string { return "telegram" }

// Notify implements Notifier
func (n *TelegramNotifier) Notify(ctx context.Context, to Recipient, msg Message) error {
	if to.TelegramChatID == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	text := msg.Text()
	if msg.Subject != "" {
		text = msg.Subject + "\n\n" + text
	}
	if _, err := n.bot.Send(tgbotapi.NewMessage(to.TelegramChatID, text)); err != nil {
		return fmt.Errorf("failed to send telegram message to user %d: %w", to.UserID, err)
	}
	n.logger.Debug("telegram message sent", zap.Int64("user_id", to.UserID))
	return nil
}
