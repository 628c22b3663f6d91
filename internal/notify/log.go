package notify

import (
	"context"

	"go.uber.org/zap"
)

// LogNotifier writes messages to the log instead of delivering them
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a notifier that logs every message
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Name implements Notifier
func (n *LogNotifier) Name() string { return "log" }

// Notify implements Notifier
func (n *LogNotifier) Notify(_ context.Context, to Recipient, msg Message) error {
	n.logger.Info("reminder",
		zap.Int64("user_id", to.UserID),
		zap.String("subject", msg.Subject),
		zap.Strings("lines", msg.Lines))
	return nil
}
