// Package notify delivers reminder messages over email, Telegram or the log.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Recipient is where a message goes. Notifiers skip recipients that lack
// the address they need.
type Recipient struct {
	UserID         int64
	Name           string
	Email          string
	TelegramChatID int64
}

// Message is a plain text notification
type Message struct {
	Subject string
	Lines   []string
}

// Text renders the message body
func (m Message) Text() string {
	return strings.Join(m.Lines, "\n")
}

// Notifier delivers a message to one recipient
type Notifier interface {
	Name() string
	Notify(ctx context.Context, to Recipient, msg Message) error
}

// Multi fans a message out to every notifier and joins their errors
type Multi []Notifier

// Name implements Notifier
func (m Multi) Name() string { return "multi" }

// Notify implements Notifier. A failing notifier does not stop the others.
func (m Multi) Notify(ctx context.Context, to Recipient, msg Message) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, to, msg); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", n.Name(), err))
		}
	}
	return errors.Join(errs...)
}
