// Package notify delivers password-reset links to users. Delivery itself
// happens outside this process: senders hand messages to a broker or a log.
package notify

import (
	"context"
	"errors"
)

// Channel names the medium a message is meant for.
type Channel string

const (
	WhatsApp Channel = "whatsapp"
	Email    Channel = "email"
)

var ErrNoDestination = errors.New("notify: empty destination")

// Sender delivers a text message to a destination (phone number or email
// address). A nil error means the message was accepted for delivery.
type Sender interface {
	Send(ctx context.Context, destination, message string) error
}

// Message is the payload handed to delivery workers.
type Message struct {
	Channel     Channel `json:"channel"`
	Destination string  `json:"destination"`
	Body        string  `json:"body"`
	SentAt      int64   `json:"sent_at"`
}
