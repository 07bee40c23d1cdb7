package mailer

import "context"

type Message struct {
	To      string
	Subject string
	Text    string
}

// Mailer delivers a single plain-text message.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}
