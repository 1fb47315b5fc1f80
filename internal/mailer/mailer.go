package mailer

import "context"

// Message is a single outbound transactional email.
type Message struct {
	To       string
	Subject  string
	HTML     string
	Template string
}

// Sender delivers transactional email. Implementations are best-effort:
// callers log failures and move on, they never fail the triggering request.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}
