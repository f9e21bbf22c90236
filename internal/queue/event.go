// Package queue defines message payloads exchanged over the message broker.
package queue

// EmailEvent is published when the auth flow needs the mailer worker to
// send a transactional email (welcome mail on signup). The worker owns
// templates and delivery; this service only emits the event.
type EmailEvent struct {
	Kind       string `json:"kind"` // "welcome"
	UserID     int64  `json:"user_id"`
	Email      string `json:"email"`
	Name       string `json:"name,omitempty"`
	OccurredAt string `json:"occurred_at"`
}
