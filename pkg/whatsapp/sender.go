// Package whatsapp is the outbound messaging gateway. The core only depends
// on the Sender interface; concrete senders (Twilio, Kafka fan-out, log) are
// selected by configuration. A nil error from Send means the message was
// accepted by the provider. Asynchronous delivery receipts are not modeled.
package whatsapp

import "context"

type Message struct {
	To   string `json:"to"`
	Body string `json:"body"`
	// ID carries the persisted message row so out-of-process senders can
	// update its delivery status.
	ID string `json:"id,omitempty"`
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type MessageOption func(*Message)

func NewMessage(to, body string, opts ...MessageOption) Message {
	m := Message{To: to, Body: body}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

func WithMessageID(id string) MessageOption {
	return func(m *Message) {
		m.ID = id
	}
}
