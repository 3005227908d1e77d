// Package notify delivers push notifications to staff devices.
package notify

import "context"

// Push is one notification addressed to a set of device tokens.
type Push struct {
	Title  string
	Body   string
	Tokens []string
	Data   map[string]string
}

// Sender delivers a push.
type Sender interface {
	Send(ctx context.Context, p Push) error
}

// NoopSender drops every push. Used when no messaging credentials are set.
type NoopSender struct{}

func (NoopSender) Send(context.Context, Push) error { return nil }
