// Package notify delivers best-effort plain-text notifications to an
// outbound webhook. Delivery failure is logged and never propagated;
// nothing in the core depends on a notification arriving.
package notify

import "context"

// Notifier is the outbound notification sink
type Notifier interface {
	// Notify delivers one message, best effort
	Notify(ctx context.Context, message string)
}

// Discard is a Notifier that drops everything
type Discard struct{}

// Notify implements Notifier
func (Discard) Notify(ctx context.Context, message string) {}
