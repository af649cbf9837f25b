// Package notify delivers outbound emails and webhooks. Every notification is
// persisted as a Delivery before it is sent, so failures stay visible and can
// be retried.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
)

type Channel string

const (
	ChannelEmail   Channel = "email"
	ChannelWebhook Channel = "webhook"
)

// Kinds of notification. Webhook kinds double as the webhook log type.
const (
	KindWelcomeEmail      = "welcome_email"
	KindStrategyReady     = "strategy_ready_email"
	KindAdminNewClient    = "admin_new_client_email"
	KindGiftEmail         = "gift_recommendation_email"
	KindOnboardingWebhook = "onboarding"
	KindOnboardingResent  = "onboarding_resent"
)

// Notification is what callers hand to a Dispatcher.
type Notification struct {
	Channel     Channel
	Kind        string
	ClientID    string
	Destination string
	Subject     string
	Body        string
	// Payload is the JSON document posted by webhook notifications.
	Payload any
}

// Message is one concrete send attempt.
type Message struct {
	Channel     Channel
	Destination string
	Subject     string
	Body        string
	Payload     json.RawMessage
}

// Receipt describes a successful send. StatusCode is zero for channels
// without one.
type Receipt struct {
	StatusCode int
}

type Sink interface {
	Send(ctx context.Context, m Message) (Receipt, error)
}

// StatusError is returned by HTTP sinks for non-2xx responses.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("notify: unexpected status %d", e.StatusCode)
}

// Router picks a sink by channel.
type Router map[Channel]Sink

func (r Router) Send(ctx context.Context, m Message) (Receipt, error) {
	s, ok := r[m.Channel]
	if !ok {
		return Receipt{}, fmt.Errorf("notify: no sink for channel %q", m.Channel)
	}
	return s.Send(ctx, m)
}
