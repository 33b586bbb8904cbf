// Package billing maps billing-provider webhook events onto local
// subscription state. It owns the event-kind dispatch and the
// subscription reconciliation logic; transport and persistence are
// injected.
package billing

import (
	"strings"
	"time"
)

// EventKind is the closed classification of billing event names. Deriving
// it once from the provider's event name keeps future event families a
// compile-time-visible gap instead of a silently-falling-through string
// check.
type EventKind int

const (
	KindUnknown EventKind = iota
	KindSubscriptionPayment
	KindSubscription
	KindOrder
	KindLicense
)

// String returns the kind name for logs.
func (k EventKind) String() string {
	switch k {
	case KindSubscriptionPayment:
		return "subscription_payment"
	case KindSubscription:
		return "subscription"
	case KindOrder:
		return "order"
	case KindLicense:
		return "license"
	default:
		return "unknown"
	}
}

// EventKindFromName classifies a provider event name. The payment prefix
// nests inside the subscription prefix, so it is checked first.
func EventKindFromName(name string) EventKind {
	switch {
	case strings.HasPrefix(name, "subscription_payment_"):
		return KindSubscriptionPayment
	case strings.HasPrefix(name, "subscription_"):
		return KindSubscription
	case strings.HasPrefix(name, "order_"):
		return KindOrder
	case strings.HasPrefix(name, "license_"):
		return KindLicense
	default:
		return KindUnknown
	}
}

// Event is the billing provider's webhook envelope. Meta and Data are
// pointers so the handler can reject envelopes that lack either object.
type Event struct {
	Meta *EventMeta `json:"meta"`
	Data *EventData `json:"data"`
}

// EventMeta carries the event name and checkout-time custom data.
type EventMeta struct {
	EventName  string     `json:"event_name"`
	CustomData CustomData `json:"custom_data"`
}

// CustomData is set at checkout and round-tripped by the provider; it
// links the subscription to the local user.
type CustomData struct {
	UserID string `json:"user_id"`
}

// EventData is the event's primary resource (a subscription for
// subscription_* events).
type EventData struct {
	ID         string          `json:"id"`
	Attributes EventAttributes `json:"attributes"`
}

// EventAttributes is the subset of subscription attributes this service
// consumes. The provider sends many more fields; they pass through into
// the stored raw body untouched.
type EventAttributes struct {
	OrderID               int64             `json:"order_id"`
	UserName              string            `json:"user_name"`
	UserEmail             string            `json:"user_email"`
	Status                string            `json:"status"`
	StatusFormatted       string            `json:"status_formatted"`
	RenewsAt              *time.Time        `json:"renews_at"`
	EndsAt                *time.Time        `json:"ends_at"`
	TrialEndsAt           *time.Time        `json:"trial_ends_at"`
	VariantID             int64             `json:"variant_id"`
	FirstSubscriptionItem *SubscriptionItem `json:"first_subscription_item"`
}

// SubscriptionItem identifies the priced line item on a subscription.
type SubscriptionItem struct {
	ID           int64 `json:"id"`
	PriceID      int64 `json:"price_id"`
	IsUsageBased bool  `json:"is_usage_based"`
}
