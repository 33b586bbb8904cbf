// Package types defines the domain entities, error taxonomy, and shared
// contracts for the SaasterKit backend. It has no dependencies on other
// internal packages so that every layer can import it freely.
package types

import (
	"encoding/json"
	"time"
)

// TodoCategory is the closed set of todo item categories.
type TodoCategory string

const (
	CategoryWork     TodoCategory = "WORK"
	CategoryPersonal TodoCategory = "PERSONAL"
	CategoryShopping TodoCategory = "SHOPPING"
	CategoryOther    TodoCategory = "OTHER"
)

// Valid reports whether the category is one of the known values.
func (c TodoCategory) Valid() bool {
	switch c {
	case CategoryWork, CategoryPersonal, CategoryShopping, CategoryOther:
		return true
	}
	return false
}

// User is a local mirror of an identity-provider account. Rows are created
// and deleted exclusively by inbound user.* webhook events; the provider's
// user id is the external key.
type User struct {
	ID          string    `json:"id"`
	ClerkUserID string    `json:"clerkUserId"`
	Email       string    `json:"email"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TodoItem is the CRUD resource owned by authenticated callers.
type TodoItem struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description *string      `json:"description"`
	Category    TodoCategory `json:"category"`
	DueDate     time.Time    `json:"dueDate"`
	Done        bool         `json:"done"`
	UserID      string       `json:"userId"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// WebhookEvent is the audit record for every inbound billing webhook.
// The row is written with Processed=false before any business processing
// and updated afterwards; a row left at Processed=false marks an event an
// operator can replay.
type WebhookEvent struct {
	ID              string          `json:"id"`
	EventName       string          `json:"eventName"`
	Processed       bool            `json:"processed"`
	Body            json.RawMessage `json:"body"`
	ProcessingError string          `json:"processingError"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// SubscriptionPlan maps the billing provider's variant id to a local plan.
// The catalog is maintained by an out-of-band administrative process; this
// service only reads it.
type SubscriptionPlan struct {
	ID        string `json:"id"`
	VariantID int64  `json:"variantId"`
	Name      string `json:"name"`
}

// UserSubscription is the local subscription record, upserted on every
// relevant billing subscription event. LemonSqueezyID is the unique upsert
// key; there is exactly one row per external subscription id at all times.
type UserSubscription struct {
	ID                 string     `json:"id"`
	LemonSqueezyID     string     `json:"lemonSqueezyId"`
	OrderID            int64      `json:"orderId"`
	Name               string     `json:"name"`
	Email              string     `json:"email"`
	Status             string     `json:"status"`
	StatusFormatted    string     `json:"statusFormatted"`
	RenewsAt           *time.Time `json:"renewsAt"`
	EndsAt             *time.Time `json:"endsAt"`
	TrialEndsAt        *time.Time `json:"trialEndsAt"`
	Price              string     `json:"price"`
	IsPaused           bool       `json:"isPaused"`
	SubscriptionItemID string     `json:"subscriptionItemId"`
	IsUsageBased       bool       `json:"isUsageBased"`
	UserID             string     `json:"userId"`
	PlanID             string     `json:"planId"`
}

// PriceInfo carries the price attributes returned by the billing provider's
// price endpoint. Either field may be absent in the provider response.
type PriceInfo struct {
	UnitPrice        *int64  `json:"unit_price"`
	UnitPriceDecimal *string `json:"unit_price_decimal"`
}
