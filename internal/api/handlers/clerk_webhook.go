// Package handlers contains the HTTP handler implementations for the
// SaasterKit API.
//
// This file implements the identity-provider webhook endpoint. The route is
// NOT behind session auth -- it is called directly by the provider. Security
// is provided by verifying the svix signature headers against the shared
// webhook secret.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"saasterkit/internal/core"
	"saasterkit/internal/external"
	"saasterkit/internal/types"
)

// maxWebhookBodySize is the maximum allowed size of a webhook payload
// (64 KB). Provider payloads are small; this limit protects against abuse.
const maxWebhookBodySize = 64 * 1024

// Identity-provider event type constants prevent magic strings.
const (
	EventUserCreated = "user.created"
	EventUserDeleted = "user.deleted"
)

// ackResponse is the generic acknowledgement body for handled webhooks.
var ackResponse = map[string]string{"message": "Webhook received"}

// ClerkEventVerifier abstracts svix-scheme signature checking.
type ClerkEventVerifier interface {
	Verify(payload []byte, headers external.SvixHeaders, secret string) error
}

// UserReconcilerRepo is the data access contract for user reconciliation.
type UserReconcilerRepo interface {
	UpsertByClerkID(ctx context.Context, clerkUserID, email string) (*types.User, error)
	DeleteByClerkID(ctx context.Context, clerkUserID string) (*types.User, error)
}

// ClerkWebhookHandler ingests identity-provider user events and mirrors
// them into the local user table.
type ClerkWebhookHandler struct {
	verifier ClerkEventVerifier
	users    UserReconcilerRepo
	secret   string
	logger   *slog.Logger
}

// NewClerkWebhookHandler creates a new ClerkWebhookHandler with the
// provided dependencies.
func NewClerkWebhookHandler(
	verifier ClerkEventVerifier,
	users UserReconcilerRepo,
	secret string,
	logger *slog.Logger,
) *ClerkWebhookHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ClerkWebhookHandler{
		verifier: verifier,
		users:    users,
		secret:   secret,
		logger:   logger,
	}
}

// RegisterRoutes mounts the webhook endpoint. Webhook routes are public
// (no session middleware); the signature is the authentication.
func (h *ClerkWebhookHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Handle)
}

// clerkEvent is the provider's event envelope. Only the fields this
// service consumes are mapped.
type clerkEvent struct {
	Type string `json:"type"`
	Data struct {
		ID             string `json:"id"`
		EmailAddresses []struct {
			EmailAddress string `json:"email_address"`
		} `json:"email_addresses"`
	} `json:"data"`
}

// Handle processes an inbound identity-provider webhook:
//
//  1. Reads the raw body and the three svix headers.
//  2. Verifies the signature (secret unconfigured -> 500, headers missing
//     -> 403, verification failure -> 401).
//  3. Dispatches on the event type: user.created upserts by external user
//     id, user.deleted deletes by external user id, anything else is
//     acknowledged without a state change.
func (h *ClerkWebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxWebhookBodySize)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		core.Error(w, r, types.NewAppError(
			types.ErrCodeWebhookEventMalformed,
			"failed to read request body",
			err,
		))
		return
	}

	headers := external.SvixHeaders{
		ID:        r.Header.Get("svix-id"),
		Timestamp: r.Header.Get("svix-timestamp"),
		Signature: r.Header.Get("svix-signature"),
	}

	if err := h.verifier.Verify(payload, headers, h.secret); err != nil {
		core.Error(w, r, mapClerkVerifyError(err))
		return
	}

	var event clerkEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		core.Error(w, r, types.NewAppError(
			types.ErrCodeWebhookEventMalformed,
			"invalid webhook event JSON",
			err,
		))
		return
	}

	h.logger.InfoContext(r.Context(), "processing identity webhook event",
		"event_type", event.Type,
		"clerk_user_id", event.Data.ID,
	)

	switch event.Type {
	case EventUserCreated:
		h.handleUserCreated(w, r, &event)
	case EventUserDeleted:
		h.handleUserDeleted(w, r, &event)
	default:
		core.JSON(w, r, http.StatusOK, ackResponse)
	}
}

// handleUserCreated upserts the local user mirror. An event without an
// email address is rejected outright; an empty email never reaches the
// store.
func (h *ClerkWebhookHandler) handleUserCreated(w http.ResponseWriter, r *http.Request, event *clerkEvent) {
	var email string
	if len(event.Data.EmailAddresses) > 0 {
		email = event.Data.EmailAddresses[0].EmailAddress
	}
	if email == "" {
		core.Error(w, r, types.NewAppError(
			types.ErrCodeWebhookEventMalformed,
			"No email address provided",
			nil,
		))
		return
	}

	user, err := h.users.UpsertByClerkID(r.Context(), event.Data.ID, email)
	if err != nil {
		core.Error(w, r, err)
		return
	}
	core.JSON(w, r, http.StatusOK, user)
}

// handleUserDeleted removes the local user mirror and echoes the deleted
// record. Deleting an unknown user surfaces the repo's not_found error.
func (h *ClerkWebhookHandler) handleUserDeleted(w http.ResponseWriter, r *http.Request, event *clerkEvent) {
	user, err := h.users.DeleteByClerkID(r.Context(), event.Data.ID)
	if err != nil {
		core.Error(w, r, err)
		return
	}
	core.JSON(w, r, http.StatusOK, user)
}

// mapClerkVerifyError translates verifier sentinels onto the error
// taxonomy. Unknown verifier errors count as verification failures.
func mapClerkVerifyError(err error) *types.AppError {
	switch {
	case errors.Is(err, external.ErrSecretUnconfigured):
		return types.NewAppError(
			types.ErrCodeWebhookSecretUnconfigured,
			"You need a CLERK_WEBHOOK_SECRET in your environment",
			err,
		)
	case errors.Is(err, external.ErrSignatureMissing):
		return types.NewAppError(
			types.ErrCodeWebhookSignatureMissing,
			"Missing Signature Header",
			err,
		)
	default:
		return types.NewAppError(
			types.ErrCodeWebhookVerificationFailed,
			"Error verifying webhook",
			err,
		)
	}
}
