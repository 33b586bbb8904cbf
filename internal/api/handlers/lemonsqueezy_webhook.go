package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"saasterkit/internal/billing"
	"saasterkit/internal/core"
	"saasterkit/internal/external"
	"saasterkit/internal/types"
)

// BillingEventVerifier abstracts x-signature HMAC checking.
type BillingEventVerifier interface {
	Verify(payload []byte, signatureHeader, secret string) error
}

// WebhookEventStore records billing events for audit and replay.
type WebhookEventStore interface {
	Create(ctx context.Context, eventName string, body json.RawMessage) (string, error)
	MarkProcessed(ctx context.Context, id, processingError string) error
}

// BillingReconciler applies a verified billing event to local state.
type BillingReconciler interface {
	Process(ctx context.Context, event *billing.Event) types.Outcome
}

// LemonSqueezyWebhookHandler ingests billing-provider webhooks: it
// verifies the signature, records an audit row, runs reconciliation and
// stamps the audit row with the result.
type LemonSqueezyWebhookHandler struct {
	verifier   BillingEventVerifier
	events     WebhookEventStore
	reconciler BillingReconciler
	secret     string
	logger     *slog.Logger
}

// NewLemonSqueezyWebhookHandler creates a new LemonSqueezyWebhookHandler.
func NewLemonSqueezyWebhookHandler(
	verifier BillingEventVerifier,
	events WebhookEventStore,
	reconciler BillingReconciler,
	secret string,
	logger *slog.Logger,
) *LemonSqueezyWebhookHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &LemonSqueezyWebhookHandler{
		verifier:   verifier,
		events:     events,
		reconciler: reconciler,
		secret:     secret,
		logger:     logger,
	}
}

// RegisterRoutes mounts the webhook endpoint without session middleware.
func (h *LemonSqueezyWebhookHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Handle)
}

// Handle processes an inbound billing webhook. The audit row is written
// before reconciliation starts and finalized in a defer, so even an
// aborted run leaves a record of the failure.
func (h *LemonSqueezyWebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
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

	if err := h.verifier.Verify(payload, r.Header.Get("x-signature"), h.secret); err != nil {
		core.Error(w, r, mapBillingVerifyError(err))
		return
	}

	var event billing.Event
	if err := json.Unmarshal(payload, &event); err != nil {
		core.Error(w, r, types.NewAppError(
			types.ErrCodeWebhookEventMalformed,
			"invalid webhook event JSON",
			err,
		))
		return
	}
	if event.Meta == nil {
		core.Error(w, r, types.NewAppError(
			types.ErrCodeWebhookEventMalformed,
			"Missing Event Meta",
			nil,
		))
		return
	}
	if event.Data == nil {
		core.Error(w, r, types.NewAppError(
			types.ErrCodeWebhookEventMalformed,
			"Missing Event Data",
			nil,
		))
		return
	}

	ctx := r.Context()
	eventID, err := h.events.Create(ctx, event.Meta.EventName, payload)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	h.logger.InfoContext(ctx, "processing billing webhook event",
		"event_id", eventID,
		"event_name", event.Meta.EventName,
	)

	// Should reconciliation panic, the audit row still records that the
	// run never completed.
	outcome := types.SoftFail("processing aborted before completion")
	defer func() {
		if err := h.events.MarkProcessed(ctx, eventID, outcome.ProcessingError()); err != nil {
			h.logger.ErrorContext(ctx, "failed to finalize webhook event record",
				"event_id", eventID,
				"error", err,
			)
		}
	}()

	outcome = h.reconciler.Process(ctx, &event)
	if outcome.Kind == types.OutcomeHardFailure {
		core.Error(w, r, outcome.Err)
		return
	}
	core.JSON(w, r, http.StatusOK, ackResponse)
}

// mapBillingVerifyError translates verifier sentinels onto the error
// taxonomy.
func mapBillingVerifyError(err error) *types.AppError {
	switch {
	case errors.Is(err, external.ErrSecretUnconfigured):
		return types.NewAppError(
			types.ErrCodeWebhookSecretUnconfigured,
			"You need a LEMON_SQUEEZY_WEBHOOK_SIGNATURE in your environment",
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
			types.ErrCodeWebhookSignatureInvalid,
			"Invalid signature",
			err,
		)
	}
}
