package db

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"

	"saasterkit/internal/types"
)

// WebhookEventRepo is the audit log for inbound billing webhooks.
//
// The two-phase write is the durability boundary: Create runs before any
// business side effect (processed=false), MarkProcessed runs after. A crash
// between the phases leaves a processed=false row that an operator can
// find and replay. Rows are never deleted.
type WebhookEventRepo struct {
	db     DBTX
	logger *slog.Logger
}

// NewWebhookEventRepo creates a new WebhookEventRepo backed by the given
// database connection (pool or transaction).
func NewWebhookEventRepo(db DBTX, logger *slog.Logger) *WebhookEventRepo {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebhookEventRepo{db: db, logger: logger}
}

// Create writes the start record (processed=false) and returns its id.
// MUST be called before any business processing of the event.
func (r *WebhookEventRepo) Create(ctx context.Context, eventName string, body json.RawMessage) (string, error) {
	id := uuid.NewString()
	_, err := r.db.Exec(ctx,
		`INSERT INTO webhook_events (id, event_name, processed, body, processing_error)
		 VALUES ($1, $2, FALSE, $3, '')`,
		id, eventName, body,
	)
	if err != nil {
		return "", types.NewAppError(types.ErrCodeInternalDB, "failed to record webhook event", err)
	}
	return id, nil
}

// MarkProcessed writes the end record: processed=true with the processing
// error text (empty string = success). An update that matches no row is
// reported as an error so a lost start record does not pass silently.
func (r *WebhookEventRepo) MarkProcessed(ctx context.Context, id string, processingError string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE webhook_events
		 SET processed = TRUE, processing_error = $2
		 WHERE id = $1`,
		id, processingError,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to finalize webhook event", err)
	}
	if tag.RowsAffected() == 0 {
		return types.NewAppError(types.ErrCodeInternalDB, "webhook event row missing on finalize", nil)
	}
	return nil
}

// ListUnprocessed returns events whose end write never happened, oldest
// first. This is the operator's replay surface.
func (r *WebhookEventRepo) ListUnprocessed(ctx context.Context, limit int) ([]*types.WebhookEvent, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, event_name, processed, body, processing_error, created_at
		 FROM webhook_events
		 WHERE processed = FALSE
		 ORDER BY created_at ASC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to list unprocessed events", err)
	}
	defer rows.Close()

	events := make([]*types.WebhookEvent, 0)
	for rows.Next() {
		var e types.WebhookEvent
		if err := rows.Scan(&e.ID, &e.EventName, &e.Processed, &e.Body, &e.ProcessingError, &e.CreatedAt); err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan webhook event", err)
		}
		events = append(events, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to read webhook events", err)
	}
	return events, nil
}
