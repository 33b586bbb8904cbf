package db

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"saasterkit/internal/types"
)

// PlanRepo reads the local subscription-plan catalog. The catalog is
// populated by an out-of-band administrative process; this service never
// writes it.
type PlanRepo struct {
	db     DBTX
	logger *slog.Logger
}

// NewPlanRepo creates a new PlanRepo backed by the given database
// connection (pool or transaction).
func NewPlanRepo(db DBTX, logger *slog.Logger) *PlanRepo {
	if logger == nil {
		logger = slog.Default()
	}
	return &PlanRepo{db: db, logger: logger}
}

// GetByVariantID returns the plan mapped to the billing provider's variant
// id. Returns (nil, nil) when no plan matches; the reconciler treats that
// as a soft failure, not a store fault.
func (r *PlanRepo) GetByVariantID(ctx context.Context, variantID int64) (*types.SubscriptionPlan, error) {
	var p types.SubscriptionPlan
	err := r.db.QueryRow(ctx,
		`SELECT id, variant_id, name FROM subscription_plans WHERE variant_id = $1`,
		variantID,
	).Scan(&p.ID, &p.VariantID, &p.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to look up plan", err)
	}
	return &p, nil
}
