package db

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"saasterkit/internal/types"
)

// SubscriptionRepo manages local subscription state synchronized from
// billing webhooks.
//
// Key invariant: there is exactly one row per external subscription id
// (lemon_squeezy_id) at all times. Upsert is atomic at the store, which is
// what makes concurrent deliveries for the same subscription safe.
type SubscriptionRepo struct {
	db     DBTX
	logger *slog.Logger
}

// NewSubscriptionRepo creates a new SubscriptionRepo backed by the given
// database connection (pool or transaction).
func NewSubscriptionRepo(db DBTX, logger *slog.Logger) *SubscriptionRepo {
	if logger == nil {
		logger = slog.Default()
	}
	return &SubscriptionRepo{db: db, logger: logger}
}

// Upsert creates or fully replaces the subscription row keyed by the
// external subscription id. Repeated deliveries of the same event are
// idempotent: the second write converges on the same row and values.
func (r *SubscriptionRepo) Upsert(ctx context.Context, sub *types.UserSubscription) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO user_subscriptions (
		     id, lemon_squeezy_id, order_id, name, email,
		     status, status_formatted, renews_at, ends_at, trial_ends_at,
		     price, is_paused, subscription_item_id, is_usage_based,
		     user_id, plan_id
		 ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		 ON CONFLICT (lemon_squeezy_id) DO UPDATE SET
		     order_id = EXCLUDED.order_id,
		     name = EXCLUDED.name,
		     email = EXCLUDED.email,
		     status = EXCLUDED.status,
		     status_formatted = EXCLUDED.status_formatted,
		     renews_at = EXCLUDED.renews_at,
		     ends_at = EXCLUDED.ends_at,
		     trial_ends_at = EXCLUDED.trial_ends_at,
		     price = EXCLUDED.price,
		     is_paused = EXCLUDED.is_paused,
		     subscription_item_id = EXCLUDED.subscription_item_id,
		     is_usage_based = EXCLUDED.is_usage_based,
		     user_id = EXCLUDED.user_id,
		     plan_id = EXCLUDED.plan_id`,
		uuid.NewString(), sub.LemonSqueezyID, sub.OrderID, sub.Name, sub.Email,
		sub.Status, sub.StatusFormatted, sub.RenewsAt, sub.EndsAt, sub.TrialEndsAt,
		sub.Price, sub.IsPaused, sub.SubscriptionItemID, sub.IsUsageBased,
		sub.UserID, sub.PlanID,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to upsert subscription", err)
	}
	return nil
}

// GetByLemonSqueezyID returns the subscription row for the external id,
// or (nil, nil) if none exists.
func (r *SubscriptionRepo) GetByLemonSqueezyID(ctx context.Context, lemonSqueezyID string) (*types.UserSubscription, error) {
	var s types.UserSubscription
	err := r.db.QueryRow(ctx,
		`SELECT id, lemon_squeezy_id, order_id, name, email,
		        status, status_formatted, renews_at, ends_at, trial_ends_at,
		        price, is_paused, subscription_item_id, is_usage_based,
		        user_id, plan_id
		 FROM user_subscriptions
		 WHERE lemon_squeezy_id = $1`,
		lemonSqueezyID,
	).Scan(
		&s.ID, &s.LemonSqueezyID, &s.OrderID, &s.Name, &s.Email,
		&s.Status, &s.StatusFormatted, &s.RenewsAt, &s.EndsAt, &s.TrialEndsAt,
		&s.Price, &s.IsPaused, &s.SubscriptionItemID, &s.IsUsageBased,
		&s.UserID, &s.PlanID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to get subscription", err)
	}
	return &s, nil
}
