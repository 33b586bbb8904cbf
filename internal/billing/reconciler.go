package billing

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"saasterkit/internal/external"
	"saasterkit/internal/types"
)

// PlanLookup resolves the billing provider's variant id to a local plan.
type PlanLookup interface {
	// GetByVariantID returns (nil, nil) when no plan matches.
	GetByVariantID(ctx context.Context, variantID int64) (*types.SubscriptionPlan, error)
}

// SubscriptionUpserter persists the reconciled subscription record.
type SubscriptionUpserter interface {
	Upsert(ctx context.Context, sub *types.UserSubscription) error
}

// Reconciler maps subscription events onto local subscription rows.
// Every Process call returns a types.Outcome; the caller owns the event
// audit record and the HTTP response, both driven by that outcome.
type Reconciler struct {
	plans  PlanLookup
	subs   SubscriptionUpserter
	prices external.PriceFetcher
	logger *slog.Logger
}

// NewReconciler creates a Reconciler with the provided dependencies.
func NewReconciler(
	plans PlanLookup,
	subs SubscriptionUpserter,
	prices external.PriceFetcher,
	logger *slog.Logger,
) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{
		plans:  plans,
		subs:   subs,
		prices: prices,
		logger: logger,
	}
}

// Process dispatches on the event kind.
//
// Only subscription lifecycle events carry reconciliation logic today.
// Payment, order, and license events are explicit no-op arms: they ack
// cleanly so the provider stops redelivering, and the stored raw body
// keeps them replayable if support lands later.
func (r *Reconciler) Process(ctx context.Context, event *Event) types.Outcome {
	kind := EventKindFromName(event.Meta.EventName)

	switch kind {
	case KindSubscription:
		return r.reconcileSubscription(ctx, event)
	case KindSubscriptionPayment, KindOrder, KindLicense:
		r.logger.InfoContext(ctx, "billing event kind not implemented, acknowledged",
			"event_name", event.Meta.EventName,
			"kind", kind.String(),
		)
		return types.Succeed()
	default:
		r.logger.WarnContext(ctx, "unrecognized billing event acknowledged",
			"event_name", event.Meta.EventName,
		)
		return types.Succeed()
	}
}

// reconcileSubscription performs the full reconciliation for a
// subscription lifecycle event:
//
//  1. Resolve the local plan by variant id. No plan: soft failure, stop.
//  2. Fetch current price data for the subscription item. A failed lookup
//     is a soft failure, but reconciliation continues with an empty price.
//  3. Compute the price string: decimal unit price when usage-based,
//     flat unit price otherwise, empty when unavailable.
//  4. Upsert the subscription row keyed by the external subscription id.
//     An upsert failure is the one hard failure on this path (422).
func (r *Reconciler) reconcileSubscription(ctx context.Context, event *Event) types.Outcome {
	attrs := event.Data.Attributes

	plan, err := r.plans.GetByVariantID(ctx, attrs.VariantID)
	if err != nil {
		return types.HardFail(err)
	}
	if plan == nil {
		return types.SoftFail(fmt.Sprintf("Plan with variantId %d not found.", attrs.VariantID))
	}

	var (
		softMessage  string
		price        string
		itemID       string
		isUsageBased bool
	)
	if item := attrs.FirstSubscriptionItem; item != nil {
		itemID = strconv.FormatInt(item.ID, 10)
		isUsageBased = item.IsUsageBased

		info, err := r.prices.GetPrice(ctx, item.PriceID)
		if err != nil {
			r.logger.WarnContext(ctx, "price lookup failed, continuing without price",
				"subscription_id", event.Data.ID,
				"price_id", item.PriceID,
				"error", err,
			)
			softMessage = fmt.Sprintf("Failed to get the price data for the subscription %s.", event.Data.ID)
		} else {
			price = formatPrice(isUsageBased, info)
		}
	} else {
		softMessage = fmt.Sprintf("Failed to get the price data for the subscription %s.", event.Data.ID)
	}

	sub := &types.UserSubscription{
		LemonSqueezyID:     event.Data.ID,
		OrderID:            attrs.OrderID,
		Name:               attrs.UserName,
		Email:              attrs.UserEmail,
		Status:             attrs.Status,
		StatusFormatted:    attrs.StatusFormatted,
		RenewsAt:           attrs.RenewsAt,
		EndsAt:             attrs.EndsAt,
		TrialEndsAt:        attrs.TrialEndsAt,
		Price:              price,
		IsPaused:           false,
		SubscriptionItemID: itemID,
		IsUsageBased:       isUsageBased,
		UserID:             event.Meta.CustomData.UserID,
		PlanID:             plan.ID,
	}

	if err := r.subs.Upsert(ctx, sub); err != nil {
		r.logger.ErrorContext(ctx, "subscription upsert failed",
			"subscription_id", sub.LemonSqueezyID,
			"error", err,
		)
		return types.HardFail(types.NewAppError(
			types.ErrCodeWebhookUnprocessable,
			fmt.Sprintf("failed to store subscription %s", sub.LemonSqueezyID),
			err,
		))
	}

	if softMessage != "" {
		return types.SoftFail(softMessage)
	}
	return types.Succeed()
}

// formatPrice coerces the provider's price attributes to the stored string
// form: the decimal unit price for usage-based items, the flat unit price
// otherwise, and "" when the value is absent.
func formatPrice(isUsageBased bool, info *types.PriceInfo) string {
	if info == nil {
		return ""
	}
	if isUsageBased {
		if info.UnitPriceDecimal == nil {
			return ""
		}
		return *info.UnitPriceDecimal
	}
	if info.UnitPrice == nil {
		return ""
	}
	return strconv.FormatInt(*info.UnitPrice, 10)
}
