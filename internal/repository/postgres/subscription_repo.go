// internal/repository/postgres/subscription_repo.go
package postgres

import (
	"context"
	"fmt"

	"orgbilling-service/internal/domain/billing"
	xerrors "orgbilling-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SubscriptionRepository struct {
	db        *pgxpool.Pool
	schedules *SubscriptionScheduleRepository
}

func NewSubscriptionRepository(db *pgxpool.Pool, schedules *SubscriptionScheduleRepository) *SubscriptionRepository {
	return &SubscriptionRepository{db: db, schedules: schedules}
}

const subscriptionColumns = `stripe_id, organization_id, purchased_by_id, created, cancel_at_period_end, status`

// Create inserts the subscription and its items in one transaction
func (r *SubscriptionRepository) Create(ctx context.Context, sub *billing.Subscription) error {
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		query := `
			INSERT INTO stripe_subscriptions (` + subscriptionColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6)
		`
		if _, err := tx.Exec(ctx, query,
			sub.StripeID, sub.OrganizationID, sub.PurchasedByID,
			sub.Created, sub.CancelAtPeriodEnd, sub.Status,
		); err != nil {
			return fmt.Errorf("failed to create subscription: %w", translate(err))
		}
		return insertItems(ctx, tx, sub.StripeID, sub.Items)
	})
}

// Update overwrites the subscription row and replaces its items wholesale
func (r *SubscriptionRepository) Update(ctx context.Context, sub *billing.Subscription) error {
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		query := `
			UPDATE stripe_subscriptions
			SET organization_id = $2, purchased_by_id = $3, created = $4,
			    cancel_at_period_end = $5, status = $6, updated_at = NOW()
			WHERE stripe_id = $1
		`
		result, err := tx.Exec(ctx, query,
			sub.StripeID, sub.OrganizationID, sub.PurchasedByID,
			sub.Created, sub.CancelAtPeriodEnd, sub.Status,
		)
		if err != nil {
			return fmt.Errorf("failed to update subscription: %w", err)
		}
		if result.RowsAffected() == 0 {
			return xerrors.ErrNotFound
		}

		if _, err := tx.Exec(ctx, `DELETE FROM stripe_subscription_items WHERE stripe_subscription_id = $1`, sub.StripeID); err != nil {
			return fmt.Errorf("failed to delete subscription items: %w", err)
		}
		return insertItems(ctx, tx, sub.StripeID, sub.Items)
	})
}

func insertItems(ctx context.Context, tx pgx.Tx, subscriptionID string, items []billing.SubscriptionItem) error {
	if len(items) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for i, item := range items {
		batch.Queue(`
			INSERT INTO stripe_subscription_items (
				stripe_id, stripe_subscription_id, price_id,
				current_period_start, current_period_end, position
			) VALUES ($1, $2, $3, $4, $5, $6)
		`, item.StripeID, subscriptionID, item.PriceID, item.CurrentPeriodStart, item.CurrentPeriodEnd, i)
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert subscription items: %w", translate(err))
	}
	return nil
}

// FindByStripeID retrieves a subscription with items, prices and schedules
func (r *SubscriptionRepository) FindByStripeID(ctx context.Context, stripeID string) (*billing.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM stripe_subscriptions WHERE stripe_id = $1`
	return r.findOne(ctx, query, stripeID)
}

// FindLatestByOrganizationID retrieves the most recently created subscription of an organization
func (r *SubscriptionRepository) FindLatestByOrganizationID(ctx context.Context, organizationID string) (*billing.Subscription, error) {
	query := `
		SELECT ` + subscriptionColumns + `
		FROM stripe_subscriptions
		WHERE organization_id = $1
		ORDER BY created DESC
		LIMIT 1
	`
	return r.findOne(ctx, query, organizationID)
}

func (r *SubscriptionRepository) findOne(ctx context.Context, query string, arg string) (*billing.Subscription, error) {
	var sub billing.Subscription
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&sub.StripeID, &sub.OrganizationID, &sub.PurchasedByID,
		&sub.Created, &sub.CancelAtPeriodEnd, &sub.Status,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to find subscription: %w", translate(err))
	}

	items, err := r.findItems(ctx, sub.StripeID)
	if err != nil {
		return nil, err
	}
	sub.Items = items

	if r.schedules != nil {
		schedules, err := r.schedules.FindBySubscriptionID(ctx, sub.StripeID)
		if err != nil {
			return nil, err
		}
		sub.Schedules = schedules
	}

	return &sub, nil
}

func (r *SubscriptionRepository) findItems(ctx context.Context, subscriptionID string) ([]billing.SubscriptionItem, error) {
	query := `
		SELECT i.stripe_id, i.stripe_subscription_id, i.price_id,
		       i.current_period_start, i.current_period_end,
		       p.stripe_id, p.product_id, p.lookup_key, p.currency, p.unit_amount, p.active, p.metadata
		FROM stripe_subscription_items i
		LEFT JOIN stripe_prices p ON p.stripe_id = i.price_id
		WHERE i.stripe_subscription_id = $1
		ORDER BY i.position ASC
	`

	rows, err := r.db.Query(ctx, query, subscriptionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query subscription items: %w", err)
	}
	defer rows.Close()

	items := []billing.SubscriptionItem{}
	for rows.Next() {
		var item billing.SubscriptionItem
		var price joinedPrice
		if err := rows.Scan(
			&item.StripeID, &item.StripeSubscriptionID, &item.PriceID,
			&item.CurrentPeriodStart, &item.CurrentPeriodEnd,
			&price.StripeID, &price.ProductID, &price.LookupKey, &price.Currency,
			&price.UnitAmount, &price.Active, &price.Metadata,
		); err != nil {
			return nil, fmt.Errorf("failed to scan subscription item: %w", err)
		}

		item.Price, err = price.toPrice()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

// joinedPrice holds the nullable columns of a LEFT JOIN on stripe_prices.
type joinedPrice struct {
	StripeID   *string
	ProductID  *string
	LookupKey  *string
	Currency   *string
	UnitAmount *int64
	Active     *bool
	Metadata   []byte
}

func (p joinedPrice) toPrice() (*billing.Price, error) {
	if p.StripeID == nil {
		return nil, nil
	}
	price := &billing.Price{
		StripeID:   *p.StripeID,
		ProductID:  deref(p.ProductID),
		LookupKey:  deref(p.LookupKey),
		Currency:   deref(p.Currency),
		UnitAmount: deref(p.UnitAmount),
		Active:     deref(p.Active),
	}
	if err := unmarshalMetadata(p.Metadata, &price.Metadata); err != nil {
		return nil, err
	}
	return price, nil
}

func deref[T any](v *T) T {
	var zero T
	if v == nil {
		return zero
	}
	return *v
}
