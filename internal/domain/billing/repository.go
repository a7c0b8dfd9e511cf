// internal/domain/billing/repository.go
package billing

import "context"

type SubscriptionRepository interface {
	// Create inserts the subscription and all of its items.
	Create(ctx context.Context, sub *Subscription) error
	// Update overwrites the subscription row and replaces its items wholesale.
	// Returns xerrors.ErrNotFound when no row has sub.StripeID.
	Update(ctx context.Context, sub *Subscription) error
	FindByStripeID(ctx context.Context, stripeID string) (*Subscription, error)
	// FindLatestByOrganizationID returns the most recently created subscription
	// with items, prices and schedules, or xerrors.ErrNotFound.
	FindLatestByOrganizationID(ctx context.Context, organizationID string) (*Subscription, error)
}

type PriceRepository interface {
	Upsert(ctx context.Context, price *Price) error
	FindByStripeID(ctx context.Context, stripeID string) (*Price, error)
	DeleteByStripeID(ctx context.Context, stripeID string) error
}

type ProductRepository interface {
	Upsert(ctx context.Context, product *Product) error
	FindByStripeID(ctx context.Context, stripeID string) (*Product, error)
	DeleteByStripeID(ctx context.Context, stripeID string) error
}

type SubscriptionScheduleRepository interface {
	// Upsert creates or updates the schedule; phases are always replaced.
	Upsert(ctx context.Context, schedule *SubscriptionSchedule) error
	FindByStripeID(ctx context.Context, stripeID string) (*SubscriptionSchedule, error)
	DeleteByStripeID(ctx context.Context, stripeID string) error
}
