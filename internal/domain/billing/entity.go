// internal/domain/billing/entity.go
package billing

import (
	"time"

	"orgbilling-service/internal/domain/organization"
)

// ProviderStatus is the raw Stripe subscription status.
type ProviderStatus string

const (
	ProviderStatusActive            ProviderStatus = "active"
	ProviderStatusTrialing          ProviderStatus = "trialing"
	ProviderStatusPastDue           ProviderStatus = "past_due"
	ProviderStatusCanceled          ProviderStatus = "canceled"
	ProviderStatusUnpaid            ProviderStatus = "unpaid"
	ProviderStatusIncomplete        ProviderStatus = "incomplete"
	ProviderStatusIncompleteExpired ProviderStatus = "incomplete_expired"
	ProviderStatusPaused            ProviderStatus = "paused"
)

// SubscriptionStatus is the classification shown on the billing page.
type SubscriptionStatus string

const (
	StatusActive   SubscriptionStatus = "active"
	StatusInactive SubscriptionStatus = "inactive"
	StatusPaused   SubscriptionStatus = "paused"
)

type Product struct {
	StripeID    string            `json:"stripe_id" db:"stripe_id"`
	Name        string            `json:"name" db:"name"`
	Description string            `json:"description,omitempty" db:"description"`
	Active      bool              `json:"active" db:"active"`
	Metadata    map[string]string `json:"metadata,omitempty" db:"metadata"`
}

// Price mirrors a Stripe price. Metadata is kept as decoded JSON so that numeric
// values written by hand in the dashboard or by seed scripts survive.
type Price struct {
	StripeID   string                 `json:"stripe_id" db:"stripe_id"`
	ProductID  string                 `json:"product_id,omitempty" db:"product_id"`
	LookupKey  string                 `json:"lookup_key" db:"lookup_key"`
	Currency   string                 `json:"currency" db:"currency"`
	UnitAmount int64                  `json:"unit_amount" db:"unit_amount"`
	Active     bool                   `json:"active" db:"active"`
	Metadata   map[string]interface{} `json:"metadata,omitempty" db:"metadata"`
}

type SubscriptionItem struct {
	StripeID             string    `json:"stripe_id" db:"stripe_id"`
	StripeSubscriptionID string    `json:"stripe_subscription_id" db:"stripe_subscription_id"`
	PriceID              string    `json:"price_id" db:"price_id"`
	CurrentPeriodStart   time.Time `json:"current_period_start" db:"current_period_start"`
	CurrentPeriodEnd     time.Time `json:"current_period_end" db:"current_period_end"`

	// Price is populated by reads that join stripe_prices.
	Price *Price `json:"price,omitempty"`
}

type SchedulePhase struct {
	StartDate time.Time `json:"start_date" db:"start_date"`
	EndDate   time.Time `json:"end_date" db:"end_date"`
	PriceID   string    `json:"price_id" db:"price_id"`
	Quantity  int64     `json:"quantity" db:"quantity"`

	Price *Price `json:"price,omitempty"`
}

type SubscriptionSchedule struct {
	StripeID          string          `json:"stripe_id" db:"stripe_id"`
	SubscriptionID    string          `json:"subscription_id" db:"subscription_id"`
	Created           time.Time       `json:"created" db:"created"`
	CurrentPhaseStart time.Time       `json:"current_phase_start" db:"current_phase_start"`
	CurrentPhaseEnd   time.Time       `json:"current_phase_end" db:"current_phase_end"`
	Phases            []SchedulePhase `json:"phases"`
}

type Subscription struct {
	StripeID          string                 `json:"stripe_id" db:"stripe_id"`
	OrganizationID    string                 `json:"organization_id" db:"organization_id"`
	PurchasedByID     string                 `json:"purchased_by_id" db:"purchased_by_id"`
	Created           time.Time              `json:"created" db:"created"`
	CancelAtPeriodEnd bool                   `json:"cancel_at_period_end" db:"cancel_at_period_end"`
	Status            ProviderStatus         `json:"status" db:"status"`
	Items             []SubscriptionItem     `json:"items"`
	Schedules         []SubscriptionSchedule `json:"schedules,omitempty"`
}

// OrganizationSnapshot is everything the billing page needs about one organization.
type OrganizationSnapshot struct {
	Organization organization.Organization
	MemberCount  int
	// Subscription is the most recently created one, nil when the org never paid.
	Subscription *Subscription
}

// BillingPage is the display record consumed by the billing settings page.
type BillingPage struct {
	BillingEmail              string             `json:"billing_email"`
	CancelAtPeriodEnd         bool               `json:"cancel_at_period_end"`
	CurrentMonthlyRatePerUser float64            `json:"current_monthly_rate_per_user"`
	CurrentPeriodEnd          time.Time          `json:"current_period_end"`
	CurrentSeats              int                `json:"current_seats"`
	CurrentTierName           string             `json:"current_tier_name"`
	IsEnterprisePlan          bool               `json:"is_enterprise_plan"`
	IsOnFreeTrial             bool               `json:"is_on_free_trial"`
	MaxSeats                  int                `json:"max_seats"`
	OrganizationSlug          string             `json:"organization_slug"`
	ProjectedTotal            float64            `json:"projected_total"`
	SubscriptionStatus        SubscriptionStatus `json:"subscription_status"`
}
