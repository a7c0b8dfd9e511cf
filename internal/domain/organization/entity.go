// internal/domain/organization/entity.go
package organization

import (
	"database/sql"
	"time"
)

type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
	RoleOwner  Role = "owner"
)

type Organization struct {
	ID               string         `json:"id" db:"id"`
	Name             string         `json:"name" db:"name"`
	Slug             string         `json:"slug" db:"slug"`
	BillingEmail     string         `json:"billing_email" db:"billing_email"`
	StripeCustomerID sql.NullString `json:"stripe_customer_id,omitempty" db:"stripe_customer_id"`
	TrialEnd         time.Time      `json:"trial_end" db:"trial_end"`
	CreatedAt        time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at" db:"updated_at"`
}

type Membership struct {
	MemberID       string       `json:"member_id" db:"member_id"`
	OrganizationID string       `json:"organization_id" db:"organization_id"`
	Role           Role         `json:"role" db:"role"`
	DeactivatedAt  sql.NullTime `json:"deactivated_at,omitempty" db:"deactivated_at"`
	CreatedAt      time.Time    `json:"created_at" db:"created_at"`
}

// IsActive reports whether the membership still grants access.
func (m *Membership) IsActive() bool {
	return !m.DeactivatedAt.Valid
}

// BillingUpdate carries the billing columns a webhook may change. Nil fields are
// left untouched.
type BillingUpdate struct {
	BillingEmail     *string
	StripeCustomerID *string
	TrialEnd         *time.Time
}
