// internal/domain/organization/repository.go
package organization

import "context"

type Repository interface {
	FindByID(ctx context.Context, id string) (*Organization, error)
	FindBySlug(ctx context.Context, slug string) (*Organization, error)
	// UpdateBilling applies the non-nil fields and returns the updated row.
	UpdateBilling(ctx context.Context, id string, upd *BillingUpdate) (*Organization, error)
	ClearStripeCustomerID(ctx context.Context, id string) error
}

type MembershipRepository interface {
	FindByMemberAndOrganization(ctx context.Context, memberID, organizationID string) (*Membership, error)
	CountByOrganization(ctx context.Context, organizationID string) (int, error)
}
