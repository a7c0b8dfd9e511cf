// internal/repository/postgres/organization_repo.go
package postgres

import (
	"context"
	"fmt"

	"orgbilling-service/internal/domain/organization"
	xerrors "orgbilling-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type OrganizationRepository struct {
	db *pgxpool.Pool
}

func NewOrganizationRepository(db *pgxpool.Pool) *OrganizationRepository {
	return &OrganizationRepository{db: db}
}

const organizationColumns = `id, name, slug, billing_email, stripe_customer_id, trial_end, created_at, updated_at`

func scanOrganization(row pgx.Row) (*organization.Organization, error) {
	var org organization.Organization
	err := row.Scan(
		&org.ID, &org.Name, &org.Slug, &org.BillingEmail, &org.StripeCustomerID,
		&org.TrialEnd, &org.CreatedAt, &org.UpdatedAt,
	)
	if err != nil {
		return nil, translate(err)
	}
	return &org, nil
}

// FindByID retrieves an organization by ID
func (r *OrganizationRepository) FindByID(ctx context.Context, id string) (*organization.Organization, error) {
	query := `SELECT ` + organizationColumns + ` FROM organizations WHERE id = $1`
	org, err := scanOrganization(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to find organization: %w", err)
	}
	return org, nil
}

// FindBySlug retrieves an organization by its URL slug
func (r *OrganizationRepository) FindBySlug(ctx context.Context, slug string) (*organization.Organization, error) {
	query := `SELECT ` + organizationColumns + ` FROM organizations WHERE slug = $1`
	org, err := scanOrganization(r.db.QueryRow(ctx, query, slug))
	if err != nil {
		return nil, fmt.Errorf("failed to find organization: %w", err)
	}
	return org, nil
}

// UpdateBilling applies the non-nil fields of upd
func (r *OrganizationRepository) UpdateBilling(ctx context.Context, id string, upd *organization.BillingUpdate) (*organization.Organization, error) {
	query := `
		UPDATE organizations
		SET billing_email = COALESCE($2, billing_email),
		    stripe_customer_id = COALESCE($3, stripe_customer_id),
		    trial_end = COALESCE($4, trial_end),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + organizationColumns

	org, err := scanOrganization(r.db.QueryRow(ctx, query, id, upd.BillingEmail, upd.StripeCustomerID, upd.TrialEnd))
	if err != nil {
		return nil, fmt.Errorf("failed to update organization billing: %w", err)
	}
	return org, nil
}

func (r *OrganizationRepository) ClearStripeCustomerID(ctx context.Context, id string) error {
	query := `UPDATE organizations SET stripe_customer_id = NULL, updated_at = NOW() WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to clear stripe customer id: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}
