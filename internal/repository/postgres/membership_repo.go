// internal/repository/postgres/membership_repo.go
package postgres

import (
	"context"
	"fmt"

	"orgbilling-service/internal/domain/organization"

	"github.com/jackc/pgx/v5/pgxpool"
)

type MembershipRepository struct {
	db *pgxpool.Pool
}

func NewMembershipRepository(db *pgxpool.Pool) *MembershipRepository {
	return &MembershipRepository{db: db}
}

func (r *MembershipRepository) FindByMemberAndOrganization(ctx context.Context, memberID, organizationID string) (*organization.Membership, error) {
	query := `
		SELECT member_id, organization_id, role, deactivated_at, created_at
		FROM organization_memberships
		WHERE member_id = $1 AND organization_id = $2
	`

	var m organization.Membership
	err := r.db.QueryRow(ctx, query, memberID, organizationID).Scan(
		&m.MemberID, &m.OrganizationID, &m.Role, &m.DeactivatedAt, &m.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to find membership: %w", translate(err))
	}
	return &m, nil
}

// CountByOrganization counts every membership row, deactivated ones included:
// they still occupy a paid seat until removed.
func (r *MembershipRepository) CountByOrganization(ctx context.Context, organizationID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM organization_memberships WHERE organization_id = $1`,
		organizationID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count memberships: %w", err)
	}
	return count, nil
}
