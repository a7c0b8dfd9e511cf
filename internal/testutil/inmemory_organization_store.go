package testutil

import (
	"context"

	"orgbilling-service/internal/domain/organization"
	xerrors "orgbilling-service/internal/pkg/errors"

	"github.com/samber/lo"
)

// InMemoryOrganizationStore implements organization.Repository
type InMemoryOrganizationStore struct {
	*InMemoryStore[organization.Organization]
}

func NewInMemoryOrganizationStore(orgs ...organization.Organization) *InMemoryOrganizationStore {
	s := &InMemoryOrganizationStore{InMemoryStore: NewInMemoryStore[organization.Organization]()}
	for _, org := range orgs {
		_ = s.InMemoryStore.Upsert(context.Background(), org.ID, org)
	}
	return s
}

func (s *InMemoryOrganizationStore) FindByID(ctx context.Context, id string) (*organization.Organization, error) {
	org, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &org, nil
}

func (s *InMemoryOrganizationStore) FindBySlug(ctx context.Context, slug string) (*organization.Organization, error) {
	all, err := s.InMemoryStore.List(ctx)
	if err != nil {
		return nil, err
	}
	org, ok := lo.Find(all, func(o organization.Organization) bool { return o.Slug == slug })
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	return &org, nil
}

func (s *InMemoryOrganizationStore) UpdateBilling(ctx context.Context, id string, upd *organization.BillingUpdate) (*organization.Organization, error) {
	org, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if upd.BillingEmail != nil {
		org.BillingEmail = *upd.BillingEmail
	}
	if upd.StripeCustomerID != nil {
		org.StripeCustomerID.String = *upd.StripeCustomerID
		org.StripeCustomerID.Valid = true
	}
	if upd.TrialEnd != nil {
		org.TrialEnd = *upd.TrialEnd
	}
	if err := s.InMemoryStore.Update(ctx, id, org); err != nil {
		return nil, err
	}
	return &org, nil
}

func (s *InMemoryOrganizationStore) ClearStripeCustomerID(ctx context.Context, id string) error {
	org, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return err
	}
	org.StripeCustomerID.String = ""
	org.StripeCustomerID.Valid = false
	return s.InMemoryStore.Update(ctx, id, org)
}

// InMemoryMembershipStore implements organization.MembershipRepository
type InMemoryMembershipStore struct {
	*InMemoryStore[organization.Membership]
}

func NewInMemoryMembershipStore(memberships ...organization.Membership) *InMemoryMembershipStore {
	s := &InMemoryMembershipStore{InMemoryStore: NewInMemoryStore[organization.Membership]()}
	for _, m := range memberships {
		_ = s.InMemoryStore.Upsert(context.Background(), membershipKey(m.MemberID, m.OrganizationID), m)
	}
	return s
}

func (s *InMemoryMembershipStore) FindByMemberAndOrganization(ctx context.Context, memberID, organizationID string) (*organization.Membership, error) {
	m, err := s.InMemoryStore.Get(ctx, membershipKey(memberID, organizationID))
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *InMemoryMembershipStore) CountByOrganization(ctx context.Context, organizationID string) (int, error) {
	all, err := s.InMemoryStore.List(ctx)
	if err != nil {
		return 0, err
	}
	return lo.CountBy(all, func(m organization.Membership) bool {
		return m.OrganizationID == organizationID
	}), nil
}

func membershipKey(memberID, organizationID string) string {
	return organizationID + "/" + memberID
}
