// internal/service/billing/billing_service.go
package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"orgbilling-service/internal/domain/billing"
	"orgbilling-service/internal/domain/organization"
	xerrors "orgbilling-service/internal/pkg/errors"

	"go.uber.org/zap"
)

type BillingService struct {
	orgRepo          organization.Repository
	membershipRepo   organization.MembershipRepository
	subscriptionRepo billing.SubscriptionRepository
	logger           *zap.Logger
	now              func() time.Time
}

func NewBillingService(
	orgRepo organization.Repository,
	membershipRepo organization.MembershipRepository,
	subscriptionRepo billing.SubscriptionRepository,
	logger *zap.Logger,
) *BillingService {
	return &BillingService{
		orgRepo:          orgRepo,
		membershipRepo:   membershipRepo,
		subscriptionRepo: subscriptionRepo,
		logger:           logger,
		now:              time.Now,
	}
}

// WithClock replaces the clock used to classify subscriptions.
func (s *BillingService) WithClock(now func() time.Time) *BillingService {
	s.now = now
	return s
}

// AuthorizeMember resolves the organization by slug and checks that userID holds
// an active membership in it.
func (s *BillingService) AuthorizeMember(ctx context.Context, slug, userID string) (*organization.Organization, error) {
	org, err := s.orgRepo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			return nil, fmt.Errorf("organization %s not found: %w", slug, xerrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}

	membership, err := s.membershipRepo.FindByMemberAndOrganization(ctx, userID, org.ID)
	if err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			return nil, fmt.Errorf("user is not a member of %s: %w", slug, xerrors.ErrForbidden)
		}
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}
	if !membership.IsActive() {
		return nil, fmt.Errorf("membership is deactivated: %w", xerrors.ErrForbidden)
	}

	return org, nil
}

// GetSnapshot loads everything the billing page needs for org.
func (s *BillingService) GetSnapshot(ctx context.Context, org *organization.Organization) (billing.OrganizationSnapshot, error) {
	count, err := s.membershipRepo.CountByOrganization(ctx, org.ID)
	if err != nil {
		return billing.OrganizationSnapshot{}, fmt.Errorf("failed to count memberships: %w", err)
	}

	sub, err := s.subscriptionRepo.FindLatestByOrganizationID(ctx, org.ID)
	if err != nil && !errors.Is(err, xerrors.ErrNotFound) {
		return billing.OrganizationSnapshot{}, fmt.Errorf("failed to get latest subscription: %w", err)
	}

	return billing.OrganizationSnapshot{
		Organization: *org,
		MemberCount:  count,
		Subscription: sub,
	}, nil
}

// GetBillingPage returns the billing page for the organization at slug as seen by
// userID.
func (s *BillingService) GetBillingPage(ctx context.Context, slug, userID string) (*billing.BillingPage, error) {
	org, err := s.AuthorizeMember(ctx, slug, userID)
	if err != nil {
		return nil, err
	}

	snapshot, err := s.GetSnapshot(ctx, org)
	if err != nil {
		return nil, err
	}

	page := MapSnapshotToBillingPage(snapshot, s.now())

	s.logger.Debug("billing page mapped",
		zap.String("organization_id", org.ID),
		zap.Bool("is_on_free_trial", page.IsOnFreeTrial),
		zap.String("subscription_status", string(page.SubscriptionStatus)))

	return &page, nil
}

// LookupPrice resolves a tier and interval to the catalog price id.
func (s *BillingService) LookupPrice(tier billing.Tier, interval billing.Interval) (*billing.PriceLookupResponse, error) {
	id, err := billing.PriceIDForTierAndInterval(tier, interval)
	if err != nil {
		return nil, err
	}
	return &billing.PriceLookupResponse{PriceID: id, Tier: tier, Interval: interval}, nil
}
