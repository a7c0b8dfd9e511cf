// internal/service/stripesync/handlers.go
package stripesync

import (
	"context"
	"errors"
	"fmt"

	"orgbilling-service/internal/domain/organization"
	xerrors "orgbilling-service/internal/pkg/errors"

	"github.com/stripe/stripe-go/v82"
	"go.uber.org/zap"
)

// ==== Checkout & customers ====

func (s *Synchronizer) handleCheckoutSessionCompleted(ctx context.Context, event *stripe.Event) error {
	session, err := decodeObject[stripe.CheckoutSession](event)
	if err != nil {
		return err
	}

	orgID := session.Metadata[MetadataOrganizationID]
	if orgID == "" {
		return fmt.Errorf("checkout session %s has no organization id: %w", session.ID, xerrors.ErrMissingMetadata)
	}

	// Completing checkout ends the free trial.
	trialEnd := s.now().UTC()
	upd := &organization.BillingUpdate{TrialEnd: &trialEnd}
	if session.CustomerDetails != nil && session.CustomerDetails.Email != "" {
		email := session.CustomerDetails.Email
		upd.BillingEmail = &email
	}

	var customerID string
	if session.Customer != nil && session.Customer.ID != "" {
		customerID = session.Customer.ID
		upd.StripeCustomerID = &customerID
	}

	org, err := s.repos.Organizations.UpdateBilling(ctx, orgID, upd)
	if err != nil {
		return fmt.Errorf("failed to update organization %s: %w", orgID, err)
	}

	if customerID == "" || s.customers == nil {
		return nil
	}
	if err := s.customers.UpdateCustomer(ctx, customerID, org.Name, org.ID); err != nil {
		return fmt.Errorf("failed to update stripe customer %s: %w", customerID, err)
	}
	return nil
}

func (s *Synchronizer) handleCustomerDeleted(ctx context.Context, event *stripe.Event) error {
	customer, err := decodeObject[stripe.Customer](event)
	if err != nil {
		return err
	}

	orgID := customer.Metadata[MetadataOrganizationID]
	if orgID == "" {
		return fmt.Errorf("customer %s has no organization id: %w", customer.ID, xerrors.ErrMissingMetadata)
	}

	if err := s.repos.Organizations.ClearStripeCustomerID(ctx, orgID); err != nil {
		return fmt.Errorf("failed to clear stripe customer of organization %s: %w", orgID, err)
	}
	return nil
}

// ==== Subscriptions ====

func (s *Synchronizer) handleSubscriptionCreated(ctx context.Context, event *stripe.Event) error {
	obj, err := decodeObject[stripe.Subscription](event)
	if err != nil {
		return err
	}

	sub, err := subscriptionFromStripe(obj)
	if err != nil {
		return err
	}
	if err := requireOwnership(sub.StripeID, sub.OrganizationID, sub.PurchasedByID); err != nil {
		return err
	}

	if err := s.repos.Subscriptions.Create(ctx, sub); err != nil {
		if errors.Is(err, xerrors.ErrConflict) {
			// Redelivered or raced with an update: converge on the event's state.
			return s.repos.Subscriptions.Update(ctx, sub)
		}
		return fmt.Errorf("failed to create subscription %s: %w", sub.StripeID, err)
	}
	return nil
}

// handleSubscriptionUpdated also serves customer.subscription.deleted: canceled
// subscriptions are kept with their final status.
func (s *Synchronizer) handleSubscriptionUpdated(ctx context.Context, event *stripe.Event) error {
	obj, err := decodeObject[stripe.Subscription](event)
	if err != nil {
		return err
	}

	sub, err := subscriptionFromStripe(obj)
	if err != nil {
		return err
	}

	existing, err := s.repos.Subscriptions.FindByStripeID(ctx, sub.StripeID)
	if errors.Is(err, xerrors.ErrNotFound) {
		// Updates can arrive before the created event.
		if err := requireOwnership(sub.StripeID, sub.OrganizationID, sub.PurchasedByID); err != nil {
			return err
		}
		s.logger.Info("subscription not stored yet, inserting from update",
			zap.String("subscription_id", sub.StripeID))
		if err := s.repos.Subscriptions.Create(ctx, sub); err != nil {
			return fmt.Errorf("failed to create subscription %s: %w", sub.StripeID, err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get subscription %s: %w", sub.StripeID, err)
	}

	if sub.OrganizationID == "" {
		sub.OrganizationID = existing.OrganizationID
	}
	if sub.PurchasedByID == "" {
		sub.PurchasedByID = existing.PurchasedByID
	}

	if err := s.repos.Subscriptions.Update(ctx, sub); err != nil {
		return fmt.Errorf("failed to update subscription %s: %w", sub.StripeID, err)
	}
	return nil
}

func requireOwnership(subscriptionID, organizationID, purchasedByID string) error {
	if organizationID == "" || purchasedByID == "" {
		return fmt.Errorf("subscription %s lacks %s or %s metadata: %w",
			subscriptionID, MetadataOrganizationID, MetadataPurchasedByID, xerrors.ErrMissingMetadata)
	}
	return nil
}

// ==== Prices & products ====

func (s *Synchronizer) handlePriceUpserted(ctx context.Context, event *stripe.Event) error {
	obj, err := decodeObject[stripe.Price](event)
	if err != nil {
		return err
	}
	price := priceFromStripe(obj)
	if err := s.repos.Prices.Upsert(ctx, price); err != nil {
		return fmt.Errorf("failed to save price %s: %w", price.StripeID, err)
	}
	return nil
}

func (s *Synchronizer) handlePriceDeleted(ctx context.Context, event *stripe.Event) error {
	obj, err := decodeObject[stripe.Price](event)
	if err != nil {
		return err
	}
	if err := s.repos.Prices.DeleteByStripeID(ctx, obj.ID); err != nil {
		return fmt.Errorf("failed to delete price %s: %w", obj.ID, err)
	}
	return nil
}

func (s *Synchronizer) handleProductUpserted(ctx context.Context, event *stripe.Event) error {
	obj, err := decodeObject[stripe.Product](event)
	if err != nil {
		return err
	}
	product := productFromStripe(obj)
	if err := s.repos.Products.Upsert(ctx, product); err != nil {
		return fmt.Errorf("failed to save product %s: %w", product.StripeID, err)
	}
	return nil
}

func (s *Synchronizer) handleProductDeleted(ctx context.Context, event *stripe.Event) error {
	obj, err := decodeObject[stripe.Product](event)
	if err != nil {
		return err
	}
	if err := s.repos.Products.DeleteByStripeID(ctx, obj.ID); err != nil {
		return fmt.Errorf("failed to delete product %s: %w", obj.ID, err)
	}
	return nil
}

// ==== Subscription schedules ====

func (s *Synchronizer) handleScheduleUpserted(ctx context.Context, event *stripe.Event) error {
	obj, err := decodeObject[stripe.SubscriptionSchedule](event)
	if err != nil {
		return err
	}

	schedule, err := scheduleFromStripe(obj)
	if err != nil {
		return err
	}
	if err := s.repos.Schedules.Upsert(ctx, schedule); err != nil {
		return fmt.Errorf("failed to save subscription schedule %s: %w", schedule.StripeID, err)
	}
	return nil
}

func (s *Synchronizer) handleScheduleRemoved(ctx context.Context, event *stripe.Event) error {
	obj, err := decodeObject[stripe.SubscriptionSchedule](event)
	if err != nil {
		return err
	}
	if err := s.repos.Schedules.DeleteByStripeID(ctx, obj.ID); err != nil {
		return fmt.Errorf("failed to delete subscription schedule %s: %w", obj.ID, err)
	}
	return nil
}
