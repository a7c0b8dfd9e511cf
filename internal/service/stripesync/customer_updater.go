// internal/service/stripesync/customer_updater.go
package stripesync

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/customer"
)

// StripeCustomerUpdater writes through the Stripe customers API.
type StripeCustomerUpdater struct {
	client *customer.Client
}

func NewStripeCustomerUpdater(secretKey string) *StripeCustomerUpdater {
	return &StripeCustomerUpdater{
		client: &customer.Client{B: stripe.GetBackend(stripe.APIBackend), Key: secretKey},
	}
}

func (u *StripeCustomerUpdater) UpdateCustomer(_ context.Context, customerID, name, organizationID string) error {
	params := &stripe.CustomerParams{
		Name: stripe.String(name),
		Metadata: map[string]string{
			MetadataOrganizationID: organizationID,
		},
	}
	if _, err := u.client.Update(customerID, params); err != nil {
		return fmt.Errorf("stripe customer update: %w", err)
	}
	return nil
}
