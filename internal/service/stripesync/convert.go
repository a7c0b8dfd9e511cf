// internal/service/stripesync/convert.go
package stripesync

import (
	"fmt"
	"time"

	"orgbilling-service/internal/domain/billing"
	xerrors "orgbilling-service/internal/pkg/errors"

	"github.com/samber/lo"
	"github.com/stripe/stripe-go/v82"
)

func unixUTC(sec int64) time.Time {
	if sec == 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0).UTC()
}

func subscriptionFromStripe(obj *stripe.Subscription) (*billing.Subscription, error) {
	if obj.ID == "" {
		return nil, fmt.Errorf("subscription has no id: %w", xerrors.ErrInvalidInput)
	}

	var data []*stripe.SubscriptionItem
	if obj.Items != nil {
		data = obj.Items.Data
	}

	items := make([]billing.SubscriptionItem, 0, len(data))
	for _, item := range data {
		if item == nil {
			continue
		}
		if item.Price == nil || item.Price.ID == "" {
			return nil, fmt.Errorf("subscription item %s has no price: %w", item.ID, xerrors.ErrInvalidInput)
		}
		items = append(items, billing.SubscriptionItem{
			StripeID:             item.ID,
			StripeSubscriptionID: obj.ID,
			PriceID:              item.Price.ID,
			CurrentPeriodStart:   unixUTC(item.CurrentPeriodStart),
			CurrentPeriodEnd:     unixUTC(item.CurrentPeriodEnd),
		})
	}

	return &billing.Subscription{
		StripeID:          obj.ID,
		OrganizationID:    obj.Metadata[MetadataOrganizationID],
		PurchasedByID:     obj.Metadata[MetadataPurchasedByID],
		Created:           unixUTC(obj.Created),
		CancelAtPeriodEnd: obj.CancelAtPeriodEnd,
		Status:            billing.ProviderStatus(obj.Status),
		Items:             items,
	}, nil
}

func priceFromStripe(obj *stripe.Price) *billing.Price {
	price := &billing.Price{
		StripeID:   obj.ID,
		LookupKey:  obj.LookupKey,
		Currency:   string(obj.Currency),
		UnitAmount: obj.UnitAmount,
		Active:     obj.Active,
		Metadata:   lo.MapValues(obj.Metadata, func(v string, _ string) interface{} { return v }),
	}
	if obj.Product != nil {
		price.ProductID = obj.Product.ID
	}
	return price
}

func productFromStripe(obj *stripe.Product) *billing.Product {
	return &billing.Product{
		StripeID:    obj.ID,
		Name:        obj.Name,
		Description: obj.Description,
		Active:      obj.Active,
		Metadata:    obj.Metadata,
	}
}

func scheduleFromStripe(obj *stripe.SubscriptionSchedule) (*billing.SubscriptionSchedule, error) {
	// Released and not-yet-started schedules have no current phase.
	if obj.CurrentPhase == nil {
		return nil, fmt.Errorf("subscription schedule %s has no current phase: %w", obj.ID, errSkipped)
	}

	phases := make([]billing.SchedulePhase, 0, len(obj.Phases))
	for _, phase := range obj.Phases {
		if phase == nil {
			continue
		}
		item, ok := lo.Find(phase.Items, func(it *stripe.SubscriptionSchedulePhaseItem) bool {
			return it != nil && it.Price != nil && it.Price.ID != ""
		})
		if !ok {
			return nil, fmt.Errorf("subscription schedule %s: each phase must have at least one item with a price ID: %w",
				obj.ID, xerrors.ErrInvalidInput)
		}

		quantity := item.Quantity
		if quantity == 0 {
			quantity = 1
		}
		phases = append(phases, billing.SchedulePhase{
			StartDate: unixUTC(phase.StartDate),
			EndDate:   unixUTC(phase.EndDate),
			PriceID:   item.Price.ID,
			Quantity:  quantity,
		})
	}

	schedule := &billing.SubscriptionSchedule{
		StripeID:          obj.ID,
		Created:           unixUTC(obj.Created),
		CurrentPhaseStart: unixUTC(obj.CurrentPhase.StartDate),
		CurrentPhaseEnd:   unixUTC(obj.CurrentPhase.EndDate),
		Phases:            phases,
	}
	if obj.Subscription != nil {
		schedule.SubscriptionID = obj.Subscription.ID
	}
	return schedule, nil
}
