package testutil

import (
	"context"
	"errors"
	"sort"

	"orgbilling-service/internal/domain/billing"
	xerrors "orgbilling-service/internal/pkg/errors"

	"github.com/samber/lo"
)

// InMemorySubscriptionStore implements billing.SubscriptionRepository. Reads join
// prices and schedules from the stores it was built with, like the SQL version.
type InMemorySubscriptionStore struct {
	*InMemoryStore[billing.Subscription]
	prices    *InMemoryPriceStore
	schedules *InMemorySubscriptionScheduleStore
}

func NewInMemorySubscriptionStore(prices *InMemoryPriceStore, schedules *InMemorySubscriptionScheduleStore) *InMemorySubscriptionStore {
	return &InMemorySubscriptionStore{
		InMemoryStore: NewInMemoryStore[billing.Subscription](),
		prices:        prices,
		schedules:     schedules,
	}
}

func (s *InMemorySubscriptionStore) Create(ctx context.Context, sub *billing.Subscription) error {
	return s.InMemoryStore.Create(ctx, sub.StripeID, copySubscription(sub))
}

func (s *InMemorySubscriptionStore) Update(ctx context.Context, sub *billing.Subscription) error {
	return s.InMemoryStore.Update(ctx, sub.StripeID, copySubscription(sub))
}

func (s *InMemorySubscriptionStore) FindByStripeID(ctx context.Context, stripeID string) (*billing.Subscription, error) {
	sub, err := s.InMemoryStore.Get(ctx, stripeID)
	if err != nil {
		return nil, err
	}
	return s.hydrate(ctx, sub)
}

func (s *InMemorySubscriptionStore) FindLatestByOrganizationID(ctx context.Context, organizationID string) (*billing.Subscription, error) {
	all, err := s.InMemoryStore.List(ctx)
	if err != nil {
		return nil, err
	}

	owned := lo.Filter(all, func(sub billing.Subscription, _ int) bool {
		return sub.OrganizationID == organizationID
	})
	if len(owned) == 0 {
		return nil, xerrors.ErrNotFound
	}

	sort.SliceStable(owned, func(i, j int) bool {
		return owned[i].Created.After(owned[j].Created)
	})
	return s.hydrate(ctx, owned[0])
}

func (s *InMemorySubscriptionStore) hydrate(ctx context.Context, sub billing.Subscription) (*billing.Subscription, error) {
	out := copySubscription(&sub)
	for i := range out.Items {
		if s.prices == nil {
			break
		}
		price, err := s.prices.FindByStripeID(ctx, out.Items[i].PriceID)
		if errors.Is(err, xerrors.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out.Items[i].Price = price
	}

	if s.schedules != nil {
		schedules, err := s.schedules.ListBySubscriptionID(ctx, out.StripeID)
		if err != nil {
			return nil, err
		}
		out.Schedules = schedules
	}
	return &out, nil
}

func copySubscription(sub *billing.Subscription) billing.Subscription {
	out := *sub
	out.Items = lo.Map(sub.Items, func(item billing.SubscriptionItem, _ int) billing.SubscriptionItem {
		item.Price = nil
		return item
	})
	out.Schedules = nil
	return out
}

// InMemorySubscriptionScheduleStore implements billing.SubscriptionScheduleRepository
type InMemorySubscriptionScheduleStore struct {
	*InMemoryStore[billing.SubscriptionSchedule]
}

func NewInMemorySubscriptionScheduleStore() *InMemorySubscriptionScheduleStore {
	return &InMemorySubscriptionScheduleStore{InMemoryStore: NewInMemoryStore[billing.SubscriptionSchedule]()}
}

func (s *InMemorySubscriptionScheduleStore) Upsert(ctx context.Context, schedule *billing.SubscriptionSchedule) error {
	sched := *schedule
	sched.Phases = lo.Map(schedule.Phases, func(p billing.SchedulePhase, _ int) billing.SchedulePhase {
		p.Price = nil
		return p
	})
	return s.InMemoryStore.Upsert(ctx, sched.StripeID, sched)
}

func (s *InMemorySubscriptionScheduleStore) FindByStripeID(ctx context.Context, stripeID string) (*billing.SubscriptionSchedule, error) {
	sched, err := s.InMemoryStore.Get(ctx, stripeID)
	if err != nil {
		return nil, err
	}
	return &sched, nil
}

func (s *InMemorySubscriptionScheduleStore) DeleteByStripeID(ctx context.Context, stripeID string) error {
	return s.InMemoryStore.Delete(ctx, stripeID)
}

func (s *InMemorySubscriptionScheduleStore) ListBySubscriptionID(ctx context.Context, subscriptionID string) ([]billing.SubscriptionSchedule, error) {
	all, err := s.InMemoryStore.List(ctx)
	if err != nil {
		return nil, err
	}
	return lo.Filter(all, func(sched billing.SubscriptionSchedule, _ int) bool {
		return sched.SubscriptionID == subscriptionID
	}), nil
}
