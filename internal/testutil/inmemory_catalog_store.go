package testutil

import (
	"context"
	"maps"

	"orgbilling-service/internal/domain/billing"
)

// InMemoryPriceStore implements billing.PriceRepository
type InMemoryPriceStore struct {
	*InMemoryStore[billing.Price]
}

func NewInMemoryPriceStore() *InMemoryPriceStore {
	return &InMemoryPriceStore{InMemoryStore: NewInMemoryStore[billing.Price]()}
}

func (s *InMemoryPriceStore) Upsert(ctx context.Context, price *billing.Price) error {
	p := *price
	p.Metadata = maps.Clone(price.Metadata)
	return s.InMemoryStore.Upsert(ctx, p.StripeID, p)
}

func (s *InMemoryPriceStore) FindByStripeID(ctx context.Context, stripeID string) (*billing.Price, error) {
	p, err := s.InMemoryStore.Get(ctx, stripeID)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *InMemoryPriceStore) DeleteByStripeID(ctx context.Context, stripeID string) error {
	return s.InMemoryStore.Delete(ctx, stripeID)
}

// InMemoryProductStore implements billing.ProductRepository
type InMemoryProductStore struct {
	*InMemoryStore[billing.Product]
}

func NewInMemoryProductStore() *InMemoryProductStore {
	return &InMemoryProductStore{InMemoryStore: NewInMemoryStore[billing.Product]()}
}

func (s *InMemoryProductStore) Upsert(ctx context.Context, product *billing.Product) error {
	p := *product
	p.Metadata = maps.Clone(product.Metadata)
	return s.InMemoryStore.Upsert(ctx, p.StripeID, p)
}

func (s *InMemoryProductStore) FindByStripeID(ctx context.Context, stripeID string) (*billing.Product, error) {
	p, err := s.InMemoryStore.Get(ctx, stripeID)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *InMemoryProductStore) DeleteByStripeID(ctx context.Context, stripeID string) error {
	return s.InMemoryStore.Delete(ctx, stripeID)
}
