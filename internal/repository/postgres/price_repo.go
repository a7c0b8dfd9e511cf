// internal/repository/postgres/price_repo.go
package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"orgbilling-service/internal/domain/billing"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PriceRepository struct {
	db *pgxpool.Pool
}

func NewPriceRepository(db *pgxpool.Pool) *PriceRepository {
	return &PriceRepository{db: db}
}

// Upsert creates or overwrites a price.
func (r *PriceRepository) Upsert(ctx context.Context, price *billing.Price) error {
	query := `
		INSERT INTO stripe_prices (stripe_id, product_id, lookup_key, currency, unit_amount, active, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (stripe_id) DO UPDATE SET
			product_id = EXCLUDED.product_id,
			lookup_key = EXCLUDED.lookup_key,
			currency = EXCLUDED.currency,
			unit_amount = EXCLUDED.unit_amount,
			active = EXCLUDED.active,
			metadata = EXCLUDED.metadata,
			updated_at = NOW()
	`

	metadataJSON, err := marshalMetadata(price.Metadata)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, query,
		price.StripeID, price.ProductID, price.LookupKey, price.Currency,
		price.UnitAmount, price.Active, metadataJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert price: %w", err)
	}
	return nil
}

// FindByStripeID retrieves a price by its Stripe id
func (r *PriceRepository) FindByStripeID(ctx context.Context, stripeID string) (*billing.Price, error) {
	query := `
		SELECT stripe_id, product_id, lookup_key, currency, unit_amount, active, metadata
		FROM stripe_prices
		WHERE stripe_id = $1
	`

	var price billing.Price
	var metadataJSON []byte
	err := r.db.QueryRow(ctx, query, stripeID).Scan(
		&price.StripeID, &price.ProductID, &price.LookupKey, &price.Currency,
		&price.UnitAmount, &price.Active, &metadataJSON,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to find price: %w", translate(err))
	}

	if err := unmarshalMetadata(metadataJSON, &price.Metadata); err != nil {
		return nil, err
	}
	return &price, nil
}

// DeleteByStripeID removes a price. Deleting an unknown price is not an error.
func (r *PriceRepository) DeleteByStripeID(ctx context.Context, stripeID string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM stripe_prices WHERE stripe_id = $1`, stripeID); err != nil {
		return fmt.Errorf("failed to delete price: %w", err)
	}
	return nil
}

func marshalMetadata(v interface{}) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metadata: %w", err)
	}
	if string(b) == "null" {
		return []byte("{}"), nil
	}
	return b, nil
}

func unmarshalMetadata(b []byte, v interface{}) error {
	if len(b) == 0 {
		return nil
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("failed to unmarshal metadata: %w", err)
	}
	return nil
}
