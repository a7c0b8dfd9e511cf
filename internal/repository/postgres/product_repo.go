// internal/repository/postgres/product_repo.go
package postgres

import (
	"context"
	"fmt"

	"orgbilling-service/internal/domain/billing"

	"github.com/jackc/pgx/v5/pgxpool"
)

type ProductRepository struct {
	db *pgxpool.Pool
}

func NewProductRepository(db *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) Upsert(ctx context.Context, product *billing.Product) error {
	query := `
		INSERT INTO stripe_products (stripe_id, name, description, active, metadata)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (stripe_id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			active = EXCLUDED.active,
			metadata = EXCLUDED.metadata,
			updated_at = NOW()
	`

	metadataJSON, err := marshalMetadata(product.Metadata)
	if err != nil {
		return err
	}

	if _, err := r.db.Exec(ctx, query,
		product.StripeID, product.Name, product.Description, product.Active, metadataJSON,
	); err != nil {
		return fmt.Errorf("failed to upsert product: %w", err)
	}
	return nil
}

func (r *ProductRepository) FindByStripeID(ctx context.Context, stripeID string) (*billing.Product, error) {
	query := `
		SELECT stripe_id, name, description, active, metadata
		FROM stripe_products
		WHERE stripe_id = $1
	`

	var product billing.Product
	var metadataJSON []byte
	err := r.db.QueryRow(ctx, query, stripeID).Scan(
		&product.StripeID, &product.Name, &product.Description, &product.Active, &metadataJSON,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to find product: %w", translate(err))
	}

	if err := unmarshalMetadata(metadataJSON, &product.Metadata); err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *ProductRepository) DeleteByStripeID(ctx context.Context, stripeID string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM stripe_products WHERE stripe_id = $1`, stripeID); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}
