// internal/pkg/dedup/redis_deduper.go
package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL covers Stripe's retry horizon for a single delivery.
const DefaultTTL = 72 * time.Hour

// Deduper remembers event ids that were already handled.
type Deduper struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewDeduper(client *redis.Client, prefix string, ttl time.Duration) *Deduper {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Deduper{client: client, prefix: prefix, ttl: ttl}
}

// Seen reports whether id was marked processed.
func (d *Deduper) Seen(ctx context.Context, id string) (bool, error) {
	n, err := d.client.Exists(ctx, d.key(id)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check processed event: %w", err)
	}
	return n > 0, nil
}

// MarkProcessed records id. It returns false when id had already been recorded.
func (d *Deduper) MarkProcessed(ctx context.Context, id string) (bool, error) {
	ok, err := d.client.SetNX(ctx, d.key(id), "1", d.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark event processed: %w", err)
	}
	return ok, nil
}

func (d *Deduper) key(id string) string {
	return fmt.Sprintf("%s:%s", d.prefix, id)
}
