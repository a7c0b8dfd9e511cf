// internal/repository/postgres/subscription_schedule_repo.go
package postgres

import (
	"context"
	"fmt"
	"time"

	"orgbilling-service/internal/domain/billing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SubscriptionScheduleRepository struct {
	db *pgxpool.Pool
}

func NewSubscriptionScheduleRepository(db *pgxpool.Pool) *SubscriptionScheduleRepository {
	return &SubscriptionScheduleRepository{db: db}
}

// Upsert writes the schedule row and replaces its phases
func (r *SubscriptionScheduleRepository) Upsert(ctx context.Context, schedule *billing.SubscriptionSchedule) error {
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		query := `
			INSERT INTO stripe_subscription_schedules (
				stripe_id, subscription_id, created, current_phase_start, current_phase_end
			) VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (stripe_id) DO UPDATE SET
				subscription_id = EXCLUDED.subscription_id,
				created = EXCLUDED.created,
				current_phase_start = EXCLUDED.current_phase_start,
				current_phase_end = EXCLUDED.current_phase_end,
				updated_at = NOW()
		`
		if _, err := tx.Exec(ctx, query,
			schedule.StripeID, schedule.SubscriptionID, schedule.Created,
			schedule.CurrentPhaseStart, schedule.CurrentPhaseEnd,
		); err != nil {
			return fmt.Errorf("failed to upsert subscription schedule: %w", err)
		}

		if _, err := tx.Exec(ctx, `DELETE FROM stripe_subscription_schedule_phases WHERE schedule_id = $1`, schedule.StripeID); err != nil {
			return fmt.Errorf("failed to delete schedule phases: %w", err)
		}

		if len(schedule.Phases) == 0 {
			return nil
		}

		batch := &pgx.Batch{}
		for i, phase := range schedule.Phases {
			batch.Queue(`
				INSERT INTO stripe_subscription_schedule_phases (
					schedule_id, position, start_date, end_date, price_id, quantity
				) VALUES ($1, $2, $3, $4, $5, $6)
			`, schedule.StripeID, i, phase.StartDate, phase.EndDate, phase.PriceID, phase.Quantity)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to insert schedule phases: %w", err)
		}
		return nil
	})
}

func (r *SubscriptionScheduleRepository) FindByStripeID(ctx context.Context, stripeID string) (*billing.SubscriptionSchedule, error) {
	schedules, err := r.find(ctx, `WHERE s.stripe_id = $1`, stripeID)
	if err != nil {
		return nil, err
	}
	if len(schedules) == 0 {
		return nil, fmt.Errorf("failed to find subscription schedule: %w", translate(pgx.ErrNoRows))
	}
	return &schedules[0], nil
}

// FindBySubscriptionID lists schedules attached to a subscription, oldest first
func (r *SubscriptionScheduleRepository) FindBySubscriptionID(ctx context.Context, subscriptionID string) ([]billing.SubscriptionSchedule, error) {
	return r.find(ctx, `WHERE s.subscription_id = $1`, subscriptionID)
}

func (r *SubscriptionScheduleRepository) find(ctx context.Context, where string, arg string) ([]billing.SubscriptionSchedule, error) {
	query := `
		SELECT s.stripe_id, s.subscription_id, s.created, s.current_phase_start, s.current_phase_end,
		       ph.start_date, ph.end_date, ph.price_id, ph.quantity,
		       p.stripe_id, p.product_id, p.lookup_key, p.currency, p.unit_amount, p.active, p.metadata
		FROM stripe_subscription_schedules s
		LEFT JOIN stripe_subscription_schedule_phases ph ON ph.schedule_id = s.stripe_id
		LEFT JOIN stripe_prices p ON p.stripe_id = ph.price_id
		` + where + `
		ORDER BY s.created ASC, s.stripe_id ASC, ph.position ASC
	`

	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query subscription schedules: %w", err)
	}
	defer rows.Close()

	schedules := []billing.SubscriptionSchedule{}
	for rows.Next() {
		var sched billing.SubscriptionSchedule
		var (
			start, end *time.Time
			priceID    *string
			quantity   *int64
			price      joinedPrice
		)
		if err := rows.Scan(
			&sched.StripeID, &sched.SubscriptionID, &sched.Created,
			&sched.CurrentPhaseStart, &sched.CurrentPhaseEnd,
			&start, &end, &priceID, &quantity,
			&price.StripeID, &price.ProductID, &price.LookupKey, &price.Currency,
			&price.UnitAmount, &price.Active, &price.Metadata,
		); err != nil {
			return nil, fmt.Errorf("failed to scan subscription schedule: %w", err)
		}

		if n := len(schedules); n == 0 || schedules[n-1].StripeID != sched.StripeID {
			sched.Phases = []billing.SchedulePhase{}
			schedules = append(schedules, sched)
		}
		if priceID == nil {
			continue
		}

		phase := billing.SchedulePhase{
			StartDate: deref(start),
			EndDate:   deref(end),
			PriceID:   *priceID,
			Quantity:  deref(quantity),
		}
		phase.Price, err = price.toPrice()
		if err != nil {
			return nil, err
		}
		last := &schedules[len(schedules)-1]
		last.Phases = append(last.Phases, phase)
	}

	return schedules, rows.Err()
}

func (r *SubscriptionScheduleRepository) DeleteByStripeID(ctx context.Context, stripeID string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM stripe_subscription_schedules WHERE stripe_id = $1`, stripeID); err != nil {
		return fmt.Errorf("failed to delete subscription schedule: %w", err)
	}
	return nil
}
