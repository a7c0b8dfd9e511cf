package postgres

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	xerrors "orgbilling-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestTranslate(t *testing.T) {
	assert.NoError(t, translate(nil))
	assert.ErrorIs(t, translate(pgx.ErrNoRows), xerrors.ErrNotFound)
	assert.ErrorIs(t, translate(fmt.Errorf("scan: %w", pgx.ErrNoRows)), xerrors.ErrNotFound)

	unique := &pgconn.PgError{Code: pgUniqueViolation, ConstraintName: "stripe_subscriptions_pkey"}
	err := translate(unique)
	assert.ErrorIs(t, err, xerrors.ErrConflict)
	assert.Contains(t, err.Error(), "stripe_subscriptions_pkey")

	other := errors.New("connection reset")
	assert.Equal(t, other, translate(other))
}

func TestSchema_DeclaresEveryTable(t *testing.T) {
	for _, table := range []string{
		"user_accounts",
		"organizations",
		"organization_memberships",
		"stripe_products",
		"stripe_prices",
		"stripe_subscriptions",
		"stripe_subscription_items",
		"stripe_subscription_schedules",
		"stripe_subscription_schedule_phases",
	} {
		assert.True(t, strings.Contains(schemaSQL, "CREATE TABLE IF NOT EXISTS "+table+" ("), table)
	}
}
