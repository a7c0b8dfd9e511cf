package postgres

import (
	"context"
	"testing"
	"time"

	"orgbilling-service/internal/domain/billing"
	xerrors "orgbilling-service/internal/pkg/errors"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSubscriptionRepos(t *testing.T) (*SubscriptionRepository, *SubscriptionScheduleRepository, *PriceRepository, func(string, ...interface{}) int) {
	t.Helper()
	pool := newTestPool(t)
	seedOrganization(t, pool, "org_1", "acme")
	seedOrganization(t, pool, "org_2", "globex")

	schedules := NewSubscriptionScheduleRepository(pool)
	count := func(query string, args ...interface{}) int { return countRows(t, pool, query, args...) }
	return NewSubscriptionRepository(pool, schedules), schedules, NewPriceRepository(pool), count
}

func testSubscription(id, orgID string, created time.Time, itemIDs ...string) *billing.Subscription {
	return &billing.Subscription{
		StripeID:       id,
		OrganizationID: orgID,
		PurchasedByID:  "user_1",
		Created:        created,
		Status:         billing.ProviderStatusActive,
		Items: lo.Map(itemIDs, func(itemID string, i int) billing.SubscriptionItem {
			return billing.SubscriptionItem{
				StripeID:           itemID,
				PriceID:            "price_startup",
				CurrentPeriodStart: created,
				CurrentPeriodEnd:   created.Add(time.Duration(30+i) * 24 * time.Hour),
			}
		}),
	}
}

func itemIDs(sub *billing.Subscription) []string {
	return lo.Map(sub.Items, func(item billing.SubscriptionItem, _ int) string { return item.StripeID })
}

func TestSubscriptionRepository_CreateAndFind(t *testing.T) {
	subs, _, _, _ := newSubscriptionRepos(t)
	ctx := context.Background()

	require.NoError(t, subs.Create(ctx, testSubscription("sub_1", "org_1", baseTime, "si_1", "si_2")))

	got, err := subs.FindByStripeID(ctx, "sub_1")
	require.NoError(t, err)
	assert.Equal(t, "org_1", got.OrganizationID)
	assert.Equal(t, "user_1", got.PurchasedByID)
	assert.Equal(t, billing.ProviderStatusActive, got.Status)
	assert.WithinDuration(t, baseTime, got.Created, 0)
	assert.Equal(t, []string{"si_1", "si_2"}, itemIDs(got))
	assert.Equal(t, "sub_1", got.Items[0].StripeSubscriptionID)
	assert.WithinDuration(t, baseTime.Add(31*24*time.Hour), got.Items[1].CurrentPeriodEnd, 0)
	assert.Empty(t, got.Schedules)

	err = subs.Create(ctx, testSubscription("sub_1", "org_1", baseTime))
	assert.ErrorIs(t, err, xerrors.ErrConflict)

	_, err = subs.FindByStripeID(ctx, "sub_missing")
	assert.ErrorIs(t, err, xerrors.ErrNotFound)
}

func TestSubscriptionRepository_UpdateReplacesItems(t *testing.T) {
	subs, _, _, count := newSubscriptionRepos(t)
	ctx := context.Background()

	require.NoError(t, subs.Create(ctx, testSubscription("sub_1", "org_1", baseTime, "si_1", "si_2")))

	updated := testSubscription("sub_1", "org_1", baseTime, "si_3")
	updated.CancelAtPeriodEnd = true
	updated.Status = billing.ProviderStatusPastDue

	// The same delivery applied twice converges on one item set.
	require.NoError(t, subs.Update(ctx, updated))
	require.NoError(t, subs.Update(ctx, updated))

	got, err := subs.FindByStripeID(ctx, "sub_1")
	require.NoError(t, err)
	assert.Equal(t, []string{"si_3"}, itemIDs(got))
	assert.True(t, got.CancelAtPeriodEnd)
	assert.Equal(t, billing.ProviderStatusPastDue, got.Status)
	assert.Equal(t, 1, count(`SELECT COUNT(*) FROM stripe_subscription_items WHERE stripe_subscription_id = $1`, "sub_1"))

	err = subs.Update(ctx, testSubscription("sub_missing", "org_1", baseTime, "si_9"))
	assert.ErrorIs(t, err, xerrors.ErrNotFound)
	assert.Equal(t, 0, count(`SELECT COUNT(*) FROM stripe_subscription_items WHERE stripe_id = $1`, "si_9"))
}

func TestSubscriptionRepository_CreateRollsBackOnItemFailure(t *testing.T) {
	subs, _, _, count := newSubscriptionRepos(t)
	ctx := context.Background()

	err := subs.Create(ctx, testSubscription("sub_1", "org_1", baseTime, "si_dup", "si_dup"))
	require.Error(t, err)
	assert.ErrorIs(t, err, xerrors.ErrConflict)

	_, err = subs.FindByStripeID(ctx, "sub_1")
	assert.ErrorIs(t, err, xerrors.ErrNotFound)
	assert.Equal(t, 0, count(`SELECT COUNT(*) FROM stripe_subscriptions`))
	assert.Equal(t, 0, count(`SELECT COUNT(*) FROM stripe_subscription_items`))
}

func TestSubscriptionRepository_UpdateRollsBackOnItemFailure(t *testing.T) {
	subs, _, _, _ := newSubscriptionRepos(t)
	ctx := context.Background()

	require.NoError(t, subs.Create(ctx, testSubscription("sub_1", "org_1", baseTime, "si_1")))

	broken := testSubscription("sub_1", "org_1", baseTime, "si_dup", "si_dup")
	broken.Status = billing.ProviderStatusCanceled
	require.Error(t, subs.Update(ctx, broken))

	got, err := subs.FindByStripeID(ctx, "sub_1")
	require.NoError(t, err)
	assert.Equal(t, billing.ProviderStatusActive, got.Status)
	assert.Equal(t, []string{"si_1"}, itemIDs(got))
}

func TestSubscriptionRepository_FindLatestByOrganizationID(t *testing.T) {
	subs, _, _, _ := newSubscriptionRepos(t)
	ctx := context.Background()

	// Insertion order differs from creation order on purpose.
	require.NoError(t, subs.Create(ctx, testSubscription("sub_new", "org_1", baseTime.Add(48*time.Hour), "si_new")))
	require.NoError(t, subs.Create(ctx, testSubscription("sub_old", "org_1", baseTime, "si_old")))
	require.NoError(t, subs.Create(ctx, testSubscription("sub_other", "org_2", baseTime.Add(96*time.Hour), "si_other")))

	got, err := subs.FindLatestByOrganizationID(ctx, "org_1")
	require.NoError(t, err)
	assert.Equal(t, "sub_new", got.StripeID)
	assert.Equal(t, []string{"si_new"}, itemIDs(got))

	_, err = subs.FindLatestByOrganizationID(ctx, "org_none")
	assert.ErrorIs(t, err, xerrors.ErrNotFound)
}

func TestSubscriptionRepository_ItemsJoinPrices(t *testing.T) {
	subs, _, prices, _ := newSubscriptionRepos(t)
	ctx := context.Background()

	require.NoError(t, prices.Upsert(ctx, &billing.Price{
		StripeID:   "price_startup",
		ProductID:  "prod_1",
		LookupKey:  "startup_monthly",
		Currency:   "usd",
		UnitAmount: 2000,
		Active:     true,
		Metadata:   map[string]interface{}{"max_seats": "10"},
	}))

	sub := testSubscription("sub_1", "org_1", baseTime, "si_priced", "si_unpriced")
	sub.Items[1].PriceID = "price_not_synced_yet"
	require.NoError(t, subs.Create(ctx, sub))

	got, err := subs.FindByStripeID(ctx, "sub_1")
	require.NoError(t, err)
	require.Len(t, got.Items, 2)

	require.NotNil(t, got.Items[0].Price)
	assert.Equal(t, "startup_monthly", got.Items[0].Price.LookupKey)
	assert.Equal(t, int64(2000), got.Items[0].Price.UnitAmount)
	assert.Equal(t, "10", got.Items[0].Price.Metadata["max_seats"])

	assert.Equal(t, "price_not_synced_yet", got.Items[1].PriceID)
	assert.Nil(t, got.Items[1].Price)
}

func TestSubscriptionRepository_FindIncludesSchedules(t *testing.T) {
	subs, schedules, _, _ := newSubscriptionRepos(t)
	ctx := context.Background()

	require.NoError(t, subs.Create(ctx, testSubscription("sub_1", "org_1", baseTime, "si_1")))
	require.NoError(t, schedules.Upsert(ctx, testSchedule("sub_sched_1", "sub_1", baseTime, "price_a")))

	got, err := subs.FindByStripeID(ctx, "sub_1")
	require.NoError(t, err)
	require.Len(t, got.Schedules, 1)
	assert.Equal(t, "sub_sched_1", got.Schedules[0].StripeID)
	assert.Len(t, got.Schedules[0].Phases, 1)
}
