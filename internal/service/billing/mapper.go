// internal/service/billing/mapper.go
package billing

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"orgbilling-service/internal/domain/billing"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// Values shown while an organization has never checked out.
const (
	TrialMonthlyRatePerUser = 85
	TrialTierName           = "Business (Trial)"
	TrialMaxSeats           = 25
)

var (
	minorUnitsPerMajor = decimal.NewFromInt(100)
	monthsPerYear      = decimal.NewFromInt(12)
)

// MapSnapshotToBillingPage derives the billing page from the latest subscription
// snapshot of an organization as seen at now.
func MapSnapshotToBillingPage(snapshot billing.OrganizationSnapshot, now time.Time) billing.BillingPage {
	org := snapshot.Organization
	members := snapshot.MemberCount
	sub := snapshot.Subscription

	if sub == nil {
		return billing.BillingPage{
			BillingEmail:              org.BillingEmail,
			CancelAtPeriodEnd:         false,
			CurrentMonthlyRatePerUser: TrialMonthlyRatePerUser,
			CurrentPeriodEnd:          org.TrialEnd,
			CurrentSeats:              members,
			CurrentTierName:           TrialTierName,
			IsEnterprisePlan:          false,
			IsOnFreeTrial:             true,
			MaxSeats:                  TrialMaxSeats,
			OrganizationSlug:          org.Slug,
			ProjectedTotal:            float64(TrialMonthlyRatePerUser * members),
			SubscriptionStatus:        billing.StatusActive,
		}
	}

	var (
		periodEnd time.Time
		rate      = decimal.Zero
		tierName  string
		maxSeats  = billing.DefaultMaxSeats
	)

	if len(sub.Items) > 0 {
		// Items can be out of phase during plan changes; the latest end wins.
		latest := lo.MaxBy(sub.Items, func(a, b billing.SubscriptionItem) bool {
			return a.CurrentPeriodEnd.After(b.CurrentPeriodEnd)
		})
		periodEnd = latest.CurrentPeriodEnd

		// The first item carries the tier for the whole subscription.
		if price := sub.Items[0].Price; price != nil {
			maxSeats = billing.MaxSeatsFromMetadata(price.Metadata).Resolve()
			rate = MonthlyRatePerUser(price.UnitAmount, price.LookupKey)
			tierName = TierNameFromLookupKey(price.LookupKey)
		}
	}

	return billing.BillingPage{
		BillingEmail:              org.BillingEmail,
		CancelAtPeriodEnd:         sub.CancelAtPeriodEnd,
		CurrentMonthlyRatePerUser: rate.InexactFloat64(),
		CurrentPeriodEnd:          periodEnd,
		CurrentSeats:              members,
		CurrentTierName:           tierName,
		IsEnterprisePlan:          false,
		IsOnFreeTrial:             false,
		MaxSeats:                  maxSeats,
		OrganizationSlug:          org.Slug,
		ProjectedTotal:            rate.Mul(decimal.NewFromInt(int64(members))).InexactFloat64(),
		SubscriptionStatus:        ClassifyStatus(sub.CancelAtPeriodEnd, sub.Status, periodEnd, now),
	}
}

// MonthlyRatePerUser converts a unit amount in minor units to a monthly rate in
// major units. Annual prices are spread over twelve months and rounded to a whole
// minor unit before the conversion.
func MonthlyRatePerUser(unitAmount int64, lookupKey string) decimal.Decimal {
	cents := decimal.NewFromInt(unitAmount)
	if strings.HasSuffix(lookupKey, billing.AnnualLookupKeySuffix) {
		cents = cents.Div(monthsPerYear).Round(0)
	}
	return cents.Div(minorUnitsPerMajor)
}

// TierNameFromLookupKey turns "startup_monthly" into "Startup".
func TierNameFromLookupKey(lookupKey string) string {
	tierKey, _, _ := strings.Cut(lookupKey, "_")
	if tierKey == "" {
		return ""
	}
	first, size := utf8.DecodeRuneInString(tierKey)
	return string(unicode.ToUpper(first)) + tierKey[size:]
}

// ClassifyStatus folds the provider status into active, inactive or paused.
func ClassifyStatus(cancelAtPeriodEnd bool, status billing.ProviderStatus, periodEnd, now time.Time) billing.SubscriptionStatus {
	if cancelAtPeriodEnd && now.Before(periodEnd) {
		return billing.StatusPaused
	}
	if status == billing.ProviderStatusActive || status == billing.ProviderStatusTrialing {
		return billing.StatusActive
	}
	return billing.StatusInactive
}
