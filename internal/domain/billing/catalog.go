// internal/domain/billing/catalog.go
package billing

import (
	"fmt"
	"strings"

	xerrors "orgbilling-service/internal/pkg/errors"
)

type Tier string

const (
	TierLow  Tier = "low"
	TierMid  Tier = "mid"
	TierHigh Tier = "high"
)

type Interval string

const (
	IntervalMonthly Interval = "monthly"
	IntervalAnnual  Interval = "annual"
)

// AnnualLookupKeySuffix marks prices billed once a year.
const AnnualLookupKeySuffix = "_annual"

type CatalogEntry struct {
	ID        string
	LookupKey string
}

// PricesByTierAndInterval is the canonical price table, keyed "<tier>_<interval>".
var PricesByTierAndInterval = map[string]CatalogEntry{
	"low_monthly":  {ID: "price_1RcLuQBuHfmTq3nRl8sVmLcA", LookupKey: "hobby_monthly"},
	"low_annual":   {ID: "price_1RcLuQBuHfmTq3nRyQ2mZpKe", LookupKey: "hobby_annual"},
	"mid_monthly":  {ID: "price_1RcLvGBuHfmTq3nR4xTnWb7D", LookupKey: "startup_monthly"},
	"mid_annual":   {ID: "price_1RcLvGBuHfmTq3nRhJ0aQe5F", LookupKey: "startup_annual"},
	"high_monthly": {ID: "price_1RcLw1BuHfmTq3nRcU9kPz2G", LookupKey: "business_monthly"},
	"high_annual":  {ID: "price_1RcLw1BuHfmTq3nRvE6sYd8H", LookupKey: "business_annual"},
}

// catalogOrder keeps iteration deterministic.
var catalogOrder = []string{
	"low_monthly", "low_annual",
	"mid_monthly", "mid_annual",
	"high_monthly", "high_annual",
}

func catalogKey(tier Tier, interval Interval) string {
	return string(tier) + "_" + string(interval)
}

// PriceIDForTierAndInterval returns the Stripe price id for a tier and interval.
func PriceIDForTierAndInterval(tier Tier, interval Interval) (string, error) {
	entry, ok := PricesByTierAndInterval[catalogKey(tier, interval)]
	if !ok {
		return "", fmt.Errorf("Invalid tier/interval combination: %s/%s: %w", tier, interval, xerrors.ErrInvalidInput)
	}
	return entry.ID, nil
}

// TierAndIntervalForPriceID is the inverse of PriceIDForTierAndInterval.
func TierAndIntervalForPriceID(priceID string) (Tier, Interval, error) {
	for _, key := range catalogOrder {
		if PricesByTierAndInterval[key].ID != priceID {
			continue
		}
		tier, interval, _ := strings.Cut(key, "_")
		return Tier(tier), Interval(interval), nil
	}
	return "", "", fmt.Errorf("Invalid price ID: %s: %w", priceID, xerrors.ErrInvalidInput)
}

// PriceIDForLookupKey resolves a lookup key such as "startup_annual".
func PriceIDForLookupKey(lookupKey string) (string, error) {
	for _, key := range catalogOrder {
		if entry := PricesByTierAndInterval[key]; entry.LookupKey == lookupKey {
			return entry.ID, nil
		}
	}
	return "", fmt.Errorf("Unknown lookupKey %q: %w", lookupKey, xerrors.ErrInvalidInput)
}

// LookupKeys lists every lookup key in table order.
func LookupKeys() []string {
	keys := make([]string, 0, len(catalogOrder))
	for _, key := range catalogOrder {
		keys = append(keys, PricesByTierAndInterval[key].LookupKey)
	}
	return keys
}
