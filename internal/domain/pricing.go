package domain

import "time"

// Default tariff, in the smallest currency unit.
const (
	DefaultFirstHourRate int64 = 10000
	DefaultExtraHourRate int64 = 5000
)

// PricingPolicy maps an elapsed parking duration to a billed cost. Pure:
// no side effects, no error conditions.
type PricingPolicy struct {
	FirstHourRate int64
	ExtraHourRate int64
}

func DefaultPricing() PricingPolicy {
	return PricingPolicy{
		FirstHourRate: DefaultFirstHourRate,
		ExtraHourRate: DefaultExtraHourRate,
	}
}

// Quote bills any started hour in full and never less than one hour. A zero
// or negative elapsed duration (clock skew) still bills the first hour.
func (p PricingPolicy) Quote(elapsed time.Duration) (hours int, cost int64) {
	hours = int((elapsed + time.Hour - 1) / time.Hour)
	if hours < 1 {
		hours = 1
	}
	cost = p.FirstHourRate + int64(hours-1)*p.ExtraHourRate
	return hours, cost
}
