// Package policy maps trip characteristics to a reimbursement amount.
package policy

// Tier names the rule that produced an amount
type Tier string

const (
	TierLocal         Tier = "LOCAL"
	TierSameProvince  Tier = "SAME_PROVINCE"
	TierSameIsland    Tier = "SAME_ISLAND"
	TierInternational Tier = "INTERNATIONAL"
	TierInterIsland   Tier = "INTER_ISLAND"
)

// Rates holds the per-day amounts for each tier and the local radius
type Rates struct {
	LocalRadiusKm float64 `mapstructure:"local_radius_km"`
	SameProvince  int64   `mapstructure:"same_province"`
	SameIsland    int64   `mapstructure:"same_island"`
	International int64   `mapstructure:"international"`
	InterIsland   int64   `mapstructure:"inter_island"`
}

// DefaultRates returns the standard perdin allowance table (IDR per day).
// The international rate is intentionally the literal 50/day.
func DefaultRates() Rates {
	return Rates{
		LocalRadiusKm: 60,
		SameProvince:  200000,
		SameIsland:    250000,
		International: 50,
		InterIsland:   300000,
	}
}

// Input describes a trip for cost evaluation
type Input struct {
	DistanceKm   float64
	SameProvince bool
	SameIsland   bool
	AnyForeign   bool
	DurationDays int
}

// CostPolicy evaluates tiered reimbursement rules
type CostPolicy struct {
	rates Rates
}

// New creates a CostPolicy with the given rates
func New(rates Rates) *CostPolicy {
	return &CostPolicy{rates: rates}
}

// Rates returns the configured rates
func (p *CostPolicy) Rates() Rates {
	return p.rates
}

// Cost returns the reimbursement amount for a trip
func (p *CostPolicy) Cost(distanceKm float64, sameProvince, sameIsland, anyForeign bool, durationDays int) int64 {
	amount, _ := p.Evaluate(Input{
		DistanceKm:   distanceKm,
		SameProvince: sameProvince,
		SameIsland:   sameIsland,
		AnyForeign:   anyForeign,
		DurationDays: durationDays,
	})
	return amount
}

// Evaluate returns the amount and the tier that matched. Rules are checked
// in order and the first match wins.
func (p *CostPolicy) Evaluate(in Input) (int64, Tier) {
	days := int64(in.DurationDays)

	switch {
	case in.DistanceKm <= p.rates.LocalRadiusKm:
		return 0, TierLocal
	case in.SameProvince:
		return p.rates.SameProvince * days, TierSameProvince
	case in.SameIsland:
		return p.rates.SameIsland * days, TierSameIsland
	case in.AnyForeign:
		return p.rates.International * days, TierInternational
	default:
		return p.rates.InterIsland * days, TierInterIsland
	}
}
