package pricing

import (
	"fmt"
	"math"
	"sort"

	"github.com/shopspring/decimal"
)

// FeeTier maps a distance band to a flat delivery fee. A tier covers all
// distances up to and including UpToKm.
type FeeTier struct {
	UpToKm float64
	Fee    decimal.Decimal
}

// FeePolicy derives a delivery fee from the matched florist's distance.
// The fee function is deterministic and monotonic in distance: tier fees
// must be non-decreasing, and distances beyond the last tier accrue
// OverflowPerKm per started kilometre on top of the last tier's fee.
type FeePolicy struct {
	Tiers         []FeeTier
	OverflowPerKm decimal.Decimal
}

// DefaultFeePolicy returns the standard delivery fee tiering.
func DefaultFeePolicy() FeePolicy {
	return FeePolicy{
		Tiers: []FeeTier{
			{UpToKm: 5, Fee: decimal.NewFromInt(49)},
			{UpToKm: 10, Fee: decimal.NewFromInt(69)},
			{UpToKm: 20, Fee: decimal.NewFromInt(99)},
		},
		OverflowPerKm: decimal.NewFromInt(8),
	}
}

// Validate checks that the policy is well-formed and monotonic.
func (p FeePolicy) Validate() error {
	if len(p.Tiers) == 0 {
		return fmt.Errorf("fee policy requires at least one tier")
	}

	prev := FeeTier{UpToKm: 0, Fee: decimal.Zero}
	for i, tier := range p.Tiers {
		if tier.UpToKm <= prev.UpToKm {
			return fmt.Errorf("fee tier %d: distances must be strictly increasing", i)
		}
		if tier.Fee.IsNegative() || tier.Fee.LessThan(prev.Fee) {
			return fmt.Errorf("fee tier %d: fees must be non-negative and non-decreasing", i)
		}
		prev = tier
	}

	if p.OverflowPerKm.IsNegative() {
		return fmt.Errorf("overflow rate must be non-negative")
	}

	return nil
}

// FeeFor returns the delivery fee for the given distance. Distances at or
// below zero fall into the first tier.
func (p FeePolicy) FeeFor(distanceKm float64) decimal.Decimal {
	idx := sort.Search(len(p.Tiers), func(i int) bool {
		return distanceKm <= p.Tiers[i].UpToKm
	})
	if idx < len(p.Tiers) {
		return p.Tiers[idx].Fee
	}

	last := p.Tiers[len(p.Tiers)-1]
	extraKm := math.Ceil(distanceKm - last.UpToKm)
	return last.Fee.Add(p.OverflowPerKm.Mul(decimal.NewFromFloat(extraKm)))
}
