package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Tariff encodes a three-tier progressive rate schedule plus a fixed base
// charge. Amounts are JPY, consumption is kWh.
type Tariff struct {
	BaseCharge decimal.Decimal
	Tier1Limit decimal.Decimal
	Tier2Limit decimal.Decimal
	Rate1      decimal.Decimal
	Rate2      decimal.Decimal
	Rate3      decimal.Decimal
}

// Default returns the fixed schedule this tool was written against.
func Default() Tariff {
	return Tariff{
		BaseCharge: decimal.NewFromFloat(29.10),
		Tier1Limit: decimal.NewFromInt(120),
		Tier2Limit: decimal.NewFromInt(300),
		Rate1:      decimal.NewFromFloat(20.62),
		Rate2:      decimal.NewFromFloat(25.29),
		Rate3:      decimal.NewFromFloat(28.44),
	}
}

// Validate rejects schedules that cannot price anything sensibly.
func (t Tariff) Validate() error {
	if t.Tier1Limit.Sign() <= 0 {
		return fmt.Errorf("tariff: tier1 limit must be positive")
	}
	if !t.Tier2Limit.GreaterThan(t.Tier1Limit) {
		return fmt.Errorf("tariff: tier2 limit must exceed tier1 limit")
	}
	for _, rate := range []decimal.Decimal{t.BaseCharge, t.Rate1, t.Rate2, t.Rate3} {
		if rate.Sign() < 0 {
			return fmt.Errorf("tariff: charges cannot be negative")
		}
	}
	return nil
}

// EstimateCost prices total daily consumption against the schedule and
// rounds half-up to 2 decimal places. Non-positive consumption still pays
// the base charge.
func (t Tariff) EstimateCost(totalKwh decimal.Decimal) decimal.Decimal {
	cost := t.BaseCharge

	if totalKwh.Sign() > 0 {
		tier1 := decimal.Min(totalKwh, t.Tier1Limit)
		cost = cost.Add(tier1.Mul(t.Rate1))

		band2 := t.Tier2Limit.Sub(t.Tier1Limit)
		tier2 := decimal.Min(decimal.Max(totalKwh.Sub(t.Tier1Limit), decimal.Zero), band2)
		cost = cost.Add(tier2.Mul(t.Rate2))

		tier3 := decimal.Max(totalKwh.Sub(t.Tier2Limit), decimal.Zero)
		cost = cost.Add(tier3.Mul(t.Rate3))
	}

	return cost.Round(2)
}
