package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestEstimateCostBaseOnly(t *testing.T) {
	tariff := Default()

	for _, kwh := range []decimal.Decimal{
		decimal.Zero,
		decimal.NewFromFloat(-3.2),
	} {
		got := tariff.EstimateCost(kwh)
		if !got.Equal(tariff.BaseCharge) {
			t.Errorf("EstimateCost(%s) = %s, want base charge %s", kwh, got, tariff.BaseCharge)
		}
	}
}

func TestEstimateCostTiers(t *testing.T) {
	tariff := Default()

	tests := []struct {
		name string
		kwh  string
		want string
	}{
		// 29.10 + 0.8*20.62 = 45.596 → 45.60
		{"small usage", "0.8", "45.60"},
		// exactly the tier1 limit: tier2 contributes nothing
		{"tier1 boundary", "120", "2503.50"},
		// 29.10 + 120*20.62 + 30*25.29 = 3262.20
		{"inside tier2", "150", "3262.20"},
		// exactly the tier2 limit: tier3 contributes nothing
		{"tier2 boundary", "300", "7055.70"},
		// 29.10 + 120*20.62 + 180*25.29 + 50*28.44 = 8477.70
		{"inside tier3", "350", "8477.70"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kwh, err := decimal.NewFromString(tt.kwh)
			if err != nil {
				t.Fatalf("bad fixture %q: %v", tt.kwh, err)
			}
			got := tariff.EstimateCost(kwh)
			if got.StringFixed(2) != tt.want {
				t.Errorf("EstimateCost(%s) = %s, want %s", tt.kwh, got.StringFixed(2), tt.want)
			}
		})
	}
}

func TestEstimateCostRounding(t *testing.T) {
	tariff := Tariff{
		BaseCharge: decimal.NewFromFloat(0.005),
		Tier1Limit: decimal.NewFromInt(120),
		Tier2Limit: decimal.NewFromInt(300),
	}
	got := tariff.EstimateCost(decimal.Zero)
	if got.StringFixed(2) != "0.01" {
		t.Errorf("expected half-up rounding to 0.01, got %s", got.StringFixed(2))
	}
}

func TestValidate(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default tariff should validate: %v", err)
	}

	bad := Default()
	bad.Tier2Limit = decimal.NewFromInt(100)
	if err := bad.Validate(); err == nil {
		t.Error("expected error when tier2 limit below tier1 limit")
	}

	bad = Default()
	bad.Rate2 = decimal.NewFromInt(-1)
	if err := bad.Validate(); err == nil {
		t.Error("expected error for negative rate")
	}
}
