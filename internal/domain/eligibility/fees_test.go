package eligibility

import (
	"errors"
	"testing"

	"github.com/dropship/backend/internal/domain/shared"
	"github.com/dropship/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func usd(s string) valueobject.Money {
	return valueobject.MustMoney(s, valueobject.USD)
}

func TestComputeFees(t *testing.T) {
	model := DefaultFeeModel()

	tests := []struct {
		name        string
		sale        string
		marketplace Marketplace
		addons      []Addon
		percentage  string
		total       string
	}{
		{"ebay base fee", "15", MarketplaceEbay, nil, "1.99", "2.29"},
		{"ebay with cross-border", "15", MarketplaceEbay, []Addon{AddonCrossBorder}, "1.99", "2.54"},
		{"ebay with both addons", "100", MarketplaceEbay, []Addon{AddonPromoted, AddonCrossBorder}, "13.25", "17.20"},
		{"duplicate addon counted once", "100", MarketplaceEbay, []Addon{AddonPromoted, AddonPromoted}, "13.25", "15.55"},
		{"etsy with offsite ads", "20", MarketplaceEtsy, []Addon{AddonOffsiteAds}, "1.90", "5.35"},
		{"base", "10.50", MarketplaceBase, nil, "0.69", "0.96"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fees, err := model.ComputeFees(usd(tt.sale), tt.marketplace, tt.addons)
			require.NoError(t, err)
			assert.Equal(t, tt.percentage, fees.Percentage.StringFixed())
			assert.Equal(t, tt.total, fees.Total.StringFixed())
		})
	}
}

func TestComputeFeesBankersRounding(t *testing.T) {
	model, err := NewFeeModel([]FeeSchedule{{
		Marketplace: MarketplaceBase,
		Percentage:  decimal.RequireFromString("0.005"),
		Fixed:       usd("0"),
	}})
	require.NoError(t, err)

	// 0.005 rounds to the even cent 0.00, 0.015 to 0.02
	fees, err := model.ComputeFees(usd("1"), MarketplaceBase, nil)
	require.NoError(t, err)
	assert.Equal(t, "0.00", fees.Total.StringFixed())

	fees, err = model.ComputeFees(usd("3"), MarketplaceBase, nil)
	require.NoError(t, err)
	assert.Equal(t, "0.02", fees.Total.StringFixed())
}

func TestComputeFeesErrors(t *testing.T) {
	model := DefaultFeeModel()

	t.Run("unknown marketplace", func(t *testing.T) {
		_, err := model.ComputeFees(usd("10"), Marketplace("amazon"), nil)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrUnknownMarketplace))
		assert.True(t, errors.Is(err, shared.ErrUnknownConfiguration))
	})

	t.Run("valid marketplace without schedule", func(t *testing.T) {
		partial, err := NewFeeModel([]FeeSchedule{{Marketplace: MarketplaceEbay, Percentage: decimal.Zero, Fixed: usd("0")}})
		require.NoError(t, err)
		_, err = partial.ComputeFees(usd("10"), MarketplaceEtsy, nil)
		assert.True(t, errors.Is(err, ErrUnknownMarketplace))
	})

	t.Run("addon not offered by marketplace", func(t *testing.T) {
		_, err := model.ComputeFees(usd("10"), MarketplaceEtsy, []Addon{AddonPromoted})
		require.Error(t, err)
		assert.True(t, errors.Is(err, shared.ErrUnknownConfiguration))
	})

	t.Run("sale currency differs from fixed fee", func(t *testing.T) {
		_, err := model.ComputeFees(valueobject.MustMoney("10", valueobject.EUR), MarketplaceEbay, nil)
		require.Error(t, err)
		assert.True(t, errors.Is(err, shared.ErrUnknownConfiguration))
	})
}

func TestNewFeeModelValidation(t *testing.T) {
	_, err := NewFeeModel([]FeeSchedule{
		{Marketplace: MarketplaceEbay, Percentage: decimal.Zero, Fixed: usd("0")},
		{Marketplace: MarketplaceEbay, Percentage: decimal.Zero, Fixed: usd("0")},
	})
	assert.Error(t, err, "duplicate schedule")

	_, err = NewFeeModel([]FeeSchedule{{Marketplace: MarketplaceEbay, Percentage: decimal.RequireFromString("-0.1"), Fixed: usd("0")}})
	assert.Error(t, err, "negative percentage")

	_, err = NewFeeModel([]FeeSchedule{{Marketplace: MarketplaceEbay, Percentage: decimal.Zero}})
	assert.Error(t, err, "fixed fee without currency")

	_, err = NewFeeModel([]FeeSchedule{{Marketplace: "amazon", Percentage: decimal.Zero, Fixed: usd("0")}})
	assert.True(t, errors.Is(err, ErrUnknownMarketplace))
}

func TestFeeModelSchedulesCoverEveryMarketplace(t *testing.T) {
	schedules := DefaultFeeModel().Schedules()
	require.Len(t, schedules, len(AllMarketplaces()))
	for i, m := range []Marketplace{MarketplaceBase, MarketplaceEbay, MarketplaceEtsy} {
		assert.Equal(t, m, schedules[i].Marketplace)
	}
}
