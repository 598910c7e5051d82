package eligibility

import (
	"fmt"
	"sort"

	"github.com/dropship/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// FeeSchedule is one marketplace's fee structure. Percentages are fractions
// (0.1325 for 13.25%).
type FeeSchedule struct {
	Marketplace Marketplace
	Percentage  decimal.Decimal
	Fixed       valueobject.Money
	Addons      map[Addon]decimal.Decimal
}

// AddonFee is the charge of a single active addon
type AddonFee struct {
	Addon  Addon
	Amount valueobject.Money
}

// FeeBreakdown itemizes the fees for one sale
type FeeBreakdown struct {
	Percentage valueobject.Money
	Fixed      valueobject.Money
	Addons     []AddonFee
	Total      valueobject.Money
}

// FeeModel maps each marketplace to its schedule. It is immutable after
// construction.
type FeeModel struct {
	schedules map[Marketplace]FeeSchedule
}

// NewFeeModel validates schedules and builds a fee model
func NewFeeModel(schedules []FeeSchedule) (*FeeModel, error) {
	m := &FeeModel{schedules: make(map[Marketplace]FeeSchedule, len(schedules))}
	for _, s := range schedules {
		if !s.Marketplace.IsValid() {
			return nil, unknownMarketplace(string(s.Marketplace))
		}
		if _, dup := m.schedules[s.Marketplace]; dup {
			return nil, unknownConfiguration("INVALID_FEE_SCHEDULE", "duplicate fee schedule for "+string(s.Marketplace))
		}
		if !s.Fixed.Currency().IsValid() {
			return nil, unknownConfiguration("INVALID_FEE_SCHEDULE", "fixed fee needs a currency for "+string(s.Marketplace))
		}
		if s.Percentage.IsNegative() || s.Fixed.IsNegative() {
			return nil, unknownConfiguration("INVALID_FEE_SCHEDULE", "fees cannot be negative for "+string(s.Marketplace))
		}
		addons := make(map[Addon]decimal.Decimal, len(s.Addons))
		for a, pct := range s.Addons {
			if !a.IsValid() {
				return nil, unknownConfiguration("UNKNOWN_ADDON", "unknown addon: "+string(a))
			}
			if pct.IsNegative() {
				return nil, unknownConfiguration("INVALID_FEE_SCHEDULE", "addon percentage cannot be negative")
			}
			addons[a] = pct
		}
		s.Addons = addons
		m.schedules[s.Marketplace] = s
	}
	return m, nil
}

// Schedule returns the schedule for a marketplace
func (m *FeeModel) Schedule(marketplace Marketplace) (FeeSchedule, error) {
	switch marketplace {
	case MarketplaceEbay, MarketplaceEtsy, MarketplaceBase:
		s, ok := m.schedules[marketplace]
		if !ok {
			return FeeSchedule{}, fmt.Errorf("%w: no fee schedule for %q", ErrUnknownMarketplace, marketplace)
		}
		return s, nil
	default:
		return FeeSchedule{}, unknownMarketplace(string(marketplace))
	}
}

// Schedules returns every configured schedule ordered by marketplace
func (m *FeeModel) Schedules() []FeeSchedule {
	out := make([]FeeSchedule, 0, len(m.schedules))
	for _, s := range m.schedules {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Marketplace < out[j].Marketplace })
	return out
}

// ComputeFees returns sale*pct + fixed + sum(sale*addonPct). Each component
// is rounded to the sale currency's minor unit with banker's rounding before
// summing.
func (m *FeeModel) ComputeFees(salePrice valueobject.Money, marketplace Marketplace, addons []Addon) (FeeBreakdown, error) {
	schedule, err := m.Schedule(marketplace)
	if err != nil {
		return FeeBreakdown{}, err
	}
	if schedule.Fixed.Currency() != salePrice.Currency() {
		return FeeBreakdown{}, unknownConfiguration("FEE_CURRENCY_MISMATCH",
			fmt.Sprintf("%s fixed fee is in %s but sale is in %s", marketplace, schedule.Fixed.Currency(), salePrice.Currency()))
	}

	breakdown := FeeBreakdown{
		Percentage: salePrice.Multiply(schedule.Percentage).RoundMinor(),
		Fixed:      schedule.Fixed.RoundMinor(),
		Addons:     make([]AddonFee, 0, len(addons)),
	}
	total, err := breakdown.Percentage.Add(breakdown.Fixed)
	if err != nil {
		return FeeBreakdown{}, err
	}

	for _, a := range sortedAddons(addons) {
		pct, ok := schedule.Addons[a]
		if !ok {
			return FeeBreakdown{}, unknownConfiguration("UNKNOWN_ADDON",
				fmt.Sprintf("addon %q is not offered by %s", a, marketplace))
		}
		fee := salePrice.Multiply(pct).RoundMinor()
		breakdown.Addons = append(breakdown.Addons, AddonFee{Addon: a, Amount: fee})
		if total, err = total.Add(fee); err != nil {
			return FeeBreakdown{}, err
		}
	}

	breakdown.Total = total
	return breakdown, nil
}

// rate returns pct + sum(addon pct) for back-solving prices
func (s FeeSchedule) rate(addons []Addon) (decimal.Decimal, error) {
	total := s.Percentage
	for _, a := range sortedAddons(addons) {
		pct, ok := s.Addons[a]
		if !ok {
			return decimal.Zero, unknownConfiguration("UNKNOWN_ADDON",
				fmt.Sprintf("addon %q is not offered by %s", a, s.Marketplace))
		}
		total = total.Add(pct)
	}
	return total, nil
}

func sortedAddons(addons []Addon) []Addon {
	seen := make(map[Addon]struct{}, len(addons))
	out := make([]Addon, 0, len(addons))
	for _, a := range addons {
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// DefaultFeeModel returns the USD fee schedules of the supported marketplaces
func DefaultFeeModel() *FeeModel {
	usd := func(s string) valueobject.Money { return valueobject.MustMoney(s, valueobject.USD) }
	pct := decimal.RequireFromString
	model, err := NewFeeModel([]FeeSchedule{
		{
			Marketplace: MarketplaceEbay,
			Percentage:  pct("0.1325"),
			Fixed:       usd("0.30"),
			Addons: map[Addon]decimal.Decimal{
				AddonCrossBorder: pct("0.0165"),
				AddonPromoted:    pct("0.02"),
			},
		},
		{
			Marketplace: MarketplaceEtsy,
			Percentage:  pct("0.095"),
			Fixed:       usd("0.45"),
			Addons: map[Addon]decimal.Decimal{
				AddonOffsiteAds: pct("0.15"),
			},
		},
		{
			Marketplace: MarketplaceBase,
			Percentage:  pct("0.066"),
			Fixed:       usd("0.27"),
		},
	})
	if err != nil {
		panic(err)
	}
	return model
}
