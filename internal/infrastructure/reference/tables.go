// Package reference turns the pricing, shipping and fee sections of the
// configuration into the immutable tables the eligibility engine reads.
// Sections left empty fall back to the built-in tables.
package reference

import (
	"fmt"
	"sort"

	"github.com/dropship/backend/internal/domain/eligibility"
	"github.com/dropship/backend/internal/domain/shared/valueobject"
	"github.com/dropship/backend/internal/infrastructure/config"
	"github.com/shopspring/decimal"
)

// Tables are the configuration-driven parts of a snapshot
type Tables struct {
	Shipping      *eligibility.ShippingTable
	Fees          *eligibility.FeeModel
	Exchange      eligibility.ExchangeRate
	MinimumMargin decimal.Decimal
}

// Load builds every table from cfg
func Load(cfg *config.Config) (*Tables, error) {
	exchange, margin, err := Pricing(cfg.Pricing)
	if err != nil {
		return nil, err
	}
	shipping, err := Shipping(cfg.Shipping)
	if err != nil {
		return nil, err
	}
	fees, err := Fees(cfg.Fees)
	if err != nil {
		return nil, err
	}
	return &Tables{Shipping: shipping, Fees: fees, Exchange: exchange, MinimumMargin: margin}, nil
}

// Snapshot combines the tables with a rule set into an unversioned snapshot
func (t *Tables) Snapshot(rules *eligibility.RuleSet) (*eligibility.Snapshot, error) {
	return eligibility.NewSnapshot(rules, t.Shipping, t.Fees, t.Exchange, t.MinimumMargin)
}

// Pricing parses the exchange rate and minimum margin
func Pricing(cfg config.PricingConfig) (eligibility.ExchangeRate, decimal.Decimal, error) {
	source, err := valueobject.ParseCurrency(cfg.SourceCurrency)
	if err != nil {
		return eligibility.ExchangeRate{}, decimal.Zero, fmt.Errorf("pricing.source_currency: %w", err)
	}
	target, err := valueobject.ParseCurrency(cfg.SaleCurrency)
	if err != nil {
		return eligibility.ExchangeRate{}, decimal.Zero, fmt.Errorf("pricing.sale_currency: %w", err)
	}
	rate, err := decimal.NewFromString(cfg.ExchangeRate)
	if err != nil {
		return eligibility.ExchangeRate{}, decimal.Zero, fmt.Errorf("pricing.exchange_rate: %w", err)
	}
	exchange, err := eligibility.NewExchangeRate(source, target, rate)
	if err != nil {
		return eligibility.ExchangeRate{}, decimal.Zero, err
	}

	margin := eligibility.DefaultMinimumMargin
	if cfg.MinimumMargin != "" {
		margin, err = decimal.NewFromString(cfg.MinimumMargin)
		if err != nil {
			return eligibility.ExchangeRate{}, decimal.Zero, fmt.Errorf("pricing.minimum_margin: %w", err)
		}
	}
	return exchange, margin, nil
}

// Shipping builds the weight bracket table
func Shipping(cfg config.ShippingConfig) (*eligibility.ShippingTable, error) {
	if len(cfg.Brackets) == 0 {
		return eligibility.DefaultShippingTable(), nil
	}
	currency, err := valueobject.ParseCurrency(cfg.Currency)
	if err != nil {
		return nil, fmt.Errorf("shipping.currency: %w", err)
	}

	brackets := make([]eligibility.WeightBracket, 0, len(cfg.Brackets))
	for i, b := range cfg.Brackets {
		bracket := eligibility.WeightBracket{
			Method: b.Method,
			Rates:  make(map[eligibility.DestinationClass]valueobject.Money, 2),
		}
		if b.UpperBoundGrams > 0 {
			bound := b.UpperBoundGrams
			bracket.UpperBoundGrams = &bound
		}
		for class, raw := range map[eligibility.DestinationClass]string{
			eligibility.DestinationStandard: b.Standard,
			eligibility.DestinationExpress:  b.Express,
		} {
			if raw == "" {
				continue
			}
			rate, err := valueobject.NewMoneyFromString(raw, currency)
			if err != nil {
				return nil, fmt.Errorf("shipping.brackets[%d].%s: %w", i, class, err)
			}
			bracket.Rates[class] = rate
		}
		brackets = append(brackets, bracket)
	}
	return eligibility.NewShippingTable(brackets)
}

// Fees builds the fee model. Marketplaces are processed in name order so
// the first invalid entry reported is stable.
func Fees(cfg map[string]config.FeeConfig) (*eligibility.FeeModel, error) {
	if len(cfg) == 0 {
		return eligibility.DefaultFeeModel(), nil
	}

	names := make([]string, 0, len(cfg))
	for name := range cfg {
		names = append(names, name)
	}
	sort.Strings(names)

	schedules := make([]eligibility.FeeSchedule, 0, len(cfg))
	for _, name := range names {
		fc := cfg[name]
		marketplace, err := eligibility.ParseMarketplace(name)
		if err != nil {
			return nil, fmt.Errorf("fees.%s: %w", name, err)
		}
		pct, err := decimal.NewFromString(fc.Percentage)
		if err != nil {
			return nil, fmt.Errorf("fees.%s.percentage: %w", name, err)
		}
		currency, err := valueobject.ParseCurrency(fc.Currency)
		if err != nil {
			return nil, fmt.Errorf("fees.%s.currency: %w", name, err)
		}
		fixedRaw := fc.Fixed
		if fixedRaw == "" {
			fixedRaw = "0"
		}
		fixed, err := valueobject.NewMoneyFromString(fixedRaw, currency)
		if err != nil {
			return nil, fmt.Errorf("fees.%s.fixed: %w", name, err)
		}

		addons := make(map[eligibility.Addon]decimal.Decimal, len(fc.Addons))
		for addonName, raw := range fc.Addons {
			addon := eligibility.Addon(addonName)
			if !addon.IsValid() {
				return nil, fmt.Errorf("fees.%s.addons: unknown addon %q", name, addonName)
			}
			rate, err := decimal.NewFromString(raw)
			if err != nil {
				return nil, fmt.Errorf("fees.%s.addons.%s: %w", name, addonName, err)
			}
			addons[addon] = rate
		}

		schedules = append(schedules, eligibility.FeeSchedule{
			Marketplace: marketplace,
			Percentage:  pct,
			Fixed:       fixed,
			Addons:      addons,
		})
	}
	return eligibility.NewFeeModel(schedules)
}
