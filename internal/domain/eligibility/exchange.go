package eligibility

import (
	"fmt"

	"github.com/dropship/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// ExchangeRate is a fixed conversion configured by the operator.
// Rate is the number of Source units per one Target unit (150 JPY per USD).
type ExchangeRate struct {
	Source valueobject.Currency
	Target valueobject.Currency
	Rate   decimal.Decimal
}

// NewExchangeRate validates and creates an exchange rate
func NewExchangeRate(source, target valueobject.Currency, rate decimal.Decimal) (ExchangeRate, error) {
	if !source.IsValid() || !target.IsValid() {
		return ExchangeRate{}, unknownConfiguration("INVALID_EXCHANGE_RATE", fmt.Sprintf("unsupported currency pair %s/%s", source, target))
	}
	if !rate.IsPositive() {
		return ExchangeRate{}, unknownConfiguration("INVALID_EXCHANGE_RATE", "exchange rate must be positive")
	}
	return ExchangeRate{Source: source, Target: target, Rate: rate}, nil
}

// Convert expresses m in the target currency, rounded to its minor unit.
// Amounts already in the target currency pass through unchanged.
func (r ExchangeRate) Convert(m valueobject.Money) (valueobject.Money, error) {
	switch m.Currency() {
	case r.Target:
		return m, nil
	case r.Source:
		if !r.Rate.IsPositive() {
			return valueobject.Money{}, unknownConfiguration("INVALID_EXCHANGE_RATE", "exchange rate must be positive")
		}
		converted, err := valueobject.NewMoney(m.Amount().Div(r.Rate), r.Target)
		if err != nil {
			return valueobject.Money{}, err
		}
		return converted.RoundMinor(), nil
	default:
		return valueobject.Money{}, unknownConfiguration("NO_EXCHANGE_RATE",
			fmt.Sprintf("no exchange rate from %s to %s", m.Currency(), r.Target))
	}
}

// DefaultExchangeRate is 150 JPY per USD
func DefaultExchangeRate() ExchangeRate {
	return ExchangeRate{Source: valueobject.JPY, Target: valueobject.USD, Rate: decimal.NewFromInt(150)}
}
