package eligibility

import (
	"fmt"

	"github.com/dropship/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// DefaultMinimumMargin is the profitability threshold used when none is configured
var DefaultMinimumMargin = decimal.RequireFromString("0.25")

// maxSuggestSteps bounds the upward nudging in SuggestPrice
const maxSuggestSteps = 1000

// ProfitInput holds everything needed to price one sale
type ProfitInput struct {
	WholesalePrice   valueobject.Money
	WeightGrams      int
	SalePrice        valueobject.Money
	Marketplace      Marketplace
	Destination      DestinationClass
	Addons           []Addon
	ShippingOverride *valueobject.Money
}

// ProfitBreakdown is the full cost and margin picture of a sale. All money
// fields are in the sale currency.
type ProfitBreakdown struct {
	SalePrice          valueobject.Money
	WholesaleConverted valueobject.Money
	Shipping           valueobject.Money
	ShippingMethod     string
	Fees               FeeBreakdown
	TotalCost          valueobject.Money
	Profit             valueobject.Money
	Margin             decimal.Decimal
	MinimumMargin      decimal.Decimal
	Profitable         bool
}

// ProfitCalculator combines the shipping table, fee model and exchange rate.
// It holds no mutable state and is safe for concurrent use.
type ProfitCalculator struct {
	shipping      *ShippingTable
	fees          *FeeModel
	exchange      ExchangeRate
	minimumMargin decimal.Decimal
}

// NewProfitCalculator creates a calculator over the given reference tables
func NewProfitCalculator(shipping *ShippingTable, fees *FeeModel, exchange ExchangeRate, minimumMargin decimal.Decimal) (*ProfitCalculator, error) {
	if shipping == nil {
		return nil, unknownConfiguration("MISSING_SHIPPING_TABLE", "shipping table is required")
	}
	if fees == nil {
		return nil, unknownConfiguration("MISSING_FEE_MODEL", "fee model is required")
	}
	if !exchange.Rate.IsPositive() {
		return nil, unknownConfiguration("INVALID_EXCHANGE_RATE", "exchange rate must be positive")
	}
	if minimumMargin.IsNegative() || minimumMargin.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return nil, unknownConfiguration("INVALID_MINIMUM_MARGIN", "minimum margin must be in [0, 1)")
	}
	return &ProfitCalculator{
		shipping:      shipping,
		fees:          fees,
		exchange:      exchange,
		minimumMargin: minimumMargin,
	}, nil
}

// MinimumMargin returns the configured profitability threshold
func (c *ProfitCalculator) MinimumMargin() decimal.Decimal {
	return c.minimumMargin
}

// Calculate computes profit = sale - wholesale - shipping - fees and
// margin = profit / sale. The margin is not rounded so the comparison with
// the minimum is exact at the threshold.
func (c *ProfitCalculator) Calculate(in ProfitInput) (ProfitBreakdown, error) {
	sale := in.SalePrice.RoundMinor()
	if !sale.IsPositive() {
		return ProfitBreakdown{}, fmt.Errorf("%w: got %s", ErrInvalidSalePrice, in.SalePrice.Amount().String())
	}

	costs, err := c.costs(in.WholesalePrice, in.WeightGrams, sale.Currency(), in.Destination, in.ShippingOverride)
	if err != nil {
		return ProfitBreakdown{}, err
	}

	fees, err := c.fees.ComputeFees(sale, in.Marketplace, in.Addons)
	if err != nil {
		return ProfitBreakdown{}, err
	}

	total, err := costs.base.Add(fees.Total)
	if err != nil {
		return ProfitBreakdown{}, err
	}
	profit, err := sale.Subtract(total)
	if err != nil {
		return ProfitBreakdown{}, err
	}
	margin := profit.Amount().Div(sale.Amount())

	return ProfitBreakdown{
		SalePrice:          sale,
		WholesaleConverted: costs.wholesale,
		Shipping:           costs.shipping,
		ShippingMethod:     costs.method,
		Fees:               fees,
		TotalCost:          total,
		Profit:             profit,
		Margin:             margin,
		MinimumMargin:      c.minimumMargin,
		Profitable:         margin.GreaterThanOrEqual(c.minimumMargin),
	}, nil
}

// SuggestInput describes a product to price for a target margin
type SuggestInput struct {
	WholesalePrice   valueobject.Money
	WeightGrams      int
	Marketplace      Marketplace
	Destination      DestinationClass
	Addons           []Addon
	ShippingOverride *valueobject.Money
	// TargetMargin defaults to the calculator's minimum margin when nil
	TargetMargin *decimal.Decimal
	// SaleCurrency defaults to the exchange rate's target currency when empty
	SaleCurrency valueobject.Currency
}

// SuggestPrice back-solves the lowest sale price (in minor units) whose
// margin reaches the target:
// price = (wholesale + shipping + fixed) / (1 - pct - addons - target).
func (c *ProfitCalculator) SuggestPrice(in SuggestInput) (ProfitBreakdown, error) {
	target := c.minimumMargin
	if in.TargetMargin != nil {
		target = *in.TargetMargin
	}
	if target.IsNegative() || target.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return ProfitBreakdown{}, invalidInput("INVALID_TARGET_MARGIN", "target margin must be in [0, 1)")
	}
	currency := in.SaleCurrency
	if currency == "" {
		currency = c.exchange.Target
	}

	schedule, err := c.fees.Schedule(in.Marketplace)
	if err != nil {
		return ProfitBreakdown{}, err
	}
	if schedule.Fixed.Currency() != currency {
		return ProfitBreakdown{}, unknownConfiguration("FEE_CURRENCY_MISMATCH",
			fmt.Sprintf("%s fixed fee is in %s but sale is in %s", in.Marketplace, schedule.Fixed.Currency(), currency))
	}
	rate, err := schedule.rate(in.Addons)
	if err != nil {
		return ProfitBreakdown{}, err
	}
	denominator := decimal.NewFromInt(1).Sub(rate).Sub(target)
	if !denominator.IsPositive() {
		return ProfitBreakdown{}, invalidInput("UNREACHABLE_MARGIN",
			fmt.Sprintf("fees of %s plus target margin %s leave nothing for costs", rate.String(), target.String()))
	}

	costs, err := c.costs(in.WholesalePrice, in.WeightGrams, currency, in.Destination, in.ShippingOverride)
	if err != nil {
		return ProfitBreakdown{}, err
	}
	numerator, err := costs.base.Add(schedule.Fixed)
	if err != nil {
		return ProfitBreakdown{}, err
	}

	price, err := numerator.Divide(denominator)
	if err != nil {
		return ProfitBreakdown{}, err
	}
	price = price.CeilMinor()
	if !price.IsPositive() {
		price = price.MinorUnit()
	}

	step := price.MinorUnit()
	withTarget := &ProfitCalculator{shipping: c.shipping, fees: c.fees, exchange: c.exchange, minimumMargin: target}
	for i := 0; i < maxSuggestSteps; i++ {
		result, err := withTarget.Calculate(ProfitInput{
			WholesalePrice:   in.WholesalePrice,
			WeightGrams:      in.WeightGrams,
			SalePrice:        price,
			Marketplace:      in.Marketplace,
			Destination:      in.Destination,
			Addons:           in.Addons,
			ShippingOverride: in.ShippingOverride,
		})
		if err != nil {
			return ProfitBreakdown{}, err
		}
		if result.Profitable {
			return result, nil
		}
		if price, err = price.Add(step); err != nil {
			return ProfitBreakdown{}, err
		}
	}
	return ProfitBreakdown{}, invalidInput("UNREACHABLE_MARGIN", "no price reaches the target margin")
}

type costBasis struct {
	wholesale valueobject.Money
	shipping  valueobject.Money
	method    string
	base      valueobject.Money
}

// costs converts wholesale and shipping into the sale currency
func (c *ProfitCalculator) costs(
	wholesale valueobject.Money,
	weightG int,
	currency valueobject.Currency,
	destination DestinationClass,
	override *valueobject.Money,
) (costBasis, error) {
	if wholesale.IsNegative() {
		return costBasis{}, invalidInput("INVALID_WHOLESALE_PRICE", "wholesale price cannot be negative")
	}
	converted, err := c.toSaleCurrency(wholesale, currency)
	if err != nil {
		return costBasis{}, err
	}

	var (
		shippingCost valueobject.Money
		method       string
	)
	if override != nil {
		if override.IsNegative() {
			return costBasis{}, invalidInput("INVALID_SHIPPING_OVERRIDE", "shipping override cannot be negative")
		}
		if weightG < 0 {
			return costBasis{}, fmt.Errorf("%w: negative weight %dg", ErrUnknownBracket, weightG)
		}
		shippingCost, method = *override, "override"
	} else {
		quote, err := c.shipping.Lookup(weightG, destination)
		if err != nil {
			return costBasis{}, err
		}
		shippingCost, method = quote.Cost, quote.Method
	}
	shippingCost, err = c.toSaleCurrency(shippingCost, currency)
	if err != nil {
		return costBasis{}, err
	}

	base, err := converted.Add(shippingCost)
	if err != nil {
		return costBasis{}, err
	}
	return costBasis{wholesale: converted, shipping: shippingCost, method: method, base: base}, nil
}

func (c *ProfitCalculator) toSaleCurrency(m valueobject.Money, currency valueobject.Currency) (valueobject.Money, error) {
	if m.Currency() == currency {
		return m.RoundMinor(), nil
	}
	if c.exchange.Target != currency {
		return valueobject.Money{}, unknownConfiguration("NO_EXCHANGE_RATE",
			fmt.Sprintf("no exchange rate from %s to %s", m.Currency(), currency))
	}
	return c.exchange.Convert(m)
}
