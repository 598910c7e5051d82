package eligibility

import (
	"fmt"

	"github.com/dropship/backend/internal/domain/shared/valueobject"
)

// WeightBracket covers weights in [previous upper bound, UpperBoundGrams).
// A nil upper bound means the bracket is open-ended.
type WeightBracket struct {
	UpperBoundGrams *int
	Method          string
	Rates           map[DestinationClass]valueobject.Money
}

// ShippingQuote is the result of a shipping table lookup
type ShippingQuote struct {
	Method string
	Cost   valueobject.Money
}

// ShippingTable maps (weight bracket, destination class) to a cost.
// It is immutable after construction.
type ShippingTable struct {
	brackets []WeightBracket
}

// NewShippingTable validates the brackets and copies them into a table
func NewShippingTable(brackets []WeightBracket) (*ShippingTable, error) {
	if len(brackets) == 0 {
		return nil, unknownConfiguration("INVALID_SHIPPING_TABLE", "shipping table needs at least one bracket")
	}

	copied := make([]WeightBracket, 0, len(brackets))
	prev := 0
	for i, b := range brackets {
		if b.UpperBoundGrams == nil {
			if i != len(brackets)-1 {
				return nil, unknownConfiguration("INVALID_SHIPPING_TABLE", "only the last bracket may be open-ended")
			}
		} else if *b.UpperBoundGrams <= prev {
			return nil, unknownConfiguration("INVALID_SHIPPING_TABLE",
				fmt.Sprintf("bracket upper bounds must be strictly increasing (bracket %d: %d)", i, *b.UpperBoundGrams))
		}

		rates := make(map[DestinationClass]valueobject.Money, len(b.Rates))
		for class, rate := range b.Rates {
			if !class.IsValid() {
				return nil, unknownConfiguration("INVALID_SHIPPING_TABLE", "unknown destination class: "+string(class))
			}
			if rate.IsNegative() {
				return nil, unknownConfiguration("INVALID_SHIPPING_TABLE", "shipping rates cannot be negative")
			}
			rates[class] = rate
		}

		var upper *int
		if b.UpperBoundGrams != nil {
			v := *b.UpperBoundGrams
			upper = &v
			prev = v
		}
		copied = append(copied, WeightBracket{UpperBoundGrams: upper, Method: b.Method, Rates: rates})
	}

	return &ShippingTable{brackets: copied}, nil
}

// Lookup picks the smallest bracket whose upper bound exceeds weightG and
// returns its rate for the destination class. A missing rate is an error,
// never a default.
func (t *ShippingTable) Lookup(weightG int, class DestinationClass) (ShippingQuote, error) {
	if weightG < 0 {
		return ShippingQuote{}, fmt.Errorf("%w: negative weight %dg", ErrUnknownBracket, weightG)
	}
	if !class.IsValid() {
		return ShippingQuote{}, fmt.Errorf("%w: unknown destination class %q", ErrNoRateDefined, class)
	}

	for _, b := range t.brackets {
		if b.UpperBoundGrams != nil && weightG >= *b.UpperBoundGrams {
			continue
		}
		rate, ok := b.Rates[class]
		if !ok {
			return ShippingQuote{}, fmt.Errorf("%w: %s for %s at %dg", ErrNoRateDefined, b.Method, class, weightG)
		}
		return ShippingQuote{Method: b.Method, Cost: rate}, nil
	}

	return ShippingQuote{}, fmt.Errorf("%w: %dg exceeds every bracket", ErrUnknownBracket, weightG)
}

// Brackets returns a copy of the table's brackets
func (t *ShippingTable) Brackets() []WeightBracket {
	out := make([]WeightBracket, len(t.brackets))
	copy(out, t.brackets)
	return out
}

// DefaultShippingTable returns the Japan Post table in yen: ePacket Lite up
// to 50g, EMS above, with a flat overweight rate past 2kg.
func DefaultShippingTable() *ShippingTable {
	bound := func(g int) *int { return &g }
	yen := func(v int64) valueobject.Money {
		m, _ := valueobject.NewMoneyFromInt(v, valueobject.JPY)
		return m
	}
	table, err := NewShippingTable([]WeightBracket{
		{UpperBoundGrams: bound(51), Method: "ePacket Lite", Rates: map[DestinationClass]valueobject.Money{
			DestinationStandard: yen(580), DestinationExpress: yen(1450),
		}},
		{UpperBoundGrams: bound(301), Method: "EMS", Rates: map[DestinationClass]valueobject.Money{
			DestinationStandard: yen(3600), DestinationExpress: yen(3600),
		}},
		{UpperBoundGrams: bound(2001), Method: "EMS", Rates: map[DestinationClass]valueobject.Money{
			DestinationStandard: yen(5000), DestinationExpress: yen(5000),
		}},
		{UpperBoundGrams: nil, Method: "EMS (overweight)", Rates: map[DestinationClass]valueobject.Money{
			DestinationStandard: yen(8000), DestinationExpress: yen(8000),
		}},
	})
	if err != nil {
		panic(err)
	}
	return table
}
