package eligibility

import (
	"errors"
	"testing"

	"github.com/dropship/backend/internal/domain/shared"
	"github.com/dropship/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func yen(v int64) valueobject.Money {
	m, _ := valueobject.NewMoneyFromInt(v, valueobject.JPY)
	return m
}

func TestShippingTableLookup(t *testing.T) {
	table := DefaultShippingTable()

	tests := []struct {
		name   string
		weight int
		class  DestinationClass
		method string
		cost   int64
	}{
		{"zero weight", 0, DestinationStandard, "ePacket Lite", 580},
		{"50g stays in first bracket", 50, DestinationStandard, "ePacket Lite", 580},
		{"express first bracket", 50, DestinationExpress, "ePacket Lite", 1450},
		{"51g moves to EMS", 51, DestinationStandard, "EMS", 3600},
		{"300g", 300, DestinationStandard, "EMS", 3600},
		{"301g", 301, DestinationStandard, "EMS", 5000},
		{"2000g", 2000, DestinationExpress, "EMS", 5000},
		{"2001g hits overweight", 2001, DestinationStandard, "EMS (overweight)", 8000},
		{"very heavy", 25000, DestinationStandard, "EMS (overweight)", 8000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quote, err := table.Lookup(tt.weight, tt.class)
			require.NoError(t, err)
			assert.Equal(t, tt.method, quote.Method)
			assert.True(t, quote.Cost.Equals(yen(tt.cost)), "got %s", quote.Cost)
		})
	}
}

func TestShippingTableLookupErrors(t *testing.T) {
	t.Run("negative weight is an unknown bracket", func(t *testing.T) {
		_, err := DefaultShippingTable().Lookup(-1, DestinationStandard)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrUnknownBracket))
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
	})

	t.Run("weight beyond a closed table", func(t *testing.T) {
		table, err := NewShippingTable([]WeightBracket{
			{UpperBoundGrams: intPtr(100), Method: "small", Rates: map[DestinationClass]valueobject.Money{
				DestinationStandard: yen(500),
			}},
		})
		require.NoError(t, err)

		_, err = table.Lookup(100, DestinationStandard)
		assert.True(t, errors.Is(err, ErrUnknownBracket))
	})

	t.Run("missing class rate is never defaulted", func(t *testing.T) {
		table, err := NewShippingTable([]WeightBracket{
			{UpperBoundGrams: nil, Method: "flat", Rates: map[DestinationClass]valueobject.Money{
				DestinationStandard: yen(500),
			}},
		})
		require.NoError(t, err)

		_, err = table.Lookup(10, DestinationExpress)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNoRateDefined))
		assert.True(t, errors.Is(err, shared.ErrUnknownConfiguration))
	})

	t.Run("unknown destination class", func(t *testing.T) {
		_, err := DefaultShippingTable().Lookup(10, DestinationClass("overnight"))
		assert.True(t, errors.Is(err, ErrNoRateDefined))
	})
}

func TestNewShippingTableValidation(t *testing.T) {
	rates := map[DestinationClass]valueobject.Money{DestinationStandard: yen(1)}

	tests := []struct {
		name     string
		brackets []WeightBracket
	}{
		{"empty", nil},
		{"non increasing", []WeightBracket{
			{UpperBoundGrams: intPtr(100), Rates: rates},
			{UpperBoundGrams: intPtr(100), Rates: rates},
		}},
		{"open bracket not last", []WeightBracket{
			{UpperBoundGrams: nil, Rates: rates},
			{UpperBoundGrams: intPtr(100), Rates: rates},
		}},
		{"zero first bound", []WeightBracket{
			{UpperBoundGrams: intPtr(0), Rates: rates},
		}},
		{"negative rate", []WeightBracket{
			{UpperBoundGrams: nil, Rates: map[DestinationClass]valueobject.Money{DestinationStandard: yen(-5)}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewShippingTable(tt.brackets)
			require.Error(t, err)
			assert.True(t, errors.Is(err, shared.ErrUnknownConfiguration))
		})
	}
}

func TestShippingTableIsIsolatedFromInput(t *testing.T) {
	rates := map[DestinationClass]valueobject.Money{DestinationStandard: yen(100)}
	table, err := NewShippingTable([]WeightBracket{{UpperBoundGrams: nil, Method: "flat", Rates: rates}})
	require.NoError(t, err)

	rates[DestinationStandard] = yen(999)

	quote, err := table.Lookup(1, DestinationStandard)
	require.NoError(t, err)
	assert.True(t, quote.Cost.Equals(yen(100)))
}
