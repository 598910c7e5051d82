package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	t.Run("creates money with valid amount and currency", func(t *testing.T) {
		m, err := NewMoney(decimal.RequireFromString("100.50"), USD)
		require.NoError(t, err)
		assert.Equal(t, USD, m.Currency())
		assert.True(t, m.Amount().Equal(decimal.RequireFromString("100.5")))
	})

	t.Run("returns error for empty currency", func(t *testing.T) {
		_, err := NewMoney(decimal.NewFromInt(100), "")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "currency cannot be empty")
	})

	t.Run("returns error for unsupported currency", func(t *testing.T) {
		_, err := NewMoney(decimal.NewFromInt(100), "XYZ")
		assert.Error(t, err)
	})
}

func TestParseCurrency(t *testing.T) {
	c, err := ParseCurrency(" usd ")
	require.NoError(t, err)
	assert.Equal(t, USD, c)

	_, err = ParseCurrency("btc")
	assert.Error(t, err)
}

func TestMoneyRoundMinor(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		currency Currency
		expected string
	}{
		{"rounds up past half", "1.9875", USD, "1.99"},
		{"banker's rounding to even below", "0.125", USD, "0.12"},
		{"banker's rounding to even above", "0.135", USD, "0.14"},
		{"yen has no minor digits", "579.5", JPY, "580"},
		{"yen half to even", "578.5", JPY, "578"},
		{"already exact", "24", USD, "24"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := MustMoney(tt.amount, tt.currency).RoundMinor()
			assert.True(t, m.Amount().Equal(decimal.RequireFromString(tt.expected)),
				"got %s want %s", m.Amount(), tt.expected)
		})
	}
}

func TestMoneyCeilMinor(t *testing.T) {
	m := MustMoney("10.001", USD).CeilMinor()
	assert.Equal(t, "10.01", m.StringFixed())

	m = MustMoney("10.00", USD).CeilMinor()
	assert.Equal(t, "10.00", m.StringFixed())
}

func TestMoneyMinorUnit(t *testing.T) {
	assert.Equal(t, "0.01", Zero(USD).MinorUnit().StringFixed())
	assert.Equal(t, "1", Zero(JPY).MinorUnit().StringFixed())
}

func TestMoneyArithmetic(t *testing.T) {
	t.Run("adds same currency", func(t *testing.T) {
		result, err := MustMoney("100.50", USD).Add(MustMoney("50.25", USD))
		require.NoError(t, err)
		assert.Equal(t, "150.75", result.StringFixed())
	})

	t.Run("fails for different currencies", func(t *testing.T) {
		_, err := MustMoney("100", USD).Add(MustMoney("50", JPY))
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "different currencies")

		_, err = MustMoney("100", USD).Subtract(MustMoney("50", JPY))
		assert.Error(t, err)
	})

	t.Run("subtract can go negative", func(t *testing.T) {
		result, err := MustMoney("10", USD).Subtract(MustMoney("12.5", USD))
		require.NoError(t, err)
		assert.True(t, result.IsNegative())
		assert.Equal(t, "-2.50", result.StringFixed())
	})

	t.Run("divide by zero fails", func(t *testing.T) {
		_, err := MustMoney("10", USD).Divide(decimal.Zero)
		assert.Error(t, err)
	})

	t.Run("multiply keeps currency", func(t *testing.T) {
		result := MustMoney("15", USD).Multiply(decimal.RequireFromString("0.1325"))
		assert.Equal(t, USD, result.Currency())
		assert.True(t, result.Amount().Equal(decimal.RequireFromString("1.9875")))
	})
}

func TestMoneyComparison(t *testing.T) {
	less, err := MustMoney("1", USD).LessThan(MustMoney("2", USD))
	require.NoError(t, err)
	assert.True(t, less)

	_, err = MustMoney("1", USD).LessThan(MustMoney("2", JPY))
	assert.Error(t, err)

	assert.True(t, MustMoney("1.50", USD).Equals(MustMoney("1.5", USD)))
	assert.False(t, MustMoney("1.50", USD).Equals(MustMoney("1.5", EUR)))
}

func TestMoneyJSON(t *testing.T) {
	data, err := json.Marshal(MustMoney("3.8", USD))
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":"3.80","currency":"USD"}`, string(data))

	var m Money
	require.NoError(t, json.Unmarshal([]byte(`{"amount":"580","currency":"JPY"}`), &m))
	assert.Equal(t, "580 JPY", m.String())

	assert.Error(t, json.Unmarshal([]byte(`{"amount":"abc","currency":"JPY"}`), &m))
	assert.Error(t, json.Unmarshal([]byte(`{"amount":"1","currency":""}`), &m))
}
