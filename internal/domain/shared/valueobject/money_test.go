package valueobject

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	t.Run("creates money with valid input", func(t *testing.T) {
		m, err := NewMoney(decimal.NewFromFloat(100.50), "USD")
		require.NoError(t, err)
		assert.Equal(t, "USD", m.Currency())
		assert.True(t, m.Amount().Equal(decimal.NewFromFloat(100.50)))
	})

	t.Run("rejects empty currency", func(t *testing.T) {
		_, err := NewMoney(decimal.NewFromInt(1), "")
		assert.Error(t, err)
	})
}

func TestNewMoneyFromString(t *testing.T) {
	t.Run("parses valid amount", func(t *testing.T) {
		m, err := NewMoneyFromString("1234.56", "EUR")
		require.NoError(t, err)
		assert.Equal(t, "1234.56 EUR", m.String())
	})

	t.Run("rejects malformed amount", func(t *testing.T) {
		_, err := NewMoneyFromString("not-a-number", "EUR")
		assert.Error(t, err)
	})
}

func TestMoney_Arithmetic(t *testing.T) {
	usd100, _ := NewMoneyFromFloat(100.00, "USD")
	usd40, _ := NewMoneyFromFloat(40.00, "USD")
	eur40, _ := NewMoneyFromFloat(40.00, "EUR")

	t.Run("add same currency", func(t *testing.T) {
		sum, err := usd100.Add(usd40)
		require.NoError(t, err)
		assert.True(t, sum.Amount().Equal(decimal.NewFromInt(140)))
	})

	t.Run("sub same currency", func(t *testing.T) {
		diff, err := usd100.Sub(usd40)
		require.NoError(t, err)
		assert.True(t, diff.Amount().Equal(decimal.NewFromInt(60)))
	})

	t.Run("add rejects mixed currencies", func(t *testing.T) {
		_, err := usd100.Add(eur40)
		assert.ErrorIs(t, err, ErrCurrencyMismatch)
	})

	t.Run("sub rejects mixed currencies", func(t *testing.T) {
		_, err := usd100.Sub(eur40)
		assert.ErrorIs(t, err, ErrCurrencyMismatch)
	})

	t.Run("neg flips sign", func(t *testing.T) {
		neg := usd40.Neg()
		assert.True(t, neg.IsNegative())
		assert.True(t, neg.Abs().Equal(usd40))
	})
}

func TestMoney_Comparisons(t *testing.T) {
	big, _ := NewMoneyFromFloat(600.00, "USD")
	small, _ := NewMoneyFromFloat(400.00, "USD")
	other, _ := NewMoneyFromFloat(600.00, "EUR")

	gt, err := big.GreaterThan(small)
	require.NoError(t, err)
	assert.True(t, gt)

	lte, err := small.LessThanOrEqual(big)
	require.NoError(t, err)
	assert.True(t, lte)

	_, err = big.GreaterThan(other)
	assert.ErrorIs(t, err, ErrCurrencyMismatch)

	assert.True(t, Zero("USD").IsZero())
	assert.False(t, big.Equal(other))
}

func TestMoney_Round(t *testing.T) {
	m, _ := NewMoneyFromString("10.005", "USD")
	assert.Equal(t, "10.01", m.Round(2).Amount().String())
}
