package finance

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCustomerBalance(t *testing.T) {
	customerID := uuid.New()

	t.Run("creates balance with initial delta", func(t *testing.T) {
		b, err := NewCustomerBalance(customerID, decimal.NewFromFloat(400.00), "USD")
		require.NoError(t, err)
		assert.True(t, b.Outstanding.Equal(decimal.NewFromFloat(400.00)))
		assert.Equal(t, "USD", b.Currency)
		assert.False(t, b.LastActivityAt.IsZero())
		assert.Len(t, b.GetDomainEvents(), 1)
	})

	t.Run("negative initial delta is allowed", func(t *testing.T) {
		b, err := NewCustomerBalance(customerID, decimal.NewFromFloat(-50.00), "USD")
		require.NoError(t, err)
		assert.True(t, b.Outstanding.IsNegative())
	})

	t.Run("rejects nil customer", func(t *testing.T) {
		_, err := NewCustomerBalance(uuid.Nil, decimal.NewFromInt(1), "USD")
		assert.Error(t, err)
	})

	t.Run("rejects empty currency", func(t *testing.T) {
		_, err := NewCustomerBalance(customerID, decimal.NewFromInt(1), "")
		assert.Error(t, err)
	})
}

func TestCustomerBalance_Apply(t *testing.T) {
	customerID := uuid.New()

	t.Run("accumulates signed deltas", func(t *testing.T) {
		b, err := NewCustomerBalance(customerID, decimal.NewFromFloat(400.00), "USD")
		require.NoError(t, err)

		require.NoError(t, b.Apply(decimal.NewFromFloat(600.00), "USD"))
		assert.True(t, b.Outstanding.Equal(decimal.NewFromInt(1000)))

		require.NoError(t, b.Apply(decimal.NewFromFloat(-150.00), "USD"))
		assert.True(t, b.Outstanding.Equal(decimal.NewFromFloat(850.00)))
	})

	t.Run("repeated identical deltas intentionally accumulate", func(t *testing.T) {
		b, err := NewCustomerBalance(customerID, decimal.NewFromFloat(100.00), "USD")
		require.NoError(t, err)

		require.NoError(t, b.Apply(decimal.NewFromFloat(100.00), "USD"))
		require.NoError(t, b.Apply(decimal.NewFromFloat(100.00), "USD"))
		assert.True(t, b.Outstanding.Equal(decimal.NewFromInt(300)))
	})

	t.Run("rejects currency mismatch", func(t *testing.T) {
		b, err := NewCustomerBalance(customerID, decimal.NewFromFloat(100.00), "USD")
		require.NoError(t, err)
		assert.Error(t, b.Apply(decimal.NewFromInt(1), "EUR"))
	})

	t.Run("increments version per change", func(t *testing.T) {
		b, err := NewCustomerBalance(customerID, decimal.NewFromFloat(100.00), "USD")
		require.NoError(t, err)
		assert.Equal(t, 1, b.GetVersion())

		require.NoError(t, b.Apply(decimal.NewFromInt(1), "USD"))
		assert.Equal(t, 2, b.GetVersion())
	})
}

func TestCustomerBalance_Reset(t *testing.T) {
	b, err := NewCustomerBalance(uuid.New(), decimal.NewFromFloat(123.45), "USD")
	require.NoError(t, err)

	b.Reset(decimal.NewFromFloat(1000.00))
	assert.True(t, b.Outstanding.Equal(decimal.NewFromInt(1000)))
	assert.Equal(t, 2, b.GetVersion())
}

func TestCustomerBalance_IsSettled(t *testing.T) {
	tests := []struct {
		name        string
		outstanding string
		settled     bool
	}{
		{"zero", "0", true},
		{"within tolerance positive", "0.0009", true},
		{"within tolerance negative", "-0.0009", true},
		{"above tolerance", "0.0011", false},
		{"owes money", "600.00", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, err := decimal.NewFromString(tt.outstanding)
			require.NoError(t, err)
			b := &CustomerBalance{Outstanding: amount, Currency: "USD"}
			assert.Equal(t, tt.settled, b.IsSettled())
		})
	}
}
