package finance

import (
	"testing"

	"github.com/arledger/backend/internal/domain/partner"
	"github.com/arledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomerIsActive(t *testing.T) {
	t.Run("nil customer", func(t *testing.T) {
		reason, ok := CustomerIsActive(nil)
		assert.False(t, ok)
		assert.Equal(t, ReasonCustomerMissing, reason)
	})

	t.Run("inactive customer", func(t *testing.T) {
		c, err := partner.NewCustomer("CUST-001", "Acme Corp")
		require.NoError(t, err)
		require.NoError(t, c.Deactivate())

		reason, ok := CustomerIsActive(c)
		assert.False(t, ok)
		assert.Equal(t, ReasonCustomerInactive, reason)
	})

	t.Run("active customer", func(t *testing.T) {
		c, err := partner.NewCustomer("CUST-001", "Acme Corp")
		require.NoError(t, err)

		_, ok := CustomerIsActive(c)
		assert.True(t, ok)
	})
}

func TestInvoiceIsPayable(t *testing.T) {
	t.Run("nil invoice", func(t *testing.T) {
		reason, ok := InvoiceIsPayable(nil)
		assert.False(t, ok)
		assert.Equal(t, ReasonInvoiceMissing, reason)
	})

	t.Run("cancelled invoice", func(t *testing.T) {
		inv := createTestInvoice(t)
		require.NoError(t, inv.Cancel("void"))

		reason, ok := InvoiceIsPayable(inv)
		assert.False(t, ok)
		assert.Equal(t, ReasonInvoiceNotPayable, reason)
	})

	t.Run("paid invoice", func(t *testing.T) {
		inv := createTestInvoice(t)
		require.NoError(t, inv.ApplyPayment(usd(t, "1000.00")))

		_, ok := InvoiceIsPayable(inv)
		assert.False(t, ok)
	})

	t.Run("issued invoice", func(t *testing.T) {
		_, ok := InvoiceIsPayable(createTestInvoice(t))
		assert.True(t, ok)
	})
}

func TestAmountWithinDue(t *testing.T) {
	inv := createTestInvoice(t)
	require.NoError(t, inv.ApplyPayment(usd(t, "400.00")))

	tests := []struct {
		name     string
		amount   decimal.Decimal
		currency string
		ok       bool
		reason   ValidationReason
	}{
		{"within due", decimal.NewFromInt(600), "USD", true, ""},
		{"exceeds due", decimal.NewFromInt(700), "USD", false, ReasonAmountExceedsDue},
		{"zero amount", decimal.Zero, "USD", false, ReasonAmountNotPositive},
		{"negative amount", decimal.NewFromInt(-50), "USD", false, ReasonAmountNotPositive},
		{"wrong currency", decimal.NewFromInt(100), "EUR", false, ReasonCurrencyMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reason, ok := AmountWithinDue(inv, tt.amount, tt.currency)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.reason, reason)
		})
	}
}

func TestValidationReason_DomainError(t *testing.T) {
	t.Run("missing entities map to not found", func(t *testing.T) {
		assert.True(t, shared.IsNotFound(ReasonCustomerMissing.DomainError("")))
		assert.True(t, shared.IsNotFound(ReasonInvoiceMissing.DomainError("")))
	})

	t.Run("precondition failures map to invalid input", func(t *testing.T) {
		for _, r := range []ValidationReason{
			ReasonCustomerInactive,
			ReasonInvoiceNotPayable,
			ReasonAmountNotPositive,
			ReasonAmountExceedsDue,
			ReasonCurrencyMismatch,
		} {
			assert.True(t, shared.IsInvalidInput(r.DomainError("")), string(r))
		}
	})

	t.Run("detail is appended to the message", func(t *testing.T) {
		err := ReasonAmountExceedsDue.DomainError(uuid.New().String())
		assert.Contains(t, err.Message, string(ReasonAmountExceedsDue))
	})
}
