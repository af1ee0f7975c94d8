package finance

import (
	"time"

	"github.com/arledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CustomerBalance is the single running-balance row per customer, derived
// incrementally from the ledger. Invariant: Outstanding equals the sum of
// all (non-reversed-out) ledger transaction amounts for the customer.
// Positive means the customer owes money.
type CustomerBalance struct {
	shared.BaseAggregateRoot
	CustomerID     uuid.UUID       `json:"customer_id"`
	Outstanding    decimal.Decimal `json:"outstanding_balance"`
	Currency       string          `json:"currency"`
	LastActivityAt time.Time       `json:"last_activity_at"`
}

// NewCustomerBalance creates the balance row for a customer's first
// ledger activity. The initial outstanding amount is the first delta.
func NewCustomerBalance(customerID uuid.UUID, delta decimal.Decimal, currency string) (*CustomerBalance, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if currency == "" {
		return nil, shared.NewDomainError("INVALID_CURRENCY", "Currency cannot be empty")
	}

	b := &CustomerBalance{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CustomerID:        customerID,
		Outstanding:       delta,
		Currency:          currency,
		LastActivityAt:    time.Now(),
	}

	b.AddDomainEvent(NewBalanceChangedEvent(b, decimal.Zero, delta))

	return b, nil
}

// Apply accumulates a signed delta onto the outstanding balance and
// advances the activity timestamp. Repeated calls intentionally accumulate;
// idempotency is the enclosing unit-of-work's concern.
func (b *CustomerBalance) Apply(delta decimal.Decimal, currency string) error {
	if currency != b.Currency {
		return shared.NewDomainError("CURRENCY_MISMATCH",
			"Balance currency does not match transaction currency")
	}

	before := b.Outstanding
	b.Outstanding = b.Outstanding.Add(delta)
	b.LastActivityAt = time.Now()
	b.UpdatedAt = b.LastActivityAt
	b.IncrementVersion()

	b.AddDomainEvent(NewBalanceChangedEvent(b, before, delta))

	return nil
}

// Reset overwrites the outstanding balance with a recomputed value.
// Used only by reconciliation repair after summing the transaction log.
func (b *CustomerBalance) Reset(outstanding decimal.Decimal) {
	before := b.Outstanding
	b.Outstanding = outstanding
	b.LastActivityAt = time.Now()
	b.UpdatedAt = b.LastActivityAt
	b.IncrementVersion()

	b.AddDomainEvent(NewBalanceChangedEvent(b, before, outstanding.Sub(before)))
}

// IsSettled returns true if the customer owes nothing, within tolerance
func (b *CustomerBalance) IsSettled() bool {
	return b.Outstanding.Abs().LessThanOrEqual(SettlementTolerance)
}
