package finance

import (
	"github.com/arledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constants
const (
	AggregateTypeLedgerTransaction = "LedgerTransaction"
	AggregateTypeCustomerBalance   = "CustomerBalance"
)

// Event type constants
const (
	EventTypeTransactionRecorded = "LedgerTransactionRecorded"
	EventTypeBalanceChanged      = "CustomerBalanceChanged"
)

// TransactionRecordedEvent is published after a ledger transaction is appended
type TransactionRecordedEvent struct {
	shared.BaseDomainEvent
	TransactionID uuid.UUID       `json:"transaction_id"`
	CustomerID    uuid.UUID       `json:"customer_id"`
	Type          TransactionType `json:"transaction_type"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	ReferenceID   *uuid.UUID      `json:"reference_id,omitempty"`
	ReferenceType string          `json:"reference_type,omitempty"`
}

// NewTransactionRecordedEvent creates a new TransactionRecordedEvent
func NewTransactionRecordedEvent(tx *LedgerTransaction) *TransactionRecordedEvent {
	return &TransactionRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransactionRecorded, AggregateTypeLedgerTransaction, tx.ID),
		TransactionID:   tx.ID,
		CustomerID:      tx.CustomerID,
		Type:            tx.Type,
		Amount:          tx.Amount,
		Currency:        tx.Currency,
		ReferenceID:     tx.ReferenceID,
		ReferenceType:   tx.ReferenceType,
	}
}

// BalanceChangedEvent is published whenever the outstanding balance moves
type BalanceChangedEvent struct {
	shared.BaseDomainEvent
	CustomerID  uuid.UUID       `json:"customer_id"`
	Delta       decimal.Decimal `json:"delta"`
	Before      decimal.Decimal `json:"outstanding_before"`
	Outstanding decimal.Decimal `json:"outstanding_after"`
	Currency    string          `json:"currency"`
}

// NewBalanceChangedEvent creates a new BalanceChangedEvent
func NewBalanceChangedEvent(b *CustomerBalance, before, delta decimal.Decimal) *BalanceChangedEvent {
	return &BalanceChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBalanceChanged, AggregateTypeCustomerBalance, b.ID),
		CustomerID:      b.CustomerID,
		Delta:           delta,
		Before:          before,
		Outstanding:     b.Outstanding,
		Currency:        b.Currency,
	}
}
