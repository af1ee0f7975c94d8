package finance

import (
	"time"

	"github.com/arledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType represents the business classification of a ledger transaction
type TransactionType string

const (
	TransactionTypeInvoice    TransactionType = "INVOICE"
	TransactionTypePayment    TransactionType = "PAYMENT"
	TransactionTypeAdjustment TransactionType = "ADJUSTMENT"
	TransactionTypeCreditMemo TransactionType = "CREDIT_MEMO"
	TransactionTypeDebitMemo  TransactionType = "DEBIT_MEMO"
)

// IsValid checks if the transaction type is valid
func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypeInvoice, TransactionTypePayment, TransactionTypeAdjustment,
		TransactionTypeCreditMemo, TransactionTypeDebitMemo:
		return true
	}
	return false
}

// String returns the string representation of TransactionType
func (t TransactionType) String() string {
	return string(t)
}

// Reference document type constants. A reversal carries the reversed
// document's type with the "Reversal" suffix so the audit trail stays legible.
const (
	ReferenceTypeInvoice         = "Invoice"
	ReferenceTypePayment         = "Payment"
	ReferenceTypePaymentReversal = "PaymentReversal"
	ReferenceTypeManual          = "Manual"
)

// LedgerTransaction is one immutable entry in the per-customer AR ledger.
// Entries are append-only: they are never mutated or physically deleted.
// Undoing an entry means appending a new one with the negated amount.
type LedgerTransaction struct {
	shared.BaseEntity
	CustomerID      uuid.UUID       // Customer whose outstanding balance this entry moves
	Type            TransactionType // Business classification
	Amount          decimal.Decimal // Signed: positive increases what the customer owes
	Currency        string
	TransactionDate time.Time
	ReferenceID     *uuid.UUID // Source document (invoice, payment), optional
	ReferenceType   string
	Notes           string
}

// NewLedgerTransaction creates a new ledger transaction
func NewLedgerTransaction(
	customerID uuid.UUID,
	txType TransactionType,
	amount decimal.Decimal,
	currency string,
) (*LedgerTransaction, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if !txType.IsValid() {
		return nil, shared.NewDomainError("INVALID_TRANSACTION_TYPE", "Invalid ledger transaction type")
	}
	if amount.IsZero() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Transaction amount cannot be zero")
	}
	if currency == "" {
		return nil, shared.NewDomainError("INVALID_CURRENCY", "Currency cannot be empty")
	}

	return &LedgerTransaction{
		BaseEntity:      shared.NewBaseEntity(),
		CustomerID:      customerID,
		Type:            txType,
		Amount:          amount,
		Currency:        currency,
		TransactionDate: time.Now(),
	}, nil
}

// WithReference links the transaction to its source document
func (t *LedgerTransaction) WithReference(referenceID uuid.UUID, referenceType string) *LedgerTransaction {
	t.ReferenceID = &referenceID
	t.ReferenceType = referenceType
	return t
}

// WithNotes sets free-form notes
func (t *LedgerTransaction) WithNotes(notes string) *LedgerTransaction {
	t.Notes = notes
	return t
}

// WithTransactionDate overrides the transaction date
func (t *LedgerTransaction) WithTransactionDate(date time.Time) *LedgerTransaction {
	t.TransactionDate = date
	return t
}

// IsDebit returns true if the entry increases what the customer owes
func (t *LedgerTransaction) IsDebit() bool {
	return t.Amount.IsPositive()
}

// IsCredit returns true if the entry decreases what the customer owes
func (t *LedgerTransaction) IsCredit() bool {
	return t.Amount.IsNegative()
}

// NewReversalTransaction builds the compensating entry for an earlier
// transaction: same customer and currency, negated amount, reference type
// suffixed with "Reversal". The original entry is left untouched.
func NewReversalTransaction(original *LedgerTransaction, notes string) (*LedgerTransaction, error) {
	if original == nil {
		return nil, shared.NewDomainError("INVALID_TRANSACTION", "Original transaction cannot be nil")
	}

	reversal, err := NewLedgerTransaction(
		original.CustomerID,
		TransactionTypeAdjustment,
		original.Amount.Neg(),
		original.Currency,
	)
	if err != nil {
		return nil, err
	}

	if original.ReferenceID != nil {
		reversal.WithReference(*original.ReferenceID, original.ReferenceType+"Reversal")
	} else {
		reversal.ReferenceType = original.ReferenceType + "Reversal"
	}
	reversal.Notes = notes

	return reversal, nil
}
