package finance

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionFilter represents filter options for listing ledger transactions
type TransactionFilter struct {
	Type     *TransactionType
	DateFrom *time.Time
	DateTo   *time.Time
	Page     int
	PageSize int
}

// TransactionLog is the append-only store of ledger transactions.
// Append never updates; entries are immutable once written.
type TransactionLog interface {
	Append(ctx context.Context, tx *LedgerTransaction) error
	FindByID(ctx context.Context, id uuid.UUID) (*LedgerTransaction, error)
	FindByCustomerID(ctx context.Context, customerID uuid.UUID, filter TransactionFilter) ([]*LedgerTransaction, int64, error)
	FindByReference(ctx context.Context, referenceID uuid.UUID) ([]*LedgerTransaction, error)
	// SumByCustomerID returns the signed sum of all transaction amounts for
	// the customer - the authoritative value the balance row must match.
	SumByCustomerID(ctx context.Context, customerID uuid.UUID) (decimal.Decimal, error)
}

// BalanceStore holds the single current-balance row per customer.
type BalanceStore interface {
	FindByCustomerID(ctx context.Context, customerID uuid.UUID) (*CustomerBalance, error)
	// Upsert is create-or-accumulate: a missing row is created with
	// outstanding = delta, an existing row accumulates delta and advances
	// its activity timestamp. It never reports NotFound.
	Upsert(ctx context.Context, customerID uuid.UUID, delta decimal.Decimal, currency string) (*CustomerBalance, error)
	// Save persists a loaded balance with optimistic locking on its version.
	Save(ctx context.Context, balance *CustomerBalance) error
}

// InvoiceRepository defines the persistence contract for invoices.
type InvoiceRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)
	Create(ctx context.Context, invoice *Invoice) error
	// SaveWithLock persists the invoice only if its version is unchanged,
	// returning shared.ErrConcurrencyConflict otherwise. This is what keeps
	// two concurrent payments from both applying against a stale amountDue.
	SaveWithLock(ctx context.Context, invoice *Invoice) error
}

// PaymentRepository defines the persistence contract for payments.
type PaymentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	ExistsByNumber(ctx context.Context, paymentNumber string) (bool, error)
	Create(ctx context.Context, payment *Payment) error
	Save(ctx context.Context, payment *Payment) error
	// Delete physically removes the payment row. The ledger history of the
	// payment survives as transactions; only the payment record itself goes.
	Delete(ctx context.Context, id uuid.UUID) error
	FindByInvoiceID(ctx context.Context, invoiceID uuid.UUID) ([]*Payment, error)
}

// UnitOfWork is the explicit transactional scope threaded through every
// multi-step mutation: payment write, invoice mutation, transaction append
// and balance update all commit or roll back together. Repositories
// obtained from a unit of work are bound to its transaction.
type UnitOfWork interface {
	Transactions() TransactionLog
	Balances() BalanceStore
	Invoices() InvoiceRepository
	Payments() PaymentRepository
	Commit() error
	Rollback() error
}

// UnitOfWorkFactory begins new units of work.
type UnitOfWorkFactory interface {
	Begin(ctx context.Context) (UnitOfWork, error)
}

// BalanceAdjustmentAuthorizer guards manual balance adjustments, which
// require an elevated permission the automatic payment-driven ledger calls
// do not. Injected explicitly instead of consulted through a global
// security locator.
type BalanceAdjustmentAuthorizer interface {
	CanAdjustBalance(ctx context.Context, operatorID uuid.UUID) (bool, error)
}
