package persistence

import (
	"context"

	"github.com/arledger/backend/internal/domain/finance"
	"gorm.io/gorm"
)

// GormUnitOfWork is a finance.UnitOfWork backed by a single GORM
// transaction. All repositories obtained from it share that transaction,
// so a payment write, its invoice mutation, the ledger append and the
// balance update commit or roll back together.
type GormUnitOfWork struct {
	tx       *gorm.DB
	done     bool
	log      *GormTransactionLog
	balances *GormBalanceStore
	invoices *GormInvoiceRepository
	payments *GormPaymentRepository
}

// Transactions returns the transaction-bound ledger log
func (u *GormUnitOfWork) Transactions() finance.TransactionLog {
	return u.log
}

// Balances returns the transaction-bound balance store
func (u *GormUnitOfWork) Balances() finance.BalanceStore {
	return u.balances
}

// Invoices returns the transaction-bound invoice repository
func (u *GormUnitOfWork) Invoices() finance.InvoiceRepository {
	return u.invoices
}

// Payments returns the transaction-bound payment repository
func (u *GormUnitOfWork) Payments() finance.PaymentRepository {
	return u.payments
}

// Commit commits the underlying transaction
func (u *GormUnitOfWork) Commit() error {
	if u.done {
		return nil
	}
	u.done = true
	return u.tx.Commit().Error
}

// Rollback rolls the transaction back. Safe to call after Commit, which
// lets callers defer it unconditionally.
func (u *GormUnitOfWork) Rollback() error {
	if u.done {
		return nil
	}
	u.done = true
	return u.tx.Rollback().Error
}

// GormUnitOfWorkFactory begins GORM-backed units of work
type GormUnitOfWorkFactory struct {
	db *gorm.DB
}

// NewGormUnitOfWorkFactory creates a new GormUnitOfWorkFactory
func NewGormUnitOfWorkFactory(db *gorm.DB) *GormUnitOfWorkFactory {
	return &GormUnitOfWorkFactory{db: db}
}

// Begin starts a new database transaction and binds repositories to it
func (f *GormUnitOfWorkFactory) Begin(ctx context.Context) (finance.UnitOfWork, error) {
	tx := f.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	return &GormUnitOfWork{
		tx:       tx,
		log:      NewGormTransactionLog(tx),
		balances: NewGormBalanceStore(tx),
		invoices: NewGormInvoiceRepository(tx),
		payments: NewGormPaymentRepository(tx),
	}, nil
}

var _ finance.UnitOfWork = (*GormUnitOfWork)(nil)
var _ finance.UnitOfWorkFactory = (*GormUnitOfWorkFactory)(nil)
