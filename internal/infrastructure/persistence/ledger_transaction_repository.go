package persistence

import (
	"context"
	"errors"

	"github.com/arledger/backend/internal/domain/finance"
	"github.com/arledger/backend/internal/domain/shared"
	"github.com/arledger/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormTransactionLog implements finance.TransactionLog using GORM.
// The log is append-only; no update or delete path exists.
type GormTransactionLog struct {
	db *gorm.DB
}

// NewGormTransactionLog creates a new GormTransactionLog
func NewGormTransactionLog(db *gorm.DB) *GormTransactionLog {
	return &GormTransactionLog{db: db}
}

// Append writes a new ledger transaction
func (r *GormTransactionLog) Append(ctx context.Context, tx *finance.LedgerTransaction) error {
	model := models.LedgerTransactionModelFromDomain(tx)
	return r.db.WithContext(ctx).Create(model).Error
}

// FindByID finds a ledger transaction by ID
func (r *GormTransactionLog) FindByID(ctx context.Context, id uuid.UUID) (*finance.LedgerTransaction, error) {
	var model models.LedgerTransactionModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByCustomerID finds all ledger transactions for a customer
func (r *GormTransactionLog) FindByCustomerID(ctx context.Context, customerID uuid.UUID, filter finance.TransactionFilter) ([]*finance.LedgerTransaction, int64, error) {
	var transactionModels []models.LedgerTransactionModel
	var total int64

	query := r.db.WithContext(ctx).Model(&models.LedgerTransactionModel{}).
		Where("customer_id = ?", customerID)
	query = r.applyFilter(query, filter)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	// Most recent activity first
	query = query.Order("transaction_date DESC")

	if err := query.Find(&transactionModels).Error; err != nil {
		return nil, 0, err
	}

	transactions := make([]*finance.LedgerTransaction, len(transactionModels))
	for i, model := range transactionModels {
		transactions[i] = model.ToDomain()
	}
	return transactions, total, nil
}

// FindByReference finds ledger transactions posted against a source document
func (r *GormTransactionLog) FindByReference(ctx context.Context, referenceID uuid.UUID) ([]*finance.LedgerTransaction, error) {
	var transactionModels []models.LedgerTransactionModel
	if err := r.db.WithContext(ctx).
		Where("reference_id = ?", referenceID).
		Order("transaction_date DESC").
		Find(&transactionModels).Error; err != nil {
		return nil, err
	}
	transactions := make([]*finance.LedgerTransaction, len(transactionModels))
	for i, model := range transactionModels {
		transactions[i] = model.ToDomain()
	}
	return transactions, nil
}

// SumByCustomerID returns the signed sum of all transaction amounts for a customer
func (r *GormTransactionLog) SumByCustomerID(ctx context.Context, customerID uuid.UUID) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	if err := r.db.WithContext(ctx).Model(&models.LedgerTransactionModel{}).
		Where("customer_id = ?", customerID).
		Select("SUM(amount)").
		Scan(&sum).Error; err != nil {
		return decimal.Zero, err
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal, nil
}

// applyFilter applies non-pagination filter options to the query
func (r *GormTransactionLog) applyFilter(query *gorm.DB, filter finance.TransactionFilter) *gorm.DB {
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.DateFrom != nil {
		query = query.Where("transaction_date >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("transaction_date <= ?", *filter.DateTo)
	}
	return query
}
