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
	"gorm.io/gorm/clause"
)

// GormBalanceStore implements finance.BalanceStore using GORM
type GormBalanceStore struct {
	db *gorm.DB
}

// NewGormBalanceStore creates a new GormBalanceStore
func NewGormBalanceStore(db *gorm.DB) *GormBalanceStore {
	return &GormBalanceStore{db: db}
}

// FindByCustomerID finds the balance row for a customer
func (r *GormBalanceStore) FindByCustomerID(ctx context.Context, customerID uuid.UUID) (*finance.CustomerBalance, error) {
	var model models.CustomerBalanceModel
	if err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Upsert creates the balance row on first activity or accumulates the
// signed delta onto an existing row. The version check on the update path
// catches a concurrent writer that slipped between read and write.
func (r *GormBalanceStore) Upsert(ctx context.Context, customerID uuid.UUID, delta decimal.Decimal, currency string) (*finance.CustomerBalance, error) {
	var model models.CustomerBalanceModel
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		First(&model).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		balance, derr := finance.NewCustomerBalance(customerID, delta, currency)
		if derr != nil {
			return nil, derr
		}
		created := models.CustomerBalanceModelFromDomain(balance)
		result := r.db.WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "customer_id"}},
				DoNothing: true,
			}).
			Create(created)
		if result.Error != nil {
			return nil, result.Error
		}
		if result.RowsAffected > 0 {
			return balance, nil
		}
		// A concurrent writer created the row first; fall through to accumulate.
		if ferr := r.db.WithContext(ctx).
			Where("customer_id = ?", customerID).
			First(&model).Error; ferr != nil {
			return nil, ferr
		}
	} else if err != nil {
		return nil, err
	}

	balance := model.ToDomain()
	if derr := balance.Apply(delta, currency); derr != nil {
		return nil, derr
	}
	return balance, r.saveWithVersionCheck(ctx, balance)
}

// Save persists a loaded balance with optimistic locking on its version
func (r *GormBalanceStore) Save(ctx context.Context, balance *finance.CustomerBalance) error {
	return r.saveWithVersionCheck(ctx, balance)
}

func (r *GormBalanceStore) saveWithVersionCheck(ctx context.Context, balance *finance.CustomerBalance) error {
	model := models.CustomerBalanceModelFromDomain(balance)
	result := r.db.WithContext(ctx).
		Model(&models.CustomerBalanceModel{}).
		Where("id = ? AND version = ?", balance.ID, balance.Version-1).
		Updates(map[string]interface{}{
			"outstanding":      model.Outstanding,
			"currency":         model.Currency,
			"last_activity_at": model.LastActivityAt,
			"updated_at":       model.UpdatedAt,
			"version":          model.Version,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}
