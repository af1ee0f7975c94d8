package finance

import (
	"context"
	"fmt"

	"github.com/arledger/backend/internal/domain/finance"
	"github.com/arledger/backend/internal/domain/partner"
	"github.com/arledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LedgerService reconciles the append-only transaction log with the
// per-customer balance rows. Every mutation runs inside a single unit of
// work so the log and the balance never diverge.
type LedgerService struct {
	uowFactory   finance.UnitOfWorkFactory
	transactions finance.TransactionLog
	balances     finance.BalanceStore
	customers    partner.Directory
	authorizer   finance.BalanceAdjustmentAuthorizer
	publisher    shared.EventPublisher
	logger       *zap.Logger
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(
	uowFactory finance.UnitOfWorkFactory,
	transactions finance.TransactionLog,
	balances finance.BalanceStore,
	customers partner.Directory,
	authorizer finance.BalanceAdjustmentAuthorizer,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *LedgerService {
	return &LedgerService{
		uowFactory:   uowFactory,
		transactions: transactions,
		balances:     balances,
		customers:    customers,
		authorizer:   authorizer,
		publisher:    publisher,
		logger:       logger,
	}
}

// RecordTransaction appends a signed ledger entry for an active customer
// and folds its amount into the customer's balance, atomically.
func (s *LedgerService) RecordTransaction(ctx context.Context, req RecordTransactionRequest) (*TransactionResponse, error) {
	customer, err := s.customers.FindByID(ctx, req.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load customer: %w", err)
	}
	if reason, ok := finance.CustomerIsActive(customer); !ok {
		return nil, reason.DomainError(req.CustomerID.String())
	}

	tx, err := finance.NewLedgerTransaction(req.CustomerID, req.Type, req.Amount, req.Currency)
	if err != nil {
		return nil, err
	}
	if req.ReferenceID != nil {
		tx.WithReference(*req.ReferenceID, req.ReferenceType)
	}
	if req.Notes != "" {
		tx.WithNotes(req.Notes)
	}
	if req.TransactionDate != nil {
		tx.WithTransactionDate(*req.TransactionDate)
	}

	uow, err := s.uowFactory.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin unit of work: %w", err)
	}
	defer uow.Rollback()

	balance, err := postTransaction(ctx, uow, tx)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit ledger transaction: %w", err)
	}

	s.logger.Info("ledger transaction recorded",
		zap.String("transaction_id", tx.ID.String()),
		zap.String("customer_id", tx.CustomerID.String()),
		zap.String("type", string(tx.Type)),
		zap.String("amount", tx.Amount.String()),
		zap.String("outstanding", balance.Outstanding.String()),
	)

	s.publishEvents(ctx, finance.NewTransactionRecordedEvent(tx))
	s.publishEvents(ctx, balance.GetDomainEvents()...)
	balance.ClearDomainEvents()

	return newTransactionResponse(tx), nil
}

// AdjustBalance records a manual ADJUSTMENT entry. The operator must hold
// the balance-adjustment permission; payment-driven ledger writes never
// pass through here.
func (s *LedgerService) AdjustBalance(ctx context.Context, req AdjustBalanceRequest) (*TransactionResponse, error) {
	allowed, err := s.authorizer.CanAdjustBalance(ctx, req.OperatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to check adjustment permission: %w", err)
	}
	if !allowed {
		return nil, shared.NewDomainError(shared.ErrForbidden.Code,
			"Operator is not allowed to adjust customer balances")
	}

	return s.RecordTransaction(ctx, RecordTransactionRequest{
		CustomerID:    req.CustomerID,
		Type:          finance.TransactionTypeAdjustment,
		Amount:        req.Amount,
		Currency:      req.Currency,
		ReferenceType: finance.ReferenceTypeManual,
		Notes:         req.Reason,
	})
}

// GetBalance returns the customer's current balance, or nil when the
// customer has no ledger activity yet. It never creates a balance row.
func (s *LedgerService) GetBalance(ctx context.Context, customerID uuid.UUID) (*BalanceResponse, error) {
	balance, err := s.balances.FindByCustomerID(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load balance: %w", err)
	}
	if balance == nil {
		return nil, nil
	}
	return newBalanceResponse(balance), nil
}

// ListTransactions returns the customer's ledger history, newest first
func (s *LedgerService) ListTransactions(ctx context.Context, customerID uuid.UUID, filter finance.TransactionFilter) (*shared.Paginated[TransactionResponse], error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 200 {
		filter.PageSize = 20
	}

	txs, total, err := s.transactions.FindByCustomerID(ctx, customerID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	items := make([]TransactionResponse, len(txs))
	for i, tx := range txs {
		items[i] = *newTransactionResponse(tx)
	}

	result := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &result, nil
}

// ReverseTransaction voids an erroneous ledger entry by appending its
// compensating entry. The original entry is never mutated or removed;
// history only ever grows.
func (s *LedgerService) ReverseTransaction(ctx context.Context, transactionID uuid.UUID, reason string) (*TransactionResponse, error) {
	uow, err := s.uowFactory.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin unit of work: %w", err)
	}
	defer uow.Rollback()

	original, err := uow.Transactions().FindByID(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load transaction: %w", err)
	}
	if original == nil {
		return nil, shared.NewDomainError(shared.ErrNotFound.Code, "Transaction not found")
	}

	reversal, err := finance.NewReversalTransaction(original, reason)
	if err != nil {
		return nil, err
	}

	balance, err := postTransaction(ctx, uow, reversal)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit reversal: %w", err)
	}

	s.logger.Info("ledger transaction reversed",
		zap.String("original_id", original.ID.String()),
		zap.String("reversal_id", reversal.ID.String()),
		zap.String("amount", reversal.Amount.String()),
	)

	s.publishEvents(ctx, finance.NewTransactionRecordedEvent(reversal))
	s.publishEvents(ctx, balance.GetDomainEvents()...)
	balance.ClearDomainEvents()

	return newTransactionResponse(reversal), nil
}

// RecomputeBalance re-derives the balance row from the full transaction
// log and overwrites any drift. Returns the repaired balance.
func (s *LedgerService) RecomputeBalance(ctx context.Context, customerID uuid.UUID) (*BalanceResponse, error) {
	uow, err := s.uowFactory.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin unit of work: %w", err)
	}
	defer uow.Rollback()

	sum, err := uow.Transactions().SumByCustomerID(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum transactions: %w", err)
	}

	balance, err := uow.Balances().FindByCustomerID(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load balance: %w", err)
	}
	if balance == nil {
		return nil, shared.NewDomainError(shared.ErrNotFound.Code,
			"Customer has no balance to recompute")
	}

	drift := sum.Sub(balance.Outstanding)
	balance.Reset(sum)
	if err := uow.Balances().Save(ctx, balance); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit balance repair: %w", err)
	}

	if !drift.IsZero() {
		s.logger.Warn("balance drift repaired",
			zap.String("customer_id", customerID.String()),
			zap.String("drift", drift.String()),
			zap.String("outstanding", balance.Outstanding.String()),
		)
	}

	s.publishEvents(ctx, balance.GetDomainEvents()...)
	balance.ClearDomainEvents()

	return newBalanceResponse(balance), nil
}

func (s *LedgerService) publishEvents(ctx context.Context, events ...shared.DomainEvent) {
	if s.publisher == nil || len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish domain events", zap.Error(err))
	}
}

// postTransaction appends the entry to the log and folds its amount into
// the balance row on the same unit of work. The caller owns the commit.
func postTransaction(ctx context.Context, uow finance.UnitOfWork, tx *finance.LedgerTransaction) (*finance.CustomerBalance, error) {
	if err := uow.Transactions().Append(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to append ledger transaction: %w", err)
	}

	balance, err := uow.Balances().Upsert(ctx, tx.CustomerID, tx.Amount, tx.Currency)
	if err != nil {
		return nil, fmt.Errorf("failed to update balance: %w", err)
	}

	return balance, nil
}
