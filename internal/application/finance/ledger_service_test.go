package finance

import (
	"context"
	"testing"

	"github.com/arledger/backend/internal/domain/finance"
	"github.com/arledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerService_RecordTransaction(t *testing.T) {
	ctx := context.Background()

	t.Run("appends entry and accumulates balance", func(t *testing.T) {
		env := newTestEnv(t)
		customer := env.addActiveCustomer(t)

		resp, err := env.ledger.RecordTransaction(ctx, RecordTransactionRequest{
			CustomerID: customer.ID,
			Type:       finance.TransactionTypeInvoice,
			Amount:     decimal.NewFromInt(1000),
			Currency:   "USD",
		})
		require.NoError(t, err)
		assert.Equal(t, string(finance.TransactionTypeInvoice), resp.Type)

		require.Len(t, env.log.entries, 1)
		balance := env.balances.balances[customer.ID]
		require.NotNil(t, balance)
		assert.True(t, balance.Outstanding.Equal(decimal.NewFromInt(1000)))
		assert.True(t, env.uow.committed)
	})

	t.Run("second entry accumulates onto existing row", func(t *testing.T) {
		env := newTestEnv(t)
		customer := env.addActiveCustomer(t)

		for _, amount := range []int64{1000, -400} {
			_, err := env.ledger.RecordTransaction(ctx, RecordTransactionRequest{
				CustomerID: customer.ID,
				Type:       finance.TransactionTypeAdjustment,
				Amount:     decimal.NewFromInt(amount),
				Currency:   "USD",
			})
			require.NoError(t, err)
		}

		balance := env.balances.balances[customer.ID]
		assert.True(t, balance.Outstanding.Equal(decimal.NewFromInt(600)))
	})

	t.Run("rejects unknown customer without writes", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.ledger.RecordTransaction(ctx, RecordTransactionRequest{
			CustomerID: uuid.New(),
			Type:       finance.TransactionTypeInvoice,
			Amount:     decimal.NewFromInt(100),
			Currency:   "USD",
		})
		require.Error(t, err)
		assert.True(t, shared.IsNotFound(err))
		assert.Empty(t, env.log.entries)
	})

	t.Run("rejects inactive customer", func(t *testing.T) {
		env := newTestEnv(t)
		customer := env.addActiveCustomer(t)
		require.NoError(t, customer.Deactivate())

		_, err := env.ledger.RecordTransaction(ctx, RecordTransactionRequest{
			CustomerID: customer.ID,
			Type:       finance.TransactionTypeInvoice,
			Amount:     decimal.NewFromInt(100),
			Currency:   "USD",
		})
		require.Error(t, err)
		assert.True(t, shared.IsInvalidInput(err))
		assert.Empty(t, env.log.entries)
	})

	t.Run("rejects zero amount", func(t *testing.T) {
		env := newTestEnv(t)
		customer := env.addActiveCustomer(t)

		_, err := env.ledger.RecordTransaction(ctx, RecordTransactionRequest{
			CustomerID: customer.ID,
			Type:       finance.TransactionTypePayment,
			Amount:     decimal.Zero,
			Currency:   "USD",
		})
		assert.Error(t, err)
		assert.Empty(t, env.log.entries)
	})
}

func TestLedgerService_AdjustBalance(t *testing.T) {
	ctx := context.Background()

	t.Run("records manual adjustment for authorized operator", func(t *testing.T) {
		env := newTestEnv(t)
		customer := env.addActiveCustomer(t)

		resp, err := env.ledger.AdjustBalance(ctx, AdjustBalanceRequest{
			CustomerID: customer.ID,
			OperatorID: uuid.New(),
			Amount:     decimal.NewFromInt(-50),
			Currency:   "USD",
			Reason:     "goodwill credit",
		})
		require.NoError(t, err)
		assert.Equal(t, string(finance.TransactionTypeAdjustment), resp.Type)
		assert.Equal(t, finance.ReferenceTypeManual, env.log.entries[0].ReferenceType)

		balance := env.balances.balances[customer.ID]
		assert.True(t, balance.Outstanding.Equal(decimal.NewFromInt(-50)))
	})

	t.Run("refuses unauthorized operator without writes", func(t *testing.T) {
		env := newTestEnv(t)
		customer := env.addActiveCustomer(t)
		env.authorizer.allowed = false

		_, err := env.ledger.AdjustBalance(ctx, AdjustBalanceRequest{
			CustomerID: customer.ID,
			OperatorID: uuid.New(),
			Amount:     decimal.NewFromInt(-50),
			Currency:   "USD",
			Reason:     "goodwill credit",
		})
		require.Error(t, err)
		assert.Equal(t, shared.ErrForbidden.Code, shared.CodeOf(err))
		assert.Empty(t, env.log.entries)
	})
}

func TestLedgerService_GetBalance(t *testing.T) {
	ctx := context.Background()

	t.Run("returns nil for customer with no activity", func(t *testing.T) {
		env := newTestEnv(t)

		resp, err := env.ledger.GetBalance(ctx, uuid.New())
		require.NoError(t, err)
		assert.Nil(t, resp)
		assert.Empty(t, env.balances.balances)
	})

	t.Run("reads are idempotent", func(t *testing.T) {
		env := newTestEnv(t)
		customer := env.addActiveCustomer(t)

		_, err := env.ledger.RecordTransaction(ctx, RecordTransactionRequest{
			CustomerID: customer.ID,
			Type:       finance.TransactionTypeInvoice,
			Amount:     decimal.NewFromInt(1000),
			Currency:   "USD",
		})
		require.NoError(t, err)

		first, err := env.ledger.GetBalance(ctx, customer.ID)
		require.NoError(t, err)
		second, err := env.ledger.GetBalance(ctx, customer.ID)
		require.NoError(t, err)

		assert.True(t, first.Outstanding.Equal(second.Outstanding))
		assert.Equal(t, first.Version, second.Version)
		assert.Equal(t, first.LastActivityAt, second.LastActivityAt)
	})
}

func TestLedgerService_ReverseTransaction(t *testing.T) {
	ctx := context.Background()

	t.Run("compensating entry nets the ledger to zero", func(t *testing.T) {
		env := newTestEnv(t)
		customer := env.addActiveCustomer(t)

		recorded, err := env.ledger.RecordTransaction(ctx, RecordTransactionRequest{
			CustomerID: customer.ID,
			Type:       finance.TransactionTypeDebitMemo,
			Amount:     decimal.NewFromInt(75),
			Currency:   "USD",
		})
		require.NoError(t, err)

		reversal, err := env.ledger.ReverseTransaction(ctx, recorded.ID, "entered in error")
		require.NoError(t, err)

		assert.Equal(t, string(finance.TransactionTypeAdjustment), reversal.Type)
		assert.True(t, reversal.Amount.Equal(decimal.NewFromInt(-75)))

		sum, err := env.log.SumByCustomerID(ctx, customer.ID)
		require.NoError(t, err)
		assert.True(t, sum.IsZero())
		assert.True(t, env.balances.balances[customer.ID].IsSettled())
	})

	t.Run("unknown transaction", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.ledger.ReverseTransaction(ctx, uuid.New(), "oops")
		require.Error(t, err)
		assert.True(t, shared.IsNotFound(err))
	})
}

func TestLedgerService_RecomputeBalance(t *testing.T) {
	ctx := context.Background()

	t.Run("repairs drifted balance from the log", func(t *testing.T) {
		env := newTestEnv(t)
		customer := env.addActiveCustomer(t)

		_, err := env.ledger.RecordTransaction(ctx, RecordTransactionRequest{
			CustomerID: customer.ID,
			Type:       finance.TransactionTypeInvoice,
			Amount:     decimal.NewFromInt(1000),
			Currency:   "USD",
		})
		require.NoError(t, err)

		// simulate drift
		env.balances.balances[customer.ID].Outstanding = decimal.NewFromInt(900)

		resp, err := env.ledger.RecomputeBalance(ctx, customer.ID)
		require.NoError(t, err)
		assert.True(t, resp.Outstanding.Equal(decimal.NewFromInt(1000)))
	})

	t.Run("no balance row to recompute", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.ledger.RecomputeBalance(ctx, uuid.New())
		require.Error(t, err)
		assert.True(t, shared.IsNotFound(err))
	})
}

func TestLedgerService_ListTransactions(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	customer := env.addActiveCustomer(t)

	for _, amount := range []int64{1000, -400, -600} {
		txType := finance.TransactionTypePayment
		if amount > 0 {
			txType = finance.TransactionTypeInvoice
		}
		_, err := env.ledger.RecordTransaction(ctx, RecordTransactionRequest{
			CustomerID: customer.ID,
			Type:       txType,
			Amount:     decimal.NewFromInt(amount),
			Currency:   "USD",
		})
		require.NoError(t, err)
	}

	page, err := env.ledger.ListTransactions(ctx, customer.ID, finance.TransactionFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.Len(t, page.Items, 3)

	paymentType := finance.TransactionTypePayment
	filtered, err := env.ledger.ListTransactions(ctx, customer.ID, finance.TransactionFilter{Type: &paymentType})
	require.NoError(t, err)
	assert.Equal(t, int64(2), filtered.Total)
}
