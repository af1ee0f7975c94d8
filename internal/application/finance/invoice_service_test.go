package finance

import (
	"context"
	"testing"
	"time"

	"github.com/arledger/backend/internal/domain/finance"
	"github.com/arledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newInvoiceServiceEnv(t *testing.T) (*testEnv, *InvoiceService) {
	t.Helper()
	env := newTestEnv(t)
	factory := &mockUOWFactory{uow: env.uow}
	svc := NewInvoiceService(factory, env.invoices, env.customers, env.publisher, zap.NewNop())
	return env, svc
}

func TestInvoiceService_CreateInvoice(t *testing.T) {
	ctx := context.Background()

	t.Run("creates draft with derived net amount", func(t *testing.T) {
		env, svc := newInvoiceServiceEnv(t)
		customer := env.addActiveCustomer(t)

		resp, err := svc.CreateInvoice(ctx, CreateInvoiceRequest{
			InvoiceNumber:  "INV-100",
			CustomerID:     customer.ID,
			TotalAmount:    decimal.NewFromInt(1000),
			DiscountAmount: decimal.NewFromInt(100),
			TaxAmount:      decimal.NewFromInt(50),
			Currency:       "USD",
		})
		require.NoError(t, err)

		assert.Equal(t, string(finance.InvoiceStatusDraft), resp.Status)
		assert.True(t, resp.NetAmount.Equal(decimal.NewFromInt(950)))
		assert.True(t, resp.AmountDue.Equal(decimal.NewFromInt(950)))
		assert.Len(t, env.invoices.invoices, 1)
	})

	t.Run("rejects unknown customer", func(t *testing.T) {
		_, svc := newInvoiceServiceEnv(t)

		_, err := svc.CreateInvoice(ctx, CreateInvoiceRequest{
			InvoiceNumber: "INV-100",
			CustomerID:    uuid.New(),
			TotalAmount:   decimal.NewFromInt(1000),
			Currency:      "USD",
		})
		require.Error(t, err)
		assert.True(t, shared.IsNotFound(err))
	})
}

func TestInvoiceService_Lifecycle(t *testing.T) {
	ctx := context.Background()

	t.Run("issue then cancel", func(t *testing.T) {
		env, svc := newInvoiceServiceEnv(t)
		customer := env.addActiveCustomer(t)

		created, err := svc.CreateInvoice(ctx, CreateInvoiceRequest{
			InvoiceNumber: "INV-100",
			CustomerID:    customer.ID,
			TotalAmount:   decimal.NewFromInt(1000),
			Currency:      "USD",
		})
		require.NoError(t, err)

		due := time.Now().Add(30 * 24 * time.Hour)
		issued, err := svc.IssueInvoice(ctx, created.ID, &due)
		require.NoError(t, err)
		assert.Equal(t, string(finance.InvoiceStatusIssued), issued.Status)
		require.NotNil(t, issued.DueDate)

		cancelled, err := svc.CancelInvoice(ctx, created.ID, "order withdrawn")
		require.NoError(t, err)
		assert.Equal(t, string(finance.InvoiceStatusCancelled), cancelled.Status)
	})

	t.Run("cancel refuses invoices with payments", func(t *testing.T) {
		env, svc := newInvoiceServiceEnv(t)
		customer := env.addActiveCustomer(t)
		invoice := env.addIssuedInvoice(t, customer.ID, "1000.00")

		_, err := env.paymentService.CreatePayment(ctx, CreatePaymentRequest{
			PaymentNumber: "PAY-001",
			CustomerID:    customer.ID,
			InvoiceID:     invoice.ID,
			Amount:        decimal.NewFromInt(100),
			Method:        finance.PaymentMethodBankTransfer,
		})
		require.NoError(t, err)

		_, err = svc.CancelInvoice(ctx, invoice.ID, "too late")
		require.Error(t, err)
	})

	t.Run("mark overdue", func(t *testing.T) {
		env, svc := newInvoiceServiceEnv(t)
		customer := env.addActiveCustomer(t)
		invoice := env.addIssuedInvoice(t, customer.ID, "1000.00")
		past := time.Now().Add(-24 * time.Hour)
		invoice.DueDate = &past

		resp, err := svc.MarkOverdue(ctx, invoice.ID)
		require.NoError(t, err)
		assert.Equal(t, string(finance.InvoiceStatusOverdue), resp.Status)
	})

	t.Run("unknown invoice", func(t *testing.T) {
		_, svc := newInvoiceServiceEnv(t)
		_, err := svc.GetInvoice(ctx, uuid.New())
		require.Error(t, err)
		assert.True(t, shared.IsNotFound(err))
	})
}
