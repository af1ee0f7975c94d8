package finance

import (
	"context"
	"fmt"

	"github.com/arledger/backend/internal/domain/finance"
	"github.com/arledger/backend/internal/domain/partner"
	"github.com/arledger/backend/internal/domain/shared"
	"github.com/arledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PaymentService is the entry point for payment create/update/delete.
// Every mutation keeps the ledger, the balance row and the invoice's
// financial fields synchronized inside one unit of work.
type PaymentService struct {
	uowFactory  finance.UnitOfWorkFactory
	payments    finance.PaymentRepository
	invoices    finance.InvoiceRepository
	customers   partner.Directory
	idempotency shared.IdempotencyStore
	idemConfig  shared.IdempotencyConfig
	publisher   shared.EventPublisher
	logger      *zap.Logger
}

// NewPaymentService creates a new PaymentService. The idempotency store is
// optional; pass nil to disable duplicate-submission detection.
func NewPaymentService(
	uowFactory finance.UnitOfWorkFactory,
	payments finance.PaymentRepository,
	invoices finance.InvoiceRepository,
	customers partner.Directory,
	idempotency shared.IdempotencyStore,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		uowFactory:  uowFactory,
		payments:    payments,
		invoices:    invoices,
		customers:   customers,
		idempotency: idempotency,
		idemConfig:  shared.DefaultIdempotencyConfig(),
		publisher:   publisher,
		logger:      logger,
	}
}

// CreatePayment records a payment against an invoice: the payment row, the
// invoice's amountPaid/amountDue/status, the ledger entry and the balance
// row all commit together or not at all. CASH payments are completed
// best-effort after the commit; a failure there leaves them PENDING.
func (s *PaymentService) CreatePayment(ctx context.Context, req CreatePaymentRequest) (*PaymentResponse, error) {
	if req.IdempotencyKey != "" && s.idempotency != nil && s.idemConfig.Enabled {
		seen, err := s.idempotency.IsProcessed(ctx, req.IdempotencyKey)
		if err != nil {
			s.logger.Warn("idempotency check failed, continuing without it",
				zap.String("key", req.IdempotencyKey), zap.Error(err))
		} else if seen {
			return nil, shared.NewDomainError(shared.ErrAlreadyExists.Code,
				"Payment with this idempotency key was already processed")
		}
	}

	customer, err := s.customers.FindByID(ctx, req.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load customer: %w", err)
	}
	if reason, ok := finance.CustomerIsActive(customer); !ok {
		return nil, reason.DomainError(req.CustomerID.String())
	}

	exists, err := s.payments.ExistsByNumber(ctx, req.PaymentNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to check payment number: %w", err)
	}
	if exists {
		return nil, shared.NewDomainError(shared.ErrAlreadyExists.Code,
			fmt.Sprintf("Payment number %s already exists", req.PaymentNumber))
	}

	uow, err := s.uowFactory.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin unit of work: %w", err)
	}
	defer uow.Rollback()

	invoice, err := uow.Invoices().FindByID(ctx, req.InvoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to load invoice: %w", err)
	}
	if reason, ok := finance.InvoiceIsPayable(invoice); !ok {
		return nil, reason.DomainError(req.InvoiceID.String())
	}
	if invoice.CustomerID != req.CustomerID {
		return nil, shared.NewDomainError(shared.ErrInvalidInput.Code,
			"Invoice does not belong to this customer")
	}
	if reason, ok := finance.AmountWithinDue(invoice, req.Amount, invoice.Currency); !ok {
		return nil, reason.DomainError(req.Amount.String())
	}

	amount, err := valueobject.NewMoney(req.Amount, invoice.Currency)
	if err != nil {
		return nil, err
	}

	payment, err := finance.NewPayment(req.PaymentNumber, req.CustomerID, req.InvoiceID, amount, req.Method)
	if err != nil {
		return nil, err
	}
	if req.Notes != "" {
		payment.SetNotes(req.Notes)
	}

	if err := invoice.ApplyPayment(amount); err != nil {
		return nil, err
	}
	if err := uow.Invoices().SaveWithLock(ctx, invoice); err != nil {
		return nil, err
	}
	if err := uow.Payments().Create(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}

	entry, err := finance.NewLedgerTransaction(
		payment.CustomerID, finance.TransactionTypePayment, payment.Amount, payment.Currency)
	if err != nil {
		return nil, err
	}
	entry.WithReference(payment.ID, finance.ReferenceTypePayment).
		WithNotes(fmt.Sprintf("Payment %s", payment.PaymentNumber))

	balance, err := postTransaction(ctx, uow, entry)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit payment: %w", err)
	}

	s.markProcessed(ctx, req.IdempotencyKey)

	s.logger.Info("payment created",
		zap.String("payment_id", payment.ID.String()),
		zap.String("payment_number", payment.PaymentNumber),
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("amount", payment.Amount.String()),
		zap.String("invoice_status", string(invoice.Status)),
		zap.String("outstanding", balance.Outstanding.String()),
	)

	s.flushEvents(ctx, payment, invoice, balance, entry)

	// Cash changes hands at the counter, so the payment is considered
	// settled the moment it is recorded. The completion runs after the
	// commit and is best-effort: on failure the payment stays PENDING and
	// can be completed later.
	if payment.Method == finance.PaymentMethodCash {
		if err := s.completePayment(ctx, payment); err != nil {
			s.logger.Warn("failed to auto-complete cash payment",
				zap.String("payment_id", payment.ID.String()), zap.Error(err))
		}
	}

	return newPaymentResponse(payment, invoice.Status), nil
}

// UpdatePayment reconciles an amount change as a delta, never an
// overwrite: the invoice re-applies the delta and recomputes its status,
// and a second ledger entry of the signed delta is appended alongside the
// original. Completed payments are immutable.
func (s *PaymentService) UpdatePayment(ctx context.Context, paymentID uuid.UUID, req UpdatePaymentRequest) (*PaymentResponse, error) {
	uow, err := s.uowFactory.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin unit of work: %w", err)
	}
	defer uow.Rollback()

	payment, err := uow.Payments().FindByID(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load payment: %w", err)
	}
	if payment == nil {
		return nil, shared.NewDomainError(shared.ErrNotFound.Code, "Payment not found")
	}

	invoice, err := uow.Invoices().FindByID(ctx, payment.InvoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to load invoice: %w", err)
	}
	if invoice == nil {
		return nil, shared.NewDomainError(shared.ErrNotFound.Code, "Invoice not found")
	}

	if req.Notes != nil {
		payment.SetNotes(*req.Notes)
	}

	var entry *finance.LedgerTransaction
	var balance *finance.CustomerBalance
	oldAmount := payment.Amount

	if req.Amount != nil && !req.Amount.Equal(payment.Amount) {
		delta, err := payment.ChangeAmount(*req.Amount)
		if err != nil {
			return nil, err
		}
		if err := invoice.AdjustPayment(delta); err != nil {
			return nil, err
		}
		if err := uow.Invoices().SaveWithLock(ctx, invoice); err != nil {
			return nil, err
		}

		// TODO: confirm with the system owner whether negative corrections
		// should post as ADJUSTMENT while positive ones post as PAYMENT.
		// The type currently follows the sign of the delta, which ties the
		// business classification to the arithmetic.
		entryType := finance.TransactionTypePayment
		if delta.IsNegative() {
			entryType = finance.TransactionTypeAdjustment
		}
		entry, err = finance.NewLedgerTransaction(payment.CustomerID, entryType, delta, payment.Currency)
		if err != nil {
			return nil, err
		}
		entry.WithReference(payment.ID, finance.ReferenceTypePayment).
			WithNotes(fmt.Sprintf("Payment %s amount changed from %s to %s",
				payment.PaymentNumber, oldAmount.String(), payment.Amount.String()))

		balance, err = postTransaction(ctx, uow, entry)
		if err != nil {
			return nil, err
		}

		payment.AddDomainEvent(finance.NewPaymentAmountChangedEvent(payment, oldAmount))
	}

	if err := uow.Payments().Save(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to save payment: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit payment update: %w", err)
	}

	s.logger.Info("payment updated",
		zap.String("payment_id", payment.ID.String()),
		zap.String("amount", payment.Amount.String()),
		zap.String("invoice_status", string(invoice.Status)),
	)

	s.flushEvents(ctx, payment, invoice, balance, entry)

	return newPaymentResponse(payment, invoice.Status), nil
}

// DeletePayment removes a payment that never settled. The invoice gives
// back the paid amount, a compensating ADJUSTMENT entry of the negated
// amount is appended so ledger history survives, and only then is the
// payment row physically removed. Completed payments cannot be deleted;
// they must be refunded.
func (s *PaymentService) DeletePayment(ctx context.Context, paymentID uuid.UUID, reason string) error {
	uow, err := s.uowFactory.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin unit of work: %w", err)
	}
	defer uow.Rollback()

	payment, err := uow.Payments().FindByID(ctx, paymentID)
	if err != nil {
		return fmt.Errorf("failed to load payment: %w", err)
	}
	if payment == nil {
		return shared.NewDomainError(shared.ErrNotFound.Code, "Payment not found")
	}
	if payment.IsPosted() {
		return shared.NewDomainError(shared.ErrOperationFailed.Code,
			"Completed payments cannot be deleted; refund instead")
	}

	invoice, err := uow.Invoices().FindByID(ctx, payment.InvoiceID)
	if err != nil {
		return fmt.Errorf("failed to load invoice: %w", err)
	}
	if invoice == nil {
		return shared.NewDomainError(shared.ErrNotFound.Code, "Invoice not found")
	}

	amount, err := valueobject.NewMoney(payment.Amount, payment.Currency)
	if err != nil {
		return err
	}
	if err := invoice.RevertPayment(amount); err != nil {
		return err
	}
	if err := uow.Invoices().SaveWithLock(ctx, invoice); err != nil {
		return err
	}

	reversal, err := finance.NewLedgerTransaction(
		payment.CustomerID, finance.TransactionTypeAdjustment, payment.Amount.Neg(), payment.Currency)
	if err != nil {
		return err
	}
	reversal.WithReference(payment.ID, finance.ReferenceTypePaymentReversal)
	if reason != "" {
		reversal.WithNotes(reason)
	} else {
		reversal.WithNotes(fmt.Sprintf("Reversal of payment %s", payment.PaymentNumber))
	}

	balance, err := postTransaction(ctx, uow, reversal)
	if err != nil {
		return err
	}

	if err := uow.Payments().Delete(ctx, payment.ID); err != nil {
		return fmt.Errorf("failed to delete payment: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit payment deletion: %w", err)
	}

	s.logger.Info("payment deleted",
		zap.String("payment_id", payment.ID.String()),
		zap.String("payment_number", payment.PaymentNumber),
		zap.String("reversal_amount", reversal.Amount.String()),
		zap.String("invoice_status", string(invoice.Status)),
	)

	payment.AddDomainEvent(finance.NewPaymentDeletedEvent(payment))
	s.flushEvents(ctx, payment, invoice, balance, reversal)

	return nil
}

// CompletePayment posts a pending payment
func (s *PaymentService) CompletePayment(ctx context.Context, paymentID uuid.UUID) (*PaymentResponse, error) {
	payment, err := s.payments.FindByID(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load payment: %w", err)
	}
	if payment == nil {
		return nil, shared.NewDomainError(shared.ErrNotFound.Code, "Payment not found")
	}

	if err := s.completePayment(ctx, payment); err != nil {
		return nil, err
	}

	return newPaymentResponse(payment, ""), nil
}

// GetPayment returns a payment by id
func (s *PaymentService) GetPayment(ctx context.Context, paymentID uuid.UUID) (*PaymentResponse, error) {
	payment, err := s.payments.FindByID(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load payment: %w", err)
	}
	if payment == nil {
		return nil, shared.NewDomainError(shared.ErrNotFound.Code, "Payment not found")
	}
	return newPaymentResponse(payment, ""), nil
}

// ListPaymentsByInvoice returns all payments recorded against an invoice
func (s *PaymentService) ListPaymentsByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]*PaymentResponse, error) {
	payments, err := s.payments.FindByInvoiceID(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}

	out := make([]*PaymentResponse, len(payments))
	for i, p := range payments {
		out[i] = newPaymentResponse(p, "")
	}
	return out, nil
}

func (s *PaymentService) completePayment(ctx context.Context, payment *finance.Payment) error {
	if err := payment.Complete(); err != nil {
		return err
	}
	if err := s.payments.Save(ctx, payment); err != nil {
		return fmt.Errorf("failed to save completed payment: %w", err)
	}
	s.publishAll(ctx, payment.GetDomainEvents())
	payment.ClearDomainEvents()
	return nil
}

func (s *PaymentService) markProcessed(ctx context.Context, key string) {
	if key == "" || s.idempotency == nil || !s.idemConfig.Enabled {
		return
	}
	if _, err := s.idempotency.MarkProcessed(ctx, key, s.idemConfig.TTL); err != nil {
		s.logger.Warn("failed to mark idempotency key", zap.String("key", key), zap.Error(err))
	}
}

// flushEvents publishes the buffered events of everything a committed
// mutation touched. Publishing is notification only and runs post-commit.
func (s *PaymentService) flushEvents(ctx context.Context, payment *finance.Payment, invoice *finance.Invoice, balance *finance.CustomerBalance, entry *finance.LedgerTransaction) {
	if entry != nil {
		s.publishAll(ctx, []shared.DomainEvent{finance.NewTransactionRecordedEvent(entry)})
	}
	if payment != nil {
		s.publishAll(ctx, payment.GetDomainEvents())
		payment.ClearDomainEvents()
	}
	if invoice != nil {
		s.publishAll(ctx, invoice.GetDomainEvents())
		invoice.ClearDomainEvents()
	}
	if balance != nil {
		s.publishAll(ctx, balance.GetDomainEvents())
		balance.ClearDomainEvents()
	}
}

func (s *PaymentService) publishAll(ctx context.Context, events []shared.DomainEvent) {
	if s.publisher == nil || len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish domain events", zap.Error(err))
	}
}
