package finance

import (
	"context"
	"fmt"
	"time"

	"github.com/arledger/backend/internal/domain/finance"
	"github.com/arledger/backend/internal/domain/partner"
	"github.com/arledger/backend/internal/domain/shared"
	"github.com/arledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// InvoiceService manages the invoice lifecycle. It never touches the
// ledger itself; charges are posted by the caller through LedgerService
// with whatever sign convention the caller's books use.
type InvoiceService struct {
	uowFactory finance.UnitOfWorkFactory
	invoices   finance.InvoiceRepository
	customers  partner.Directory
	publisher  shared.EventPublisher
	logger     *zap.Logger
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	uowFactory finance.UnitOfWorkFactory,
	invoices finance.InvoiceRepository,
	customers partner.Directory,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *InvoiceService {
	return &InvoiceService{
		uowFactory: uowFactory,
		invoices:   invoices,
		customers:  customers,
		publisher:  publisher,
		logger:     logger,
	}
}

// CreateInvoice creates a draft invoice for an active customer
func (s *InvoiceService) CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (*InvoiceResponse, error) {
	customer, err := s.customers.FindByID(ctx, req.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load customer: %w", err)
	}
	if reason, ok := finance.CustomerIsActive(customer); !ok {
		return nil, reason.DomainError(req.CustomerID.String())
	}

	total, err := valueobject.NewMoney(req.TotalAmount, req.Currency)
	if err != nil {
		return nil, err
	}
	discount, err := valueobject.NewMoney(req.DiscountAmount, req.Currency)
	if err != nil {
		return nil, err
	}
	tax, err := valueobject.NewMoney(req.TaxAmount, req.Currency)
	if err != nil {
		return nil, err
	}

	invoice, err := finance.NewInvoice(req.InvoiceNumber, req.CustomerID, total, discount, tax)
	if err != nil {
		return nil, err
	}

	if err := s.invoices.Create(ctx, invoice); err != nil {
		return nil, fmt.Errorf("failed to create invoice: %w", err)
	}

	s.logger.Info("invoice created",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("invoice_number", invoice.InvoiceNumber),
		zap.String("net_amount", invoice.NetAmount.String()),
	)

	s.publishAll(ctx, invoice.GetDomainEvents())
	invoice.ClearDomainEvents()

	return newInvoiceResponse(invoice), nil
}

// IssueInvoice moves a draft invoice to ISSUED with an optional due date
func (s *InvoiceService) IssueInvoice(ctx context.Context, invoiceID uuid.UUID, dueDate *time.Time) (*InvoiceResponse, error) {
	return s.mutate(ctx, invoiceID, func(invoice *finance.Invoice) error {
		return invoice.Issue(dueDate)
	})
}

// CancelInvoice voids an invoice that has no payments against it
func (s *InvoiceService) CancelInvoice(ctx context.Context, invoiceID uuid.UUID, reason string) (*InvoiceResponse, error) {
	return s.mutate(ctx, invoiceID, func(invoice *finance.Invoice) error {
		return invoice.Cancel(reason)
	})
}

// MarkOverdue flags an unpaid invoice past its due date
func (s *InvoiceService) MarkOverdue(ctx context.Context, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	return s.mutate(ctx, invoiceID, func(invoice *finance.Invoice) error {
		return invoice.MarkOverdue()
	})
}

// GetInvoice returns an invoice by id
func (s *InvoiceService) GetInvoice(ctx context.Context, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	invoice, err := s.invoices.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to load invoice: %w", err)
	}
	if invoice == nil {
		return nil, shared.NewDomainError(shared.ErrNotFound.Code, "Invoice not found")
	}
	return newInvoiceResponse(invoice), nil
}

func (s *InvoiceService) mutate(ctx context.Context, invoiceID uuid.UUID, fn func(*finance.Invoice) error) (*InvoiceResponse, error) {
	uow, err := s.uowFactory.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin unit of work: %w", err)
	}
	defer uow.Rollback()

	invoice, err := uow.Invoices().FindByID(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to load invoice: %w", err)
	}
	if invoice == nil {
		return nil, shared.NewDomainError(shared.ErrNotFound.Code, "Invoice not found")
	}

	if err := fn(invoice); err != nil {
		return nil, err
	}

	if err := uow.Invoices().SaveWithLock(ctx, invoice); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit invoice change: %w", err)
	}

	s.publishAll(ctx, invoice.GetDomainEvents())
	invoice.ClearDomainEvents()

	return newInvoiceResponse(invoice), nil
}

func (s *InvoiceService) publishAll(ctx context.Context, events []shared.DomainEvent) {
	if s.publisher == nil || len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish domain events", zap.Error(err))
	}
}
