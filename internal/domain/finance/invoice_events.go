package finance

import (
	"github.com/arledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeInvoice = "Invoice"

// Event type constants
const (
	EventTypeInvoiceCreated         = "InvoiceCreated"
	EventTypeInvoicePaid            = "InvoicePaid"
	EventTypeInvoicePartiallyPaid   = "InvoicePartiallyPaid"
	EventTypeInvoicePaymentReverted = "InvoicePaymentReverted"
)

// InvoiceCreatedEvent is published when a new invoice is created
type InvoiceCreatedEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	CustomerID    uuid.UUID       `json:"customer_id"`
	NetAmount     decimal.Decimal `json:"net_amount"`
	Currency      string          `json:"currency"`
}

// NewInvoiceCreatedEvent creates a new InvoiceCreatedEvent
func NewInvoiceCreatedEvent(inv *Invoice) *InvoiceCreatedEvent {
	return &InvoiceCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceCreated, AggregateTypeInvoice, inv.ID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		CustomerID:      inv.CustomerID,
		NetAmount:       inv.NetAmount,
		Currency:        inv.Currency,
	}
}

// InvoicePaidEvent is published when an invoice becomes fully settled
type InvoicePaidEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	CustomerID    uuid.UUID       `json:"customer_id"`
	AmountPaid    decimal.Decimal `json:"amount_paid"`
}

// NewInvoicePaidEvent creates a new InvoicePaidEvent
func NewInvoicePaidEvent(inv *Invoice) *InvoicePaidEvent {
	return &InvoicePaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoicePaid, AggregateTypeInvoice, inv.ID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		CustomerID:      inv.CustomerID,
		AmountPaid:      inv.AmountPaid,
	}
}

// InvoicePartiallyPaidEvent is published when a payment leaves a remainder due
type InvoicePartiallyPaidEvent struct {
	shared.BaseDomainEvent
	InvoiceID  uuid.UUID       `json:"invoice_id"`
	CustomerID uuid.UUID       `json:"customer_id"`
	AmountPaid decimal.Decimal `json:"amount_paid"`
	AmountDue  decimal.Decimal `json:"amount_due"`
}

// NewInvoicePartiallyPaidEvent creates a new InvoicePartiallyPaidEvent
func NewInvoicePartiallyPaidEvent(inv *Invoice) *InvoicePartiallyPaidEvent {
	return &InvoicePartiallyPaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoicePartiallyPaid, AggregateTypeInvoice, inv.ID),
		InvoiceID:       inv.ID,
		CustomerID:      inv.CustomerID,
		AmountPaid:      inv.AmountPaid,
		AmountDue:       inv.AmountDue,
	}
}

// InvoicePaymentRevertedEvent is published when a payment is backed out
type InvoicePaymentRevertedEvent struct {
	shared.BaseDomainEvent
	InvoiceID      uuid.UUID       `json:"invoice_id"`
	CustomerID     uuid.UUID       `json:"customer_id"`
	RevertedAmount decimal.Decimal `json:"reverted_amount"`
	AmountDue      decimal.Decimal `json:"amount_due"`
}

// NewInvoicePaymentRevertedEvent creates a new InvoicePaymentRevertedEvent
func NewInvoicePaymentRevertedEvent(inv *Invoice, reverted decimal.Decimal) *InvoicePaymentRevertedEvent {
	return &InvoicePaymentRevertedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoicePaymentReverted, AggregateTypeInvoice, inv.ID),
		InvoiceID:       inv.ID,
		CustomerID:      inv.CustomerID,
		RevertedAmount:  reverted,
		AmountDue:       inv.AmountDue,
	}
}
