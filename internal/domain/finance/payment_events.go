package finance

import (
	"github.com/arledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypePayment = "Payment"

// Event type constants
const (
	EventTypePaymentCreated   = "PaymentCreated"
	EventTypePaymentCompleted = "PaymentCompleted"
	EventTypePaymentUpdated   = "PaymentUpdated"
	EventTypePaymentDeleted   = "PaymentDeleted"
)

// PaymentCreatedEvent is published when a new payment is created
type PaymentCreatedEvent struct {
	shared.BaseDomainEvent
	PaymentID     uuid.UUID       `json:"payment_id"`
	PaymentNumber string          `json:"payment_number"`
	CustomerID    uuid.UUID       `json:"customer_id"`
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Method        PaymentMethod   `json:"method"`
}

// NewPaymentCreatedEvent creates a new PaymentCreatedEvent
func NewPaymentCreatedEvent(p *Payment) *PaymentCreatedEvent {
	return &PaymentCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentCreated, AggregateTypePayment, p.ID),
		PaymentID:       p.ID,
		PaymentNumber:   p.PaymentNumber,
		CustomerID:      p.CustomerID,
		InvoiceID:       p.InvoiceID,
		Amount:          p.Amount,
		Currency:        p.Currency,
		Method:          p.Method,
	}
}

// PaymentCompletedEvent is published when a payment is posted
type PaymentCompletedEvent struct {
	shared.BaseDomainEvent
	PaymentID     uuid.UUID       `json:"payment_id"`
	PaymentNumber string          `json:"payment_number"`
	Amount        decimal.Decimal `json:"amount"`
}

// NewPaymentCompletedEvent creates a new PaymentCompletedEvent
func NewPaymentCompletedEvent(p *Payment) *PaymentCompletedEvent {
	return &PaymentCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentCompleted, AggregateTypePayment, p.ID),
		PaymentID:       p.ID,
		PaymentNumber:   p.PaymentNumber,
		Amount:          p.Amount,
	}
}

// PaymentAmountChangedEvent is published when a payment edit moves money
type PaymentAmountChangedEvent struct {
	shared.BaseDomainEvent
	PaymentID uuid.UUID       `json:"payment_id"`
	OldAmount decimal.Decimal `json:"old_amount"`
	NewAmount decimal.Decimal `json:"new_amount"`
	Delta     decimal.Decimal `json:"delta"`
}

// NewPaymentAmountChangedEvent creates a new PaymentAmountChangedEvent
func NewPaymentAmountChangedEvent(p *Payment, oldAmount decimal.Decimal) *PaymentAmountChangedEvent {
	return &PaymentAmountChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentUpdated, AggregateTypePayment, p.ID),
		PaymentID:       p.ID,
		OldAmount:       oldAmount,
		NewAmount:       p.Amount,
		Delta:           p.Amount.Sub(oldAmount),
	}
}

// PaymentDeletedEvent is published when a pending payment is removed and
// its ledger effect reversed
type PaymentDeletedEvent struct {
	shared.BaseDomainEvent
	PaymentID     uuid.UUID       `json:"payment_id"`
	PaymentNumber string          `json:"payment_number"`
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	Amount        decimal.Decimal `json:"amount"`
}

// NewPaymentDeletedEvent creates a new PaymentDeletedEvent
func NewPaymentDeletedEvent(p *Payment) *PaymentDeletedEvent {
	return &PaymentDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentDeleted, AggregateTypePayment, p.ID),
		PaymentID:       p.ID,
		PaymentNumber:   p.PaymentNumber,
		InvoiceID:       p.InvoiceID,
		Amount:          p.Amount,
	}
}
