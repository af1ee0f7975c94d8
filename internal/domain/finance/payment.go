package finance

import (
	"fmt"
	"time"

	"github.com/arledger/backend/internal/domain/shared"
	"github.com/arledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod represents how a payment was made
type PaymentMethod string

const (
	PaymentMethodCash          PaymentMethod = "CASH"
	PaymentMethodBankTransfer  PaymentMethod = "BANK_TRANSFER"
	PaymentMethodCreditCard    PaymentMethod = "CREDIT_CARD"
	PaymentMethodOnlinePayment PaymentMethod = "ONLINE_PAYMENT"
	PaymentMethodOther         PaymentMethod = "OTHER"
)

// IsValid checks if the payment method is valid
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodBankTransfer, PaymentMethodCreditCard,
		PaymentMethodOnlinePayment, PaymentMethodOther:
		return true
	}
	return false
}

// String returns the string representation of PaymentMethod
func (m PaymentMethod) String() string {
	return string(m)
}

// PaymentStatus represents the lifecycle status of a payment
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusRefunded  PaymentStatus = "REFUNDED"
	PaymentStatusCancelled PaymentStatus = "CANCELLED"
)

// IsValid checks if the status is a valid PaymentStatus
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusCompleted, PaymentStatusFailed,
		PaymentStatusRefunded, PaymentStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of PaymentStatus
func (s PaymentStatus) String() string {
	return string(s)
}

// CanTransitionTo reports whether the status machine allows the transition.
// All explicit transitions start from PENDING; COMPLETED can only move on
// to REFUNDED.
func (s PaymentStatus) CanTransitionTo(target PaymentStatus) bool {
	switch s {
	case PaymentStatusPending:
		return target == PaymentStatusCompleted || target == PaymentStatusFailed ||
			target == PaymentStatusCancelled || target == PaymentStatusRefunded
	case PaymentStatusCompleted:
		return target == PaymentStatusRefunded
	}
	return false
}

// Payment represents money received from a customer against an invoice.
// A COMPLETED payment is considered posted and immutable.
type Payment struct {
	shared.BaseAggregateRoot
	PaymentNumber string          `json:"payment_number"`
	CustomerID    uuid.UUID       `json:"customer_id"`
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Method        PaymentMethod   `json:"method"`
	Status        PaymentStatus   `json:"status"`
	PaymentDate   time.Time       `json:"payment_date"`
	Notes         string          `json:"notes"`
	CompletedAt   *time.Time      `json:"completed_at"`
}

// NewPayment creates a new payment in PENDING status
func NewPayment(
	paymentNumber string,
	customerID, invoiceID uuid.UUID,
	amount valueobject.Money,
	method PaymentMethod,
) (*Payment, error) {
	if paymentNumber == "" {
		return nil, shared.NewDomainError("INVALID_PAYMENT_NUMBER", "Payment number cannot be empty")
	}
	if len(paymentNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_PAYMENT_NUMBER", "Payment number cannot exceed 50 characters")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if invoiceID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INVOICE", "Invoice ID cannot be empty")
	}
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Payment method is not valid")
	}

	p := &Payment{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		PaymentNumber:     paymentNumber,
		CustomerID:        customerID,
		InvoiceID:         invoiceID,
		Amount:            amount.Amount(),
		Currency:          amount.Currency(),
		Method:            method,
		Status:            PaymentStatusPending,
		PaymentDate:       time.Now(),
	}

	p.AddDomainEvent(NewPaymentCreatedEvent(p))

	return p, nil
}

// Complete marks the payment as posted. CASH payments take this transition
// automatically right after creation.
func (p *Payment) Complete() error {
	if err := p.transition(PaymentStatusCompleted); err != nil {
		return err
	}
	now := time.Now()
	p.CompletedAt = &now
	p.AddDomainEvent(NewPaymentCompletedEvent(p))
	return nil
}

// Fail marks the payment as failed
func (p *Payment) Fail(reason string) error {
	if err := p.transition(PaymentStatusFailed); err != nil {
		return err
	}
	p.Notes = reason
	return nil
}

// Cancel cancels a pending payment
func (p *Payment) Cancel(reason string) error {
	if err := p.transition(PaymentStatusCancelled); err != nil {
		return err
	}
	p.Notes = reason
	return nil
}

// Refund marks the payment as refunded
func (p *Payment) Refund(reason string) error {
	if err := p.transition(PaymentStatusRefunded); err != nil {
		return err
	}
	p.Notes = reason
	return nil
}

// IsPosted returns true if the payment is completed and therefore immutable
func (p *Payment) IsPosted() bool {
	return p.Status == PaymentStatusCompleted
}

// ChangeAmount sets a new amount and returns the signed delta from the old
// one. Posted payments cannot change.
func (p *Payment) ChangeAmount(newAmount decimal.Decimal) (decimal.Decimal, error) {
	if p.IsPosted() {
		return decimal.Zero, shared.NewDomainError("PAYMENT_POSTED", "Completed payments are immutable")
	}
	if newAmount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}

	delta := newAmount.Sub(p.Amount)
	p.Amount = newAmount
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return delta, nil
}

// SetNotes updates free-form notes without ledger impact
func (p *Payment) SetNotes(notes string) {
	p.Notes = notes
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

func (p *Payment) transition(target PaymentStatus) error {
	if !p.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot transition payment from %s to %s", p.Status, target))
	}
	p.Status = target
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}
