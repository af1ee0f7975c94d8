package finance

import (
	"fmt"
	"time"

	"github.com/arledger/backend/internal/domain/shared"
	"github.com/arledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SettlementTolerance is the absolute tolerance used for every "fully
// settled" comparison, absorbing floating-point drift in caller-supplied
// amounts. Callers are expected to supply already-rounded amounts.
var SettlementTolerance = decimal.NewFromFloat(0.001)

// InvoiceStatus represents the lifecycle status of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft         InvoiceStatus = "DRAFT"
	InvoiceStatusIssued        InvoiceStatus = "ISSUED"
	InvoiceStatusPartiallyPaid InvoiceStatus = "PARTIALLY_PAID"
	InvoiceStatusPaid          InvoiceStatus = "PAID"
	InvoiceStatusCancelled     InvoiceStatus = "CANCELLED"
	InvoiceStatusOverdue       InvoiceStatus = "OVERDUE"
)

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusIssued, InvoiceStatusPartiallyPaid,
		InvoiceStatusPaid, InvoiceStatusCancelled, InvoiceStatusOverdue:
		return true
	}
	return false
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// IsPayable returns true if payments can be applied in this status.
// Cancelled invoices are dead and paid invoices have nothing due.
func (s InvoiceStatus) IsPayable() bool {
	return s != InvoiceStatusCancelled && s != InvoiceStatusPaid
}

// Invoice is the sales invoice whose financial fields the ledger core keeps
// synchronized with payments. Maintained invariant:
// AmountDue == NetAmount - AmountPaid, within SettlementTolerance.
type Invoice struct {
	shared.BaseAggregateRoot
	InvoiceNumber string          `json:"invoice_number"`
	CustomerID    uuid.UUID       `json:"customer_id"`
	Currency      string          `json:"currency"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	TotalDiscount decimal.Decimal `json:"total_discount"`
	TotalTax      decimal.Decimal `json:"total_tax"`
	NetAmount     decimal.Decimal `json:"net_amount"`
	AmountPaid    decimal.Decimal `json:"amount_paid"`
	AmountDue     decimal.Decimal `json:"amount_due"`
	Status        InvoiceStatus   `json:"status"`
	IssueDate     time.Time       `json:"issue_date"`
	DueDate       *time.Time      `json:"due_date"`
	Notes         string          `json:"notes"`
}

// NewInvoice creates a new draft invoice. NetAmount is derived as
// total - discount + tax; AmountDue starts at the full net amount.
func NewInvoice(
	invoiceNumber string,
	customerID uuid.UUID,
	total, discount, tax valueobject.Money,
) (*Invoice, error) {
	if invoiceNumber == "" {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot be empty")
	}
	if len(invoiceNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot exceed 50 characters")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if total.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Total amount must be positive")
	}
	if total.Currency() != discount.Currency() || total.Currency() != tax.Currency() {
		return nil, shared.NewDomainError("CURRENCY_MISMATCH", "Invoice amounts must share one currency")
	}
	if discount.IsNegative() || tax.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Discount and tax cannot be negative")
	}

	net := total.Amount().Sub(discount.Amount()).Add(tax.Amount())
	if net.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Net amount must be positive")
	}

	inv := &Invoice{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		InvoiceNumber:     invoiceNumber,
		CustomerID:        customerID,
		Currency:          total.Currency(),
		TotalAmount:       total.Amount(),
		TotalDiscount:     discount.Amount(),
		TotalTax:          tax.Amount(),
		NetAmount:         net,
		AmountPaid:        decimal.Zero,
		AmountDue:         net,
		Status:            InvoiceStatusDraft,
		IssueDate:         time.Now(),
	}

	inv.AddDomainEvent(NewInvoiceCreatedEvent(inv))

	return inv, nil
}

// Issue moves a draft invoice into circulation
func (inv *Invoice) Issue(dueDate *time.Time) error {
	if inv.Status != InvoiceStatusDraft {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot issue invoice in %s status", inv.Status))
	}
	inv.Status = InvoiceStatusIssued
	inv.DueDate = dueDate
	inv.touch()
	return nil
}

// Cancel cancels an invoice that has received no payments
func (inv *Invoice) Cancel(reason string) error {
	if inv.Status == InvoiceStatusPaid || inv.Status == InvoiceStatusCancelled {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot cancel invoice in %s status", inv.Status))
	}
	if inv.AmountPaid.GreaterThan(SettlementTolerance) {
		return shared.NewDomainError("HAS_PAYMENTS", "Cannot cancel invoice with existing payments")
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Cancel reason is required")
	}
	inv.Status = InvoiceStatusCancelled
	inv.Notes = reason
	inv.touch()
	return nil
}

// MarkOverdue flags an unpaid invoice past its due date
func (inv *Invoice) MarkOverdue() error {
	if !inv.Status.IsPayable() || inv.Status == InvoiceStatusDraft {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot mark invoice overdue in %s status", inv.Status))
	}
	if inv.DueDate == nil || time.Now().Before(*inv.DueDate) {
		return shared.NewDomainError("NOT_OVERDUE", "Invoice is not past its due date")
	}
	inv.Status = InvoiceStatusOverdue
	inv.touch()
	return nil
}

// ApplyPayment records a payment against the invoice: amountPaid grows,
// amountDue shrinks, status settles to PAID once the remainder is within
// tolerance, otherwise PARTIALLY_PAID.
func (inv *Invoice) ApplyPayment(amount valueobject.Money) error {
	if !inv.Status.IsPayable() {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot apply payment to invoice in %s status", inv.Status))
	}
	if amount.Currency() != inv.Currency {
		return shared.NewDomainError("CURRENCY_MISMATCH", "Payment currency does not match invoice currency")
	}
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if amount.Amount().GreaterThan(inv.AmountDue) {
		return shared.NewDomainError("EXCEEDS_AMOUNT_DUE",
			fmt.Sprintf("Payment amount %s exceeds amount due %s",
				amount.Amount().StringFixed(2), inv.AmountDue.StringFixed(2)))
	}

	inv.AmountPaid = inv.AmountPaid.Add(amount.Amount())
	inv.AmountDue = inv.AmountDue.Sub(amount.Amount())
	inv.settleStatus()
	inv.touch()

	return nil
}

// AdjustPayment re-applies an amount delta after a payment edit. A positive
// delta pays more, a negative delta pays less; status is recomputed from the
// same thresholds, falling all the way back to ISSUED when nothing remains paid.
func (inv *Invoice) AdjustPayment(delta decimal.Decimal) error {
	if inv.Status == InvoiceStatusCancelled {
		return shared.NewDomainError("INVALID_STATE", "Cannot adjust payments on a cancelled invoice")
	}
	if delta.GreaterThan(inv.AmountDue) {
		return shared.NewDomainError("EXCEEDS_AMOUNT_DUE",
			fmt.Sprintf("Payment increase %s exceeds amount due %s",
				delta.StringFixed(2), inv.AmountDue.StringFixed(2)))
	}
	if delta.Neg().GreaterThan(inv.AmountPaid) {
		return shared.NewDomainError("EXCEEDS_AMOUNT_PAID",
			fmt.Sprintf("Payment decrease %s exceeds amount paid %s",
				delta.Abs().StringFixed(2), inv.AmountPaid.StringFixed(2)))
	}

	inv.AmountPaid = inv.AmountPaid.Add(delta)
	inv.AmountDue = inv.AmountDue.Sub(delta)
	inv.settleStatus()
	inv.touch()

	return nil
}

// RevertPayment backs a payment out of the invoice entirely, used when the
// payment itself is deleted. Status returns to ISSUED or PARTIALLY_PAID.
func (inv *Invoice) RevertPayment(amount valueobject.Money) error {
	if amount.Currency() != inv.Currency {
		return shared.NewDomainError("CURRENCY_MISMATCH", "Payment currency does not match invoice currency")
	}
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Reverted amount must be positive")
	}
	if amount.Amount().GreaterThan(inv.AmountPaid.Add(SettlementTolerance)) {
		return shared.NewDomainError("EXCEEDS_AMOUNT_PAID",
			fmt.Sprintf("Reverted amount %s exceeds amount paid %s",
				amount.Amount().StringFixed(2), inv.AmountPaid.StringFixed(2)))
	}

	inv.AmountPaid = inv.AmountPaid.Sub(amount.Amount())
	inv.AmountDue = inv.AmountDue.Add(amount.Amount())
	inv.settleStatus()
	inv.touch()

	inv.AddDomainEvent(NewInvoicePaymentRevertedEvent(inv, amount.Amount()))

	return nil
}

// settleStatus recomputes the status from the paid/due amounts using the
// shared tolerance thresholds.
func (inv *Invoice) settleStatus() {
	switch {
	case inv.AmountDue.LessThanOrEqual(SettlementTolerance):
		inv.Status = InvoiceStatusPaid
		inv.AddDomainEvent(NewInvoicePaidEvent(inv))
	case inv.AmountPaid.LessThanOrEqual(SettlementTolerance):
		inv.Status = InvoiceStatusIssued
	default:
		inv.Status = InvoiceStatusPartiallyPaid
		inv.AddDomainEvent(NewInvoicePartiallyPaidEvent(inv))
	}
}

// IsConsistent verifies the maintained amountDue invariant within tolerance
func (inv *Invoice) IsConsistent() bool {
	expected := inv.NetAmount.Sub(inv.AmountPaid)
	return inv.AmountDue.Sub(expected).Abs().LessThanOrEqual(SettlementTolerance)
}

// IsPaid returns true if the invoice is fully settled
func (inv *Invoice) IsPaid() bool {
	return inv.Status == InvoiceStatusPaid
}

// IsOverdue returns true if the invoice is past due and not settled
func (inv *Invoice) IsOverdue() bool {
	if !inv.Status.IsPayable() || inv.DueDate == nil {
		return false
	}
	return time.Now().After(*inv.DueDate)
}

func (inv *Invoice) touch() {
	inv.UpdatedAt = time.Now()
	inv.IncrementVersion()
}
