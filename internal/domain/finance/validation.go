package finance

import (
	"fmt"

	"github.com/arledger/backend/internal/domain/partner"
	"github.com/arledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ValidationReason is a typed precondition-failure reason. Callers map
// reasons to domain errors without re-querying the entities involved.
type ValidationReason string

const (
	ReasonCustomerMissing   ValidationReason = "CUSTOMER_MISSING"
	ReasonCustomerInactive  ValidationReason = "CUSTOMER_INACTIVE"
	ReasonInvoiceMissing    ValidationReason = "INVOICE_MISSING"
	ReasonInvoiceNotPayable ValidationReason = "INVOICE_NOT_PAYABLE"
	ReasonAmountNotPositive ValidationReason = "AMOUNT_NOT_POSITIVE"
	ReasonAmountExceedsDue  ValidationReason = "AMOUNT_EXCEEDS_DUE"
	ReasonCurrencyMismatch  ValidationReason = "CURRENCY_MISMATCH"
)

// DomainError maps a validation reason to the matching domain error kind:
// missing entities classify as NOT_FOUND, everything else as INVALID_INPUT.
func (r ValidationReason) DomainError(detail string) *shared.DomainError {
	msg := string(r)
	if detail != "" {
		msg = fmt.Sprintf("%s: %s", r, detail)
	}
	switch r {
	case ReasonCustomerMissing, ReasonInvoiceMissing:
		return shared.NewDomainError(shared.ErrNotFound.Code, msg)
	default:
		return shared.NewDomainError(shared.ErrInvalidInput.Code, msg)
	}
}

// CustomerIsActive checks that the customer exists and can transact.
// Pure: no queries, no side effects.
func CustomerIsActive(customer *partner.Customer) (ValidationReason, bool) {
	if customer == nil {
		return ReasonCustomerMissing, false
	}
	if !customer.IsActive() {
		return ReasonCustomerInactive, false
	}
	return "", true
}

// InvoiceIsPayable checks that the invoice exists and accepts payments
func InvoiceIsPayable(invoice *Invoice) (ValidationReason, bool) {
	if invoice == nil {
		return ReasonInvoiceMissing, false
	}
	if !invoice.Status.IsPayable() {
		return ReasonInvoiceNotPayable, false
	}
	return "", true
}

// AmountWithinDue checks 0 < amount <= invoice.AmountDue in the invoice's
// currency
func AmountWithinDue(invoice *Invoice, amount decimal.Decimal, currency string) (ValidationReason, bool) {
	if invoice == nil {
		return ReasonInvoiceMissing, false
	}
	if currency != invoice.Currency {
		return ReasonCurrencyMismatch, false
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return ReasonAmountNotPositive, false
	}
	if amount.GreaterThan(invoice.AmountDue) {
		return ReasonAmountExceedsDue, false
	}
	return "", true
}
