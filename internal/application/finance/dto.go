package finance

import (
	"time"

	"github.com/arledger/backend/internal/domain/finance"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RecordTransactionRequest represents a request to append a ledger entry
type RecordTransactionRequest struct {
	CustomerID      uuid.UUID               `json:"customer_id" binding:"required"`
	Type            finance.TransactionType `json:"type" binding:"required"`
	Amount          decimal.Decimal         `json:"amount" binding:"required"`
	Currency        string                  `json:"currency" binding:"required,len=3"`
	ReferenceID     *uuid.UUID              `json:"reference_id"`
	ReferenceType   string                  `json:"reference_type" binding:"max=50"`
	Notes           string                  `json:"notes" binding:"max=500"`
	TransactionDate *time.Time              `json:"transaction_date"`
}

// AdjustBalanceRequest represents a manual balance adjustment. OperatorID
// identifies who is asking; the adjustment is refused without the
// balance-adjustment permission.
type AdjustBalanceRequest struct {
	CustomerID uuid.UUID       `json:"-"`
	OperatorID uuid.UUID       `json:"operator_id" binding:"required"`
	Amount     decimal.Decimal `json:"amount" binding:"required"`
	Currency   string          `json:"currency" binding:"required,len=3"`
	Reason     string          `json:"reason" binding:"required,max=500"`
}

// CreatePaymentRequest represents a request to record a payment against an
// invoice. IdempotencyKey, when set, dedupes retried submissions.
type CreatePaymentRequest struct {
	PaymentNumber  string                `json:"payment_number" binding:"required,min=1,max=50"`
	CustomerID     uuid.UUID             `json:"customer_id" binding:"required"`
	InvoiceID      uuid.UUID             `json:"invoice_id" binding:"required"`
	Amount         decimal.Decimal       `json:"amount" binding:"required"`
	Method         finance.PaymentMethod `json:"method" binding:"required"`
	Notes          string                `json:"notes" binding:"max=500"`
	IdempotencyKey string                `json:"-"`
}

// CreateInvoiceRequest represents a request to create a draft invoice
type CreateInvoiceRequest struct {
	InvoiceNumber  string          `json:"invoice_number" binding:"required,min=1,max=50"`
	CustomerID     uuid.UUID       `json:"customer_id" binding:"required"`
	TotalAmount    decimal.Decimal `json:"total_amount" binding:"required"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	Currency       string          `json:"currency" binding:"required,len=3"`
}

// UpdatePaymentRequest represents a request to change a pending payment
type UpdatePaymentRequest struct {
	Amount *decimal.Decimal `json:"amount"`
	Notes  *string          `json:"notes" binding:"omitempty,max=500"`
}

// TransactionResponse represents a ledger transaction in API responses
type TransactionResponse struct {
	ID              uuid.UUID       `json:"id"`
	CustomerID      uuid.UUID       `json:"customer_id"`
	Type            string          `json:"type"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	TransactionDate time.Time       `json:"transaction_date"`
	ReferenceID     *uuid.UUID      `json:"reference_id,omitempty"`
	ReferenceType   string          `json:"reference_type,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// BalanceResponse represents a customer's outstanding balance
type BalanceResponse struct {
	CustomerID     uuid.UUID       `json:"customer_id"`
	Outstanding    decimal.Decimal `json:"outstanding_balance"`
	Currency       string          `json:"currency"`
	Settled        bool            `json:"settled"`
	LastActivityAt time.Time       `json:"last_activity_at"`
	Version        int             `json:"version"`
}

// InvoiceResponse represents an invoice in API responses
type InvoiceResponse struct {
	ID            uuid.UUID       `json:"id"`
	InvoiceNumber string          `json:"invoice_number"`
	CustomerID    uuid.UUID       `json:"customer_id"`
	Currency      string          `json:"currency"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	TotalDiscount decimal.Decimal `json:"total_discount"`
	TotalTax      decimal.Decimal `json:"total_tax"`
	NetAmount     decimal.Decimal `json:"net_amount"`
	AmountPaid    decimal.Decimal `json:"amount_paid"`
	AmountDue     decimal.Decimal `json:"amount_due"`
	Status        string          `json:"status"`
	IssueDate     time.Time       `json:"issue_date"`
	DueDate       *time.Time      `json:"due_date,omitempty"`
	Version       int             `json:"version"`
}

// PaymentResponse represents a payment in API responses
type PaymentResponse struct {
	ID            uuid.UUID       `json:"id"`
	PaymentNumber string          `json:"payment_number"`
	CustomerID    uuid.UUID       `json:"customer_id"`
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Method        string          `json:"method"`
	Status        string          `json:"status"`
	PaymentDate   time.Time       `json:"payment_date"`
	Notes         string          `json:"notes,omitempty"`
	CompletedAt   *time.Time      `json:"completed_at,omitempty"`
	InvoiceStatus string          `json:"invoice_status,omitempty"`
	Version       int             `json:"version"`
}

func newTransactionResponse(tx *finance.LedgerTransaction) *TransactionResponse {
	return &TransactionResponse{
		ID:              tx.ID,
		CustomerID:      tx.CustomerID,
		Type:            string(tx.Type),
		Amount:          tx.Amount,
		Currency:        tx.Currency,
		TransactionDate: tx.TransactionDate,
		ReferenceID:     tx.ReferenceID,
		ReferenceType:   tx.ReferenceType,
		Notes:           tx.Notes,
		CreatedAt:       tx.CreatedAt,
	}
}

func newBalanceResponse(b *finance.CustomerBalance) *BalanceResponse {
	return &BalanceResponse{
		CustomerID:     b.CustomerID,
		Outstanding:    b.Outstanding,
		Currency:       b.Currency,
		Settled:        b.IsSettled(),
		LastActivityAt: b.LastActivityAt,
		Version:        b.Version,
	}
}

func newInvoiceResponse(inv *finance.Invoice) *InvoiceResponse {
	return &InvoiceResponse{
		ID:            inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
		CustomerID:    inv.CustomerID,
		Currency:      inv.Currency,
		TotalAmount:   inv.TotalAmount,
		TotalDiscount: inv.TotalDiscount,
		TotalTax:      inv.TotalTax,
		NetAmount:     inv.NetAmount,
		AmountPaid:    inv.AmountPaid,
		AmountDue:     inv.AmountDue,
		Status:        string(inv.Status),
		IssueDate:     inv.IssueDate,
		DueDate:       inv.DueDate,
		Version:       inv.Version,
	}
}

func newPaymentResponse(p *finance.Payment, invoiceStatus finance.InvoiceStatus) *PaymentResponse {
	return &PaymentResponse{
		ID:            p.ID,
		PaymentNumber: p.PaymentNumber,
		CustomerID:    p.CustomerID,
		InvoiceID:     p.InvoiceID,
		Amount:        p.Amount,
		Currency:      p.Currency,
		Method:        string(p.Method),
		Status:        string(p.Status),
		PaymentDate:   p.PaymentDate,
		Notes:         p.Notes,
		CompletedAt:   p.CompletedAt,
		InvoiceStatus: string(invoiceStatus),
		Version:       p.Version,
	}
}
