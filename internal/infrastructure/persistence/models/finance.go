package models

import (
	"time"

	"github.com/arledger/backend/internal/domain/finance"
	"github.com/arledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerTransactionModel is the persistence model for ledger transactions.
// Rows are append-only; there is no update path through the repository.
type LedgerTransactionModel struct {
	BaseModel
	CustomerID      uuid.UUID               `gorm:"type:uuid;not null;index:idx_ledger_customer"`
	Type            finance.TransactionType `gorm:"type:varchar(20);not null"`
	Amount          decimal.Decimal         `gorm:"type:decimal(18,4);not null"`
	Currency        string                  `gorm:"type:varchar(3);not null"`
	TransactionDate time.Time               `gorm:"not null;index"`
	ReferenceID     *uuid.UUID              `gorm:"type:uuid;index"`
	ReferenceType   string                  `gorm:"type:varchar(50)"`
	Notes           string                  `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (LedgerTransactionModel) TableName() string {
	return "ledger_transactions"
}

// ToDomain converts the persistence model to a domain LedgerTransaction.
func (m *LedgerTransactionModel) ToDomain() *finance.LedgerTransaction {
	return &finance.LedgerTransaction{
		BaseEntity:      m.BaseModel.ToDomain(),
		CustomerID:      m.CustomerID,
		Type:            m.Type,
		Amount:          m.Amount,
		Currency:        m.Currency,
		TransactionDate: m.TransactionDate,
		ReferenceID:     m.ReferenceID,
		ReferenceType:   m.ReferenceType,
		Notes:           m.Notes,
	}
}

// FromDomain populates the persistence model from a domain LedgerTransaction.
func (m *LedgerTransactionModel) FromDomain(tx *finance.LedgerTransaction) {
	m.FromDomainBaseEntity(tx.BaseEntity)
	m.CustomerID = tx.CustomerID
	m.Type = tx.Type
	m.Amount = tx.Amount
	m.Currency = tx.Currency
	m.TransactionDate = tx.TransactionDate
	m.ReferenceID = tx.ReferenceID
	m.ReferenceType = tx.ReferenceType
	m.Notes = tx.Notes
}

// LedgerTransactionModelFromDomain creates a new persistence model from a domain LedgerTransaction.
func LedgerTransactionModelFromDomain(tx *finance.LedgerTransaction) *LedgerTransactionModel {
	m := &LedgerTransactionModel{}
	m.FromDomain(tx)
	return m
}

// CustomerBalanceModel is the persistence model for the per-customer
// balance row. One row per customer, keyed by customer_id.
type CustomerBalanceModel struct {
	AggregateModel
	CustomerID     uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_balance_customer"`
	Outstanding    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Currency       string          `gorm:"type:varchar(3);not null"`
	LastActivityAt time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CustomerBalanceModel) TableName() string {
	return "customer_balances"
}

// ToDomain converts the persistence model to a domain CustomerBalance.
func (m *CustomerBalanceModel) ToDomain() *finance.CustomerBalance {
	b := &finance.CustomerBalance{
		CustomerID:     m.CustomerID,
		Outstanding:    m.Outstanding,
		Currency:       m.Currency,
		LastActivityAt: m.LastActivityAt,
	}
	m.PopulateAggregateRoot(&b.BaseAggregateRoot)
	return b
}

// FromDomain populates the persistence model from a domain CustomerBalance.
func (m *CustomerBalanceModel) FromDomain(b *finance.CustomerBalance) {
	m.FromDomainAggregateRoot(b.BaseAggregateRoot)
	m.CustomerID = b.CustomerID
	m.Outstanding = b.Outstanding
	m.Currency = b.Currency
	m.LastActivityAt = b.LastActivityAt
}

// CustomerBalanceModelFromDomain creates a new persistence model from a domain CustomerBalance.
func CustomerBalanceModelFromDomain(b *finance.CustomerBalance) *CustomerBalanceModel {
	m := &CustomerBalanceModel{}
	m.FromDomain(b)
	return m
}

// InvoiceModel is the persistence model for the Invoice aggregate.
// The version column backs optimistic locking on payment application.
type InvoiceModel struct {
	AggregateModel
	InvoiceNumber string                `gorm:"type:varchar(50);not null;uniqueIndex:idx_invoice_number"`
	CustomerID    uuid.UUID             `gorm:"type:uuid;not null;index:idx_invoice_customer"`
	Currency      string                `gorm:"type:varchar(3);not null"`
	TotalAmount   decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	TotalDiscount decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	TotalTax      decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	NetAmount     decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	AmountPaid    decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	AmountDue     decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	Status        finance.InvoiceStatus `gorm:"type:varchar(20);not null;default:'DRAFT'"`
	IssueDate     time.Time             `gorm:"not null"`
	DueDate       *time.Time            `gorm:"index"`
	Notes         string                `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain Invoice.
func (m *InvoiceModel) ToDomain() *finance.Invoice {
	return &finance.Invoice{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: m.BaseModel.ToDomain(),
			Version:    m.Version,
		},
		InvoiceNumber: m.InvoiceNumber,
		CustomerID:    m.CustomerID,
		Currency:      m.Currency,
		TotalAmount:   m.TotalAmount,
		TotalDiscount: m.TotalDiscount,
		TotalTax:      m.TotalTax,
		NetAmount:     m.NetAmount,
		AmountPaid:    m.AmountPaid,
		AmountDue:     m.AmountDue,
		Status:        m.Status,
		IssueDate:     m.IssueDate,
		DueDate:       m.DueDate,
		Notes:         m.Notes,
	}
}

// FromDomain populates the persistence model from a domain Invoice.
func (m *InvoiceModel) FromDomain(inv *finance.Invoice) {
	m.FromDomainAggregateRoot(inv.BaseAggregateRoot)
	m.InvoiceNumber = inv.InvoiceNumber
	m.CustomerID = inv.CustomerID
	m.Currency = inv.Currency
	m.TotalAmount = inv.TotalAmount
	m.TotalDiscount = inv.TotalDiscount
	m.TotalTax = inv.TotalTax
	m.NetAmount = inv.NetAmount
	m.AmountPaid = inv.AmountPaid
	m.AmountDue = inv.AmountDue
	m.Status = inv.Status
	m.IssueDate = inv.IssueDate
	m.DueDate = inv.DueDate
	m.Notes = inv.Notes
}

// InvoiceModelFromDomain creates a new persistence model from a domain Invoice.
func InvoiceModelFromDomain(inv *finance.Invoice) *InvoiceModel {
	m := &InvoiceModel{}
	m.FromDomain(inv)
	return m
}

// PaymentModel is the persistence model for the Payment aggregate.
type PaymentModel struct {
	AggregateModel
	PaymentNumber string                `gorm:"type:varchar(50);not null;uniqueIndex:idx_payment_number"`
	CustomerID    uuid.UUID             `gorm:"type:uuid;not null;index:idx_payment_customer"`
	InvoiceID     uuid.UUID             `gorm:"type:uuid;not null;index:idx_payment_invoice"`
	Amount        decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	Currency      string                `gorm:"type:varchar(3);not null"`
	Method        finance.PaymentMethod `gorm:"type:varchar(20);not null"`
	Status        finance.PaymentStatus `gorm:"type:varchar(20);not null;default:'PENDING'"`
	PaymentDate   time.Time             `gorm:"not null"`
	Notes         string                `gorm:"type:text"`
	CompletedAt   *time.Time
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment.
func (m *PaymentModel) ToDomain() *finance.Payment {
	return &finance.Payment{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: m.BaseModel.ToDomain(),
			Version:    m.Version,
		},
		PaymentNumber: m.PaymentNumber,
		CustomerID:    m.CustomerID,
		InvoiceID:     m.InvoiceID,
		Amount:        m.Amount,
		Currency:      m.Currency,
		Method:        m.Method,
		Status:        m.Status,
		PaymentDate:   m.PaymentDate,
		Notes:         m.Notes,
		CompletedAt:   m.CompletedAt,
	}
}

// FromDomain populates the persistence model from a domain Payment.
func (m *PaymentModel) FromDomain(p *finance.Payment) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.PaymentNumber = p.PaymentNumber
	m.CustomerID = p.CustomerID
	m.InvoiceID = p.InvoiceID
	m.Amount = p.Amount
	m.Currency = p.Currency
	m.Method = p.Method
	m.Status = p.Status
	m.PaymentDate = p.PaymentDate
	m.Notes = p.Notes
	m.CompletedAt = p.CompletedAt
}

// PaymentModelFromDomain creates a new persistence model from a domain Payment.
func PaymentModelFromDomain(p *finance.Payment) *PaymentModel {
	m := &PaymentModel{}
	m.FromDomain(p)
	return m
}
