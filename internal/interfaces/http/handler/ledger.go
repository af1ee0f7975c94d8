package handler

import (
	"time"

	financeapp "github.com/arledger/backend/internal/application/finance"
	"github.com/arledger/backend/internal/domain/finance"
	"github.com/arledger/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// LedgerHandler handles ledger and balance API endpoints
type LedgerHandler struct {
	BaseHandler
	ledgerService *financeapp.LedgerService
}

// NewLedgerHandler creates a new LedgerHandler
func NewLedgerHandler(ledgerService *financeapp.LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerService: ledgerService}
}

// RegisterRoutes registers ledger routes
func (h *LedgerHandler) RegisterRoutes(rg *gin.RouterGroup) {
	transactions := rg.Group("/transactions")
	{
		transactions.POST("", h.RecordTransaction)
		transactions.POST("/:id/reverse", h.ReverseTransaction)
	}

	customers := rg.Group("/customers/:customerId")
	{
		customers.GET("/balance", h.GetBalance)
		customers.GET("/transactions", h.ListTransactions)
		customers.POST("/balance/adjust", h.AdjustBalance)
		customers.POST("/balance/recompute", h.RecomputeBalance)
	}
}

// TransactionListFilter represents filter options for the transaction list
type TransactionListFilter struct {
	Type     string `form:"type" binding:"omitempty,oneof=INVOICE PAYMENT ADJUSTMENT CREDIT_MEMO DEBIT_MEMO"`
	DateFrom string `form:"date_from" binding:"omitempty,datetime=2006-01-02"`
	DateTo   string `form:"date_to" binding:"omitempty,datetime=2006-01-02"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=200"`
}

// ReverseTransactionRequest carries the reason for voiding a ledger entry
type ReverseTransactionRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// RecordTransaction appends a ledger entry for a customer
func (h *LedgerHandler) RecordTransaction(c *gin.Context) {
	var req financeapp.RecordTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	resp, err := h.ledgerService.RecordTransaction(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// ReverseTransaction voids a posted ledger entry with a compensating one
func (h *LedgerHandler) ReverseTransaction(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid transaction ID")
		return
	}

	var req ReverseTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	resp, err := h.ledgerService.ReverseTransaction(c.Request.Context(), id, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// GetBalance returns a customer's outstanding balance
func (h *LedgerHandler) GetBalance(c *gin.Context) {
	customerID, err := uuid.Parse(c.Param("customerId"))
	if err != nil {
		h.BadRequest(c, "Invalid customer ID")
		return
	}

	resp, err := h.ledgerService.GetBalance(c.Request.Context(), customerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if resp == nil {
		h.NotFound(c, "Customer has no ledger activity")
		return
	}
	h.Success(c, resp)
}

// ListTransactions returns the paginated ledger history for a customer
func (h *LedgerHandler) ListTransactions(c *gin.Context) {
	customerID, err := uuid.Parse(c.Param("customerId"))
	if err != nil {
		h.BadRequest(c, "Invalid customer ID")
		return
	}

	var query TransactionListFilter
	if err := c.ShouldBindQuery(&query); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	filter := finance.TransactionFilter{
		Page:     query.Page,
		PageSize: query.PageSize,
	}
	if query.Type != "" {
		txType := finance.TransactionType(query.Type)
		filter.Type = &txType
	}
	if query.DateFrom != "" {
		from, _ := time.Parse("2006-01-02", query.DateFrom)
		filter.DateFrom = &from
	}
	if query.DateTo != "" {
		// Inclusive end of day
		to, _ := time.Parse("2006-01-02", query.DateTo)
		to = to.Add(24*time.Hour - time.Nanosecond)
		filter.DateTo = &to
	}

	result, err := h.ledgerService.ListTransactions(c.Request.Context(), customerID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// AdjustBalance posts a manual adjustment against a customer's balance
func (h *LedgerHandler) AdjustBalance(c *gin.Context) {
	customerID, err := uuid.Parse(c.Param("customerId"))
	if err != nil {
		h.BadRequest(c, "Invalid customer ID")
		return
	}

	var req financeapp.AdjustBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	req.CustomerID = customerID

	resp, err := h.ledgerService.AdjustBalance(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// RecomputeBalance resums the transaction log and repairs the balance row
func (h *LedgerHandler) RecomputeBalance(c *gin.Context) {
	customerID, err := uuid.Parse(c.Param("customerId"))
	if err != nil {
		h.BadRequest(c, "Invalid customer ID")
		return
	}

	resp, err := h.ledgerService.RecomputeBalance(c.Request.Context(), customerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
