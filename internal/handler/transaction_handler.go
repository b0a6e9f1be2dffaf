package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/kylewspence/FinSight/internal/service"
	"github.com/kylewspence/FinSight/pkg/response"
)

// TransactionHandler handles budget transaction API requests
type TransactionHandler struct {
	transactionService *service.TransactionService
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(transactionService *service.TransactionService) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
	}
}

// ListTransactions handles listing the caller's transactions
// GET /api/transactions
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	txs, err := h.transactionService.List(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.Success(c, txs)
}

// GetTransaction handles getting a single transaction
// GET /api/transactions/:id
func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	txID, ok := paramID(c, "id")
	if !ok {
		return
	}

	tx, err := h.transactionService.Get(c.Request.Context(), id, txID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.Success(c, tx)
}

// CreateTransaction handles transaction creation
// POST /api/transactions
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	var req service.CreateTransactionRequest
	if !bindJSON(c, &req) {
		return
	}

	tx, err := h.transactionService.Create(c.Request.Context(), id, req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.Created(c, tx)
}

// UpdateTransaction handles updating a transaction
// PUT /api/transactions/:id
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	txID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req service.UpdateTransactionRequest
	if !bindJSON(c, &req) {
		return
	}

	tx, err := h.transactionService.Update(c.Request.Context(), id, txID, req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.Success(c, tx)
}

// DeleteTransaction handles deleting a transaction
// DELETE /api/transactions/:id
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	txID, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.transactionService.Delete(c.Request.Context(), id, txID); err != nil {
		_ = c.Error(err)
		return
	}

	response.NoContent(c)
}

// RegisterRoutes registers transaction routes
func (h *TransactionHandler) RegisterRoutes(rg *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	txs := rg.Group("/transactions")
	txs.Use(authMiddleware)
	{
		txs.GET("", h.ListTransactions)
		txs.POST("", h.CreateTransaction)
		txs.GET("/:id", h.GetTransaction)
		txs.PUT("/:id", h.UpdateTransaction)
		txs.DELETE("/:id", h.DeleteTransaction)
	}
}
