package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/SscSPs/erp_finance_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/erp_finance_ledger/internal/core/ports/services"
	"github.com/SscSPs/erp_finance_ledger/internal/dto"
	"github.com/SscSPs/erp_finance_ledger/internal/middleware"
	"github.com/SscSPs/erp_finance_ledger/internal/utils"
)

// transactionHandler handles HTTP requests related to finance transactions.
type transactionHandler struct {
	transactionService portssvc.TransactionSvcFacade
	posthogClient      *utils.PosthogClientWrapper
}

// newTransactionHandler creates a new transactionHandler.
func newTransactionHandler(ts portssvc.TransactionSvcFacade, posthogClient *utils.PosthogClientWrapper) *transactionHandler {
	return &transactionHandler{
		transactionService: ts,
		posthogClient:      posthogClient,
	}
}

// registerTransactionRoutes registers routes related to finance transactions.
// correctionGuards run in front of void and reverse only.
func registerTransactionRoutes(rg *gin.RouterGroup, ts portssvc.TransactionSvcFacade, posthogClient *utils.PosthogClientWrapper, correctionGuards ...gin.HandlerFunc) {
	h := newTransactionHandler(ts, posthogClient)

	transactions := rg.Group("/transactions")
	{
		transactions.POST("", h.createTransaction)
		transactions.GET("", h.listTransactions)
		transactions.GET("/:transactionID", h.getTransaction)
		transactions.GET("/:transactionID/lineage", h.getLineage)
		transactions.PATCH("/:transactionID", h.updateTransaction)
		transactions.DELETE("/:transactionID", h.deleteTransaction)

		transactions.POST("/:transactionID/submit", h.submitTransaction)
		transactions.POST("/:transactionID/approve", h.approveTransaction)
		transactions.POST("/:transactionID/post", h.postTransaction)
		transactions.POST("/:transactionID/cancel", h.cancelTransaction)

		corrections := transactions.Group("", correctionGuards...)
		corrections.POST("/:transactionID/void", h.voidTransaction)
		corrections.POST("/:transactionID/reverse", h.reverseTransaction)
	}
}

// createTransaction godoc
// @Summary Create a finance transaction
// @Description Validates the record and stores it as a draft
// @Tags transactions
// @Accept  json
// @Produce  json
// @Param   transaction body dto.CreateTransactionRequest true "Transaction details"
// @Success 201 {object} dto.TransactionResponse
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 503 {object} dto.ErrorResponse "Storage unavailable"
// @Security BearerAuth
// @Router /transactions [post]
func (h *transactionHandler) createTransaction(c *gin.Context) {
	var req dto.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithBindingError(c, err)
		return
	}
	userID, ok := actorFrom(c)
	if !ok {
		return
	}

	txn, err := h.transactionService.CreateTransaction(c.Request.Context(), req, userID)
	if err != nil {
		respondWithError(c, err, "create transaction")
		return
	}
	c.JSON(http.StatusCreated, dto.ToTransactionResponse(txn))
}

// listTransactions godoc
// @Summary List finance transactions
// @Description Lists transactions newest first, with optional filters and token pagination
// @Tags transactions
// @Produce  json
// @Param   type query string false "income, expense or transfer"
// @Param   category query string false "Category"
// @Param   status query string false "Status"
// @Param   projectID query string false "Project ID"
// @Param   accountID query string false "Account on either side"
// @Param   startDate query string false "Start date (YYYY-MM-DD)"
// @Param   endDate query string false "End date (YYYY-MM-DD), at most one year after startDate"
// @Param   limit query int false "Page size (1-100)" default(20)
// @Param   nextToken query string false "Token from the previous page"
// @Success 200 {object} dto.ListTransactionsResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid filter"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Security BearerAuth
// @Router /transactions [get]
func (h *transactionHandler) listTransactions(c *gin.Context) {
	var params dto.ListTransactionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondWithBindingError(c, err)
		return
	}

	page, err := h.transactionService.ListTransactions(c.Request.Context(), params)
	if err != nil {
		respondWithError(c, err, "list transactions")
		return
	}
	c.JSON(http.StatusOK, page)
}

// getTransaction godoc
// @Summary Get a finance transaction
// @Tags transactions
// @Produce  json
// @Param   transactionID path string true "Transaction ID"
// @Success 200 {object} dto.TransactionResponse
// @Failure 404 {object} dto.ErrorResponse "Transaction not found"
// @Security BearerAuth
// @Router /transactions/{transactionID} [get]
func (h *transactionHandler) getTransaction(c *gin.Context) {
	txn, err := h.transactionService.GetTransactionByID(c.Request.Context(), c.Param("transactionID"))
	if err != nil {
		respondWithError(c, err, "retrieve transaction")
		return
	}
	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}

// getLineage godoc
// @Summary Get the correction lineage of a transaction
// @Description Returns the original record with its reversal and correction entries. Any of the three IDs may be used.
// @Tags transactions
// @Produce  json
// @Param   transactionID path string true "Transaction ID"
// @Success 200 {object} dto.LineageResponse
// @Failure 404 {object} dto.ErrorResponse "Transaction not found"
// @Security BearerAuth
// @Router /transactions/{transactionID}/lineage [get]
func (h *transactionHandler) getLineage(c *gin.Context) {
	lineage, err := h.transactionService.GetLineage(c.Request.Context(), c.Param("transactionID"))
	if err != nil {
		respondWithError(c, err, "retrieve lineage")
		return
	}
	c.JSON(http.StatusOK, dto.ToLineageResponse(lineage))
}

// updateTransaction godoc
// @Summary Update a draft or pending transaction
// @Tags transactions
// @Accept  json
// @Produce  json
// @Param   transactionID path string true "Transaction ID"
// @Param   transaction body dto.UpdateTransactionRequest true "Fields to change"
// @Success 200 {object} dto.TransactionResponse
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 404 {object} dto.ErrorResponse "Transaction not found"
// @Failure 409 {object} dto.ErrorResponse "Transaction can no longer be modified"
// @Security BearerAuth
// @Router /transactions/{transactionID} [patch]
func (h *transactionHandler) updateTransaction(c *gin.Context) {
	var req dto.UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithBindingError(c, err)
		return
	}
	userID, ok := actorFrom(c)
	if !ok {
		return
	}

	txn, err := h.transactionService.UpdateTransaction(c.Request.Context(), c.Param("transactionID"), req, userID)
	if err != nil {
		respondWithError(c, err, "update transaction")
		return
	}
	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}

// deleteTransaction godoc
// @Summary Delete a draft or pending transaction
// @Tags transactions
// @Param   transactionID path string true "Transaction ID"
// @Success 204 "No Content"
// @Failure 404 {object} dto.ErrorResponse "Transaction not found"
// @Failure 409 {object} dto.ErrorResponse "Transaction can no longer be deleted"
// @Security BearerAuth
// @Router /transactions/{transactionID} [delete]
func (h *transactionHandler) deleteTransaction(c *gin.Context) {
	userID, ok := actorFrom(c)
	if !ok {
		return
	}
	if err := h.transactionService.DeleteTransaction(c.Request.Context(), c.Param("transactionID"), userID); err != nil {
		respondWithError(c, err, "delete transaction")
		return
	}
	c.Status(http.StatusNoContent)
}

// submitTransaction godoc
// @Summary Submit a draft for approval
// @Tags transactions
// @Produce  json
// @Param   transactionID path string true "Transaction ID"
// @Success 200 {object} dto.TransactionResponse
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 404 {object} dto.ErrorResponse "Transaction not found"
// @Failure 409 {object} dto.ErrorResponse "Illegal status change"
// @Security BearerAuth
// @Router /transactions/{transactionID}/submit [post]
func (h *transactionHandler) submitTransaction(c *gin.Context) {
	h.changeStatus(c, "submit transaction", h.transactionService.SubmitTransaction)
}

// approveTransaction godoc
// @Summary Approve a pending transaction
// @Tags transactions
// @Produce  json
// @Param   transactionID path string true "Transaction ID"
// @Success 200 {object} dto.TransactionResponse
// @Failure 404 {object} dto.ErrorResponse "Transaction not found"
// @Failure 409 {object} dto.ErrorResponse "Illegal status change"
// @Security BearerAuth
// @Router /transactions/{transactionID}/approve [post]
func (h *transactionHandler) approveTransaction(c *gin.Context) {
	h.changeStatus(c, "approve transaction", h.transactionService.ApproveTransaction)
}

// postTransaction godoc
// @Summary Post an approved transaction to the ledger
// @Description When the account directory refuses the accounts, the record is marked failed and 400 is returned
// @Tags transactions
// @Produce  json
// @Param   transactionID path string true "Transaction ID"
// @Success 200 {object} dto.TransactionResponse
// @Failure 400 {object} dto.ErrorResponse "Accounts refused"
// @Failure 404 {object} dto.ErrorResponse "Transaction not found"
// @Failure 409 {object} dto.ErrorResponse "Illegal status change"
// @Security BearerAuth
// @Router /transactions/{transactionID}/post [post]
func (h *transactionHandler) postTransaction(c *gin.Context) {
	h.changeStatus(c, "post transaction", h.transactionService.PostTransaction)
}

// cancelTransaction godoc
// @Summary Cancel a draft or pending transaction
// @Tags transactions
// @Produce  json
// @Param   transactionID path string true "Transaction ID"
// @Success 200 {object} dto.TransactionResponse
// @Failure 404 {object} dto.ErrorResponse "Transaction not found"
// @Failure 409 {object} dto.ErrorResponse "Illegal status change"
// @Security BearerAuth
// @Router /transactions/{transactionID}/cancel [post]
func (h *transactionHandler) cancelTransaction(c *gin.Context) {
	h.changeStatus(c, "cancel transaction", h.transactionService.CancelTransaction)
}

// changeStatus runs a lifecycle operation on the path's transaction.
func (h *transactionHandler) changeStatus(c *gin.Context, action string, op func(context.Context, string, string) (*domain.Transaction, error)) {
	userID, ok := actorFrom(c)
	if !ok {
		return
	}
	txn, err := op(c.Request.Context(), c.Param("transactionID"), userID)
	if err != nil {
		respondWithError(c, err, action)
		return
	}
	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}

// warnOnActorMismatch logs a body actor that disagrees with the token subject.
// The token subject always wins.
func warnOnActorMismatch(c *gin.Context, field, claimed, userID string) {
	claimed = strings.TrimSpace(claimed)
	if claimed != "" && claimed != userID {
		middleware.GetLoggerFromCtx(c.Request.Context()).Warn("Ignoring actor from request body",
			slog.String("field", field),
			slog.String("claimed", claimed),
			slog.String("user_id", userID))
	}
}

// voidTransaction godoc
// @Summary Void a transaction
// @Description Cancels a posted or approved transaction without creating new records. Terminal.
// @Tags transactions
// @Accept  json
// @Produce  json
// @Param   transactionID path string true "Transaction ID"
// @Param   request body dto.VoidTransactionRequest true "Void reason (at least 10 characters)"
// @Success 200 {object} dto.TransactionResponse
// @Failure 400 {object} dto.ErrorResponse "Reason too short"
// @Failure 404 {object} dto.ErrorResponse "Transaction not found"
// @Failure 409 {object} dto.ErrorResponse "Transaction cannot be voided"
// @Failure 429 {object} dto.ErrorResponse "Too many requests"
// @Failure 503 {object} dto.ErrorResponse "Storage unavailable"
// @Security BearerAuth
// @Router /transactions/{transactionID}/void [post]
func (h *transactionHandler) voidTransaction(c *gin.Context) {
	var req dto.VoidTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithBindingError(c, err)
		return
	}
	userID, ok := actorFrom(c)
	if !ok {
		return
	}
	warnOnActorMismatch(c, "voidedBy", req.VoidedBy, userID)

	txn, err := h.transactionService.VoidTransaction(c.Request.Context(), c.Param("transactionID"), req, userID)
	if err != nil {
		respondWithError(c, err, "void transaction")
		return
	}

	middleware.PosthogEvent(c, h.posthogClient, "transaction_voided", map[string]any{
		"transaction_id": txn.TransactionID,
		"amount":         txn.Amount.String(),
		"type":           string(txn.Type),
	})
	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}

// reverseTransaction godoc
// @Summary Reverse a posted transaction
// @Description Marks the original as reversed and posts a reversal entry plus a correction entry, atomically.
// @Tags transactions
// @Accept  json
// @Produce  json
// @Param   transactionID path string true "Transaction ID"
// @Param   request body dto.ReverseTransactionRequest true "Reason (at least 15 characters) and corrected data"
// @Success 200 {object} dto.ReverseTransactionResponse
// @Failure 400 {object} dto.ErrorResponse "Reason too short or corrected data invalid"
// @Failure 404 {object} dto.ErrorResponse "Transaction not found"
// @Failure 409 {object} dto.ErrorResponse "Transaction cannot be reversed"
// @Failure 429 {object} dto.ErrorResponse "Too many requests"
// @Failure 503 {object} dto.ErrorResponse "Storage unavailable"
// @Security BearerAuth
// @Router /transactions/{transactionID}/reverse [post]
func (h *transactionHandler) reverseTransaction(c *gin.Context) {
	var req dto.ReverseTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithBindingError(c, err)
		return
	}
	userID, ok := actorFrom(c)
	if !ok {
		return
	}
	warnOnActorMismatch(c, "reversedBy", req.ReversedBy, userID)

	result, err := h.transactionService.ReverseTransaction(c.Request.Context(), c.Param("transactionID"), req, userID)
	if err != nil {
		respondWithError(c, err, "reverse transaction")
		return
	}

	middleware.PosthogEvent(c, h.posthogClient, "transaction_reversed", map[string]any{
		"transaction_id": result.Original.TransactionID,
		"reversal_id":    result.ReversalEntry.TransactionID,
		"correction_id":  result.CorrectionEntry.TransactionID,
		"net_effect":     result.BalanceEffect.Net.String(),
	})
	c.JSON(http.StatusOK, dto.ToReverseTransactionResponse(result))
}
