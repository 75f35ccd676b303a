package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/SscSPs/erp_finance_ledger/internal/core/ports/services"
	"github.com/SscSPs/erp_finance_ledger/internal/dto"
	"github.com/SscSPs/erp_finance_ledger/internal/middleware"
)

// reportingHandler handles HTTP requests related to financial reports
type reportingHandler struct {
	ledgerService portssvc.LedgerSvcFacade
}

// newReportingHandler creates a new reportingHandler
func newReportingHandler(ls portssvc.LedgerSvcFacade) *reportingHandler {
	return &reportingHandler{
		ledgerService: ls,
	}
}

// registerReportingRoutes registers routes related to financial reports
func registerReportingRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerSvcFacade) {
	h := newReportingHandler(ledgerService)

	rg.GET("/transactions/summary", h.getSummary)
}

// getSummary godoc
// @Summary Summarise the posted ledger
// @Description Totals income, expense and transfers over posted entries matching the filters. Status is ignored.
// @Tags reports
// @Produce json
// @Param   type query string false "income, expense or transfer"
// @Param   category query string false "Category"
// @Param   projectID query string false "Project ID"
// @Param   accountID query string false "Account on either side"
// @Param   startDate query string false "Start date (YYYY-MM-DD)"
// @Param   endDate query string false "End date (YYYY-MM-DD)"
// @Success 200 {object} domain.TransactionSummary
// @Failure 400 {object} dto.ErrorResponse "Invalid filter"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Security BearerAuth
// @Router /transactions/summary [get]
func (h *reportingHandler) getSummary(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.TransactionFilterParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondWithBindingError(c, err)
		return
	}

	summary, err := h.ledgerService.GetSummary(c.Request.Context(), params)
	if err != nil {
		respondWithError(c, err, "generate summary")
		return
	}

	logger.Debug("Summary generated", slog.Int("entries", summary.EntryCount))
	c.JSON(http.StatusOK, summary)
}
