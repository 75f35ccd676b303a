package dto

import (
	"strings"

	"github.com/SscSPs/erp_finance_ledger/internal/core/domain"
)

// MaxDateRangeDays bounds the span of a date-range filter.
const MaxDateRangeDays = 366

// TransactionFilterParams are the query parameters shared by listing and summary.
type TransactionFilterParams struct {
	Type      string `form:"type" binding:"omitempty,txn_type"`
	Category  string `form:"category"`
	Status    string `form:"status" binding:"omitempty,txn_status"`
	ProjectID string `form:"projectID"`
	AccountID string `form:"accountID"`
	StartDate string `form:"startDate" example:"2024-01-01"`
	EndDate   string `form:"endDate" example:"2024-12-31"`
}

// ToFilter converts the parameters and checks the date range.
func (p TransactionFilterParams) ToFilter() (domain.TransactionFilter, domain.ValidationResult) {
	problems := domain.ValidationResult{}
	filter := domain.TransactionFilter{
		Type:      domain.TransactionType(p.Type),
		Category:  strings.TrimSpace(p.Category),
		Status:    domain.TransactionStatus(p.Status).Normalize(),
		ProjectID: strings.TrimSpace(p.ProjectID),
		AccountID: strings.TrimSpace(p.AccountID),
	}

	start, ok := parseDate(p.StartDate)
	if !ok {
		problems.Add("startDate", "startDate must be a valid date (YYYY-MM-DD)")
	}
	end, ok := parseDate(p.EndDate)
	if !ok {
		problems.Add("endDate", "endDate must be a valid date (YYYY-MM-DD)")
	}
	if start != nil && end != nil {
		s, e := domain.TruncateToDate(*start), domain.TruncateToDate(*end)
		switch {
		case s.After(e):
			problems.Add("endDate", "endDate must not be before startDate")
		case e.Sub(s).Hours() > MaxDateRangeDays*24:
			problems.Add("endDate", "date range must not exceed 1 year")
		}
	}
	filter.StartDate, filter.EndDate = start, end
	return filter, problems
}

// ListTransactionsParams are the query parameters of GET /transactions.
type ListTransactionsParams struct {
	TransactionFilterParams
	Limit     int     `form:"limit" binding:"omitempty,min=1,max=100"`
	NextToken *string `form:"nextToken"`
}

// ListTransactionsResponse is a page of transactions.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	NextToken    *string               `json:"nextToken,omitempty"`
}
