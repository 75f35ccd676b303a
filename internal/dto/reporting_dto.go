package dto

import (
	"time"

	"github.com/SscSPs/erp_finance_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// AccountBalanceResponse defines the data returned for GET /accounts/{accountID}/balance.
type AccountBalanceResponse struct {
	AccountID   string             `json:"accountID"`
	Name        string             `json:"name"`
	AccountType domain.AccountType `json:"accountType"`
	Balance     decimal.Decimal    `json:"balance" swaggertype:"string"`
	EntryCount  int                `json:"entryCount"`
	AsOf        time.Time          `json:"asOf"`
}

// ToAccountBalanceResponse converts a domain.AccountBalance.
func ToAccountBalanceResponse(b *domain.AccountBalance) AccountBalanceResponse {
	return AccountBalanceResponse{
		AccountID:   b.AccountID,
		Name:        b.Name,
		AccountType: b.AccountType,
		Balance:     b.Balance,
		EntryCount:  b.EntryCount,
		AsOf:        b.AsOf,
	}
}

// ErrorResponse is the body of every failed request. Fields is set for validation failures.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}
