package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountBalance is the net ledger position of one account in its normal-balance direction.
type AccountBalance struct {
	AccountID   string          `json:"accountID"`
	Name        string          `json:"name"`
	AccountType AccountType     `json:"accountType"`
	Balance     decimal.Decimal `json:"balance"`
	EntryCount  int             `json:"entryCount"`
	AsOf        time.Time       `json:"asOf"`
}

// CategoryTotal is the net amount booked to one category. Reversal entries subtract.
type CategoryTotal struct {
	Type     TransactionType `json:"type"`
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
	Count    int             `json:"count"`
}

// TransactionSummary aggregates the ledger over a filter. Reversal entries
// subtract from the total of their type, so a reversed record and its
// reversal cancel out.
type TransactionSummary struct {
	TotalIncome   decimal.Decimal `json:"totalIncome"`
	TotalExpense  decimal.Decimal `json:"totalExpense"`
	TotalTransfer decimal.Decimal `json:"totalTransfer"`
	NetCashFlow   decimal.Decimal `json:"netCashFlow"` // income minus expense
	EntryCount    int             `json:"entryCount"`
	ByCategory    []CategoryTotal `json:"byCategory"`
}

// BalanceEffect previews how a Reverse changes net cash flow.
// Net is the sum of the three components.
type BalanceEffect struct {
	Original   decimal.Decimal `json:"original"`
	Reversal   decimal.Decimal `json:"reversal"`
	Correction decimal.Decimal `json:"correction"`
	Net        decimal.Decimal `json:"net"`
}
