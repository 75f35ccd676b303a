package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a row of the finance_transactions table.
// Optional text columns are nullable and scanned into pointers.
type Transaction struct {
	TransactionID   string          `db:"transaction_id"`
	Type            string          `db:"transaction_type"`
	Category        string          `db:"category"`
	Subcategory     *string         `db:"subcategory"`
	Amount          decimal.Decimal `db:"amount"`
	TransactionDate time.Time       `db:"transaction_date"`
	AccountFrom     *string         `db:"account_from"`
	AccountTo       *string         `db:"account_to"`
	Description     string          `db:"description"`
	ReferenceNumber *string         `db:"reference_number"`
	PaymentMethod   string          `db:"payment_method"`
	ProjectID       *string         `db:"project_id"`
	Notes           *string         `db:"notes"`
	Status          string          `db:"status"`
	IsReversed      bool            `db:"is_reversed"`
	ReversalOf      *string         `db:"reversal_of"`
	CorrectionOf    *string         `db:"correction_of"`
	VoidedBy        *string         `db:"voided_by"`
	VoidedAt        *time.Time      `db:"voided_at"`
	VoidReason      *string         `db:"void_reason"`
	ReversedBy      *string         `db:"reversed_by"`
	ReversedAt      *time.Time      `db:"reversed_at"`
	ReverseReason   *string         `db:"reverse_reason"`
	ApprovedBy      *string         `db:"approved_by"`
	ApprovedAt      *time.Time      `db:"approved_at"`
	PostedBy        *string         `db:"posted_by"`
	PostedAt        *time.Time      `db:"posted_at"`
	CancelledBy     *string         `db:"cancelled_by"`
	CancelledAt     *time.Time      `db:"cancelled_at"`
	FailureReason   *string         `db:"failure_reason"`
	Version         int64           `db:"version"`
	AuditFields
}
