package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the kind of cash movement a finance transaction records.
type TransactionType string

const (
	TypeIncome   TransactionType = "income"
	TypeExpense  TransactionType = "expense"
	TypeTransfer TransactionType = "transfer"
)

// IsValid reports whether t is one of the known transaction types.
func (t TransactionType) IsValid() bool {
	switch t {
	case TypeIncome, TypeExpense, TypeTransfer:
		return true
	}
	return false
}

// PaymentMethod records how the money moved.
type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "cash"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
	PaymentCheck        PaymentMethod = "check"
	PaymentCreditCard   PaymentMethod = "credit_card"
	PaymentOther        PaymentMethod = "other"
)

// IsValid reports whether m is a known payment method.
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentCash, PaymentBankTransfer, PaymentCheck, PaymentCreditCard, PaymentOther:
		return true
	}
	return false
}

// Transaction is a single finance transaction in the ledger.
// Financial fields (Type, Amount, AccountFrom, AccountTo, Date) are frozen once the
// record leaves the editable states; corrections append new records instead.
type Transaction struct {
	TransactionID   string          `json:"transactionID"` // Primary Key (UUID)
	Type            TransactionType `json:"type"`
	Category        string          `json:"category"`
	Subcategory     string          `json:"subcategory"`
	Amount          decimal.Decimal `json:"amount"` // Always positive
	Date            time.Time       `json:"date"`   // Calendar date, UTC midnight
	AccountFrom     string          `json:"accountFrom"`
	AccountTo       string          `json:"accountTo"`
	Description     string          `json:"description"`
	ReferenceNumber string          `json:"referenceNumber"`
	PaymentMethod   PaymentMethod   `json:"paymentMethod"`
	ProjectID       string          `json:"projectID"`
	Notes           string          `json:"notes"`

	Status     TransactionStatus `json:"status"`
	IsReversed bool              `json:"isReversed"`

	// Back-references from generated entries to the record they correct.
	ReversalOf   *string `json:"reversalOf"`
	CorrectionOf *string `json:"correctionOf"`

	VoidedBy   *string    `json:"voidedBy"`
	VoidedAt   *time.Time `json:"voidedAt"`
	VoidReason *string    `json:"voidReason"`

	ReversedBy    *string    `json:"reversedBy"`
	ReversedAt    *time.Time `json:"reversedAt"`
	ReverseReason *string    `json:"reverseReason"`

	ApprovedBy    *string    `json:"approvedBy"`
	ApprovedAt    *time.Time `json:"approvedAt"`
	PostedBy      *string    `json:"postedBy"`
	PostedAt      *time.Time `json:"postedAt"`
	CancelledBy   *string    `json:"cancelledBy"`
	CancelledAt   *time.Time `json:"cancelledAt"`
	FailureReason *string    `json:"failureReason"`

	Version int64 `json:"version"` // Optimistic concurrency counter
	AuditFields
}

// IsReversalEntry reports whether the record was generated to neutralise another one.
func (t *Transaction) IsReversalEntry() bool {
	return t.ReversalOf != nil
}

// IsCorrectionEntry reports whether the record replaces a reversed one.
func (t *Transaction) IsCorrectionEntry() bool {
	return t.CorrectionOf != nil
}

// Fields extracts the validated subset of the record.
func (t *Transaction) Fields() TransactionFields {
	date := t.Date
	return TransactionFields{
		Type:            t.Type,
		Category:        t.Category,
		Amount:          t.Amount,
		Date:            &date,
		AccountFrom:     t.AccountFrom,
		AccountTo:       t.AccountTo,
		Description:     t.Description,
		ReferenceNumber: t.ReferenceNumber,
		PaymentMethod:   t.PaymentMethod,
	}
}

// ApplyFields copies validated fields onto the record. It does not check status.
func (t *Transaction) ApplyFields(f TransactionFields) {
	t.Type = f.Type
	t.Category = f.Category
	t.Amount = f.Amount
	if f.Date != nil {
		t.Date = TruncateToDate(*f.Date)
	}
	t.AccountFrom = f.AccountFrom
	t.AccountTo = f.AccountTo
	t.Description = f.Description
	t.ReferenceNumber = f.ReferenceNumber
	if f.PaymentMethod != "" {
		t.PaymentMethod = f.PaymentMethod
	}
}

// TruncateToDate drops the clock part, keeping the calendar date in UTC.
func TruncateToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Lineage groups an original record with the entries a Reverse produced from it.
type Lineage struct {
	Original        Transaction  `json:"original"`
	ReversalEntry   *Transaction `json:"reversalEntry"`
	CorrectionEntry *Transaction `json:"correctionEntry"`
}

// TransactionFilter narrows listings and summaries.
type TransactionFilter struct {
	Type      TransactionType
	Category  string
	Status    TransactionStatus
	ProjectID string
	AccountID string
	StartDate *time.Time
	EndDate   *time.Time
}

// ReverseResult is what a successful Reverse produces.
type ReverseResult struct {
	Original        Transaction   `json:"original"`
	ReversalEntry   Transaction   `json:"reversalEntry"`
	CorrectionEntry Transaction   `json:"correctionEntry"`
	BalanceEffect   BalanceEffect `json:"balanceEffect"`
}

// DropIgnoredAccounts clears the account a type does not use: income only moves
// money into AccountTo and expense only out of AccountFrom.
func (t *Transaction) DropIgnoredAccounts() {
	switch t.Type {
	case TypeIncome:
		t.AccountFrom = ""
	case TypeExpense:
		t.AccountTo = ""
	}
}
