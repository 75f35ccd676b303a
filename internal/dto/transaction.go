package dto

import (
	"strings"
	"time"

	"github.com/SscSPs/erp_finance_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// DateLayout is the calendar-date format used on the wire.
const DateLayout = "2006-01-02"

// parseDate accepts a calendar date or an RFC 3339 timestamp.
func parseDate(raw string) (*time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, true
	}
	if t, err := time.Parse(DateLayout, raw); err == nil {
		return &t, true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, true
	}
	return nil, false
}

// CreateTransactionRequest is the body of POST /transactions.
type CreateTransactionRequest struct {
	Type            string           `json:"type" binding:"required,txn_type" example:"expense"`
	Category        string           `json:"category" binding:"max=100" example:"Material"`
	Subcategory     string           `json:"subcategory" binding:"max=100"`
	Amount          *decimal.Decimal `json:"amount" swaggertype:"string" example:"5000000"`
	Date            string           `json:"date" example:"2024-05-01"`
	AccountFrom     string           `json:"accountFrom" example:"CASH-01"`
	AccountTo       string           `json:"accountTo"`
	Description     string           `json:"description" binding:"max=500" example:"Pembelian material"`
	ReferenceNumber string           `json:"referenceNumber" binding:"max=50"`
	PaymentMethod   string           `json:"paymentMethod" binding:"omitempty,payment_method" example:"bank_transfer"`
	ProjectID       string           `json:"projectID"`
	Notes           string           `json:"notes"`
}

// ToFields converts the request into validator input. Unparseable values are
// reported in the returned result; the domain validator reports the rest.
func (r CreateTransactionRequest) ToFields() (domain.TransactionFields, domain.ValidationResult) {
	problems := domain.ValidationResult{}
	fields := domain.TransactionFields{
		Type:            domain.TransactionType(strings.TrimSpace(r.Type)),
		Category:        strings.TrimSpace(r.Category),
		AccountFrom:     strings.TrimSpace(r.AccountFrom),
		AccountTo:       strings.TrimSpace(r.AccountTo),
		Description:     strings.TrimSpace(r.Description),
		ReferenceNumber: strings.TrimSpace(r.ReferenceNumber),
		PaymentMethod:   domain.PaymentMethod(r.PaymentMethod),
	}
	if r.Amount != nil {
		fields.Amount = *r.Amount
	}
	date, ok := parseDate(r.Date)
	if !ok {
		problems.Add("date", "date must be a valid date (YYYY-MM-DD)")
	}
	fields.Date = date
	return fields, problems
}

// UpdateTransactionRequest is the body of PATCH /transactions/{id}.
// Only supplied fields change. Version, when supplied, must match the stored version.
type UpdateTransactionRequest struct {
	Type            *string          `json:"type" binding:"omitempty,txn_type"`
	Category        *string          `json:"category" binding:"omitempty,max=100"`
	Subcategory     *string          `json:"subcategory" binding:"omitempty,max=100"`
	Amount          *decimal.Decimal `json:"amount" swaggertype:"string"`
	Date            *string          `json:"date"`
	AccountFrom     *string          `json:"accountFrom"`
	AccountTo       *string          `json:"accountTo"`
	Description     *string          `json:"description" binding:"omitempty,max=500"`
	ReferenceNumber *string          `json:"referenceNumber" binding:"omitempty,max=50"`
	PaymentMethod   *string          `json:"paymentMethod" binding:"omitempty,payment_method"`
	ProjectID       *string          `json:"projectID"`
	Notes           *string          `json:"notes"`
	Version         *int64           `json:"version"`
}

// Apply overlays the supplied fields onto txn and returns problems with unparseable values.
func (r UpdateTransactionRequest) Apply(txn *domain.Transaction) domain.ValidationResult {
	problems := domain.ValidationResult{}
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	if r.Type != nil {
		txn.Type = domain.TransactionType(strings.TrimSpace(*r.Type))
	}
	set(&txn.Category, r.Category)
	set(&txn.Subcategory, r.Subcategory)
	if r.Amount != nil {
		txn.Amount = *r.Amount
	}
	if r.Date != nil {
		date, ok := parseDate(*r.Date)
		switch {
		case !ok:
			problems.Add("date", "date must be a valid date (YYYY-MM-DD)")
		case date == nil:
			txn.Date = time.Time{}
		default:
			txn.Date = domain.TruncateToDate(*date)
		}
	}
	set(&txn.AccountFrom, r.AccountFrom)
	set(&txn.AccountTo, r.AccountTo)
	set(&txn.Description, r.Description)
	set(&txn.ReferenceNumber, r.ReferenceNumber)
	if r.PaymentMethod != nil {
		txn.PaymentMethod = domain.PaymentMethod(*r.PaymentMethod)
	}
	set(&txn.ProjectID, r.ProjectID)
	set(&txn.Notes, r.Notes)
	return problems
}

// VoidTransactionRequest is the body of POST /transactions/{id}/void.
// VoidedBy is accepted for older clients; the authenticated user is the actor.
type VoidTransactionRequest struct {
	Reason   string `json:"reason" example:"Transaksi tercatat dua kali (duplikat)"`
	VoidedBy string `json:"voidedBy"`
}

// CorrectedDataRequest describes the correction entry of a Reverse.
// Fields left empty are inherited from the original record, except Amount.
// Accounts are only inherited while the type stays the same.
type CorrectedDataRequest struct {
	Type            string           `json:"type" binding:"omitempty,txn_type"`
	Category        string           `json:"category" binding:"max=100"`
	Subcategory     string           `json:"subcategory" binding:"max=100"`
	Amount          *decimal.Decimal `json:"amount" swaggertype:"string" example:"30000000"`
	Date            string           `json:"date"`
	AccountFrom     string           `json:"accountFrom" example:"CASH-01"`
	AccountTo       string           `json:"accountTo"`
	Description     string           `json:"description" binding:"max=500" example:"koreksi nilai"`
	ReferenceNumber string           `json:"referenceNumber" binding:"max=50"`
	PaymentMethod   string           `json:"paymentMethod" binding:"omitempty,payment_method"`
	ProjectID       string           `json:"projectID"`
	Notes           string           `json:"notes"`
}

// ReverseTransactionRequest is the body of POST /transactions/{id}/reverse.
type ReverseTransactionRequest struct {
	Reason        string               `json:"reason" example:"Nilai salah, seharusnya 30 juta bukan 50 juta"`
	CorrectedData CorrectedDataRequest `json:"correctedData"`
	ReversedBy    string               `json:"reversedBy"`
}

// BuildCorrection builds the correction entry's content from the original record.
// Identity, status and audit fields are left for the caller to fill.
func (r CorrectedDataRequest) BuildCorrection(original domain.Transaction) (domain.Transaction, domain.ValidationResult) {
	problems := domain.ValidationResult{}
	pick := func(v, inherited string) string {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
		return inherited
	}

	txn := domain.Transaction{
		Type:            domain.TransactionType(pick(r.Type, string(original.Type))),
		Category:        pick(r.Category, original.Category),
		Subcategory:     pick(r.Subcategory, original.Subcategory),
		Date:            original.Date,
		Description:     pick(r.Description, original.Description),
		ReferenceNumber: pick(r.ReferenceNumber, original.ReferenceNumber),
		PaymentMethod:   domain.PaymentMethod(pick(r.PaymentMethod, string(original.PaymentMethod))),
		ProjectID:       pick(r.ProjectID, original.ProjectID),
		Notes:           pick(r.Notes, original.Notes),
	}
	if txn.Type == original.Type {
		txn.AccountFrom = pick(r.AccountFrom, original.AccountFrom)
		txn.AccountTo = pick(r.AccountTo, original.AccountTo)
	} else {
		txn.AccountFrom = strings.TrimSpace(r.AccountFrom)
		txn.AccountTo = strings.TrimSpace(r.AccountTo)
	}
	if r.Amount != nil {
		txn.Amount = *r.Amount
	}
	if strings.TrimSpace(r.Date) != "" {
		date, ok := parseDate(r.Date)
		if !ok {
			problems.Add("date", "date must be a valid date (YYYY-MM-DD)")
		} else {
			txn.Date = domain.TruncateToDate(*date)
		}
	}
	return txn, problems
}

// TransactionResponse defines the data returned for a finance transaction.
type TransactionResponse struct {
	TransactionID   string                   `json:"transactionID"`
	Type            domain.TransactionType   `json:"type"`
	Category        string                   `json:"category"`
	Subcategory     string                   `json:"subcategory,omitempty"`
	Amount          decimal.Decimal          `json:"amount" swaggertype:"string"`
	Date            string                   `json:"date"`
	AccountFrom     string                   `json:"accountFrom,omitempty"`
	AccountTo       string                   `json:"accountTo,omitempty"`
	Description     string                   `json:"description"`
	ReferenceNumber string                   `json:"referenceNumber,omitempty"`
	PaymentMethod   domain.PaymentMethod     `json:"paymentMethod"`
	ProjectID       string                   `json:"projectID,omitempty"`
	Notes           string                   `json:"notes,omitempty"`
	Status          domain.TransactionStatus `json:"status"`
	IsReversed      bool                     `json:"isReversed"`
	ReversalOf      *string                  `json:"reversalOf"`
	CorrectionOf    *string                  `json:"correctionOf"`
	VoidedBy        *string                  `json:"voidedBy,omitempty"`
	VoidedAt        *time.Time               `json:"voidedAt,omitempty"`
	VoidReason      *string                  `json:"voidReason,omitempty"`
	ReversedBy      *string                  `json:"reversedBy,omitempty"`
	ReversedAt      *time.Time               `json:"reversedAt,omitempty"`
	ReverseReason   *string                  `json:"reverseReason,omitempty"`
	ApprovedBy      *string                  `json:"approvedBy,omitempty"`
	ApprovedAt      *time.Time               `json:"approvedAt,omitempty"`
	PostedBy        *string                  `json:"postedBy,omitempty"`
	PostedAt        *time.Time               `json:"postedAt,omitempty"`
	CancelledBy     *string                  `json:"cancelledBy,omitempty"`
	CancelledAt     *time.Time               `json:"cancelledAt,omitempty"`
	FailureReason   *string                  `json:"failureReason,omitempty"`
	Version         int64                    `json:"version"`
	CreatedAt       time.Time                `json:"createdAt"`
	CreatedBy       string                   `json:"createdBy"`
	LastUpdatedAt   time.Time                `json:"lastUpdatedAt"`
	LastUpdatedBy   string                   `json:"lastUpdatedBy"`
}

// ToTransactionResponse converts a domain.Transaction to TransactionResponse DTO.
func ToTransactionResponse(txn *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID:   txn.TransactionID,
		Type:            txn.Type,
		Category:        txn.Category,
		Subcategory:     txn.Subcategory,
		Amount:          txn.Amount,
		Date:            txn.Date.Format(DateLayout),
		AccountFrom:     txn.AccountFrom,
		AccountTo:       txn.AccountTo,
		Description:     txn.Description,
		ReferenceNumber: txn.ReferenceNumber,
		PaymentMethod:   txn.PaymentMethod,
		ProjectID:       txn.ProjectID,
		Notes:           txn.Notes,
		Status:          txn.Status.Normalize(),
		IsReversed:      txn.IsReversed,
		ReversalOf:      txn.ReversalOf,
		CorrectionOf:    txn.CorrectionOf,
		VoidedBy:        txn.VoidedBy,
		VoidedAt:        txn.VoidedAt,
		VoidReason:      txn.VoidReason,
		ReversedBy:      txn.ReversedBy,
		ReversedAt:      txn.ReversedAt,
		ReverseReason:   txn.ReverseReason,
		ApprovedBy:      txn.ApprovedBy,
		ApprovedAt:      txn.ApprovedAt,
		PostedBy:        txn.PostedBy,
		PostedAt:        txn.PostedAt,
		CancelledBy:     txn.CancelledBy,
		CancelledAt:     txn.CancelledAt,
		FailureReason:   txn.FailureReason,
		Version:         txn.Version,
		CreatedAt:       txn.CreatedAt,
		CreatedBy:       txn.CreatedBy,
		LastUpdatedAt:   txn.LastUpdatedAt,
		LastUpdatedBy:   txn.LastUpdatedBy,
	}
}

// ToTransactionResponses converts a slice of domain.Transaction to []TransactionResponse.
func ToTransactionResponses(txns []domain.Transaction) []TransactionResponse {
	responses := make([]TransactionResponse, len(txns))
	for i := range txns {
		responses[i] = ToTransactionResponse(&txns[i])
	}
	return responses
}

// ReverseTransactionResponse is returned by a successful Reverse.
type ReverseTransactionResponse struct {
	Original        TransactionResponse  `json:"original"`
	ReversalEntry   TransactionResponse  `json:"reversalEntry"`
	CorrectionEntry TransactionResponse  `json:"correctionEntry"`
	BalanceEffect   domain.BalanceEffect `json:"balanceEffect"`
}

// ToReverseTransactionResponse converts a domain.ReverseResult.
func ToReverseTransactionResponse(r *domain.ReverseResult) ReverseTransactionResponse {
	return ReverseTransactionResponse{
		Original:        ToTransactionResponse(&r.Original),
		ReversalEntry:   ToTransactionResponse(&r.ReversalEntry),
		CorrectionEntry: ToTransactionResponse(&r.CorrectionEntry),
		BalanceEffect:   r.BalanceEffect,
	}
}

// LineageResponse shows a record with the entries a Reverse generated from it.
type LineageResponse struct {
	Original        TransactionResponse  `json:"original"`
	ReversalEntry   *TransactionResponse `json:"reversalEntry"`
	CorrectionEntry *TransactionResponse `json:"correctionEntry"`
}

// ToLineageResponse converts a domain.Lineage.
func ToLineageResponse(l *domain.Lineage) LineageResponse {
	resp := LineageResponse{Original: ToTransactionResponse(&l.Original)}
	if l.ReversalEntry != nil {
		r := ToTransactionResponse(l.ReversalEntry)
		resp.ReversalEntry = &r
	}
	if l.CorrectionEntry != nil {
		c := ToTransactionResponse(l.CorrectionEntry)
		resp.CorrectionEntry = &c
	}
	return resp
}
