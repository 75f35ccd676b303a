package domain

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	MinCategoryLength    = 2
	MaxCategoryLength    = 100
	MinDescriptionLength = 5
	MaxDescriptionLength = 500
	MinReferenceLength   = 3
	MaxReferenceLength   = 50

	// MinVoidReasonLength and MinReverseReasonLength gate the audit reason of
	// the two correction operations. Reverse asks for more because it posts new entries.
	MinVoidReasonLength    = 10
	MinReverseReasonLength = 15

	// AmountScale is the number of decimal places an amount may carry. The
	// ledger column is NUMERIC(20,4).
	AmountScale = 4
)

// maxAmount is the first value that no longer fits NUMERIC(20,4).
var maxAmount = decimal.New(1, 20-AmountScale)

var referenceNumberPattern = regexp.MustCompile(`^[A-Za-z0-9\-/]+$`)

// TransactionFields is the part of a record that the type validator checks.
// A nil Date means the date was not supplied.
type TransactionFields struct {
	Type            TransactionType
	Category        string
	Amount          decimal.Decimal
	Date            *time.Time
	AccountFrom     string
	AccountTo       string
	Description     string
	ReferenceNumber string
	PaymentMethod   PaymentMethod
}

// ValidationResult maps a field name to its error message. Empty means valid.
type ValidationResult map[string]string

// Valid reports whether no violation was recorded.
func (r ValidationResult) Valid() bool {
	return len(r) == 0
}

// Add records msg for field unless the field already has a message.
func (r ValidationResult) Add(field, msg string) {
	if _, exists := r[field]; !exists {
		r[field] = msg
	}
}

// Merge copies every violation of other into r.
func (r ValidationResult) Merge(other map[string]string) ValidationResult {
	for k, v := range other {
		r.Add(k, v)
	}
	return r
}

// ValidateTransaction checks every field rule independently and reports all
// violations together. now decides the latest acceptable date (end of now's day).
func ValidateTransaction(f TransactionFields, now time.Time) ValidationResult {
	result := ValidationResult{}

	if f.Type == "" {
		result.Add("type", "type is required")
	} else if !f.Type.IsValid() {
		result.Add("type", "type must be one of income, expense, transfer")
	}

	category := strings.TrimSpace(f.Category)
	switch n := utf8.RuneCountInString(category); {
	case n == 0:
		result.Add("category", "category is required")
	case n < MinCategoryLength:
		result.Add("category", "minimum 2 characters")
	case n > MaxCategoryLength:
		result.Add("category", "maximum 100 characters")
	}

	switch {
	case !f.Amount.IsPositive():
		result.Add("amount", "amount must be greater than 0")
	case !f.Amount.Equal(f.Amount.Truncate(AmountScale)):
		result.Add("amount", "amount must have at most 4 decimal places")
	case f.Amount.GreaterThanOrEqual(maxAmount):
		result.Add("amount", "amount is too large")
	}

	description := strings.TrimSpace(f.Description)
	switch n := utf8.RuneCountInString(description); {
	case n == 0:
		result.Add("description", "description is required")
	case n < MinDescriptionLength:
		result.Add("description", "minimum 5 characters")
	case n > MaxDescriptionLength:
		result.Add("description", "maximum 500 characters")
	}

	if f.Date == nil || f.Date.IsZero() {
		result.Add("date", "date is required")
	} else if f.Date.After(EndOfDay(now)) {
		result.Add("date", "date must not be in the future")
	}

	if ref := strings.TrimSpace(f.ReferenceNumber); ref != "" {
		switch n := len(ref); {
		case n < MinReferenceLength:
			result.Add("referenceNumber", "minimum 3 characters")
		case n > MaxReferenceLength:
			result.Add("referenceNumber", "maximum 50 characters")
		case !referenceNumberPattern.MatchString(ref):
			result.Add("referenceNumber", "only letters, digits, '-' and '/' are allowed")
		}
	}

	if f.PaymentMethod != "" && !f.PaymentMethod.IsValid() {
		result.Add("paymentMethod", "paymentMethod must be one of cash, bank_transfer, check, credit_card, other")
	}

	from := strings.TrimSpace(f.AccountFrom)
	to := strings.TrimSpace(f.AccountTo)
	switch f.Type {
	case TypeIncome:
		if to == "" {
			result.Add("accountTo", "accountTo is required for income")
		}
	case TypeExpense:
		if from == "" {
			result.Add("accountFrom", "accountFrom is required for expense")
		}
	case TypeTransfer:
		if from == "" {
			result.Add("accountFrom", "accountFrom is required for transfer")
		}
		if to == "" {
			result.Add("accountTo", "accountTo is required for transfer")
		}
		if from != "" && from == to {
			result.Add("accountTo", "accountTo must differ from accountFrom")
		}
	}

	return result
}

// ValidateReason checks an audit reason against a minimum trimmed length.
func ValidateReason(reason string, minLength int) ValidationResult {
	result := ValidationResult{}
	trimmed := strings.TrimSpace(reason)
	if trimmed == "" {
		result.Add("reason", "reason is required")
	} else if utf8.RuneCountInString(trimmed) < minLength {
		result.Add("reason", minLengthMessage(minLength))
	}
	return result
}

func minLengthMessage(n int) string {
	switch n {
	case MinVoidReasonLength:
		return "minimum 10 characters"
	case MinReverseReasonLength:
		return "minimum 15 characters"
	}
	return "reason is too short"
}

// EndOfDay returns the last representable instant of t's calendar day in t's location.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, 999999999, t.Location())
}
