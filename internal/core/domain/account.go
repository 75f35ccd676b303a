package domain

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Revenue   AccountType = "REVENUE"
	Expense   AccountType = "EXPENSE"
)

// Account is an entry of the account directory. The directory itself is owned
// by another part of the ERP; this service only reads it.
type Account struct {
	AccountID   string      `json:"accountID"` // Primary Key, e.g. "CASH-01"
	Name        string      `json:"name"`
	AccountType AccountType `json:"accountType"`
	IsActive    bool        `json:"isActive"`
	AuditFields
}

// IsDebitNormal reports whether the account's balance grows with debits.
func (t AccountType) IsDebitNormal() bool {
	return t == Asset || t == Expense
}
