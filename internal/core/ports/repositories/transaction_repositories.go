package repositories

import (
	"context"

	"github.com/SscSPs/erp_finance_ledger/internal/core/domain"
)

// TransactionReader defines read operations for finance transactions.
type TransactionReader interface {
	// FindTransactionByID retrieves a finance transaction by its unique identifier.
	// It returns an apperrors.ErrNotFound wrapped error when no record exists.
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// ListTransactions retrieves a page of transactions matching the filter, newest first.
	// It returns the transactions, a token for the next page, and an error.
	ListTransactions(ctx context.Context, filter domain.TransactionFilter, limit int, nextToken *string) ([]domain.Transaction, *string, error)

	// FindLinkedTransactions returns the entries whose reversalOf or correctionOf points at originalID.
	FindLinkedTransactions(ctx context.Context, originalID string) ([]domain.Transaction, error)

	// FindLedgerEntries returns every record that counts towards balances (posted or reversed)
	// matching the filter. The filter's Status is ignored.
	FindLedgerEntries(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, error)
}

// TransactionWriter defines write operations for finance transactions.
// Every update is conditional on the version the caller read; a stale version
// yields an apperrors.ErrConflict wrapped error and nothing is written.
type TransactionWriter interface {
	// CreateTransaction persists a new record.
	CreateTransaction(ctx context.Context, txn domain.Transaction) error

	// UpdateTransaction replaces the stored record if its version still equals expectedVersion.
	// The stored version becomes expectedVersion+1.
	UpdateTransaction(ctx context.Context, txn domain.Transaction, expectedVersion int64) error

	// DeleteTransaction removes the record if its version still equals expectedVersion.
	DeleteTransaction(ctx context.Context, transactionID string, expectedVersion int64) error

	// SaveReversal atomically updates the original (version-checked) and inserts the
	// reversal and correction entries. Either all three writes commit or none do.
	SaveReversal(ctx context.Context, original domain.Transaction, expectedVersion int64, reversal, correction domain.Transaction) error
}

// TransactionRepositoryFacade combines all finance transaction repository interfaces.
// This is the LedgerStore the services depend on.
type TransactionRepositoryFacade interface {
	TransactionReader
	TransactionWriter
}
