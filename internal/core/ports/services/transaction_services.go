package services

import (
	"context"

	"github.com/SscSPs/erp_finance_ledger/internal/core/domain"
	"github.com/SscSPs/erp_finance_ledger/internal/dto"
)

// TransactionReaderSvc defines read operations for finance transactions.
type TransactionReaderSvc interface {
	// GetTransactionByID retrieves a specific transaction by its ID.
	GetTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// ListTransactions retrieves a filtered, paginated list of transactions.
	ListTransactions(ctx context.Context, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error)

	// GetLineage returns the original record of transactionID together with its
	// reversal and correction entries, when it has been reversed.
	GetLineage(ctx context.Context, transactionID string) (*domain.Lineage, error)
}

// TransactionWriterSvc defines edits allowed while a record is still a draft or pending.
type TransactionWriterSvc interface {
	// CreateTransaction validates and stores a new draft.
	CreateTransaction(ctx context.Context, req dto.CreateTransactionRequest, actor string) (*domain.Transaction, error)

	// UpdateTransaction changes the supplied fields of an editable record.
	UpdateTransaction(ctx context.Context, transactionID string, req dto.UpdateTransactionRequest, actor string) (*domain.Transaction, error)

	// DeleteTransaction removes an editable record.
	DeleteTransaction(ctx context.Context, transactionID string, actor string) error
}

// TransactionLifecycleSvc moves a record from draft to posted.
type TransactionLifecycleSvc interface {
	SubmitTransaction(ctx context.Context, transactionID string, actor string) (*domain.Transaction, error)
	ApproveTransaction(ctx context.Context, transactionID string, actor string) (*domain.Transaction, error)
	// PostTransaction posts an approved record. When the account directory refuses
	// the accounts, the record is marked failed and a validation error is returned.
	PostTransaction(ctx context.Context, transactionID string, actor string) (*domain.Transaction, error)
	CancelTransaction(ctx context.Context, transactionID string, actor string) (*domain.Transaction, error)
}

// TransactionCorrectionSvc defines the two terminal corrections.
type TransactionCorrectionSvc interface {
	// VoidTransaction cancels a posted or approved record without creating new ones.
	VoidTransaction(ctx context.Context, transactionID string, req dto.VoidTransactionRequest, actor string) (*domain.Transaction, error)

	// ReverseTransaction replaces a posted record by a reversal entry and a correction entry.
	ReverseTransaction(ctx context.Context, transactionID string, req dto.ReverseTransactionRequest, actor string) (*domain.ReverseResult, error)
}

// TransactionSvcFacade combines all finance transaction service interfaces
type TransactionSvcFacade interface {
	TransactionReaderSvc
	TransactionWriterSvc
	TransactionLifecycleSvc
	TransactionCorrectionSvc
}

// LedgerSvcFacade computes balances and totals over the posted ledger.
type LedgerSvcFacade interface {
	GetAccountBalance(ctx context.Context, accountID string) (*domain.AccountBalance, error)
	GetSummary(ctx context.Context, params dto.TransactionFilterParams) (*domain.TransactionSummary, error)
}
