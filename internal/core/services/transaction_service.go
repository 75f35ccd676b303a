package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/SscSPs/erp_finance_ledger/internal/apperrors"
	"github.com/SscSPs/erp_finance_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/erp_finance_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/erp_finance_ledger/internal/core/ports/services"
	"github.com/SscSPs/erp_finance_ledger/internal/dto"
)

const defaultListLimit = 20

// transactionService implements the finance transaction lifecycle and its corrections.
type transactionService struct {
	BaseService
	txnRepo     portsrepo.TransactionRepositoryFacade
	accountRepo portsrepo.AccountReader
	now         func() time.Time
	newID       func() string
}

// TransactionServiceOption is a functional option for configuring the transaction service
type TransactionServiceOption func(*transactionService)

// WithAccountDirectory enables account compatibility checks against the directory.
func WithAccountDirectory(repo portsrepo.AccountReader) TransactionServiceOption {
	return func(s *transactionService) {
		s.accountRepo = repo
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) TransactionServiceOption {
	return func(s *transactionService) {
		s.now = now
	}
}

// WithIDGenerator replaces uuid.NewString for new record IDs.
func WithIDGenerator(newID func() string) TransactionServiceOption {
	return func(s *transactionService) {
		s.newID = newID
	}
}

// WithPersistenceTimeout bounds each store call.
func WithPersistenceTimeout(d time.Duration) TransactionServiceOption {
	return func(s *transactionService) {
		s.PersistTimeout = d
	}
}

// NewTransactionService creates a new transaction service with the provided options
func NewTransactionService(repo portsrepo.TransactionRepositoryFacade, options ...TransactionServiceOption) portssvc.TransactionSvcFacade {
	svc := &transactionService{
		BaseService: BaseService{PersistTimeout: DefaultPersistenceTimeout},
		txnRepo:     repo,
		now:         time.Now,
		newID:       uuid.NewString,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.TransactionSvcFacade = (*transactionService)(nil)

// load fetches a record by id under the persistence timeout.
func (s *transactionService) load(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	var txn *domain.Transaction
	err := s.WithStoreTimeout(ctx, func(ctx context.Context) error {
		var err error
		txn, err = s.txnRepo.FindTransactionByID(ctx, transactionID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// save writes txn if the stored version still equals expectedVersion and
// bumps txn.Version on success.
func (s *transactionService) save(ctx context.Context, txn *domain.Transaction, expectedVersion int64) error {
	txn.Version = expectedVersion + 1
	err := s.WithStoreTimeout(ctx, func(ctx context.Context) error {
		return s.txnRepo.UpdateTransaction(ctx, *txn, expectedVersion)
	})
	if err != nil {
		txn.Version = expectedVersion
		return err
	}
	return nil
}

// checkAccounts applies the account directory rules to txn. Field errors are
// returned as a ValidationResult; lookup failures as an error.
func (s *transactionService) checkAccounts(ctx context.Context, txn domain.Transaction) (domain.ValidationResult, error) {
	result := domain.ValidationResult{}
	if s.accountRepo == nil {
		return result, nil
	}

	type requirement struct {
		field     string
		accountID string
		want      domain.AccountType
	}
	var reqs []requirement
	switch txn.Type {
	case domain.TypeIncome:
		reqs = append(reqs, requirement{"accountTo", txn.AccountTo, domain.Revenue})
	case domain.TypeExpense:
		reqs = append(reqs, requirement{"accountFrom", txn.AccountFrom, domain.Asset})
	case domain.TypeTransfer:
		reqs = append(reqs,
			requirement{"accountFrom", txn.AccountFrom, domain.Asset},
			requirement{"accountTo", txn.AccountTo, domain.Asset})
	}

	ids := make([]string, 0, len(reqs))
	for _, r := range reqs {
		if r.accountID != "" {
			ids = append(ids, r.accountID)
		}
	}
	if len(ids) == 0 {
		return result, nil
	}

	var accounts map[string]domain.Account
	err := s.WithStoreTimeout(ctx, func(ctx context.Context) error {
		var err error
		accounts, err = s.accountRepo.FindAccountsByIDs(ctx, ids)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to look up accounts: %w", err)
	}

	for _, r := range reqs {
		if r.accountID == "" {
			continue
		}
		acc, ok := accounts[r.accountID]
		switch {
		case !ok:
			result.Add(r.field, fmt.Sprintf("account %s not found", r.accountID))
		case !acc.IsActive:
			result.Add(r.field, fmt.Sprintf("account %s is inactive", r.accountID))
		case acc.AccountType != r.want:
			result.Add(r.field, fmt.Sprintf("account %s must be of type %s for %s", r.accountID, r.want, txn.Type))
		}
	}
	return result, nil
}

// validateRecord runs the type validator and, when it passes, the directory rules.
func (s *transactionService) validateRecord(ctx context.Context, txn domain.Transaction, problems domain.ValidationResult) error {
	problems = problems.Merge(domain.ValidateTransaction(txn.Fields(), s.now()))
	if !problems.Valid() {
		return apperrors.NewValidationError(problems)
	}
	accountProblems, err := s.checkAccounts(ctx, txn)
	if err != nil {
		return err
	}
	if !accountProblems.Valid() {
		return apperrors.NewValidationError(accountProblems)
	}
	return nil
}

func (s *transactionService) CreateTransaction(ctx context.Context, req dto.CreateTransactionRequest, actor string) (*domain.Transaction, error) {
	fields, problems := req.ToFields()
	now := s.now()

	txn := domain.Transaction{
		TransactionID: s.newID(),
		Subcategory:   strings.TrimSpace(req.Subcategory),
		ProjectID:     strings.TrimSpace(req.ProjectID),
		Notes:         strings.TrimSpace(req.Notes),
		PaymentMethod: domain.PaymentBankTransfer,
		Status:        domain.StatusDraft,
		Version:       1,
		AuditFields:   domain.NewAuditFields(actor, now),
	}
	txn.ApplyFields(fields)
	txn.DropIgnoredAccounts()

	if err := s.validateRecord(ctx, txn, problems); err != nil {
		s.LogDebug(ctx, "Rejected new transaction", slog.String("error", err.Error()))
		return nil, err
	}

	err := s.WithStoreTimeout(ctx, func(ctx context.Context) error {
		return s.txnRepo.CreateTransaction(ctx, txn)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to create transaction", slog.String("transaction_id", txn.TransactionID))
		return nil, err
	}

	s.LogInfo(ctx, "Transaction created",
		slog.String("transaction_id", txn.TransactionID),
		slog.String("type", string(txn.Type)),
		slog.String("amount", txn.Amount.String()))
	return &txn, nil
}

func (s *transactionService) GetTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	return s.load(ctx, transactionID)
}

func (s *transactionService) ListTransactions(ctx context.Context, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error) {
	filter, problems := params.ToFilter()
	if !problems.Valid() {
		return nil, apperrors.NewValidationError(problems)
	}
	limit := params.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	var (
		txns      []domain.Transaction
		nextToken *string
	)
	err := s.WithStoreTimeout(ctx, func(ctx context.Context) error {
		var err error
		txns, nextToken, err = s.txnRepo.ListTransactions(ctx, filter, limit, params.NextToken)
		return err
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to list transactions")
		return nil, err
	}

	return &dto.ListTransactionsResponse{
		Transactions: dto.ToTransactionResponses(txns),
		NextToken:    nextToken,
	}, nil
}

func (s *transactionService) UpdateTransaction(ctx context.Context, transactionID string, req dto.UpdateTransactionRequest, actor string) (*domain.Transaction, error) {
	current, err := s.load(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if req.Version != nil && *req.Version != current.Version {
		return nil, apperrors.NewConflictError(fmt.Sprintf("transaction %s has version %d, not %d", transactionID, current.Version, *req.Version))
	}
	if err := current.CanMutate(); err != nil {
		return nil, err
	}

	updated := *current
	problems := req.Apply(&updated)
	updated.DropIgnoredAccounts()
	if err := s.validateRecord(ctx, updated, problems); err != nil {
		return nil, err
	}

	updated.Touch(actor, s.now())
	if err := s.save(ctx, &updated, current.Version); err != nil {
		s.LogError(ctx, err, "Failed to update transaction", slog.String("transaction_id", transactionID))
		return nil, err
	}
	return &updated, nil
}

func (s *transactionService) DeleteTransaction(ctx context.Context, transactionID string, actor string) error {
	current, err := s.load(ctx, transactionID)
	if err != nil {
		return err
	}
	if err := current.CanMutate(); err != nil {
		return err
	}
	err = s.WithStoreTimeout(ctx, func(ctx context.Context) error {
		return s.txnRepo.DeleteTransaction(ctx, transactionID, current.Version)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to delete transaction", slog.String("transaction_id", transactionID))
		return err
	}
	s.LogInfo(ctx, "Transaction deleted", slog.String("transaction_id", transactionID), slog.String("actor", actor))
	return nil
}

func (s *transactionService) GetLineage(ctx context.Context, transactionID string) (*domain.Lineage, error) {
	txn, err := s.load(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	original := txn
	switch {
	case txn.ReversalOf != nil:
		original, err = s.load(ctx, *txn.ReversalOf)
	case txn.CorrectionOf != nil:
		original, err = s.load(ctx, *txn.CorrectionOf)
	}
	if err != nil {
		return nil, err
	}

	lineage := &domain.Lineage{Original: *original}
	if !original.IsReversed {
		return lineage, nil
	}

	var linked []domain.Transaction
	err = s.WithStoreTimeout(ctx, func(ctx context.Context) error {
		var err error
		linked, err = s.txnRepo.FindLinkedTransactions(ctx, original.TransactionID)
		return err
	})
	if err != nil {
		return nil, err
	}
	for i := range linked {
		entry := linked[i]
		switch {
		case entry.ReversalOf != nil:
			lineage.ReversalEntry = &entry
		case entry.CorrectionOf != nil:
			lineage.CorrectionEntry = &entry
		}
	}
	if lineage.ReversalEntry == nil || lineage.CorrectionEntry == nil {
		s.GetLogger(ctx).Error("Reversed transaction is missing linked entries",
			slog.String("transaction_id", original.TransactionID),
			slog.Int("linked", len(linked)))
	}
	return lineage, nil
}
