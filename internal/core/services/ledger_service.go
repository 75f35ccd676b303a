package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/SscSPs/erp_finance_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/erp_finance_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/erp_finance_ledger/internal/core/ports/services"
	"github.com/SscSPs/erp_finance_ledger/internal/utils/accounting"
)

// ledgerService derives balances and totals from the posted ledger.
// Balances are folded from the entries themselves, never stored.
type ledgerService struct {
	BaseService
	txnRepo     portsrepo.TransactionReader
	accountRepo portsrepo.AccountReader
	now         func() time.Time
}

// LedgerServiceOption is a functional option for configuring the ledger service
type LedgerServiceOption func(*ledgerService)

// WithLedgerClock replaces time.Now for the AsOf stamp of balances.
func WithLedgerClock(now func() time.Time) LedgerServiceOption {
	return func(s *ledgerService) {
		s.now = now
	}
}

// WithLedgerPersistenceTimeout bounds each store call.
func WithLedgerPersistenceTimeout(d time.Duration) LedgerServiceOption {
	return func(s *ledgerService) {
		s.PersistTimeout = d
	}
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(txnRepo portsrepo.TransactionReader, accountRepo portsrepo.AccountReader, options ...LedgerServiceOption) portssvc.LedgerSvcFacade {
	svc := &ledgerService{
		BaseService: BaseService{PersistTimeout: DefaultPersistenceTimeout},
		txnRepo:     txnRepo,
		accountRepo: accountRepo,
		now:         time.Now,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

func (s *ledgerService) ledgerEntries(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	var entries []domain.Transaction
	err := s.WithStoreTimeout(ctx, func(ctx context.Context) error {
		var err error
		entries, err = s.txnRepo.FindLedgerEntries(ctx, filter)
		return err
	})
	return entries, err
}

// GetAccountBalance returns the account's balance over every posted entry touching it.
func (s *ledgerService) GetAccountBalance(ctx context.Context, accountID string) (*domain.AccountBalance, error) {
	var account *domain.Account
	err := s.WithStoreTimeout(ctx, func(ctx context.Context) error {
		var err error
		account, err = s.accountRepo.FindAccountByID(ctx, accountID)
		return err
	})
	if err != nil {
		return nil, err
	}

	entries, err := s.ledgerEntries(ctx, domain.TransactionFilter{AccountID: accountID})
	if err != nil {
		s.LogError(ctx, err, "Failed to load ledger entries", slog.String("account_id", accountID))
		return nil, err
	}

	balance, count := accounting.ComputeBalance(accountID, entries)
	return &domain.AccountBalance{
		AccountID:   account.AccountID,
		Name:        account.Name,
		AccountType: account.AccountType,
		Balance:     balance,
		EntryCount:  count,
		AsOf:        s.now(),
	}, nil
}
