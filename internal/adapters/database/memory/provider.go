package memory

import (
	"github.com/SscSPs/erp_finance_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/erp_finance_ledger/internal/core/ports/repositories"
)

// NewRepositoryProvider wires the in-memory adapters. accounts seeds the directory.
func NewRepositoryProvider(accounts []domain.Account, opts ...Option) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AccountRepo:     NewAccountDirectory(accounts...),
		TransactionRepo: NewTransactionStore(opts...),
	}
}
