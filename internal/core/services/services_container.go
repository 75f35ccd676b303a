package services

import (
	portsrepo "github.com/SscSPs/erp_finance_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/erp_finance_ledger/internal/core/ports/services"
	"github.com/SscSPs/erp_finance_ledger/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.Transaction = NewTransactionService(
		repos.TransactionRepo,
		WithAccountDirectory(repos.AccountRepo),
		WithPersistenceTimeout(cfg.PersistenceTimeout),
	)
	container.Ledger = NewLedgerService(
		repos.TransactionRepo,
		repos.AccountRepo,
		WithLedgerPersistenceTimeout(cfg.PersistenceTimeout),
	)

	return container
}
