package repositories

import (
	"context"

	"github.com/SscSPs/erp_finance_ledger/internal/core/domain"
)

// AccountReader defines read operations against the account directory.
type AccountReader interface {
	// FindAccountByID retrieves a specific account by its unique identifier.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// FindAccountsByIDs retrieves multiple accounts by their IDs. Unknown IDs are
	// simply absent from the returned map.
	FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error)
}

// AccountWriter defines write operations for account data. The directory is owned by
// another part of the ERP; these exist for seeding and synchronisation.
type AccountWriter interface {
	// SaveAccount inserts or replaces an account.
	SaveAccount(ctx context.Context, account domain.Account) error
}

// AccountRepositoryFacade combines all account-related repository interfaces
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
}
