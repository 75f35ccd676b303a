package memory

import (
	"context"
	"sync"

	"github.com/SscSPs/erp_finance_ledger/internal/apperrors"
	"github.com/SscSPs/erp_finance_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/erp_finance_ledger/internal/core/ports/repositories"
)

// AccountDirectory is an in-memory account directory.
type AccountDirectory struct {
	mu       sync.RWMutex
	accounts map[string]domain.Account
}

// NewAccountDirectory creates a directory pre-populated with accounts.
func NewAccountDirectory(accounts ...domain.Account) *AccountDirectory {
	d := &AccountDirectory{accounts: make(map[string]domain.Account, len(accounts))}
	for _, acc := range accounts {
		d.accounts[acc.AccountID] = acc
	}
	return d
}

var _ portsrepo.AccountRepositoryFacade = (*AccountDirectory)(nil)

// FindAccountByID retrieves a specific account by its unique identifier.
func (d *AccountDirectory) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	acc, ok := d.accounts[accountID]
	if !ok {
		return nil, apperrors.NewNotFoundError("account " + accountID + " not found")
	}
	return &acc, nil
}

// FindAccountsByIDs retrieves the known accounts among accountIDs.
func (d *AccountDirectory) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.NewPersistenceError("account lookup aborted", err)
	}
	d.mu.RLock()
	defer d.mu.RUnlock()

	found := make(map[string]domain.Account, len(accountIDs))
	for _, id := range accountIDs {
		if acc, ok := d.accounts[id]; ok {
			found[id] = acc
		}
	}
	return found, nil
}

// SaveAccount inserts or replaces an account.
func (d *AccountDirectory) SaveAccount(ctx context.Context, account domain.Account) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.accounts[account.AccountID] = account
	return nil
}
