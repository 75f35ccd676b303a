package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// Both the PostgreSQL and the in-memory adapters build one.
type RepositoryProvider struct {
	AccountRepo     AccountRepositoryFacade
	TransactionRepo TransactionRepositoryFacade
}
