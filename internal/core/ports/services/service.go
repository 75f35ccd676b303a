package services

// ServiceContainer holds instances of all the application services.
// Handlers receive it from main.
type ServiceContainer struct {
	Transaction TransactionSvcFacade
	Ledger      LedgerSvcFacade
}
