//go:build integration

package pgsql_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/SscSPs/erp_finance_ledger/internal/adapters/database/pgsql"
	"github.com/SscSPs/erp_finance_ledger/internal/apperrors"
	"github.com/SscSPs/erp_finance_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/erp_finance_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/erp_finance_ledger/internal/core/ports/services"
	"github.com/SscSPs/erp_finance_ledger/internal/core/services"
	"github.com/SscSPs/erp_finance_ledger/internal/dto"
	"github.com/SscSPs/erp_finance_ledger/pkg/database"
)

// setupPostgres starts a disposable PostgreSQL container, applies the
// migrations and returns a provider on a fresh pool.
func setupPostgres(t *testing.T) portsrepo.RepositoryProvider {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("ledger"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Skipf("docker not available: %v", err)
	}
	t.Cleanup(func() {
		require.NoError(t, container.Terminate(ctx))
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	migrationsDir, err := filepath.Abs(filepath.Join("..", "..", "..", "..", "migrations"))
	require.NoError(t, err)
	applied, err := database.RunMigrations(dsn, migrationsDir)
	require.NoError(t, err)
	require.True(t, applied)

	pool, err := database.NewPgxPool(ctx, dsn, true)
	require.NoError(t, err)
	t.Cleanup(func() { database.ClosePgxPool(pool) })

	repos := pgsql.NewRepositoryProvider(pool)
	now := time.Now().UTC()
	for _, acc := range []domain.Account{
		{AccountID: "CASH-01", Name: "Kas", AccountType: domain.Asset, IsActive: true},
		{AccountID: "SALES-01", Name: "Penjualan", AccountType: domain.Revenue, IsActive: true},
	} {
		acc.AuditFields = domain.NewAuditFields("test", now)
		require.NoError(t, repos.AccountRepo.SaveAccount(ctx, acc))
	}
	return repos
}

func postExpense(t *testing.T, svc portssvc.TransactionSvcFacade, amount int64) *domain.Transaction {
	t.Helper()
	ctx := context.Background()
	value := decimal.NewFromInt(amount)
	created, err := svc.CreateTransaction(ctx, dto.CreateTransactionRequest{
		Type:        "expense",
		Category:    "Material",
		Amount:      &value,
		Date:        "2024-05-01",
		AccountFrom: "CASH-01",
		Description: "Pembelian material proyek",
	}, "tester")
	require.NoError(t, err)

	for _, step := range []func(context.Context, string, string) (*domain.Transaction, error){
		svc.SubmitTransaction, svc.ApproveTransaction, svc.PostTransaction,
	} {
		created, err = step(ctx, created.TransactionID, "tester")
		require.NoError(t, err)
	}
	return created
}

func TestPgxTransactionRepository_ReverseKeepsBalance(t *testing.T) {
	repos := setupPostgres(t)
	ctx := context.Background()
	svc := services.NewTransactionService(repos.TransactionRepo, services.WithAccountDirectory(repos.AccountRepo))
	ledger := services.NewLedgerService(repos.TransactionRepo, repos.AccountRepo)

	original := postExpense(t, svc, 50_000_000)
	corrected := decimal.NewFromInt(30_000_000)
	result, err := svc.ReverseTransaction(ctx, original.TransactionID, dto.ReverseTransactionRequest{
		Reason:        "Nilai salah, seharusnya 30 juta",
		CorrectedData: dto.CorrectedDataRequest{Amount: &corrected},
	}, "auditor")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(-30_000_000).Equal(result.BalanceEffect.Net))

	stored, err := repos.TransactionRepo.FindTransactionByID(ctx, original.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusReversed, stored.Status)
	assert.True(t, stored.IsReversed)
	assert.Equal(t, original.Version+1, stored.Version)

	balance, err := ledger.GetAccountBalance(ctx, "CASH-01")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(-30_000_000).Equal(balance.Balance), balance.Balance.String())
	assert.Equal(t, 3, balance.EntryCount)

	lineage, err := svc.GetLineage(ctx, result.ReversalEntry.TransactionID)
	require.NoError(t, err)
	require.NotNil(t, lineage.CorrectionEntry)
	assert.Equal(t, result.CorrectionEntry.TransactionID, lineage.CorrectionEntry.TransactionID)

	_, err = svc.ReverseTransaction(ctx, original.TransactionID, dto.ReverseTransactionRequest{
		Reason:        "Nilai salah, seharusnya 30 juta",
		CorrectedData: dto.CorrectedDataRequest{Amount: &corrected},
	}, "auditor")
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestPgxTransactionRepository_ReverseIsAllOrNothing(t *testing.T) {
	repos := setupPostgres(t)
	ctx := context.Background()
	base := services.NewTransactionService(repos.TransactionRepo, services.WithAccountDirectory(repos.AccountRepo))

	existing := postExpense(t, base, 1_000)
	original := postExpense(t, base, 50_000_000)

	// The correction entry reuses an existing primary key, so its insert fails
	// after the original has been updated and the reversal inserted.
	ids := []string{"rev-atomic-1", existing.TransactionID}
	svc := services.NewTransactionService(repos.TransactionRepo,
		services.WithAccountDirectory(repos.AccountRepo),
		services.WithIDGenerator(func() string {
			id := ids[0]
			ids = ids[1:]
			return id
		}))

	corrected := decimal.NewFromInt(30_000_000)
	_, err := svc.ReverseTransaction(ctx, original.TransactionID, dto.ReverseTransactionRequest{
		Reason:        "Nilai salah, seharusnya 30 juta",
		CorrectedData: dto.CorrectedDataRequest{Amount: &corrected},
	}, "auditor")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrPersistence)
	assert.ErrorIs(t, err, apperrors.ErrDuplicate)

	stored, err := repos.TransactionRepo.FindTransactionByID(ctx, original.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPosted, stored.Status)
	assert.False(t, stored.IsReversed)
	assert.Equal(t, original.Version, stored.Version)

	_, err = repos.TransactionRepo.FindTransactionByID(ctx, "rev-atomic-1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	linked, err := repos.TransactionRepo.FindLinkedTransactions(ctx, original.TransactionID)
	require.NoError(t, err)
	assert.Empty(t, linked)
}

func TestPgxTransactionRepository_StaleVersionConflicts(t *testing.T) {
	repos := setupPostgres(t)
	ctx := context.Background()
	svc := services.NewTransactionService(repos.TransactionRepo)

	value := decimal.NewFromInt(10_000)
	created, err := svc.CreateTransaction(ctx, dto.CreateTransactionRequest{
		Type:        "income",
		Category:    "Proyek",
		Amount:      &value,
		Date:        "2024-05-01",
		AccountTo:   "SALES-01",
		Description: "Termin pertama proyek",
	}, "tester")
	require.NoError(t, err)

	stale := *created
	stale.Category = "Lainnya"
	require.NoError(t, repos.TransactionRepo.UpdateTransaction(ctx, stale, created.Version))

	err = repos.TransactionRepo.UpdateTransaction(ctx, stale, created.Version)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	err = repos.TransactionRepo.DeleteTransaction(ctx, "missing-id", 1)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestPgxTransactionRepository_ListPagesThroughTiedTimestamps(t *testing.T) {
	repos := setupPostgres(t)
	ctx := context.Background()
	at := time.Date(2024, 5, 10, 9, 30, 0, 0, time.UTC)
	svc := services.NewTransactionService(repos.TransactionRepo,
		services.WithAccountDirectory(repos.AccountRepo),
		services.WithClock(func() time.Time { return at }))

	original := postExpense(t, svc, 50_000)
	corrected := decimal.NewFromInt(30_000)
	_, err := svc.ReverseTransaction(ctx, original.TransactionID, dto.ReverseTransactionRequest{
		Reason:        "Nilai salah, seharusnya 30 ribu",
		CorrectedData: dto.CorrectedDataRequest{Amount: &corrected},
	}, "auditor")
	require.NoError(t, err)

	seen := map[string]bool{}
	var next *string
	for pages := 0; pages < 10; pages++ {
		page, token, err := repos.TransactionRepo.ListTransactions(ctx, domain.TransactionFilter{}, 1, next)
		require.NoError(t, err)
		for _, txn := range page {
			assert.False(t, seen[txn.TransactionID], "row %s listed twice", txn.TransactionID)
			seen[txn.TransactionID] = true
		}
		if token == nil {
			break
		}
		next = token
	}
	assert.Len(t, seen, 3)
}
