package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SscSPs/erp_finance_ledger/internal/adapters/database/memory"
	"github.com/SscSPs/erp_finance_ledger/internal/apperrors"
	"github.com/SscSPs/erp_finance_ledger/internal/core/domain"
)

func record(id string, day int, status domain.TransactionStatus) domain.Transaction {
	created := time.Date(2024, 5, day, 8, 0, 0, 0, time.UTC)
	return domain.Transaction{
		TransactionID: id,
		Type:          domain.TypeExpense,
		Category:      "Material",
		Amount:        decimal.NewFromInt(1_000),
		Date:          time.Date(2024, 5, day, 0, 0, 0, 0, time.UTC),
		AccountFrom:   "CASH-01",
		Description:   "Pembelian material",
		Status:        status,
		Version:       1,
		AuditFields:   domain.AuditFields{CreatedAt: created, LastUpdatedAt: created},
	}
}

func strPtr(s string) *string { return &s }

func TestTransactionStore_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	store := memory.NewTransactionStore()

	require.NoError(t, store.CreateTransaction(ctx, record("a", 1, domain.StatusDraft)))
	err := store.CreateTransaction(ctx, record("a", 1, domain.StatusDraft))
	assert.ErrorIs(t, err, apperrors.ErrDuplicate)
	assert.ErrorIs(t, err, apperrors.ErrPersistence)

	got, err := store.FindTransactionByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "a", got.TransactionID)

	_, err = store.FindTransactionByID(ctx, "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestTransactionStore_UpdateChecksVersion(t *testing.T) {
	ctx := context.Background()
	store := memory.NewTransactionStore()
	txn := record("a", 1, domain.StatusDraft)
	require.NoError(t, store.CreateTransaction(ctx, txn))

	txn.Category = "Upah"
	require.NoError(t, store.UpdateTransaction(ctx, txn, 1))

	got, _ := store.FindTransactionByID(ctx, "a")
	assert.Equal(t, int64(2), got.Version)
	assert.Equal(t, "Upah", got.Category)

	txn.Category = "Sewa"
	err := store.UpdateTransaction(ctx, txn, 1)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	got, _ = store.FindTransactionByID(ctx, "a")
	assert.Equal(t, "Upah", got.Category)
}

func TestTransactionStore_DeleteChecksVersion(t *testing.T) {
	ctx := context.Background()
	store := memory.NewTransactionStore()
	require.NoError(t, store.CreateTransaction(ctx, record("a", 1, domain.StatusDraft)))

	assert.ErrorIs(t, store.DeleteTransaction(ctx, "a", 7), apperrors.ErrConflict)
	require.NoError(t, store.DeleteTransaction(ctx, "a", 1))
	assert.ErrorIs(t, store.DeleteTransaction(ctx, "a", 1), apperrors.ErrNotFound)
}

func reversalSet() (domain.Transaction, domain.Transaction, domain.Transaction) {
	original := record("orig", 1, domain.StatusReversed)
	original.IsReversed = true
	reversal := record("rev", 2, domain.StatusPosted)
	reversal.ReversalOf = strPtr("orig")
	correction := record("cor", 2, domain.StatusPosted)
	correction.CorrectionOf = strPtr("orig")
	return original, reversal, correction
}

func TestTransactionStore_SaveReversal(t *testing.T) {
	ctx := context.Background()
	store := memory.NewTransactionStore()
	posted := record("orig", 1, domain.StatusPosted)
	require.NoError(t, store.CreateTransaction(ctx, posted))

	original, reversal, correction := reversalSet()
	require.NoError(t, store.SaveReversal(ctx, original, 1, reversal, correction))

	got, _ := store.FindTransactionByID(ctx, "orig")
	assert.True(t, got.IsReversed)
	assert.Equal(t, int64(2), got.Version)

	linked, err := store.FindLinkedTransactions(ctx, "orig")
	require.NoError(t, err)
	assert.Len(t, linked, 2)

	assert.ErrorIs(t, store.SaveReversal(ctx, original, 1, reversal, correction), apperrors.ErrConflict)
}

func TestTransactionStore_SaveReversalIsAllOrNothing(t *testing.T) {
	for _, op := range []string{memory.OpUpdateOriginal, memory.OpInsertReversal, memory.OpInsertCorrection} {
		t.Run(op, func(t *testing.T) {
			ctx := context.Background()
			boom := errors.New("disk full")
			store := memory.NewTransactionStore(memory.WithFaultInjector(func(got string, _ domain.Transaction) error {
				if got == op {
					return boom
				}
				return nil
			}))
			posted := record("orig", 1, domain.StatusPosted)
			require.NoError(t, store.CreateTransaction(ctx, posted))

			original, reversal, correction := reversalSet()
			err := store.SaveReversal(ctx, original, 1, reversal, correction)
			assert.ErrorIs(t, err, apperrors.ErrPersistence)
			assert.ErrorIs(t, err, boom)

			got, _ := store.FindTransactionByID(ctx, "orig")
			assert.Equal(t, domain.StatusPosted, got.Status)
			assert.False(t, got.IsReversed)
			assert.Equal(t, int64(1), got.Version)

			linked, _ := store.FindLinkedTransactions(ctx, "orig")
			assert.Empty(t, linked)
		})
	}
}

func TestTransactionStore_SaveReversalRejectsExistingID(t *testing.T) {
	ctx := context.Background()
	store := memory.NewTransactionStore()
	require.NoError(t, store.CreateTransaction(ctx, record("orig", 1, domain.StatusPosted)))
	require.NoError(t, store.CreateTransaction(ctx, record("cor", 3, domain.StatusDraft)))

	original, reversal, correction := reversalSet()
	err := store.SaveReversal(ctx, original, 1, reversal, correction)
	assert.ErrorIs(t, err, apperrors.ErrDuplicate)

	_, err = store.FindTransactionByID(ctx, "rev")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestTransactionStore_ListPagesNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := memory.NewTransactionStore()
	for i, id := range []string{"d1", "d2", "d3", "d4"} {
		require.NoError(t, store.CreateTransaction(ctx, record(id, i+1, domain.StatusDraft)))
	}

	page, next, err := store.ListTransactions(ctx, domain.TransactionFilter{}, 3, nil)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, []string{"d4", "d3", "d2"}, ids(page))

	page, next, err = store.ListTransactions(ctx, domain.TransactionFilter{}, 3, next)
	require.NoError(t, err)
	assert.Nil(t, next)
	assert.Equal(t, []string{"d1"}, ids(page))

	bad := "not-a-token"
	_, _, err = store.ListTransactions(ctx, domain.TransactionFilter{}, 3, &bad)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestTransactionStore_ListPagesThroughTiedTimestamps(t *testing.T) {
	ctx := context.Background()
	store := memory.NewTransactionStore()
	// Reverse writes its two entries with one date and one created_at.
	for _, id := range []string{"orig", "rev", "cor"} {
		require.NoError(t, store.CreateTransaction(ctx, record(id, 7, domain.StatusPosted)))
	}
	require.NoError(t, store.CreateTransaction(ctx, record("older", 3, domain.StatusPosted)))

	var seen []string
	var next *string
	for pages := 0; pages < 10; pages++ {
		page, token, err := store.ListTransactions(ctx, domain.TransactionFilter{}, 1, next)
		require.NoError(t, err)
		seen = append(seen, ids(page)...)
		if token == nil {
			break
		}
		next = token
	}

	assert.Equal(t, []string{"rev", "orig", "cor", "older"}, seen)
}

func TestTransactionStore_ListFilters(t *testing.T) {
	ctx := context.Background()
	store := memory.NewTransactionStore()
	require.NoError(t, store.CreateTransaction(ctx, record("may1", 1, domain.StatusDraft)))
	require.NoError(t, store.CreateTransaction(ctx, record("may5", 5, domain.StatusPosted)))
	completed := record("may9", 9, domain.StatusCompleted)
	require.NoError(t, store.CreateTransaction(ctx, completed))

	start := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 5, 9, 18, 0, 0, 0, time.UTC)
	page, _, err := store.ListTransactions(ctx, domain.TransactionFilter{StartDate: &start, EndDate: &end}, 10, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"may9", "may5"}, ids(page))

	page, _, err = store.ListTransactions(ctx, domain.TransactionFilter{Status: domain.StatusPosted}, 10, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"may9", "may5"}, ids(page))
}

func TestTransactionStore_LedgerEntriesSkipOffLedgerRecords(t *testing.T) {
	ctx := context.Background()
	store := memory.NewTransactionStore()
	for i, s := range []domain.TransactionStatus{domain.StatusDraft, domain.StatusPosted, domain.StatusVoided, domain.StatusReversed, domain.StatusApproved} {
		require.NoError(t, store.CreateTransaction(ctx, record(string(s), i+1, s)))
	}

	entries, err := store.FindLedgerEntries(ctx, domain.TransactionFilter{AccountID: "CASH-01"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"posted", "reversed"}, ids(entries))
}

func TestTransactionStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	store := memory.NewTransactionStore()

	err := store.CreateTransaction(ctx, record("a", 1, domain.StatusDraft))
	assert.ErrorIs(t, err, apperrors.ErrPersistence)
	assert.ErrorIs(t, err, context.Canceled)
}

func ids(txns []domain.Transaction) []string {
	out := make([]string, 0, len(txns))
	for _, txn := range txns {
		out = append(out, txn.TransactionID)
	}
	return out
}
