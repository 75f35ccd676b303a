package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SscSPs/erp_finance_ledger/internal/apperrors"
	"github.com/SscSPs/erp_finance_ledger/internal/core/domain"
)

func TestCanTransition(t *testing.T) {
	allowed := map[domain.TransactionStatus][]domain.TransactionStatus{
		domain.StatusDraft:    {domain.StatusPending, domain.StatusCancelled},
		domain.StatusPending:  {domain.StatusApproved, domain.StatusCancelled},
		domain.StatusApproved: {domain.StatusPosted, domain.StatusFailed, domain.StatusVoided},
		domain.StatusPosted:   {domain.StatusVoided, domain.StatusReversed},
	}
	all := []domain.TransactionStatus{
		domain.StatusDraft, domain.StatusPending, domain.StatusApproved, domain.StatusPosted,
		domain.StatusVoided, domain.StatusReversed, domain.StatusCancelled, domain.StatusFailed,
	}

	for _, from := range all {
		for _, to := range all {
			want := false
			for _, next := range allowed[from] {
				if next == to {
					want = true
				}
			}
			assert.Equal(t, want, domain.CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestStatus_CompletedIsPosted(t *testing.T) {
	assert.Equal(t, domain.StatusPosted, domain.StatusCompleted.Normalize())
	assert.True(t, domain.StatusCompleted.IsValid())
	assert.True(t, domain.CanTransition(domain.StatusCompleted, domain.StatusReversed))
	assert.True(t, domain.StatusCompleted.AffectsLedger())
	assert.False(t, domain.TransactionStatus("archived").IsValid())
}

func TestStatus_TerminalStates(t *testing.T) {
	for _, s := range []domain.TransactionStatus{domain.StatusVoided, domain.StatusReversed, domain.StatusCancelled, domain.StatusFailed} {
		assert.True(t, s.IsTerminal(), s)
	}
	assert.False(t, domain.StatusPosted.IsTerminal())
}

func TestTransitionTo_StampsLifecycleFields(t *testing.T) {
	at := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	txn := domain.Transaction{Status: domain.StatusApproved}

	require.NoError(t, txn.TransitionTo(domain.StatusPosted, "bob", at))
	assert.Equal(t, domain.StatusPosted, txn.Status)
	assert.Equal(t, "bob", *txn.PostedBy)
	assert.Equal(t, at, *txn.PostedAt)
	assert.Equal(t, "bob", txn.LastUpdatedBy)

	require.NoError(t, txn.TransitionTo(domain.StatusReversed, "carol", at))
	assert.True(t, txn.IsReversed)
	assert.Equal(t, "carol", *txn.ReversedBy)

	err := txn.TransitionTo(domain.StatusVoided, "carol", at)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.Equal(t, domain.StatusReversed, txn.Status)
}

func TestCanVoid(t *testing.T) {
	tests := []struct {
		name    string
		txn     domain.Transaction
		wantErr string
	}{
		{"posted", domain.Transaction{Status: domain.StatusPosted}, ""},
		{"completed alias", domain.Transaction{Status: domain.StatusCompleted}, ""},
		{"approved", domain.Transaction{Status: domain.StatusApproved}, ""},
		{"already voided", domain.Transaction{Status: domain.StatusVoided}, "transaction is already voided"},
		{"reversed", domain.Transaction{Status: domain.StatusReversed, IsReversed: true}, "transaction has been reversed and cannot be voided"},
		{"draft", domain.Transaction{Status: domain.StatusDraft}, "transaction status is draft, expected posted or approved"},
		{"reversal entry", domain.Transaction{Status: domain.StatusPosted, ReversalOf: strPtr("txn-1")}, "reversal entries cannot be voided"},
		{"correction entry", domain.Transaction{Status: domain.StatusPosted, CorrectionOf: strPtr("txn-1")}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.txn.CanVoid()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, apperrors.ErrConflict)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCanReverse(t *testing.T) {
	tests := []struct {
		name    string
		txn     domain.Transaction
		wantErr string
	}{
		{"posted", domain.Transaction{Status: domain.StatusPosted}, ""},
		{"already reversed", domain.Transaction{Status: domain.StatusReversed, IsReversed: true}, "transaction is already reversed"},
		{"voided", domain.Transaction{Status: domain.StatusVoided}, "transaction has been voided and cannot be reversed"},
		{"approved", domain.Transaction{Status: domain.StatusApproved}, "transaction status is approved, expected posted"},
		{"draft", domain.Transaction{Status: domain.StatusDraft}, "transaction status is draft, expected posted"},
		{"reversal entry", domain.Transaction{Status: domain.StatusPosted, ReversalOf: strPtr("txn-1")}, "reversal entries cannot be reversed"},
		{"correction entry", domain.Transaction{Status: domain.StatusPosted, CorrectionOf: strPtr("txn-1")}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.txn.CanReverse()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, apperrors.ErrConflict)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCanMutate(t *testing.T) {
	assert.NoError(t, (&domain.Transaction{Status: domain.StatusDraft}).CanMutate())
	assert.NoError(t, (&domain.Transaction{Status: domain.StatusPending}).CanMutate())
	for _, s := range []domain.TransactionStatus{domain.StatusApproved, domain.StatusPosted, domain.StatusVoided, domain.StatusReversed} {
		assert.ErrorIs(t, (&domain.Transaction{Status: s}).CanMutate(), apperrors.ErrConflict, s)
	}
}

func TestDropIgnoredAccounts(t *testing.T) {
	income := domain.Transaction{Type: domain.TypeIncome, AccountFrom: "CASH-01", AccountTo: "SALES-01"}
	income.DropIgnoredAccounts()
	assert.Empty(t, income.AccountFrom)
	assert.Equal(t, "SALES-01", income.AccountTo)

	expense := domain.Transaction{Type: domain.TypeExpense, AccountFrom: "CASH-01", AccountTo: "EXP-01"}
	expense.DropIgnoredAccounts()
	assert.Equal(t, "CASH-01", expense.AccountFrom)
	assert.Empty(t, expense.AccountTo)

	transfer := domain.Transaction{Type: domain.TypeTransfer, AccountFrom: "CASH-01", AccountTo: "BANK-01"}
	transfer.DropIgnoredAccounts()
	assert.Equal(t, "CASH-01", transfer.AccountFrom)
	assert.Equal(t, "BANK-01", transfer.AccountTo)
}

func strPtr(s string) *string { return &s }
