package accounting_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/SscSPs/erp_finance_ledger/internal/core/domain"
	"github.com/SscSPs/erp_finance_ledger/internal/utils/accounting"
)

func ptr(s string) *string { return &s }

func entry(id string, typ domain.TransactionType, amount int64, from, to string, status domain.TransactionStatus) domain.Transaction {
	return domain.Transaction{
		TransactionID: id,
		Type:          typ,
		Category:      "General",
		Amount:        decimal.NewFromInt(amount),
		Date:          time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		AccountFrom:   from,
		AccountTo:     to,
		Status:        status,
	}
}

func TestBalanceEffect(t *testing.T) {
	transfer := entry("t1", domain.TypeTransfer, 500, "CASH-01", "BANK-01", domain.StatusPosted)
	deltas := accounting.BalanceEffect(transfer)
	assert.True(t, decimal.NewFromInt(-500).Equal(deltas["CASH-01"]))
	assert.True(t, decimal.NewFromInt(500).Equal(deltas["BANK-01"]))

	reversal := transfer
	reversal.ReversalOf = ptr("t1")
	deltas = accounting.BalanceEffect(reversal)
	assert.True(t, decimal.NewFromInt(500).Equal(deltas["CASH-01"]))
	assert.True(t, decimal.NewFromInt(-500).Equal(deltas["BANK-01"]))

	for _, s := range []domain.TransactionStatus{domain.StatusDraft, domain.StatusApproved, domain.StatusVoided, domain.StatusFailed} {
		off := transfer
		off.Status = s
		assert.Empty(t, accounting.BalanceEffect(off), s)
	}
}

func TestCashEffect(t *testing.T) {
	assert.True(t, decimal.NewFromInt(100).Equal(accounting.CashEffect(entry("i", domain.TypeIncome, 100, "", "SALES-01", domain.StatusPosted))))
	assert.True(t, decimal.NewFromInt(-100).Equal(accounting.CashEffect(entry("e", domain.TypeExpense, 100, "CASH-01", "", domain.StatusPosted))))
	assert.True(t, decimal.Zero.Equal(accounting.CashEffect(entry("t", domain.TypeTransfer, 100, "CASH-01", "BANK-01", domain.StatusPosted))))

	rev := entry("r", domain.TypeExpense, 100, "CASH-01", "", domain.StatusPosted)
	rev.ReversalOf = ptr("e")
	assert.True(t, decimal.NewFromInt(100).Equal(accounting.CashEffect(rev)))
}

func TestPreviewReversal_CorrectedAmount(t *testing.T) {
	original := entry("o", domain.TypeExpense, 50_000_000, "CASH-01", "", domain.StatusReversed)
	reversal := original
	reversal.TransactionID = "r"
	reversal.Status = domain.StatusPosted
	reversal.ReversalOf = ptr("o")
	correction := entry("c", domain.TypeExpense, 30_000_000, "CASH-01", "", domain.StatusPosted)
	correction.CorrectionOf = ptr("o")

	effect := accounting.PreviewReversal(original, reversal, correction)

	assert.True(t, decimal.NewFromInt(-50_000_000).Equal(effect.Original))
	assert.True(t, decimal.NewFromInt(50_000_000).Equal(effect.Reversal))
	assert.True(t, decimal.NewFromInt(-30_000_000).Equal(effect.Correction))
	assert.True(t, decimal.NewFromInt(-30_000_000).Equal(effect.Net))
}

func TestComputeBalance(t *testing.T) {
	original := entry("o", domain.TypeExpense, 50_000_000, "CASH-01", "", domain.StatusReversed)
	reversal := original
	reversal.TransactionID = "r"
	reversal.Status = domain.StatusPosted
	reversal.ReversalOf = ptr("o")
	correction := entry("c", domain.TypeExpense, 30_000_000, "CASH-01", "", domain.StatusPosted)
	unrelated := entry("u", domain.TypeIncome, 999, "", "SALES-01", domain.StatusPosted)
	voided := entry("v", domain.TypeExpense, 1_000, "CASH-01", "", domain.StatusVoided)

	balance, count := accounting.ComputeBalance("CASH-01", []domain.Transaction{original, reversal, correction, unrelated, voided})

	assert.True(t, decimal.NewFromInt(-30_000_000).Equal(balance), balance.String())
	assert.Equal(t, 3, count)
}

func TestSummarize(t *testing.T) {
	income := entry("i", domain.TypeIncome, 10_000, "", "SALES-01", domain.StatusPosted)
	income.Category = "Project"
	expense := entry("e", domain.TypeExpense, 4_000, "CASH-01", "", domain.StatusReversed)
	expense.Category = "Material"
	reversal := expense
	reversal.TransactionID = "r"
	reversal.Status = domain.StatusPosted
	reversal.ReversalOf = ptr("e")
	draft := entry("d", domain.TypeExpense, 7_000, "CASH-01", "", domain.StatusDraft)

	summary := accounting.Summarize([]domain.Transaction{income, expense, reversal, draft})

	assert.True(t, decimal.NewFromInt(10_000).Equal(summary.TotalIncome))
	assert.True(t, decimal.Zero.Equal(summary.TotalExpense))
	assert.True(t, decimal.NewFromInt(10_000).Equal(summary.NetCashFlow))
	assert.Equal(t, 3, summary.EntryCount)
	if assert.Len(t, summary.ByCategory, 2) {
		assert.Equal(t, domain.TypeExpense, summary.ByCategory[0].Type)
		assert.Equal(t, 2, summary.ByCategory[0].Count)
		assert.True(t, decimal.Zero.Equal(summary.ByCategory[0].Total))
		assert.Equal(t, "Project", summary.ByCategory[1].Category)
	}
}

func TestSummarize_Empty(t *testing.T) {
	summary := accounting.Summarize(nil)
	assert.True(t, summary.NetCashFlow.IsZero())
	assert.Empty(t, summary.ByCategory)
	assert.NotNil(t, summary.ByCategory)
}
