package accounting

import (
	"sort"

	"github.com/SscSPs/erp_finance_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// contributes reports whether txn moves any balance at all.
// Only posted records and reversed originals are on the ledger.
func contributes(txn domain.Transaction) bool {
	return txn.Status.AffectsLedger()
}

// sign is +1 for normal entries and -1 for reversal entries.
func sign(txn domain.Transaction) decimal.Decimal {
	if txn.IsReversalEntry() {
		return decimal.NewFromInt(-1)
	}
	return decimal.NewFromInt(1)
}

// BalanceEffect returns the signed change txn makes to each account it touches,
// measured in each account's normal-balance direction.
// AccountFrom decreases by the amount and AccountTo increases by it.
// A reversal entry carries the negated deltas; records off the ledger return an empty map.
func BalanceEffect(txn domain.Transaction) map[string]decimal.Decimal {
	deltas := make(map[string]decimal.Decimal, 2)
	if !contributes(txn) {
		return deltas
	}
	amount := txn.Amount.Mul(sign(txn))
	if txn.AccountFrom != "" {
		deltas[txn.AccountFrom] = deltas[txn.AccountFrom].Sub(amount)
	}
	if txn.AccountTo != "" {
		deltas[txn.AccountTo] = deltas[txn.AccountTo].Add(amount)
	}
	return deltas
}

// CashEffect is the scalar effect of txn on net cash flow:
// income adds, expense subtracts, transfer is neutral. Reversal entries are negated.
// It ignores status so that it can preview entries before they are stored.
func CashEffect(txn domain.Transaction) decimal.Decimal {
	var effect decimal.Decimal
	switch txn.Type {
	case domain.TypeIncome:
		effect = txn.Amount
	case domain.TypeExpense:
		effect = txn.Amount.Neg()
	default:
		return decimal.Zero
	}
	return effect.Mul(sign(txn))
}

// PreviewReversal computes the balance effect of reversing original with the
// given reversal and correction entries.
func PreviewReversal(original, reversal, correction domain.Transaction) domain.BalanceEffect {
	effect := domain.BalanceEffect{
		Original:   CashEffect(original),
		Reversal:   CashEffect(reversal),
		Correction: CashEffect(correction),
	}
	effect.Net = effect.Original.Add(effect.Reversal).Add(effect.Correction)
	return effect
}

// ComputeBalance folds the ledger entries into the balance of one account.
func ComputeBalance(accountID string, entries []domain.Transaction) (decimal.Decimal, int) {
	balance := decimal.Zero
	count := 0
	for _, txn := range entries {
		delta, ok := BalanceEffect(txn)[accountID]
		if !ok {
			continue
		}
		balance = balance.Add(delta)
		count++
	}
	return balance, count
}

// Summarize aggregates the ledger entries by type and category.
func Summarize(entries []domain.Transaction) domain.TransactionSummary {
	summary := domain.TransactionSummary{
		TotalIncome:   decimal.Zero,
		TotalExpense:  decimal.Zero,
		TotalTransfer: decimal.Zero,
		NetCashFlow:   decimal.Zero,
		ByCategory:    []domain.CategoryTotal{},
	}

	type key struct {
		t domain.TransactionType
		c string
	}
	byCategory := make(map[key]*domain.CategoryTotal)

	for _, txn := range entries {
		if !contributes(txn) {
			continue
		}
		signed := txn.Amount.Mul(sign(txn))
		switch txn.Type {
		case domain.TypeIncome:
			summary.TotalIncome = summary.TotalIncome.Add(signed)
		case domain.TypeExpense:
			summary.TotalExpense = summary.TotalExpense.Add(signed)
		case domain.TypeTransfer:
			summary.TotalTransfer = summary.TotalTransfer.Add(signed)
		}
		summary.EntryCount++

		k := key{txn.Type, txn.Category}
		ct, ok := byCategory[k]
		if !ok {
			ct = &domain.CategoryTotal{Type: txn.Type, Category: txn.Category, Total: decimal.Zero}
			byCategory[k] = ct
		}
		ct.Total = ct.Total.Add(signed)
		ct.Count++
	}
	summary.NetCashFlow = summary.TotalIncome.Sub(summary.TotalExpense)

	for _, ct := range byCategory {
		summary.ByCategory = append(summary.ByCategory, *ct)
	}
	sort.Slice(summary.ByCategory, func(i, j int) bool {
		if summary.ByCategory[i].Type != summary.ByCategory[j].Type {
			return summary.ByCategory[i].Type < summary.ByCategory[j].Type
		}
		return summary.ByCategory[i].Category < summary.ByCategory[j].Category
	})
	return summary
}
