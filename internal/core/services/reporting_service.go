package services

import (
	"context"
	"log/slog"

	"github.com/SscSPs/erp_finance_ledger/internal/apperrors"
	"github.com/SscSPs/erp_finance_ledger/internal/core/domain"
	"github.com/SscSPs/erp_finance_ledger/internal/dto"
	"github.com/SscSPs/erp_finance_ledger/internal/utils/accounting"
)

// GetSummary totals the posted ledger that matches params. The status filter
// is ignored; voided and unposted records never count.
func (s *ledgerService) GetSummary(ctx context.Context, params dto.TransactionFilterParams) (*domain.TransactionSummary, error) {
	filter, problems := params.ToFilter()
	if !problems.Valid() {
		return nil, apperrors.NewValidationError(problems)
	}

	entries, err := s.ledgerEntries(ctx, filter)
	if err != nil {
		s.LogError(ctx, err, "Failed to load ledger entries for summary")
		return nil, err
	}

	summary := accounting.Summarize(entries)
	s.LogDebug(ctx, "Summary computed", slog.Int("entries", summary.EntryCount))
	return &summary, nil
}
