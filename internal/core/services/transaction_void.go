package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/SscSPs/erp_finance_ledger/internal/apperrors"
	"github.com/SscSPs/erp_finance_ledger/internal/core/domain"
	"github.com/SscSPs/erp_finance_ledger/internal/dto"
)

// VoidTransaction marks a posted or approved record as voided. No new record is
// created and the voided record stops counting towards balances.
func (s *transactionService) VoidTransaction(ctx context.Context, transactionID string, req dto.VoidTransactionRequest, actor string) (*domain.Transaction, error) {
	if problems := domain.ValidateReason(req.Reason, domain.MinVoidReasonLength); !problems.Valid() {
		return nil, apperrors.NewValidationError(problems)
	}

	current, err := s.load(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if err := current.CanVoid(); err != nil {
		s.LogDebug(ctx, "Void refused", slog.String("transaction_id", transactionID), slog.String("error", err.Error()))
		return nil, err
	}

	voided := *current
	if err := voided.TransitionTo(domain.StatusVoided, actor, s.now()); err != nil {
		return nil, err
	}
	reason := strings.TrimSpace(req.Reason)
	voided.VoidReason = &reason

	if err := s.save(ctx, &voided, current.Version); err != nil {
		s.LogError(ctx, err, "Failed to void transaction", slog.String("transaction_id", transactionID))
		return nil, err
	}

	s.LogInfo(ctx, "Transaction voided",
		slog.String("transaction_id", transactionID),
		slog.String("previous_status", string(current.Status.Normalize())),
		slog.String("voided_by", actor))
	return &voided, nil
}
