package services

import (
	"context"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/SscSPs/erp_finance_ledger/internal/apperrors"
	"github.com/SscSPs/erp_finance_ledger/internal/core/domain"
	"github.com/SscSPs/erp_finance_ledger/internal/dto"
	"github.com/SscSPs/erp_finance_ledger/internal/utils/accounting"
)

const reversalDescriptionPrefix = "Reversal of: "

// ReverseTransaction neutralises a posted record with a reversal entry and
// books the corrected values as a new entry. The original, the reversal and
// the correction are written in one store call; either all three land or none.
func (s *transactionService) ReverseTransaction(ctx context.Context, transactionID string, req dto.ReverseTransactionRequest, actor string) (*domain.ReverseResult, error) {
	if problems := domain.ValidateReason(req.Reason, domain.MinReverseReasonLength); !problems.Valid() {
		return nil, apperrors.NewValidationError(problems)
	}

	original, err := s.load(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if err := original.CanReverse(); err != nil {
		s.LogDebug(ctx, "Reverse refused", slog.String("transaction_id", transactionID), slog.String("error", err.Error()))
		return nil, err
	}

	correctionContent, problems := req.CorrectedData.BuildCorrection(*original)
	correctionContent.DropIgnoredAccounts()
	if err := s.validateCorrection(ctx, correctionContent, problems); err != nil {
		return nil, err
	}

	now := s.now()
	reason := strings.TrimSpace(req.Reason)

	reversed := *original
	if err := reversed.TransitionTo(domain.StatusReversed, actor, now); err != nil {
		return nil, err
	}
	reversed.ReverseReason = &reason

	reversal := s.buildReversalEntry(*original, reason, actor, now)
	correction := s.finishCorrectionEntry(correctionContent, original.TransactionID, actor, now)

	reversed.Version = original.Version + 1
	err = s.WithStoreTimeout(ctx, func(ctx context.Context) error {
		return s.txnRepo.SaveReversal(ctx, reversed, original.Version, reversal, correction)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to reverse transaction", slog.String("transaction_id", transactionID))
		return nil, err
	}

	effect := accounting.PreviewReversal(*original, reversal, correction)
	s.LogInfo(ctx, "Transaction reversed",
		slog.String("transaction_id", transactionID),
		slog.String("reversal_id", reversal.TransactionID),
		slog.String("correction_id", correction.TransactionID),
		slog.String("net_effect", effect.Net.String()))

	return &domain.ReverseResult{
		Original:        reversed,
		ReversalEntry:   reversal,
		CorrectionEntry: correction,
		BalanceEffect:   effect,
	}, nil
}

// validateCorrection checks the correction entry like a new record and reports
// violations under the correctedData prefix.
func (s *transactionService) validateCorrection(ctx context.Context, correction domain.Transaction, problems domain.ValidationResult) error {
	err := s.validateRecord(ctx, correction, problems)
	fields := apperrors.FieldsOf(err)
	if fields == nil {
		return err
	}
	prefixed := make(map[string]string, len(fields))
	for field, msg := range fields {
		prefixed["correctedData."+field] = msg
	}
	return apperrors.NewValidationError(prefixed)
}

// buildReversalEntry mirrors the original; its reversalOf link makes it count
// with the opposite sign.
func (s *transactionService) buildReversalEntry(original domain.Transaction, reason, actor string, now time.Time) domain.Transaction {
	originalID := original.TransactionID
	return domain.Transaction{
		TransactionID:   s.newID(),
		Type:            original.Type,
		Category:        original.Category,
		Subcategory:     original.Subcategory,
		Amount:          original.Amount,
		Date:            original.Date,
		AccountFrom:     original.AccountFrom,
		AccountTo:       original.AccountTo,
		Description:     truncateRunes(reversalDescriptionPrefix+original.Description, domain.MaxDescriptionLength),
		ReferenceNumber: original.ReferenceNumber,
		PaymentMethod:   original.PaymentMethod,
		ProjectID:       original.ProjectID,
		Notes:           reason,
		Status:          domain.StatusPosted,
		ReversalOf:      &originalID,
		PostedBy:        &actor,
		PostedAt:        &now,
		Version:         1,
		AuditFields:     domain.NewAuditFields(actor, now),
	}
}

func (s *transactionService) finishCorrectionEntry(correction domain.Transaction, originalID, actor string, now time.Time) domain.Transaction {
	correction.TransactionID = s.newID()
	correction.Status = domain.StatusPosted
	correction.CorrectionOf = &originalID
	correction.PostedBy = &actor
	correction.PostedAt = &now
	correction.Version = 1
	if correction.PaymentMethod == "" {
		correction.PaymentMethod = domain.PaymentBankTransfer
	}
	correction.AuditFields = domain.NewAuditFields(actor, now)
	return correction
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}
