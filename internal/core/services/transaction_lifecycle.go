package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/SscSPs/erp_finance_ledger/internal/apperrors"
	"github.com/SscSPs/erp_finance_ledger/internal/core/domain"
)

// transition loads the record, runs guard on it and moves it to status `to`.
func (s *transactionService) transition(ctx context.Context, transactionID, actor string, to domain.TransactionStatus, guard func(*domain.Transaction) error) (*domain.Transaction, error) {
	current, err := s.load(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	updated := *current
	if err := updated.TransitionTo(to, actor, s.now()); err != nil {
		return nil, err
	}
	if guard != nil {
		if err := guard(current); err != nil {
			return nil, err
		}
	}
	if err := s.save(ctx, &updated, current.Version); err != nil {
		s.LogError(ctx, err, "Failed to change transaction status",
			slog.String("transaction_id", transactionID),
			slog.String("to", string(to)))
		return nil, err
	}

	s.LogInfo(ctx, "Transaction status changed",
		slog.String("transaction_id", transactionID),
		slog.String("from", string(current.Status.Normalize())),
		slog.String("to", string(to)))
	return &updated, nil
}

// SubmitTransaction moves a draft to pending once it passes validation.
func (s *transactionService) SubmitTransaction(ctx context.Context, transactionID string, actor string) (*domain.Transaction, error) {
	return s.transition(ctx, transactionID, actor, domain.StatusPending, func(txn *domain.Transaction) error {
		return s.validateRecord(ctx, *txn, domain.ValidationResult{})
	})
}

// ApproveTransaction moves a pending record to approved.
func (s *transactionService) ApproveTransaction(ctx context.Context, transactionID string, actor string) (*domain.Transaction, error) {
	return s.transition(ctx, transactionID, actor, domain.StatusApproved, nil)
}

// CancelTransaction abandons a draft or pending record.
func (s *transactionService) CancelTransaction(ctx context.Context, transactionID string, actor string) (*domain.Transaction, error) {
	return s.transition(ctx, transactionID, actor, domain.StatusCancelled, nil)
}

func (s *transactionService) PostTransaction(ctx context.Context, transactionID string, actor string) (*domain.Transaction, error) {
	current, err := s.load(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransition(current.Status, domain.StatusPosted) {
		return nil, apperrors.NewConflictError(fmt.Sprintf("cannot move transaction from %s to %s", current.Status.Normalize(), domain.StatusPosted))
	}

	problems, err := s.checkAccounts(ctx, *current)
	if err != nil {
		return nil, err
	}
	if !problems.Valid() {
		return nil, s.failPosting(ctx, current, actor, problems)
	}

	updated := *current
	if err := updated.TransitionTo(domain.StatusPosted, actor, s.now()); err != nil {
		return nil, err
	}
	if err := s.save(ctx, &updated, current.Version); err != nil {
		s.LogError(ctx, err, "Failed to post transaction", slog.String("transaction_id", transactionID))
		return nil, err
	}

	s.LogInfo(ctx, "Transaction posted",
		slog.String("transaction_id", transactionID),
		slog.String("amount", updated.Amount.String()))
	return &updated, nil
}

// failPosting records the directory's refusal on the record and returns it as a
// validation error. A failure to store the refusal wins over the refusal itself.
func (s *transactionService) failPosting(ctx context.Context, current *domain.Transaction, actor string, problems domain.ValidationResult) error {
	fields := make([]string, 0, len(problems))
	for field := range problems {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	reasons := make([]string, 0, len(fields))
	for _, field := range fields {
		reasons = append(reasons, problems[field])
	}
	reason := strings.Join(reasons, "; ")

	failed := *current
	if err := failed.TransitionTo(domain.StatusFailed, actor, s.now()); err != nil {
		return err
	}
	failed.FailureReason = &reason
	if err := s.save(ctx, &failed, current.Version); err != nil {
		s.LogError(ctx, err, "Failed to mark transaction as failed", slog.String("transaction_id", current.TransactionID))
		return err
	}

	s.GetLogger(ctx).Warn("Posting refused by account directory",
		slog.String("transaction_id", current.TransactionID),
		slog.String("reason", reason))
	return apperrors.NewValidationError(problems)
}
