package domain

import (
	"fmt"
	"time"

	"github.com/SscSPs/erp_finance_ledger/internal/apperrors"
)

// TransactionStatus indicates where a finance transaction is in its lifecycle.
type TransactionStatus string

const (
	StatusDraft     TransactionStatus = "draft"
	StatusPending   TransactionStatus = "pending"
	StatusApproved  TransactionStatus = "approved"
	StatusPosted    TransactionStatus = "posted"
	StatusVoided    TransactionStatus = "voided"
	StatusReversed  TransactionStatus = "reversed"
	StatusCancelled TransactionStatus = "cancelled"
	StatusFailed    TransactionStatus = "failed"

	// StatusCompleted is an alias of StatusPosted kept for older clients.
	StatusCompleted TransactionStatus = "completed"
)

// transitions lists the legal moves out of each status.
var transitions = map[TransactionStatus][]TransactionStatus{
	StatusDraft:    {StatusPending, StatusCancelled},
	StatusPending:  {StatusApproved, StatusCancelled},
	StatusApproved: {StatusPosted, StatusFailed, StatusVoided},
	StatusPosted:   {StatusVoided, StatusReversed},
}

// Normalize folds aliases onto their canonical status.
func (s TransactionStatus) Normalize() TransactionStatus {
	if s == StatusCompleted {
		return StatusPosted
	}
	return s
}

// IsValid reports whether s (after normalisation) is a known status.
func (s TransactionStatus) IsValid() bool {
	switch s.Normalize() {
	case StatusDraft, StatusPending, StatusApproved, StatusPosted,
		StatusVoided, StatusReversed, StatusCancelled, StatusFailed:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is possible.
func (s TransactionStatus) IsTerminal() bool {
	return len(transitions[s.Normalize()]) == 0
}

// IsEditable reports whether financial fields may still change.
func (s TransactionStatus) IsEditable() bool {
	n := s.Normalize()
	return n == StatusDraft || n == StatusPending
}

// IsDeletable reports whether the record may be removed outright.
func (s TransactionStatus) IsDeletable() bool {
	return s.IsEditable()
}

// AffectsLedger reports whether the record counts towards account balances.
// Reversed originals still count; their reversal entry neutralises them.
func (s TransactionStatus) AffectsLedger() bool {
	n := s.Normalize()
	return n == StatusPosted || n == StatusReversed
}

// CanTransition reports whether the state machine allows from -> to.
func CanTransition(from, to TransactionStatus) bool {
	for _, next := range transitions[from.Normalize()] {
		if next == to.Normalize() {
			return true
		}
	}
	return false
}

// CanVoid reports whether the record can be voided.
func (t *Transaction) CanVoid() error {
	status := t.Status.Normalize()
	switch {
	case t.IsReversalEntry():
		return apperrors.NewConflictError("reversal entries cannot be voided; they are bound to the reversed original")
	case status == StatusVoided:
		return apperrors.NewConflictError("transaction is already voided")
	case t.IsReversed || status == StatusReversed:
		return apperrors.NewConflictError("transaction has been reversed and cannot be voided")
	case status != StatusPosted && status != StatusApproved:
		return apperrors.NewConflictError(fmt.Sprintf("transaction status is %s, expected posted or approved", status))
	}
	return nil
}

// CanReverse reports whether the record can be reversed.
func (t *Transaction) CanReverse() error {
	status := t.Status.Normalize()
	switch {
	case t.IsReversalEntry():
		return apperrors.NewConflictError("reversal entries cannot be reversed")
	case t.IsReversed || status == StatusReversed:
		return apperrors.NewConflictError("transaction is already reversed")
	case status == StatusVoided:
		return apperrors.NewConflictError("transaction has been voided and cannot be reversed")
	case status != StatusPosted:
		return apperrors.NewConflictError(fmt.Sprintf("transaction status is %s, expected posted", status))
	}
	return nil
}

// CanMutate reports whether the record may be edited or deleted.
func (t *Transaction) CanMutate() error {
	if !t.Status.IsEditable() {
		return apperrors.NewConflictError(fmt.Sprintf("transaction in status %s can no longer be modified", t.Status.Normalize()))
	}
	return nil
}

// TransitionTo moves the record to the given status and stamps the matching
// lifecycle fields. It does not persist anything.
func (t *Transaction) TransitionTo(to TransactionStatus, actor string, at time.Time) error {
	from := t.Status.Normalize()
	to = to.Normalize()
	if !CanTransition(from, to) {
		return apperrors.NewConflictError(fmt.Sprintf("cannot move transaction from %s to %s", from, to))
	}

	switch to {
	case StatusApproved:
		t.ApprovedBy, t.ApprovedAt = &actor, &at
	case StatusPosted:
		t.PostedBy, t.PostedAt = &actor, &at
	case StatusCancelled:
		t.CancelledBy, t.CancelledAt = &actor, &at
	case StatusVoided:
		t.VoidedBy, t.VoidedAt = &actor, &at
	case StatusReversed:
		t.ReversedBy, t.ReversedAt = &actor, &at
		t.IsReversed = true
	}

	t.Status = to
	t.Touch(actor, at)
	return nil
}
