package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/SscSPs/erp_finance_ledger/internal/apperrors"
	"github.com/SscSPs/erp_finance_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/erp_finance_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/erp_finance_ledger/internal/utils/pagination"
)

// Write operations reported to a FaultInjector.
const (
	OpCreate           = "create"
	OpUpdate           = "update"
	OpDelete           = "delete"
	OpUpdateOriginal   = "update_original"
	OpInsertReversal   = "insert_reversal"
	OpInsertCorrection = "insert_correction"
)

// FaultInjector is called before each staged write. A non-nil error aborts the
// whole call and nothing staged so far becomes visible.
type FaultInjector func(op string, txn domain.Transaction) error

// Option configures a TransactionStore.
type Option func(*TransactionStore)

// WithFaultInjector installs a FaultInjector, used by tests to simulate storage failures.
func WithFaultInjector(fi FaultInjector) Option {
	return func(s *TransactionStore) {
		s.inject = fi
	}
}

// TransactionStore is an in-memory LedgerStore. Writes are staged and applied
// under a single lock, which gives the same all-or-nothing behaviour as a
// database transaction. Suitable for single-instance deployments and tests.
type TransactionStore struct {
	mu      sync.RWMutex
	records map[string]domain.Transaction
	inject  FaultInjector
}

// NewTransactionStore creates an empty in-memory store.
func NewTransactionStore(opts ...Option) *TransactionStore {
	s := &TransactionStore{records: make(map[string]domain.Transaction)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ portsrepo.TransactionRepositoryFacade = (*TransactionStore)(nil)

// stagedWrite is one pending mutation. A nil txn means delete.
type stagedWrite struct {
	id  string
	txn *domain.Transaction
}

func (s *TransactionStore) stage(op string, txn domain.Transaction) error {
	if s.inject == nil {
		return nil
	}
	if err := s.inject(op, txn); err != nil {
		return apperrors.NewPersistenceError("failed to "+op+" transaction "+txn.TransactionID, err)
	}
	return nil
}

// commit applies every staged write. Callers hold s.mu.
func (s *TransactionStore) commit(writes []stagedWrite) {
	for _, w := range writes {
		if w.txn == nil {
			delete(s.records, w.id)
			continue
		}
		s.records[w.id] = *w.txn
	}
}

// checkVersion returns the stored record if its version equals expected. Callers hold s.mu.
func (s *TransactionStore) checkVersion(id string, expected int64) (domain.Transaction, error) {
	current, ok := s.records[id]
	if !ok {
		return domain.Transaction{}, apperrors.NewNotFoundError("transaction " + id + " not found")
	}
	if current.Version != expected {
		return domain.Transaction{}, apperrors.NewConflictError(
			fmt.Sprintf("transaction %s was modified concurrently (version %d, expected %d)", id, current.Version, expected))
	}
	return current, nil
}

func persistenceErr(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return apperrors.NewPersistenceError("storage call aborted", err)
	}
	return nil
}

// CreateTransaction persists a new record.
func (s *TransactionStore) CreateTransaction(ctx context.Context, txn domain.Transaction) error {
	if err := persistenceErr(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[txn.TransactionID]; exists {
		return apperrors.NewPersistenceError("failed to insert transaction "+txn.TransactionID, apperrors.ErrDuplicate)
	}
	if err := s.stage(OpCreate, txn); err != nil {
		return err
	}
	s.commit([]stagedWrite{{id: txn.TransactionID, txn: &txn}})
	return nil
}

// UpdateTransaction replaces the record if the stored version equals expectedVersion.
func (s *TransactionStore) UpdateTransaction(ctx context.Context, txn domain.Transaction, expectedVersion int64) error {
	if err := persistenceErr(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.checkVersion(txn.TransactionID, expectedVersion); err != nil {
		return err
	}
	txn.Version = expectedVersion + 1
	if err := s.stage(OpUpdate, txn); err != nil {
		return err
	}
	s.commit([]stagedWrite{{id: txn.TransactionID, txn: &txn}})
	return nil
}

// DeleteTransaction removes the record if the stored version equals expectedVersion.
func (s *TransactionStore) DeleteTransaction(ctx context.Context, transactionID string, expectedVersion int64) error {
	if err := persistenceErr(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.checkVersion(transactionID, expectedVersion)
	if err != nil {
		return err
	}
	if err := s.stage(OpDelete, current); err != nil {
		return err
	}
	s.commit([]stagedWrite{{id: transactionID}})
	return nil
}

// SaveReversal writes the reversed original and both generated entries, or nothing.
func (s *TransactionStore) SaveReversal(ctx context.Context, original domain.Transaction, expectedVersion int64, reversal, correction domain.Transaction) error {
	if err := persistenceErr(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.checkVersion(original.TransactionID, expectedVersion); err != nil {
		return err
	}
	original.Version = expectedVersion + 1

	writes := make([]stagedWrite, 0, 3)
	steps := []struct {
		op  string
		txn domain.Transaction
	}{
		{OpUpdateOriginal, original},
		{OpInsertReversal, reversal},
		{OpInsertCorrection, correction},
	}
	for _, step := range steps {
		txn := step.txn
		if step.op != OpUpdateOriginal {
			if _, exists := s.records[txn.TransactionID]; exists {
				return apperrors.NewPersistenceError("failed to insert transaction "+txn.TransactionID, apperrors.ErrDuplicate)
			}
		}
		if err := s.stage(step.op, txn); err != nil {
			return err
		}
		if err := persistenceErr(ctx); err != nil {
			return err
		}
		writes = append(writes, stagedWrite{id: txn.TransactionID, txn: &txn})
	}

	s.commit(writes)
	return nil
}

// FindTransactionByID retrieves a record by id.
func (s *TransactionStore) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	if err := persistenceErr(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	txn, ok := s.records[transactionID]
	if !ok {
		return nil, apperrors.NewNotFoundError("transaction " + transactionID + " not found")
	}
	return &txn, nil
}

// ListTransactions returns a page of matching records ordered by date then creation time, newest first.
func (s *TransactionStore) ListTransactions(ctx context.Context, filter domain.TransactionFilter, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	if err := persistenceErr(ctx); err != nil {
		return nil, nil, err
	}
	if limit <= 0 {
		limit = 20
	}

	hasCursor := nextToken != nil && *nextToken != ""
	var cursor pagination.Cursor
	if hasCursor {
		c, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", err)
		}
		cursor = c
	}

	s.mu.RLock()
	matched := make([]domain.Transaction, 0)
	for _, txn := range s.records {
		if !matches(txn, filter, true) {
			continue
		}
		if hasCursor && !after(txn, cursor) {
			continue
		}
		matched = append(matched, txn)
	}
	s.mu.RUnlock()

	sortNewestFirst(matched)

	var next *string
	if len(matched) > limit {
		last := matched[limit-1]
		token := pagination.EncodeToken(pagination.Cursor{RecordDate: last.Date, CreatedAt: last.CreatedAt, TransactionID: last.TransactionID})
		next = &token
		matched = matched[:limit]
	}
	return matched, next, nil
}

// FindLinkedTransactions returns the reversal and correction entries of originalID.
func (s *TransactionStore) FindLinkedTransactions(ctx context.Context, originalID string) ([]domain.Transaction, error) {
	if err := persistenceErr(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	linked := make([]domain.Transaction, 0, 2)
	for _, txn := range s.records {
		if (txn.ReversalOf != nil && *txn.ReversalOf == originalID) ||
			(txn.CorrectionOf != nil && *txn.CorrectionOf == originalID) {
			linked = append(linked, txn)
		}
	}
	sortNewestFirst(linked)
	return linked, nil
}

// FindLedgerEntries returns every posted or reversed record matching the filter.
func (s *TransactionStore) FindLedgerEntries(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	if err := persistenceErr(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]domain.Transaction, 0)
	for _, txn := range s.records {
		if txn.Status.AffectsLedger() && matches(txn, filter, false) {
			entries = append(entries, txn)
		}
	}
	sortNewestFirst(entries)
	return entries, nil
}

func matches(txn domain.Transaction, f domain.TransactionFilter, withStatus bool) bool {
	switch {
	case f.Type != "" && txn.Type != f.Type:
		return false
	case f.Category != "" && txn.Category != f.Category:
		return false
	case withStatus && f.Status != "" && txn.Status.Normalize() != f.Status.Normalize():
		return false
	case f.ProjectID != "" && txn.ProjectID != f.ProjectID:
		return false
	case f.AccountID != "" && txn.AccountFrom != f.AccountID && txn.AccountTo != f.AccountID:
		return false
	case f.StartDate != nil && txn.Date.Before(domain.TruncateToDate(*f.StartDate)):
		return false
	case f.EndDate != nil && txn.Date.After(domain.TruncateToDate(*f.EndDate)):
		return false
	}
	return true
}

// after reports whether txn sorts strictly after the cursor in newest-first order.
// It must agree with sortNewestFirst.
func after(txn domain.Transaction, c pagination.Cursor) bool {
	if !txn.Date.Equal(c.RecordDate) {
		return txn.Date.Before(c.RecordDate)
	}
	if !txn.CreatedAt.Equal(c.CreatedAt) {
		return txn.CreatedAt.Before(c.CreatedAt)
	}
	return txn.TransactionID < c.TransactionID
}

func sortNewestFirst(txns []domain.Transaction) {
	sort.Slice(txns, func(i, j int) bool {
		if !txns[i].Date.Equal(txns[j].Date) {
			return txns[i].Date.After(txns[j].Date)
		}
		if !txns[i].CreatedAt.Equal(txns[j].CreatedAt) {
			return txns[i].CreatedAt.After(txns[j].CreatedAt)
		}
		return txns[i].TransactionID > txns[j].TransactionID
	})
}
