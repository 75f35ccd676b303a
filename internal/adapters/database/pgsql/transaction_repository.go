package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/SscSPs/erp_finance_ledger/internal/apperrors"
	"github.com/SscSPs/erp_finance_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/erp_finance_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/erp_finance_ledger/internal/models"
	"github.com/SscSPs/erp_finance_ledger/internal/utils/mapping"
	"github.com/SscSPs/erp_finance_ledger/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// transactionColumns is the column order used by every insert and select.
var transactionColumns = []string{
	"transaction_id", "transaction_type", "category", "subcategory", "amount", "transaction_date",
	"account_from", "account_to", "description", "reference_number", "payment_method", "project_id", "notes",
	"status", "is_reversed", "reversal_of", "correction_of",
	"voided_by", "voided_at", "void_reason",
	"reversed_by", "reversed_at", "reverse_reason",
	"approved_by", "approved_at", "posted_by", "posted_at",
	"cancelled_by", "cancelled_at", "failure_reason",
	"version", "created_at", "created_by", "last_updated_at", "last_updated_by",
}

var (
	selectTransactionSQL = "SELECT " + strings.Join(transactionColumns, ", ") + " FROM finance_transactions"
	insertTransactionSQL = buildInsertSQL()
	updateTransactionSQL = buildUpdateSQL()
)

func buildInsertSQL() string {
	placeholders := make([]string, len(transactionColumns))
	for i := range transactionColumns {
		placeholders[i] = "$" + strconv.Itoa(i+1)
	}
	return "INSERT INTO finance_transactions (" + strings.Join(transactionColumns, ", ") +
		") VALUES (" + strings.Join(placeholders, ", ") + ");"
}

// buildUpdateSQL sets every column except the key and the creation audit columns.
// The arguments are the insert arguments followed by the expected version.
func buildUpdateSQL() string {
	sets := make([]string, 0, len(transactionColumns))
	for i, col := range transactionColumns {
		switch col {
		case "transaction_id", "created_at", "created_by":
			continue
		}
		sets = append(sets, col+" = $"+strconv.Itoa(i+1))
	}
	return "UPDATE finance_transactions SET " + strings.Join(sets, ", ") +
		" WHERE transaction_id = $1 AND version = $" + strconv.Itoa(len(transactionColumns)+1) + ";"
}

func transactionArgs(m models.Transaction) []any {
	return []any{
		m.TransactionID, m.Type, m.Category, m.Subcategory, m.Amount, m.TransactionDate,
		m.AccountFrom, m.AccountTo, m.Description, m.ReferenceNumber, m.PaymentMethod, m.ProjectID, m.Notes,
		m.Status, m.IsReversed, m.ReversalOf, m.CorrectionOf,
		m.VoidedBy, m.VoidedAt, m.VoidReason,
		m.ReversedBy, m.ReversedAt, m.ReverseReason,
		m.ApprovedBy, m.ApprovedAt, m.PostedBy, m.PostedAt,
		m.CancelledBy, m.CancelledAt, m.FailureReason,
		m.Version, m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	}
}

func scanTransaction(row pgx.Row) (models.Transaction, error) {
	var m models.Transaction
	err := row.Scan(
		&m.TransactionID, &m.Type, &m.Category, &m.Subcategory, &m.Amount, &m.TransactionDate,
		&m.AccountFrom, &m.AccountTo, &m.Description, &m.ReferenceNumber, &m.PaymentMethod, &m.ProjectID, &m.Notes,
		&m.Status, &m.IsReversed, &m.ReversalOf, &m.CorrectionOf,
		&m.VoidedBy, &m.VoidedAt, &m.VoidReason,
		&m.ReversedBy, &m.ReversedAt, &m.ReverseReason,
		&m.ApprovedBy, &m.ApprovedAt, &m.PostedBy, &m.PostedAt,
		&m.CancelledBy, &m.CancelledAt, &m.FailureReason,
		&m.Version, &m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	return m, err
}

func collectTransactions(rows pgx.Rows) ([]models.Transaction, error) {
	defer rows.Close()
	result := make([]models.Transaction, 0)
	for rows.Next() {
		m, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	return result, rows.Err()
}

// PgxTransactionRepository is the PostgreSQL LedgerStore.
type PgxTransactionRepository struct {
	BaseRepository
}

// newPgxTransactionRepository creates a new repository for finance transactions.
func newPgxTransactionRepository(pool *pgxpool.Pool) *PgxTransactionRepository {
	return &PgxTransactionRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxTransactionRepository implements portsrepo.TransactionRepositoryFacade
var _ portsrepo.TransactionRepositoryFacade = (*PgxTransactionRepository)(nil)

func (r *PgxTransactionRepository) insert(ctx context.Context, q querier, txn domain.Transaction) error {
	m := mapping.ToModelTransaction(txn)
	if _, err := q.Exec(ctx, insertTransactionSQL, transactionArgs(m)...); err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewAppError(500, "failed to insert transaction "+txn.TransactionID, errors.Join(apperrors.ErrDuplicate, err))
		}
		return apperrors.NewAppError(500, "failed to insert transaction "+txn.TransactionID, err)
	}
	return nil
}

// update writes txn if the stored version equals expectedVersion and bumps it.
func (r *PgxTransactionRepository) update(ctx context.Context, q querier, txn domain.Transaction, expectedVersion int64) error {
	txn.Version = expectedVersion + 1
	args := append(transactionArgs(mapping.ToModelTransaction(txn)), expectedVersion)

	cmdTag, err := q.Exec(ctx, updateTransactionSQL, args...)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update transaction "+txn.TransactionID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return r.explainMissedWrite(ctx, q, txn.TransactionID, expectedVersion)
	}
	return nil
}

// explainMissedWrite tells a missing row apart from a stale version.
func (r *PgxTransactionRepository) explainMissedWrite(ctx context.Context, q querier, transactionID string, expectedVersion int64) error {
	var current int64
	err := q.QueryRow(ctx, `SELECT version FROM finance_transactions WHERE transaction_id = $1;`, transactionID).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFoundError("transaction " + transactionID + " not found")
	}
	if err != nil {
		return apperrors.NewAppError(500, "failed to read version of transaction "+transactionID, err)
	}
	return apperrors.NewConflictError(
		fmt.Sprintf("transaction %s was modified concurrently (version %d, expected %d)", transactionID, current, expectedVersion))
}

// CreateTransaction persists a new record.
func (r *PgxTransactionRepository) CreateTransaction(ctx context.Context, txn domain.Transaction) error {
	return r.insert(ctx, r.Pool, txn)
}

// UpdateTransaction replaces the record if the stored version equals expectedVersion.
func (r *PgxTransactionRepository) UpdateTransaction(ctx context.Context, txn domain.Transaction, expectedVersion int64) error {
	return r.update(ctx, r.Pool, txn, expectedVersion)
}

// DeleteTransaction removes the record if the stored version equals expectedVersion.
func (r *PgxTransactionRepository) DeleteTransaction(ctx context.Context, transactionID string, expectedVersion int64) error {
	cmdTag, err := r.Pool.Exec(ctx,
		`DELETE FROM finance_transactions WHERE transaction_id = $1 AND version = $2;`,
		transactionID, expectedVersion)
	if err != nil {
		return apperrors.NewAppError(500, "failed to delete transaction "+transactionID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return r.explainMissedWrite(ctx, r.Pool, transactionID, expectedVersion)
	}
	return nil
}

// SaveReversal updates the original and inserts both generated entries in one database transaction.
func (r *PgxTransactionRepository) SaveReversal(ctx context.Context, original domain.Transaction, expectedVersion int64, reversal, correction domain.Transaction) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	// Will be ignored if transaction is committed successfully
	defer r.Rollback(ctx, tx)

	if err := r.update(ctx, tx, original, expectedVersion); err != nil {
		return err
	}
	if err := r.insert(ctx, tx, reversal); err != nil {
		return err
	}
	if err := r.insert(ctx, tx, correction); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// FindTransactionByID retrieves a record by its ID.
func (r *PgxTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	m, err := scanTransaction(r.Pool.QueryRow(ctx, selectTransactionSQL+" WHERE transaction_id = $1;", transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("transaction " + transactionID + " not found")
		}
		return nil, apperrors.NewAppError(500, "failed to find transaction by ID "+transactionID, err)
	}
	txn := mapping.ToDomainTransaction(m)
	return &txn, nil
}

// filterClause renders the WHERE conditions for filter, appending to args.
func filterClause(filter domain.TransactionFilter, withStatus bool, args []any) (string, []any) {
	conds := []string{"TRUE"}
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, strings.ReplaceAll(cond, "?", "$"+strconv.Itoa(len(args))))
	}
	if filter.Type != "" {
		add("transaction_type = ?", string(filter.Type))
	}
	if filter.Category != "" {
		add("category = ?", filter.Category)
	}
	if withStatus && filter.Status != "" {
		add("status = ?", string(filter.Status.Normalize()))
	}
	if filter.ProjectID != "" {
		add("project_id = ?", filter.ProjectID)
	}
	if filter.AccountID != "" {
		add("(account_from = ? OR account_to = ?)", filter.AccountID)
	}
	if filter.StartDate != nil {
		add("transaction_date >= ?", domain.TruncateToDate(*filter.StartDate))
	}
	if filter.EndDate != nil {
		add("transaction_date <= ?", domain.TruncateToDate(*filter.EndDate))
	}
	return strings.Join(conds, " AND "), args
}

// ListTransactions retrieves a page of matching transactions using token-based pagination.
func (r *PgxTransactionRepository) ListTransactions(ctx context.Context, filter domain.TransactionFilter, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	// We fetch one extra item to determine if there's a next page.
	fetchLimit := limit + 1

	where, args := filterClause(filter, true, nil)
	if nextToken != nil && *nextToken != "" {
		cursor, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		args = append(args, cursor.RecordDate, cursor.CreatedAt, cursor.TransactionID)
		n := len(args)
		where += " AND (transaction_date, created_at, transaction_id) < ($" + strconv.Itoa(n-2) +
			", $" + strconv.Itoa(n-1) + ", $" + strconv.Itoa(n) + ")"
	}
	args = append(args, fetchLimit)
	query := selectTransactionSQL + " WHERE " + where +
		" ORDER BY transaction_date DESC, created_at DESC, transaction_id DESC LIMIT $" + strconv.Itoa(len(args)) + ";"

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query transactions", err)
	}
	results, err := collectTransactions(rows)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to scan transaction rows", err)
	}

	var nextTokenVal *string
	if len(results) > limit {
		last := results[limit-1]
		token := pagination.EncodeToken(pagination.Cursor{RecordDate: last.TransactionDate, CreatedAt: last.CreatedAt, TransactionID: last.TransactionID})
		nextTokenVal = &token
		results = results[:limit]
	}
	return mapping.ToDomainTransactionSlice(results), nextTokenVal, nil
}

// FindLinkedTransactions returns the reversal and correction entries of originalID.
func (r *PgxTransactionRepository) FindLinkedTransactions(ctx context.Context, originalID string) ([]domain.Transaction, error) {
	rows, err := r.Pool.Query(ctx,
		selectTransactionSQL+" WHERE reversal_of = $1 OR correction_of = $1 ORDER BY created_at;", originalID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query entries linked to "+originalID, err)
	}
	results, err := collectTransactions(rows)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to scan entries linked to "+originalID, err)
	}
	return mapping.ToDomainTransactionSlice(results), nil
}

// FindLedgerEntries returns every posted or reversed record matching the filter.
func (r *PgxTransactionRepository) FindLedgerEntries(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	where, args := filterClause(filter, false, nil)
	args = append(args, []string{string(domain.StatusPosted), string(domain.StatusReversed)})
	query := selectTransactionSQL + " WHERE " + where + " AND status = ANY($" + strconv.Itoa(len(args)) + ")" +
		" ORDER BY transaction_date DESC, created_at DESC, transaction_id DESC;"

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query ledger entries", err)
	}
	results, err := collectTransactions(rows)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to scan ledger entries", err)
	}
	return mapping.ToDomainTransactionSlice(results), nil
}
