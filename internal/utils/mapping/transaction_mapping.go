package mapping

import (
	"github.com/SscSPs/erp_finance_ledger/internal/core/domain"
	"github.com/SscSPs/erp_finance_ledger/internal/models"
)

// nullable turns an empty string into a NULL column value.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// ToModelTransaction converts a domain Transaction to a model Transaction
func ToModelTransaction(d domain.Transaction) models.Transaction {
	return models.Transaction{
		TransactionID:   d.TransactionID,
		Type:            string(d.Type),
		Category:        d.Category,
		Subcategory:     nullable(d.Subcategory),
		Amount:          d.Amount,
		TransactionDate: d.Date,
		AccountFrom:     nullable(d.AccountFrom),
		AccountTo:       nullable(d.AccountTo),
		Description:     d.Description,
		ReferenceNumber: nullable(d.ReferenceNumber),
		PaymentMethod:   string(d.PaymentMethod),
		ProjectID:       nullable(d.ProjectID),
		Notes:           nullable(d.Notes),
		Status:          string(d.Status.Normalize()),
		IsReversed:      d.IsReversed,
		ReversalOf:      d.ReversalOf,
		CorrectionOf:    d.CorrectionOf,
		VoidedBy:        d.VoidedBy,
		VoidedAt:        d.VoidedAt,
		VoidReason:      d.VoidReason,
		ReversedBy:      d.ReversedBy,
		ReversedAt:      d.ReversedAt,
		ReverseReason:   d.ReverseReason,
		ApprovedBy:      d.ApprovedBy,
		ApprovedAt:      d.ApprovedAt,
		PostedBy:        d.PostedBy,
		PostedAt:        d.PostedAt,
		CancelledBy:     d.CancelledBy,
		CancelledAt:     d.CancelledAt,
		FailureReason:   d.FailureReason,
		Version:         d.Version,
		AuditFields:     ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainTransaction converts a model Transaction to a domain Transaction
func ToDomainTransaction(m models.Transaction) domain.Transaction {
	return domain.Transaction{
		TransactionID:   m.TransactionID,
		Type:            domain.TransactionType(m.Type),
		Category:        m.Category,
		Subcategory:     deref(m.Subcategory),
		Amount:          m.Amount,
		Date:            domain.TruncateToDate(m.TransactionDate),
		AccountFrom:     deref(m.AccountFrom),
		AccountTo:       deref(m.AccountTo),
		Description:     m.Description,
		ReferenceNumber: deref(m.ReferenceNumber),
		PaymentMethod:   domain.PaymentMethod(m.PaymentMethod),
		ProjectID:       deref(m.ProjectID),
		Notes:           deref(m.Notes),
		Status:          domain.TransactionStatus(m.Status).Normalize(),
		IsReversed:      m.IsReversed,
		ReversalOf:      m.ReversalOf,
		CorrectionOf:    m.CorrectionOf,
		VoidedBy:        m.VoidedBy,
		VoidedAt:        m.VoidedAt,
		VoidReason:      m.VoidReason,
		ReversedBy:      m.ReversedBy,
		ReversedAt:      m.ReversedAt,
		ReverseReason:   m.ReverseReason,
		ApprovedBy:      m.ApprovedBy,
		ApprovedAt:      m.ApprovedAt,
		PostedBy:        m.PostedBy,
		PostedAt:        m.PostedAt,
		CancelledBy:     m.CancelledBy,
		CancelledAt:     m.CancelledAt,
		FailureReason:   m.FailureReason,
		Version:         m.Version,
		AuditFields:     ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainTransactionSlice converts a slice of model Transactions to a slice of domain Transactions
func ToDomainTransactionSlice(ms []models.Transaction) []domain.Transaction {
	ds := make([]domain.Transaction, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainTransaction(m)
	}
	return ds
}
