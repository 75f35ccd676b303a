package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/SscSPs/erp_finance_ledger/internal/apperrors"
	"github.com/SscSPs/erp_finance_ledger/internal/middleware"
)

// DefaultPersistenceTimeout bounds a single store call when none is configured.
const DefaultPersistenceTimeout = 5 * time.Second

// BaseService provides common functionality for all services
type BaseService struct {
	PersistTimeout time.Duration
}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	logger := middleware.GetLoggerFromCtx(ctx)
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	args := make([]any, 0, len(keyvals)+1)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	logger.Error(msg, args...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Debug(msg, keyvals...)
}

// WithStoreTimeout runs fn under the persistence timeout. A call that ran out of
// time is reported as a persistence error.
func (s *BaseService) WithStoreTimeout(ctx context.Context, fn func(ctx context.Context) error) error {
	timeout := s.PersistTimeout
	if timeout <= 0 {
		timeout = DefaultPersistenceTimeout
	}
	storeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := fn(storeCtx)
	if err == nil {
		return nil
	}
	if errors.Is(storeCtx.Err(), context.DeadlineExceeded) && !errors.Is(err, apperrors.ErrPersistence) {
		return apperrors.NewPersistenceError("storage call timed out", err)
	}
	return err
}
