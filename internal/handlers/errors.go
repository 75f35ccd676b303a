package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/SscSPs/erp_finance_ledger/internal/apperrors"
	"github.com/SscSPs/erp_finance_ledger/internal/dto"
	"github.com/SscSPs/erp_finance_ledger/internal/middleware"
)

// respondWithError maps a service error onto a status code and JSON body.
// action completes the generic "Failed to ..." message used for 5xx responses.
func respondWithError(c *gin.Context, err error, action string) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	status := http.StatusInternalServerError
	body := dto.ErrorResponse{Error: "Failed to " + action}

	switch {
	case errors.Is(err, apperrors.ErrValidation):
		status = http.StatusBadRequest
		body.Error = "Validation failed"
		body.Fields = apperrors.FieldsOf(err)
		if body.Fields == nil {
			body.Error = messageOf(err)
		}
	case errors.Is(err, apperrors.ErrNotFound):
		status = http.StatusNotFound
		body.Error = messageOf(err)
	case errors.Is(err, apperrors.ErrConflict):
		status = http.StatusConflict
		body.Error = messageOf(err)
	case errors.Is(err, apperrors.ErrUnauthorized):
		status = http.StatusUnauthorized
		body.Error = "Unauthorized"
	case errors.Is(err, apperrors.ErrPersistence):
		status = http.StatusServiceUnavailable
		body.Error = "Storage unavailable, nothing was saved"
	}

	if status >= http.StatusInternalServerError {
		logger.Error("Failed to "+action, slog.String("error", err.Error()), slog.Int("status", status))
	} else {
		logger.Warn("Request rejected", slog.String("action", action), slog.String("error", err.Error()), slog.Int("status", status))
	}
	c.JSON(status, body)
}

// messageOf returns the client-facing message of err without wrapped causes.
func messageOf(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

// respondWithBindingError reports a request that could not be decoded or failed
// its binding rules.
func respondWithBindingError(c *gin.Context, err error) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	logger.Warn("Failed to bind request", slog.String("error", err.Error()))

	var vErrs validator.ValidationErrors
	if errors.As(err, &vErrs) {
		fields := make(map[string]string, len(vErrs))
		for _, fe := range vErrs {
			fields[fieldKey(fe)] = bindingMessage(fe)
		}
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Fields: fields})
		return
	}
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request format: " + err.Error()})
}

// fieldKey is the dotted path of fe below the request struct, e.g.
// correctedData.type, matching the keys the services report.
func fieldKey(fe validator.FieldError) string {
	if _, path, ok := strings.Cut(fe.Namespace(), "."); ok {
		return path
	}
	return fe.Field()
}

func bindingMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "max":
		return fmt.Sprintf("maximum %s characters", fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "txn_type":
		return "type must be one of income, expense, transfer"
	case "txn_status":
		return "status is not a known transaction status"
	case "payment_method":
		return "paymentMethod must be one of cash, bank_transfer, check, credit_card, other"
	}
	return fmt.Sprintf("%s failed the %s rule", fe.Field(), fe.Tag())
}

// actorFrom returns the authenticated user, answering 401 when there is none.
func actorFrom(c *gin.Context) (string, bool) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		middleware.GetLoggerFromCtx(c.Request.Context()).Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Unauthorized"})
		return "", false
	}
	return userID, true
}
