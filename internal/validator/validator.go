// Package validator registers the ledger's custom tags with Gin's binding engine.
package validator

import (
	"reflect"
	"strings"

	"github.com/SscSPs/erp_finance_ledger/internal/core/domain"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		RegisterOn(v)
	}
}

// RegisterOn registers the custom validators on v.
func RegisterOn(v *validator.Validate) {
	v.RegisterTagNameFunc(wireName)
	_ = v.RegisterValidation("txn_type", validateTransactionType)
	_ = v.RegisterValidation("txn_status", validateTransactionStatus)
	_ = v.RegisterValidation("payment_method", validatePaymentMethod)
}

func validateTransactionType(fl validator.FieldLevel) bool {
	return domain.TransactionType(fl.Field().String()).IsValid()
}

func validateTransactionStatus(fl validator.FieldLevel) bool {
	return domain.TransactionStatus(fl.Field().String()).IsValid()
}

func validatePaymentMethod(fl validator.FieldLevel) bool {
	return domain.PaymentMethod(fl.Field().String()).IsValid()
}

// wireName reports fields under their json or form name so that binding
// errors line up with the domain validator's field names.
func wireName(fld reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return fld.Name
}
