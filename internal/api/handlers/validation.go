package handlers

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/fintrack/fintrack_service/internal/domain/entities"
)

// RegisterValidators installs the custom binding tags used by request structs.
// It is safe to call more than once.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	return v.RegisterValidation("txtype", validateTransactionType)
}

// txtype accepts "income" or "expense" in any case
func validateTransactionType(fl validator.FieldLevel) bool {
	return entities.TransactionType(strings.ToLower(strings.TrimSpace(fl.Field().String()))).IsValid()
}
