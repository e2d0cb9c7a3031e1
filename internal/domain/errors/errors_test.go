package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_Classes(t *testing.T) {
	assert.True(t, IsNotFound(NotFoundError("wallet")))
	assert.True(t, IsValidation(ValidationError("amount", "amount must be positive")))
	assert.True(t, IsConflict(ConflictError("budget", "already exists")))
	assert.True(t, IsExternalService(ExternalServiceError("gemini", errors.New("timeout"))))
	assert.True(t, IsPersistence(PersistenceError("insert transaction", errors.New("conn reset"))))
	assert.False(t, IsNotFound(ValidationError("x", "y")))
}

func TestDomainError_CodeAndWrapping(t *testing.T) {
	err := fmt.Errorf("load wallet: %w", NotFoundError("wallet"))
	assert.True(t, IsNotFound(err))
	assert.Equal(t, "WALLET_NOT_FOUND", GetErrorCode(err))
	assert.Equal(t, "INTERNAL_ERROR", GetErrorCode(errors.New("plain")))
}

func TestDomainError_CauseIsReachable(t *testing.T) {
	cause := errors.New("connection refused")
	err := PersistenceError("update wallet", cause)

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrPersistence)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, "failed to update wallet", err.Message)
}

func TestDomainError_Retryable(t *testing.T) {
	assert.True(t, ExternalServiceError("openai", nil).IsRetryable())
	assert.False(t, NotFoundError("user").IsRetryable())
}
