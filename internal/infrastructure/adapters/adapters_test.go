package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/fintrack/fintrack_service/internal/domain/entities"
)

func TestNewEmailService_Validation(t *testing.T) {
	_, err := NewEmailService(zap.NewNop(), EmailServiceConfig{Provider: "sendgrid"})
	assert.Error(t, err)

	_, err = NewEmailService(zap.NewNop(), EmailServiceConfig{Provider: "pigeon"})
	assert.Error(t, err)

	svc, err := NewEmailService(zap.NewNop(), EmailServiceConfig{Provider: "SendGrid", APIKey: "k", FromEmail: "noreply@example.com"})
	require.NoError(t, err)
	assert.NotNil(t, svc.client)
}

func TestEmailService_LogProvider(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	svc, err := NewEmailService(zap.New(core), EmailServiceConfig{})
	require.NoError(t, err)

	err = svc.NotifyBudgetExceeded(context.Background(),
		&entities.User{Name: "Ada", Email: "ada@example.com"},
		&entities.BudgetEntry{Name: "Food", Limit: decimal.NewFromInt(100), Spent: decimal.NewFromInt(130)})
	require.NoError(t, err)

	entries := logs.FilterField(zap.String("subject", "Budget exceeded: Food")).All()
	assert.Len(t, entries, 1)
}

func TestLogPublisher(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	p := NewLogPublisher(zap.New(core))

	err := p.PublishTransactionEvent(context.Background(), &entities.TransactionEvent{
		Kind:       entities.TransactionEventCreated,
		UserID:     uuid.New(),
		Balance:    decimal.NewFromInt(50),
		OccurredAt: time.Now(),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, logs.FilterField(zap.String("kind", entities.TransactionEventCreated)).Len())
}
