package wallet

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	domainerrors "github.com/fintrack/fintrack_service/internal/domain/errors"
	"github.com/fintrack/fintrack_service/internal/infrastructure/repositories/memory"
	"github.com/fintrack/fintrack_service/pkg/keylock"
)

type invalidations struct{ users []uuid.UUID }

func (i *invalidations) Invalidate(_ context.Context, userID uuid.UUID) {
	i.users = append(i.users, userID)
}

func TestEnsureWallet_Idempotent(t *testing.T) {
	store := memory.NewStore()
	svc := NewService(store.Wallets(), keylock.New(), zap.NewNop())
	userID := uuid.New()

	first, err := svc.EnsureWallet(context.Background(), userID)
	require.NoError(t, err)
	assert.True(t, first.Balance.IsZero())

	second, err := svc.EnsureWallet(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestSetBalance(t *testing.T) {
	store := memory.NewStore()
	inv := &invalidations{}
	svc := NewService(store.Wallets(), keylock.New(), zap.NewNop()).WithCacheInvalidator(inv)
	userID := uuid.New()
	ctx := context.Background()

	_, err := svc.SetBalance(ctx, userID, decimal.NewFromInt(10))
	assert.True(t, domainerrors.IsNotFound(err))

	_, err = svc.EnsureWallet(ctx, userID)
	require.NoError(t, err)

	w, err := svc.SetBalance(ctx, userID, decimal.RequireFromString("250.50"))
	require.NoError(t, err)
	assert.Equal(t, "250.5", w.Balance.String())
	assert.Equal(t, []uuid.UUID{userID}, inv.users)
}

func TestDeleteWallet(t *testing.T) {
	store := memory.NewStore()
	inv := &invalidations{}
	svc := NewService(store.Wallets(), keylock.New(), zap.NewNop()).WithCacheInvalidator(inv)
	userID := uuid.New()
	ctx := context.Background()

	assert.True(t, domainerrors.IsNotFound(svc.DeleteWallet(ctx, userID)))

	_, err := svc.EnsureWallet(ctx, userID)
	require.NoError(t, err)
	require.NoError(t, svc.DeleteWallet(ctx, userID))
	assert.Equal(t, []uuid.UUID{userID}, inv.users)

	_, err = svc.GetWallet(ctx, userID)
	assert.True(t, domainerrors.IsNotFound(err))
}
