package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haulzy/haulzy-backend/internal/checkout/domain"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisPendingStore(t *testing.T) {
	mr, client := setupRedis(t)
	store := NewRedisPendingStore(client)
	ctx := context.Background()

	p := domain.Pending{
		Kind:     domain.KindSignup,
		Form:     &domain.SignupForm{Email: "a@b.co", FirstName: "A"},
		PlanID:   domain.PlanBasic,
		Interval: domain.IntervalYear,
	}
	require.NoError(t, store.Save(ctx, "cs_1", p, time.Hour))
	assert.True(t, mr.Exists("haulzy:signup:cs_1"))
	assert.Equal(t, time.Hour, mr.TTL("haulzy:signup:cs_1"))

	got, err := store.Load(ctx, "cs_1")
	require.NoError(t, err)
	assert.Equal(t, "a@b.co", got.Form.Email)
	assert.Equal(t, domain.IntervalYear, got.Interval)

	require.NoError(t, store.Delete(ctx, "cs_1"))
	_, err = store.Load(ctx, "cs_1")
	assert.ErrorIs(t, err, domain.ErrPendingSignupNotFound)

	t.Run("expired entries are gone", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, "cs_2", p, time.Minute))
		mr.FastForward(2 * time.Minute)
		_, err := store.Load(ctx, "cs_2")
		assert.ErrorIs(t, err, domain.ErrPendingSignupNotFound)
	})

	t.Run("redis outage is an error", func(t *testing.T) {
		mr.Close()
		_, err := store.Load(ctx, "cs_1")
		require.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrPendingSignupNotFound)
	})
}

func TestMemoryPendingStore(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryPendingStore()
	store.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "cs_1", domain.Pending{PlanID: domain.PlanOnetime}, time.Minute))
	got, err := store.Load(ctx, "cs_1")
	require.NoError(t, err)
	assert.Equal(t, domain.PlanOnetime, got.PlanID)

	now = now.Add(2 * time.Minute)
	_, err = store.Load(ctx, "cs_1")
	assert.ErrorIs(t, err, domain.ErrPendingSignupNotFound)
}
