package kv

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"social-publisher/services/publisher/internal/entity"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestPauseStore_DefaultsToUnpaused(t *testing.T) {
	_, client := setupRedis(t)
	store := NewPauseStore(client)

	state, err := store.Get(context.Background(), entity.GlobalScope)
	require.NoError(t, err)
	assert.False(t, state.Paused)
	assert.Equal(t, entity.GlobalScope, state.Scope)
	assert.Nil(t, state.PausedAt)
}

func TestPauseStore_RoundTrip(t *testing.T) {
	mr, client := setupRedis(t)
	store := NewPauseStore(client)
	ctx := context.Background()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	scope := entity.PlatformScope(entity.PlatformInstagram)
	require.NoError(t, store.Set(ctx, &entity.PauseState{
		Scope:       scope,
		Paused:      true,
		Reason:      "token expired",
		Actor:       "error-monitor",
		PausedAt:    &now,
		LastUpdated: &now,
	}))

	assert.Equal(t, "1", mr.HGet("pause:platform:instagram", "paused"))

	state, err := store.Get(ctx, scope)
	require.NoError(t, err)
	assert.True(t, state.Paused)
	assert.Equal(t, "token expired", state.Reason)
	assert.Equal(t, "error-monitor", state.Actor)
	require.NotNil(t, state.PausedAt)
	assert.True(t, now.Equal(*state.PausedAt))
}

func TestLockStore_AcquireIsExclusive(t *testing.T) {
	_, client := setupRedis(t)
	store := NewLockStore(client)
	ctx := context.Background()
	now := time.Now()

	lock, ok, err := store.Acquire(ctx, "post-1", entity.PlatformInstagram, time.Minute, now)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "publish_lock:post-1:instagram", lock.Key)
	assert.Equal(t, now.Add(time.Minute), lock.ExpiresAt)

	second, ok, err := store.Acquire(ctx, "post-1", entity.PlatformInstagram, time.Minute, now)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, second)

	_, ok, err = store.Acquire(ctx, "post-1", entity.PlatformFacebook, time.Minute, now)
	require.NoError(t, err)
	assert.True(t, ok, "locks are per platform")

	holder, err := client.Get(ctx, lockKey("post-1", entity.PlatformInstagram)).Result()
	require.NoError(t, err)
	assert.Equal(t, lock.ID, holder)
}

func TestLockStore_ReleaseThenReacquire(t *testing.T) {
	_, client := setupRedis(t)
	store := NewLockStore(client)
	ctx := context.Background()

	lock, ok, err := store.Acquire(ctx, "post-1", entity.PlatformInstagram, time.Minute, time.Now())
	require.NoError(t, err)
	require.True(t, ok)

	released, err := store.Release(ctx, lock.ID)
	require.NoError(t, err)
	assert.True(t, released)

	released, err = store.Release(ctx, lock.ID)
	require.NoError(t, err)
	assert.False(t, released)

	_, ok, err = store.Acquire(ctx, "post-1", entity.PlatformInstagram, time.Minute, time.Now())
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLockStore_ExpiredLockIsReclaimable(t *testing.T) {
	mr, client := setupRedis(t)
	store := NewLockStore(client)
	ctx := context.Background()

	stale, ok, err := store.Acquire(ctx, "post-1", entity.PlatformInstagram, time.Minute, time.Now())
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(2 * time.Minute)

	fresh, ok, err := store.Acquire(ctx, "post-1", entity.PlatformInstagram, time.Minute, time.Now())
	require.NoError(t, err)
	require.True(t, ok)

	// The old holder releasing late must not drop the new holder's lock.
	released, err := store.Release(ctx, stale.ID)
	require.NoError(t, err)
	assert.False(t, released)

	holder, err := client.Get(ctx, lockKey("post-1", entity.PlatformInstagram)).Result()
	require.NoError(t, err)
	assert.Equal(t, fresh.ID, holder)
}

func TestRateStore_CountAndLast(t *testing.T) {
	_, client := setupRedis(t)
	store := NewRateStore(client)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	_, found, err := store.LastPublish(ctx, entity.PlatformFacebook)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Record(ctx, entity.PlatformFacebook, "a", now.Add(-2*time.Hour), 24*time.Hour))
	require.NoError(t, store.Record(ctx, entity.PlatformFacebook, "b", now.Add(-30*time.Minute), 24*time.Hour))
	require.NoError(t, store.Record(ctx, entity.PlatformFacebook, "c", now, 24*time.Hour))

	count, err := store.CountSince(ctx, entity.PlatformFacebook, now.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	count, err = store.CountSince(ctx, entity.PlatformFacebook, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	last, found, err := store.LastPublish(ctx, entity.PlatformFacebook)
	require.NoError(t, err)
	assert.True(t, found)
	assert.True(t, now.Equal(last))

	count, err = store.CountSince(ctx, entity.PlatformInstagram, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestRateStore_ReserveEnforcesLimits(t *testing.T) {
	_, client := setupRedis(t)
	store := NewRateStore(client)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	limits := RateLimits{Cooldown: 10 * time.Minute, HourlyCap: 2, DailyCap: 3}

	first, err := store.Reserve(ctx, entity.PlatformInstagram, "slot-1", now, limits, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, RateReserved, first.Verdict)

	cooling, err := store.Reserve(ctx, entity.PlatformInstagram, "slot-2", now.Add(time.Minute), limits, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, RateVerdictCooldown, cooling.Verdict)
	assert.True(t, now.Equal(cooling.Last))

	second, err := store.Reserve(ctx, entity.PlatformInstagram, "slot-3", now.Add(11*time.Minute), limits, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, RateReserved, second.Verdict)

	capped, err := store.Reserve(ctx, entity.PlatformInstagram, "slot-4", now.Add(30*time.Minute), limits, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, RateVerdictHourly, capped.Verdict)
	assert.Equal(t, int64(2), capped.Count)

	third, err := store.Reserve(ctx, entity.PlatformInstagram, "slot-5", now.Add(2*time.Hour), limits, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, RateReserved, third.Verdict)

	daily, err := store.Reserve(ctx, entity.PlatformInstagram, "slot-6", now.Add(4*time.Hour), limits, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, RateVerdictDaily, daily.Verdict)
	assert.Equal(t, int64(3), daily.Count)

	count, err := store.CountSince(ctx, entity.PlatformInstagram, now.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(3), count, "denied reservations leave no trace")
}

func TestRateStore_ConcurrentReserveTakesOneSlot(t *testing.T) {
	_, client := setupRedis(t)
	store := NewRateStore(client)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	limits := RateLimits{Cooldown: time.Hour, HourlyCap: 1}

	const callers = 8
	verdicts := make([]RateVerdict, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			reservation, err := store.Reserve(context.Background(), entity.PlatformInstagram, fmt.Sprintf("slot-%d", i), now, limits, 24*time.Hour)
			if assert.NoError(t, err) {
				verdicts[i] = reservation.Verdict
			}
		}(i)
	}
	wg.Wait()

	reserved := 0
	for _, verdict := range verdicts {
		if verdict == RateReserved {
			reserved++
		}
	}
	assert.Equal(t, 1, reserved)
}

func TestRateStore_CancelRestoresPreviousState(t *testing.T) {
	_, client := setupRedis(t)
	store := NewRateStore(client)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	limits := RateLimits{Cooldown: 10 * time.Minute, HourlyCap: 5}

	require.NoError(t, store.Record(ctx, entity.PlatformFacebook, "earlier", now.Add(-time.Hour), 24*time.Hour))

	reservation, err := store.Reserve(ctx, entity.PlatformFacebook, "slot-1", now, limits, 24*time.Hour)
	require.NoError(t, err)
	require.Equal(t, RateReserved, reservation.Verdict)

	require.NoError(t, store.Cancel(ctx, entity.PlatformFacebook, reservation, 24*time.Hour))

	count, err := store.CountSince(ctx, entity.PlatformFacebook, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	last, found, err := store.LastPublish(ctx, entity.PlatformFacebook)
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, now.Add(-time.Hour).Equal(last))

	again, err := store.Reserve(ctx, entity.PlatformFacebook, "slot-2", now.Add(time.Second), limits, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, RateReserved, again.Verdict, "a cancelled slot does not start a cooldown")

	// Nothing was recorded before this reservation, so cancelling clears the mark.
	fresh, err := store.Reserve(ctx, entity.PlatformInstagram, "slot-3", now, limits, 24*time.Hour)
	require.NoError(t, err)
	require.NoError(t, store.Cancel(ctx, entity.PlatformInstagram, fresh, 24*time.Hour))
	_, found, err = store.LastPublish(ctx, entity.PlatformInstagram)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestFailureStore_WindowAndClear(t *testing.T) {
	_, client := setupRedis(t)
	store := NewFailureStore(client)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.Add(ctx, entity.PlatformInstagram, true, "post-1", now.Add(-90*time.Minute), time.Hour))
	require.NoError(t, store.Add(ctx, entity.PlatformInstagram, true, "post-1", now.Add(-10*time.Minute), time.Hour))
	require.NoError(t, store.Add(ctx, entity.PlatformInstagram, false, "post-2", now, time.Hour))

	auth, err := store.CountSince(ctx, entity.PlatformInstagram, true, now.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), auth)

	all, err := store.CountSince(ctx, entity.PlatformInstagram, false, now.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(2), all)

	require.NoError(t, store.ClearAuth(ctx, entity.PlatformInstagram))

	auth, err = store.CountSince(ctx, entity.PlatformInstagram, true, now.Add(-time.Hour))
	require.NoError(t, err)
	assert.Zero(t, auth)

	all, err = store.CountSince(ctx, entity.PlatformInstagram, false, now.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(2), all)
}
