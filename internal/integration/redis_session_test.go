//go:build integration

package integration_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/eurolife-dashboard/internal/adapter/redis"
	"github.com/couchcryptid/eurolife-dashboard/internal/dashboard"
)

func TestRedisSessionStore_RoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	store := redis.NewSessionStore(startRedis(ctx, t), time.Hour)
	require.NoError(t, store.CheckReadiness(ctx))

	sess := dashboard.Session{ID: "s-1", DatasetVersion: "v-1", Year: 2022, Selected: []string{}}
	require.NoError(t, store.Create(ctx, sess))

	got, err := store.Get(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, 2022, got.Year)

	updated, err := store.Update(ctx, "s-1", func(s *dashboard.Session) error {
		s.Selected = append(s.Selected, "AT")
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"AT"}, updated.Selected)

	got, err = store.Get(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"AT"}, got.Selected)

	_, err = store.Get(ctx, "missing")
	assert.ErrorIs(t, err, dashboard.ErrSessionNotFound)
	_, err = store.Update(ctx, "missing", func(*dashboard.Session) error { return nil })
	assert.ErrorIs(t, err, dashboard.ErrSessionNotFound)
}

func TestRedisSessionStore_Expiry(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	store := redis.NewSessionStore(startRedis(ctx, t), time.Second)
	require.NoError(t, store.Create(ctx, dashboard.Session{ID: "short"}))

	assert.Eventually(t, func() bool {
		_, err := store.Get(ctx, "short")
		return err != nil
	}, 5*time.Second, 100*time.Millisecond)
}

// TestRedisSessionStore_ConcurrentUpdates checks that WATCH retries keep
// every concurrent year change instead of losing writes.
func TestRedisSessionStore_ConcurrentUpdates(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	store := redis.NewSessionStore(startRedis(ctx, t), time.Hour)
	require.NoError(t, store.Create(ctx, dashboard.Session{ID: "busy", Selected: []string{}}))

	const writers = 4
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Update(ctx, "busy", func(s *dashboard.Session) error {
				s.Year++
				return nil
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, redis.ErrUpdateConflict)
		}
	}
	got, err := store.Get(ctx, "busy")
	require.NoError(t, err)
	assert.Equal(t, succeeded, got.Year)
}
