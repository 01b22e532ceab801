package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestCollectionCachesWithinTTL(t *testing.T) {
	var calls atomic.Int32
	c := NewCollection(time.Minute, func(ctx context.Context) ([]string, error) {
		calls.Add(1)
		return []string{"a", "b"}, nil
	})
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		items, err := c.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, items)
	}
	assert.EqualValues(t, 1, calls.Load())

	now = now.Add(2 * time.Minute)
	_, err := c.Get(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, calls.Load())

	c.Invalidate()
	_, err = c.Get(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, calls.Load())
}

func TestCollectionZeroTTLAlwaysFetches(t *testing.T) {
	var calls atomic.Int32
	c := NewCollection(0, func(ctx context.Context) ([]int, error) {
		return []int{int(calls.Add(1))}, nil
	})
	for i := 1; i <= 3; i++ {
		items, err := c.Get(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []int{i}, items)
	}
}

func TestCollectionErrorIsNotCached(t *testing.T) {
	fail := true
	c := NewCollection(time.Minute, func(ctx context.Context) ([]int, error) {
		if fail {
			return nil, errors.New("upstream down")
		}
		return []int{1}, nil
	})
	_, err := c.Get(context.Background())
	require.Error(t, err)

	fail = false
	items, err := c.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{1}, items)
}

// A fetch that started before Invalidate must not overwrite the cache
// once it completes.
func TestCollectionDiscardsStaleResponse(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	var calls atomic.Int32
	c := NewCollection(time.Minute, func(ctx context.Context) ([]string, error) {
		if calls.Add(1) == 1 {
			close(started)
			<-release
			return []string{"stale"}, nil
		}
		return []string{"fresh"}, nil
	})

	done := make(chan []string)
	go func() {
		items, _ := c.Get(context.Background())
		done <- items
	}()

	<-started
	c.Invalidate()
	close(release)
	assert.Equal(t, []string{"stale"}, <-done, "the slow caller still gets its own result")

	items, err := c.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"fresh"}, items)
	assert.EqualValues(t, 2, calls.Load())

	items, err = c.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"fresh"}, items)
	assert.EqualValues(t, 2, calls.Load())
}

func TestCollectionOlderTicketLoses(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	var calls atomic.Int32
	c := NewCollection(time.Minute, func(ctx context.Context) ([]string, error) {
		if calls.Add(1) == 1 {
			close(started)
			<-release
			return []string{"old"}, nil
		}
		return []string{"new"}, nil
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = c.Get(context.Background())
	}()
	<-started

	// The second fetch takes a newer ticket and lands first.
	items, err := c.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"new"}, items)

	close(release)
	<-done

	items, err = c.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"new"}, items)
}
