package storage

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSettings struct {
	values map[int64]bool
	gets   int
	setErr error
}

func (s *countingSettings) GetPrivateNotes(ctx context.Context, chatID int64) (bool, error) {
	s.gets++
	return s.values[chatID], nil
}

func (s *countingSettings) SetPrivateNotes(ctx context.Context, chatID int64, enabled bool) error {
	if s.setErr != nil {
		return s.setErr
	}
	s.values[chatID] = enabled
	return nil
}

// blockingSettings holds its first read after taking the value, so a write
// can land in between.
type blockingSettings struct {
	countingSettings
	mu      sync.Mutex
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (s *blockingSettings) GetPrivateNotes(ctx context.Context, chatID int64) (bool, error) {
	s.mu.Lock()
	enabled := s.values[chatID]
	s.gets++
	s.mu.Unlock()

	s.once.Do(func() {
		close(s.entered)
		<-s.release
	})
	return enabled, nil
}

func (s *blockingSettings) SetPrivateNotes(ctx context.Context, chatID int64, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[chatID] = enabled
	return nil
}

func TestCachedSettings(t *testing.T) {
	ctx := context.Background()

	t.Run("second read is served from cache", func(t *testing.T) {
		next := &countingSettings{values: map[int64]bool{1: true}}
		cache, err := NewCachedSettings(next, 0)
		require.NoError(t, err)

		for range 3 {
			enabled, err := cache.GetPrivateNotes(ctx, 1)
			require.NoError(t, err)
			assert.True(t, enabled)
		}
		assert.Equal(t, 1, next.gets)
		assert.Equal(t, 1, cache.Len())
	})

	t.Run("write goes through and refreshes", func(t *testing.T) {
		next := &countingSettings{values: map[int64]bool{}}
		cache, err := NewCachedSettings(next, 8)
		require.NoError(t, err)

		_, err = cache.GetPrivateNotes(ctx, 5)
		require.NoError(t, err)
		require.NoError(t, cache.SetPrivateNotes(ctx, 5, true))

		enabled, err := cache.GetPrivateNotes(ctx, 5)
		require.NoError(t, err)
		assert.True(t, enabled)
		assert.True(t, next.values[5])
		assert.Equal(t, 1, next.gets)
	})

	t.Run("failed write drops cached entry", func(t *testing.T) {
		next := &countingSettings{values: map[int64]bool{7: true}}
		cache, err := NewCachedSettings(next, 8)
		require.NoError(t, err)

		_, err = cache.GetPrivateNotes(ctx, 7)
		require.NoError(t, err)
		require.Equal(t, 1, cache.Len())

		next.setErr = errors.New("db down")
		require.Error(t, cache.SetPrivateNotes(ctx, 7, false))
		assert.Equal(t, 0, cache.Len())

		enabled, err := cache.GetPrivateNotes(ctx, 7)
		require.NoError(t, err)
		assert.True(t, enabled)
		assert.Equal(t, 2, next.gets)
	})

	t.Run("evicts beyond size", func(t *testing.T) {
		next := &countingSettings{values: map[int64]bool{}}
		cache, err := NewCachedSettings(next, 2)
		require.NoError(t, err)

		for chatID := range int64(5) {
			_, err := cache.GetPrivateNotes(ctx, chatID)
			require.NoError(t, err)
		}
		assert.Equal(t, 2, cache.Len())
	})

	t.Run("stale read does not overwrite a newer write", func(t *testing.T) {
		next := &blockingSettings{
			countingSettings: countingSettings{values: map[int64]bool{}},
			entered:          make(chan struct{}),
			release:          make(chan struct{}),
		}
		cache, err := NewCachedSettings(next, 8)
		require.NoError(t, err)

		done := make(chan bool)
		go func() {
			enabled, _ := cache.GetPrivateNotes(ctx, 1)
			done <- enabled
		}()

		<-next.entered
		require.NoError(t, cache.SetPrivateNotes(ctx, 1, true))
		close(next.release)
		assert.False(t, <-done)

		enabled, err := cache.GetPrivateNotes(ctx, 1)
		require.NoError(t, err)
		assert.True(t, enabled)
		assert.True(t, next.values[1])
	})

	t.Run("wraps memory storage", func(t *testing.T) {
		cache, err := NewCachedSettings(NewMemoryStorage(), 4)
		require.NoError(t, err)

		require.NoError(t, cache.SetPrivateNotes(ctx, -100, true))
		enabled, err := cache.GetPrivateNotes(ctx, -100)
		require.NoError(t, err)
		assert.True(t, enabled)
	})
}
