package storage

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/xaenox/notes-bot/internal/models"
)

type storageFactory func(t *testing.T) Storage

func newMemory(t *testing.T) Storage {
	return NewMemoryStorage()
}

func newSQLite(t *testing.T) Storage {
	t.Helper()

	ctx := context.Background()
	store, err := NewSQLStorage(ctx, DatabaseConfig{Driver: DriverSQLite, Path: ":memory:"}, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NoError(t, store.Migrate(ctx))
	t.Cleanup(func() { store.Close() })
	return store
}

func textNote(chatID int64, name, value string) *models.Note {
	return &models.Note{ChatID: chatID, Name: name, Type: models.TextContent, Value: value}
}

func TestStorageContract(t *testing.T) {
	factories := map[string]storageFactory{
		"memory":  newMemory,
		"sqlite3": newSQLite,
	}

	for name, factory := range factories {
		t.Run(name, func(t *testing.T) {
			runStorageContract(t, factory)
		})
	}
}

func runStorageContract(t *testing.T, newStore storageFactory) {
	ctx := context.Background()

	t.Run("save then get returns same content", func(t *testing.T) {
		store := newStore(t)

		note := &models.Note{ChatID: 10, Name: "Photo", Type: models.PhotoContent, Value: "caption", FileRef: "AgADfile"}
		require.NoError(t, store.SaveNote(ctx, note, models.MaxNotesPerChat))
		assert.Equal(t, "photo", note.Name)
		assert.Equal(t, models.NoteHash(10, "photo"), note.Hash)

		got, err := store.GetNote(ctx, 10, "PHOTO")
		require.NoError(t, err)
		assert.Equal(t, models.PhotoContent, got.Type)
		assert.Equal(t, "caption", got.Value)
		assert.Equal(t, "AgADfile", got.FileRef)
		assert.Equal(t, note.Hash, got.Hash)

		byHash, err := store.GetNoteByHash(ctx, 10, note.Hash)
		require.NoError(t, err)
		assert.Equal(t, "photo", byHash.Name)
	})

	t.Run("names collide case-insensitively", func(t *testing.T) {
		store := newStore(t)

		require.NoError(t, store.SaveNote(ctx, textNote(1, "SaveMe", "first"), models.MaxNotesPerChat))
		err := store.SaveNote(ctx, textNote(1, "saveme", "second"), models.MaxNotesPerChat)
		require.ErrorIs(t, err, ErrNoteExists)

		got, err := store.GetNote(ctx, 1, "saveme")
		require.NoError(t, err)
		assert.Equal(t, "first", got.Value)
	})

	t.Run("limit is enforced without mutation", func(t *testing.T) {
		store := newStore(t)

		for i := 0; i < 3; i++ {
			require.NoError(t, store.SaveNote(ctx, textNote(2, fmt.Sprintf("n%d", i), "v"), 3))
		}

		err := store.SaveNote(ctx, textNote(2, "overflow", "v"), 3)
		require.ErrorIs(t, err, ErrNoteLimit)

		count, err := store.CountNotes(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, 3, count)

		_, err = store.GetNote(ctx, 2, "overflow")
		assert.ErrorIs(t, err, ErrNoteNotFound)
	})

	t.Run("list keeps insertion order", func(t *testing.T) {
		store := newStore(t)

		for _, n := range []string{"zeta", "alpha", "mid"} {
			require.NoError(t, store.SaveNote(ctx, textNote(3, n, "v"), 0))
		}

		list, err := store.ListNotes(ctx, 3)
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Equal(t, "zeta", list[0].Name)
		assert.Equal(t, "alpha", list[1].Name)
		assert.Equal(t, "mid", list[2].Name)
		assert.Equal(t, models.NoteHash(3, "alpha"), list[1].Hash)
	})

	t.Run("remove is idempotent", func(t *testing.T) {
		store := newStore(t)

		require.NoError(t, store.SaveNote(ctx, textNote(4, "gone", "v"), 0))

		removed, err := store.RemoveNote(ctx, 4, "GONE")
		require.NoError(t, err)
		assert.True(t, removed)

		for i := 0; i < 2; i++ {
			removed, err = store.RemoveNote(ctx, 4, "gone")
			require.NoError(t, err)
			assert.False(t, removed)
		}
	})

	t.Run("remove all only touches one chat", func(t *testing.T) {
		store := newStore(t)

		require.NoError(t, store.SaveNote(ctx, textNote(5, "a", "v"), 0))
		require.NoError(t, store.SaveNote(ctx, textNote(5, "b", "v"), 0))
		require.NoError(t, store.SaveNote(ctx, textNote(6, "a", "v"), 0))

		require.NoError(t, store.RemoveAllNotes(ctx, 5))
		require.NoError(t, store.RemoveAllNotes(ctx, 5))

		list, err := store.ListNotes(ctx, 5)
		require.NoError(t, err)
		assert.Empty(t, list)

		other, err := store.ListNotes(ctx, 6)
		require.NoError(t, err)
		assert.Len(t, other, 1)
	})

	t.Run("private notes default and toggle", func(t *testing.T) {
		store := newStore(t)

		enabled, err := store.GetPrivateNotes(ctx, 7)
		require.NoError(t, err)
		assert.False(t, enabled)

		require.NoError(t, store.SetPrivateNotes(ctx, 7, true))
		enabled, err = store.GetPrivateNotes(ctx, 7)
		require.NoError(t, err)
		assert.True(t, enabled)

		require.NoError(t, store.SetPrivateNotes(ctx, 7, false))
		enabled, err = store.GetPrivateNotes(ctx, 7)
		require.NoError(t, err)
		assert.False(t, enabled)
	})

	t.Run("concurrent saves never exceed the limit", func(t *testing.T) {
		store := newStore(t)

		const limit = 5
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_ = store.SaveNote(ctx, textNote(8, fmt.Sprintf("race%d", i), "v"), limit)
			}(i)
		}
		wg.Wait()

		count, err := store.CountNotes(ctx, 8)
		require.NoError(t, err)
		assert.Equal(t, limit, count)
	})
}
