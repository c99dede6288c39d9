package storage

import (
	"context"
	"errors"

	"github.com/xaenox/notes-bot/internal/models"
)

var (
	ErrNoteNotFound = errors.New("note not found")
	ErrNoteExists   = errors.New("note already exists")
	// ErrNoteLimit is returned when a chat already holds the maximum number of notes.
	ErrNoteLimit = errors.New("note limit reached")
)

type Storage interface {
	NoteStorage
	SettingsStorage
	Close() error
}

// NoteStorage keeps notes keyed by (chat id, lowercase name).
type NoteStorage interface {
	ListNotes(ctx context.Context, chatID int64) ([]models.NoteSummary, error)
	GetNote(ctx context.Context, chatID int64, name string) (*models.Note, error)
	GetNoteByHash(ctx context.Context, chatID int64, hash string) (*models.Note, error)
	CountNotes(ctx context.Context, chatID int64) (int, error)
	// SaveNote inserts note unless the name is taken or the chat already
	// holds limit notes. The check and the insert happen atomically per chat.
	SaveNote(ctx context.Context, note *models.Note, limit int) error
	RemoveNote(ctx context.Context, chatID int64, name string) (bool, error)
	RemoveAllNotes(ctx context.Context, chatID int64) error
}

type SettingsStorage interface {
	GetPrivateNotes(ctx context.Context, chatID int64) (bool, error)
	SetPrivateNotes(ctx context.Context, chatID int64, enabled bool) error
}
