package storage

import (
	"context"
	"sync"
	"time"

	"github.com/xaenox/notes-bot/internal/models"
)

type MemoryStorage struct {
	mu       sync.RWMutex
	notes    map[int64][]*models.Note
	settings map[int64]*models.ChatSettings
	nextID   int64
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		notes:    make(map[int64][]*models.Note),
		settings: make(map[int64]*models.ChatSettings),
	}
}

// Note methods
func (s *MemoryStorage) ListNotes(ctx context.Context, chatID int64) ([]models.NoteSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	chatNotes := s.notes[chatID]
	result := make([]models.NoteSummary, 0, len(chatNotes))
	for _, note := range chatNotes {
		result = append(result, models.NoteSummary{Name: note.Name, Hash: note.Hash})
	}
	return result, nil
}

func (s *MemoryStorage) GetNote(ctx context.Context, chatID int64, name string) (*models.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	name = models.NormalizeName(name)
	for _, note := range s.notes[chatID] {
		if note.Name == name {
			cp := *note
			return &cp, nil
		}
	}
	return nil, ErrNoteNotFound
}

func (s *MemoryStorage) GetNoteByHash(ctx context.Context, chatID int64, hash string) (*models.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, note := range s.notes[chatID] {
		if note.Hash == hash {
			cp := *note
			return &cp, nil
		}
	}
	return nil, ErrNoteNotFound
}

func (s *MemoryStorage) CountNotes(ctx context.Context, chatID int64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.notes[chatID]), nil
}

func (s *MemoryStorage) SaveNote(ctx context.Context, note *models.Note, limit int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := models.NormalizeName(note.Name)
	chatNotes := s.notes[note.ChatID]

	// Check if note already exists
	for _, n := range chatNotes {
		if n.Name == name {
			return ErrNoteExists
		}
	}
	if limit > 0 && len(chatNotes) >= limit {
		return ErrNoteLimit
	}

	s.nextID++
	stored := *note
	stored.ID = s.nextID
	stored.Name = name
	stored.Hash = models.NoteHash(note.ChatID, name)
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}

	s.notes[note.ChatID] = append(chatNotes, &stored)

	note.ID = stored.ID
	note.Name = stored.Name
	note.Hash = stored.Hash
	note.CreatedAt = stored.CreatedAt
	return nil
}

func (s *MemoryStorage) RemoveNote(ctx context.Context, chatID int64, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name = models.NormalizeName(name)
	chatNotes := s.notes[chatID]
	for i, note := range chatNotes {
		if note.Name == name {
			s.notes[chatID] = append(chatNotes[:i:i], chatNotes[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStorage) RemoveAllNotes(ctx context.Context, chatID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.notes, chatID)
	return nil
}

// Settings methods
func (s *MemoryStorage) GetPrivateNotes(ctx context.Context, chatID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if settings, exists := s.settings[chatID]; exists {
		return settings.PrivateNotes, nil
	}
	return false, nil
}

func (s *MemoryStorage) SetPrivateNotes(ctx context.Context, chatID int64, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings, exists := s.settings[chatID]
	if !exists {
		settings = &models.ChatSettings{ChatID: chatID}
		s.settings[chatID] = settings
	}
	settings.PrivateNotes = enabled
	return nil
}

func (s *MemoryStorage) Close() error {
	// Nothing to close for in-memory storage
	return nil
}
