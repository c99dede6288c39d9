package notes

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/xaenox/notes-bot/internal/models"
	"github.com/xaenox/notes-bot/internal/storage"
)

// reservedPrefixes may not start a note name.
const reservedPrefixes = "<>"

// SaveRequest is a note extracted from a /save command.
type SaveRequest struct {
	ChatID  int64
	Name    string
	Value   string
	Type    models.ContentType
	FileRef string
	// HasReply is set when the command replied to another message.
	HasReply bool
	// CommandTokens is the number of whitespace separated words in the
	// command text, including the command itself.
	CommandTokens int
}

// Service owns note validation, authorization and the two-phase clear.
type Service struct {
	notes    storage.NoteStorage
	settings storage.SettingsStorage
	roles    RoleLookup
	limit    int
	logger   *zap.Logger
}

func NewService(notes storage.NoteStorage, settings storage.SettingsStorage, roles RoleLookup, limit int, logger *zap.Logger) *Service {
	if limit <= 0 {
		limit = models.MaxNotesPerChat
	}

	return &Service{
		notes:    notes,
		settings: settings,
		roles:    roles,
		limit:    limit,
		logger:   logger,
	}
}

func (s *Service) Limit() int {
	return s.limit
}

func (s *Service) SaveNote(ctx context.Context, req SaveRequest) (*models.Note, error) {
	// A reserved name is refused whatever state the chat is in.
	name := models.NormalizeName(req.Name)
	if name != "" && strings.ContainsAny(name[:1], reservedPrefixes) {
		return nil, ErrNameReserved
	}

	count, err := s.notes.CountNotes(ctx, req.ChatID)
	if err != nil {
		return nil, fmt.Errorf("failed to count notes: %w", err)
	}
	if count >= s.limit {
		return nil, ErrCapExceeded
	}

	if name == "" {
		return nil, ErrNameMissing
	}

	if _, err := s.notes.GetNote(ctx, req.ChatID, name); err == nil {
		return nil, ErrAlreadyExists
	} else if !errors.Is(err, storage.ErrNoteNotFound) {
		return nil, fmt.Errorf("failed to look up note: %w", err)
	}

	if req.Type == models.TextContent {
		if !req.HasReply && req.CommandTokens < 3 {
			return nil, ErrEmptyContent
		}
		if strings.TrimSpace(req.Value) == "" {
			return nil, ErrEmptyContent
		}
	}

	if !req.Type.Valid() {
		return nil, ErrNoData
	}
	if req.Type != models.TextContent && req.FileRef == "" {
		return nil, ErrNoData
	}

	note := &models.Note{
		ChatID:  req.ChatID,
		Name:    name,
		Type:    req.Type,
		Value:   req.Value,
		FileRef: req.FileRef,
	}

	err = s.notes.SaveNote(ctx, note, s.limit)
	switch {
	case errors.Is(err, storage.ErrNoteExists):
		return nil, ErrAlreadyExists
	case errors.Is(err, storage.ErrNoteLimit):
		return nil, ErrCapExceeded
	case err != nil:
		return nil, fmt.Errorf("failed to save note: %w", err)
	}

	s.logger.Info("Note saved",
		zap.Int64("chat_id", note.ChatID),
		zap.String("note", note.Name),
		zap.String("type", note.Type.String()))
	return note, nil
}

func (s *Service) GetNote(ctx context.Context, chatID int64, name string) (*models.Note, error) {
	note, err := s.notes.GetNote(ctx, chatID, name)
	if errors.Is(err, storage.ErrNoteNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get note: %w", err)
	}
	return note, nil
}

func (s *Service) GetNoteByHash(ctx context.Context, chatID int64, hash string) (*models.Note, error) {
	note, err := s.notes.GetNoteByHash(ctx, chatID, hash)
	if errors.Is(err, storage.ErrNoteNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get note: %w", err)
	}
	return note, nil
}

func (s *Service) ListNotes(ctx context.Context, chatID int64) ([]models.NoteSummary, error) {
	list, err := s.notes.ListNotes(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	return list, nil
}

// RemoveNote deletes one note and reports whether it existed.
func (s *Service) RemoveNote(ctx context.Context, chatID int64, name string) (bool, error) {
	removed, err := s.notes.RemoveNote(ctx, chatID, name)
	if err != nil {
		return false, fmt.Errorf("failed to remove note: %w", err)
	}
	if removed {
		s.logger.Info("Note removed", zap.Int64("chat_id", chatID), zap.String("note", models.NormalizeName(name)))
	}
	return removed, nil
}

func (s *Service) RemoveAllNotes(ctx context.Context, chatID int64) error {
	if err := s.notes.RemoveAllNotes(ctx, chatID); err != nil {
		return fmt.Errorf("failed to remove notes: %w", err)
	}
	s.logger.Info("All notes removed", zap.Int64("chat_id", chatID))
	return nil
}

func (s *Service) PrivateNotes(ctx context.Context, chatID int64) (bool, error) {
	enabled, err := s.settings.GetPrivateNotes(ctx, chatID)
	if err != nil {
		return false, fmt.Errorf("failed to get private notes setting: %w", err)
	}
	return enabled, nil
}

func (s *Service) SetPrivateNotes(ctx context.Context, chatID int64, enabled bool) error {
	if err := s.settings.SetPrivateNotes(ctx, chatID, enabled); err != nil {
		return fmt.Errorf("failed to set private notes setting: %w", err)
	}
	return nil
}

// Authorize checks that userID holds at least role min in the chat.
func (s *Service) Authorize(ctx context.Context, chatID, userID int64, min Role) error {
	role, err := s.roles.Role(ctx, chatID, userID)
	if err != nil {
		return fmt.Errorf("failed to look up role: %w", err)
	}

	if role >= min {
		return nil
	}

	if f, ok := s.roles.(RoleForgetter); ok {
		f.Forget(chatID, userID)
	}
	if role == RoleNone {
		return ErrNotAdmin
	}
	return ErrNotOwner
}

// RequestClearAll is the first phase of clearing a chat. It checks that the
// caller may clear and that there is something to clear, and deletes nothing.
func (s *Service) RequestClearAll(ctx context.Context, chatID, userID int64) error {
	if err := s.Authorize(ctx, chatID, userID, RoleOwner); err != nil {
		return err
	}

	count, err := s.notes.CountNotes(ctx, chatID)
	if err != nil {
		return fmt.Errorf("failed to count notes: %w", err)
	}
	if count == 0 {
		return ErrNoNotes
	}
	return nil
}

// ConfirmClearAll is the second phase. The role is checked again because
// anyone in the chat can press the confirmation button.
func (s *Service) ConfirmClearAll(ctx context.Context, chatID, userID int64) error {
	if err := s.Authorize(ctx, chatID, userID, RoleOwner); err != nil {
		s.logger.Warn("Clear all rejected",
			zap.Int64("chat_id", chatID),
			zap.Int64("user_id", userID),
			zap.Error(err))
		return err
	}
	return s.RemoveAllNotes(ctx, chatID)
}
