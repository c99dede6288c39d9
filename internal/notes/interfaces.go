package notes

//go:generate mockgen -source=interfaces.go -destination=mock_interfaces_test.go -package=notes

import (
	"context"

	"github.com/xaenox/notes-bot/internal/models"
)

type Role int

const (
	RoleNone Role = iota
	RoleAdmin
	RoleOwner
)

func (r Role) String() string {
	switch r {
	case RoleOwner:
		return "owner"
	case RoleAdmin:
		return "admin"
	default:
		return "none"
	}
}

// RoleLookup reports a user's standing in a chat.
type RoleLookup interface {
	Role(ctx context.Context, chatID, userID int64) (Role, error)
}

// RoleForgetter is implemented by lookups that cache answers. A denied user
// is forgotten so a recent promotion is seen on the next attempt.
type RoleForgetter interface {
	Forget(chatID, userID int64)
}

// Message is one outgoing delivery.
type Message struct {
	ChatID  int64
	ReplyTo int
	Type    models.ContentType
	// FileRef is the stored media reference; empty for text.
	FileRef string
	// Text is the message body for text and the caption for media.
	Text     string
	Keyboard Keyboard
	// Raw disables formatting so stored markup is shown as typed.
	Raw bool
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// LinkBuilder produces deep links into the bot's private chat.
type LinkBuilder interface {
	NoteLink(chatID int64, hash string) string
	NotesLink(chatID int64) string
}
