package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxNotesPerChat is the number of notes a single chat may hold.
const MaxNotesPerChat = 1000

type ContentType string

const (
	TextContent            ContentType = "text"
	PhotoContent           ContentType = "photo"
	VideoContent           ContentType = "video"
	AudioContent           ContentType = "audio"
	DocumentContent        ContentType = "document"
	StickerContent         ContentType = "sticker"
	AnimationContent       ContentType = "animation"
	AnimatedStickerContent ContentType = "animated_sticker"
	VideoNoteContent       ContentType = "video_note"
	VoiceContent           ContentType = "voice"
	ContactContent         ContentType = "contact"
)

var contentTypes = []ContentType{
	TextContent,
	PhotoContent,
	VideoContent,
	AudioContent,
	DocumentContent,
	StickerContent,
	AnimationContent,
	AnimatedStickerContent,
	VideoNoteContent,
	VoiceContent,
	ContactContent,
}

// ParseContentType maps a stored type name back to a ContentType.
func ParseContentType(s string) (ContentType, error) {
	t := ContentType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("unknown content type %q", s)
	}
	return t, nil
}

func (t ContentType) Valid() bool {
	for _, known := range contentTypes {
		if t == known {
			return true
		}
	}
	return false
}

// SupportsCaption reports whether media of this type can carry the note text.
// Text notes carry no file, so they report false as well.
func (t ContentType) SupportsCaption() bool {
	switch t {
	case PhotoContent, VideoContent, AudioContent, DocumentContent, AnimationContent, VoiceContent:
		return true
	default:
		return false
	}
}

func (t ContentType) String() string {
	return string(t)
}

type Note struct {
	ID        int64       `json:"id"`
	ChatID    int64       `json:"chat_id"`
	Name      string      `json:"name"`
	Hash      string      `json:"hash"`
	Type      ContentType `json:"type"`
	Value     string      `json:"value"`
	FileRef   string      `json:"file_ref,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

// NoteSummary is one entry of a chat's note listing.
type NoteSummary struct {
	Name string `json:"name"`
	Hash string `json:"hash"`
}

var noteHashSpace = uuid.MustParse("5b3e4f0c-8f5e-4c2a-9a57-3f1d2b8c6e71")

// NoteHash returns the stable identifier used in private deep links.
func NoteHash(chatID int64, name string) string {
	id := uuid.NewSHA1(noteHashSpace, []byte(fmt.Sprintf("%d:%s", chatID, NormalizeName(name))))
	return strings.ReplaceAll(id.String(), "-", "")
}

// NormalizeName folds a note name the way it is stored.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

const contactSeparator = "|"

// EncodeContact packs a shared contact into a note file reference.
func EncodeContact(phone, firstName string) string {
	return phone + contactSeparator + firstName
}

func DecodeContact(ref string) (phone, firstName string) {
	phone, firstName, _ = strings.Cut(ref, contactSeparator)
	return phone, firstName
}
