package telegram

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/xaenox/notes-bot/internal/models"
	"github.com/xaenox/notes-bot/internal/notes"
)

// ExtractNote turns a /save command into a save request. The note name is
// the first argument; the content is the rest of the command or, when the
// command replies to a message, that message.
func ExtractNote(msg *tgbotapi.Message) notes.SaveRequest {
	req := notes.SaveRequest{
		ChatID:        msg.Chat.ID,
		CommandTokens: len(strings.Fields(msg.Text)),
	}

	name, rest := splitFirst(msg.CommandArguments())
	req.Name = name

	reply := msg.ReplyToMessage
	if reply == nil {
		req.Type = models.TextContent
		req.Value = rest
		return req
	}

	req.HasReply = true
	req.Type, req.FileRef = MessageContent(reply)

	switch {
	case rest != "":
		req.Value = rest
	case reply.Text != "":
		req.Value = reply.Text
	default:
		req.Value = reply.Caption
	}
	return req
}

// MessageContent reports the content type and file reference of msg. The
// type is empty when msg carries nothing a note can store.
func MessageContent(msg *tgbotapi.Message) (models.ContentType, string) {
	switch {
	case msg.Sticker != nil:
		if msg.Sticker.IsAnimated {
			return models.AnimatedStickerContent, msg.Sticker.FileID
		}
		return models.StickerContent, msg.Sticker.FileID
	case len(msg.Photo) > 0:
		// Sizes are ascending; keep the largest.
		return models.PhotoContent, msg.Photo[len(msg.Photo)-1].FileID
	case msg.Animation != nil:
		return models.AnimationContent, msg.Animation.FileID
	case msg.Video != nil:
		return models.VideoContent, msg.Video.FileID
	case msg.VideoNote != nil:
		return models.VideoNoteContent, msg.VideoNote.FileID
	case msg.Voice != nil:
		return models.VoiceContent, msg.Voice.FileID
	case msg.Audio != nil:
		return models.AudioContent, msg.Audio.FileID
	case msg.Document != nil:
		return models.DocumentContent, msg.Document.FileID
	case msg.Contact != nil:
		return models.ContactContent, models.EncodeContact(msg.Contact.PhoneNumber, msg.Contact.FirstName)
	case msg.Text != "":
		return models.TextContent, ""
	}
	return "", ""
}

// splitFirst returns the first word of s and the remainder with its own
// spacing and line breaks intact.
func splitFirst(s string) (string, string) {
	s = strings.TrimSpace(s)
	i := strings.IndexFunc(s, isSpace)
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimSpace(s[i:])
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\n' || r == '\t' || r == '\r'
}

// User converts a Telegram user to the renderer's view of it.
func User(u *tgbotapi.User) notes.UserInfo {
	if u == nil {
		return notes.UserInfo{}
	}
	return notes.UserInfo{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Username:  u.UserName,
	}
}

func Chat(c *tgbotapi.Chat) notes.ChatInfo {
	if c == nil {
		return notes.ChatInfo{}
	}
	title := c.Title
	if title == "" {
		title = strings.TrimSpace(c.FirstName + " " + c.LastName)
	}
	return notes.ChatInfo{ID: c.ID, Title: title}
}
