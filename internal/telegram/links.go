package telegram

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	notePayloadPrefix  = "note_"
	notesPayloadPrefix = "notes_"
)

// DeepLinker builds t.me links that open the bot's private chat with a
// /start payload.
type DeepLinker struct {
	BotUsername string
}

func (l DeepLinker) NoteLink(chatID int64, hash string) string {
	return l.link(fmt.Sprintf("%s%d_%s", notePayloadPrefix, chatID, hash))
}

func (l DeepLinker) NotesLink(chatID int64) string {
	return l.link(fmt.Sprintf("%s%d", notesPayloadPrefix, chatID))
}

func (l DeepLinker) link(payload string) string {
	return "https://t.me/" + l.BotUsername + "?start=" + payload
}

// StartPayload is a decoded /start argument.
type StartPayload struct {
	ChatID int64
	// Hash is empty for the notes listing.
	Hash string
}

func (p StartPayload) IsListing() bool {
	return p.Hash == ""
}

// ParseStartPayload decodes the argument of /start produced by DeepLinker.
func ParseStartPayload(arg string) (StartPayload, bool) {
	arg = strings.TrimSpace(arg)

	switch {
	case strings.HasPrefix(arg, notesPayloadPrefix):
		chatID, err := strconv.ParseInt(strings.TrimPrefix(arg, notesPayloadPrefix), 10, 64)
		if err != nil {
			return StartPayload{}, false
		}
		return StartPayload{ChatID: chatID}, true

	case strings.HasPrefix(arg, notePayloadPrefix):
		chat, hash, ok := strings.Cut(strings.TrimPrefix(arg, notePayloadPrefix), "_")
		if !ok || hash == "" {
			return StartPayload{}, false
		}
		chatID, err := strconv.ParseInt(chat, 10, 64)
		if err != nil {
			return StartPayload{}, false
		}
		return StartPayload{ChatID: chatID, Hash: hash}, true
	}

	return StartPayload{}, false
}
