package bot

import (
	"errors"
	"fmt"
	"html"

	"github.com/xaenox/notes-bot/internal/notes"
)

// userMessage translates an error from the notes layer into the reply shown
// in the chat.
func (b *Bot) userMessage(err error) string {
	switch {
	case errors.Is(err, notes.ErrNameMissing):
		return "Error: You must give a name for this note!"
	case errors.Is(err, notes.ErrNameReserved):
		return "Cannot save a note which starts with '<' or '>'"
	case errors.Is(err, notes.ErrAlreadyExists):
		return "This note already exists!"
	case errors.Is(err, notes.ErrCapExceeded):
		return fmt.Sprintf("Only %d Notes are allowed per chat!\nTo add more Notes, remove the existing ones.", b.service.Limit())
	case errors.Is(err, notes.ErrEmptyContent):
		return "Error: There is no text in here!"
	case errors.Is(err, notes.ErrNoData):
		return "Error: There is no data in here!"
	case errors.Is(err, notes.ErrNotFound):
		return notes.MsgNoteNotFound
	case errors.Is(err, notes.ErrNoNotes):
		return "No notes are there in this chat"
	case errors.Is(err, notes.ErrNotAdmin):
		return "You need to be an admin to do this!"
	case errors.Is(err, notes.ErrNotOwner):
		return "Only the chat owner can do this!"
	}
	return "Error in notes: " + html.EscapeString(err.Error())
}

// isInternal reports whether err is worth an error log rather than being a
// plain answer to the user.
func isInternal(err error) bool {
	for _, known := range []error{
		notes.ErrNameMissing,
		notes.ErrNameReserved,
		notes.ErrAlreadyExists,
		notes.ErrCapExceeded,
		notes.ErrEmptyContent,
		notes.ErrNoData,
		notes.ErrNotFound,
		notes.ErrNoNotes,
		notes.ErrNotAdmin,
		notes.ErrNotOwner,
	} {
		if errors.Is(err, known) {
			return false
		}
	}
	return true
}
