package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/xaenox/notes-bot/internal/notes"
	"github.com/xaenox/notes-bot/internal/telegram"
)

// Callback data of the clear-all confirmation keyboard.
const (
	callbackClearNotes = "clear_notes"
	callbackClose      = "close_admin"
)

func (b *Bot) handleStart(ctx context.Context, message *tgbotapi.Message) {
	if message.Chat.IsPrivate() {
		if payload, ok := telegram.ParseStartPayload(message.CommandArguments()); ok {
			b.handlePrivateStart(ctx, message, payload)
			return
		}
	}

	b.reply(ctx, message, `Hi! I keep notes for your group. 📝
Use /help to see what I can do.`)
}

// handlePrivateStart serves the deep links produced in private notes mode.
func (b *Bot) handlePrivateStart(ctx context.Context, message *tgbotapi.Message, payload telegram.StartPayload) {
	req := request(message, "")
	req.ReplyTo = message.MessageID
	req.NoteChatID = payload.ChatID

	if payload.IsListing() {
		out, err := b.dispatcher.PrivateList(ctx, req)
		b.logOutcome(message, "", out, err)
		return
	}

	note, err := b.service.GetNoteByHash(ctx, payload.ChatID, payload.Hash)
	if err != nil {
		b.replyError(ctx, message, err)
		return
	}

	req.Name = note.Name
	out, err := b.dispatcher.Deliver(ctx, req, note)
	b.logOutcome(message, note.Name, out, err)
}

func (b *Bot) handleHelp(ctx context.Context, message *tgbotapi.Message) {
	help := `<b>Notes</b>
/get &lt;name&gt; - get a note
#name - same as /get
/get &lt;name&gt; noformat - get a note as it was saved
/notes or /saved - list the notes of this chat

<b>Admins only</b>
/save &lt;name&gt; &lt;text&gt; - save a note, or reply to a message to save it
/clear &lt;name&gt; - delete a note
/clearall - delete every note (chat owner)
/privnotes on|off - send notes in private instead of in the group

Notes may contain {first}, {last}, {fullname}, {id}, {username}, {mention} and {chatname}.
Buttons: [label](buttonurl://example.com) or [label](buttonalert:text), add :same to keep a button on the previous row.
Separate alternative texts with %%% to pick one at random.`

	b.reply(ctx, message, help)
}

func (b *Bot) handleSave(ctx context.Context, message *tgbotapi.Message) {
	if err := b.service.Authorize(ctx, message.Chat.ID, message.From.ID, notes.RoleAdmin); err != nil {
		b.replyError(ctx, message, err)
		return
	}

	req := telegram.ExtractNote(message)
	note, err := b.service.SaveNote(ctx, req)
	if err != nil {
		b.replySaveError(ctx, message, req, err)
		return
	}

	name := html.EscapeString(note.Name)
	b.reply(ctx, message, fmt.Sprintf(
		"Saved note <code>%s</code>!\nGet it with <code>/get %s</code> or <code>#%s</code>",
		name, name, name))
}

func (b *Bot) replySaveError(ctx context.Context, message *tgbotapi.Message, req notes.SaveRequest, err error) {
	command := "<code>" + html.EscapeString(message.Text) + "</code>\n\n"

	switch {
	case errors.Is(err, notes.ErrAlreadyExists):
		b.reply(ctx, message, fmt.Sprintf("This note (%s) already exists!", html.EscapeString(strings.ToLower(req.Name))))
	case errors.Is(err, notes.ErrNameMissing),
		errors.Is(err, notes.ErrEmptyContent),
		errors.Is(err, notes.ErrNoData):
		b.reply(ctx, message, command+b.userMessage(err))
	default:
		b.replyError(ctx, message, err)
	}
}

func (b *Bot) handleGet(ctx context.Context, message *tgbotapi.Message) {
	args := strings.Fields(message.CommandArguments())
	if len(args) == 0 {
		b.reply(ctx, message, "Give me a note tag!")
		return
	}

	name := strings.ToLower(strings.TrimPrefix(args[0], "#"))
	req := request(message, name)

	var (
		out notes.Outcome
		err error
	)
	if len(args) > 1 && isRawFlag(args[1]) {
		out, err = b.dispatcher.GetRaw(ctx, req)
	} else {
		out, err = b.dispatcher.Get(ctx, req)
	}
	b.logOutcome(message, name, out, err)
}

func isRawFlag(s string) bool {
	switch strings.ToLower(s) {
	case "noformat", "raw":
		return true
	}
	return false
}

// handleHashtag answers #name. Unknown names are ignored so ordinary
// hashtags in conversation stay quiet.
func (b *Bot) handleHashtag(ctx context.Context, message *tgbotapi.Message, name string) {
	if _, err := b.service.GetNote(ctx, message.Chat.ID, name); err != nil {
		if !errors.Is(err, notes.ErrNotFound) {
			b.logger.Error("Failed to look up hashtag note",
				zap.Error(err),
				zap.Int64("chat_id", message.Chat.ID),
				zap.String("note", name))
		}
		return
	}

	out, err := b.dispatcher.Get(ctx, request(message, name))
	b.logOutcome(message, name, out, err)
}

func (b *Bot) handleNotes(ctx context.Context, message *tgbotapi.Message) {
	out, err := b.dispatcher.ListNotes(ctx, request(message, ""))
	b.logOutcome(message, "", out, err)
}

func (b *Bot) handleClear(ctx context.Context, message *tgbotapi.Message) {
	if err := b.service.Authorize(ctx, message.Chat.ID, message.From.ID, notes.RoleAdmin); err != nil {
		b.replyError(ctx, message, err)
		return
	}

	args := strings.Fields(message.CommandArguments())
	if len(args) == 0 {
		b.reply(ctx, message, "What do you want to clear?")
		return
	}

	name := strings.ToLower(strings.TrimPrefix(args[0], "#"))
	removed, err := b.service.RemoveNote(ctx, message.Chat.ID, name)
	if err != nil {
		b.replyError(ctx, message, err)
		return
	}
	if !removed {
		b.reply(ctx, message, "This note does not exist!")
		return
	}

	b.reply(ctx, message, fmt.Sprintf("Note '<code>%s</code>' deleted!", html.EscapeString(name)))
}

// handleClearAll is the first phase of the clear: it only asks for
// confirmation.
func (b *Bot) handleClearAll(ctx context.Context, message *tgbotapi.Message) {
	err := b.service.RequestClearAll(ctx, message.Chat.ID, message.From.ID)
	if err != nil {
		b.replyError(ctx, message, err)
		return
	}

	msg := tgbotapi.NewMessage(message.Chat.ID, "Are you sure you want to clear all notes?")
	msg.ReplyToMessageID = message.MessageID
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⚠️ Confirm", callbackClearNotes),
			tgbotapi.NewInlineKeyboardButtonData("❌ Cancel", callbackClose),
		),
	)

	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send clear confirmation",
			zap.Error(err),
			zap.Int64("chat_id", message.Chat.ID))
	}
}

func (b *Bot) handlePrivNotes(ctx context.Context, message *tgbotapi.Message) {
	if err := b.service.Authorize(ctx, message.Chat.ID, message.From.ID, notes.RoleAdmin); err != nil {
		b.replyError(ctx, message, err)
		return
	}

	args := strings.Fields(message.CommandArguments())
	if len(args) == 0 {
		enabled, err := b.service.PrivateNotes(ctx, message.Chat.ID)
		if err != nil {
			b.replyError(ctx, message, err)
			return
		}
		b.reply(ctx, message, fmt.Sprintf("Private Notes: %v", enabled))
		return
	}

	var enabled bool
	switch strings.ToLower(args[0]) {
	case "on", "yes":
		enabled = true
	case "off", "no":
		enabled = false
	default:
		b.reply(ctx, message, "Enter correct option")
		return
	}

	if err := b.service.SetPrivateNotes(ctx, message.Chat.ID, enabled); err != nil {
		b.replyError(ctx, message, err)
		return
	}

	if enabled {
		b.reply(ctx, message, "Set private notes to On")
	} else {
		b.reply(ctx, message, "Set private notes to Off")
	}
}
