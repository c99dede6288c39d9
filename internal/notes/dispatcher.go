package notes

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"go.uber.org/zap"

	"github.com/xaenox/notes-bot/internal/models"
	"github.com/xaenox/notes-bot/internal/storage"
)

// Replies sent by the dispatcher.
const (
	MsgNoteNotFound   = "This note does not exists!"
	MsgNoType         = "<b>Error:</b> Cannot find a type for this note!!"
	MsgCannotParse    = "An error has occured! Cannot parse note."
	MsgMediaDropped   = "(the attached media could not be sent)"
	MsgGetNoteByTag   = "You can get a note by #notename or <code>/get notename</code>"
	MsgAllNotesButton = "All Notes"
	MsgClickMe        = "Click Me!"
)

// Outcome is the terminal state of one retrieval.
type Outcome int

const (
	OutcomeNotFound Outcome = iota
	OutcomePrivateLink
	OutcomeDelivered
	// OutcomeFallback means the note reached the user in a degraded form:
	// without buttons, or as text instead of media.
	OutcomeFallback
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNotFound:
		return "not_found"
	case OutcomePrivateLink:
		return "private_link"
	case OutcomeDelivered:
		return "delivered"
	case OutcomeFallback:
		return "fallback"
	case OutcomeFailed:
		return "failed"
	}
	return "unknown"
}

// Request describes who asked for a note and where the answer goes.
type Request struct {
	// ChatID receives the reply.
	ChatID  int64
	ReplyTo int
	Name    string
	User    UserInfo
	Chat    ChatInfo
	// NoteChatID is the chat the note belongs to. Zero means ChatID.
	NoteChatID int64
}

func (r Request) noteChat() int64 {
	if r.NoteChatID != 0 {
		return r.NoteChatID
	}
	return r.ChatID
}

type DispatcherConfig struct {
	// NotifyOnFallback appends a notice when media had to be sent as text.
	NotifyOnFallback bool
	// Placeholders defaults to DefaultPlaceholders.
	Placeholders []string
	// Selector defaults to a randomly seeded one.
	Selector *Selector
}

// Dispatcher resolves notes and delivers them through a Sender.
type Dispatcher struct {
	notes    storage.NoteStorage
	settings storage.SettingsStorage
	sender   Sender
	links    LinkBuilder
	logger   *zap.Logger

	selector         *Selector
	placeholders     []string
	notifyOnFallback bool
}

func NewDispatcher(
	notes storage.NoteStorage,
	settings storage.SettingsStorage,
	sender Sender,
	links LinkBuilder,
	cfg DispatcherConfig,
	logger *zap.Logger,
) *Dispatcher {
	d := &Dispatcher{
		notes:            notes,
		settings:         settings,
		sender:           sender,
		links:            links,
		logger:           logger,
		selector:         cfg.Selector,
		placeholders:     cfg.Placeholders,
		notifyOnFallback: cfg.NotifyOnFallback,
	}
	if d.selector == nil {
		d.selector = NewSelector()
	}
	if d.placeholders == nil {
		d.placeholders = DefaultPlaceholders
	}
	return d
}

// Get resolves req.Name and either delivers it or, in private mode, replies
// with a deep link to the bot's private chat.
func (d *Dispatcher) Get(ctx context.Context, req Request) (Outcome, error) {
	note, err := d.lookup(ctx, req)
	if errors.Is(err, ErrNotFound) {
		return OutcomeNotFound, d.reply(ctx, req, MsgNoteNotFound, nil)
	}
	if err != nil {
		return d.fail(ctx, req, err)
	}

	private, err := d.settings.GetPrivateNotes(ctx, req.noteChat())
	if err != nil {
		return d.fail(ctx, req, fmt.Errorf("failed to get private notes setting: %w", err))
	}

	if private {
		kb := Keyboard{{{Text: MsgClickMe, Target: d.links.NoteLink(req.noteChat(), note.Hash), Kind: ButtonURL}}}
		text := fmt.Sprintf("Click on the button to get the note <code>%s</code>", html.EscapeString(note.Name))
		if err := d.reply(ctx, req, text, kb); err != nil {
			return d.fail(ctx, req, err)
		}
		return OutcomePrivateLink, nil
	}

	return d.Deliver(ctx, req, note)
}

// Deliver sends note to req.ChatID after variant selection, placeholder
// rendering and button extraction.
func (d *Dispatcher) Deliver(ctx context.Context, req Request, note *models.Note) (Outcome, error) {
	text := d.selector.Select(note.Value)
	text = Render(req.User, req.Chat, text, d.placeholders)
	text, buttons := ExtractButtons(text)

	msg := Message{
		ChatID:   req.ChatID,
		ReplyTo:  req.ReplyTo,
		Type:     note.Type,
		FileRef:  note.FileRef,
		Text:     text,
		Keyboard: BuildKeyboard(buttons),
	}

	switch note.Type {
	case models.TextContent:
		return d.deliverText(ctx, req, note, msg)
	case models.StickerContent, models.AnimatedStickerContent, models.VideoNoteContent, models.ContactContent:
		msg.Text = ""
		if err := d.send(ctx, msg); err != nil {
			return d.fail(ctx, req, err)
		}
		return OutcomeDelivered, nil
	case models.PhotoContent, models.VideoContent, models.AudioContent,
		models.DocumentContent, models.AnimationContent, models.VoiceContent:
		return d.deliverMedia(ctx, req, note, msg)
	default:
		return d.noType(ctx, req, note)
	}
}

func (d *Dispatcher) deliverText(ctx context.Context, req Request, note *models.Note, msg Message) (Outcome, error) {
	err := d.send(ctx, msg)
	if err == nil {
		return OutcomeDelivered, nil
	}
	if msg.Keyboard == nil {
		return d.fail(ctx, req, err)
	}

	d.logger.Warn("Note rejected with buttons, retrying without",
		zap.Int64("chat_id", req.ChatID),
		zap.String("note", note.Name),
		zap.Error(err))

	msg.Keyboard = nil
	if err := d.send(ctx, msg); err != nil {
		return d.fail(ctx, req, err)
	}
	if err := d.reply(ctx, req, MsgCannotParse, nil); err != nil {
		d.logger.Error("Failed to send parse notice", zap.Int64("chat_id", req.ChatID), zap.Error(err))
	}
	return OutcomeFallback, nil
}

func (d *Dispatcher) deliverMedia(ctx context.Context, req Request, note *models.Note, msg Message) (Outcome, error) {
	err := d.send(ctx, msg)
	if err == nil {
		return OutcomeDelivered, nil
	}

	d.logger.Error("Failed to send note media, falling back to text",
		zap.Int64("chat_id", req.ChatID),
		zap.String("note", note.Name),
		zap.String("type", note.Type.String()),
		zap.Error(err))

	fallback := msg
	fallback.Type = models.TextContent
	fallback.FileRef = ""
	if d.notifyOnFallback {
		fallback.Text = strings.TrimSpace(fallback.Text + "\n\n" + MsgMediaDropped)
	}
	if strings.TrimSpace(fallback.Text) == "" {
		return d.fail(ctx, req, err)
	}

	if err := d.send(ctx, fallback); err != nil {
		return d.fail(ctx, req, err)
	}
	return OutcomeFallback, nil
}

// GetRaw sends the stored value verbatim with formatting disabled. Variants,
// placeholders and buttons are left as typed.
func (d *Dispatcher) GetRaw(ctx context.Context, req Request) (Outcome, error) {
	note, err := d.lookup(ctx, req)
	if errors.Is(err, ErrNotFound) {
		return OutcomeNotFound, d.reply(ctx, req, MsgNoteNotFound, nil)
	}
	if err != nil {
		return d.fail(ctx, req, err)
	}

	msg := Message{
		ChatID:  req.ChatID,
		ReplyTo: req.ReplyTo,
		Type:    note.Type,
		FileRef: note.FileRef,
		Text:    note.Value,
		Raw:     true,
	}

	if !note.Type.Valid() {
		return d.noType(ctx, req, note)
	}
	if note.Type != models.TextContent && !note.Type.SupportsCaption() {
		msg.Text = ""
	}

	if err := d.send(ctx, msg); err != nil {
		return d.fail(ctx, req, err)
	}
	return OutcomeDelivered, nil
}

// ListNotes replies with the names of the chat's notes, or with a link to
// the private listing when private mode is on.
func (d *Dispatcher) ListNotes(ctx context.Context, req Request) (Outcome, error) {
	chatID := req.noteChat()
	title := html.EscapeString(req.Chat.Title)

	list, err := d.notes.ListNotes(ctx, chatID)
	if err != nil {
		return d.fail(ctx, req, fmt.Errorf("failed to list notes: %w", err))
	}
	if len(list) == 0 {
		return OutcomeNotFound, d.reply(ctx, req, fmt.Sprintf("There are no notes in <b>%s</b>.", title), nil)
	}

	private, err := d.settings.GetPrivateNotes(ctx, chatID)
	if err != nil {
		return d.fail(ctx, req, fmt.Errorf("failed to get private notes setting: %w", err))
	}

	if private {
		kb := Keyboard{{{Text: MsgAllNotesButton, Target: d.links.NotesLink(chatID), Kind: ButtonURL}}}
		if err := d.reply(ctx, req, "Click on the button below to get notes!", kb); err != nil {
			return d.fail(ctx, req, err)
		}
		return OutcomePrivateLink, nil
	}

	if err := d.reply(ctx, req, FormatNoteList(title, list), nil); err != nil {
		return d.fail(ctx, req, err)
	}
	return OutcomeDelivered, nil
}

// PrivateList is the deep-linked listing: one button per note, each opening
// that note in the private chat.
func (d *Dispatcher) PrivateList(ctx context.Context, req Request) (Outcome, error) {
	chatID := req.noteChat()

	list, err := d.notes.ListNotes(ctx, chatID)
	if err != nil {
		return d.fail(ctx, req, fmt.Errorf("failed to list notes: %w", err))
	}
	if len(list) == 0 {
		return OutcomeNotFound, d.reply(ctx, req, "There are no notes in this chat.", nil)
	}

	kb := make(Keyboard, 0, len(list))
	for _, n := range list {
		kb = append(kb, []Button{{Text: n.Name, Target: d.links.NoteLink(chatID, n.Hash), Kind: ButtonURL}})
	}

	if err := d.reply(ctx, req, "Here are the notes of this chat:", kb); err != nil {
		return d.fail(ctx, req, err)
	}
	return OutcomeDelivered, nil
}

// FormatNoteList renders the in-chat listing. title must already be escaped.
func FormatNoteList(title string, list []models.NoteSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Notes in <b>%s</b>:\n", title)
	for _, n := range list {
		fmt.Fprintf(&b, "-> <code>#%s</code>\n", html.EscapeString(n.Name))
	}
	b.WriteString("\n")
	b.WriteString(MsgGetNoteByTag)
	return b.String()
}

func (d *Dispatcher) lookup(ctx context.Context, req Request) (*models.Note, error) {
	note, err := d.notes.GetNote(ctx, req.noteChat(), req.Name)
	if errors.Is(err, storage.ErrNoteNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get note: %w", err)
	}
	return note, nil
}

func (d *Dispatcher) noType(ctx context.Context, req Request, note *models.Note) (Outcome, error) {
	d.logger.Error("Note has no usable type",
		zap.Int64("chat_id", req.noteChat()),
		zap.String("note", note.Name),
		zap.String("type", string(note.Type)))

	if err := d.reply(ctx, req, MsgNoType, nil); err != nil {
		return OutcomeFailed, err
	}
	return OutcomeFailed, ErrNoData
}

// fail reports err to the chat as a generic error and logs it.
func (d *Dispatcher) fail(ctx context.Context, req Request, err error) (Outcome, error) {
	d.logger.Error("Failed to deliver note",
		zap.Int64("chat_id", req.ChatID),
		zap.String("note", req.Name),
		zap.Error(err))

	text := "Error in notes: " + html.EscapeString(err.Error())
	if rerr := d.reply(ctx, req, text, nil); rerr != nil {
		d.logger.Error("Failed to report note error", zap.Int64("chat_id", req.ChatID), zap.Error(rerr))
	}
	return OutcomeFailed, err
}

func (d *Dispatcher) reply(ctx context.Context, req Request, text string, kb Keyboard) error {
	return d.send(ctx, Message{
		ChatID:   req.ChatID,
		ReplyTo:  req.ReplyTo,
		Type:     models.TextContent,
		Text:     text,
		Keyboard: kb,
	})
}

func (d *Dispatcher) send(ctx context.Context, msg Message) error {
	if err := d.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("%w: %w", ErrDelivery, err)
	}
	return nil
}
