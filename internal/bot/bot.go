package bot

import (
	"context"
	"runtime/debug"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"github.com/xaenox/notes-bot/internal/models"
	"github.com/xaenox/notes-bot/internal/notes"
	"github.com/xaenox/notes-bot/internal/telegram"
)

// API is the Bot API surface used by the update loop and the handlers.
type API interface {
	telegram.API
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

type Options struct {
	// Workers bounds the number of updates handled at once.
	Workers int
	// PollTimeout is the long polling timeout in seconds.
	PollTimeout int
}

type Bot struct {
	api        API
	sender     notes.Sender
	service    *notes.Service
	dispatcher *notes.Dispatcher
	opts       Options
	logger     *zap.Logger
}

func New(api API, sender notes.Sender, service *notes.Service, dispatcher *notes.Dispatcher, opts Options, logger *zap.Logger) *Bot {
	if opts.Workers <= 0 {
		opts.Workers = 16
	}
	if opts.PollTimeout <= 0 {
		opts.PollTimeout = 60
	}

	return &Bot{
		api:        api,
		sender:     sender,
		service:    service,
		dispatcher: dispatcher,
		opts:       opts,
		logger:     logger,
	}
}

// Start polls for updates until ctx is cancelled or the update channel is
// closed, then waits for in-flight handlers.
func (b *Bot) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.opts.PollTimeout

	updates := b.api.GetUpdatesChan(u)
	p := pool.New().WithMaxGoroutines(b.opts.Workers)
	defer p.Wait()

	// Handlers already running finish their replies after ctx is cancelled.
	handlerCtx := context.WithoutCancel(ctx)

	b.logger.Info("Bot started", zap.Int("workers", b.opts.Workers))

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.logger.Info("Bot stopping")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			p.Go(func() {
				b.safely(update, func() { b.handleUpdate(handlerCtx, update) })
			})
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	}
}

// safely keeps a panicking handler from taking the process down.
func (b *Bot) safely(update tgbotapi.Update, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Recovered from panic in update handler",
				zap.Int("update_id", update.UpdateID),
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()))
		}
	}()
	fn()
}

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	if message.From == nil || message.Chat == nil {
		return
	}

	if message.IsCommand() {
		b.handleCommand(ctx, message)
		return
	}

	if name, ok := hashtagTrigger(message.Text); ok && !message.Chat.IsPrivate() {
		b.handleHashtag(ctx, message, name)
	}
}

func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	switch message.Command() {
	case "start":
		b.handleStart(ctx, message)
	case "help":
		b.handleHelp(ctx, message)
	case "save":
		b.handleSave(ctx, message)
	case "get":
		b.handleGet(ctx, message)
	case "notes", "saved":
		b.handleNotes(ctx, message)
	case "clear":
		b.handleClear(ctx, message)
	case "clearall":
		b.handleClearAll(ctx, message)
	case "privnotes", "privatenotes":
		b.handlePrivNotes(ctx, message)
	}
}

// reply sends an HTML text reply to message.
func (b *Bot) reply(ctx context.Context, message *tgbotapi.Message, text string) {
	err := b.sender.Send(ctx, notes.Message{
		ChatID:  message.Chat.ID,
		ReplyTo: message.MessageID,
		Type:    models.TextContent,
		Text:    text,
	})
	if err != nil {
		b.logger.Error("Failed to send message",
			zap.Error(err),
			zap.Int64("chat_id", message.Chat.ID))
	}
}

func (b *Bot) replyError(ctx context.Context, message *tgbotapi.Message, err error) {
	if isInternal(err) {
		b.logger.Error("Notes command failed",
			zap.Error(err),
			zap.String("command", message.Command()),
			zap.Int64("chat_id", message.Chat.ID),
			zap.Int64("user_id", message.From.ID))
	}
	b.reply(ctx, message, b.userMessage(err))
}

// request builds a retrieval request answering message.
func request(message *tgbotapi.Message, name string) notes.Request {
	return notes.Request{
		ChatID:  message.Chat.ID,
		ReplyTo: replyTarget(message),
		Name:    name,
		User:    telegram.User(message.From),
		Chat:    telegram.Chat(message.Chat),
	}
}

// replyTarget answers the message being replied to, if any, so a note can
// be pointed at someone else's question.
func replyTarget(message *tgbotapi.Message) int {
	if message.ReplyToMessage != nil {
		return message.ReplyToMessage.MessageID
	}
	return message.MessageID
}

func (b *Bot) logOutcome(message *tgbotapi.Message, name string, out notes.Outcome, err error) {
	fields := []zap.Field{
		zap.Int64("chat_id", message.Chat.ID),
		zap.String("note", name),
		zap.String("outcome", out.String()),
	}
	if err != nil {
		b.logger.Warn("Note retrieval failed", append(fields, zap.Error(err))...)
		return
	}
	b.logger.Debug("Note retrieved", fields...)
}

func (b *Bot) answerCallback(query *tgbotapi.CallbackQuery, text string, alert bool) {
	cb := tgbotapi.NewCallback(query.ID, text)
	if alert {
		cb = tgbotapi.NewCallbackWithAlert(query.ID, text)
	}
	if _, err := b.api.Request(cb); err != nil {
		b.logger.Error("Failed to answer callback",
			zap.Error(err),
			zap.String("data", query.Data))
	}
}
