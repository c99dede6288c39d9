package bot

import (
	"context"
	"errors"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/xaenox/notes-bot/internal/notes"
	"github.com/xaenox/notes-bot/internal/telegram"
)

const (
	msgClearNotAdmin = "You're not even an admin, don't try this explosive shit!"
	msgClearNotOwner = "You're just an admin, not owner\nStay in your limits!"
	msgCleared       = "Cleared all notes!"
)

func (b *Bot) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	if query.From == nil {
		return
	}

	switch {
	case query.Data == callbackClearNotes:
		b.handleClearConfirm(ctx, query)
	case query.Data == callbackClose:
		b.handleClose(ctx, query)
	case strings.HasPrefix(query.Data, telegram.AlertPrefix):
		b.answerCallback(query, strings.TrimPrefix(query.Data, telegram.AlertPrefix), true)
	default:
		b.answerCallback(query, "", false)
	}
}

// handleClearConfirm is the second phase of /clearall. The role is checked
// again since anyone in the chat can press the button.
func (b *Bot) handleClearConfirm(ctx context.Context, query *tgbotapi.CallbackQuery) {
	if query.Message == nil || query.Message.Chat == nil {
		b.answerCallback(query, "", false)
		return
	}
	chatID := query.Message.Chat.ID

	err := b.service.ConfirmClearAll(ctx, chatID, query.From.ID)
	switch {
	case errors.Is(err, notes.ErrNotAdmin):
		b.answerCallback(query, msgClearNotAdmin, true)
		return
	case errors.Is(err, notes.ErrNotOwner):
		b.answerCallback(query, msgClearNotOwner, true)
		return
	case err != nil:
		b.logger.Error("Failed to clear notes",
			zap.Error(err),
			zap.Int64("chat_id", chatID),
			zap.Int64("user_id", query.From.ID))
		b.answerCallback(query, b.userMessage(err), true)
		return
	}

	edit := tgbotapi.NewEditMessageText(chatID, query.Message.MessageID, msgCleared)
	if _, err := b.api.Send(edit); err != nil {
		b.logger.Error("Failed to edit clear confirmation",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
	}
	b.answerCallback(query, msgCleared, false)
}

// handleClose removes an admin prompt. Only admins may dismiss it.
func (b *Bot) handleClose(ctx context.Context, query *tgbotapi.CallbackQuery) {
	if query.Message == nil || query.Message.Chat == nil {
		b.answerCallback(query, "", false)
		return
	}
	chatID := query.Message.Chat.ID

	if err := b.service.Authorize(ctx, chatID, query.From.ID, notes.RoleAdmin); err != nil {
		b.answerCallback(query, b.userMessage(err), true)
		return
	}

	if _, err := b.api.Request(tgbotapi.NewDeleteMessage(chatID, query.Message.MessageID)); err != nil {
		b.logger.Error("Failed to delete prompt",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
	}
	b.answerCallback(query, "", false)
}
