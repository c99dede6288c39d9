package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/xaenox/notes-bot/internal/models"
	"github.com/xaenox/notes-bot/internal/notes"
)

// AlertPrefix marks callback data of alert buttons. The rest of the data is
// the alert text.
const AlertPrefix = "note_alert:"

// maxCallbackData is Telegram's limit for callback_data in bytes.
const maxCallbackData = 64

// API is the subset of *tgbotapi.BotAPI the bot uses.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetChatMember(config tgbotapi.GetChatMemberConfig) (tgbotapi.ChatMember, error)
}

// Sender delivers notes.Message values through the Bot API.
type Sender struct {
	api    API
	logger *zap.Logger
}

func NewSender(api API, logger *zap.Logger) *Sender {
	return &Sender{api: api, logger: logger}
}

func (s *Sender) Send(ctx context.Context, msg notes.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.send(msg)
	if err == nil || msg.Raw || !isParseError(err) {
		return err
	}

	s.logger.Warn("Note is not valid HTML, sending as plain text",
		zap.Int64("chat_id", msg.ChatID),
		zap.Error(err))

	msg.Raw = true
	return s.send(msg)
}

func (s *Sender) send(msg notes.Message) error {
	c, err := Chattable(msg)
	if err != nil {
		return err
	}

	if _, err := s.api.Send(c); err != nil {
		s.logger.Debug("Telegram rejected message",
			zap.Int64("chat_id", msg.ChatID),
			zap.String("type", msg.Type.String()),
			zap.Error(err))
		return err
	}
	return nil
}

// isParseError reports whether Telegram refused the message because of its
// markup.
func isParseError(err error) bool {
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		return containsParseError(apiErr.Message)
	}
	return containsParseError(err.Error())
}

func containsParseError(s string) bool {
	s = strings.ToLower(s)
	return strings.Contains(s, "can't parse entities") || strings.Contains(s, "can't parse entity")
}

// Chattable converts msg into the matching Bot API request.
func Chattable(msg notes.Message) (tgbotapi.Chattable, error) {
	parseMode := tgbotapi.ModeHTML
	if msg.Raw {
		parseMode = ""
	}

	file := tgbotapi.FileID(msg.FileRef)
	markup := InlineKeyboard(msg.Keyboard)

	switch msg.Type {
	case models.TextContent:
		m := tgbotapi.NewMessage(msg.ChatID, msg.Text)
		m.ParseMode = parseMode
		m.DisableWebPagePreview = true
		m.ReplyToMessageID = msg.ReplyTo
		if markup != nil {
			m.ReplyMarkup = markup
		}
		return m, nil

	case models.StickerContent, models.AnimatedStickerContent:
		m := tgbotapi.NewSticker(msg.ChatID, file)
		m.ReplyToMessageID = msg.ReplyTo
		if markup != nil {
			m.ReplyMarkup = markup
		}
		return m, nil

	case models.VideoNoteContent:
		m := tgbotapi.NewVideoNote(msg.ChatID, 0, file)
		m.ReplyToMessageID = msg.ReplyTo
		if markup != nil {
			m.ReplyMarkup = markup
		}
		return m, nil

	case models.ContactContent:
		phone, first := models.DecodeContact(msg.FileRef)
		if phone == "" {
			return nil, fmt.Errorf("malformed contact reference %q", msg.FileRef)
		}
		m := tgbotapi.NewContact(msg.ChatID, phone, first)
		m.ReplyToMessageID = msg.ReplyTo
		if markup != nil {
			m.ReplyMarkup = markup
		}
		return m, nil

	case models.PhotoContent:
		m := tgbotapi.NewPhoto(msg.ChatID, file)
		m.Caption, m.ParseMode, m.ReplyToMessageID = msg.Text, parseMode, msg.ReplyTo
		if markup != nil {
			m.ReplyMarkup = markup
		}
		return m, nil

	case models.VideoContent:
		m := tgbotapi.NewVideo(msg.ChatID, file)
		m.Caption, m.ParseMode, m.ReplyToMessageID = msg.Text, parseMode, msg.ReplyTo
		if markup != nil {
			m.ReplyMarkup = markup
		}
		return m, nil

	case models.AudioContent:
		m := tgbotapi.NewAudio(msg.ChatID, file)
		m.Caption, m.ParseMode, m.ReplyToMessageID = msg.Text, parseMode, msg.ReplyTo
		if markup != nil {
			m.ReplyMarkup = markup
		}
		return m, nil

	case models.DocumentContent:
		m := tgbotapi.NewDocument(msg.ChatID, file)
		m.Caption, m.ParseMode, m.ReplyToMessageID = msg.Text, parseMode, msg.ReplyTo
		if markup != nil {
			m.ReplyMarkup = markup
		}
		return m, nil

	case models.AnimationContent:
		m := tgbotapi.NewAnimation(msg.ChatID, file)
		m.Caption, m.ParseMode, m.ReplyToMessageID = msg.Text, parseMode, msg.ReplyTo
		if markup != nil {
			m.ReplyMarkup = markup
		}
		return m, nil

	case models.VoiceContent:
		m := tgbotapi.NewVoice(msg.ChatID, file)
		m.Caption, m.ParseMode, m.ReplyToMessageID = msg.Text, parseMode, msg.ReplyTo
		if markup != nil {
			m.ReplyMarkup = markup
		}
		return m, nil
	}

	return nil, fmt.Errorf("unsupported content type %q", msg.Type)
}

// InlineKeyboard converts a notes keyboard to Bot API markup. It returns nil
// for an empty keyboard.
func InlineKeyboard(kb notes.Keyboard) *tgbotapi.InlineKeyboardMarkup {
	if len(kb) == 0 {
		return nil
	}

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(kb))
	for _, row := range kb {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			if b.IsURL() {
				buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonURL(b.Text, b.Target))
				continue
			}
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Text, AlertData(b.Target)))
		}
		rows = append(rows, buttons)
	}

	markup := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &markup
}

// AlertData encodes alert text as callback data, cut to fit Telegram's limit
// without splitting a UTF-8 sequence.
func AlertData(text string) string {
	data := AlertPrefix + text
	if len(data) <= maxCallbackData {
		return data
	}

	data = data[:maxCallbackData]
	for !utf8.ValidString(data) {
		data = data[:len(data)-1]
	}
	return data
}
