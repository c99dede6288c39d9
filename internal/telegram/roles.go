package telegram

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"

	"github.com/xaenox/notes-bot/internal/notes"
)

const roleCacheSize = 4096

type roleKey struct {
	chatID int64
	userID int64
}

// Roles answers role lookups with getChatMember. Answers are cached for ttl;
// a zero ttl disables the cache.
type Roles struct {
	api    API
	cache  *expirable.LRU[roleKey, notes.Role]
	logger *zap.Logger
}

func NewRoles(api API, ttl time.Duration, logger *zap.Logger) *Roles {
	r := &Roles{api: api, logger: logger}
	if ttl > 0 {
		r.cache = expirable.NewLRU[roleKey, notes.Role](roleCacheSize, nil, ttl)
	}
	return r
}

func (r *Roles) Role(ctx context.Context, chatID, userID int64) (notes.Role, error) {
	// A user owns their private chat with the bot.
	if chatID == userID {
		return notes.RoleOwner, nil
	}

	key := roleKey{chatID: chatID, userID: userID}
	if r.cache != nil {
		if role, ok := r.cache.Get(key); ok {
			return role, nil
		}
	}

	if err := ctx.Err(); err != nil {
		return notes.RoleNone, err
	}

	member, err := r.api.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{ChatID: chatID, UserID: userID},
	})
	if err != nil {
		return notes.RoleNone, fmt.Errorf("failed to get chat member: %w", err)
	}

	role := RoleFromMember(member)
	if r.cache != nil {
		r.cache.Add(key, role)
	}

	r.logger.Debug("Resolved chat role",
		zap.Int64("chat_id", chatID),
		zap.Int64("user_id", userID),
		zap.String("role", role.String()))
	return role, nil
}

// Forget drops a cached answer. The notes service calls it when a user is
// denied, so a promotion takes effect on the next try.
func (r *Roles) Forget(chatID, userID int64) {
	if r.cache != nil {
		r.cache.Remove(roleKey{chatID: chatID, userID: userID})
	}
}

func RoleFromMember(m tgbotapi.ChatMember) notes.Role {
	switch {
	case m.IsCreator():
		return notes.RoleOwner
	case m.IsAdministrator():
		return notes.RoleAdmin
	default:
		return notes.RoleNone
	}
}
