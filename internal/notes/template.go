package notes

import (
	"html"
	"strconv"
	"strings"
)

// Placeholders understood by Render.
const (
	PlaceholderFirst    = "first"
	PlaceholderLast     = "last"
	PlaceholderFullName = "fullname"
	PlaceholderID       = "id"
	PlaceholderUsername = "username"
	PlaceholderMention  = "mention"
	PlaceholderChatName = "chatname"
)

var DefaultPlaceholders = []string{
	PlaceholderFirst,
	PlaceholderLast,
	PlaceholderFullName,
	PlaceholderID,
	PlaceholderUsername,
	PlaceholderMention,
	PlaceholderChatName,
}

// UserInfo is the invoking user as seen by the template renderer.
type UserInfo struct {
	ID        int64
	FirstName string
	LastName  string
	Username  string
}

type ChatInfo struct {
	ID    int64
	Title string
}

// Mention returns an HTML link to the user.
func (u UserInfo) Mention() string {
	return `<a href="tg://user?id=` + strconv.FormatInt(u.ID, 10) + `">` + html.EscapeString(u.FirstName) + `</a>`
}

func (u UserInfo) value(placeholder string, chat ChatInfo) string {
	first := html.EscapeString(u.FirstName)

	switch placeholder {
	case PlaceholderFirst:
		return first
	case PlaceholderLast:
		if u.LastName == "" {
			return first
		}
		return html.EscapeString(u.LastName)
	case PlaceholderFullName:
		if u.LastName == "" {
			return first
		}
		return first + " " + html.EscapeString(u.LastName)
	case PlaceholderID:
		return strconv.FormatInt(u.ID, 10)
	case PlaceholderUsername:
		if u.Username == "" {
			return u.Mention()
		}
		return "@" + html.EscapeString(u.Username)
	case PlaceholderMention:
		return u.Mention()
	case PlaceholderChatName:
		return html.EscapeString(chat.Title)
	}
	return ""
}

// Render replaces every {placeholder} listed in placeholders with the
// matching attribute of user or chat. Anything else, including stray or
// unbalanced braces, is copied through unchanged.
func Render(user UserInfo, chat ChatInfo, text string, placeholders []string) string {
	if !strings.Contains(text, "{") {
		return text
	}

	known := make(map[string]struct{}, len(placeholders))
	for _, p := range placeholders {
		known[p] = struct{}{}
	}

	var b strings.Builder
	b.Grow(len(text))

	for {
		open := strings.IndexByte(text, '{')
		if open < 0 {
			b.WriteString(text)
			break
		}

		end := strings.IndexByte(text[open+1:], '}')
		if end < 0 {
			b.WriteString(text)
			break
		}
		end += open + 1

		name := text[open+1 : end]
		if strings.IndexByte(name, '{') >= 0 {
			// "{{first}" - emit up to the inner brace and retry from there
			inner := open + 1 + strings.LastIndexByte(name, '{')
			b.WriteString(text[:inner])
			text = text[inner:]
			continue
		}

		b.WriteString(text[:open])
		if _, ok := known[name]; ok {
			b.WriteString(user.value(name, chat))
		} else {
			b.WriteString(text[open : end+1])
		}
		text = text[end+1:]
	}

	return b.String()
}
