package notes

import (
	"regexp"
	"strings"
)

type ButtonKind int

const (
	// ButtonURL opens Target as a link.
	ButtonURL ButtonKind = iota
	// ButtonAlert shows Target in a popup when pressed.
	ButtonAlert
)

type Button struct {
	Text    string
	Target  string
	Kind    ButtonKind
	SameRow bool
}

func (b Button) IsURL() bool {
	return b.Kind == ButtonURL
}

// Keyboard is a grid of inline buttons, one slice per row.
type Keyboard [][]Button

// [label](buttonurl://target) or [label](buttonalert:text), optionally
// ending in :same to stay on the previous row.
var buttonPattern = regexp.MustCompile(`\[([^\[\]]+?)\]\((buttonurl|buttonalert):(?:/{0,2})([^()]+?)(:same)?\)`)

// ExtractButtons strips button directives from text and returns them in
// order of appearance. A directive preceded by an odd number of
// backslashes is escaped: one backslash is dropped and the directive is
// kept as text.
func ExtractButtons(text string) (string, []Button) {
	matches := buttonPattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text, nil
	}

	var (
		b       strings.Builder
		buttons []Button
		prev    int
	)

	for _, m := range matches {
		start, end := m[0], m[1]

		escapes := 0
		for i := start - 1; i >= 0 && text[i] == '\\'; i-- {
			escapes++
		}

		if escapes%2 == 1 {
			b.WriteString(text[prev : start-1])
			b.WriteString(text[start:end])
			prev = end
			continue
		}

		label := strings.TrimSpace(text[m[2]:m[3]])
		target := strings.TrimSpace(text[m[6]:m[7]])
		if label == "" || target == "" {
			continue
		}

		kind := ButtonURL
		if text[m[4]:m[5]] == "buttonalert" {
			kind = ButtonAlert
		}

		buttons = append(buttons, Button{
			Text:    label,
			Target:  target,
			Kind:    kind,
			SameRow: m[8] >= 0,
		})

		b.WriteString(text[prev:start])
		prev = end
	}

	b.WriteString(text[prev:])
	return b.String(), buttons
}

// BuildKeyboard lays buttons out in rows. It returns nil for no buttons.
func BuildKeyboard(buttons []Button) Keyboard {
	if len(buttons) == 0 {
		return nil
	}

	var rows Keyboard
	for _, btn := range buttons {
		if btn.SameRow && len(rows) > 0 {
			rows[len(rows)-1] = append(rows[len(rows)-1], btn)
			continue
		}
		rows = append(rows, []Button{btn})
	}
	return rows
}
