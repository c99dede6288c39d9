package notes

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestExtractButtons(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantText string
		want     []Button
	}{
		{
			name:     "plain text",
			text:     "just text",
			wantText: "just text",
		},
		{
			name:     "url button",
			text:     "Read [Docs](buttonurl://example.com)",
			wantText: "Read ",
			want:     []Button{{Text: "Docs", Target: "example.com", Kind: ButtonURL}},
		},
		{
			name:     "full url target",
			text:     "[Go](buttonurl://https://go.dev)",
			wantText: "",
			want:     []Button{{Text: "Go", Target: "https://go.dev", Kind: ButtonURL}},
		},
		{
			name:     "alert button",
			text:     "x [Rules](buttonalert:Be nice)",
			wantText: "x ",
			want:     []Button{{Text: "Rules", Target: "Be nice", Kind: ButtonAlert}},
		},
		{
			name:     "same row",
			text:     "[A](buttonurl://a.com)[B](buttonurl://b.com:same)",
			wantText: "",
			want: []Button{
				{Text: "A", Target: "a.com", Kind: ButtonURL},
				{Text: "B", Target: "b.com", Kind: ButtonURL, SameRow: true},
			},
		},
		{
			name:     "escaped directive",
			text:     `\[A](buttonurl://a.com)`,
			wantText: "[A](buttonurl://a.com)",
		},
		{
			name:     "double backslash is not an escape",
			text:     `\\[A](buttonurl://a.com)`,
			wantText: `\\`,
			want:     []Button{{Text: "A", Target: "a.com", Kind: ButtonURL}},
		},
		{
			name:     "malformed kept",
			text:     "[A](buttonurl:) [B](http://x)",
			wantText: "[A](buttonurl:) [B](http://x)",
		},
		{
			name:     "blank label kept",
			text:     "[ ](buttonurl://a.com)",
			wantText: "[ ](buttonurl://a.com)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, buttons := ExtractButtons(tt.text)
			assert.Equal(t, tt.wantText, text)
			assert.Equal(t, tt.want, buttons)
		})
	}
}

func TestBuildKeyboard(t *testing.T) {
	assert.Nil(t, BuildKeyboard(nil))

	kb := BuildKeyboard([]Button{
		{Text: "a", SameRow: true},
		{Text: "b"},
		{Text: "c", SameRow: true},
		{Text: "d"},
	})

	require.Len(t, kb, 3)
	assert.Equal(t, []string{"a"}, labels(kb[0]))
	assert.Equal(t, []string{"b", "c"}, labels(kb[1]))
	assert.Equal(t, []string{"d"}, labels(kb[2]))
}

func labels(row []Button) []string {
	out := make([]string, 0, len(row))
	for _, b := range row {
		out = append(out, b.Text)
	}
	return out
}

func TestExtractButtons_Properties(t *testing.T) {
	t.Run("never panics", func(t *testing.T) {
		rapid.Check(t, func(t *rapid.T) {
			text := rapid.StringMatching(`[a-z\[\]\(\):/\\ ]{0,60}`).Draw(t, "text")
			cleaned, buttons := ExtractButtons(text)
			if len(cleaned) > len(text) {
				t.Fatalf("cleaned text grew: %q -> %q", text, cleaned)
			}
			for _, b := range buttons {
				if b.Text == "" || b.Target == "" {
					t.Fatalf("empty button parsed from %q: %+v", text, b)
				}
			}
		})
	})

	t.Run("generated directives are recovered", func(t *testing.T) {
		rapid.Check(t, func(t *rapid.T) {
			n := rapid.IntRange(0, 5).Draw(t, "n")
			prose := rapid.StringMatching(`[a-z ]{0,20}`).Draw(t, "prose")

			var (
				b    strings.Builder
				want []Button
			)
			b.WriteString(prose)
			for i := range n {
				label := rapid.StringMatching(`[a-z]{1,8}`).Draw(t, "label")
				target := rapid.StringMatching(`[a-z]{1,8}\.com`).Draw(t, "target")
				same := i > 0 && rapid.Bool().Draw(t, "same")

				b.WriteString("[" + label + "](buttonurl://" + target)
				if same {
					b.WriteString(":same")
				}
				b.WriteString(")")
				want = append(want, Button{Text: label, Target: target, Kind: ButtonURL, SameRow: same})
			}

			cleaned, got := ExtractButtons(b.String())
			if cleaned != prose {
				t.Fatalf("cleaned text %q, want %q", cleaned, prose)
			}
			if len(got) != len(want) {
				t.Fatalf("got %d buttons, want %d", len(got), len(want))
			}
			for i := range want {
				if got[i] != want[i] {
					t.Fatalf("button %d: got %+v, want %+v", i, got[i], want[i])
				}
			}

			rows := 0
			for _, btn := range want {
				if !btn.SameRow {
					rows++
				}
			}
			if kb := BuildKeyboard(got); len(kb) != rows {
				t.Fatalf("got %d rows, want %d", len(kb), rows)
			}
		})
	})
}
