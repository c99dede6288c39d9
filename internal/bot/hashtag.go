package bot

import "strings"

// hashtagTrigger returns the note name of a message that starts with #name.
func hashtagTrigger(text string) (string, bool) {
	words := strings.Fields(text)
	if len(words) == 0 || !strings.HasPrefix(text, "#") {
		return "", false
	}

	tag := strings.ToLower(strings.TrimPrefix(words[0], "#"))
	if tag == "" {
		return "", false
	}
	return tag, true
}
