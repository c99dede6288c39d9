package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoteHash_Deterministic(t *testing.T) {
	a := NoteHash(-100123, "rules")
	b := NoteHash(-100123, "RULES")

	assert.Equal(t, a, b)
	assert.Len(t, a, 32)
	assert.NotContains(t, a, "-")
}

func TestNoteHash_UniquePerChatAndName(t *testing.T) {
	assert.NotEqual(t, NoteHash(1, "rules"), NoteHash(2, "rules"))
	assert.NotEqual(t, NoteHash(1, "rules"), NoteHash(1, "faq"))
}

func TestParseContentType(t *testing.T) {
	for _, ct := range contentTypes {
		got, err := ParseContentType(string(ct))
		require.NoError(t, err)
		assert.Equal(t, ct, got)
	}

	_, err := ParseContentType("hologram")
	assert.Error(t, err)

	_, err = ParseContentType("")
	assert.Error(t, err)
}

func TestContentType_SupportsCaption(t *testing.T) {
	tests := []struct {
		ct   ContentType
		want bool
	}{
		{TextContent, false},
		{PhotoContent, true},
		{VideoContent, true},
		{AudioContent, true},
		{DocumentContent, true},
		{AnimationContent, true},
		{VoiceContent, true},
		{StickerContent, false},
		{AnimatedStickerContent, false},
		{VideoNoteContent, false},
		{ContactContent, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.ct), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.ct.SupportsCaption())
		})
	}
}

func TestContact_RoundTrip(t *testing.T) {
	phone, name := DecodeContact(EncodeContact("+15550001", "Ann"))
	assert.Equal(t, "+15550001", phone)
	assert.Equal(t, "Ann", name)

	phone, name = DecodeContact("+15550002")
	assert.Equal(t, "+15550002", phone)
	assert.Empty(t, name)
}
