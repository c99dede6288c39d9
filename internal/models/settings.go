package models

// ChatSettings holds the per-chat notes preferences.
type ChatSettings struct {
	ChatID       int64 `json:"chat_id"`
	PrivateNotes bool  `json:"private_notes"`
}
