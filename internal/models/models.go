package models

import "time"

// UploadTimeLayout matches the timestamp format exposed to clients.
const UploadTimeLayout = "20060102_150405"

type ChatRole string

const (
	RoleSystem    ChatRole = "system"
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
)

type ChatMessage struct {
	Role    ChatRole `json:"role"`
	Content string   `json:"content"`
}

// PaperRecord is an ingested paper. Immutable once created; owned by the
// session that uploaded it and gone when that session is cleared.
type PaperRecord struct {
	Filename   string    `json:"filename"`
	UploadTime time.Time `json:"upload_time"`
	Source     string    `json:"source"`
	Chunks     []string  `json:"chunks"`
}

// PaperSummary is the listing view of a paper. PaperID is the paper's
// position within its session, which is how clients reference it.
type PaperSummary struct {
	PaperID    int    `json:"paper_id"`
	Filename   string `json:"filename"`
	UploadTime string `json:"upload_time"`
}
