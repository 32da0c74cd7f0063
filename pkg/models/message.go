package models

// Sender identifies who produced a chat message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
	// SenderSystem marks entries the server synthesized, like the
	// placeholder shown for an unreadable stored message.
	SenderSystem Sender = "system"
)

type Message struct {
	ID     string `json:"id"`
	Text   string `json:"text"`
	Sender Sender `json:"sender"`
	// Timestamp is an ISO-8601 string; messages sort ascending by it
	// within a conversation.
	Timestamp string `json:"timestamp"`
	// UserID is empty for anonymous messages.
	UserID string `json:"userId,omitempty"`
}

// Valid reports whether a stored message carries the fields the
// conversation view needs. Malformed entries are rendered as inline
// placeholders rather than dropped.
func (m Message) Valid() bool {
	return m.Text != "" && m.Timestamp != ""
}
