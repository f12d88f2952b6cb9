package entity

import "time"

// SystemSenderID is the sentinel sender id for system-authored messages.
const SystemSenderID = "system"

type Message struct {
	ID             string    `json:"id" firestore:"id"`
	ConversationID string    `json:"conversation_id" firestore:"conversationId"`
	SenderID       string    `json:"sender_id" firestore:"senderId"`
	Text           string    `json:"text" firestore:"text"`
	Type           string    `json:"type" firestore:"type"` // "text", "system"
	Read           bool      `json:"read" firestore:"read"`
	CreatedAt      time.Time `json:"created_at" firestore:"createdAt"`
}

// IsSystem reports whether the message was authored by the system.
func (m *Message) IsSystem() bool {
	return m.SenderID == SystemSenderID
}
