package entity

import "time"

type MatchStatus string

const (
	MatchStatusPending  MatchStatus = "pending"
	MatchStatusAccepted MatchStatus = "accepted"
	MatchStatusRejected MatchStatus = "rejected"
)

// AcceptedBy records which user accepted a match and with which pet.
type AcceptedBy struct {
	UserID string `json:"user_id" firestore:"userId"`
	PetID  string `json:"pet_id" firestore:"petId"`
}

// Match is a proposed introduction between two users, anchored on one of the
// sender's pets. PetInfo is a snapshot captured at creation time and is never
// re-synced with the live pet record.
type Match struct {
	ID             string      `json:"id" firestore:"id"`
	SenderID       string      `json:"sender_id" firestore:"senderId"`
	ReceiverID     string      `json:"receiver_id" firestore:"receiverId"`
	PetID          string      `json:"pet_id" firestore:"petId"`
	SenderName     string      `json:"sender_name,omitempty" firestore:"senderName,omitempty"` // cached at creation, may be stale
	Status         MatchStatus `json:"status" firestore:"status"`
	Message        string      `json:"message,omitempty" firestore:"message,omitempty"`
	PetInfo        PetSnapshot `json:"pet_info" firestore:"petInfo"`
	ConversationID string      `json:"conversation_id,omitempty" firestore:"conversationId,omitempty"`
	AcceptedBy     *AcceptedBy `json:"accepted_by,omitempty" firestore:"acceptedBy,omitempty"`
	CreatedAt      time.Time   `json:"created_at" firestore:"createdAt"`
	UpdatedAt      time.Time   `json:"updated_at" firestore:"updatedAt"`
}

// Involves reports whether userID is a participant of the match.
func (m *Match) Involves(userID string) bool {
	return m.SenderID == userID || m.ReceiverID == userID
}
