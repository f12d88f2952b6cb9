package entity

import "time"

// MatchDetails is the view one participant consumes to render "who you
// matched with": it always describes the counterpart's pet and identity,
// never the participant's own.
type MatchDetails struct {
	PartnerID   string `json:"partner_id" firestore:"partnerId"`
	PartnerName string `json:"partner_name" firestore:"partnerName"`
	PetID       string `json:"pet_id,omitempty" firestore:"petId,omitempty"`
	PetName     string `json:"pet_name" firestore:"petName"`
	PetType     string `json:"pet_type" firestore:"petType"`
	PetBreed    string `json:"pet_breed,omitempty" firestore:"petBreed,omitempty"`
	PetPhoto    string `json:"pet_photo,omitempty" firestore:"petPhoto,omitempty"`
}

// Conversation is the durable chat channel created exactly once per accepted
// match. PetInfo maps each participant to their own pet snapshot;
// UserMatchDetails is intentionally asymmetric (A's entry describes B's pet,
// and vice versa).
type Conversation struct {
	ID               string                  `json:"id" firestore:"id"`
	MatchID          string                  `json:"match_id,omitempty" firestore:"matchId,omitempty"`
	Participants     []string                `json:"participants" firestore:"participants"`
	Status           string                  `json:"status" firestore:"status"` // "active"
	LastMessage      string                  `json:"last_message,omitempty" firestore:"lastMessage,omitempty"`
	LastMessageAt    time.Time               `json:"last_message_at" firestore:"lastMessageAt"`
	PetInfo          map[string]PetSnapshot  `json:"pet_info" firestore:"petInfo"`
	UserMatchDetails map[string]MatchDetails `json:"user_match_details" firestore:"userMatchDetails"`
	AcceptedBy       AcceptedBy              `json:"accepted_by" firestore:"acceptedBy"`
	CreatedAt        time.Time               `json:"created_at" firestore:"createdAt"`
	UpdatedAt        time.Time               `json:"updated_at" firestore:"updatedAt"`
}

// HasParticipant reports whether userID takes part in the conversation.
func (c *Conversation) HasParticipant(userID string) bool {
	for _, p := range c.Participants {
		if p == userID {
			return true
		}
	}
	return false
}
