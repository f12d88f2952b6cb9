package entity

import (
	"strings"
	"time"
)

// PlaceholderDisplayName is returned when no name can be resolved for a user.
const PlaceholderDisplayName = "Kullanıcı"

type User struct {
	ID          string `json:"id" firestore:"id"`
	Email       string `json:"email" firestore:"email"`
	FirstName   string `json:"first_name,omitempty" firestore:"firstName,omitempty"`
	LastName    string `json:"last_name,omitempty" firestore:"lastName,omitempty"`
	DisplayName string `json:"display_name,omitempty" firestore:"displayName,omitempty"`
	Bio         string `json:"bio,omitempty" firestore:"bio,omitempty"`
	Phone       string `json:"phone,omitempty" firestore:"phone,omitempty"`
	PhotoURL    string `json:"photo_url,omitempty" firestore:"photoUrl,omitempty"`

	// ActivePetID points at the pet the user last marked as active; the pet
	// resolver prefers it when no explicit pet id is given.
	ActivePetID string `json:"active_pet_id,omitempty" firestore:"activePetId,omitempty"`

	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt"`
}

// StructuredName joins the structured name fields, trimmed. Empty when
// neither field is set.
func (u *User) StructuredName() string {
	return strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
}
