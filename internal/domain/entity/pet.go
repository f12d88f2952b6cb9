package entity

import "time"

// Pet is a stored pet record, kept under users/{ownerId}/pets/{petId}.
// Older clients wrote the photo reference under different field names, so all
// three are kept; PhotoRef picks the first non-empty one.
type Pet struct {
	ID       string `json:"id" firestore:"id"`
	OwnerID  string `json:"owner_id" firestore:"ownerId"`
	Name     string `json:"name" firestore:"name"`
	Type     string `json:"type" firestore:"type"` // "dog", "cat", "bird", "other", ...
	Breed    string `json:"breed,omitempty" firestore:"breed,omitempty"`
	Age      int    `json:"age,omitempty" firestore:"age,omitempty"`
	Gender   string `json:"gender,omitempty" firestore:"gender,omitempty"`
	Photo    string `json:"photo,omitempty" firestore:"photo,omitempty"`
	PhotoURL string `json:"photo_url,omitempty" firestore:"photoUrl,omitempty"` // legacy
	ImageURL string `json:"image_url,omitempty" firestore:"imageUrl,omitempty"` // legacy

	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt"`
}

// PhotoRef returns the pet's photo reference, checking legacy field names in
// priority order.
func (p *Pet) PhotoRef() string {
	if p.Photo != "" {
		return p.Photo
	}
	if p.PhotoURL != "" {
		return p.PhotoURL
	}
	return p.ImageURL
}

// PetSnapshot is a denormalized copy of a pet's display attributes, embedded
// in Match and Conversation records independent of the live pet record.
type PetSnapshot struct {
	ID     string `json:"id" firestore:"id"`
	Name   string `json:"name" firestore:"name"`
	Type   string `json:"type" firestore:"type"`
	Breed  string `json:"breed,omitempty" firestore:"breed,omitempty"`
	Age    int    `json:"age,omitempty" firestore:"age,omitempty"`
	Gender string `json:"gender,omitempty" firestore:"gender,omitempty"`
	Photo  string `json:"photo,omitempty" firestore:"photo,omitempty"`
}

const (
	PlaceholderPetName  = "Bilinmeyen Hayvan"
	PlaceholderPetPhoto = "https://storage.googleapis.com/petmatch-assets/pet-placeholder.png"
)

// Snapshot derives the denormalized snapshot of a pet.
func (p *Pet) Snapshot() PetSnapshot {
	return PetSnapshot{
		ID:     p.ID,
		Name:   p.Name,
		Type:   p.Type,
		Breed:  p.Breed,
		Age:    p.Age,
		Gender: p.Gender,
		Photo:  p.PhotoRef(),
	}
}

// PlaceholderPetSnapshot is substituted when no real pet can be resolved for
// a participant, so the match workflow can still complete.
func PlaceholderPetSnapshot() PetSnapshot {
	return PetSnapshot{
		Name:  PlaceholderPetName,
		Type:  "other",
		Photo: PlaceholderPetPhoto,
	}
}
