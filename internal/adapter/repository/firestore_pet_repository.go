package repository

import (
	"context"
	"log"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"petmatch/internal/domain/entity"
	"petmatch/internal/domain/repository"
	"petmatch/pkg/errors"
)

// Pets live in a subcollection under their owning user:
// users/{ownerId}/pets/{petId}.
type firestorePetRepository struct {
	client *firestore.Client
}

func NewFirestorePetRepository(client *firestore.Client) repository.PetRepository {
	return &firestorePetRepository{
		client: client,
	}
}

func (r *firestorePetRepository) petsOf(ownerID string) *firestore.CollectionRef {
	return r.client.Collection("users").Doc(ownerID).Collection("pets")
}

func (r *firestorePetRepository) Create(ctx context.Context, pet *entity.Pet) error {
	if pet.ID == "" {
		pet.ID = uuid.New().String()
	}

	now := time.Now()
	pet.CreatedAt = now
	pet.UpdatedAt = now

	_, err := r.petsOf(pet.OwnerID).Doc(pet.ID).Set(ctx, pet)
	if err != nil {
		return errors.Internal("Failed to create pet", err)
	}

	return nil
}

func (r *firestorePetRepository) GetByID(ctx context.Context, ownerID, petID string) (*entity.Pet, error) {
	doc, err := r.petsOf(ownerID).Doc(petID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Pet", nil)
		}
		return nil, errors.Internal("Failed to get pet", err)
	}

	var pet entity.Pet
	if err := doc.DataTo(&pet); err != nil {
		return nil, errors.Internal("Failed to parse pet data", err)
	}
	pet.ID = doc.Ref.ID
	pet.OwnerID = ownerID

	return &pet, nil
}

func (r *firestorePetRepository) ListByOwner(ctx context.Context, ownerID string) ([]*entity.Pet, error) {
	iter := r.petsOf(ownerID).Documents(ctx)
	var pets []*entity.Pet

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			log.Printf("Firestore error while iterating pets for user %s: %v", ownerID, err)
			return nil, errors.Internal("Failed to iterate pets", err)
		}

		var pet entity.Pet
		if err := doc.DataTo(&pet); err != nil {
			log.Printf("Error parsing pet data %s for user %s: %v", doc.Ref.ID, ownerID, err)
			continue
		}
		pet.ID = doc.Ref.ID
		pet.OwnerID = ownerID

		pets = append(pets, &pet)
	}

	return pets, nil
}

func (r *firestorePetRepository) Update(ctx context.Context, pet *entity.Pet) error {
	pet.UpdatedAt = time.Now()

	_, err := r.petsOf(pet.OwnerID).Doc(pet.ID).Set(ctx, pet)
	if err != nil {
		return errors.Internal("Failed to update pet", err)
	}

	return nil
}

func (r *firestorePetRepository) Delete(ctx context.Context, ownerID, petID string) error {
	_, err := r.petsOf(ownerID).Doc(petID).Delete(ctx)
	if err != nil {
		return errors.Internal("Failed to delete pet", err)
	}

	return nil
}
