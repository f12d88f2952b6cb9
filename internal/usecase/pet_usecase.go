package usecase

import (
	"context"
	"io"
	"log"

	"petmatch/internal/domain/entity"
	"petmatch/internal/domain/repository"
	"petmatch/pkg/errors"
)

type PetUseCase struct {
	petRepo  repository.PetRepository
	userRepo repository.UserRepository
	storage  PhotoStorage
}

func NewPetUseCase(petRepo repository.PetRepository, userRepo repository.UserRepository, storage PhotoStorage) *PetUseCase {
	return &PetUseCase{
		petRepo:  petRepo,
		userRepo: userRepo,
		storage:  storage,
	}
}

type PetInput struct {
	Name   string
	Type   string
	Breed  string
	Age    int
	Gender string
	Photo  string
}

func (uc *PetUseCase) CreatePet(ctx context.Context, ownerID string, input PetInput) (*entity.Pet, error) {
	pet := &entity.Pet{
		OwnerID: ownerID,
		Name:    input.Name,
		Type:    input.Type,
		Breed:   input.Breed,
		Age:     input.Age,
		Gender:  input.Gender,
		Photo:   input.Photo,
	}

	if err := uc.petRepo.Create(ctx, pet); err != nil {
		return nil, err
	}

	// First pet becomes the active one so the match workflow can resolve it
	// without an explicit pointer.
	user, err := uc.userRepo.GetByID(ctx, ownerID)
	if err == nil && user.ActivePetID == "" {
		if err := uc.userRepo.UpdateFields(ctx, ownerID, map[string]interface{}{"activePetId": pet.ID}); err != nil {
			log.Printf("CreatePet Warning: Failed to set active pet for user %s: %v", ownerID, err)
		}
	}

	return pet, nil
}

func (uc *PetUseCase) GetPet(ctx context.Context, ownerID, petID string) (*entity.Pet, error) {
	return uc.petRepo.GetByID(ctx, ownerID, petID)
}

func (uc *PetUseCase) ListPets(ctx context.Context, ownerID string) ([]*entity.Pet, error) {
	return uc.petRepo.ListByOwner(ctx, ownerID)
}

func (uc *PetUseCase) UpdatePet(ctx context.Context, ownerID, petID string, input PetInput) (*entity.Pet, error) {
	pet, err := uc.petRepo.GetByID(ctx, ownerID, petID)
	if err != nil {
		return nil, err
	}

	pet.Name = input.Name
	pet.Type = input.Type
	pet.Breed = input.Breed
	pet.Age = input.Age
	pet.Gender = input.Gender
	if input.Photo != "" {
		pet.Photo = input.Photo
	}

	if err := uc.petRepo.Update(ctx, pet); err != nil {
		return nil, err
	}

	return pet, nil
}

func (uc *PetUseCase) DeletePet(ctx context.Context, ownerID, petID string) error {
	if _, err := uc.petRepo.GetByID(ctx, ownerID, petID); err != nil {
		return err
	}

	if err := uc.petRepo.Delete(ctx, ownerID, petID); err != nil {
		return err
	}

	// Clear a now-dangling active pointer; the pet resolver tolerates stale
	// pointers either way.
	user, err := uc.userRepo.GetByID(ctx, ownerID)
	if err == nil && user.ActivePetID == petID {
		if err := uc.userRepo.UpdateFields(ctx, ownerID, map[string]interface{}{"activePetId": ""}); err != nil {
			log.Printf("DeletePet Warning: Failed to clear active pet for user %s: %v", ownerID, err)
		}
	}

	return nil
}

// SetActivePet updates the "last active pet" pointer the pet resolver
// prefers when no explicit pet id is given.
func (uc *PetUseCase) SetActivePet(ctx context.Context, ownerID, petID string) error {
	if _, err := uc.petRepo.GetByID(ctx, ownerID, petID); err != nil {
		return err
	}

	return uc.userRepo.UpdateFields(ctx, ownerID, map[string]interface{}{"activePetId": petID})
}

func (uc *PetUseCase) UploadPetPhoto(ctx context.Context, ownerID, petID string, file io.Reader, contentType string) (*entity.Pet, error) {
	pet, err := uc.petRepo.GetByID(ctx, ownerID, petID)
	if err != nil {
		return nil, err
	}

	switch contentType {
	case "image/jpeg", "image/jpg", "image/png", "image/gif":
	default:
		return nil, errors.BadRequest("Unsupported photo content type", nil)
	}

	url, err := uc.storage.UploadFile(ctx, file, contentType, "pets/"+ownerID, true)
	if err != nil {
		return nil, errors.Internal("Failed to upload pet photo", err)
	}

	old := pet.PhotoRef()
	pet.Photo = url
	// Writes converge on the canonical field; legacy fields stop shadowing it.
	pet.PhotoURL = ""
	pet.ImageURL = ""

	if err := uc.petRepo.Update(ctx, pet); err != nil {
		return nil, err
	}

	if old != "" && old != entity.PlaceholderPetPhoto {
		if err := uc.storage.DeleteFile(ctx, old); err != nil {
			log.Printf("UploadPetPhoto Warning: Failed to delete previous photo for pet %s: %v", petID, err)
		}
	}

	return pet, nil
}
