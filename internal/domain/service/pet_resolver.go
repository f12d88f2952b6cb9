package service

import (
	"context"

	"petmatch/internal/domain/entity"
	"petmatch/internal/domain/repository"
	"petmatch/pkg/logger"
)

// PetResolver resolves the best-known pet snapshot for a user. Resolution is
// a fixed ordered list of strategies folded to the first hit; absence and
// read failures degrade silently, so the match workflow can complete even
// when upstream data was deleted in the meantime.
type PetResolver struct {
	petRepo  repository.PetRepository
	userRepo repository.UserRepository
}

func NewPetResolver(petRepo repository.PetRepository, userRepo repository.UserRepository) *PetResolver {
	return &PetResolver{
		petRepo:  petRepo,
		userRepo: userRepo,
	}
}

// petStrategy returns nil when it cannot produce a snapshot; errors are
// treated the same as "not found".
type petStrategy func(ctx context.Context, userID, preferredPetID string) *entity.PetSnapshot

// Resolve never fails: when no strategy yields a real pet, the placeholder
// snapshot is returned.
func (r *PetResolver) Resolve(ctx context.Context, userID, preferredPetID string) entity.PetSnapshot {
	strategies := []petStrategy{
		r.exactPet,
		r.activePet,
		r.firstPet,
	}

	for _, resolve := range strategies {
		if snap := resolve(ctx, userID, preferredPetID); snap != nil {
			return *snap
		}
	}

	logger.Debug("PetResolver: no pet resolved for user %s, using placeholder", userID)
	return entity.PlaceholderPetSnapshot()
}

// exactPet returns the explicitly requested pet when it exists under userID.
// This is the path used for a match's own petId, which belongs to the sender.
func (r *PetResolver) exactPet(ctx context.Context, userID, preferredPetID string) *entity.PetSnapshot {
	if preferredPetID == "" {
		return nil
	}

	pet, err := r.petRepo.GetByID(ctx, userID, preferredPetID)
	if err != nil {
		logger.Debug("PetResolver: exact pet %s/%s not resolvable: %v", userID, preferredPetID, err)
		return nil
	}

	snap := pet.Snapshot()
	return &snap
}

// activePet follows the user's "last active pet" pointer, if it still
// references an existing pet.
func (r *PetResolver) activePet(ctx context.Context, userID, _ string) *entity.PetSnapshot {
	user, err := r.userRepo.GetByID(ctx, userID)
	if err != nil || user.ActivePetID == "" {
		return nil
	}

	pet, err := r.petRepo.GetByID(ctx, userID, user.ActivePetID)
	if err != nil {
		logger.Debug("PetResolver: active pet pointer %s/%s is stale: %v", userID, user.ActivePetID, err)
		return nil
	}

	snap := pet.Snapshot()
	return &snap
}

// firstPet falls back to any pet the user owns. Iteration order is
// store-defined.
func (r *PetResolver) firstPet(ctx context.Context, userID, _ string) *entity.PetSnapshot {
	pets, err := r.petRepo.ListByOwner(ctx, userID)
	if err != nil || len(pets) == 0 {
		return nil
	}

	snap := pets[0].Snapshot()
	return &snap
}
