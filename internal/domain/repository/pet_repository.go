package repository

import (
	"context"

	"petmatch/internal/domain/entity"
)

type PetRepository interface {
	Create(ctx context.Context, pet *entity.Pet) error
	// GetByID looks up a pet under its owning user. Returns a NOT_FOUND
	// AppError when no such pet exists.
	GetByID(ctx context.Context, ownerID, petID string) (*entity.Pet, error)
	// ListByOwner returns every pet owned by ownerID. Iteration order is
	// store-defined; callers must not depend on it.
	ListByOwner(ctx context.Context, ownerID string) ([]*entity.Pet, error)
	Update(ctx context.Context, pet *entity.Pet) error
	Delete(ctx context.Context, ownerID, petID string) error
}
