package service

import (
	"context"
	"strings"

	"petmatch/internal/domain/entity"
	"petmatch/internal/domain/repository"
)

// IdentityResolver resolves a best-effort display name for a user. Profile
// read failures fall through the chain instead of propagating; identity
// resolution must never block the match workflow.
type IdentityResolver struct {
	userRepo repository.UserRepository
}

func NewIdentityResolver(userRepo repository.UserRepository) *IdentityResolver {
	return &IdentityResolver{userRepo: userRepo}
}

// Resolve walks the chain: structured first/last name, stored display name,
// the supplied fallback (typically the name cached on the match record at
// creation time), then the generic placeholder.
func (r *IdentityResolver) Resolve(ctx context.Context, userID, fallbackName string) string {
	user, err := r.userRepo.GetByID(ctx, userID)
	if err == nil {
		if name := user.StructuredName(); name != "" {
			return name
		}
		if name := strings.TrimSpace(user.DisplayName); name != "" {
			return name
		}
	}

	if name := strings.TrimSpace(fallbackName); name != "" {
		return name
	}

	return entity.PlaceholderDisplayName
}
