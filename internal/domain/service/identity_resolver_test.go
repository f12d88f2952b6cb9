package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"petmatch/internal/domain/entity"
	"petmatch/pkg/errors"
)

func TestIdentityResolverStructuredName(t *testing.T) {
	userRepo := newFakeUserRepo()
	userRepo.Create(context.Background(), &entity.User{
		ID:          "u1",
		FirstName:   " Ayşe ",
		LastName:    "Yılmaz",
		DisplayName: "ayse_y",
	})

	resolver := NewIdentityResolver(userRepo)

	assert.Equal(t, "Ayşe Yılmaz", resolver.Resolve(context.Background(), "u1", "cached"))
}

func TestIdentityResolverDisplayNameFallback(t *testing.T) {
	userRepo := newFakeUserRepo()
	userRepo.Create(context.Background(), &entity.User{ID: "u1", DisplayName: "ayse_y"})

	resolver := NewIdentityResolver(userRepo)

	assert.Equal(t, "ayse_y", resolver.Resolve(context.Background(), "u1", "cached"))
}

func TestIdentityResolverCachedNameFallback(t *testing.T) {
	resolver := NewIdentityResolver(newFakeUserRepo())

	// Missing profile: the name cached on the match record wins.
	assert.Equal(t, "Mehmet", resolver.Resolve(context.Background(), "ghost", "Mehmet"))
}

func TestIdentityResolverPlaceholder(t *testing.T) {
	resolver := NewIdentityResolver(newFakeUserRepo())

	assert.Equal(t, entity.PlaceholderDisplayName, resolver.Resolve(context.Background(), "ghost", ""))
	assert.Equal(t, entity.PlaceholderDisplayName, resolver.Resolve(context.Background(), "ghost", "   "))
}

func TestIdentityResolverSwallowsReadFailures(t *testing.T) {
	userRepo := newFakeUserRepo()
	userRepo.err = errors.Internal("store unavailable", nil)

	resolver := NewIdentityResolver(userRepo)

	assert.Equal(t, "cached", resolver.Resolve(context.Background(), "u1", "cached"))
	assert.Equal(t, entity.PlaceholderDisplayName, resolver.Resolve(context.Background(), "u1", ""))
}
