package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"petmatch/internal/domain/entity"
	"petmatch/pkg/errors"
)

type fakePetRepo struct {
	pets map[string][]*entity.Pet // ownerID -> pets
	err  error
}

func newFakePetRepo() *fakePetRepo {
	return &fakePetRepo{pets: make(map[string][]*entity.Pet)}
}

func (f *fakePetRepo) add(pet *entity.Pet) {
	f.pets[pet.OwnerID] = append(f.pets[pet.OwnerID], pet)
}

func (f *fakePetRepo) Create(ctx context.Context, pet *entity.Pet) error {
	f.add(pet)
	return nil
}

func (f *fakePetRepo) GetByID(ctx context.Context, ownerID, petID string) (*entity.Pet, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, pet := range f.pets[ownerID] {
		if pet.ID == petID {
			return pet, nil
		}
	}
	return nil, errors.NotFound("Pet", nil)
}

func (f *fakePetRepo) ListByOwner(ctx context.Context, ownerID string) ([]*entity.Pet, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.pets[ownerID], nil
}

func (f *fakePetRepo) Update(ctx context.Context, pet *entity.Pet) error { return nil }

func (f *fakePetRepo) Delete(ctx context.Context, ownerID, petID string) error {
	pets := f.pets[ownerID]
	for i, pet := range pets {
		if pet.ID == petID {
			f.pets[ownerID] = append(pets[:i], pets[i+1:]...)
			return nil
		}
	}
	return errors.NotFound("Pet", nil)
}

type fakeUserRepo struct {
	users map[string]*entity.User
	err   error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*entity.User)}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *entity.User) error {
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	user, ok := f.users[id]
	if !ok {
		return nil, errors.NotFound("User", nil)
	}
	return user, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, errors.NotFound("User", nil)
}

func (f *fakeUserRepo) Update(ctx context.Context, user *entity.User) error {
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	user, ok := f.users[id]
	if !ok {
		return errors.NotFound("User", nil)
	}
	if v, ok := fields["activePetId"].(string); ok {
		user.ActivePetID = v
	}
	return nil
}

func (f *fakeUserRepo) Delete(ctx context.Context, id string) error {
	delete(f.users, id)
	return nil
}

func TestPetResolverExactID(t *testing.T) {
	petRepo := newFakePetRepo()
	userRepo := newFakeUserRepo()

	petRepo.add(&entity.Pet{ID: "p1", OwnerID: "u1", Name: "Rex", Type: "dog", Photo: "rex.jpg"})
	petRepo.add(&entity.Pet{ID: "p2", OwnerID: "u1", Name: "Mia", Type: "cat"})
	// Active pointer deliberately references a different pet; the explicit id
	// must still win.
	userRepo.Create(context.Background(), &entity.User{ID: "u1", ActivePetID: "p2"})

	resolver := NewPetResolver(petRepo, userRepo)
	snap := resolver.Resolve(context.Background(), "u1", "p1")

	assert.Equal(t, "p1", snap.ID)
	assert.Equal(t, "Rex", snap.Name)
	assert.Equal(t, "rex.jpg", snap.Photo)
}

func TestPetResolverActivePetPointer(t *testing.T) {
	petRepo := newFakePetRepo()
	userRepo := newFakeUserRepo()

	petRepo.add(&entity.Pet{ID: "p1", OwnerID: "u1", Name: "Rex", Type: "dog"})
	petRepo.add(&entity.Pet{ID: "p2", OwnerID: "u1", Name: "Mia", Type: "cat"})
	userRepo.Create(context.Background(), &entity.User{ID: "u1", ActivePetID: "p2"})

	resolver := NewPetResolver(petRepo, userRepo)
	snap := resolver.Resolve(context.Background(), "u1", "")

	assert.Equal(t, "p2", snap.ID)
	assert.Equal(t, "Mia", snap.Name)
}

func TestPetResolverStaleActivePointerFallsBack(t *testing.T) {
	petRepo := newFakePetRepo()
	userRepo := newFakeUserRepo()

	petRepo.add(&entity.Pet{ID: "p1", OwnerID: "u1", Name: "Rex", Type: "dog"})
	userRepo.Create(context.Background(), &entity.User{ID: "u1", ActivePetID: "deleted-pet"})

	resolver := NewPetResolver(petRepo, userRepo)
	snap := resolver.Resolve(context.Background(), "u1", "")

	assert.Equal(t, "p1", snap.ID, "stale pointer must degrade to first owned pet")
}

func TestPetResolverTotality(t *testing.T) {
	// Any user with at least one pet always resolves a real pet, never the
	// placeholder.
	petRepo := newFakePetRepo()
	userRepo := newFakeUserRepo()

	petRepo.add(&entity.Pet{ID: "p9", OwnerID: "u1", Name: "Boncuk", Type: "bird"})

	resolver := NewPetResolver(petRepo, userRepo)
	snap := resolver.Resolve(context.Background(), "u1", "")

	require.NotEmpty(t, snap.ID)
	assert.Equal(t, "p9", snap.ID)
	assert.NotEqual(t, entity.PlaceholderPetName, snap.Name)
}

func TestPetResolverPlaceholderForPetlessUser(t *testing.T) {
	resolver := NewPetResolver(newFakePetRepo(), newFakeUserRepo())

	snap := resolver.Resolve(context.Background(), "nobody", "")

	assert.Empty(t, snap.ID)
	assert.Equal(t, entity.PlaceholderPetName, snap.Name)
	assert.Equal(t, "other", snap.Type)
	assert.Equal(t, entity.PlaceholderPetPhoto, snap.Photo)
}

func TestPetResolverSwallowsStoreErrors(t *testing.T) {
	petRepo := newFakePetRepo()
	petRepo.err = errors.Internal("store unavailable", nil)

	resolver := NewPetResolver(petRepo, newFakeUserRepo())
	snap := resolver.Resolve(context.Background(), "u1", "p1")

	assert.Equal(t, entity.PlaceholderPetName, snap.Name)
}

func TestPetResolverLegacyPhotoFields(t *testing.T) {
	petRepo := newFakePetRepo()
	userRepo := newFakeUserRepo()

	petRepo.add(&entity.Pet{ID: "p1", OwnerID: "u1", Name: "Rex", Type: "dog", PhotoURL: "legacy.jpg"})
	petRepo.add(&entity.Pet{ID: "p2", OwnerID: "u2", Name: "Mia", Type: "cat", ImageURL: "older.jpg"})

	resolver := NewPetResolver(petRepo, userRepo)

	assert.Equal(t, "legacy.jpg", resolver.Resolve(context.Background(), "u1", "p1").Photo)
	assert.Equal(t, "older.jpg", resolver.Resolve(context.Background(), "u2", "p2").Photo)
}
