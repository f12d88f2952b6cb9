package usecase

import (
	"context"
	"log"

	"petmatch/internal/domain/entity"
	"petmatch/internal/domain/repository"
	"petmatch/pkg/errors"
)

type UserUseCase struct {
	userRepo   repository.UserRepository
	authClient FirebaseAuthClient
}

func NewUserUseCase(userRepo repository.UserRepository, authClient FirebaseAuthClient) *UserUseCase {
	return &UserUseCase{
		userRepo:   userRepo,
		authClient: authClient,
	}
}

type RegisterInput struct {
	Email       string
	Password    string
	FirstName   string
	LastName    string
	DisplayName string
}

type UpdateProfileInput struct {
	FirstName   string
	LastName    string
	DisplayName string
	Bio         string
	Phone       string
	PhotoURL    string
}

// Register creates the auth account and its profile document. When the
// profile write fails the auth account is removed again so the email is not
// left claimed without a profile.
func (uc *UserUseCase) Register(ctx context.Context, input RegisterInput) (*entity.User, error) {
	if _, err := uc.userRepo.GetByEmail(ctx, input.Email); err == nil {
		return nil, errors.Conflict("Email is already registered")
	}

	displayName := input.DisplayName
	if displayName == "" {
		displayName = input.FirstName
	}

	uid, err := uc.authClient.CreateUser(ctx, input.Email, input.Password, displayName)
	if err != nil {
		return nil, errors.Internal("Failed to create auth user", err)
	}

	user := &entity.User{
		ID:          uid,
		Email:       input.Email,
		FirstName:   input.FirstName,
		LastName:    input.LastName,
		DisplayName: input.DisplayName,
	}

	if err := uc.userRepo.Create(ctx, user); err != nil {
		if delErr := uc.authClient.DeleteUser(ctx, uid); delErr != nil {
			log.Printf("Register Warning: Failed to roll back auth user %s: %v", uid, delErr)
		}
		return nil, err
	}

	return user, nil
}

func (uc *UserUseCase) GetProfile(ctx context.Context, userID string) (*entity.User, error) {
	return uc.userRepo.GetByID(ctx, userID)
}

func (uc *UserUseCase) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*entity.User, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.FirstName = input.FirstName
	user.LastName = input.LastName
	user.DisplayName = input.DisplayName
	user.Bio = input.Bio
	user.Phone = input.Phone
	if input.PhotoURL != "" {
		user.PhotoURL = input.PhotoURL
	}

	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}
