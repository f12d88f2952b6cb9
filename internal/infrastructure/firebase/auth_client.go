package firebase

import (
	"context"
	"log"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"petmatch/pkg/errors"
)

// AuthClient wraps the Firebase Admin auth client behind the interface the
// usecases consume.
type AuthClient struct {
	client    *auth.Client
	projectID string
}

func NewAuthClient(ctx context.Context, projectID string, opts ...option.ClientOption) (*AuthClient, error) {
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, err
	}

	client, err := app.Auth(ctx)
	if err != nil {
		return nil, err
	}

	return &AuthClient{
		client:    client,
		projectID: projectID,
	}, nil
}

func (c *AuthClient) CreateUser(ctx context.Context, email, password, displayName string) (string, error) {
	params := (&auth.UserToCreate{}).
		Email(email).
		Password(password).
		DisplayName(displayName)

	user, err := c.client.CreateUser(ctx, params)
	if err != nil {
		if auth.IsEmailAlreadyExists(err) {
			return "", errors.Conflict("Email is already registered")
		}
		log.Printf("CreateUser Error: %v", err)
		return "", errors.Internal("Failed to create user", err)
	}

	return user.UID, nil
}

// VerifyToken validates an ID token and returns the subject uid.
func (c *AuthClient) VerifyToken(ctx context.Context, token string) (string, error) {
	decoded, err := c.client.VerifyIDToken(ctx, token)
	if err != nil {
		return "", errors.Unauthorized("Invalid or expired token", err)
	}

	return decoded.UID, nil
}

// GenerateToken mints a custom token for the uid. The client exchanges it
// for an ID token against the Firebase Auth REST endpoint.
func (c *AuthClient) GenerateToken(ctx context.Context, uid string) (string, error) {
	token, err := c.client.CustomToken(ctx, uid)
	if err != nil {
		log.Printf("GenerateToken Error: %v", err)
		return "", errors.Internal("Failed to generate token", err)
	}

	return token, nil
}

func (c *AuthClient) DeleteUser(ctx context.Context, uid string) error {
	if err := c.client.DeleteUser(ctx, uid); err != nil {
		if auth.IsUserNotFound(err) {
			return errors.NotFound("User", err)
		}
		log.Printf("DeleteUser Error: %v", err)
		return errors.Internal("Failed to delete user", err)
	}

	return nil
}
