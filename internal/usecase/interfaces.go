package usecase

import (
	"context"
	"io"
)

type FirebaseAuthClient interface {
	CreateUser(ctx context.Context, email, password, displayName string) (string, error)
	VerifyToken(ctx context.Context, token string) (string, error)
	GenerateToken(ctx context.Context, uid string) (string, error)
	DeleteUser(ctx context.Context, uid string) error
}

type PhotoStorage interface {
	UploadFile(ctx context.Context, file io.Reader, fileType, folder string, isPublic bool) (string, error)
	DeleteFile(ctx context.Context, fileURL string) error
}
