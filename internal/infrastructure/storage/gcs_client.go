package storage

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/option"
)

// CloudStorageClient uploads pet photos to a GCS bucket.
type CloudStorageClient struct {
	client     *storage.Client
	bucketName string
}

func NewCloudStorageClient(ctx context.Context, bucketName string, opts ...option.ClientOption) (*CloudStorageClient, error) {
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	return &CloudStorageClient{
		client:     client,
		bucketName: bucketName,
	}, nil
}

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
}

// UploadFile stores the file under folder/ with a random name and returns
// its public URL. Only image content types are accepted.
func (c *CloudStorageClient) UploadFile(ctx context.Context, file io.Reader, fileType, folder string, isPublic bool) (string, error) {
	ext, ok := imageExtensions[fileType]
	if !ok {
		return "", fmt.Errorf("unsupported file type: %s", fileType)
	}

	objectName := fmt.Sprintf("%s/%s%s", folder, uuid.New().String(), ext)

	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	obj := c.client.Bucket(c.bucketName).Object(objectName)
	writer := obj.NewWriter(ctx)
	writer.ContentType = fileType

	if _, err := io.Copy(writer, file); err != nil {
		writer.Close()
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize upload: %w", err)
	}

	if isPublic {
		if err := obj.ACL().Set(ctx, storage.AllUsers, storage.RoleReader); err != nil {
			// Uniform bucket-level access rejects object ACLs; the bucket
			// policy decides visibility in that case.
			log.Printf("UploadFile Warning: Failed to set public ACL for %s: %v", objectName, err)
		}
	}

	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", c.bucketName, objectName), nil
}

// DeleteFile removes an object previously returned by UploadFile. URLs
// outside this bucket are ignored.
func (c *CloudStorageClient) DeleteFile(ctx context.Context, fileURL string) error {
	prefix := fmt.Sprintf("https://storage.googleapis.com/%s/", c.bucketName)
	if !strings.HasPrefix(fileURL, prefix) {
		return nil
	}
	objectName := strings.TrimPrefix(fileURL, prefix)

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := c.client.Bucket(c.bucketName).Object(objectName).Delete(ctx); err != nil {
		if err == storage.ErrObjectNotExist {
			return nil
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}

	return nil
}

func (c *CloudStorageClient) Close() error {
	return c.client.Close()
}
