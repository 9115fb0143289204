package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"path"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// ObjectStorage uploads user files and removes superseded ones. Upload
// returns a URL the frontend can fetch directly.
type ObjectStorage interface {
	Upload(ctx context.Context, fileName string, data []byte) (string, error)
	Remove(ctx context.Context, fileURL string) error
}

const profileImagePrefix = "profileImages"

// S3Storage keeps profile images in a MinIO bucket.
type S3Storage struct {
	client *minio.Client
	bucket string
	logger *zap.Logger
}

func NewS3Storage(endpoint, accessKey, secretKey, bucket string, useSSL bool, logger *zap.Logger) (*S3Storage, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client for %s: %w", endpoint, err)
	}

	if err := client.MakeBucket(context.Background(), bucket, minio.MakeBucketOptions{}); err != nil {
		exists, existsErr := client.BucketExists(context.Background(), bucket)
		if existsErr != nil || !exists {
			return nil, fmt.Errorf("failed to make/verify bucket %s: %w", bucket, err)
		}
	}

	logger.Info("Object storage ready", zap.String("endpoint", endpoint), zap.String("bucket", bucket))
	return &S3Storage{client: client, bucket: bucket, logger: logger.Named("S3Storage")}, nil
}

// Upload stores the data under a fresh key, so a replaced image gets a new
// URL and browser caches never serve the old one.
func (s *S3Storage) Upload(ctx context.Context, fileName string, data []byte) (string, error) {
	objectKey := fmt.Sprintf("%s/%s%s", profileImagePrefix, uuid.NewString(), filepath.Ext(fileName))

	_, err := s.client.PutObject(ctx, s.bucket, objectKey, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: http.DetectContentType(data),
	})
	if err != nil {
		s.logger.Error("Failed to upload object", zap.String("key", objectKey), zap.Error(err))
		return "", fmt.Errorf("failed to upload object %s: %w", objectKey, err)
	}

	fileURL := fmt.Sprintf("%s/%s/%s", s.client.EndpointURL().String(), s.bucket, objectKey)
	s.logger.Info("Object uploaded", zap.String("key", objectKey), zap.Int("size_bytes", len(data)))
	return fileURL, nil
}

// Remove deletes the object a previously returned Upload URL points at.
func (s *S3Storage) Remove(ctx context.Context, fileURL string) error {
	objectKey := profileImagePrefix + "/" + path.Base(fileURL)
	if err := s.client.RemoveObject(ctx, s.bucket, objectKey, minio.RemoveObjectOptions{}); err != nil {
		s.logger.Error("Failed to remove object", zap.String("key", objectKey), zap.Error(err))
		return fmt.Errorf("failed to remove object %s: %w", objectKey, err)
	}
	return nil
}
