package s3

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/operman-code/petme/internal/platform/logger"
	"go.uber.org/zap"
)

const objectPrefix = "pets/"

// S3Storage stores listing images in a MinIO/S3 bucket. References handed back to
// callers are public object URLs.
type S3Storage struct {
	client  *minio.Client
	bucket  string
	baseURL string
	logger  *logger.Logger
}

func NewS3Storage(ctx context.Context, endpoint, accessKey, secretKey, bucketName string, useSSL bool, log *logger.Logger) (*S3Storage, error) {
	log.Info("Initializing S3 MinIO Storage",
		zap.String("endpoint", endpoint),
		zap.String("bucket", bucketName),
		zap.Bool("use_ssl", useSSL))

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		log.Error("S3Storage: failed to create MinIO client", zap.String("endpoint", endpoint), zap.Error(err))
		return nil, fmt.Errorf("failed to create minio client for endpoint %s: %w", endpoint, err)
	}

	exists, err := client.BucketExists(ctx, bucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", bucketName, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{}); err != nil {
			log.Error("S3Storage: failed to make bucket", zap.String("bucket", bucketName), zap.Error(err))
			return nil, fmt.Errorf("failed to make bucket %s: %w", bucketName, err)
		}
		log.Info("S3Storage: bucket created", zap.String("bucket", bucketName))
	}

	return &S3Storage{
		client:  client,
		bucket:  bucketName,
		baseURL: strings.TrimRight(client.EndpointURL().String(), "/") + "/" + bucketName + "/",
		logger:  log.Named("S3Storage"),
	}, nil
}

// objectKey derives a collision-free key that keeps the original extension.
func objectKey(fileName string) string {
	return objectPrefix + uuid.NewString() + strings.ToLower(filepath.Ext(fileName))
}

func (s *S3Storage) Upload(ctx context.Context, fileName, contentType string, data []byte) (string, error) {
	key := objectKey(fileName)
	info, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType:  contentType,
		UserMetadata: map[string]string{"original-filename": path.Base(fileName)},
	})
	if err != nil {
		s.logger.Error("PutObject failed", zap.String("key", key), zap.Error(err))
		return "", fmt.Errorf("failed to upload object %s to bucket %s: %w", key, s.bucket, err)
	}
	s.logger.Debug("Image uploaded", zap.String("key", info.Key), zap.Int64("size", info.Size))
	return s.baseURL + key, nil
}

// keyFromRef reverses Upload's URL scheme. Refs not produced by this store are rejected.
func (s *S3Storage) keyFromRef(ref string) (string, bool) {
	if !strings.HasPrefix(ref, s.baseURL) {
		return "", false
	}
	key := strings.TrimPrefix(ref, s.baseURL)
	return key, strings.HasPrefix(key, objectPrefix)
}

func (s *S3Storage) Remove(ctx context.Context, ref string) error {
	key, ok := s.keyFromRef(ref)
	if !ok {
		s.logger.Debug("Skipping foreign image reference", zap.String("ref", ref))
		return nil
	}
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove object %s: %w", key, err)
	}
	return nil
}
