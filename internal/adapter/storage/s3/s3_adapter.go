package s3

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/Abdurahmanit/webimoveis/internal/listing/domain"
	"github.com/Abdurahmanit/webimoveis/internal/platform/logger"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type S3Storage struct {
	client *minio.Client
	bucket string
	logger *logger.Logger
}

// NewS3Storage connects to MinIO and makes sure the bucket exists.
func NewS3Storage(ctx context.Context, endpoint, accessKey, secretKey, bucketName string, useSSL bool, log *logger.Logger) (*S3Storage, error) {
	log.Info("Initializing S3 MinIO Storage", "endpoint", endpoint, "bucket", bucketName, "use_ssl", useSSL)

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		log.Error("S3Storage: failed to create MinIO client", "endpoint", endpoint, "error", err.Error())
		return nil, fmt.Errorf("failed to create minio client for endpoint %s: %w", endpoint, err)
	}

	exists, err := client.BucketExists(ctx, bucketName)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", bucketName, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{}); err != nil {
			log.Error("S3Storage: failed to make bucket", "bucket", bucketName, "error", err.Error())
			return nil, fmt.Errorf("make bucket %s: %w", bucketName, err)
		}
		log.Info("S3Storage: bucket created", "bucket", bucketName)
	}

	return &S3Storage{client: client, bucket: bucketName, logger: log}, nil
}

// Upload stores data under path and returns its URL.
func (s *S3Storage) Upload(ctx context.Context, path, contentType string, data []byte) (string, error) {
	key := strings.TrimPrefix(path, "/")
	s.logger.Debug("S3Storage.Upload: uploading object", "bucket", s.bucket, "key", key, "size_bytes", len(data))

	info, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		s.logger.Error("S3Storage.Upload: PutObject failed", "bucket", s.bucket, "key", key, "error", err.Error())
		return "", fmt.Errorf("failed to upload object %s to bucket %s: %w", key, s.bucket, err)
	}
	s.logger.Info("S3Storage.Upload: object uploaded", "key", info.Key, "etag", info.ETag, "size", info.Size)
	return s.objectURL(key), nil
}

func (s *S3Storage) Delete(ctx context.Context, path string) error {
	key := strings.TrimPrefix(path, "/")
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		s.logger.Error("S3Storage.Delete: RemoveObject failed", "bucket", s.bucket, "key", key, "error", err.Error())
		return fmt.Errorf("failed to delete object %s from bucket %s: %w", key, s.bucket, err)
	}
	return nil
}

// objectURL is http(s)://<endpoint>/<bucket>/<key>, path-escaped per segment.
func (s *S3Storage) objectURL(key string) string {
	u := *s.client.EndpointURL()
	u.Path = "/" + s.bucket + "/" + key
	u.RawPath = "/" + url.PathEscape(s.bucket) + "/" + escapeSegments(key)
	return u.String()
}

func escapeSegments(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

var _ domain.ObjectStorage = (*S3Storage)(nil)
