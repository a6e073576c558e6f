// Package storage is the S3-compatible object store behind track delivery.
// It talks to AWS S3 in production and to MinIO everywhere else.
package storage

import (
	"context"
	"io"
	"net/url"
	"time"

	"github.com/fhuszti/music-delivery-ms-go/internal/logger"
	"github.com/fhuszti/music-delivery-ms-go/internal/port"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// s3API is the subset of *minio.Client the store relies on.
type s3API interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	PresignedPutObject(ctx context.Context, bucketName, objectName string, expiry time.Duration) (*url.URL, error)
}

type MinioStorage struct {
	client s3API
	region string
}

// compile-time check
var _ port.ObjectStore = (*MinioStorage)(nil)

// NewStorage builds the client. endpoint is a host[:port] without scheme.
func NewStorage(endpoint, accessKey, secretKey, region string, useSSL bool) (*MinioStorage, error) {
	logger.Infof(context.Background(), "🪣  Connecting to object storage at %s (ssl=%t)", endpoint, useSSL)
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
		Region: region,
	})
	if err != nil {
		return nil, classifyS3Err(err)
	}
	return &MinioStorage{client: client, region: region}, nil
}

// EnsureBucket creates bucket in the configured region unless it already exists.
// Losing a creation race to another instance is not an error.
func (s *MinioStorage) EnsureBucket(ctx context.Context, bucket string) error {
	exists, err := s.client.BucketExists(ctx, bucket)
	if err != nil {
		return classifyS3Err(err)
	}
	if exists {
		return nil
	}

	logger.Warnf(ctx, "⚠️  Bucket %q not found, creating it in %q", bucket, s.region)
	err = s.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: s.region})
	if err != nil && !isS3Code(err, "BucketAlreadyOwnedByYou") {
		return classifyS3Err(err)
	}
	return nil
}

func (s *MinioStorage) SaveFile(ctx context.Context, bucket, fileKey string, reader io.Reader, fileSize int64, opts port.SaveOptions) error {
	_, err := s.client.PutObject(ctx, bucket, fileKey, reader, fileSize, minio.PutObjectOptions{
		ContentType:  opts.ContentType,
		UserMetadata: opts.Metadata,
	})
	return classifyS3Err(err)
}

// RemoveFile deletes one object. S3 reports success for absent keys.
func (s *MinioStorage) RemoveFile(ctx context.Context, bucket, fileKey string) error {
	return classifyS3Err(s.client.RemoveObject(ctx, bucket, fileKey, minio.RemoveObjectOptions{}))
}

// StatFile reports the size and content type of an object, ErrObjectNotFound when absent.
func (s *MinioStorage) StatFile(ctx context.Context, bucket, fileKey string) (port.ObjectInfo, error) {
	info, err := s.client.StatObject(ctx, bucket, fileKey, minio.StatObjectOptions{})
	if err != nil {
		return port.ObjectInfo{}, classifyS3Err(err)
	}
	return port.ObjectInfo{Size: info.Size, ContentType: info.ContentType}, nil
}

func (s *MinioStorage) GeneratePresignedUploadURL(ctx context.Context, bucket, fileKey string, expiry time.Duration) (string, error) {
	u, err := s.client.PresignedPutObject(ctx, bucket, fileKey, expiry)
	if err != nil {
		return "", classifyS3Err(err)
	}
	return u.String(), nil
}
