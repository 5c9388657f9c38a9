package repository

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"
)

var ErrObjectNotFound = errors.New("object not found")

// ObjectStore is the read-only view of the submission file storage the
// digest service needs. Uploads belong to the submission intake, which is
// outside this service.
type ObjectStore interface {
	Download(ctx context.Context, objectKey string) (io.ReadCloser, int64, error)
}

type minioStore struct {
	client *minio.Client
	bucket string
	logger zerolog.Logger
}

func NewMinIOStore(endpoint, accessKey, secretKey, bucket string, useSSL bool, connectTimeout time.Duration, logger zerolog.Logger) (ObjectStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	// Best-effort readiness probe. Storage being down at startup is not
	// fatal: metadata-only detection still works without it.
	if connectTimeout <= 0 {
		connectTimeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	if _, err := client.BucketExists(ctx, bucket); err != nil {
		logger.Warn().Err(err).
			Str("endpoint", endpoint).
			Str("bucket", bucket).
			Msg("MinIO not reachable during startup; digest computation will retry on demand")
	} else {
		logger.Info().
			Str("endpoint", endpoint).
			Str("bucket", bucket).
			Bool("ssl", useSSL).
			Msg("Connected to MinIO")
	}

	return &minioStore{
		client: client,
		bucket: bucket,
		logger: logger,
	}, nil
}

func (s *minioStore) Download(ctx context.Context, objectKey string) (io.ReadCloser, int64, error) {
	objInfo, err := s.client.StatObject(ctx, s.bucket, objectKey, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, 0, ErrObjectNotFound
		}
		return nil, 0, fmt.Errorf("failed to stat object: %w", err)
	}

	object, err := s.client.GetObject(ctx, s.bucket, objectKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get object: %w", err)
	}

	s.logger.Debug().
		Str("bucket", s.bucket).
		Str("object", objectKey).
		Int64("size", objInfo.Size).
		Msg("Object downloaded from MinIO")

	return object, objInfo.Size, nil
}
