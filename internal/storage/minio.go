package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"
)

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// PublicURL is the externally reachable base of the endpoint.
	PublicURL string
}

// Minio stores uploads in a bucket with a public read policy.
type Minio struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

// NewMinio connects and makes sure the bucket exists and is publicly readable.
func NewMinio(ctx context.Context, cfg MinioConfig, log zerolog.Logger) (*Minio, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MinIO: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.Bucket, err)
		}
		log.Info().Str("bucket", cfg.Bucket).Msg("created bucket")
	}
	if err := client.SetBucketPolicy(ctx, cfg.Bucket, publicReadPolicy(cfg.Bucket)); err != nil {
		log.Warn().Err(err).Str("bucket", cfg.Bucket).Msg("failed to set public read policy")
	}

	log.Info().Str("endpoint", cfg.Endpoint).Msg("connected to MinIO")
	return &Minio{client: client, bucket: cfg.Bucket, publicURL: strings.TrimRight(cfg.PublicURL, "/")}, nil
}

func (m *Minio) Put(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error) {
	_, err := m.client.PutObject(ctx, m.bucket, name, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("failed to upload file to storage: %w", err)
	}
	return ObjectURL(m.publicURL, m.bucket, name), nil
}

func (m *Minio) Remove(ctx context.Context, name string) error {
	if !ValidName(name) {
		return fmt.Errorf("%q: %w", name, ErrInvalidName)
	}
	// RemoveObject succeeds for missing keys
	if _, err := m.client.StatObject(ctx, m.bucket, name, minio.StatObjectOptions{}); err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return fmt.Errorf("%s: %w", name, ErrNotFound)
		}
		return fmt.Errorf("failed to stat file in storage: %w", err)
	}
	if err := m.client.RemoveObject(ctx, m.bucket, name, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove file from storage: %w", err)
	}
	return nil
}

// ObjectURL is the public path of an object in a bucket.
func ObjectURL(base, bucket, name string) string {
	return fmt.Sprintf("%s/%s/%s", strings.TrimRight(base, "/"), bucket, name)
}

func publicReadPolicy(bucket string) string {
	return fmt.Sprintf(`{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"AWS":["*"]},"Action":["s3:GetObject"],"Resource":["arn:aws:s3:::%s/*"]}]}`, bucket)
}
