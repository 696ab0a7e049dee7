package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/LDFINA01/Jokester-Merch-Generator/internal/infra"
)

var tracer = otel.Tracer("minio-store")

// MinIOOptions configures an S3-compatible object store.
type MinIOOptions struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// PublicBaseURL replaces <scheme>://<endpoint>/<bucket> in returned URLs.
	PublicBaseURL string
}

// MinIOStore keeps uploads in a MinIO bucket.
type MinIOStore struct {
	client  *minio.Client
	bucket  string
	baseURL string
	now     func() time.Time
}

// NewMinIOStore connects to the object store and makes sure the bucket exists.
func NewMinIOStore(ctx context.Context, opts MinIOOptions) (*MinIOStore, error) {
	if strings.TrimSpace(opts.Endpoint) == "" {
		return nil, errors.New("storage: minio endpoint is required")
	}
	if strings.TrimSpace(opts.Bucket) == "" {
		return nil, errors.New("storage: minio bucket is required")
	}
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("storage: create minio client: %w", err)
	}
	baseURL := strings.TrimRight(strings.TrimSpace(opts.PublicBaseURL), "/")
	if baseURL == "" {
		scheme := "http"
		if opts.UseSSL {
			scheme = "https"
		}
		baseURL = fmt.Sprintf("%s://%s/%s", scheme, opts.Endpoint, opts.Bucket)
	}
	store := &MinIOStore{client: client, bucket: opts.Bucket, baseURL: baseURL, now: time.Now}
	if err := store.ensureBucket(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *MinIOStore) ensureBucket(ctx context.Context) (err error) {
	ctx, span := tracer.Start(ctx, "minio_ensure_bucket")
	defer func() { infra.EndSpan(span, err) }()
	span.SetAttributes(attribute.String("minio.bucket", s.bucket))

	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("storage: check bucket: %w", err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("storage: create bucket: %w", err)
		}
	}
	return nil
}

// Store uploads data under a fresh key and returns its public URL.
func (s *MinIOStore) Store(ctx context.Context, data []byte, filename, contentType string) (url string, err error) {
	key := ObjectKey(filename, s.now())
	ctx, span := tracer.Start(ctx, "minio_upload")
	defer func() { infra.EndSpan(span, err) }()
	span.SetAttributes(
		attribute.String("minio.bucket", s.bucket),
		attribute.String("minio.key", key),
		attribute.Int("minio.size", len(data)),
	)

	_, err = s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("storage: upload object: %w", err)
	}
	return s.ObjectURL(key), nil
}

// ObjectURL returns the public URL a key is reachable at.
func (s *MinIOStore) ObjectURL(key string) string {
	return s.baseURL + "/" + strings.TrimLeft(key, "/")
}
