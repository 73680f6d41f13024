// Package objectstore wraps S3-compatible blob storage for media files,
// covering the two operations the media service needs: uploading a file
// body and presigning a time-limited GET URL for serving it back out.
package objectstore

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// MaxConcurrentUploads bounds the manager.Uploader's part-upload
// concurrency, to avoid saturating outbound bandwidth on a single large
// upload.
const MaxConcurrentUploads = 4

// Store uploads and presigns objects in a single bucket against any
// S3-compatible endpoint (AWS S3, MinIO, or another compatible provider).
type Store struct {
	client   *s3.Client
	uploader *manager.Uploader
	presign  *s3.PresignClient
	bucket   string
	urlTTL   time.Duration
}

// Options configures a Store.
type Options struct {
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	URLTTL          time.Duration
	UsePathStyle    bool
}

// New builds a Store from Options, resolving credentials from static keys
// when supplied, otherwise the SDK's default chain (env vars, shared
// config, instance profile).
func New(ctx context.Context, opts Options) (*Store, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	if opts.AccessKeyID != "" && opts.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		o.UsePathStyle = opts.UsePathStyle
	})

	ttl := opts.URLTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}

	return &Store{
		client:   client,
		uploader: manager.NewUploader(client, func(u *manager.Uploader) { u.Concurrency = MaxConcurrentUploads }),
		presign:  s3.NewPresignClient(client),
		bucket:   opts.Bucket,
		urlTTL:   ttl,
	}, nil
}

// Put uploads body under key with the given content type, using the
// multipart manager so large media files don't need to be buffered whole in
// memory.
func (s *Store) Put(ctx context.Context, key, contentType string, body io.Reader) error {
	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("uploading object %s: %w", key, err)
	}
	return nil
}

// Delete removes the object at key.
func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("deleting object %s: %w", key, err)
	}
	return nil
}

// PresignGet returns a time-limited URL a client can use to fetch key
// directly from the object store, avoiding proxying file bytes back through
// the mesh.
func (s *Store) PresignGet(ctx context.Context, key string) (string, error) {
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.urlTTL))
	if err != nil {
		return "", fmt.Errorf("presigning get for %s: %w", key, err)
	}
	return req.URL, nil
}
