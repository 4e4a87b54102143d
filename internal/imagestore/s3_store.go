package imagestore

import (
	"context"
	"fmt"
	"path"
	"strings"

	"restore/internal/observability"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ObjectAPI is the subset of the S3 client used by the store.
type ObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Options configures the S3 store.
type S3Options struct {
	Bucket        string
	Region        string
	Prefix        string
	PublicBaseURL string
}

type s3Store struct {
	client  ObjectAPI
	opts    S3Options
	metrics *observability.Metrics
	logger  zerolog.Logger
}

// NewS3Store creates an S3-backed store using the default AWS credential chain.
func NewS3Store(ctx context.Context, opts S3Options, metrics *observability.Metrics, logger zerolog.Logger) (Store, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(opts.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}
	return NewS3StoreWithClient(s3.NewFromConfig(cfg), opts, metrics, logger), nil
}

// NewS3StoreWithClient creates an S3 store around an existing client.
func NewS3StoreWithClient(client ObjectAPI, opts S3Options, metrics *observability.Metrics, logger zerolog.Logger) Store {
	opts.PublicBaseURL = strings.TrimRight(opts.PublicBaseURL, "/")
	return &s3Store{
		client:  client,
		opts:    opts,
		metrics: metrics,
		logger:  logger.With().Str("component", "image-store").Logger(),
	}
}

// Upload stores the image under <prefix><uuid><ext>.
func (s *s3Store) Upload(ctx context.Context, upload Upload) (*Result, error) {
	key := s.opts.Prefix + uuid.NewString() + strings.ToLower(path.Ext(upload.Filename))

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.opts.Bucket),
		Key:    aws.String(key),
		Body:   upload.Body,
	}
	if upload.ContentType != "" {
		input.ContentType = aws.String(upload.ContentType)
	}
	if upload.Size > 0 {
		input.ContentLength = aws.Int64(upload.Size)
	}

	_, err := s.client.PutObject(ctx, input)
	s.metrics.CollaboratorCall("images", err)
	if err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("failed to upload image")
		return nil, fmt.Errorf("failed to upload image: %w", err)
	}

	s.logger.Info().Str("key", key).Msg("image uploaded")
	return &Result{URL: s.opts.PublicBaseURL + "/" + key, PublicID: key}, nil
}

// Delete removes the object identified by publicID.
func (s *s3Store) Delete(ctx context.Context, publicID string) error {
	if publicID == "" {
		return nil
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.opts.Bucket),
		Key:    aws.String(publicID),
	})
	s.metrics.CollaboratorCall("images", err)
	if err != nil {
		return fmt.Errorf("failed to delete image %s: %w", publicID, err)
	}
	return nil
}
