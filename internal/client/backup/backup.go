// Package backup uploads an export of the local characters to an
// S3-compatible bucket.
package backup

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/rmcatalog/internal/client/config"
	"github.com/dmitrijs2005/rmcatalog/internal/logging"
	"github.com/google/uuid"
)

// ErrNotConfigured is returned when no bucket is configured.
var ErrNotConfigured = errors.New("backup bucket is not configured")

const keyTimeLayout = "20060102T150405Z"

// test seams
var (
	loadDefaultAWSConfig  = awsconfig.LoadDefaultConfig
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// Uploader is the part of *s3.Client used here.
type Uploader interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Exporter produces the payload to back up.
type Exporter interface {
	Export(ctx context.Context) ([]byte, error)
}

// NewS3Client builds an S3 client for cfg. Static credentials are used when
// both keys are set, otherwise the default AWS credential chain applies.
// A custom Endpoint switches to path-style addressing, which MinIO and most
// S3-compatible stores expect.
func NewS3Client(ctx context.Context, cfg config.S3) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// Service uploads exports under <prefix>/<UTC timestamp>-<uuid>.json.
type Service struct {
	uploader Uploader
	exporter Exporter
	bucket   string
	prefix   string
	log      logging.Logger
	now      func() time.Time
	newID    func() string
}

func NewService(uploader Uploader, exporter Exporter, bucket, prefix string, log logging.Logger) *Service {
	if log == nil {
		log = logging.Nop()
	}
	return &Service{
		uploader: uploader,
		exporter: exporter,
		bucket:   bucket,
		prefix:   prefix,
		log:      log.With("component", "backup"),
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Key returns the object key for a backup taken at t with the given id.
func (s *Service) Key(t time.Time, id string) string {
	name := t.UTC().Format(keyTimeLayout) + "-" + id + ".json"
	if s.prefix == "" {
		return name
	}
	return path.Join(s.prefix, name)
}

// Run exports the local characters and uploads them. It returns the object key.
func (s *Service) Run(ctx context.Context) (string, error) {
	if s.bucket == "" {
		return "", ErrNotConfigured
	}

	data, err := s.exporter.Export(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to export local characters: %w", err)
	}

	key := s.Key(s.now(), s.newID())
	_, err = s.uploader.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload backup to %s/%s: %w", s.bucket, key, err)
	}

	s.log.Info(ctx, "backup uploaded", "bucket", s.bucket, "key", key, "bytes", len(data))
	return key, nil
}
