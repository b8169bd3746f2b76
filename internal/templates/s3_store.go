package templates

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"batch-release/internal/config"
	"batch-release/internal/metrics"
)

// S3Client is the subset of the S3 API the template store needs.
type S3Client interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

func NewS3Client(ctx context.Context, cfg config.S3TemplateConfig) (*s3.Client, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	}), nil
}

type S3Store struct {
	client S3Client
	bucket string
	key    string
	logger *slog.Logger
}

func NewS3Store(client S3Client, bucket, key string, logger *slog.Logger) *S3Store {
	return &S3Store{
		client: client,
		bucket: bucket,
		key:    key,
		logger: logger,
	}
}

func (s *S3Store) Load(ctx context.Context) ([]byte, error) {
	start := time.Now()
	defer func() {
		metrics.DataFetchDuration.WithLabelValues(metrics.DataSourceTemplate).Observe(time.Since(start).Seconds())
	}()

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		metrics.DataFetchErrors.WithLabelValues(metrics.DataSourceTemplate).Inc()
		return nil, fmt.Errorf("failed to get s3://%s/%s: %w", s.bucket, s.key, err)
	}
	defer out.Body.Close()

	raw, err := io.ReadAll(out.Body)
	if err != nil {
		metrics.DataFetchErrors.WithLabelValues(metrics.DataSourceTemplate).Inc()
		return nil, fmt.Errorf("failed to read s3://%s/%s: %w", s.bucket, s.key, err)
	}
	return raw, nil
}

func (s *S3Store) Save(ctx context.Context, raw []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.key),
		Body:          bytes.NewReader(raw),
		ContentLength: aws.Int64(int64(len(raw))),
		ContentType:   aws.String("application/pdf"),
	})
	if err != nil {
		return fmt.Errorf("failed to put s3://%s/%s: %w", s.bucket, s.key, err)
	}

	s.logger.Info("template replaced", "bucket", s.bucket, "key", s.key, "bytes", len(raw))
	return nil
}
