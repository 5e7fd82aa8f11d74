// Package backup periodically exports the store document to S3-compatible
// object storage.
package backup

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/logging"
	sc "github.com/businessecom2026-code/Safe360co-sub000/internal/server/config"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/timex"
	"github.com/google/uuid"
)

const (
	keyPrefix     = "snapshots"
	uploadTimeout = 30 * time.Second
)

var (
	loadDefaultAWSConfig  = config.LoadDefaultConfig
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// Snapshotter produces a consistent serialized copy of the document.
type Snapshotter interface {
	Snapshot(ctx context.Context) ([]byte, error)
}

// Uploader is the subset of the S3 client used for exports.
type Uploader interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// NewS3Client builds an S3 client from the server configuration. A custom
// base endpoint switches to path-style addressing, as MinIO expects.
func NewS3Client(ctx context.Context, c *sc.Config) (*s3.Client, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(c.S3Region),
	}
	if c.S3RootUser != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			c.S3RootUser,
			c.S3RootPassword,
			"",
		)))
	}

	cfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if c.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(c.S3BaseEndpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// ObjectKey returns snapshots/YYYY/MM/DD/<uuid>.json for t.
func ObjectKey(t time.Time) string {
	t = t.UTC()
	return path.Join(keyPrefix, t.Format("2006"), t.Format("01"), t.Format("02"), uuid.NewString()+".json")
}

type Exporter struct {
	source   Snapshotter
	uploader Uploader
	bucket   string
	clock    timex.Clock
	timeout  time.Duration
	logger   logging.Logger
}

func NewExporter(source Snapshotter, uploader Uploader, bucket string, clock timex.Clock, logger logging.Logger) *Exporter {
	if clock == nil {
		clock = timex.SystemClock{}
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Exporter{
		source:   source,
		uploader: uploader,
		bucket:   bucket,
		clock:    clock,
		timeout:  uploadTimeout,
		logger:   logger.With("module", "backup"),
	}
}

// Export takes one snapshot and uploads it, returning the object key. The
// snapshot is taken first so the upload never runs under the store lock.
func (e *Exporter) Export(ctx context.Context) (string, error) {
	body, err := e.source.Snapshot(ctx)
	if err != nil {
		return "", fmt.Errorf("snapshot: %w", err)
	}

	key := ObjectKey(e.clock.Now())

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	_, err = e.uploader.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(e.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
		ContentType:   aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	return key, nil
}

// Run exports every interval until ctx is done. Failures are logged and the
// next tick tries again.
func (e *Exporter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			key, err := e.Export(ctx)
			if err != nil {
				e.logger.Error(ctx, "backup failed", "error", err)
				continue
			}
			e.logger.Info(ctx, "backup uploaded", "bucket", e.bucket, "key", key)
		}
	}
}
