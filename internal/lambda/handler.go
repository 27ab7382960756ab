package lambda

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/stahnma/gh-repostats/internal/analyzer"
	"github.com/stahnma/gh-repostats/internal/config"
)

// ErrMissingBucket is returned when the S3 destination is not configured.
var ErrMissingBucket = errors.New("S3_BUCKET_NAME and S3_OBJECT_KEY environment variables must be set")

// Exporter writes a freshly fetched report as JSON. *commands.App
// implements it. A warm Lambda container reuses its cache, so every
// invocation must fetch again.
type Exporter interface {
	ExportLatestJSON(ctx context.Context, w io.Writer) error
}

// ObjectPutter is the subset of the S3 client used for uploads.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// ObjectKey fills a "%s" in pattern with the date of now. Patterns
// without a verb are used as is.
func ObjectKey(pattern string, now time.Time) string {
	if !strings.Contains(pattern, "%s") {
		return pattern
	}
	return fmt.Sprintf(pattern, now.Format(analyzer.DateFormat))
}

// NewHandler returns a Lambda handler function that exports data and uploads to S3.
func NewHandler(exp Exporter, cfg config.Config) func(context.Context, any) (string, error) {
	return newHandler(exp, cfg, time.Now, func(ctx context.Context) (ObjectPutter, error) {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		return s3.NewFromConfig(awsCfg), nil
	})
}

func newHandler(exp Exporter, cfg config.Config, now func() time.Time, newPutter func(context.Context) (ObjectPutter, error)) func(context.Context, any) (string, error) {
	return func(ctx context.Context, event any) (string, error) {
		if cfg.S3Bucket == "" || cfg.S3ObjectKey == "" {
			return "", ErrMissingBucket
		}

		var buf bytes.Buffer
		if err := exp.ExportLatestJSON(ctx, &buf); err != nil {
			return "", fmt.Errorf("export: %w", err)
		}
		if buf.Len() == 0 {
			return "", fmt.Errorf("export command produced no output")
		}

		svc, err := newPutter(ctx)
		if err != nil {
			return "", err
		}

		key := ObjectKey(cfg.S3ObjectKey, now())
		_, err = svc.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(cfg.S3Bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(buf.Bytes()),
			ContentType: aws.String("application/json"),
		})
		if err != nil {
			return "", fmt.Errorf("failed to upload file to S3: %w", err)
		}

		return fmt.Sprintf("report uploaded to s3://%s/%s", cfg.S3Bucket, key), nil
	}
}
