package upload

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"

	"github.com/SoeMinHtet-SEEK/TestMicrobenchmark/pkg/config"
	"github.com/SoeMinHtet-SEEK/TestMicrobenchmark/pkg/exposition"
)

// s3Uploader implements Uploader for S3-compatible storage.
type s3Uploader struct {
	log    logrus.FieldLogger
	cfg    *config.S3Config
	client *s3.Client
}

// Ensure interface compliance.
var _ Uploader = (*s3Uploader)(nil)

// NewS3Uploader creates a new S3 uploader from the given configuration.
func NewS3Uploader(
	log logrus.FieldLogger,
	cfg *config.S3Config,
) (Uploader, error) {
	opts := []func(*s3.Options){
		func(o *s3.Options) {
			if cfg.Region != "" {
				o.Region = cfg.Region
			} else {
				o.Region = "us-east-1"
			}

			if cfg.EndpointURL != "" {
				o.BaseEndpoint = aws.String(cfg.EndpointURL)
			}

			if cfg.ForcePathStyle {
				o.UsePathStyle = true
			}

			if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
				o.Credentials = credentials.NewStaticCredentialsProvider(
					cfg.AccessKeyID, cfg.SecretAccessKey, "",
				)
			}
		},
	}

	client := s3.New(s3.Options{}, opts...)

	return &s3Uploader{
		log:    log.WithField("component", "s3-uploader"),
		cfg:    cfg,
		client: client,
	}, nil
}

// Preflight verifies S3 connectivity by writing a small test object.
func (u *s3Uploader) Preflight(ctx context.Context) error {
	content := fmt.Sprintf("benchmetrics write test: %s",
		time.Now().UTC().Format(time.RFC3339))

	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.cfg.Bucket),
		Key:         aws.String(".benchmetrics-write-test"),
		Body:        strings.NewReader(content),
		ContentType: aws.String("text/plain"),
	})
	if err != nil {
		return fmt.Errorf("writing test object to s3://%s: %w", u.cfg.Bucket, err)
	}

	return nil
}

// Push uploads one snapshot payload under prefix/key.
func (u *s3Uploader) Push(ctx context.Context, key string, payload []byte) error {
	fullKey := u.resolveKey(key)

	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.cfg.Bucket),
		Key:         aws.String(fullKey),
		Body:        bytes.NewReader(payload),
		ContentType: aws.String(exposition.ContentType),
	})
	if err != nil {
		return fmt.Errorf("uploading snapshot to s3://%s/%s: %w",
			u.cfg.Bucket, fullKey, err)
	}

	u.log.WithFields(logrus.Fields{
		"bucket": u.cfg.Bucket,
		"key":    fullKey,
		"bytes":  len(payload),
	}).Info("Snapshot uploaded")

	return nil
}

// resolveKey prepends the configured prefix, normalizing trailing slashes.
func (u *s3Uploader) resolveKey(key string) string {
	prefix := strings.TrimRight(u.cfg.Prefix, "/")
	if prefix == "" {
		return key
	}

	return prefix + "/" + key
}
