package export

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/alchemorsel/patisserie/internal/infrastructure/config"
	"github.com/alchemorsel/patisserie/internal/ports/outbound"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
	"go.uber.org/zap"
)

// S3Publisher uploads exported sheets to an S3 compatible bucket
type S3Publisher struct {
	uploader s3manageriface.UploaderAPI
	bucket   string
	prefix   string
	logger   *zap.Logger
}

// NewS3Publisher creates a publisher from export configuration. A custom
// endpoint switches to path-style addressing for S3 compatible stores.
func NewS3Publisher(cfg config.ExportConfig, logger *zap.Logger) (*S3Publisher, error) {
	awsCfg := &aws.Config{
		Region: aws.String(cfg.Region),
	}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
		awsCfg.S3ForcePathStyle = aws.Bool(true)
	}
	if cfg.AccessKeyID != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(cfg.AccessKeyID, cfg.SecretAccessKey, "")
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return NewS3PublisherWithUploader(s3manager.NewUploader(sess), cfg.Bucket, cfg.Prefix, logger), nil
}

// NewS3PublisherWithUploader creates a publisher around an existing uploader
func NewS3PublisherWithUploader(uploader s3manageriface.UploaderAPI, bucket, prefix string, logger *zap.Logger) *S3Publisher {
	return &S3Publisher{
		uploader: uploader,
		bucket:   bucket,
		prefix:   prefix,
		logger:   logger.Named("s3-publisher"),
	}
}

// Upload implements outbound.StorageService and returns the object location
func (p *S3Publisher) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	objectKey := p.objectKey(key)

	out, err := p.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(objectKey),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		p.logger.Error("Upload failed",
			zap.String("bucket", p.bucket),
			zap.String("key", objectKey),
			zap.Error(err),
		)
		return "", fmt.Errorf("upload %s: %w", objectKey, err)
	}

	p.logger.Info("Uploaded export",
		zap.String("bucket", p.bucket),
		zap.String("key", objectKey),
		zap.Int("bytes", len(data)),
	)
	return out.Location, nil
}

// Publish uploads a CSV sheet under key
func (p *S3Publisher) Publish(ctx context.Context, key string, sheet []byte) (string, error) {
	return p.Upload(ctx, key, sheet, ContentType)
}

func (p *S3Publisher) objectKey(key string) string {
	if p.prefix == "" {
		return key
	}
	return path.Join(strings.TrimSuffix(p.prefix, "/"), key)
}

var _ outbound.StorageService = (*S3Publisher)(nil)
