package offsite

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"

	"github.com/corescan/deployguard/pkg/config"
)

// S3Uploader replicates verified backups to an S3 bucket. Implements
// usecase.Replicator.
type S3Uploader struct {
	svc    *s3.S3
	bucket string
}

// NewS3Uploader builds an uploader from the offsite configuration
func NewS3Uploader(cfg config.OffsiteConfig) (*S3Uploader, error) {
	awsCfg := &aws.Config{
		Region: aws.String(cfg.Region),
	}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
		awsCfg.S3ForcePathStyle = aws.Bool(true)
	}
	if cfg.AccessKey != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, "")
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("create s3 session: %w", err)
	}

	return &S3Uploader{svc: s3.New(sess), bucket: cfg.Bucket}, nil
}

// Replicate uploads the backup file under a backups/ key and returns the key
func (u *S3Uploader) Replicate(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open backup for upload: %w", err)
	}
	defer f.Close()

	key := "backups/" + filepath.Base(path)
	_, err = u.svc.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String("application/octet-stream"),
	})
	if err != nil {
		return "", fmt.Errorf("upload %s to s3: %w", filepath.Base(path), err)
	}
	return key, nil
}
