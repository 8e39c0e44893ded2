// Package archive copies raw downloaded CSV files to an S3 audit bucket so
// the original source data survives after the Drive folder is cleaned up.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/ignite/recipient-sync/internal/pkg/logger"
)

// S3Archive stores raw file snapshots under
// recipient-sync/<folder>/<yyyy-mm-dd>/<file name>.
type S3Archive struct {
	client *s3.Client
	bucket string
	log    *logger.Logger
	now    func() time.Time
}

// NewS3Archive builds an archive against the given bucket using the default
// AWS credential chain (IAM role on ECS, profile/env locally).
func NewS3Archive(ctx context.Context, bucket, region string) (*S3Archive, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for archive: %w", err)
	}
	return &S3Archive{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
		log:    logger.Component("archive"),
		now:    time.Now,
	}, nil
}

func (a *S3Archive) key(folderKey, fileName string) string {
	return fmt.Sprintf("recipient-sync/%s/%s/%s",
		folderKey, a.now().UTC().Format("2006-01-02"), fileName)
}

// Store writes one file snapshot. Overwrites are fine: re-syncing the same
// file on the same day keeps only the latest copy.
func (a *S3Archive) Store(ctx context.Context, folderKey, fileName string, content []byte) error {
	key := a.key(folderKey, fileName)
	contentType := "text/csv"

	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(content),
		ContentType: &contentType,
	})
	if err != nil {
		return fmt.Errorf("S3 PutObject %s/%s: %w", a.bucket, key, err)
	}

	a.log.Debug("archived file", "key", key, "bytes", len(content))
	return nil
}
