package storage

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ObjectPutter is the part of the S3 client S3Store needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store uploads images to an S3 bucket.
type S3Store struct {
	client    ObjectPutter
	bucket    string
	urlPrefix string
}

// NewS3Store returns a store writing to bucket. Locations are urlPrefix
// followed by the object key.
func NewS3Store(client ObjectPutter, bucket, urlPrefix string) *S3Store {
	return &S3Store{
		client:    client,
		bucket:    bucket,
		urlPrefix: urlPrefix,
	}
}

// NewS3StoreFromEnv builds an S3 client from the default AWS configuration
// chain (environment, shared config, instance role).
func NewS3StoreFromEnv(ctx context.Context, bucket, urlPrefix string) (*S3Store, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "loading aws config failed")
	}
	return NewS3Store(s3.NewFromConfig(cfg), bucket, urlPrefix), nil
}

// Save uploads data under a fresh uuid key.
func (s *S3Store) Save(ctx context.Context, data []byte) (string, error) {
	sha256Hash := sha256.Sum256(data)
	key := uuid.NewString() + ".png"

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:         aws.String(s.bucket),
		Key:            aws.String(key),
		Body:           bytes.NewReader(data),
		ContentType:    aws.String("image/png"),
		ChecksumSHA256: aws.String(base64.StdEncoding.EncodeToString(sha256Hash[:])),
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to put object to s3")
	}

	return s.urlPrefix + key, nil
}
