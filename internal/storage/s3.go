package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/johnwmail/flashclip/internal/ident"
)

// expiresAtMeta is the object metadata key holding the expiry in unix milliseconds
const expiresAtMeta = "expires-at"

// s3API is the subset of the S3 client used by S3Store
type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Store implements Store on an S3 bucket. S3 has no per-object TTL, so
// the expiry is kept in object metadata and enforced on read; a bucket
// lifecycle rule should remove leftovers. S3 offers no atomic
// read-and-delete, so S3Store does not implement Taker.
type S3Store struct {
	bucket string
	prefix string
	client s3API
	now    func() time.Time
}

// NewS3Store creates a new S3Store instance
func NewS3Store(ctx context.Context, bucket, prefix, region string) (*S3Store, error) {
	if bucket == "" {
		return nil, fmt.Errorf("s3 bucket name must not be empty")
	}
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return &S3Store{
		bucket: bucket,
		prefix: normalizeS3Prefix(prefix),
		client: s3.NewFromConfig(cfg),
		now:    time.Now,
	}, nil
}

// Put uploads the value with its expiry in metadata
func (s *S3Store) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	expiresAt := s.now().Add(ttl)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(applyS3Prefix(s.prefix, key)),
		Body:        bytes.NewReader(value),
		ContentType: aws.String("application/json"),
		Metadata: map[string]string{
			expiresAtMeta: strconv.FormatInt(expiresAt.UnixMilli(), 10),
		},
	})
	if err != nil {
		return fmt.Errorf("s3 put %s: %w", ident.Redact(key), err)
	}
	return nil
}

// Get downloads a live value. An expired object is deleted and reported absent.
func (s *S3Store) Get(ctx context.Context, key string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(applyS3Prefix(s.prefix, key)),
	})
	if err != nil {
		if isS3NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("s3 get %s: %w", ident.Redact(key), err)
	}
	defer func() {
		_ = obj.Body.Close()
	}()

	if s.expired(obj.Metadata) {
		if err := s.Delete(ctx, key); err != nil {
			return nil, err
		}
		return nil, nil
	}

	data, err := io.ReadAll(obj.Body)
	if err != nil {
		return nil, fmt.Errorf("s3 read %s: %w", ident.Redact(key), err)
	}
	return data, nil
}

// Delete removes the object
func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(applyS3Prefix(s.prefix, key)),
	})
	if err != nil && !isS3NotFound(err) {
		return fmt.Errorf("s3 delete %s: %w", ident.Redact(key), err)
	}
	return nil
}

// Close is a no-op for S3
func (s *S3Store) Close() error {
	return nil
}

func (s *S3Store) expired(meta map[string]string) bool {
	raw, ok := meta[expiresAtMeta]
	if !ok {
		return false
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return false
	}
	return !s.now().Before(time.UnixMilli(ms))
}

func isS3NotFound(err error) bool {
	var noKey *types.NoSuchKey
	if errors.As(err, &noKey) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound", "404":
			return true
		}
	}
	return false
}
