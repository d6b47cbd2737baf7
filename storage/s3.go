package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3API is the subset of the S3 client used here; *s3.Client satisfies it.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Object is a single object in an S3 bucket.
type S3Object struct {
	bucket      string
	key         string
	contentType string
	s3          S3API
}

func NewS3Object(s3Client S3API, bucket, key string) *S3Object {
	return &S3Object{
		bucket:      bucket,
		key:         key,
		contentType: "text/plain; charset=utf-8",
		s3:          s3Client,
	}
}

// WithContentType sets the content type used by Save.
func (s *S3Object) WithContentType(contentType string) *S3Object {
	s.contentType = contentType
	return s
}

func (s *S3Object) Load(ctx context.Context) ([]byte, error) {
	resp, err := s.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get object s3://%s/%s: %w", s.bucket, s.key, err)
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

func (s *S3Object) Save(ctx context.Context, data []byte) error {
	_, err := s.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(s.contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to put object s3://%s/%s: %w", s.bucket, s.key, err)
	}
	return nil
}
