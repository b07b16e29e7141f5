package records

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// S3API is the subset of the S3 client used by ObjectStore.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// ObjectStore keeps record files in an S3 bucket keyed per owner.
type ObjectStore struct {
	bucket   string
	s3Client S3API
}

// NewObjectStore creates an object store for the given bucket.
func NewObjectStore(s3Client S3API, bucket string) *ObjectStore {
	if s3Client == nil {
		panic("records: s3 client required")
	}
	if bucket == "" {
		panic("records: bucket required")
	}
	return &ObjectStore{bucket: bucket, s3Client: s3Client}
}

// Put uploads the file body and returns the generated storage key.
func (s *ObjectStore) Put(ctx context.Context, ownerID, fileName, contentType string, body io.Reader) (string, error) {
	key := fmt.Sprintf("records/%s/%s-%s", ownerID, uuid.NewString(), sanitizeFileName(fileName))
	_, err := s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("records: s3 put %s: %w", key, err)
	}
	return key, nil
}

// Get streams a stored file; the caller closes the reader.
func (s *ObjectStore) Get(ctx context.Context, key string) (io.ReadCloser, string, error) {
	out, err := s.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, "", fmt.Errorf("records: s3 get %s: %w", key, err)
	}
	return out.Body, aws.ToString(out.ContentType), nil
}

// Delete removes a stored file.
func (s *ObjectStore) Delete(ctx context.Context, key string) error {
	_, err := s.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("records: s3 delete %s: %w", key, err)
	}
	return nil
}
