package media

import (
	"bytes"
	"context"
	"strings"

	appErrors "draftpad-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3ObjectStore uploads media objects to an S3 bucket and returns their
// public URL under the configured base URL.
type S3ObjectStore struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

// NewS3ObjectStore creates an S3-backed object store. baseURL is the public
// origin the bucket is served from.
func NewS3ObjectStore(client *s3.Client, bucket, baseURL string) *S3ObjectStore {
	return &S3ObjectStore{
		client:  client,
		bucket:  bucket,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// Upload implements reconcile.ObjectStore.
func (s *S3ObjectStore) Upload(ctx context.Context, key string, data []byte) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("image/png"),
	})
	if err != nil {
		return "", appErrors.Wrap(err, "failed to upload media object")
	}
	return s.baseURL + "/" + key, nil
}
