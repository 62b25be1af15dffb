// Package s3io provides the S3-backed blob store used for invoice payloads and workbooks.
package s3io

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsmiddleware "github.com/aws/aws-sdk-go-v2/aws/middleware"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"
)

// ErrNotFound is returned by Get when the object does not exist.
var ErrNotFound = errors.New("s3io: object not found")

// API is the subset of *s3.Client the store needs.
type API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// PutResult describes a successful write.
type PutResult struct {
	StatusCode int
	ETag       string
}

// Blob is an object read back from the store.
type Blob struct {
	Key         string
	ContentType string
	Body        []byte
}

// ObjectSummary is one entry of a listing.
type ObjectSummary struct {
	Key  string `json:"key"`
	Size int64  `json:"size"`
}

// Store wraps an S3 client. The bucket is passed per call because the batch
// transform reads from the bucket named in the event.
type Store struct {
	S3 API
}

// Put writes body under key.
func (s *Store) Put(ctx context.Context, bucket, key string, body []byte, contentType string) (PutResult, error) {
	out, err := s.S3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return PutResult{}, fmt.Errorf("put %s: %w", key, err)
	}
	res := PutResult{StatusCode: http.StatusOK, ETag: aws.ToString(out.ETag)}
	if raw, ok := awsmiddleware.GetRawResponse(out.ResultMetadata).(*smithyhttp.Response); ok && raw != nil {
		res.StatusCode = raw.StatusCode
	}
	return res, nil
}

// Get reads the object at key. A missing object yields ErrNotFound.
func (s *Store) Get(ctx context.Context, bucket, key string) (*Blob, error) {
	out, err := s.S3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("get %s: %w", key, ErrNotFound)
		}
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	defer out.Body.Close()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	ct := aws.ToString(out.ContentType)
	if ct == "" {
		ct = ContentTypeDefault
	}
	return &Blob{Key: key, ContentType: ct, Body: body}, nil
}

// List returns every object under prefix, following continuation tokens.
// Order is whatever S3 returns.
func (s *Store) List(ctx context.Context, bucket, prefix string) ([]ObjectSummary, error) {
	objects := []ObjectSummary{}
	p := s3.NewListObjectsV2Paginator(s.S3, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(prefix),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", prefix, err)
		}
		for _, o := range page.Contents {
			objects = append(objects, ObjectSummary{Key: aws.ToString(o.Key), Size: aws.ToInt64(o.Size)})
		}
	}
	return objects, nil
}

// isNotFound recognizes both the modeled NoSuchKey error and a bare 404.
func isNotFound(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorCode() == "NotFound" {
		return true
	}
	var respErr *smithyhttp.ResponseError
	return errors.As(err, &respErr) && respErr.HTTPStatusCode() == http.StatusNotFound
}
