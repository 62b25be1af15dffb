package invoice

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/kylejryan/momo-invoice-backend/internal/ddb"
	"github.com/kylejryan/momo-invoice-backend/internal/models"
	"github.com/kylejryan/momo-invoice-backend/internal/s3io"
)

type blobCall struct {
	Op, Bucket, Key string
}

// stubBlobs is an in-memory BlobStore that records every call.
type stubBlobs struct {
	objects map[string]*s3io.Blob // bucket + "|" + key
	calls   []blobCall
	err     error
}

func newStubBlobs() *stubBlobs {
	return &stubBlobs{objects: map[string]*s3io.Blob{}}
}

func (s *stubBlobs) Put(ctx context.Context, bucket, key string, body []byte, contentType string) (s3io.PutResult, error) {
	s.calls = append(s.calls, blobCall{"put", bucket, key})
	if s.err != nil {
		return s3io.PutResult{}, s.err
	}
	s.objects[bucket+"|"+key] = &s3io.Blob{Key: key, ContentType: contentType, Body: body}
	return s3io.PutResult{StatusCode: 200}, nil
}

func (s *stubBlobs) Get(ctx context.Context, bucket, key string) (*s3io.Blob, error) {
	s.calls = append(s.calls, blobCall{"get", bucket, key})
	if s.err != nil {
		return nil, s.err
	}
	b, ok := s.objects[bucket+"|"+key]
	if !ok {
		return nil, s3io.ErrNotFound
	}
	return b, nil
}

func (s *stubBlobs) List(ctx context.Context, bucket, prefix string) ([]s3io.ObjectSummary, error) {
	s.calls = append(s.calls, blobCall{"list", bucket, prefix})
	if s.err != nil {
		return nil, s.err
	}
	var out []s3io.ObjectSummary
	for k, b := range s.objects {
		bk, key, _ := strings.Cut(k, "|")
		if bk == bucket && strings.HasPrefix(key, prefix) {
			out = append(out, s3io.ObjectSummary{Key: key, Size: int64(len(b.Body))})
		}
	}
	return out, nil
}

func (s *stubBlobs) keys(bucket string) []string {
	var out []string
	for k := range s.objects {
		if bk, key, _ := strings.Cut(k, "|"); bk == bucket {
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out
}

// stubRecords is an in-memory RecordStore that counts calls.
type stubRecords struct {
	items map[string]models.Invoice
	calls int
	err   error
}

func newStubRecords() *stubRecords {
	return &stubRecords{items: map[string]models.Invoice{}}
}

func (s *stubRecords) Put(ctx context.Context, inv models.Invoice) error {
	s.calls++
	if s.err != nil {
		return s.err
	}
	s.items[inv.RequestID] = inv
	return nil
}

func (s *stubRecords) Get(ctx context.Context, requestID string) (*models.Invoice, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	inv, ok := s.items[requestID]
	if !ok {
		return nil, ddb.ErrNotFound
	}
	return &inv, nil
}

func (s *stubRecords) Scan(ctx context.Context) ([]models.Invoice, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	out := make([]models.Invoice, 0, len(s.items))
	for _, inv := range s.items {
		out = append(out, inv)
	}
	return out, nil
}

func (s *stubRecords) Delete(ctx context.Context, requestID string) error {
	s.calls++
	if s.err != nil {
		return s.err
	}
	delete(s.items, requestID)
	return nil
}

var errBackend = errors.New("backend unavailable")
