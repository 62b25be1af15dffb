package invoice

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/kylejryan/momo-invoice-backend/internal/config"
	"github.com/kylejryan/momo-invoice-backend/internal/models"
	"github.com/kylejryan/momo-invoice-backend/internal/s3io"
	"github.com/kylejryan/momo-invoice-backend/internal/sheet"

	"github.com/aws/aws-lambda-go/events"
)

// Transformer converts newly created JSON invoice blobs into workbooks.
type Transformer struct {
	env         config.Env
	blobs       BlobStore
	log         *slog.Logger
	newBlobName func(ext string) string
}

// NewTransformer wires a Transformer. nameFn may be nil.
func NewTransformer(env config.Env, blobs BlobStore, log *slog.Logger, nameFn func(ext string) string) *Transformer {
	if nameFn == nil {
		nameFn = s3io.NewName
	}
	return &Transformer{env: env, blobs: blobs, log: log, newBlobName: nameFn}
}

// Handle processes every record of an S3 event in order. The first failure
// aborts the remaining records and is returned to the runtime.
func (t *Transformer) Handle(ctx context.Context, ev events.S3Event) error {
	if err := t.env.CheckBlob(); err != nil {
		t.log.ErrorContext(ctx, "transform: bad configuration", "error", err)
		return err
	}
	for _, rec := range ev.Records {
		if err := t.processS3Record(ctx, rec); err != nil {
			t.log.ErrorContext(ctx, "transform: process error", "key", rec.S3.Object.Key, "error", err)
			return err
		}
	}
	return nil
}

// processS3Record renders one JSON blob and writes the workbook next to it.
func (t *Transformer) processS3Record(ctx context.Context, record events.S3EventRecord) error {
	bucket := record.S3.Bucket.Name
	key, err := url.QueryUnescape(record.S3.Object.Key)
	if err != nil {
		return fmt.Errorf("bad key %q: %w", record.S3.Object.Key, err)
	}
	t.log.InfoContext(ctx, "transform: object created",
		"source", record.EventSource, "time", record.EventTime, "bucket", bucket, "key", key)

	if !s3io.IsJSON(key) {
		t.log.InfoContext(ctx, "transform: skipping non-json object", "key", key)
		return nil
	}

	blob, err := t.blobs.Get(ctx, bucket, key)
	if err != nil {
		return err
	}
	var inv models.Invoice
	if err := json.Unmarshal(blob.Body, &inv); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	inv.Normalize()
	t.log.DebugContext(ctx, "transform: decoded invoice",
		"bill_to", inv.BillToName(), "details", len(inv.Details))

	data, err := sheet.RenderWorkbook(inv)
	if err != nil {
		return fmt.Errorf("render %s: %w", key, err)
	}

	out := s3io.ObjectKey(s3io.Namespace(key), t.newBlobName(s3io.ExtWorkbook))
	res, err := t.blobs.Put(ctx, t.env.Bucket, out, data, s3io.ContentTypeWorkbook)
	if err != nil {
		return err
	}
	t.log.InfoContext(ctx, "transform: wrote workbook", "key", out, "status", res.StatusCode)
	return nil
}
