// Package invoice implements the invoice API operations and the workbook
// batch transform on top of the blob and record stores.
package invoice

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/kylejryan/momo-invoice-backend/internal/api"
	"github.com/kylejryan/momo-invoice-backend/internal/authz"
	"github.com/kylejryan/momo-invoice-backend/internal/config"
	"github.com/kylejryan/momo-invoice-backend/internal/httpx"
	"github.com/kylejryan/momo-invoice-backend/internal/models"
	"github.com/kylejryan/momo-invoice-backend/internal/s3io"
	"github.com/kylejryan/momo-invoice-backend/internal/validate"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"
)

// BlobStore is the namespaced object store. *s3io.Store implements it.
type BlobStore interface {
	Put(ctx context.Context, bucket, key string, body []byte, contentType string) (s3io.PutResult, error)
	Get(ctx context.Context, bucket, key string) (*s3io.Blob, error)
	List(ctx context.Context, bucket, prefix string) ([]s3io.ObjectSummary, error)
}

// RecordStore is the invoice document store. *ddb.Repo implements it.
type RecordStore interface {
	Put(ctx context.Context, inv models.Invoice) error
	Get(ctx context.Context, requestID string) (*models.Invoice, error)
	Scan(ctx context.Context) ([]models.Invoice, error)
	Delete(ctx context.Context, requestID string) error
}

// Request is the transport-neutral view of an inbound API call.
type Request struct {
	Claims          map[string]string
	PathParams      map[string]string
	Body            string
	IsBase64Encoded bool
}

// FromProxy converts an API Gateway REST proxy request.
func FromProxy(req events.APIGatewayProxyRequest) Request {
	return Request{
		Claims:          authz.ClaimsFromAPIGWv1(req),
		PathParams:      req.PathParameters,
		Body:            req.Body,
		IsBase64Encoded: req.IsBase64Encoded,
	}
}

// Controller runs the invoice operations. It holds long-lived store clients
// and is safe for concurrent use.
type Controller struct {
	env     config.Env
	blobs   BlobStore
	records RecordStore
	log     *slog.Logger
	resp    httpx.Responder

	newRequestID func() string
	newBlobName  func(ext string) string
}

// Option customizes a Controller.
type Option func(*Controller)

// WithRequestIDs replaces the record id generator.
func WithRequestIDs(fn func() string) Option {
	return func(c *Controller) { c.newRequestID = fn }
}

// WithBlobNames replaces the blob name generator.
func WithBlobNames(fn func(ext string) string) Option {
	return func(c *Controller) { c.newBlobName = fn }
}

// NewController wires a controller.
func NewController(env config.Env, blobs BlobStore, records RecordStore, log *slog.Logger, opts ...Option) *Controller {
	c := &Controller{
		env:          env,
		blobs:        blobs,
		records:      records,
		log:          log,
		resp:         httpx.Responder{AllowOrigin: env.AllowOrigin},
		newRequestID: uuid.NewString,
		newBlobName:  s3io.NewName,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type opFunc func(ctx context.Context, identity string, req Request) (events.APIGatewayProxyResponse, error)

// run resolves the identity, executes fn and collapses any error into the
// generic 500 response.
func (c *Controller) run(ctx context.Context, op Operation, req Request, fn opFunc) events.APIGatewayProxyResponse {
	identity := authz.Resolve(req.Claims)
	resp, err := fn(ctx, identity, req)
	if err != nil {
		c.log.ErrorContext(ctx, "operation failed", "op", op, "identity", identity, "error", err)
		return c.resp.InternalServerError()
	}
	c.log.DebugContext(ctx, "operation ok", "op", op, "identity", identity, "status", resp.StatusCode)
	return resp
}

// ---- Blob operations ----

// CreateBlob stores an invoice payload under the caller's namespace. Without
// a body the sample invoice is stored.
func (c *Controller) CreateBlob(ctx context.Context, req Request) events.APIGatewayProxyResponse {
	return c.run(ctx, OpCreateBlob, req, c.createBlob)
}

func (c *Controller) createBlob(ctx context.Context, identity string, req Request) (events.APIGatewayProxyResponse, error) {
	if err := c.env.CheckBlob(); err != nil {
		return events.APIGatewayProxyResponse{}, err
	}

	inv := models.Sample(identity)
	if req.Body != "" {
		var err error
		if inv, err = decodeInvoice(req); err != nil {
			return events.APIGatewayProxyResponse{}, err
		}
		inv.UserID = identity
	}
	body, err := json.Marshal(inv)
	if err != nil {
		return events.APIGatewayProxyResponse{}, fmt.Errorf("encode invoice: %w", err)
	}

	key := s3io.ObjectKey(identity, c.newBlobName(s3io.ExtJSON))
	res, err := c.blobs.Put(ctx, c.env.Bucket, key, body, s3io.ContentTypeJSON)
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}
	c.log.InfoContext(ctx, "put blob", "key", key, "status", res.StatusCode)
	return c.resp.OK(), nil
}

// ListBlobs lists every blob in the caller's namespace.
func (c *Controller) ListBlobs(ctx context.Context, req Request) events.APIGatewayProxyResponse {
	return c.run(ctx, OpListBlobs, req, c.listBlobs)
}

func (c *Controller) listBlobs(ctx context.Context, identity string, _ Request) (events.APIGatewayProxyResponse, error) {
	if err := c.env.CheckBlob(); err != nil {
		return events.APIGatewayProxyResponse{}, err
	}
	objs, err := c.blobs.List(ctx, c.env.Bucket, s3io.Prefix(identity))
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}
	out := api.BlobListResponse{Objects: make([]api.BlobObject, 0, len(objs))}
	for _, o := range objs {
		out.Objects = append(out.Objects, api.BlobObject{Key: o.Key, Size: o.Size})
	}
	return c.resp.JSON(out), nil
}

// GetBlob returns one blob of the caller's namespace, base64 encoded.
func (c *Controller) GetBlob(ctx context.Context, req Request) events.APIGatewayProxyResponse {
	return c.run(ctx, OpGetBlob, req, c.getBlob)
}

func (c *Controller) getBlob(ctx context.Context, identity string, req Request) (events.APIGatewayProxyResponse, error) {
	if err := c.env.CheckBlob(); err != nil {
		return events.APIGatewayProxyResponse{}, err
	}
	name, err := validate.PathParam(req.PathParams, ParamName)
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}
	blob, err := c.blobs.Get(ctx, c.env.Bucket, s3io.ObjectKey(identity, name))
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}
	return c.resp.Binary(blob.Body, blob.ContentType), nil
}

// ---- Record operations ----

// CreateRecord stores the request body as a new record owned by the caller.
func (c *Controller) CreateRecord(ctx context.Context, req Request) events.APIGatewayProxyResponse {
	return c.run(ctx, OpCreateRecord, req, c.createRecord)
}

func (c *Controller) createRecord(ctx context.Context, identity string, req Request) (events.APIGatewayProxyResponse, error) {
	if err := c.env.CheckRecord(); err != nil {
		return events.APIGatewayProxyResponse{}, err
	}
	inv, err := decodeInvoice(req)
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}
	inv.RequestID = c.newRequestID()
	inv.UserID = identity

	if err := c.records.Put(ctx, inv); err != nil {
		return events.APIGatewayProxyResponse{}, err
	}
	c.log.InfoContext(ctx, "put record", "request_id", inv.RequestID, "table", c.env.Table)
	return c.resp.OK(), nil
}

// GetRecord returns one record by key.
func (c *Controller) GetRecord(ctx context.Context, req Request) events.APIGatewayProxyResponse {
	return c.run(ctx, OpGetRecord, req, c.getRecord)
}

func (c *Controller) getRecord(ctx context.Context, _ string, req Request) (events.APIGatewayProxyResponse, error) {
	if err := c.env.CheckRecord(); err != nil {
		return events.APIGatewayProxyResponse{}, err
	}
	key, err := validate.PathParam(req.PathParams, ParamKey)
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}
	inv, err := c.records.Get(ctx, key)
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}
	inv.Normalize()
	return c.resp.JSON(inv), nil
}

// GetRecordList returns every record in the table.
func (c *Controller) GetRecordList(ctx context.Context, req Request) events.APIGatewayProxyResponse {
	return c.run(ctx, OpGetRecordList, req, c.getRecordList)
}

func (c *Controller) getRecordList(ctx context.Context, _ string, _ Request) (events.APIGatewayProxyResponse, error) {
	if err := c.env.CheckRecord(); err != nil {
		return events.APIGatewayProxyResponse{}, err
	}
	all, err := c.records.Scan(ctx)
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}
	if all == nil {
		all = []models.Invoice{}
	}
	for i := range all {
		all[i].Normalize()
	}
	return c.resp.JSON(all), nil
}

// UpdateRecord replaces the record at key with the request body. The
// request id is kept; every other field, including the owner, is overwritten.
func (c *Controller) UpdateRecord(ctx context.Context, req Request) events.APIGatewayProxyResponse {
	return c.run(ctx, OpUpdateRecord, req, c.updateRecord)
}

func (c *Controller) updateRecord(ctx context.Context, identity string, req Request) (events.APIGatewayProxyResponse, error) {
	if err := c.env.CheckRecord(); err != nil {
		return events.APIGatewayProxyResponse{}, err
	}
	key, err := validate.PathParam(req.PathParams, ParamKey)
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}
	next, err := decodeInvoice(req)
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}
	existing, err := c.records.Get(ctx, key)
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}
	// TODO: confirm with product whether update should merge instead of replacing every field.
	next.RequestID = existing.RequestID
	next.UserID = identity

	if err := c.records.Put(ctx, next); err != nil {
		return events.APIGatewayProxyResponse{}, err
	}
	c.log.InfoContext(ctx, "replaced record", "request_id", next.RequestID, "table", c.env.Table)
	return c.resp.OK(), nil
}

// DeleteRecord removes the record at key. Deleting a missing record succeeds.
func (c *Controller) DeleteRecord(ctx context.Context, req Request) events.APIGatewayProxyResponse {
	return c.run(ctx, OpDeleteRecord, req, c.deleteRecord)
}

func (c *Controller) deleteRecord(ctx context.Context, _ string, req Request) (events.APIGatewayProxyResponse, error) {
	if err := c.env.CheckRecord(); err != nil {
		return events.APIGatewayProxyResponse{}, err
	}
	key, err := validate.PathParam(req.PathParams, ParamKey)
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}
	if err := c.records.Delete(ctx, key); err != nil {
		return events.APIGatewayProxyResponse{}, err
	}
	c.log.InfoContext(ctx, "deleted record", "request_id", key, "table", c.env.Table)
	return c.resp.OK(), nil
}

// ---- Helpers ----

// decodeInvoice parses and validates the request body. Client-supplied ids
// are discarded.
func decodeInvoice(req Request) (models.Invoice, error) {
	var inv models.Invoice
	body := []byte(req.Body)
	if req.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(req.Body)
		if err != nil {
			return inv, fmt.Errorf("%w: body is not valid base64", validate.ErrValidation)
		}
		body = decoded
	}
	if err := json.Unmarshal(body, &inv); err != nil {
		return inv, fmt.Errorf("%w: invalid json: %v", validate.ErrValidation, err)
	}
	if err := validate.Invoice(inv); err != nil {
		return inv, err
	}
	inv.RequestID, inv.UserID = "", ""
	inv.Normalize()
	return inv, nil
}
