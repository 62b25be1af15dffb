package invoice

import (
	"context"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
)

// Operation names an API operation. Used in logs and metrics.
type Operation string

// Operations.
const (
	OpCreateBlob    Operation = "CreateBlob"
	OpListBlobs     Operation = "ListBlobs"
	OpGetBlob       Operation = "GetBlob"
	OpCreateRecord  Operation = "CreateRecord"
	OpGetRecord     Operation = "GetRecord"
	OpGetRecordList Operation = "GetRecordList"
	OpUpdateRecord  Operation = "UpdateRecord"
	OpDeleteRecord  Operation = "DeleteRecord"
)

// Path parameter names.
const (
	ParamName = "name"
	ParamKey  = "key"
)

// Route binds an API Gateway resource template and method to an operation.
type Route struct {
	Method   string
	Resource string
	Op       Operation
}

// Routes is the complete HTTP surface.
var Routes = []Route{
	{http.MethodPost, "/invoices/blob", OpCreateBlob},
	{http.MethodGet, "/invoices/blob", OpListBlobs},
	{http.MethodGet, "/invoices/blob/{name}", OpGetBlob},
	{http.MethodPost, "/invoices", OpCreateRecord},
	{http.MethodGet, "/invoices", OpGetRecordList},
	{http.MethodGet, "/invoices/{key}", OpGetRecord},
	{http.MethodPut, "/invoices/{key}", OpUpdateRecord},
	{http.MethodDelete, "/invoices/{key}", OpDeleteRecord},
}

// Lookup finds the operation for a method and resource template.
func Lookup(method, resource string) (Operation, bool) {
	for _, r := range Routes {
		if r.Method == method && r.Resource == resource {
			return r.Op, true
		}
	}
	return "", false
}

// Handle runs op. Unknown operations get the generic failure response.
func (c *Controller) Handle(ctx context.Context, op Operation, req Request) events.APIGatewayProxyResponse {
	switch op {
	case OpCreateBlob:
		return c.CreateBlob(ctx, req)
	case OpListBlobs:
		return c.ListBlobs(ctx, req)
	case OpGetBlob:
		return c.GetBlob(ctx, req)
	case OpCreateRecord:
		return c.CreateRecord(ctx, req)
	case OpGetRecord:
		return c.GetRecord(ctx, req)
	case OpGetRecordList:
		return c.GetRecordList(ctx, req)
	case OpUpdateRecord:
		return c.UpdateRecord(ctx, req)
	case OpDeleteRecord:
		return c.DeleteRecord(ctx, req)
	}
	c.log.ErrorContext(ctx, "unknown operation", "op", op)
	return c.resp.InternalServerError()
}

// HandleProxy is the Lambda entry point for API Gateway REST proxy events.
func (c *Controller) HandleProxy(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	op, ok := Lookup(req.HTTPMethod, req.Resource)
	if !ok {
		c.log.ErrorContext(ctx, "no route", "method", req.HTTPMethod, "resource", req.Resource, "path", req.Path)
		return c.resp.InternalServerError(), nil
	}
	return c.Handle(ctx, op, FromProxy(req)), nil
}
