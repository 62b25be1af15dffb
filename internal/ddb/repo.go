// Package ddb provides a simple repository for interacting with DynamoDB for invoice records.
package ddb

import (
	"context"
	"errors"
	"fmt"

	"github.com/kylejryan/momo-invoice-backend/internal/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// HashKey is the table's partition key attribute.
const HashKey = "RequestId"

// ErrNotFound is returned by Get when no record has the key.
var ErrNotFound = errors.New("ddb: record not found")

// API is the subset of *dynamodb.Client the repository needs.
type API interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// Repo wraps a DynamoDB client and table name for invoice operations.
type Repo struct {
	DB    API
	Table string
}

// Put writes inv, replacing any existing item with the same key wholesale.
func (r *Repo) Put(ctx context.Context, inv models.Invoice) error {
	item, err := attributevalue.MarshalMap(inv)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", inv.RequestID, err)
	}
	_, err = r.DB.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: &r.Table,
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", inv.RequestID, err)
	}
	return nil
}

// Get loads the record with the given request id.
func (r *Repo) Get(ctx context.Context, requestID string) (*models.Invoice, error) {
	out, err := r.DB.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: &r.Table,
		Key:       key(requestID),
	})
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", requestID, err)
	}
	if len(out.Item) == 0 {
		return nil, fmt.Errorf("get %s: %w", requestID, ErrNotFound)
	}
	var inv models.Invoice
	if err := attributevalue.UnmarshalMap(out.Item, &inv); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", requestID, err)
	}
	inv.Normalize()
	return &inv, nil
}

// Scan returns every record in the table. There is no paging contract for
// callers; all pages are read.
func (r *Repo) Scan(ctx context.Context) ([]models.Invoice, error) {
	invoices := []models.Invoice{}
	p := dynamodb.NewScanPaginator(r.DB, &dynamodb.ScanInput{TableName: &r.Table})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", r.Table, err)
		}
		var batch []models.Invoice
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, fmt.Errorf("unmarshal scan page: %w", err)
		}
		for i := range batch {
			batch[i].Normalize()
		}
		invoices = append(invoices, batch...)
	}
	return invoices, nil
}

// Delete removes the record with the given request id. Deleting a missing
// key succeeds.
func (r *Repo) Delete(ctx context.Context, requestID string) error {
	_, err := r.DB.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: &r.Table,
		Key:       key(requestID),
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", requestID, err)
	}
	return nil
}

// key builds the primary key map for a request id.
func key(requestID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		HashKey: &types.AttributeValueMemberS{Value: requestID},
	}
}
