// Package api contains types for the API requests and responses.
package api

// BlobObject is one entry of a blob listing.
type BlobObject struct {
	Key  string `json:"key"`
	Size int64  `json:"size"`
}

// BlobListResponse is the body returned by GET /invoices/blob.
type BlobListResponse struct {
	Objects []BlobObject `json:"objects"`
}
