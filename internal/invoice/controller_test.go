package invoice

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strconv"
	"testing"

	"github.com/kylejryan/momo-invoice-backend/internal/api"
	"github.com/kylejryan/momo-invoice-backend/internal/authz"
	"github.com/kylejryan/momo-invoice-backend/internal/config"
	"github.com/kylejryan/momo-invoice-backend/internal/logging"
	"github.com/kylejryan/momo-invoice-backend/internal/models"
	"github.com/kylejryan/momo-invoice-backend/internal/s3io"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBucket = "invoice-bucket"

func testEnv() config.Env {
	return config.Env{
		Region:      "ap-northeast-1",
		Bucket:      testBucket,
		Table:       "Invoice",
		AllowOrigin: "https://momo.example.com",
	}
}

func fixedNames(names ...string) func(string) string {
	i := 0
	return func(ext string) string {
		n := names[i%len(names)]
		i++
		return n + ext
	}
}

func newTestController(env config.Env) (*Controller, *stubBlobs, *stubRecords) {
	blobs, records := newStubBlobs(), newStubRecords()
	c := NewController(env, blobs, records, logging.Discard(), WithBlobNames(fixedNames("01BLOB")))
	return c, blobs, records
}

func claims(user string) map[string]string {
	return map[string]string{authz.ClaimUsername: user}
}

const invoiceBody = `{
	"billTo": {"name": "ACME", "zipCode": "100-0001"},
	"shipTo": {"name": "Warehouse"},
	"details": [
		{"description": "paper", "remarks": "A4", "unitCost": 500, "quantity": 2, "amount": 1000}
	]
}`

func assertFailure(t *testing.T, resp events.APIGatewayProxyResponse) {
	t.Helper()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Empty(t, resp.Body)
	assert.Equal(t, "https://momo.example.com", resp.Headers["Access-Control-Allow-Origin"])
}

// ---- blobs ----

func TestCreateBlob_SamplePayloadUnderIdentity(t *testing.T) {
	c, blobs, _ := newTestController(testEnv())

	resp := c.CreateBlob(context.Background(), Request{Claims: claims("bob")})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, resp.Body)
	assert.Equal(t, "https://momo.example.com", resp.Headers["Access-Control-Allow-Origin"])

	require.Equal(t, []string{"bob/01BLOB.json"}, blobs.keys(testBucket))
	stored := blobs.objects[testBucket+"|bob/01BLOB.json"]
	assert.Equal(t, s3io.ContentTypeJSON, stored.ContentType)

	var inv models.Invoice
	require.NoError(t, json.Unmarshal(stored.Body, &inv))
	assert.Equal(t, "bob", inv.UserID)
	assert.Equal(t, "bob", inv.BillToName())
	assert.Len(t, inv.Details, 1)
}

func TestCreateBlob_PublicWithoutClaims(t *testing.T) {
	c, blobs, _ := newTestController(testEnv())

	resp := c.CreateBlob(context.Background(), Request{})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"public/01BLOB.json"}, blobs.keys(testBucket))
}

func TestCreateBlob_WithBody(t *testing.T) {
	c, blobs, _ := newTestController(testEnv())

	resp := c.CreateBlob(context.Background(), Request{Claims: claims("bob"), Body: invoiceBody})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var inv models.Invoice
	require.NoError(t, json.Unmarshal(blobs.objects[testBucket+"|bob/01BLOB.json"].Body, &inv))
	assert.Equal(t, "ACME", inv.BillToName())
	assert.Equal(t, "bob", inv.UserID)

	resp = c.CreateBlob(context.Background(), Request{Claims: claims("bob"), Body: `{"details":[{"description":"x","quantity":-1}]}`})
	assertFailure(t, resp)
}

func TestCreateBlob_StoreError(t *testing.T) {
	c, blobs, _ := newTestController(testEnv())
	blobs.err = errBackend
	assertFailure(t, c.CreateBlob(context.Background(), Request{Claims: claims("bob")}))
}

func TestBlobOps_MissingBucketMakesNoStoreCall(t *testing.T) {
	env := testEnv()
	env.Bucket = ""
	c, blobs, records := newTestController(env)
	ctx := context.Background()
	req := Request{Claims: claims("bob"), PathParams: map[string]string{ParamName: "a.json"}}

	assertFailure(t, c.CreateBlob(ctx, req))
	assertFailure(t, c.ListBlobs(ctx, req))
	assertFailure(t, c.GetBlob(ctx, req))
	assert.Empty(t, blobs.calls)
	assert.Zero(t, records.calls)
}

func TestAllOps_UnresolvableRegionMakesNoStoreCall(t *testing.T) {
	env := testEnv()
	env.Region = "nowhere"
	c, blobs, records := newTestController(env)
	ctx := context.Background()
	req := Request{Claims: claims("bob"), PathParams: map[string]string{ParamName: "a.json", ParamKey: "k"}, Body: invoiceBody}

	for _, r := range Routes {
		assertFailure(t, c.Handle(ctx, r.Op, req))
	}
	assert.Empty(t, blobs.calls)
	assert.Zero(t, records.calls)
}

func TestListBlobs_QueriesIdentityPrefix(t *testing.T) {
	c, blobs, _ := newTestController(testEnv())
	blobs.objects[testBucket+"|bob/1.json"] = &s3io.Blob{Body: []byte("12345")}
	blobs.objects[testBucket+"|bob/2.xlsx"] = &s3io.Blob{Body: []byte("12")}
	blobs.objects[testBucket+"|bobby/3.json"] = &s3io.Blob{Body: []byte("1")}

	resp := c.ListBlobs(context.Background(), Request{Claims: claims("bob")})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, blobs.calls, 1)
	assert.Equal(t, blobCall{"list", testBucket, "bob/"}, blobs.calls[0])

	var out api.BlobListResponse
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &out))
	assert.ElementsMatch(t, []api.BlobObject{{Key: "bob/1.json", Size: 5}, {Key: "bob/2.xlsx", Size: 2}}, out.Objects)
}

func TestListBlobs_EmptyNamespace(t *testing.T) {
	c, _, _ := newTestController(testEnv())
	resp := c.ListBlobs(context.Background(), Request{})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"objects":[]}`, resp.Body)
}

func TestGetBlob_KeyIsIdentitySlashName(t *testing.T) {
	c, blobs, _ := newTestController(testEnv())
	blobs.objects[testBucket+"|bob/a.json"] = &s3io.Blob{Key: "bob/a.json", ContentType: "application/json", Body: []byte(`{"x":1}`)}

	resp := c.GetBlob(context.Background(), Request{
		Claims:     claims("bob"),
		PathParams: map[string]string{ParamName: "a.json"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, blobs.calls, 1)
	assert.Equal(t, blobCall{"get", testBucket, "bob/a.json"}, blobs.calls[0])
	assert.True(t, resp.IsBase64Encoded)
	assert.Equal(t, "application/json", resp.Headers["Content-Type"])

	raw, err := base64.StdEncoding.DecodeString(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, `{"x":1}`, string(raw))
}

func TestGetBlob_Failures(t *testing.T) {
	c, blobs, _ := newTestController(testEnv())
	ctx := context.Background()

	assertFailure(t, c.GetBlob(ctx, Request{Claims: claims("bob")}))
	assert.Empty(t, blobs.calls, "missing name must fail before the store")

	assertFailure(t, c.GetBlob(ctx, Request{Claims: claims("bob"), PathParams: map[string]string{ParamName: "nope.json"}}))
}

// ---- records ----

func TestCreateRecord_AssignsIDAndOwner(t *testing.T) {
	c, _, records := newTestController(testEnv())

	resp := c.CreateRecord(context.Background(), Request{
		Claims: claims("alice"),
		Body:   `{"requestId":"forged","userId":"mallory","billTo":{"name":"ACME"},"details":[]}`,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, records.items, 1)
	for id, inv := range records.items {
		assert.NotEqual(t, "forged", id)
		assert.Equal(t, id, inv.RequestID)
		assert.Equal(t, "alice", inv.UserID)
		assert.Equal(t, "ACME", inv.BillToName())
	}
}

func TestCreateRecord_Base64Body(t *testing.T) {
	c, _, records := newTestController(testEnv())
	resp := c.CreateRecord(context.Background(), Request{
		Body:            base64.StdEncoding.EncodeToString([]byte(invoiceBody)),
		IsBase64Encoded: true,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, records.items, 1)
	for _, inv := range records.items {
		assert.Equal(t, authz.Public, inv.UserID)
	}
}

func TestCreateRecord_RequestIDsAreUnique(t *testing.T) {
	c, _, records := newTestController(testEnv())
	ctx := context.Background()

	const trials = 10000
	for i := 0; i < trials; i++ {
		resp := c.CreateRecord(ctx, Request{Body: `{}`})
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}
	assert.Len(t, records.items, trials)
}

func TestCreateRecord_Failures(t *testing.T) {
	ctx := context.Background()

	env := testEnv()
	env.Table = ""
	c, _, records := newTestController(env)
	assertFailure(t, c.CreateRecord(ctx, Request{Body: invoiceBody}))
	assert.Zero(t, records.calls)

	c, _, records = newTestController(testEnv())
	assertFailure(t, c.CreateRecord(ctx, Request{Body: `{not json`}))
	assertFailure(t, c.CreateRecord(ctx, Request{}))
	assert.Zero(t, records.calls)

	records.err = errBackend
	assertFailure(t, c.CreateRecord(ctx, Request{Body: invoiceBody}))
}

func TestGetRecord(t *testing.T) {
	c, _, records := newTestController(testEnv())
	records.items["k1"] = models.Invoice{RequestID: "k1", UserID: "alice"}
	ctx := context.Background()

	resp := c.GetRecord(ctx, Request{PathParams: map[string]string{ParamKey: "k1"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"requestId":"k1","userId":"alice","details":[]}`, resp.Body)

	assertFailure(t, c.GetRecord(ctx, Request{PathParams: map[string]string{ParamKey: "missing"}}))

	calls := records.calls
	assertFailure(t, c.GetRecord(ctx, Request{}))
	assert.Equal(t, calls, records.calls, "missing key must fail before the store")
}

func TestGetRecordList(t *testing.T) {
	c, _, records := newTestController(testEnv())
	ctx := context.Background()

	resp := c.GetRecordList(ctx, Request{})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[]`, resp.Body)

	records.items["a"] = models.Invoice{RequestID: "a"}
	records.items["b"] = models.Invoice{RequestID: "b"}
	resp = c.GetRecordList(ctx, Request{})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out []models.Invoice
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &out))
	ids := []string{out[0].RequestID, out[1].RequestID}
	assert.ElementsMatch(t, []string{"a", "b"}, ids)

	records.err = errBackend
	assertFailure(t, c.GetRecordList(ctx, Request{}))
}

func TestUpdateRecord_FullOverwriteKeepsKey(t *testing.T) {
	c, _, records := newTestController(testEnv())
	ctx := context.Background()
	records.items["K"] = models.Invoice{
		RequestID: "K",
		UserID:    "alice",
		BillTo:    &models.Address{Name: "Old", ZipCode: "000"},
		ShipTo:    &models.Address{Name: "Old ship"},
		Details:   []models.Detail{{Description: "old", UnitCost: models.NewMoney(1), Quantity: 1, Amount: models.NewMoney(1)}},
	}

	body := `{"requestId":"other","billTo":{"name":"New"},"details":[{"description":"new","unitCost":2,"quantity":3,"amount":6}]}`
	resp := c.UpdateRecord(ctx, Request{Claims: claims("bob"), PathParams: map[string]string{ParamKey: "K"}, Body: body})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = c.GetRecord(ctx, Request{PathParams: map[string]string{ParamKey: "K"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{
		"requestId":"K",
		"userId":"bob",
		"billTo":{"name":"New"},
		"details":[{"description":"new","unitCost":2,"quantity":3,"amount":6}]
	}`, resp.Body)
	assert.NotContains(t, records.items, "other")
}

func TestUpdateRecord_Failures(t *testing.T) {
	c, _, records := newTestController(testEnv())
	ctx := context.Background()

	assertFailure(t, c.UpdateRecord(ctx, Request{Body: invoiceBody}))
	assertFailure(t, c.UpdateRecord(ctx, Request{PathParams: map[string]string{ParamKey: "missing"}, Body: invoiceBody}))
	assert.Empty(t, records.items, "update of a missing record must not create one")

	records.items["K"] = models.Invoice{RequestID: "K"}
	assertFailure(t, c.UpdateRecord(ctx, Request{PathParams: map[string]string{ParamKey: "K"}, Body: `[`}))

	records.err = errBackend
	assertFailure(t, c.UpdateRecord(ctx, Request{PathParams: map[string]string{ParamKey: "K"}, Body: invoiceBody}))
}

func TestDeleteRecord_Idempotent(t *testing.T) {
	c, _, records := newTestController(testEnv())
	ctx := context.Background()
	records.items["K"] = models.Invoice{RequestID: "K"}
	req := Request{PathParams: map[string]string{ParamKey: "K"}}

	assert.Equal(t, http.StatusOK, c.DeleteRecord(ctx, req).StatusCode)
	assert.Equal(t, http.StatusOK, c.DeleteRecord(ctx, req).StatusCode)
	assert.Empty(t, records.items)
}

func TestDeleteRecord_Failures(t *testing.T) {
	c, _, records := newTestController(testEnv())
	ctx := context.Background()

	assertFailure(t, c.DeleteRecord(ctx, Request{}))
	assert.Zero(t, records.calls)

	records.err = errBackend
	assertFailure(t, c.DeleteRecord(ctx, Request{PathParams: map[string]string{ParamKey: "K"}}))
}

func TestWithRequestIDs(t *testing.T) {
	n := 0
	blobs, records := newStubBlobs(), newStubRecords()
	c := NewController(testEnv(), blobs, records, logging.Discard(),
		WithRequestIDs(func() string { n++; return "id-" + strconv.Itoa(n) }))

	require.Equal(t, http.StatusOK, c.CreateRecord(context.Background(), Request{Body: `{}`}).StatusCode)
	assert.Contains(t, records.items, "id-1")
}
