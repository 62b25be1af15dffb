// Package httpx provides helper functions for creating API Gateway proxy responses.
package httpx

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
)

// Responder builds responses that carry the configured CORS origin.
type Responder struct {
	AllowOrigin string
}

// headers returns the base header set; the origin is only echoed when configured.
func (r Responder) headers() map[string]string {
	h := map[string]string{}
	if r.AllowOrigin != "" {
		h["Access-Control-Allow-Origin"] = r.AllowOrigin
	}
	return h
}

// Status creates a response with the given status code and no body.
func (r Responder) Status(status int) events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    r.headers(),
	}
}

// OK creates an empty 200 response.
func (r Responder) OK() events.APIGatewayProxyResponse {
	return r.Status(http.StatusOK)
}

// InternalServerError creates the generic failure response: 500, empty body.
func (r Responder) InternalServerError() events.APIGatewayProxyResponse {
	return r.Status(http.StatusInternalServerError)
}

// JSON creates a 200 JSON response. An encoding failure yields the generic 500.
func (r Responder) JSON(v any) events.APIGatewayProxyResponse {
	b, err := json.Marshal(v)
	if err != nil {
		return r.InternalServerError()
	}
	resp := r.OK()
	resp.Headers["Content-Type"] = "application/json"
	resp.Body = string(b)
	return resp
}

// Binary creates a 200 response with a base64-encoded body.
func (r Responder) Binary(body []byte, contentType string) events.APIGatewayProxyResponse {
	resp := r.OK()
	resp.Headers["Content-Type"] = contentType
	resp.Body = base64.StdEncoding.EncodeToString(body)
	resp.IsBase64Encoded = true
	return resp
}

// Write copies a proxy response onto a net/http response writer, decoding a
// base64 body.
func Write(w http.ResponseWriter, resp events.APIGatewayProxyResponse) {
	for k, v := range resp.Headers {
		w.Header().Set(k, v)
	}
	body := []byte(resp.Body)
	if resp.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(resp.Body)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		body = decoded
	}
	w.WriteHeader(resp.StatusCode)
	_, _ = w.Write(body)
}
