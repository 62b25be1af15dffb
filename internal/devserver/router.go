// Package devserver serves the invoice API over plain HTTP for local
// development. It maps the same routes API Gateway uses onto the controller.
package devserver

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/kylejryan/momo-invoice-backend/internal/authz"
	"github.com/kylejryan/momo-invoice-backend/internal/httpx"
	"github.com/kylejryan/momo-invoice-backend/internal/invoice"
	"github.com/kylejryan/momo-invoice-backend/internal/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// maxBody caps request bodies; API Gateway's own limit is 10 MB.
const maxBody = 10 << 20

// NewRouter builds the HTTP handler.
func NewRouter(c *invoice.Controller, log *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Handle("/metrics", metrics.Handler())
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	for _, rt := range invoice.Routes {
		r.Method(rt.Method, rt.Resource, operationHandler(c, rt.Op, log))
	}
	return r
}

// operationHandler adapts one controller operation to net/http.
func operationHandler(c *invoice.Controller, op invoice.Operation, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		body, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
		if err != nil {
			log.ErrorContext(r.Context(), "read body", "op", op, "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			metrics.Observe(string(op), http.StatusInternalServerError, time.Since(start))
			return
		}

		req := invoice.Request{
			Claims:     authz.ClaimsFromBearer(flattenHeaders(r.Header)),
			PathParams: pathParams(r),
			Body:       string(body),
		}
		resp := c.Handle(r.Context(), op, req)
		httpx.Write(w, resp)
		metrics.Observe(string(op), resp.StatusCode, time.Since(start))
	}
}

// flattenHeaders keeps the first value of every header.
func flattenHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		if len(v) > 0 {
			out[k] = v[0]
		}
	}
	return out
}

// pathParams collects the chi URL parameters of the matched route.
func pathParams(r *http.Request) map[string]string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return nil
	}
	out := make(map[string]string, len(rctx.URLParams.Keys))
	for i, k := range rctx.URLParams.Keys {
		out[k] = rctx.URLParams.Values[i]
	}
	return out
}
