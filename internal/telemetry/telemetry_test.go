package telemetry

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace/noop"
)

func TestMiddlewareExportsPageSpans(t *testing.T) {
	t.Cleanup(func() { otel.SetTracerProvider(noop.NewTracerProvider()) })

	var buf bytes.Buffer
	shutdown, err := Setup("storefront-test", &buf)
	require.NoError(t, err)

	h := Middleware("storefront-test")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	for _, path := range []string{"/products", "/health", "/metrics"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	}

	require.NoError(t, shutdown(context.Background()))
	out := buf.String()
	assert.Contains(t, out, "HTTP GET /products")
	assert.NotContains(t, out, "HTTP GET /health")
	assert.NotContains(t, out, "HTTP GET /metrics")
	assert.Contains(t, out, "storefront-test")
}

func TestSetupWithoutWriterIsNoop(t *testing.T) {
	shutdown, err := Setup("storefront-test", nil)
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}
