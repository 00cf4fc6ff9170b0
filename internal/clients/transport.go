package clients

import (
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/metrics"
)

type HTTPOptions struct {
	// Timeout of 0 keeps the transport defaults.
	Timeout time.Duration
	Jar     http.CookieJar
	Storage KeyReader
	Metrics *metrics.Metrics
	Logger  *slog.Logger
	// Base defaults to http.DefaultTransport.
	Base http.RoundTripper
}

// NewHTTPClient builds the backend client: CSRF and simulated-date
// interception over metrics and tracing instrumentation.
func NewHTTPClient(opts HTTPOptions) *http.Client {
	base := opts.Base
	if base == nil {
		base = http.DefaultTransport
	}
	traced := otelhttp.NewTransport(base)

	return &http.Client{
		Timeout: opts.Timeout,
		Jar:     opts.Jar,
		Transport: &Interceptor{
			Base:    opts.Metrics.InstrumentTransport(traced),
			Jar:     opts.Jar,
			Storage: opts.Storage,
			Logger:  opts.Logger,
		},
	}
}
