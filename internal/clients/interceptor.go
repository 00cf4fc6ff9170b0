package clients

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/storage"
)

const (
	HeaderCSRFToken = "X-CSRFToken"
	CSRFCookieName  = "csrftoken"
	DateParam       = "fecha"
)

// DateRoutes are the path fragments whose endpoints honour the fecha override.
var DateRoutes = []string{"/promotions/", "/carts/", "/orders/", "/products/"}

// KeyReader is the read side of the local storage.
type KeyReader interface {
	Get(ctx context.Context, key string) (string, bool, error)
}

// Interceptor decorates every outgoing backend request with the CSRF token
// and the simulated date. It never fails a request on its own account.
type Interceptor struct {
	Base http.RoundTripper
	// Jar is consulted for the CSRF cookie when the request carries no
	// Cookie header of its own.
	Jar     http.CookieJar
	Storage KeyReader
	Logger  *slog.Logger
}

func (t *Interceptor) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())
	if out.Header == nil {
		out.Header = http.Header{}
	}

	if isUnsafeMethod(out.Method) {
		if token := t.csrfToken(out); token != "" {
			out.Header.Set(HeaderCSRFToken, token)
		}
	}

	if date := t.simulatedDate(out); date != "" && needsDate(out.URL) {
		out.URL.RawQuery = withDate(out.URL.RawQuery, date)
	}

	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(out)
}

func isUnsafeMethod(m string) bool {
	switch strings.ToUpper(m) {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}

func (t *Interceptor) csrfToken(req *http.Request) string {
	if c, err := req.Cookie(CSRFCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	if t.Jar == nil {
		return ""
	}
	for _, c := range t.Jar.Cookies(req.URL) {
		if c.Name == CSRFCookieName {
			return c.Value
		}
	}
	return ""
}

func (t *Interceptor) simulatedDate(req *http.Request) string {
	if t.Storage == nil {
		return ""
	}
	v, ok, err := t.Storage.Get(req.Context(), storage.KeySimulatedDate)
	if err != nil {
		if t.Logger != nil {
			t.Logger.Debug("Simulated date unavailable", "error", err)
		}
		return ""
	}
	if !ok {
		return ""
	}
	return v
}

// needsDate matches on the relative request URI, path and query alike.
func needsDate(u *url.URL) bool {
	uri := u.RequestURI()
	for _, route := range DateRoutes {
		if strings.Contains(uri, route) {
			return true
		}
	}
	return false
}

// withDate drops any fecha already in rawQuery and appends the override, so
// the backend sees exactly one value.
func withDate(rawQuery, date string) string {
	var kept []string
	if rawQuery != "" {
		for _, part := range strings.Split(rawQuery, "&") {
			name := part
			if i := strings.IndexByte(part, '='); i >= 0 {
				name = part[:i]
			}
			if name == DateParam {
				continue
			}
			kept = append(kept, part)
		}
	}
	kept = append(kept, DateParam+"="+url.QueryEscape(date))
	return strings.Join(kept, "&")
}
