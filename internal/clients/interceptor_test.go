package clients

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/storage"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

type failingReader struct{}

func (failingReader) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("disk on fire")
}

// capture runs req through an Interceptor and returns what reached the wire.
func capture(t *testing.T, ic *Interceptor, req *http.Request) *http.Request {
	t.Helper()
	var sent *http.Request
	ic.Base = roundTripFunc(func(r *http.Request) (*http.Response, error) {
		sent = r
		return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody, Request: r}, nil
	})
	_, err := ic.RoundTrip(req)
	require.NoError(t, err)
	require.NotNil(t, sent)
	return sent
}

func newReq(t *testing.T, method, rawURL string) *http.Request {
	t.Helper()
	req, err := http.NewRequest(method, rawURL, nil)
	require.NoError(t, err)
	return req
}

func withCSRF(req *http.Request) *http.Request {
	req.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: "test-csrf-token"})
	return req
}

func TestInterceptor_CSRFOnUnsafeMethodsOnly(t *testing.T) {
	cases := map[string]bool{
		http.MethodPost:    true,
		http.MethodPut:     true,
		http.MethodPatch:   true,
		http.MethodDelete:  true,
		"post":             true,
		"Delete":           true,
		http.MethodGet:     false,
		http.MethodHead:    false,
		http.MethodOptions: false,
	}

	for method, want := range cases {
		t.Run(method, func(t *testing.T) {
			req := withCSRF(newReq(t, method, "http://localhost:8000/test/"))
			sent := capture(t, &Interceptor{}, req)
			if want {
				require.Equal(t, "test-csrf-token", sent.Header.Get(HeaderCSRFToken))
			} else {
				require.Empty(t, sent.Header.Get(HeaderCSRFToken))
			}
		})
	}
}

func TestInterceptor_NoCookieNoHeader(t *testing.T) {
	sent := capture(t, &Interceptor{}, newReq(t, http.MethodPost, "http://localhost:8000/test/"))
	require.Empty(t, sent.Header.Get(HeaderCSRFToken))
}

func TestInterceptor_CreatesMissingHeaderMap(t *testing.T) {
	req := newReq(t, http.MethodPost, "http://localhost:8000/test/")
	req.Header = nil

	jar, _ := cookiejar.New(nil)
	u, _ := url.Parse("http://localhost:8000/")
	jar.SetCookies(u, []*http.Cookie{{Name: CSRFCookieName, Value: "from-jar"}})

	sent := capture(t, &Interceptor{Jar: jar}, req)
	require.NotNil(t, sent.Header)
	require.Equal(t, "from-jar", sent.Header.Get(HeaderCSRFToken))
}

func TestInterceptor_SimulatedDate(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	require.NoError(t, store.Set(ctx, storage.KeySimulatedDate, "2024-12-25"))
	ic := &Interceptor{Storage: store}

	cases := []struct {
		name     string
		url      string
		rawQuery string
	}{
		{name: "promotions", url: "http://localhost:8000/promotions/special-dates/", rawQuery: "fecha=2024-12-25"},
		{name: "carts with query", url: "http://localhost:8000/carts/?status=ACTIVO", rawQuery: "status=ACTIVO&fecha=2024-12-25"},
		{name: "orders", url: "http://localhost:8000/orders/create/", rawQuery: "fecha=2024-12-25"},
		{name: "products detail", url: "http://localhost:8000/products/3/", rawQuery: "fecha=2024-12-25"},
		{name: "session untouched", url: "http://localhost:8000/session/me/", rawQuery: ""},
		{name: "users untouched", url: "http://localhost:8000/api/users/?vip=true", rawQuery: "vip=true"},
		{name: "substring match", url: "http://localhost:8000/api/v2/carts/", rawQuery: "fecha=2024-12-25"},
		{name: "existing fecha replaced", url: "http://localhost:8000/carts/?fecha=2020-01-01&type=VIP", rawQuery: "type=VIP&fecha=2024-12-25"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sent := capture(t, ic, newReq(t, http.MethodGet, tc.url))
			require.Equal(t, tc.rawQuery, sent.URL.RawQuery)
		})
	}
}

func TestInterceptor_NoDateNoParam(t *testing.T) {
	ic := &Interceptor{Storage: storage.NewMemoryStore()}
	sent := capture(t, ic, newReq(t, http.MethodGet, "http://localhost:8000/carts/"))
	require.Empty(t, sent.URL.RawQuery)

	ic = &Interceptor{Storage: failingReader{}}
	sent = capture(t, ic, newReq(t, http.MethodGet, "http://localhost:8000/carts/"))
	require.Empty(t, sent.URL.RawQuery)
}

func TestInterceptor_DoesNotMutateCallerRequest(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	require.NoError(t, store.Set(ctx, storage.KeySimulatedDate, "2024-12-25"))

	req := withCSRF(newReq(t, http.MethodPost, "http://localhost:8000/carts/"))
	_ = capture(t, &Interceptor{Storage: store}, req)

	require.Empty(t, req.URL.RawQuery)
	require.Empty(t, req.Header.Get(HeaderCSRFToken))
}

func discardLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }
