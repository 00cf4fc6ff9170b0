package clients

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/metrics"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/model"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/storage"
)

func TestHTTPClient_CookieRoundTrip(t *testing.T) {
	ctx := context.Background()
	var gotCSRF, gotQuery string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/session/me/":
			http.SetCookie(w, &http.Cookie{Name: "csrftoken", Value: "tok-1", Path: "/"})
			http.SetCookie(w, &http.Cookie{Name: "sessionid", Value: "sess-1", Path: "/"})
			_, _ = w.Write([]byte(`{"user":{"id":1,"username":"ana"}}`))
		case "/carts/":
			gotCSRF = r.Header.Get(HeaderCSRFToken)
			gotQuery = r.URL.RawQuery
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"id":5,"cart_type":"COMUN","status":"ACTIVO"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	base, _ := url.Parse(srv.URL)
	jarPath := filepath.Join(t.TempDir(), "cookies.json")
	jar, err := NewFileJar(jarPath, base)
	require.NoError(t, err)

	store := storage.NewMemoryStore()
	require.NoError(t, store.Set(ctx, storage.KeySimulatedDate, "2024-12-25"))

	httpClient := NewHTTPClient(HTTPOptions{Jar: jar, Storage: store, Metrics: metrics.New(), Logger: discardLogger()})
	c := NewClient("backend", srv.URL, httpClient)

	_, err = NewSessionClient(c).Current(ctx)
	require.NoError(t, err)

	created, err := NewCartClient(c).Create(ctx, model.CartTypeComun)
	require.NoError(t, err)
	require.Equal(t, 5, created.ID)
	require.Equal(t, "tok-1", gotCSRF)
	require.Equal(t, "fecha=2024-12-25", gotQuery)

	// cookies survive a restart
	reloaded, err := NewFileJar(jarPath, base)
	require.NoError(t, err)
	v, ok := reloaded.Cookie("sessionid")
	require.True(t, ok)
	require.Equal(t, "sess-1", v)
}

func TestHealthProbe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	res := CheckHealth(context.Background(), HealthProbe{
		Name:   "backend",
		Client: NewClient("backend", srv.URL, http.DefaultClient),
		Path:   "/session/me/",
	})
	require.True(t, res.OK)
	require.Equal(t, http.StatusUnauthorized, res.StatusCode)

	srv.Close()
	res = CheckHealth(context.Background(), HealthProbe{
		Name:   "backend",
		Client: NewClient("backend", srv.URL, http.DefaultClient),
		Path:   "/session/me/",
	})
	require.False(t, res.OK)
	require.NotEmpty(t, res.Error)
}
