package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/auth"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/model"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/simdate"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/storage"
)

type stubSession struct {
	user  *model.User
	block chan struct{}
}

func (s *stubSession) Current(context.Context) (model.Session, error) {
	if s.block != nil {
		<-s.block
	}
	if s.user == nil {
		return model.Session{}, errors.New("not authenticated")
	}
	return model.Session{User: s.user}, nil
}

func (s *stubSession) Login(context.Context, model.LoginRequest) (model.Session, error) {
	return model.Session{}, nil
}

func (s *stubSession) Logout(context.Context) error { return nil }

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func settledState(t *testing.T, user *model.User) *auth.State {
	t.Helper()
	s := auth.New(&stubSession{user: user}, storage.NewMemoryStore(), discard())
	_ = s.Check(context.Background())
	return s
}

func guarded(s *auth.State, guard func(http.Handler) http.Handler) http.Handler {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("page"))
	})
	date := simdate.New(context.Background(), storage.NewMemoryStore(), discard())
	return Provide(s, date)(guard(ok))
}

func TestGuards(t *testing.T) {
	user := &model.User{ID: 1, Username: "ana"}

	cases := map[string]struct {
		user     *model.User
		guard    func(http.Handler) http.Handler
		status   int
		location string
	}{
		"private authenticated": {user: user, guard: Private, status: http.StatusOK},
		"private anonymous":     {guard: Private, status: http.StatusFound, location: LoginPath},
		"public-only anonymous": {guard: PublicOnly, status: http.StatusOK},
		"public-only signed in": {user: user, guard: PublicOnly, status: http.StatusFound, location: LandingPath},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			h := guarded(settledState(t, tc.user), tc.guard)
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/x", nil))

			require.Equal(t, tc.status, rr.Code)
			require.Equal(t, tc.location, rr.Header().Get("Location"))
		})
	}
}

func TestGuards_RenderNothingWhileChecking(t *testing.T) {
	api := &stubSession{user: &model.User{ID: 1}, block: make(chan struct{})}
	defer close(api.block)
	s := auth.New(api, storage.NewMemoryStore(), discard())
	s.Start(context.Background())

	for _, guard := range []func(http.Handler) http.Handler{Private, PublicOnly} {
		rr := httptest.NewRecorder()
		guarded(s, guard).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/x", nil))
		require.Equal(t, http.StatusNoContent, rr.Code)
		require.Empty(t, rr.Body.String())
		require.Equal(t, "1", rr.Header().Get("Retry-After"))
	}
}

func TestGuardWithoutProviderPanics(t *testing.T) {
	h := Private(http.NotFoundHandler())
	require.Panics(t, func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

func TestRecover(t *testing.T) {
	h := Recover(discard())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/panic", nil))

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Equal(t, "internal server error", body["error"])
}

func TestCorrelationIDEchoAndGeneration(t *testing.T) {
	var seen string
	h := CorrelationID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetCorrelationID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderCorrelationID, "abc")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, "abc", rr.Header().Get(HeaderCorrelationID))
	require.Equal(t, "abc", seen)

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NotEmpty(t, rr.Header().Get(HeaderCorrelationID))
}

func TestCORS(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	tests := map[string]struct {
		allow     []string
		method    string
		origin    string
		preflight bool
		status    int
		allowed   string
	}{
		"preflight allowed":       {allow: []string{"http://localhost:5173"}, method: http.MethodOptions, origin: "http://localhost:5173", preflight: true, status: http.StatusNoContent, allowed: "http://localhost:5173"},
		"preflight refused":       {allow: []string{"http://localhost:5173"}, method: http.MethodOptions, origin: "http://evil.example", preflight: true, status: http.StatusForbidden},
		"trailing slash in list":  {allow: []string{"http://localhost:5173/"}, method: http.MethodGet, origin: "http://localhost:5173", status: http.StatusOK, allowed: "http://localhost:5173"},
		"other origin plain get":  {allow: []string{"http://localhost:5173"}, method: http.MethodGet, origin: "http://evil.example", status: http.StatusOK},
		"wildcard echoes origin":  {allow: []string{"*"}, method: http.MethodGet, origin: "http://shop.example", status: http.StatusOK, allowed: "http://shop.example"},
		"no origin passes":        {allow: []string{"*"}, method: http.MethodGet, status: http.StatusOK},
		"options without request": {allow: []string{"*"}, method: http.MethodOptions, origin: "http://shop.example", status: http.StatusOK, allowed: "http://shop.example"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, "/carts", nil)
			if tc.origin != "" {
				req.Header.Set("Origin", tc.origin)
			}
			if tc.preflight {
				req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
			}
			rr := httptest.NewRecorder()
			CORS(tc.allow)(ok).ServeHTTP(rr, req)

			require.Equal(t, tc.status, rr.Code)
			assert.Equal(t, tc.allowed, rr.Header().Get("Access-Control-Allow-Origin"))
			if tc.allowed != "" {
				assert.Equal(t, "true", rr.Header().Get("Access-Control-Allow-Credentials"))
			}
			if tc.preflight && tc.allowed != "" {
				assert.Contains(t, rr.Header().Get("Access-Control-Allow-Headers"), "X-CSRFToken")
			}
		})
	}
}
