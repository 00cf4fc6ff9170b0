package middleware

import (
	"net/http"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/auth"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/simdate"
)

const (
	LandingPath = "/products"
	LoginPath   = "/login"
)

// Provide attaches the session and date state to every request context.
func Provide(session *auth.State, date *simdate.State) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := auth.Provide(r.Context(), session)
			ctx = simdate.Provide(ctx, date)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// renderNothing answers while the session check is still running.
func renderNothing(w http.ResponseWriter) {
	w.Header().Set("Retry-After", "1")
	w.WriteHeader(http.StatusNoContent)
}

func settling(s auth.Status) bool {
	return s == auth.StatusChecking || s == auth.StatusUnknown
}

// Private lets authenticated requests through and sends everyone else to
// the login page.
func Private(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		st := auth.FromContext(r.Context()).Status()
		switch {
		case settling(st):
			renderNothing(w)
		case st == auth.StatusAuthenticated:
			next.ServeHTTP(w, r)
		default:
			http.Redirect(w, r, LoginPath, http.StatusFound)
		}
	})
}

// PublicOnly keeps authenticated users away from pages such as login.
func PublicOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		st := auth.FromContext(r.Context()).Status()
		switch {
		case settling(st):
			renderNothing(w)
		case st == auth.StatusAuthenticated:
			http.Redirect(w, r, LandingPath, http.StatusFound)
		default:
			next.ServeHTTP(w, r)
		}
	})
}
