package auth

import (
	"context"
	"net/http"

	"github.com/Achille2gre/bonvan-wind-dashboard/internal/model"
)

// CookieName is the HttpOnly cookie carrying the session token.
const CookieName = "bonvan_session"

// contextKey is an unexported type used for context keys in this package,
// so no other package can read or shadow the identity value.
type contextKey string

const identityKey contextKey = "identity"

// SessionSource returns the persisted single session slot, or nil when
// nobody is signed in.
type SessionSource interface {
	LoadSession(ctx context.Context) (*model.AuthSession, error)
}

// BypassFunc reports whether authentication is disabled for this request.
// The gate's dev flags decide it.
type BypassFunc func(ctx context.Context) bool

// RequireSession is a middleware that enforces a signed-in session on
// protected routes.
//
// A request passes when the cookie holds a valid token AND the token matches
// the persisted session slot (same user id and loggedInAt). Otherwise it
// gets 401 and the chain stops. When bypass reports true the request passes
// without an identity.
func RequireSession(tokens *TokenService, sessions SessionSource, bypass BypassFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if bypass != nil && bypass(r.Context()) {
				next.ServeHTTP(w, r)
				return
			}

			id, err := Authenticate(r, tokens, sessions)
			if err != nil || id == nil {
				writeUnauthorized(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// Authenticate validates the request's cookie against the session slot.
// It returns (nil, nil) when the token is well formed but no longer matches
// the slot, and an error when the cookie is missing or invalid or when the
// slot cannot be read.
func Authenticate(r *http.Request, tokens *TokenService, sessions SessionSource) (*Identity, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		// http.ErrNoCookie: anonymous request
		return nil, err
	}

	id, err := tokens.Validate(cookie.Value)
	if err != nil {
		return nil, err
	}

	current, err := sessions.LoadSession(r.Context())
	if err != nil {
		return nil, err
	}
	if current == nil || current.UserID != id.UserID || current.LoggedInAt != id.LoggedInAt {
		return nil, nil
	}
	return id, nil
}

// WithIdentity stores id in ctx.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext returns the identity RequireSession stored, if any.
//
// Returns (nil, false) for anonymous or bypassed requests.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityKey).(*Identity)
	return id, ok && id != nil
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","message":"valid authentication required"}` + "\n"))
}
