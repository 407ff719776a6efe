package middleware

import (
	"context"
	"net/http"
	"strings"

	"fee-portal/dataservice"
	"fee-portal/http/response"
	"fee-portal/logger"
	"fee-portal/models"
)

// SessionCookie is the cookie persisting the session token between
// visits.
const SessionCookie = "fee_portal_session"

type contextKey string

const accountKey contextKey = "account"

// EnableCORS wraps a handler with permissive CORS headers and answers
// preflight requests.
func EnableCORS(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next(w, r)
	}
}

// Token extracts the session token from the Authorization header or the
// session cookie.
func Token(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}

// RequireSession resolves the session token into an account through the
// auth boundary and stores it on the request context. Requests without a
// valid session get 401.
func RequireSession(auth dataservice.Auth, log *logger.Logger) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			token := Token(r)
			if token == "" {
				response.ErrorResponse(w, http.StatusUnauthorized, "authentication required")
				return
			}

			account, err := auth.Account(r.Context(), token)
			if err != nil {
				log.Debug("Session resolution failed: %v", err)
				response.ErrorResponse(w, http.StatusUnauthorized, "session expired or invalid")
				return
			}

			ctx := context.WithValue(r.Context(), accountKey, *account)
			next(w, r.WithContext(ctx))
		}
	}
}

// AccountFrom returns the authenticated account stored by RequireSession.
func AccountFrom(ctx context.Context) (models.Account, bool) {
	account, ok := ctx.Value(accountKey).(models.Account)
	return account, ok
}

// WithAccount stores an account on a context. Intended for tests.
func WithAccount(ctx context.Context, account models.Account) context.Context {
	return context.WithValue(ctx, accountKey, account)
}
