package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/skydeck/skydeck/internal/api/models"
	"github.com/skydeck/skydeck/internal/session"
)

// sessionKey is the context key for the caller's session.
type sessionKey struct{}

// Session creates middleware that validates the bearer session token and
// attaches the live session to the request context.
func Session(tokens *session.TokenService, registry *session.Registry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeUnauthorized(w, r, "missing authorization header")
				return
			}

			const bearerPrefix = "Bearer "
			if len(authHeader) < len(bearerPrefix) ||
				!strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
				writeUnauthorized(w, r, "invalid authorization header format")
				return
			}

			tokenString := strings.TrimSpace(authHeader[len(bearerPrefix):])
			if tokenString == "" {
				writeUnauthorized(w, r, "missing bearer token")
				return
			}

			claims, err := tokens.Validate(tokenString)
			if err != nil {
				switch {
				case errors.Is(err, session.ErrTokenExpired):
					writeUnauthorized(w, r, "session token has expired")
				default:
					writeUnauthorized(w, r, "invalid session token")
				}
				return
			}

			sess, err := registry.Get(claims.Subject)
			if err != nil {
				// Swept or never created here (e.g. after a restart).
				writeUnauthorized(w, r, "session not found")
				return
			}

			if info := getRequestInfo(r.Context()); info != nil {
				info.sessionID = sess.ID
			}

			ctx := context.WithValue(r.Context(), sessionKey{}, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// writeUnauthorized writes a 401 Unauthorized response.
// Implemented here to avoid an import cycle with the response package.
func writeUnauthorized(w http.ResponseWriter, r *http.Request, detail string) {
	traceID := GetRequestID(r.Context())
	problem := models.NewUnauthorized(traceID, detail)
	problem.Instance = r.URL.Path
	problem.Write(w)
}

// GetSession retrieves the caller's session from the context.
// Returns nil outside the Session middleware.
func GetSession(ctx context.Context) *session.Session {
	if s, ok := ctx.Value(sessionKey{}).(*session.Session); ok {
		return s
	}
	return nil
}

// GetSessionID returns the caller's session ID, or an empty string.
func GetSessionID(ctx context.Context) string {
	if s := GetSession(ctx); s != nil {
		return s.ID
	}
	return ""
}

// WithSession returns a copy of ctx carrying s.
func WithSession(ctx context.Context, s *session.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}
