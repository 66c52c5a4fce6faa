package middleware

import (
	"context"
	"net/http"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"socialnet/utils/errors"
)

type contextKey string

const userIDKey contextKey = "userID"

// TokenParser resolves a bearer token to the user id it was issued for
type TokenParser interface {
	Parse(token string) (primitive.ObjectID, error)
}

// JWTMiddleware rejects requests without a valid bearer token and stores
// the caller's id in the request context.
func JWTMiddleware(tokens TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
				WriteError(w, errors.ErrUnauthorized.WithMessage("Access denied"))
				return
			}

			userID, err := tokens.Parse(strings.TrimSpace(parts[1]))
			if err != nil {
				WriteError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

func WithUserID(ctx context.Context, userID primitive.ObjectID) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext returns the id stored by JWTMiddleware
func UserIDFromContext(ctx context.Context) (primitive.ObjectID, bool) {
	userID, ok := ctx.Value(userIDKey).(primitive.ObjectID)
	return userID, ok && !userID.IsZero()
}
