package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"socialnet/utils/errors"
)

type stubParser struct {
	tokens map[string]primitive.ObjectID
}

func (p stubParser) Parse(token string) (primitive.ObjectID, error) {
	id, ok := p.tokens[token]
	if !ok {
		return primitive.NilObjectID, errors.ErrInvalidCredential.WithMessage("Invalid token")
	}
	return id, nil
}

func TestJWTMiddleware(t *testing.T) {
	userID := primitive.NewObjectID()
	parser := stubParser{tokens: map[string]primitive.ObjectID{"good": userID}}

	var seen primitive.ObjectID
	handler := JWTMiddleware(parser)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := UserIDFromContext(r.Context())
		require.True(t, ok)
		seen = id
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantCode   string
	}{
		{name: "valid", header: "Bearer good", wantStatus: http.StatusNoContent},
		{name: "missing", header: "", wantStatus: http.StatusUnauthorized, wantCode: "UNAUTHENTICATED"},
		{name: "wrong scheme", header: "Basic good", wantStatus: http.StatusUnauthorized, wantCode: "UNAUTHENTICATED"},
		{name: "empty token", header: "Bearer ", wantStatus: http.StatusUnauthorized, wantCode: "UNAUTHENTICATED"},
		{name: "bad token", header: "Bearer bad", wantStatus: http.StatusUnauthorized, wantCode: "INVALID_CREDENTIAL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = primitive.NilObjectID
			req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantCode == "" {
				assert.Equal(t, userID, seen)
				return
			}
			assert.True(t, seen.IsZero())
			var body errors.APIError
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tt.wantCode, body.Code)
		})
	}
}

func TestUserIDFromContext_Empty(t *testing.T) {
	_, ok := UserIDFromContext(httptest.NewRequest(http.MethodGet, "/", nil).Context())
	assert.False(t, ok)
}
