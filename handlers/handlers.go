// Package handlers decodes HTTP requests, calls the services and writes
// their results as JSON.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"socialnet/middleware"
	"socialnet/models"
	"socialnet/utils/errors"
	"socialnet/utils/validation"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type messageResponse struct {
	Message string `json:"message"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Warn("Failed to write response")
	}
}

// decode reads a JSON body into dst and validates its struct tags
func decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errors.InvalidInput("Invalid request body")
	}
	return validation.Struct(dst)
}

func currentUser(r *http.Request) (primitive.ObjectID, error) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		return primitive.NilObjectID, errors.ErrUnauthorized
	}
	return userID, nil
}

// pathID parses a route variable. A malformed id cannot name an existing
// entity, so it is reported as missing.
func pathID(r *http.Request, name, notFound string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)[name])
	if err != nil {
		return primitive.NilObjectID, errors.NotFound(notFound)
	}
	return id, nil
}

// bodyID parses an id that already passed the mongodb validator tag
func bodyID(field, hex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, errors.Validation(errors.FieldError{Field: field, Message: field + " must be a valid id"})
	}
	return id, nil
}

// listOptions reads limit and skip from the query string
func listOptions(r *http.Request) (models.ListOptions, error) {
	opts := models.ListOptions{Limit: defaultPageSize}
	q := r.URL.Query()

	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 1 {
			return opts, errors.Validation(errors.FieldError{Field: "limit", Message: "limit must be a positive integer"})
		}
		if n > maxPageSize {
			n = maxPageSize
		}
		opts.Limit = n
	}
	if raw := q.Get("skip"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 0 {
			return opts, errors.Validation(errors.FieldError{Field: "skip", Message: "skip must be a non-negative integer"})
		}
		opts.Skip = n
	}
	return opts, nil
}

// NotFound answers unknown routes in the API's error format
func NotFound(w http.ResponseWriter, r *http.Request) {
	middleware.WriteError(w, errors.NotFound("Route not found"))
}

func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	middleware.WriteError(w, errors.NewAPIError("METHOD_NOT_ALLOWED", "Method not allowed", http.StatusMethodNotAllowed))
}
