package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"socialnet/utils/errors"
)

// ErrorMiddleware recovers from panics and answers them with a JSON 500
func ErrorMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					logrus.WithFields(logrus.Fields{
						"panic":  rec,
						"method": r.Method,
						"path":   r.URL.Path,
					}).Error("Panic recovered")
					WriteError(w, errors.ErrInternal)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// WriteError writes err as a JSON response. Anything that is not an
// APIError becomes a 500 whose cause is logged, not returned.
func WriteError(w http.ResponseWriter, err error) {
	apiErr, ok := errors.As(err)
	if !ok {
		apiErr = errors.Wrap(err, errors.ErrInternal.Code, errors.ErrInternal.Message, errors.ErrInternal.Status)
	}
	body := *apiErr
	if apiErr.Status >= http.StatusInternalServerError {
		logrus.WithField("details", apiErr.Details).Errorf("Server error %s", apiErr.Error())
		body.Details = ""
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apiErr.Status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logrus.WithError(err).Warn("Failed to write error response")
	}
}
