package api

import (
	"errors"
	"net/http"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/sells-group/retail-presence/internal/compare"
	"github.com/sells-group/retail-presence/internal/filter"
	"github.com/sells-group/retail-presence/internal/geo"
	"github.com/sells-group/retail-presence/internal/imageref"
	"github.com/sells-group/retail-presence/internal/store"
)

// errorBody is the JSON body of every error response.
type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	body, err := json.Marshal(data)
	if err != nil {
		zap.L().Error("api: encode response", zap.Error(err))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal error"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// statusOf maps domain errors onto HTTP status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, compare.ErrRetailerNotFound), errors.Is(err, geo.ErrNoBoundaries):
		return http.StatusNotFound
	case errors.Is(err, errBadRequest),
		errors.Is(err, filter.ErrInvalidRange),
		errors.Is(err, filter.ErrUnknownStatus),
		errors.Is(err, filter.ErrUnknownContext),
		errors.Is(err, compare.ErrUnknownDirection),
		errors.Is(err, imageref.ErrEmptyIdentifier),
		errors.Is(err, imageref.ErrMalformedARN):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotLoaded):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		err = errors.New("api: unspecified error")
	}
	status := statusOf(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		zap.L().Error("api: request failed",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		msg = "internal error"
	}
	writeJSON(w, status, errorBody{Error: msg})
}
