package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/MrSnakeDoc/snapstash/internal/domain"
	"github.com/MrSnakeDoc/snapstash/internal/httpserver/deps"
	"github.com/MrSnakeDoc/snapstash/internal/logger"
	"github.com/MrSnakeDoc/snapstash/internal/metrics"
)

// maxBodyBytes bounds request bodies; a saved tab is a few hundred bytes.
const maxBodyBytes = 64 << 10

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// statusFor maps store errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidCategory):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrEmptyHistory):
		return http.StatusConflict
	case errors.Is(err, domain.ErrPersistence):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeStoreError reports a failed store operation to the client, the log and the metrics.
func writeStoreError(w http.ResponseWriter, d deps.Deps, op string, err error) {
	metrics.RecordOperation(op, err)

	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		d.Logger.Error("store operation failed",
			logger.String("operation", op),
			logger.Error(err))
	} else {
		d.Logger.Debug("store operation rejected",
			logger.String("operation", op),
			logger.Error(err))
	}
	writeMessage(w, status, domain.ErrorMessage(err))
}

// recordSuccess updates the operation counter and the state gauges.
func recordSuccess(d deps.Deps, op string) {
	metrics.RecordOperation(op, nil)
	metrics.SetState(d.Store.Len(), d.Store.HistoryDepth())
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	return dec.Decode(v)
}
