package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	cerr "github.com/saeidalz13/warzones/internal/error"
	mc "github.com/saeidalz13/warzones/models/connection"
)

var (
	errInvalidSnapshot = errors.New("snapshot body must be a JSON document")
	errInvalidResult   = errors.New("mission result must carry won and an accuracy between 0 and 100")
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, cerr.ErrSnapshotNotFound),
		errors.Is(err, cerr.ErrMissionNotExists),
		errors.Is(err, cerr.ErrGameNotExists):
		return http.StatusNotFound
	case errors.Is(err, cerr.ErrMissionLocked):
		return http.StatusForbidden
	case errors.Is(err, cerr.ErrNilPayload),
		errors.Is(err, errInvalidSnapshot),
		errors.Is(err, errInvalidResult):
		return http.StatusBadRequest
	default:
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return http.StatusRequestEntityTooLarge
		}
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError hides internal failures behind a generic message.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		writeJSON(w, status, mc.NewRespErr("", "internal error"))
		return
	}
	writeJSON(w, status, mc.NewRespErr(err.Error(), http.StatusText(status)))
}
