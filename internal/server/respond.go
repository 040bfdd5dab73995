package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"subjcal/internal/calendar"
	"subjcal/internal/storage"
)

func (r *Router) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set(HeaderContentType, MimeTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		r.logger.Error("failed to encode response", "error", err)
	}
}

// writeError maps core and storage errors onto HTTP statuses. Malformed
// identifiers map to 400, not 404: the two are distinct failure kinds.
func (r *Router) writeError(w http.ResponseWriter, req *http.Request, err error) {
	var ve *calendar.ValidationError
	if errors.As(err, &ve) {
		r.writeJSON(w, http.StatusBadRequest, map[string]string{"error": ve.Message})
		return
	}

	var se *storage.Error
	if errors.As(err, &se) {
		switch se.Type {
		case storage.ErrNotFound:
			r.writeJSON(w, http.StatusNotFound, map[string]string{"error": se.Message})
		case storage.ErrInvalidID, storage.ErrInvalidInput:
			r.writeJSON(w, http.StatusBadRequest, map[string]string{"error": se.Message})
		case storage.ErrUnavailable:
			r.logger.Error("storage unavailable", "error", err, "path", req.URL.Path)
			r.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "storage unavailable"})
		default:
			r.logger.Error("storage error", "error", err, "path", req.URL.Path)
			r.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		}
		return
	}

	r.logger.Error("request failed", "error", err, "path", req.URL.Path)
	r.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
}

func decodeJSON(req *http.Request, dst any) error {
	return json.NewDecoder(req.Body).Decode(dst)
}
