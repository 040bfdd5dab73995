package server

import (
	"net/http"
	"time"
)

// handleToggleColor flips one color in the session's visible set. The
// change lives in memory only; a new session starts from the active
// subjects again.
func (r *Router) handleToggleColor(w http.ResponseWriter, req *http.Request) {
	var body struct {
		Color string `json:"color"`
	}
	if err := decodeJSON(req, &body); err != nil || body.Color == "" {
		r.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "color is required"})
		return
	}

	view, err := r.view(req)
	if err != nil {
		r.writeError(w, req, err)
		return
	}

	view.ToggleColor(body.Color)
	r.writeJSON(w, http.StatusOK, map[string]any{
		"visibleColors": view.VisibleColors(),
	})
}

func (r *Router) handleViewDate(w http.ResponseWriter, req *http.Request) {
	var body struct {
		Date string `json:"date"`
	}
	if err := decodeJSON(req, &body); err != nil {
		r.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	date, err := time.Parse("2006-01-02", body.Date)
	if err != nil {
		r.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid date: " + body.Date})
		return
	}

	view, err := r.view(req)
	if err != nil {
		r.writeError(w, req, err)
		return
	}

	view.SetCurrentDate(date)
	r.writeJSON(w, http.StatusOK, map[string]string{
		"currentDate": view.CurrentDate().Format("2006-01-02"),
	})
}
