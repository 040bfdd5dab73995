package server

import (
	"errors"
	"fmt"
	"net/http"

	"subjcal/internal/calendar"
	"subjcal/internal/storage"
)

func (r *Router) handleListEvents(w http.ResponseWriter, req *http.Request) {
	events, err := r.svc.ListEvents(req.Context())
	if err != nil {
		r.writeError(w, req, err)
		return
	}
	r.writeJSON(w, http.StatusOK, events)
}

func (r *Router) handleCreateEvent(w http.ResponseWriter, req *http.Request) {
	var fields storage.EventFields
	if err := decodeJSON(req, &fields); err != nil {
		r.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	event, err := r.svc.CreateEvent(req.Context(), fields)
	if err != nil {
		r.writeError(w, req, err)
		return
	}

	r.logger.Info("event created", "id", event.ID, "title", event.Title)
	r.writeJSON(w, http.StatusCreated, event)
}

func (r *Router) handleSaveEvent(w http.ResponseWriter, req *http.Request) {
	var form calendar.EventForm
	if err := decodeJSON(req, &form); err != nil {
		r.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	events, err := r.svc.SaveEvent(req.Context(), form)
	if err != nil {
		// A partial batch failure is not rolled back; report what made it
		// alongside the failure so the caller knows what is persisted.
		var pse *calendar.PartialSaveError
		if errors.As(err, &pse) {
			r.logger.Error("recurring save partially failed",
				"written", pse.Written,
				"total", pse.Total,
				"error", pse.Err)
			r.writeJSON(w, http.StatusInternalServerError, map[string]any{
				"error":  pse.Error(),
				"saved":  pse.Written,
				"total":  pse.Total,
				"events": events,
			})
			return
		}
		r.writeError(w, req, err)
		return
	}

	status := http.StatusCreated
	if !form.Recurring && form.ID != "" {
		status = http.StatusOK
	}
	if !form.Recurring {
		r.writeJSON(w, status, events[0])
		return
	}

	r.logger.Info("recurring events created", "count", len(events))
	r.writeJSON(w, status, map[string]any{
		"count":  len(events),
		"events": events,
	})
}

func (r *Router) handleUpdateEvent(w http.ResponseWriter, req *http.Request) {
	var fields storage.EventFields
	if err := decodeJSON(req, &fields); err != nil {
		r.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	event, err := r.svc.UpdateEvent(req.Context(), req.PathValue("id"), fields)
	if err != nil {
		r.writeError(w, req, err)
		return
	}

	r.logger.Info("event updated", "id", event.ID)
	r.writeJSON(w, http.StatusOK, event)
}

func (r *Router) handleDeleteEvent(w http.ResponseWriter, req *http.Request) {
	id := req.PathValue("id")
	if err := r.svc.DeleteEvent(req.Context(), id); err != nil {
		r.writeError(w, req, err)
		return
	}

	r.logger.Info("event deleted", "id", id)
	r.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (r *Router) handleCleanup(w http.ResponseWriter, req *http.Request) {
	count, err := r.svc.PurgeOldEvents(req.Context())
	if err != nil {
		r.writeError(w, req, err)
		return
	}

	r.writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"deletedCount": count,
		"message":      fmt.Sprintf("Deleted %d events that ended more than 1 day ago", count),
	})
}

func (r *Router) handleVisibleEvents(w http.ResponseWriter, req *http.Request) {
	view, err := r.view(req)
	if err != nil {
		r.writeError(w, req, err)
		return
	}

	events, err := r.svc.ListEvents(req.Context())
	if err != nil {
		r.writeError(w, req, err)
		return
	}

	r.writeJSON(w, http.StatusOK, view.FilterVisible(events))
}
