package server

import (
	"net/http"

	"subjcal/internal/storage"
)

func (r *Router) handleListSubjects(w http.ResponseWriter, req *http.Request) {
	subjects, err := r.svc.ListSubjects(req.Context())
	if err != nil {
		r.writeError(w, req, err)
		return
	}
	r.writeJSON(w, http.StatusOK, subjects)
}

func (r *Router) handleCreateSubject(w http.ResponseWriter, req *http.Request) {
	var fields storage.SubjectFields
	if err := decodeJSON(req, &fields); err != nil {
		r.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	subject, err := r.svc.CreateSubject(req.Context(), fields)
	if err != nil {
		r.writeError(w, req, err)
		return
	}

	r.logger.Info("subject created", "id", subject.ID, "name", subject.Name)
	r.writeJSON(w, http.StatusCreated, subject)
}

func (r *Router) handleUpdateSubject(w http.ResponseWriter, req *http.Request) {
	var fields storage.SubjectFields
	if err := decodeJSON(req, &fields); err != nil {
		r.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	subject, err := r.svc.UpdateSubject(req.Context(), req.PathValue("id"), fields)
	if err != nil {
		r.writeError(w, req, err)
		return
	}

	r.logger.Info("subject updated", "id", subject.ID)
	r.writeJSON(w, http.StatusOK, subject)
}

func (r *Router) handleDeleteSubject(w http.ResponseWriter, req *http.Request) {
	id := req.PathValue("id")
	if err := r.svc.DeleteSubject(req.Context(), id); err != nil {
		r.writeError(w, req, err)
		return
	}

	r.logger.Info("subject deleted", "id", id)
	r.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
