// Package server exposes the calendar core over a JSON REST API guarded by
// the session middleware.
package server

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"subjcal/internal/auth"
	"subjcal/internal/calendar"
)

const (
	// HTTP headers
	HeaderContentType = "Content-Type"

	// MIME types
	MimeTypeJSON     = "application/json; charset=utf-8"
	MimeTypeCalendar = "text/calendar; charset=utf-8"
)

// Router handles API request routing.
type Router struct {
	svc      *calendar.Service
	sessions *auth.Sessions
	logger   *slog.Logger
	mux      *http.ServeMux
	now      func() time.Time

	// views holds one ViewState per session token, created lazily on the
	// first view request of a session and dropped on logout.
	viewMu sync.Mutex
	views  map[string]*calendar.ViewState
}

// NewRouter creates the API router. The login endpoint is public; every
// other route requires a valid session cookie.
func NewRouter(svc *calendar.Service, sessions *auth.Sessions, logger *slog.Logger) *Router {
	r := &Router{
		svc:      svc,
		sessions: sessions,
		logger:   logger,
		mux:      http.NewServeMux(),
		now:      time.Now,
		views:    make(map[string]*calendar.ViewState),
	}

	r.mux.HandleFunc("POST /api/auth/login", r.handleLogin)

	protect := auth.Middleware(sessions)
	routes := map[string]http.HandlerFunc{
		"POST /api/auth/logout":        r.handleLogout,
		"GET /api/events":              r.handleListEvents,
		"POST /api/events":             r.handleCreateEvent,
		"POST /api/events/save":        r.handleSaveEvent,
		"POST /api/events/cleanup":     r.handleCleanup,
		"GET /api/events/export":       r.handleExport,
		"GET /api/events/visible":      r.handleVisibleEvents,
		"PUT /api/events/{id}":         r.handleUpdateEvent,
		"DELETE /api/events/{id}":      r.handleDeleteEvent,
		"GET /api/subjects":            r.handleListSubjects,
		"POST /api/subjects":           r.handleCreateSubject,
		"PUT /api/subjects/{id}":       r.handleUpdateSubject,
		"DELETE /api/subjects/{id}":    r.handleDeleteSubject,
		"POST /api/view/colors/toggle": r.handleToggleColor,
		"PUT /api/view/date":           r.handleViewDate,
	}
	for pattern, handler := range routes {
		r.mux.Handle(pattern, protect(handler))
	}

	return r
}

// ServeHTTP implements http.Handler.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.logger.Info("received request",
		"method", req.Method,
		"path", req.URL.Path,
		"remote_addr", req.RemoteAddr)

	r.mux.ServeHTTP(w, req)
}

// view returns the ViewState for the request's session, creating it with
// the current subjects on first use.
func (r *Router) view(req *http.Request) (*calendar.ViewState, error) {
	token := auth.TokenFromRequest(req)

	r.viewMu.Lock()
	if v, ok := r.views[token]; ok {
		r.viewMu.Unlock()
		return v, nil
	}
	r.viewMu.Unlock()

	subjects, err := r.svc.ListSubjects(req.Context())
	if err != nil {
		return nil, err
	}

	v := calendar.NewViewState(r.now())
	v.SetSubjects(subjects)

	r.viewMu.Lock()
	// Another request for the same session may have raced us here; keep
	// whichever state landed first.
	if existing, ok := r.views[token]; ok {
		v = existing
	} else {
		r.views[token] = v
	}
	r.viewMu.Unlock()
	return v, nil
}

func (r *Router) dropView(token string) {
	r.viewMu.Lock()
	delete(r.views, token)
	r.viewMu.Unlock()
}
