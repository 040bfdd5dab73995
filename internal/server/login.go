package server

import (
	"errors"
	"net/http"
	"time"

	"subjcal/internal/auth"
)

const sessionCookieMaxAge = int(auth.DefaultSessionTTL / time.Second)

func (r *Router) handleLogin(w http.ResponseWriter, req *http.Request) {
	var creds auth.Credentials
	if err := decodeJSON(req, &creds); err != nil {
		r.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	token, err := r.sessions.Login(req.Context(), creds)
	if err != nil {
		var ae *auth.Error
		if errors.As(err, &ae) && ae.Type == auth.ErrInvalidCredentials {
			r.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid username or password"})
			return
		}
		r.writeError(w, req, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   sessionCookieMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	r.logger.Info("login succeeded", "username", creds.Username)
	r.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (r *Router) handleLogout(w http.ResponseWriter, req *http.Request) {
	token := auth.TokenFromRequest(req)
	r.sessions.Logout(req.Context(), token)
	r.dropView(token)

	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	r.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
