package handlers

import (
	"net/http"
	"time"

	"kycdesk/middleware"
	"kycdesk/models"
	"kycdesk/services"
)

func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.accounts.Register(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusCreated, "Registration submitted for review. Please wait for approval.", map[string]interface{}{
		"user": user,
	})
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	res, err := h.auth.Login(r.Context(), req.Identifier(), req.Password, middleware.SessionToken(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.setSessionCookie(w, res.Token, time.Now().Add(h.config.SessionTTL))

	message := "Login successful"
	if res.Principal.IsAdmin() {
		message = "Admin login successful"
	}
	writeSuccess(w, http.StatusOK, message, map[string]interface{}{
		"token": res.Token,
		"user":  identityBody(res.Identity),
	})
}

// Logout always succeeds, with or without a session.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.Logout(r.Context(), middleware.SessionToken(r)); err != nil {
		writeError(w, r, err)
		return
	}

	h.setSessionCookie(w, "", time.Unix(0, 0))
	writeSuccess(w, http.StatusOK, "Logout successful", nil)
}

func (h *Handlers) CheckAuth(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r)
	if identity.Principal.IsAnonymous() {
		writeJSON(w, http.StatusOK, map[string]interface{}{"authenticated": false})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"authenticated": true,
		"user":          identityBody(identity),
	})
}

// identityBody is the user representation for users and a small stub for
// the administrator, who has no stored record.
func identityBody(identity services.Identity) interface{} {
	if identity.Principal.IsAdmin() {
		return map[string]interface{}{
			"email":    identity.Principal.Email,
			"is_admin": true,
		}
	}
	return identity.User
}

func (h *Handlers) setSessionCookie(w http.ResponseWriter, value string, expires time.Time) {
	c := &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
	if value == "" {
		c.MaxAge = -1
	}
	http.SetCookie(w, c)
}
