package handlers

import (
	"net/http"

	"kycdesk/middleware"
)

func (h *Handlers) GetUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.accounts.ListUsers(r.Context(), middleware.GetPrincipal(r), pageFromQuery(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *Handlers) ApproveUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "User not found")
	if err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.accounts.Approve(r.Context(), middleware.GetPrincipal(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "User approved successfully", map[string]interface{}{"user": user})
}

func (h *Handlers) RejectUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "User not found")
	if err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.accounts.Reject(r.Context(), middleware.GetPrincipal(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "User rejected successfully", map[string]interface{}{"user": user})
}

func (h *Handlers) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "User not found")
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.accounts.Delete(r.Context(), middleware.GetPrincipal(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
