package httpapi

import (
	"net/http"

	"sentra.org/internal/access"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string      `json:"token"`
	User  access.Info `json:"user"`
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	// Empty credentials go through Authenticate like any other bad attempt so
	// the failure lands in the audit trail.
	token, err := a.manager.Authenticate(r.Context(), req.Username, req.Password, clientIP(r))
	if err != nil {
		handleAccessError(w, r, err)
		return
	}
	user, err := a.manager.ValidateSession(r.Context(), token)
	if err != nil {
		handleAccessError(w, r, err)
		return
	}
	info, err := a.manager.UserInfo(r.Context(), user.ID)
	if err != nil {
		handleAccessError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{Token: token, User: info})
}

func (a *API) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	token, ok := access.TokenFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "missing bearer token")
		return
	}
	a.manager.Logout(r.Context(), token, clientIP(r))
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	user, ok := access.UserFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}
	info, err := a.manager.UserInfo(r.Context(), user.ID)
	if err != nil {
		handleAccessError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}
