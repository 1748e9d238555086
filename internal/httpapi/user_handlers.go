package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"sentra.org/internal/access"
)

type createUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (a *API) handleUsers(w http.ResponseWriter, r *http.Request) {
	actor, ok := access.UserFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	switch r.Method {
	case http.MethodPost:
		var req createUserRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		role, ok := access.ParseRole(req.Role)
		if !ok {
			writeError(w, r, http.StatusBadRequest, fmt.Sprintf("unknown role %q, expected one of: %s", req.Role, roleNames()))
			return
		}
		userID, err := a.manager.CreateUser(r.Context(), req.Username, req.Email, req.Password, role, actor.ID)
		if err != nil {
			handleAccessError(w, r, err)
			return
		}
		info, err := a.manager.UserInfo(r.Context(), userID)
		if err != nil {
			handleAccessError(w, r, err)
			return
		}
		w.Header().Set("Location", fmt.Sprintf("/v1/users/%s", userID))
		writeJSON(w, http.StatusCreated, info)

	case http.MethodGet:
		users, err := a.manager.ListUsers(r.Context(), actor.ID)
		if err != nil {
			handleAccessError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"users": users})

	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

type updateRoleRequest struct {
	Role string `json:"role"`
}

func (a *API) handleUserResource(w http.ResponseWriter, r *http.Request) {
	actor, ok := access.UserFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/users/"), "/")
	if path == "" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	parts := strings.Split(path, "/")

	switch {
	case len(parts) == 1:
		userID := parts[0]
		switch r.Method {
		case http.MethodGet:
			info, err := a.manager.UserInfo(r.Context(), userID)
			if err != nil {
				handleAccessError(w, r, err)
				return
			}
			writeJSON(w, http.StatusOK, info)
		case http.MethodDelete:
			if err := a.manager.DeactivateUser(r.Context(), userID, actor.ID); err != nil {
				handleAccessError(w, r, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		default:
			methodNotAllowed(w, r, http.MethodGet, http.MethodDelete)
		}

	case len(parts) == 2 && parts[1] == "role":
		if r.Method != http.MethodPut {
			methodNotAllowed(w, r, http.MethodPut)
			return
		}
		var req updateRoleRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		role, ok := access.ParseRole(req.Role)
		if !ok {
			writeError(w, r, http.StatusBadRequest, fmt.Sprintf("unknown role %q, expected one of: %s", req.Role, roleNames()))
			return
		}
		if err := a.manager.UpdateUserRole(r.Context(), parts[0], role, actor.ID); err != nil {
			handleAccessError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		writeError(w, r, http.StatusNotFound, "resource not found")
	}
}

func (a *API) handleAuditLogs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	actor, ok := access.UserFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	query := r.URL.Query()
	start, err := parseTimeParam(query.Get("start"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "start must be RFC3339")
		return
	}
	end, err := parseTimeParam(query.Get("end"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "end must be RFC3339")
		return
	}
	limit, err := parsePositiveInt(query.Get("limit"), 100, 1, 1000)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	entries, err := a.manager.AuditLogs(r.Context(), actor.ID, start, end, limit)
	if err != nil {
		handleAccessError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func roleNames() string {
	roles := access.Roles()
	names := make([]string, len(roles))
	for i, role := range roles {
		names[i] = string(role)
	}
	return strings.Join(names, ", ")
}

func parseTimeParam(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func parsePositiveInt(raw string, def, min, max int) (int, error) {
	if strings.TrimSpace(raw) == "" {
		return def, nil
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("limit must be an integer")
	}
	if val < min || val > max {
		return 0, fmt.Errorf("limit must be between %d and %d", min, max)
	}
	return val, nil
}
