package handlers

import (
	"geo-registration-service/internal/api/dto"
	"geo-registration-service/internal/api/sessions"
	"geo-registration-service/internal/domain"
	"net/http"
	"strings"
)

// UserHandler serves /api/users/{id}. Only the signed-in owner may read or
// replace a record, and the record's email stays the provider's.
type UserHandler struct {
	Users    UserService
	Sessions *sessions.Store
}

func (h *UserHandler) User(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPut {
		methodNotAllowed(w, r, strings.Join([]string{http.MethodGet, http.MethodPut}, ", "))
		return
	}

	id, ok := userID(r)
	if !ok {
		writeError(w, r, http.StatusBadRequest, "invalid user id")
		return
	}

	sess := loadSession(h.Sessions, r)
	ident, ok := sess.Identity()
	if !ok {
		writeDomainError(w, r, domain.ErrUnauthenticated)
		return
	}

	u, err := ownedUser(r.Context(), h.Users, sess, id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	saveSession(h.Sessions, w, r, sess)

	if r.Method == http.MethodGet {
		writeJSON(w, r, http.StatusOK, dto.NewUserResponse(u))
		return
	}

	var req dto.UpdateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := checkEmail(req.Email, ident); err != nil {
		writeDomainError(w, r, err)
		return
	}

	updated, err := h.Users.UpdateUser(r.Context(), u.ID, req.ProfileUpdate())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.NewUserResponse(updated))
}
