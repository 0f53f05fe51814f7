package handlers

import (
	"geo-registration-service/internal/api/dto"
	"geo-registration-service/internal/api/sessions"
	"geo-registration-service/internal/domain"
	"net/http"
)

type RegisterHandler struct {
	Users    UserService
	Sessions *sessions.Store
}

// Register creates the signed-in user's record, or returns the existing one.
// The email always comes from the session, never from the body.
func (h *RegisterHandler) Register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	sess := loadSession(h.Sessions, r)
	ident, ok := sess.Identity()
	if !ok {
		writeDomainError(w, r, domain.ErrUnauthenticated)
		return
	}

	var req dto.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	u, created, err := h.Users.Register(r.Context(), ident.Email, req.Profile())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	sess.SetUserID(u.ID)
	saveSession(h.Sessions, w, r, sess)

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, r, status, dto.NewUserResponse(u))
}
