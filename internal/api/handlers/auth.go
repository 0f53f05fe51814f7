package handlers

import (
	"errors"
	"fmt"
	"geo-registration-service/internal/api/sessions"
	"geo-registration-service/internal/domain"
	"geo-registration-service/internal/platform/obs"
	"geo-registration-service/internal/ports"
	"log"
	"net/http"

	"github.com/google/uuid"
)

// AuthHandler runs the sign-in flow against the identity provider.
type AuthHandler struct {
	Provider ports.IdentityProvider
	Users    UserService
	Sessions *sessions.Store
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}

	state := uuid.NewString()

	sess := loadSession(h.Sessions, r)
	sess.SetState(state)
	if err := h.Sessions.Save(r, w, sess); err != nil {
		writeDomainError(w, r, fmt.Errorf("login: save session: %w", err))
		return
	}

	http.Redirect(w, r, h.Provider.AuthCodeURL(state), http.StatusFound)
}

// Callback completes sign-in and sends returning users to their profile and
// new users to the register page.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}

	sess := loadSession(h.Sessions, r)
	want := sess.PopState()
	q := r.URL.Query()

	if want == "" || q.Get("state") != want {
		saveSession(h.Sessions, w, r, sess)
		writeError(w, r, http.StatusBadRequest, "invalid oauth state")
		return
	}

	if reason := q.Get("error"); reason != "" {
		log.Printf("req_id=%s oauth callback error=%q", obs.RequestID(r.Context()), reason)
		saveSession(h.Sessions, w, r, sess)
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	ident, err := h.Provider.Exchange(r.Context(), q.Get("code"))
	if err != nil {
		saveSession(h.Sessions, w, r, sess)
		writeDomainError(w, r, err)
		return
	}

	sess.ClearIdentity()
	sess.SetIdentity(ident)

	u, err := h.Users.FindByEmail(r.Context(), ident.Email)
	switch {
	case err == nil:
		sess.SetUserID(u.ID)
		saveSession(h.Sessions, w, r, sess)
		http.Redirect(w, r, fmt.Sprintf("/profile/%d", u.ID), http.StatusFound)
	case errors.Is(err, domain.ErrUserNotFound):
		saveSession(h.Sessions, w, r, sess)
		http.Redirect(w, r, "/register", http.StatusFound)
	default:
		saveSession(h.Sessions, w, r, sess)
		writeDomainError(w, r, err)
	}
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	sess := loadSession(h.Sessions, r)
	sess.ClearIdentity()
	sess.Expire()
	saveSession(h.Sessions, w, r, sess)

	http.Redirect(w, r, "/", http.StatusSeeOther)
}
