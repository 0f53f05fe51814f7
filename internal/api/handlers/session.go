package handlers

import (
	"context"
	"errors"
	"geo-registration-service/internal/api/sessions"
	"geo-registration-service/internal/domain"
	"geo-registration-service/internal/platform/obs"
	"geo-registration-service/internal/services"
	"log"
	"net/http"
)

// UserService is what the handlers need from the user service.
type UserService interface {
	Register(ctx context.Context, email string, p domain.Profile) (*domain.User, bool, error)
	GetUser(ctx context.Context, id int) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateUser(ctx context.Context, id int, upd domain.ProfileUpdate) (*domain.User, error)
}

// loadSession returns the request's session. An unreadable cookie is
// replaced by an empty session.
func loadSession(store *sessions.Store, r *http.Request) *sessions.Session {
	sess, err := store.Get(r)
	if err != nil {
		log.Printf("req_id=%s session decode failed, starting fresh: %v", obs.RequestID(r.Context()), err)
	}
	return sess
}

func saveSession(store *sessions.Store, w http.ResponseWriter, r *http.Request, sess *sessions.Session) {
	if !sess.NeedsSave() {
		return
	}
	if err := store.Save(r, w, sess); err != nil {
		log.Printf("req_id=%s session save failed: %v", obs.RequestID(r.Context()), err)
	}
}

// ownedUser loads user id and checks that it is the record bound to the
// session. A session signed in before its record existed is bound here, by
// the provider's email.
func ownedUser(ctx context.Context, users UserService, sess *sessions.Session, id int) (*domain.User, error) {
	u, err := users.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	owner, ok := sess.UserID()
	if !ok {
		ident, _ := sess.Identity()
		mine, err := users.FindByEmail(ctx, ident.Email)
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrForbidden
		}
		if err != nil {
			return nil, err
		}
		owner = mine.ID
		sess.SetUserID(owner)
	}

	if u.ID != owner {
		return nil, domain.ErrForbidden
	}
	return u, nil
}

// checkEmail rejects a profile email other than the provider's. A blank
// email is left for validation to report.
func checkEmail(email string, ident domain.Identity) error {
	email = services.NormalizeEmail(email)
	if email != "" && email != services.NormalizeEmail(ident.Email) {
		return domain.ErrEmailMismatch
	}
	return nil
}
