package sessions

import (
	"geo-registration-service/internal/domain"

	"github.com/gorilla/sessions"
)

const (
	emailKey  = "email"
	nameKey   = "name"
	userIDKey = "user_id"
	stateKey  = "oauth_state"
)

type Session struct {
	base      *sessions.Session
	needsSave bool
}

func (s *Session) NeedsSave() bool {
	return s.needsSave
}

// Identity returns the signed-in identity, if any.
func (s *Session) Identity() (domain.Identity, bool) {
	email, _ := s.base.Values[emailKey].(string)
	if email == "" {
		return domain.Identity{}, false
	}
	name, _ := s.base.Values[nameKey].(string)
	return domain.Identity{Email: email, Name: name}, true
}

func (s *Session) SetIdentity(id domain.Identity) {
	s.needsSave = true
	s.base.Values[emailKey] = id.Email
	s.base.Values[nameKey] = id.Name
}

// ClearIdentity signs the session out, dropping the bound record id too.
func (s *Session) ClearIdentity() {
	s.needsSave = true
	delete(s.base.Values, emailKey)
	delete(s.base.Values, nameKey)
	delete(s.base.Values, userIDKey)
}

// UserID returns the id of the record owned by the signed-in identity.
func (s *Session) UserID() (int, bool) {
	id, ok := s.base.Values[userIDKey].(int)
	return id, ok && id > 0
}

func (s *Session) SetUserID(id int) {
	s.needsSave = true
	s.base.Values[userIDKey] = id
}

func (s *Session) SetState(state string) {
	s.needsSave = true
	s.base.Values[stateKey] = state
}

// PopState returns the pending OAuth state and removes it, so a state is
// accepted at most once.
func (s *Session) PopState() string {
	state, _ := s.base.Values[stateKey].(string)
	if state != "" {
		s.needsSave = true
		delete(s.base.Values, stateKey)
	}
	return state
}

// Expire deletes the cookie on the next save.
func (s *Session) Expire() {
	s.needsSave = true
	s.base.Options.MaxAge = -1
}
