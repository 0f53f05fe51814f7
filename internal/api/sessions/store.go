package sessions

import (
	"net/http"

	"github.com/gorilla/sessions"
)

const CookieName = "geo-session"

// Store loads and saves the signed session cookie.
type Store struct {
	store sessions.Store
}

func NewStore(store sessions.Store) *Store {
	return &Store{store: store}
}

// NewCookieStore signs cookies with key. Cookies are HttpOnly and SameSite=Lax;
// secure restricts them to HTTPS.
func NewCookieStore(key []byte, secure bool) *Store {
	cs := sessions.NewCookieStore(key)
	cs.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   7 * 24 * 60 * 60,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return NewStore(cs)
}

// Get returns the request's session. A cookie that fails to decode yields a
// fresh session and the error.
func (s *Store) Get(r *http.Request) (*Session, error) {
	base, err := s.store.Get(r, CookieName)
	if base == nil {
		return nil, err
	}
	return &Session{base: base}, err
}

func (s *Store) Save(r *http.Request, w http.ResponseWriter, sess *Session) error {
	if err := s.store.Save(r, w, sess.base); err != nil {
		return err
	}

	sess.needsSave = false
	return nil
}
