package sessions

import (
	"geo-registration-service/internal/domain"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestStore() *Store {
	return NewCookieStore([]byte(strings.Repeat("s", 32)), false)
}

// roundTrip saves sess and returns a request carrying the resulting cookie.
func roundTrip(t *testing.T, store *Store, r *http.Request, sess *Session) *http.Request {
	t.Helper()
	rec := httptest.NewRecorder()
	if err := store.Save(r, rec, sess); err != nil {
		t.Fatalf("save: %v", err)
	}

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		next.AddCookie(c)
	}
	return next
}

func TestSessionIdentityRoundTrip(t *testing.T) {
	store := newTestStore()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	sess, err := store.Get(r)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if _, ok := sess.Identity(); ok {
		t.Fatalf("new session should have no identity")
	}

	sess.SetIdentity(domain.Identity{Email: "ada@example.com", Name: "Ada Lovelace"})
	if !sess.NeedsSave() {
		t.Fatalf("session should need saving after a change")
	}

	next := roundTrip(t, store, r, sess)
	again, err := store.Get(next)
	if err != nil {
		t.Fatalf("get after save: %v", err)
	}
	id, ok := again.Identity()
	if !ok || id.Email != "ada@example.com" || id.Name != "Ada Lovelace" {
		t.Fatalf("identity = %+v, %v", id, ok)
	}
}

func TestSessionStateIsSingleUse(t *testing.T) {
	store := newTestStore()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	sess, _ := store.Get(r)
	sess.SetState("abc")

	if got := sess.PopState(); got != "abc" {
		t.Fatalf("PopState = %q", got)
	}
	if got := sess.PopState(); got != "" {
		t.Fatalf("second PopState = %q, want empty", got)
	}
}

func TestSessionTamperedCookie(t *testing.T) {
	store := newTestStore()

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: CookieName, Value: "garbage"})

	sess, err := store.Get(r)
	if err == nil {
		t.Fatalf("expected decode error for tampered cookie")
	}
	if sess == nil {
		t.Fatalf("a fresh session should still be returned")
	}
	if _, ok := sess.Identity(); ok {
		t.Fatalf("tampered cookie must not yield an identity")
	}
}

func TestSessionUserIDBinding(t *testing.T) {
	store := newTestStore()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	sess, _ := store.Get(r)
	if _, ok := sess.UserID(); ok {
		t.Fatalf("new session should not be bound to a record")
	}

	sess.SetIdentity(domain.Identity{Email: "ada@example.com"})
	sess.SetUserID(7)

	again, err := store.Get(roundTrip(t, store, r, sess))
	if err != nil {
		t.Fatalf("get after save: %v", err)
	}
	if id, ok := again.UserID(); !ok || id != 7 {
		t.Fatalf("UserID = %d, %v", id, ok)
	}

	again.ClearIdentity()
	if _, ok := again.UserID(); ok {
		t.Fatalf("signing out must drop the record binding")
	}
}
