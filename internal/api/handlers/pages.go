package handlers

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"geo-registration-service/internal/api/dto"
	"geo-registration-service/internal/api/sessions"
	"geo-registration-service/internal/domain"
	"geo-registration-service/internal/platform/obs"
	"html/template"
	"log"
	"net/http"
	"sort"
	"strings"

	"github.com/gorilla/schema"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{"index", "register", "profile", "error"}

type pageData struct {
	Title         string
	Identity      *domain.Identity
	Form          dto.ProfileForm
	UserID        int
	Error         string
	Notice        string
	MaxDistanceKm float64
	ReferenceName string
}

// PageHandler serves the HTML pages of the sign-in and registration flow.
type PageHandler struct {
	Users         UserService
	Sessions      *sessions.Store
	MaxDistanceKm float64
	// ReferenceName names the reference point in page text.
	ReferenceName string

	pages   map[string]*template.Template
	decoder *schema.Decoder
}

func NewPageHandler(users UserService, store *sessions.Store, referenceName string, maxDistanceKm float64) (*PageHandler, error) {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		t, err := template.ParseFS(templateFS, "templates/base.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse template %q: %w", name, err)
		}
		pages[name] = t
	}

	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)
	decoder.ZeroEmpty(true)

	if referenceName == "" {
		referenceName = "the reference point"
	}

	return &PageHandler{
		Users:         users,
		Sessions:      store,
		MaxDistanceKm: maxDistanceKm,
		ReferenceName: referenceName,
		pages:         pages,
		decoder:       decoder,
	}, nil
}

// Index is the sign-in page. Signed-in users who already registered go
// straight to their profile.
func (h *PageHandler) Index(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}

	data := pageData{Title: "Sign in", MaxDistanceKm: h.MaxDistanceKm, ReferenceName: h.ReferenceName}

	if ident, ok := loadSession(h.Sessions, r).Identity(); ok {
		u, err := h.Users.FindByEmail(r.Context(), ident.Email)
		if err == nil {
			http.Redirect(w, r, fmt.Sprintf("/profile/%d", u.ID), http.StatusFound)
			return
		}
		if !errors.Is(err, domain.ErrUserNotFound) {
			h.renderError(w, r, err)
			return
		}
		data.Identity = &ident
	}

	h.render(w, r, http.StatusOK, "index", data)
}

func (h *PageHandler) Register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodGet+", "+http.MethodPost)
		return
	}

	sess := loadSession(h.Sessions, r)
	ident, ok := sess.Identity()
	if !ok {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	data := pageData{Title: "Register", Identity: &ident}

	if r.Method == http.MethodGet {
		u, err := h.Users.FindByEmail(r.Context(), ident.Email)
		if err == nil {
			http.Redirect(w, r, fmt.Sprintf("/profile/%d", u.ID), http.StatusFound)
			return
		}
		if !errors.Is(err, domain.ErrUserNotFound) {
			h.renderError(w, r, err)
			return
		}
		data.Form.FirstName, data.Form.LastName = ident.SplitName()
		h.render(w, r, http.StatusOK, "register", data)
		return
	}

	form, err := h.decodeForm(r)
	data.Form = form
	if err != nil {
		data.Error = err.Error()
		h.render(w, r, http.StatusBadRequest, "register", data)
		return
	}

	u, _, err := h.Users.Register(r.Context(), ident.Email, data.Form.Profile())
	if err != nil {
		status, msg := h.formError(err)
		logServerError(r, status, err)
		data.Error = msg
		h.render(w, r, status, "register", data)
		return
	}

	sess.SetUserID(u.ID)
	saveSession(h.Sessions, w, r, sess)
	http.Redirect(w, r, fmt.Sprintf("/profile/%d", u.ID), http.StatusSeeOther)
}

func (h *PageHandler) Profile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodGet+", "+http.MethodPost)
		return
	}

	id, ok := userID(r)
	if !ok {
		h.render(w, r, http.StatusBadRequest, "error", pageData{Title: "Bad request", Error: "invalid user id"})
		return
	}

	sess := loadSession(h.Sessions, r)
	ident, ok := sess.Identity()
	if !ok {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	u, err := ownedUser(r.Context(), h.Users, sess, id)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	saveSession(h.Sessions, w, r, sess)

	data := pageData{Title: "Profile", Identity: &ident, UserID: id, Form: dto.FormFromUser(u)}

	if r.Method == http.MethodGet {
		h.render(w, r, http.StatusOK, "profile", data)
		return
	}

	form, err := h.decodeForm(r)
	if err != nil {
		data.Error = err.Error()
		h.render(w, r, http.StatusBadRequest, "profile", data)
		return
	}
	data.Form = form

	err = checkEmail(form.Email, ident)
	if err == nil {
		u, err = h.Users.UpdateUser(r.Context(), u.ID, data.Form.ProfileUpdate())
	}
	if err != nil {
		status, msg := h.formError(err)
		logServerError(r, status, err)
		data.Error = msg
		h.render(w, r, status, "profile", data)
		return
	}

	data.Form = dto.FormFromUser(u)
	data.Notice = "Profile saved."
	h.render(w, r, http.StatusOK, "profile", data)
}

// decodeForm reads the posted profile form. Fields left out of the post
// stay empty so that validation reports them.
func (h *PageHandler) decodeForm(r *http.Request) (dto.ProfileForm, error) {
	var form dto.ProfileForm
	if err := r.ParseForm(); err != nil {
		return form, errors.New("could not read the submitted form")
	}

	err := h.decoder.Decode(&form, r.PostForm)
	if err == nil {
		return form, nil
	}

	var multiErr schema.MultiError
	if errors.As(err, &multiErr) {
		keys := make([]string, 0, len(multiErr))
		for key := range multiErr {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		return form, fmt.Errorf("invalid value for %s", strings.Join(keys, ", "))
	}
	return form, errors.New("could not read the submitted form")
}

// formError picks the message shown above a form.
func (h *PageHandler) formError(err error) (int, string) {
	status, _, msg := errorStatus(err)

	var oor *domain.OutOfRangeError
	if errors.As(err, &oor) {
		msg = fmt.Sprintf("Registration is limited to addresses within %.0f km of %s; this address is %.1f km away.", oor.MaxKm, h.ReferenceName, oor.DistanceKm)
	}

	var missing *domain.MissingFieldError
	if errors.As(err, &missing) {
		msg = missing.Error()
	}

	return status, msg
}

func logServerError(r *http.Request, status int, err error) {
	if status >= http.StatusInternalServerError {
		log.Printf("req_id=%s method=%s path=%s err=%v", obs.RequestID(r.Context()), r.Method, r.URL.Path, err)
	}
}

func (h *PageHandler) renderError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := h.formError(err)
	logServerError(r, status, err)
	h.render(w, r, status, "error", pageData{Title: http.StatusText(status), Error: msg})
}

func (h *PageHandler) render(w http.ResponseWriter, r *http.Request, status int, name string, data pageData) {
	t, ok := h.pages[name]
	if !ok {
		log.Printf("render: unknown page %q", name)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "base", data); err != nil {
		log.Printf("render failed: page=%s method=%s path=%s err=%v", name, r.Method, r.URL.Path, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
