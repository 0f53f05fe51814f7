package api

import (
	"fmt"
	"geo-registration-service/internal/api/handlers"
	"geo-registration-service/internal/api/sessions"
	"geo-registration-service/internal/ports"
	"net/http"
)

type Deps struct {
	Users         handlers.UserService
	Identity      ports.IdentityProvider
	Sessions      *sessions.Store
	DB            handlers.Pinger
	MaxDistanceKm float64
	ReferenceName string
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
func NewRouter(deps Deps) (http.Handler, error) {
	pages, err := handlers.NewPageHandler(deps.Users, deps.Sessions, deps.ReferenceName, deps.MaxDistanceKm)
	if err != nil {
		return nil, fmt.Errorf("new router: %w", err)
	}

	health := &handlers.HealthHandler{DB: deps.DB}
	register := &handlers.RegisterHandler{Users: deps.Users, Sessions: deps.Sessions}
	users := &handlers.UserHandler{Users: deps.Users, Sessions: deps.Sessions}
	auth := &handlers.AuthHandler{Provider: deps.Identity, Users: deps.Users, Sessions: deps.Sessions}

	mux := http.NewServeMux()

	mux.HandleFunc("/health", health.Health)

	mux.HandleFunc("/api/register", register.Register)
	mux.HandleFunc("/api/users/{id}", users.User)

	mux.HandleFunc("/auth/login", auth.Login)
	mux.HandleFunc("/auth/callback", auth.Callback)
	mux.HandleFunc("/auth/logout", auth.Logout)

	mux.HandleFunc("/{$}", pages.Index)
	mux.HandleFunc("/register", pages.Register)
	mux.HandleFunc("/profile/{id}", pages.Profile)

	return requestIDMiddleware(loggingMiddleware(recoverMiddleware(mux))), nil
}
