package router

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/streamview/auth-service/internal/metrics"
	appmw "github.com/streamview/auth-service/internal/transport/http/middleware"
)

type HealthHandler interface {
	Healthz(w http.ResponseWriter, r *http.Request)
	Readyz(w http.ResponseWriter, r *http.Request)
}

type AuthHandler interface {
	Signup(w http.ResponseWriter, r *http.Request)
	Login(w http.ResponseWriter, r *http.Request)
	Logout(w http.ResponseWriter, r *http.Request)
	Refresh(w http.ResponseWriter, r *http.Request)
	Check(w http.ResponseWriter, r *http.Request)
	Admin(w http.ResponseWriter, r *http.Request)
}

type Deps struct {
	Health HealthHandler
	Auth   AuthHandler

	AuthMW  func(http.Handler) http.Handler
	AdminMW func(http.Handler) http.Handler

	// Per-route rate limits; nil entries mean unlimited.
	SignupLimitMW  func(http.Handler) http.Handler
	LoginLimitMW   func(http.Handler) http.Handler
	RefreshLimitMW func(http.Handler) http.Handler
}

func New(deps Deps) (http.Handler, error) {
	if deps.Health == nil {
		return nil, fmt.Errorf("nil Health handler")
	}
	if deps.Auth == nil {
		return nil, fmt.Errorf("nil Auth handler")
	}
	if deps.AuthMW == nil {
		return nil, fmt.Errorf("nil Auth middleware")
	}
	if deps.AdminMW == nil {
		return nil, fmt.Errorf("nil Admin middleware")
	}

	passthrough := func(next http.Handler) http.Handler { return next }
	if deps.SignupLimitMW == nil {
		deps.SignupLimitMW = passthrough
	}
	if deps.LoginLimitMW == nil {
		deps.LoginLimitMW = passthrough
	}
	if deps.RefreshLimitMW == nil {
		deps.RefreshLimitMW = passthrough
	}

	r := chi.NewRouter()
	r.Use(appmw.RequestID)
	r.Use(appmw.Metrics)

	r.Get("/healthz", deps.Health.Healthz)
	r.Get("/readyz", deps.Health.Readyz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/auth", func(r chi.Router) {
		r.With(deps.SignupLimitMW).Post("/signup", deps.Auth.Signup)
		r.With(deps.LoginLimitMW).Post("/login", deps.Auth.Login)
		r.Post("/logout", deps.Auth.Logout)
		r.With(deps.RefreshLimitMW).Post("/refresh", deps.Auth.Refresh)
		r.Get("/check", deps.Auth.Check)
		r.With(deps.AuthMW, deps.AdminMW).Get("/admin", deps.Auth.Admin)
	})

	return r, nil
}
