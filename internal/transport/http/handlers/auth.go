package http_handlers

import (
	"net/http"

	"github.com/streamview/auth-service/internal/application/session"
	"github.com/streamview/auth-service/internal/domain"
	"github.com/streamview/auth-service/internal/infrastructure/security"
	"github.com/streamview/auth-service/internal/logger"
	"github.com/streamview/auth-service/internal/metrics"
	"github.com/streamview/auth-service/internal/transport/http/dto"
	"github.com/streamview/auth-service/internal/transport/http/middleware"
	"github.com/streamview/auth-service/internal/transport/http/response"
)

type AuthHandler struct {
	svc           *session.Service
	secureCookies bool
}

func NewAuthHandler(svc *session.Service, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		svc:           svc,
		secureCookies: secureCookies,
	}
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req dto.SignupRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	res, err := h.svc.Signup(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	logger.WithCtx(r.Context()).Info().
		Str("user_id", res.UserID).
		Str("email", res.Email).
		Msg("user_registered")
	metrics.RecordSignup()

	security.SetSessionCookies(w, res.Tokens.AccessToken, res.Tokens.RefreshToken, h.secureCookies)

	response.Created(w, dto.SignupResponse{
		Message: "User created",
		UserID:  res.UserID,
		Email:   res.Email,
		Role:    res.Role,
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	res, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if domain.Is(err, "invalid_credentials") {
			metrics.RecordLoginFailed()
		}
		response.WriteError(w, r, err)
		return
	}

	logger.WithCtx(r.Context()).Info().
		Str("user_id", res.UserID).
		Msg("user_logged_in")
	metrics.RecordLogin()

	security.SetSessionCookies(w, res.Tokens.AccessToken, res.Tokens.RefreshToken, h.secureCookies)

	response.OK(w, dto.LoginResponse{
		Message: "Login successful",
		UserID:  res.UserID,
		Email:   res.Email,
		Role:    res.Role,
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	refreshTok, err := security.ReadRefreshToken(r)
	if err == nil && refreshTok != "" {
		_ = h.svc.Logout(r.Context(), refreshTok) // keep idempotent
	}

	security.ClearSessionCookies(w, h.secureCookies)
	response.OK(w, dto.MessageResponse{Message: "Logged out"})
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	refreshTok, err := security.ReadRefreshToken(r)
	if err != nil || refreshTok == "" {
		metrics.RecordTokenRefreshFailed()
		response.WriteError(w, r, domain.ErrRefreshTokenMissing())
		return
	}

	res, err := h.svc.Refresh(r.Context(), refreshTok)
	if err != nil {
		metrics.RecordTokenRefreshFailed()
		response.WriteError(w, r, err)
		return
	}

	metrics.RecordTokenRefresh()

	security.SetSessionCookies(w, res.Tokens.AccessToken, res.Tokens.RefreshToken, h.secureCookies)

	response.OK(w, dto.MessageResponse{Message: "Token refreshed"})
}

// Check is the status probe behind the frontend's "am I logged in"
// call. Failures still answer with an authenticated flag so the client
// can branch on the body alone.
func (h *AuthHandler) Check(w http.ResponseWriter, r *http.Request) {
	accessTok, _ := security.ReadAccessToken(r)
	refreshTok, _ := security.ReadRefreshToken(r)

	st, err := h.svc.CheckStatus(r.Context(), accessTok, refreshTok)
	if err != nil {
		response.WriteJSON(w, response.StatusFromError(err), dto.CheckResponse{
			Authenticated: false,
		})
		return
	}

	if st.Tokens != nil {
		// The probe fell back to the refresh token; rotate the cookies.
		metrics.RecordTokenRefresh()
		security.SetSessionCookies(w, st.Tokens.AccessToken, st.Tokens.RefreshToken, h.secureCookies)
	}

	response.OK(w, dto.CheckResponse{
		Authenticated: true,
		UserID:        st.UserID,
		Email:         st.Email,
		Role:          st.Role,
	})
}

func (h *AuthHandler) Admin(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())
	role, _ := middleware.RoleFromContext(r.Context())

	response.OK(w, dto.AdminResponse{
		Message: "admin ok",
		UserID:  userID,
		Role:    role,
	})
}
