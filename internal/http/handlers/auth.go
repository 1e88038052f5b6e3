package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/alvinobieroh/devlinks-api/internal/http/respond"
	"github.com/alvinobieroh/devlinks-api/internal/models/dto"
	"github.com/alvinobieroh/devlinks-api/internal/service"
)

const sessionCookie = "jwt"

// AuthHandler owns the credential-lifecycle endpoints.
type AuthHandler struct {
	svc          *service.AuthService
	resp         *respond.Responder
	validate     *validator.Validate
	cookieTTL    time.Duration
	secureCookie bool
}

// NewAuthHandler constructs the handler. secureCookie should be true in
// production so the session cookie is HTTPS-only.
func NewAuthHandler(svc *service.AuthService, resp *respond.Responder, validate *validator.Validate,
	cookieTTL time.Duration, secureCookie bool) *AuthHandler {
	return &AuthHandler{
		svc:          svc,
		resp:         resp,
		validate:     validate,
		cookieTTL:    cookieTTL,
		secureCookie: secureCookie,
	}
}

// Register attaches the public auth routes.
func (h *AuthHandler) Register(r chi.Router) {
	r.Post("/signup", h.handleSignup)
	r.Get("/verify-email", h.handleVerifyEmail)
	r.Post("/login", h.handleLogin)
	r.Post("/forgotPassword", h.handleForgotPassword)
	r.Patch("/resetPassword", h.handleResetPassword)
	r.Post("/logout", h.handleLogout)
}

func (h *AuthHandler) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req dto.SignupRequest
	if err := decodeAndValidate(r, h.validate, &req); err != nil {
		h.resp.Error(w, err)
		return
	}
	if err := h.svc.Signup(r.Context(), req.Email, req.Password, req.ConfirmPassword); err != nil {
		h.resp.Error(w, err)
		return
	}
	h.resp.Success(w, http.StatusCreated,
		"Verification email sent. Please verify your email address.", nil)
}

func (h *AuthHandler) handleVerifyEmail(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if err := h.svc.VerifyEmail(r.Context(), token); err != nil {
		h.resp.Error(w, err)
		return
	}
	h.resp.Success(w, http.StatusOK, "Email verified successfully.", nil)
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := decodeAndValidate(r, h.validate, &req); err != nil {
		h.resp.Error(w, err)
		return
	}
	user, token, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.resp.Error(w, err)
		return
	}
	h.setSessionCookie(w, token)
	h.resp.Session(w, http.StatusOK, token, dto.SessionResponse{User: user})
}

func (h *AuthHandler) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ForgotPasswordRequest
	if err := decodeAndValidate(r, h.validate, &req); err != nil {
		h.resp.Error(w, err)
		return
	}
	if err := h.svc.ForgotPassword(r.Context(), req.Email); err != nil {
		h.resp.Error(w, err)
		return
	}
	h.resp.Success(w, http.StatusOK, "Password reset email sent. Please check your email.", nil)
}

func (h *AuthHandler) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ResetPasswordRequest
	if err := decodeAndValidate(r, h.validate, &req); err != nil {
		h.resp.Error(w, err)
		return
	}
	token := r.URL.Query().Get("token")
	user, sessionToken, err := h.svc.ResetPassword(r.Context(), token, req.Password, req.ConfirmPassword)
	if err != nil {
		h.resp.Error(w, err)
		return
	}
	h.setSessionCookie(w, sessionToken)
	h.resp.Session(w, http.StatusOK, sessionToken, dto.SessionResponse{User: user})
}

// handleLogout clears the client-held cookie. The signed token itself stays
// valid until its natural expiry.
func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
	})
	h.resp.Success(w, http.StatusOK, "Successfully logged out.", nil)
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(h.cookieTTL),
		HttpOnly: true,
		Secure:   h.secureCookie,
	})
}
