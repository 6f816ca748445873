package auth

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/tauhid97k/voters-info-api/internal/apierror"
	"github.com/tauhid97k/voters-info-api/internal/middleware"
	"github.com/tauhid97k/voters-info-api/internal/telemetry/tracing"
	"github.com/tauhid97k/voters-info-api/internal/validation"
	"github.com/tauhid97k/voters-info-api/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=auth_test

type authService interface {
	Register(ctx context.Context, name, email, password, device string) (*TokenPair, error)
	Login(ctx context.Context, email, password, device string) (*TokenPair, error)
	Refresh(ctx context.Context, presented string) (*TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	RequestPasswordReset(ctx context.Context, email string) (string, error)
	VerifyResetCode(ctx context.Context, code, token string) (string, error)
	UpdatePassword(ctx context.Context, resetToken, password string) error
	Authenticate(ctx context.Context, accessToken string) (*Admin, error)
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required" feedback:"required=Name is required"`
	Email    string `json:"email" validate:"required,email" feedback:"required=Email is required;email=Email is invalid"`
	Password string `json:"password" validate:"required,min=8" feedback:"required=Password is required;min=Password must be at least 8 characters"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email" feedback:"required=Email is required;email=Email is invalid"`
	Password string `json:"password" validate:"required" feedback:"required=Password is required"`
}

type ResetPasswordRequest struct {
	Email string `json:"email" validate:"required,email" feedback:"required=Email is required;email=Email is invalid"`
}

type VerifyResetCodeRequest struct {
	Code  string `json:"code" validate:"required,numeric" feedback:"required=Code is required;numeric=Code is invalid"`
	Token string `json:"token" validate:"required,uuid" feedback:"required=Token is required;uuid=Token is invalid"`
}

type UpdatePasswordRequest struct {
	Password string `json:"password" validate:"required,min=8" feedback:"required=Password is required;min=Password must be at least 8 characters"`
}

type AccessTokenResponse struct {
	Message     string `json:"message,omitempty"`
	AccessToken string `json:"accessToken"`
}

type TokenResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

type Handler struct {
	service   authService
	session   *Session
	validator *validation.Validator
	responder *apierror.Responder
	cookies   cookieJar
}

func NewHandler(
	service authService,
	responder *apierror.Responder,
	secureCookies bool,
) *Handler {
	return &Handler{
		service:   service,
		session:   NewSession(service, responder),
		validator: validation.New(),
		responder: responder,
		cookies:   cookieJar{secure: secureCookies},
	}
}

// Session exposes the middleware guarding admin-only routes of other packages.
func (handler *Handler) Session() *Session {
	return handler.session
}

func (handler *Handler) SetupRoutes(r *mux.Router) {
	r.HandleFunc("/register", handler.HandleRegister).Methods("POST").Name("auth-register")
	r.HandleFunc("/login", handler.HandleLogin).Methods("POST").Name("auth-login")
	r.HandleFunc("/refresh-token", handler.HandleRefresh).Methods("GET").Name("auth-refresh")
	r.Handle("/admin", handler.session.RequireAdmin(http.HandlerFunc(handler.HandleAdmin))).Methods("GET").Name("auth-admin")
	r.Handle("/logout", handler.session.RequireAdmin(http.HandlerFunc(handler.HandleLogout))).Methods("POST").Name("auth-logout")
	r.HandleFunc("/reset-password", handler.HandleResetPassword).Methods("POST").Name("auth-reset-password")
	r.HandleFunc("/verify-reset-code", handler.HandleVerifyResetCode).Methods("POST").Name("auth-verify-reset-code")
	r.HandleFunc("/update-password", handler.HandleUpdatePassword).Methods("POST").Name("auth-update-password")
}

func (handler *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if fields := handler.validator.DecodeJSON(r.Body, dst); fields != nil {
		handler.responder.Respond(w, r, apierror.Validation(fields...))
		return false
	}
	return true
}

func (handler *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.auth.register")
	defer span.End()

	var req RegisterRequest
	if !handler.decode(w, r, &req) {
		return
	}

	pair, err := handler.service.Register(ctx, req.Name, req.Email, req.Password, middleware.DeviceFromContext(ctx))
	if err != nil {
		handler.responder.Respond(w, r, err)
		return
	}

	handler.cookies.set(w, pair.RefreshToken)
	pkg.WriteJSON(w, http.StatusCreated, AccessTokenResponse{
		Message:     "Account created",
		AccessToken: pair.AccessToken,
	})
}

func (handler *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.auth.login")
	defer span.End()

	var req LoginRequest
	if !handler.decode(w, r, &req) {
		return
	}

	pair, err := handler.service.Login(ctx, req.Email, req.Password, middleware.DeviceFromContext(ctx))
	if err != nil {
		handler.responder.Respond(w, r, err)
		return
	}

	handler.cookies.set(w, pair.RefreshToken)
	pkg.WriteJSON(w, http.StatusOK, AccessTokenResponse{AccessToken: pair.AccessToken})
}

func (handler *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.auth.refresh")
	defer span.End()

	presented, ok := refreshTokenFromCookie(r)
	if !ok {
		handler.responder.Respond(w, r, apierror.Unauthorized("Unauthorized"))
		return
	}

	// a refresh cookie is single use, whatever happens next
	handler.cookies.clear(w)

	pair, err := handler.service.Refresh(ctx, presented)
	if err != nil {
		handler.responder.Respond(w, r, err)
		return
	}

	handler.cookies.set(w, pair.RefreshToken)
	pkg.WriteJSON(w, http.StatusOK, AccessTokenResponse{AccessToken: pair.AccessToken})
}

func (handler *Handler) HandleAdmin(w http.ResponseWriter, r *http.Request) {
	admin, ok := AdminFromContext(r.Context())
	if !ok {
		handler.responder.Respond(w, r, apierror.Unauthorized("Unauthorized"))
		return
	}
	pkg.WriteJSON(w, http.StatusOK, admin)
}

func (handler *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.auth.logout")
	defer span.End()

	refreshToken, ok := refreshTokenFromCookie(r)
	if !ok {
		handler.responder.Respond(w, r, apierror.Unauthorized("Unauthorized"))
		return
	}

	if err := handler.service.Logout(ctx, refreshToken); err != nil {
		handler.responder.Respond(w, r, err)
		return
	}

	handler.cookies.clear(w)
	pkg.WriteMessage(w, http.StatusOK, "You are now logged out")
}

func (handler *Handler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.auth.reset-password")
	defer span.End()

	var req ResetPasswordRequest
	if !handler.decode(w, r, &req) {
		return
	}

	token, err := handler.service.RequestPasswordReset(ctx, req.Email)
	if err != nil {
		handler.responder.Respond(w, r, err)
		return
	}

	pkg.WriteJSON(w, http.StatusOK, TokenResponse{
		Message: "A verification code has been sent to your email",
		Token:   token,
	})
}

func (handler *Handler) HandleVerifyResetCode(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.auth.verify-reset-code")
	defer span.End()

	var req VerifyResetCodeRequest
	if !handler.decode(w, r, &req) {
		return
	}

	resetToken, err := handler.service.VerifyResetCode(ctx, req.Code, req.Token)
	if err != nil {
		handler.responder.Respond(w, r, err)
		return
	}

	pkg.WriteJSON(w, http.StatusOK, TokenResponse{
		Message: "Verification successful",
		Token:   resetToken,
	})
}

func (handler *Handler) HandleUpdatePassword(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.auth.update-password")
	defer span.End()

	resetToken, ok := BearerToken(r)
	if !ok {
		handler.responder.Respond(w, r, apierror.Unauthorized("Unauthorized"))
		return
	}

	var req UpdatePasswordRequest
	if !handler.decode(w, r, &req) {
		return
	}

	if err := handler.service.UpdatePassword(ctx, resetToken, req.Password); err != nil {
		handler.responder.Respond(w, r, err)
		return
	}

	pkg.WriteMessage(w, http.StatusOK, "Password has been updated")
}
