package auth

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/credkit/pkg/logger"
)

// Handler exposes the credential lifecycle over HTTP.
type Handler struct {
	svc    *Service
	logger *slog.Logger
}

// HandlerOption configures the Handler.
type HandlerOption func(*Handler)

// WithHandlerLogger sets a custom logger for the handler.
func WithHandlerLogger(log *slog.Logger) HandlerOption {
	return func(h *Handler) { h.logger = log }
}

// NewHandler creates an HTTP handler around the service.
func NewHandler(svc *Service, opts ...HandlerOption) *Handler {
	h := &Handler{
		svc:    svc,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes returns the auth router, intended to be mounted at the API root.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Post("/register", h.handleRegister)
	r.Post("/login", h.handleLogin)
	r.Get("/verify-email/{token}", h.handleVerifyEmail)
	r.Post("/forgot-password", h.handleForgotPassword)
	r.Post("/reset-password/{token}", h.handleResetPassword)
	return r
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var params RegisterParams
	if err := decodeBody(r, &params); err != nil {
		writeError(w, err)
		return
	}

	account, err := h.svc.Register(r.Context(), params)
	if err != nil {
		h.logError(r, "register failed", err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, account)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var params struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeBody(r, &params); err != nil {
		writeError(w, err)
		return
	}

	session, err := h.svc.Login(r.Context(), params.Email, params.Password)
	if err != nil {
		h.logError(r, "login failed", err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, session)
}

func (h *Handler) handleVerifyEmail(w http.ResponseWriter, r *http.Request) {
	session, err := h.svc.VerifyEmail(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		h.logError(r, "email verification failed", err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, session)
}

func (h *Handler) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var params struct {
		Email string `json:"email"`
	}
	if err := decodeBody(r, &params); err != nil {
		writeError(w, err)
		return
	}

	if err := h.svc.RequestPasswordReset(r.Context(), params.Email); err != nil {
		h.logError(r, "password reset request failed", err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "password reset email sent"})
}

func (h *Handler) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var params struct {
		Password string `json:"password"`
	}
	if err := decodeBody(r, &params); err != nil {
		writeError(w, err)
		return
	}

	if err := h.svc.ConfirmPasswordReset(r.Context(), chi.URLParam(r, "token"), params.Password); err != nil {
		h.logError(r, "password reset failed", err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "password updated"})
}

func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errors.Join(errMalformedBody, err)
	}
	return nil
}

func (h *Handler) logError(r *http.Request, msg string, err error) {
	h.logger.InfoContext(r.Context(), msg,
		logger.Error(err),
		logger.Component("auth.handler"),
		slog.String("path", r.URL.Path),
	)
}
