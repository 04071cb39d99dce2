package handlers

import (
	"net/http"

	"service-planner/internal/service"
)

type AuthHandler struct {
	auth *service.AuthService
}

func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

func (h *AuthHandler) Register(mux *http.ServeMux, middleware *AuthMiddleware) {
	mux.HandleFunc("POST /api/auth/signup", h.handleSignup)
	mux.HandleFunc("POST /api/auth/login", h.handleLogin)
	mux.HandleFunc("POST /api/auth/send-otp", h.handleSendOTP)
	mux.HandleFunc("POST /api/auth/verify-otp", h.handleVerifyOTP)
	mux.HandleFunc("POST /api/auth/request-password-reset", h.handleRequestPasswordReset)
	mux.HandleFunc("POST /api/auth/verify-reset-otp", h.handleVerifyResetOTP)
	mux.HandleFunc("POST /api/auth/reset-password", h.handleResetPassword)

	mux.HandleFunc("GET /api/auth/me", middleware.Require(h.handleMe))
	mux.HandleFunc("PUT /api/auth/profile", middleware.Require(h.handleUpdateProfile))
	mux.HandleFunc("PUT /api/auth/password", middleware.Require(h.handleUpdatePassword))
}

type signupRequest struct {
	Mobile   string `json:"mobile"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type loginRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

type otpRequest struct {
	Mobile string `json:"mobile"`
	OTP    string `json:"otp"`
}

type resetPasswordRequest struct {
	Mobile      string `json:"mobile"`
	OTP         string `json:"otp"`
	NewPassword string `json:"newPassword"`
}

type profileRequest struct {
	Name   string `json:"name"`
	Mobile string `json:"mobile"`
}

type passwordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (h *AuthHandler) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := h.auth.Signup(r.Context(), req.Mobile, req.Name, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "user created",
		"userId":  user.ID,
	})
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	token, user, err := h.auth.Login(r.Context(), req.Name, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"token":   token,
		"user": map[string]any{
			"id":     user.ID,
			"name":   user.Name,
			"mobile": user.Mobile,
		},
	})
}

func (h *AuthHandler) handleSendOTP(w http.ResponseWriter, r *http.Request) {
	var req otpRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.auth.SendOTP(r.Context(), req.Mobile); err != nil {
		writeServiceError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "otp sent")
}

func (h *AuthHandler) handleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req otpRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.auth.VerifyOTP(r.Context(), req.Mobile, req.OTP); err != nil {
		writeServiceError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "otp verified")
}

func (h *AuthHandler) handleRequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req otpRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.auth.RequestPasswordReset(r.Context(), req.Mobile); err != nil {
		writeServiceError(w, err)
		return
	}
	// Deliberately identical for known and unknown numbers.
	writeMessage(w, http.StatusOK, "if this mobile exists, an otp was sent")
}

func (h *AuthHandler) handleVerifyResetOTP(w http.ResponseWriter, r *http.Request) {
	var req otpRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.auth.VerifyResetOTP(r.Context(), req.Mobile, req.OTP); err != nil {
		writeServiceError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "otp verified")
}

func (h *AuthHandler) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.auth.ResetPassword(r.Context(), req.Mobile, req.OTP, req.NewPassword); err != nil {
		writeServiceError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "password reset")
}

func (h *AuthHandler) handleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := h.auth.Me(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "user": user})
}

func (h *AuthHandler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req profileRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := h.auth.UpdateProfile(r.Context(), userID, req.Name, req.Mobile)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "user": user})
}

func (h *AuthHandler) handleUpdatePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req passwordRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.auth.UpdatePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		writeServiceError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "password updated")
}
