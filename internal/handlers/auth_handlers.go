package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/fitfactory/backend/internal/models"
	"github.com/fitfactory/backend/internal/service"
	"github.com/sirupsen/logrus"
)

type AuthHandlers struct {
	identity *service.IdentityService
	users    *service.UserService
	logger   *logrus.Logger
}

func NewAuthHandlers(identity *service.IdentityService, users *service.UserService, logger *logrus.Logger) *AuthHandlers {
	return &AuthHandlers{
		identity: identity,
		users:    users,
		logger:   logger,
	}
}

type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// VerifyOTPRequest repeats the signup fields for older clients. Only email
// and otp are read; the account is built from what was submitted at signup.
type VerifyOTPRequest struct {
	Name     string  `json:"name,omitempty"`
	Email    string  `json:"email"`
	Phone    string  `json:"phone,omitempty"`
	Password string  `json:"password,omitempty"`
	OTP      otpCode `json:"otp"`
}

// otpCode holds the submitted code as text. Clients send it either as a
// JSON string or as a JSON number; the service decides whether it is valid.
type otpCode string

func (c *otpCode) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*c = otpCode(text)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*c = otpCode(n.String())
	return nil
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Email       string  `json:"email"`
	OTP         otpCode `json:"otp"`
	NewPassword string  `json:"newPassword"`
}

type AuthResponse struct {
	Success   bool                 `json:"success"`
	Message   string               `json:"message"`
	Token     string               `json:"token"`
	ExpiresIn int64                `json:"expiresIn"`
	UserID    string               `json:"userId"`
	Name      string               `json:"name"`
	User      models.PublicProfile `json:"user"`
}

func newAuthResponse(message string, res *service.AuthResult) AuthResponse {
	return AuthResponse{
		Success:   true,
		Message:   message,
		Token:     res.Token.Token,
		ExpiresIn: res.Token.ExpiresIn,
		UserID:    res.User.ID,
		Name:      res.User.Name,
		User:      res.User,
	}
}

func (h *AuthHandlers) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	err := h.identity.Signup(r.Context(), service.SignupInput{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
	})
	if err != nil {
		respondWithServiceError(w, r, h.logger, err, "Error sending OTP.", nil)
		return
	}

	respondWithJSON(w, http.StatusOK, MessageResponse{Success: true, Message: "OTP sent to your email"})
}

func (h *AuthHandlers) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req VerifyOTPRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.identity.VerifyOTP(r.Context(), req.Email, string(req.OTP))
	if err != nil {
		respondWithServiceError(w, r, h.logger, err, "Signup failed.", statusOverrides{
			service.ErrConflict: http.StatusBadRequest,
			service.ErrNotFound: http.StatusBadRequest,
		})
		return
	}

	respondWithJSON(w, http.StatusOK, newAuthResponse("Signup complete!", res))
}

func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.identity.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondWithServiceError(w, r, h.logger, err, "Server error", nil)
		return
	}

	respondWithJSON(w, http.StatusOK, newAuthResponse("Login successful", res))
}

func (h *AuthHandlers) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.identity.ForgotPassword(r.Context(), req.Email); err != nil {
		respondWithServiceError(w, r, h.logger, err, "Server error", nil)
		return
	}

	respondWithJSON(w, http.StatusOK, MessageResponse{Success: true, Message: "OTP sent to your email"})
}

func (h *AuthHandlers) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.identity.ResetPassword(r.Context(), req.Email, string(req.OTP), req.NewPassword); err != nil {
		respondWithServiceError(w, r, h.logger, err, "Password reset failed.", statusOverrides{
			service.ErrNotFound: http.StatusBadRequest,
		})
		return
	}

	respondWithJSON(w, http.StatusOK, MessageResponse{Success: true, Message: "Password has been reset successfully"})
}

// UserByEmail is an admin lookup. The password hash is never serialized.
func (h *AuthHandlers) UserByEmail(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetUserByEmail(r.Context(), r.URL.Query().Get("email"))
	if err != nil {
		respondWithServiceError(w, r, h.logger, err, "Server error", nil)
		return
	}

	respondWithJSON(w, http.StatusOK, user)
}
