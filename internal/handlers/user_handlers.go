package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/fitfactory/backend/internal/middleware"
	"github.com/fitfactory/backend/internal/models"
	"github.com/fitfactory/backend/internal/service"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type UserHandlers struct {
	users  *service.UserService
	auth   *middleware.AuthMiddleware
	logger *logrus.Logger
}

func NewUserHandlers(users *service.UserService, auth *middleware.AuthMiddleware, logger *logrus.Logger) *UserHandlers {
	return &UserHandlers{
		users:  users,
		auth:   auth,
		logger: logger,
	}
}

type UpdateSubscriptionRequest struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

type UserResponse struct {
	Success bool         `json:"success"`
	User    *models.User `json:"user"`
}

type ProfileResponse struct {
	Success bool                 `json:"success"`
	User    models.PublicProfile `json:"user"`
}

func (h *UserHandlers) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsers(r.Context())
	if err != nil {
		respondWithServiceError(w, r, h.logger, err, "Failed to fetch users", nil)
		return
	}

	respondWithJSON(w, http.StatusOK, users)
}

func (h *UserHandlers) UpdateSubscription(w http.ResponseWriter, r *http.Request) {
	var req UpdateSubscriptionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	start, err := parseDate(req.StartDate)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid startDate")
		return
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid endDate")
		return
	}

	user, err := h.users.UpdateSubscription(r.Context(), mux.Vars(r)["userId"], start, end)
	if err != nil {
		respondWithServiceError(w, r, h.logger, err, "Failed to update subscription", nil)
		return
	}

	respondWithJSON(w, http.StatusOK, UserResponse{Success: true, User: user})
}

// GetUser serves the caller's own record, or any record to an admin.
func (h *UserHandlers) GetUser(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]

	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Missing authorization header")
		return
	}
	if claims.UserID != userID && !h.auth.IsAdmin(claims.Email) {
		respondWithError(w, http.StatusForbidden, "Access denied")
		return
	}

	user, err := h.users.GetUser(r.Context(), userID)
	if err != nil {
		respondWithServiceError(w, r, h.logger, err, "Server error while fetching user", nil)
		return
	}

	user.PasswordHash = ""
	respondWithJSON(w, http.StatusOK, UserResponse{Success: true, User: user})
}

func (h *UserHandlers) LoggedInUsers(w http.ResponseWriter, r *http.Request) {
	active, err := h.users.LoggedInUsers(r.Context())
	if err != nil {
		respondWithServiceError(w, r, h.logger, err, "Failed to fetch logged-in users", nil)
		return
	}

	respondWithJSON(w, http.StatusOK, active)
}

func (h *UserHandlers) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Missing authorization header")
		return
	}

	user, err := h.users.GetUser(r.Context(), claims.UserID)
	if err != nil {
		respondWithServiceError(w, r, h.logger, err, "Server error while fetching user", nil)
		return
	}

	respondWithJSON(w, http.StatusOK, ProfileResponse{Success: true, User: user.Profile()})
}

// parseDate accepts RFC 3339 timestamps and plain dates. Empty input yields
// the zero time.
func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
