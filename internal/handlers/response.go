package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fitfactory/backend/internal/service"
	"github.com/sirupsen/logrus"
)

const maxBodyBytes = 1 << 20

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func respondWithJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, status int, message string) {
	respondWithJSON(w, status, MessageResponse{Success: false, Message: message})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// statusOverrides lets an endpoint report a kind with a status other than
// the default, such as a conflict at verify-otp being a 400.
type statusOverrides map[error]int

func statusFor(err error, overrides statusOverrides) int {
	for kind, status := range overrides {
		if errors.Is(err, kind) {
			return status
		}
	}

	switch {
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrExpired),
		errors.Is(err, service.ErrInvalidCode):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrAuth), errors.Is(err, service.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondWithServiceError turns a service failure into a success=false body.
// Infrastructure errors are logged and answered with fallback so no internal
// detail reaches the caller.
func respondWithServiceError(w http.ResponseWriter, r *http.Request, logger *logrus.Logger, err error, fallback string, overrides statusOverrides) {
	status := statusFor(err, overrides)
	message := service.PublicMessage(err, fallback)

	if status >= http.StatusInternalServerError {
		logger.WithError(err).WithFields(logrus.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		}).Error(fallback)
	}

	respondWithError(w, status, message)
}
