package handlers

import (
	"net/http"

	"github.com/fitfactory/backend/internal/service"
	"github.com/sirupsen/logrus"
)

type ContactHandlers struct {
	contacts *service.ContactService
	logger   *logrus.Logger
}

func NewContactHandlers(contacts *service.ContactService, logger *logrus.Logger) *ContactHandlers {
	return &ContactHandlers{contacts: contacts, logger: logger}
}

type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

func (h *ContactHandlers) Submit(w http.ResponseWriter, r *http.Request) {
	var req ContactRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	err := h.contacts.Submit(r.Context(), service.ContactInput{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Message: req.Message,
	})
	if err != nil {
		respondWithServiceError(w, r, h.logger, err, "Error saving message", nil)
		return
	}

	respondWithJSON(w, http.StatusOK, MessageResponse{Success: true, Message: "Message received!"})
}
