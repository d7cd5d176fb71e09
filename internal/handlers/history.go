package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"newsapp-summarizer/internal/logging"
	"newsapp-summarizer/internal/models"
)

const defaultCategory = "general"

type userSummaryRepository interface {
	Create(ctx context.Context, s *models.UserSummary) error
	LastByEmail(ctx context.Context, email string) (*models.UserSummary, error)
}

type HistoryHandler struct {
	repo userSummaryRepository
}

func NewHistoryHandler(repo userSummaryRepository) *HistoryHandler {
	return &HistoryHandler{repo: repo}
}

func (h *HistoryHandler) StoreSummary(w http.ResponseWriter, r *http.Request) {
	var req models.StoreSummaryRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	email := strings.TrimSpace(req.Email)
	category := strings.TrimSpace(req.Category)
	if email == "" || category == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "email and category are required", r))
		return
	}

	if err := h.repo.Create(r.Context(), &models.UserSummary{Email: email, Category: category}); err != nil {
		logging.GetLogger().WithError(err).WithField("email", email).Error("Error storing category")
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Error storing category", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Category stored successfully",
	})
}

func (h *HistoryHandler) LastCategory(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(chi.URLParam(r, "email"))
	if email == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "email is required", r))
		return
	}

	last, err := h.repo.LastByEmail(r.Context(), email)
	if err != nil {
		logging.GetLogger().WithError(err).WithField("email", email).Error("Error fetching category")
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Error fetching category", r))
		return
	}

	category := defaultCategory
	if last != nil {
		category = last.Category
	}
	writeJSON(w, http.StatusOK, map[string]string{"category": category})
}
