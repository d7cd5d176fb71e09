package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"newsapp-summarizer/internal/cache"
	"newsapp-summarizer/internal/logging"
	"newsapp-summarizer/internal/models"
	"newsapp-summarizer/internal/summarizer"
)

type modelRegistry interface {
	Resolve(name string) *summarizer.Model
	List() []*summarizer.Model
}

type summaryCache interface {
	Get(ctx context.Context, model, text string) (*cache.Entry, bool, error)
	Set(ctx context.Context, model, text string, e cache.Entry) error
}

type SummarizeHandler struct {
	models modelRegistry
	cache  summaryCache
}

// NewSummarizeHandler wires the models and an optional cache; a nil
// *cache.SummaryCache disables caching.
func NewSummarizeHandler(models modelRegistry, summaryCache *cache.SummaryCache) *SummarizeHandler {
	h := &SummarizeHandler{models: models}
	if summaryCache != nil {
		h.cache = summaryCache
	}
	return h
}

func (h *SummarizeHandler) Summarize(w http.ResponseWriter, r *http.Request) {
	var req models.SummarizeRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "No text provided", r))
		return
	}
	if strings.TrimSpace(req.Model) == "" {
		req.Model = summarizer.KeyBART
	}

	model := h.models.Resolve(req.Model)
	log := logging.GetLogger().WithFields(logrus.Fields{
		"text_length":     len(text),
		"requested_model": strings.ToUpper(req.Model),
		"model":           model.Label,
	})
	log.Info("Starting news summarization")

	if h.cache != nil {
		entry, ok, err := h.cache.Get(r.Context(), model.Key, text)
		if err != nil {
			log.WithError(err).Warn("Summary cache lookup failed")
		} else if ok {
			writeJSON(w, http.StatusOK, models.SummarizeResponse{
				Summary:   entry.Summary,
				TimeTaken: entry.TimeTaken,
				Model:     entry.Model,
				Cached:    true,
			})
			return
		}
	}

	result, err := model.Summarize(r.Context(), text)
	if err != nil {
		log.WithError(err).Error("Error during summarization")
		writeJSON(w, http.StatusInternalServerError, errorResp("SUMMARIZATION_FAILED", err.Error(), r))
		return
	}

	if h.cache != nil {
		entry := cache.Entry{Summary: result.Summary, TimeTaken: result.TimeTaken, Model: model.Label}
		if err := h.cache.Set(r.Context(), model.Key, text, entry); err != nil {
			log.WithError(err).Warn("Failed to cache summary")
		}
	}

	writeJSON(w, http.StatusOK, models.SummarizeResponse{
		Summary:   result.Summary,
		TimeTaken: result.TimeTaken,
		Model:     model.Label,
	})
}
