package handlers

import (
	"net/http"

	"newsapp-summarizer/internal/models"
	"newsapp-summarizer/internal/summarizer"
)

func Home(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("Backend is running!"))
}

func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type ModelsHandler struct {
	models modelRegistry
}

func NewModelsHandler(models modelRegistry) *ModelsHandler {
	return &ModelsHandler{models: models}
}

func (h *ModelsHandler) List(w http.ResponseWriter, r *http.Request) {
	list := h.models.List()
	infos := make([]models.ModelInfo, 0, len(list))
	for _, m := range list {
		infos = append(infos, modelInfo(m))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"models": infos})
}

func modelInfo(m *summarizer.Model) models.ModelInfo {
	return models.ModelInfo{
		Key:        m.Key,
		Label:      m.Label,
		ModelSize:  m.ModelSize,
		Strengths:  m.Strengths,
		Parameters: m.Profile,
	}
}
