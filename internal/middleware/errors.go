package middleware

import (
	"encoding/json"
	"net/http"

	"newsapp-summarizer/internal/models"
)

func writeError(w http.ResponseWriter, status int, code, message string, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(models.ErrorResponse{
		Error:     message,
		Code:      code,
		RequestID: r.Header.Get(RequestIDHeader),
	})
}
