package handlers

import (
	"encoding/json"
	"net/http"

	"newsapp-summarizer/internal/middleware"
	"newsapp-summarizer/internal/models"
)

const maxBodyBytes = 1 << 20

// Shared helpers

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResp(code, message string, r *http.Request) models.ErrorResponse {
	return models.ErrorResponse{
		Error:     message,
		Code:      code,
		RequestID: r.Header.Get(middleware.RequestIDHeader),
	}
}

// decodeBody reads a size-capped JSON body into dst.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(dst)
}
