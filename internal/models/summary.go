package models

import (
	"time"

	"github.com/google/uuid"

	"newsapp-summarizer/internal/summarizer"
)

// UserSummary records the news category a user last summarized.
type UserSummary struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Category  string    `json:"category"`
	Timestamp time.Time `json:"timestamp"`
}

type SummarizeRequest struct {
	Text  string `json:"text"`
	Model string `json:"model"`
}

type SummarizeResponse struct {
	Summary   string  `json:"summary"`
	TimeTaken float64 `json:"time_taken"`
	Model     string  `json:"model"` // "BART" | "T5"
	Cached    bool    `json:"cached,omitempty"`
}

type CompareRequest struct {
	Text string `json:"text"`
}

type StoreSummaryRequest struct {
	Email    string `json:"email"`
	Category string `json:"category"`
}

type ModelInfo struct {
	Key        string             `json:"key"`
	Label      string             `json:"label"`
	ModelSize  string             `json:"model_size"`
	Strengths  []string           `json:"strengths"`
	Parameters summarizer.Profile `json:"parameters"`
}
