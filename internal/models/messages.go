package models

// WebSocket message types
const (
	WSTypeProgress = "progress"
	WSTypeResult   = "result"
	WSTypeError    = "error"
)

type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// ErrorResponse is the body of every non-2xx JSON response. Error always
// carries the plain message.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}
