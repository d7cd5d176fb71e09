package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"newsapp-summarizer/internal/benchmark"
	"newsapp-summarizer/internal/logging"
	"newsapp-summarizer/internal/models"
)

const wsRequestTimeout = 30 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type comparer interface {
	Compare(ctx context.Context, text string, progress func(benchmark.Progress)) (*benchmark.Report, error)
}

type CompareHandler struct {
	comparer comparer
}

func NewCompareHandler(c comparer) *CompareHandler {
	return &CompareHandler{comparer: c}
}

func (h *CompareHandler) Compare(w http.ResponseWriter, r *http.Request) {
	var req models.CompareRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "No text provided", r))
		return
	}

	report, err := h.comparer.Compare(r.Context(), text, nil)
	if err != nil {
		logging.GetLogger().WithError(err).Error("Error during comparison")
		writeJSON(w, http.StatusInternalServerError, errorResp("COMPARISON_FAILED", err.Error(), r))
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// Stream runs a comparison over a websocket. The client sends one
// {"text": ...} message and receives a progress message per model run,
// then a single result or error message.
func (h *CompareHandler) Stream(w http.ResponseWriter, r *http.Request) {
	log := logging.GetLogger()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Warn("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	var req models.CompareRequest
	conn.SetReadDeadline(time.Now().Add(wsRequestTimeout))
	if err := conn.ReadJSON(&req); err != nil {
		writeWSError(&wsSender{out: conn}, "Invalid request body")
		return
	}
	conn.SetReadDeadline(time.Time{})

	text := strings.TrimSpace(req.Text)
	if text == "" {
		writeWSError(&wsSender{out: conn}, "No text provided")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// A read error means the client went away; stop the comparison.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	h.stream(ctx, cancel, conn, text)

	err = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	if err != nil {
		log.WithError(err).Debug("WebSocket close frame not sent")
	}
}

type jsonWriter interface {
	WriteJSON(v interface{}) error
}

// stream runs the comparison and pushes its messages to out. The first
// failed write cancels the comparison and silences the rest of the stream.
func (h *CompareHandler) stream(ctx context.Context, cancel context.CancelFunc, out jsonWriter, text string) {
	s := &wsSender{out: out, cancel: cancel}

	report, err := h.comparer.Compare(ctx, text, func(p benchmark.Progress) {
		s.send(models.WSMessage{Type: models.WSTypeProgress, Payload: p})
	})
	if err != nil {
		if s.failed {
			return
		}
		logging.GetLogger().WithError(err).Error("Error during streamed comparison")
		writeWSError(s, err.Error())
		return
	}

	s.send(models.WSMessage{Type: models.WSTypeResult, Payload: report})
}

type wsSender struct {
	out    jsonWriter
	cancel context.CancelFunc
	failed bool
}

func (s *wsSender) send(msg models.WSMessage) {
	if s.failed {
		return
	}
	if err := s.out.WriteJSON(msg); err != nil {
		logging.GetLogger().WithError(err).WithField("type", msg.Type).Warn("WebSocket write failed, stopping comparison")
		s.failed = true
		if s.cancel != nil {
			s.cancel()
		}
	}
}

func writeWSError(s *wsSender, message string) {
	s.send(models.WSMessage{
		Type:    models.WSTypeError,
		Payload: map[string]string{"error": message},
	})
}
