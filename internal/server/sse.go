package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/jonathan/prompt-enhancer/internal/enhance"
	"github.com/jonathan/prompt-enhancer/internal/types"
)

var errStreamingUnsupported = errors.New("streaming not supported")

// SSEWriter writes Server-Sent Events. Events carry increasing ids so a client can tell
// where a dropped stream stopped.
type SSEWriter struct {
	mu      sync.Mutex
	w       http.ResponseWriter
	flusher http.Flusher
	nextID  int
}

// NewSSEWriter sets the event-stream headers on w
func NewSSEWriter(w http.ResponseWriter) (*SSEWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, errStreamingUnsupported
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")

	return &SSEWriter{w: w, flusher: flusher, nextID: 1}, nil
}

// WriteEvent sends one named event with a JSON payload
func (s *SSEWriter) WriteEvent(event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", event, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := fmt.Fprintf(s.w, "id: %d\nevent: %s\ndata: %s\n\n", s.nextID, event, payload); err != nil {
		return err
	}
	s.nextID++
	s.flusher.Flush()
	return nil
}

// WriteProgress sends a pipeline step without its content, which can be large.
func (s *SSEWriter) WriteProgress(e enhance.ProgressEvent) {
	e.Content = nil
	s.WriteEvent("step", e) //nolint:errcheck
}

func (s *SSEWriter) WriteResult(result *types.EnhanceResult) {
	s.WriteEvent("result", result) //nolint:errcheck
}

func (s *SSEWriter) WriteError(message string) {
	s.WriteEvent("error", map[string]string{"error": message}) //nolint:errcheck
}
