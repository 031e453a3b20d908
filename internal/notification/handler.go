package notification

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/example/ec-storefront/internal/domain/ui"
	"github.com/example/ec-storefront/internal/infrastructure/store"
	"github.com/example/ec-storefront/internal/projection"
)

// Sink shows a toast to the user
type Sink interface {
	Show(toast ui.Toast)
}

// SinkFunc adapts a function to Sink
type SinkFunc func(toast ui.Toast)

func (f SinkFunc) Show(toast ui.Toast) { f(toast) }

// LogSink writes toasts to a logger
type LogSink struct {
	log logrus.FieldLogger
}

func NewLogSink(log logrus.FieldLogger) *LogSink {
	return &LogSink{log: log.WithField("component", "toast")}
}

func (s *LogSink) Show(toast ui.Toast) {
	entry := s.log.WithField("status", toast.Status)
	if toast.Status == ui.StatusError {
		entry.Warn(toast.Message)
		return
	}
	entry.Info(toast.Message)
}

// Handler forwards every newly shown toast to a sink exactly once
type Handler struct {
	sink Sink

	mu      sync.Mutex
	lastSeq int
}

func NewHandler(sink Sink) *Handler {
	return &Handler{sink: sink}
}

// HandleAction is a store subscriber
func (h *Handler) HandleAction(action store.Action, state projection.RootState) {
	if state.UI.Toast == nil {
		return
	}

	h.mu.Lock()
	if state.UI.Seq <= h.lastSeq {
		h.mu.Unlock()
		return
	}
	h.lastSeq = state.UI.Seq
	h.mu.Unlock()

	h.sink.Show(*state.UI.Toast)
}

// Reset forgets the last shown toast, as after a reset of the store
func (h *Handler) Reset() {
	h.mu.Lock()
	h.lastSeq = 0
	h.mu.Unlock()
}
