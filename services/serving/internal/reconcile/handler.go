package reconcile

import (
	"net/http"
	"time"

	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/telemetry"
	"github.com/go-chi/chi/v5"
)

// SyncStatus is what the UI shows about the change feed.
type SyncStatus struct {
	Status        Status     `json:"status"`
	Since         time.Time  `json:"since"`
	LastReload    *time.Time `json:"last_reload,omitempty"`
	ReloadError   string     `json:"reload_error,omitempty"`
	PendingWrites int64      `json:"pending_writes"`
}

type Handler struct {
	state      *ConnState
	reconciler *Reconciler
	writer     *Writer
	logger     aqm.Logger
	tlm        *telemetry.HTTP
}

func NewHandler(state *ConnState, reconciler *Reconciler, writer *Writer, logger aqm.Logger) *Handler {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &Handler{
		state:      state,
		reconciler: reconciler,
		writer:     writer,
		logger:     logger,
		tlm:        telemetry.NewHTTP(),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/sync/status", h.GetStatus)
	r.Post("/sync/reload", h.Reload)
}

func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetStatus")
	defer finish()

	aqm.RespondSuccess(w, h.snapshot())
}

// Reload asks for a full reload without waiting for a change event.
func (h *Handler) Reload(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.Reload")
	defer finish()

	if h.reconciler == nil {
		aqm.RespondError(w, http.StatusServiceUnavailable, "Reconciler not configured")
		return
	}
	h.reconciler.RequestReload()
	aqm.Respond(w, http.StatusAccepted, h.snapshot(), nil)
}

func (h *Handler) snapshot() SyncStatus {
	s := SyncStatus{Status: StatusDisconnected}
	if h.state != nil {
		s.Status = h.state.Status()
		s.Since = h.state.ChangedAt()
	}
	if h.reconciler != nil {
		last, err := h.reconciler.LastReload()
		if !last.IsZero() {
			s.LastReload = &last
		}
		if err != nil {
			s.ReloadError = err.Error()
		}
	}
	if h.writer != nil {
		s.PendingWrites = h.writer.Pending()
	}
	return s
}
