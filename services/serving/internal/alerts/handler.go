package alerts

import (
	"errors"
	"net/http"

	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/telemetry"
	"github.com/go-chi/chi/v5"
)

type Handler struct {
	engine *Engine
	logger aqm.Logger
	tlm    *telemetry.HTTP
}

func NewHandler(engine *Engine, logger aqm.Logger) *Handler {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &Handler{
		engine: engine,
		logger: logger,
		tlm:    telemetry.NewHTTP(),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/alerts", func(r chi.Router) {
		r.Get("/", h.ListActive)
		r.Get("/history", h.GetHistory)
		r.Post("/{id}/dismiss", h.Dismiss)
	})
}

func (h *Handler) ListActive(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListActive")
	defer finish()

	aqm.RespondCollection(w, h.engine.Active(), "alert")
}

func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetHistory")
	defer finish()

	aqm.RespondSuccess(w, h.engine.History())
}

func (h *Handler) Dismiss(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.Dismiss")
	defer finish()

	log := h.logger.With("request_id", aqm.RequestIDFrom(r.Context()))
	id := chi.URLParam(r, "id")

	if err := h.engine.Dismiss(r.Context(), id); err != nil {
		if errors.Is(err, ErrInvalidAlertID) {
			aqm.RespondError(w, http.StatusBadRequest, "Invalid alert id")
			return
		}
		log.Error("cannot dismiss alert", "alert_id", id, "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not dismiss alert")
		return
	}

	aqm.RespondSuccess(w, map[string]interface{}{
		"id":        id,
		"dismissed": true,
	})
}
