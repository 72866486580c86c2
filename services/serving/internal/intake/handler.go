package intake

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/telemetry"
	"github.com/go-chi/chi/v5"
)

const (
	MaxBodyBytes  = 1 << 20
	MaxImageBytes = 10 << 20
)

type Handler struct {
	extractor Extractor
	logger    aqm.Logger
	tlm       *telemetry.HTTP
}

func NewHandler(extractor Extractor, logger aqm.Logger) *Handler {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &Handler{
		extractor: extractor,
		logger:    logger,
		tlm:       telemetry.NewHTTP(),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/drafts", func(r chi.Router) {
		r.Post("/", h.CreateDrafts)
		r.Post("/extract", h.ExtractDrafts)
	})
}

// CreateDrafts cleans candidate groups posted by a client.
func (h *Handler) CreateDrafts(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.CreateDrafts")
	defer finish()

	log := h.logger.With("request_id", aqm.RequestIDFrom(r.Context()))

	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Debug("error reading request body", "error", err)
		aqm.RespondError(w, http.StatusBadRequest, "Could not read request body")
		return
	}

	candidates, err := decodeCandidateBody(body)
	if err != nil {
		log.Debug("error decoding candidates", "error", err)
		aqm.RespondError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	aqm.RespondCollection(w, NormalizeAll(candidates), "draft")
}

// ExtractDrafts forwards an uploaded slip to the extractor and cleans what
// comes back.
func (h *Handler) ExtractDrafts(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ExtractDrafts")
	defer finish()

	log := h.logger.With("request_id", aqm.RequestIDFrom(r.Context()))

	if h.extractor == nil {
		aqm.RespondError(w, http.StatusServiceUnavailable, "Extractor not available")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxImageBytes)
	if err := r.ParseMultipartForm(MaxImageBytes); err != nil {
		log.Debug("error parsing upload", "error", err)
		aqm.RespondError(w, http.StatusBadRequest, "Invalid upload")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		aqm.RespondError(w, http.StatusBadRequest, "Missing image")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		log.Debug("error reading image", "error", err)
		aqm.RespondError(w, http.StatusBadRequest, "Could not read image")
		return
	}

	// The declared part type is client supplied; only the bytes decide.
	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		log.Debug("upload rejected", "declared", header.Header.Get("Content-Type"), "sniffed", contentType)
		aqm.RespondError(w, http.StatusUnsupportedMediaType, "Upload must be an image")
		return
	}

	candidates, err := h.extractor.Extract(r.Context(), Image{
		Data:        data,
		ContentType: contentType,
		Filename:    header.Filename,
	})
	if err != nil {
		if errors.Is(err, ErrExtractorUnavailable) {
			aqm.RespondError(w, http.StatusServiceUnavailable, "Extractor not available")
			return
		}
		log.Error("extraction failed", "error", err)
		aqm.RespondError(w, http.StatusBadGateway, "Extraction failed")
		return
	}

	log.Info("order slip extracted", "candidates", len(candidates))
	aqm.RespondCollection(w, NormalizeAll(candidates), "draft")
}

func decodeCandidateBody(body []byte) ([]Candidate, error) {
	var list []Candidate
	if err := json.Unmarshal(body, &list); err == nil {
		return list, nil
	}

	var wrapped struct {
		Candidates []Candidate `json:"candidates"`
	}
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, err
	}
	return wrapped.Candidates, nil
}
