package serving

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/appetiteclub/serving/pkg/enums/groupstatus"
	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/telemetry"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const MaxBodyBytes = 1 << 20

type Handler struct {
	store  *Store
	logger aqm.Logger
	config *aqm.Config
	tlm    *telemetry.HTTP
}

func NewHandler(store *Store, config *aqm.Config, logger aqm.Logger) *Handler {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &Handler{
		store:  store,
		logger: logger,
		config: config,
		tlm:    telemetry.NewHTTP(),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/serving-groups", func(r chi.Router) {
		r.Post("/", h.CreateGroup)
		r.Get("/", h.ListGroups)
		r.Get("/{id}", h.GetGroup)
		r.Patch("/{id}", h.UpdateGroup)
		r.Delete("/{id}", h.DeleteGroup)

		r.Post("/{id}/arrive", h.MarkArrived)
		r.Post("/{id}/complete", h.CompleteGroup)
		r.Post("/{id}/redistribute", h.Redistribute)
		r.Post("/{id}/prep/{index}/toggle", h.ToggleSauce)

		r.Route("/{id}/items", func(r chi.Router) {
			r.Post("/", h.AddItem)
			r.Patch("/{itemID}", h.UpdateItem)
			r.Delete("/{itemID}", h.DeleteItem)
			r.Post("/{itemID}/increment", h.IncrementServed)
			r.Post("/{itemID}/decrement", h.DecrementServed)
			r.Post("/{itemID}/serve-all", h.ServeAll)
		})
	})
}

// GroupView is a group plus its derived service progress.
type GroupView struct {
	*Group
	Served   int     `json:"served"`
	Total    int     `json:"total"`
	Progress float64 `json:"progress"`
}

func NewGroupView(g *Group) GroupView {
	served, total := g.Counts()
	return GroupView{Group: g, Served: served, Total: total, Progress: g.Progress()}
}

func (h *Handler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.CreateGroup")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	var req GroupCreateRequest
	if !h.decodePayload(w, r, log, &req) {
		return
	}

	if errs := ValidateGroupCreate(ctx, req); len(errs) > 0 {
		log.Debug("validation failed", "errors", errs)
		aqm.RespondError(w, http.StatusBadRequest, "Validation failed: "+strings.Join(errs, "; "))
		return
	}

	group, err := h.store.Create(ctx, req.toGroup())
	if err != nil {
		h.respondStoreError(w, log, err, "cannot create serving group")
		return
	}

	log.Info("serving group created", "group_id", group.ID.String(), "items", len(group.Items))

	links := aqm.RESTfulLinksFor(group)
	w.WriteHeader(http.StatusCreated)
	aqm.RespondSuccess(w, NewGroupView(group), links...)
}

func (h *Handler) ListGroups(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListGroups")
	defer finish()

	var groups []*Group
	status := r.URL.Query().Get("status")
	if status != "" {
		st := groupstatus.ByName(status)
		if st == nil {
			aqm.RespondError(w, http.StatusBadRequest, "Invalid status")
			return
		}
		groups = h.store.ListByStatus(st.Code())
	} else {
		groups = h.store.Snapshot()
	}

	views := make([]GroupView, 0, len(groups))
	for _, g := range groups {
		views = append(views, NewGroupView(g))
	}

	aqm.RespondCollection(w, views, "serving-group")
}

func (h *Handler) GetGroup(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetGroup")
	defer finish()

	log := h.log(r)

	id, ok := h.parseUUIDParam(w, r, log, "id")
	if !ok {
		return
	}

	group, found := h.store.Get(id)
	if !found {
		aqm.RespondError(w, http.StatusNotFound, "Serving group not found")
		return
	}

	links := aqm.RESTfulLinksFor(group)
	aqm.RespondSuccess(w, NewGroupView(group), links...)
}

func (h *Handler) UpdateGroup(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.UpdateGroup")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	id, ok := h.parseUUIDParam(w, r, log, "id")
	if !ok {
		return
	}

	var req GroupUpdateRequest
	if !h.decodePayload(w, r, log, &req) {
		return
	}

	if errs := ValidateGroupUpdate(ctx, req); len(errs) > 0 {
		log.Debug("validation failed", "errors", errs)
		aqm.RespondError(w, http.StatusBadRequest, "Validation failed: "+strings.Join(errs, "; "))
		return
	}

	group, err := h.store.Update(ctx, id, req.toPatch())
	if err != nil {
		h.respondStoreError(w, log, err, "cannot update serving group")
		return
	}

	aqm.RespondSuccess(w, NewGroupView(group), aqm.RESTfulLinksFor(group)...)
}

func (h *Handler) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.DeleteGroup")
	defer finish()

	log := h.log(r)

	id, ok := h.parseUUIDParam(w, r, log, "id")
	if !ok {
		return
	}

	if _, err := h.store.Delete(r.Context(), id); err != nil {
		h.respondStoreError(w, log, err, "cannot delete serving group")
		return
	}

	log.Info("serving group deleted", "group_id", id.String())
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) MarkArrived(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.MarkArrived")
	defer finish()

	h.groupAction(w, r, "cannot mark guests arrived", func(id uuid.UUID) (*Group, error) {
		return h.store.MarkArrived(r.Context(), id)
	})
}

func (h *Handler) CompleteGroup(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.CompleteGroup")
	defer finish()

	h.groupAction(w, r, "cannot complete serving group", func(id uuid.UUID) (*Group, error) {
		return h.store.Complete(r.Context(), id)
	})
}

func (h *Handler) Redistribute(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.Redistribute")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	id, ok := h.parseUUIDParam(w, r, log, "id")
	if !ok {
		return
	}

	var req RedistributeRequest
	if !h.decodePayload(w, r, log, &req) {
		return
	}

	if errs := ValidateRedistribute(ctx, req); len(errs) > 0 {
		aqm.RespondError(w, http.StatusBadRequest, "Validation failed: "+strings.Join(errs, "; "))
		return
	}

	group, err := h.store.Redistribute(ctx, id, req.TableSplit)
	if err != nil {
		h.respondStoreError(w, log, err, "cannot redistribute serving group")
		return
	}

	aqm.RespondSuccess(w, NewGroupView(group), aqm.RESTfulLinksFor(group)...)
}

func (h *Handler) ToggleSauce(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ToggleSauce")
	defer finish()

	log := h.log(r)

	id, ok := h.parseUUIDParam(w, r, log, "id")
	if !ok {
		return
	}

	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		aqm.RespondError(w, http.StatusBadRequest, "Invalid prep list index")
		return
	}

	group, err := h.store.ToggleSauce(r.Context(), id, index)
	if err != nil {
		h.respondStoreError(w, log, err, "cannot toggle prep list entry")
		return
	}

	aqm.RespondSuccess(w, NewGroupView(group), aqm.RESTfulLinksFor(group)...)
}

func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.AddItem")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	id, ok := h.parseUUIDParam(w, r, log, "id")
	if !ok {
		return
	}

	var req ItemCreateRequest
	if !h.decodePayload(w, r, log, &req) {
		return
	}

	if errs := ValidateItemCreate(ctx, req); len(errs) > 0 {
		log.Debug("validation failed", "errors", errs)
		aqm.RespondError(w, http.StatusBadRequest, "Validation failed: "+strings.Join(errs, "; "))
		return
	}

	group, err := h.store.AddItem(ctx, id, req.toItem())
	if err != nil {
		h.respondStoreError(w, log, err, "cannot add serving item")
		return
	}

	w.WriteHeader(http.StatusCreated)
	aqm.RespondSuccess(w, NewGroupView(group), aqm.RESTfulLinksFor(group)...)
}

func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.UpdateItem")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	groupID, itemID, ok := h.parseItemParams(w, r, log)
	if !ok {
		return
	}

	var req ItemUpdateRequest
	if !h.decodePayload(w, r, log, &req) {
		return
	}

	if errs := ValidateItemUpdate(ctx, req); len(errs) > 0 {
		log.Debug("validation failed", "errors", errs)
		aqm.RespondError(w, http.StatusBadRequest, "Validation failed: "+strings.Join(errs, "; "))
		return
	}

	group, err := h.store.UpdateItem(ctx, groupID, itemID, req.toPatch())
	if err != nil {
		h.respondStoreError(w, log, err, "cannot update serving item")
		return
	}

	aqm.RespondSuccess(w, NewGroupView(group), aqm.RESTfulLinksFor(group)...)
}

func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.DeleteItem")
	defer finish()

	h.itemAction(w, r, "cannot delete serving item", h.store.DeleteItem)
}

func (h *Handler) IncrementServed(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.IncrementServed")
	defer finish()

	h.itemAction(w, r, "cannot increment served quantity", h.store.IncrementServed)
}

func (h *Handler) DecrementServed(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.DecrementServed")
	defer finish()

	h.itemAction(w, r, "cannot decrement served quantity", h.store.DecrementServed)
}

func (h *Handler) ServeAll(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ServeAll")
	defer finish()

	h.itemAction(w, r, "cannot serve all portions", h.store.ServeAll)
}

func (h *Handler) groupAction(w http.ResponseWriter, r *http.Request, failure string, fn func(uuid.UUID) (*Group, error)) {
	log := h.log(r)

	id, ok := h.parseUUIDParam(w, r, log, "id")
	if !ok {
		return
	}

	group, err := fn(id)
	if err != nil {
		h.respondStoreError(w, log, err, failure)
		return
	}

	aqm.RespondSuccess(w, NewGroupView(group), aqm.RESTfulLinksFor(group)...)
}

type itemMutation func(ctx context.Context, groupID, itemID uuid.UUID) (*Group, error)

func (h *Handler) itemAction(w http.ResponseWriter, r *http.Request, failure string, fn itemMutation) {
	log := h.log(r)

	groupID, itemID, ok := h.parseItemParams(w, r, log)
	if !ok {
		return
	}

	group, err := fn(r.Context(), groupID, itemID)
	if err != nil {
		h.respondStoreError(w, log, err, failure)
		return
	}

	aqm.RespondSuccess(w, NewGroupView(group), aqm.RESTfulLinksFor(group)...)
}

func (h *Handler) respondStoreError(w http.ResponseWriter, log aqm.Logger, err error, msg string) {
	switch {
	case errors.Is(err, ErrGroupNotFound):
		aqm.RespondError(w, http.StatusNotFound, "Serving group not found")
	case errors.Is(err, ErrItemNotFound):
		aqm.RespondError(w, http.StatusNotFound, "Serving item not found")
	case errors.Is(err, ErrSauceNotFound):
		aqm.RespondError(w, http.StatusNotFound, "Prep list entry not found")
	case errors.Is(err, ErrInvalidGroup), errors.Is(err, ErrInvalidItem):
		aqm.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrAlreadyCompleted), errors.Is(err, ErrGroupCompleted):
		aqm.RespondError(w, http.StatusConflict, err.Error())
	default:
		log.Error(msg, "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not process request")
	}
}

func (h *Handler) log(r *http.Request) aqm.Logger {
	return h.logger.With("request_id", aqm.RequestIDFrom(r.Context()))
}

func (h *Handler) parseUUIDParam(w http.ResponseWriter, r *http.Request, log aqm.Logger, name string) (uuid.UUID, bool) {
	raw := chi.URLParam(r, name)
	if raw == "" {
		log.Debug("missing path parameter", "param", name)
		aqm.RespondError(w, http.StatusBadRequest, "Missing "+name+" parameter")
		return uuid.Nil, false
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		log.Debug("invalid path parameter", "param", name, "value", raw, "error", err)
		aqm.RespondError(w, http.StatusBadRequest, "Invalid "+name+" parameter")
		return uuid.Nil, false
	}

	return id, true
}

func (h *Handler) parseItemParams(w http.ResponseWriter, r *http.Request, log aqm.Logger) (uuid.UUID, uuid.UUID, bool) {
	groupID, ok := h.parseUUIDParam(w, r, log, "id")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	itemID, ok := h.parseUUIDParam(w, r, log, "itemID")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	return groupID, itemID, true
}

func (h *Handler) decodePayload(w http.ResponseWriter, r *http.Request, log aqm.Logger, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Debug("error reading request body", "error", err)
		aqm.RespondError(w, http.StatusBadRequest, "Could not read request body")
		return false
	}

	if len(strings.TrimSpace(string(body))) == 0 {
		aqm.RespondError(w, http.StatusBadRequest, "Request body is empty")
		return false
	}

	if err := json.Unmarshal(body, dst); err != nil {
		log.Debug("error decoding JSON", "error", err)
		aqm.RespondError(w, http.StatusBadRequest, "Invalid JSON payload")
		return false
	}

	return true
}
