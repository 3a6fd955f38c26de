package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"intentions/internal/items/models"
	dErrors "intentions/pkg/domain-errors"
	"intentions/pkg/platform/httputil"
	"intentions/pkg/requestcontext"
)

// Service defines the item operations exposed over HTTP.
type Service interface {
	ListItems(ctx context.Context) ([]*models.Item, error)
	SearchItems(ctx context.Context, q models.SearchQuery) ([]*models.Item, error)
	GetItem(ctx context.Context, id int64) (*models.Item, error)
	CreateItem(ctx context.Context, req *models.CreateItemRequest) (*models.Item, error)
	UpdateItem(ctx context.Context, id int64, req *models.UpdateItemRequest) (*models.Item, error)
	DeleteItem(ctx context.Context, id int64) (bool, error)
}

type Handler struct {
	items  Service
	logger *slog.Logger
}

func New(items Service, logger *slog.Logger) *Handler {
	return &Handler{items: items, logger: logger}
}

// Register mounts the item routes on r.
func (h *Handler) Register(r chi.Router) {
	r.Route("/items", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Get("/search", h.handleSearch)
		r.Get("/{id}", h.handleGet)
		r.Put("/{id}", h.handleUpdate)
		r.Delete("/{id}", h.handleDelete)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	items, err := h.items.ListItems(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, items)
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	q, err := parseSearch(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	items, err := h.items.SearchItems(r.Context(), q)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, items)
}

func parseSearch(r *http.Request) (models.SearchQuery, error) {
	values := r.URL.Query()
	q := models.SearchQuery{Name: values.Get("name")}
	for param, dst := range map[string]**float64{"min_price": &q.MinPrice, "max_price": &q.MaxPrice} {
		raw := values.Get(param)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return q, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid "+param)
		}
		*dst = &v
	}
	if raw := values.Get("available_only"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return q, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid available_only")
		}
		q.AvailableOnly = v
	}
	return q, nil
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	item, err := h.items.GetItem(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, item)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req models.CreateItemRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	item, err := h.items.CreateItem(r.Context(), &req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, item)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req models.UpdateItemRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	item, err := h.items.UpdateItem(r.Context(), id, &req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, item)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	deleted, err := h.items.DeleteItem(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if !deleted {
		h.fail(w, r, dErrors.New(dErrors.CodeNotFound, "Item not found"))
		return
	}
	httputil.WriteNoContent(w)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(r.Context(), "item request failed",
			"request_id", requestcontext.RequestID(r.Context()),
			"error", err,
		)
	}
	httputil.WriteError(w, err)
}
