package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"intentions/internal/intents/models"
	dErrors "intentions/pkg/domain-errors"
	"intentions/pkg/platform/httputil"
	"intentions/pkg/requestcontext"
)

// Service defines the intent operations exposed over HTTP.
type Service interface {
	CreateIntent(ctx context.Context, req *models.CreateIntentRequest) (*models.Intent, error)
	ListIntents(ctx context.Context) ([]*models.Intent, error)
	GetIntent(ctx context.Context, id int64) (*models.Intent, error)
	UpdateField(ctx context.Context, id int64, field models.Field, value *string) (*models.Intent, error)
	DeleteIntent(ctx context.Context, id int64) (bool, error)
	AddFact(ctx context.Context, intentID int64, req *models.FactRequest) (*models.Fact, error)
	ListFacts(ctx context.Context, intentID int64) ([]*models.Fact, error)
	UpdateFactValue(ctx context.Context, intentID, factID int64, req *models.FactRequest) (*models.Fact, error)
	RemoveFact(ctx context.Context, intentID, factID int64) (bool, error)
}

// Handler serves /intents and the nested fact routes.
type Handler struct {
	intents Service
	logger  *slog.Logger
}

func New(intents Service, logger *slog.Logger) *Handler {
	return &Handler{intents: intents, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/intents", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.handleGet)
			r.Delete("/", h.handleDelete)
			r.Get("/facts", h.handleListFacts)
			r.Post("/facts", h.handleAddFact)
			r.Patch("/facts/{factID}/value", h.handleUpdateFact)
			r.Delete("/facts/{factID}", h.handleRemoveFact)
			r.Patch("/{field}", h.handleUpdateField)
		})
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	intents, err := h.intents.ListIntents(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, intents)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req models.CreateIntentRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	i, err := h.intents.CreateIntent(r.Context(), &req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, i)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	i, err := h.intents.GetIntent(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, i)
}

// handleUpdateField reads the value from the body property named after the
// field, e.g. PATCH /intents/1/output-format {"output_format": "csv"}.
func (h *Handler) handleUpdateField(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	field, ok := models.FieldByPath(chi.URLParam(r, "field"))
	if !ok {
		h.fail(w, r, dErrors.New(dErrors.CodeNotFound, "unknown intent field"))
		return
	}
	var body map[string]json.RawMessage
	if err := httputil.DecodeJSON(r, &body); err != nil {
		h.fail(w, r, err)
		return
	}
	var value *string
	if raw, ok := body[field.Key()]; ok {
		if err := json.Unmarshal(raw, &value); err != nil {
			h.fail(w, r, dErrors.Wrap(err, dErrors.CodeBadRequest, field.Key()+" must be a string"))
			return
		}
	}
	i, err := h.intents.UpdateField(r.Context(), id, field, value)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, i)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	deleted, err := h.intents.DeleteIntent(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if !deleted {
		h.fail(w, r, dErrors.New(dErrors.CodeNotFound, "Intent not found"))
		return
	}
	httputil.WriteNoContent(w)
}

func (h *Handler) handleListFacts(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	facts, err := h.intents.ListFacts(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, facts)
}

func (h *Handler) handleAddFact(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req models.FactRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	f, err := h.intents.AddFact(r.Context(), id, &req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, f)
}

func (h *Handler) handleUpdateFact(w http.ResponseWriter, r *http.Request) {
	id, factID, err := ids(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req models.FactRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	f, err := h.intents.UpdateFactValue(r.Context(), id, factID, &req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, f)
}

func (h *Handler) handleRemoveFact(w http.ResponseWriter, r *http.Request) {
	id, factID, err := ids(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	removed, err := h.intents.RemoveFact(r.Context(), id, factID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if !removed {
		h.fail(w, r, dErrors.New(dErrors.CodeNotFound, "Fact not found"))
		return
	}
	httputil.WriteNoContent(w)
}

func ids(r *http.Request) (int64, int64, error) {
	id, err := httputil.IDParam(r, "id")
	if err != nil {
		return 0, 0, err
	}
	factID, err := httputil.IDParam(r, "factID")
	if err != nil {
		return 0, 0, err
	}
	return id, factID, nil
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	switch dErrors.CodeOf(err) {
	case dErrors.CodeInternal:
		h.logger.ErrorContext(ctx, "intent request failed", "request_id", requestcontext.RequestID(ctx), "error", err)
	case dErrors.CodeNotFound:
		h.logger.InfoContext(ctx, "intent resource not found", "path", r.URL.Path, "request_id", requestcontext.RequestID(ctx))
	}
	httputil.WriteError(w, err)
}
