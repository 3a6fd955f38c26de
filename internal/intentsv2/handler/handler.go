package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"intentions/internal/intentsv2/models"
	dErrors "intentions/pkg/domain-errors"
	"intentions/pkg/platform/httputil"
	"intentions/pkg/requestcontext"
)

// Service defines the V2 intent operations exposed over HTTP.
type Service interface {
	CreateIntent(ctx context.Context, req *models.CreateIntentRequest) (*models.Intent, error)
	ListIntents(ctx context.Context) ([]*models.Intent, error)
	GetIntent(ctx context.Context, id int64) (*models.Intent, error)
	UpdateName(ctx context.Context, id int64, req *models.TextRequest) (*models.Intent, error)
	UpdateDescription(ctx context.Context, id int64, req *models.TextRequest) (*models.Intent, error)
	UpdateArticulation(ctx context.Context, id int64, req *models.ArticulationRequest) (*models.Intent, error)
	DeleteIntent(ctx context.Context, id int64) (bool, error)
	AddAspect(ctx context.Context, intentID int64, req *models.AspectRequest) (*models.Aspect, error)
	AddInput(ctx context.Context, intentID int64, req *models.InputRequest) (*models.Input, error)
	AddChoice(ctx context.Context, intentID int64, req *models.ChoiceRequest) (*models.Choice, error)
	AddPitfall(ctx context.Context, intentID int64, req *models.PitfallRequest) (*models.Pitfall, error)
	AddAssumption(ctx context.Context, intentID int64, req *models.AssumptionRequest) (*models.Assumption, error)
	AddQuality(ctx context.Context, intentID int64, req *models.QualityRequest) (*models.Quality, error)
	AddExample(ctx context.Context, intentID int64, req *models.ExampleRequest) (*models.Example, error)
	RemoveChild(ctx context.Context, kind models.Kind, intentID, childID int64) (bool, error)
	AddPrompt(ctx context.Context, intentID int64, req *models.PromptRequest) (*models.Prompt, error)
	ListOutputs(ctx context.Context, promptID int64) ([]*models.Output, error)
	AddOutput(ctx context.Context, promptID int64, req *models.OutputRequest) (*models.Output, error)
	AddInsight(ctx context.Context, intentID int64, req *models.InsightRequest) (*models.Insight, error)
}

// Handler serves /v2/intents and /v2/prompts.
type Handler struct {
	intents Service
	logger  *slog.Logger
}

func New(intents Service, logger *slog.Logger) *Handler {
	return &Handler{intents: intents, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/v2", func(r chi.Router) {
		r.Route("/intents", func(r chi.Router) {
			r.Get("/", h.handleList)
			r.Post("/", h.handleCreate)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.handleGet)
				r.Delete("/", h.handleDelete)
				r.Patch("/name", h.handleUpdateName)
				r.Patch("/description", h.handleUpdateDescription)
				r.Patch("/articulation", h.handleUpdateArticulation)
				r.Post("/prompts", h.handleAddPrompt)
				r.Post("/insights", h.handleAddInsight)
				r.Post("/{kind}", h.handleAddChild)
				r.Delete("/{kind}/{childID}", h.handleRemoveChild)
			})
		})
		r.Get("/prompts/{id}/outputs", h.handleListOutputs)
		r.Post("/prompts/{id}/outputs", h.handleAddOutput)
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

// PATCH /v2/intents/1/name {"name": "..."}
func (h *Handler) handleUpdateName(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	h.updateText(w, r, &body, func() string { return body.Name }, h.intents.UpdateName)
}

// PATCH /v2/intents/1/description {"description": "..."}
func (h *Handler) handleUpdateDescription(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Description string `json:"description"`
	}
	h.updateText(w, r, &body, func() string { return body.Description }, h.intents.UpdateDescription)
}

func (h *Handler) updateText(
	w http.ResponseWriter,
	r *http.Request,
	body any,
	value func() string,
	update func(context.Context, int64, *models.TextRequest) (*models.Intent, error),
) {
	id, err := httputil.IDParam(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := httputil.DecodeJSON(r, body); err != nil {
		h.fail(w, r, err)
		return
	}
	i, err := update(r.Context(), id, &models.TextRequest{Value: value()})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, i)
}

func (h *Handler) handleUpdateArticulation(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req models.ArticulationRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	i, err := h.intents.UpdateArticulation(r.Context(), id, &req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, i)
}

func (h *Handler) handleAddChild(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	kind, ok := models.ParseKind(chi.URLParam(r, "kind"))
	if !ok {
		h.fail(w, r, dErrors.New(dErrors.CodeNotFound, "unknown articulation kind"))
		return
	}
	var child any
	switch kind {
	case models.KindAspects:
		child, err = add(r, id, h.intents.AddAspect)
	case models.KindInputs:
		child, err = add(r, id, h.intents.AddInput)
	case models.KindChoices:
		child, err = add(r, id, h.intents.AddChoice)
	case models.KindPitfalls:
		child, err = add(r, id, h.intents.AddPitfall)
	case models.KindAssumptions:
		child, err = add(r, id, h.intents.AddAssumption)
	case models.KindQualities:
		child, err = add(r, id, h.intents.AddQuality)
	case models.KindExamples:
		child, err = add(r, id, h.intents.AddExample)
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, child)
}

// add decodes the body into R and hands it to fn.
func add[R, T any](r *http.Request, id int64, fn func(context.Context, int64, *R) (T, error)) (any, error) {
	var req R
	if err := httputil.DecodeJSON(r, &req); err != nil {
		return nil, err
	}
	v, err := fn(r.Context(), id, &req)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (h *Handler) handleRemoveChild(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	childID, err := httputil.IDParam(r, "childID")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	kind, ok := models.ParseKind(chi.URLParam(r, "kind"))
	if !ok {
		h.fail(w, r, dErrors.New(dErrors.CodeNotFound, "unknown articulation kind"))
		return
	}
	removed, err := h.intents.RemoveChild(r.Context(), kind, id, childID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if !removed {
		h.fail(w, r, dErrors.New(dErrors.CodeNotFound, kind.Label()+" not found"))
		return
	}
	httputil.WriteNoContent(w)
}

func (h *Handler) handleAddPrompt(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	p, err := add(r, id, h.intents.AddPrompt)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, p)
}

func (h *Handler) handleAddInsight(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	in, err := add(r, id, h.intents.AddInsight)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, in)
}

func (h *Handler) handleListOutputs(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	outputs, err := h.intents.ListOutputs(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, outputs)
}

func (h *Handler) handleAddOutput(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	o, err := add(r, id, h.intents.AddOutput)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, o)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	switch dErrors.CodeOf(err) {
	case dErrors.CodeInternal:
		h.logger.ErrorContext(ctx, "v2 intent request failed", "request_id", requestcontext.RequestID(ctx), "error", err)
	case dErrors.CodeNotFound:
		h.logger.InfoContext(ctx, "v2 intent resource not found", "path", r.URL.Path, "request_id", requestcontext.RequestID(ctx))
	}
	httputil.WriteError(w, err)
}
