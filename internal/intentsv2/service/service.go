package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"intentions/internal/intentsv2/models"
	"intentions/internal/platform/entity"
	"intentions/internal/platform/metrics"
	"intentions/internal/platform/notify"
	dErrors "intentions/pkg/domain-errors"
	"intentions/pkg/platform/validation"
	"intentions/pkg/requestcontext"
)

const (
	family            = "intents_v2"
	msgIntentNotFound = "Intent not found"
	msgPromptNotFound = "Prompt not found"
)

type Store interface {
	List(ctx context.Context) ([]*models.Intent, error)
	FindByID(ctx context.Context, id int64) (*models.Intent, error)
	Create(ctx context.Context, i *models.Intent, a models.Articulation) (*models.Intent, error)
	Update(ctx context.Context, id int64, i *models.Intent) (*models.Intent, error)
	Delete(ctx context.Context, id int64) (bool, error)
	ReplaceArticulation(ctx context.Context, id int64, a models.Articulation) (*models.Intent, error)
	RemoveChild(ctx context.Context, kind models.Kind, intentID, childID int64) (bool, error)
	AddPrompt(ctx context.Context, intentID int64, draft *models.Prompt) (*models.Prompt, error)
	FindPrompt(ctx context.Context, id int64) (*models.Prompt, error)
	FindOutput(ctx context.Context, id int64) (*models.Output, error)
	Aspects() entity.Children[*models.Aspect]
	Inputs() entity.Children[*models.Input]
	Choices() entity.Children[*models.Choice]
	Pitfalls() entity.Children[*models.Pitfall]
	Assumptions() entity.Children[*models.Assumption]
	Qualities() entity.Children[*models.Quality]
	Examples() entity.Children[*models.Example]
	Outputs() entity.Children[*models.Output]
	Insights() entity.Children[*models.Insight]
}

type Publisher interface {
	Publish(ctx context.Context, n notify.Notification)
}

// Service manages articulated intents, their prompts and outputs, and the
// insights fed back into them.
type Service struct {
	store   Store
	bus     Publisher
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func New(store Store, bus Publisher, opts ...Option) *Service {
	s := &Service{store: store, bus: bus, logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateIntent stores the intent together with any initial articulation.
func (s *Service) CreateIntent(ctx context.Context, req *models.CreateIntentRequest) (*models.Intent, error) {
	req.Normalize()
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)
	draft, err := models.NewIntent(req.Name, req.Description, now)
	if err != nil {
		return nil, err
	}
	a, err := req.Articulation().Build(now)
	if err != nil {
		return nil, err
	}
	// A new intent owns no aspects yet, so any reference is dangling.
	if err := checkAspectRefs(draft, a.AspectRefs()); err != nil {
		return nil, err
	}
	i, err := s.store.Create(ctx, draft, a)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create intent")
	}

	s.logger.InfoContext(ctx, "intent created",
		"intent_id", i.ID,
		"name", i.Name,
		"request_id", requestcontext.RequestID(ctx),
	)
	s.metrics.IncMutation(family, "create")
	s.bus.Publish(ctx, models.NewIntentCreated(i, now))
	return i, nil
}

func (s *Service) ListIntents(ctx context.Context) ([]*models.Intent, error) {
	intents, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list intents")
	}
	return intents, nil
}

// GetIntent returns the intent with every record it owns.
func (s *Service) GetIntent(ctx context.Context, id int64) (*models.Intent, error) {
	i, err := s.store.FindByID(ctx, id)
	if err != nil {
		s.logger.WarnContext(ctx, "intent lookup failed", "intent_id", id, "error", err)
		return nil, entity.StoreError(err, msgIntentNotFound)
	}
	return i, nil
}

func (s *Service) UpdateName(ctx context.Context, id int64, req *models.TextRequest) (*models.Intent, error) {
	return s.updateText(ctx, id, req, "name", (*models.Intent).Rename, models.NewNameUpdated)
}

func (s *Service) UpdateDescription(ctx context.Context, id int64, req *models.TextRequest) (*models.Intent, error) {
	return s.updateText(ctx, id, req, "description", (*models.Intent).Redescribe, models.NewDescriptionUpdated)
}

func (s *Service) updateText(
	ctx context.Context,
	id int64,
	req *models.TextRequest,
	field string,
	apply func(*models.Intent, string) (*models.Intent, error),
	event func(int64, time.Time) models.IntentUpdated,
) (*models.Intent, error) {
	if err := validation.Var(field, req.Value, "required,notblank"); err != nil {
		return nil, err
	}
	current, err := s.GetIntent(ctx, id)
	if err != nil {
		return nil, err
	}
	draft, err := apply(current, req.Value)
	if err != nil {
		return nil, err
	}
	i, err := s.store.Update(ctx, id, draft)
	if err != nil {
		return nil, entity.StoreError(err, msgIntentNotFound)
	}

	s.logger.InfoContext(ctx, "intent updated",
		"intent_id", id,
		"field", field,
		"request_id", requestcontext.RequestID(ctx),
	)
	s.metrics.IncMutation(family, "update_"+field)
	s.bus.Publish(ctx, event(id, requestcontext.Now(ctx)))
	return i, nil
}

// DeleteIntent removes the intent, the outputs of its prompts and every
// record it owns.
func (s *Service) DeleteIntent(ctx context.Context, id int64) (bool, error) {
	deleted, err := s.store.Delete(ctx, id)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete intent")
	}
	if !deleted {
		s.logger.WarnContext(ctx, "intent delete missed", "intent_id", id)
		return false, nil
	}

	s.logger.InfoContext(ctx, "intent deleted", "intent_id", id, "request_id", requestcontext.RequestID(ctx))
	s.metrics.IncMutation(family, "delete")
	s.bus.Publish(ctx, models.NewIntentDeleted(id, requestcontext.Now(ctx)))
	return true, nil
}

// UpdateArticulation replaces the supplied child lists. Aspect references
// must point at aspects the intent owns before the update.
func (s *Service) UpdateArticulation(ctx context.Context, id int64, req *models.ArticulationRequest) (*models.Intent, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	current, err := s.GetIntent(ctx, id)
	if err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)
	a, err := req.Build(now)
	if err != nil {
		return nil, err
	}
	if err := checkAspectRefs(current, a.AspectRefs()); err != nil {
		return nil, err
	}
	i, err := s.store.ReplaceArticulation(ctx, id, a)
	if err != nil {
		return nil, entity.StoreError(err, msgIntentNotFound)
	}

	s.logger.InfoContext(ctx, "articulation updated", "intent_id", id, "request_id", requestcontext.RequestID(ctx))
	s.metrics.IncMutation(family, "update_articulation")
	s.bus.Publish(ctx, models.NewArticulationUpdated(id, now))
	return i, nil
}

func (s *Service) AddAspect(ctx context.Context, intentID int64, req *models.AspectRequest) (*models.Aspect, error) {
	return addChild(ctx, s, models.KindAspects, intentID, Store.Aspects, req, nil)
}

func (s *Service) AddInput(ctx context.Context, intentID int64, req *models.InputRequest) (*models.Input, error) {
	return addChild(ctx, s, models.KindInputs, intentID, Store.Inputs, req, req.AspectID)
}

func (s *Service) AddChoice(ctx context.Context, intentID int64, req *models.ChoiceRequest) (*models.Choice, error) {
	return addChild(ctx, s, models.KindChoices, intentID, Store.Choices, req, req.AspectID)
}

func (s *Service) AddPitfall(ctx context.Context, intentID int64, req *models.PitfallRequest) (*models.Pitfall, error) {
	return addChild(ctx, s, models.KindPitfalls, intentID, Store.Pitfalls, req, req.AspectID)
}

func (s *Service) AddAssumption(ctx context.Context, intentID int64, req *models.AssumptionRequest) (*models.Assumption, error) {
	return addChild(ctx, s, models.KindAssumptions, intentID, Store.Assumptions, req, req.AspectID)
}

func (s *Service) AddQuality(ctx context.Context, intentID int64, req *models.QualityRequest) (*models.Quality, error) {
	return addChild(ctx, s, models.KindQualities, intentID, Store.Qualities, req, req.AspectID)
}

func (s *Service) AddExample(ctx context.Context, intentID int64, req *models.ExampleRequest) (*models.Example, error) {
	return addChild(ctx, s, models.KindExamples, intentID, Store.Examples, req, req.AspectID)
}

type draftBuilder[T any] interface {
	Build(now time.Time) (T, error)
}

func addChild[R draftBuilder[T], T entity.Child[T]](
	ctx context.Context,
	s *Service,
	kind models.Kind,
	intentID int64,
	children func(Store) entity.Children[T],
	req R,
	aspectID *int64,
) (T, error) {
	var zero T
	if err := validation.Struct(req); err != nil {
		return zero, err
	}
	now := requestcontext.Now(ctx)
	draft, err := req.Build(now)
	if err != nil {
		return zero, err
	}
	// The store is not touched until the draft is known to be valid.
	current, err := s.GetIntent(ctx, intentID)
	if err != nil {
		return zero, err
	}
	if err := checkAspectRefs(current, []*int64{aspectID}); err != nil {
		return zero, err
	}
	child, err := children(s.store).Add(ctx, intentID, draft)
	if err != nil {
		s.logger.WarnContext(ctx, "child not added", "intent_id", intentID, "kind", kind.String(), "error", err)
		return zero, entity.StoreError(err, msgIntentNotFound)
	}
	childID := child.Metadata().ID

	s.logger.InfoContext(ctx, kind.Singular()+" added", "intent_id", intentID, "child_id", childID)
	s.metrics.IncMutation(family, "add_"+kind.Singular())
	s.bus.Publish(ctx, models.NewChildAdded(kind, intentID, childID, now))
	return child, nil
}

// RemoveChild reports whether the record existed under the intent. A missing
// intent is an error; a missing record is not.
func (s *Service) RemoveChild(ctx context.Context, kind models.Kind, intentID, childID int64) (bool, error) {
	if _, ok := models.ParseKind(kind.String()); !ok {
		return false, dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("unknown kind %q", kind.String()))
	}
	if _, err := s.GetIntent(ctx, intentID); err != nil {
		return false, err
	}
	removed, err := s.store.RemoveChild(ctx, kind, intentID, childID)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to remove "+kind.Singular())
	}
	if !removed {
		s.logger.WarnContext(ctx, "child remove missed", "intent_id", intentID, "kind", kind.String(), "child_id", childID)
		return false, nil
	}

	s.logger.InfoContext(ctx, kind.Singular()+" removed", "intent_id", intentID, "child_id", childID)
	s.metrics.IncMutation(family, "remove_"+kind.Singular())
	s.bus.Publish(ctx, models.NewChildRemoved(kind, intentID, childID, requestcontext.Now(ctx)))
	return true, nil
}

// AddPrompt stores the next prompt version for the intent.
func (s *Service) AddPrompt(ctx context.Context, intentID int64, req *models.PromptRequest) (*models.Prompt, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)
	draft, err := models.NewPrompt(req.Content, now)
	if err != nil {
		return nil, err
	}
	p, err := s.store.AddPrompt(ctx, intentID, draft)
	if err != nil {
		s.logger.WarnContext(ctx, "prompt not added", "intent_id", intentID, "error", err)
		return nil, entity.StoreError(err, msgIntentNotFound)
	}

	s.logger.InfoContext(ctx, "prompt created", "intent_id", intentID, "prompt_id", p.ID, "version", p.Version)
	s.metrics.IncMutation(family, "add_prompt")
	s.bus.Publish(ctx, models.NewPromptCreated(p, now))
	return p, nil
}

// ListOutputs returns the outputs recorded for an existing prompt.
func (s *Service) ListOutputs(ctx context.Context, promptID int64) ([]*models.Output, error) {
	if _, err := s.store.FindPrompt(ctx, promptID); err != nil {
		s.logger.WarnContext(ctx, "prompt lookup failed", "prompt_id", promptID, "error", err)
		return nil, entity.StoreError(err, msgPromptNotFound)
	}
	outputs, err := s.store.Outputs().ListByParent(ctx, promptID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list outputs")
	}
	return outputs, nil
}

func (s *Service) AddOutput(ctx context.Context, promptID int64, req *models.OutputRequest) (*models.Output, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)
	draft, err := models.NewOutput(req.Content, now)
	if err != nil {
		return nil, err
	}
	o, err := s.store.Outputs().Add(ctx, promptID, draft)
	if err != nil {
		s.logger.WarnContext(ctx, "output not added", "prompt_id", promptID, "error", err)
		return nil, entity.StoreError(err, msgPromptNotFound)
	}

	s.logger.InfoContext(ctx, "output created", "prompt_id", promptID, "output_id", o.ID)
	s.metrics.IncMutation(family, "add_output")
	s.bus.Publish(ctx, models.NewOutputCreated(o, now))
	return o, nil
}

// AddInsight records an insight. Referenced prompts and assumptions must
// belong to the intent; a referenced output must come from one of its
// prompts.
func (s *Service) AddInsight(ctx context.Context, intentID int64, req *models.InsightRequest) (*models.Insight, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)
	draft, err := req.Build(now)
	if err != nil {
		return nil, err
	}
	current, err := s.GetIntent(ctx, intentID)
	if err != nil {
		return nil, err
	}
	if err := s.checkInsightSources(ctx, current, req); err != nil {
		return nil, err
	}
	in, err := s.store.Insights().Add(ctx, intentID, draft)
	if err != nil {
		s.logger.WarnContext(ctx, "insight not added", "intent_id", intentID, "error", err)
		return nil, entity.StoreError(err, msgIntentNotFound)
	}

	s.logger.InfoContext(ctx, "insight created", "intent_id", intentID, "insight_id", in.ID, "source_type", in.SourceType)
	s.metrics.IncMutation(family, "add_insight")
	s.bus.Publish(ctx, models.NewInsightCreated(in, now))
	return in, nil
}

func (s *Service) checkInsightSources(ctx context.Context, i *models.Intent, req *models.InsightRequest) error {
	if id := req.SourcePromptID; id != nil && !i.HasPrompt(*id) {
		return dErrors.Validation("source_prompt_id", fmt.Sprintf("Prompt %d does not belong to this intent", *id))
	}
	if id := req.SourceAssumptionID; id != nil && !i.HasAssumption(*id) {
		return dErrors.Validation("source_assumption_id", fmt.Sprintf("Assumption %d does not belong to this intent", *id))
	}
	if id := req.SourceOutputID; id != nil {
		o, err := s.store.FindOutput(ctx, *id)
		if err != nil {
			if entity.IsAbsent(err) {
				return dErrors.Validation("source_output_id", fmt.Sprintf("Output %d not found", *id))
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up output")
		}
		if !i.HasPrompt(o.PromptID) {
			return dErrors.Validation("source_output_id", fmt.Sprintf("Output %d does not belong to this intent", *id))
		}
	}
	return nil
}

func checkAspectRefs(i *models.Intent, refs []*int64) error {
	for _, ref := range refs {
		if ref != nil && !i.HasAspect(*ref) {
			return dErrors.Validation("aspect_id", fmt.Sprintf("Aspect %d does not belong to this intent", *ref))
		}
	}
	return nil
}
