package service

import (
	"context"
	"log/slog"

	"intentions/internal/intents/models"
	"intentions/internal/platform/entity"
	"intentions/internal/platform/metrics"
	"intentions/internal/platform/notify"
	dErrors "intentions/pkg/domain-errors"
	"intentions/pkg/platform/validation"
	"intentions/pkg/requestcontext"
)

const (
	family            = "intents"
	msgIntentNotFound = "Intent not found"
	msgFactNotFound   = "Fact not found"
)

type Store interface {
	List(ctx context.Context) ([]*models.Intent, error)
	FindByID(ctx context.Context, id int64) (*models.Intent, error)
	Create(ctx context.Context, i *models.Intent) (*models.Intent, error)
	Update(ctx context.Context, id int64, i *models.Intent) (*models.Intent, error)
	Delete(ctx context.Context, id int64) (bool, error)
	Facts() entity.Children[*models.Fact]
}

type Publisher interface {
	Publish(ctx context.Context, n notify.Notification)
}

// Service manages intents and the facts they own.
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

func (s *Service) CreateIntent(ctx context.Context, req *models.CreateIntentRequest) (*models.Intent, error) {
	req.Normalize()
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)
	draft, err := models.NewIntent(req.Name, req.Description, req.OutputFormat,
		req.OutputStructure, req.Context, req.Constraints, now)
	if err != nil {
		return nil, err
	}
	i, err := s.store.Create(ctx, draft)
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

// GetIntent returns the intent with its facts.
func (s *Service) GetIntent(ctx context.Context, id int64) (*models.Intent, error) {
	i, err := s.store.FindByID(ctx, id)
	if err != nil {
		s.logger.WarnContext(ctx, "intent lookup failed", "intent_id", id, "error", err)
		return nil, entity.StoreError(err, msgIntentNotFound)
	}
	return i, nil
}

// UpdateField sets a single intent attribute and publishes intent.updated
// naming the field.
func (s *Service) UpdateField(ctx context.Context, id int64, field models.Field, value *string) (*models.Intent, error) {
	current, err := s.GetIntent(ctx, id)
	if err != nil {
		return nil, err
	}
	draft, err := current.With(field, value)
	if err != nil {
		return nil, err
	}
	i, err := s.store.Update(ctx, id, draft)
	if err != nil {
		return nil, entity.StoreError(err, msgIntentNotFound)
	}

	s.logger.InfoContext(ctx, "intent updated",
		"intent_id", id,
		"field", field.Key(),
		"request_id", requestcontext.RequestID(ctx),
	)
	s.metrics.IncMutation(family, "update_"+field.Key())
	s.bus.Publish(ctx, models.NewIntentUpdated(id, field, requestcontext.Now(ctx)))
	return i, nil
}

// DeleteIntent removes the intent and its facts.
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

func (s *Service) AddFact(ctx context.Context, intentID int64, req *models.FactRequest) (*models.Fact, error) {
	req.Normalize()
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)
	draft, err := models.NewFact(req.Value, now)
	if err != nil {
		return nil, err
	}
	f, err := s.store.Facts().Add(ctx, intentID, draft)
	if err != nil {
		s.logger.WarnContext(ctx, "fact not added", "intent_id", intentID, "error", err)
		return nil, entity.StoreError(err, msgIntentNotFound)
	}

	s.logger.InfoContext(ctx, "fact added", "intent_id", intentID, "fact_id", f.ID)
	s.metrics.IncMutation(family, "add_fact")
	s.bus.Publish(ctx, models.NewFactAdded(f, now))
	return f, nil
}

// ListFacts returns the facts of an existing intent.
func (s *Service) ListFacts(ctx context.Context, intentID int64) ([]*models.Fact, error) {
	if _, err := s.GetIntent(ctx, intentID); err != nil {
		return nil, err
	}
	facts, err := s.store.Facts().ListByParent(ctx, intentID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list facts")
	}
	return facts, nil
}

func (s *Service) UpdateFactValue(ctx context.Context, intentID, factID int64, req *models.FactRequest) (*models.Fact, error) {
	req.Normalize()
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	if _, err := s.GetIntent(ctx, intentID); err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)
	draft, err := models.NewFact(req.Value, now)
	if err != nil {
		return nil, err
	}
	f, err := s.store.Facts().Update(ctx, intentID, factID, draft)
	if err != nil {
		s.logger.WarnContext(ctx, "fact not updated", "intent_id", intentID, "fact_id", factID, "error", err)
		return nil, entity.StoreError(err, msgFactNotFound)
	}

	s.logger.InfoContext(ctx, "fact updated", "intent_id", intentID, "fact_id", factID)
	s.metrics.IncMutation(family, "update_fact")
	s.bus.Publish(ctx, models.NewFactUpdated(intentID, factID, now))
	return f, nil
}

// RemoveFact reports whether the fact existed under the intent. A missing
// intent is an error; a missing fact is not.
func (s *Service) RemoveFact(ctx context.Context, intentID, factID int64) (bool, error) {
	if _, err := s.GetIntent(ctx, intentID); err != nil {
		return false, err
	}
	removed, err := s.store.Facts().Remove(ctx, intentID, factID)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to remove fact")
	}
	if !removed {
		s.logger.WarnContext(ctx, "fact remove missed", "intent_id", intentID, "fact_id", factID)
		return false, nil
	}

	s.logger.InfoContext(ctx, "fact removed", "intent_id", intentID, "fact_id", factID)
	s.metrics.IncMutation(family, "remove_fact")
	s.bus.Publish(ctx, models.NewFactRemoved(intentID, factID, requestcontext.Now(ctx)))
	return true, nil
}
