package service

import (
	"context"
	"log/slog"

	"intentions/internal/items/models"
	"intentions/internal/platform/entity"
	"intentions/internal/platform/metrics"
	"intentions/internal/platform/notify"
	dErrors "intentions/pkg/domain-errors"
	"intentions/pkg/platform/validation"
	"intentions/pkg/requestcontext"
)

const (
	family      = "items"
	msgNotFound = "Item not found"
)

type Store interface {
	List(ctx context.Context) ([]*models.Item, error)
	Search(ctx context.Context, q models.SearchQuery) ([]*models.Item, error)
	FindByID(ctx context.Context, id int64) (*models.Item, error)
	Create(ctx context.Context, item *models.Item) (*models.Item, error)
	Update(ctx context.Context, id int64, item *models.Item) (*models.Item, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

type Publisher interface {
	Publish(ctx context.Context, n notify.Notification)
}

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

func (s *Service) ListItems(ctx context.Context) ([]*models.Item, error) {
	items, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list items")
	}
	return items, nil
}

// SearchItems returns the items matching every filter set in q. An inverted
// price range is rejected rather than silently returning nothing.
func (s *Service) SearchItems(ctx context.Context, q models.SearchQuery) ([]*models.Item, error) {
	if err := validation.Struct(q); err != nil {
		return nil, err
	}
	if q.MinPrice != nil && q.MaxPrice != nil && *q.MinPrice > *q.MaxPrice {
		return nil, dErrors.Validation("min_price", "min_price must not exceed max_price")
	}
	items, err := s.store.Search(ctx, q)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to search items")
	}
	s.logger.DebugContext(ctx, "items searched", "query", q.Name, "results", len(items))
	return items, nil
}

func (s *Service) GetItem(ctx context.Context, id int64) (*models.Item, error) {
	item, err := s.store.FindByID(ctx, id)
	if err != nil {
		s.logger.WarnContext(ctx, "item lookup failed", "item_id", id, "error", err)
		return nil, entity.StoreError(err, msgNotFound)
	}
	return item, nil
}

func (s *Service) CreateItem(ctx context.Context, req *models.CreateItemRequest) (*models.Item, error) {
	req.Normalize()
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)
	draft, err := models.NewItem(req.Name, req.Description, *req.Price, req.Available(), now)
	if err != nil {
		return nil, err
	}
	item, err := s.store.Create(ctx, draft)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create item")
	}

	s.logger.InfoContext(ctx, "item created", "item_id", item.ID, "request_id", requestcontext.RequestID(ctx))
	s.metrics.IncMutation(family, "create")
	s.bus.Publish(ctx, models.NewItemCreated(item, now))
	return item, nil
}

func (s *Service) UpdateItem(ctx context.Context, id int64, req *models.UpdateItemRequest) (*models.Item, error) {
	req.Normalize()
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	current, err := s.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)
	draft, err := current.Apply(req, now)
	if err != nil {
		return nil, err
	}
	item, err := s.store.Update(ctx, id, draft)
	if err != nil {
		return nil, entity.StoreError(err, msgNotFound)
	}

	s.logger.InfoContext(ctx, "item updated", "item_id", item.ID, "request_id", requestcontext.RequestID(ctx))
	s.metrics.IncMutation(family, "update")
	s.bus.Publish(ctx, models.NewItemUpdated(item, now))
	return item, nil
}

func (s *Service) DeleteItem(ctx context.Context, id int64) (bool, error) {
	deleted, err := s.store.Delete(ctx, id)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete item")
	}
	if !deleted {
		s.logger.WarnContext(ctx, "item delete missed", "item_id", id)
		return false, nil
	}

	s.logger.InfoContext(ctx, "item deleted", "item_id", id, "request_id", requestcontext.RequestID(ctx))
	s.metrics.IncMutation(family, "delete")
	s.bus.Publish(ctx, models.NewItemDeleted(id, requestcontext.Now(ctx)))
	return true, nil
}
