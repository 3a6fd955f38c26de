package service

import (
	"context"
	"log/slog"

	"intentions/internal/platform/entity"
	"intentions/internal/platform/metrics"
	"intentions/internal/platform/notify"
	"intentions/internal/users/models"
	dErrors "intentions/pkg/domain-errors"
	"intentions/pkg/platform/validation"
	"intentions/pkg/requestcontext"
)

const (
	family      = "users"
	msgNotFound = "User not found"
)

type Store interface {
	List(ctx context.Context) ([]*models.User, error)
	FindByID(ctx context.Context, id int64) (*models.User, error)
	Create(ctx context.Context, u *models.User) (*models.User, error)
	Update(ctx context.Context, id int64, u *models.User) (*models.User, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

type Publisher interface {
	Publish(ctx context.Context, n notify.Notification)
}

// Service manages users and announces every change on the bus.
type Service struct {
	store   Store
	bus     Publisher
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New constructs a Service.
func New(store Store, bus Publisher, opts ...Option) *Service {
	s := &Service{store: store, bus: bus, logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) ListUsers(ctx context.Context) ([]*models.User, error) {
	users, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list users")
	}
	return users, nil
}

func (s *Service) GetUser(ctx context.Context, id int64) (*models.User, error) {
	u, err := s.store.FindByID(ctx, id)
	if err != nil {
		s.logger.WarnContext(ctx, "user lookup failed", "user_id", id, "error", err)
		return nil, entity.StoreError(err, msgNotFound)
	}
	return u, nil
}

func (s *Service) CreateUser(ctx context.Context, req *models.CreateUserRequest) (*models.User, error) {
	req.Normalize()
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)
	draft, err := models.NewUser(req.Username, req.Email, now)
	if err != nil {
		return nil, err
	}
	u, err := s.store.Create(ctx, draft)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create user")
	}

	s.logger.InfoContext(ctx, "user created", "user_id", u.ID, "request_id", requestcontext.RequestID(ctx))
	s.metrics.IncMutation(family, "create")
	s.bus.Publish(ctx, models.NewUserCreated(u, now))
	return u, nil
}

func (s *Service) UpdateUser(ctx context.Context, id int64, req *models.UpdateUserRequest) (*models.User, error) {
	req.Normalize()
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	current, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)
	draft, err := current.Apply(req, now)
	if err != nil {
		return nil, err
	}
	u, err := s.store.Update(ctx, id, draft)
	if err != nil {
		return nil, entity.StoreError(err, msgNotFound)
	}

	s.logger.InfoContext(ctx, "user updated", "user_id", u.ID, "request_id", requestcontext.RequestID(ctx))
	s.metrics.IncMutation(family, "update")
	s.bus.Publish(ctx, models.NewUserUpdated(u, now))
	return u, nil
}

// DeleteUser reports whether a user was removed.
func (s *Service) DeleteUser(ctx context.Context, id int64) (bool, error) {
	deleted, err := s.store.Delete(ctx, id)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete user")
	}
	if !deleted {
		s.logger.WarnContext(ctx, "user delete missed", "user_id", id)
		return false, nil
	}

	s.logger.InfoContext(ctx, "user deleted", "user_id", id, "request_id", requestcontext.RequestID(ctx))
	s.metrics.IncMutation(family, "delete")
	s.bus.Publish(ctx, models.NewUserDeleted(id, requestcontext.Now(ctx)))
	return true, nil
}
