package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	httpapi "intentions/internal/http"
	intentshandler "intentions/internal/intents/handler"
	intentsmodels "intentions/internal/intents/models"
	intentsservice "intentions/internal/intents/service"
	intentsstore "intentions/internal/intents/store"
	v2handler "intentions/internal/intentsv2/handler"
	v2models "intentions/internal/intentsv2/models"
	v2service "intentions/internal/intentsv2/service"
	v2store "intentions/internal/intentsv2/store"
	itemshandler "intentions/internal/items/handler"
	itemsmodels "intentions/internal/items/models"
	itemsservice "intentions/internal/items/service"
	itemsstore "intentions/internal/items/store"
	"intentions/internal/mcp"
	"intentions/internal/platform/config"
	"intentions/internal/platform/database"
	"intentions/internal/platform/metrics"
	"intentions/internal/platform/notify"
	"intentions/internal/platform/notify/sinks"
	"intentions/internal/platform/redis"
	"intentions/internal/platform/sqlstore"
	usershandler "intentions/internal/users/handler"
	usersmodels "intentions/internal/users/models"
	usersservice "intentions/internal/users/service"
	usersstore "intentions/internal/users/store"
)

// app holds the wired process. Both transports serve the same services.
type app struct {
	cfg      config.Config
	logger   *slog.Logger
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	bus      *notify.Bus

	users     *usersservice.Service
	items     *itemsservice.Service
	intents   *intentsservice.Service
	intentsV2 *v2service.Service

	checks  map[string]httpapi.HealthCheck
	closers []func() error
}

func notificationKinds() []string {
	var kinds []string
	for _, family := range [][]string{usersmodels.Kinds, itemsmodels.Kinds, intentsmodels.Kinds, v2models.Kinds} {
		kinds = append(kinds, family...)
	}
	return kinds
}

func newApp(ctx context.Context, cfg config.Config, logger *slog.Logger) (_ *app, err error) {
	a := &app{
		cfg:      cfg,
		logger:   logger,
		registry: prometheus.NewRegistry(),
		checks:   map[string]httpapi.HealthCheck{},
	}
	defer func() {
		if err != nil {
			_ = a.Close()
		}
	}()

	a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	a.metrics = metrics.New(a.registry)
	a.bus = notify.NewBus(notify.WithLogger(logger), notify.WithMetrics(a.metrics))

	if err := a.subscribeSinks(ctx); err != nil {
		return nil, err
	}
	if err := a.buildServices(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *app) buildServices(ctx context.Context) error {
	var (
		users     usersservice.Store
		items     itemsservice.Store
		intents   intentsservice.Store
		intentsV2 v2service.Store
	)
	switch a.cfg.Storage.Driver {
	case config.DriverMemory:
		users, items = usersstore.NewInMemory(), itemsstore.NewInMemory()
		intents, intentsV2 = intentsstore.NewInMemory(), v2store.NewInMemory()
	default:
		db, err := database.Open(ctx, a.cfg.Storage)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, db.Close)
		a.checks["database"] = func(ctx context.Context) error { return db.Conn().PingContext(ctx) }
		users, items = usersstore.NewSQL(db), itemsstore.NewSQL(db)
		intents, intentsV2 = intentsstore.NewSQL(db), v2store.NewSQL(db)
	}
	a.logger.InfoContext(ctx, "storage ready", "driver", a.cfg.Storage.Driver)

	a.users = usersservice.New(users, a.bus, usersservice.WithLogger(a.logger), usersservice.WithMetrics(a.metrics))
	a.items = itemsservice.New(items, a.bus, itemsservice.WithLogger(a.logger), itemsservice.WithMetrics(a.metrics))
	a.intents = intentsservice.New(intents, a.bus, intentsservice.WithLogger(a.logger), intentsservice.WithMetrics(a.metrics))
	a.intentsV2 = v2service.New(intentsV2, a.bus, v2service.WithLogger(a.logger), v2service.WithMetrics(a.metrics))
	return nil
}

// subscribeSinks attaches every configured sink to every notification kind.
// Network sinks run off the request path.
func (a *app) subscribeSinks(ctx context.Context) error {
	type sink struct {
		name string
		fn   notify.Handler
	}
	var subs []sink

	if a.cfg.Notify.LogEvents {
		subs = append(subs, sink{"log", sinks.NewLog(a.logger).Handle})
	}

	rc, err := redis.Connect(ctx, a.cfg.Notify.Redis)
	if err != nil {
		return err
	}
	if rc != nil {
		a.closers = append(a.closers, rc.Close)
		a.checks["redis"] = rc.Health
		subs = append(subs, sink{"redis", notify.Async(sinks.NewRedis(rc, a.cfg.Notify.ChannelPrefix, a.logger).Handle, a.logger)})
	}

	if brokers := a.cfg.Notify.KafkaBrokers; len(brokers) > 0 {
		kc, err := sinks.DialKafka(brokers, a.cfg.Notify.KafkaTopic)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, func() error { kc.Close(); return nil })
		if err := sinks.EnsureTopic(ctx, kc, a.cfg.Notify.KafkaTopic, 1, 1); err != nil {
			return err
		}
		subs = append(subs, sink{"kafka", notify.Async(sinks.NewKafka(kc, a.cfg.Notify.KafkaTopic, a.logger).Handle, a.logger)})
	}

	for _, kind := range notificationKinds() {
		for _, s := range subs {
			a.bus.Subscribe(kind, s.name, s.fn)
		}
	}
	names := make([]string, 0, len(subs))
	for _, s := range subs {
		names = append(names, s.name)
	}
	a.logger.InfoContext(ctx, "notification sinks subscribed", "sinks", names)
	return nil
}

// catalog is the tool table over the app's services.
func (a *app) catalog() *mcp.Catalog {
	return mcp.NewCatalog([][]mcp.Tool{
		mcp.UserTools(a.users),
		mcp.ItemTools(a.items),
		mcp.IntentTools(a.intents),
		mcp.IntentV2Tools(a.intentsV2),
	}, mcp.WithLogger(a.logger), mcp.WithMetrics(a.metrics))
}

// handler is the root HTTP handler over the app's services.
func (a *app) handler() http.Handler {
	deps := httpapi.Deps{
		Logger:   a.logger,
		Metrics:  a.metrics,
		Gatherer: a.registry,
		Families: []httpapi.Registrar{
			usershandler.New(a.users, a.logger),
			itemshandler.New(a.items, a.logger),
			intentshandler.New(a.intents, a.logger),
			v2handler.New(a.intentsV2, a.logger),
		},
		Auth:   a.cfg.MCP,
		Checks: a.checks,
	}
	if a.cfg.MCP.Enabled {
		deps.MCP = mcp.HTTPHandler(mcp.NewServer(a.catalog(), a.cfg.MCP.ServerName, a.cfg.MCP.ServerVersion))
	}
	return httpapi.NewRouter(deps)
}

// Close releases backends in reverse order of acquisition.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	return nil
}

// openSQL opens the configured SQL backend for one-off commands.
func openSQL(ctx context.Context, cfg config.Storage) (*sqlstore.DB, error) {
	if cfg.Driver == config.DriverMemory {
		return nil, fmt.Errorf("storage driver %q has no schema", cfg.Driver)
	}
	return database.Open(ctx, cfg)
}
