package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/dig"

	"delivery-dispatch/internal/config"
	"delivery-dispatch/internal/logx"
	"delivery-dispatch/internal/metrics"
	"delivery-dispatch/internal/repository"
	"delivery-dispatch/internal/service/dispatch"
	"delivery-dispatch/internal/sms"
	"delivery-dispatch/internal/transport/kafka"
)

// ContainerBuilder is a dig container builder for the dispatch worker.
type ContainerBuilder struct {
	dbConnect func(context.Context, string, int, time.Duration) (*pgxpool.Pool, error)
	logFatalf func(string, ...interface{})
}

// NewContainerBuilder returns a new dig container builder
func NewContainerBuilder() *ContainerBuilder {
	return &ContainerBuilder{
		dbConnect: ConnectDB,
		logFatalf: log.Fatalf,
	}
}

// WithDBConnect sets the database connection function
func (b *ContainerBuilder) WithDBConnect(
	fn func(context.Context, string, int, time.Duration) (*pgxpool.Pool, error),
) *ContainerBuilder {
	if fn != nil {
		b.dbConnect = fn
	}
	return b
}

// WithLogFatalf sets the log.Fatalf function
func (b *ContainerBuilder) WithLogFatalf(fn func(string, ...interface{})) *ContainerBuilder {
	if fn != nil {
		b.logFatalf = fn
	}
	return b
}

// MustBuild builds and returns a new dig container
func (b *ContainerBuilder) MustBuild(ctx context.Context) *dig.Container {
	container, err := b.build(ctx)
	if err != nil {
		b.logFatalf("failed to build container: %v", err)
	}
	return container
}

func (b *ContainerBuilder) build(ctx context.Context) (*dig.Container, error) {
	container := dig.New()

	if err := registerCore(container, ctx); err != nil {
		return nil, fmt.Errorf("core: %w", err)
	}
	if err := registerDb(container, b.dbConnect); err != nil {
		return nil, fmt.Errorf("DB: %w", err)
	}
	if err := registerDispatch(container); err != nil {
		return nil, fmt.Errorf("dispatch: %w", err)
	}
	if err := registerKafka(container); err != nil {
		return nil, fmt.Errorf("kafka: %w", err)
	}
	return container, nil
}

// MustBuildWorkerContainer builds and returns a new dig container
func MustBuildWorkerContainer(ctx context.Context) *dig.Container {
	return NewContainerBuilder().MustBuild(ctx)
}

func provideAll(container *dig.Container, providers ...any) error {
	for _, provider := range providers {
		if err := container.Provide(provider); err != nil {
			return fmt.Errorf("provide %T: %w", provider, err)
		}
	}
	return nil
}

func registerCore(container *dig.Container, ctx context.Context) error {
	return provideAll(container,
		func() context.Context { return ctx },
		config.Load,
		NewLogger,
	)
}

func registerDb(
	container *dig.Container,
	dbConnect func(context.Context, string, int, time.Duration) (*pgxpool.Pool, error),
) error {
	providerDB := func(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
		return dbConnect(ctx, cfg.DB.DSN(), 10, time.Second)
	}
	return provideAll(container, providerDB)
}

func registerDispatch(container *dig.Container) error {
	return provideAll(container,
		repository.NewOrderRepo,
		repository.NewCourierRepo,
		repository.NewRestaurantRepo,
		repository.NewOutboxRepo,
		func(r *repository.OrderRepo) dispatch.OrderStore { return r },
		func(r *repository.CourierRepo) dispatch.CourierStore { return r },
		func(r *repository.RestaurantRepo) dispatch.RestaurantStore { return r },
		func(r *repository.OutboxRepo) dispatch.JobQueue { return r },
		NewSMSGateway,
		func() dispatch.Metrics {
			return dispatch.Metrics{
				Batches:  register(metrics.NewDispatchBatchesTotal()),
				Outcomes: register(metrics.NewDispatchOutcomesTotal()),
			}
		},
		func(
			orders dispatch.OrderStore,
			couriers dispatch.CourierStore,
			restaurants dispatch.RestaurantStore,
			gateway sms.Gateway,
			cfg *config.Config,
			m dispatch.Metrics,
			logger logx.Logger,
		) *dispatch.Engine {
			return dispatch.NewEngine(orders, couriers, restaurants, gateway, cfg.Dispatch, m, logger)
		},
		func(engine *dispatch.Engine, cfg *config.Config, logger logx.Logger) *dispatch.Pool {
			return dispatch.NewPool(engine, cfg.Dispatch.MaxConcurrent, logger)
		},
		func(pool *dispatch.Pool, queue dispatch.JobQueue, orders dispatch.OrderStore, cfg *config.Config, logger logx.Logger) *dispatch.Worker {
			return dispatch.NewWorker(pool, queue, orders, cfg.Outbox, cfg.Dispatch.StaleAfter, logger)
		},
	)
}

func registerKafka(container *dig.Container) error {
	return provideAll(container,
		func(cfg *config.Config, w *dispatch.Worker, logger logx.Logger) (*kafka.Consumer, error) {
			handle := func(ctx context.Context, event kafka.OrderAcceptedEvent) error {
				return w.HandleOrderAccepted(ctx, event.OrderID)
			}
			return kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.Topic, handle, logger)
		},
	)
}
