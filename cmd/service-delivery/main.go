package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"delivery-dispatch/internal/app"
	"delivery-dispatch/internal/config"
	"delivery-dispatch/internal/http/handlers"
	"delivery-dispatch/internal/http/middleware"
	"delivery-dispatch/internal/http/middleware/ratelimit"
	"delivery-dispatch/internal/http/pprofserver"
	"delivery-dispatch/internal/http/router"
	"delivery-dispatch/internal/logx"
	"delivery-dispatch/internal/metrics"
	"delivery-dispatch/internal/repository"
	"delivery-dispatch/internal/service/arbiter"
	"delivery-dispatch/internal/service/lifecycle"
	"delivery-dispatch/internal/transport/kafka"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}
	ctxSignals, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := app.NewLogger()

	pool, err := app.ConnectDB(ctxSignals, cfg.DB.DSN(), 10, time.Second)
	if err != nil {
		log.Fatalf("database connection error: %v", err)
	}
	defer pool.Close()

	orderRepo := repository.NewOrderRepo(pool)
	courierRepo := repository.NewCourierRepo(pool)

	gateway := app.NewSMSGateway(cfg, logger)

	producer, err := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	if err != nil {
		log.Fatalf("kafka producer error: %v", err)
	}
	var publisher lifecycle.EventPublisher
	if producer != nil {
		publisher = producer
		defer func() {
			if err := producer.Close(); err != nil {
				logger.Error("kafka producer close error", logx.Err(err))
			}
		}()
	}

	const operationTimeout = 3 * time.Second
	lc := lifecycle.NewService(orderRepo, publisher, gateway, operationTimeout, logger)
	arb := arbiter.NewService(orderRepo, operationTimeout, logger)

	base := handlers.New(logger)
	restaurant := handlers.NewRestaurantOrderHandler(logger, handlers.NewLifecycleUsecase(lc))
	courier := handlers.NewCourierHandler(logger,
		handlers.NewArbiterUsecase(arb),
		handlers.NewLifecycleUsecase(lc),
		handlers.NewCourierStore(courierRepo),
	)

	rlCounter := metrics.NewRateLimitExceededTotal()
	prometheus.MustRegister(rlCounter)
	limiter := ratelimit.NewTokenBucketPerWindow(ratelimit.RealClock{},
		cfg.RateLimit.Limit, cfg.RateLimit.Window, 10*time.Minute, 100_000)
	rl := ratelimit.New(logger, rlCounter, limiter)

	mux := router.New(base, restaurant, courier, router.Middlewares{
		Observability: middleware.Observability(logger),
		AcceptLimit:   rl.Handler(),
	})

	go func() {
		addr := fmt.Sprintf("localhost:%d", cfg.PprofPort)
		if err := http.ListenAndServe(addr, pprofserver.Handler(pprofserver.Config{})); err != nil {
			logger.Warn("pprof server stopped", logx.Err(err))
		}
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	defer func() {
		if err := srv.Close(); err != nil {
			log.Printf("server close error: %v", err)
		}
	}()

	go func() {
		log.Printf("service-delivery listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen error: %v", err)
		}
	}()

	<-ctxSignals.Done()
	log.Println("Shutting down service-delivery")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Printf("graceful shutdown error: %v", err)
	}
}
