package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"agent-order-service/config"
	"agent-order-service/internal/api"
	"agent-order-service/internal/broker"
	"agent-order-service/internal/redisclient"
	"agent-order-service/internal/service"
	"agent-order-service/internal/store"
	"agent-order-service/internal/util"
	"agent-order-service/internal/worker"

	"github.com/gin-gonic/gin"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting agent order service")

	tp, err := util.InitTracer("agent-order-service", cfg.Observ.JaegerEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down tracer: %v", err)
		}
	}()

	db, err := store.NewStore(cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Database connected")

	if err := db.EnsureSeedData(context.Background()); err != nil {
		log.Fatalf("Failed to seed default data: %v", err)
	}

	cacheTTL := time.Duration(cfg.Pricing.CacheTTLSeconds) * time.Second
	redisClient, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cacheTTL)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Redis connected")

	pricingProducer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicPricing)
	defer pricingProducer.Close()
	orderProducer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicOrder)
	defer orderProducer.Close()
	log.Println("Kafka producers initialized")

	pricingPublisher := broker.NewEventPublisher(pricingProducer)
	orderPublisher := broker.NewEventPublisher(orderProducer)

	pricingService := service.NewPricingService(db, redisClient, pricingPublisher)
	orderService := service.NewOrderService(db, orderPublisher)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	pricingConsumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicPricing, cfg.Kafka.ConsumerGroup)
	cacheWorker := worker.NewPricingCacheWorker(pricingConsumer, pricingService)
	go func() {
		if err := cacheWorker.Start(workerCtx); err != nil {
			log.Printf("Pricing cache worker error: %v", err)
		}
	}()

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	handler := api.NewHandler(pricingService, orderService)
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	workerCancel()
	cacheWorker.Stop()

	log.Println("Server exited")
}
