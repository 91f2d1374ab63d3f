package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"checkout-service/compliance"
	"checkout-service/controllers"
	"checkout-service/database"
	"checkout-service/middleware"
	awspkg "checkout-service/pkg/aws"
	"checkout-service/repository"
	"checkout-service/routes"
	"checkout-service/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()

	cfg, err := LoadConfig()
	if err != nil {
		logger.Fatal("Config load failed", zap.Error(err))
	}

	db, err := database.Connect(cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("DB connection failed", zap.Error(err))
	}

	rates, err := services.NewRateTable(cfg.DefaultTaxRate, cfg.DefaultExciseTaxRate, cfg.TaxRateOverrides)
	if err != nil {
		logger.Fatal("Invalid tax rate configuration", zap.Error(err))
	}

	// Optional SNS mirror for compliance events (best-effort).
	var snsPublisher awspkg.SNSPublisher
	if cfg.SNSTopicArn != "" {
		awsCfg, err := awspkg.LoadAWSConfig(context.Background())
		if err != nil {
			logger.Warn("AWS config load failed, SNS mirror disabled", zap.Error(err))
		} else {
			snsPublisher = awspkg.NewSNSClient(awsCfg)
		}
	}

	store := repository.NewGormStore(db)

	checkoutService := services.NewCheckoutService(store, rates, services.NewOrderNumberGenerator(), logger)
	statusService := services.NewOrderStatusService(store, logger)
	inventoryService := services.NewInventoryService(store, cfg.AuditInventoryAdjustments, logger)
	queryService := services.NewOrderQueryService(store)
	cartService := services.NewCartService(store, logger)

	kafkaPublisher := compliance.NewKafkaPublisher(cfg.KafkaBrokers, cfg.ComplianceTopic, logger)
	defer kafkaPublisher.Close()

	dispatcher := compliance.NewDispatcher(
		store.Outbox(), kafkaPublisher, snsPublisher, cfg.SNSTopicArn,
		cfg.OutboxPollInterval, cfg.OutboxBatchSize, logger,
	)
	dispatcher.Start()
	defer dispatcher.Stop()

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(logger))

	routes.Register(router, routes.Controllers{
		Checkout:  controllers.NewCheckoutController(checkoutService),
		Orders:    controllers.NewOrderController(queryService, statusService),
		Inventory: controllers.NewInventoryController(inventoryService),
		Carts:     controllers.NewCartController(cartService),
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("checkout service listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down gracefully")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Shutdown error", zap.Error(err))
	}
	logger.Info("server shutdown complete")
}
