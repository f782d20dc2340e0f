package main

import (
	"context"
	"errors"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"payment-service/internal/config"
	"payment-service/internal/controllers/http"
	"payment-service/internal/infra"
	"payment-service/internal/infra/database"
	"payment-service/internal/infra/rabbitmq"
	redisinfra "payment-service/internal/infra/redis"
	"payment-service/internal/payment"
	"payment-service/internal/repository/gormrepo"
	"payment-service/internal/services"
)

const artworkCacheTTL = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	db, err := database.Open(cfg)
	if err != nil {
		logger.Error("db: connect", "error", err)
		os.Exit(1)
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Error("db: handle", "error", err)
		os.Exit(1)
	}
	defer sqlDB.Close()

	verifier, err := payment.NewVerifier(cfg.RazorpayKeySecret)
	if err != nil {
		logger.Error("verifier", "error", err)
		os.Exit(1)
	}

	gateway := infra.NewRazorpayClient(cfg.RazorpayBaseURL, cfg.RazorpayKeyID, cfg.RazorpayKeySecret, cfg.RequestTimeout, logger)

	var publisher rabbitmq.PublisherInterface = rabbitmq.Discard{}
	if cfg.RabbitMQURL != "" {
		p, err := rabbitmq.NewPublisher(cfg.RabbitMQURL, cfg.OrderExchange, logger)
		if err != nil {
			logger.Error("failed to init publisher", "error", err)
			os.Exit(1)
		}
		defer p.Close()
		publisher = p
	} else {
		logger.Warn("RABBITMQ_URL not set, order events are discarded")
	}

	settings := services.Settings{
		DeliveryFee:    cfg.DeliveryFee,
		Currency:       cfg.Currency,
		RequestTimeout: cfg.RequestTimeout,
	}
	orderRepo := gormrepo.NewOrderRepository(db)
	artworkRepo := gormrepo.NewArtworkRepository(db)

	intentService := services.NewIntentService(artworkRepo, gateway, settings, logger)
	paymentService := services.NewPaymentService(verifier, logger)
	orderService := services.NewOrderService(orderRepo, artworkRepo, gateway, verifier, publisher, settings, logger)

	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:         cfg.RedisAddr,
			DB:           0,
			PoolSize:     50,
			MinIdleConns: 5,
			DialTimeout:  2 * time.Second,
			ReadTimeout:  500 * time.Millisecond,
			WriteTimeout: 500 * time.Millisecond,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Error("redis ping failed", "addr", cfg.RedisAddr, "error", err)
			os.Exit(1)
		}

		intents := redisinfra.NewIntentStore(redisClient, cfg.IntentTTL)
		intentService.SetArtworkCache(redisinfra.NewArtworkCache(redisClient, artworkCacheTTL))
		intentService.SetIntentStore(intents)
		orderService.SetIntentStore(intents)
		orderService.SetReconciliationStore(redisinfra.NewReconciliationStore(redisClient))
	} else {
		logger.Warn("REDIS_ADDR not set, running without intent ledger and reconciliation store")
	}

	limiter := http.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	handler := http.NewHandler(intentService, paymentService, orderService, http.NewAuth(cfg.SupabaseJWTSecret, logger), logger)
	handler.SetRateLimiter(limiter)
	handler.SetHealthCheck(sqlDB.PingContext)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), http.RequestLogger(logger))
	handler.RegisterRoutes(r)

	srv := &nethttp.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		t := time.NewTicker(5 * time.Minute)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				limiter.Sweep(30 * time.Minute)
			}
		}
	}()

	go func() {
		logger.Info("starting payment service", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			logger.Error("server run", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down payment service")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
	}
	logger.Info("payment service stopped")
}
