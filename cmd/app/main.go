package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/stayinn/backend/config"
	"github.com/stayinn/backend/internal/bootstrap"
	"github.com/stayinn/backend/internal/cache"
	"github.com/stayinn/backend/internal/domain"
	"github.com/stayinn/backend/internal/gateway"
	"github.com/stayinn/backend/internal/kafka"
	"github.com/stayinn/backend/internal/obs"
	"github.com/stayinn/backend/internal/repository"
	"github.com/stayinn/backend/internal/service/booking"
	"github.com/stayinn/backend/internal/service/payment"
	"github.com/stayinn/backend/internal/service/rating"
	"github.com/stayinn/backend/internal/service/villas"
)

func main() {
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := obs.NewLogger(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Booking.VillasCacheTTLSeconds)*time.Second)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	razorpay := gateway.NewRazorpayClient(cfg.Gateway)
	clock := domain.SystemClock()

	bookingRepo := repository.NewBookingRepository(pool)
	paymentRepo := repository.NewPaymentRepository(pool)
	ratingRepo := repository.NewRatingRepository(pool)
	villaRepo := repository.NewVillaRepository(pool)
	userRepo := repository.NewUserRepository(pool)

	bookingService := booking.NewBookingService(
		bookingRepo,
		paymentRepo,
		villaRepo,
		userRepo,
		redisCache,
		producer,
		clock,
		logger,
		cfg.Kafka.BookingTopic,
		time.Duration(cfg.Booking.VillaLockTTLSeconds)*time.Second,
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
	)
	paymentService := payment.NewPaymentService(
		paymentRepo,
		bookingRepo,
		villaRepo,
		userRepo,
		razorpay,
		producer,
		clock,
		logger,
		cfg.Gateway.KeyID,
		cfg.Gateway.Currency,
		cfg.Gateway.CompanyName,
		cfg.Kafka.PaymentTopic,
		payment.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		payment.WithPendingTTL(time.Duration(cfg.Worker.PendingPaymentTTLMinutes)*time.Minute),
	)
	ratingService := rating.NewRatingService(ratingRepo, bookingRepo, villaRepo, userRepo, clock, logger)
	villaService := villas.NewVillaService(villaRepo, redisCache)

	if err := bootstrap.Run(ctx, cfg, logger, bootstrap.Services{
		Bookings: bookingService,
		Payments: paymentService,
		Ratings:  ratingService,
		Villas:   villaService,
	}); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
