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
	"github.com/stayinn/backend/internal/cache"
	"github.com/stayinn/backend/internal/domain"
	"github.com/stayinn/backend/internal/email"
	"github.com/stayinn/backend/internal/kafka"
	"github.com/stayinn/backend/internal/obs"
	"github.com/stayinn/backend/internal/repository"
	"github.com/stayinn/backend/internal/service/booking"
	"github.com/stayinn/backend/internal/service/payment"
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()
	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Booking.VillasCacheTTLSeconds)*time.Second)
	clock := domain.SystemClock()

	bookingRepo := repository.NewBookingRepository(pool)
	paymentRepo := repository.NewPaymentRepository(pool)
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
		nil,
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

	consumer := kafka.NewConsumer(cfg.Kafka, logger)
	defer consumer.Close()

	go func() {
		if err := consumer.Consume(ctx, email.NewSender()); err != nil {
			log.Printf("consumer stopped: %v", err)
		}
	}()

	sweepTicker := time.NewTicker(time.Duration(cfg.Worker.SweepMinutes) * time.Minute)
	defer sweepTicker.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-sweepTicker.C:
			completed, err := bookingService.AutoComplete(ctx)
			if err != nil {
				log.Printf("auto-complete error: %v", err)
			} else if completed > 0 {
				log.Printf("completed %d finished bookings", completed)
			}

			expired, err := paymentService.ExpireStalePending(ctx)
			if err != nil {
				log.Printf("expire payments error: %v", err)
			} else if len(expired) > 0 {
				log.Printf("expired %d stale pending payments", len(expired))
			}
		case s := <-sig:
			log.Printf("received signal %v, shutting down", s)
			return
		}
	}
}
