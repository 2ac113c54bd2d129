package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stayinn/backend/api"
	"github.com/stayinn/backend/config"
	"github.com/stayinn/backend/internal/service/booking"
	"github.com/stayinn/backend/internal/service/payment"
	"github.com/stayinn/backend/internal/service/rating"
	"github.com/stayinn/backend/internal/service/villas"
)

type Services struct {
	Bookings booking.BookingUseCase
	Payments payment.PaymentUseCase
	Ratings  rating.RatingUseCase
	Villas   villas.VillaUseCase
}

// Run starts the HTTP server and blocks until the context is canceled or the
// server fails.
func Run(ctx context.Context, cfg *config.Config, logger *slog.Logger, svcs Services) error {
	httpSrv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: newRouter(cfg.Env, svcs),
	}

	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.ListenAndServe() }()
	logger.Info("http server started", "addr", cfg.HTTP.Address)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

func newRouter(env string, svcs Services) *gin.Engine {
	if env != "dev" && env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	api.NewBookingHandler(svcs.Bookings).Register(v1.Group("/bookings"))
	api.NewPaymentHandler(svcs.Payments).Register(v1.Group("/payments"))
	api.NewRatingHandler(svcs.Ratings).Register(v1.Group("/ratings"))
	api.NewVillaHandler(svcs.Villas).Register(v1.Group("/villas"))

	return router
}
