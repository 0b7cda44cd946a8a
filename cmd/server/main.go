package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"tinkoff-pay/internal/config"
	"tinkoff-pay/internal/currency"
	"tinkoff-pay/internal/logger"
	"tinkoff-pay/internal/middleware"
	"tinkoff-pay/internal/payment"
	"tinkoff-pay/internal/payment/checkout"
	"tinkoff-pay/internal/payment/webhook"
	"tinkoff-pay/internal/tinkoff"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	client := tinkoff.NewClient(
		cfg.TinkoffTerminalKey,
		cfg.TinkoffSecretKey,
		cfg.TinkoffAPIURL,
		tinkoff.WithTimeout(cfg.TinkoffTimeout),
	)
	newDriver, err := newDriverFactory(cfg, currency.ISO4217(), client)
	if err != nil {
		logger.L().Fatal("invalid payment configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	limiter := middleware.NewLimiter()
	go limiter.RunCleanup(time.Minute, ctx.Done())

	router := setupRouter(
		checkout.NewHandler(newDriver).CreatePaymentHandler,
		webhook.NewWebhookHandler(newDriver, webhook.LogProcessor{}).NotificationHandler,
		limiter,
	)

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.L().Info(fmt.Sprintf("server running at http://localhost:%s/", cfg.AppPort),
		zap.String("terminal_key", cfg.TinkoffTerminalKey),
		zap.String("api_url", cfg.TinkoffAPIURL),
	)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.L().Fatal("server stopped", zap.Error(err))
	}
}

// newDriverFactory resolves the default currency once so a bad
// TINKOFF_DEFAULT_CURRENCY fails at startup rather than on every checkout.
func newDriverFactory(cfg *config.Config, currencies currency.Table, api payment.MerchantAPI) (payment.DriverFactory, error) {
	if _, err := currencies.Lookup(cfg.TinkoffDefaultCurrency); err != nil {
		return nil, fmt.Errorf("TINKOFF_DEFAULT_CURRENCY: %w", err)
	}

	return payment.NewDriverFactory(
		payment.TinkoffConfig{
			MerchantID:      cfg.TinkoffTerminalKey,
			SecretKey:       cfg.TinkoffSecretKey,
			APIURL:          cfg.TinkoffAPIURL,
			DefaultCurrency: cfg.TinkoffDefaultCurrency,
		},
		currencies,
		payment.WithMerchantAPI(api),
	), nil
}

func setupRouter(createPayment, notification http.HandlerFunc, limiter *middleware.Limiter) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/payments", createPayment)
	mux.HandleFunc("/webhook/tinkoff", notification)

	var h http.Handler = mux
	h = limiter.Middleware(h)
	h = logger.LoggingMiddleware(h)
	h = logger.RequestIDMiddleware(h)
	return h
}
