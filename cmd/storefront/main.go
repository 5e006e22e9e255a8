package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/Ixollozi/Lux-wood/internal/cart"
	"github.com/Ixollozi/Lux-wood/internal/catalog"
	"github.com/Ixollozi/Lux-wood/internal/checkout"
	"github.com/Ixollozi/Lux-wood/internal/config"
	"github.com/Ixollozi/Lux-wood/internal/content"
	"github.com/Ixollozi/Lux-wood/internal/i18n"
	"github.com/Ixollozi/Lux-wood/internal/inventory"
	"github.com/Ixollozi/Lux-wood/internal/janitor"
	"github.com/Ixollozi/Lux-wood/internal/messaging"
	"github.com/Ixollozi/Lux-wood/internal/notify"
	"github.com/Ixollozi/Lux-wood/internal/orders"
	"github.com/Ixollozi/Lux-wood/internal/telemetry"
)

const (
	serviceName    = "storefront"
	serviceVersion = "1.0.0"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	tel, err := telemetry.Init(ctx, serviceName, serviceVersion)
	if err != nil {
		logger.Error("failed to initialize telemetry", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}()

	db, err := telemetry.OpenDB("postgres", cfg.PostgresURL)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	if err := db.Ping(); err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	resolver := i18n.NewResolver(i18n.ParseLocale(cfg.DefaultLocale))

	var producer *messaging.Producer
	if brokers := cfg.Brokers(); len(brokers) > 0 {
		producer = messaging.NewProducer(brokers, cfg.OrderTopic)
		defer func() { _ = producer.Close() }()
	}

	var sinks []notify.Sink
	if cfg.TelegramEnabled() {
		sinks = append(sinks, notify.NewTelegramSink(cfg.TelegramBotToken, cfg.TelegramChatID))
	}
	if cfg.SMTPEnabled() {
		sinks = append(sinks, notify.NewSMTPSink(
			cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword,
			cfg.SMTPFrom, cfg.NotifyEmails))
	}
	dispatcher := notify.NewDispatcher(cfg.NotifyQueueSize, logger, sinks...)
	dispatcher.Start()
	defer dispatcher.Close()

	ledger := inventory.NewLedger(db)
	cartRepo := cart.NewPostgresRepository(db)
	cartStore := cart.NewStore(cartRepo, ledger).WithRetention(cfg.CartRetentionDays)

	catalogRepo := catalog.NewRepository(db)
	contentRepo := content.NewRepository(db)
	orderRepo := orders.NewRepository(db)

	processor := checkout.NewProcessor(db, cartStore, ledger, resolver, logger)

	sweeper := janitor.New(
		cartRepo,
		janitor.NewFileMarker(cfg.JanitorMarkerPath),
		time.Duration(cfg.JanitorIntervalHours)*time.Hour,
		cfg.CartRetentionDays,
		logger,
	)

	catalogHandler := catalog.NewHandler(catalogRepo, resolver, logger)
	inventoryHandler := inventory.NewHandler(ledger, logger)
	cartHandler := cart.NewHandler(cartStore, resolver, logger)
	checkoutHandler := checkout.NewHandler(cartStore, processor, producer, dispatcher, logger)
	orderHandler := orders.NewHandler(orderRepo, logger)
	contentHandler := content.NewHandler(contentRepo, resolver, dispatcher, logger)

	mux := http.NewServeMux()

	handle := func(pattern string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, telemetry.WithHTTPRoute(h))
	}

	handle("GET /products", catalogHandler.HandleList)
	handle("GET /products/{slug}", catalogHandler.HandleGet)
	handle("GET /categories", catalogHandler.HandleCategories)
	handle("POST /products/{id}/restock", inventoryHandler.HandleRestock)

	handle("GET /cart", cartHandler.HandleGet)
	handle("POST /cart/items", cartHandler.HandleAddItem)
	handle("PATCH /cart/items/{id}", cartHandler.HandleUpdateItem)
	handle("DELETE /cart/items/{id}", cartHandler.HandleRemoveItem)

	handle("POST /checkout", checkoutHandler.HandleCheckout)

	handle("GET /orders", orderHandler.HandleList)
	handle("GET /orders/{id}", orderHandler.HandleGet)
	handle("PATCH /orders/{id}/status", orderHandler.HandleUpdateStatus)

	handle("GET /content/banners", contentHandler.HandleBanners)
	handle("GET /content/advantages", contentHandler.HandleAdvantages)
	handle("GET /content/faqs", contentHandler.HandleFAQs)
	handle("GET /content/company", contentHandler.HandleCompany)
	handle("POST /content/contact", contentHandler.HandleContact)

	mux.Handle("GET /metrics", tel.MetricsHandler)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	handler := otelhttp.NewHandler(sweeper.Middleware(mux), "storefront")

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting storefront service", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}
