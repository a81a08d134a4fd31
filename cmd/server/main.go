package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"

	"metro/internal/app"
	"metro/internal/config"
	"metro/internal/handler"
	"metro/internal/middleware"
	"metro/internal/qr"
	internalRedis "metro/internal/redis"
	"metro/internal/service"
	"metro/internal/session"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("%v", err)
	}
}

func run() error {
	var envFile, port, networkFile string

	flags := pflag.NewFlagSet("metro-server", pflag.ContinueOnError)
	flags.StringVar(&envFile, "env-file", "", "load environment variables from this .env file first")
	flags.StringVarP(&port, "port", "p", "", "HTTP port (overrides SERVER_PORT)")
	flags.StringVar(&networkFile, "network", "", "YAML station network file (overrides NETWORK_FILE)")
	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	// Load configuration.
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}
	if port != "" {
		cfg.Server.Port = port
	}
	if networkFile != "" {
		cfg.Booking.NetworkFile = networkFile
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic FIRST so Redis can be instrumented.
	var nrApp *newrelic.Application
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			log.Printf("failed to initialize New Relic: %v", err)
		} else {
			log.Printf("New Relic enabled: app=%s", cfg.NewRelic.AppName)
		}
	}

	network := service.DefaultNetwork()
	if cfg.Booking.NetworkFile != "" {
		network, err = service.LoadNetworkFile(cfg.Booking.NetworkFile)
		if err != nil {
			return fmt.Errorf("failed to load network: %w", err)
		}
	}
	log.Printf("Loaded network %q: %d stations, %d ticket types",
		network.Name, len(network.Stations()), len(network.TicketTypes()))

	var redisClient *redis.Client
	if cfg.Session.Backend == config.SessionBackendRedis {
		redisClient, err = app.NewRedisClient(ctx, cfg.Redis, nrApp)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer redisClient.Close()
		log.Println("Connected to Redis")
	}

	// Wire dependencies.
	server, err := wireServer(cfg, network, redisClient, nrApp)
	if err != nil {
		return err
	}

	// Start server in goroutine.
	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-quit:
	}
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	if nrApp != nil {
		nrApp.Shutdown(5 * time.Second)
	}

	log.Println("Server exited")
	return nil
}

// wireServer wires all dependencies and returns the HTTP server.
func wireServer(cfg *config.Config, network *service.Network, redisClient *redis.Client, nrApp *newrelic.Application) (*http.Server, error) {
	// Session storage.
	var sessions session.Store
	var locker session.Locker
	var responses middleware.ResponseCache
	if redisClient != nil {
		sessions = internalRedis.NewSessionStore(redisClient, cfg.Session.TTL)
		locker = internalRedis.NewLockStore(redisClient)
		responses = internalRedis.NewResponseCache(redisClient)
	} else {
		sessions = session.NewMemoryStore(cfg.Session.TTL)
		locker = session.NewMemoryLocker()
		responses = middleware.NewMemoryResponseCache(0)
	}

	// Initialize services.
	gateway := service.NewSimulatedGateway(service.SimulatedGatewayConfig{
		Delay:       cfg.Payment.Delay,
		SuccessRate: cfg.Payment.SuccessRate,
	})
	bookingService := service.NewBookingService(service.BookingDeps{
		Network:       network,
		Schedule:      service.NewScheduleService(nil),
		Payments:      service.NewPaymentService(gateway, nil),
		Issuer:        service.NewTicketIssuer(qr.NewEncoder(), nil, nil),
		Notifications: service.NewNotificationService(),
		Sessions:      sessions,
		Locker:        locker,
	})
	docs := service.NewDocumentService(cfg.Booking.TicketCacheSize)

	// Create router.
	router, err := app.NewRouter(app.RouterDeps{
		PageHandler:    handler.NewPageHandler(bookingService, docs, sessions),
		BookingHandler: handler.NewBookingHandler(bookingService, sessions),
		PaymentHandler: handler.NewPaymentHandler(bookingService),
		TicketHandler:  handler.NewTicketHandler(bookingService, docs),
		Sessions:       sessions,
		SessionOptions: middleware.SessionOptions{
			CookieName: cfg.Session.CookieName,
			TTL:        cfg.Session.TTL,
			Secure:     cfg.Session.SecureCookie,
		},
		CORSOrigins: cfg.Server.CORSAllowedOrigins,
		Responses:   responses,
		NewRelicApp: nrApp,
	})
	if err != nil {
		return nil, err
	}

	// Create HTTP server.
	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, nil
}
