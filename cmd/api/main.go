package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/smileworks/clinic-backend/internal/adapters/cache"
	"github.com/smileworks/clinic-backend/internal/adapters/database"
	"github.com/smileworks/clinic-backend/internal/adapters/events"
	"github.com/smileworks/clinic-backend/internal/adapters/search"
	"github.com/smileworks/clinic-backend/internal/api/handlers"
	"github.com/smileworks/clinic-backend/internal/api/middleware"
	"github.com/smileworks/clinic-backend/internal/api/routes"
	"github.com/smileworks/clinic-backend/internal/application/services"
	"github.com/smileworks/clinic-backend/internal/domain/providers"
	"github.com/smileworks/clinic-backend/internal/infrastructure/clients/postgres"
	"github.com/smileworks/clinic-backend/internal/infrastructure/clients/redis"
	"github.com/smileworks/clinic-backend/internal/infrastructure/clients/typesense"
	"github.com/smileworks/clinic-backend/internal/infrastructure/notifications"
	"github.com/smileworks/clinic-backend/internal/infrastructure/observability"
	"github.com/smileworks/clinic-backend/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Server.Environment)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	var metrics *observability.Metrics
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(
			ctx,
			cfg.OTEL.ServiceName,
			cfg.OTEL.ServiceVersion,
			cfg.OTEL.Endpoint,
		)
		if err != nil {
			log.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Warn().Err(err).Msg("error shutting down OpenTelemetry")
				}
			}()

			metrics, err = observability.InitMetrics()
			if err != nil {
				log.Fatal().Err(err).Msg("failed to initialize metrics")
			}
			log.Info().Msg("OpenTelemetry initialized")
		}
	}

	// The schedule gateway is the one hard dependency
	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()
	log.Info().Msg("PostgreSQL client initialized")

	// Redis powers caching and the live event stream; the clinic can run
	// without either.
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("failed to initialize Redis client, continuing without cache and event stream")
		redisClient = nil
	} else {
		defer redisClient.Close()
		log.Info().Msg("Redis client initialized")
	}

	typesenseClient, err := typesense.NewClient(&cfg.Typesense)
	if err != nil {
		log.Warn().Err(err).Msg("failed to initialize Typesense client, directory lookups fall back to the gateway")
		typesenseClient = nil
	} else {
		log.Info().Msg("Typesense client initialized")
	}

	// Initialize adapters
	personAdapter := database.NewPersonAdapter(pgClient)
	procedureAdapter := database.NewProcedureAdapter(pgClient)
	appointmentAdapter := database.NewAppointmentAdapter(pgClient)

	var cacheProvider providers.CacheProvider
	if redisClient != nil {
		cacheProvider = cache.NewRedisAdapter(redisClient)
	}

	var eventBus providers.EventBus
	if redisClient != nil {
		eventBus = events.NewRedisEventBus(redisClient)
		log.Info().Msg("event bus initialized")
	}

	var searchProvider providers.DirectorySearchProvider
	if typesenseClient != nil {
		adapter := search.NewTypesenseAdapter(typesenseClient)
		if err := adapter.InitSchema(context.Background()); err != nil {
			log.Warn().Err(err).Msg("failed to init Typesense schema")
		} else {
			searchProvider = adapter
		}
	}

	var mailer providers.Mailer
	if cfg.SMTP.Configured() {
		smtpMailer, err := notifications.NewSMTPMailer(&cfg.SMTP)
		if err != nil {
			log.Warn().Err(err).Msg("failed to initialize SMTP mailer")
		} else {
			mailer = smtpMailer
			log.Info().Msg("SMTP mailer initialized")
		}
	} else {
		log.Info().Msg("SMTP not configured, welcome emails disabled")
	}

	// Initialize services
	conflictChecker := services.NewConflictChecker(appointmentAdapter)
	appointmentService := services.NewAppointmentService(appointmentAdapter, procedureAdapter, conflictChecker, eventBus)
	patientService := services.NewPatientService(personAdapter, appointmentAdapter, mailer, searchProvider)
	directoryService := services.NewDirectoryService(personAdapter, procedureAdapter, searchProvider, cacheProvider, metrics)
	calendarService := services.NewCalendarService(appointmentAdapter, services.ColorPolicy(os.Getenv("CALENDAR_COLOR_POLICY")))

	// Initialize handlers
	appointmentHandler := handlers.NewAppointmentHandler(appointmentService)
	patientHandler := handlers.NewPatientHandler(patientService)
	directoryHandler := handlers.NewDirectoryHandler(directoryService)
	calendarHandler := handlers.NewCalendarHandler(calendarService)

	var eventsHandler *handlers.EventsHandler
	if eventBus != nil {
		eventsHandler = handlers.NewEventsHandler(eventBus)
	}

	auth := middleware.NewAuthMiddleware(cfg.Auth.JWTSecret)

	// Set up router
	router := routes.NewRouter(
		appointmentHandler,
		patientHandler,
		directoryHandler,
		calendarHandler,
		eventsHandler,
		auth,
		metrics,
	)
	handler := router.SetupRoutes()

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	// No write timeout so the SSE stream is not cut off
	server := &http.Server{
		Addr:        serverAddr,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", serverAddr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("server shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("error during server shutdown")
	}

	if eventBus != nil {
		if err := eventBus.Close(); err != nil {
			log.Warn().Err(err).Msg("error closing event bus")
		}
	}

	log.Info().Msg("server stopped")
}
