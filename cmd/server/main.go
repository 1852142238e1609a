package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Abdurahmanit/webimoveis/internal/adapter/auth"
	httpadapter "github.com/Abdurahmanit/webimoveis/internal/adapter/http"
	natsadapter "github.com/Abdurahmanit/webimoveis/internal/adapter/messaging/nats"
	"github.com/Abdurahmanit/webimoveis/internal/adapter/repository/cache"
	"github.com/Abdurahmanit/webimoveis/internal/adapter/repository/mongodb"
	"github.com/Abdurahmanit/webimoveis/internal/adapter/storage/s3"
	"github.com/Abdurahmanit/webimoveis/internal/config"
	"github.com/Abdurahmanit/webimoveis/internal/listing/domain"
	"github.com/Abdurahmanit/webimoveis/internal/listing/usecase"
	"github.com/Abdurahmanit/webimoveis/internal/mailer"
	"github.com/Abdurahmanit/webimoveis/internal/platform/logger"
	"github.com/Abdurahmanit/webimoveis/internal/platform/metrics"
	"github.com/Abdurahmanit/webimoveis/internal/platform/tracer"
	"github.com/Abdurahmanit/webimoveis/internal/session"
)

func main() {
	configPath := flag.String("config", "", "path to a config file or directory")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.New(&logger.LoggerConfig{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		OutputFile: cfg.Log.Output,
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tp, err := tracer.InitTracer(ctx, cfg.Tracing.ServiceName, cfg.Tracing.Endpoint)
	if err != nil {
		appLogger.Error("Failed to initialize tracer", "error", err.Error())
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			appLogger.Error("Failed to shutdown tracer provider", "error", err.Error())
		}
	}()

	metricsManager := metrics.NewMetricsManager(cfg.Metrics.Namespace)

	mongoClient, err := mongodb.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.ConnectTimeout)
	if err != nil {
		appLogger.Error("Failed to connect to MongoDB", "error", err.Error())
		os.Exit(1)
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			appLogger.Error("Failed to disconnect MongoDB", "error", err.Error())
		}
	}()
	db := mongoClient.Database(cfg.Mongo.Database)

	listingRepo := mongodb.NewListingRepository(db, cfg.Mongo.Collection, appLogger)
	userRepo := mongodb.NewUserRepository(db, appLogger)
	if err := listingRepo.EnsureIndexes(ctx); err != nil {
		appLogger.Warn("Failed to ensure listing indexes", "error", err.Error())
	}
	if err := userRepo.EnsureIndexes(ctx); err != nil {
		appLogger.Warn("Failed to ensure user indexes", "error", err.Error())
	}

	localStorage, err := cache.NewLocalStorage(ctx, cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.Namespace)
	if err != nil {
		appLogger.Error("Failed to connect to Redis", "error", err.Error())
		os.Exit(1)
	}
	defer localStorage.Close()

	storage, err := s3.NewS3Storage(ctx, cfg.MinIO.Endpoint, cfg.MinIO.AccessKey, cfg.MinIO.SecretKey, cfg.MinIO.Bucket, cfg.MinIO.UseSSL, appLogger)
	if err != nil {
		appLogger.Error("Failed to initialize object storage", "error", err.Error())
		os.Exit(1)
	}

	publisher, err := natsadapter.NewPublisher(cfg.NATS.URL, cfg.NATS.ConnectTimeout, appLogger)
	if err != nil {
		appLogger.Error("Failed to connect to NATS", "error", err.Error())
		os.Exit(1)
	}
	defer publisher.Close()

	var mail domain.Mailer
	if cfg.SMTP.Enabled() {
		mail = mailer.NewSMTPMailer(cfg.SMTP, appLogger.Named("mailer"))
	} else {
		appLogger.Info("SMTP not configured, confirmation emails disabled")
	}

	provider := auth.NewProvider(userRepo, localStorage, publisher, cfg.Redis.Namespace, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, appLogger.Named("auth"))
	sessionStore := session.NewStore(provider, appLogger.Named("session"))
	if err := sessionStore.Subscribe(); err != nil {
		appLogger.Error("Failed to subscribe to auth state", "error", err.Error())
		os.Exit(1)
	}
	defer sessionStore.Close()

	home := usecase.NewQueryEngine(listingRepo, sessionStore, metricsManager, appLogger.Named("home"))
	dashboard := usecase.NewQueryEngine(listingRepo, sessionStore, metricsManager, appLogger.Named("dashboard"))
	uploads := usecase.NewUploadCache(storage, localStorage, sessionStore, metricsManager, appLogger.Named("uploads"))
	listings := usecase.NewListingUsecase(listingRepo, storage, publisher, mail, metricsManager, appLogger.Named("listings"))
	listings.RegisterResultSet(home)
	listings.RegisterResultSet(dashboard)

	if err := uploads.Restore(ctx); err != nil {
		appLogger.Warn("Failed to restore pending images", "error", err.Error())
	}
	if err := home.LoadAll(ctx); err != nil {
		appLogger.Warn("Initial listing load failed", "error", err.Error())
	}

	handler := httpadapter.NewHandler(httpadapter.Deps{
		Session:        sessionStore,
		Auth:           provider,
		Home:           home,
		Dashboard:      dashboard,
		Uploads:        uploads,
		Listings:       listings,
		Logger:         appLogger.Named("http"),
		MaxUploadBytes: cfg.HTTP.MaxUploadBytes,
	})
	server, cleanup := httpadapter.NewServer(cfg.HTTP, httpadapter.NewRouter(handler, metricsManager), appLogger)

	go func() {
		appLogger.Info("Starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("HTTP server failed", "error", err.Error())
			stop()
		}
	}()

	<-ctx.Done()
	appLogger.Info("Shutdown signal received")
	cleanup(context.Background())
}
