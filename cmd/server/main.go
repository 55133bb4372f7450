package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/calebc9298-pixel/fencepost/internal/api"
	"github.com/calebc9298-pixel/fencepost/internal/config"
	"github.com/calebc9298-pixel/fencepost/internal/repository/mongo"
	"github.com/calebc9298-pixel/fencepost/internal/service"
	"github.com/calebc9298-pixel/fencepost/internal/storage"
	"github.com/calebc9298-pixel/fencepost/internal/uploader"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
)

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "fencepost",
	})
	logger.Info("Starting Fencepost server...")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Fatal("Could not load config", "err", err)
	}
	logger.Info("Configuration loaded.")

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		logger.Fatal("Could not connect to MongoDB", "err", err)
	}
	defer func() {
		logger.Info("Disconnecting MongoDB...")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			logger.Error("Failed to disconnect MongoDB", "err", err)
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	logger.Info("Database connection established.")

	// --- Ensure Indexes ---
	go func() { // Run index creation concurrently/in background
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		mongo.EnsureUserIndexes(ctx, appDB.Collection("users"))
		mongo.EnsurePostIndexes(ctx, appDB.Collection("posts"))
		mongo.EnsureCommentIndexes(ctx, appDB.Collection("comments"))
		mongo.EnsureNotificationIndexes(ctx, appDB.Collection("notifications"))
		mongo.EnsureFieldIndexes(ctx, appDB.Collection("fields"))
		mongo.EnsureFieldCostIndexes(ctx, appDB.Collection("fieldCosts"))
		mongo.EnsureRainfallIndexes(ctx, appDB.Collection("rainfall"))
		mongo.EnsureUploadIndexes(ctx, appDB.Collection("uploads"))
		logger.Info("Index creation process completed.")
	}()

	// --- Initialize Storage ---
	logger.Info("Initializing object storage...")
	objectStore, err := storage.NewS3Store(cfg.S3, logger)
	if err != nil {
		logger.Fatal("Failed to initialize S3 storage", "err", err)
	}

	// --- Initialize Repositories ---
	userRepo := mongo.NewMongoUserRepository(appDB)
	postRepo := mongo.NewMongoPostRepository(appDB)
	commentRepo := mongo.NewMongoCommentRepository(appDB)
	interactionsRepo := mongo.NewMongoInteractionsRepository(appDB)
	notificationRepo := mongo.NewMongoNotificationRepository(appDB)
	fieldRepo := mongo.NewMongoFieldRepository(appDB)
	fieldCostRepo := mongo.NewMongoFieldCostRepository(appDB)
	rainfallRepo := mongo.NewMongoRainfallRepository(appDB)
	uploadRepo := mongo.NewMongoUploadRepository(appDB)

	// --- Initialize Services ---
	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration)
	postService := service.NewPostService(postRepo, commentRepo, interactionsRepo, notificationRepo, userRepo, rainfallRepo, logger)
	notificationService := service.NewNotificationService(notificationRepo)
	profileService := service.NewProfileService(userRepo, rainfallRepo)
	fieldService := service.NewFieldService(fieldRepo, fieldCostRepo, logger)

	// --- Media Upload Pipeline ---
	up := uploader.New(uploader.Params{
		Store:  objectStore,
		Tokens: authService,
		Capabilities: uploader.Capabilities{
			SingleShotFallback: true,
			RESTFallback:       true,
		},
		StallWindow:  time.Duration(cfg.Upload.StallMs) * time.Millisecond,
		FetchTimeout: cfg.Upload.FetchTimeout,
		Diagnostics: uploader.Diagnostics{
			Enabled: cfg.Upload.Debug,
			Logger:  logger,
		},
	})
	mediaService := service.NewMediaService(up, uploadRepo, userRepo, logger)

	if cfg.Upload.Debug {
		// Connectivity probe surfaces storage misconfiguration at startup
		// instead of on the first real upload.
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if url, err := up.Probe(ctx); err != nil {
				logger.Warn("storage connectivity probe failed", "err", err)
			} else {
				logger.Info("storage connectivity probe ok", "url", url)
			}
		}()
	}

	// --- Initialize Gin Engine ---
	router := gin.Default() // Includes Logger and Recovery middleware

	// --- Setup Routes ---
	api.SetupRoutes(router, cfg.JWT.Secret, authService, postService, notificationService, profileService, fieldService, mediaService)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	logger.Info("Server starting", "address", cfg.Server.Address)

	// --- Graceful Shutdown ---
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("ListenAndServe error", "err", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		logger.Fatal("Server forced to shutdown", "err", err)
	}

	logger.Info("Server exiting.")
}
