package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aurevo/aurevo-server/internal/cache"
	"github.com/aurevo/aurevo-server/internal/db"
	"github.com/aurevo/aurevo-server/internal/docstore"
	"github.com/aurevo/aurevo-server/internal/handlers"
	"github.com/aurevo/aurevo-server/internal/logger"
	"github.com/aurevo/aurevo-server/internal/middleware"
	"github.com/aurevo/aurevo-server/internal/repos"
	"github.com/aurevo/aurevo-server/internal/server"
	"github.com/aurevo/aurevo-server/internal/services"
	"github.com/aurevo/aurevo-server/internal/store"
	"github.com/aurevo/aurevo-server/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	log.Info("Loading environment variables from main...")
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	accessTokenTTL := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
	indexConfigPath := utils.GetEnv("INDEX_CONFIG_PATH", "config/indexes.yaml", log)
	httpPort := utils.GetEnv("HTTP_PORT", "8080", log)
	shutdownTimeout := utils.GetEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second, log)

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Warn("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Document store
	indexes, err := docstore.LoadIndexes(indexConfigPath)
	if err != nil {
		log.Warn("Index config load failed, ordered queries will fall back", "error", err)
		indexes = docstore.Indexes{}
	}
	docs := docstore.NewGormStore(thePG, log, indexes)

	// Cache
	var c cache.Cache
	c, err = cache.NewRedisCache(log)
	if err != nil {
		log.Warn("Redis init failed, falling back to in-memory cache", "error", err)
		c = cache.NewMemoryCache()
	}

	// Repos
	log.Info("Setting up Repos from main...")
	userRepo := repos.NewUserRepo(thePG, log)

	// Stores
	log.Info("Setting up store registry from main...")
	registry := store.NewRegistry(docs, c, log)

	// Services
	log.Info("Setting up Services from main...")
	authService := services.NewAuthService(thePG, log, userRepo, jwtSecretKey, time.Duration(accessTokenTTL)*time.Second)

	// Handlers
	log.Info("Setting up Handlers from main...")
	authHandler := handlers.NewAuthHandler(authService, registry)
	authMiddleware := middleware.NewAuthMiddleware(log, authService)
	profileHandler := handlers.NewProfileHandler(registry)
	moodHandler := handlers.NewMoodHandler(registry)
	wellnessHandler := handlers.NewWellnessHandler(registry)
	taskHandler := handlers.NewTaskHandler(registry)
	goalHandler := handlers.NewGoalHandler(registry)
	sessionHandler := handlers.NewSessionHandler(registry)
	habitHandler := handlers.NewHabitHandler(registry)
	notificationHandler := handlers.NewNotificationHandler(registry)
	socialHandler := handlers.NewSocialHandler(registry)

	router := server.NewRouter(server.RouterConfig{
		AuthHandler:         authHandler,
		AuthMiddleware:      authMiddleware,
		ProfileHandler:      profileHandler,
		MoodHandler:         moodHandler,
		WellnessHandler:     wellnessHandler,
		TaskHandler:         taskHandler,
		GoalHandler:         goalHandler,
		SessionHandler:      sessionHandler,
		HabitHandler:        habitHandler,
		NotificationHandler: notificationHandler,
		SocialHandler:       socialHandler,
	})

	srv := &http.Server{
		Addr:    ":" + httpPort,
		Handler: router,
	}

	go func() {
		log.Info("Starting HTTP server", "port", httpPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// Pending debounced syncs flush before the process exits.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	registry.FlushAll(shutdownCtx)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP shutdown error", "error", err)
	}
	log.Info("Shutdown complete")
}
