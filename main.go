package main

import (
	"context"
	stderrors "errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"socialnet/cache"
	"socialnet/config"
	"socialnet/database"
	"socialnet/handlers"
	"socialnet/logger"
	"socialnet/repositories"
	"socialnet/repositories/memstore"
	"socialnet/routes"
	"socialnet/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	logger.InitLogger(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	checks := map[string]handlers.HealthCheck{}

	// Storage
	var store *repositories.Store
	var mongoClient *mongo.Client
	switch cfg.StorageBackend {
	case config.BackendMemory:
		logrus.Warn("Using in-memory storage, data is lost on restart")
		store = memstore.NewStore()
	default:
		mongoClient, err = database.ConnectMongo(ctx, cfg.MongoURI)
		if err != nil {
			logrus.WithError(err).Fatal("Failed to connect to MongoDB")
		}
		store, err = repositories.NewMongoStore(ctx, mongoClient.Database(cfg.MongoDatabase))
		if err != nil {
			logrus.WithError(err).Fatal("Failed to prepare MongoDB collections")
		}
		checks["mongodb"] = func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) }
	}

	// Redis
	var userCache cache.UserCache = cache.Noop{}
	redisClient, err := database.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to Redis")
	}
	if redisClient != nil {
		userCache = cache.NewRedisUserCache(redisClient, cfg.UserCacheTTL)
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	// Services
	tokenService := services.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	userService := services.NewUserService(store, userCache, bcrypt.DefaultCost)
	authService := services.NewAuthService(store.Users, tokenService, bcrypt.DefaultCost)
	friendService := services.NewFriendService(userService, store)
	postService := services.NewPostService(userService, store)
	commentService := services.NewCommentService(userService, store)

	var provider services.IdentityProvider
	if cfg.GoogleEnabled() {
		provider = services.NewGoogleProvider(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)
	} else {
		logrus.Info("Google OAuth not configured, /auth/google disabled")
	}

	if cfg.SeedUsersFile != "" {
		if err := services.SeedUsers(ctx, authService, store.Users, cfg.SeedUsersFile); err != nil {
			logrus.WithError(err).Error("Failed to seed users")
		}
	}

	router := routes.SetupRoutes(routes.Handlers{
		Auth:     handlers.NewAuthHandler(authService, provider, cfg.CookieHashKey, cfg.FrontendURL),
		Users:    handlers.NewUserHandler(userService, friendService),
		Posts:    handlers.NewPostHandler(postService),
		Comments: handlers.NewCommentHandler(commentService),
		System:   handlers.NewSystemHandler(checks),
	}, tokenService, cfg.AllowedOrigins)

	srv := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logrus.WithField("addr", cfg.ServerAddr).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("Server failed")
		}
	}()

	<-ctx.Done()
	logrus.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("Graceful shutdown failed")
	}
	closeClients(shutdownCtx, mongoClient, redisClient)
}

func closeClients(ctx context.Context, mongoClient *mongo.Client, redisClient *redis.Client) {
	if mongoClient != nil {
		if err := mongoClient.Disconnect(ctx); err != nil {
			logrus.WithError(err).Warn("Failed to disconnect from MongoDB")
		}
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logrus.WithError(err).Warn("Failed to close Redis client")
		}
	}
}
