package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/sciportal/sciportal-api/api/swagger"
	"github.com/sciportal/sciportal-api/internal/handler"
	"github.com/sciportal/sciportal-api/internal/middleware"
	"github.com/sciportal/sciportal-api/internal/repository"
	"github.com/sciportal/sciportal-api/internal/service"
	"github.com/sciportal/sciportal-api/pkg/cache"
	"github.com/sciportal/sciportal-api/pkg/config"
	"github.com/sciportal/sciportal-api/pkg/database"
	"github.com/sciportal/sciportal-api/pkg/logger"
	corsmiddleware "github.com/sciportal/sciportal-api/pkg/middleware/cors"
	reqidmiddleware "github.com/sciportal/sciportal-api/pkg/middleware/requestid"
	"github.com/sciportal/sciportal-api/pkg/storage"
)

// @title Scientific Repository API
// @version 1.0.0
// @description Portal for registering and searching scientific production
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	store, err := storage.NewObjectStore(cfg.Storage)
	if err != nil {
		logr.Sugar().Fatalw("failed to init object storage", "error", err)
	}

	metricsSvc := service.NewMetricsService()

	var redisClient *redis.Client
	var cacheRepo service.CacheRepository
	if cfg.Cache.Enabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect to redis", "error", err)
		}
		defer redisClient.Close()
		cacheRepo = repository.NewCacheRepository(redisClient, logr)
	}
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.TTL, logr, cfg.Cache.Enabled)

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	eventRepo := repository.NewEventRepository(db)
	documentRepo := repository.NewDocumentRepository(db)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	userSvc := service.NewUserService(userRepo, validate, logr)
	courseSvc := service.NewCourseService(courseRepo, cacheSvc, validate, logr)
	eventSvc := service.NewEventService(eventRepo, cacheSvc, validate, logr)
	documentSvc := service.NewDocumentService(documentRepo, userRepo, cacheSvc, validate, logr)
	uploadSvc := service.NewUploadService(store, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	userHandler := handler.NewUserHandler(userSvc)
	courseHandler := handler.NewCourseHandler(courseSvc)
	eventHandler := handler.NewEventHandler(eventSvc)
	documentHandler := handler.NewDocumentHandler(documentSvc)
	fileHandler := handler.NewFileHandler(uploadSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	authRequired := middleware.JWT(authSvc)

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "scientific repository api"})
	})
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	r.POST("/login", authHandler.Login)
	r.GET("/me", authRequired, authHandler.Me)
	r.POST("/user", userHandler.Create)

	r.GET("/course", courseHandler.List)
	r.POST("/course", courseHandler.Create)
	r.GET("/event", eventHandler.List)
	r.POST("/event", eventHandler.Create)
	r.GET("/keywords", documentHandler.Keywords)

	r.POST("/upload", authRequired, fileHandler.Upload)
	r.GET("/files/:id", fileHandler.Download)

	r.GET("/documents", documentHandler.List)
	r.POST("/documents", authRequired, documentHandler.Create)
	r.GET("/documents/my-publications", authRequired, documentHandler.MyPublications)
	r.GET("/documents/:id", documentHandler.Get)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
