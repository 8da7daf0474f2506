package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/DolphinLong/dersdagitimprogrami-sub001/internal/handler"
	"github.com/DolphinLong/dersdagitimprogrami-sub001/internal/middleware"
	"github.com/DolphinLong/dersdagitimprogrami-sub001/internal/repository"
	"github.com/DolphinLong/dersdagitimprogrami-sub001/internal/service"
	"github.com/DolphinLong/dersdagitimprogrami-sub001/pkg/cache"
	"github.com/DolphinLong/dersdagitimprogrami-sub001/pkg/config"
	"github.com/DolphinLong/dersdagitimprogrami-sub001/pkg/database"
	"github.com/DolphinLong/dersdagitimprogrami-sub001/pkg/jobs"
	"github.com/DolphinLong/dersdagitimprogrami-sub001/pkg/logger"
	corsmiddleware "github.com/DolphinLong/dersdagitimprogrami-sub001/pkg/middleware/cors"
	reqidmiddleware "github.com/DolphinLong/dersdagitimprogrami-sub001/pkg/middleware/requestid"
)

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

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		// Caching is best-effort; the scheduler works without it.
		logr.Sugar().Warnw("redis unavailable, continuing without cache", "error", err)
		redisClient = nil
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	userRepo := repository.NewUserRepository(db)
	authSvc := service.NewAuthService(userRepo, validate, logr.Named("auth"), service.AuthConfig{
		TokenSecret: cfg.JWT.Secret,
		TokenExpiry: cfg.JWT.Expiration,
		Issuer:      "timetable-api",
	})

	scheduleSvc := service.NewScheduleService(service.ScheduleRepos{
		Classes:      repository.NewClassRepository(db),
		Teachers:     repository.NewTeacherRepository(db),
		Assignments:  repository.NewAssignmentRepository(db),
		Availability: repository.NewAvailabilityRepository(db),
		Entries:      repository.NewScheduleRepository(db),
		Runs:         repository.NewRunRepository(db),
		Config:       repository.NewConfigRepository(db),
	}, redisClient, metricsSvc, validate, logr.Named("schedule"), cfg.Scheduler)

	queue := jobs.NewQueue("generation", scheduleSvc.ExecuteTask, jobs.QueueConfig{
		Workers:    cfg.Jobs.Workers,
		BufferSize: cfg.Jobs.QueueSize,
		Logger:     logr.Named("jobs"),
	})
	queue.Start(context.Background())
	defer queue.Stop()
	scheduleSvc.AttachQueue(queue)

	authHandler := handler.NewAuthHandler(authSvc)
	schedulerHandler := handler.NewSchedulerHandler(scheduleSvc)
	scheduleHandler := handler.NewScheduleHandler(scheduleSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)

	authed := api.Group("", middleware.JWT(authSvc))
	authed.POST("/scheduler/runs", schedulerHandler.StartRun)
	authed.GET("/scheduler/runs/:id", schedulerHandler.RunStatus)
	authed.GET("/scheduler/runs/:id/report", schedulerHandler.RunReport)
	authed.GET("/schedule", scheduleHandler.List)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
