package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"

	"resumescreen/resume-screener/internal/config"
	"resumescreen/resume-screener/internal/handlers"
	"resumescreen/resume-screener/internal/services"
)

const (
	serviceName    = "resume-screening-backend"
	serviceVersion = "1.0.0"
)

func main() {
	cfg := config.Load()

	log := newLogger(cfg.Server.Env)
	log.Info("Config loaded successfully")

	// Services
	storageService := services.NewStorageService(cfg.Storage.ScratchDir, log)
	if err := storageService.EnsureScratchDir(); err != nil {
		log.Fatalf("Failed to create scratch directory: %v", err)
	}

	extractorService := services.NewPDFExtractorService(log)
	analyzerService := services.NewAnalyzerService(cfg.Analyzer, log)
	cacheStore := services.NewCacheStore(cfg.Cache, log)

	orchestratorService := services.NewOrchestratorService(
		storageService,
		extractorService,
		analyzerService,
		cacheStore,
		cfg.Worker.PoolSize,
		cfg.Storage.MaxFileSize,
		log,
	)
	log.Info("Services initialized successfully")

	// Handlers
	resumeHandler := handlers.NewResumeHandler(orchestratorService, analyzerService, log)
	cacheHandler := handlers.NewCacheHandler(cacheStore)

	// Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Resume Screening API",
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		BodyLimit:    int(cfg.Storage.MaxFileSize) * 4,
		ErrorHandler: customErrorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	// Routes
	api := app.Group("/api")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "healthy",
			"service":   serviceName,
			"timestamp": time.Now(),
		})
	})

	api.Get("/info", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"name":        "Resume Screening API",
			"version":     serviceVersion,
			"description": "AI-powered resume screening backend",
			"endpoints": []string{
				"/api/upload-resume",
				"/api/analyze-resume",
				"/api/health",
				"/api/info",
				"/api/cache-status",
			},
		})
	})

	api.Post("/upload-resume", resumeHandler.HandleUploadResume)
	api.Post("/analyze-resume", resumeHandler.HandleAnalyzeResume)
	api.Get("/cache-status", cacheHandler.HandleCacheStatus)

	// Pre-built frontend bundle
	app.Static("/", "./public")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info("Shutting down server...")
		if err := app.Shutdown(); err != nil {
			log.Errorf("Server forced to shutdown: %v", err)
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Infof("Server starting on %s", addr)
	if err := app.Listen(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func newLogger(env string) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)
	if env == "production" {
		log.SetFormatter(&logrus.JSONFormatter{})
		log.SetLevel(logrus.InfoLevel)
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		log.SetLevel(logrus.DebugLevel)
	}
	return log
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
