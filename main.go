package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/apex/log"
	"github.com/apex/log/handlers/json"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ItsNaunas/E-CTRL-sub001/analyzer"
	"github.com/ItsNaunas/E-CTRL-sub001/config"
	"github.com/ItsNaunas/E-CTRL-sub001/database"
	"github.com/ItsNaunas/E-CTRL-sub001/email"
	"github.com/ItsNaunas/E-CTRL-sub001/handlers"
	"github.com/ItsNaunas/E-CTRL-sub001/llm"
	"github.com/ItsNaunas/E-CTRL-sub001/metrics"
	"github.com/ItsNaunas/E-CTRL-sub001/middleware"
	"github.com/ItsNaunas/E-CTRL-sub001/openai"
	"github.com/ItsNaunas/E-CTRL-sub001/scraper"
	"github.com/ItsNaunas/E-CTRL-sub001/service"
	"github.com/ItsNaunas/E-CTRL-sub001/stubllm"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	log.SetHandler(json.New(os.Stdout))
	log.SetLevelFromString(cfg.LogLevel)
	logger := log.WithField("service", "ectrl-audit")

	if cfg.JWTSecret == "" {
		logger.Fatal("JWT_SECRET environment variable is required")
	}

	var generator llm.Client
	switch cfg.LLMProvider {
	case "stub":
		generator = stubllm.NewClient()
	default:
		if cfg.OpenAIAPIKey == "" {
			logger.Fatal("OPENAI_API_KEY environment variable is required")
		}
		generator = openai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	}

	db, err := database.NewDatabase(cfg)
	if err != nil {
		logger.WithError(err).Fatal("failed to initialize database")
	}
	defer db.Close()

	if err := db.CreateTables(); err != nil {
		logger.WithError(err).Fatal("failed to create tables")
	}

	auth := database.NewAuthService(db.GetDB(), cfg.JWTSecret, cfg.SessionTTL)
	if err := auth.CreateTables(); err != nil {
		logger.WithError(err).Fatal("failed to create auth tables")
	}

	metrics.Register()

	dispatcher := email.NewDispatcher(cfg, logger)
	orchestrator := service.NewOrchestrator(
		db,
		scraper.NewMarketplaceScraper(cfg.ScrapeTimeout, cfg.MarketplaceBaseURL),
		scraper.NewSiteScraper(cfg.ScrapeTimeout),
		analyzer.NewEngine(generator),
		dispatcher,
		cfg.StageTimeout,
		logger,
	)

	h := handlers.NewHandlers(orchestrator, auth, cfg.SessionTTL, logger)

	router := gin.Default()
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeaders())

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	{
		api.GET("/health", h.Health)
		api.POST("/audit", middleware.BotGate(), h.SubmitAudit)
		api.POST("/audit/email", h.CaptureEmail)
		api.POST("/suggest", middleware.BotGate(), h.Suggest)

		api.POST("/auth/register", h.Register)
		api.POST("/auth/login", h.Login)
		api.GET("/auth/me", middleware.SessionAuth(auth), h.Me)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.WithField("port", cfg.Port).Info("starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Fatal("server forced to shutdown")
	}

	logger.Info("server exited")
}
