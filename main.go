package main

import (
	"log"
	"net/http"

	"go.uber.org/zap"

	"github.com/tallyline/survey-engine/pkg/config"
	"github.com/tallyline/survey-engine/pkg/handlers"
	"github.com/tallyline/survey-engine/pkg/ingest"
	"github.com/tallyline/survey-engine/pkg/llm"
	"github.com/tallyline/survey-engine/pkg/middleware"
	"github.com/tallyline/survey-engine/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("llm_endpoint", cfg.LLM.APIURL),
		zap.String("llm_model", cfg.LLM.ModelName),
		zap.Int("batch_size", cfg.Analysis.BatchSize),
		zap.String("admission_policy", cfg.Analysis.ColumnAdmissionPolicy))

	client, err := llm.NewClient(&llm.Config{
		Endpoint:    cfg.LLM.APIURL,
		Model:       cfg.LLM.ModelName,
		APIKey:      cfg.LLM.APIKey,
		Temperature: cfg.LLM.Temperature,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to create LLM client", zap.Error(err))
	}

	controller := services.NewController(cfg.Analysis, client, logger)

	mux := http.NewServeMux()

	healthHandler := handlers.NewHealthHandler(cfg, logger)
	healthHandler.RegisterRoutes(mux)

	surveysHandler := handlers.NewSurveysHandler(controller, ingest.NewWorkbookReader(), cfg, logger)
	surveysHandler.RegisterRoutes(mux)

	handler := middleware.RequestLogger(logger)(mux)

	addr := cfg.BindAddr + ":" + cfg.Port
	logger.Info("Starting survey-engine",
		zap.String("addr", addr),
		zap.String("version", cfg.Version))
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}

// newLogger builds a development logger locally and a production logger
// everywhere else.
func newLogger(env string) (*zap.Logger, error) {
	if env == "local" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
