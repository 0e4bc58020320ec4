package main

import (
	"fmt"
	"log"

	"docfill/internal/analyzer"
	"docfill/internal/config"
	"docfill/internal/handler"
	"docfill/internal/oracle"
	"docfill/internal/oracle/claude"
	"docfill/internal/oracle/openrouter"
	"docfill/internal/port"
	"docfill/internal/repository/postgres"
	"docfill/internal/router"
	"docfill/internal/service"
	s3storage "docfill/internal/storage/s3"
	"docfill/internal/validator"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func registerOracleProviders() {
	oracle.RegisterProvider("openrouter", func(cfg *config.OracleProviderConfig) (port.SemanticOracle, error) {
		return openrouter.NewOracle(cfg), nil
	})
	oracle.RegisterProvider("claude", func(cfg *config.OracleProviderConfig) (port.SemanticOracle, error) {
		return claude.NewOracle(cfg), nil
	})
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	sessionRepo := postgres.NewSessionRepo(db)
	attemptRepo := postgres.NewAttemptRepo(db)

	// Initialize storage
	s3Client, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}

	// Initialize oracle chain
	registerOracleProviders()
	semanticOracle, err := oracle.BuildChain(&cfg.Oracle)
	if err != nil {
		return fmt.Errorf("failed to build oracle chain: %w", err)
	}
	if semanticOracle == nil {
		log.Printf("no oracle providers configured, running heuristic-only")
	}

	// Initialize services
	fieldAnalyzer := analyzer.New(semanticOracle)
	engine := validator.New()
	pipelineSvc := service.NewPipelineService(fieldAnalyzer, cfg.Upload.MaxFileSizeMB)
	sessionSvc := service.NewSessionService(pipelineSvc, engine, sessionRepo, attemptRepo, s3Client)

	// Initialize handlers
	documentH := handler.NewDocumentHandler(pipelineSvc)
	validationH := handler.NewValidationHandler(engine)
	sessionH := handler.NewSessionHandler(sessionSvc, cfg.S3.PresignExpiry)
	healthH := handler.NewHealthHandler(db)

	// Setup router
	r := router.Setup(cfg.CORS.AllowedOrigins, documentH, validationH, sessionH, healthH)

	log.Printf("Server starting on %s", cfg.Server.Port)
	if err := r.Run(cfg.Server.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}
