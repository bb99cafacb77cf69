package builder

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/claimwise/intake-backend/internal/api"
	interviewapi "github.com/claimwise/intake-backend/internal/api/interview"
	"github.com/claimwise/intake-backend/internal/catalog"
	"github.com/claimwise/intake-backend/internal/config"
	"github.com/claimwise/intake-backend/internal/integration/callback"
	"github.com/claimwise/intake-backend/internal/integration/scoring"
	"github.com/claimwise/intake-backend/internal/integration/speech"
	"github.com/claimwise/intake-backend/internal/pkg/formatter"
	"github.com/claimwise/intake-backend/internal/pkg/validator"
	"github.com/claimwise/intake-backend/internal/repository"
	"github.com/claimwise/intake-backend/internal/rules"
	"github.com/claimwise/intake-backend/internal/store"
	interviewuc "github.com/claimwise/intake-backend/internal/usecase/interview"
	"github.com/claimwise/intake-backend/internal/voice"
	"go.uber.org/zap"
)

func Build() (*App, error) {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := setupLogger(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	logger.Info("Building application",
		zap.String("environment", cfg.Environment),
		zap.String("server_addr", cfg.ServerAddr),
	)

	// Setup database connection
	db, err := setupDatabase(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("setup database: %w", err)
	}

	// Run database migrations
	logger.Info("Running database migrations")
	if err := repository.RunMigrations(cfg.DatabaseURL); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("Database migrations completed successfully")

	// Load the question catalog and follow-up rule table
	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("load question catalog: %w", err)
	}
	ruleEngine, err := rules.Load(cfg.RulesPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("load rule table: %w", err)
	}
	logger.Info("Question catalog loaded",
		zap.Int("questions", cat.Len()),
		zap.Int("start_sequence", len(cat.StartSequence())),
		zap.Int("rules", ruleEngine.Len()),
	)

	// Initialize repositories
	interviewRepo := repository.NewInterviewPostgres(db)
	answerRepo := repository.NewAnswerPostgres(db)
	documentRepo := repository.NewDocumentPostgres(db)
	logger.Info("Repositories initialized")

	// Initialize connectors
	callbackConnector := callback.NewConnector(cfg.CallbackConnectorCfg, logger)

	// Initialize external service connectors (with mock support)
	var speechConnector interviewuc.SpeechConnector
	var scoringConnector interviewuc.ScoringConnector
	var synth voice.Synthesizer
	var recognizer voice.Recognizer
	var recorder voice.Recorder

	if cfg.EnableMocks {
		logger.Info("Using mock connectors for external services")
		speechMock := speech.NewMockConnector(logger)
		speechConnector = speechMock
		synth = speechMock
		recognizer = speechMock
		recorder = speechMock.Recorder()
		scoringConnector = scoring.NewMockConnector(logger)
	} else {
		logger.Info("Using real connectors for external services")
		speechConn := speech.NewConnector(cfg.SpeechConnectorCfg, logger)
		speechConnector = speechConn
		synth = speechConn
		recognizer = speechConn
		recorder = speechConn.Recorder()
		scoringConnector = scoring.NewConnector(cfg.ScoringConnectorCfg, logger)
	}

	// Initialize validators
	requestValidator := validator.NewValidator(cfg.FileUploadCfg)
	logger.Info("Validators initialized")

	// Live session cache
	live := store.NewLive(cfg.SessionTTL)

	// Initialize use case
	interviewUC := interviewuc.NewUsecase(
		interviewRepo,
		answerRepo,
		documentRepo,
		requestValidator,
		cat,
		ruleEngine,
		live,
		formatter.NewFactory(),
		speechConnector,
		scoringConnector,
		callbackConnector,
		synth,
		recognizer,
		recorder,
		voice.Config{
			FallbackCeiling: cfg.VoiceCfg.FallbackRecordLimit,
			SettleDelay:     cfg.VoiceCfg.AutoSubmitSettleDelay,
		},
		logger,
	)
	logger.Info("Use cases initialized")

	// Setup API handlers
	interviewHandler := interviewapi.NewHandler(interviewUC, requestValidator)
	logger.Info("API handlers initialized")

	// Setup router
	router := api.SetupRouter(interviewHandler, logger)
	logger.Info("HTTP router configured")

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("Application built successfully",
		zap.String("environment", cfg.Environment),
	)

	return &App{
		server: server,
		db:     db,
		live:   live,
		logger: logger,
	}, nil
}
