package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	pkgRetry "github.com/claimwise/intake-backend/internal/pkg/retry"
	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	// Server configuration
	ServerAddr string `env:"SERVER_ADDR,notEmpty"`

	// Database configuration
	DatabaseURL         string        `env:"DATABASE_URL,notEmpty"`
	DBMaxConns          int           `env:"DB_MAX_CONNS" envDefault:"25"`
	DBMinConns          int           `env:"DB_MIN_CONNS" envDefault:"5"`
	DBMaxConnLifetime   time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	DBMaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"30m"`
	DBHealthCheckPeriod time.Duration `env:"DB_HEALTH_CHECK_PERIOD" envDefault:"1m"`

	// External service configurations
	SpeechConnectorCfg   SpeechConnectorConfig   `envPrefix:"SPEECH_"`
	ScoringConnectorCfg  ScoringConnectorConfig  `envPrefix:"SCORING_"`
	CallbackConnectorCfg CallbackConnectorConfig `envPrefix:"CALLBACK_"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL,notEmpty"`

	// File upload configuration
	FileUploadCfg FileUploadConfig `envPrefix:"FILE_UPLOAD_"`

	// Question catalog and follow-up rule table (JSON files)
	CatalogPath string `env:"CATALOG_PATH" envDefault:"internal/config/catalog.json"`
	RulesPath   string `env:"RULES_PATH" envDefault:"internal/config/rules.json"`

	// Voice capture configuration
	VoiceCfg VoiceConfig `envPrefix:"VOICE_"`

	// Live session cache
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"2h"`

	// Mock configuration
	EnableMocks bool `env:"ENABLE_MOCKS,notEmpty"`

	// Environment (set from flag, not from env var)
	Environment string
}

// VoiceConfig tunes the voice capture state machine
type VoiceConfig struct {
	// FallbackRecordLimit is the hard ceiling of the recording fallback path
	FallbackRecordLimit time.Duration `env:"FALLBACK_RECORD_LIMIT" envDefault:"10s"`
	// AutoSubmitSettleDelay is the pause before a finished transcript is auto-submitted
	AutoSubmitSettleDelay time.Duration `env:"AUTO_SUBMIT_SETTLE_DELAY" envDefault:"400ms"`
}

type SpeechConnectorConfig struct {
	HTTPClientConfig
	SynthesizeEndpoint  string               `env:"SYNTHESIZE_ENDPOINT,notEmpty"`
	TranscribeEndpoint  string               `env:"TRANSCRIBE_ENDPOINT,notEmpty"`
	RecognizeEndpoint   string               `env:"RECOGNIZE_ENDPOINT,notEmpty"`
	RecordEndpoint      string               `env:"RECORD_ENDPOINT,notEmpty"`
	RecognizerSupported bool                 `env:"RECOGNIZER_SUPPORTED" envDefault:"true"`
	Retry               pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type ScoringConnectorConfig struct {
	HTTPClientConfig
	ScoreEndpoint string               `env:"SCORE_ENDPOINT,notEmpty"`
	Retry         pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type CallbackConnectorConfig struct {
	HTTPClientConfig
	CallbackEndpoint string               `env:"ENDPOINT,notEmpty"`
	Retry            pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type HTTPClientConfig struct {
	RequestTimeout        time.Duration `env:"TIMEOUT,notEmpty"`
	ConnTimeout           time.Duration `env:"CONN_TIMEOUT,notEmpty"`
	KeepAlive             time.Duration `env:"KEEP_ALIVE,notEmpty"`
	IdleConnTimeout       time.Duration `env:"IDLE_CONN_TIMEOUT,notEmpty"`
	ResponseHeaderTimeout time.Duration `env:"RESPONSE_HEADER_TIMEOUT,notEmpty"`
	Token                 string        `env:"TOKEN"`
	Url                   string        `env:"SERVICE_URL,notEmpty"`
}

// FileUploadConfig holds file upload limits
type FileUploadConfig struct {
	MaxFileSize      int64 `env:"MAX_FILE_SIZE,notEmpty"`       // 5 MiB
	MaxAudioFileSize int64 `env:"MAX_AUDIO_FILE_SIZE,notEmpty"` // 25 MiB
	MaxUploadSize    int64 `env:"MAX_UPLOAD_SIZE,notEmpty"`     // 32 MB
}

func LoadConfig() (*Config, error) {
	envFlag := flag.String("env", "local", "Environment to run (local, prod, or custom)")
	flag.Parse()

	envFile := getEnvFile(*envFlag)
	// Try to load env file, but don't fail if it's missing.
	// In containerized/prod environments variables are usually set externally.
	if err := godotenv.Load(envFile); err != nil {
		fmt.Printf("Warning: could not load %s file (this is ok if env vars are set externally): %v\n", envFile, err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	cfg.Environment = *envFlag

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.DBMaxConns < 1 || cfg.DBMaxConns > 200 {
		return fmt.Errorf("DB_MAX_CONNS must be between 1 and 200, got %d", cfg.DBMaxConns)
	}

	if cfg.DBMinConns < 0 || cfg.DBMinConns > cfg.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS must be between 0 and DB_MAX_CONNS(%d), got %d", cfg.DBMaxConns, cfg.DBMinConns)
	}

	if cfg.VoiceCfg.FallbackRecordLimit < time.Second || cfg.VoiceCfg.FallbackRecordLimit > time.Minute {
		return fmt.Errorf("VOICE_FALLBACK_RECORD_LIMIT must be between 1s and 1m, got %s", cfg.VoiceCfg.FallbackRecordLimit)
	}

	if cfg.CatalogPath == "" {
		return fmt.Errorf("CATALOG_PATH must not be empty")
	}

	return nil
}

func getEnvFile(environment string) string {
	switch environment {
	case "prod", "production":
		return ".env.prod"
	case "local", "dev", "development":
		return ".env.local"
	default:
		return fmt.Sprintf(".env.%s", environment)
	}
}
