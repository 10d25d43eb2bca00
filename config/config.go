package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"almabot/internal/adapters/logger"
	"almabot/internal/domain"
)

// Config holds all application configuration.
type Config struct {
	// Binance API
	APIKey    string
	SecretKey string
	IsTestnet bool

	// Market data
	Symbol         string
	Interval       string // candle interval, e.g. "15m"
	BufferCapacity int    // candles retained for evaluation

	// Filter parameters
	WindowLength int     // ALMA window, e.g. 20
	Offset       float64 // ALMA offset in [0,1], e.g. 0.85
	Sharpness    float64 // ALMA sharpness, e.g. 6.0
	TrendPeriod  int     // EMA period for the trend filter, 0 disables

	// Strategy
	StrategyVariant     domain.Variant
	UseSyntheticCandles bool
	EvaluationInterval  time.Duration // spacing of evaluation cycles

	// Risk
	CooldownCycles int
	MaxLots        int
	DefaultLots    int
	LotSize        float64 // contract quantity per lot

	// Execution
	DryRun bool

	// Database
	DBPath string

	// Logging
	LogLevel logger.LogLevel

	// Connection Settings
	ReconnectDelay       time.Duration
	MaxReconnectAttempts int
}

// LoadConfig loads configuration from environment variables (.env file).
func LoadConfig() (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	_ = godotenv.Load()

	cfg := &Config{}
	var errs []string // Collect validation errors

	// Binance API
	cfg.APIKey = getEnv("BINANCE_API_KEY", "")
	cfg.SecretKey = getEnv("BINANCE_API_SECRET", "")
	cfg.IsTestnet = getEnvAsBool("IS_TESTNET", true) // Default to testnet for safety
	cfg.DryRun = getEnvAsBool("DRY_RUN", true)       // Default to dry-run for safety

	// Live trading needs credentials; dry-run only touches public endpoints.
	if !cfg.DryRun {
		if cfg.APIKey == "" {
			errs = append(errs, "BINANCE_API_KEY must be set when DRY_RUN is false")
		}
		if cfg.SecretKey == "" {
			errs = append(errs, "BINANCE_API_SECRET must be set when DRY_RUN is false")
		}
	}

	// Market data
	cfg.Symbol = getEnv("SYMBOL", "ETHUSDT")
	if cfg.Symbol == "" {
		errs = append(errs, "SYMBOL must be set")
	}
	cfg.Interval = getEnv("INTERVAL", "15m")
	if cfg.Interval == "" {
		errs = append(errs, "INTERVAL must be set")
	}

	cfg.BufferCapacity = getEnvAsInt("BUFFER_CAPACITY", 500)
	if cfg.BufferCapacity <= 0 {
		errs = append(errs, "BUFFER_CAPACITY must be positive")
	}

	// Filter parameters
	cfg.WindowLength = getEnvAsInt("WINDOW_LENGTH", 20)
	if cfg.WindowLength <= 0 {
		errs = append(errs, "WINDOW_LENGTH must be positive")
	}
	cfg.Offset = getEnvAsFloat("OFFSET", 0.85)
	if cfg.Offset < 0 || cfg.Offset > 1 {
		errs = append(errs, "OFFSET must be between 0.0 and 1.0")
	}
	cfg.Sharpness = getEnvAsFloat("SHARPNESS", 6.0)
	if cfg.Sharpness == 0 {
		errs = append(errs, "SHARPNESS must be non-zero")
	}
	cfg.TrendPeriod = getEnvAsInt("TREND_PERIOD", 0)
	if cfg.TrendPeriod < 0 {
		errs = append(errs, "TREND_PERIOD cannot be negative")
	}

	// Strategy
	variantStr := getEnv("STRATEGY_VARIANT", string(domain.VariantDual))
	variant, ok := domain.ParseVariant(variantStr)
	if !ok {
		errs = append(errs, fmt.Sprintf("unknown STRATEGY_VARIANT %q (want simple, dual, or trend-breakout)", variantStr))
	}
	cfg.StrategyVariant = variant
	if variant == domain.VariantTrendBreakout && cfg.TrendPeriod == 0 {
		errs = append(errs, "TREND_PERIOD must be positive for the trend-breakout variant")
	}
	cfg.UseSyntheticCandles = getEnvAsBool("USE_SYNTHETIC_CANDLES", false)

	evalSeconds := getEnvAsInt("EVALUATION_INTERVAL_SECONDS", 10)
	if evalSeconds <= 0 {
		errs = append(errs, "EVALUATION_INTERVAL_SECONDS must be positive")
	}
	cfg.EvaluationInterval = time.Duration(evalSeconds) * time.Second

	// Risk
	cfg.CooldownCycles = getEnvAsInt("COOLDOWN_CYCLES", 2)
	if cfg.CooldownCycles < 0 {
		errs = append(errs, "COOLDOWN_CYCLES cannot be negative")
	}
	cfg.MaxLots = getEnvAsInt("MAX_LOTS", 2)
	if cfg.MaxLots <= 0 {
		errs = append(errs, "MAX_LOTS must be positive")
	}
	cfg.DefaultLots = getEnvAsInt("DEFAULT_LOTS", 1)
	if cfg.DefaultLots <= 0 || cfg.DefaultLots > cfg.MaxLots {
		errs = append(errs, "DEFAULT_LOTS must be between 1 and MAX_LOTS")
	}
	cfg.LotSize = getEnvAsFloat("LOT_SIZE", 1.0)
	if cfg.LotSize <= 0 {
		errs = append(errs, "LOT_SIZE must be positive")
	}

	// Database
	cfg.DBPath = getEnv("DB_PATH", "./data/almabot.db")
	if cfg.DBPath == "" {
		errs = append(errs, "DB_PATH must be set")
	}

	// Logging
	logLevelStr := getEnv("LOG_LEVEL", "INFO")
	cfg.LogLevel = logger.ParseLevel(logLevelStr)

	// Connection Settings
	reconnectDelaySeconds := getEnvAsInt("RECONNECT_DELAY_SECONDS", 5)
	if reconnectDelaySeconds <= 0 {
		errs = append(errs, "RECONNECT_DELAY_SECONDS must be positive")
	}
	cfg.ReconnectDelay = time.Duration(reconnectDelaySeconds) * time.Second

	cfg.MaxReconnectAttempts = getEnvAsInt("MAX_RECONNECT_ATTEMPTS", 10)
	if cfg.MaxReconnectAttempts < 0 {
		errs = append(errs, "MAX_RECONNECT_ATTEMPTS cannot be negative")
	}

	// Combine validation errors
	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return cfg, nil
}

// --- Env Var Helpers ---

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
