package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// OpenAI configuration.
	OpenAIAPIKey  string  `mapstructure:"OPENAI_API_KEY"`
	OpenAIBaseURL string  `mapstructure:"OPENAI_BASE_URL"`
	OpenAIModel   string  `mapstructure:"OPENAI_MODEL"`
	MaxTokens     int     `mapstructure:"MAX_TOKENS"`
	Temperature   float64 `mapstructure:"TEMPERATURE"`

	// Amadeus configuration.
	AmadeusAPIKey    string `mapstructure:"AMADEUS_API_KEY"`
	AmadeusAPISecret string `mapstructure:"AMADEUS_API_SECRET"`
	AmadeusBaseURL   string `mapstructure:"AMADEUS_BASE_URL"`

	// Anchor date for relative date parsing (YYYY-MM-DD). The assistant
	// resolves "next month", "tomorrow" and friends against this fixed
	// date rather than the wall clock.
	AnchorDate string `mapstructure:"ANCHOR_DATE"`

	// Conversation context window.
	MaxConversationMessages int `mapstructure:"MAX_CONVERSATION_MESSAGES"`

	// Per-category caps on classified results handed to the sidebars.
	MaxFlightResults   int `mapstructure:"MAX_FLIGHT_RESULTS"`
	MaxHotelResults    int `mapstructure:"MAX_HOTEL_RESULTS"`
	MaxActivityResults int `mapstructure:"MAX_ACTIVITY_RESULTS"`
	MaxTransferResults int `mapstructure:"MAX_TRANSFER_RESULTS"`

	// Bounded "show your work" ledger capacity.
	LedgerCapacity int `mapstructure:"LEDGER_CAPACITY"`

	// Optional TTL (seconds) for cached travel-API responses. Zero keeps
	// entries for the process lifetime, matching the original behavior.
	ResponseCacheTTL int `mapstructure:"RESPONSE_CACHE_TTL"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("OPENAI_BASE_URL", "")
	viper.SetDefault("OPENAI_MODEL", "gpt-4o-mini")
	viper.SetDefault("MAX_TOKENS", 800)
	viper.SetDefault("TEMPERATURE", 0.7)
	viper.SetDefault("AMADEUS_BASE_URL", "https://test.api.amadeus.com")
	viper.SetDefault("ANCHOR_DATE", "2025-04-15")
	viper.SetDefault("MAX_CONVERSATION_MESSAGES", 5)
	viper.SetDefault("MAX_FLIGHT_RESULTS", 8)
	viper.SetDefault("MAX_HOTEL_RESULTS", 3)
	viper.SetDefault("MAX_ACTIVITY_RESULTS", 6)
	viper.SetDefault("MAX_TRANSFER_RESULTS", 3)
	viper.SetDefault("LEDGER_CAPACITY", 10)
	viper.SetDefault("RESPONSE_CACHE_TTL", 0)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
