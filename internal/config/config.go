package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds every process-wide setting. It is loaded once at startup and
// passed explicitly into components; nothing reads the environment afterwards.
type AppConfig struct {
	// Provider credentials.
	OpenWeatherAPIKey string
	SatelliteAPIURL   string
	SatelliteAPIKey   string
	GeocoderAPIKey    string

	// OpenAI settings shared by the embedder and the chat client.
	OpenAIAPIKey     string
	OpenAIBaseURL    string
	OpenAIChatModel  string
	OpenAIEmbedModel string

	// Precedent store.
	PostgresDSN string

	// Pipeline tuning.
	RequestDeadline time.Duration // overall per-request budget
	LLMTimeout      time.Duration // per completion attempt
	HTTPTimeout     time.Duration // outbound provider client timeout
	PrecedentTopK   int
	MinSimilarity   float64

	// Frontend origin allowed by CORS.
	FrontendOrigin string

	Port string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	cfg := &AppConfig{
		OpenWeatherAPIKey: os.Getenv("OPENWEATHER_API_KEY"),
		SatelliteAPIURL:   os.Getenv("SATELLITE_API_URL"),
		SatelliteAPIKey:   os.Getenv("SATELLITE_API_KEY"),
		GeocoderAPIKey:    os.Getenv("GEOCODER_API_KEY"),

		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:    getenvDefault("OPENAI_BASE_URL", "https://api.openai.com"),
		OpenAIChatModel:  getenvDefault("OPENAI_CHAT_MODEL", "gpt-4o"),
		OpenAIEmbedModel: getenvDefault("OPENAI_EMBED_MODEL", "text-embedding-3-small"),

		PostgresDSN: getenvDefault("POSTGRES_DSN", "postgres://localhost:5432/agriintel"),

		FrontendOrigin: getenvDefault("FRONTEND_ORIGIN", "*"),
		Port:           getenvDefault("PORT", "8080"),
	}

	var err error
	if cfg.RequestDeadline, err = getenvDuration("REQUEST_DEADLINE", "30s"); err != nil {
		return nil, err
	}
	if cfg.LLMTimeout, err = getenvDuration("LLM_TIMEOUT", "20s"); err != nil {
		return nil, err
	}
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "10s"); err != nil {
		return nil, err
	}

	cfg.PrecedentTopK = getenvInt("PRECEDENT_TOP_K", 5)
	cfg.MinSimilarity = getenvFloat("MIN_SIMILARITY", 0.2)

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
