package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	APIPort            string
	WorkerEnabled      bool
	BackendAPIKey      string // API key for authenticating requests (empty = no auth, dev mode)
	CorsAllowedOrigins string // Comma-separated allowed origins (empty = *, dev mode)

	// Database
	DatabaseURL string

	// Redis
	RedisURL string

	// Supabase
	SupabaseURL           string
	SupabaseServiceKey    string
	SupabaseStorageBucket string

	// Script generation (narration + markup passes)
	ScriptProvider string // "gemini" (PDF-based, default) or "openai" (notes-based)
	GeminiKey      string
	GeminiModel    string
	OpenAIKey      string

	// ElevenLabs (preferred TTS provider — the only one returning character timestamps)
	ElevenLabsKey     string
	ElevenLabsVoiceID string

	// Cartesia (legacy TTS fallback — audio only, no alignment)
	CartesiaKey     string
	CartesiaURL     string
	CartesiaVoiceID string

	// SeparatorAlignmentRetained tells the alignment engine whether this
	// deployment's TTS backend keeps alignment entries for the separator
	// characters between scenes. v3 models collapse the separator to
	// silence, so the default is false. Getting this wrong skews every
	// scene after the first.
	SeparatorAlignmentRetained bool

	// VoicesFile is the YAML file holding named voice presets.
	VoicesFile string

	// Worker
	MaxConcurrentJobs int
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	_ = godotenv.Load()

	cfg := &Config{
		APIPort:               getEnv("API_PORT", "8080"),
		WorkerEnabled:         getEnvBool("WORKER_ENABLED", true),
		BackendAPIKey:         getEnv("BACKEND_API_KEY", ""),
		CorsAllowedOrigins:    getEnv("CORS_ALLOWED_ORIGINS", ""),
		DatabaseURL:           getEnv("DATABASE_URL", ""),
		RedisURL:              getEnv("REDIS_URL", "redis://localhost:6379"),
		SupabaseURL:           getEnv("SUPABASE_URL", ""),
		SupabaseServiceKey:    getEnv("SUPABASE_SERVICE_KEY", ""),
		SupabaseStorageBucket: getEnv("SUPABASE_STORAGE_BUCKET", "deckvoice-audio"),
		ScriptProvider:        getEnv("SCRIPT_PROVIDER", "gemini"),
		GeminiKey:             getEnv("GEMINI_API_KEY", ""),
		GeminiModel:           getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		OpenAIKey:             getEnv("OPENAI_API_KEY", ""),
		ElevenLabsKey:         getEnv("ELEVENLABS_API_KEY", ""),
		ElevenLabsVoiceID:     getEnv("ELEVENLABS_VOICE_ID", ""),
		CartesiaKey:           getEnv("CARTESIA_API_KEY", ""),
		CartesiaURL:           getEnv("CARTESIA_API_URL", "https://api.cartesia.ai"),
		CartesiaVoiceID:       getEnv("CARTESIA_VOICE_ID", ""),

		SeparatorAlignmentRetained: getEnvBool("SEPARATOR_ALIGNMENT_RETAINED", false),

		VoicesFile:        getEnv("VOICES_FILE", "voices.yaml"),
		MaxConcurrentJobs: getEnvInt("MAX_CONCURRENT_JOBS", 5),
	}

	// Validate required fields
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	switch cfg.ScriptProvider {
	case "gemini":
		if cfg.GeminiKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required when SCRIPT_PROVIDER=gemini")
		}
	case "openai":
		if cfg.OpenAIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required when SCRIPT_PROVIDER=openai")
		}
	default:
		return nil, fmt.Errorf("SCRIPT_PROVIDER must be \"gemini\" or \"openai\", got %q", cfg.ScriptProvider)
	}

	// At least one TTS provider must be configured
	if cfg.ElevenLabsKey == "" && cfg.CartesiaKey == "" {
		return nil, fmt.Errorf("either ELEVENLABS_API_KEY or CARTESIA_API_KEY is required for TTS")
	}

	// Cartesia cannot use the ElevenLabs voice presets, so the fallback needs
	// its own voice configured up front.
	if cfg.ElevenLabsKey == "" && cfg.CartesiaVoiceID == "" {
		return nil, fmt.Errorf("CARTESIA_VOICE_ID is required when Cartesia is the speech provider")
	}

	if cfg.SupabaseURL == "" || cfg.SupabaseServiceKey == "" {
		return nil, fmt.Errorf("SUPABASE_URL and SUPABASE_SERVICE_KEY are required")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		b, err := strconv.ParseBool(value)
		if err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		i, err := strconv.Atoi(value)
		if err == nil {
			return i
		}
	}
	return defaultValue
}
