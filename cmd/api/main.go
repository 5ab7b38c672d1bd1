package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/deckvoice/deckvoice/internal/api"
	"github.com/deckvoice/deckvoice/internal/config"
	"github.com/deckvoice/deckvoice/internal/db"
	"github.com/deckvoice/deckvoice/internal/queue"
	"github.com/deckvoice/deckvoice/internal/services"
	"github.com/deckvoice/deckvoice/internal/storage"
	"github.com/deckvoice/deckvoice/internal/worker"
)

func main() {
	log.Println("Starting DeckVoice API...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Connect to database
	database, err := db.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()
	log.Println("Connected to database")

	// Connect to Redis queue
	q, err := queue.New(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to connect to queue: %v", err)
	}
	defer q.Close()
	log.Println("Connected to Redis queue")

	// Initialize storage
	stor := storage.New(cfg.SupabaseURL, cfg.SupabaseServiceKey, cfg.SupabaseStorageBucket)
	log.Println("Initialized Supabase storage")

	// Load voice presets and watch the file for edits
	voices, err := config.LoadVoices(cfg.VoicesFile)
	if err != nil {
		log.Fatalf("Failed to load voice presets: %v", err)
	}
	log.Printf("Loaded %d voice presets (default: %s)", len(voices.All()), voices.Default().Name)

	voicesCtx, voicesCancel := context.WithCancel(context.Background())
	defer voicesCancel()
	go func() {
		if err := voices.Watch(voicesCtx); err != nil {
			log.Printf("Voice preset watcher stopped: %v", err)
		}
	}()

	// Create API handler
	handler := api.NewHandler(database, q, stor, voices)
	router := api.NewRouter(handler, api.RouterConfig{
		BackendAPIKey:      cfg.BackendAPIKey,
		CorsAllowedOrigins: cfg.CorsAllowedOrigins,
	})

	if cfg.BackendAPIKey != "" {
		log.Println("API key authentication enabled")
	} else {
		log.Println("WARNING: No BACKEND_API_KEY set — API is unprotected (dev mode)")
	}

	// Start HTTP server
	server := &http.Server{
		Addr:    ":" + cfg.APIPort,
		Handler: router,
	}

	// Start worker if enabled
	var workerCtx context.Context
	var workerCancel context.CancelFunc
	if cfg.WorkerEnabled {
		log.Println("Worker enabled, starting background processing...")

		// Script provider — Gemini reads the deck PDF, OpenAI works from
		// speaker notes
		var scriptSvc services.ScriptService
		switch cfg.ScriptProvider {
		case "openai":
			scriptSvc = services.NewOpenAIService(cfg.OpenAIKey)
			log.Println("Script provider: OpenAI (notes-based)")
		default:
			scriptSvc = services.NewGeminiService(cfg.GeminiKey, cfg.GeminiModel)
			log.Printf("Script provider: Gemini (model: %s)", cfg.GeminiModel)
		}

		// Speech provider — ElevenLabs preferred (character timestamps),
		// Cartesia as audio-only fallback
		var speechSvc services.SpeechService
		if cfg.ElevenLabsKey != "" {
			speechSvc = services.NewElevenLabsService(cfg.ElevenLabsKey, cfg.ElevenLabsVoiceID)
			log.Println("Speech provider: ElevenLabs (model: eleven_v3, with timestamps)")
		} else {
			speechSvc = services.NewCartesiaService(cfg.CartesiaKey, cfg.CartesiaURL, cfg.CartesiaVoiceID)
			log.Println("Speech provider: Cartesia (no alignment — scene durations unavailable)")
		}

		w := worker.New(database, q, stor, scriptSvc, speechSvc, voices, cfg.SeparatorAlignmentRetained)

		workerCtx, workerCancel = context.WithCancel(context.Background())
		go w.Start(workerCtx, cfg.MaxConcurrentJobs)
	}

	// Start server in goroutine
	go func() {
		log.Printf("API server listening on :%s", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Shutdown worker
	if workerCancel != nil {
		workerCancel()
	}

	// Shutdown HTTP server
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
