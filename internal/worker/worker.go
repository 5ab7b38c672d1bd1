package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/deckvoice/deckvoice/internal/config"
	"github.com/deckvoice/deckvoice/internal/db"
	"github.com/deckvoice/deckvoice/internal/models"
	"github.com/deckvoice/deckvoice/internal/queue"
	"github.com/deckvoice/deckvoice/internal/services"
	"github.com/deckvoice/deckvoice/internal/storage"
	"github.com/deckvoice/deckvoice/internal/timing"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type Worker struct {
	db                *db.DB
	queue             *queue.Queue
	storage           *storage.Storage
	script            services.ScriptService
	speech            services.SpeechService
	voices            *config.Voices
	separatorRetained bool          // Whether TTS alignment includes separator characters
	uploadSem         chan struct{} // Limits concurrent Supabase uploads to prevent congestion
}

func New(
	database *db.DB,
	q *queue.Queue,
	stor *storage.Storage,
	scriptSvc services.ScriptService,
	speechSvc services.SpeechService,
	voices *config.Voices,
	separatorRetained bool,
) *Worker {
	return &Worker{
		db:                database,
		queue:             q,
		storage:           stor,
		script:            scriptSvc,
		speech:            speechSvc,
		voices:            voices,
		separatorRetained: separatorRetained,
		uploadSem:         make(chan struct{}, 4),
	}
}

// uploadWithLimit wraps an upload call with a semaphore to prevent Supabase congestion.
func (w *Worker) uploadWithLimit(ctx context.Context, label string, fn func() error) error {
	select {
	case w.uploadSem <- struct{}{}:
		// Acquired slot
	case <-ctx.Done():
		return fmt.Errorf("upload cancelled while waiting for slot: %w", ctx.Err())
	}
	defer func() { <-w.uploadSem }()

	log.Printf("[Upload] %s uploading...", label)
	return fn()
}

// Start begins processing jobs from all queues
func (w *Worker) Start(ctx context.Context, concurrency int) {
	log.Printf("Worker started with concurrency: %d", concurrency)

	for i := 0; i < concurrency; i++ {
		go w.processQueue(ctx, queue.QueueGenerateNarration, w.handleGenerateNarration)
		go w.processQueue(ctx, queue.QueueAddMarkup, w.handleAddMarkup)
		go w.processQueue(ctx, queue.QueueSynthesize, w.handleSynthesize)
	}

	<-ctx.Done()
	log.Println("Worker shutting down...")
}

func (w *Worker) processQueue(ctx context.Context, queueName string, handler func(context.Context, *queue.Job) error) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
			job, err := w.queue.Dequeue(ctx, queueName, 5*time.Second)
			if err != nil {
				log.Printf("Error dequeuing from %s: %v", queueName, err)
				continue
			}

			if job == nil {
				continue // No job available, retry
			}

			log.Printf("Processing job %s (type: %s, deck: %s)", job.ID, job.Type, job.DeckID)

			if err := w.db.MarkJobRunning(ctx, job.ID); err != nil {
				log.Printf("Failed to mark job running: %v", err)
			}

			if err := handler(ctx, job); err != nil {
				log.Printf("Job %s failed: %v", job.ID, err)
				w.db.MarkJobFailed(ctx, job.ID, err.Error())
			} else {
				log.Printf("Job %s completed successfully", job.ID)
				w.db.MarkJobSucceeded(ctx, job.ID)
			}
		}
	}
}

// handleGenerateNarration turns the deck material into one scene per slide.
// A re-run replaces the previous scenes wholesale.
func (w *Worker) handleGenerateNarration(ctx context.Context, job *queue.Job) error {
	log.Printf("Generating narration for deck %s", job.DeckID)

	deck, err := w.db.GetDeck(ctx, job.DeckID)
	if err != nil {
		return fmt.Errorf("failed to get deck: %w", err)
	}

	material := services.DeckMaterial{
		Title: deck.Title,
		Notes: deck.Notes,
	}

	if deck.PDFAssetID != nil {
		pdfAsset, err := w.db.GetAsset(ctx, *deck.PDFAssetID)
		if err != nil {
			return fmt.Errorf("failed to get PDF asset: %w", err)
		}
		material.PDF, err = w.storage.Download(ctx, pdfAsset.StoragePath)
		if err != nil {
			w.db.UpdateDeckError(ctx, job.DeckID, "pdf_download_failed", err.Error())
			return fmt.Errorf("failed to download deck PDF: %w", err)
		}
	}

	drafts, err := w.script.GenerateScenes(ctx, material)
	if err != nil {
		w.db.UpdateDeckError(ctx, job.DeckID, "narration_failed", err.Error())
		return fmt.Errorf("failed to generate narration: %w", err)
	}

	// Replace any scenes from a previous narration run
	if err := w.db.DeleteDeckScenes(ctx, job.DeckID); err != nil {
		return fmt.Errorf("failed to clear previous scenes: %w", err)
	}

	for i, draft := range drafts {
		scene := &models.Scene{
			ID:         uuid.New(),
			DeckID:     job.DeckID,
			SceneIndex: i,
			Comment:    draft.Comment,
			Speech:     draft.Speech,
		}
		if err := w.db.CreateScene(ctx, scene); err != nil {
			return fmt.Errorf("failed to create scene %d: %w", i, err)
		}
	}

	log.Printf("Deck %s: narration generated (%d scenes)", job.DeckID, len(drafts))
	return w.db.UpdateDeckStatus(ctx, job.DeckID, models.DeckStatusNarrated)
}

// handleAddMarkup runs the audio-tag pass over the deck's scenes.
func (w *Worker) handleAddMarkup(ctx context.Context, job *queue.Job) error {
	log.Printf("Adding audio tags for deck %s", job.DeckID)

	scenes, err := w.db.GetDeckScenes(ctx, job.DeckID)
	if err != nil {
		return fmt.Errorf("failed to get scenes: %w", err)
	}
	if len(scenes) == 0 {
		return fmt.Errorf("deck has no scenes to tag")
	}

	drafts := make([]services.SceneDraft, len(scenes))
	for i, s := range scenes {
		drafts[i] = services.SceneDraft{Comment: s.Comment, Speech: s.Speech}
	}

	tagged, err := w.script.AddAudioTags(ctx, drafts)
	if err != nil {
		w.db.UpdateDeckError(ctx, job.DeckID, "markup_failed", err.Error())
		return fmt.Errorf("failed to add audio tags: %w", err)
	}

	// Word drift is logged but not fatal — the operator can fix it in review.
	if mismatched := services.VerifyMarkup(tagged); len(mismatched) > 0 {
		log.Printf("Deck %s: %d scenes have word drift in tagged text: %v", job.DeckID, len(mismatched), mismatched)
	}

	for i, draft := range tagged {
		if err := w.db.UpdateSceneMarkup(ctx, scenes[i].ID, draft.Markup); err != nil {
			return fmt.Errorf("failed to store markup for scene %d: %w", i, err)
		}
	}

	log.Printf("Deck %s: audio tags added (%d scenes)", job.DeckID, len(tagged))
	return w.db.UpdateDeckStatus(ctx, job.DeckID, models.DeckStatusTagged)
}

// handleSynthesize concatenates the deck's tagged narration, synthesizes it
// in one TTS call, computes per-scene durations from the returned character
// alignment, and uploads the audio and alignment artifacts.
func (w *Worker) handleSynthesize(ctx context.Context, job *queue.Job) error {
	log.Printf("Synthesizing voiceover for deck %s", job.DeckID)

	deck, err := w.db.GetDeck(ctx, job.DeckID)
	if err != nil {
		return fmt.Errorf("failed to get deck: %w", err)
	}

	scenes, err := w.db.GetDeckScenes(ctx, job.DeckID)
	if err != nil {
		return fmt.Errorf("failed to get scenes: %w", err)
	}
	if len(scenes) == 0 {
		return fmt.Errorf("deck has no scenes to synthesize")
	}

	// One text per scene. Tagged markup drives synthesis; a scene that was
	// never tagged falls back to its plain speech.
	texts := make([]string, len(scenes))
	for i, s := range scenes {
		if s.Markup != nil && *s.Markup != "" {
			texts[i] = *s.Markup
		} else {
			texts[i] = s.Speech
		}
	}

	voiceover := timing.Concat(texts)

	// Resolve the deck's voice preset, falling back to the default
	preset := w.voices.Default()
	if deck.VoiceName != nil && *deck.VoiceName != "" {
		p, ok := w.voices.Lookup(*deck.VoiceName)
		if !ok {
			log.Printf("Deck %s: unknown voice %q, using default %q", job.DeckID, *deck.VoiceName, preset.Name)
		} else {
			preset = p
		}
	}

	// The preset names an ElevenLabs voice; the provider maps it into its
	// own namespace (Cartesia substitutes its configured voice).
	voiceID, modelID := w.speech.ResolveVoice(preset.VoiceID, preset.ModelID)

	result, err := w.speech.Synthesize(ctx, voiceover, voiceID, modelID)
	if err != nil {
		w.db.UpdateDeckError(ctx, job.DeckID, "synthesis_failed", err.Error())
		return fmt.Errorf("failed to synthesize voiceover: %w", err)
	}

	// Durations before any scene writes so a failed computation leaves the
	// scenes untouched.
	durations, err := timing.ComputeDurations(texts, result.Alignment, timing.Options{
		SeparatorRetained: w.separatorRetained,
	})
	if err != nil {
		code, keepAudio := durationFailure(err)
		if keepAudio {
			// The audio itself is fine, only the timings are lost. Store it
			// so the operator still gets something out of the synthesis.
			if _, storeErr := w.storeVoiceover(ctx, job.DeckID, result.AudioData); storeErr != nil {
				log.Printf("Deck %s: failed to store voiceover after %s: %v", job.DeckID, code, storeErr)
			}
		}
		w.db.UpdateDeckError(ctx, job.DeckID, code, err.Error())
		return fmt.Errorf("failed to compute scene durations: %w", err)
	}

	for i, d := range durations {
		if err := w.db.UpdateSceneDuration(ctx, scenes[i].ID, d); err != nil {
			return fmt.Errorf("failed to store duration for scene %d: %w", i, err)
		}
	}

	// Upload audio and the raw alignment in parallel
	alignmentJSON, err := json.Marshal(result.Alignment)
	if err != nil {
		return fmt.Errorf("failed to marshal alignment: %w", err)
	}
	alignmentAsset := &models.Asset{
		ID:            uuid.New(),
		DeckID:        job.DeckID,
		Type:          models.AssetTypeAlignmentJSON,
		StorageBucket: w.storage.Bucket,
		StoragePath:   w.storage.AlignmentPath(job.DeckID),
		ContentType:   strPtr("application/json"),
		ByteSize:      int64Ptr(int64(len(alignmentJSON))),
	}

	var audioAsset *models.Asset
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a, err := w.storeVoiceover(gctx, job.DeckID, result.AudioData)
		if err != nil {
			return err
		}
		audioAsset = a
		return nil
	})
	g.Go(func() error {
		if err := w.uploadWithLimit(gctx, "alignment.json", func() error {
			return w.storage.Upload(gctx, alignmentAsset.StoragePath, alignmentJSON, "application/json")
		}); err != nil {
			return fmt.Errorf("failed to upload alignment: %w", err)
		}
		return w.db.CreateAsset(gctx, alignmentAsset)
	})
	if err := g.Wait(); err != nil {
		w.db.UpdateDeckError(ctx, job.DeckID, "upload_failed", err.Error())
		return err
	}

	log.Printf("Deck %s: voiceover synthesized (%d bytes audio, %d scenes timed)",
		job.DeckID, len(result.AudioData), len(durations))

	return w.db.SetDeckAudio(ctx, job.DeckID, audioAsset.ID, &alignmentAsset.ID)
}

// durationFailure maps a duration computation error onto a deck error code
// and reports whether the synthesized audio should still be persisted. A
// missing alignment only means the provider cannot time scenes; the audio
// itself is good.
func durationFailure(err error) (code string, keepAudio bool) {
	if errors.Is(err, timing.ErrAlignmentMissing) {
		return "alignment_missing", true
	}
	return "duration_failed", false
}

// storeVoiceover uploads the synthesized audio, records its asset row, and
// points the deck at it. Deck status and error fields are left alone so this
// can run on both the success and the alignment-missing paths.
func (w *Worker) storeVoiceover(ctx context.Context, deckID uuid.UUID, audioData []byte) (*models.Asset, error) {
	asset := &models.Asset{
		ID:            uuid.New(),
		DeckID:        deckID,
		Type:          models.AssetTypeAudio,
		StorageBucket: w.storage.Bucket,
		StoragePath:   w.storage.VoiceoverPath(deckID),
		ContentType:   strPtr("audio/mpeg"),
		ByteSize:      int64Ptr(int64(len(audioData))),
	}

	if err := w.uploadWithLimit(ctx, "voiceover.mp3", func() error {
		return w.storage.Upload(ctx, asset.StoragePath, audioData, "audio/mpeg")
	}); err != nil {
		return nil, fmt.Errorf("failed to upload voiceover: %w", err)
	}
	if err := w.db.CreateAsset(ctx, asset); err != nil {
		return nil, fmt.Errorf("failed to record voiceover asset: %w", err)
	}
	if err := w.db.SetDeckAudioAsset(ctx, deckID, asset.ID); err != nil {
		return nil, fmt.Errorf("failed to attach voiceover to deck: %w", err)
	}
	return asset, nil
}

// Helper functions
func strPtr(s string) *string {
	return &s
}

func int64Ptr(i int64) *int64 {
	return &i
}
