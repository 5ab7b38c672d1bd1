package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/deckvoice/deckvoice/internal/config"
	"github.com/deckvoice/deckvoice/internal/db"
	"github.com/deckvoice/deckvoice/internal/models"
	"github.com/deckvoice/deckvoice/internal/queue"
	"github.com/deckvoice/deckvoice/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type Handler struct {
	db      *db.DB
	queue   *queue.Queue
	storage *storage.Storage
	voices  *config.Voices
}

func NewHandler(database *db.DB, q *queue.Queue, stor *storage.Storage, voices *config.Voices) *Handler {
	return &Handler{
		db:      database,
		queue:   q,
		storage: stor,
		voices:  voices,
	}
}

// CreateDeck handles POST /v1/decks
func (h *Handler) CreateDeck(w http.ResponseWriter, r *http.Request) {
	var req models.CreateDeckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Title == "" {
		respondError(w, http.StatusBadRequest, "Title is required")
		return
	}
	if req.PDFBase64 == "" && len(req.Notes) == 0 {
		respondError(w, http.StatusBadRequest, "Provide pdf_base64 or notes")
		return
	}
	if req.VoiceName != nil && *req.VoiceName != "" {
		if _, ok := h.voices.Lookup(*req.VoiceName); !ok {
			respondError(w, http.StatusBadRequest, "Unknown voice name")
			return
		}
	}

	deck := &models.Deck{
		ID:        uuid.New(),
		Title:     req.Title,
		VoiceName: req.VoiceName,
		Status:    models.DeckStatusCreated,
		Notes:     req.Notes,
		Settings:  req.Settings,
	}

	// Store the PDF object before any rows so nothing ever points at a
	// missing upload
	var pdfAsset *models.Asset
	if req.PDFBase64 != "" {
		pdfData, err := base64.StdEncoding.DecodeString(req.PDFBase64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid pdf_base64")
			return
		}

		pdfAsset = &models.Asset{
			ID:            uuid.New(),
			DeckID:        deck.ID,
			Type:          models.AssetTypeDeckPDF,
			StorageBucket: h.storage.Bucket,
			StoragePath:   h.storage.DeckPDFPath(deck.ID),
			ContentType:   strPtr("application/pdf"),
			ByteSize:      int64Ptr(int64(len(pdfData))),
		}

		if err := h.storage.Upload(r.Context(), pdfAsset.StoragePath, pdfData, "application/pdf"); err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to store deck PDF")
			return
		}
		deck.PDFAssetID = &pdfAsset.ID
	}

	if err := persistNewDeck(r.Context(), h.db, deck, pdfAsset); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to create deck")
		return
	}

	respondJSON(w, http.StatusCreated, models.CreateDeckResponse{
		DeckID: deck.ID,
		Status: deck.Status,
	})
}

// deckStore is the slice of the database layer deck creation writes through.
type deckStore interface {
	CreateDeck(ctx context.Context, deck *models.Deck) error
	CreateAsset(ctx context.Context, asset *models.Asset) error
}

// persistNewDeck writes the rows for a new deck. The asset row goes in first:
// the deck row carries pdf_asset_id, and a failure between the two writes must
// not leave a deck referencing an asset that was never recorded.
func persistNewDeck(ctx context.Context, store deckStore, deck *models.Deck, pdfAsset *models.Asset) error {
	if pdfAsset != nil {
		if err := store.CreateAsset(ctx, pdfAsset); err != nil {
			return fmt.Errorf("failed to record deck PDF asset: %w", err)
		}
	}
	if err := store.CreateDeck(ctx, deck); err != nil {
		return fmt.Errorf("failed to create deck: %w", err)
	}
	return nil
}

// ListDecks handles GET /v1/decks
// Query params:
//   - status: filter by deck status
//   - limit:  max results per page (default 20, max 100)
//   - offset: number of results to skip (default 0)
func (h *Handler) ListDecks(w http.ResponseWriter, r *http.Request) {
	statusFilter := r.URL.Query().Get("status")
	if statusFilter != "" {
		switch models.DeckStatus(statusFilter) {
		case models.DeckStatusCreated, models.DeckStatusNarrating,
			models.DeckStatusNarrated, models.DeckStatusTagging,
			models.DeckStatusTagged, models.DeckStatusSynthesizing,
			models.DeckStatusVoiced, models.DeckStatusFailed:
			// valid
		default:
			respondError(w, http.StatusBadRequest, "Invalid status filter")
			return
		}
	}

	limit := 20
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > 100 {
		limit = 100
	}

	offset := 0
	if o := r.URL.Query().Get("offset"); o != "" {
		if parsed, err := strconv.Atoi(o); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	total, err := h.db.CountDecks(r.Context(), statusFilter)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to count decks")
		return
	}

	decks, err := h.db.ListDecks(r.Context(), statusFilter, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to list decks")
		return
	}

	summaries := make([]models.DeckSummary, 0, len(decks))
	for _, deck := range decks {
		summary := models.DeckSummary{
			ID:           deck.ID,
			Title:        deck.Title,
			VoiceName:    deck.VoiceName,
			Status:       deck.Status,
			ErrorCode:    deck.ErrorCode,
			ErrorMessage: deck.ErrorMessage,
			CreatedAt:    deck.CreatedAt,
			UpdatedAt:    deck.UpdatedAt,
		}

		if count, err := h.db.GetDeckSceneCount(r.Context(), deck.ID); err == nil {
			summary.SceneCount = count
		}

		summaries = append(summaries, summary)
	}

	respondJSON(w, http.StatusOK, models.ListDecksResponse{
		Decks:  summaries,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}

// GetDeck handles GET /v1/decks/{id}
func (h *Handler) GetDeck(w http.ResponseWriter, r *http.Request) {
	deckID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid deck ID")
		return
	}

	deck, err := h.db.GetDeck(r.Context(), deckID)
	if err != nil {
		respondError(w, http.StatusNotFound, "Deck not found")
		return
	}

	scenes, err := h.db.GetDeckScenes(r.Context(), deckID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to get scenes")
		return
	}

	response := models.DeckResponse{
		Deck:   *deck,
		Scenes: scenes,
	}
	response.AudioURL = h.assetURL(r.Context(), deck.AudioAssetID)

	respondJSON(w, http.StatusOK, response)
}

// UpdateScenes handles PUT /v1/decks/{id}/scenes — operator edits to speech
// and markup between pipeline stages.
func (h *Handler) UpdateScenes(w http.ResponseWriter, r *http.Request) {
	deckID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid deck ID")
		return
	}

	deck, err := h.db.GetDeck(r.Context(), deckID)
	if err != nil {
		respondError(w, http.StatusNotFound, "Deck not found")
		return
	}

	// Edits only make sense once narration exists and while nothing is
	// in flight
	switch deck.Status {
	case models.DeckStatusNarrated, models.DeckStatusTagged, models.DeckStatusVoiced, models.DeckStatusFailed:
		// editable
	default:
		respondError(w, http.StatusConflict, "Deck is not editable in its current status")
		return
	}

	var req models.UpdateScenesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.Scenes) == 0 {
		respondError(w, http.StatusBadRequest, "No scene edits provided")
		return
	}

	for _, edit := range req.Scenes {
		scene, err := h.db.GetScene(r.Context(), edit.ID)
		if err != nil || scene.DeckID != deckID {
			respondError(w, http.StatusNotFound, "Scene not found on this deck")
			return
		}
		if edit.Speech == "" {
			respondError(w, http.StatusBadRequest, "Scene speech cannot be empty")
			return
		}
		if err := h.db.UpdateSceneText(r.Context(), edit.ID, edit.Speech, edit.Markup); err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to update scene")
			return
		}
	}

	scenes, err := h.db.GetDeckScenes(r.Context(), deckID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to get scenes")
		return
	}

	respondJSON(w, http.StatusOK, models.DeckResponse{Deck: *deck, Scenes: scenes})
}

// TriggerNarrate handles POST /v1/decks/{id}/narrate
func (h *Handler) TriggerNarrate(w http.ResponseWriter, r *http.Request) {
	h.triggerStage(w, r, models.DeckStatusNarrating, "generate_narration", h.queue.EnqueueGenerateNarration)
}

// TriggerMarkup handles POST /v1/decks/{id}/markup
func (h *Handler) TriggerMarkup(w http.ResponseWriter, r *http.Request) {
	h.triggerStage(w, r, models.DeckStatusTagging, "add_markup", h.queue.EnqueueAddMarkup)
}

// TriggerSynthesize handles POST /v1/decks/{id}/synthesize
func (h *Handler) TriggerSynthesize(w http.ResponseWriter, r *http.Request) {
	h.triggerStage(w, r, models.DeckStatusSynthesizing, "synthesize", h.queue.EnqueueSynthesize)
}

// triggerStage moves a deck into a pipeline stage: it validates the status
// transition, flips the deck status, records a job row, and enqueues it.
func (h *Handler) triggerStage(
	w http.ResponseWriter,
	r *http.Request,
	target models.DeckStatus,
	jobType string,
	enqueue func(ctx context.Context, deckID, jobID uuid.UUID) error,
) {
	deckID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid deck ID")
		return
	}

	deck, err := h.db.GetDeck(r.Context(), deckID)
	if err != nil {
		respondError(w, http.StatusNotFound, "Deck not found")
		return
	}

	if !deck.Status.CanTransition(target) {
		respondError(w, http.StatusConflict,
			"Deck cannot move from "+string(deck.Status)+" to "+string(target))
		return
	}

	if err := h.db.UpdateDeckStatus(r.Context(), deckID, target); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to update deck status")
		return
	}

	jobID := uuid.New()
	job := &models.Job{
		ID:     jobID,
		DeckID: deckID,
		Type:   jobType,
		Status: models.JobStatusQueued,
	}

	if err := h.db.CreateJob(r.Context(), job); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to create job")
		return
	}

	if err := enqueue(r.Context(), deckID, jobID); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to enqueue job")
		return
	}

	respondJSON(w, http.StatusAccepted, map[string]interface{}{
		"deck_id": deckID,
		"status":  target,
		"job_id":  jobID,
	})
}

// ExportDeck handles GET /v1/decks/{id}/export — the downstream bundle of
// timed scenes plus the voiceover audio URL. Only available once the deck
// has been voiced.
func (h *Handler) ExportDeck(w http.ResponseWriter, r *http.Request) {
	deckID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid deck ID")
		return
	}

	deck, err := h.db.GetDeck(r.Context(), deckID)
	if err != nil {
		respondError(w, http.StatusNotFound, "Deck not found")
		return
	}

	if deck.Status != models.DeckStatusVoiced || deck.AudioAssetID == nil {
		respondError(w, http.StatusConflict, "Deck has no voiceover yet")
		return
	}

	scenes, err := h.db.GetDeckScenes(r.Context(), deckID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to get scenes")
		return
	}

	audioURL := h.assetURL(r.Context(), deck.AudioAssetID)
	if audioURL == nil {
		respondError(w, http.StatusInternalServerError, "Voiceover asset missing")
		return
	}

	respondJSON(w, http.StatusOK, models.ExportBundle{
		DeckID:     deck.ID,
		Title:      deck.Title,
		Scenes:     scenes,
		AudioURL:   *audioURL,
		ExportedAt: time.Now().UTC(),
	})
}

// GetDeckJobs handles GET /v1/decks/{id}/debug/jobs
func (h *Handler) GetDeckJobs(w http.ResponseWriter, r *http.Request) {
	deckID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid deck ID")
		return
	}

	jobs, err := h.db.GetDeckJobs(r.Context(), deckID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to get jobs")
		return
	}

	respondJSON(w, http.StatusOK, jobs)
}

// ListVoices handles GET /v1/voices
func (h *Handler) ListVoices(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"voices": h.voices.All(),
	})
}

// Helper methods

func (h *Handler) assetURL(ctx context.Context, assetID *uuid.UUID) *string {
	if assetID == nil {
		return nil
	}
	asset, err := h.db.GetAsset(ctx, *assetID)
	if err != nil {
		return nil
	}
	url := h.storage.GetPublicURL(asset.StoragePath)
	return &url
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func strPtr(s string) *string {
	return &s
}

func int64Ptr(i int64) *int64 {
	return &i
}

// Health check
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
