package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Enums
type DeckStatus string

const (
	DeckStatusCreated      DeckStatus = "created"
	DeckStatusNarrating    DeckStatus = "narrating"
	DeckStatusNarrated     DeckStatus = "narrated"
	DeckStatusTagging      DeckStatus = "tagging"
	DeckStatusTagged       DeckStatus = "tagged"
	DeckStatusSynthesizing DeckStatus = "synthesizing"
	DeckStatusVoiced       DeckStatus = "voiced"
	DeckStatusFailed       DeckStatus = "failed"
)

// deckTransitions is the allowed state graph for a deck. The pipeline is a
// strict forward march with explicit redo edges: narration can be re-run
// before tagging, tagging and synthesis can be re-run after operator edits,
// and a failed deck can re-enter whichever stage failed.
var deckTransitions = map[DeckStatus][]DeckStatus{
	DeckStatusCreated:      {DeckStatusNarrating},
	DeckStatusNarrating:    {DeckStatusNarrated, DeckStatusFailed},
	DeckStatusNarrated:     {DeckStatusTagging, DeckStatusNarrating},
	DeckStatusTagging:      {DeckStatusTagged, DeckStatusFailed},
	DeckStatusTagged:       {DeckStatusSynthesizing, DeckStatusTagging, DeckStatusNarrating},
	DeckStatusSynthesizing: {DeckStatusVoiced, DeckStatusFailed},
	DeckStatusVoiced:       {DeckStatusSynthesizing, DeckStatusTagging},
	DeckStatusFailed:       {DeckStatusNarrating, DeckStatusTagging, DeckStatusSynthesizing},
}

// CanTransition reports whether a deck in status s may move to status to.
func (s DeckStatus) CanTransition(to DeckStatus) bool {
	for _, allowed := range deckTransitions[s] {
		if allowed == to {
			return true
		}
	}
	return false
}

type AssetType string

const (
	AssetTypeDeckPDF       AssetType = "deck_pdf"
	AssetTypeAudio         AssetType = "audio"
	AssetTypeAlignmentJSON AssetType = "alignment_json"
	AssetTypeExportJSON    AssetType = "export_json"
)

type JobStatus string

const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusRunning   JobStatus = "running"
	JobStatusSucceeded JobStatus = "succeeded"
	JobStatusFailed    JobStatus = "failed"
)

// JSONB is a custom type for PostgreSQL JSONB columns
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, j)
}

// StringList stores an ordered list of strings as a JSONB array.
// Used for per-slide speaker notes on a deck.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return json.Marshal([]string{})
	}
	return json.Marshal(l)
}

func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, l)
}

// Models

type Deck struct {
	ID               uuid.UUID  `json:"id"`
	Title            string     `json:"title"`
	VoiceName        *string    `json:"voice_name,omitempty"` // Preset name from voices.yaml
	Status           DeckStatus `json:"status"`
	Notes            StringList `json:"notes,omitempty"` // Per-slide speaker notes, same order as slides
	Settings         JSONB      `json:"settings,omitempty"`
	PDFAssetID       *uuid.UUID `json:"pdf_asset_id,omitempty"`
	AudioAssetID     *uuid.UUID `json:"audio_asset_id,omitempty"`
	AlignmentAssetID *uuid.UUID `json:"alignment_asset_id,omitempty"`
	ErrorCode        *string    `json:"error_code,omitempty"`
	ErrorMessage     *string    `json:"error_message,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

type Scene struct {
	ID         uuid.UUID `json:"id"`
	DeckID     uuid.UUID `json:"deck_id"`
	SceneIndex int       `json:"scene_index"`
	Comment    string    `json:"comment"`          // One-sentence description of the slide
	Speech     string    `json:"speech"`           // Plain narration text
	Markup     *string   `json:"markup,omitempty"` // Speech with bracketed audio tags, set by the markup pass
	Duration   *string   `json:"duration,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type Asset struct {
	ID            uuid.UUID  `json:"id"`
	DeckID        uuid.UUID  `json:"deck_id"`
	SceneID       *uuid.UUID `json:"scene_id,omitempty"`
	Type          AssetType  `json:"type"`
	StorageBucket string     `json:"storage_bucket"`
	StoragePath   string     `json:"storage_path"`
	ContentType   *string    `json:"content_type,omitempty"`
	ByteSize      *int64     `json:"byte_size,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

type Job struct {
	ID           uuid.UUID  `json:"id"`
	DeckID       uuid.UUID  `json:"deck_id"`
	Type         string     `json:"type"`
	Status       JobStatus  `json:"status"`
	Attempts     int        `json:"attempts"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
	ErrorMessage *string    `json:"error_message,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// DTOs for API responses

type DeckResponse struct {
	Deck
	Scenes   []Scene `json:"scenes,omitempty"`
	AudioURL *string `json:"audio_url,omitempty"`
}

// DeckSummary is a lightweight DTO for the list endpoint — no scenes array,
// just core deck fields plus a scene count.
type DeckSummary struct {
	ID           uuid.UUID  `json:"id"`
	Title        string     `json:"title"`
	VoiceName    *string    `json:"voice_name,omitempty"`
	Status       DeckStatus `json:"status"`
	SceneCount   int        `json:"scene_count"`
	ErrorCode    *string    `json:"error_code,omitempty"`
	ErrorMessage *string    `json:"error_message,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type ListDecksResponse struct {
	Decks  []DeckSummary `json:"decks"`
	Total  int           `json:"total"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
}

type CreateDeckRequest struct {
	Title     string     `json:"title"`
	PDFBase64 string     `json:"pdf_base64,omitempty"` // Slide deck as PDF; required by the Gemini script provider
	Notes     StringList `json:"notes,omitempty"`      // Per-slide speaker notes; required by the OpenAI script provider
	VoiceName *string    `json:"voice_name,omitempty"` // Default: first preset in voices.yaml
	Settings  JSONB      `json:"settings,omitempty"`
}

type CreateDeckResponse struct {
	DeckID uuid.UUID  `json:"deck_id"`
	Status DeckStatus `json:"status"`
}

// SceneEdit is one operator-edited scene in an update request. Only the
// editable fields are accepted; index and comment stay server-owned.
type SceneEdit struct {
	ID     uuid.UUID `json:"id"`
	Speech string    `json:"speech"`
	Markup *string   `json:"markup,omitempty"`
}

type UpdateScenesRequest struct {
	Scenes []SceneEdit `json:"scenes"`
}

// ExportBundle is the downstream-facing result of a finished deck: the
// enriched scene list plus the synthesized audio.
type ExportBundle struct {
	DeckID     uuid.UUID `json:"deck_id"`
	Title      string    `json:"title"`
	Scenes     []Scene   `json:"scenes"`
	AudioURL   string    `json:"audio_url"`
	ExportedAt time.Time `json:"exported_at"`
}
