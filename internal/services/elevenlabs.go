package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/deckvoice/deckvoice/internal/timing"
)

// ---------------------------------------------------------------------------
// ElevenLabs Text-to-Speech Service
// Uses the with-timestamps endpoint so we get character-level alignment
// alongside the audio. The v3 model understands bracketed audio tags in the
// text ([thoughtful], [short pause], ...) and collapses them to delivery
// rather than reading them out.
// ---------------------------------------------------------------------------

const (
	elevenLabsBaseURL      = "https://api.elevenlabs.io"
	elevenLabsDefaultModel = "eleven_v3"
	elevenLabsOutputFormat = "mp3_44100_128" // High-quality MP3
)

// ElevenLabsService handles text-to-speech via the ElevenLabs API.
type ElevenLabsService struct {
	apiKey         string
	defaultVoiceID string
	client         *http.Client
}

// Ensure ElevenLabsService implements SpeechService at compile time.
var _ SpeechService = (*ElevenLabsService)(nil)

// NewElevenLabsService creates a new ElevenLabs speech service. defaultVoiceID
// is used when a deck carries no voice preset.
func NewElevenLabsService(apiKey, defaultVoiceID string) *ElevenLabsService {
	return &ElevenLabsService{
		apiKey:         apiKey,
		defaultVoiceID: defaultVoiceID,
		// Long decks take a while through the v3 model
		client: &http.Client{Timeout: 300 * time.Second},
	}
}

// ResolveVoice passes preset identifiers through: presets name ElevenLabs
// voices already. Empty fields fall back to the configured default voice and
// the v3 model.
func (s *ElevenLabsService) ResolveVoice(presetVoiceID, presetModelID string) (string, string) {
	voiceID := presetVoiceID
	if voiceID == "" {
		voiceID = s.defaultVoiceID
	}
	modelID := presetModelID
	if modelID == "" {
		modelID = elevenLabsDefaultModel
	}
	return voiceID, modelID
}

type elevenLabsRequest struct {
	Text    string `json:"text"`
	ModelID string `json:"model_id"`
}

// elevenLabsTimestampResponse is the with-timestamps response shape. Both
// alignment variants carry the same parallel-array structure.
type elevenLabsTimestampResponse struct {
	AudioBase64         string            `json:"audio_base64"`
	Alignment           *timing.Alignment `json:"alignment"`
	NormalizedAlignment *timing.Alignment `json:"normalized_alignment"`
}

// Synthesize converts text to speech and returns the audio together with its
// character alignment. Implements the SpeechService interface.
func (s *ElevenLabsService) Synthesize(ctx context.Context, text, voiceID, modelID string) (*SpeechResult, error) {
	if voiceID == "" {
		return nil, fmt.Errorf("elevenlabs: voice ID is required")
	}
	if modelID == "" {
		modelID = elevenLabsDefaultModel
	}

	reqBody := elevenLabsRequest{
		Text:    text,
		ModelID: modelID,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal ElevenLabs request: %w", err)
	}

	// POST /v1/text-to-speech/{voice_id}/with-timestamps?output_format=mp3_44100_128
	url := fmt.Sprintf("%s/v1/text-to-speech/%s/with-timestamps?output_format=%s",
		elevenLabsBaseURL, voiceID, elevenLabsOutputFormat)

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create ElevenLabs request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", s.apiKey)

	log.Printf("[ElevenLabs] Synthesizing (voiceID=%s, model=%s, textLen=%d)",
		voiceID, modelID, len(text))

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ElevenLabs request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("ElevenLabs returned status %d: %s", resp.StatusCode, string(body))
	}

	var tsResp elevenLabsTimestampResponse
	if err := json.NewDecoder(resp.Body).Decode(&tsResp); err != nil {
		return nil, fmt.Errorf("failed to decode ElevenLabs response: %w", err)
	}

	if tsResp.AudioBase64 == "" {
		return nil, fmt.Errorf("ElevenLabs returned empty audio")
	}

	audioData, err := base64.StdEncoding.DecodeString(tsResp.AudioBase64)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ElevenLabs audio: %w", err)
	}

	// Prefer raw alignment over normalized_alignment so character counts
	// match the input text 1:1.
	alignment := tsResp.Alignment
	if alignment == nil || alignment.Missing() {
		alignment = tsResp.NormalizedAlignment
	}

	alignedChars := 0
	if alignment != nil {
		alignedChars = len(alignment.Characters)
	}
	log.Printf("[ElevenLabs] Synthesis complete (%d bytes audio, %d aligned chars)",
		len(audioData), alignedChars)

	return &SpeechResult{
		AudioData: audioData,
		Format:    "mp3",
		Alignment: alignment,
	}, nil
}
