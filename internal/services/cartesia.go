package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// ---------------------------------------------------------------------------
// Cartesia Text-to-Speech Service
// Fallback speech provider. Cartesia's bytes endpoint returns audio only —
// no character timestamps — so decks synthesized through it get audio but
// no per-scene durations.
// ---------------------------------------------------------------------------

const (
	cartesiaAPIVersion   = "2024-06-10"
	cartesiaDefaultModel = "sonic-english"
)

type CartesiaService struct {
	apiKey     string
	apiURL     string
	voiceID    string
	apiVersion string
	client     *http.Client
}

// Ensure CartesiaService implements SpeechService at compile time.
var _ SpeechService = (*CartesiaService)(nil)

func NewCartesiaService(apiKey, apiURL, voiceID string) *CartesiaService {
	return &CartesiaService{
		apiKey:     apiKey,
		apiURL:     apiURL,
		voiceID:    voiceID,
		apiVersion: cartesiaAPIVersion,
		client:     &http.Client{Timeout: 120 * time.Second},
	}
}

// ResolveVoice ignores the preset: preset voice and model identifiers belong
// to the ElevenLabs namespace and Cartesia would reject them. Every deck
// synthesized through Cartesia uses the configured voice and the sonic model.
func (s *CartesiaService) ResolveVoice(_, _ string) (string, string) {
	return s.voiceID, cartesiaDefaultModel
}

type cartesiaRequest struct {
	ModelID      string                 `json:"model_id"`
	Transcript   string                 `json:"transcript"`
	Voice        cartesiaVoiceSpecifier `json:"voice"`
	Language     *string                `json:"language,omitempty"`
	OutputFormat cartesiaOutputFormat   `json:"output_format"`
}

type cartesiaVoiceSpecifier struct {
	Mode string `json:"mode"`
	ID   string `json:"id"`
}

type cartesiaOutputFormat struct {
	Container  string `json:"container"`
	Encoding   string `json:"encoding,omitempty"`
	SampleRate int    `json:"sample_rate"`
	BitRate    int    `json:"bit_rate,omitempty"`
}

// Synthesize generates audio from text using Cartesia. The result's
// Alignment is always nil — Cartesia does not return character timestamps.
// Implements the SpeechService interface.
func (s *CartesiaService) Synthesize(ctx context.Context, text, voiceID, modelID string) (*SpeechResult, error) {
	if voiceID == "" {
		return nil, fmt.Errorf("cartesia: voice ID is required")
	}
	if modelID == "" {
		modelID = cartesiaDefaultModel
	}

	lang := "en"
	reqBody := cartesiaRequest{
		ModelID:    modelID,
		Transcript: text,
		Voice: cartesiaVoiceSpecifier{
			Mode: "id",
			ID:   voiceID,
		},
		Language: &lang,
		OutputFormat: cartesiaOutputFormat{
			Container:  "mp3",
			SampleRate: 44100,
			BitRate:    192000,
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/tts/bytes", s.apiURL)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Cartesia-Version", s.apiVersion)

	log.Printf("[Cartesia] Synthesizing (voiceID=%s, model=%s, textLen=%d)", voiceID, modelID, len(text))

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("cartesia returned status %d: %s", resp.StatusCode, string(body))
	}

	audioData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio: %w", err)
	}

	if len(audioData) == 0 {
		return nil, fmt.Errorf("cartesia returned empty audio")
	}

	log.Printf("[Cartesia] Synthesis complete (%d bytes audio, no alignment)", len(audioData))

	return &SpeechResult{
		AudioData: audioData,
		Format:    "mp3",
		Alignment: nil,
	}, nil
}
