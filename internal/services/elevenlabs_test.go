package services

import (
	"encoding/json"
	"testing"
)

func TestElevenLabsResolveVoicePassesPresetThrough(t *testing.T) {
	svc := NewElevenLabsService("key", "fallback-voice")

	voiceID, modelID := svc.ResolveVoice("utHJATTigr4CyfAK1MPl", "eleven_v3")
	if voiceID != "utHJATTigr4CyfAK1MPl" || modelID != "eleven_v3" {
		t.Errorf("unexpected resolution: %s / %s", voiceID, modelID)
	}

	// No preset: configured default voice, v3 model.
	voiceID, modelID = svc.ResolveVoice("", "")
	if voiceID != "fallback-voice" {
		t.Errorf("expected fallback voice, got %s", voiceID)
	}
	if modelID != elevenLabsDefaultModel {
		t.Errorf("expected %s, got %s", elevenLabsDefaultModel, modelID)
	}
}

func TestElevenLabsResponseDecoding(t *testing.T) {
	raw := `{
		"audio_base64": "SGVsbG8=",
		"alignment": {
			"characters": ["H", "i"],
			"character_start_times_seconds": [0.0, 0.1],
			"character_end_times_seconds": [0.1, 0.2]
		},
		"normalized_alignment": {
			"characters": ["H", "i", "!"],
			"character_start_times_seconds": [0.0, 0.1, 0.2],
			"character_end_times_seconds": [0.1, 0.2, 0.3]
		}
	}`

	var resp elevenLabsTimestampResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp.AudioBase64 != "SGVsbG8=" {
		t.Errorf("unexpected audio payload: %q", resp.AudioBase64)
	}
	if resp.Alignment == nil || len(resp.Alignment.Characters) != 2 {
		t.Fatalf("raw alignment not decoded: %+v", resp.Alignment)
	}
	if resp.Alignment.StartTimes[1] != 0.1 || resp.Alignment.EndTimes[1] != 0.2 {
		t.Errorf("alignment times wrong: %+v", resp.Alignment)
	}
	if resp.NormalizedAlignment == nil || len(resp.NormalizedAlignment.Characters) != 3 {
		t.Errorf("normalized alignment not decoded: %+v", resp.NormalizedAlignment)
	}
}

func TestElevenLabsResponseWithoutAlignment(t *testing.T) {
	raw := `{"audio_base64": "SGVsbG8="}`

	var resp elevenLabsTimestampResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp.Alignment != nil || resp.NormalizedAlignment != nil {
		t.Errorf("expected nil alignments, got %+v / %+v", resp.Alignment, resp.NormalizedAlignment)
	}
	if !resp.Alignment.Missing() {
		t.Error("nil alignment should report missing")
	}
}
