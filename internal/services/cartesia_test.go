package services

import "testing"

func TestCartesiaResolveVoiceIgnoresPresets(t *testing.T) {
	svc := NewCartesiaService("key", "https://api.cartesia.ai", "cartesia-voice-1")

	// Presets name ElevenLabs voices and models; passing them through would
	// make every Cartesia request fail.
	voiceID, modelID := svc.ResolveVoice("utHJATTigr4CyfAK1MPl", "eleven_v3")
	if voiceID != "cartesia-voice-1" {
		t.Errorf("expected configured voice, got %s", voiceID)
	}
	if modelID != cartesiaDefaultModel {
		t.Errorf("expected %s, got %s", cartesiaDefaultModel, modelID)
	}
}

func TestCartesiaResolveVoiceWithoutPreset(t *testing.T) {
	svc := NewCartesiaService("key", "https://api.cartesia.ai", "cartesia-voice-1")

	voiceID, modelID := svc.ResolveVoice("", "")
	if voiceID != "cartesia-voice-1" || modelID != cartesiaDefaultModel {
		t.Errorf("unexpected resolution: %s / %s", voiceID, modelID)
	}
}
