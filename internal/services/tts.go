package services

import (
	"context"

	"github.com/deckvoice/deckvoice/internal/timing"
)

// ---------------------------------------------------------------------------
// SpeechService — common interface for text-to-speech providers
// Both ElevenLabs and Cartesia implement this interface so the worker
// can use whichever is configured without knowing the underlying provider.
// ---------------------------------------------------------------------------

// SpeechResult is the common response type from any speech provider.
// Alignment is nil when the provider can't produce character timestamps;
// downstream duration computation needs it and must handle its absence.
type SpeechResult struct {
	AudioData []byte
	Format    string // "mp3", "wav", etc.
	Alignment *timing.Alignment
}

// SpeechService is the interface that any speech provider must implement.
type SpeechService interface {
	// Synthesize converts the full narration text (all scenes concatenated)
	// into audio. voiceID and modelID must already be in the provider's own
	// namespace; resolve them with ResolveVoice first.
	Synthesize(ctx context.Context, text, voiceID, modelID string) (*SpeechResult, error)

	// ResolveVoice maps a deck's voice preset onto this provider's voice and
	// model identifiers. Presets name ElevenLabs voices; a provider with its
	// own catalog substitutes its configured voice instead of passing the
	// preset through.
	ResolveVoice(presetVoiceID, presetModelID string) (voiceID, modelID string)
}
