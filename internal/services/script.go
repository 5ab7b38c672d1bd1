package services

import "context"

// ---------------------------------------------------------------------------
// ScriptService — common interface for narration script providers
// Both Gemini and OpenAI implement this interface so the worker can use
// whichever is configured without knowing the underlying provider.
// ---------------------------------------------------------------------------

// SceneDraft is one slide's worth of generated narration. Markup is empty
// after the narration pass and filled in by the audio-tag pass.
type SceneDraft struct {
	Comment string `json:"comment"`
	Speech  string `json:"speech"`
	Markup  string `json:"elevenlabs,omitempty"`
}

// DeckMaterial is the source material a provider works from. Gemini reads
// the PDF directly; OpenAI works from the per-slide speaker notes.
type DeckMaterial struct {
	Title string
	PDF   []byte   // Raw PDF bytes, may be nil
	Notes []string // Per-slide speaker notes, may be empty
}

// ScriptService is the interface that any narration provider must implement.
type ScriptService interface {
	// GenerateScenes produces one scene per slide from the deck material.
	GenerateScenes(ctx context.Context, material DeckMaterial) ([]SceneDraft, error)

	// AddAudioTags rewrites each scene's speech with bracketed delivery tags
	// (e.g. "[thoughtful]", "[short pause]") in the Markup field. The words
	// of the speech must come through unchanged.
	AddAudioTags(ctx context.Context, scenes []SceneDraft) ([]SceneDraft, error)
}
