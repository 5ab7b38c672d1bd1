package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"google.golang.org/genai"
)

// ---------------------------------------------------------------------------
// Gemini Script Service
// Uses the Google Gen AI SDK with structured output (JSON schema) to turn a
// slide-deck PDF into per-slide narration, and to add bracketed audio tags
// in a second pass. The PDF is passed inline — Gemini reads the slides
// directly, no extraction step.
// ---------------------------------------------------------------------------

const defaultGeminiModel = "gemini-2.5-flash"

type GeminiService struct {
	apiKey string
	model  string
}

// Ensure GeminiService implements ScriptService at compile time.
var _ ScriptService = (*GeminiService)(nil)

func NewGeminiService(apiKey, model string) *GeminiService {
	if model == "" {
		model = defaultGeminiModel
	}
	return &GeminiService{
		apiKey: apiKey,
		model:  model,
	}
}

// sceneListSchema constrains the narration pass: {"scenes": [{comment, speech}]}
var sceneListSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"scenes": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"comment": {Type: genai.TypeString, Description: "A 1-sentence metadata comment for the generated scene"},
					"speech":  {Type: genai.TypeString, Description: "The voiceover speech for this particular scene"},
				},
				Required: []string{"comment", "speech"},
			},
		},
	},
	Required: []string{"scenes"},
}

// refinedSceneListSchema extends the scene schema with the tagged text field.
var refinedSceneListSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"scenes": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"comment":    {Type: genai.TypeString, Description: "A 1-sentence metadata comment for the generated scene"},
					"speech":     {Type: genai.TypeString, Description: "The voiceover speech for this particular scene"},
					"elevenlabs": {Type: genai.TypeString, Description: "The augmented voiceover with audio tags"},
				},
				Required: []string{"comment", "speech", "elevenlabs"},
			},
		},
	},
	Required: []string{"scenes"},
}

type sceneListResponse struct {
	Scenes []SceneDraft `json:"scenes"`
}

// GenerateScenes produces one narration scene per slide from the deck PDF.
func (s *GeminiService) GenerateScenes(ctx context.Context, material DeckMaterial) ([]SceneDraft, error) {
	if len(material.PDF) == 0 {
		return nil, fmt.Errorf("gemini script provider requires a deck PDF")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  s.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText("Analyze the slides in this PDF and generate voiceover scripts."),
			genai.NewPartFromBytes(material.PDF, "application/pdf"),
		}, genai.RoleUser),
	}

	config := &genai.GenerateContentConfig{
		ResponseMIMEType:  "application/json",
		ResponseSchema:    sceneListSchema,
		SystemInstruction: genai.NewContentFromText(narrationSystemPrompt, genai.RoleUser),
	}

	log.Printf("[Gemini] Generating narration (model=%s, pdfSize=%d bytes)", s.model, len(material.PDF))

	resp, err := client.Models.GenerateContent(ctx, s.model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("gemini narration request failed: %w", err)
	}

	scenes, err := parseSceneList(resp.Text(), false)
	if err != nil {
		return nil, err
	}

	log.Printf("[Gemini] Narration generated: %d scenes", len(scenes))
	return scenes, nil
}

// AddAudioTags runs the markup pass: each scene gets an audio-tagged variant
// of its speech, words unchanged.
func (s *GeminiService) AddAudioTags(ctx context.Context, scenes []SceneDraft) ([]SceneDraft, error) {
	if len(scenes) == 0 {
		return nil, fmt.Errorf("no scenes to tag")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  s.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	// The markup pass takes the narration output verbatim as its input.
	input, err := json.Marshal(sceneListResponse{Scenes: scenes})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal scenes: %w", err)
	}

	contents := []*genai.Content{
		genai.NewContentFromText(string(input), genai.RoleUser),
	}

	config := &genai.GenerateContentConfig{
		ResponseMIMEType:  "application/json",
		ResponseSchema:    refinedSceneListSchema,
		SystemInstruction: genai.NewContentFromText(audioTagSystemPrompt, genai.RoleUser),
	}

	log.Printf("[Gemini] Adding audio tags (model=%s, scenes=%d)", s.model, len(scenes))

	resp, err := client.Models.GenerateContent(ctx, s.model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("gemini markup request failed: %w", err)
	}

	tagged, err := parseSceneList(resp.Text(), true)
	if err != nil {
		return nil, err
	}

	if len(tagged) != len(scenes) {
		return nil, fmt.Errorf("markup pass returned %d scenes, expected %d", len(tagged), len(scenes))
	}

	log.Printf("[Gemini] Audio tags added: %d scenes", len(tagged))
	return tagged, nil
}

// parseSceneList decodes a scene-list JSON response and validates required
// fields, logging the raw response on failure so bad generations can be
// diagnosed after the fact.
func parseSceneList(raw string, wantMarkup bool) ([]SceneDraft, error) {
	const maxLogLen = 2000

	logRaw := func() {
		if len(raw) > maxLogLen {
			log.Printf("[Gemini] raw response (truncated): %s...", raw[:maxLogLen])
		} else {
			log.Printf("[Gemini] raw response: %s", raw)
		}
	}

	var parsed sceneListResponse
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		log.Printf("[Gemini] parse failed: %v", err)
		logRaw()
		return nil, fmt.Errorf("failed to parse scenes: %w", err)
	}

	if len(parsed.Scenes) == 0 {
		logRaw()
		return nil, fmt.Errorf("response has no scenes")
	}

	for i, scene := range parsed.Scenes {
		var missing []string
		if scene.Comment == "" {
			missing = append(missing, "comment")
		}
		if scene.Speech == "" {
			missing = append(missing, "speech")
		}
		if wantMarkup && scene.Markup == "" {
			missing = append(missing, "elevenlabs")
		}
		if len(missing) > 0 {
			log.Printf("[Gemini] scene %d missing required fields: %v", i, missing)
			logRaw()
			return nil, fmt.Errorf("scene %d missing required fields: %v", i, missing)
		}
	}

	return parsed.Scenes, nil
}
