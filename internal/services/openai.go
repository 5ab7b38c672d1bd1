package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// ---------------------------------------------------------------------------
// OpenAI Script Service
// Alternative narration provider. OpenAI JSON mode can't read the PDF
// directly, so this provider works from the per-slide speaker notes
// submitted with the deck, one scene per note.
// ---------------------------------------------------------------------------

const openAIScriptModel = "gpt-5-mini"

type OpenAIService struct {
	client *openai.Client
}

// Ensure OpenAIService implements ScriptService at compile time.
var _ ScriptService = (*OpenAIService)(nil)

func NewOpenAIService(apiKey string) *OpenAIService {
	return &OpenAIService{
		client: openai.NewClient(apiKey),
	}
}

// GenerateScenes produces one narration scene per speaker note.
func (s *OpenAIService) GenerateScenes(ctx context.Context, material DeckMaterial) ([]SceneDraft, error) {
	if len(material.Notes) == 0 {
		return nil, fmt.Errorf("openai script provider requires per-slide speaker notes")
	}

	userPrompt := buildNotesUserPrompt(material)

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: openAIScriptModel,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: narrationSystemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: userPrompt,
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 1.0,
	})
	if err != nil {
		return nil, fmt.Errorf("openai request failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from openai")
	}

	scenes, err := parseOpenAISceneList(resp.Choices[0].Message.Content, false)
	if err != nil {
		return nil, err
	}

	if len(scenes) != len(material.Notes) {
		log.Printf("[OpenAI script] scene count %d does not match note count %d", len(scenes), len(material.Notes))
	}

	log.Printf("[OpenAI script] narration generated: %d scenes", len(scenes))
	return scenes, nil
}

// AddAudioTags runs the markup pass over already-generated scenes.
func (s *OpenAIService) AddAudioTags(ctx context.Context, scenes []SceneDraft) ([]SceneDraft, error) {
	if len(scenes) == 0 {
		return nil, fmt.Errorf("no scenes to tag")
	}

	input, err := json.Marshal(sceneListResponse{Scenes: scenes})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal scenes: %w", err)
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: openAIScriptModel,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: audioTagSystemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: string(input),
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 1.0,
	})
	if err != nil {
		return nil, fmt.Errorf("openai markup request failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from openai")
	}

	tagged, err := parseOpenAISceneList(resp.Choices[0].Message.Content, true)
	if err != nil {
		return nil, err
	}

	if len(tagged) != len(scenes) {
		return nil, fmt.Errorf("markup pass returned %d scenes, expected %d", len(tagged), len(scenes))
	}

	log.Printf("[OpenAI script] audio tags added: %d scenes", len(tagged))
	return tagged, nil
}

func buildNotesUserPrompt(material DeckMaterial) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Deck title: %q\n\n", material.Title)
	b.WriteString("Below are the speaker notes for each slide, in order. Generate one voiceover scene per slide.\n")
	for i, note := range material.Notes {
		fmt.Fprintf(&b, "\nSlide %d notes:\n%s\n", i+1, note)
	}
	return b.String()
}

// parseOpenAISceneList decodes a scene-list JSON response and validates
// required fields, logging the raw response on failure.
func parseOpenAISceneList(raw string, wantMarkup bool) ([]SceneDraft, error) {
	const maxLogLen = 2000

	logRaw := func() {
		if len(raw) > maxLogLen {
			log.Printf("[OpenAI script] raw response (truncated): %s...", raw[:maxLogLen])
		} else {
			log.Printf("[OpenAI script] raw response: %s", raw)
		}
	}

	var parsed sceneListResponse
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		log.Printf("[OpenAI script] parse failed: %v", err)
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
			log.Printf("[OpenAI script] scene %d missing required fields: %v", i, missing)
			logRaw()
			return nil, fmt.Errorf("scene %d missing required fields: %v", i, missing)
		}
	}

	return parsed.Scenes, nil
}
