package models

import (
	"encoding/json"
	"testing"
)

func TestJSONBMarshal(t *testing.T) {
	j := JSONB{
		"stability": 0.6,
		"voice":     "Hope",
	}

	data, err := j.Value()
	if err != nil {
		t.Fatalf("failed to marshal JSONB: %v", err)
	}

	if data == nil {
		t.Fatal("expected non-nil data")
	}

	// Verify it's valid JSON
	var result map[string]interface{}
	if err := json.Unmarshal(data.([]byte), &result); err != nil {
		t.Fatalf("failed to unmarshal result: %v", err)
	}

	if result["voice"] != "Hope" {
		t.Errorf("expected voice=Hope, got %v", result["voice"])
	}
}

func TestJSONBScan(t *testing.T) {
	jsonData := []byte(`{"voice": "Dan", "speed": 0.85}`)

	var j JSONB
	if err := j.Scan(jsonData); err != nil {
		t.Fatalf("failed to scan: %v", err)
	}

	if j["voice"] != "Dan" {
		t.Errorf("expected voice=Dan, got %v", j["voice"])
	}

	if j["speed"].(float64) != 0.85 {
		t.Errorf("expected speed=0.85, got %v", j["speed"])
	}
}

func TestStringListRoundTrip(t *testing.T) {
	notes := StringList{"Intro slide", "", "Defining a function"}

	data, err := notes.Value()
	if err != nil {
		t.Fatalf("failed to marshal StringList: %v", err)
	}

	var back StringList
	if err := back.Scan(data.([]byte)); err != nil {
		t.Fatalf("failed to scan: %v", err)
	}

	if len(back) != 3 || back[2] != "Defining a function" {
		t.Errorf("round trip lost data: %v", back)
	}
}

func TestDeckTransitions(t *testing.T) {
	cases := []struct {
		from    DeckStatus
		to      DeckStatus
		allowed bool
	}{
		{DeckStatusCreated, DeckStatusNarrating, true},
		{DeckStatusCreated, DeckStatusSynthesizing, false},
		{DeckStatusNarrated, DeckStatusTagging, true},
		{DeckStatusNarrated, DeckStatusVoiced, false},
		{DeckStatusTagged, DeckStatusSynthesizing, true},
		{DeckStatusTagged, DeckStatusTagging, true}, // regenerate tags
		{DeckStatusVoiced, DeckStatusSynthesizing, true},
		{DeckStatusVoiced, DeckStatusCreated, false},
		{DeckStatusFailed, DeckStatusSynthesizing, true},
	}

	for _, c := range cases {
		if got := c.from.CanTransition(c.to); got != c.allowed {
			t.Errorf("%s -> %s: expected %v, got %v", c.from, c.to, c.allowed, got)
		}
	}
}

func TestDeckStatusValues(t *testing.T) {
	statuses := []DeckStatus{
		DeckStatusCreated,
		DeckStatusNarrating,
		DeckStatusNarrated,
		DeckStatusTagging,
		DeckStatusTagged,
		DeckStatusSynthesizing,
		DeckStatusVoiced,
		DeckStatusFailed,
	}

	for _, status := range statuses {
		if status == "" {
			t.Errorf("empty status found")
		}
	}
}
