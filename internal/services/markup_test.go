package services

import "testing"

func TestStripAudioTags(t *testing.T) {
	got := StripAudioTags("[thoughtful] So, what exactly is a function? [short pause] Let's find out.")
	want := "So, what exactly is a function? Let's find out."
	if got != want {
		t.Errorf("StripAudioTags = %q, want %q", got, want)
	}
}

func TestStripAudioTagsNoTags(t *testing.T) {
	got := StripAudioTags("Plain speech with no tags.")
	if got != "Plain speech with no tags." {
		t.Errorf("StripAudioTags altered untagged text: %q", got)
	}
}

func TestVerifyMarkupAccepts(t *testing.T) {
	scenes := []SceneDraft{
		{
			Speech: "Welcome! This is a quick byte about functions.",
			Markup: "[warm] Welcome! This is a quick byte about... functions!",
		},
		{
			Speech: "Once defined, call the function.",
			Markup: "Once defined, [short pause] call the function.",
		},
	}

	if mismatched := VerifyMarkup(scenes); len(mismatched) != 0 {
		t.Errorf("expected no mismatches, got %v", mismatched)
	}
}

func TestVerifyMarkupFlagsWordDrift(t *testing.T) {
	scenes := []SceneDraft{
		{
			Speech: "Welcome! This is a quick byte about functions.",
			Markup: "[warm] Welcome! This is a fast byte about functions.",
		},
	}

	mismatched := VerifyMarkup(scenes)
	if len(mismatched) != 1 || mismatched[0] != 0 {
		t.Errorf("expected scene 0 flagged, got %v", mismatched)
	}
}

func TestVerifyMarkupSkipsUntagged(t *testing.T) {
	scenes := []SceneDraft{
		{Speech: "No markup yet."},
	}
	if mismatched := VerifyMarkup(scenes); len(mismatched) != 0 {
		t.Errorf("untagged scene should be skipped, got %v", mismatched)
	}
}
