package timing

import (
	"strings"
	"testing"
)

// uniformAlignment builds an alignment over the given string with each
// character taking 0.1s, starting at t=0.
func uniformAlignment(s string) *Alignment {
	runes := []rune(s)
	a := &Alignment{
		Characters: make([]string, len(runes)),
		StartTimes: make([]float64, len(runes)),
		EndTimes:   make([]float64, len(runes)),
	}
	for i, r := range runes {
		a.Characters[i] = string(r)
		a.StartTimes[i] = float64(i) * 0.1
		a.EndTimes[i] = float64(i+1) * 0.1
	}
	return a
}

// truncated returns a copy of the alignment keeping only the first n entries.
func truncated(a *Alignment, n int) *Alignment {
	return &Alignment{
		Characters: a.Characters[:n],
		StartTimes: a.StartTimes[:n],
		EndTimes:   a.EndTimes[:n],
	}
}

func TestComputeDurationsSeparatorCollapsed(t *testing.T) {
	texts := []string{"Hi.", "Bye."}
	// The backend collapses " [pause] " to silence, so the alignment only
	// covers "Hi.Bye." (7 characters).
	a := uniformAlignment("Hi.Bye.")

	durations, err := ComputeDurations(texts, a, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if durations[0] != "0.80s" {
		t.Errorf("scene 0: expected 0.80s, got %s", durations[0])
	}
	if durations[1] != "0.90s" {
		t.Errorf("scene 1: expected 0.90s, got %s", durations[1])
	}
}

func TestComputeDurationsSeparatorRetained(t *testing.T) {
	texts := []string{"Hi.", "Bye."}
	a := uniformAlignment(Concat(texts)) // "Hi. [pause] Bye."

	durations, err := ComputeDurations(texts, a, Options{SeparatorRetained: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Scene 1 spans indices 0-2, scene 2 spans 12-15 after skipping the
	// 9-character separator.
	if durations[0] != "0.80s" {
		t.Errorf("scene 0: expected 0.80s, got %s", durations[0])
	}
	if durations[1] != "0.90s" {
		t.Errorf("scene 1: expected 0.90s, got %s", durations[1])
	}
}

func TestComputeDurationsClampsTruncatedTail(t *testing.T) {
	texts := []string{"Hi.", "Bye."}
	// Backend dropped the last two characters from the alignment but still
	// spoke them. Scene 2's end index (6) clamps to 4.
	a := truncated(uniformAlignment("Hi.Bye."), 5)

	durations, err := ComputeDurations(texts, a, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if durations[0] != "0.80s" {
		t.Errorf("scene 0: expected 0.80s, got %s", durations[0])
	}
	// end[4]=0.5, start[3]=0.3 -> 0.2 + 0.5 padding
	if durations[1] != "0.70s" {
		t.Errorf("scene 1: expected clamped 0.70s, got %s", durations[1])
	}
}

func TestComputeDurationsStartOutOfBoundsHaltsScan(t *testing.T) {
	texts := []string{"Hi.", "Bye.", "More."}
	// Only 2 alignment entries: scene 1 clamps, scene 2's start index (3)
	// is out of bounds and poisons every scene after it.
	a := truncated(uniformAlignment("Hi.Bye."), 2)

	durations, err := ComputeDurations(texts, a, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if durations[0] != "0.70s" {
		t.Errorf("scene 0: expected preserved 0.70s, got %s", durations[0])
	}
	if durations[1] != ErrorDuration {
		t.Errorf("scene 1: expected error sentinel, got %s", durations[1])
	}
	if durations[2] != ErrorDuration {
		t.Errorf("scene 2: expected error sentinel, got %s", durations[2])
	}
}

func TestComputeDurationsEmptySceneDoesNotDesyncCursor(t *testing.T) {
	texts := []string{"Hi.", "", "Bye."}
	a := uniformAlignment("Hi.Bye.")

	durations, err := ComputeDurations(texts, a, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if durations[1] != "0s" {
		t.Errorf("empty scene: expected 0s, got %s", durations[1])
	}
	// The third scene must land exactly where the second scene of the
	// two-scene batch would: indices 3-6.
	if durations[0] != "0.80s" || durations[2] != "0.90s" {
		t.Errorf("cursor desynced around empty scene: got %v", durations)
	}
}

func TestComputeDurationsEmptySceneSeparatorRetained(t *testing.T) {
	texts := []string{"Hi.", "", "Bye."}
	// "Hi. [pause]  [pause] Bye." — the empty scene contributes no characters
	// of its own, but both separators around it are synthesized.
	a := uniformAlignment(Concat(texts))

	durations, err := ComputeDurations(texts, a, Options{SeparatorRetained: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if durations[1] != "0s" {
		t.Errorf("empty scene: expected 0s, got %s", durations[1])
	}
	// The cursor must cross the separator after the empty scene too: scene 3
	// spans indices 21-24, giving end[24]=2.5 - start[21]=2.1 + padding.
	if durations[0] != "0.80s" {
		t.Errorf("scene 0: expected 0.80s, got %s", durations[0])
	}
	if durations[2] != "0.90s" {
		t.Errorf("scene 2: expected 0.90s, got %s", durations[2])
	}
}

func TestComputeDurationsAlignmentMissing(t *testing.T) {
	texts := []string{"Hi."}

	if _, err := ComputeDurations(texts, nil, Options{}); err != ErrAlignmentMissing {
		t.Errorf("nil alignment: expected ErrAlignmentMissing, got %v", err)
	}

	empty := &Alignment{}
	if _, err := ComputeDurations(texts, empty, Options{}); err != ErrAlignmentMissing {
		t.Errorf("empty alignment: expected ErrAlignmentMissing, got %v", err)
	}
}

func TestComputeDurationsMismatchedEndTimesSkipsSceneOnly(t *testing.T) {
	texts := []string{"Hi.", "Bye."}
	a := uniformAlignment("Hi.Bye.")
	// EndTimes shorter than StartTimes: scene 2's clamped end index (6) is
	// valid against StartTimes but not EndTimes. Only that scene fails.
	a.EndTimes = a.EndTimes[:3]

	durations, err := ComputeDurations(texts, a, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if durations[0] != "0.80s" {
		t.Errorf("scene 0: expected 0.80s, got %s", durations[0])
	}
	if durations[1] != ErrorDuration {
		t.Errorf("scene 1: expected error sentinel, got %s", durations[1])
	}
}

func TestComputeDurationsCountsRunesNotBytes(t *testing.T) {
	texts := []string{"Héllo…", "Bye."}
	// 6 runes + 4 runes with the separator collapsed.
	a := uniformAlignment("Héllo…Bye.")

	durations, err := ComputeDurations(texts, a, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Scene 1 spans indices 0-5, scene 2 spans 6-9.
	if durations[0] != "1.10s" {
		t.Errorf("scene 0: expected 1.10s, got %s", durations[0])
	}
	if durations[1] != "0.90s" {
		t.Errorf("scene 1: expected 0.90s, got %s", durations[1])
	}
}

func TestComputeDurationsIdempotent(t *testing.T) {
	texts := []string{"One.", "Two two.", "", "Three."}
	a := uniformAlignment(strings.Join(texts, ""))

	first, err := ComputeDurations(texts, a, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := ComputeDurations(texts, a, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := range first {
		if first[i] != second[i] {
			t.Errorf("scene %d: %s != %s across runs", i, first[i], second[i])
		}
	}
}

func TestComputeDurationsNonNegative(t *testing.T) {
	texts := []string{"Alpha beta.", "Gamma.", "Delta epsilon zeta."}
	a := uniformAlignment(strings.Join(texts, ""))

	durations, err := ComputeDurations(texts, a, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i, d := range durations {
		if d == ErrorDuration {
			t.Errorf("scene %d unexpectedly errored", i)
			continue
		}
		if strings.HasPrefix(d, "-") {
			t.Errorf("scene %d: negative duration %s", i, d)
		}
	}
}
