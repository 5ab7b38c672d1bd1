package worker

import (
	"errors"
	"fmt"
	"testing"

	"github.com/deckvoice/deckvoice/internal/timing"
)

func TestDurationFailureKeepsAudioWhenAlignmentMissing(t *testing.T) {
	code, keepAudio := durationFailure(timing.ErrAlignmentMissing)
	if code != "alignment_missing" {
		t.Errorf("expected alignment_missing, got %s", code)
	}
	if !keepAudio {
		t.Error("synthesized audio must be kept when only the alignment is missing")
	}

	// Wrapped errors classify the same way.
	wrapped := fmt.Errorf("computing durations: %w", timing.ErrAlignmentMissing)
	code, keepAudio = durationFailure(wrapped)
	if code != "alignment_missing" || !keepAudio {
		t.Errorf("wrapped alignment error misclassified: code=%s keep=%v", code, keepAudio)
	}
}

func TestDurationFailureDiscardsAudioOnOtherErrors(t *testing.T) {
	code, keepAudio := durationFailure(errors.New("timing arrays disagree"))
	if code != "duration_failed" {
		t.Errorf("expected duration_failed, got %s", code)
	}
	if keepAudio {
		t.Error("audio must not be kept for arbitrary duration errors")
	}
}
