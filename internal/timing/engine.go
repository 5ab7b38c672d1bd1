package timing

import (
	"errors"
	"fmt"
	"log"
	"unicode/utf8"
)

// ---------------------------------------------------------------------------
// Scene Alignment Engine
//
// A synthesis batch is one TTS call over the Concat of every scene script.
// The provider returns character-level timestamps for the whole utterance;
// this engine walks those arrays with a single forward-only cursor and
// recovers the start/end time of each scene from its character span.
//
// Backends are not guaranteed to return one alignment entry per input
// character: control markup and trailing whitespace can be dropped from the
// alignment while still being spoken as silence. The clamping and the
// per-scene error sentinel below exist so one short scene cannot corrupt the
// measurement of every scene after it.
// ---------------------------------------------------------------------------

// Alignment is the character-level timing record returned by a speech
// synthesis call for one synthesized string. The three slices are parallel:
// entry i describes the i-th character of the synthesized input. Start and
// end times are seconds from the beginning of the audio and non-decreasing.
type Alignment struct {
	Characters []string  `json:"characters"`
	StartTimes []float64 `json:"character_start_times_seconds"`
	EndTimes   []float64 `json:"character_end_times_seconds"`
}

// Missing reports whether the alignment lacks the timing arrays entirely.
func (a *Alignment) Missing() bool {
	return a == nil || len(a.StartTimes) == 0 || len(a.EndTimes) == 0
}

const (
	// ErrorDuration marks a scene whose duration could not be computed.
	// Callers surface these scenes for manual entry or a synthesis retry.
	ErrorDuration = "error"

	// zeroDuration is recorded for scenes with an empty script.
	zeroDuration = "0s"

	// breathingRoomSec is added to every measured duration so downstream
	// playback cueing doesn't clip the tail of a scene.
	breathingRoomSec = 0.5
)

// ErrAlignmentMissing is returned when the synthesis response carried no
// usable timing arrays. The whole batch fails and scenes stay unmodified.
var ErrAlignmentMissing = errors.New("alignment is missing timing arrays")

// Options control the cursor arithmetic for a given synthesis backend.
// This is deployment-time configuration, not per-call state.
type Options struct {
	// SeparatorRetained is true when the backend keeps alignment entries for
	// the literal separator characters between scenes. v3 models collapse
	// the separator into silence with no entries, so the default is false
	// and the cursor does not move across separators.
	SeparatorRetained bool
}

// ComputeDurations maps each scene script onto the alignment's timing arrays
// and returns one duration string per scene: a formatted measurement such as
// "12.34s", "0s" for empty scenes, or ErrorDuration.
//
// texts must be the exact scripts that were passed to Concat for this batch,
// in the same order. The scan is a single pass; the cursor never moves
// backward. A scene whose start index falls past the end of the alignment
// marks itself and every later scene with the sentinel (the cursor can no
// longer be trusted), but the function still returns a full result slice and
// only errors when the alignment is missing outright.
func ComputeDurations(texts []string, a *Alignment, opts Options) ([]string, error) {
	if a.Missing() {
		return nil, ErrAlignmentMissing
	}

	total := len(a.StartTimes)
	sepLen := utf8.RuneCountInString(SceneSeparator)
	durations := make([]string, len(texts))

	cursor := 0
	failed := false

	for i, text := range texts {
		if failed {
			durations[i] = ErrorDuration
			continue
		}

		textLen := utf8.RuneCountInString(text)

		if textLen == 0 {
			// Nothing was synthesized for this scene; the cursor only moves
			// for the separator rule below.
			durations[i] = zeroDuration
		} else {
			startIdx := cursor
			endIdx := cursor + textLen - 1

			if startIdx >= total {
				// The alignment is shorter than the reconstructed script.
				// Offsets past this point are meaningless, so stop doing
				// lookups — but keep returning a value per scene.
				log.Printf("[Timing] scene %d starts at alignment index %d but only %d entries exist; marking remaining scenes", i, startIdx, total)
				durations[i] = ErrorDuration
				failed = true
				continue
			}

			// Backends silently drop trailing characters (often whitespace)
			// from the alignment without dropping them from the audio.
			if endIdx > total-1 {
				endIdx = total - 1
			}

			if endIdx >= len(a.EndTimes) {
				// The parallel arrays disagree about their length. Skip this
				// scene only; the cursor advance below stays honest.
				log.Printf("[Timing] scene %d end index %d exceeds end-time array length %d; skipping scene", i, endIdx, len(a.EndTimes))
				durations[i] = ErrorDuration
			} else {
				d := a.EndTimes[endIdx] - a.StartTimes[startIdx] + breathingRoomSec
				durations[i] = fmt.Sprintf("%.2fs", d)
			}
		}

		cursor += textLen

		// The separator sits between scenes, so the last scene has none.
		if i < len(texts)-1 && opts.SeparatorRetained {
			cursor += sepLen
		}
	}

	return durations, nil
}
