package services

import (
	"log"
	"regexp"
	"strings"
)

// The markup pass is only allowed to add bracketed tags and punctuation.
// VerifyMarkup strips the tags back out and checks the words survived.

var audioTagPattern = regexp.MustCompile(`\[[^\[\]]*\]`)

// StripAudioTags removes bracketed audio tags from tagged speech, collapsing
// any whitespace left behind.
func StripAudioTags(tagged string) string {
	stripped := audioTagPattern.ReplaceAllString(tagged, " ")
	return strings.Join(strings.Fields(stripped), " ")
}

// VerifyMarkup checks every tagged scene against its source speech: with the
// tags removed, the word sequence must match. Punctuation changes are
// permitted (the tag pass may add ellipses or exclamation marks), so words
// are compared with trailing punctuation trimmed and case folded.
//
// Mismatches are logged, not fatal — a drifted word is an audio-quality
// problem, not a pipeline failure.
func VerifyMarkup(scenes []SceneDraft) (mismatched []int) {
	for i, scene := range scenes {
		if scene.Markup == "" {
			continue
		}
		if !wordsMatch(scene.Speech, StripAudioTags(scene.Markup)) {
			log.Printf("[Markup] scene %d: tagged text words differ from original speech", i)
			mismatched = append(mismatched, i)
		}
	}
	return mismatched
}

func wordsMatch(original, stripped string) bool {
	a := normalizeWords(original)
	b := normalizeWords(stripped)
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func normalizeWords(s string) []string {
	fields := strings.Fields(s)
	words := make([]string, 0, len(fields))
	for _, f := range fields {
		w := strings.ToLower(strings.Trim(f, ".,!?;:…-—\"'"))
		if w != "" {
			words = append(words, w)
		}
	}
	return words
}
