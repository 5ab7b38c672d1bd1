package timing

import "strings"

// SceneSeparator is the text placed between scene scripts before synthesis.
// ElevenLabs v3 renders "[pause]" as silence; the surrounding spaces keep the
// marker from fusing with adjacent words. This exact string is also the only
// record of where scene boundaries sit inside the concatenated script, so it
// must never vary between Concat and the cursor arithmetic in engine.go.
const SceneSeparator = " [pause] "

// Concat joins scene scripts into the single string sent to synthesis.
// No separator is emitted before the first or after the last scene.
func Concat(texts []string) string {
	return strings.Join(texts, SceneSeparator)
}

// Split recovers the scene scripts from a concatenated script. It is the
// inverse of Concat provided no scene text contains the separator itself.
func Split(script string) []string {
	return strings.Split(script, SceneSeparator)
}
