package config

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// VoicePreset is one named voice an operator can pick for a deck.
type VoicePreset struct {
	Name    string `yaml:"name" json:"name"`
	VoiceID string `yaml:"voice_id" json:"voice_id"`
	ModelID string `yaml:"model_id,omitempty" json:"model_id,omitempty"`
}

type voicesFile struct {
	Voices []VoicePreset `yaml:"voices"`
}

// defaultPresets is used when no voices.yaml exists. Voice IDs are the
// stock ElevenLabs narration voices this pipeline was tuned with.
var defaultPresets = []VoicePreset{
	{Name: "Sam", VoiceID: "utHJATTigr4CyfAK1MPl"},
	{Name: "Dan", VoiceID: "VtuhZ4p3OdnFWQ5O4O7Y"},
	{Name: "Adam", VoiceID: "s3TPKV1kjDlVtZbl4Ksh"},
	{Name: "Hope", VoiceID: "tnSpp4vdxKPjI9w0GnoV"},
}

// Voices holds the named voice presets, reloadable at runtime. The preset
// list is ordered; the first entry is the default voice for new decks.
type Voices struct {
	mu      sync.RWMutex
	path    string
	presets []VoicePreset
	byName  map[string]VoicePreset
}

// LoadVoices reads the presets file. A missing file is not an error: the
// built-in presets are used and a later write to the file replaces them
// once Watch is running.
func LoadVoices(path string) (*Voices, error) {
	v := &Voices{path: path}

	if err := v.reload(); err != nil {
		if os.IsNotExist(err) {
			log.Printf("[Voices] %s not found, using %d built-in presets", path, len(defaultPresets))
			v.set(defaultPresets)
			return v, nil
		}
		return nil, err
	}

	return v, nil
}

func (v *Voices) reload() error {
	data, err := os.ReadFile(v.path)
	if err != nil {
		return err
	}

	var f voicesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("failed to parse %s: %w", v.path, err)
	}

	if len(f.Voices) == 0 {
		return fmt.Errorf("%s contains no voices", v.path)
	}
	for i, p := range f.Voices {
		if p.Name == "" || p.VoiceID == "" {
			return fmt.Errorf("%s: voice %d is missing name or voice_id", v.path, i)
		}
	}

	v.set(f.Voices)
	log.Printf("[Voices] Loaded %d voice presets from %s", len(f.Voices), v.path)
	return nil
}

func (v *Voices) set(presets []VoicePreset) {
	byName := make(map[string]VoicePreset, len(presets))
	for _, p := range presets {
		byName[p.Name] = p
	}

	v.mu.Lock()
	v.presets = presets
	v.byName = byName
	v.mu.Unlock()
}

// Lookup returns the preset with the given name.
func (v *Voices) Lookup(name string) (VoicePreset, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	p, ok := v.byName[name]
	return p, ok
}

// Default returns the first preset in the list.
func (v *Voices) Default() VoicePreset {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.presets[0]
}

// All returns a copy of the preset list in file order.
func (v *Voices) All() []VoicePreset {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make([]VoicePreset, len(v.presets))
	copy(out, v.presets)
	return out
}

// Watch reloads the presets file whenever it changes, until ctx is done.
// Reload failures keep the previous presets; an operator editing the file
// never takes down running synthesis.
func (v *Voices) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory, not the file: editors replace files on save,
	// which would silently drop a file-level watch.
	dir := filepath.Dir(v.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	log.Printf("[Voices] Watching %s for preset changes", v.path)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if filepath.Clean(event.Name) != filepath.Clean(v.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if err := v.reload(); err != nil {
				log.Printf("[Voices] Reload failed, keeping previous presets: %v", err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			log.Printf("[Voices] Watcher error: %v", err)
		}
	}
}
