package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadVoicesFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "voices.yaml")

	data := []byte(`voices:
  - name: Hope
    voice_id: tnSpp4vdxKPjI9w0GnoV
  - name: Dan
    voice_id: VtuhZ4p3OdnFWQ5O4O7Y
    model_id: eleven_v3
`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write voices file: %v", err)
	}

	v, err := LoadVoices(path)
	if err != nil {
		t.Fatalf("LoadVoices failed: %v", err)
	}

	if v.Default().Name != "Hope" {
		t.Errorf("expected first preset Hope as default, got %s", v.Default().Name)
	}

	dan, ok := v.Lookup("Dan")
	if !ok {
		t.Fatal("expected Dan preset")
	}
	if dan.ModelID != "eleven_v3" {
		t.Errorf("expected model_id eleven_v3, got %s", dan.ModelID)
	}

	if len(v.All()) != 2 {
		t.Errorf("expected 2 presets, got %d", len(v.All()))
	}
}

func TestLoadVoicesMissingFileUsesBuiltins(t *testing.T) {
	v, err := LoadVoices(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}

	if len(v.All()) == 0 {
		t.Fatal("expected built-in presets")
	}
	if _, ok := v.Lookup("Sam"); !ok {
		t.Errorf("expected built-in Sam preset")
	}
}

func TestLoadVoicesRejectsEmptyList(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "voices.yaml")
	if err := os.WriteFile(path, []byte("voices: []\n"), 0644); err != nil {
		t.Fatalf("failed to write voices file: %v", err)
	}

	if _, err := LoadVoices(path); err == nil {
		t.Error("expected error for empty voice list")
	}
}
