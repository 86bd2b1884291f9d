package fixture

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	f, err := Load(filepath.Join("testdata", "bert_patch.json"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if f.Description == "" {
		t.Error("expected description")
	}
	if len(f.Classes) != 1 {
		t.Fatalf("got %d classes, want 1", len(f.Classes))
	}
	if len(f.Steps) != 4 {
		t.Fatalf("got %d steps, want 4", len(f.Steps))
	}
	if len(f.Expected) != 4 {
		t.Fatalf("got %d expectations, want 4", len(f.Expected))
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoad_EmptyStep(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	raw := `{"description": "bad", "classes": [], "steps": [{}]}`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for step without action")
	}
}

func TestLoad_BadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}
