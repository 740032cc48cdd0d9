package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
}

func TestParse(t *testing.T) {
	cfg, err := Parse(`
chunk_size = 64
undo_limit = 0
log_level  = "debug"

[document]
width  = 100
height = 50

[render]
workers = 3
`)
	if err != nil {
		t.Fatal(err)
	}
	want := Default()
	want.ChunkSize = 64
	want.UndoLimit = 0
	want.LogLevel = "debug"
	want.Document = Document{Width: 100, Height: 50}
	want.Render.Workers = 3
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
	}
	if l, _ := cfg.Level(); l != slog.LevelDebug {
		t.Errorf("Level() = %v, want debug", l)
	}
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name string
		toml string
	}{
		{"chunk size not a power of two", "chunk_size = 48"},
		{"chunk size too small", "chunk_size = 4"},
		{"negative undo limit", "undo_limit = -1"},
		{"empty document", "[document]\nwidth = 0"},
		{"negative workers", "[render]\nworkers = -2"},
		{"no cache", "[render]\ncache_capacity = 0"},
		{"no previews", "[render]\npreview_size = -1"},
		{"log level", `log_level = "loud"`},
		{"unknown key", "chunksize = 64"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.toml)
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("Parse() error = %v, want %v", err, ErrInvalid)
			}
		})
	}
}

func TestParseSyntaxError(t *testing.T) {
	_, err := Parse("chunk_size = ")
	if err == nil || errors.Is(err, ErrInvalid) {
		t.Errorf("Parse() error = %v, want a syntax error", err)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pixdoc.toml")
	if err := os.WriteFile(path, []byte("undo_limit = 7\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.UndoLimit != 7 {
		t.Errorf("UndoLimit = %d, want 7", cfg.UndoLimit)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("Load() of a missing file succeeded")
	}
}
