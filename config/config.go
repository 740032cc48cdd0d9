// Package config loads pixdoc settings from TOML files.
//
// A missing key keeps its default, so a file only needs the settings it
// changes:
//
//	chunk_size = 128
//	undo_limit = 50
//	log_level  = "debug"
//
//	[document]
//	width  = 640
//	height = 480
//
//	[render]
//	workers        = 4
//	cache_capacity = 512
//	preview_size   = 48
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"math/bits"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/gogpu/pixdoc/chunky"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("config: invalid")

// Config holds the settings of a session.
type Config struct {
	// ChunkSize is the side of a Full resolution chunk in pixels. It must be
	// a power of two, at least 8 so every resolution has whole pixels.
	ChunkSize int `toml:"chunk_size"`

	// UndoLimit bounds the undo history. 0 means unlimited.
	UndoLimit int `toml:"undo_limit"`

	// LogLevel is one of debug, info, warn or error.
	LogLevel string `toml:"log_level"`

	Document Document `toml:"document"`
	Render   Render   `toml:"render"`
}

// Document describes new documents.
type Document struct {
	Width  int `toml:"width"`
	Height int `toml:"height"`
}

// Render configures the renderers.
type Render struct {
	// Workers is the number of render goroutines. 0 uses GOMAXPROCS.
	Workers int `toml:"workers"`

	// CacheCapacity is the number of chunk bitmaps kept for viewports.
	CacheCapacity int `toml:"cache_capacity"`

	// PreviewSize is the edge of member previews in pixels.
	PreviewSize int `toml:"preview_size"`
}

// Default returns a working configuration.
func Default() Config {
	return Config{
		ChunkSize: chunky.DefaultChunkSize,
		UndoLimit: 100,
		LogLevel:  "info",
		Document:  Document{Width: 512, Height: 512},
		Render: Render{
			CacheCapacity: 1024,
			PreviewSize:   64,
		},
	}
}

// Load reads the file at path on top of Default and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return finish(cfg, md)
}

// Parse decodes TOML text on top of Default and validates the result.
func Parse(data string) (Config, error) {
	cfg := Default()
	md, err := toml.Decode(data, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("config: parse: %w", err)
	}
	return finish(cfg, md)
}

func finish(cfg Config, md toml.MetaData) (Config, error) {
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%w: unknown keys %s", ErrInvalid, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first setting that cannot work.
func (c Config) Validate() error {
	switch {
	case c.ChunkSize < 8 || bits.OnesCount(uint(c.ChunkSize)) != 1:
		return fmt.Errorf("%w: chunk_size %d is not a power of two >= 8", ErrInvalid, c.ChunkSize)
	case c.UndoLimit < 0:
		return fmt.Errorf("%w: undo_limit %d is negative", ErrInvalid, c.UndoLimit)
	case c.Document.Width <= 0 || c.Document.Height <= 0:
		return fmt.Errorf("%w: document size %dx%d", ErrInvalid, c.Document.Width, c.Document.Height)
	case c.Render.Workers < 0:
		return fmt.Errorf("%w: render.workers %d is negative", ErrInvalid, c.Render.Workers)
	case c.Render.CacheCapacity <= 0:
		return fmt.Errorf("%w: render.cache_capacity must be positive", ErrInvalid)
	case c.Render.PreviewSize <= 0:
		return fmt.Errorf("%w: render.preview_size must be positive", ErrInvalid)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level returns LogLevel as a slog level.
func (c Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("%w: log_level %q", ErrInvalid, c.LogLevel)
	}
	return l, nil
}
