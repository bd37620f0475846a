// Package config defines core configuration types for gomdedit.
// These types are pure data structures with no dependency on the loaders
// that fill them.
package config

import "time"

// Flavor specifies the Markdown flavor to use for parsing.
type Flavor string

const (
	FlavorCommonMark Flavor = "commonmark"
	FlavorGFM        Flavor = "gfm"
)

// TransportConfig configures the collaboration connection.
type TransportConfig struct {
	// URL is the websocket endpoint, ws:// or wss://.
	URL string `yaml:"url,omitempty"`

	HandshakeTimeout time.Duration `yaml:"handshake_timeout,omitempty"`
	WriteTimeout     time.Duration `yaml:"write_timeout,omitempty"`
}

// ImagesConfig configures attachment fetching.
type ImagesConfig struct {
	// MaxBytes caps a single download.
	MaxBytes int64 `yaml:"max_bytes,omitempty"`

	Timeout time.Duration `yaml:"timeout,omitempty"`

	// Width and Height bound the display size of fetched images, in points.
	Width  float64 `yaml:"width,omitempty"`
	Height float64 `yaml:"height,omitempty"`

	// Scale is the display scale factor.
	Scale float64 `yaml:"scale,omitempty"`
}

// Config is the root configuration structure for gomdedit.
type Config struct {
	// Flavor specifies the Markdown flavor ("commonmark" or "gfm").
	Flavor Flavor `yaml:"flavor"`

	// OffsetUnit is the unit operation offsets use on the wire:
	// "utf16", "rune" or "byte".
	OffsetUnit string `yaml:"offset_unit"`

	// DefaultTitle seeds an empty document received from the server.
	DefaultTitle string `yaml:"default_title"`

	// Debug turns reentrant mutations into panics.
	Debug bool `yaml:"debug,omitempty"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	Transport TransportConfig `yaml:"transport"`
	Images    ImagesConfig    `yaml:"images"`

	// Theme overrides style attributes keyed by node kind name.
	Theme map[string]map[string]any `yaml:"theme,omitempty"`
}

// Defaults.
const (
	DefaultOffsetUnit       = "utf16"
	DefaultTitle            = "Untitled"
	DefaultLogLevel         = "info"
	DefaultHandshakeTimeout = 10 * time.Second
	DefaultWriteTimeout     = 10 * time.Second
	DefaultImageMaxBytes    = 10 << 20
	DefaultImageTimeout     = 30 * time.Second
	DefaultImageWidth       = 640
	DefaultImageHeight      = 480
)

// NewConfig returns a Config with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Flavor:       FlavorGFM,
		OffsetUnit:   DefaultOffsetUnit,
		DefaultTitle: DefaultTitle,
		LogLevel:     DefaultLogLevel,
		Transport: TransportConfig{
			HandshakeTimeout: DefaultHandshakeTimeout,
			WriteTimeout:     DefaultWriteTimeout,
		},
		Images: ImagesConfig{
			MaxBytes: DefaultImageMaxBytes,
			Timeout:  DefaultImageTimeout,
			Width:    DefaultImageWidth,
			Height:   DefaultImageHeight,
			Scale:    1,
		},
	}
}
