// Package config loads the YAML-based configuration for the idefix CLI and
// any other process embedding this module (spec.md §6/§9): catalog paths,
// strict-mode decode behavior, and the framing-sublayer/codec selection.
// It is optional sugar over the programmatic API in package decode and
// package framing, which remain the primary entry points.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Framing identifies which framing sublayer a source uses.
type Framing string

const (
	FramingRaw    Framing = "raw"
	FramingPCAP   Framing = "pcap"
	FramingORADIS Framing = "oradis"
	FramingFinal  Framing = "final"
	FramingHDLC   Framing = "hdlc"
	FramingGPS    Framing = "gps"
)

// Codec identifies an on-disk capture-file compression format, mirroring
// framing.Codec without importing it (config stays dependency-light).
type Codec string

const (
	CodecAuto Codec = "auto"
	CodecNone Codec = "none"
	CodecGzip Codec = "gzip"
	CodecLZ4  Codec = "lz4"
	CodecZstd Codec = "zstd"
)

// Config is the top-level configuration document.
type Config struct {
	CatalogPath  string `yaml:"catalog_path"`
	StrictMode   bool   `yaml:"strict_mode"`
	MaxFrameSize int    `yaml:"max_frame_size,omitempty"`

	Framing Framing `yaml:"framing"`
	Codec   Codec   `yaml:"codec,omitempty"`

	HDLC HDLCConfig `yaml:"hdlc,omitempty"`
}

// HDLCConfig configures the HDLC framing sublayer (spec.md §4.4.5).
type HDLCConfig struct {
	MaxFrame int `yaml:"max_frame,omitempty"`
}

// Load reads and parses a YAML configuration file, defaulting and
// validating it before returning.
func Load(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", filename, err)
	}
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", filename, err)
	}
	if c.Codec == "" {
		c.Codec = CodecAuto
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", filename, err)
	}
	return &c, nil
}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	if c.CatalogPath == "" {
		return fmt.Errorf("catalog_path is required")
	}
	switch c.Framing {
	case FramingRaw, FramingPCAP, FramingORADIS, FramingFinal, FramingHDLC, FramingGPS:
	default:
		return fmt.Errorf("invalid framing %q", c.Framing)
	}
	switch c.Codec {
	case CodecAuto, CodecNone, CodecGzip, CodecLZ4, CodecZstd:
	default:
		return fmt.Errorf("invalid codec %q", c.Codec)
	}
	if c.MaxFrameSize < 0 {
		return fmt.Errorf("max_frame_size must be >= 0, got %d", c.MaxFrameSize)
	}
	return nil
}
