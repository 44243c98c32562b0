// Package config defines the configuration structure for the encoder
// core's host program: object encoding, class-description fallback
// strategy, initial chunk size, sink mode, externalizable recursion
// guard, and outgoing-queue capacity. It uses strict YAML decoding and
// explicit defaults.
package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// EncoderConfig holds the complete configuration for wiring the AMF/RTMP
// core into a runnable program.
type EncoderConfig struct {
	ObjectEncoding           string `yaml:"object_encoding"`            // "amf0" or "amf3"
	ClassDescriptionFallback string `yaml:"class_description_fallback"` // "dynamic_object" or "exception"
	ChunkSize                uint32 `yaml:"chunk_size"`                 // initial writeChunkSize
	SinkMode                 string `yaml:"sink_mode"`                  // "sync" or "buffered"
	MaxExternalizableDepth   int    `yaml:"max_externalizable_depth"`
	QueueCapacity            uint32 `yaml:"queue_capacity"` // rounded up to a power of two
}

const (
	ObjectEncodingAmf0 = "amf0"
	ObjectEncodingAmf3 = "amf3"

	ClassFallbackDynamicObject = "dynamic_object"
	ClassFallbackException     = "exception"

	SinkModeSync     = "sync"
	SinkModeBuffered = "buffered"
)

const (
	defaultChunkSize              = 128
	defaultMaxExternalizableDepth = 32
	defaultQueueCapacity          = 1024
	maxChunkSize                  = 16777215
)

// Load reads configuration from a YAML file.
// Returns an error if the file cannot be read or decoded.
func Load(path string) (*EncoderConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg EncoderConfig
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields

	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	// Apply defaults
	cfg.setDefaults()

	return &cfg, nil
}

// setDefaults applies explicit default values to unset fields.
func (c *EncoderConfig) setDefaults() {
	if c.ObjectEncoding == "" {
		c.ObjectEncoding = ObjectEncodingAmf0
	}
	if c.ClassDescriptionFallback == "" {
		c.ClassDescriptionFallback = ClassFallbackDynamicObject
	}
	if c.ChunkSize == 0 {
		c.ChunkSize = defaultChunkSize
	}
	if c.SinkMode == "" {
		c.SinkMode = SinkModeSync
	}
	if c.MaxExternalizableDepth == 0 {
		c.MaxExternalizableDepth = defaultMaxExternalizableDepth
	}
	if c.QueueCapacity == 0 {
		c.QueueCapacity = defaultQueueCapacity
	}
}
