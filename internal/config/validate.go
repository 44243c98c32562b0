// This file validates configuration values and returns descriptive errors.

package config

import (
	"fmt"
)

// Validate checks that all configuration values are within acceptable
// ranges. Returns an error describing the first validation failure found.
func (c *EncoderConfig) Validate() error {
	switch c.ObjectEncoding {
	case ObjectEncodingAmf0, ObjectEncodingAmf3:
	default:
		return fmt.Errorf("object_encoding must be %q or %q, got %q",
			ObjectEncodingAmf0, ObjectEncodingAmf3, c.ObjectEncoding)
	}

	switch c.ClassDescriptionFallback {
	case ClassFallbackDynamicObject, ClassFallbackException:
	default:
		return fmt.Errorf("class_description_fallback must be %q or %q, got %q",
			ClassFallbackDynamicObject, ClassFallbackException, c.ClassDescriptionFallback)
	}

	switch c.SinkMode {
	case SinkModeSync, SinkModeBuffered:
	default:
		return fmt.Errorf("sink_mode must be %q or %q, got %q", SinkModeSync, SinkModeBuffered, c.SinkMode)
	}

	if c.ChunkSize == 0 || c.ChunkSize > maxChunkSize {
		return fmt.Errorf("chunk_size must be between 1 and %d, got %d", maxChunkSize, c.ChunkSize)
	}

	if c.MaxExternalizableDepth <= 0 {
		return fmt.Errorf("max_externalizable_depth must be positive, got %d", c.MaxExternalizableDepth)
	}

	if c.QueueCapacity == 0 {
		return fmt.Errorf("queue_capacity must be positive, got %d", c.QueueCapacity)
	}

	return nil
}
