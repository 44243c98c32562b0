package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeTempConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "encoder.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeTempConfig(t, "object_encoding: amf3\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "amf3", cfg.ObjectEncoding)
	require.Equal(t, ClassFallbackDynamicObject, cfg.ClassDescriptionFallback)
	require.Equal(t, uint32(defaultChunkSize), cfg.ChunkSize)
	require.Equal(t, SinkModeSync, cfg.SinkMode)
	require.Equal(t, defaultMaxExternalizableDepth, cfg.MaxExternalizableDepth)
	require.Equal(t, uint32(defaultQueueCapacity), cfg.QueueCapacity)
}

func TestLoadRejectsUnknownField(t *testing.T) {
	path := writeTempConfig(t, "object_encoding: amf0\nbogus_field: true\n")
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestValidateRejectsBadObjectEncoding(t *testing.T) {
	cfg := &EncoderConfig{ObjectEncoding: "amf7"}
	cfg.setDefaults()
	err := cfg.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "object_encoding")
}

func TestValidateRejectsOversizedChunkSize(t *testing.T) {
	cfg := &EncoderConfig{}
	cfg.setDefaults()
	cfg.ChunkSize = maxChunkSize + 1
	err := cfg.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "chunk_size")
}

func TestValidateAcceptsDefaults(t *testing.T) {
	cfg := &EncoderConfig{}
	cfg.setDefaults()
	require.NoError(t, cfg.Validate())
}
