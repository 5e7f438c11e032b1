package bind

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := LoadConfig("")
		require.NoError(t, err)

		assert.Equal(t, DefaultConfig(), cfg)
		assert.Equal(t, Immediate, cfg.Mode())
		assert.Equal(t, slog.LevelInfo, cfg.Level())
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bind.yaml")
		err := os.WriteFile(path, []byte("update_mode: Deferred\ndebounce: 50ms\nperformance_monitoring: true\nlog_level: debug\n"), 0o644)
		require.NoError(t, err)

		cfg, err := LoadConfig(path)
		require.NoError(t, err)

		assert.Equal(t, Deferred, cfg.Mode())
		assert.Equal(t, 50*time.Millisecond, cfg.Debounce)
		assert.True(t, cfg.PerformanceMonitoring)
		assert.Equal(t, slog.LevelDebug, cfg.Level())
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("BIND_UPDATE_MODE", "manual")
		t.Setenv("BIND_DEBOUNCE", "25ms")

		cfg, err := LoadConfig("")
		require.NoError(t, err)

		assert.Equal(t, Manual, cfg.Mode())
		assert.Equal(t, 25*time.Millisecond, cfg.Debounce)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})

	t.Run("invalid values", func(t *testing.T) {
		t.Setenv("BIND_UPDATE_MODE", "sometimes")

		_, err := LoadConfig("")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrValidation)
		assert.Contains(t, err.Error(), "UpdateMode")
	})

	t.Run("negative debounce", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Debounce = -time.Second

		assert.ErrorIs(t, cfg.Validate(), ErrValidation)
	})

	t.Run("logger", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.LogLevel = "warn"

		assert.NotNil(t, cfg.Logger())
		assert.Equal(t, slog.LevelWarn, cfg.Level())
	})
}

func TestParseUpdateMode(t *testing.T) {
	for _, mode := range []UpdateMode{Immediate, Deferred, Manual} {
		parsed, err := ParseUpdateMode(mode.String())
		require.NoError(t, err)
		assert.Equal(t, mode, parsed)
	}

	_, err := ParseUpdateMode("later")
	assert.Error(t, err)
}
