package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/framescribe/pkg/adapters/logger"
	"github.com/user/framescribe/pkg/adapters/osfilesystem"
	"github.com/user/framescribe/pkg/adapters/prommetrics"
	"github.com/user/framescribe/pkg/config"
	"github.com/user/framescribe/pkg/ports"
)

func TestLoadConfig_Overrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "framescribe.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_captions: 4\nthreshold: 0.3\nlog_level: warn\n"), 0o644))

	threshold := 0.2
	g := &Globals{
		Config:       path,
		Threshold:    &threshold,
		CaptionModel: "bakllava",
		DebugDir:     "/tmp/dbg",
		LogLevel:     "DEBUG",
	}

	cfg, err := g.loadConfig()
	require.NoError(t, err)
	assert.Equal(t, 0.2, cfg.Threshold, "flag wins over file")
	assert.Equal(t, 4, cfg.MaxCaptions, "file wins over default")
	assert.Equal(t, "bakllava", cfg.Ollama.CaptionModel)
	assert.Equal(t, "/tmp/dbg", cfg.DebugDir)
	assert.False(t, cfg.Debug)
	assert.Equal(t, ports.LevelDebug, cfg.LogLevel, "flag wins over file")
}

func TestLoadConfig_UnknownLogLevel(t *testing.T) {
	g := &Globals{LogLevel: "loud"}

	_, err := g.loadConfig()
	assert.ErrorContains(t, err, "unknown log level")
}

func TestLoadConfig_Invalid(t *testing.T) {
	zero := 0
	g := &Globals{MaxCaptions: &zero}

	_, err := g.loadConfig()
	assert.Error(t, err)
}

func TestBuildOrchestrator_DebugDir(t *testing.T) {
	cfg := config.Defaults()
	cfg.Debug = true
	cfg.DebugDir = filepath.Join(t.TempDir(), "debug")

	orch, err := buildOrchestrator(cfg, osfilesystem.New(""), prommetrics.NewNop(), logger.NewNoop())
	require.NoError(t, err)
	assert.NotNil(t, orch)

	info, err := os.Stat(cfg.DebugDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
