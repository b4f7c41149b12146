package cli

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"runready/internal/api"
	"runready/internal/config"
	"runready/internal/insight"
	"runready/internal/source"
	"runready/internal/store"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name      string
		cfg       config.LogConfig
		debug     bool
		wantDebug bool
		wantInfo  bool
		wantJSON  bool
	}{
		{name: "info text", cfg: config.LogConfig{Level: "info", Format: "text"}, wantInfo: true},
		{name: "warn hides info", cfg: config.LogConfig{Level: "warn", Format: "text"}},
		{name: "debug flag wins", cfg: config.LogConfig{Level: "error", Format: "text"}, debug: true, wantDebug: true, wantInfo: true},
		{name: "json", cfg: config.LogConfig{Level: "debug", Format: "json"}, wantDebug: true, wantInfo: true, wantJSON: true},
		{name: "unknown level falls back to info", cfg: config.LogConfig{Level: "loud"}, wantInfo: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := newLogger(tt.cfg, tt.debug, &buf)

			ctx := context.Background()
			assert.Equal(t, tt.wantDebug, logger.Enabled(ctx, slog.LevelDebug))
			assert.Equal(t, tt.wantInfo, logger.Enabled(ctx, slog.LevelInfo))

			logger.Error("boom")
			if tt.wantJSON {
				assert.Contains(t, buf.String(), `"msg":"boom"`)
			} else {
				assert.Contains(t, buf.String(), "msg=boom")
			}
		})
	}
}

func TestNewInsighter(t *testing.T) {
	client := api.NewClient("http://localhost:8000", nil)

	cfg := config.DefaultConfig()
	assert.Same(t, client, newInsighter(&cfg, client))

	cfg.Insight.Provider = config.InsightNone
	assert.Nil(t, newInsighter(&cfg, client))

	cfg.Insight.Provider = config.InsightAnthropic
	cfg.Insight.APIKey = "sk-test"
	_, ok := newInsighter(&cfg, client).(*insight.Claude)
	assert.True(t, ok)
}

func TestNewSource(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.DefaultConfig()

	_, ok := newSource(&cfg, store.NewTestDB(t), logger).(*source.Store)
	assert.True(t, ok)

	cfg.Source.Kind = config.SourceBridge
	_, ok = newSource(&cfg, nil, logger).(*source.Bridge)
	assert.True(t, ok)
}

func TestLoadConfigFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"api": {"base_url": "https://runs.example.com"}}`), 0600))

	cmd := &cobra.Command{}
	cmd.Flags().String("config", "", "")
	require.NoError(t, cmd.Flags().Set("config", path))

	cfg, err := loadConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, "https://runs.example.com", cfg.API.BaseURL)
}

func TestLoadConfigInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"source": {"kind": "healthkit"}}`), 0600))

	cmd := &cobra.Command{}
	cmd.Flags().String("config", "", "")
	require.NoError(t, cmd.Flags().Set("config", path))

	_, err := loadConfig(cmd)
	assert.ErrorContains(t, err, "source.kind")
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.Flags().String("config", "", "")
	require.NoError(t, cmd.Flags().Set("config", filepath.Join(t.TempDir(), "none.json")))

	cfg, err := loadConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, config.SourceSQLite, cfg.Source.Kind)
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"readiness", "run", "history", "import", "authorize", "init"} {
		assert.True(t, names[want], "missing %q command", want)
	}
}
