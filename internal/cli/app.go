package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"runready/internal/api"
	"runready/internal/config"
	"runready/internal/health"
	"runready/internal/insight"
	"runready/internal/service"
	"runready/internal/source"
	"runready/internal/store"
)

const logFileName = "runready.log"

type setupOptions struct {
	// logToFile keeps log output off the terminal while the TUI owns it
	logToFile bool
	// needStore opens the sample store even when the source is the bridge
	needStore bool
}

// app holds everything a command needs, built once per invocation
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	db     *store.DB
	source health.MetricSource
	client *api.Client

	closers []func() error
}

func setup(cmd *cobra.Command, opts setupOptions) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	rt := &app{cfg: cfg}

	var out io.Writer = os.Stderr
	if opts.logToFile {
		f, err := openLogFile()
		if err != nil {
			out = io.Discard
		} else {
			out = f
			rt.closers = append(rt.closers, f.Close)
		}
	}
	debug, _ := cmd.Flags().GetBool("debug")
	rt.logger = newLogger(cfg.Log, debug, out)

	ctx := cmd.Context()
	rt.client = api.NewClient(cfg.API.BaseURL, api.NewHTTPClient(ctx, cfg.API.Token, cfg.API.Timeout()))

	if cfg.Source.Kind == config.SourceSQLite || opts.needStore {
		db, err := store.Open(cfg.Source.DBPath)
		if err != nil {
			rt.Close()
			return nil, fmt.Errorf("opening sample store: %w", err)
		}
		rt.db = db
		rt.closers = append(rt.closers, db.Close)
	}

	rt.source = newSource(cfg, rt.db, rt.logger)

	rt.logger.Debug("runtime ready",
		"source", cfg.Source.Kind,
		"api", cfg.API.BaseURL,
		"insight", cfg.Insight.Provider,
	)
	return rt, nil
}

// Close releases resources in reverse order of acquisition
func (rt *app) Close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		_ = rt.closers[i]()
	}
	rt.closers = nil
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		cfg, err = config.LoadFrom(path)
	} else {
		cfg, err = config.Load()
	}
	// a missing file is fine, defaults and environment still apply
	if err != nil && !errors.Is(err, config.ErrNoConfig) {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		configDir, _ := config.GetConfigDir()
		return nil, fmt.Errorf("invalid config: %w (edit %s/config.json or run 'runready init')", err, configDir)
	}
	return cfg, nil
}

func newLogger(cfg config.LogConfig, debug bool, w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	if debug {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func openLogFile() (*os.File, error) {
	dir, err := config.GetConfigDir()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return os.OpenFile(filepath.Join(dir, logFileName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
}

// newSource picks the metric source once for the whole process
func newSource(cfg *config.Config, db *store.DB, logger *slog.Logger) health.MetricSource {
	if cfg.Source.Kind == config.SourceBridge {
		return source.NewBridge(cfg.Source.BridgeURL, &http.Client{Timeout: cfg.API.Timeout()}, logger)
	}
	return source.NewStore(db, logger)
}

func newInsighter(cfg *config.Config, client *api.Client) service.Insighter {
	switch cfg.Insight.Provider {
	case config.InsightAnthropic:
		return insight.NewClaude(cfg.Insight.APIKey, cfg.Insight.Model)
	case config.InsightNone:
		return nil
	default:
		return client
	}
}

func (rt *app) aggregator(upload bool) *service.HealthAggregator {
	var uploader service.HealthUploader
	if upload {
		uploader = rt.client
	}
	return service.NewHealthAggregator(rt.source, uploader, rt.logger)
}

func (rt *app) pipeline() *service.RunUploadPipeline {
	return service.NewRunUploadPipeline(newInsighter(rt.cfg, rt.client), rt.client, rt.source, rt.logger)
}
