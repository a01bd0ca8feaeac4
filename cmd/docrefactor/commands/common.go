package commands

import (
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/docrefactor/internal/config"
	"git.home.luguber.info/inful/docrefactor/internal/fetch"
	"git.home.luguber.info/inful/docrefactor/internal/metrics"
	"git.home.luguber.info/inful/docrefactor/internal/refactor"
)

// Global context passed to subcommands.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"docrefactor.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Refactor RefactorCmd `cmd:"" help:"Refactor a rustdoc output tree"`
	Watch    WatchCmd    `cmd:"" help:"Refactor into an output directory and re-run on changes"`
	Serve    ServeCmd    `cmd:"" help:"Serve a rustdoc tree, refactoring pages on request"`
	Init     InitCmd     `cmd:"" help:"Write a default configuration file"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLogLevel(c.Verbose)})))
	return nil
}

// parseLogLevel honours --verbose first, then DOCREFACTOR_LOG_LEVEL.
func parseLogLevel(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	switch strings.ToLower(os.Getenv("DOCREFACTOR_LOG_LEVEL")) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// loadConfig reads the configuration file. A missing default file falls back to built-in defaults.
func loadConfig(root *CLI) (*config.Config, error) {
	if _, err := os.Stat(root.Config); os.IsNotExist(err) && root.Config == config.DefaultConfigFile {
		slog.Debug("No configuration file, using defaults", "path", root.Config)
		return config.Default(), nil
	}
	return config.Load(root.Config)
}

// newEngine wires fetchers, loader and recorder. A nil registry keeps metrics off.
func newEngine(cfg *config.Config, reg *prom.Registry) *refactor.Engine {
	var recorder metrics.Recorder = metrics.NoopRecorder{}
	if reg != nil {
		recorder = metrics.NewPrometheusRecorder(reg)
	}
	mux := fetch.NewMux(
		fetch.NewHTTPFetcher(cfg.Fetch, recorder),
		fetch.NewFileFetcher(cfg.Fetch.MaxBodyBytes, recorder),
	)
	return refactor.NewEngine(fetch.NewLoader(mux), refactor.WithRecorder(recorder))
}

func registryFor(cfg *config.Config) *prom.Registry {
	if !cfg.Metrics.Enabled {
		return nil
	}
	return metrics.NewRegistry()
}
