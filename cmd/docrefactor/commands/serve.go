package commands

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	derrors "git.home.luguber.info/inful/docrefactor/internal/errors"
	"git.home.luguber.info/inful/docrefactor/internal/server/httpserver"
	"git.home.luguber.info/inful/docrefactor/internal/site"
)

const shutdownTimeout = 10 * time.Second

// ServeCmd implements the 'serve' command.
type ServeCmd struct {
	Source string `arg:"" optional:"" help:"Rustdoc output directory (overrides config source)"`
	Addr   string `name:"addr" help:"Listen address (overrides serve.addr)"`
}

func (c *ServeCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	if c.Source != "" {
		cfg.Source = c.Source
	}
	if c.Addr != "" {
		cfg.Serve.Addr = c.Addr
	}
	docRoot, err := filepath.Abs(cfg.Source)
	if err != nil {
		return derrors.ValidationFailed("source", err.Error())
	}
	if st, statErr := os.Stat(docRoot); statErr != nil || !st.IsDir() {
		return derrors.ValidationFailed("source", "not a directory: "+docRoot)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	reg := registryFor(cfg)
	srv := httpserver.New(httpserver.Options{
		Addr:     cfg.Serve.Addr,
		Root:     docRoot,
		Engine:   newEngine(cfg, reg),
		Matcher:  site.NewMatcher(cfg.Include, cfg.Exclude),
		Registry: reg,
	})
	if err := srv.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	slog.Info("Shutdown signal received, stopping preview server...")
	stopCtx, stopCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stopCancel()
	return srv.Stop(stopCtx)
}
