package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/docrefactor/internal/site"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Source  string `arg:"" optional:"" help:"Rustdoc output directory (overrides config source)"`
	Output  string `short:"o" help:"Output directory (required unless set in config)"`
	Refresh string `name:"refresh" help:"Re-run the whole tree on this interval, e.g. 10m"`
}

func (c *WatchCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	if c.Source != "" {
		cfg.Source = c.Source
	}
	if c.Output != "" {
		cfg.Output = c.Output
	}
	if c.Refresh != "" {
		cfg.Watch.Refresh = c.Refresh
	}

	w, err := site.NewWatcher(cfg, site.NewRunner(cfg, newEngine(cfg, nil)))
	if err != nil {
		return err
	}
	w.OnRun = func(r *site.Report, err error) {
		if err == nil {
			printReport(os.Stdout, r)
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	return w.Run(ctx)
}
