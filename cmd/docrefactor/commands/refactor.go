package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"git.home.luguber.info/inful/docrefactor/internal/config"
	derrors "git.home.luguber.info/inful/docrefactor/internal/errors"
	"git.home.luguber.info/inful/docrefactor/internal/linkverify"
	"git.home.luguber.info/inful/docrefactor/internal/logfields"
	"git.home.luguber.info/inful/docrefactor/internal/site"
)

// RefactorCmd implements the 'refactor' command.
type RefactorCmd struct {
	Source      string `arg:"" optional:"" help:"Rustdoc output directory (overrides config source)"`
	Output      string `short:"o" help:"Write refactored tree to this directory"`
	InPlace     bool   `name:"in-place" help:"Rewrite pages inside the source directory"`
	VerifyLinks bool   `name:"verify-links" help:"Check that links in the refactored tree resolve"`
}

func (c *RefactorCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	if err := c.apply(cfg); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	if err := RunRefactor(ctx, cfg, os.Stdout); err != nil {
		return err
	}
	if c.VerifyLinks {
		return RunVerify(ctx, cfg, os.Stdout)
	}
	return nil
}

func (c *RefactorCmd) apply(cfg *config.Config) error {
	if c.Source != "" {
		cfg.Source = c.Source
	}
	switch {
	case c.InPlace && c.Output != "":
		return derrors.ValidationFailed("output", "--output and --in-place are mutually exclusive")
	case c.InPlace:
		cfg.Output = ""
	case c.Output != "":
		cfg.Output = c.Output
	case cfg.Output == "":
		return derrors.ValidationFailed("output", "specify --output or --in-place")
	}
	return nil
}

// RunRefactor runs one batch pass and prints a summary to out.
func RunRefactor(ctx context.Context, cfg *config.Config, out io.Writer) error {
	runner := site.NewRunner(cfg, newEngine(cfg, nil))
	report, err := runner.Run(ctx)
	if err != nil {
		return err
	}
	printReport(out, report)
	if report.Failed > 0 {
		return derrors.Wrap(report.Err(), derrors.CategoryRuntime, derrors.SeverityError,
			fmt.Sprintf("%d page(s) failed", report.Failed))
	}
	return nil
}

// RunVerify checks the links of the refactored tree (output, or source when in place).
func RunVerify(ctx context.Context, cfg *config.Config, out io.Writer) error {
	dir := cfg.Output
	if dir == "" {
		dir = cfg.Source
	}
	root, err := filepath.Abs(dir)
	if err != nil {
		return derrors.ValidationFailed("output", err.Error())
	}
	broken, err := linkverify.NewVerifier(root).VerifyTree(ctx, site.NewMatcher(cfg.Include, cfg.Exclude))
	if err != nil {
		return err
	}
	for _, b := range broken {
		slog.Warn("Broken link", logfields.Page(b.Page), logfields.URL(b.URL), slog.String("reason", b.Reason))
	}
	_, _ = fmt.Fprintf(out, "Link check: %d broken link(s)\n", len(broken))
	if len(broken) > 0 {
		return derrors.New(derrors.CategoryStructure, derrors.SeverityError,
			fmt.Sprintf("%d broken link(s)", len(broken))).WithContext("root", root)
	}
	return nil
}

func printReport(out io.Writer, r *site.Report) {
	_, _ = fmt.Fprintf(out, "Refactored %d page(s) in %s (%d skipped, %d failed)\n",
		r.Pages, r.Duration.Round(1e6), r.Skipped, r.Failed)
	_, _ = fmt.Fprintf(out, "  properties moved: %d, overrides: %d, widgets: %d\n",
		r.PropertiesMoved, r.Overrides, r.WidgetsMoved)
	_, _ = fmt.Fprintf(out, "  inherited pages merged: %d, failed: %d\n", r.InheritsMerged, r.InheritsFailed)
}
