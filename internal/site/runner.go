// Package site runs the refactor engine over a whole rustdoc output tree.
package site

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"git.home.luguber.info/inful/docrefactor/internal/config"
	derrors "git.home.luguber.info/inful/docrefactor/internal/errors"
	"git.home.luguber.info/inful/docrefactor/internal/fetch"
	"git.home.luguber.info/inful/docrefactor/internal/htmldom"
	"git.home.luguber.info/inful/docrefactor/internal/logfields"
	"git.home.luguber.info/inful/docrefactor/internal/observability"
	"git.home.luguber.info/inful/docrefactor/internal/refactor"
)

const stagingPrefix = ".docrefactor-"

// Report summarizes one run over a tree.
type Report struct {
	Pages           int
	Failed          int
	Skipped         int
	PropertiesMoved int
	Overrides       int
	WidgetsMoved    int
	InheritsMerged  int
	InheritsFailed  int
	Duration        time.Duration
	Errors          []error
}

func (r *Report) add(stats refactor.Stats) {
	r.PropertiesMoved += stats.PropertiesMoved
	r.Overrides += stats.Overrides
	r.WidgetsMoved += stats.WidgetsMoved
	r.InheritsMerged += stats.InheritsMerged
	r.InheritsFailed += stats.InheritsFailed
}

// Err joins the per-page errors, or returns nil when every page succeeded.
func (r *Report) Err() error {
	return errors.Join(r.Errors...)
}

// Runner refactors every matching page below cfg.Source, each page in its own pass.
type Runner struct {
	cfg     *config.Config
	engine  *refactor.Engine
	matcher Matcher
}

// NewRunner creates a Runner. The engine's loader must accept file: URLs.
func NewRunner(cfg *config.Config, engine *refactor.Engine) *Runner {
	return &Runner{
		cfg:     cfg,
		engine:  engine,
		matcher: NewMatcher(cfg.Include, cfg.Exclude),
	}
}

type pageResult struct {
	rel     string
	done    bool
	skipped bool
	written bool
	stats   refactor.Stats
	err     error
}

// Run processes the tree. Without an output directory pages are rewritten in place;
// all pages are staged first so inherited pages are always read unmodified.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	ctx, _ = observability.NewRun(ctx)
	srcRoot, err := filepath.Abs(r.cfg.Source)
	if err != nil {
		return nil, derrors.ValidationFailed("source", err.Error())
	}
	if st, statErr := os.Stat(srcRoot); statErr != nil || !st.IsDir() {
		return nil, derrors.ValidationFailed("source", "not a directory: "+srcRoot)
	}

	inPlace := r.cfg.Output == ""
	dstRoot := ""
	if !inPlace {
		if dstRoot, err = filepath.Abs(r.cfg.Output); err != nil {
			return nil, derrors.ValidationFailed("output", err.Error())
		}
	}

	pages, assets, err := r.collect(srcRoot, dstRoot)
	if err != nil {
		return nil, derrors.PageFailed(srcRoot, err)
	}

	if inPlace {
		staging, mkErr := os.MkdirTemp(srcRoot, stagingPrefix)
		if mkErr != nil {
			return nil, derrors.PageFailed(srcRoot, mkErr)
		}
		defer func() { _ = os.RemoveAll(staging) }()
		dstRoot = staging
	} else {
		for _, rel := range assets {
			if err := copyFile(filepath.Join(srcRoot, rel), filepath.Join(dstRoot, rel)); err != nil {
				return nil, derrors.PageFailed(rel, err)
			}
		}
	}

	observability.InfoContext(ctx, "Refactoring documentation tree",
		logfields.Path(srcRoot), logfields.Count(len(pages)))

	results := runOrdered(ctx, pages, r.cfg.MaxConcurrent, func(ctx context.Context, rel string) pageResult {
		return r.processPage(ctx, srcRoot, dstRoot, rel, !inPlace)
	})

	report := &Report{}
	for _, res := range results {
		switch {
		case !res.done:
			continue
		case res.err != nil:
			report.Failed++
			report.Errors = append(report.Errors, res.err)
		case res.skipped:
			report.Skipped++
		default:
			report.Pages++
			report.add(res.stats)
		}
		if inPlace && res.written {
			if err := os.Rename(filepath.Join(dstRoot, res.rel), filepath.Join(srcRoot, res.rel)); err != nil {
				report.Failed++
				report.Errors = append(report.Errors, derrors.PageFailed(res.rel, err))
			}
		}
	}
	report.Duration = time.Since(start)

	if err := ctx.Err(); err != nil {
		return report, err
	}
	observability.InfoContext(ctx, "Refactor run finished",
		logfields.Count(report.Pages),
		logfields.DurationMS(float64(report.Duration.Milliseconds())))
	return report, nil
}

// collect splits the tree into pages to refactor and other files (copied in output mode).
func (r *Runner) collect(srcRoot, dstRoot string) (pages, assets []string, err error) {
	err = filepath.WalkDir(srcRoot, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel, relErr := filepath.Rel(srcRoot, path)
		if relErr != nil {
			return relErr
		}
		if d.IsDir() {
			if rel == "." {
				return nil
			}
			if strings.HasPrefix(d.Name(), stagingPrefix) || (dstRoot != "" && path == dstRoot) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(d.Name(), ".html") && r.matcher.Match(rel) {
			pages = append(pages, rel)
		} else {
			assets = append(assets, rel)
		}
		return nil
	})
	return pages, assets, err
}

// processPage refactors one page. In output mode pages that are skipped or fail are
// copied unchanged so the output tree stays complete.
func (r *Runner) processPage(ctx context.Context, srcRoot, dstRoot, rel string, copyOriginal bool) pageResult {
	res := pageResult{rel: rel, done: true}
	src := filepath.Join(srcRoot, rel)
	dst := filepath.Join(dstRoot, rel)
	ctx = observability.WithPage(ctx, filepath.ToSlash(rel))

	data, err := os.ReadFile(src)
	if err != nil {
		res.err = derrors.PageFailed(rel, err)
		return res
	}
	keep := func() {
		if copyOriginal {
			if err := writeFile(dst, data); err != nil && res.err == nil {
				res.err = derrors.PageFailed(rel, err)
			}
		}
	}

	pageURL, err := fetch.FileURL(src)
	if err != nil {
		res.err = derrors.PageFailed(rel, err)
		keep()
		return res
	}
	doc, err := htmldom.Parse(bytes.NewReader(data), pageURL)
	if err != nil {
		res.err = derrors.ParseFailed(pageURL, err)
		keep()
		return res
	}
	// rustdoc redirect stubs for re-exports
	if fetch.MetaRefreshTarget(doc.Root) != "" {
		res.skipped = true
		keep()
		return res
	}

	pass, err := r.engine.Refactor(ctx, doc)
	if err != nil {
		res.err = err
		keep()
		return res
	}
	res.stats = pass.Stats
	if err := writeFile(dst, doc.Bytes()); err != nil {
		res.err = derrors.PageFailed(rel, err)
		return res
	}
	res.written = true
	observability.DebugContext(ctx, "Page written",
		logfields.Count(pass.Stats.PropertiesMoved), logfields.Path(dst))
	return res
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func copyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
