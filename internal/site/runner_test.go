package site

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docrefactor/internal/config"
)

func TestRunner_OutputDirectory(t *testing.T) {
	src := writeTree(t)
	out := filepath.Join(t.TempDir(), "out")
	cfg := config.Default()
	cfg.Source = src
	cfg.Output = out

	report, err := NewRunner(cfg, fileEngine()).Run(context.Background())
	require.NoError(t, err)
	require.NoError(t, report.Err())
	require.Equal(t, 2, report.Pages)
	require.Equal(t, 1, report.Skipped)
	require.Zero(t, report.Failed)
	require.Equal(t, 1, report.PropertiesMoved)
	require.Equal(t, 1, report.InheritsMerged)
	require.Zero(t, report.InheritsFailed)

	p := readFile(t, filepath.Join(out, "zng", "struct.P.html"))
	require.Contains(t, p, `id="properties"`)
	require.Contains(t, p, `id="method.rm"`)
	require.Contains(t, p, `href="../other/struct.X.html"`)
	require.Contains(t, p, `href="struct.R.html"`)

	// source stays untouched, everything else is copied as is
	require.Equal(t, pageP, readFile(t, filepath.Join(src, "zng", "struct.P.html")))
	require.Equal(t, redirectPage, readFile(t, filepath.Join(out, "zng", "redirect.html")))
	require.Equal(t, "body{}", readFile(t, filepath.Join(out, "static.files", "main.css")))
	require.FileExists(t, filepath.Join(out, "src", "zng", "lib.rs.html"))
	require.FileExists(t, filepath.Join(out, "settings.html"))
}

func TestRunner_InPlace(t *testing.T) {
	src := writeTree(t)
	cfg := config.Default()
	cfg.Source = src
	cfg.MaxConcurrent = 1

	report, err := NewRunner(cfg, fileEngine()).Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, report.Pages)

	p := readFile(t, filepath.Join(src, "zng", "struct.P.html"))
	require.Contains(t, p, `id="properties"`)
	require.Contains(t, p, `id="method.rm"`)
	require.Equal(t, redirectPage, readFile(t, filepath.Join(src, "zng", "redirect.html")))

	entries, err := os.ReadDir(src)
	require.NoError(t, err)
	for _, e := range entries {
		require.False(t, strings.HasPrefix(e.Name(), stagingPrefix), "staging dir left behind: %s", e.Name())
	}

	// a second run over its own output moves nothing
	again, err := NewRunner(cfg, fileEngine()).Run(context.Background())
	require.NoError(t, err)
	require.Zero(t, again.PropertiesMoved)
	require.Zero(t, again.InheritsMerged)
	require.Equal(t, p, readFile(t, filepath.Join(src, "zng", "struct.P.html")))
}

func TestRunner_MissingInheritedPage(t *testing.T) {
	src := writeTree(t)
	require.NoError(t, os.Remove(filepath.Join(src, "zng", "struct.R.html")))
	cfg := config.Default()
	cfg.Source = src
	cfg.Output = filepath.Join(t.TempDir(), "out")

	report, err := NewRunner(cfg, fileEngine()).Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, report.Pages)
	require.Equal(t, 1, report.InheritsFailed)

	p := readFile(t, filepath.Join(cfg.Output, "zng", "struct.P.html"))
	require.Contains(t, p, `class="inherits-error"`)
	require.Contains(t, p, `id="properties"`)
}

func TestRunner_SourceMustExist(t *testing.T) {
	cfg := config.Default()
	cfg.Source = filepath.Join(t.TempDir(), "missing")

	_, err := NewRunner(cfg, fileEngine()).Run(context.Background())
	require.Error(t, err)
}

func TestRunOrderedKeepsOrder(t *testing.T) {
	items := []int{5, 4, 3, 2, 1}
	got := runOrdered(context.Background(), items, 3, func(_ context.Context, i int) int { return i * 10 })
	require.Equal(t, []int{50, 40, 30, 20, 10}, got)
}
