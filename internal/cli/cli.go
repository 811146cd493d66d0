// Package cli implements the orgchart command-line interface.
//
// This package provides commands for validating org chart datasets, folding
// change batches into them, rendering them as node-link diagrams, and editing
// them interactively in the terminal. The CLI is built using cobra and logs
// via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - render: Generate DOT, SVG, PNG, or PDF diagrams (cached)
//   - validate: Check the forest invariant of a dataset
//   - apply: Fold a change batch into a dataset
//   - edit: Interactive tree editor with a side panel
//   - config: Print or create the template configuration
//   - cache: Manage the render cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
package cli

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/orgchart/pkg/cache"
	"github.com/matzehuels/orgchart/pkg/chart"
	"github.com/matzehuels/orgchart/pkg/config"
	orgio "github.com/matzehuels/orgchart/pkg/io"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "orgchart"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string // --config; empty means ./orgchart.toml if present
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// =============================================================================
// Shared Loading
// =============================================================================

// template loads the template from --config, or from the default file in the
// working directory, falling back to the built-in defaults.
func (c *CLI) template() (*config.Template, error) {
	tpl, err := config.LoadOrDefault(c.configPath)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("template loaded", "path", c.configPath, "parent", tpl.ParentProperty)
	return tpl, nil
}

// loadDataset reads a dataset using the template's key and parent properties.
func (c *CLI) loadDataset(path string, tpl *config.Template) ([]chart.Record, error) {
	records, err := orgio.ImportFile(path, orgio.PropertiesOf(tpl))
	if err != nil {
		return nil, err
	}
	c.Logger.Debugf("Loaded %d records from %s", len(records), path)
	return records, nil
}

// =============================================================================
// Cache
// =============================================================================

// newCache opens the artifact cache. Rendering still works when no cache
// directory can be resolved; it just is not cached.
func newCache(logger *log.Logger, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache("--no-cache"), nil
	}
	dir, err := cacheDir()
	if err != nil {
		nc := cache.NewNullCache(err.Error())
		logger.Debug("artifact cache", "state", nc)
		return nc, nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/orgchart/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Output
// =============================================================================

// nopCloser wraps an io.Writer with a no-op Close method.
type nopCloser struct{ io.Writer }

// Close implements io.Closer with a no-op.
func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for the given path.
// If path is empty or "-", it returns os.Stdout wrapped in nopCloser.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input. Known format
// extensions are stripped from output.
func basePath(output, input string, known func(ext string) bool) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if known(strings.TrimPrefix(ext, ".")) {
		return strings.TrimSuffix(output, ext)
	}
	return output
}
