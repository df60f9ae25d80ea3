// Package cli implements the boardplot command-line interface.
//
// This package provides commands for plotting board layers to fabrication
// outputs, inspecting layers and Gerber attributes, rendering stackup
// diagrams, running the HTTP plot service, and managing the render cache.
// The CLI is built using cobra and supports verbose logging via the
// charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - plot: Plot board layers from a project file
//   - layers: List plottable layers for a copper count
//   - attrs: Show the Gerber X2 attributes for a layer
//   - stackup: Render a layer stack diagram
//   - serve: Run the HTTP plot service
//   - cache: Manage the render cache
//
// # Example
//
//	c := cli.New(os.Stderr, cli.LogInfo)
//	root := c.RootCommand()
//	if err := root.ExecuteContext(ctx); err != nil {
//	    os.Exit(1)
//	}
package cli

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/boardplot/boardplot/pkg/buildinfo"
	"github.com/boardplot/boardplot/pkg/cache"
)

// appName is the application name used for directories and display.
const appName = "boardplot"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "boardplot",
		Short:        "Boardplot plots board layers to fabrication outputs",
		Long:         `Boardplot is a CLI tool for plotting printed circuit board layers to Gerber, PostScript, PDF, SVG, DXF, and HPGL files, with full Gerber X2 attributes and job file support.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.plotCommand())
	root.AddCommand(c.layersCommand())
	root.AddCommand(c.attrsCommand())
	root.AddCommand(c.stackupCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// newCache opens the render cache, or a null cache when caching is
// disabled or the cache directory cannot be determined.
func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// cacheDir returns the cache directory using XDG standard (~/.cache/boardplot/).
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

// parseLayerNames splits a comma-separated layer list into names.
func parseLayerNames(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			names = append(names, p)
		}
	}
	return names
}
