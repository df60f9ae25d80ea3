package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/boardplot/boardplot/internal/server"
	"github.com/boardplot/boardplot/pkg/cache"
)

// serveCommand creates the serve command running the HTTP plot service.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		workDir   string
		ttl       time.Duration
		cacheKind string
		redisURL  string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP plot service",
		Long: `Run the HTTP plot service.

Exposes plotting over a JSON API: submit a project description, poll
the job, download the produced files. Finished jobs and their files
expire after the TTL and are swept on a schedule. Rendered stackup
images are cached in the selected backend.`,
		Example: `  # Local service with the file cache
  boardplot serve --addr :8175

  # Redis-backed cache, 30 minute job retention
  boardplot serve --cache redis --redis-url redis://localhost:6379/0 --ttl 30m`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.serveCache(cmd.Context(), cacheKind, redisURL)
			if err != nil {
				return err
			}
			defer store.Close()

			srv, err := server.New(server.Config{
				Addr:    addr,
				WorkDir: workDir,
				JobTTL:  ttl,
				Logger:  c.Logger,
				Cache:   store,
			})
			if err != nil {
				return err
			}
			return srv.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8175", "listen address")
	cmd.Flags().StringVar(&workDir, "workdir", "", "job output directory (default: system temp)")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "retention for finished jobs and their files")
	cmd.Flags().StringVar(&cacheKind, "cache", "file", "cache backend: file, redis, none")
	cmd.Flags().StringVar(&redisURL, "redis-url", "redis://localhost:6379/0", "redis URL for --cache redis")

	return cmd
}

// serveCache builds the cache backend selected by --cache.
func (c *CLI) serveCache(ctx context.Context, kind, redisURL string) (cache.Cache, error) {
	switch kind {
	case "none":
		return cache.NewNullCache(), nil
	case "file":
		dir, err := cacheDir()
		if err != nil {
			return nil, fmt.Errorf("resolve cache dir: %w", err)
		}
		return cache.NewFileCache(dir)
	case "redis":
		store, err := cache.NewRedisCache(ctx, redisURL)
		if err != nil {
			return nil, fmt.Errorf("connect redis cache: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q (use file, redis, or none)", kind)
	}
}
