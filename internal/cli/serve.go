package cli

import (
	"github.com/spf13/cobra"

	"github.com/pgrunwald/svgpie/api"
	"github.com/pgrunwald/svgpie/pkg/cache"
	"github.com/pgrunwald/svgpie/pkg/pipeline"
)

// serveCommand creates the serve command running the HTTP chart API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr     string
		redisURL string
		noCache  bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP chart API",
		Long: `Serve starts an HTTP server that renders pie charts from JSON
requests. Artifacts are cached on disk by default; pass --redis-url to
share the cache between instances, or --no-cache to disable caching.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())

			var (
				cch cache.Cache
				err error
			)
			switch {
			case noCache:
				cch = cache.NewNullCache()
			case redisURL != "":
				cch, err = cache.NewRedisCache(cmd.Context(), redisURL)
				if err != nil {
					return err
				}
				logger.Info("using redis cache", "url", redisURL)
			default:
				cch, err = newCache(false)
				if err != nil {
					return err
				}
			}

			runner := pipeline.NewRunner(cch, nil, logger)
			defer runner.Close()

			srv := api.NewServer(runner, logger)
			return srv.ListenAndServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&redisURL, "redis-url", "", "redis connection URL for a shared cache")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}
