package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"fashionetl/internal/config"
	"fashionetl/internal/crawler"
	"fashionetl/internal/logging"
	"fashionetl/internal/observability"
	"fashionetl/internal/transform"
)

type appFlags struct {
	pages   int
	out     string
	workers int
	metrics bool
}

var (
	flags  appFlags
	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:           "etl",
	Short:         "Scrape, clean and load fashion-studio products",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.Load()
		if cmd.Flags().Changed("pages") {
			cfg.MaxPages = flags.pages
		}
		if cmd.Flags().Changed("out") {
			cfg.OutputCSV = flags.out
		}
		if cmd.Flags().Changed("workers") {
			cfg.WorkerCount = flags.workers
		}

		logger = logging.New(os.Stderr, cfg.LogLevel)
		slog.SetDefault(logger)

		if flags.metrics {
			observability.Start(cfg.MetricsPort)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().IntVar(&flags.pages, "pages", 50, "number of pages to scrape")
	rootCmd.PersistentFlags().StringVar(&flags.out, "out", "products.csv", "CSV output path")
	rootCmd.PersistentFlags().IntVar(&flags.workers, "workers", 4, "goroutines used for field cleaning")
	rootCmd.PersistentFlags().BoolVar(&flags.metrics, "metrics", false, "serve prometheus metrics on METRICS_PORT")

	rootCmd.AddCommand(crawlCmd, transformCmd, runCmd)
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		slog.Error("etl falhou", "err", err)
		os.Exit(1)
	}
}

func newNormalizer() *transform.Normalizer {
	return transform.NewNormalizer(
		transform.WithRate(cfg.ExchangeRate),
		transform.WithWorkers(cfg.WorkerCount),
		transform.WithObserver(transform.Observers(
			transform.LogObserver{Logger: logger},
			observability.NormalizerObserver{},
		)),
	)
}

// crawlOptions also returns the func that releases the page cache client.
func crawlOptions(ctx context.Context) (crawler.Options, func()) {
	cache, closeCache := newPageCache(ctx)
	return crawler.Options{
		BaseURL:  cfg.BaseURL,
		MaxPages: cfg.MaxPages,
		Delay:    cfg.RequestDelay,
		Cache:    cache,
		Logger:   logger,
	}, closeCache
}

// newPageCache returns a nil cache when REDIS_URL is unset or unreachable; the
// crawl then always hits the site.
func newPageCache(ctx context.Context) (crawler.PageCache, func()) {
	if cfg.RedisURL == "" {
		return nil, func() {}
	}
	client := redis.NewClient(&redis.Options{
		Addr: cfg.RedisURL,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis indisponível, seguindo sem cache de páginas", "err", err)
		client.Close()
		return nil, func() {}
	}
	return &crawler.RedisPageCache{Client: client, TTL: cfg.PageCacheTTL}, func() {
		if err := client.Close(); err != nil {
			logger.Warn("erro ao fechar conexão com redis", "err", err)
		}
	}
}
