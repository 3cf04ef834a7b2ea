package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"fashionetl/internal/model"
)

// TimestampLayout is the format stamped on every record of a crawl.
const TimestampLayout = "2006-01-02 15:04:05"

type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

type Options struct {
	BaseURL  string
	MaxPages int
	Delay    time.Duration
	// Timestamp defaults to the crawl start time.
	Timestamp string
	Cache     PageCache
	Logger    *slog.Logger
}

type Stats struct {
	Pages    int
	Failed   int
	Products int
}

// PageURL returns the base URL for page 1 and <base>pageN after that.
func PageURL(base string, page int) string {
	if page <= 1 {
		return base
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return fmt.Sprintf("%spage%d", base, page)
}

// CrawlPages walks pages 1..MaxPages and hands every parsed product to handler.
// A page that fails to load or parse is logged and skipped.
func CrawlPages(ctx context.Context, f Fetcher, opts Options, handler func(model.RawProduct)) (Stats, error) {
	var stats Stats
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timestamp := opts.Timestamp
	if timestamp == "" {
		timestamp = time.Now().Format(TimestampLayout)
	}

	for page := 1; page <= opts.MaxPages; page++ {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		url := PageURL(opts.BaseURL, page)
		logger.Debug("buscando página", "url", url)

		html, err := fetchPage(ctx, f, opts.Cache, url, logger)
		if err != nil {
			stats.Failed++
			logger.Warn("erro ao buscar página, pulando", "page", page, "err", err)
			continue
		}
		stats.Pages++

		products, err := ParseProducts(html, timestamp)
		if err != nil {
			stats.Failed++
			logger.Warn("erro ao processar página, pulando", "page", page, "err", err)
			continue
		}
		if len(products) == 0 && page > 1 {
			logger.Info("nenhum produto encontrado na página", "page", page)
		}

		for _, p := range products {
			p.ID = uuid.New().String()
			p.SourceURL = url
			handler(p)
			stats.Products++
		}

		if opts.Delay > 0 && page < opts.MaxPages {
			select {
			case <-ctx.Done():
				return stats, ctx.Err()
			case <-time.After(opts.Delay):
			}
		}
	}

	return stats, nil
}

func fetchPage(ctx context.Context, f Fetcher, cache PageCache, url string, logger *slog.Logger) (string, error) {
	if cache != nil {
		html, ok, err := cache.Get(ctx, url)
		if err != nil {
			logger.Warn("erro ao ler cache de página", "url", url, "err", err)
		} else if ok {
			return html, nil
		}
	}

	html, err := f.Fetch(ctx, url)
	if err != nil {
		return "", err
	}

	if cache != nil {
		if err := cache.Set(ctx, url, html); err != nil {
			logger.Warn("erro ao gravar cache de página", "url", url, "err", err)
		}
	}
	return html, nil
}
