// Package pipeline runs extract, transform and load in one pass.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"fashionetl/internal/crawler"
	"fashionetl/internal/loader"
	"fashionetl/internal/model"
	"fashionetl/internal/observability"
	"fashionetl/internal/transform"
)

// ProductSink persists clean products. repository.ProductRepository is one.
type ProductSink interface {
	SaveAll(ctx context.Context, products []model.Product) (int, error)
}

type Pipeline struct {
	Fetcher    crawler.Fetcher
	Crawl      crawler.Options
	Normalizer *transform.Normalizer
	CSVPath    string
	Store      ProductSink
	Logger     *slog.Logger
}

type Result struct {
	RunID    string
	Crawl    crawler.Stats
	Products []model.Product
	Stored   int
}

var ErrNoRawData = errors.New("extraction produced no data")

// Run stops early with ErrNoRawData when nothing was scraped and with
// loader.ErrEmptyBatch when nothing survived cleaning.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	res := Result{RunID: uuid.New().String()}
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("run", res.RunID)

	logger.Info("iniciando extração", "base_url", p.Crawl.BaseURL, "pages", p.Crawl.MaxPages)
	var raws []model.RawProduct
	opts := p.Crawl
	opts.Logger = logger
	stats, err := crawler.CrawlPages(ctx, p.Fetcher, opts, func(r model.RawProduct) {
		raws = append(raws, r)
	})
	res.Crawl = stats
	observability.PagesFetched.Add(float64(stats.Pages))
	observability.PagesFailed.Add(float64(stats.Failed))
	observability.RawProducts.Add(float64(stats.Products))
	if err != nil {
		return res, fmt.Errorf("extract: %w", err)
	}
	if len(raws) == 0 {
		return res, ErrNoRawData
	}
	logger.Info("extração finalizada", "raw", len(raws), "pages", stats.Pages, "failed", stats.Failed)

	res.Products = p.Normalizer.Normalize(raws)
	if len(res.Products) == 0 {
		return res, loader.ErrEmptyBatch
	}
	logger.Info("limpeza finalizada", "clean", len(res.Products))

	if p.CSVPath != "" {
		if err := loader.WriteCSV(p.CSVPath, res.Products); err != nil {
			return res, fmt.Errorf("load csv: %w", err)
		}
		observability.ProductsLoaded.WithLabelValues("csv").Add(float64(len(res.Products)))
		logger.Info("produtos gravados em csv", "path", p.CSVPath)
	}

	if p.Store != nil {
		n, err := p.Store.SaveAll(ctx, res.Products)
		if err != nil {
			return res, fmt.Errorf("load postgres: %w", err)
		}
		res.Stored = n
		observability.ProductsLoaded.WithLabelValues("postgres").Add(float64(n))
		logger.Info("produtos salvos no postgres", "rows", n)
	}

	return res, nil
}
