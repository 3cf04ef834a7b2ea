package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"fashionetl/internal/loader"
	"fashionetl/internal/model"
	"fashionetl/internal/observability"
	"fashionetl/internal/transform"
)

// RawStore holds scraped rows waiting to be cleaned. repository.RawRepository
// is one.
type RawStore interface {
	ListPending(ctx context.Context) ([]model.RawProduct, error)
	MarkAsProcessed(ctx context.Context, ids []string) error
}

// Transformer cleans the pending raw rows of earlier crawls and loads them.
type Transformer struct {
	Raw        RawStore
	Store      ProductSink
	Normalizer *transform.Normalizer
	CSVPath    string
	Logger     *slog.Logger
}

type TransformResult struct {
	Raw      int
	Products []model.Product
	Stored   int
}

// Run leaves the raw rows pending when the store rejects the batch, so the
// next run retries them. A CSV failure is only logged.
func (t *Transformer) Run(ctx context.Context) (TransformResult, error) {
	var res TransformResult
	logger := t.Logger
	if logger == nil {
		logger = slog.Default()
	}

	raws, err := t.Raw.ListPending(ctx)
	if err != nil {
		return res, fmt.Errorf("failed to list raw products: %w", err)
	}
	res.Raw = len(raws)
	if len(raws) == 0 {
		logger.Info("nenhum produto bruto pendente")
		return res, nil
	}

	res.Products = t.Normalizer.Normalize(raws)

	if len(res.Products) > 0 {
		if t.Store != nil {
			n, err := t.Store.SaveAll(ctx, res.Products)
			if err != nil {
				return res, fmt.Errorf("load postgres: %w", err)
			}
			res.Stored = n
			observability.ProductsLoaded.WithLabelValues("postgres").Add(float64(n))
		}

		if t.CSVPath != "" {
			if err := loader.WriteCSV(t.CSVPath, res.Products); err != nil {
				logger.Error("erro ao gravar csv", "path", t.CSVPath, "err", err)
			} else {
				observability.ProductsLoaded.WithLabelValues("csv").Add(float64(len(res.Products)))
			}
		}
	}

	// Linhas descartadas pela limpeza também contam como processadas
	ids := make([]string, len(raws))
	for i, r := range raws {
		ids[i] = r.ID
	}
	if err := t.Raw.MarkAsProcessed(ctx, ids); err != nil {
		return res, fmt.Errorf("failed to mark raw products: %w", err)
	}

	logger.Info("limpeza finalizada", "raw", res.Raw, "clean", len(res.Products), "stored", res.Stored)
	return res, nil
}
