package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"fashionetl/internal/crawler"
	"fashionetl/internal/db"
	"fashionetl/internal/model"
	"fashionetl/internal/observability"
	"fashionetl/internal/repository"
)

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Scrape product pages into the product_raw table",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if cfg.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for crawl")
		}

		dbConn, err := db.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer dbConn.Close()

		repo := &repository.RawRepository{DB: dbConn}
		if err := repo.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("failed to create product_raw: %w", err)
		}

		opts, closeCache := crawlOptions(ctx)
		defer closeCache()

		client := crawler.NewClient(cfg.RequestTimeout, cfg.MaxRetries)
		saved := 0
		stats, err := crawler.CrawlPages(ctx, client, opts, func(p model.RawProduct) {
			if err := repo.Save(ctx, p); err != nil {
				logger.Error("erro ao salvar produto bruto", "id", p.ID, "err", err)
				return
			}
			saved++
		})
		observability.PagesFetched.Add(float64(stats.Pages))
		observability.PagesFailed.Add(float64(stats.Failed))
		observability.RawProducts.Add(float64(stats.Products))
		if err != nil {
			return err
		}

		logger.Info("crawler finalizado", "pages", stats.Pages, "failed", stats.Failed, "scraped", stats.Products, "saved", saved)
		return nil
	},
}
