package main

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"fashionetl/internal/crawler"
	"fashionetl/internal/db"
	"fashionetl/internal/model"
	"fashionetl/internal/pipeline"
	"fashionetl/internal/repository"
)

const sampleRows = 5

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Scrape, clean and write products to CSV (and Postgres when DATABASE_URL is set)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		opts, closeCache := crawlOptions(ctx)
		defer closeCache()

		p := &pipeline.Pipeline{
			Fetcher:    crawler.NewClient(cfg.RequestTimeout, cfg.MaxRetries),
			Crawl:      opts,
			Normalizer: newNormalizer(),
			CSVPath:    cfg.OutputCSV,
			Logger:     logger,
		}

		if cfg.DatabaseURL != "" {
			pool, err := db.NewPool(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer pool.Close()

			repo := &repository.ProductRepository{DB: pool}
			if err := repo.EnsureSchema(ctx); err != nil {
				return fmt.Errorf("failed to create products: %w", err)
			}
			p.Store = repo
		}

		res, err := p.Run(ctx)
		if err != nil {
			return err
		}

		printSample(res.Products)
		return nil
	},
}

func printSample(products []model.Product) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	header := table.Row{}
	for _, c := range model.Columns {
		header = append(header, c)
	}
	t.AppendHeader(header)
	for i, p := range products {
		if i == sampleRows {
			break
		}
		t.AppendRow(table.Row{p.Title, p.Price, p.Rating, p.Colors, p.Size, p.Gender, p.Timestamp})
	}
	t.AppendFooter(table.Row{"", "", "", "", "", "total", len(products)})
	t.SetStyle(table.StyleRounded)
	t.Render()
}
