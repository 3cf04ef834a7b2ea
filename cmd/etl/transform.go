package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"fashionetl/internal/db"
	"fashionetl/internal/pipeline"
	"fashionetl/internal/repository"
)

var transformCmd = &cobra.Command{
	Use:   "transform",
	Short: "Clean pending raw rows and load them into the products table",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if cfg.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for transform")
		}

		dbConn, err := db.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer dbConn.Close()

		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer pool.Close()

		productRepo := &repository.ProductRepository{DB: pool}
		if err := productRepo.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("failed to create products: %w", err)
		}

		tr := &pipeline.Transformer{
			Raw:        &repository.RawRepository{DB: dbConn},
			Store:      productRepo,
			Normalizer: newNormalizer(),
			CSVPath:    cfg.OutputCSV,
			Logger:     logger,
		}
		_, err = tr.Run(ctx)
		return err
	},
}
