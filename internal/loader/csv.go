// Package loader writes clean products to their sinks.
package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"fashionetl/internal/model"
)

var ErrEmptyBatch = errors.New("no products to load")

// WriteCSV writes products with a header row, creating the parent directory
// when it does not exist yet.
func WriteCSV(path string, products []model.Product) error {
	if len(products) == 0 {
		return ErrEmptyBatch
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := Encode(f, products); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

// Encode writes the CSV form of products to w.
func Encode(w io.Writer, products []model.Product) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(model.Columns); err != nil {
		return err
	}
	for _, p := range products {
		if err := cw.Write(record(p)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func record(p model.Product) []string {
	return []string{
		p.Title,
		strconv.FormatFloat(p.Price, 'f', -1, 64),
		strconv.FormatFloat(p.Rating, 'f', -1, 64),
		strconv.Itoa(p.Colors),
		p.Size,
		p.Gender,
		p.Timestamp,
	}
}
