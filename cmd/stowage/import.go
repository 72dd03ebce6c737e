package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stowage-labs/stowage/internal/model"
)

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <catalog.csv>",
		Short: "Load the reference product catalogue",
		Long: `Import a product catalogue CSV into the database, replacing any
previously imported catalogue. Expected columns: Uniq Id, Product Name,
Category, About Product, Product Dimensions, Shipping Weight.

Example:
  stowage import data/catalog.csv`,
		Args: cobra.ExactArgs(1),
		RunE: runImport,
	}
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	path := expandPath(args[0])

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open catalogue file: %w", err)
	}
	defer f.Close()

	products, err := readCatalogue(f)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(products) == 0 {
		return fmt.Errorf("no products found in %s", path)
	}

	store, err := initStore()
	if err != nil {
		return err
	}
	defer closeStore(store)

	if err := store.ReplaceProducts(ctx, products); err != nil {
		return fmt.Errorf("failed to store products: %w", err)
	}

	cmd.Printf("Imported %d products from %s\n", len(products), path)
	cmd.Println("Run 'stowage index' to build the semantic search index.")
	return nil
}

// Catalogue CSV column names.
const (
	colID         = "Uniq Id"
	colName       = "Product Name"
	colCategory   = "Category"
	colAbout      = "About Product"
	colDimensions = "Product Dimensions"
	colWeight     = "Shipping Weight"
)

// readCatalogue parses the catalogue CSV. Columns are located by header
// name; rows without a product name are skipped. Row order is preserved as
// catalogue order.
func readCatalogue(r io.Reader) ([]model.Product, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	if _, ok := cols[colName]; !ok {
		return nil, fmt.Errorf("missing required column %q", colName)
	}

	field := func(record []string, name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	var products []model.Product
	for row := 1; ; row++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}

		name := field(record, colName)
		if name == "" {
			continue
		}

		id := field(record, colID)
		if id == "" {
			id = fmt.Sprintf("row-%d", row)
		}

		products = append(products, model.Product{
			ID:         id,
			Name:       name,
			Category:   field(record, colCategory),
			About:      field(record, colAbout),
			Dimensions: field(record, colDimensions),
			Weight:     field(record, colWeight),
		})
	}

	return products, nil
}
