package main

import (
	"fmt"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/stowage-labs/stowage/internal/model"
)

func indexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Build the semantic search index",
		Long: `Embed every product in the reference catalogue and persist the vectors
for semantic search. Requires an embedding endpoint (embedding.base_url).

Example:
  STOWAGE_EMBEDDING_BASE_URL=http://localhost:8000 stowage index`,
		RunE: runIndex,
	}

	cmd.Flags().Int("concurrency", 4, "number of concurrent embedding requests")
	_ = viper.BindPFlag("index.concurrency", cmd.Flags().Lookup("concurrency"))

	return cmd
}

func runIndex(cmd *cobra.Command, _ []string) error {
	embedder, err := createEmbeddingClient()
	if err != nil {
		return fmt.Errorf("failed to create embedding client: %w", err)
	}
	if embedder == nil {
		return fmt.Errorf("no embedding endpoint configured (set embedding.base_url)")
	}

	store, err := initStore()
	if err != nil {
		return err
	}
	defer closeStore(store)

	products, err := store.Products(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load products (run 'stowage import' first): %w", err)
	}

	concurrency := viper.GetInt("index.concurrency")
	if concurrency < 1 {
		concurrency = 1
	}

	bar := progressbar.Default(int64(len(products)), "embedding products")

	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(concurrency)
	for _, product := range products {
		product := product
		g.Go(func() error {
			vector, err := embedder.Embed(ctx, embeddingText(product))
			if err != nil {
				return fmt.Errorf("failed to embed %q: %w", product.Name, err)
			}
			if err := store.SaveEmbedding(ctx, product.ID, vector); err != nil {
				return fmt.Errorf("failed to store vector for %q: %w", product.Name, err)
			}
			_ = bar.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	_ = bar.Finish()

	cmd.Printf("Indexed %d products\n", len(products))
	return nil
}

// embeddingText builds the text embedded per product: name, category, and
// description joined so brand tokens and product type both contribute.
func embeddingText(p model.Product) string {
	parts := []string{p.Name}
	if p.Category != "" {
		parts = append(parts, "Category: "+p.Category)
	}
	if p.About != "" {
		parts = append(parts, p.About)
	}

	return strings.Join(parts, ". ")
}
