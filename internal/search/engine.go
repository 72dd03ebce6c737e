// Package search implements product lookup over the reference catalogue.
// Semantic retrieval against the vector index is preferred; keyword matching
// is the fallback and never surfaces its reason to the caller.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/stowage-labs/stowage/internal/model"
)

const (
	// DefaultMaxResults is the number of formatted matches a lookup returns.
	DefaultMaxResults = 5

	// semanticCandidateCap bounds how many neighbors are pulled from the
	// vector index before re-ranking (2x the result count, capped).
	semanticCandidateCap = 20

	// Hybrid re-rank boosts. Raw embedding similarity under-weights exact
	// brand and model tokens; these additive terms correct for that.
	wordOverlapWeight   = 0.1
	exactSubstringBoost = 0.2
	anyWordBoost        = 0.05

	// Keyword scoring bonuses and the divisor that maps a raw keyword score
	// onto the [0,1] similarity scale.
	fullQueryNameBonus = 5
	anyWordNameBonus   = 2
	keywordScoreScale  = 10.0
)

// Catalog supplies the reference products searched against.
type Catalog interface {
	Products(ctx context.Context) ([]model.Product, error)
}

// Embedder turns text into a fixed-length vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Index answers nearest-neighbor queries over persisted product vectors.
type Index interface {
	HasEmbeddings(ctx context.Context) (bool, error)
	QueryNearest(ctx context.Context, query []float32, k int) ([]model.Neighbor, error)
}

// BestMatch carries the top result's raw catalogue strings for downstream
// dimension parsing.
type BestMatch struct {
	ProductName string  `json:"product_name"`
	Dimensions  string  `json:"dimensions"`
	Weight      string  `json:"weight"`
	Category    string  `json:"category"`
	Similarity  float64 `json:"similarity"`
}

// Lookup is the result of one product search.
type Lookup struct {
	Found     bool       `json:"found"`
	Matches   []string   `json:"matches"`
	BestMatch *BestMatch `json:"best_match"`
	Message   string     `json:"message"`
}

// Engine searches the reference catalogue. Both strategies share one entry
// point; the strategy is chosen per call, not per process.
type Engine struct {
	catalog    Catalog
	embedder   Embedder
	index      Index
	logger     *slog.Logger
	maxResults int
}

// NewEngine creates a search engine. embedder and index may be nil, which
// disables the semantic tier and leaves keyword search as the sole strategy.
func NewEngine(catalog Catalog, embedder Embedder, index Index, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		catalog:    catalog,
		embedder:   embedder,
		index:      index,
		logger:     logger,
		maxResults: DefaultMaxResults,
	}
}

// Lookup searches the catalogue for products matching query. An empty
// catalogue is a service error; semantic-tier failures degrade silently to
// keyword search.
func (e *Engine) Lookup(ctx context.Context, query string) (Lookup, error) {
	products, err := e.catalog.Products(ctx)
	if err != nil {
		return Lookup{}, fmt.Errorf("failed to load reference products: %w", err)
	}

	var results []model.SearchResult
	if e.semanticAvailable(ctx) {
		results, err = e.semanticSearch(ctx, query, products)
		if err != nil {
			e.logger.Warn("semantic search failed, falling back to keyword search",
				"error", err)
			results = nil
		}
	}
	if len(results) == 0 {
		results = e.keywordSearch(query, products)
	}

	if len(results) == 0 {
		return Lookup{
			Found:   false,
			Matches: []string{},
			Message: fmt.Sprintf("No products found matching '%s'", query),
		}, nil
	}

	matches := make([]string, len(results))
	for i, r := range results {
		matches[i] = fmt.Sprintf("%s: %s, %s", r.Name, r.Dimensions, r.Weight)
	}

	best := results[0]
	return Lookup{
		Found:   true,
		Matches: matches,
		BestMatch: &BestMatch{
			ProductName: best.Name,
			Dimensions:  best.Dimensions,
			Weight:      best.Weight,
			Category:    best.Category,
			Similarity:  best.Similarity,
		},
		Message: fmt.Sprintf("Found %d product(s) matching '%s'", len(results), query),
	}, nil
}

// semanticAvailable reports whether the semantic tier can serve this call.
// A missing or empty vector index disables it without error.
func (e *Engine) semanticAvailable(ctx context.Context) bool {
	if e.embedder == nil || e.index == nil {
		return false
	}
	has, err := e.index.HasEmbeddings(ctx)
	if err != nil {
		e.logger.Warn("vector index unavailable", "error", err)
		return false
	}
	return has
}

func (e *Engine) semanticSearch(ctx context.Context, query string, products []model.Product) ([]model.SearchResult, error) {
	vector, err := e.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	k := 2 * e.maxResults
	if k > semanticCandidateCap {
		k = semanticCandidateCap
	}
	neighbors, err := e.index.QueryNearest(ctx, vector, k)
	if err != nil {
		return nil, fmt.Errorf("vector query failed: %w", err)
	}

	byID := make(map[string]model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	results := make([]model.SearchResult, 0, len(neighbors))
	for _, n := range neighbors {
		p, ok := byID[n.ProductID]
		if !ok {
			// Vector for a product no longer in the catalogue.
			continue
		}
		similarity := 1 - n.Distance
		results = append(results, model.SearchResult{
			ID:          p.ID,
			Name:        p.Name,
			Dimensions:  p.Dimensions,
			Weight:      p.Weight,
			Category:    p.Category,
			Similarity:  similarity,
			HybridScore: similarity + lexicalBoost(query, p.Name),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].HybridScore > results[j].HybridScore
	})
	if len(results) > e.maxResults {
		results = results[:e.maxResults]
	}
	return results, nil
}

// lexicalBoost rewards exact brand/model token overlap between the query and
// the product name on top of the raw embedding similarity.
func lexicalBoost(query, name string) float64 {
	queryLower := strings.ToLower(query)
	nameLower := strings.ToLower(name)

	nameWords := make(map[string]struct{})
	for _, w := range strings.Fields(nameLower) {
		nameWords[w] = struct{}{}
	}

	overlap := 0
	anyWordInName := false
	seen := make(map[string]struct{})
	for _, w := range strings.Fields(queryLower) {
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		if _, ok := nameWords[w]; ok {
			overlap++
		}
		if strings.Contains(nameLower, w) {
			anyWordInName = true
		}
	}

	boost := wordOverlapWeight * float64(overlap)
	switch {
	case strings.Contains(nameLower, queryLower):
		boost += exactSubstringBoost
	case anyWordInName:
		boost += anyWordBoost
	}
	return boost
}

// keywordSearch scores each product by keyword occurrence in its searchable
// text plus name-match bonuses. Ties keep catalogue order.
func (e *Engine) keywordSearch(query string, products []model.Product) []model.SearchResult {
	queryLower := strings.ToLower(strings.TrimSpace(query))
	keywords := strings.Fields(queryLower)
	if len(keywords) == 0 {
		return nil
	}

	type scored struct {
		product model.Product
		score   int
	}
	var matches []scored
	for _, p := range products {
		searchable := strings.ToLower(p.SearchableText())
		score := 0
		for _, kw := range keywords {
			if strings.Contains(searchable, kw) {
				score++
			}
		}

		nameLower := strings.ToLower(p.Name)
		if strings.Contains(nameLower, queryLower) {
			score += fullQueryNameBonus
		} else {
			for _, kw := range keywords {
				if strings.Contains(nameLower, kw) {
					score += anyWordNameBonus
					break
				}
			}
		}

		if score > 0 {
			matches = append(matches, scored{product: p, score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})
	if len(matches) > e.maxResults {
		matches = matches[:e.maxResults]
	}

	results := make([]model.SearchResult, len(matches))
	for i, m := range matches {
		similarity := float64(m.score) / keywordScoreScale
		if similarity > 1.0 {
			similarity = 1.0
		}
		results[i] = model.SearchResult{
			ID:          m.product.ID,
			Name:        m.product.Name,
			Dimensions:  m.product.Dimensions,
			Weight:      m.product.Weight,
			Category:    m.product.Category,
			Similarity:  similarity,
			HybridScore: similarity,
		}
	}
	return results
}
