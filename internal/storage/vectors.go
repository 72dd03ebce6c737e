package storage

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"sort"

	"github.com/stowage-labs/stowage/internal/model"
)

// SaveEmbedding persists the embedding vector for one product, replacing any
// previous vector.
func (s *Store) SaveEmbedding(ctx context.Context, productID string, vector []float32) error {
	if len(vector) == 0 {
		return fmt.Errorf("empty vector for product %q", productID)
	}

	_, err := s.db.ExecContext(ctx, `INSERT INTO embeddings (product_id, vector, dims) VALUES (?, ?, ?)
		ON CONFLICT(product_id) DO UPDATE SET vector = excluded.vector, dims = excluded.dims`,
		productID, encodeVector(vector), len(vector))
	if err != nil {
		return fmt.Errorf("failed to save embedding for %q: %w", productID, err)
	}
	return nil
}

// HasEmbeddings reports whether any vectors have been indexed.
func (s *Store) HasEmbeddings(ctx context.Context) (bool, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM embeddings`).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to count embeddings: %w", err)
	}
	return count > 0, nil
}

// QueryNearest returns the k nearest products to the query vector by cosine
// distance (distance = 1 - cosine similarity), closest first. The catalogue
// is small enough that a full scan is the index.
func (s *Store) QueryNearest(ctx context.Context, query []float32, k int) ([]model.Neighbor, error) {
	if len(query) == 0 {
		return nil, fmt.Errorf("empty query vector")
	}

	rows, err := s.db.QueryContext(ctx, `SELECT product_id, vector, dims FROM embeddings`)
	if err != nil {
		return nil, fmt.Errorf("failed to query embeddings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var neighbors []model.Neighbor
	for rows.Next() {
		var productID string
		var blob []byte
		var dims int
		if err := rows.Scan(&productID, &blob, &dims); err != nil {
			return nil, fmt.Errorf("failed to scan embedding: %w", err)
		}
		if dims != len(query) {
			return nil, fmt.Errorf("embedding dimension mismatch for %q: index %d, query %d", productID, dims, len(query))
		}

		vector, err := decodeVector(blob, dims)
		if err != nil {
			return nil, fmt.Errorf("corrupt embedding for %q: %w", productID, err)
		}

		neighbors = append(neighbors, model.Neighbor{
			ProductID: productID,
			Distance:  1 - cosineSimilarity(query, vector),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate embeddings: %w", err)
	}

	sort.SliceStable(neighbors, func(i, j int) bool {
		return neighbors[i].Distance < neighbors[j].Distance
	})
	if len(neighbors) > k {
		neighbors = neighbors[:k]
	}
	return neighbors, nil
}

func encodeVector(vector []float32) []byte {
	buf := make([]byte, 4*len(vector))
	for i, v := range vector {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

func decodeVector(blob []byte, dims int) ([]float32, error) {
	if len(blob) != 4*dims {
		return nil, fmt.Errorf("blob length %d does not match %d dims", len(blob), dims)
	}
	vector := make([]float32, dims)
	for i := range vector {
		vector[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4:]))
	}
	return vector, nil
}

func cosineSimilarity(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
