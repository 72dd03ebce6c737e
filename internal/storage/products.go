package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/stowage-labs/stowage/internal/model"
)

// ErrNoReferenceData indicates the product catalogue has not been imported.
// Lookup-dependent paths treat this as fatal.
var ErrNoReferenceData = errors.New("reference product data not loaded")

// ReplaceProducts atomically replaces the reference catalogue. Row order is
// preserved so keyword-search ties resolve by catalogue position.
func (s *Store) ReplaceProducts(ctx context.Context, products []model.Product) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM products`); err != nil {
		return fmt.Errorf("failed to clear products: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO products (id, name, category, about, dimensions, weight, position)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, p := range products {
		if _, err := stmt.ExecContext(ctx, p.ID, p.Name, p.Category, p.About, p.Dimensions, p.Weight, i); err != nil {
			return fmt.Errorf("failed to insert product %q: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit products: %w", err)
	}

	s.productMu.Lock()
	s.productCache = nil
	s.loaded = false
	s.productMu.Unlock()

	s.logger.Info("reference catalogue replaced", "count", len(products))
	return nil
}

// Products returns the reference catalogue in original order, loading it
// from the database on first use and serving the cache afterwards. Returns
// ErrNoReferenceData when the catalogue is empty.
func (s *Store) Products(ctx context.Context) ([]model.Product, error) {
	s.productMu.RLock()
	if s.loaded {
		cached := s.productCache
		s.productMu.RUnlock()
		if len(cached) == 0 {
			return nil, ErrNoReferenceData
		}
		return cached, nil
	}
	s.productMu.RUnlock()

	return s.Reload(ctx)
}

// Reload bypasses the cache and reloads the catalogue from the database.
func (s *Store) Reload(ctx context.Context) ([]model.Product, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, category, about, dimensions, weight
		FROM products ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var products []model.Product
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.About, &p.Dimensions, &p.Weight); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate products: %w", err)
	}

	s.productMu.Lock()
	s.productCache = products
	s.loaded = true
	s.productMu.Unlock()

	if len(products) == 0 {
		return nil, ErrNoReferenceData
	}
	return products, nil
}

// ProductCount returns the number of products in the catalogue.
func (s *Store) ProductCount(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return count, nil
}
