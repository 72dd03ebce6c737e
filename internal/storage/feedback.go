package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/stowage-labs/stowage/internal/model"
)

// SaveFeedback stores one fully-formed feedback entry as a single atomic
// insert. Entries are never updated or deleted here.
func (s *Store) SaveFeedback(ctx context.Context, entry model.FeedbackEntry) error {
	if entry.ID == "" {
		return fmt.Errorf("feedback entry requires an id")
	}

	keywords, err := json.Marshal(entry.Keywords)
	if err != nil {
		return fmt.Errorf("failed to encode keywords: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `INSERT INTO feedback (id, timestamp, description, classification, is_correct, keywords)
		VALUES (?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.Timestamp.UTC().Format(time.RFC3339),
		entry.Description,
		string(entry.Classification),
		entry.IsCorrect,
		string(keywords),
	)
	if err != nil {
		return fmt.Errorf("failed to insert feedback: %w", err)
	}

	s.logger.Info("stored feedback",
		"id", entry.ID,
		"classification", entry.Classification,
		"is_correct", entry.IsCorrect)
	return nil
}

// RecentFeedback returns the most recently stored entries, newest first.
func (s *Store) RecentFeedback(ctx context.Context, limit int) ([]model.FeedbackEntry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, timestamp, description, classification, is_correct, keywords
		FROM feedback ORDER BY timestamp DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent feedback: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanFeedback(rows)
}

// FeedbackByKeywords returns entries whose stored keyword sets overlap the
// given keywords, scored by overlap count with recency breaking ties. The
// feedback log is small; a full scan matches the design.
func (s *Store) FeedbackByKeywords(ctx context.Context, keywords []string, limit int) ([]model.FeedbackEntry, error) {
	if len(keywords) == 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `SELECT id, timestamp, description, classification, is_correct, keywords
		FROM feedback`)
	if err != nil {
		return nil, fmt.Errorf("failed to query feedback: %w", err)
	}
	defer func() { _ = rows.Close() }()

	entries, err := scanFeedback(rows)
	if err != nil {
		return nil, err
	}

	want := make(map[string]struct{}, len(keywords))
	for _, kw := range keywords {
		want[kw] = struct{}{}
	}

	type scored struct {
		entry   model.FeedbackEntry
		overlap int
	}
	var matches []scored
	for _, entry := range entries {
		overlap := 0
		for _, kw := range entry.Keywords {
			if _, ok := want[kw]; ok {
				overlap++
			}
		}
		if overlap > 0 {
			matches = append(matches, scored{entry: entry, overlap: overlap})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].overlap != matches[j].overlap {
			return matches[i].overlap > matches[j].overlap
		}
		return matches[i].entry.Timestamp.After(matches[j].entry.Timestamp)
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}

	result := make([]model.FeedbackEntry, len(matches))
	for i, m := range matches {
		result[i] = m.entry
	}
	return result, nil
}

// FeedbackCount returns the number of stored feedback entries.
func (s *Store) FeedbackCount(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM feedback`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count feedback: %w", err)
	}
	return count, nil
}

func scanFeedback(rows *sql.Rows) ([]model.FeedbackEntry, error) {
	var entries []model.FeedbackEntry
	for rows.Next() {
		var entry model.FeedbackEntry
		var timestamp, classification, keywords string
		if err := rows.Scan(&entry.ID, &timestamp, &entry.Description, &classification, &entry.IsCorrect, &keywords); err != nil {
			return nil, fmt.Errorf("failed to scan feedback: %w", err)
		}

		ts, err := time.Parse(time.RFC3339, timestamp)
		if err != nil {
			return nil, fmt.Errorf("invalid feedback timestamp %q: %w", timestamp, err)
		}
		entry.Timestamp = ts
		entry.Classification = model.Category(classification)

		if err := json.Unmarshal([]byte(keywords), &entry.Keywords); err != nil {
			return nil, fmt.Errorf("invalid feedback keywords for %s: %w", entry.ID, err)
		}

		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate feedback: %w", err)
	}
	return entries, nil
}
