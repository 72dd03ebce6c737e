package feedback

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/stowage-labs/stowage/internal/model"
)

// Retrieval limits.
const (
	maxExtractedKeywords = 10
	keywordTierLimit     = 10
	recencyTierLimit     = 10

	// DefaultMaxEntries caps the merged two-tier result.
	DefaultMaxEntries = 15
)

// promptHeader precedes the formatted few-shot examples.
const promptHeader = "\n## User Feedback Examples\n\nPrevious classifications with user feedback:\n"

// Store is the read side of the feedback store.
type Store interface {
	RecentFeedback(ctx context.Context, limit int) ([]model.FeedbackEntry, error)
	FeedbackByKeywords(ctx context.Context, keywords []string, limit int) ([]model.FeedbackEntry, error)
}

// Retriever performs two-tier feedback retrieval: keyword-overlap matches
// for topical relevance, recent entries to guard against drift.
type Retriever struct {
	store  Store
	logger *slog.Logger
}

// NewRetriever creates a Retriever. A nil store disables retrieval: Relevant
// returns an empty list rather than an error.
func NewRetriever(store Store, logger *slog.Logger) *Retriever {
	if logger == nil {
		logger = slog.Default()
	}
	return &Retriever{store: store, logger: logger}
}

// Relevant returns up to maxEntries feedback entries for a description,
// deduplicated by id. Keyword matches are listed first; recency matches are
// appended only when not already present. Store failures degrade to fewer
// (or zero) entries, never to an error.
func (r *Retriever) Relevant(ctx context.Context, description string, maxEntries int) []model.FeedbackEntry {
	if r.store == nil {
		return nil
	}
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}

	keywords := ExtractKeywords(description, maxExtractedKeywords)

	var keywordMatches []model.FeedbackEntry
	if len(keywords) > 0 {
		var err error
		keywordMatches, err = r.store.FeedbackByKeywords(ctx, keywords, keywordTierLimit)
		if err != nil {
			r.logger.Warn("keyword feedback retrieval failed", "error", err)
		}
	}

	recent, err := r.store.RecentFeedback(ctx, recencyTierLimit)
	if err != nil {
		r.logger.Warn("recent feedback retrieval failed", "error", err)
	}

	seen := make(map[string]struct{}, len(keywordMatches)+len(recent))
	var merged []model.FeedbackEntry

	for _, entry := range keywordMatches {
		if _, dup := seen[entry.ID]; dup {
			continue
		}
		seen[entry.ID] = struct{}{}
		merged = append(merged, entry)
	}
	for _, entry := range recent {
		if _, dup := seen[entry.ID]; dup {
			continue
		}
		seen[entry.ID] = struct{}{}
		merged = append(merged, entry)
	}

	if len(merged) > maxEntries {
		merged = merged[:maxEntries]
	}
	return merged
}

// FormatForPrompt renders feedback entries as few-shot context, one line per
// entry under a fixed header. An empty input yields an empty string.
func FormatForPrompt(entries []model.FeedbackEntry) string {
	if len(entries) == 0 {
		return ""
	}

	lines := make([]string, 0, len(entries))
	for _, entry := range entries {
		desc := entry.Description
		if len(desc) > 100 {
			desc = desc[:97] + "..."
		}

		verdict := "user indicated incorrect"
		if entry.IsCorrect {
			verdict = "confirmed correct"
		}

		lines = append(lines, fmt.Sprintf("- %q -> %s (%s)", desc, entry.Classification, verdict))
	}

	return promptHeader + strings.Join(lines, "\n")
}
