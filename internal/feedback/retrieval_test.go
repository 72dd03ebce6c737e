package feedback

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stowage-labs/stowage/internal/model"
)

type stubStore struct {
	recent      []model.FeedbackEntry
	byKeywords  []model.FeedbackEntry
	recentErr   error
	keywordsErr error
}

func (s *stubStore) RecentFeedback(_ context.Context, _ int) ([]model.FeedbackEntry, error) {
	return s.recent, s.recentErr
}

func (s *stubStore) FeedbackByKeywords(_ context.Context, _ []string, _ int) ([]model.FeedbackEntry, error) {
	return s.byKeywords, s.keywordsErr
}

func entry(id string, classification model.Category) model.FeedbackEntry {
	return model.FeedbackEntry{
		ID:             id,
		Timestamp:      time.Now().UTC(),
		Description:    "desc " + id,
		Classification: classification,
		IsCorrect:      true,
	}
}

func TestExtractKeywords(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "filters stopwords and short tokens",
			input: "The product is a small wireless mouse",
			want:  []string{"small", "wireless", "mouse"},
		},
		{
			name:  "domain filler excluded",
			input: "product approximately box package segway ninebot scooter",
			want:  []string{"segway", "ninebot", "scooter"},
		},
		{
			name:  "deduplicates preserving order",
			input: "scooter electric scooter electric",
			want:  []string{"scooter", "electric"},
		},
		{
			name:  "empty input",
			input: "",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractKeywords(tt.input, 10)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("keyword[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestExtractKeywordsLimit(t *testing.T) {
	got := ExtractKeywords("alpha beta gamma delta epsilon zeta eta theta iota kappa lambda", 10)
	if len(got) != 10 {
		t.Errorf("expected cap at 10 keywords, got %d", len(got))
	}
}

func TestRelevantDeduplicatesByID(t *testing.T) {
	shared := entry("shared", model.CategoryTote)
	store := &stubStore{
		byKeywords: []model.FeedbackEntry{entry("kw1", model.CategoryPouch), shared},
		recent:     []model.FeedbackEntry{shared, entry("r1", model.CategoryCarton)},
	}
	r := NewRetriever(store, nil)

	got := r.Relevant(context.Background(), "electric scooter", DefaultMaxEntries)

	count := 0
	for _, e := range got {
		if e.ID == "shared" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("shared id appeared %d times, want 1", count)
	}

	// Keyword matches come first, so the shared entry sits in the keyword
	// block, before any recency-only entry.
	if got[0].ID != "kw1" || got[1].ID != "shared" || got[2].ID != "r1" {
		t.Errorf("unexpected ordering: %v, %v, %v", got[0].ID, got[1].ID, got[2].ID)
	}
}

func TestRelevantTruncatesToMax(t *testing.T) {
	store := &stubStore{}
	for i := 0; i < 10; i++ {
		store.byKeywords = append(store.byKeywords, entry(string(rune('a'+i)), model.CategoryTote))
		store.recent = append(store.recent, entry(string(rune('k'+i)), model.CategoryTote))
	}
	r := NewRetriever(store, nil)

	got := r.Relevant(context.Background(), "electric scooter", 15)
	if len(got) != 15 {
		t.Errorf("len = %d, want 15", len(got))
	}
}

func TestRelevantNilStore(t *testing.T) {
	r := NewRetriever(nil, nil)
	if got := r.Relevant(context.Background(), "anything", 15); got != nil {
		t.Errorf("nil store should yield no entries, got %v", got)
	}
}

func TestRelevantStoreErrorsDegrade(t *testing.T) {
	store := &stubStore{
		recent:      []model.FeedbackEntry{entry("r1", model.CategoryTote)},
		keywordsErr: errors.New("table scan failed"),
	}
	r := NewRetriever(store, nil)

	got := r.Relevant(context.Background(), "electric scooter", 15)
	if len(got) != 1 || got[0].ID != "r1" {
		t.Errorf("expected recency tier to survive keyword tier failure, got %v", got)
	}
}

func TestFormatForPrompt(t *testing.T) {
	entries := []model.FeedbackEntry{
		{Description: "small usb cable", Classification: model.CategoryPouch, IsCorrect: true},
		{Description: "office chair", Classification: model.CategoryTote, IsCorrect: false},
	}

	got := FormatForPrompt(entries)

	if !strings.Contains(got, "## User Feedback Examples") {
		t.Error("missing header")
	}
	if !strings.Contains(got, `"small usb cable" -> POUCH (confirmed correct)`) {
		t.Errorf("missing positive example, got:\n%s", got)
	}
	if !strings.Contains(got, `"office chair" -> TOTE (user indicated incorrect)`) {
		t.Errorf("missing negative example, got:\n%s", got)
	}
}

func TestFormatForPromptTruncatesLongDescriptions(t *testing.T) {
	long := strings.Repeat("x", 150)
	got := FormatForPrompt([]model.FeedbackEntry{
		{Description: long, Classification: model.CategoryTote, IsCorrect: true},
	})
	if !strings.Contains(got, strings.Repeat("x", 97)+"...") {
		t.Error("long description should be ellipsis-truncated at 100 chars")
	}
	if strings.Contains(got, strings.Repeat("x", 98)) {
		t.Error("description exceeded truncation limit")
	}
}

func TestFormatForPromptEmpty(t *testing.T) {
	if got := FormatForPrompt(nil); got != "" {
		t.Errorf("empty input must produce empty string, got %q", got)
	}
}
