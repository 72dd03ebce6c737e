package model

import "time"

// FeedbackEntry records one user verdict on a prior classification. Entries
// are immutable once stored; retention is handled outside this service.
type FeedbackEntry struct {
	ID             string    `json:"id"`
	Timestamp      time.Time `json:"timestamp"`
	Description    string    `json:"description"`
	Classification Category  `json:"classification"`
	IsCorrect      bool      `json:"is_correct"`
	Keywords       []string  `json:"keywords"`
}
