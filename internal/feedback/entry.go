package feedback

import (
	"time"

	"github.com/google/uuid"

	"github.com/stowage-labs/stowage/internal/model"
)

// NewEntry builds an immutable feedback record for a user verdict on a prior
// classification. Keywords are extracted from the description at creation
// time so retrieval never re-tokenizes stored rows.
func NewEntry(description string, classification model.Category, isCorrect bool) model.FeedbackEntry {
	return model.FeedbackEntry{
		ID:             uuid.NewString(),
		Timestamp:      time.Now().UTC(),
		Description:    description,
		Classification: classification,
		IsCorrect:      isCorrect,
		Keywords:       ExtractKeywords(description, maxExtractedKeywords),
	}
}
