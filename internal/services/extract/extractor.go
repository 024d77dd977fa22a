package extract

import (
	"context"

	"github.com/google/uuid"
	"github.com/studyflow/studyflow-api/internal/models"
)

// Extractor turns raw document text into candidate tasks.
type Extractor interface {
	Extract(ctx context.Context, text string, userID uuid.UUID) ([]*models.Task, error)
}

// PatternExtractor is the regex-only extractor used when no AI backend
// is configured.
type PatternExtractor struct{}

// Extract implements Extractor using pattern matching.
func (PatternExtractor) Extract(_ context.Context, text string, userID uuid.UUID) ([]*models.Task, error) {
	return ParseTasks(text, userID), nil
}

var (
	_ Extractor = PatternExtractor{}
	_ Extractor = (*LLMExtractor)(nil)
)
