package workers

import (
	"context"
	"fmt"

	"github.com/studyflow/studyflow-api/internal/database"
	"github.com/studyflow/studyflow-api/internal/queue"
	"github.com/studyflow/studyflow-api/internal/services/extract"
	"go.uber.org/zap"
)

// DocumentExtractor processes document extraction jobs. The uploaded
// document's text travels in the job payload; extracted tasks are
// persisted for the user to review and plan.
type DocumentExtractor struct {
	extractor extract.Extractor
	taskRepo  database.TaskRepositoryInterface
	logger    *zap.Logger
}

// NewDocumentExtractor creates a new document extractor
func NewDocumentExtractor(extractor extract.Extractor, taskRepo database.TaskRepositoryInterface, logger *zap.Logger) *DocumentExtractor {
	return &DocumentExtractor{
		extractor: extractor,
		taskRepo:  taskRepo,
		logger:    logger,
	}
}

// ProcessDocumentExtractionJob extracts tasks from the job's document
// text and stores them.
func (e *DocumentExtractor) ProcessDocumentExtractionJob(ctx context.Context, job *queue.Job) error {
	text := job.DocumentText()
	if text == "" {
		return fmt.Errorf("document text is required for extraction job")
	}

	tasks, err := e.extractor.Extract(ctx, text, job.UserID)
	if err != nil {
		return fmt.Errorf("failed to extract tasks: %w", err)
	}

	created := 0
	for _, task := range tasks {
		if err := e.taskRepo.Create(ctx, task); err != nil {
			e.logger.Error("extracted_task_create_failed",
				zap.Error(err),
				zap.String("user_id", job.UserID.String()),
				zap.String("title", task.Title),
			)
			continue
		}
		created++
	}

	e.logger.Info("document_extraction_completed",
		zap.String("job_id", job.ID.String()),
		zap.String("user_id", job.UserID.String()),
		zap.Int("tasks_found", len(tasks)),
		zap.Int("tasks_created", created),
	)

	return nil
}
