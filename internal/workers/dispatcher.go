package workers

import (
	"context"
	"fmt"

	"github.com/studyflow/studyflow-api/internal/queue"
	"go.uber.org/zap"
)

// Dispatcher routes queue messages to the matching job processor and
// owns acknowledgement and retry handling.
type Dispatcher struct {
	extractor *DocumentExtractor
	planner   *PlanRunner
	logger    *zap.Logger
}

// NewDispatcher creates a new job dispatcher
func NewDispatcher(extractor *DocumentExtractor, planRunner *PlanRunner, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		extractor: extractor,
		planner:   planRunner,
		logger:    logger,
	}
}

// ProcessJob processes a job based on its type
func (d *Dispatcher) ProcessJob(ctx context.Context, msg queue.MessageInterface) error {
	job := msg.GetJob()

	switch job.Type {
	case queue.JobTypeDocumentExtraction:
		if err := d.extractor.ProcessDocumentExtractionJob(ctx, job); err != nil {
			return d.handleJobError(msg, job, err)
		}

	case queue.JobTypePlanGeneration:
		if err := d.planner.ProcessPlanGenerationJob(ctx, job); err != nil {
			return d.handleJobError(msg, job, err)
		}

	default:
		// Unknown job type goes straight to the DLQ
		if nackErr := msg.Nack(false); nackErr != nil {
			d.logger.Error("nack_failed", zap.Error(nackErr))
		}
		return fmt.Errorf("unknown job type: %s", job.Type)
	}

	if ackErr := msg.Ack(); ackErr != nil {
		return fmt.Errorf("failed to ack job: %w", ackErr)
	}
	return nil
}

func (d *Dispatcher) handleJobError(msg queue.MessageInterface, job *queue.Job, err error) error {
	if job.CanRetry() {
		job.IncrementRetry()
		d.logger.Warn("job_failed_will_retry",
			zap.String("job_id", job.ID.String()),
			zap.String("job_type", string(job.Type)),
			zap.Int("attempt", job.RetryCount),
			zap.Int("max_retries", job.MaxRetries),
			zap.Error(err),
		)
		if nackErr := msg.Nack(true); nackErr != nil {
			d.logger.Error("nack_failed", zap.Error(nackErr))
		}
		return fmt.Errorf("job failed (will retry): %w", err)
	}

	d.logger.Error("job_failed_sending_to_dlq",
		zap.String("job_id", job.ID.String()),
		zap.String("job_type", string(job.Type)),
		zap.Int("retries", job.RetryCount),
		zap.Error(err),
	)
	if nackErr := msg.Nack(false); nackErr != nil {
		d.logger.Error("nack_failed", zap.Error(nackErr))
	}
	return fmt.Errorf("job failed (max retries): %w", err)
}
