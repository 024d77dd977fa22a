package workers

import (
	"context"
	"errors"
	"fmt"

	"github.com/studyflow/studyflow-api/internal/database"
	"github.com/studyflow/studyflow-api/internal/models"
	"github.com/studyflow/studyflow-api/internal/planner"
	"github.com/studyflow/studyflow-api/internal/queue"
	"go.uber.org/zap"
)

// PlanRunner processes plan generation jobs. It rebuilds a user's study
// schedule from their saved availability preferences and open tasks,
// replacing previously scheduled future blocks.
type PlanRunner struct {
	planner   *planner.Planner
	prefRepo  database.PlanPreferenceRepositoryInterface
	taskRepo  database.TaskRepositoryInterface
	blockRepo database.TimeBlockRepositoryInterface
	logger    *zap.Logger
}

// NewPlanRunner creates a new plan runner
func NewPlanRunner(
	p *planner.Planner,
	prefRepo database.PlanPreferenceRepositoryInterface,
	taskRepo database.TaskRepositoryInterface,
	blockRepo database.TimeBlockRepositoryInterface,
	logger *zap.Logger,
) *PlanRunner {
	return &PlanRunner{
		planner:   p,
		prefRepo:  prefRepo,
		taskRepo:  taskRepo,
		blockRepo: blockRepo,
		logger:    logger,
	}
}

// ProcessPlanGenerationJob regenerates the weekly plan for the job's user.
func (r *PlanRunner) ProcessPlanGenerationJob(ctx context.Context, job *queue.Job) error {
	pref, err := r.prefRepo.GetByUserID(ctx, job.UserID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			// Nothing to do for users who never saved preferences
			r.logger.Info("plan_generation_skipped_no_preference",
				zap.String("user_id", job.UserID.String()),
			)
			return nil
		}
		return fmt.Errorf("failed to load plan preference: %w", err)
	}

	tasks, err := r.taskRepo.GetOpenByUserID(ctx, job.UserID)
	if err != nil {
		return fmt.Errorf("failed to load open tasks: %w", err)
	}

	blocks := r.planner.Plan(&models.PlanRequest{
		UserID:           job.UserID,
		Tasks:            tasks,
		Availability:     pref.Availability,
		StudyHoursPerDay: pref.StudyHoursPerDay,
	})

	// Old future blocks are superseded by the fresh plan; completed and
	// in-progress blocks are left alone.
	deleted, err := r.blockRepo.DeleteFutureByUser(ctx, job.UserID, r.planner.Now())
	if err != nil {
		return fmt.Errorf("failed to clear future blocks: %w", err)
	}

	if len(blocks) > 0 {
		if err := r.blockRepo.CreateBatch(ctx, blocks); err != nil {
			return fmt.Errorf("failed to save plan: %w", err)
		}
	}

	r.logger.Info("plan_generation_completed",
		zap.String("job_id", job.ID.String()),
		zap.String("user_id", job.UserID.String()),
		zap.Int("open_tasks", len(tasks)),
		zap.Int("blocks_scheduled", len(blocks)),
		zap.Int64("blocks_replaced", deleted),
	)

	return nil
}
