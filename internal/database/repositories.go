package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/studyflow/studyflow-api/internal/models"
)

// TaskRepositoryInterface defines the interface for task repository operations
// This interface enables better testability by allowing mock implementations
type TaskRepositoryInterface interface {
	Create(ctx context.Context, task *models.Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error)
	GetByUserID(ctx context.Context, userID uuid.UUID, status *models.TaskStatus) ([]*models.Task, error)
	GetOpenByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Task, error)
	GetByIDs(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]*models.Task, error)
	GetNextAction(ctx context.Context, userID uuid.UUID) (*models.Task, error)
	Update(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// TimeBlockRepositoryInterface defines the interface for time block repository operations
type TimeBlockRepositoryInterface interface {
	Create(ctx context.Context, block *models.TimeBlock) error
	CreateBatch(ctx context.Context, blocks []*models.TimeBlock) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.TimeBlock, error)
	GetByUserInRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*models.TimeBlock, error)
	GetCurrent(ctx context.Context, userID uuid.UUID, at time.Time) (*models.TimeBlock, error)
	DeleteFutureByUser(ctx context.Context, userID uuid.UUID, cutoff time.Time) (int64, error)
	SetCompleted(ctx context.Context, id uuid.UUID, completed bool) (*models.TimeBlock, error)
}

// PlanPreferenceRepositoryInterface defines the interface for plan preference operations
type PlanPreferenceRepositoryInterface interface {
	Upsert(ctx context.Context, pref *models.PlanPreference) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.PlanPreference, error)
	GetAutoPlanUsers(ctx context.Context) ([]*models.PlanPreference, error)
}

// UserRepositoryInterface defines the interface for user repository operations
type UserRepositoryInterface interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByProviderID(ctx context.Context, providerID string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
}

// Ensure concrete types implement the interfaces
var (
	_ TaskRepositoryInterface           = (*TaskRepository)(nil)
	_ TimeBlockRepositoryInterface      = (*TimeBlockRepository)(nil)
	_ PlanPreferenceRepositoryInterface = (*PlanPreferenceRepository)(nil)
	_ UserRepositoryInterface           = (*UserRepository)(nil)
)
