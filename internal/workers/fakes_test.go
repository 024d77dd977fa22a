package workers

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/studyflow/studyflow-api/internal/database"
	"github.com/studyflow/studyflow-api/internal/models"
	"github.com/studyflow/studyflow-api/internal/queue"
)

type fakeTaskRepo struct {
	openTasks []*models.Task
	created   []*models.Task
	createErr error
}

func (f *fakeTaskRepo) Create(_ context.Context, task *models.Task) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, task)
	return nil
}

func (f *fakeTaskRepo) GetByID(context.Context, uuid.UUID) (*models.Task, error) {
	return nil, database.ErrNotFound
}

func (f *fakeTaskRepo) GetByUserID(context.Context, uuid.UUID, *models.TaskStatus) ([]*models.Task, error) {
	return f.openTasks, nil
}

func (f *fakeTaskRepo) GetOpenByUserID(context.Context, uuid.UUID) ([]*models.Task, error) {
	return f.openTasks, nil
}

func (f *fakeTaskRepo) GetByIDs(context.Context, uuid.UUID, []uuid.UUID) ([]*models.Task, error) {
	return f.openTasks, nil
}

func (f *fakeTaskRepo) GetNextAction(context.Context, uuid.UUID) (*models.Task, error) {
	return nil, database.ErrNotFound
}

func (f *fakeTaskRepo) Update(context.Context, *models.Task) error { return nil }

func (f *fakeTaskRepo) Delete(context.Context, uuid.UUID) error { return nil }

type fakeBlockRepo struct {
	saved      []*models.TimeBlock
	deletedCut time.Time
	deleteN    int64
}

func (f *fakeBlockRepo) Create(_ context.Context, block *models.TimeBlock) error {
	f.saved = append(f.saved, block)
	return nil
}

func (f *fakeBlockRepo) CreateBatch(_ context.Context, blocks []*models.TimeBlock) error {
	f.saved = append(f.saved, blocks...)
	return nil
}

func (f *fakeBlockRepo) GetByID(context.Context, uuid.UUID) (*models.TimeBlock, error) {
	return nil, database.ErrNotFound
}

func (f *fakeBlockRepo) GetByUserInRange(context.Context, uuid.UUID, time.Time, time.Time) ([]*models.TimeBlock, error) {
	return f.saved, nil
}

func (f *fakeBlockRepo) GetCurrent(context.Context, uuid.UUID, time.Time) (*models.TimeBlock, error) {
	return nil, nil
}

func (f *fakeBlockRepo) DeleteFutureByUser(_ context.Context, _ uuid.UUID, cutoff time.Time) (int64, error) {
	f.deletedCut = cutoff
	return f.deleteN, nil
}

func (f *fakeBlockRepo) SetCompleted(context.Context, uuid.UUID, bool) (*models.TimeBlock, error) {
	return nil, database.ErrNotFound
}

type fakePrefRepo struct {
	pref *models.PlanPreference
	err  error
}

func (f *fakePrefRepo) Upsert(_ context.Context, pref *models.PlanPreference) error {
	f.pref = pref
	return nil
}

func (f *fakePrefRepo) GetByUserID(context.Context, uuid.UUID) (*models.PlanPreference, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.pref == nil {
		return nil, database.ErrNotFound
	}
	return f.pref, nil
}

func (f *fakePrefRepo) GetAutoPlanUsers(context.Context) ([]*models.PlanPreference, error) {
	if f.pref == nil {
		return nil, nil
	}
	return []*models.PlanPreference{f.pref}, nil
}

type fakeMessage struct {
	job     *queue.Job
	acked   bool
	nacked  bool
	requeue bool
}

func (f *fakeMessage) Ack() error {
	f.acked = true
	return nil
}

func (f *fakeMessage) Nack(requeue bool) error {
	f.nacked = true
	f.requeue = requeue
	return nil
}

func (f *fakeMessage) GetJob() *queue.Job { return f.job }
