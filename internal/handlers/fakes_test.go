package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/google/uuid"
	"github.com/studyflow/studyflow-api/internal/models"
	"github.com/studyflow/studyflow-api/internal/queue"
	"github.com/studyflow/studyflow-api/internal/request"
)

var errStubNotFound = errors.New("not found")

type stubTaskRepo struct {
	tasks      map[uuid.UUID]*models.Task
	nextAction *models.Task
	createErr  error
}

func newStubTaskRepo(tasks ...*models.Task) *stubTaskRepo {
	repo := &stubTaskRepo{tasks: make(map[uuid.UUID]*models.Task)}
	for _, task := range tasks {
		repo.tasks[task.ID] = task
	}
	return repo
}

func (s *stubTaskRepo) Create(_ context.Context, task *models.Task) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.tasks[task.ID] = task
	return nil
}

func (s *stubTaskRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Task, error) {
	task, ok := s.tasks[id]
	if !ok {
		return nil, errStubNotFound
	}
	return task, nil
}

func (s *stubTaskRepo) GetByUserID(_ context.Context, userID uuid.UUID, status *models.TaskStatus) ([]*models.Task, error) {
	var out []*models.Task
	for _, task := range s.tasks {
		if task.UserID != userID {
			continue
		}
		if status != nil && task.Status != *status {
			continue
		}
		out = append(out, task)
	}
	return out, nil
}

func (s *stubTaskRepo) GetOpenByUserID(_ context.Context, userID uuid.UUID) ([]*models.Task, error) {
	var out []*models.Task
	for _, task := range s.tasks {
		if task.UserID == userID && task.IsOpen() {
			out = append(out, task)
		}
	}
	return out, nil
}

func (s *stubTaskRepo) GetByIDs(_ context.Context, userID uuid.UUID, ids []uuid.UUID) ([]*models.Task, error) {
	var out []*models.Task
	for _, id := range ids {
		if task, ok := s.tasks[id]; ok && task.UserID == userID {
			out = append(out, task)
		}
	}
	return out, nil
}

func (s *stubTaskRepo) GetNextAction(_ context.Context, _ uuid.UUID) (*models.Task, error) {
	return s.nextAction, nil
}

func (s *stubTaskRepo) Update(_ context.Context, task *models.Task) error {
	if _, ok := s.tasks[task.ID]; !ok {
		return errStubNotFound
	}
	s.tasks[task.ID] = task
	return nil
}

func (s *stubTaskRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(s.tasks, id)
	return nil
}

type stubBlockRepo struct {
	blocks        map[uuid.UUID]*models.TimeBlock
	current       *models.TimeBlock
	batch         []*models.TimeBlock
	deletedCutoff time.Time
}

func newStubBlockRepo(blocks ...*models.TimeBlock) *stubBlockRepo {
	repo := &stubBlockRepo{blocks: make(map[uuid.UUID]*models.TimeBlock)}
	for _, block := range blocks {
		repo.blocks[block.ID] = block
	}
	return repo
}

func (s *stubBlockRepo) Create(_ context.Context, block *models.TimeBlock) error {
	s.blocks[block.ID] = block
	return nil
}

func (s *stubBlockRepo) CreateBatch(_ context.Context, blocks []*models.TimeBlock) error {
	s.batch = blocks
	for _, block := range blocks {
		s.blocks[block.ID] = block
	}
	return nil
}

func (s *stubBlockRepo) GetByID(_ context.Context, id uuid.UUID) (*models.TimeBlock, error) {
	block, ok := s.blocks[id]
	if !ok {
		return nil, errStubNotFound
	}
	return block, nil
}

func (s *stubBlockRepo) GetByUserInRange(_ context.Context, userID uuid.UUID, from, to time.Time) ([]*models.TimeBlock, error) {
	var out []*models.TimeBlock
	for _, block := range s.blocks {
		if block.UserID == userID && !block.StartTime.Before(from) && block.StartTime.Before(to) {
			out = append(out, block)
		}
	}
	return out, nil
}

func (s *stubBlockRepo) GetCurrent(_ context.Context, _ uuid.UUID, _ time.Time) (*models.TimeBlock, error) {
	return s.current, nil
}

func (s *stubBlockRepo) DeleteFutureByUser(_ context.Context, userID uuid.UUID, cutoff time.Time) (int64, error) {
	s.deletedCutoff = cutoff
	var n int64
	for id, block := range s.blocks {
		if block.UserID == userID && !block.StartTime.Before(cutoff) && !block.IsCompleted {
			delete(s.blocks, id)
			n++
		}
	}
	return n, nil
}

func (s *stubBlockRepo) SetCompleted(_ context.Context, id uuid.UUID, completed bool) (*models.TimeBlock, error) {
	block, ok := s.blocks[id]
	if !ok {
		return nil, errStubNotFound
	}
	block.IsCompleted = completed
	return block, nil
}

type stubPrefRepo struct {
	saved *models.PlanPreference
}

func (s *stubPrefRepo) Upsert(_ context.Context, pref *models.PlanPreference) error {
	s.saved = pref
	return nil
}

func (s *stubPrefRepo) GetByUserID(_ context.Context, _ uuid.UUID) (*models.PlanPreference, error) {
	if s.saved == nil {
		return nil, errStubNotFound
	}
	return s.saved, nil
}

func (s *stubPrefRepo) GetAutoPlanUsers(_ context.Context) ([]*models.PlanPreference, error) {
	if s.saved != nil && s.saved.AutoPlan {
		return []*models.PlanPreference{s.saved}, nil
	}
	return nil, nil
}

type stubJobQueue struct {
	enqueued   []*queue.Job
	enqueueErr error
}

func (s *stubJobQueue) Enqueue(_ context.Context, job *queue.Job) error {
	if s.enqueueErr != nil {
		return s.enqueueErr
	}
	s.enqueued = append(s.enqueued, job)
	return nil
}

func (s *stubJobQueue) Dequeue(_ context.Context) (*queue.Message, error) {
	return nil, nil
}

func (s *stubJobQueue) Consume(_ context.Context, _ int) (<-chan *queue.Message, <-chan error, error) {
	return nil, nil, errors.New("not implemented")
}

func (s *stubJobQueue) Close() error {
	return nil
}

func (s *stubJobQueue) HealthCheck(_ context.Context) error {
	return nil
}

func testUser() *models.User {
	return &models.User{ID: uuid.New(), Email: "student@example.com"}
}

func authedRequest(method, target string, body io.Reader, user *models.User) *http.Request {
	r := httptest.NewRequest(method, target, body)
	if user != nil {
		r = r.WithContext(request.WithUser(r.Context(), user))
	}
	return r
}
