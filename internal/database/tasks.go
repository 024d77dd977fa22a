package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/studyflow/studyflow-api/internal/models"
)

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = errors.New("not found")

// TaskRepository handles task database operations
type TaskRepository struct {
	db *DB
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *DB) *TaskRepository {
	return &TaskRepository{db: db}
}

const taskColumns = `id, user_id, course_id, title, description, task_type, priority, status,
	due_date, estimated_duration, actual_duration, completed_at, created_at, updated_at`

// Create creates a new task
func (r *TaskRepository) Create(ctx context.Context, task *models.Task) error {
	query := `
		INSERT INTO tasks (id, user_id, course_id, title, description, task_type, priority, status,
			due_date, estimated_duration, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at
	`

	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		task.ID,
		task.UserID,
		task.CourseID,
		task.Title,
		task.Description,
		task.Type,
		task.Priority,
		task.Status,
		task.DueDate,
		task.EstimatedDuration,
		now,
		now,
	).Scan(&task.CreatedAt, &task.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	return nil
}

// GetByID retrieves a task by ID
func (r *TaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`

	task, err := scanTask(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return task, nil
}

// GetByUserID retrieves all tasks for a user, optionally filtered by status
func (r *TaskRepository) GetByUserID(ctx context.Context, userID uuid.UUID, status *models.TaskStatus) ([]*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = $1`
	args := []any{userID}

	if status != nil {
		query += ` AND status = $2`
		args = append(args, string(*status))
	}

	query += ` ORDER BY due_date ASC NULLS LAST, created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	return collectTasks(rows)
}

// GetOpenByUserID retrieves tasks that still need scheduling (not completed, not cancelled).
func (r *TaskRepository) GetOpenByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks
		WHERE user_id = $1 AND status NOT IN ('completed', 'cancelled')
		ORDER BY due_date ASC NULLS LAST, created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query open tasks: %w", err)
	}
	defer rows.Close()

	return collectTasks(rows)
}

// GetByIDs retrieves tasks matching the given ids, ordered by priority then due date.
func (r *TaskRepository) GetByIDs(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]*models.Task, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `SELECT ` + taskColumns + ` FROM tasks
		WHERE user_id = $1 AND id = ANY($2::uuid[])
		ORDER BY
			CASE priority
				WHEN 'urgent' THEN 4
				WHEN 'high' THEN 3
				WHEN 'medium' THEN 2
				WHEN 'low' THEN 1
				ELSE 0
			END DESC,
			due_date ASC NULLS LAST`

	idStrings := make([]string, len(ids))
	for i, id := range ids {
		idStrings[i] = id.String()
	}

	rows, err := r.db.QueryContext(ctx, query, userID, pq.Array(idStrings))
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks by ids: %w", err)
	}
	defer rows.Close()

	return collectTasks(rows)
}

// GetNextAction returns the highest-priority open task for a user, or nil.
func (r *TaskRepository) GetNextAction(ctx context.Context, userID uuid.UUID) (*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks
		WHERE user_id = $1 AND status NOT IN ('completed', 'cancelled')
		ORDER BY
			CASE priority
				WHEN 'urgent' THEN 4
				WHEN 'high' THEN 3
				WHEN 'medium' THEN 2
				WHEN 'low' THEN 1
				ELSE 0
			END DESC,
			due_date ASC NULLS LAST
		LIMIT 1`

	task, err := scanTask(r.db.QueryRowContext(ctx, query, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get next action: %w", err)
	}
	return task, nil
}

// Update updates an existing task
func (r *TaskRepository) Update(ctx context.Context, task *models.Task) error {
	query := `
		UPDATE tasks
		SET title = $2, description = $3, task_type = $4, priority = $5, status = $6,
			due_date = $7, estimated_duration = $8, actual_duration = $9, completed_at = $10,
			updated_at = $11
		WHERE id = $1
		RETURNING updated_at
	`

	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		task.ID,
		task.Title,
		task.Description,
		task.Type,
		task.Priority,
		task.Status,
		task.DueDate,
		task.EstimatedDuration,
		task.ActualDuration,
		task.CompletedAt,
		now,
	).Scan(&task.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("task %s: %w", task.ID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	return nil
}

// Delete deletes a task by ID
func (r *TaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("task %s: %w", id, ErrNotFound)
	}

	return nil
}

func scanTask(row *sql.Row) (*models.Task, error) {
	task := &models.Task{}
	var courseID sql.NullString
	var dueDate, completedAt sql.NullTime
	var estimated, actual sql.NullInt64

	err := row.Scan(
		&task.ID,
		&task.UserID,
		&courseID,
		&task.Title,
		&task.Description,
		&task.Type,
		&task.Priority,
		&task.Status,
		&dueDate,
		&estimated,
		&actual,
		&completedAt,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	applyTaskNullables(task, courseID, dueDate, completedAt, estimated, actual)
	return task, nil
}

func collectTasks(rows *sql.Rows) ([]*models.Task, error) {
	var tasks []*models.Task
	for rows.Next() {
		task := &models.Task{}
		var courseID sql.NullString
		var dueDate, completedAt sql.NullTime
		var estimated, actual sql.NullInt64

		err := rows.Scan(
			&task.ID,
			&task.UserID,
			&courseID,
			&task.Title,
			&task.Description,
			&task.Type,
			&task.Priority,
			&task.Status,
			&dueDate,
			&estimated,
			&actual,
			&completedAt,
			&task.CreatedAt,
			&task.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		applyTaskNullables(task, courseID, dueDate, completedAt, estimated, actual)
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tasks: %w", err)
	}

	return tasks, nil
}

func applyTaskNullables(task *models.Task, courseID sql.NullString, dueDate, completedAt sql.NullTime, estimated, actual sql.NullInt64) {
	if courseID.Valid {
		if id, err := uuid.Parse(courseID.String); err == nil {
			task.CourseID = &id
		}
	}
	if dueDate.Valid {
		task.DueDate = &dueDate.Time
	}
	if completedAt.Valid {
		task.CompletedAt = &completedAt.Time
	}
	if estimated.Valid {
		v := int(estimated.Int64)
		task.EstimatedDuration = &v
	}
	if actual.Valid {
		v := int(actual.Int64)
		task.ActualDuration = &v
	}
}
