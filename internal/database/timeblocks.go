package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/studyflow/studyflow-api/internal/models"
)

// TimeBlockRepository handles time block database operations
type TimeBlockRepository struct {
	db *DB
}

// NewTimeBlockRepository creates a new time block repository
func NewTimeBlockRepository(db *DB) *TimeBlockRepository {
	return &TimeBlockRepository{db: db}
}

const blockColumns = `id, user_id, task_id, title, description, start_time, end_time,
	block_type, is_completed, created_at, updated_at`

// Create creates a new time block
func (r *TimeBlockRepository) Create(ctx context.Context, block *models.TimeBlock) error {
	query := `
		INSERT INTO time_blocks (id, user_id, task_id, title, description, start_time, end_time,
			block_type, is_completed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at
	`

	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		block.ID,
		block.UserID,
		block.TaskID,
		block.Title,
		block.Description,
		block.StartTime,
		block.EndTime,
		block.BlockType,
		block.IsCompleted,
		now,
		now,
	).Scan(&block.CreatedAt, &block.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create time block: %w", err)
	}

	return nil
}

// CreateBatch inserts the given blocks inside a single transaction so a
// planning run is persisted atomically.
func (r *TimeBlockRepository) CreateBatch(ctx context.Context, blocks []*models.TimeBlock) error {
	if len(blocks) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		INSERT INTO time_blocks (id, user_id, task_id, title, description, start_time, end_time,
			block_type, is_completed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	now := time.Now()
	for _, block := range blocks {
		if _, err := tx.ExecContext(ctx, query,
			block.ID,
			block.UserID,
			block.TaskID,
			block.Title,
			block.Description,
			block.StartTime,
			block.EndTime,
			block.BlockType,
			block.IsCompleted,
			now,
			now,
		); err != nil {
			return fmt.Errorf("failed to insert time block %s: %w", block.ID, err)
		}
		block.CreatedAt = now
		block.UpdatedAt = now
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit time blocks: %w", err)
	}

	return nil
}

// GetByID retrieves a time block by ID
func (r *TimeBlockRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.TimeBlock, error) {
	query := `SELECT ` + blockColumns + ` FROM time_blocks WHERE id = $1`

	block, err := scanBlock(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("time block %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get time block: %w", err)
	}
	return block, nil
}

// GetByUserInRange retrieves a user's blocks whose start time falls in [from, to).
func (r *TimeBlockRepository) GetByUserInRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*models.TimeBlock, error) {
	query := `SELECT ` + blockColumns + ` FROM time_blocks
		WHERE user_id = $1 AND start_time >= $2 AND start_time < $3
		ORDER BY start_time ASC`

	rows, err := r.db.QueryContext(ctx, query, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query time blocks: %w", err)
	}
	defer rows.Close()

	return collectBlocks(rows)
}

// GetCurrent returns the block covering the given instant for a user, or nil.
func (r *TimeBlockRepository) GetCurrent(ctx context.Context, userID uuid.UUID, at time.Time) (*models.TimeBlock, error) {
	query := `SELECT ` + blockColumns + ` FROM time_blocks
		WHERE user_id = $1 AND start_time <= $2 AND end_time > $2 AND is_completed = false
		ORDER BY start_time ASC
		LIMIT 1`

	block, err := scanBlock(r.db.QueryRowContext(ctx, query, userID, at))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get current time block: %w", err)
	}
	return block, nil
}

// DeleteFutureByUser removes a user's uncompleted blocks starting at or after
// the cutoff. Used to replace the upcoming schedule on a re-plan without
// touching past or completed blocks.
func (r *TimeBlockRepository) DeleteFutureByUser(ctx context.Context, userID uuid.UUID, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM time_blocks
		WHERE user_id = $1 AND start_time >= $2 AND is_completed = false
	`, userID, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete future time blocks: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected, nil
}

// SetCompleted marks a block completed (or not) and returns the updated row.
func (r *TimeBlockRepository) SetCompleted(ctx context.Context, id uuid.UUID, completed bool) (*models.TimeBlock, error) {
	query := `
		UPDATE time_blocks
		SET is_completed = $2, updated_at = $3
		WHERE id = $1
		RETURNING ` + blockColumns

	block, err := scanBlock(r.db.QueryRowContext(ctx, query, id, completed, time.Now()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("time block %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update time block: %w", err)
	}
	return block, nil
}

func scanBlock(row *sql.Row) (*models.TimeBlock, error) {
	block := &models.TimeBlock{}
	var taskID sql.NullString

	err := row.Scan(
		&block.ID,
		&block.UserID,
		&taskID,
		&block.Title,
		&block.Description,
		&block.StartTime,
		&block.EndTime,
		&block.BlockType,
		&block.IsCompleted,
		&block.CreatedAt,
		&block.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	applyBlockNullables(block, taskID)
	return block, nil
}

func collectBlocks(rows *sql.Rows) ([]*models.TimeBlock, error) {
	var blocks []*models.TimeBlock
	for rows.Next() {
		block := &models.TimeBlock{}
		var taskID sql.NullString

		err := rows.Scan(
			&block.ID,
			&block.UserID,
			&taskID,
			&block.Title,
			&block.Description,
			&block.StartTime,
			&block.EndTime,
			&block.BlockType,
			&block.IsCompleted,
			&block.CreatedAt,
			&block.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan time block: %w", err)
		}
		applyBlockNullables(block, taskID)
		blocks = append(blocks, block)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating time blocks: %w", err)
	}

	return blocks, nil
}

func applyBlockNullables(block *models.TimeBlock, taskID sql.NullString) {
	if taskID.Valid {
		if id, err := uuid.Parse(taskID.String); err == nil {
			block.TaskID = &id
		}
	}
}
