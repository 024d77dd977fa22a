package models

import (
	"time"

	"github.com/google/uuid"
)

// BlockType classifies a scheduled time block
type BlockType string

const (
	BlockTypeStudy BlockType = "study"
	BlockTypeBreak BlockType = "break"
	BlockTypeExam  BlockType = "exam"
	BlockTypeClass BlockType = "class"
	BlockTypeOther BlockType = "other"
)

// TimeBlock is a concrete scheduled interval produced for a task
type TimeBlock struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	TaskID      *uuid.UUID `json:"task_id,omitempty"`
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	StartTime   time.Time  `json:"start_time"`
	EndTime     time.Time  `json:"end_time"`
	BlockType   BlockType  `json:"block_type"`
	IsCompleted bool       `json:"is_completed"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Duration returns the length of the block.
func (b *TimeBlock) Duration() time.Duration {
	return b.EndTime.Sub(b.StartTime)
}

// Overlaps reports whether two blocks intersect in time.
func (b *TimeBlock) Overlaps(other *TimeBlock) bool {
	return b.StartTime.Before(other.EndTime) && other.StartTime.Before(b.EndTime)
}
