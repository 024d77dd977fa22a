package models

import (
	"time"

	"github.com/google/uuid"
)

// TaskType classifies an academic task. Exams outrank projects, projects
// outrank homework, and so on when the planner breaks priority ties.
type TaskType string

const (
	TaskTypeExam     TaskType = "exam"
	TaskTypeProject  TaskType = "project"
	TaskTypeHomework TaskType = "homework"
	TaskTypeReading  TaskType = "reading"
	TaskTypeOther    TaskType = "other"
)

// TaskPriority represents the urgency of a task
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
	TaskPriorityUrgent TaskPriority = "urgent"
)

// TaskStatus represents the lifecycle state of a task
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusCancelled  TaskStatus = "cancelled"
)

// DefaultEstimatedDuration is assumed when a task has no duration estimate (minutes).
const DefaultEstimatedDuration = 120

// Task represents an academic task (assignment, exam, reading, ...)
type Task struct {
	ID                uuid.UUID    `json:"id"`
	UserID            uuid.UUID    `json:"user_id"`
	CourseID          *uuid.UUID   `json:"course_id,omitempty"`
	Title             string       `json:"title"`
	Description       *string      `json:"description,omitempty"`
	Type              TaskType     `json:"task_type"`
	Priority          TaskPriority `json:"priority"`
	Status            TaskStatus   `json:"status"`
	DueDate           *time.Time   `json:"due_date,omitempty"`
	EstimatedDuration *int         `json:"estimated_duration,omitempty"` // minutes
	ActualDuration    *int         `json:"actual_duration,omitempty"`    // minutes
	CompletedAt       *time.Time   `json:"completed_at,omitempty"`
	CreatedAt         time.Time    `json:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at"`
}

// DurationMinutes returns the estimated duration, falling back to the default.
func (t *Task) DurationMinutes() int {
	if t.EstimatedDuration != nil && *t.EstimatedDuration > 0 {
		return *t.EstimatedDuration
	}
	return DefaultEstimatedDuration
}

// IsOpen reports whether the task still needs to be scheduled.
func (t *Task) IsOpen() bool {
	return t.Status != TaskStatusCompleted && t.Status != TaskStatusCancelled
}
