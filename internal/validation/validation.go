package validation

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/studyflow/studyflow-api/internal/models"
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()

	if err := Validate.RegisterValidation("task_type", validateTaskType); err != nil {
		panic(fmt.Sprintf("failed to register task_type validator: %v", err))
	}
	if err := Validate.RegisterValidation("task_priority", validateTaskPriority); err != nil {
		panic(fmt.Sprintf("failed to register task_priority validator: %v", err))
	}
	if err := Validate.RegisterValidation("task_status", validateTaskStatus); err != nil {
		panic(fmt.Sprintf("failed to register task_status validator: %v", err))
	}
}

func validateTaskType(fl validator.FieldLevel) bool {
	return ValidateTaskType(fl.Field().String()) == nil
}

func validateTaskPriority(fl validator.FieldLevel) bool {
	return ValidateTaskPriority(fl.Field().String()) == nil
}

func validateTaskStatus(fl validator.FieldLevel) bool {
	return ValidateTaskStatus(fl.Field().String()) == nil
}

// ValidateTaskType validates a TaskType string value
func ValidateTaskType(value string) error {
	switch models.TaskType(value) {
	case models.TaskTypeExam, models.TaskTypeProject, models.TaskTypeHomework,
		models.TaskTypeReading, models.TaskTypeOther:
		return nil
	default:
		return fmt.Errorf("invalid task_type: %s (must be 'exam', 'project', 'homework', 'reading', or 'other')", value)
	}
}

// ValidateTaskPriority validates a TaskPriority string value
func ValidateTaskPriority(value string) error {
	switch models.TaskPriority(value) {
	case models.TaskPriorityLow, models.TaskPriorityMedium,
		models.TaskPriorityHigh, models.TaskPriorityUrgent:
		return nil
	default:
		return fmt.Errorf("invalid priority: %s (must be 'low', 'medium', 'high', or 'urgent')", value)
	}
}

// ValidateTaskStatus validates a TaskStatus string value
func ValidateTaskStatus(value string) error {
	switch models.TaskStatus(value) {
	case models.TaskStatusTodo, models.TaskStatusInProgress,
		models.TaskStatusCompleted, models.TaskStatusCancelled:
		return nil
	default:
		return fmt.Errorf("invalid status: %s (must be 'todo', 'in_progress', 'completed', or 'cancelled')", value)
	}
}

// ValidatePlanRequest checks a plan request at the boundary. The planner
// itself assumes validated input, so every malformed window or cap has to be
// rejected here before the engine runs.
func ValidatePlanRequest(req *models.PlanRequest) error {
	if err := Validate.Struct(req); err != nil {
		return err
	}
	return ValidateAvailability(req.Availability)
}

// ValidateAvailability checks that every window is well-formed: a non-empty
// recognized weekday set and an end time strictly after the start time.
func ValidateAvailability(windows []models.AvailabilityWindow) error {
	if len(windows) == 0 {
		return fmt.Errorf("at least one availability window is required")
	}
	for i, w := range windows {
		if w.End.MinutesFromMidnight() <= w.Start.MinutesFromMidnight() {
			return fmt.Errorf("availability window %d: end time %s must be after start time %s", i, w.End, w.Start)
		}
		if len(w.Days) == 0 {
			return fmt.Errorf("availability window %d: at least one weekday is required", i)
		}
		for _, day := range w.Days {
			if !models.IsWeekdayName(day) {
				return fmt.Errorf("availability window %d: unknown weekday %q (use lowercase names like 'monday')", i, day)
			}
		}
	}
	return nil
}

// SanitizeText sanitizes text input by trimming whitespace and removing control characters
func SanitizeText(text string) string {
	text = strings.TrimSpace(text)

	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}

	return sanitized.String()
}
