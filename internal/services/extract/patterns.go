package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/studyflow/studyflow-api/internal/models"
)

// Course documents mix two date styles: lab/tutorial sheets announce ISO
// dates ("TP 1 - Due: 2025-01-15", "Examen le 2025-01-20") while syllabi
// list French prose dates ("- 20 novembre 2025 : Examen partiel"). Both
// are handled here.

var frenchMonths = map[string]time.Month{
	"janvier": time.January, "février": time.February, "fevrier": time.February,
	"mars": time.March, "avril": time.April, "mai": time.May, "juin": time.June,
	"juillet": time.July, "août": time.August, "aout": time.August,
	"septembre": time.September, "octobre": time.October,
	"novembre": time.November, "décembre": time.December, "decembre": time.December,
}

var (
	labPattern      = regexp.MustCompile(`(?i)(TP|TD)\s+(\d+)\s*[-:]?\s*(?:Due|pour le|deadline)?\s*:?\s*(\d{4}-\d{2}-\d{2})`)
	examPattern     = regexp.MustCompile(`(?i)(Exam|Examen)\s*(?:on|le|-)?\s*:?\s*(?:Date)?\s*:?\s*(\d{4}-\d{2}-\d{2})`)
	homeworkPattern = regexp.MustCompile(`(?i)(Homework|Devoir)\s*(\d+)?\s*[-:]?\s*(?:Due|pour le)?\s*:?\s*(\d{4}-\d{2}-\d{2})`)
	frenchPattern   = regexp.MustCompile(`(?i)[-•*]\s*(\d{1,2})(?:er)?\s+(janvier|février|fevrier|mars|avril|mai|juin|juillet|août|aout|septembre|octobre|novembre|décembre|decembre)\s+(\d{4})\s*[:：]\s*(.+)`)
)

// defaultDueHour anchors prose dates that carry no time of day.
const defaultDueHour = 9

// ParseTasks scans raw document text for deadline announcements and
// returns one task per recognized line. Lines with impossible dates
// (e.g. 31 février) are skipped rather than failing the whole parse.
func ParseTasks(text string, userID uuid.UUID) []*models.Task {
	var tasks []*models.Task

	for _, m := range labPattern.FindAllStringSubmatch(text, -1) {
		due, err := time.Parse("2006-01-02", m[3])
		if err != nil {
			continue
		}
		kind := strings.ToUpper(m[1])
		priority := models.TaskPriorityHigh
		if kind == "TD" {
			priority = models.TaskPriorityMedium
		}
		tasks = append(tasks, newExtractedTask(userID, fmt.Sprintf("%s %s", kind, m[2]), models.TaskTypeHomework, priority, due))
	}

	for _, m := range examPattern.FindAllStringSubmatch(text, -1) {
		due, err := time.Parse("2006-01-02", m[2])
		if err != nil {
			continue
		}
		tasks = append(tasks, newExtractedTask(userID, "Exam", models.TaskTypeExam, models.TaskPriorityUrgent, due))
	}

	for _, m := range homeworkPattern.FindAllStringSubmatch(text, -1) {
		due, err := time.Parse("2006-01-02", m[3])
		if err != nil {
			continue
		}
		title := m[1]
		if m[2] != "" {
			title = fmt.Sprintf("%s %s", m[1], m[2])
		}
		tasks = append(tasks, newExtractedTask(userID, title, models.TaskTypeHomework, models.TaskPriorityMedium, due))
	}

	for _, line := range strings.Split(text, "\n") {
		m := frenchPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		day, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		month, ok := frenchMonths[strings.ToLower(m[2])]
		if !ok {
			continue
		}
		year, err := strconv.Atoi(m[3])
		if err != nil {
			continue
		}
		due := time.Date(year, month, day, defaultDueHour, 0, 0, 0, time.UTC)
		if due.Day() != day || due.Month() != month {
			continue
		}

		description := strings.TrimSpace(m[4])
		taskType, priority := classifyDescription(description)
		tasks = append(tasks, newExtractedTask(userID, description, taskType, priority, due))
	}

	return tasks
}

func classifyDescription(description string) (models.TaskType, models.TaskPriority) {
	lower := strings.ToLower(description)
	switch {
	case strings.Contains(lower, "examen"), strings.Contains(lower, "exam"):
		return models.TaskTypeExam, models.TaskPriorityUrgent
	case strings.Contains(lower, "projet"), strings.Contains(lower, "project"):
		return models.TaskTypeProject, models.TaskPriorityHigh
	case strings.Contains(lower, "remise"), strings.Contains(lower, "rendu"), strings.Contains(lower, "présentation"):
		return models.TaskTypeProject, models.TaskPriorityHigh
	default:
		return models.TaskTypeOther, models.TaskPriorityMedium
	}
}

func newExtractedTask(userID uuid.UUID, title string, taskType models.TaskType, priority models.TaskPriority, due time.Time) *models.Task {
	duration := models.DefaultEstimatedDuration
	return &models.Task{
		ID:                uuid.New(),
		UserID:            userID,
		Title:             title,
		Type:              taskType,
		Priority:          priority,
		Status:            models.TaskStatusTodo,
		DueDate:           &due,
		EstimatedDuration: &duration,
	}
}
