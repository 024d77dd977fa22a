package extract

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/studyflow/studyflow-api/internal/models"
)

func TestParseTasks_LabSheets(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	text := "TP 1 - Due: 2025-01-15\nTD 2 pour le 2025-02-01\n"

	tasks := ParseTasks(text, userID)
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(tasks))
	}

	tp := tasks[0]
	if tp.Title != "TP 1" {
		t.Errorf("title = %q, want %q", tp.Title, "TP 1")
	}
	if tp.Type != models.TaskTypeHomework {
		t.Errorf("type = %q, want homework", tp.Type)
	}
	if tp.Priority != models.TaskPriorityHigh {
		t.Errorf("TP priority = %q, want high", tp.Priority)
	}
	wantDue := time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC)
	if tp.DueDate == nil || !tp.DueDate.Equal(wantDue) {
		t.Errorf("due date = %v, want %v", tp.DueDate, wantDue)
	}
	if tp.UserID != userID {
		t.Errorf("user id = %v, want %v", tp.UserID, userID)
	}

	td := tasks[1]
	if td.Title != "TD 2" {
		t.Errorf("title = %q, want %q", td.Title, "TD 2")
	}
	if td.Priority != models.TaskPriorityMedium {
		t.Errorf("TD priority = %q, want medium", td.Priority)
	}
}

func TestParseTasks_ExamAnnouncements(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
	}{
		{"english", "Exam - Date: 2025-01-20"},
		{"french", "Examen le 2025-01-20"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tasks := ParseTasks(tt.text, uuid.New())
			if len(tasks) != 1 {
				t.Fatalf("expected 1 task, got %d", len(tasks))
			}
			if tasks[0].Type != models.TaskTypeExam {
				t.Errorf("type = %q, want exam", tasks[0].Type)
			}
			if tasks[0].Priority != models.TaskPriorityUrgent {
				t.Errorf("priority = %q, want urgent", tasks[0].Priority)
			}
		})
	}
}

func TestParseTasks_FrenchProseDates(t *testing.T) {
	t.Parallel()

	text := "Calendrier du cours:\n" +
		"- 20 novembre 2025 : Examen partiel\n" +
		"- 1er décembre 2025 : Remise du projet\n" +
		"- 10 decembre 2025 : Lecture chapitre 5\n"

	tasks := ParseTasks(text, uuid.New())
	if len(tasks) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(tasks))
	}

	exam := tasks[0]
	if exam.Title != "Examen partiel" {
		t.Errorf("title = %q, want %q", exam.Title, "Examen partiel")
	}
	if exam.Type != models.TaskTypeExam || exam.Priority != models.TaskPriorityUrgent {
		t.Errorf("exam classified as %s/%s", exam.Type, exam.Priority)
	}
	wantDue := time.Date(2025, time.November, 20, 9, 0, 0, 0, time.UTC)
	if exam.DueDate == nil || !exam.DueDate.Equal(wantDue) {
		t.Errorf("due date = %v, want %v", exam.DueDate, wantDue)
	}

	projet := tasks[1]
	if projet.Type != models.TaskTypeProject || projet.Priority != models.TaskPriorityHigh {
		t.Errorf("remise classified as %s/%s, want project/high", projet.Type, projet.Priority)
	}
	if projet.DueDate == nil || projet.DueDate.Day() != 1 || projet.DueDate.Month() != time.December {
		t.Errorf("1er décembre parsed as %v", projet.DueDate)
	}

	other := tasks[2]
	if other.Type != models.TaskTypeOther || other.Priority != models.TaskPriorityMedium {
		t.Errorf("unclassified line got %s/%s, want other/medium", other.Type, other.Priority)
	}
}

func TestParseTasks_SkipsInvalidDates(t *testing.T) {
	t.Parallel()

	text := "- 31 février 2025 : Examen impossible\nTP 1 - Due: 2025-13-40\n"

	tasks := ParseTasks(text, uuid.New())
	if len(tasks) != 0 {
		t.Fatalf("expected invalid dates to be skipped, got %d tasks", len(tasks))
	}
}

func TestParseTasks_EmptyText(t *testing.T) {
	t.Parallel()

	if tasks := ParseTasks("", uuid.New()); len(tasks) != 0 {
		t.Errorf("expected no tasks from empty text, got %d", len(tasks))
	}
}

func TestParseTasks_DefaultDuration(t *testing.T) {
	t.Parallel()

	tasks := ParseTasks("TP 3 - Due: 2025-03-01", uuid.New())
	if len(tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(tasks))
	}
	if tasks[0].EstimatedDuration == nil || *tasks[0].EstimatedDuration != models.DefaultEstimatedDuration {
		t.Errorf("estimated duration = %v, want %d", tasks[0].EstimatedDuration, models.DefaultEstimatedDuration)
	}
	if tasks[0].Status != models.TaskStatusTodo {
		t.Errorf("status = %q, want todo", tasks[0].Status)
	}
}
