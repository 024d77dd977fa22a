package planner

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/studyflow/studyflow-api/internal/models"
)

func makeTask(title string, priority models.TaskPriority, taskType models.TaskType) *models.Task {
	return &models.Task{
		ID:       uuid.New(),
		UserID:   uuid.New(),
		Title:    title,
		Type:     taskType,
		Priority: priority,
		Status:   models.TaskStatusTodo,
	}
}

func withDue(t *models.Task, due time.Time) *models.Task {
	t.DueDate = &due
	return t
}

func titles(tasks []*models.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Title
	}
	return out
}

func TestOrderTasks(t *testing.T) {
	t.Parallel()

	due := func(day int) time.Time {
		return time.Date(2025, time.March, day, 9, 0, 0, 0, time.UTC)
	}

	tests := []struct {
		name  string
		tasks []*models.Task
		want  []string
	}{
		{
			name: "priority dominates type and due date",
			tasks: []*models.Task{
				withDue(makeTask("reading", models.TaskPriorityLow, models.TaskTypeReading), due(1)),
				makeTask("urgent other", models.TaskPriorityUrgent, models.TaskTypeOther),
				withDue(makeTask("high exam", models.TaskPriorityHigh, models.TaskTypeExam), due(2)),
			},
			want: []string{"urgent other", "high exam", "reading"},
		},
		{
			name: "type breaks priority ties",
			tasks: []*models.Task{
				makeTask("homework", models.TaskPriorityHigh, models.TaskTypeHomework),
				makeTask("exam", models.TaskPriorityHigh, models.TaskTypeExam),
				makeTask("project", models.TaskPriorityHigh, models.TaskTypeProject),
			},
			want: []string{"exam", "project", "homework"},
		},
		{
			name: "earlier due date wins within priority and type",
			tasks: []*models.Task{
				withDue(makeTask("later", models.TaskPriorityMedium, models.TaskTypeHomework), due(20)),
				withDue(makeTask("sooner", models.TaskPriorityMedium, models.TaskTypeHomework), due(5)),
			},
			want: []string{"sooner", "later"},
		},
		{
			name: "missing due date sorts after all dated tasks",
			tasks: []*models.Task{
				makeTask("undated", models.TaskPriorityMedium, models.TaskTypeHomework),
				withDue(makeTask("dated", models.TaskPriorityMedium, models.TaskTypeHomework), due(28)),
			},
			want: []string{"dated", "undated"},
		},
		{
			name: "unknown priority sorts last in its tier",
			tasks: []*models.Task{
				makeTask("mystery", models.TaskPriority("someday"), models.TaskTypeHomework),
				makeTask("low", models.TaskPriorityLow, models.TaskTypeHomework),
			},
			want: []string{"low", "mystery"},
		},
		{
			name: "fully tied tasks keep input order",
			tasks: []*models.Task{
				makeTask("first", models.TaskPriorityMedium, models.TaskTypeReading),
				makeTask("second", models.TaskPriorityMedium, models.TaskTypeReading),
				makeTask("third", models.TaskPriorityMedium, models.TaskTypeReading),
			},
			want: []string{"first", "second", "third"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := titles(OrderTasks(tt.tasks))
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d tasks, got %d (%v)", len(tt.want), len(got), got)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("position %d: expected %q, got %q (full order: %v)", i, tt.want[i], got[i], got)
				}
			}
		})
	}
}

func TestOrderTasksFiltersClosedTasks(t *testing.T) {
	t.Parallel()

	completed := makeTask("done", models.TaskPriorityUrgent, models.TaskTypeExam)
	completed.Status = models.TaskStatusCompleted
	cancelled := makeTask("dropped", models.TaskPriorityUrgent, models.TaskTypeExam)
	cancelled.Status = models.TaskStatusCancelled
	open := makeTask("open", models.TaskPriorityLow, models.TaskTypeOther)

	got := OrderTasks([]*models.Task{completed, cancelled, open})
	if len(got) != 1 || got[0].Title != "open" {
		t.Errorf("expected only the open task, got %v", titles(got))
	}
}

func TestOrderTasksIsDeterministic(t *testing.T) {
	t.Parallel()

	tasks := []*models.Task{
		makeTask("a", models.TaskPriorityHigh, models.TaskTypeProject),
		makeTask("b", models.TaskPriorityHigh, models.TaskTypeProject),
		withDue(makeTask("c", models.TaskPriorityUrgent, models.TaskTypeExam), time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)),
		makeTask("d", models.TaskPriorityLow, models.TaskTypeReading),
	}

	first := titles(OrderTasks(tasks))
	second := titles(OrderTasks(tasks))
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("ordering not deterministic: %v vs %v", first, second)
		}
	}
}

func TestOrderTasksDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	tasks := []*models.Task{
		makeTask("z-low", models.TaskPriorityLow, models.TaskTypeOther),
		makeTask("a-urgent", models.TaskPriorityUrgent, models.TaskTypeExam),
	}

	OrderTasks(tasks)
	if tasks[0].Title != "z-low" || tasks[1].Title != "a-urgent" {
		t.Errorf("input slice was reordered: %v", titles(tasks))
	}
}
