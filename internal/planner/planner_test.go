package planner

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/studyflow/studyflow-api/internal/models"
)

// fixedNow is a Friday; planning therefore starts Saturday 2025-01-04 and the
// first Mon-Fri window day inside the horizon is Monday 2025-01-06.
var fixedNow = time.Date(2025, time.January, 3, 15, 30, 0, 0, time.UTC)

func testPlanner() *Planner {
	return &Planner{
		HorizonDays: DefaultHorizonDays,
		Now:         func() time.Time { return fixedNow },
	}
}

func weekdayWindow(start, end string) models.AvailabilityWindow {
	s, err := models.ParseTimeOfDay(start)
	if err != nil {
		panic(err)
	}
	e, err := models.ParseTimeOfDay(end)
	if err != nil {
		panic(err)
	}
	return models.AvailabilityWindow{
		Start: s,
		End:   e,
		Days:  []string{"monday", "tuesday", "wednesday", "thursday", "friday"},
	}
}

func durTask(title string, priority models.TaskPriority, taskType models.TaskType, minutes int) *models.Task {
	task := makeTask(title, priority, taskType)
	task.EstimatedDuration = &minutes
	return task
}

func TestPlanConcreteScenario(t *testing.T) {
	t.Parallel()

	// A 180-minute exam cannot fit the 120-minute window on any day and is
	// dropped; the 60-minute homework lands at 09:00 on the first weekday.
	req := &models.PlanRequest{
		UserID: uuid.New(),
		Tasks: []*models.Task{
			durTask("exam", models.TaskPriorityUrgent, models.TaskTypeExam, 180),
			durTask("homework", models.TaskPriorityMedium, models.TaskTypeHomework, 60),
		},
		Availability:     []models.AvailabilityWindow{weekdayWindow("09:00", "11:00")},
		StudyHoursPerDay: 2,
	}

	blocks := testPlanner().Plan(req)
	if len(blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(blocks))
	}

	block := blocks[0]
	if block.Title != "homework" {
		t.Errorf("expected the homework to be placed, got %q", block.Title)
	}
	wantStart := time.Date(2025, time.January, 6, 9, 0, 0, 0, time.UTC)
	if !block.StartTime.Equal(wantStart) {
		t.Errorf("expected start %v, got %v", wantStart, block.StartTime)
	}
	if !block.EndTime.Equal(wantStart.Add(time.Hour)) {
		t.Errorf("expected end %v, got %v", wantStart.Add(time.Hour), block.EndTime)
	}
	if block.BlockType != models.BlockTypeStudy {
		t.Errorf("expected study block, got %q", block.BlockType)
	}
}

func TestPlanPacksBlocksBackToBack(t *testing.T) {
	t.Parallel()

	req := &models.PlanRequest{
		UserID: uuid.New(),
		Tasks: []*models.Task{
			durTask("first", models.TaskPriorityHigh, models.TaskTypeHomework, 60),
			durTask("second", models.TaskPriorityHigh, models.TaskTypeHomework, 60),
		},
		Availability:     []models.AvailabilityWindow{weekdayWindow("09:00", "12:00")},
		StudyHoursPerDay: 3,
	}

	blocks := testPlanner().Plan(req)
	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(blocks))
	}
	if !blocks[0].EndTime.Equal(blocks[1].StartTime) {
		t.Errorf("expected back-to-back packing, got gap between %v and %v",
			blocks[0].EndTime, blocks[1].StartTime)
	}
}

func TestPlanRespectsDailyCap(t *testing.T) {
	t.Parallel()

	// 6 x 60-minute tasks, a 6-hour window, but only 2 study hours per day:
	// two tasks per day, spilling onto following weekdays.
	tasks := make([]*models.Task, 6)
	for i := range tasks {
		tasks[i] = durTask("task", models.TaskPriorityMedium, models.TaskTypeHomework, 60)
	}
	req := &models.PlanRequest{
		UserID:           uuid.New(),
		Tasks:            tasks,
		Availability:     []models.AvailabilityWindow{weekdayWindow("09:00", "15:00")},
		StudyHoursPerDay: 2,
	}

	blocks := testPlanner().Plan(req)
	if len(blocks) != 6 {
		t.Fatalf("expected all 6 tasks placed, got %d", len(blocks))
	}

	perDay := make(map[string]time.Duration)
	for _, b := range blocks {
		perDay[b.StartTime.Format("2006-01-02")] += b.Duration()
	}
	for day, total := range perDay {
		if total > 2*time.Hour {
			t.Errorf("day %s exceeds the 2h cap: %v", day, total)
		}
	}
	if len(perDay) != 3 {
		t.Errorf("expected the 6 tasks spread over 3 days, got %d days", len(perDay))
	}
}

func TestPlanCapComparedInFractionalHours(t *testing.T) {
	t.Parallel()

	// After a 90-minute block the day has consumed 1.5h < 2h, so a 30-minute
	// task still fits the same day; integer-hour truncation would starve it.
	req := &models.PlanRequest{
		UserID: uuid.New(),
		Tasks: []*models.Task{
			durTask("long", models.TaskPriorityHigh, models.TaskTypeProject, 90),
			durTask("short", models.TaskPriorityMedium, models.TaskTypeHomework, 30),
		},
		Availability:     []models.AvailabilityWindow{weekdayWindow("09:00", "11:00")},
		StudyHoursPerDay: 2,
	}

	blocks := testPlanner().Plan(req)
	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(blocks))
	}
	if blocks[0].StartTime.Format("2006-01-02") != blocks[1].StartTime.Format("2006-01-02") {
		t.Errorf("expected both blocks on the same day, got %v and %v",
			blocks[0].StartTime, blocks[1].StartTime)
	}
	wantStart := time.Date(2025, time.January, 6, 10, 30, 0, 0, time.UTC)
	if !blocks[1].StartTime.Equal(wantStart) {
		t.Errorf("expected the short task at %v, got %v", wantStart, blocks[1].StartTime)
	}
}

func TestPlanNoOverlaps(t *testing.T) {
	t.Parallel()

	tasks := make([]*models.Task, 10)
	for i := range tasks {
		tasks[i] = durTask("task", models.TaskPriorityMedium, models.TaskTypeHomework, 45)
	}
	req := &models.PlanRequest{
		UserID:           uuid.New(),
		Tasks:            tasks,
		Availability:     []models.AvailabilityWindow{weekdayWindow("08:00", "13:00")},
		StudyHoursPerDay: 4,
	}

	blocks := testPlanner().Plan(req)
	for i := 0; i < len(blocks); i++ {
		for j := i + 1; j < len(blocks); j++ {
			if blocks[i].Overlaps(blocks[j]) {
				t.Errorf("blocks overlap: [%v,%v) and [%v,%v)",
					blocks[i].StartTime, blocks[i].EndTime,
					blocks[j].StartTime, blocks[j].EndTime)
			}
		}
	}
}

func TestPlanWindowContainment(t *testing.T) {
	t.Parallel()

	window := weekdayWindow("10:00", "12:30")
	tasks := make([]*models.Task, 8)
	for i := range tasks {
		tasks[i] = durTask("task", models.TaskPriorityMedium, models.TaskTypeReading, 50)
	}
	req := &models.PlanRequest{
		UserID:           uuid.New(),
		Tasks:            tasks,
		Availability:     []models.AvailabilityWindow{window},
		StudyHoursPerDay: 2,
	}

	for _, b := range testPlanner().Plan(req) {
		dayStart := window.Start.On(b.StartTime)
		dayEnd := window.End.On(b.StartTime)
		if b.StartTime.Before(dayStart) || b.EndTime.After(dayEnd) {
			t.Errorf("block [%v,%v) escapes window [%v,%v)",
				b.StartTime, b.EndTime, dayStart, dayEnd)
		}
	}
}

func TestPlanDropsUnplaceableTasks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		minutes int
		hours   int
		window  models.AvailabilityWindow
	}{
		{
			name:    "task longer than any window",
			minutes: 240,
			hours:   8,
			window:  weekdayWindow("09:00", "11:00"),
		},
		{
			name:    "no availability at all",
			minutes: 30,
			hours:   4,
			window: models.AvailabilityWindow{
				Start: models.TimeOfDay{Hour: 9},
				End:   models.TimeOfDay{Hour: 17},
				Days:  nil,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := &models.PlanRequest{
				UserID:           uuid.New(),
				Tasks:            []*models.Task{durTask("big", models.TaskPriorityUrgent, models.TaskTypeExam, tt.minutes)},
				Availability:     []models.AvailabilityWindow{tt.window},
				StudyHoursPerDay: tt.hours,
			}
			if blocks := testPlanner().Plan(req); len(blocks) != 0 {
				t.Errorf("expected no blocks, got %d", len(blocks))
			}
		})
	}
}

func TestPlanSkipsDaysOutsideWindows(t *testing.T) {
	t.Parallel()

	// Weekend-only availability: the first placement must land on Saturday
	// 2025-01-04 (the horizon start itself) even though weekdays come first
	// in the calendar elsewhere.
	window := models.AvailabilityWindow{
		Start: models.TimeOfDay{Hour: 14},
		End:   models.TimeOfDay{Hour: 18},
		Days:  []string{"saturday", "sunday"},
	}
	req := &models.PlanRequest{
		UserID:           uuid.New(),
		Tasks:            []*models.Task{durTask("weekend reading", models.TaskPriorityLow, models.TaskTypeReading, 60)},
		Availability:     []models.AvailabilityWindow{window},
		StudyHoursPerDay: 4,
	}

	blocks := testPlanner().Plan(req)
	if len(blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(blocks))
	}
	if got := blocks[0].StartTime.Weekday(); got != time.Saturday {
		t.Errorf("expected placement on Saturday, got %v", got)
	}
	wantStart := time.Date(2025, time.January, 4, 14, 0, 0, 0, time.UTC)
	if !blocks[0].StartTime.Equal(wantStart) {
		t.Errorf("expected start %v, got %v", wantStart, blocks[0].StartTime)
	}
}

func TestPlanUsesFirstMatchingWindowPerDay(t *testing.T) {
	t.Parallel()

	// Two windows cover Monday; the first configured one must win so window
	// selection stays deterministic.
	morning := weekdayWindow("08:00", "10:00")
	evening := weekdayWindow("19:00", "22:00")
	req := &models.PlanRequest{
		UserID:           uuid.New(),
		Tasks:            []*models.Task{durTask("task", models.TaskPriorityMedium, models.TaskTypeHomework, 60)},
		Availability:     []models.AvailabilityWindow{morning, evening},
		StudyHoursPerDay: 4,
	}

	blocks := testPlanner().Plan(req)
	if len(blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(blocks))
	}
	if got := blocks[0].StartTime.Hour(); got != 8 {
		t.Errorf("expected the morning window (08:00), got start hour %d", got)
	}
}

func TestPlanDefaultDurationAndExamBlockType(t *testing.T) {
	t.Parallel()

	exam := makeTask("partial exam", models.TaskPriorityUrgent, models.TaskTypeExam) // no estimate
	req := &models.PlanRequest{
		UserID:           uuid.New(),
		Tasks:            []*models.Task{exam},
		Availability:     []models.AvailabilityWindow{weekdayWindow("09:00", "13:00")},
		StudyHoursPerDay: 4,
	}

	blocks := testPlanner().Plan(req)
	if len(blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(blocks))
	}
	if got := blocks[0].Duration(); got != 2*time.Hour {
		t.Errorf("expected the 120-minute default duration, got %v", got)
	}
	if blocks[0].BlockType != models.BlockTypeExam {
		t.Errorf("expected exam block type, got %q", blocks[0].BlockType)
	}
	if blocks[0].Description == nil || *blocks[0].Description != "Exam - partial exam" {
		t.Errorf("unexpected description: %v", blocks[0].Description)
	}
	if blocks[0].TaskID == nil || *blocks[0].TaskID != exam.ID {
		t.Errorf("block not linked to source task")
	}
}

func TestPlanProcessesTasksInPriorityOrder(t *testing.T) {
	t.Parallel()

	// The low-priority task appears first in the input but the urgent exam
	// must claim the earliest slot.
	req := &models.PlanRequest{
		UserID: uuid.New(),
		Tasks: []*models.Task{
			durTask("low reading", models.TaskPriorityLow, models.TaskTypeReading, 60),
			durTask("urgent exam", models.TaskPriorityUrgent, models.TaskTypeExam, 60),
		},
		Availability:     []models.AvailabilityWindow{weekdayWindow("09:00", "11:00")},
		StudyHoursPerDay: 2,
	}

	blocks := testPlanner().Plan(req)
	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(blocks))
	}
	if blocks[0].Title != "urgent exam" {
		t.Errorf("expected the urgent exam first, got %q", blocks[0].Title)
	}
	if !blocks[0].StartTime.Before(blocks[1].StartTime) {
		t.Errorf("expected the urgent exam in the earlier slot")
	}
}
