package planner

import (
	"sort"
	"time"

	"github.com/studyflow/studyflow-api/internal/models"
)

// priorityWeights rank task priorities; unknown values fall back to 0 and
// therefore sort last within the batch.
var priorityWeights = map[models.TaskPriority]int{
	models.TaskPriorityUrgent: 4,
	models.TaskPriorityHigh:   3,
	models.TaskPriorityMedium: 2,
	models.TaskPriorityLow:    1,
}

// typeWeights break priority ties: exams before projects before homework.
var typeWeights = map[models.TaskType]int{
	models.TaskTypeExam:     5,
	models.TaskTypeProject:  4,
	models.TaskTypeHomework: 3,
	models.TaskTypeReading:  2,
	models.TaskTypeOther:    1,
}

// sentinelDueDate stands in for a missing due date so that undated tasks sort
// after every dated task. An explicit sentinel keeps the comparator total and
// avoids nil special cases in the sort body.
var sentinelDueDate = time.Date(9999, time.December, 31, 23, 59, 59, 0, time.UTC)

func dueDateOrSentinel(t *models.Task) time.Time {
	if t.DueDate != nil {
		return *t.DueDate
	}
	return sentinelDueDate
}

// OrderTasks filters out completed and cancelled tasks and returns the rest
// in scheduling order: priority weight descending, then type weight
// descending, then due date ascending. The sort is stable, so fully tied
// tasks keep their input order and re-running on the same input yields the
// same sequence. The input slice is not modified.
func OrderTasks(tasks []*models.Task) []*models.Task {
	ordered := make([]*models.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.IsOpen() {
			ordered = append(ordered, t)
		}
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if pa, pb := priorityWeights[a.Priority], priorityWeights[b.Priority]; pa != pb {
			return pa > pb
		}
		if ta, tb := typeWeights[a.Type], typeWeights[b.Type]; ta != tb {
			return ta > tb
		}
		return dueDateOrSentinel(a).Before(dueDateOrSentinel(b))
	})

	return ordered
}
