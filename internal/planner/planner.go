// Package planner implements the StudyFlow scheduling engine: a pure,
// stateless allocator that turns a batch of pending tasks plus a weekly
// availability description into non-overlapping study blocks.
package planner

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/studyflow/studyflow-api/internal/models"
)

// DefaultHorizonDays is how far ahead the allocator searches for a slot.
const DefaultHorizonDays = 14

// Planner allocates ordered tasks into availability windows. The zero value
// is not usable; call New. Now is injectable so tests can pin the horizon.
type Planner struct {
	HorizonDays int
	Now         func() time.Time
}

// New returns a Planner with the default two-week horizon and wall clock.
func New() *Planner {
	return &Planner{
		HorizonDays: DefaultHorizonDays,
		Now:         time.Now,
	}
}

// Plan generates time blocks for the request's open tasks.
//
// Tasks are processed in OrderTasks order. For each task the allocator scans
// the horizon day by day, starting at the next calendar day after Now. A day
// is usable when some availability window covers its weekday and the day's
// consumed minutes are still under the study-hour cap (compared in fractional
// hours). Blocks are packed back-to-back from the start of the day's window;
// a candidate that would spill past the window's end is rejected and the
// scan moves to the next day. A task that fits nowhere inside the horizon is
// dropped silently - callers detect this by comparing input and output sizes.
//
// The function has no side effects: the per-day minute budget lives only for
// the duration of the call, so concurrent invocations never interact.
func (p *Planner) Plan(req *models.PlanRequest) []*models.TimeBlock {
	ordered := OrderTasks(req.Tasks)

	// Scheduling starts tomorrow, at midnight of the caller's location.
	now := p.Now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)

	capHours := float64(req.StudyHoursPerDay)
	usedMinutes := make(map[string]int) // calendar date -> minutes already allocated

	blocks := make([]*models.TimeBlock, 0, len(ordered))
	for _, task := range ordered {
		duration := time.Duration(task.DurationMinutes()) * time.Minute

		for offset := 0; offset < p.HorizonDays; offset++ {
			day := start.AddDate(0, 0, offset)
			window := activeWindow(req.Availability, models.WeekdayName(day.Weekday()))
			if window == nil {
				continue
			}

			dateKey := day.Format("2006-01-02")
			used := usedMinutes[dateKey]
			if float64(used)/60.0 >= capHours {
				continue
			}
			// The block must not push the day over the cap either; the cap is
			// compared in fractional hours so odd durations cannot starve.
			if float64(used+task.DurationMinutes())/60.0 > capHours {
				continue
			}

			blockStart := window.Start.On(day).Add(time.Duration(used) * time.Minute)
			blockEnd := blockStart.Add(duration)
			if blockEnd.After(window.End.On(day)) {
				continue
			}

			blocks = append(blocks, newBlock(req.UserID, task, blockStart, blockEnd))
			usedMinutes[dateKey] = used + task.DurationMinutes()
			break
		}
	}

	return blocks
}

// activeWindow returns the first configured window covering the weekday, or
// nil when the day has no availability. Taking the first match keeps window
// selection deterministic when several windows list the same weekday.
func activeWindow(windows []models.AvailabilityWindow, day string) *models.AvailabilityWindow {
	for i := range windows {
		if windows[i].AppliesTo(day) {
			return &windows[i]
		}
	}
	return nil
}

func newBlock(userID uuid.UUID, task *models.Task, start, end time.Time) *models.TimeBlock {
	blockType := models.BlockTypeStudy
	if task.Type == models.TaskTypeExam {
		blockType = models.BlockTypeExam
	}

	taskID := task.ID
	description := capitalize(string(task.Type)) + " - " + task.Title
	return &models.TimeBlock{
		ID:          uuid.New(),
		UserID:      userID,
		TaskID:      &taskID,
		Title:       task.Title,
		Description: &description,
		StartTime:   start,
		EndTime:     end,
		BlockType:   blockType,
		IsCompleted: false,
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
