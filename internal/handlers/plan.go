package handlers

import (
	"fmt"
	"net/http"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/studyflow/studyflow-api/internal/database"
	"github.com/studyflow/studyflow-api/internal/models"
	"github.com/studyflow/studyflow-api/internal/planner"
	"github.com/studyflow/studyflow-api/internal/request"
	"github.com/studyflow/studyflow-api/internal/validation"
)

// PlanHandler handles schedule generation and export
type PlanHandler struct {
	planner   *planner.Planner
	taskRepo  database.TaskRepositoryInterface
	blockRepo database.TimeBlockRepositoryInterface
	prefRepo  database.PlanPreferenceRepositoryInterface
}

// NewPlanHandler creates a new plan handler
func NewPlanHandler(p *planner.Planner, taskRepo database.TaskRepositoryInterface, blockRepo database.TimeBlockRepositoryInterface, prefRepo database.PlanPreferenceRepositoryInterface) *PlanHandler {
	return &PlanHandler{planner: p, taskRepo: taskRepo, blockRepo: blockRepo, prefRepo: prefRepo}
}

// RegisterRoutes registers planning routes on the given router.
// The router should already have the /api/v1 prefix.
func (h *PlanHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/plan/week", h.PlanWeek).Methods("POST")
	r.HandleFunc("/plan/export.ics", h.ExportICS).Methods("GET")
	r.HandleFunc("/next-action", h.NextAction).Methods("GET")
	r.HandleFunc("/blocks/{id}/complete", h.CompleteBlock).Methods("POST")
}

// PlanWeekRequest represents a schedule generation request
type PlanWeekRequest struct {
	Availability     []models.AvailabilityWindow `json:"availability"`
	StudyHoursPerDay int                         `json:"study_hours_per_day"`
	TaskIDs          []uuid.UUID                 `json:"task_ids,omitempty"`
	AutoPlan         bool                        `json:"auto_plan"`
}

// PlanWeekResponse reports the generated blocks and how many tasks could not
// be placed inside the horizon.
type PlanWeekResponse struct {
	Blocks    []*models.TimeBlock `json:"blocks"`
	Requested int                 `json:"requested"`
	Placed    int                 `json:"placed"`
	Dropped   int                 `json:"dropped"`
}

// NextActionResponse points at what the user should work on right now
type NextActionResponse struct {
	Block *models.TimeBlock `json:"block,omitempty"`
	Task  *models.Task      `json:"task,omitempty"`
}

// PlanWeek generates the upcoming schedule. It replaces the user's future
// uncompleted blocks with a fresh allocation and saves the submitted
// availability as the user's planning preferences.
func (h *PlanHandler) PlanWeek(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	var req PlanWeekRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ctx := r.Context()

	var tasks []*models.Task
	var err error
	if len(req.TaskIDs) > 0 {
		tasks, err = h.taskRepo.GetByIDs(ctx, user.ID, req.TaskIDs)
	} else {
		tasks, err = h.taskRepo.GetOpenByUserID(ctx, user.ID)
	}
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve tasks")
		return
	}

	planReq := &models.PlanRequest{
		UserID:           user.ID,
		Tasks:            tasks,
		Availability:     req.Availability,
		StudyHoursPerDay: req.StudyHoursPerDay,
	}
	if err := validation.ValidatePlanRequest(planReq); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	blocks := h.planner.Plan(planReq)

	if _, err := h.blockRepo.DeleteFutureByUser(ctx, user.ID, h.planner.Now()); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to clear previous schedule")
		return
	}
	if len(blocks) > 0 {
		if err := h.blockRepo.CreateBatch(ctx, blocks); err != nil {
			respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to store schedule")
			return
		}
	}

	pref := &models.PlanPreference{
		UserID:           user.ID,
		Availability:     req.Availability,
		StudyHoursPerDay: req.StudyHoursPerDay,
		AutoPlan:         req.AutoPlan,
	}
	if err := h.prefRepo.Upsert(ctx, pref); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to save planning preferences")
		return
	}

	respondJSON(w, http.StatusOK, PlanWeekResponse{
		Blocks:    blocks,
		Requested: len(tasks),
		Placed:    len(blocks),
		Dropped:   len(tasks) - len(blocks),
	})
}

// ExportICS serializes the user's upcoming blocks as an iCalendar feed
func (h *PlanHandler) ExportICS(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	now := h.planner.Now()
	until := now.AddDate(0, 0, h.planner.HorizonDays+1)

	blocks, err := h.blockRepo.GetByUserInRange(r.Context(), user.ID, now, until)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve time blocks")
		return
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//StudyFlow//Study Planner//EN")
	cal.SetXWRCalName(user.DisplayName() + " study plan")

	for _, block := range blocks {
		event := cal.AddEvent(fmt.Sprintf("%s@studyflow", block.ID))
		event.SetCreatedTime(block.CreatedAt)
		event.SetDtStampTime(block.UpdatedAt)
		event.SetStartAt(block.StartTime)
		event.SetEndAt(block.EndTime)
		event.SetSummary(block.Title)
		if block.Description != nil {
			event.SetDescription(*block.Description)
		}
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="studyflow.ics"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(cal.Serialize())); err != nil {
		// Too late for a JSON error once the calendar started streaming.
		return
	}
}

// NextAction returns the block in progress right now, or the highest-priority
// open task when nothing is scheduled at the moment.
func (h *PlanHandler) NextAction(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	ctx := r.Context()

	block, err := h.blockRepo.GetCurrent(ctx, user.ID, time.Now())
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve current block")
		return
	}

	resp := NextActionResponse{Block: block}
	if block != nil && block.TaskID != nil {
		if task, err := h.taskRepo.GetByID(ctx, *block.TaskID); err == nil {
			resp.Task = task
		}
		respondJSON(w, http.StatusOK, resp)
		return
	}
	if block != nil {
		respondJSON(w, http.StatusOK, resp)
		return
	}

	task, err := h.taskRepo.GetNextAction(ctx, user.ID)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve next action")
		return
	}
	resp.Task = task

	respondJSON(w, http.StatusOK, resp)
}

// CompleteBlock marks a time block as done
func (h *PlanHandler) CompleteBlock(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid block ID")
		return
	}

	ctx := r.Context()
	block, err := h.blockRepo.GetByID(ctx, id)
	if err != nil {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Time block not found")
		return
	}
	if block.UserID != user.ID {
		respondJSONError(w, http.StatusForbidden, "Forbidden", "Time block does not belong to user")
		return
	}

	updated, err := h.blockRepo.SetCompleted(ctx, id, true)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to complete time block")
		return
	}

	respondJSON(w, http.StatusOK, updated)
}
