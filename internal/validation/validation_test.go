package validation

import (
	"testing"

	"github.com/studyflow/studyflow-api/internal/models"
)

func window(start, end models.TimeOfDay, days ...string) models.AvailabilityWindow {
	return models.AvailabilityWindow{Start: start, End: end, Days: days}
}

func TestValidateAvailability(t *testing.T) {
	t.Parallel()

	nine := models.TimeOfDay{Hour: 9}
	five := models.TimeOfDay{Hour: 17}

	tests := []struct {
		name      string
		windows   []models.AvailabilityWindow
		expectErr bool
	}{
		{
			name:    "valid single window",
			windows: []models.AvailabilityWindow{window(nine, five, "monday", "friday")},
		},
		{
			name: "valid multiple windows",
			windows: []models.AvailabilityWindow{
				window(nine, five, "monday"),
				window(models.TimeOfDay{Hour: 19}, models.TimeOfDay{Hour: 22}, "saturday", "sunday"),
			},
		},
		{
			name:      "no windows",
			windows:   nil,
			expectErr: true,
		},
		{
			name:      "end before start",
			windows:   []models.AvailabilityWindow{window(five, nine, "monday")},
			expectErr: true,
		},
		{
			name:      "end equals start",
			windows:   []models.AvailabilityWindow{window(nine, nine, "monday")},
			expectErr: true,
		},
		{
			name:      "empty weekday set",
			windows:   []models.AvailabilityWindow{window(nine, five)},
			expectErr: true,
		},
		{
			name:      "unknown weekday name",
			windows:   []models.AvailabilityWindow{window(nine, five, "Lundi")},
			expectErr: true,
		},
		{
			name:      "uppercase weekday rejected",
			windows:   []models.AvailabilityWindow{window(nine, five, "Monday")},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := ValidateAvailability(tt.windows)
			if tt.expectErr && err == nil {
				t.Error("expected an error, got nil")
			}
			if !tt.expectErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateEnums(t *testing.T) {
	t.Parallel()

	if err := ValidateTaskType("exam"); err != nil {
		t.Errorf("exam should be valid: %v", err)
	}
	if err := ValidateTaskType("quiz"); err == nil {
		t.Error("quiz should be rejected")
	}
	if err := ValidateTaskPriority("urgent"); err != nil {
		t.Errorf("urgent should be valid: %v", err)
	}
	if err := ValidateTaskPriority("critical"); err == nil {
		t.Error("critical should be rejected")
	}
	if err := ValidateTaskStatus("in_progress"); err != nil {
		t.Errorf("in_progress should be valid: %v", err)
	}
	if err := ValidateTaskStatus("paused"); err == nil {
		t.Error("paused should be rejected")
	}
}

func TestValidatePlanRequestCap(t *testing.T) {
	t.Parallel()

	base := func(hours int) *models.PlanRequest {
		return &models.PlanRequest{
			StudyHoursPerDay: hours,
			Availability: []models.AvailabilityWindow{
				window(models.TimeOfDay{Hour: 9}, models.TimeOfDay{Hour: 17}, "monday"),
			},
		}
	}

	if err := ValidatePlanRequest(base(4)); err != nil {
		t.Errorf("4 hours should be valid: %v", err)
	}
	if err := ValidatePlanRequest(base(0)); err == nil {
		t.Error("0 hours should be rejected")
	}
	if err := ValidatePlanRequest(base(13)); err == nil {
		t.Error("13 hours should be rejected")
	}
}

func TestSanitizeText(t *testing.T) {
	t.Parallel()

	got := SanitizeText("  TP 3 \x00- algorithms\t\n  ")
	want := "TP 3 - algorithms"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
