package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/studyflow/studyflow-api/internal/database"
	"github.com/studyflow/studyflow-api/internal/models"
	"github.com/studyflow/studyflow-api/internal/validation"
	"gopkg.in/yaml.v3"
)

// availabilityPreset is the YAML shape accepted by the availability command.
//
//	study_hours_per_day: 3
//	auto_plan: true
//	windows:
//	  - start: "18:00"
//	    end: "22:00"
//	    days: [monday, tuesday, wednesday, thursday, friday]
type availabilityPreset struct {
	StudyHoursPerDay int  `yaml:"study_hours_per_day"`
	AutoPlan         bool `yaml:"auto_plan"`
	Windows          []struct {
		Start string   `yaml:"start"`
		End   string   `yaml:"end"`
		Days  []string `yaml:"days"`
	} `yaml:"windows"`
}

// NewAvailabilityCmd creates the availability preset command
func NewAvailabilityCmd() *cobra.Command {
	var presetFile string

	cmd := &cobra.Command{
		Use:   "availability <user-id>",
		Short: "Load an availability preset for a user",
		Long:  "Load availability windows and study hours from a YAML preset file into the user's planning preferences.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid user id %q: %w", args[0], err)
			}
			if presetFile == "" {
				return fmt.Errorf("--file is required")
			}

			data, err := os.ReadFile(presetFile)
			if err != nil {
				return fmt.Errorf("failed to read preset file: %w", err)
			}

			var preset availabilityPreset
			if err := yaml.Unmarshal(data, &preset); err != nil {
				return fmt.Errorf("failed to parse preset file: %w", err)
			}

			pref, err := presetToPreference(userID, &preset)
			if err != nil {
				return err
			}

			db, closeDB, err := openDatabase()
			if err != nil {
				return err
			}
			defer closeDB()

			prefRepo := database.NewPlanPreferenceRepository(db)
			if err := prefRepo.Upsert(context.Background(), pref); err != nil {
				return fmt.Errorf("failed to save planning preferences: %w", err)
			}

			fmt.Printf("Saved availability preset for user %s (%d windows, %dh/day, auto_plan=%v)\n",
				userID, len(pref.Availability), pref.StudyHoursPerDay, pref.AutoPlan)
			return nil
		},
	}

	cmd.Flags().StringVar(&presetFile, "file", "", "YAML preset file (required)")

	return cmd
}

func presetToPreference(userID uuid.UUID, preset *availabilityPreset) (*models.PlanPreference, error) {
	if preset.StudyHoursPerDay < 1 || preset.StudyHoursPerDay > 12 {
		return nil, fmt.Errorf("study_hours_per_day must be between 1 and 12, got %d", preset.StudyHoursPerDay)
	}

	windows := make([]models.AvailabilityWindow, 0, len(preset.Windows))
	for i, w := range preset.Windows {
		start, err := models.ParseTimeOfDay(w.Start)
		if err != nil {
			return nil, fmt.Errorf("window %d: %w", i, err)
		}
		end, err := models.ParseTimeOfDay(w.End)
		if err != nil {
			return nil, fmt.Errorf("window %d: %w", i, err)
		}
		windows = append(windows, models.AvailabilityWindow{Start: start, End: end, Days: w.Days})
	}

	if err := validation.ValidateAvailability(windows); err != nil {
		return nil, err
	}

	return &models.PlanPreference{
		UserID:           userID,
		Availability:     windows,
		StudyHoursPerDay: preset.StudyHoursPerDay,
		AutoPlan:         preset.AutoPlan,
	}, nil
}
