package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/studyflow/studyflow-api/internal/models"
)

// PlanPreferenceRepository stores each user's saved availability and
// study-hour settings used by automatic weekly planning.
type PlanPreferenceRepository struct {
	db *DB
}

// NewPlanPreferenceRepository creates a new plan preference repository
func NewPlanPreferenceRepository(db *DB) *PlanPreferenceRepository {
	return &PlanPreferenceRepository{db: db}
}

// Upsert saves the preference for a user, replacing any previous one.
func (r *PlanPreferenceRepository) Upsert(ctx context.Context, pref *models.PlanPreference) error {
	availJSON, err := json.Marshal(pref.Availability)
	if err != nil {
		return fmt.Errorf("failed to marshal availability: %w", err)
	}

	query := `
		INSERT INTO plan_preferences (user_id, availability, study_hours_per_day, auto_plan, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (user_id) DO UPDATE
		SET availability = EXCLUDED.availability,
		    study_hours_per_day = EXCLUDED.study_hours_per_day,
		    auto_plan = EXCLUDED.auto_plan,
		    updated_at = EXCLUDED.updated_at
		RETURNING created_at, updated_at
	`

	err = r.db.QueryRowContext(ctx, query,
		pref.UserID,
		availJSON,
		pref.StudyHoursPerDay,
		pref.AutoPlan,
		time.Now(),
	).Scan(&pref.CreatedAt, &pref.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to save plan preference: %w", err)
	}

	return nil
}

// GetByUserID retrieves the saved preference for a user.
func (r *PlanPreferenceRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.PlanPreference, error) {
	pref := &models.PlanPreference{}
	var availJSON []byte

	query := `
		SELECT user_id, availability, study_hours_per_day, auto_plan, created_at, updated_at
		FROM plan_preferences
		WHERE user_id = $1
	`

	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&pref.UserID,
		&availJSON,
		&pref.StudyHoursPerDay,
		&pref.AutoPlan,
		&pref.CreatedAt,
		&pref.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("plan preference for user %s: %w", userID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get plan preference: %w", err)
	}

	if err := json.Unmarshal(availJSON, &pref.Availability); err != nil {
		return nil, fmt.Errorf("failed to unmarshal availability: %w", err)
	}

	return pref, nil
}

// GetAutoPlanUsers returns the preferences of all users who opted into
// automatic weekly plan generation.
func (r *PlanPreferenceRepository) GetAutoPlanUsers(ctx context.Context) ([]*models.PlanPreference, error) {
	query := `
		SELECT user_id, availability, study_hours_per_day, auto_plan, created_at, updated_at
		FROM plan_preferences
		WHERE auto_plan = true
		ORDER BY user_id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list auto-plan users: %w", err)
	}
	defer rows.Close()

	var prefs []*models.PlanPreference
	for rows.Next() {
		pref := &models.PlanPreference{}
		var availJSON []byte
		if err := rows.Scan(
			&pref.UserID,
			&availJSON,
			&pref.StudyHoursPerDay,
			&pref.AutoPlan,
			&pref.CreatedAt,
			&pref.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan plan preference: %w", err)
		}
		if err := json.Unmarshal(availJSON, &pref.Availability); err != nil {
			return nil, fmt.Errorf("failed to unmarshal availability: %w", err)
		}
		prefs = append(prefs, pref)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate plan preferences: %w", err)
	}

	return prefs, nil
}
