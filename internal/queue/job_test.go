package queue

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewJob(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	job := NewJob(JobTypePlanGeneration, userID)

	if job.ID == uuid.Nil {
		t.Error("job ID not assigned")
	}
	if job.Type != JobTypePlanGeneration {
		t.Errorf("type = %q, want %q", job.Type, JobTypePlanGeneration)
	}
	if job.UserID != userID {
		t.Errorf("user id = %v, want %v", job.UserID, userID)
	}
	if job.RetryCount != 0 {
		t.Errorf("retry count = %d, want 0", job.RetryCount)
	}
	if job.MaxRetries != 3 {
		t.Errorf("max retries = %d, want 3", job.MaxRetries)
	}
	if job.Metadata == nil {
		t.Error("metadata map not initialized")
	}
}

func TestJobShouldProcess(t *testing.T) {
	t.Parallel()

	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)

	tests := []struct {
		name      string
		notBefore *time.Time
		notAfter  *time.Time
		want      bool
	}{
		{"no constraints", nil, nil, true},
		{"not before in past", &past, nil, true},
		{"not before in future", &future, nil, false},
		{"not after in future", nil, &future, true},
		{"not after in past", nil, &past, false},
		{"window open", &past, &future, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			job := NewJob(JobTypeDocumentExtraction, uuid.New())
			job.NotBefore = tt.notBefore
			job.NotAfter = tt.notAfter

			if got := job.ShouldProcess(); got != tt.want {
				t.Errorf("ShouldProcess() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestJobIsExpired(t *testing.T) {
	t.Parallel()

	job := NewJob(JobTypeDocumentExtraction, uuid.New())
	if job.IsExpired() {
		t.Error("job with no NotAfter reported expired")
	}

	past := time.Now().Add(-time.Minute)
	job.NotAfter = &past
	if !job.IsExpired() {
		t.Error("job past NotAfter not reported expired")
	}
}

func TestJobRetries(t *testing.T) {
	t.Parallel()

	job := NewJob(JobTypePlanGeneration, uuid.New())

	for i := 0; i < job.MaxRetries; i++ {
		if !job.CanRetry() {
			t.Fatalf("CanRetry() = false after %d retries, max is %d", i, job.MaxRetries)
		}
		job.IncrementRetry()
	}

	if job.CanRetry() {
		t.Errorf("CanRetry() = true after %d retries", job.RetryCount)
	}
}

func TestJobDocumentText(t *testing.T) {
	t.Parallel()

	job := NewJob(JobTypeDocumentExtraction, uuid.New())
	if got := job.DocumentText(); got != "" {
		t.Errorf("DocumentText() = %q on fresh job, want empty", got)
	}

	job.SetDocumentText("TP 1 - Due: 2025-01-15")
	if got := job.DocumentText(); got != "TP 1 - Due: 2025-01-15" {
		t.Errorf("DocumentText() = %q", got)
	}
}

func TestJobDocumentText_SurvivesJSON(t *testing.T) {
	t.Parallel()

	job := NewJob(JobTypeDocumentExtraction, uuid.New())
	job.SetDocumentText("Examen le 2025-01-20")

	data, err := json.Marshal(job)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded Job
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if got := decoded.DocumentText(); got != "Examen le 2025-01-20" {
		t.Errorf("DocumentText() after round trip = %q", got)
	}
	if decoded.ID != job.ID {
		t.Errorf("ID after round trip = %v, want %v", decoded.ID, job.ID)
	}
}
