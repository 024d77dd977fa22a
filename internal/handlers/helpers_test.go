package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestRespondJSON_Envelope(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	respondJSON(rec, http.StatusCreated, map[string]string{"title": "Read chapter 3"})

	if rec.Code != http.StatusCreated {
		t.Errorf("Expected status 201, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected Content-Type 'application/json', got %q", ct)
	}

	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if success, ok := body["success"].(bool); !ok || !success {
		t.Error("Expected success to be true")
	}
	ts, ok := body["timestamp"].(string)
	if !ok {
		t.Fatal("Expected timestamp to be present")
	}
	if _, err := time.Parse(time.RFC3339, ts); err != nil {
		t.Errorf("Expected RFC3339 timestamp, got %q: %v", ts, err)
	}
	data, ok := body["data"].(map[string]any)
	if !ok {
		t.Fatal("Expected data object")
	}
	if data["title"] != "Read chapter 3" {
		t.Errorf("Expected title to round-trip, got %v", data["title"])
	}
}

func TestRespondJSONError_Envelope(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	respondJSONError(rec, http.StatusBadRequest, "Bad Request", "invalid priority")

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}

	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if success, ok := body["success"].(bool); !ok || success {
		t.Error("Expected success to be false")
	}
	if body["error"] != "Bad Request" {
		t.Errorf("Expected error type 'Bad Request', got %v", body["error"])
	}
	if body["message"] != "invalid priority" {
		t.Errorf("Expected message to pass through, got %v", body["message"])
	}
}

func TestSanitizeErrorMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		message string
		want    string
	}{
		{
			name:    "short message unchanged",
			message: "task not found",
			want:    "task not found",
		},
		{
			name:    "empty message",
			message: "",
			want:    "",
		},
		{
			name:    "long message truncated",
			message: strings.Repeat("x", 300),
			want:    strings.Repeat("x", 200) + "...",
		},
		{
			name:    "boundary length untouched",
			message: strings.Repeat("y", 200),
			want:    strings.Repeat("y", 200),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := sanitizeErrorMessage(tt.message); got != tt.want {
				t.Errorf("sanitizeErrorMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}
