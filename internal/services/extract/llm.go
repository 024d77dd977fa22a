package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"github.com/studyflow/studyflow-api/internal/models"
	"go.uber.org/zap"
)

const (
	// DefaultModel is the default chat model used for extraction
	DefaultModel = "gpt-4o-mini"
	// DefaultBaseURL is the default OpenAI API base URL
	DefaultBaseURL = "https://api.openai.com/v1"
	// DefaultTimeout is the default timeout for API calls
	DefaultTimeout = 30 * time.Second
)

// LLMExtractor extracts tasks from free-form document text using a chat
// model, falling back to pattern matching when the model misbehaves.
type LLMExtractor struct {
	client openai.Client
	model  string
	logger *zap.Logger
}

// NewLLMExtractor creates a new LLM-backed extractor
func NewLLMExtractor(apiKey, baseURL, model string, logger *zap.Logger) *LLMExtractor {
	if model == "" {
		model = DefaultModel
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
		option.WithHTTPClient(&http.Client{Timeout: DefaultTimeout}),
	)

	return &LLMExtractor{
		client: client,
		model:  model,
		logger: logger,
	}
}

const extractionSystemPrompt = "You are a precise academic task extraction assistant. You always return valid JSON."

func buildExtractionPrompt(text string) string {
	return fmt.Sprintf(`Extract all academic tasks, deadlines, exams, and assignments from the following text.

Text to analyze:
%s

Return a JSON object with a "tasks" array using this structure:
{
  "tasks": [
    {
      "title": "Task title",
      "type": "homework|exam|project|reading|other",
      "priority": "low|medium|high|urgent",
      "due_date": "YYYY-MM-DDTHH:MM:SS or null",
      "estimated_duration": minutes
    }
  ]
}

Rules:
- Extract ALL tasks, even if dates are implicit or relative
- If no date is found, use null for due_date
- Estimate duration based on task type (exam=180, lab work=120, homework=60, reading=45)
- Exams are urgent, projects are high, homework is medium, readings are low priority
- Output ONLY valid JSON, no explanations`, text)
}

type extractedTask struct {
	Title             string  `json:"title"`
	Type              string  `json:"type"`
	Priority          string  `json:"priority"`
	DueDate           *string `json:"due_date"`
	EstimatedDuration int     `json:"estimated_duration"`
}

// Extract asks the model for tasks found in text. On any API or parse
// failure it degrades to ParseTasks so uploads never hard-fail on the
// model being down.
func (e *LLMExtractor) Extract(ctx context.Context, text string, userID uuid.UUID) ([]*models.Task, error) {
	tasks, err := e.extractWithModel(ctx, text, userID)
	if err != nil {
		if e.logger != nil {
			e.logger.Warn("llm_extraction_failed_falling_back",
				zap.Error(err),
				zap.String("model", e.model),
			)
		}
		return ParseTasks(text, userID), nil
	}
	return tasks, nil
}

func (e *LLMExtractor) extractWithModel(ctx context.Context, text string, userID uuid.UUID) ([]*models.Task, error) {
	req := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(e.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(extractionSystemPrompt),
			openai.UserMessage(buildExtractionPrompt(text)),
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	}

	start := time.Now()
	resp, err := e.client.Chat.Completions.New(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("extraction request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("no choices in response")
	}

	if e.logger != nil {
		e.logger.Debug("llm_extraction_response",
			zap.String("model", e.model),
			zap.Int("response_length", len(resp.Choices[0].Message.Content)),
			zap.Int64("latency_ms", time.Since(start).Milliseconds()),
		)
	}

	parsed, err := parseExtractionResponse(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	tasks := make([]*models.Task, 0, len(parsed))
	for _, et := range parsed {
		tasks = append(tasks, et.toTask(userID))
	}
	return tasks, nil
}

func parseExtractionResponse(content string) ([]extractedTask, error) {
	var envelope struct {
		Tasks []extractedTask `json:"tasks"`
	}
	raw := content
	if err := json.Unmarshal([]byte(raw), &envelope); err != nil {
		// Models sometimes wrap the JSON in prose, salvage the object
		start := bytes.Index([]byte(raw), []byte("{"))
		end := bytes.LastIndex([]byte(raw), []byte("}"))
		if start == -1 || end == -1 || end <= start {
			return nil, fmt.Errorf("failed to parse extraction response: %w", err)
		}
		if err := json.Unmarshal([]byte(raw[start:end+1]), &envelope); err != nil {
			return nil, fmt.Errorf("failed to parse extraction response: %w", err)
		}
	}
	return envelope.Tasks, nil
}

func (et extractedTask) toTask(userID uuid.UUID) *models.Task {
	taskType := models.TaskType(et.Type)
	switch taskType {
	case models.TaskTypeExam, models.TaskTypeProject, models.TaskTypeHomework, models.TaskTypeReading, models.TaskTypeOther:
	default:
		taskType = models.TaskTypeHomework
	}

	priority := models.TaskPriority(et.Priority)
	switch priority {
	case models.TaskPriorityLow, models.TaskPriorityMedium, models.TaskPriorityHigh, models.TaskPriorityUrgent:
	default:
		priority = models.TaskPriorityMedium
	}

	title := et.Title
	if title == "" {
		title = "Untitled Task"
	}

	duration := et.EstimatedDuration
	if duration <= 0 {
		duration = models.DefaultEstimatedDuration
	}

	task := &models.Task{
		ID:                uuid.New(),
		UserID:            userID,
		Title:             title,
		Type:              taskType,
		Priority:          priority,
		Status:            models.TaskStatusTodo,
		EstimatedDuration: &duration,
	}

	if et.DueDate != nil && *et.DueDate != "" {
		for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
			if due, err := time.Parse(layout, *et.DueDate); err == nil {
				task.DueDate = &due
				break
			}
		}
	}

	return task
}
