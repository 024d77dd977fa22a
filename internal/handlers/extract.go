package handlers

import (
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gorilla/mux"
	"github.com/studyflow/studyflow-api/internal/database"
	"github.com/studyflow/studyflow-api/internal/models"
	"github.com/studyflow/studyflow-api/internal/queue"
	"github.com/studyflow/studyflow-api/internal/request"
	"github.com/studyflow/studyflow-api/internal/services/extract"
)

// MaxDocumentSize caps uploaded documents at 10MB
const MaxDocumentSize = 10 << 20

// ExtractHandler turns uploaded course documents into tasks
type ExtractHandler struct {
	extractor extract.Extractor
	taskRepo  database.TaskRepositoryInterface
	jobs      queue.JobQueue
}

// NewExtractHandler creates a new extraction handler. When jobs is non-nil,
// extraction runs asynchronously through the queue (the worker applies the
// LLM extractor); otherwise the handler extracts inline with the configured
// extractor and returns the created tasks directly.
func NewExtractHandler(extractor extract.Extractor, taskRepo database.TaskRepositoryInterface, jobs queue.JobQueue) *ExtractHandler {
	return &ExtractHandler{extractor: extractor, taskRepo: taskRepo, jobs: jobs}
}

// RegisterRoutes registers extraction routes on the given router.
// The router should already have the /documents prefix.
func (h *ExtractHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/extract", h.ExtractDocument).Methods("POST")
}

// ExtractResponse is the synchronous extraction result
type ExtractResponse struct {
	Tasks []*models.Task `json:"tasks"`
	Count int            `json:"count"`
}

// ExtractQueuedResponse acknowledges an async extraction job
type ExtractQueuedResponse struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
}

// ExtractDocument accepts a multipart upload (field "file", PDF or plain
// text) and extracts tasks with deadlines from it.
func (h *ExtractHandler) ExtractDocument(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	if err := r.ParseMultipartForm(MaxDocumentSize); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Missing 'file' form field")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, MaxDocumentSize+1))
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to read uploaded file")
		return
	}
	if len(data) > MaxDocumentSize {
		respondJSONError(w, http.StatusRequestEntityTooLarge, "Request Entity Too Large", "Uploaded document exceeds the 10MB limit")
		return
	}

	text, err := documentText(header.Filename, header.Header.Get("Content-Type"), data)
	if err != nil {
		respondJSONError(w, http.StatusUnprocessableEntity, "Unprocessable Entity", "Could not extract text from document")
		return
	}
	if strings.TrimSpace(text) == "" {
		respondJSONError(w, http.StatusUnprocessableEntity, "Unprocessable Entity", "Document contains no extractable text")
		return
	}

	ctx := r.Context()

	if h.jobs != nil {
		job := queue.NewJob(queue.JobTypeDocumentExtraction, user.ID)
		job.SetDocumentText(text)
		if err := h.jobs.Enqueue(ctx, job); err != nil {
			respondJSONError(w, http.StatusServiceUnavailable, "Service Unavailable", "Failed to queue extraction job")
			return
		}
		respondJSON(w, http.StatusAccepted, ExtractQueuedResponse{JobID: job.ID.String(), Status: "queued"})
		return
	}

	tasks, err := h.extractor.Extract(ctx, text, user.ID)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Extraction failed")
		return
	}

	created := make([]*models.Task, 0, len(tasks))
	for _, task := range tasks {
		if err := h.taskRepo.Create(ctx, task); err != nil {
			continue
		}
		created = append(created, task)
	}

	respondJSON(w, http.StatusCreated, ExtractResponse{Tasks: created, Count: len(created)})
}

// documentText decodes the upload into plain text. PDFs go through the PDF
// text extractor; anything else is treated as UTF-8 text.
func documentText(filename, contentType string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == ".pdf" || strings.Contains(contentType, "application/pdf") {
		return extract.PDFText(data)
	}
	return string(data), nil
}
