package handler

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/arturoeanton/scout/internal/port"
)

// Ingest job states.
const (
	JobRunning  = "running"
	JobComplete = "complete"
	JobError    = "error"
)

// JobStatus represents the current state of an ingest job.
type JobStatus struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	Status      string    `json:"status"`
	Progress    int       `json:"progress"`
	Total       int       `json:"total"`
	DocumentIDs []string  `json:"document_ids"`
	Error       string    `json:"error,omitempty"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at,omitempty"`
}

func (j JobStatus) finished() bool {
	return j.Status == JobComplete || j.Status == JobError
}

// JobTracker manages ingest jobs in memory.
type JobTracker struct {
	mu   sync.RWMutex
	jobs map[string]*JobStatus
	subs map[string][]chan JobStatus // subscribers per job
}

// NewJobTracker creates a new job tracker.
func NewJobTracker() *JobTracker {
	return &JobTracker{
		jobs: make(map[string]*JobStatus),
		subs: make(map[string][]chan JobStatus),
	}
}

// CreateJob registers a running job for filename and returns its ID.
func (t *JobTracker) CreateJob(filename string) string {
	id := uuid.NewString()
	t.mu.Lock()
	defer t.mu.Unlock()
	t.jobs[id] = &JobStatus{
		ID:          id,
		Filename:    filename,
		Status:      JobRunning,
		DocumentIDs: []string{},
		StartedAt:   time.Now(),
	}
	return id
}

// Progress records stored/total and notifies subscribers.
func (t *JobTracker) Progress(id string, stored, total int) {
	t.update(id, func(j *JobStatus) {
		j.Progress = stored
		j.Total = total
	})
}

// Complete marks the job finished with the IDs of the stored documents.
func (t *JobTracker) Complete(id string, documentIDs []string) {
	t.update(id, func(j *JobStatus) {
		j.Status = JobComplete
		j.DocumentIDs = documentIDs
		j.CompletedAt = time.Now()
	})
}

// Fail marks the job failed.
func (t *JobTracker) Fail(id string, err error) {
	t.update(id, func(j *JobStatus) {
		j.Status = JobError
		j.Error = err.Error()
		j.CompletedAt = time.Now()
	})
}

func (t *JobTracker) update(id string, apply func(*JobStatus)) {
	t.mu.Lock()
	job, ok := t.jobs[id]
	if !ok {
		t.mu.Unlock()
		return
	}
	apply(job)
	snapshot := *job
	subs := append([]chan JobStatus(nil), t.subs[id]...)
	t.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- snapshot:
		default:
		}
	}
}

// GetJob returns a job status.
func (t *JobTracker) GetJob(id string) (*JobStatus, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	job, ok := t.jobs[id]
	if !ok {
		return nil, port.ErrJobNotFound
	}
	snapshot := *job
	return &snapshot, nil
}

// Subscribe returns a channel that receives job updates.
func (t *JobTracker) Subscribe(id string) chan JobStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	ch := make(chan JobStatus, 10)
	t.subs[id] = append(t.subs[id], ch)
	return ch
}

// Unsubscribe removes a channel from subscribers.
func (t *JobTracker) Unsubscribe(id string, ch chan JobStatus) {
	t.mu.Lock()
	defer t.mu.Unlock()
	subs := t.subs[id]
	for i, s := range subs {
		if s == ch {
			t.subs[id] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	if len(t.subs[id]) == 0 {
		delete(t.subs, id)
	}
}

// JobsHandler handles job-related endpoints.
type JobsHandler struct {
	tracker *JobTracker
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(tracker *JobTracker) *JobsHandler {
	return &JobsHandler{tracker: tracker}
}

// Register sets up job routes.
func (h *JobsHandler) Register(router fiber.Router) {
	jobs := router.Group("/jobs")
	jobs.Get("/:id", h.GetStatus)
	jobs.Get("/:id/stream", h.StreamSSE)
}

// GetStatus returns the current job status.
func (h *JobsHandler) GetStatus(c fiber.Ctx) error {
	job, err := h.tracker.GetJob(c.Params("id"))
	if err != nil {
		return respondError(c, err, "Failed to fetch job")
	}
	return c.JSON(job)
}

// StreamSSE streams job updates via Server-Sent Events.
func (h *JobsHandler) StreamSSE(c fiber.Ctx) error {
	id := c.Params("id")

	job, err := h.tracker.GetJob(id)
	if err != nil {
		return respondError(c, err, "Failed to fetch job")
	}

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")

	// If already finished, just return the final status
	if job.finished() {
		data, _ := json.Marshal(job)
		return c.SendString(fmt.Sprintf("event: %s\ndata: %s\n\n", job.Status, string(data)))
	}

	ch := h.tracker.Subscribe(id)
	// Re-read after subscribing so a job finishing in between is not missed.
	if latest, err := h.tracker.GetJob(id); err == nil {
		job = latest
	}

	return c.SendStreamWriter(func(w *bufio.Writer) {
		defer h.tracker.Unsubscribe(id, ch)

		data, _ := json.Marshal(job)
		eventType := "progress"
		if job.finished() {
			eventType = job.Status
		}
		fmt.Fprintf(w, "event: %s\ndata: %s\n\n", eventType, string(data))
		w.Flush()
		if job.finished() {
			return
		}

		// Updates are dropped when a subscriber falls behind; the ticker catches the final state.
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		timeout := time.After(10 * time.Minute)
		for {
			select {
			case <-ticker.C:
				latest, err := h.tracker.GetJob(id)
				if err != nil || !latest.finished() {
					continue
				}
				data, _ := json.Marshal(latest)
				fmt.Fprintf(w, "event: %s\ndata: %s\n\n", latest.Status, string(data))
				w.Flush()
				return
			case update := <-ch:
				data, _ := json.Marshal(update)
				eventType := "progress"
				if update.finished() {
					eventType = update.Status
				}
				fmt.Fprintf(w, "event: %s\ndata: %s\n\n", eventType, string(data))
				if err := w.Flush(); err != nil {
					return
				}
				if update.finished() {
					return
				}
			case <-timeout:
				slog.Warn("SSE timeout", "job_id", id)
				return
			}
		}
	})
}
