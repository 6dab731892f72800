package api

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	JobStatusPending    = "pending"
	JobStatusProcessing = "processing"
	JobStatusComplete   = "complete"
	JobStatusFailed     = "failed"

	FileStatusPending    = "pending"
	FileStatusProcessing = "processing"
	FileStatusComplete   = "complete"
	FileStatusError      = "error"
)

// SummaryResult is the outcome of summarizing one uploaded PDF.
type SummaryResult struct {
	Name          string `json:"name"`
	Status        string `json:"status"`
	Pages         int    `json:"pages,omitempty"`
	Chunks        int    `json:"chunks,omitempty"`
	DroppedChunks int    `json:"droppedChunks,omitempty"`
	Summary       string `json:"summary,omitempty"`
	Message       string `json:"message,omitempty"`
}

// SummaryJob tracks a background summarization request across multiple files.
type SummaryJob struct {
	ID        string         `json:"jobId"`
	Status    string         `json:"status"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	Files     []FileProgress `json:"files"`
	Error     string         `json:"error,omitempty"`
}

// FileProgress captures per-file progress updates that the frontend polls.
type FileProgress struct {
	Index   int            `json:"index"`
	Name    string         `json:"name"`
	Status  string         `json:"status"`
	Step    string         `json:"step,omitempty"`
	Message string         `json:"message,omitempty"`
	Current int            `json:"current"`
	Total   int            `json:"total"`
	Percent int            `json:"percent"`
	Result  *SummaryResult `json:"result,omitempty"`
	Error   string         `json:"error,omitempty"`
}

type JobManager struct {
	mu   sync.RWMutex
	jobs map[string]*SummaryJob
	ttl  time.Duration
}

// NewJobManager keeps finished jobs for ttl before forgetting them.
func NewJobManager(ttl time.Duration) *JobManager {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &JobManager{
		jobs: make(map[string]*SummaryJob),
		ttl:  ttl,
	}
}

func (m *JobManager) CreateJob(fileNames []string) (string, *SummaryJob) {
	files := make([]FileProgress, len(fileNames))
	for i, name := range fileNames {
		files[i] = FileProgress{
			Index:  i,
			Name:   name,
			Status: FileStatusPending,
		}
	}
	now := time.Now().UTC()
	job := &SummaryJob{
		ID:        uuid.NewString(),
		Status:    JobStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
		Files:     files,
	}

	m.mu.Lock()
	m.evictLocked(now)
	m.jobs[job.ID] = job
	m.mu.Unlock()

	return job.ID, job.clone()
}

func (m *JobManager) GetJob(id string) (*SummaryJob, bool) {
	m.mu.RLock()
	job, ok := m.jobs[id]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return job.clone(), true
}

func (m *JobManager) MarkProcessing(id string) {
	m.withJob(id, func(job *SummaryJob) {
		job.Status = JobStatusProcessing
	})
}

// MarkCompleted finishes the job. It is failed when every file failed.
func (m *JobManager) MarkCompleted(id string) {
	m.withJob(id, func(job *SummaryJob) {
		job.Status = JobStatusComplete
		for _, f := range job.Files {
			if f.Status != FileStatusError {
				return
			}
		}
		if len(job.Files) > 0 {
			job.Status = JobStatusFailed
			job.Error = "no file could be summarized"
		}
	})
}

func (m *JobManager) MarkFileStarted(id string, index int) {
	m.withJob(id, func(job *SummaryJob) {
		if file := job.file(index); file != nil {
			file.Status = FileStatusProcessing
			file.Step = ""
			file.Message = "Starting"
			file.Current = 0
			file.Total = 100
			file.Percent = 0
			file.Error = ""
		}
	})
}

func (m *JobManager) UpdateFileProgress(id string, index int, step, message string, current, total int) {
	m.withJob(id, func(job *SummaryJob) {
		if file := job.file(index); file != nil {
			file.Status = FileStatusProcessing
			file.Step = step
			file.Message = message
			file.Current = current
			file.Total = total
			file.Percent = percent(current, total)
		}
	})
}

func (m *JobManager) MarkFileComplete(id string, index int, result SummaryResult) {
	result.Status = FileStatusComplete
	m.withJob(id, func(job *SummaryJob) {
		if file := job.file(index); file != nil {
			file.Status = FileStatusComplete
			file.Step = "complete"
			file.Message = "Summary ready"
			file.Current = 100
			file.Total = 100
			file.Percent = 100
			file.Result = &result
			file.Error = ""
		}
	})
}

func (m *JobManager) MarkFileError(id string, index int, message string) {
	msg := strings.TrimSpace(message)
	if msg == "" {
		msg = "processing error"
	}
	m.withJob(id, func(job *SummaryJob) {
		if file := job.file(index); file != nil {
			file.Status = FileStatusError
			file.Step = "error"
			file.Message = msg
			file.Error = msg
			file.Current = 100
			file.Total = 100
			file.Percent = 100
			file.Result = &SummaryResult{Name: file.Name, Status: FileStatusError, Message: msg}
		}
	})
}

func (m *JobManager) withJob(id string, fn func(job *SummaryJob)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return
	}
	fn(job)
	job.UpdatedAt = time.Now().UTC()
}

// evictLocked drops finished jobs older than the ttl. m.mu must be held.
func (m *JobManager) evictLocked(now time.Time) {
	for id, job := range m.jobs {
		finished := job.Status == JobStatusComplete || job.Status == JobStatusFailed
		if finished && now.Sub(job.UpdatedAt) > m.ttl {
			delete(m.jobs, id)
		}
	}
}

func (job *SummaryJob) file(index int) *FileProgress {
	if index < 0 || index >= len(job.Files) {
		return nil
	}
	return &job.Files[index]
}

func (job *SummaryJob) clone() *SummaryJob {
	if job == nil {
		return nil
	}
	copyJob := *job
	if len(job.Files) > 0 {
		copyJob.Files = make([]FileProgress, len(job.Files))
		for i, file := range job.Files {
			copyJob.Files[i] = file
			if file.Result != nil {
				res := *file.Result
				copyJob.Files[i].Result = &res
			}
		}
	}
	return &copyJob
}

func percent(current, total int) int {
	if total <= 0 {
		if current <= 0 {
			return 0
		}
		if current > 100 {
			return 100
		}
		return current
	}
	if current <= 0 {
		return 0
	}
	if current >= total {
		return 100
	}
	return int((float64(current) / float64(total)) * 100)
}
