package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"tutor-ai/internal/logger"
	"tutor-ai/internal/models"
	"tutor-ai/internal/services"
)

const (
	maxMultipartMemory = 8 << 20  // 8 MB
	maxUploadSize      = 32 << 20 // 32 MB
	maxJSONBody        = 1 << 20
	jobTimeout         = 15 * time.Minute
)

type Server struct {
	mux       *http.ServeMux
	tutor     *services.TutorService
	search    *services.SearchService
	documents *services.DocumentService
	summaries *services.DocumentSummarizer
	history   *services.HistoryService
	jobs      *JobManager
	log       *logger.Logger
}

// Deps are the services behind the HTTP routes. History may be nil.
type Deps struct {
	Tutor     *services.TutorService
	Search    *services.SearchService
	Documents *services.DocumentService
	Summaries *services.DocumentSummarizer
	History   *services.HistoryService
	Log       *logger.Logger
}

func NewServer(deps Deps) *Server {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	s := &Server{
		mux:       http.NewServeMux(),
		tutor:     deps.Tutor,
		search:    deps.Search,
		documents: deps.Documents,
		summaries: deps.Summaries,
		history:   deps.History,
		jobs:      NewJobManager(time.Hour),
		log:       log,
	}
	s.routes()
	return s
}

// Handler returns the API routes behind CORS and request logging.
func (s *Server) Handler() http.Handler {
	return withRequestLogging(s.log, withCORS(s.mux))
}

func (s *Server) routes() {
	s.mux.HandleFunc("/tutor", s.handleTutor)
	s.mux.HandleFunc("/quiz", s.handleQuiz)
	s.mux.HandleFunc("/api/health", s.handleHealth)
	s.mux.HandleFunc("/api/search", s.handleSearch)
	s.mux.HandleFunc("/api/pdf-summarize", s.handlePDFSummarize)
	s.mux.HandleFunc("/api/pdf-summarize/jobs", s.handleJobs)
	s.mux.HandleFunc("/api/pdf-summarize/jobs/", s.handleJobStatus)
	s.mux.HandleFunc("/api/history", s.handleHistory)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleTutor(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var req models.TutorRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	start := time.Now()
	answer, err := s.tutor.Respond(r.Context(), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.record(r.Context(), models.HistoryEntry{
		Kind:     models.HistoryTutor,
		Subject:  req.Subject,
		Input:    req.Question,
		Output:   answer,
		Duration: time.Since(start),
	})
	writeJSON(w, http.StatusOK, map[string]string{"html": services.RenderMarkdown(answer)})
}

func (s *Server) handleQuiz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var req models.QuizRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	start := time.Now()
	questions, err := s.tutor.GenerateQuiz(r.Context(), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	md := services.QuizMarkdown(questions)
	s.record(r.Context(), models.HistoryEntry{
		Kind:     models.HistoryQuiz,
		Subject:  req.Subject,
		Input:    fmt.Sprintf("%s (%d questions)", req.Level, len(questions)),
		Output:   md,
		Duration: time.Since(start),
	})
	writeJSON(w, http.StatusOK, map[string]string{"html": services.RenderMarkdown(md)})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var req models.SearchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	start := time.Now()
	answer, err := s.search.Search(r.Context(), req.Source, req.Query)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.record(r.Context(), models.HistoryEntry{
		Kind:     models.HistorySearch,
		Subject:  strings.ToLower(strings.TrimSpace(req.Source)),
		Input:    req.Query,
		Output:   answer,
		Duration: time.Since(start),
	})
	writeJSON(w, http.StatusOK, map[string]string{"html": services.RenderMarkdown(answer)})
}

func (s *Server) handlePDFSummarize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	if form := r.MultipartForm; form != nil {
		defer form.RemoveAll()
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no file uploaded")
		return
	}
	defer file.Close()

	if err := services.ValidatePDFName(header.Filename); err != nil {
		s.fail(w, r, err)
		return
	}

	start := time.Now()
	summary, err := s.summaries.SummarizeUpload(r.Context(), header.Filename, file, nil)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.record(r.Context(), models.HistoryEntry{
		Kind:     models.HistoryPDF,
		Subject:  header.Filename,
		Input:    fmt.Sprintf("%d pages", summary.Pages),
		Output:   summary.Summary,
		Duration: time.Since(start),
	})
	writeJSON(w, http.StatusOK, map[string]string{"summary": summary.Summary})
}

func (s *Server) handleJobs(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/api/pdf-summarize/jobs" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	s.handleCreateSummaryJob(w, r)
}

type stagedFile struct {
	name    string
	path    string
	cleanup func()
}

func (s *Server) handleCreateSummaryJob(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	form := r.MultipartForm
	if form == nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer form.RemoveAll()

	files := form.File["files"]
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, "no files uploaded")
		return
	}
	for _, file := range files {
		if err := services.ValidatePDFName(file.Filename); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("%s: %v", file.Filename, err))
			return
		}
	}

	// Multipart temp files do not outlive the request, so copy them out first.
	staged := make([]stagedFile, 0, len(files))
	fileNames := make([]string, 0, len(files))
	for _, file := range files {
		src, err := file.Open()
		if err != nil {
			removeStaged(staged)
			s.fail(w, r, fmt.Errorf("open file %s: %w", file.Filename, err))
			return
		}
		path, cleanup, err := s.documents.Stage(file.Filename, src)
		src.Close()
		if err != nil {
			removeStaged(staged)
			s.fail(w, r, err)
			return
		}
		staged = append(staged, stagedFile{name: file.Filename, path: path, cleanup: cleanup})
		fileNames = append(fileNames, file.Filename)
	}

	jobID, snapshot := s.jobs.CreateJob(fileNames)
	go s.runSummaryJob(jobID, staged)

	writeJSON(w, http.StatusAccepted, snapshot)
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	jobID := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/pdf-summarize/jobs/"), "/")
	if jobID == "" {
		http.NotFound(w, r)
		return
	}

	job, ok := s.jobs.GetJob(jobID)
	if !ok {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) runSummaryJob(jobID string, files []stagedFile) {
	defer removeStaged(files)

	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()
	log := s.log.With("job_id", jobID)

	s.jobs.MarkProcessing(jobID)
	for idx, file := range files {
		s.jobs.MarkFileStarted(jobID, idx)
		progress := func(step, message string, current, total int) {
			s.jobs.UpdateFileProgress(jobID, idx, step, message, current, total)
		}

		start := time.Now()
		summary, err := s.summaries.SummarizeFile(ctx, file.path, progress)
		file.cleanup()
		if err != nil {
			log.Warn("summary job file failed", "file", file.name, "error", err)
			s.jobs.MarkFileError(jobID, idx, err.Error())
			continue
		}

		s.jobs.MarkFileComplete(jobID, idx, SummaryResult{
			Name:          file.name,
			Pages:         summary.Pages,
			Chunks:        summary.Chunks,
			DroppedChunks: summary.DroppedChunks,
			Summary:       summary.Summary,
		})
		s.record(ctx, models.HistoryEntry{
			Kind:     models.HistoryPDF,
			Subject:  file.name,
			Input:    fmt.Sprintf("%d pages", summary.Pages),
			Output:   summary.Summary,
			Duration: time.Since(start),
		})
	}
	s.jobs.MarkCompleted(jobID)
}

func removeStaged(files []stagedFile) {
	for _, f := range files {
		f.cleanup()
	}
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	if s.history == nil {
		writeJSON(w, http.StatusOK, map[string]any{"history": []models.HistoryEntry{}})
		return
	}

	limit := services.DefaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	kind := models.HistoryKind(strings.ToLower(r.URL.Query().Get("kind")))
	switch kind {
	case "", models.HistoryTutor, models.HistoryQuiz, models.HistorySearch, models.HistoryPDF:
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown history kind %q", kind))
		return
	}

	entries, err := s.history.Recent(r.Context(), kind, limit)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if entries == nil {
		entries = []models.HistoryEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"history": entries})
}

// record stores a history entry. Failures are logged and never reach the client.
func (s *Server) record(ctx context.Context, entry models.HistoryEntry) {
	if s.history == nil {
		return
	}
	if err := s.history.Record(context.WithoutCancel(ctx), &entry); err != nil {
		s.log.Warn("record history failed", "kind", entry.Kind, "error", err)
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", "path", r.URL.Path, "status", status, "error", err)
	} else {
		s.log.Debug("request rejected", "path", r.URL.Path, "status", status, "error", err)
	}
	writeError(w, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrUnknownSource):
		return http.StatusNotFound
	case errors.Is(err, services.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrAIUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}
