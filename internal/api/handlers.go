package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/Duy-Thong/CopyCheck/internal/config"
	"github.com/Duy-Thong/CopyCheck/internal/metrics"
	"github.com/Duy-Thong/CopyCheck/internal/models"
	"github.com/Duy-Thong/CopyCheck/internal/plagiarism"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// SubmissionStore reads stored submissions
type SubmissionStore interface {
	plagiarism.CorpusLoader
	GetSubmissionsByScopeID(ctx context.Context, scopeID string) ([]*models.Submission, error)
	GetSubmissionsByScopeIDAndSeverity(ctx context.Context, scopeID, severity string) ([]*models.Submission, error)
	GetSubmission(ctx context.Context, scopeID, id string) (*models.Submission, error)
	CountSubmissionsByScopeID(ctx context.Context, scopeID string) (int64, error)
}

// ReportStore reads and writes comparison reports
type ReportStore interface {
	plagiarism.ReportStore
	InsertReport(ctx context.Context, report *models.ComparisonReport) error
	GetLatestReportByScopeID(ctx context.Context, scopeID string) (*models.ComparisonReport, error)
}

// StatusStore tracks compare run steps
type StatusStore interface {
	UpdateStatus(ctx context.Context, scopeID string, step models.Step) error
	GetStatus(ctx context.Context, scopeID string) (models.Step, error)
}

// Intake extracts, scans and stores new submissions
type Intake interface {
	ProcessUpload(ctx context.Context, scopeID, filename string, data []byte) (*models.Submission, error)
	ProcessSubmission(ctx context.Context, event *models.SubmissionEvent) (*models.Submission, error)
}

// Handler holds dependencies for handlers
type Handler struct {
	cfg            *config.Config
	submissions    SubmissionStore
	reports        ReportStore
	status         StatusStore
	intake         Intake
	detector       *plagiarism.Detector
	workerPool     *plagiarism.WorkerPool
	computeSem     chan struct{} // Semaphore for bounded concurrency
	computeTimeout time.Duration
}

// Dependencies groups what the handlers need
type Dependencies struct {
	Submissions SubmissionStore
	Reports     ReportStore
	Status      StatusStore
	Intake      Intake
	Detector    *plagiarism.Detector
	WorkerPool  *plagiarism.WorkerPool
}

// NewHandler creates a new handler
func NewHandler(cfg *config.Config, deps Dependencies) *Handler {
	detector := deps.Detector
	if detector == nil {
		detector = plagiarism.DefaultDetector
	}

	return &Handler{
		cfg:            cfg,
		submissions:    deps.Submissions,
		reports:        deps.Reports,
		status:         deps.Status,
		intake:         deps.Intake,
		detector:       detector,
		workerPool:     deps.WorkerPool,
		computeSem:     make(chan struct{}, cfg.MaxConcurrentCompute),
		computeTimeout: cfg.ComputationTimeout,
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
	})
}

func respondError(c *gin.Context, status int, msg, code string) {
	c.JSON(status, ErrorResponse{
		Error: msg,
		Code:  code,
	})
}

func toResponse(s *models.Submission) models.SubmissionResponse {
	return models.SubmissionResponse{
		Submission: s,
		Percent:    plagiarism.Percent(s.SimilarityRatio),
		Color:      plagiarism.Severity(s.Severity).Color(),
	}
}

// CreateSubmission accepts a multipart "file" upload or a JSON text body
func (h *Handler) CreateSubmission(c *gin.Context) {
	scopeID := c.Param("scopeId")
	ctx := c.Request.Context()

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.cfg.MaxUploadBytes)

	var (
		submission *models.Submission
		err        error
	)

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fileHeader, ferr := c.FormFile("file")
		if ferr != nil {
			respondError(c, http.StatusBadRequest, "file is required", "INVALID_REQUEST")
			return
		}
		data, rerr := readUpload(fileHeader)
		if rerr != nil {
			respondError(c, http.StatusBadRequest, "Failed to read upload", "INVALID_REQUEST")
			return
		}
		submission, err = h.intake.ProcessUpload(ctx, scopeID, fileHeader.Filename, data)
	} else {
		var req models.CreateSubmissionRequest
		if berr := c.ShouldBindJSON(&req); berr != nil {
			respondError(c, http.StatusBadRequest, "Invalid request body", "INVALID_REQUEST")
			return
		}
		submission, err = h.intake.ProcessSubmission(ctx, &models.SubmissionEvent{
			ScopeID:     scopeID,
			DisplayName: req.DisplayName,
			Text:        req.Text,
		})
	}

	if err != nil {
		log.Error().Err(err).Str("scopeId", scopeID).Msg("Failed to process submission")
		respondError(c, http.StatusInternalServerError, "Failed to process submission", "INTERNAL_ERROR")
		return
	}

	c.JSON(http.StatusCreated, toResponse(submission))
}

func readUpload(fileHeader *multipart.FileHeader) ([]byte, error) {
	f, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// ListSubmissions lists a scope in corpus order, optionally by severity
func (h *Handler) ListSubmissions(c *gin.Context) {
	scopeID := c.Param("scopeId")
	ctx := c.Request.Context()

	var (
		submissions []*models.Submission
		err         error
	)
	if raw := c.Query("severity"); raw != "" {
		severity, ok := plagiarism.ParseSeverity(raw)
		if !ok {
			respondError(c, http.StatusBadRequest, "severity must be one of low, medium, high", "INVALID_REQUEST")
			return
		}
		submissions, err = h.submissions.GetSubmissionsByScopeIDAndSeverity(ctx, scopeID, string(severity))
	} else {
		submissions, err = h.submissions.GetSubmissionsByScopeID(ctx, scopeID)
	}
	if err != nil {
		log.Error().Err(err).Str("scopeId", scopeID).Msg("Failed to list submissions")
		respondError(c, http.StatusInternalServerError, "Failed to list submissions", "INTERNAL_ERROR")
		return
	}

	items := make([]models.SubmissionResponse, 0, len(submissions))
	for _, s := range submissions {
		items = append(items, toResponse(s))
	}

	c.JSON(http.StatusOK, gin.H{
		"scopeId":     scopeID,
		"submissions": items,
	})
}

func (h *Handler) GetSubmission(c *gin.Context) {
	scopeID := c.Param("scopeId")
	id := c.Param("id")

	submission, err := h.submissions.GetSubmission(c.Request.Context(), scopeID, id)
	if err != nil {
		log.Error().Err(err).Str("scopeId", scopeID).Str("submissionId", id).Msg("Failed to get submission")
		respondError(c, http.StatusInternalServerError, "Failed to get submission", "INTERNAL_ERROR")
		return
	}
	if submission == nil {
		respondError(c, http.StatusNotFound, "Submission not found", "NOT_FOUND")
		return
	}

	c.JSON(http.StatusOK, toResponse(submission))
}

// Stats returns the severity distribution of the scope's match records
func (h *Handler) Stats(c *gin.Context) {
	scopeID := c.Param("scopeId")

	submissions, err := h.submissions.GetSubmissionsByScopeID(c.Request.Context(), scopeID)
	if err != nil {
		log.Error().Err(err).Str("scopeId", scopeID).Msg("Failed to load submissions for stats")
		respondError(c, http.StatusInternalServerError, "Failed to compute statistics", "INTERNAL_ERROR")
		return
	}

	ratios := make([]float64, 0, len(submissions))
	for _, s := range submissions {
		ratios = append(ratios, s.SimilarityRatio)
	}
	counts := plagiarism.CountSeverities(ratios)

	c.JSON(http.StatusOK, models.StatsResponse{
		ScopeID: scopeID,
		Total:   counts.Total(),
		High:    counts.High,
		Medium:  counts.Medium,
		Low:     counts.Low,
	})
}

// Similarity scores two texts without touching storage
func (h *Handler) Similarity(c *gin.Context) {
	var req models.SimilarityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body", "INVALID_REQUEST")
		return
	}

	score := h.detector.Score(req.A, req.B)
	c.JSON(http.StatusOK, models.SimilarityResponse{
		Score:    score,
		Percent:  plagiarism.Percent(score),
		Severity: string(plagiarism.Classify(score)),
	})
}

func (h *Handler) Compute(c *gin.Context) {
	scopeID := c.Param("scopeId")

	var req models.ComputeRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "Invalid request body", "INVALID_REQUEST")
			return
		}
	}

	threshold, err := h.resolveThreshold(req)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error(), "INVALID_THRESHOLD")
		return
	}

	// Edge Case: empty scope
	ctx := c.Request.Context()
	count, err := h.submissions.CountSubmissionsByScopeID(ctx, scopeID)
	if err != nil {
		log.Error().Err(err).Str("scopeId", scopeID).Msg("Failed to count submissions")
		respondError(c, http.StatusInternalServerError, "Failed to check submissions", "INTERNAL_ERROR")
		return
	}
	if count == 0 {
		respondError(c, http.StatusBadRequest, "No submissions found for scopeId", "SCOPE_EMPTY")
		return
	}

	// Acquire semaphore (bounded concurrency)
	select {
	case h.computeSem <- struct{}{}:
	case <-ctx.Done():
		respondError(c, http.StatusRequestTimeout, "Request cancelled", "REQUEST_TIMEOUT")
		return
	}

	report := &models.ComparisonReport{
		ID:        uuid.New().String(),
		ScopeID:   scopeID,
		Status:    models.ReportPending,
		Threshold: threshold,
		Pairs:     []models.PairResult{},
	}
	if err := h.reports.InsertReport(ctx, report); err != nil {
		<-h.computeSem
		log.Error().Err(err).Str("scopeId", scopeID).Msg("Failed to create pending report")
		respondError(c, http.StatusInternalServerError, "Failed to create report", "INTERNAL_ERROR")
		return
	}

	if err := h.status.UpdateStatus(ctx, scopeID, models.StepInitiated); err != nil {
		log.Warn().Err(err).Str("scopeId", scopeID).Msg("Failed to update initiated status")
	}

	c.JSON(http.StatusAccepted, models.ComputeResponse{
		Step:     models.StepInitiated,
		ScopeID:  scopeID,
		ReportID: report.ID,
	})

	go h.processComputation(report)
}

func (h *Handler) resolveThreshold(req models.ComputeRequest) (float64, error) {
	if req.Threshold == nil {
		return h.cfg.CompareThreshold, nil
	}
	threshold := *req.Threshold
	if threshold < 0 || threshold > 1 {
		return 0, fmt.Errorf("threshold must be between 0 and 1")
	}
	return threshold, nil
}

// processComputation runs the comparison detached from the request
func (h *Handler) processComputation(report *models.ComparisonReport) {
	defer func() { <-h.computeSem }()

	ctx, cancel := context.WithTimeout(context.Background(), h.computeTimeout)
	defer cancel()

	scopeID := report.ScopeID
	h.setStatus(ctx, scopeID, models.StepStarted)
	h.setStatus(ctx, scopeID, models.StepComparing)

	err := plagiarism.ComputeReport(ctx, report, h.submissions, h.reports, h.workerPool, plagiarism.ReportOptions{
		Detector:        h.detector,
		Threshold:       report.Threshold,
		IndexedMinDocs:  h.cfg.IndexedCompareMinDocs,
		ParallelMinDocs: h.cfg.ParallelCompareMinDocs,
	})
	if err != nil {
		log.Error().Err(err).Str("scopeId", scopeID).Msg("Comparison failed")
		metrics.CompareRuns.WithLabelValues(models.ReportFailed).Inc()
		h.markFailed(ctx, report, err)
		h.setStatus(context.Background(), scopeID, models.StepFailed)
		return
	}

	metrics.CompareRuns.WithLabelValues(models.ReportCompleted).Inc()
	h.setStatus(ctx, scopeID, models.StepCompleted)
}

func (h *Handler) setStatus(ctx context.Context, scopeID string, step models.Step) {
	if err := h.status.UpdateStatus(ctx, scopeID, step); err != nil {
		log.Warn().Err(err).Str("scopeId", scopeID).Str("step", string(step)).Msg("Failed to update status")
	}
}

func (h *Handler) markFailed(ctx context.Context, report *models.ComparisonReport, cause error) {
	// The run context may be the thing that expired
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(ctx.Err(), context.Canceled) {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
	}

	report.Status = models.ReportFailed
	report.Error = cause.Error()
	report.Pairs = []models.PairResult{}
	if err := h.reports.UpdateReport(ctx, report); err != nil {
		log.Error().Err(err).Str("scopeId", report.ScopeID).Msg("Failed to update failed report")
	}
}

func (h *Handler) ComputeStatus(c *gin.Context) {
	scopeID := c.Param("scopeId")

	step, err := h.status.GetStatus(c.Request.Context(), scopeID)
	if err != nil {
		log.Error().Err(err).Str("scopeId", scopeID).Msg("Failed to read status")
		respondError(c, http.StatusInternalServerError, "Failed to read status", "INTERNAL_ERROR")
		return
	}

	c.JSON(http.StatusOK, models.StatusResponse{
		Step:    step,
		ScopeID: scopeID,
	})
}

func (h *Handler) LatestReport(c *gin.Context) {
	scopeID := c.Param("scopeId")

	report, err := h.reports.GetLatestReportByScopeID(c.Request.Context(), scopeID)
	if err != nil {
		log.Error().Err(err).Str("scopeId", scopeID).Msg("Failed to get latest report")
		respondError(c, http.StatusInternalServerError, "Failed to get report", "INTERNAL_ERROR")
		return
	}
	if report == nil {
		respondError(c, http.StatusNotFound, "No report found for scopeId", "NOT_FOUND")
		return
	}

	c.JSON(http.StatusOK, report)
}
