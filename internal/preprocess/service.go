package preprocess

import (
	"context"
	"fmt"
	"time"

	"github.com/Duy-Thong/CopyCheck/internal/metrics"
	"github.com/Duy-Thong/CopyCheck/internal/models"
	"github.com/Duy-Thong/CopyCheck/internal/plagiarism"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// SubmissionStore is the persistence the intake path needs
type SubmissionStore interface {
	GetCorpusByScopeID(ctx context.Context, scopeID string) ([]plagiarism.Document, error)
	GetSubmission(ctx context.Context, scopeID, id string) (*models.Submission, error)
	InsertSubmission(ctx context.Context, submission *models.Submission) error
}

type Service struct {
	detector  *plagiarism.Detector
	extractor *Extractor
	store     SubmissionStore
}

func NewService(detector *plagiarism.Detector, extractor *Extractor, store SubmissionStore) *Service {
	return &Service{
		detector:  detector,
		extractor: extractor,
		store:     store,
	}
}

// ProcessUpload extracts the text of an uploaded file and processes it
func (s *Service) ProcessUpload(ctx context.Context, scopeID, filename string, data []byte) (*models.Submission, error) {
	text, method := s.extractor.Extract(ctx, filename, data)

	return s.process(ctx, &models.SubmissionEvent{
		ScopeID:     scopeID,
		DisplayName: filename,
		Text:        text,
	}, method)
}

// ProcessSubmission scans already-extracted text against its scope and
// stores it with the resulting match record
func (s *Service) ProcessSubmission(ctx context.Context, event *models.SubmissionEvent) (*models.Submission, error) {
	return s.process(ctx, event, models.ExtractionText)
}

func (s *Service) process(ctx context.Context, event *models.SubmissionEvent, extraction string) (*models.Submission, error) {
	if event.ScopeID == "" {
		return nil, fmt.Errorf("scopeId is required")
	}

	// Re-delivered stream messages keep their first match record
	if event.ID != "" {
		existing, err := s.store.GetSubmission(ctx, event.ScopeID, event.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check existing submission: %w", err)
		}
		if existing != nil {
			log.Debug().
				Str("scopeId", event.ScopeID).
				Str("submissionId", event.ID).
				Msg("Submission already processed")
			return existing, nil
		}
	}

	submissionID := event.ID
	if submissionID == "" {
		submissionID = uuid.New().String()
	}
	uploadedAt := event.UploadedAt
	if uploadedAt.IsZero() {
		uploadedAt = time.Now().UTC()
	}

	start := time.Now()

	corpus, err := s.store.GetCorpusByScopeID(ctx, event.ScopeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load corpus: %w", err)
	}
	corpus = plagiarism.ExcludeDocument(corpus, submissionID)

	match := s.detector.FindMostSimilar(event.Text, corpus)
	severity := plagiarism.Classify(match.SimilarityRatio)
	if match.HasMatch() && match.SimilarityRatio == 0 {
		log.Debug().
			Str("submissionId", submissionID).
			Str("mostSimilarId", *match.MostSimilarID).
			Msg("No shared tokens with the scope, reporting the earliest document at 0%")
	}

	metrics.ScanDuration.Observe(time.Since(start).Seconds())
	metrics.SubmissionsScanned.WithLabelValues(string(severity)).Inc()

	submission := &models.Submission{
		ID:              submissionID,
		ScopeID:         event.ScopeID,
		DisplayName:     event.DisplayName,
		Text:            event.Text,
		UploadedAt:      uploadedAt,
		MostSimilarID:   match.MostSimilarID,
		MostSimilarName: match.MostSimilarName,
		SimilarityRatio: match.SimilarityRatio,
		Severity:        string(severity),
		Extraction:      extraction,
	}

	if err := s.store.InsertSubmission(ctx, submission); err != nil {
		return nil, fmt.Errorf("failed to store submission: %w", err)
	}

	log.Info().
		Str("scopeId", submission.ScopeID).
		Str("submissionId", submission.ID).
		Int("corpus", len(corpus)).
		Float64("similarity", submission.SimilarityRatio).
		Str("severity", submission.Severity).
		Msg("Submission scanned")

	return submission, nil
}
