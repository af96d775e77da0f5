package plagiarism

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Duy-Thong/CopyCheck/internal/metrics"
	"github.com/Duy-Thong/CopyCheck/internal/models"
	"github.com/rs/zerolog/log"
)

// ErrPoolClosed is returned when the worker pool shuts down mid-comparison
var ErrPoolClosed = errors.New("worker pool closed")

// rowResult carries the flagged pairs of one outer-loop row
type rowResult struct {
	Row     int
	Results []SimilarityResult
}

// ComputationJob represents one outer-loop row of an all-pairs comparison
type ComputationJob struct {
	Row        int
	Corpus     []Document
	Sets       []TokenSet
	Threshold  float64
	ResultChan chan<- rowResult
}

// Execute executes the computation job
func (j *ComputationJob) Execute(ctx context.Context) error {
	row := compareRow(j.Corpus, j.Sets, j.Row, j.Threshold)

	select {
	case <-ctx.Done():
		return ctx.Err()
	case j.ResultChan <- rowResult{Row: j.Row, Results: row}:
		return nil
	}
}

// CompareAllParallel spreads the rows of CompareAll over the worker pool and
// reassembles them in row order, so the output equals CompareAll.
func (d *Detector) CompareAllParallel(
	ctx context.Context,
	pool *WorkerPool,
	corpus []Document,
	threshold float64,
) ([]SimilarityResult, error) {
	sets := d.tokenizeCorpus(corpus)

	// Buffered for every row so workers never block on a departed collector
	resultChan := make(chan rowResult, len(corpus))

	for i := range corpus {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		job := &ComputationJob{
			Row:        i,
			Corpus:     corpus,
			Sets:       sets,
			Threshold:  threshold,
			ResultChan: resultChan,
		}
		if err := pool.Submit(job); err != nil {
			return nil, fmt.Errorf("failed to submit row %d: %w", i, err)
		}
	}

	rows := make([][]SimilarityResult, len(corpus))
	for received := 0; received < len(corpus); received++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-pool.Done():
			return nil, ErrPoolClosed
		case r := <-resultChan:
			rows[r.Row] = r.Results
		}
	}

	results := make([]SimilarityResult, 0)
	for _, row := range rows {
		results = append(results, row...)
	}
	return results, nil
}

// CorpusLoader loads the ordered snapshot of a scope
type CorpusLoader interface {
	GetCorpusByScopeID(ctx context.Context, scopeID string) ([]Document, error)
}

// ReportStore persists comparison reports
type ReportStore interface {
	UpdateReport(ctx context.Context, report *models.ComparisonReport) error
}

// ReportOptions selects the comparison strategy for ComputeReport
type ReportOptions struct {
	Detector  *Detector
	Threshold float64
	// Corpora at least this large use the inverted-index pre-filter; 0 disables it
	IndexedMinDocs int
	// Corpora at least this large use the worker pool; 0 disables it
	ParallelMinDocs int
}

// ComputeReport runs the all-pairs comparison of a scope and completes the
// given pending report with its pairs. The report is persisted on success;
// on error the caller decides how to mark it failed.
func ComputeReport(
	ctx context.Context,
	report *models.ComparisonReport,
	corpusLoader CorpusLoader,
	reportStore ReportStore,
	workerPool *WorkerPool,
	opts ReportOptions,
) error {
	start := time.Now()
	scopeID := report.ScopeID

	detector := opts.Detector
	if detector == nil {
		detector = DefaultDetector
	}

	corpus, err := corpusLoader.GetCorpusByScopeID(ctx, scopeID)
	if err != nil {
		log.Error().Err(err).Str("scopeId", scopeID).Msg("Failed to load corpus")
		return fmt.Errorf("failed to load corpus: %w", err)
	}

	// An empty scope completes with no pairs
	if len(corpus) == 0 {
		log.Warn().Str("scopeId", scopeID).Msg("Comparing an empty scope")
	}

	var results []SimilarityResult
	strategy := "sequential"
	switch {
	case workerPool != nil && opts.ParallelMinDocs > 0 && len(corpus) >= opts.ParallelMinDocs:
		strategy = "parallel"
		results, err = detector.CompareAllParallel(ctx, workerPool, corpus, opts.Threshold)
		if err != nil {
			return fmt.Errorf("failed to compare in parallel: %w", err)
		}
	case opts.IndexedMinDocs > 0 && len(corpus) >= opts.IndexedMinDocs:
		strategy = "indexed"
		results = detector.CompareAllIndexed(corpus, opts.Threshold)
	default:
		results = detector.CompareAll(corpus, opts.Threshold)
	}

	names := make(map[string]string, len(corpus))
	for _, doc := range corpus {
		names[doc.ID] = doc.DisplayName
	}

	pairs := make([]models.PairResult, 0, len(results))
	var counts SeverityCounts
	for _, r := range results {
		counts.Add(r.Score)
		pairs = append(pairs, models.PairResult{
			SubjectID:     r.SubjectID,
			SubjectName:   names[r.SubjectID],
			CandidateID:   r.CandidateID,
			CandidateName: names[r.CandidateID],
			Score:         r.Score,
			Percent:       Percent(r.Score),
			Severity:      string(Classify(r.Score)),
		})
	}

	completedAt := time.Now()
	report.Status = models.ReportCompleted
	report.Threshold = opts.Threshold
	report.TotalDocuments = len(corpus)
	report.TotalPairs = len(corpus) * (len(corpus) - 1) / 2
	report.Pairs = pairs
	report.HighPairs = counts.High
	report.MediumPairs = counts.Medium
	report.LowPairs = counts.Low
	report.Error = ""
	report.CompletedAt = &completedAt

	if err := reportStore.UpdateReport(ctx, report); err != nil {
		return fmt.Errorf("failed to store report: %w", err)
	}

	metrics.CompareDuration.Observe(time.Since(start).Seconds())
	metrics.FlaggedPairs.Add(float64(len(pairs)))

	log.Info().
		Str("scopeId", scopeID).
		Str("strategy", strategy).
		Int("documents", len(corpus)).
		Int("flagged", len(pairs)).
		Int("high", counts.High).
		Float64("threshold", opts.Threshold).
		Dur("took", time.Since(start)).
		Msg("Comparison completed successfully")

	return nil
}
