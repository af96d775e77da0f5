package plagiarism

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/Duy-Thong/CopyCheck/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCorpusLoader struct {
	corpus []Document
	err    error
}

func (f *fakeCorpusLoader) GetCorpusByScopeID(ctx context.Context, scopeID string) ([]Document, error) {
	return f.corpus, f.err
}

type fakeReportStore struct {
	updated []*models.ComparisonReport
	err     error
}

func (f *fakeReportStore) UpdateReport(ctx context.Context, report *models.ComparisonReport) error {
	if f.err != nil {
		return f.err
	}
	copied := *report
	f.updated = append(f.updated, &copied)
	return nil
}

func generatedCorpus(n int) []Document {
	corpus := make([]Document, n)
	for i := range corpus {
		// neighbours share most of their words
		corpus[i] = doc(fmt.Sprintf("d%03d", i), fmt.Sprintf("w%d w%d w%d w%d shared", i, i+1, i+2, i+3), i)
	}
	return corpus
}

func TestCompareAllParallel_MatchesSequential(t *testing.T) {
	pool := NewWorkerPool(context.Background(), 4)
	defer pool.Close()

	corpus := generatedCorpus(40)
	for _, threshold := range []float64{0, 0.3, 0.5} {
		results, err := DefaultDetector.CompareAllParallel(context.Background(), pool, corpus, threshold)
		require.NoError(t, err)
		assert.Equal(t, CompareAll(corpus, threshold), results, "threshold %v", threshold)
	}
}

func TestCompareAllParallel_ClosedPool(t *testing.T) {
	pool := NewWorkerPool(context.Background(), 1)
	pool.Close()

	_, err := DefaultDetector.CompareAllParallel(context.Background(), pool, generatedCorpus(3), 0.1)
	assert.Error(t, err)
}

func TestCompareAllParallel_CancelledContext(t *testing.T) {
	pool := NewWorkerPool(context.Background(), 2)
	defer pool.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := DefaultDetector.CompareAllParallel(ctx, pool, generatedCorpus(5), 0.1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestComputeReport(t *testing.T) {
	loader := &fakeCorpusLoader{corpus: threeDocCorpus()}
	store := &fakeReportStore{}
	report := &models.ComparisonReport{ID: "r1", ScopeID: "class-1", Status: models.ReportPending}

	err := ComputeReport(context.Background(), report, loader, store, nil, ReportOptions{Threshold: 0.4})
	require.NoError(t, err)

	require.Len(t, store.updated, 1)
	stored := store.updated[0]
	assert.Equal(t, models.ReportCompleted, stored.Status)
	assert.Equal(t, 3, stored.TotalDocuments)
	assert.Equal(t, 3, stored.TotalPairs)
	assert.Equal(t, 0.4, stored.Threshold)
	require.Len(t, stored.Pairs, 2)
	assert.Equal(t, models.PairResult{
		SubjectID:     "A",
		SubjectName:   "A.pdf",
		CandidateID:   "B",
		CandidateName: "B.pdf",
		Score:         stored.Pairs[0].Score,
		Percent:       80,
		Severity:      "high",
	}, stored.Pairs[0])
	assert.Equal(t, "medium", stored.Pairs[1].Severity)
	assert.Equal(t, 1, stored.HighPairs)
	assert.Equal(t, 1, stored.MediumPairs)
	assert.Equal(t, 0, stored.LowPairs)
	assert.NotNil(t, stored.CompletedAt)
}

func TestComputeReport_Strategies(t *testing.T) {
	pool := NewWorkerPool(context.Background(), 2)
	defer pool.Close()

	corpus := generatedCorpus(12)
	want := CompareAll(corpus, 0.3)

	for name, opts := range map[string]ReportOptions{
		"sequential": {Threshold: 0.3},
		"indexed":    {Threshold: 0.3, IndexedMinDocs: 10},
		"parallel":   {Threshold: 0.3, ParallelMinDocs: 10},
	} {
		t.Run(name, func(t *testing.T) {
			store := &fakeReportStore{}
			report := &models.ComparisonReport{ID: "r-" + name, ScopeID: "class-1"}

			require.NoError(t, ComputeReport(context.Background(), report, &fakeCorpusLoader{corpus: corpus}, store, pool, opts))

			require.Len(t, store.updated, 1)
			require.Len(t, store.updated[0].Pairs, len(want))
			for i, r := range want {
				assert.Equal(t, r.SubjectID, store.updated[0].Pairs[i].SubjectID)
				assert.Equal(t, r.CandidateID, store.updated[0].Pairs[i].CandidateID)
			}
		})
	}
}

func TestComputeReport_EmptyScopeCompletes(t *testing.T) {
	store := &fakeReportStore{}
	report := &models.ComparisonReport{ID: "r1", ScopeID: "empty", Status: models.ReportPending}

	err := ComputeReport(context.Background(), report, &fakeCorpusLoader{}, store, nil, ReportOptions{Threshold: 0.7})
	require.NoError(t, err)

	require.Len(t, store.updated, 1)
	assert.Equal(t, models.ReportCompleted, store.updated[0].Status)
	assert.Equal(t, 0, store.updated[0].TotalDocuments)
	assert.Equal(t, 0, store.updated[0].TotalPairs)
	assert.NotNil(t, store.updated[0].Pairs)
	assert.Empty(t, store.updated[0].Pairs)
}

func TestComputeReport_Errors(t *testing.T) {
	report := &models.ComparisonReport{ID: "r1", ScopeID: "class-1"}

	err := ComputeReport(context.Background(), report, &fakeCorpusLoader{err: errors.New("mongo down")}, &fakeReportStore{}, nil, ReportOptions{})
	assert.ErrorContains(t, err, "mongo down")

	err = ComputeReport(context.Background(), report, &fakeCorpusLoader{corpus: threeDocCorpus()}, &fakeReportStore{err: errors.New("write failed")}, nil, ReportOptions{})
	assert.ErrorContains(t, err, "write failed")
}
