package api

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/Duy-Thong/CopyCheck/internal/config"
	"github.com/Duy-Thong/CopyCheck/internal/models"
	"github.com/Duy-Thong/CopyCheck/internal/plagiarism"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const testSecret = "test-secret"

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:            testSecret,
		JWTIssuer:            "copycheck",
		RateLimitRPS:         1000,
		MaxConcurrentCompute: 2,
		ComputationTimeout:   time.Minute,
		CompareThreshold:     0.7,
		MaxUploadBytes:       1 << 20,
	}
}

func signToken(secret string, claims jwt.MapClaims) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		panic(err)
	}
	return signed
}

func validToken() string {
	return signToken(testSecret, jwt.MapClaims{
		"sub":     "teacher-1",
		"api_key": "key-1",
		"iss":     "copycheck",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
}

type fakeSubmissions struct {
	mu          sync.Mutex
	submissions []*models.Submission
	err         error
}

func (f *fakeSubmissions) byScope(scopeID string) []*models.Submission {
	var out []*models.Submission
	for _, s := range f.submissions {
		if s.ScopeID == scopeID {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].UploadedAt.Equal(out[j].UploadedAt) {
			return out[i].UploadedAt.Before(out[j].UploadedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (f *fakeSubmissions) GetCorpusByScopeID(ctx context.Context, scopeID string) ([]plagiarism.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var docs []plagiarism.Document
	for _, s := range f.byScope(scopeID) {
		docs = append(docs, plagiarism.Document{ID: s.ID, ScopeID: s.ScopeID, DisplayName: s.DisplayName, Text: s.Text, UploadedAt: s.UploadedAt})
	}
	return docs, nil
}

func (f *fakeSubmissions) GetSubmissionsByScopeID(ctx context.Context, scopeID string) ([]*models.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.byScope(scopeID), nil
}

func (f *fakeSubmissions) GetSubmissionsByScopeIDAndSeverity(ctx context.Context, scopeID, severity string) ([]*models.Submission, error) {
	all, err := f.GetSubmissionsByScopeID(ctx, scopeID)
	if err != nil {
		return nil, err
	}
	var out []*models.Submission
	for _, s := range all {
		if s.Severity == severity {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSubmissions) GetSubmission(ctx context.Context, scopeID, id string) (*models.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.submissions {
		if s.ScopeID == scopeID && s.ID == id {
			return s, nil
		}
	}
	return nil, nil
}

func (f *fakeSubmissions) CountSubmissionsByScopeID(ctx context.Context, scopeID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	return int64(len(f.byScope(scopeID))), nil
}

type fakeReports struct {
	mu      sync.Mutex
	reports []models.ComparisonReport
}

func (f *fakeReports) InsertReport(ctx context.Context, report *models.ComparisonReport) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	report.CreatedAt = time.Now()
	f.reports = append(f.reports, *report)
	return nil
}

func (f *fakeReports) UpdateReport(ctx context.Context, report *models.ComparisonReport) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.reports {
		if f.reports[i].ID == report.ID {
			f.reports[i] = *report
			return nil
		}
	}
	return errors.New("report not found")
}

func (f *fakeReports) GetLatestReportByScopeID(ctx context.Context, scopeID string) (*models.ComparisonReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.reports) - 1; i >= 0; i-- {
		if f.reports[i].ScopeID == scopeID {
			report := f.reports[i]
			return &report, nil
		}
	}
	return nil, nil
}

type fakeStatus struct {
	mu    sync.Mutex
	steps map[string][]models.Step
}

func newFakeStatus() *fakeStatus {
	return &fakeStatus{steps: make(map[string][]models.Step)}
}

func (f *fakeStatus) UpdateStatus(ctx context.Context, scopeID string, step models.Step) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.steps[scopeID] = append(f.steps[scopeID], step)
	return nil
}

func (f *fakeStatus) GetStatus(ctx context.Context, scopeID string) (models.Step, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	steps := f.steps[scopeID]
	if len(steps) == 0 {
		return models.StepIdle, nil
	}
	return steps[len(steps)-1], nil
}

func (f *fakeStatus) history(scopeID string) []models.Step {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Step(nil), f.steps[scopeID]...)
}

// fakeIntake scores against fakeSubmissions the way the preprocess service does
type fakeIntake struct {
	store    *fakeSubmissions
	uploads  []string
	failWith error
}

func (f *fakeIntake) ProcessUpload(ctx context.Context, scopeID, filename string, data []byte) (*models.Submission, error) {
	f.uploads = append(f.uploads, filename)
	return f.ProcessSubmission(ctx, &models.SubmissionEvent{ScopeID: scopeID, DisplayName: filename, Text: string(data)})
}

func (f *fakeIntake) ProcessSubmission(ctx context.Context, event *models.SubmissionEvent) (*models.Submission, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	corpus, _ := f.store.GetCorpusByScopeID(ctx, event.ScopeID)
	match := plagiarism.FindMostSimilar(event.Text, corpus)

	submission := &models.Submission{
		ID:              uuid.New().String(),
		ScopeID:         event.ScopeID,
		DisplayName:     event.DisplayName,
		Text:            event.Text,
		UploadedAt:      time.Now(),
		MostSimilarID:   match.MostSimilarID,
		MostSimilarName: match.MostSimilarName,
		SimilarityRatio: match.SimilarityRatio,
		Severity:        string(plagiarism.Classify(match.SimilarityRatio)),
		Extraction:      models.ExtractionText,
	}

	f.store.mu.Lock()
	f.store.submissions = append(f.store.submissions, submission)
	f.store.mu.Unlock()
	return submission, nil
}
