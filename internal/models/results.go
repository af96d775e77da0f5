package models

import (
	"time"
)

type Step string

const (
	StepIdle      Step = "idle"
	StepInitiated Step = "initiated"
	StepStarted   Step = "started"
	StepComparing Step = "comparing"
	StepCompleted Step = "completed"
	StepFailed    Step = "failed"
)

// Report statuses
const (
	ReportPending   = "pending"
	ReportCompleted = "completed"
	ReportFailed    = "failed"
)

// PairResult is one flagged pair of a comparison report
type PairResult struct {
	SubjectID     string  `bson:"subjectId" json:"subjectId"`
	SubjectName   string  `bson:"subjectName" json:"subjectName"`
	CandidateID   string  `bson:"candidateId" json:"candidateId"`
	CandidateName string  `bson:"candidateName" json:"candidateName"`
	Score         float64 `bson:"score" json:"score"`
	Percent       int     `bson:"percent" json:"percent"`
	Severity      string  `bson:"severity" json:"severity"`
}

// ComparisonReport represents an all-pairs similarity report of a scope
type ComparisonReport struct {
	ID             string       `bson:"_id" json:"id"`
	ScopeID        string       `bson:"scopeId" json:"scopeId"`
	Status         string       `bson:"status" json:"status"` // pending, completed, failed
	Threshold      float64      `bson:"threshold" json:"threshold"`
	TotalDocuments int          `bson:"totalDocuments" json:"totalDocuments"`
	TotalPairs     int          `bson:"totalPairs" json:"totalPairs"`
	Pairs          []PairResult `bson:"pairs" json:"pairs"`
	HighPairs      int          `bson:"highPairs" json:"highPairs"`
	MediumPairs    int          `bson:"mediumPairs" json:"mediumPairs"`
	LowPairs       int          `bson:"lowPairs" json:"lowPairs"`
	Error          string       `bson:"error,omitempty" json:"error,omitempty"`
	CreatedAt      time.Time    `bson:"createdAt" json:"createdAt"`
	CompletedAt    *time.Time   `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
}

// ComputeRequest represents a request to compare a scope
type ComputeRequest struct {
	Threshold *float64 `json:"threshold"`
}

// ComputeResponse represents the response from compare endpoint
type ComputeResponse struct {
	Step     Step   `json:"step"`
	ScopeID  string `json:"scopeId"`
	ReportID string `json:"reportId"`
}

// StatusResponse reports the step of the latest compare run
type StatusResponse struct {
	Step    Step   `json:"step"`
	ScopeID string `json:"scopeId"`
}

// StatsResponse is the severity distribution of a scope's match records
type StatsResponse struct {
	ScopeID string `json:"scopeId"`
	Total   int    `json:"total"`
	High    int    `json:"high"`
	Medium  int    `json:"medium"`
	Low     int    `json:"low"`
}
