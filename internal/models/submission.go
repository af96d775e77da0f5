package models

import (
	"time"
)

// Extraction methods recorded on a submission
const (
	ExtractionPDF  = "pdf"
	ExtractionOCR  = "ocr"
	ExtractionText = "text"
	ExtractionNone = "none"
)

// Submission represents an uploaded document stored in MongoDB together with
// the match record computed when it was uploaded
type Submission struct {
	ID              string    `bson:"_id" json:"id"`
	ScopeID         string    `bson:"scopeId" json:"scopeId"`
	DisplayName     string    `bson:"displayName" json:"displayName"`
	Text            string    `bson:"text" json:"-"`
	UploadedAt      time.Time `bson:"uploadedAt" json:"uploadedAt"`
	MostSimilarID   *string   `bson:"mostSimilarId" json:"mostSimilarId"`
	MostSimilarName string    `bson:"mostSimilarName" json:"mostSimilarName"`
	SimilarityRatio float64   `bson:"similarityRatio" json:"similarityRatio"`
	Severity        string    `bson:"severity" json:"severity"` // low, medium, high
	Extraction      string    `bson:"extraction" json:"extraction"`
	CreatedAt       time.Time `bson:"createdAt" json:"createdAt"`
}

// SubmissionEvent represents a submission read from the Redis intake stream
type SubmissionEvent struct {
	ID          string    `json:"id"`
	ScopeID     string    `json:"scopeId"`
	DisplayName string    `json:"displayName"`
	Text        string    `json:"text"`
	UploadedAt  time.Time `json:"uploadedAt"`
}

// CreateSubmissionRequest is the JSON body for a text submission
type CreateSubmissionRequest struct {
	DisplayName string `json:"displayName" binding:"required"`
	Text        string `json:"text"`
}

// SubmissionResponse wraps a stored submission with its rendered band
type SubmissionResponse struct {
	*Submission
	Percent int    `json:"percent"`
	Color   string `json:"color"`
}

// SimilarityRequest compares two raw texts without touching storage
type SimilarityRequest struct {
	A string `json:"a"`
	B string `json:"b"`
}

// SimilarityResponse is the score of a SimilarityRequest
type SimilarityResponse struct {
	Score    float64 `json:"score"`
	Percent  int     `json:"percent"`
	Severity string  `json:"severity"`
}
