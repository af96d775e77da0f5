package plagiarism

import (
	"sort"
	"time"
)

// Document is one submitted file's content as the engine sees it
type Document struct {
	ID          string
	ScopeID     string
	DisplayName string
	Text        string
	UploadedAt  time.Time
}

// MatchRecord is the snapshot result of scanning a new document against its
// scope. MostSimilarID is nil when the scope had no other documents. A
// non-empty scope always yields a match, so a ratio of 0 means the earliest
// document was picked with no shared tokens.
type MatchRecord struct {
	MostSimilarID   *string
	MostSimilarName string
	SimilarityRatio float64
}

// HasMatch reports whether a best match was found
func (m MatchRecord) HasMatch() bool {
	return m.MostSimilarID != nil
}

// SimilarityResult is the score of one unordered pair
type SimilarityResult struct {
	SubjectID   string
	CandidateID string
	Score       float64
}

// SortDocuments returns a copy of docs ordered by UploadedAt, then ID.
// This is the iteration order the scanner's tie-break relies on.
func SortDocuments(docs []Document) []Document {
	sorted := make([]Document, len(docs))
	copy(sorted, docs)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].UploadedAt.Equal(sorted[j].UploadedAt) {
			return sorted[i].UploadedAt.Before(sorted[j].UploadedAt)
		}
		return sorted[i].ID < sorted[j].ID
	})
	return sorted
}

// ExcludeDocument returns a copy of docs without the document with the given id
func ExcludeDocument(docs []Document, id string) []Document {
	filtered := make([]Document, 0, len(docs))
	for _, doc := range docs {
		if doc.ID == id {
			continue
		}
		filtered = append(filtered, doc)
	}
	return filtered
}
