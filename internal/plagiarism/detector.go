package plagiarism

// Detector runs the scanner and comparators with a fixed Tokenizer.
// It holds no state between calls; corpora passed in are read, never kept.
type Detector struct {
	tokenizer Tokenizer
}

// NewDetector creates a detector using the given tokenizer
func NewDetector(tokenizer Tokenizer) *Detector {
	return &Detector{tokenizer: tokenizer}
}

// DefaultDetector uses DefaultTokenizer
var DefaultDetector = NewDetector(DefaultTokenizer)

// Tokenizer returns the detector's tokenizer
func (d *Detector) Tokenizer() Tokenizer {
	return d.tokenizer
}

// Score compares two raw texts
func (d *Detector) Score(textA, textB string) float64 {
	return Similarity(d.tokenizer.Tokenize(textA), d.tokenizer.Tokenize(textB))
}

// FindMostSimilar scans corpus in order and keeps the document with the
// strictly highest score. On ties the earlier document wins. An empty corpus
// yields a record with no match and a ratio of 0.
func (d *Detector) FindMostSimilar(candidateText string, corpus []Document) MatchRecord {
	record := MatchRecord{}
	if len(corpus) == 0 {
		return record
	}

	candidate := d.tokenizer.Tokenize(candidateText)
	best := -1
	bestScore := 0.0

	for i, doc := range corpus {
		score := Similarity(candidate, d.tokenizer.Tokenize(doc.Text))
		if best < 0 || score > bestScore {
			best = i
			bestScore = score
		}
	}

	id := corpus[best].ID
	record.MostSimilarID = &id
	record.MostSimilarName = corpus[best].DisplayName
	record.SimilarityRatio = bestScore
	return record
}

// CompareAll scores every unordered pair {i, j}, i < j, and keeps the pairs
// scoring strictly above threshold, in generation order.
func (d *Detector) CompareAll(corpus []Document, threshold float64) []SimilarityResult {
	sets := d.tokenizeCorpus(corpus)

	results := make([]SimilarityResult, 0)
	for i := 0; i < len(corpus); i++ {
		results = append(results, compareRow(corpus, sets, i, threshold)...)
	}
	return results
}

// tokenizeCorpus tokenizes every document once
func (d *Detector) tokenizeCorpus(corpus []Document) []TokenSet {
	sets := make([]TokenSet, len(corpus))
	for i, doc := range corpus {
		sets[i] = d.tokenizer.Tokenize(doc.Text)
	}
	return sets
}

// compareRow scores document i against every later document
func compareRow(corpus []Document, sets []TokenSet, i int, threshold float64) []SimilarityResult {
	var row []SimilarityResult
	for j := i + 1; j < len(corpus); j++ {
		score := Similarity(sets[i], sets[j])
		if score > threshold {
			row = append(row, SimilarityResult{
				SubjectID:   corpus[i].ID,
				CandidateID: corpus[j].ID,
				Score:       score,
			})
		}
	}
	return row
}

// FindMostSimilar uses DefaultDetector
func FindMostSimilar(candidateText string, corpus []Document) MatchRecord {
	return DefaultDetector.FindMostSimilar(candidateText, corpus)
}

// CompareAll uses DefaultDetector
func CompareAll(corpus []Document, threshold float64) []SimilarityResult {
	return DefaultDetector.CompareAll(corpus, threshold)
}
