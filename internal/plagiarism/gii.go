package plagiarism

import (
	"sort"
)

// GII (Global Inverted Index) maps token → [corpus positions]
type GII map[string][]int

// BuildGII builds the Global Inverted Index from tokenized documents.
// Optimization: skip tokens that appear in only 1 document
func BuildGII(sets []TokenSet) GII {
	gii := make(GII)

	// First pass: token → [positions], positions ascending
	for pos, set := range sets {
		for token := range set {
			gii[token] = append(gii[token], pos)
		}
	}

	// Second pass: filter out tokens held by a single document
	for token, positions := range gii {
		if len(positions) < 2 {
			delete(gii, token)
		}
	}

	return gii
}

// Pair is an unordered pair of corpus positions, I < J
type Pair struct {
	I int
	J int
}

// GetWorthyPairs returns every pair sharing at least one token, in
// generation order (I ascending, then J ascending).
func GetWorthyPairs(gii GII) []Pair {
	pairMap := make(map[Pair]struct{})

	for _, positions := range gii {
		for a := 0; a < len(positions); a++ {
			for b := a + 1; b < len(positions); b++ {
				pairMap[Pair{I: positions[a], J: positions[b]}] = struct{}{}
			}
		}
	}

	worthyPairs := make([]Pair, 0, len(pairMap))
	for pair := range pairMap {
		worthyPairs = append(worthyPairs, pair)
	}
	sort.Slice(worthyPairs, func(i, j int) bool {
		if worthyPairs[i].I != worthyPairs[j].I {
			return worthyPairs[i].I < worthyPairs[j].I
		}
		return worthyPairs[i].J < worthyPairs[j].J
	})

	return worthyPairs
}

// CompareAllIndexed behaves like CompareAll but only scores pairs sharing a
// token. Pairs sharing nothing score 0 and can never pass a threshold >= 0, so
// the output is identical; a negative threshold falls back to the full scan.
func (d *Detector) CompareAllIndexed(corpus []Document, threshold float64) []SimilarityResult {
	if threshold < 0 {
		return d.CompareAll(corpus, threshold)
	}

	sets := d.tokenizeCorpus(corpus)
	worthyPairs := GetWorthyPairs(BuildGII(sets))

	results := make([]SimilarityResult, 0)
	for _, pair := range worthyPairs {
		score := Similarity(sets[pair.I], sets[pair.J])
		if score > threshold {
			results = append(results, SimilarityResult{
				SubjectID:   corpus[pair.I].ID,
				CandidateID: corpus[pair.J].ID,
				Score:       score,
			})
		}
	}

	return results
}
