package plagiarism

import (
	"sort"
	"strings"
	"unicode"
)

// TokenSet is the bag of distinct words of a document. Frequency is discarded.
type TokenSet map[string]struct{}

// Len returns the number of distinct tokens
func (s TokenSet) Len() int {
	return len(s)
}

// Contains reports whether token is in the set
func (s TokenSet) Contains(token string) bool {
	_, ok := s[token]
	return ok
}

// Tokens returns the tokens in ascending order
func (s TokenSet) Tokens() []string {
	tokens := make([]string, 0, len(s))
	for token := range s {
		tokens = append(tokens, token)
	}
	sort.Strings(tokens)
	return tokens
}

// Tokenizer splits text on runs of non-word characters.
//
// The zero value is case-sensitive and treats only ASCII letters, digits and
// underscore as word characters, so "Cat" and "cat" are different tokens and
// "café" splits into "caf". FoldCase and Unicode relax each rule.
type Tokenizer struct {
	FoldCase bool
	Unicode  bool
}

// DefaultTokenizer is case-sensitive and ASCII-only.
var DefaultTokenizer = Tokenizer{}

// Tokenize turns text into a TokenSet. Empty or whitespace-only text yields an
// empty set.
func (t Tokenizer) Tokenize(text string) TokenSet {
	isDelimiter := isASCIIDelimiter
	if t.Unicode {
		isDelimiter = isUnicodeDelimiter
	}

	set := make(TokenSet)
	for _, token := range strings.FieldsFunc(text, isDelimiter) {
		if t.FoldCase {
			token = strings.ToLower(token)
		}
		set[token] = struct{}{}
	}
	return set
}

// Tokenize uses DefaultTokenizer
func Tokenize(text string) TokenSet {
	return DefaultTokenizer.Tokenize(text)
}

func isASCIIDelimiter(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
		return false
	}
	return true
}

func isUnicodeDelimiter(r rune) bool {
	return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_')
}
