// Package search ranks documents against a free-text query. It is the in-process
// counterpart of a database text index: any term may match, and the score grows with
// the number of matching tokens relative to field length.
package search

import (
	"sort"
	"strings"
	"time"
	"unicode"
)

// Document is one searchable record.
type Document struct {
	ID        string
	CreatedAt time.Time
	Fields    []string // name, description, breed
}

// Hit is a matching document with its relevance score.
type Hit struct {
	ID        string
	Score     float64
	CreatedAt time.Time
}

// Scorer computes the relevance of doc for the query terms. A score of zero means
// the document does not match.
type Scorer interface {
	Score(terms []string, doc Document) float64
}

// TokenScorer weights each field equally and sums, per field, the fraction of
// field tokens that equal a query term.
type TokenScorer struct{}

func (TokenScorer) Score(terms []string, doc Document) float64 {
	if len(terms) == 0 {
		return 0
	}
	want := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		want[t] = struct{}{}
	}
	var score float64
	for _, field := range doc.Fields {
		tokens := Tokenize(field)
		if len(tokens) == 0 {
			continue
		}
		matches := 0
		for _, tok := range tokens {
			if _, ok := want[tok]; ok {
				matches++
			}
		}
		if matches > 0 {
			score += float64(matches) + float64(matches)/float64(len(tokens))
		}
	}
	return score
}

// Tokenize lowercases s and splits it on anything that is not a letter or digit.
func Tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Rank scores docs with scorer and returns the matches ordered by score descending,
// then newest first, then id descending. The order is stable for a fixed dataset.
func Rank(scorer Scorer, term string, docs []Document) []Hit {
	terms := Tokenize(term)
	if len(terms) == 0 {
		return nil
	}
	hits := make([]Hit, 0, len(docs))
	for _, d := range docs {
		if s := scorer.Score(terms, d); s > 0 {
			hits = append(hits, Hit{ID: d.ID, Score: s, CreatedAt: d.CreatedAt})
		}
	}
	sort.Slice(hits, func(i, j int) bool {
		a, b := hits[i], hits[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
	return hits
}
