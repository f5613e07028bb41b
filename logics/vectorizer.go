// Copyright 2025 shelfwise Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package logics

import (
	"math"
	"sort"
	"strings"
	"unicode"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/shelfwise/shelfwise/common/vector"
	"github.com/shelfwise/shelfwise/storage/data"
)

var stopWords = mapset.NewThreadUnsafeSet(
	"a", "an", "and", "are", "as", "at", "be", "but", "by", "for", "from",
	"has", "he", "her", "his", "if", "in", "into", "is", "it", "its", "no",
	"not", "of", "on", "or", "she", "such", "that", "the", "their", "then",
	"there", "these", "they", "this", "to", "was", "were", "will", "with")

// Tokenize lowercases text and splits it on non-alphanumeric runes,
// dropping stop words and single-rune fragments.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	tokens := fields[:0]
	for _, field := range fields {
		if len(field) > 1 && !stopWords.Contains(field) {
			tokens = append(tokens, field)
		}
	}
	return tokens
}

// Vectorizer is a TF-IDF model fitted once per scoring run. The same
// fitted vocabulary transforms both item text and preference text so
// cosine similarities between them are meaningful.
type Vectorizer struct {
	vocabulary map[string]int
	idf        []float64
	maxTerms   int
	summaryLen int
}

// NewVectorizer creates an unfitted vectorizer. maxTerms caps the
// vocabulary at the most frequent corpus terms; summaryLen bounds the
// summary prefix joined into each item document.
func NewVectorizer(maxTerms, summaryLen int) *Vectorizer {
	return &Vectorizer{
		vocabulary: make(map[string]int),
		maxTerms:   maxTerms,
		summaryLen: summaryLen,
	}
}

// Document assembles the text of an item: title, author, genre tags and
// a bounded summary prefix.
func (v *Vectorizer) Document(item data.Item) string {
	summary := item.Summary
	if len(summary) > v.summaryLen {
		// truncate by rune so a multi-byte character is never split
		if runes := []rune(summary); len(runes) > v.summaryLen {
			summary = string(runes[:v.summaryLen])
		}
	}
	parts := []string{item.Title, item.Author}
	parts = append(parts, item.Genres...)
	parts = append(parts, summary)
	return strings.Join(parts, " ")
}

// Fit builds the vocabulary and inverse document frequencies over the
// catalog. An empty or all-blank catalog leaves the vocabulary empty;
// Fitted reports whether any content signal exists.
func (v *Vectorizer) Fit(items []data.Item) {
	termFreq := make(map[string]int)
	docFreq := make(map[string]int)
	docs := 0
	for _, item := range items {
		tokens := Tokenize(v.Document(item))
		if len(tokens) == 0 {
			continue
		}
		docs++
		seen := mapset.NewThreadUnsafeSet[string]()
		for _, token := range tokens {
			termFreq[token]++
			if seen.Add(token) {
				docFreq[token]++
			}
		}
	}
	if docs == 0 {
		return
	}
	// keep the most frequent terms, ties by lexical order for determinism
	terms := make([]string, 0, len(termFreq))
	for term := range termFreq {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool {
		if termFreq[terms[i]] != termFreq[terms[j]] {
			return termFreq[terms[i]] > termFreq[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if len(terms) > v.maxTerms {
		terms = terms[:v.maxTerms]
	}
	v.idf = make([]float64, len(terms))
	for i, term := range terms {
		v.vocabulary[term] = i
		v.idf[i] = idf(docs, docFreq[term])
	}
}

// Fitted reports whether the vectorizer holds a usable vocabulary.
func (v *Vectorizer) Fitted() bool {
	return len(v.vocabulary) > 0
}

// Transform converts text into a sparse TF-IDF vector against the
// fitted vocabulary. Unknown terms are ignored.
func (v *Vectorizer) Transform(text string) vector.Sparse {
	tokens := Tokenize(text)
	if len(tokens) == 0 || !v.Fitted() {
		return vector.Sparse{}
	}
	counts := make(map[int]float64)
	for _, token := range tokens {
		if id, ok := v.vocabulary[token]; ok {
			counts[id]++
		}
	}
	result := make(vector.Sparse, len(counts))
	for id, count := range counts {
		result[id] = count / float64(len(tokens)) * v.idf[id]
	}
	return result
}

// TransformItems vectorizes the whole catalog against the fitted model.
func (v *Vectorizer) TransformItems(items []data.Item) map[string]vector.Sparse {
	vectors := make(map[string]vector.Sparse, len(items))
	for _, item := range items {
		vectors[item.ItemId] = v.Transform(v.Document(item))
	}
	return vectors
}

// idf computes smoothed inverse document frequency so that terms found
// in every document still carry a small positive weight.
func idf(docs, docFreq int) float64 {
	return math.Log(float64(docs+1)/float64(docFreq+1)) + 1
}
